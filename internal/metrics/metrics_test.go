package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blackwell-systems/laborwatch/internal/insight"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gather returns the metric family with the given full name.
func gather(t *testing.T, m *Manager, name string) *dto.MetricFamily {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return nil
}

func counterWith(t *testing.T, f *dto.MetricFamily, labels map[string]string) float64 {
	t.Helper()
	for _, metric := range f.GetMetric() {
		got := make(map[string]string)
		for _, lp := range metric.GetLabel() {
			got[lp.GetName()] = lp.GetValue()
		}
		if fmt.Sprint(got) == fmt.Sprint(labels) {
			return metric.GetCounter().GetValue()
		}
	}
	t.Fatalf("no series %v in %s", labels, f.GetName())
	return 0
}

func TestManager_ImplementsRecorder(t *testing.T) {
	var _ insight.Recorder = NewManager()
}

func TestRuleFired(t *testing.T) {
	m := NewManager()
	m.RuleFired("rule_4", insight.CategoryMacroEconomic)
	m.RuleFired("rule_4", insight.CategoryMacroEconomic)

	f := gather(t, m, "laborwatch_engine_rules_fired_total")
	assert.Equal(t, 2.0, counterWith(t, f, map[string]string{"rule": "rule_4", "category": "MACRO_ECONOMIC"}))
}

func TestGenerationCompleted_Outcomes(t *testing.T) {
	m := NewManager()
	m.GenerationCompleted(10*time.Millisecond, nil)
	m.GenerationCompleted(time.Millisecond, fmt.Errorf("wrap: %w", insight.ErrStoreUnavailable))
	m.GenerationCompleted(time.Millisecond, errors.New("other"))

	f := gather(t, m, "laborwatch_engine_generations_total")
	assert.Equal(t, 1.0, counterWith(t, f, map[string]string{"outcome": "success"}))
	assert.Equal(t, 1.0, counterWith(t, f, map[string]string{"outcome": "store_unavailable"}))
	assert.Equal(t, 1.0, counterWith(t, f, map[string]string{"outcome": "error"}))

	h := gather(t, m, "laborwatch_engine_generation_duration_seconds")
	assert.Equal(t, uint64(3), h.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestObserveRequest(t *testing.T) {
	m := NewManager(WithNamespace("test"))
	m.ObserveRequest("/api/insights", http.MethodGet, http.StatusOK, 5*time.Millisecond)

	f := gather(t, m, "test_http_requests_total")
	assert.Equal(t, 1.0, counterWith(t, f, map[string]string{"route": "/api/insights", "method": "GET", "code": "200"}))
}

func TestHandler_Exposition(t *testing.T) {
	m := NewManager()
	m.ObservationsIngested("csv", 3)
	m.AlertEmitted("info")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `laborwatch_store_observations_ingested_total{source="csv"} 3`)
	assert.Contains(t, string(body), `laborwatch_watch_alerts_total{severity="info"} 1`)
}

func TestWithRuntimeCollectors(t *testing.T) {
	m := NewManager(WithRuntimeCollectors())
	gather(t, m, "go_goroutines")
}
