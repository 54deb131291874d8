package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/laborwatch/internal/feed"
	"github.com/blackwell-systems/laborwatch/internal/insight"
	"github.com/blackwell-systems/laborwatch/internal/metrics"
	"github.com/blackwell-systems/laborwatch/internal/sources"
	"github.com/blackwell-systems/laborwatch/internal/store"
	"github.com/blackwell-systems/laborwatch/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)

type testServer struct {
	handler http.Handler
	db      *store.DB
	metrics *metrics.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Seed(context.Background(), "Netflix"))

	m := metrics.NewManager()
	gen := insight.NewGenerator(db, insight.DefaultCatalog(),
		insight.WithRecorder(m),
		insight.WithClock(func() time.Time { return fixedNow }))

	return &testServer{
		handler: NewRouter(&Container{
			Store:          db,
			Feed:           feed.New(db, gen, "Netflix", nil),
			Generator:      gen,
			Metrics:        m,
			DefaultCompany: "Netflix",
			Now:            func() time.Time { return fixedNow },
		}),
		db:      db,
		metrics: m,
	}
}

func (s *testServer) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec, body := s.do(t, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "2024-12-01T12:00:00Z", body["timestamp"])
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestListInsights_Persisted(t *testing.T) {
	s := newTestServer(t)
	rec, body := s.do(t, http.MethodGet, "/api/insights?region=EMEA", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["generatedEnabled"])
	count := int(body["count"].(float64))
	assert.Positive(t, count)
	for _, raw := range body["data"].([]any) {
		assert.Equal(t, "EMEA", raw.(map[string]any)["region"])
	}
}

func TestListInsights_WithGenerated(t *testing.T) {
	s := newTestServer(t)
	_, persisted := s.do(t, http.MethodGet, "/api/insights?region=NA", "")
	rec, body := s.do(t, http.MethodGet, "/api/insights?region=NA&includeGenerated=true", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["generatedEnabled"])
	// rule_2, rule_5 and rule_7 fire for NA on the sample data.
	assert.Equal(t, persisted["count"].(float64)+3, body["count"])

	first := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "2024-12-01T12:00:00Z", first["createdAt"])
}

func TestListInsights_CategoryLabel(t *testing.T) {
	s := newTestServer(t)
	rec, body := s.do(t, http.MethodGet, "/api/insights?category=Talent+Supply+Shifts", "")

	require.Equal(t, http.StatusOK, rec.Code)
	for _, raw := range body["data"].([]any) {
		assert.Equal(t, "TALENT_SUPPLY", raw.(map[string]any)["category"])
	}

	rec, _ = s.do(t, http.MethodGet, "/api/insights?category=NOPE", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetInsight(t *testing.T) {
	s := newTestServer(t)
	stored, err := s.db.ListInsights(context.Background(), store.InsightFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, stored)

	rec, body := s.do(t, http.MethodGet, "/api/insights/"+stored[0].ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, stored[0].ID, body["data"].(map[string]any)["id"])

	rec, body = s.do(t, http.MethodGet, "/api/insights/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "insight not found", body["error"])
}

func TestGenerateInsights(t *testing.T) {
	s := newTestServer(t)
	rec, body := s.do(t, http.MethodPost, "/api/insights/generate", `{"region":"LATAM"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, body["count"])
	for _, raw := range body["data"].([]any) {
		in := raw.(map[string]any)
		assert.Equal(t, "Netflix", in["company"])
		assert.Equal(t, "All", in["function"])
		assert.Equal(t, "LATAM", in["region"])
	}

	// Not persisted unless asked.
	stored, err := s.db.ListInsights(context.Background(), store.InsightFilter{Region: "LATAM"})
	require.NoError(t, err)
	before := len(stored)

	rec, _ = s.do(t, http.MethodPost, "/api/insights/generate", `{"region":"LATAM","persist":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	stored, err = s.db.ListInsights(context.Background(), store.InsightFilter{Region: "LATAM"})
	require.NoError(t, err)
	assert.Len(t, stored, before+2)
}

func TestGenerateInsights_BadRequest(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/api/insights/generate", `{"company":"Netflix"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/insights/generate", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, insight.Scope) ([]insight.Insight, error) {
	return nil, errors.Join(insight.ErrStoreUnavailable, errors.New("database is locked"))
}

func (failingGenerator) Catalog() *insight.Catalog { return insight.DefaultCatalog() }

func TestGenerateInsights_StoreUnavailable(t *testing.T) {
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	h := NewRouter(&Container{Store: db, Feed: feed.New(db, nil, "Netflix", nil), Generator: failingGenerator{}})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/insights/generate", strings.NewReader(`{"region":"NA"}`)))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type brokenGenerator struct{ failingGenerator }

func (brokenGenerator) Generate(context.Context, insight.Scope) ([]insight.Insight, error) {
	return nil, errors.New("catalog evaluation aborted")
}

func TestGenerateInsights_UnexpectedErrorIsLogged(t *testing.T) {
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var logs bytes.Buffer
	log, err := logger.New(&logs, "info")
	require.NoError(t, err)

	h := NewRouter(&Container{Store: db, Feed: feed.New(db, nil, "Netflix", nil), Generator: brokenGenerator{}, Log: log})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/insights/generate", strings.NewReader(`{"region":"NA"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "generating insights failed")
	assert.Contains(t, logs.String(), "catalog evaluation aborted")
}

func TestSourceStatus(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodPost, "/api/observations",
		`{"observations":[{"metric":"fx_volatility","value":21,"region":"NA","timestamp":"2024-11-30T00:00:00Z"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := s.do(t, http.MethodGet, "/api/sources/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	byName := map[string]map[string]any{}
	for _, raw := range body["data"].([]any) {
		st := raw.(map[string]any)
		byName[st["name"].(string)] = st
	}
	require.Contains(t, byName, "fred")
	assert.Equal(t, false, byName["fred"]["configured"])
	assert.Equal(t, false, byName["fred"]["active"])
	assert.Equal(t, 0.0, byName["fred"]["observations"])
	assert.NotContains(t, byName["fred"], "lastObserved")

	assert.Equal(t, true, byName["seed"]["active"])
	assert.Equal(t, float64(len(store.SeedObservations)), byName["seed"]["observations"])

	assert.Equal(t, true, byName["api"]["configured"])
	assert.Equal(t, 1.0, byName["api"]["observations"])
	assert.Equal(t, "2024-11-30T00:00:00Z", byName["api"]["lastObserved"])
}

func TestSourceStatus_FREDConfigured(t *testing.T) {
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	h := NewRouter(&Container{Store: db, Feed: feed.New(db, nil, "Netflix", nil), FREDConfigured: true})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sources/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []sources.Status `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data)
	assert.Equal(t, "fred", body.Data[0].Name)
	assert.True(t, body.Data[0].Configured)
	assert.False(t, body.Data[0].Active)
}

func TestFiltersAndStats(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodGet, "/api/filters", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, []any{"Netflix"}, data["companies"])
	assert.Len(t, data["categories"], 4)

	rec, body = s.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := body["data"].(map[string]any)
	assert.Equal(t, 10.0, stats["total"])
	assert.InDelta(t, 0.896, stats["averageConfidence"], 0.0001)
}

func TestRules(t *testing.T) {
	s := newTestServer(t)
	rec, body := s.do(t, http.MethodGet, "/api/rules", "")

	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, insight.DefaultCatalogVersion, data["version"])
	assert.Len(t, data["rules"], len(insight.DefaultRules))
}

func TestIngestObservations(t *testing.T) {
	s := newTestServer(t)
	payload, err := json.Marshal(map[string]any{
		"observations": []map[string]any{
			{"metric": "fx_volatility", "value": 21, "region": "NA"},
		},
	})
	require.NoError(t, err)

	rec, body := s.do(t, http.MethodPost, "/api/observations", string(payload))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1.0, body["count"])

	rows, err := s.db.ListObservations(context.Background(), store.ObservationFilter{Metric: "fx_volatility", Region: "NA"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "api", rows[0].Source)
	assert.True(t, rows[0].Timestamp.Equal(fixedNow))

	// The new reading makes rule_4 fire for NA.
	_, gen := s.do(t, http.MethodPost, "/api/insights/generate", `{"region":"NA"}`)
	assert.Equal(t, 4.0, gen["count"])
}

func TestIngestObservations_Validation(t *testing.T) {
	s := newTestServer(t)

	for name, body := range map[string]string{
		"empty":          `{"observations":[]}`,
		"missing metric": `{"observations":[{"value":1,"region":"NA"}]}`,
		"missing region": `{"observations":[{"metric":"x","value":1}]}`,
		"unknown field":  `{"observations":[],"extra":true}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec, _ := s.do(t, http.MethodPost, "/api/observations", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodOptions, "/api/insights", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/insights/abc", "")
	s.do(t, http.MethodPost, "/api/insights/generate", `{"region":"NA"}`)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	out := rec.Body.String()
	assert.Contains(t, out, `route="/api/insights/{id}"`)
	assert.Contains(t, out, `laborwatch_engine_rules_fired_total{category="TALENT_SUPPLY",rule="rule_5"} 1`)
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte("laborwatch_engine_generations_total")))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	rec, body := s.do(t, http.MethodGet, "/api/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
}
