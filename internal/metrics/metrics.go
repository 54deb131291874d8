// Package metrics exposes Prometheus instrumentation for insight generation
// and the HTTP API.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/blackwell-systems/laborwatch/internal/insight"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns a private registry and the collectors registered on it.
// It implements insight.Recorder.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	rulesFired         *prometheus.CounterVec
	generations        *prometheus.CounterVec
	generationDuration prometheus.Histogram

	observationsIngested *prometheus.CounterVec
	watchAlerts          *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace sets the metric namespace. Defaults to "laborwatch".
func WithNamespace(ns string) Option {
	return func(m *Manager) { m.namespace = ns }
}

// WithHistogramBuckets sets the duration histogram buckets, in seconds.
func WithHistogramBuckets(b []float64) Option {
	return func(m *Manager) { m.buckets = b }
}

// WithRuntimeCollectors registers the Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(m *Manager) {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// NewManager returns a Manager with all collectors registered on a fresh
// registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "laborwatch",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(m.registry)

	m.rulesFired = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "engine",
		Name:      "rules_fired_total",
		Help:      "Rules that fired during insight generation.",
	}, []string{"rule", "category"})

	m.generations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "engine",
		Name:      "generations_total",
		Help:      "Insight generation runs by outcome.",
	}, []string{"outcome"})

	m.generationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "engine",
		Name:      "generation_duration_seconds",
		Help:      "Time spent generating insights for one scope.",
		Buckets:   m.buckets,
	})

	m.observationsIngested = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "store",
		Name:      "observations_ingested_total",
		Help:      "Observations written to the store by source.",
	}, []string{"source"})

	m.watchAlerts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "watch",
		Name:      "alerts_total",
		Help:      "Alerts emitted by the watcher by severity.",
	}, []string{"severity"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   m.buckets,
	}, []string{"route", "method"})

	return m
}

// Registry returns the manager's registry.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RuleFired implements insight.Recorder.
func (m *Manager) RuleFired(ruleID string, category insight.Category) {
	m.rulesFired.WithLabelValues(ruleID, string(category)).Inc()
}

// GenerationCompleted implements insight.Recorder.
func (m *Manager) GenerationCompleted(elapsed time.Duration, err error) {
	m.generationDuration.Observe(elapsed.Seconds())
	m.generations.WithLabelValues(outcome(err)).Inc()
}

// ObservationsIngested counts observations written from source.
func (m *Manager) ObservationsIngested(source string, n int) {
	m.observationsIngested.WithLabelValues(source).Add(float64(n))
}

// AlertEmitted counts a watcher alert.
func (m *Manager) AlertEmitted(severity string) {
	m.watchAlerts.WithLabelValues(severity).Inc()
}

// ObserveRequest records one completed HTTP request.
func (m *Manager) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, insight.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
