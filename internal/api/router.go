// Package api serves insights, filters, stats and rules over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/blackwell-systems/laborwatch/internal/feed"
	"github.com/blackwell-systems/laborwatch/internal/insight"
	"github.com/blackwell-systems/laborwatch/internal/store"
	"github.com/blackwell-systems/laborwatch/pkg/logger"
	"github.com/gorilla/mux"
)

// Store is the persistence the API reads and writes.
type Store interface {
	GetInsight(ctx context.Context, id string) (*insight.Insight, error)
	InsertInsights(ctx context.Context, batch []insight.Insight) error
	InsertObservations(ctx context.Context, source string, batch []insight.Observation) error
	Filters(ctx context.Context) (*store.FilterOptions, error)
	Stats(ctx context.Context) (*store.Stats, error)
	SourceCounts(ctx context.Context) ([]store.SourceCount, error)
}

// Generator produces insights and exposes its rule catalog.
type Generator interface {
	Generate(ctx context.Context, scope insight.Scope) ([]insight.Insight, error)
	Catalog() *insight.Catalog
}

// Instrumentation records request and ingest metrics and serves them.
type Instrumentation interface {
	ObserveRequest(route, method string, code int, elapsed time.Duration)
	ObservationsIngested(source string, n int)
	Handler() http.Handler
}

// Container holds the router's dependencies. Metrics is optional.
// FREDConfigured reports whether a FRED API key is set.
type Container struct {
	Store          Store
	Feed           *feed.Feed
	Generator      Generator
	Metrics        Instrumentation
	Log            logger.Logger
	DefaultCompany string
	FREDConfigured bool
	Now            func() time.Time
}

// NewRouter builds the HTTP handler for all API routes.
func NewRouter(c *Container) http.Handler {
	if c.Log == nil {
		c.Log = logger.Nop()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	h := &handler{c: c}

	r := mux.NewRouter()
	r.Use(corsMiddleware)
	if c.Metrics != nil {
		r.Use(metricsMiddleware(c.Metrics))
		r.Handle("/metrics", c.Metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", h.health).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/insights", h.listInsights).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/insights/generate", h.generateInsights).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/insights/{id}", h.getInsight).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/filters", h.filters).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/stats", h.stats).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/rules", h.rules).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/sources/status", h.sourceStatus).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/observations", h.ingestObservations).Methods(http.MethodPost, http.MethodOptions)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	return r
}
