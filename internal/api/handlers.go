package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/blackwell-systems/laborwatch/internal/feed"
	"github.com/blackwell-systems/laborwatch/internal/insight"
	"github.com/blackwell-systems/laborwatch/internal/sources"
	"github.com/blackwell-systems/laborwatch/pkg/logger"
	"github.com/gorilla/mux"
)

// maxBodyBytes bounds request bodies for POST endpoints.
const maxBodyBytes = 1 << 20

type handler struct {
	c *Container
}

// health handles GET /api/health.
func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": h.c.Now().UTC().Format(time.RFC3339),
	})
}

// listInsights handles GET /api/insights.
func (h *handler) listInsights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := feed.Query{
		Company:          q.Get("company"),
		Function:         q.Get("function"),
		Region:           q.Get("region"),
		Initiative:       q.Get("initiative"),
		IncludeGenerated: q.Get("includeGenerated") == "true",
	}
	if raw := q.Get("category"); raw != "" {
		cat, err := insight.ParseCategory(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		query.Category = cat
	}

	res, err := h.c.Feed.List(r.Context(), query)
	if err != nil {
		h.c.Log.Error(r.Context(), "listing insights failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch insights")
		return
	}
	writeJSON(w, http.StatusOK, insightsResponse{
		Success:          true,
		Data:             res.Insights,
		Count:            len(res.Insights),
		GeneratedEnabled: res.GeneratedEnabled,
		GeneratedError:   res.GeneratedError,
	})
}

// getInsight handles GET /api/insights/{id}.
func (h *handler) getInsight(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	in, err := h.c.Store.GetInsight(r.Context(), id)
	if err != nil {
		h.c.Log.Error(r.Context(), "fetching insight failed", logger.String("id", id), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch insight")
		return
	}
	if in == nil {
		writeError(w, http.StatusNotFound, "insight not found")
		return
	}
	writeData(w, http.StatusOK, in)
}

type generateRequest struct {
	Company  string `json:"company"`
	Region   string `json:"region"`
	Function string `json:"function"`
	Persist  bool   `json:"persist"`
}

// generateInsights handles POST /api/insights/generate.
func (h *handler) generateInsights(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Region) == "" {
		writeError(w, http.StatusBadRequest, "region is required")
		return
	}
	scope := insight.Scope{Company: req.Company, Region: req.Region, Function: req.Function}
	if scope.Company == "" {
		scope.Company = h.c.DefaultCompany
	}
	if scope.Function == "" {
		scope.Function = feed.DefaultFunction
	}

	insights, err := h.c.Generator.Generate(r.Context(), scope)
	if err != nil {
		if errors.Is(err, insight.ErrStoreUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "metric store unavailable")
			return
		}
		h.c.Log.Error(r.Context(), "generating insights failed",
			logger.String("region", scope.Region), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to generate insights")
		return
	}

	if req.Persist && len(insights) > 0 {
		if err := h.c.Store.InsertInsights(r.Context(), insights); err != nil {
			h.c.Log.Error(r.Context(), "persisting generated insights failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to persist insights")
			return
		}
	}

	n := len(insights)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: insights, Count: &n})
}

// filters handles GET /api/filters.
func (h *handler) filters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.c.Store.Filters(r.Context())
	if err != nil {
		h.c.Log.Error(r.Context(), "fetching filters failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch filters")
		return
	}
	writeData(w, http.StatusOK, opts)
}

// stats handles GET /api/stats.
func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.c.Store.Stats(r.Context())
	if err != nil {
		h.c.Log.Error(r.Context(), "fetching stats failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch stats")
		return
	}
	writeData(w, http.StatusOK, st)
}

type rulesResponse struct {
	Version string         `json:"version"`
	Rules   []insight.Rule `json:"rules"`
}

// rules handles GET /api/rules.
func (h *handler) rules(w http.ResponseWriter, _ *http.Request) {
	cat := h.c.Generator.Catalog()
	writeData(w, http.StatusOK, rulesResponse{Version: cat.Version(), Rules: cat.Rules()})
}

type observationsRequest struct {
	Observations []insight.Observation `json:"observations"`
}

// ingestObservations handles POST /api/observations.
func (h *handler) ingestObservations(w http.ResponseWriter, r *http.Request) {
	var req observationsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Observations) == 0 {
		writeError(w, http.StatusBadRequest, "no observations")
		return
	}
	now := h.c.Now().UTC()
	for i := range req.Observations {
		o := &req.Observations[i]
		if strings.TrimSpace(o.Metric) == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("observation %d: metric is required", i))
			return
		}
		if strings.TrimSpace(o.Region) == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("observation %d: region is required", i))
			return
		}
		if o.Timestamp.IsZero() {
			o.Timestamp = now
		}
	}

	if err := h.c.Store.InsertObservations(r.Context(), sources.SourceAPI, req.Observations); err != nil {
		h.c.Log.Error(r.Context(), "ingesting observations failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store observations")
		return
	}
	if h.c.Metrics != nil {
		h.c.Metrics.ObservationsIngested(sources.SourceAPI, len(req.Observations))
	}

	n := len(req.Observations)
	writeJSON(w, http.StatusCreated, envelope{Success: true, Count: &n})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// sourceStatus handles GET /api/sources/status.
func (h *handler) sourceStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := h.c.Store.SourceCounts(r.Context())
	if err != nil {
		h.c.Log.Error(r.Context(), "fetching source counts failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch source status")
		return
	}
	writeData(w, http.StatusOK, sources.Statuses(sources.Descriptors(h.c.FREDConfigured), counts))
}
