// Package sources fetches metric observations from external data providers
// and files.
package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/blackwell-systems/laborwatch/internal/insight"
	"github.com/blackwell-systems/laborwatch/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultFREDBaseURL is the FRED API root.
	DefaultFREDBaseURL = "https://api.stlouisfed.org/fred"

	fredTimeout    = 30 * time.Second
	fredDateLayout = "2006-01-02"
	fredMissing    = "."

	// maxConcurrentSeries bounds parallel FRED requests.
	maxConcurrentSeries = 4

	// levelLimit leaves room for trailing missing-value placeholders.
	levelLimit = 5

	yearSpan = 366 * 24 * time.Hour
)

// ErrNotConfigured is returned when no FRED API key is available.
var ErrNotConfigured = errors.New("FRED API key not configured")

// Transform selects how a series becomes a metric value.
type Transform string

const (
	// TransformLevel reports the most recent value.
	TransformLevel Transform = "level"
	// TransformYoY reports the percent change against the observation dated
	// one year before the latest. Periods is the series frequency in
	// observations per year (12 monthly, 4 quarterly) and bounds how far
	// before that date a substitute may lie when the exact one is missing.
	TransformYoY Transform = "yoy"
)

// SeriesMapping maps one FRED series onto an observation.
type SeriesMapping struct {
	SeriesID  string
	Metric    string
	Region    string
	Function  string
	Transform Transform
	Periods   int
}

func (m SeriesMapping) limit() int {
	if m.Transform == TransformYoY {
		// A second year of history absorbs missing values.
		return 2*m.periods() + 1
	}
	return levelLimit
}

func (m SeriesMapping) periods() int {
	if m.Periods > 0 {
		return m.Periods
	}
	return 12
}

// FREDClient reads series observations from the FRED API.
type FREDClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     logger.Logger
}

// NewFREDClient returns a client. An empty baseURL selects the public API.
func NewFREDClient(apiKey, baseURL string) *FREDClient {
	if baseURL == "" {
		baseURL = DefaultFREDBaseURL
	}
	return &FREDClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: fredTimeout},
		log:     logger.Nop(),
	}
}

// SetLogger sets the client's logger.
func (c *FREDClient) SetLogger(l logger.Logger) {
	c.log = l
}

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type fredResponse struct {
	Observations []fredObservation `json:"observations"`
	ErrorMessage string            `json:"error_message"`
}

type point struct {
	date  time.Time
	value float64
}

// Fetch retrieves every mapped series concurrently and returns one
// observation per series, in mapping order. Series with no usable data are
// skipped. Any request failure fails the whole fetch.
func (c *FREDClient) Fetch(ctx context.Context, mappings []SeriesMapping) ([]insight.Observation, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	results := make([]*insight.Observation, len(mappings))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSeries)
	for i, m := range mappings {
		i, m := i, m
		g.Go(func() error {
			points, err := c.series(ctx, m.SeriesID, m.limit())
			if err != nil {
				return fmt.Errorf("series %s: %w", m.SeriesID, err)
			}
			obs, skip := toObservation(m, points)
			if skip != "" {
				c.log.Warn(ctx, "skipping FRED series",
					logger.String("series", m.SeriesID),
					logger.String("metric", m.Metric),
					logger.String("reason", skip))
				return nil
			}
			results[i] = &obs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]insight.Observation, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// toObservation applies the mapping's transform to newest-first points. A
// non-empty reason means the series has no usable value.
func toObservation(m SeriesMapping, points []point) (insight.Observation, string) {
	if len(points) == 0 {
		return insight.Observation{}, "no observations with values"
	}
	latest := points[0]
	obs := insight.Observation{
		Metric:    m.Metric,
		Region:    m.Region,
		Function:  m.Function,
		Value:     latest.value,
		Timestamp: latest.date,
	}
	if m.Transform != TransformYoY {
		return obs, ""
	}

	base, ok := yearAgo(points, m.periods())
	if !ok {
		return insight.Observation{}, fmt.Sprintf("no observation near %s to compare against",
			latest.date.AddDate(-1, 0, 0).Format(fredDateLayout))
	}
	if base.value == 0 {
		return insight.Observation{}, "year-ago value is zero"
	}
	obs.Value = (latest.value - base.value) / base.value * 100
	return obs, ""
}

// yearAgo picks the newest point dated on or before one year before
// points[0], accepting it only within one period of that date.
func yearAgo(points []point, perYear int) (point, bool) {
	target := points[0].date.AddDate(-1, 0, 0)
	oldest := target.Add(-yearSpan / time.Duration(perYear))
	for _, p := range points[1:] {
		if p.date.After(target) {
			continue
		}
		if p.date.Before(oldest) {
			break
		}
		return p, true
	}
	return point{}, false
}

// series fetches up to limit observations, newest first, dropping FRED's
// "." placeholders for missing values.
func (c *FREDClient) series(ctx context.Context, id string, limit int) ([]point, error) {
	q := url.Values{}
	q.Set("series_id", id)
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")
	q.Set("sort_order", "desc")
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/series/observations?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var fr fredResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(body, &fr) == nil && fr.ErrorMessage != "" {
			return nil, fmt.Errorf("FRED returned status %d: %s", resp.StatusCode, fr.ErrorMessage)
		}
		return nil, fmt.Errorf("FRED returned status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &fr); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	points := make([]point, 0, len(fr.Observations))
	for _, o := range fr.Observations {
		if o.Value == fredMissing {
			continue
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing value %q: %w", o.Value, err)
		}
		d, err := time.Parse(fredDateLayout, o.Date)
		if err != nil {
			return nil, fmt.Errorf("parsing date %q: %w", o.Date, err)
		}
		points = append(points, point{date: d, value: v})
	}
	return points, nil
}
