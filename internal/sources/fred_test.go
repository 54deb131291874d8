package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/laborwatch/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fredServer serves canned newest-first monthly observations per series id,
// the newest dated 2024-10-01.
func fredServer(t *testing.T, series map[string][]string) *httptest.Server {
	t.Helper()
	return fredServerEvery(t, 1, series)
}

// fredServerEvery is fredServer with observations stepMonths apart.
func fredServerEvery(t *testing.T, stepMonths int, series map[string][]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/series/observations", r.URL.Path)
		assert.Equal(t, "test-key", q.Get("api_key"))
		assert.Equal(t, "json", q.Get("file_type"))
		assert.Equal(t, "desc", q.Get("sort_order"))

		values, ok := series[q.Get("series_id")]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error_code":400,"error_message":"Bad Request. The series does not exist."}`)
			return
		}
		limit, err := strconv.Atoi(q.Get("limit"))
		assert.NoError(t, err)
		if limit > 0 && limit < len(values) {
			values = values[:limit]
		}

		date := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = fmt.Sprintf(`{"date":%q,"value":%q}`, date.AddDate(0, -i*stepMonths, 0).Format("2006-01-02"), v)
		}
		fmt.Fprintf(w, `{"observations":[%s]}`, strings.Join(parts, ","))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_Level(t *testing.T) {
	srv := fredServer(t, map[string][]string{"CIVPART": {"62.7", "62.6"}})
	c := NewFREDClient("test-key", srv.URL)

	got, err := c.Fetch(context.Background(), []SeriesMapping{
		{SeriesID: "CIVPART", Metric: "labor_force_participation", Region: "NA"},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "labor_force_participation", got[0].Metric)
	assert.Equal(t, "NA", got[0].Region)
	assert.Equal(t, 62.7, got[0].Value)
	assert.Equal(t, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), got[0].Timestamp)
}

func TestFetch_YoY(t *testing.T) {
	srv := fredServerEvery(t, 3, map[string][]string{"ECIWAG": {"165.6", "164.0", "162.9", "161.8", "160.0", "158.2"}})
	c := NewFREDClient("test-key", srv.URL)

	got, err := c.Fetch(context.Background(), []SeriesMapping{
		{SeriesID: "ECIWAG", Metric: "wage_growth", Region: "NA", Transform: TransformYoY, Periods: 4},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 3.5, got[0].Value, 1e-9)
}

func TestFetch_YoYAcrossMissingValues(t *testing.T) {
	monthly := func(gaps map[int]bool, latest, yearAgo, before string) []string {
		values := make([]string, 25)
		for i := range values {
			values[i] = "105"
			if gaps[i] {
				values[i] = "."
			}
		}
		values[0], values[12], values[13] = latest, yearAgo, before
		return values
	}
	srv := fredServer(t, map[string][]string{
		// One placeholder inside the year still compares against 2023-10-01.
		"GAPPY": monthly(map[int]bool{3: true}, "110", "100", "95"),
		// A missing year-ago value falls back to the month before it.
		"HOLE": monthly(nil, "110", ".", "100"),
	})
	c := NewFREDClient("test-key", srv.URL)

	got, err := c.Fetch(context.Background(), []SeriesMapping{
		{SeriesID: "GAPPY", Metric: "gappy", Region: "NA", Transform: TransformYoY, Periods: 12},
		{SeriesID: "HOLE", Metric: "hole", Region: "NA", Transform: TransformYoY, Periods: 12},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, 10.0, got[0].Value, 1e-9)
	assert.InDelta(t, 10.0, got[1].Value, 1e-9)
}

func TestFetch_LogsSkippedSeries(t *testing.T) {
	// Two missing months around the year-ago date leave nothing close enough.
	values := []string{"110", "109", "108", "107", "106", "105", "104", "103", "102", "101", "100", "99", ".", ".", "90"}
	srv := fredServer(t, map[string][]string{"STALE": values})

	var logs bytes.Buffer
	log, err := logger.New(&logs, "info")
	require.NoError(t, err)
	c := NewFREDClient("test-key", srv.URL)
	c.SetLogger(log)

	got, err := c.Fetch(context.Background(), []SeriesMapping{
		{SeriesID: "STALE", Metric: "stale", Region: "NA", Transform: TransformYoY, Periods: 12},
	})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Contains(t, logs.String(), "skipping FRED series")
	assert.Contains(t, logs.String(), "STALE")
	assert.Contains(t, logs.String(), "2023-10-01")
}

func TestFetch_SkipsMissingValues(t *testing.T) {
	srv := fredServer(t, map[string][]string{
		"GONE":  {"."},
		"SHORT": {"101", "."},
	})
	c := NewFREDClient("test-key", srv.URL)

	got, err := c.Fetch(context.Background(), []SeriesMapping{
		{SeriesID: "GONE", Metric: "a", Region: "NA"},
		{SeriesID: "SHORT", Metric: "b", Region: "NA", Transform: TransformYoY, Periods: 1},
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetch_PreservesMappingOrder(t *testing.T) {
	srv := fredServer(t, map[string][]string{"A": {"1"}, "B": {"2"}, "C": {"3"}})
	c := NewFREDClient("test-key", srv.URL)

	got, err := c.Fetch(context.Background(), []SeriesMapping{
		{SeriesID: "C", Metric: "c", Region: "NA"},
		{SeriesID: "A", Metric: "a", Region: "NA"},
		{SeriesID: "B", Metric: "b", Region: "NA"},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{got[0].Metric, got[1].Metric, got[2].Metric})
}

func TestFetch_ServerError(t *testing.T) {
	srv := fredServer(t, map[string][]string{"A": {"1"}})
	c := NewFREDClient("test-key", srv.URL)

	_, err := c.Fetch(context.Background(), []SeriesMapping{
		{SeriesID: "A", Metric: "a", Region: "NA"},
		{SeriesID: "MISSING", Metric: "m", Region: "NA"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "series MISSING")
	assert.Contains(t, err.Error(), "does not exist")
}

func TestFetch_NotConfigured(t *testing.T) {
	_, err := NewFREDClient("", "").Fetch(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
