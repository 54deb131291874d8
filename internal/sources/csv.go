package sources

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/blackwell-systems/laborwatch/internal/insight"
)

// csvColumns is the required header, in any order. function may be empty.
var csvColumns = []string{"metric", "value", "region", "function", "timestamp"}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02"}

// ReadCSV parses observations from CSV with a header row naming the columns
// metric, value, region, function and timestamp. Blank lines are skipped.
func ReadCSV(r io.Reader) ([]insight.Observation, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv: missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: reading header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var out []insight.Observation
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		obs, err := parseRecord(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}
		out = append(out, obs)
	}
	return out, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range csvColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("csv: header missing column %q", col)
		}
	}
	return idx, nil
}

func parseRecord(rec []string, idx map[string]int) (insight.Observation, error) {
	field := func(col string) string {
		i := idx[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	obs := insight.Observation{
		Metric:   field("metric"),
		Region:   field("region"),
		Function: field("function"),
	}
	if obs.Metric == "" {
		return obs, errors.New("metric is required")
	}
	if obs.Region == "" {
		return obs, errors.New("region is required")
	}

	v, err := strconv.ParseFloat(field("value"), 64)
	if err != nil {
		return obs, fmt.Errorf("value: %w", err)
	}
	obs.Value = v

	ts, err := parseTimestamp(field("timestamp"))
	if err != nil {
		return obs, err
	}
	obs.Timestamp = ts
	return obs, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q: want RFC 3339 or YYYY-MM-DD", s)
}
