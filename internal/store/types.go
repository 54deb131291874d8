// Package store provides SQLite storage for metric observations and insights.
package store

import (
	"time"

	"github.com/blackwell-systems/laborwatch/internal/insight"
)

// ObservationRow is a stored observation with its row metadata.
type ObservationRow struct {
	ID     int64  `json:"id"`
	Source string `json:"source,omitempty"`
	insight.Observation
}

// ObservationFilter narrows ListObservations. Zero values match everything.
type ObservationFilter struct {
	Metric string
	Region string
	Since  time.Time
	Limit  int
}

// InsightFilter narrows ListInsights. Zero values match everything.
type InsightFilter struct {
	Company    string
	Function   string
	Region     string
	Initiative string
	Category   insight.Category
}

// Matches reports whether in satisfies the filter. It applies the same
// predicate ListInsights evaluates in SQL.
func (f InsightFilter) Matches(in insight.Insight) bool {
	switch {
	case f.Company != "" && in.Company != f.Company:
		return false
	case f.Function != "" && in.Function != f.Function:
		return false
	case f.Region != "" && in.Region != f.Region:
		return false
	case f.Initiative != "" && in.Initiative != f.Initiative:
		return false
	case f.Category != "" && in.Category != f.Category:
		return false
	}
	return true
}

// SourceCount summarizes the observations written by one source.
type SourceCount struct {
	Source string    `json:"source"`
	Count  int       `json:"count"`
	Latest time.Time `json:"latest"`
}

// FilterOptions lists the distinct values available for insight filters.
type FilterOptions struct {
	Companies   []string           `json:"companies"`
	Functions   []string           `json:"functions"`
	Regions     []string           `json:"regions"`
	Initiatives []string           `json:"initiatives"`
	Categories  []insight.Category `json:"categories"`
}

// GroupCount is a count of insights sharing one value.
type GroupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Stats summarizes stored insights.
type Stats struct {
	Total             int          `json:"total"`
	ByCategory        []GroupCount `json:"byCategory"`
	ByRegion          []GroupCount `json:"byRegion"`
	AverageConfidence float64      `json:"averageConfidence"`
}
