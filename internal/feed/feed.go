// Package feed merges persisted insights with freshly generated ones.
package feed

import (
	"context"
	"fmt"
	"sort"

	"github.com/blackwell-systems/laborwatch/internal/insight"
	"github.com/blackwell-systems/laborwatch/internal/store"
	"github.com/blackwell-systems/laborwatch/pkg/logger"
)

// DefaultFunction is the functional scope used for generation when a query
// does not name one.
const DefaultFunction = "All"

// InsightStore is the persisted side of the feed.
type InsightStore interface {
	ListInsights(ctx context.Context, f store.InsightFilter) ([]insight.Insight, error)
}

// Generator produces insights for a scope.
type Generator interface {
	Generate(ctx context.Context, scope insight.Scope) ([]insight.Insight, error)
}

// Query selects insights for the feed. Empty fields match everything.
type Query struct {
	Company          string
	Function         string
	Region           string
	Initiative       string
	Category         insight.Category
	IncludeGenerated bool
}

// Result is a merged, newest-first insight list.
type Result struct {
	Insights         []insight.Insight `json:"data"`
	GeneratedEnabled bool              `json:"generatedEnabled"`
	GeneratedError   string            `json:"generatedError,omitempty"`
}

// Feed serves insight lists.
type Feed struct {
	store          InsightStore
	generator      Generator
	defaultCompany string
	log            logger.Logger
}

// New returns a Feed. generator may be nil, in which case generated
// insights are never included.
func New(st InsightStore, gen Generator, defaultCompany string, log logger.Logger) *Feed {
	if log == nil {
		log = logger.Nop()
	}
	return &Feed{store: st, generator: gen, defaultCompany: defaultCompany, log: log}
}

// List returns persisted insights matching q, merged with generated ones
// when q.IncludeGenerated is set and a region is given. A generation failure
// degrades to persisted insights only.
func (f *Feed) List(ctx context.Context, q Query) (*Result, error) {
	filter := store.InsightFilter{
		Company:    q.Company,
		Function:   q.Function,
		Region:     q.Region,
		Initiative: q.Initiative,
		Category:   q.Category,
	}

	persisted, err := f.store.ListInsights(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing insights: %w", err)
	}

	res := &Result{Insights: persisted}
	if !q.IncludeGenerated || q.Region == "" || f.generator == nil {
		return res, nil
	}
	res.GeneratedEnabled = true

	scope := insight.Scope{
		Company:  q.Company,
		Region:   q.Region,
		Function: q.Function,
	}
	if scope.Company == "" {
		scope.Company = f.defaultCompany
	}
	if scope.Function == "" {
		scope.Function = DefaultFunction
	}

	generated, err := f.generator.Generate(ctx, scope)
	if err != nil {
		f.log.Warn(ctx, "generated insights unavailable, serving persisted only",
			logger.String("region", scope.Region), logger.Error(err))
		res.GeneratedError = err.Error()
		return res, nil
	}

	merged := make([]insight.Insight, 0, len(persisted)+len(generated))
	merged = append(merged, persisted...)
	for _, in := range generated {
		if filter.Matches(in) {
			merged = append(merged, in)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	res.Insights = merged
	return res, nil
}
