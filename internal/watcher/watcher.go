// Package watcher periodically regenerates insights for a set of scopes,
// persists rules that newly fire, and emits alerts.
package watcher

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/blackwell-systems/laborwatch/internal/insight"
	"github.com/blackwell-systems/laborwatch/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentScopes bounds parallel generation within one cycle.
const maxConcurrentScopes = 4

// Generator produces insights for a scope.
type Generator interface {
	Generate(ctx context.Context, scope insight.Scope) ([]insight.Insight, error)
}

// Persister stores newly firing insights.
type Persister interface {
	InsertInsights(ctx context.Context, batch []insight.Insight) error
}

// Key identifies a firing rule within a scope.
type Key struct {
	RuleID   string
	Company  string
	Region   string
	Function string
}

func keyOf(in insight.Insight) Key {
	return Key{RuleID: in.RuleID, Company: in.Company, Region: in.Region, Function: in.Function}
}

// WatchState captures the rules firing across all scopes at one point in time.
type WatchState struct {
	Timestamp time.Time
	Firing    map[Key]insight.Insight
	Failures  map[insight.Scope]error
}

// Alert represents a notable event detected by the watcher.
type Alert struct {
	Level   string // "info", "warning", "critical"
	Title   string
	Message string
	Time    time.Time
	Insight *insight.Insight
}

// Watcher regenerates insights at a regular interval and emits alerts when
// the set of firing rules changes.
type Watcher struct {
	generator     Generator
	persister     Persister
	scopes        []insight.Scope
	interval      time.Duration
	previous      *WatchState
	alertFn       func(Alert)     // callback for emitting alerts
	lastAlertKeys map[string]bool // dedup: suppress repeated identical alerts
	unpersisted   map[Key]bool    // firing keys whose insert failed; retried while still firing
	log           logger.Logger
	now           func() time.Time
}

// New creates a Watcher over the given scopes. persister may be nil, in
// which case newly firing insights are alerted on but not stored.
func New(gen Generator, persister Persister, scopes []insight.Scope, interval time.Duration, alertFn func(Alert)) *Watcher {
	return &Watcher{
		generator:     gen,
		persister:     persister,
		scopes:        scopes,
		interval:      interval,
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
		unpersisted:   make(map[Key]bool),
		log:           logger.Nop(),
		now:           time.Now,
	}
}

// SetLogger sets the watcher's logger.
func (w *Watcher) SetLogger(l logger.Logger) {
	w.log = l
}

// Run performs an immediate check, then checks at every interval. Blocks
// until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.emit(w.Check(ctx))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.emit(w.Check(ctx))
		}
	}
}

func (w *Watcher) emit(alerts []Alert) {
	if w.alertFn == nil {
		return
	}
	for _, a := range alerts {
		w.alertFn(a)
	}
}

// Check performs a single cycle: snapshots every scope, persists insights
// that were not firing in the previous cycle, and returns the alerts.
// Identical alerts are suppressed until the underlying data changes.
func (w *Watcher) Check(ctx context.Context) []Alert {
	curr := w.Snapshot(ctx)

	prev := w.previous
	if prev == nil {
		prev = &WatchState{Firing: map[Key]insight.Insight{}}
	}

	// A failed scope keeps its previous firing set so that a transient
	// failure does not read as every rule clearing and then refiring.
	for k, in := range prev.Firing {
		if _, failed := curr.Failures[insight.Scope{Company: k.Company, Region: k.Region, Function: k.Function}]; failed {
			curr.Firing[k] = in
		}
	}

	raw := Compare(prev, curr)

	if w.persister != nil {
		if fresh := w.pendingInsights(prev, curr); len(fresh) > 0 {
			err := w.persister.InsertInsights(ctx, fresh)
			w.unpersisted = make(map[Key]bool)
			if err != nil {
				for _, in := range fresh {
					w.unpersisted[keyOf(in)] = true
				}
				w.log.Error(ctx, "persisting watched insights failed", logger.Error(err))
				raw = append(raw, Alert{
					Level:   "warning",
					Title:   "Persist failed",
					Message: fmt.Sprintf("Could not store %d new insight(s): %v", len(fresh), err),
					Time:    curr.Timestamp,
				})
			}
		}
	}

	// Deduplicate: suppress alerts with the same title+message as last cycle.
	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys

	w.previous = curr

	w.log.Debug(ctx, "watch cycle complete",
		logger.Int("firing", len(curr.Firing)),
		logger.Int("failures", len(curr.Failures)),
		logger.Int("alerts", len(alerts)))
	return alerts
}

// Snapshot generates insights for every scope concurrently. A failing scope
// is recorded in Failures and does not affect the others.
func (w *Watcher) Snapshot(ctx context.Context) *WatchState {
	state := &WatchState{
		Timestamp: w.now(),
		Firing:    make(map[Key]insight.Insight),
		Failures:  make(map[insight.Scope]error),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentScopes)
	for _, scope := range w.scopes {
		scope := scope
		g.Go(func() error {
			insights, err := w.generator.Generate(gctx, scope)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				state.Failures[scope] = err
				return nil
			}
			for _, in := range insights {
				state.Firing[keyOf(in)] = in
			}
			return nil
		})
	}
	_ = g.Wait()

	return state
}

// pendingInsights returns the newly firing insights plus any earlier ones
// whose insert failed and that are still firing.
func (w *Watcher) pendingInsights(prev, curr *WatchState) []insight.Insight {
	out := newlyFiring(prev, curr)
	for k := range w.unpersisted {
		in, firing := curr.Firing[k]
		if _, seen := prev.Firing[k]; firing && seen {
			out = append(out, in)
		}
	}
	sortInsights(out)
	return out
}

// newlyFiring returns insights firing in curr but not prev, in a stable
// order.
func newlyFiring(prev, curr *WatchState) []insight.Insight {
	var out []insight.Insight
	for k, in := range curr.Firing {
		if _, ok := prev.Firing[k]; !ok {
			out = append(out, in)
		}
	}
	sortInsights(out)
	return out
}

func sortInsights(s []insight.Insight) {
	sort.Slice(s, func(i, j int) bool {
		a, b := keyOf(s[i]), keyOf(s[j])
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		if a.Function != b.Function {
			return a.Function < b.Function
		}
		if a.Company != b.Company {
			return a.Company < b.Company
		}
		return a.RuleID < b.RuleID
	})
}
