package watcher

import (
	"fmt"
	"sort"

	"github.com/blackwell-systems/laborwatch/internal/insight"
)

// Compare detects changes in firing rules between two watch states and
// returns alerts: warnings for failed scopes and newly firing high-confidence
// rules, info for other newly firing rules and for rules that stopped firing.
func Compare(prev, curr *WatchState) []Alert {
	var alerts []Alert

	alerts = append(alerts, compareFailures(curr)...)
	alerts = append(alerts, compareFiring(prev, curr)...)
	alerts = append(alerts, compareCleared(prev, curr)...)

	return alerts
}

// compareFailures reports scopes whose generation failed.
func compareFailures(curr *WatchState) []Alert {
	scopes := make([]insight.Scope, 0, len(curr.Failures))
	for s := range curr.Failures {
		scopes = append(scopes, s)
	}
	sort.Slice(scopes, func(i, j int) bool { return scopeLabel(scopes[i]) < scopeLabel(scopes[j]) })

	alerts := make([]Alert, 0, len(scopes))
	for _, s := range scopes {
		alerts = append(alerts, Alert{
			Level:   "warning",
			Title:   fmt.Sprintf("Generation failed: %s", scopeLabel(s)),
			Message: curr.Failures[s].Error(),
			Time:    curr.Timestamp,
		})
	}
	return alerts
}

// compareFiring reports rules that fire now but did not last cycle.
func compareFiring(prev, curr *WatchState) []Alert {
	fresh := newlyFiring(prev, curr)
	alerts := make([]Alert, 0, len(fresh))
	for i := range fresh {
		in := fresh[i]
		level := "info"
		if in.Confidence >= insight.ConfidenceGood {
			level = "warning"
		}
		alerts = append(alerts, Alert{
			Level:   level,
			Title:   fmt.Sprintf("%s: %s", in.Category.Label(), scopeLabel(scopeOf(in))),
			Message: fmt.Sprintf("%s (confidence %.0f%%)", in.Signal, in.Confidence*100),
			Time:    curr.Timestamp,
			Insight: &in,
		})
	}
	return alerts
}

// compareCleared reports rules that fired last cycle but no longer do.
func compareCleared(prev, curr *WatchState) []Alert {
	var cleared []insight.Insight
	for k, in := range prev.Firing {
		if _, ok := curr.Firing[k]; !ok {
			cleared = append(cleared, in)
		}
	}
	sortInsights(cleared)

	alerts := make([]Alert, 0, len(cleared))
	for _, in := range cleared {
		alerts = append(alerts, Alert{
			Level:   "info",
			Title:   fmt.Sprintf("Signal cleared: %s", scopeLabel(scopeOf(in))),
			Message: fmt.Sprintf("Rule %s no longer fires", in.RuleID),
			Time:    curr.Timestamp,
		})
	}
	return alerts
}

func scopeOf(in insight.Insight) insight.Scope {
	return insight.Scope{Company: in.Company, Region: in.Region, Function: in.Function}
}

func scopeLabel(s insight.Scope) string {
	return fmt.Sprintf("%s/%s/%s", s.Company, s.Region, s.Function)
}
