// Package insight provides the rule-based insight engine: threshold
// conditions over metric observations, rule matching, confidence scoring,
// source attribution, and insight generation.
package insight

import (
	"context"
	"errors"
	"time"
)

// Errors returned by the engine. Callers test with errors.Is.
var (
	// ErrStoreUnavailable is returned when observations cannot be retrieved.
	ErrStoreUnavailable = errors.New("metric store unavailable")

	// ErrUnsupportedOperator is returned when a condition uses an operator
	// outside the supported set.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrMalformedRule is returned when a rule fails catalog validation.
	ErrMalformedRule = errors.New("malformed rule")
)

// AnyRegion matches observations from every region.
const AnyRegion = "any"

// GlobalRegion is the region label for observations that apply everywhere.
// Stores include it in every regional query.
const GlobalRegion = "Global"

// Observation is one data point for one metric at one point in time.
type Observation struct {
	Metric    string    `json:"metric" yaml:"metric"`
	Value     float64   `json:"value" yaml:"value"`
	Region    string    `json:"region" yaml:"region"`
	Function  string    `json:"function,omitempty" yaml:"function,omitempty"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Condition is a single threshold predicate over a metric. Empty Region and
// Function mean unscoped.
type Condition struct {
	Metric   string   `json:"metric" yaml:"metric"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    float64  `json:"value" yaml:"value"`
	Region   string   `json:"region,omitempty" yaml:"region,omitempty"`
	Function string   `json:"function,omitempty" yaml:"function,omitempty"`
}

// Output is the text and category a rule emits when it fires.
type Output struct {
	Signal         string   `json:"signal" yaml:"signal"`
	Interpretation string   `json:"interpretation" yaml:"interpretation"`
	Recommendation string   `json:"recommendation" yaml:"recommendation"`
	Category       Category `json:"category" yaml:"category"`
}

// Rule fires when all of its conditions hold.
type Rule struct {
	ID         string      `json:"id" yaml:"id"`
	Name       string      `json:"name" yaml:"name"`
	Conditions []Condition `json:"conditions" yaml:"conditions"`
	Output     Output      `json:"output" yaml:"output"`
}

// Insight is a generated or persisted market signal with its interpretation.
type Insight struct {
	ID             string    `json:"id"`
	Signal         string    `json:"signal"`
	Interpretation string    `json:"interpretation"`
	Recommendation string    `json:"recommendation"`
	Sources        []string  `json:"sources"`
	Confidence     float64   `json:"confidence"`
	Company        string    `json:"company"`
	Function       string    `json:"function"`
	Region         string    `json:"region"`
	Initiative     string    `json:"initiative,omitempty"`
	Category       Category  `json:"category"`
	RuleID         string    `json:"ruleId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Scope identifies the organizational context insights are generated for.
type Scope struct {
	Company  string `json:"company" mapstructure:"company"`
	Region   string `json:"region" mapstructure:"region"`
	Function string `json:"function" mapstructure:"function"`
}

// MetricStore provides observations for a region. Implementations must return
// exact region matches and may include GlobalRegion observations.
type MetricStore interface {
	Query(ctx context.Context, region string) ([]Observation, error)
}
