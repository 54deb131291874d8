package insight

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blackwell-systems/laborwatch/pkg/logger"
	"github.com/google/uuid"
)

// Recorder receives generation telemetry. Implementations must be safe for
// concurrent use.
type Recorder interface {
	RuleFired(ruleID string, category Category)
	GenerationCompleted(elapsed time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) RuleFired(string, Category)                {}
func (nopRecorder) GenerationCompleted(time.Duration, error) {}

// Generator evaluates a catalog against stored observations and assembles
// insights. It holds no mutable state and may be shared across goroutines.
type Generator struct {
	store    MetricStore
	catalog  *Catalog
	matcher  Matcher
	log      logger.Logger
	recorder Recorder
	now      func() time.Time
	newID    func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithEvidenceMode sets how evidence is collected for fired rules.
func WithEvidenceMode(mode EvidenceMode) Option {
	return func(g *Generator) { g.matcher = NewMatcher(mode) }
}

// WithLogger sets the generator's logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// WithRecorder sets the telemetry recorder.
func WithRecorder(r Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithIDFunc overrides insight ID generation.
func WithIDFunc(newID func() string) Option {
	return func(g *Generator) { g.newID = newID }
}

// NewGenerator returns a Generator over store and catalog.
func NewGenerator(store MetricStore, catalog *Catalog, opts ...Option) *Generator {
	g := &Generator{
		store:    store,
		catalog:  catalog,
		matcher:  NewMatcher(EvidenceScoped),
		log:      logger.Nop(),
		recorder: nopRecorder{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Catalog returns the generator's rule catalog.
func (g *Generator) Catalog() *Catalog {
	return g.catalog
}

// Generate retrieves observations for the scope's region and returns one
// insight per firing rule, in catalog order. No firing rules yields an empty
// slice. A store failure is returned wrapped in ErrStoreUnavailable.
func (g *Generator) Generate(ctx context.Context, scope Scope) ([]Insight, error) {
	start := time.Now()

	observations, err := g.store.Query(ctx, scope.Region)
	if err != nil {
		err = fmt.Errorf("%w: querying region %q: %w", ErrStoreUnavailable, scope.Region, err)
		g.recorder.GenerationCompleted(time.Since(start), err)
		g.log.Error(ctx, "insight generation failed",
			logger.String("region", scope.Region), logger.Error(err))
		return nil, err
	}

	createdAt := g.now().UTC()
	insights := make([]Insight, 0)
	for _, rule := range g.catalog.rules {
		m := g.matcher.Match(rule, observations)
		if !m.Fired {
			continue
		}
		insights = append(insights, g.build(rule, m.Evidence, scope, createdAt))
		g.recorder.RuleFired(rule.ID, rule.Output.Category)
		g.log.Debug(ctx, "rule fired",
			logger.String("rule", rule.ID), logger.Int("evidence", len(m.Evidence)))
	}

	g.recorder.GenerationCompleted(time.Since(start), nil)
	g.log.Info(ctx, "insights generated",
		logger.String("company", scope.Company),
		logger.String("region", scope.Region),
		logger.String("function", scope.Function),
		logger.Int("observations", len(observations)),
		logger.Int("insights", len(insights)))
	return insights, nil
}

func (g *Generator) build(rule Rule, evidence []Observation, scope Scope, createdAt time.Time) Insight {
	return Insight{
		ID:             g.newID(),
		Signal:         Signal(rule.Output.Signal, evidence),
		Interpretation: rule.Output.Interpretation,
		Recommendation: rule.Output.Recommendation,
		Sources:        Sources(rule.Output.Category),
		Confidence:     Score(len(evidence)),
		Company:        scope.Company,
		Function:       scope.Function,
		Region:         scope.Region,
		Category:       rule.Output.Category,
		RuleID:         rule.ID,
		CreatedAt:      createdAt,
	}
}

// Signal appends a "metric: value" rendering of the evidence to a signal
// template, e.g. "High FX volatility (fx_volatility: 18)".
func Signal(template string, evidence []Observation) string {
	if len(evidence) == 0 {
		return template
	}
	parts := make([]string, len(evidence))
	for i, obs := range evidence {
		parts[i] = obs.Metric + ": " + strconv.FormatFloat(obs.Value, 'f', -1, 64)
	}
	return template + " (" + strings.Join(parts, ", ") + ")"
}
