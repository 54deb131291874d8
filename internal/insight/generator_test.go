package insight

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory MetricStore that mimics the SQL store's
// region + Global semantics.
type memStore struct {
	data []Observation
	err  error
}

func (s *memStore) Query(_ context.Context, region string) ([]Observation, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []Observation
	for _, o := range s.data {
		if o.Region == region || o.Region == GlobalRegion {
			out = append(out, o)
		}
	}
	return out, nil
}

type countingRecorder struct {
	mu     sync.Mutex
	fired  []string
	errors int
	runs   int
}

func (r *countingRecorder) RuleFired(id string, _ Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired = append(r.fired, id)
}

func (r *countingRecorder) GenerationCompleted(_ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	if err != nil {
		r.errors++
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func singleRuleCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog("test", retentionRule())
	require.NoError(t, err)
	return c
}

func TestGenerate_EndToEnd(t *testing.T) {
	store := &memStore{data: retentionData(2.5)}
	now := time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC)
	g := NewGenerator(store, singleRuleCatalog(t),
		WithClock(func() time.Time { return now }),
		WithIDFunc(sequentialIDs()))

	got, err := g.Generate(context.Background(), Scope{Company: "Acme", Region: "EMEA", Function: "All"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	in := got[0]
	assert.Equal(t, CategoryWagePressure, in.Category)
	assert.Equal(t, 0.85, in.Confidence)
	assert.Equal(t, "id-1", in.ID)
	assert.Equal(t, "rule_1", in.RuleID)
	assert.Equal(t, "Acme", in.Company)
	assert.Equal(t, "EMEA", in.Region)
	assert.Equal(t, "All", in.Function)
	assert.Equal(t, now, in.CreatedAt)
	assert.Equal(t,
		"High inflation with stagnant wage growth detected (inflation_rate: 7.2, wage_growth: 2.5, executive_mobility: 75)",
		in.Signal)
	assert.Equal(t, "Real wages declining, creating retention risk for executives", in.Interpretation)
	assert.Equal(t, []string{"Levels.fyi", "Payscale", "Bureau of Labor Statistics"}, in.Sources)
}

func TestGenerate_NoMatch(t *testing.T) {
	g := NewGenerator(&memStore{data: retentionData(4.0)}, singleRuleCatalog(t))

	got, err := g.Generate(context.Background(), Scope{Company: "Acme", Region: "EMEA", Function: "All"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGenerate_CatalogOrderAndGlobalObservations(t *testing.T) {
	store := &memStore{data: []Observation{
		obs("org_changes", 15, "NA", t0),
		obs("exec_job_postings", -25, "NA", t0),
		obs("tech_layoffs", 12000, GlobalRegion, t0),
		obs("fx_volatility", 18, "LATAM", t0),
	}}
	rec := &countingRecorder{}
	g := NewGenerator(store, DefaultCatalog(), WithRecorder(rec))

	got, err := g.Generate(context.Background(), Scope{Company: "Acme", Region: "NA", Function: "All"})
	require.NoError(t, err)

	var ids []string
	for _, in := range got {
		ids = append(ids, in.RuleID)
	}
	assert.Equal(t, []string{"rule_3", "rule_5", "rule_7"}, ids)
	assert.Equal(t, ids, rec.fired)
	assert.Equal(t, 1, rec.runs)
}

func TestGenerate_UniqueIDs(t *testing.T) {
	store := &memStore{data: []Observation{
		obs("org_changes", 15, "NA", t0),
		obs("exec_job_postings", -25, "NA", t0),
	}}
	g := NewGenerator(store, DefaultCatalog())

	got, err := g.Generate(context.Background(), Scope{Company: "Acme", Region: "NA"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0].ID, got[1].ID)
	assert.Len(t, got[0].ID, 36)
}

func TestGenerate_StoreUnavailable(t *testing.T) {
	rec := &countingRecorder{}
	cause := errors.New("disk gone")
	g := NewGenerator(&memStore{err: cause}, DefaultCatalog(), WithRecorder(rec))

	got, err := g.Generate(context.Background(), Scope{Company: "Acme", Region: "NA"})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, rec.errors)
}

func TestGenerate_BroadEvidenceRaisesConfidence(t *testing.T) {
	data := append(retentionData(2.5),
		obs("inflation_rate", 6.5, GlobalRegion, t0.Add(-time.Hour)),
		obs("wage_growth", 2.8, GlobalRegion, t0.Add(-time.Hour)),
	)
	store := &memStore{data: data}

	scoped, err := NewGenerator(store, singleRuleCatalog(t)).
		Generate(context.Background(), Scope{Region: "EMEA"})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, 0.85, scoped[0].Confidence)

	broad, err := NewGenerator(store, singleRuleCatalog(t), WithEvidenceMode(EvidenceBroad)).
		Generate(context.Background(), Scope{Region: "EMEA"})
	require.NoError(t, err)
	require.Len(t, broad, 1)
	assert.Equal(t, 0.95, broad[0].Confidence)
}

func TestSignal(t *testing.T) {
	assert.Equal(t, "plain", Signal("plain", nil))
	assert.Equal(t, "s (a: 1, b: -2.5)",
		Signal("s", []Observation{{Metric: "a", Value: 1}, {Metric: "b", Value: -2.5}}))
}
