package insight

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func validRule(id string) Rule {
	return Rule{
		ID:   id,
		Name: "Test rule " + id,
		Conditions: []Condition{
			{Metric: "fx_volatility", Operator: OpGreater, Value: 15},
		},
		Output: Output{
			Signal:         "signal",
			Interpretation: "interpretation",
			Recommendation: "recommendation",
			Category:       CategoryMacroEconomic,
		},
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, 8, c.Len())
	assert.Equal(t, DefaultCatalogVersion, c.Version())

	r, ok := c.Rule("rule_1")
	require.True(t, ok)
	assert.Equal(t, "High Inflation Retention Risk", r.Name)

	_, ok = c.Rule("rule_99")
	assert.False(t, ok)
}

func TestNewCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Rule)
		wantErr error
	}{
		{"missing id", func(r *Rule) { r.ID = "" }, ErrMalformedRule},
		{"missing name", func(r *Rule) { r.Name = " " }, ErrMalformedRule},
		{"no conditions", func(r *Rule) { r.Conditions = nil }, ErrMalformedRule},
		{"missing metric", func(r *Rule) { r.Conditions[0].Metric = "" }, ErrMalformedRule},
		{"bad operator", func(r *Rule) { r.Conditions[0].Operator = "=>" }, ErrUnsupportedOperator},
		{"missing signal", func(r *Rule) { r.Output.Signal = "" }, ErrMalformedRule},
		{"missing interpretation", func(r *Rule) { r.Output.Interpretation = "" }, ErrMalformedRule},
		{"missing recommendation", func(r *Rule) { r.Output.Recommendation = "" }, ErrMalformedRule},
		{"unknown category", func(r *Rule) { r.Output.Category = "WEATHER" }, ErrMalformedRule},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := validRule("r1")
			tc.mutate(&r)
			_, err := NewCatalog("test", r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
		})
	}
}

func TestNewCatalog_DuplicateID(t *testing.T) {
	_, err := NewCatalog("test", validRule("a"), validRule("a"))
	assert.ErrorIs(t, err, ErrMalformedRule)
}

func TestNewCatalog_IsolatedFromCaller(t *testing.T) {
	rules := []Rule{validRule("a")}
	c, err := NewCatalog("test", rules...)
	require.NoError(t, err)

	rules[0].Conditions[0].Value = 999
	got := c.Rules()
	assert.Equal(t, float64(15), got[0].Conditions[0].Value)

	got[0].Name = "changed"
	assert.Equal(t, "Test rule a", c.Rules()[0].Name)
}

func TestParseCatalog_YAML(t *testing.T) {
	data := []byte(`
version: "2025.01"
rules:
  - id: ai_surge
    name: AI Talent Wage Surge
    conditions:
      - metric: ai_wage_growth
        operator: ">"
        value: 20
        function: AI
    output:
      signal: AI executive compensation growing rapidly
      interpretation: Sourcing costs rising
      recommendation: Explore nearshore hiring
      category: WAGE_PRESSURE
`)
	c, err := ParseCatalog(data)
	require.NoError(t, err)
	assert.Equal(t, "2025.01", c.Version())

	want := []Rule{{
		ID:   "ai_surge",
		Name: "AI Talent Wage Surge",
		Conditions: []Condition{
			{Metric: "ai_wage_growth", Operator: OpGreater, Value: 20, Function: "AI"},
		},
		Output: Output{
			Signal:         "AI executive compensation growing rapidly",
			Interpretation: "Sourcing costs rising",
			Recommendation: "Explore nearshore hiring",
			Category:       CategoryWagePressure,
		},
	}}
	if diff := cmp.Diff(want, c.Rules()); diff != "" {
		t.Errorf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCatalog_RejectsInvalid(t *testing.T) {
	_, err := ParseCatalog([]byte("version: x\nrules: []\n"))
	assert.ErrorIs(t, err, ErrMalformedRule)

	_, err = ParseCatalog([]byte(`
rules:
  - id: r
    name: r
    conditions:
      - {metric: m, operator: "~", value: 1}
    output: {signal: s, interpretation: i, recommendation: r, category: MACRO_ECONOMIC}
`))
	assert.ErrorIs(t, err, ErrUnsupportedOperator)

	_, err = ParseCatalog([]byte("rules: [unterminated"))
	assert.Error(t, err)
}

func TestLoadCatalogFile_RoundTrip(t *testing.T) {
	data, err := yaml.Marshal(DefaultCatalog())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	c, err := LoadCatalogFile(path)
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultCatalog().Rules(), c.Rules()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	_, err = LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
