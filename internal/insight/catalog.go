package insight

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is an immutable, validated, ordered set of rules.
type Catalog struct {
	version string
	rules   []Rule
}

// catalogFile is the on-disk YAML layout of a rule catalog.
type catalogFile struct {
	Version string `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

// NewCatalog validates rules and returns a catalog preserving their order.
func NewCatalog(version string, rules ...Rule) (*Catalog, error) {
	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if err := ValidateRule(r); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("rule %d: %w: duplicate id %q", i, ErrMalformedRule, r.ID)
		}
		seen[r.ID] = true
	}

	owned := make([]Rule, len(rules))
	for i, r := range rules {
		owned[i] = r
		owned[i].Conditions = append([]Condition(nil), r.Conditions...)
	}
	return &Catalog{version: version, rules: owned}, nil
}

// ValidateRule checks that a rule can be evaluated.
func ValidateRule(r Rule) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrMalformedRule)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: %s: missing name", ErrMalformedRule, r.ID)
	}
	if len(r.Conditions) == 0 {
		return fmt.Errorf("%w: %s: no conditions", ErrMalformedRule, r.ID)
	}
	for i, c := range r.Conditions {
		if strings.TrimSpace(c.Metric) == "" {
			return fmt.Errorf("%w: %s: condition %d: missing metric", ErrMalformedRule, r.ID, i)
		}
		if !c.Operator.Valid() {
			return fmt.Errorf("%w: %s: condition %d: %q", ErrUnsupportedOperator, r.ID, i, string(c.Operator))
		}
	}
	switch {
	case strings.TrimSpace(r.Output.Signal) == "":
		return fmt.Errorf("%w: %s: missing signal", ErrMalformedRule, r.ID)
	case strings.TrimSpace(r.Output.Interpretation) == "":
		return fmt.Errorf("%w: %s: missing interpretation", ErrMalformedRule, r.ID)
	case strings.TrimSpace(r.Output.Recommendation) == "":
		return fmt.Errorf("%w: %s: missing recommendation", ErrMalformedRule, r.ID)
	case !r.Output.Category.Valid():
		return fmt.Errorf("%w: %s: unknown category %q", ErrMalformedRule, r.ID, string(r.Output.Category))
	}
	return nil
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("%w: catalog has no rules", ErrMalformedRule)
	}
	return NewCatalog(f.Version, f.Rules...)
}

// LoadCatalogFile reads a YAML catalog from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

// Version returns the catalog's declared version.
func (c *Catalog) Version() string {
	return c.version
}

// Len returns the number of rules.
func (c *Catalog) Len() int {
	return len(c.rules)
}

// Rules returns a copy of the rules in catalog order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Rule returns the rule with the given id.
func (c *Catalog) Rule(id string) (Rule, bool) {
	for _, r := range c.rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// MarshalYAML renders the catalog in the same layout ParseCatalog reads.
func (c *Catalog) MarshalYAML() (any, error) {
	return catalogFile{Version: c.version, Rules: c.rules}, nil
}
