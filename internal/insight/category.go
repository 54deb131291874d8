package insight

import (
	"fmt"
	"strings"
)

// Category classifies an insight. The set is closed.
type Category string

// Insight categories.
const (
	CategoryExecutiveTalent Category = "EXECUTIVE_TALENT"
	CategoryWagePressure    Category = "WAGE_PRESSURE"
	CategoryMacroEconomic   Category = "MACRO_ECONOMIC"
	CategoryTalentSupply    Category = "TALENT_SUPPLY"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryExecutiveTalent,
	CategoryWagePressure,
	CategoryMacroEconomic,
	CategoryTalentSupply,
}

var categoryLabels = map[Category]string{
	CategoryExecutiveTalent: "Executive Talent Trends",
	CategoryWagePressure:    "Wage Pressures & Inflation",
	CategoryMacroEconomic:   "Macroeconomic Signals",
	CategoryTalentSupply:    "Talent Supply Shifts",
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human-readable name of the category.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// ParseCategory accepts either a category code ("WAGE_PRESSURE") or its
// label ("Wage Pressures & Inflation"), case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, c.Label()) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}
