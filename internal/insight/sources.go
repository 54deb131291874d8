package insight

// fallbackSources is cited for a category with no curated list.
var fallbackSources = []string{"Internal Research"}

var categorySources = map[Category][]string{
	CategoryExecutiveTalent: {"LinkedIn Talent Insights", "Crunchbase", "PitchBook"},
	CategoryWagePressure:    {"Levels.fyi", "Payscale", "Bureau of Labor Statistics"},
	CategoryMacroEconomic:   {"OECD", "World Bank", "Trading Economics", "IMF"},
	CategoryTalentSupply:    {"LinkedIn", "Layoffs.fyi", "TechCrunch", "Crunchbase"},
}

// Sources returns the citation labels for a category. The returned slice is
// a copy and may be modified by the caller.
func Sources(c Category) []string {
	src, ok := categorySources[c]
	if !ok {
		src = fallbackSources
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
