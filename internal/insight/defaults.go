package insight

// DefaultCatalogVersion identifies the built-in rule set.
const DefaultCatalogVersion = "2024.11"

// DefaultRules is the built-in rule set.
var DefaultRules = []Rule{
	{
		ID:   "rule_1",
		Name: "High Inflation Retention Risk",
		Conditions: []Condition{
			{Metric: "inflation_rate", Operator: OpGreater, Value: 6, Region: AnyRegion},
			{Metric: "wage_growth", Operator: OpLess, Value: 3, Region: AnyRegion},
			{Metric: "executive_mobility", Operator: OpGreater, Value: 70, Region: AnyRegion},
		},
		Output: Output{
			Signal:         "High inflation with stagnant wage growth detected",
			Interpretation: "Real wages declining, creating retention risk for executives",
			Recommendation: "Implement FX-adjusted compensation policy and consider retention bonuses",
			Category:       CategoryWagePressure,
		},
	},
	{
		ID:   "rule_2",
		Name: "AI Talent Wage Surge",
		Conditions: []Condition{
			{Metric: "ai_wage_growth", Operator: OpGreater, Value: 20, Function: "AI"},
		},
		Output: Output{
			Signal:         "AI executive compensation growing rapidly",
			Interpretation: "Sourcing costs rising significantly in AI leadership roles",
			Recommendation: "Explore nearshore hiring options or accelerate internal AI leadership development",
			Category:       CategoryWagePressure,
		},
	},
	{
		ID:   "rule_3",
		Name: "Executive Hiring Freeze Opportunity",
		Conditions: []Condition{
			{Metric: "exec_job_postings", Operator: OpLess, Value: -20},
		},
		Output: Output{
			Signal:         "Executive hiring activity declining at competitors",
			Interpretation: "Reduced competition for senior talent acquisition",
			Recommendation: "Accelerate executive recruiting efforts while market is favorable",
			Category:       CategoryExecutiveTalent,
		},
	},
	{
		ID:   "rule_4",
		Name: "FX Volatility Impact",
		Conditions: []Condition{
			{Metric: "fx_volatility", Operator: OpGreater, Value: 15},
		},
		Output: Output{
			Signal:         "High foreign exchange volatility detected",
			Interpretation: "Currency fluctuations impacting real compensation values",
			Recommendation: "Review and adjust compensation bands to account for FX changes",
			Category:       CategoryMacroEconomic,
		},
	},
	{
		ID:   "rule_5",
		Name: "Layoff Wave Talent Availability",
		Conditions: []Condition{
			{Metric: "tech_layoffs", Operator: OpGreater, Value: 5000},
		},
		Output: Output{
			Signal:         "Major layoff wave in tech sector detected",
			Interpretation: "Increased availability of senior executive talent",
			Recommendation: "Activate proactive outreach campaigns for strategic roles",
			Category:       CategoryTalentSupply,
		},
	},
	{
		ID:   "rule_6",
		Name: "Emerging Market Executive Hub",
		Conditions: []Condition{
			{Metric: "exec_hiring_growth", Operator: OpGreater, Value: 30},
		},
		Output: Output{
			Signal:         "Rapid growth in executive hiring detected",
			Interpretation: "Region emerging as new executive talent hub",
			Recommendation: "Consider establishing regional presence and recruiting operations",
			Category:       CategoryTalentSupply,
		},
	},
	{
		ID:   "rule_7",
		Name: "Competitor Org Restructure",
		Conditions: []Condition{
			{Metric: "org_changes", Operator: OpGreater, Value: 10},
		},
		Output: Output{
			Signal:         "Significant organizational changes at competitors",
			Interpretation: "Potential talent displacement and strategic shifts",
			Recommendation: "Monitor affected executives for recruitment opportunities",
			Category:       CategoryExecutiveTalent,
		},
	},
	{
		ID:   "rule_8",
		Name: "Ads Talent Shortage",
		Conditions: []Condition{
			{Metric: "ads_exec_postings", Operator: OpLess, Value: -25, Function: "Ads"},
		},
		Output: Output{
			Signal:         "Decline in Ads executive job postings",
			Interpretation: "Limited market competition for Ads leadership talent",
			Recommendation: "Activate targeted EMEA/APAC executive outreach for Ads roles",
			Category:       CategoryExecutiveTalent,
		},
	},
}

// DefaultCatalog returns a catalog of the built-in rules.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultCatalogVersion, DefaultRules...)
	if err != nil {
		panic("insight: invalid built-in catalog: " + err.Error())
	}
	return c
}
