package store

import (
	"context"
	"fmt"
	"time"

	"github.com/blackwell-systems/laborwatch/internal/insight"
	"github.com/google/uuid"
)

var seedObservedAt = time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

// SeedObservations is the sample metric data loaded by Seed.
var SeedObservations = []insight.Observation{
	{Metric: "inflation_rate", Value: 7.2, Region: "EMEA", Timestamp: seedObservedAt},
	{Metric: "wage_growth", Value: 2.5, Region: "EMEA", Timestamp: seedObservedAt},
	{Metric: "executive_mobility", Value: 75, Region: "EMEA", Timestamp: seedObservedAt},

	{Metric: "ai_wage_growth", Value: 28, Region: "APAC", Function: "AI", Timestamp: seedObservedAt},
	{Metric: "ai_wage_growth", Value: 22, Region: "NA", Function: "AI", Timestamp: seedObservedAt},

	{Metric: "exec_job_postings", Value: -25, Region: "EMEA", Timestamp: seedObservedAt},
	{Metric: "exec_job_postings", Value: -15, Region: "NA", Timestamp: seedObservedAt},

	{Metric: "fx_volatility", Value: 18, Region: "LATAM", Timestamp: seedObservedAt},
	{Metric: "fx_volatility", Value: 12, Region: "EMEA", Timestamp: seedObservedAt},

	{Metric: "tech_layoffs", Value: 12000, Region: "NA", Timestamp: seedObservedAt.AddDate(0, -1, 0)},
	{Metric: "tech_layoffs", Value: 3500, Region: "EMEA", Timestamp: seedObservedAt.AddDate(0, -1, 0)},

	{Metric: "exec_hiring_growth", Value: 35, Region: "APAC", Timestamp: seedObservedAt},
	{Metric: "exec_hiring_growth", Value: 42, Region: "LATAM", Timestamp: seedObservedAt},

	{Metric: "org_changes", Value: 15, Region: "NA", Timestamp: seedObservedAt},
	{Metric: "org_changes", Value: 8, Region: "EMEA", Timestamp: seedObservedAt},

	{Metric: "ads_exec_postings", Value: -30, Region: "EMEA", Function: "Ads", Timestamp: seedObservedAt},
	{Metric: "ads_exec_postings", Value: -22, Region: "APAC", Function: "Ads", Timestamp: seedObservedAt},

	{Metric: "inflation_rate", Value: 5.8, Region: "NA", Timestamp: seedObservedAt},
	{Metric: "inflation_rate", Value: 6.5, Region: "LATAM", Timestamp: seedObservedAt},
	{Metric: "wage_growth", Value: 3.2, Region: "NA", Timestamp: seedObservedAt},
	{Metric: "wage_growth", Value: 2.8, Region: "LATAM", Timestamp: seedObservedAt},
}

// seedInsight is a curated insight without its company and id, which are
// filled in at seed time.
type seedInsight struct {
	signal, interpretation, recommendation string
	sources                                []string
	confidence                             float64
	function, region, initiative           string
	category                               insight.Category
	createdAt                              string
}

var seedInsights = []seedInsight{
	{
		signal:         "AI executive compensation growing 28% YoY in APAC region",
		interpretation: "Sourcing costs rising significantly in AI leadership roles as demand outpaces supply",
		recommendation: "Explore nearshore hiring options in Southeast Asia or accelerate internal AI leadership development programs",
		sources:        []string{"Levels.fyi", "Payscale", "LinkedIn Talent Insights"},
		confidence:     0.92, function: "AI", region: "APAC", initiative: "AI Expansion",
		category: insight.CategoryWagePressure, createdAt: "2024-11-20T10:00:00Z",
	},
	{
		signal:         "Executive job postings declined 25% across major streaming competitors in EMEA",
		interpretation: "Reduced competition for senior talent acquisition during market consolidation phase",
		recommendation: "Accelerate executive recruiting efforts while market is favorable, particularly for Content and Product leadership",
		sources:        []string{"LinkedIn", "Crunchbase", "PitchBook"},
		confidence:     0.88, function: "Product", region: "EMEA",
		category: insight.CategoryExecutiveTalent, createdAt: "2024-11-19T14:30:00Z",
	},
	{
		signal:         "LATAM foreign exchange volatility reached 18%, highest in 3 years",
		interpretation: "Currency fluctuations creating 12-15% variance in real compensation values for executives",
		recommendation: "Implement quarterly FX-adjusted compensation reviews and consider USD-denominated contracts for VP+ roles",
		sources:        []string{"OECD", "Trading Economics", "World Bank"},
		confidence:     0.95, function: "Content Ops", region: "LATAM",
		category: insight.CategoryMacroEconomic, createdAt: "2024-11-18T09:15:00Z",
	},
	{
		signal:         "12,000+ tech executives displaced in North America due to recent layoff wave",
		interpretation: "Unprecedented availability of senior executive talent with streaming, ads, and AI experience",
		recommendation: "Activate proactive outreach campaigns for strategic VP and C-suite roles, focusing on former Disney+, Hulu, and Prime Video leaders",
		sources:        []string{"Layoffs.fyi", "TechCrunch", "LinkedIn"},
		confidence:     0.90, function: "Ads", region: "NA", initiative: "Ad-tier Expansion",
		category: insight.CategoryTalentSupply, createdAt: "2024-11-17T16:45:00Z",
	},
	{
		signal:         "Executive hiring activity growing 42% in LATAM, outpacing all other regions",
		interpretation: "LATAM emerging as new executive talent hub with strong technical and business leadership pipeline",
		recommendation: "Consider establishing São Paulo and Mexico City as regional executive recruiting hubs with dedicated talent teams",
		sources:        []string{"LinkedIn Talent Insights", "Crunchbase", "PitchBook"},
		confidence:     0.86, function: "Product", region: "LATAM", initiative: "Global Expansion",
		category: insight.CategoryTalentSupply, createdAt: "2024-11-16T11:20:00Z",
	},
	{
		signal:         "EMEA inflation at 7.2% with wage growth lagging at 2.5% and executive mobility index at 75/100",
		interpretation: "Real wages declining 4.7% creating significant retention risk for senior executives in key markets",
		recommendation: "Implement emergency FX-adjusted compensation policy for UK, Germany, and Netherlands executives. Consider retention bonuses for critical roles.",
		sources:        []string{"OECD", "Bureau of Labor Statistics", "LinkedIn"},
		confidence:     0.93, function: "Content Ops", region: "EMEA",
		category: insight.CategoryWagePressure, createdAt: "2024-11-15T13:00:00Z",
	},
	{
		signal:         "15 major organizational restructures announced by streaming competitors in Q4",
		interpretation: "Significant talent displacement expected with potential strategic pivots away from certain content verticals",
		recommendation: "Monitor affected executives at Disney, Paramount, and Warner Bros Discovery for recruitment opportunities in Q1 2025",
		sources:        []string{"Crunchbase", "TechCrunch", "The Information"},
		confidence:     0.85, function: "Content Ops", region: "NA",
		category: insight.CategoryExecutiveTalent, createdAt: "2024-11-14T15:30:00Z",
	},
	{
		signal:         "Ads executive job postings down 30% in EMEA despite industry growth",
		interpretation: "Limited market competition for senior Ads leadership talent as competitors scale back",
		recommendation: "Activate targeted EMEA executive outreach for Ads roles, particularly in UK and Germany where ad-tier adoption is accelerating",
		sources:        []string{"LinkedIn", "PitchBook", "eMarketer"},
		confidence:     0.89, function: "Ads", region: "EMEA", initiative: "Ad-tier Expansion",
		category: insight.CategoryExecutiveTalent, createdAt: "2024-11-13T10:45:00Z",
	},
	{
		signal:         "APAC tech executive compensation grew 35% YoY, driven by AI and streaming investments",
		interpretation: "Intense competition for senior tech leadership in Asia-Pacific region",
		recommendation: "Develop APAC-specific retention packages and accelerate equity vesting for critical AI and Product executives",
		sources:        []string{"Levels.fyi", "LinkedIn Talent Insights", "Mercer"},
		confidence:     0.91, function: "AI", region: "APAC", initiative: "AI Expansion",
		category: insight.CategoryWagePressure, createdAt: "2024-11-12T14:15:00Z",
	},
	{
		signal:         "Product executive talent pool expanded 25% in APAC following tech sector adjustments",
		interpretation: "Increased availability of senior product leaders with streaming, social, and e-commerce experience",
		recommendation: "Prioritize APAC product executive recruitment for subscriber growth and localization initiatives",
		sources:        []string{"LinkedIn", "Crunchbase", "TechInAsia"},
		confidence:     0.87, function: "Product", region: "APAC", initiative: "Global Expansion",
		category: insight.CategoryTalentSupply, createdAt: "2024-11-11T09:30:00Z",
	},
}

// SeedInsights returns the curated sample insights attributed to company,
// each with a fresh id.
func SeedInsights(company string) []insight.Insight {
	out := make([]insight.Insight, len(seedInsights))
	for i, s := range seedInsights {
		createdAt, err := time.Parse(time.RFC3339, s.createdAt)
		if err != nil {
			panic(fmt.Sprintf("store: bad seed timestamp %q", s.createdAt))
		}
		out[i] = insight.Insight{
			ID:             uuid.NewString(),
			Signal:         s.signal,
			Interpretation: s.interpretation,
			Recommendation: s.recommendation,
			Sources:        append([]string(nil), s.sources...),
			Confidence:     s.confidence,
			Company:        company,
			Function:       s.function,
			Region:         s.region,
			Initiative:     s.initiative,
			Category:       s.category,
			CreatedAt:      createdAt,
		}
	}
	return out
}

// Reset deletes all observations and insights.
func (db *DB) Reset(ctx context.Context) error {
	for _, stmt := range []string{"DELETE FROM observations", "DELETE FROM insights"} {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Seed replaces all stored data with the sample observations and insights.
func (db *DB) Seed(ctx context.Context, company string) error {
	if err := db.Reset(ctx); err != nil {
		return fmt.Errorf("clearing tables: %w", err)
	}
	if err := db.InsertObservations(ctx, "seed", SeedObservations); err != nil {
		return fmt.Errorf("seeding observations: %w", err)
	}
	if err := db.InsertInsights(ctx, SeedInsights(company)); err != nil {
		return fmt.Errorf("seeding insights: %w", err)
	}
	return nil
}
