package app

import (
	"fmt"

	"github.com/blackwell-systems/laborwatch/internal/feed"
	"github.com/blackwell-systems/laborwatch/internal/insight"
	"github.com/blackwell-systems/laborwatch/internal/output"
	"github.com/spf13/cobra"
)

var (
	insCompany    string
	insFunction   string
	insRegion     string
	insInitiative string
	insCategory   string
	insGenerated  bool
	insDetail     bool
	insID         string
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "List stored insights, newest first",
	Long: `List stored insights with optional filters. With --include-generated and
a --region, freshly generated insights for that scope are merged in.

Examples:
  laborwatch insights
  laborwatch insights --region EMEA --category WAGE_PRESSURE
  laborwatch insights --region NA --include-generated --detail
  laborwatch insights --id 3f2b9c1e-...`,
	RunE: runInsights,
}

func init() {
	insightsCmd.Flags().StringVar(&insCompany, "company", "", "Filter by company")
	insightsCmd.Flags().StringVar(&insFunction, "function", "", "Filter by function")
	insightsCmd.Flags().StringVar(&insRegion, "region", "", "Filter by region")
	insightsCmd.Flags().StringVar(&insInitiative, "initiative", "", "Filter by initiative")
	insightsCmd.Flags().StringVar(&insCategory, "category", "", "Filter by category code or label")
	insightsCmd.Flags().BoolVar(&insGenerated, "include-generated", false, "Merge freshly generated insights (requires --region)")
	insightsCmd.Flags().BoolVar(&insDetail, "detail", false, "Show full insight cards instead of a table")
	insightsCmd.Flags().StringVar(&insID, "id", "", "Show a single insight by id")
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, args []string) error {
	q := feed.Query{
		Company:          insCompany,
		Function:         insFunction,
		Region:           insRegion,
		Initiative:       insInitiative,
		IncludeGenerated: insGenerated,
	}
	if insCategory != "" {
		cat, err := insight.ParseCategory(insCategory)
		if err != nil {
			return err
		}
		q.Category = cat
	}

	e, err := setup(nil)
	if err != nil {
		return err
	}
	defer e.Close()

	if insID != "" {
		return showInsight(cmd, e, insID)
	}

	res, err := e.feed.List(cmd.Context(), q)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(out, res)
	}
	if res.GeneratedError != "" {
		fmt.Fprintln(out, output.StyleWarning.Render(" Generated insights unavailable: "+res.GeneratedError))
	}
	if len(res.Insights) == 0 {
		fmt.Fprintln(out, output.StyleMuted.Render("No insights match. Try 'laborwatch seed' or widen the filters."))
		return nil
	}
	if insDetail {
		for _, in := range res.Insights {
			fmt.Fprintln(out, output.RenderInsight(in))
		}
		return nil
	}
	output.InsightTable(res.Insights).Fprint(out)
	fmt.Fprintln(out, output.StyleMuted.Render(fmt.Sprintf(" %d insight(s)", len(res.Insights))))
	return nil
}

func showInsight(cmd *cobra.Command, e *env, id string) error {
	in, err := e.db.GetInsight(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("loading insight: %w", err)
	}
	if in == nil {
		return fmt.Errorf("insight %q not found", id)
	}
	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), in)
	}
	fmt.Fprintln(cmd.OutOrStdout(), output.RenderInsight(*in))
	return nil
}
