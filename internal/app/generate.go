package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/blackwell-systems/laborwatch/internal/insight"
	"github.com/blackwell-systems/laborwatch/internal/output"
	"github.com/spf13/cobra"
)

var (
	genCompany  string
	genRegion   string
	genFunction string
	genPersist  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Evaluate the rule catalog for a region",
	Long: `Run every rule in the catalog against the stored observations for one
region and print the insights that fire. Nothing is stored unless --persist
is given.

Examples:
  laborwatch generate --region NA
  laborwatch generate --region EMEA --function Ads
  laborwatch generate --region LATAM --persist --json`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genCompany, "company", "", "Company to attribute insights to (default: config company)")
	generateCmd.Flags().StringVar(&genRegion, "region", "", "Region to evaluate (required)")
	generateCmd.Flags().StringVar(&genFunction, "function", "", "Function to attribute insights to (default: All)")
	generateCmd.Flags().BoolVar(&genPersist, "persist", false, "Store the generated insights")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if genRegion == "" {
		return fmt.Errorf("--region is required")
	}
	e, err := setup(nil)
	if err != nil {
		return err
	}
	defer e.Close()

	scope := e.scope(genCompany, genRegion, genFunction)
	insights, err := e.gen.Generate(cmd.Context(), scope)
	if errors.Is(err, insight.ErrStoreUnavailable) {
		return fmt.Errorf("observation store unavailable: %w", err)
	}
	if err != nil {
		return fmt.Errorf("generating insights: %w", err)
	}

	if genPersist && len(insights) > 0 {
		if err := e.db.InsertInsights(cmd.Context(), insights); err != nil {
			return fmt.Errorf("storing insights: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(out, insights)
	}
	renderGenerated(out, scope, insights, e.catalog.Len())
	return nil
}

func renderGenerated(w io.Writer, scope insight.Scope, insights []insight.Insight, rules int) {
	fmt.Fprintln(w, output.Section(fmt.Sprintf("Insights for %s / %s / %s", scope.Company, scope.Region, scope.Function)))
	if len(insights) == 0 {
		fmt.Fprintln(w, output.StyleMuted.Render(fmt.Sprintf(" No rules fired (%d evaluated).", rules)))
		return
	}
	for _, in := range insights {
		fmt.Fprintln(w, output.RenderInsight(in))
	}
	fmt.Fprintln(w, output.StyleMuted.Render(fmt.Sprintf(" %d of %d rules fired.", len(insights), rules)))
}
