package app

import (
	"fmt"

	"github.com/blackwell-systems/laborwatch/internal/output"
	"github.com/blackwell-systems/laborwatch/internal/sources"
	"github.com/blackwell-systems/laborwatch/internal/store"
	"github.com/spf13/cobra"
)

var seedCompany string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace stored data with sample metrics and curated insights",
	Long: `Clear the observations and insights tables, then load the bundled sample
metrics (NA, EMEA, APAC, LATAM) and a set of curated insights. Useful for
demos and for exercising the rule catalog without live data.

Examples:
  laborwatch seed
  laborwatch seed --company Acme`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedCompany, "company", "", "Company the curated insights belong to (default: config company)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	e, err := setup(nil)
	if err != nil {
		return err
	}
	defer e.Close()

	company := seedCompany
	if company == "" {
		company = e.cfg.Company
	}
	if err := e.db.Seed(cmd.Context(), company); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}
	e.metrics.ObservationsIngested(sources.SourceSeed, len(store.SeedObservations))

	out := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(out, map[string]int{
			"observations": len(store.SeedObservations),
			"insights":     len(store.SeedInsights(company)),
		})
	}
	fmt.Fprintln(out, output.StyleSuccess.Render(fmt.Sprintf(
		"Seeded %d observations and %d insights for %s",
		len(store.SeedObservations), len(store.SeedInsights(company)), company)))
	return nil
}
