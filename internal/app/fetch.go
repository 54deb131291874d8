package app

import (
	"errors"
	"fmt"

	"github.com/blackwell-systems/laborwatch/internal/config"
	"github.com/blackwell-systems/laborwatch/internal/output"
	"github.com/blackwell-systems/laborwatch/internal/sources"
	"github.com/blackwell-systems/laborwatch/pkg/logger"
	"github.com/spf13/cobra"
)

var fetchDryRun bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Pull the latest FRED series into the observation store",
	Long: `Fetch the configured FRED series (fred.series in config.yaml) and store
the most recent value of each as an observation. Requires a FRED API key in
fred.api_key, LABORWATCH_FRED_API_KEY, or FRED_API_KEY.

Examples:
  laborwatch fetch
  laborwatch fetch --dry-run --json`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchDryRun, "dry-run", false, "Print fetched observations without storing them")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	e, err := setup(nil)
	if err != nil {
		return err
	}
	defer e.Close()

	client := sources.NewFREDClient(e.cfg.FRED.APIKey, e.cfg.FRED.BaseURL)
	client.SetLogger(e.log.Named("fred"))
	batch, err := client.Fetch(cmd.Context(), seriesMappings(e.cfg.FRED.Series))
	if errors.Is(err, sources.ErrNotConfigured) {
		return fmt.Errorf("%w: set fred.api_key or FRED_API_KEY", err)
	}
	if err != nil {
		return fmt.Errorf("fetching FRED series: %w", err)
	}
	e.log.Info(cmd.Context(), "fetched FRED series",
		logger.Int("series", len(e.cfg.FRED.Series)),
		logger.Int("observations", len(batch)))

	out := cmd.OutOrStdout()
	if !fetchDryRun {
		if err := e.db.InsertObservations(cmd.Context(), sources.SourceFRED, batch); err != nil {
			return fmt.Errorf("storing observations: %w", err)
		}
		e.metrics.ObservationsIngested(sources.SourceFRED, len(batch))
	}

	if flagJSON {
		return writeJSON(out, batch)
	}
	tbl := output.NewTable("Date", "Metric", "Value", "Region")
	for _, o := range batch {
		tbl.AddRow(o.Timestamp.Format("2006-01-02"), o.Metric, fmt.Sprintf("%.2f", o.Value), o.Region)
	}
	tbl.Fprint(out)
	if fetchDryRun {
		fmt.Fprintln(out, output.StyleMuted.Render("Dry run: nothing stored."))
	}
	return nil
}

func seriesMappings(series []config.Series) []sources.SeriesMapping {
	out := make([]sources.SeriesMapping, 0, len(series))
	for _, s := range series {
		out = append(out, sources.SeriesMapping{
			SeriesID:  s.ID,
			Metric:    s.Metric,
			Region:    s.Region,
			Function:  s.Function,
			Transform: sources.Transform(s.Transform),
			Periods:   s.Periods,
		})
	}
	return out
}
