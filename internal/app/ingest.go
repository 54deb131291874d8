package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/blackwell-systems/laborwatch/internal/insight"
	"github.com/blackwell-systems/laborwatch/internal/output"
	"github.com/blackwell-systems/laborwatch/internal/sources"
	"github.com/blackwell-systems/laborwatch/internal/store"
	"github.com/spf13/cobra"
)

var (
	ingestFile     string
	ingestRegion   string
	ingestFunction string
	ingestAt       string
	ingestList     bool
	ingestMetric   string
	ingestDays     int
	ingestLimit    int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [metric] [value]",
	Short: "Add metric observations from a CSV file or the command line",
	Long: `Record labor-market observations for the rule engine to evaluate.

A CSV file must have a header with the columns metric, value, region,
function and timestamp (any order). Timestamps are RFC 3339 or YYYY-MM-DD.

Examples:
  laborwatch ingest --file metrics.csv
  laborwatch ingest fx_volatility 21 --region NA
  laborwatch ingest ai_wage_growth 24 --region NA --function AI --at 2024-11-01
  laborwatch ingest --list
  laborwatch ingest --list --metric tech_layoffs --days 90`,
	Args: cobra.ArbitraryArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "CSV file of observations (use - for stdin)")
	ingestCmd.Flags().StringVar(&ingestRegion, "region", "", "Region of a single observation")
	ingestCmd.Flags().StringVar(&ingestFunction, "function", "", "Function of a single observation")
	ingestCmd.Flags().StringVar(&ingestAt, "at", "", "Timestamp of a single observation (default: now)")
	ingestCmd.Flags().BoolVar(&ingestList, "list", false, "List stored observations")
	ingestCmd.Flags().StringVar(&ingestMetric, "metric", "", "Filter --list by metric name")
	ingestCmd.Flags().IntVar(&ingestDays, "days", 0, "Filter --list to last N days")
	ingestCmd.Flags().IntVar(&ingestLimit, "limit", 50, "Maximum rows for --list")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	e, err := setup(nil)
	if err != nil {
		return err
	}
	defer e.Close()

	if ingestList {
		return runIngestList(cmd, e)
	}

	var batch []insight.Observation
	source := sources.SourceCLI
	switch {
	case ingestFile != "":
		batch, err = readObservationFile(ingestFile)
		if err != nil {
			return err
		}
		source = sources.SourceCSV
	case len(args) == 2:
		obs, err := parseSingleObservation(args[0], args[1], time.Now().UTC())
		if err != nil {
			return err
		}
		batch = []insight.Observation{obs}
	default:
		return fmt.Errorf("usage: laborwatch ingest <metric> <value> --region R, or --file metrics.csv")
	}

	if err := e.db.InsertObservations(cmd.Context(), source, batch); err != nil {
		return fmt.Errorf("storing observations: %w", err)
	}
	e.metrics.ObservationsIngested(source, len(batch))

	out := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(out, map[string]int{"count": len(batch)})
	}
	fmt.Fprintln(out, output.StyleSuccess.Render(fmt.Sprintf("Ingested %d observation(s)", len(batch))))
	return nil
}

func readObservationFile(path string) ([]insight.Observation, error) {
	if path == "-" {
		return sources.ReadCSV(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	obs, err := sources.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obs, nil
}

// parseSingleObservation builds an observation from positional args and the
// --region, --function and --at flags.
func parseSingleObservation(metric, rawValue string, now time.Time) (insight.Observation, error) {
	if ingestRegion == "" {
		return insight.Observation{}, fmt.Errorf("--region is required")
	}
	value, err := strconv.ParseFloat(rawValue, 64)
	if err != nil {
		return insight.Observation{}, fmt.Errorf("invalid value %q: must be a number", rawValue)
	}
	ts := now
	if ingestAt != "" {
		ts, err = parseTimestamp(ingestAt)
		if err != nil {
			return insight.Observation{}, err
		}
	}
	return insight.Observation{
		Metric:    metric,
		Value:     value,
		Region:    ingestRegion,
		Function:  ingestFunction,
		Timestamp: ts,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: use RFC 3339 or YYYY-MM-DD", s)
}

func runIngestList(cmd *cobra.Command, e *env) error {
	f := store.ObservationFilter{
		Metric: ingestMetric,
		Region: ingestRegion,
		Limit:  ingestLimit,
	}
	if ingestDays > 0 {
		f.Since = time.Now().UTC().AddDate(0, 0, -ingestDays)
	}
	rows, err := e.db.ListObservations(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("listing observations: %w", err)
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(out, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, output.StyleMuted.Render("No observations stored. Try 'laborwatch seed' or 'laborwatch ingest --file'."))
		return nil
	}

	tbl := output.NewTable("Date", "Metric", "Value", "Region", "Function", "Source")
	for _, r := range rows {
		tbl.AddRow(
			r.Timestamp.Format("2006-01-02"),
			r.Metric,
			strconv.FormatFloat(r.Value, 'f', -1, 64),
			r.Region,
			r.Function,
			r.Source,
		)
	}
	tbl.Fprint(out)
	return nil
}
