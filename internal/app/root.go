// Package app contains the Cobra command tree for laborwatch.
package app

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/laborwatch/internal/output"
	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "laborwatch",
	Short: "Rule-based labor-market insights for workforce planning",
	Long: `laborwatch turns labor-market metrics (wage growth, inflation, hiring
activity, layoffs, FX volatility) into actionable insights for HR and
workforce-strategy teams. Metrics are ingested from CSV, the HTTP API, or
FRED; a catalog of rules evaluates them per region and function.

Run 'laborwatch' with no arguments to see the available commands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		output.ConfigureColor(flagNoColor || flagJSON)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "laborwatch", appVersion)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Use a subcommand:")
		fmt.Fprintln(out, "  seed      Load sample metrics and curated insights")
		fmt.Fprintln(out, "  ingest    Add metric observations from CSV or the command line")
		fmt.Fprintln(out, "  fetch     Pull the latest FRED series into the store")
		fmt.Fprintln(out, "  generate  Evaluate the rule catalog for a region")
		fmt.Fprintln(out, "  insights  List stored insights with filters")
		fmt.Fprintln(out, "  stats     Summarize stored insights")
		fmt.Fprintln(out, "  sources   Show configured and active observation sources")
		fmt.Fprintln(out, "  rules     Show or export the rule catalog")
		fmt.Fprintln(out, "  serve     Run the HTTP API")
		fmt.Fprintln(out, "  watch     Regenerate on an interval and alert on new signals")
		fmt.Fprintln(out, "  mcp       Run an MCP stdio server")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/laborwatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
}
