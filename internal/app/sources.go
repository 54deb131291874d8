package app

import (
	"fmt"
	"strconv"

	"github.com/blackwell-systems/laborwatch/internal/output"
	"github.com/blackwell-systems/laborwatch/internal/sources"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Show which observation sources are configured and active",
	Long: `List the observation sources (FRED, CSV, API, CLI, seed and any other
labels found in the store) with whether each is configured, how many
observations it has stored, and the date of its latest one.`,
	RunE: runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	e, err := setup(nil)
	if err != nil {
		return err
	}
	defer e.Close()

	counts, err := e.db.SourceCounts(cmd.Context())
	if err != nil {
		return fmt.Errorf("counting observations by source: %w", err)
	}
	statuses := sources.Statuses(sources.Descriptors(e.cfg.FRED.APIKey != ""), counts)

	out := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(out, statuses)
	}
	tbl := output.NewTable("Source", "Configured", "Active", "Observations", "Latest")
	for _, s := range statuses {
		latest := "-"
		if s.LastObserved != nil {
			latest = s.LastObserved.Format("2006-01-02")
		}
		tbl.AddRow(s.Name, yesNo(s.Configured), yesNo(s.Active), strconv.Itoa(s.Observations), latest)
	}
	tbl.Fprint(out)
	return nil
}

func yesNo(b bool) string {
	if b {
		return output.StyleSuccess.Render("yes")
	}
	return output.StyleMuted.Render("no")
}
