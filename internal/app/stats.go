package app

import (
	"fmt"
	"strconv"

	"github.com/blackwell-systems/laborwatch/internal/insight"
	"github.com/blackwell-systems/laborwatch/internal/output"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize stored insights by category and region",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	e, err := setup(nil)
	if err != nil {
		return err
	}
	defer e.Close()

	st, err := e.db.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("computing stats: %w", err)
	}
	obsCount, err := e.db.CountObservations(cmd.Context())
	if err != nil {
		return fmt.Errorf("counting observations: %w", err)
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(out, struct {
			Insights     any `json:"insights"`
			Observations int `json:"observations"`
		}{st, obsCount})
	}

	fmt.Fprintln(out, output.Section("Insight Summary"))
	fmt.Fprintf(out, " %s%s\n", output.StyleLabel.Render("Insights"), output.StyleValue.Render(strconv.Itoa(st.Total)))
	fmt.Fprintf(out, " %s%s\n", output.StyleLabel.Render("Observations"), output.StyleValue.Render(strconv.Itoa(obsCount)))
	fmt.Fprintf(out, " %s%s\n", output.StyleLabel.Render("Average confidence"), output.ConfidenceBar(st.AverageConfidence, 20))

	if len(st.ByCategory) > 0 {
		fmt.Fprintln(out, output.Section("By Category"))
		tbl := output.NewTable("Category", "Insights")
		for _, g := range st.ByCategory {
			cat := insight.Category(g.Key)
			tbl.AddRow(output.CategoryStyle(cat).Render(cat.Label()), strconv.Itoa(g.Count))
		}
		tbl.Fprint(out)
	}
	if len(st.ByRegion) > 0 {
		fmt.Fprintln(out, output.Section("By Region"))
		tbl := output.NewTable("Region", "Insights")
		for _, g := range st.ByRegion {
			tbl.AddRow(g.Key, strconv.Itoa(g.Count))
		}
		tbl.Fprint(out)
	}
	return nil
}
