package app

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/laborwatch/internal/insight"
	"github.com/blackwell-systems/laborwatch/internal/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	rulesExport   bool
	rulesValidate string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the active rule catalog",
	Long: `List the rules the engine evaluates, in catalog order. With --export the
catalog is written as YAML in the layout engine.catalog_file accepts, which
makes the built-in rules a starting point for a custom catalog. --validate
checks a catalog file without activating it.

Examples:
  laborwatch rules
  laborwatch rules --export > rules.yaml
  laborwatch rules --validate rules.yaml`,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().BoolVar(&rulesExport, "export", false, "Write the catalog as YAML")
	rulesCmd.Flags().StringVar(&rulesValidate, "validate", "", "Validate a YAML catalog file and exit")
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	if rulesValidate != "" {
		c, err := insight.LoadCatalogFile(rulesValidate)
		if err != nil {
			return fmt.Errorf("%s: %w", rulesValidate, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), output.StyleSuccess.Render(
			fmt.Sprintf("%s: %d rules, version %q", rulesValidate, c.Len(), c.Version())))
		return nil
	}

	e, err := setup(nil)
	if err != nil {
		return err
	}
	defer e.Close()

	out := cmd.OutOrStdout()
	switch {
	case rulesExport:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(e.catalog); err != nil {
			return fmt.Errorf("encoding catalog: %w", err)
		}
		return enc.Close()
	case flagJSON:
		return writeJSON(out, struct {
			Version string         `json:"version"`
			Rules   []insight.Rule `json:"rules"`
		}{e.catalog.Version(), e.catalog.Rules()})
	}

	fmt.Fprintln(out, output.Section(fmt.Sprintf("Rule Catalog %s", e.catalog.Version())))
	tbl := output.NewTable("ID", "Name", "Category", "Conditions")
	for _, r := range e.catalog.Rules() {
		tbl.AddRow(r.ID, r.Name, output.CategoryStyle(r.Output.Category).Render(string(r.Output.Category)), describeConditions(r.Conditions))
	}
	tbl.Fprint(out)
	return nil
}

// describeConditions renders conditions as "metric op value [scope]" joined by AND.
func describeConditions(conds []insight.Condition) string {
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		s := fmt.Sprintf("%s %s %g", c.Metric, c.Operator, c.Value)
		var scope []string
		if c.Region != "" {
			scope = append(scope, c.Region)
		}
		if c.Function != "" {
			scope = append(scope, c.Function)
		}
		if len(scope) > 0 {
			s += " [" + strings.Join(scope, "/") + "]"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " AND ")
}
