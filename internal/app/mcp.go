package app

import (
	"os"

	"github.com/blackwell-systems/laborwatch/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP stdio server exposing the insight engine",
	Long: `Start a Model Context Protocol stdio server so assistants can query
labor-market insights. The server exposes four tools:

  list_insights      Stored insights with filters, optionally merged with generated ones
  generate_insights  Evaluate the rule catalog for a scope (optionally persisting)
  list_rules         The active rule catalog
  get_stats          Insight counts by category and region

Example client configuration:
  {"mcpServers":{"laborwatch":{"command":"laborwatch","args":["mcp"]}}}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	e, err := setup(os.Stderr)
	if err != nil {
		return err
	}
	defer e.Close()

	srv := mcp.NewServer(mcp.Deps{
		Feed:           e.feed,
		Generator:      e.gen,
		Store:          e.db,
		DefaultCompany: e.cfg.Company,
	})
	return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
}
