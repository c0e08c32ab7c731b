// Command sentinelmcp runs the SentinelOne MCP server: an MCP
// (Model Context Protocol) endpoint exposing alerts, misconfigurations,
// vulnerabilities, and asset inventory to AI assistants.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sentinelmcp/sentinelmcp/internal/mcp"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "sentinelmcp",
	Short: "MCP server for SentinelOne security data",
	Long: `sentinelmcp serves SentinelOne alerts, misconfigurations,
vulnerabilities, and asset inventory over the Model Context Protocol.

Get started:
  sentinelmcp serve      Start the MCP server
  sentinelmcp tools      List the available MCP tools
  sentinelmcp --help     Show available commands`,
	SilenceUsage: true,
}

func main() {
	mcp.ServerVersion = Version

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
