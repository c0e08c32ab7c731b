package main

import (
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sentinelmcp/sentinelmcp/internal/alerts"
	"github.com/sentinelmcp/sentinelmcp/internal/graphql"
	"github.com/sentinelmcp/sentinelmcp/internal/inventory"
	"github.com/sentinelmcp/sentinelmcp/internal/mcp"
	"github.com/sentinelmcp/sentinelmcp/internal/mcp/tools"
	"github.com/sentinelmcp/sentinelmcp/internal/misconfigurations"
	"github.com/sentinelmcp/sentinelmcp/internal/vulnerabilities"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the available MCP tools",
	Long:  `Print every MCP tool this server exposes along with the scopes it requires.`,
	Run: func(cmd *cobra.Command, args []string) {
		printTools()
	},
}

// printTools lists the tool catalog without touching any backend. The
// clients are built against placeholder endpoints; listing never issues
// a request.
func printTools() {
	registry := mcp.NewToolRegistry()
	tools.RegisterAll(registry, tools.Deps{
		Alerts:            alerts.NewClient(graphql.Config{Domain: alerts.Domain}),
		Misconfigurations: misconfigurations.NewClient(graphql.Config{Domain: misconfigurations.Domain}),
		Vulnerabilities:   vulnerabilities.NewClient(graphql.Config{Domain: vulnerabilities.Domain}),
		Inventory:         inventory.NewClient(inventory.Config{}),
	})

	service := &mcp.AuthContext{IsService: true}
	list := registry.ListTools(service)
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Scopes", "Description"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	for _, tool := range list {
		scopes := "-"
		if handler := registry.GetTool(tool.Name); handler != nil && len(handler.RequiredScopes()) > 0 {
			scopes = strings.Join(handler.RequiredScopes(), ",")
		}
		table.Append([]string{tool.Name, scopes, firstSentence(tool.Description)})
	}
	table.Render()
}

// firstSentence keeps the table readable; full descriptions are exposed
// over tools/list.
func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".\n"); i > 0 {
		return s[:i+1]
	}
	return s
}
