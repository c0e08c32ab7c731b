package tools

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelmcp/sentinelmcp/internal/alerts"
	"github.com/sentinelmcp/sentinelmcp/internal/inventory"
	"github.com/sentinelmcp/sentinelmcp/internal/mcp"
	"github.com/sentinelmcp/sentinelmcp/internal/misconfigurations"
	"github.com/sentinelmcp/sentinelmcp/internal/vulnerabilities"
)

func fullDeps() Deps {
	exec := &fakeExecutor{}
	return Deps{
		Alerts:            alerts.NewClientWithExecutor(exec, nil),
		Misconfigurations: misconfigurations.NewClientWithExecutor(exec, nil),
		Vulnerabilities:   vulnerabilities.NewClientWithExecutor(exec, nil),
		Inventory: inventory.NewClient(inventory.Config{
			BaseURL:  "https://console.example.com",
			Endpoint: "/web/api/v2.1/xdr/assets",
			Token:    "token",
		}),
	}
}

func toolNames(tools []mcp.Tool) []string {
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	return names
}

func TestRegisterAll(t *testing.T) {
	registry := mcp.NewToolRegistry()
	RegisterAll(registry, fullDeps())

	service := &mcp.AuthContext{IsService: true}
	names := toolNames(registry.ListTools(service))

	assert.Equal(t, []string{
		"get_alert",
		"get_alert_history",
		"get_alert_notes",
		"get_inventory_item",
		"get_misconfiguration",
		"get_misconfiguration_history",
		"get_misconfiguration_notes",
		"get_vulnerability",
		"get_vulnerability_history",
		"get_vulnerability_notes",
		"iso_to_unix_timestamp",
		"list_alerts",
		"list_inventory_items",
		"list_misconfigurations",
		"list_vulnerabilities",
		"search_alerts",
		"search_inventory_items",
		"search_misconfigurations",
		"search_vulnerabilities",
	}, names)
}

func TestRegisterAll_ScopeFiltering(t *testing.T) {
	registry := mcp.NewToolRegistry()
	RegisterAll(registry, fullDeps())

	alertsOnly := &mcp.AuthContext{Scopes: []string{mcp.ScopeReadAlerts}}
	names := toolNames(registry.ListTools(alertsOnly))

	assert.Equal(t, []string{
		"get_alert",
		"get_alert_history",
		"get_alert_notes",
		"iso_to_unix_timestamp",
		"list_alerts",
		"search_alerts",
	}, names)
}

func TestRegisterAll_SkipsNilClients(t *testing.T) {
	registry := mcp.NewToolRegistry()
	deps := fullDeps()
	deps.Inventory = nil
	RegisterAll(registry, deps)

	service := &mcp.AuthContext{IsService: true}
	names := toolNames(registry.ListTools(service))

	assert.NotContains(t, names, "get_inventory_item")
	assert.NotContains(t, names, "list_inventory_items")
	assert.NotContains(t, names, "search_inventory_items")
	assert.Contains(t, names, "get_alert")
}

func TestRegisterAll_MissingMisconfigurations(t *testing.T) {
	registry := mcp.NewToolRegistry()
	deps := fullDeps()
	deps.Misconfigurations = nil
	RegisterAll(registry, deps)

	require.Nil(t, registry.GetTool("search_misconfigurations"))
	require.NotNil(t, registry.GetTool("search_alerts"))
}
