package tools

import (
	"context"
	"time"

	"github.com/sentinelmcp/sentinelmcp/internal/alerts"
	"github.com/sentinelmcp/sentinelmcp/internal/inventory"
	"github.com/sentinelmcp/sentinelmcp/internal/mcp"
	"github.com/sentinelmcp/sentinelmcp/internal/misconfigurations"
	"github.com/sentinelmcp/sentinelmcp/internal/observability"
	"github.com/sentinelmcp/sentinelmcp/internal/vulnerabilities"
)

// Deps carries the backend clients the tools are built on. Any nil
// client skips registration of its tools, which keeps partial
// deployments possible.
type Deps struct {
	Alerts            *alerts.Client
	Misconfigurations *misconfigurations.Client
	Vulnerabilities   *vulnerabilities.Client
	Inventory         *inventory.Client
	Metrics           *observability.Metrics
}

// RegisterAll wires every tool into the registry, instrumented with
// call metrics when Metrics is set.
func RegisterAll(registry *mcp.ToolRegistry, deps Deps) {
	register := func(tool mcp.ToolHandler) {
		if deps.Metrics != nil {
			tool = &instrumentedTool{ToolHandler: tool, metrics: deps.Metrics}
		}
		registry.Register(tool)
	}

	register(NewIsoToUnixTimestampTool())

	if deps.Alerts != nil {
		register(NewGetAlertTool(deps.Alerts))
		register(NewListAlertsTool(deps.Alerts))
		register(NewSearchAlertsTool(deps.Alerts))
		register(NewAlertNotesTool(deps.Alerts))
		register(NewAlertHistoryTool(deps.Alerts))
	}

	if deps.Misconfigurations != nil {
		register(NewGetMisconfigurationTool(deps.Misconfigurations))
		register(NewListMisconfigurationsTool(deps.Misconfigurations))
		register(NewSearchMisconfigurationsTool(deps.Misconfigurations))
		register(NewMisconfigurationNotesTool(deps.Misconfigurations))
		register(NewMisconfigurationHistoryTool(deps.Misconfigurations))
	}

	if deps.Vulnerabilities != nil {
		register(NewGetVulnerabilityTool(deps.Vulnerabilities))
		register(NewListVulnerabilitiesTool(deps.Vulnerabilities))
		register(NewSearchVulnerabilitiesTool(deps.Vulnerabilities))
		register(NewVulnerabilityNotesTool(deps.Vulnerabilities))
		register(NewVulnerabilityHistoryTool(deps.Vulnerabilities))
	}

	if deps.Inventory != nil {
		register(NewGetInventoryItemTool(deps.Inventory))
		register(NewListInventoryItemsTool(deps.Inventory))
		register(NewSearchInventoryItemsTool(deps.Inventory))
	}
}

// instrumentedTool records call latency and outcome around the wrapped
// tool's Execute.
type instrumentedTool struct {
	mcp.ToolHandler
	metrics *observability.Metrics
}

func (t *instrumentedTool) Execute(ctx context.Context, args map[string]any, authCtx *mcp.AuthContext) (*mcp.ToolResult, error) {
	start := time.Now()
	result, err := t.ToolHandler.Execute(ctx, args, authCtx)

	isError := err != nil || (result != nil && result.IsError)
	t.metrics.RecordToolCall(t.Name(), time.Since(start), isError)

	return result, err
}
