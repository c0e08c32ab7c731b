package tools

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/sentinelmcp/sentinelmcp/internal/alerts"
	"github.com/sentinelmcp/sentinelmcp/internal/mcp"
)

// GetAlertTool implements the get_alert MCP tool.
type GetAlertTool struct {
	client *alerts.Client
}

func NewGetAlertTool(client *alerts.Client) *GetAlertTool {
	return &GetAlertTool{client: client}
}

func (t *GetAlertTool) Name() string {
	return "get_alert"
}

func (t *GetAlertTool) Description() string {
	return "Get detailed information about a specific alert by ID. " +
		"Returns metadata, timing, severity, status, the associated asset, " +
		"assignee, and analyst findings as JSON. Returns null if no alert " +
		"matches the given ID."
}

func (t *GetAlertTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"alert_id": map[string]any{
				"type":        "string",
				"description": "The unique identifier of the alert",
			},
		},
		"required": []string{"alert_id"},
	}
}

func (t *GetAlertTool) RequiredScopes() []string {
	return []string{mcp.ScopeReadAlerts}
}

func (t *GetAlertTool) Execute(ctx context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	alertID, err := requiredID(args, "alert_id")
	if err != nil {
		return nil, err
	}

	alert, err := t.client.Get(ctx, alertID)
	if err != nil {
		log.Error().Err(err).Str("alert_id", alertID).Msg("MCP: get_alert failed")
		return errorResult("failed to retrieve alert %s: %v", alertID, err), nil
	}
	if alert == nil {
		return nullResult()
	}
	return jsonResult(alert)
}

// ListAlertsTool implements the list_alerts MCP tool.
type ListAlertsTool struct {
	client *alerts.Client
}

func NewListAlertsTool(client *alerts.Client) *ListAlertsTool {
	return &ListAlertsTool{client: client}
}

func (t *ListAlertsTool) Name() string {
	return "list_alerts"
}

func (t *ListAlertsTool) Description() string {
	return "List alerts with cursor pagination and assignment filtering. " +
		"Use search_alerts for advanced filtering by severity, status, or " +
		"time ranges. Cursor pagination is sequential: pass pageInfo.endCursor " +
		"from the previous response as 'after' to fetch the next page, and " +
		"request minimal fields like '[\"id\"]' on intermediate pages."
}

func (t *ListAlertsTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"first": map[string]any{
				"type":        "integer",
				"description": "Number of alerts to retrieve (1-100)",
				"default":     10,
				"minimum":     1,
				"maximum":     100,
			},
			"after": map[string]any{
				"type":        "string",
				"description": "Pagination cursor from the previous response",
			},
			"view_type": map[string]any{
				"type":        "string",
				"description": "Assignment filter",
				"enum":        []string{"ALL", "ASSIGNED_TO_ME", "UNASSIGNED", "MY_TEAM"},
				"default":     "ALL",
			},
			"fields": map[string]any{
				"type": "string",
				"description": "Optional JSON-encoded array of field names to return. " +
					"When omitted all default fields are returned, including dataSources; " +
					"when provided, dataSources is only included if listed explicitly.",
			},
		},
	}
}

func (t *ListAlertsTool) RequiredScopes() []string {
	return []string{mcp.ScopeReadAlerts}
}

func (t *ListAlertsTool) Execute(ctx context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	first, err := firstArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}
	after, err := cursorArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}
	viewType, err := alerts.ParseViewType(stringArg(args, "view_type"))
	if err != nil {
		return errorResult("%v", err), nil
	}
	fields, err := fieldsArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}

	conn, err := t.client.List(ctx, first, after, viewType, fields)
	if err != nil {
		return backendFailure("list_alerts", err), nil
	}
	return jsonResult(conn)
}

// SearchAlertsTool implements the search_alerts MCP tool.
type SearchAlertsTool struct {
	client *alerts.Client
}

func NewSearchAlertsTool(client *alerts.Client) *SearchAlertsTool {
	return &SearchAlertsTool{client: client}
}

func (t *SearchAlertsTool) Name() string {
	return "search_alerts"
}

func (t *SearchAlertsTool) Description() string {
	return "Search alerts using advanced filters. Filters are a JSON-encoded " +
		"array of objects, each with fieldId, filterType, and the value keys " +
		"that type requires: string_equals/string_in, boolean_equals/boolean_in, " +
		"long_equals/long_in, datetime_range (UNIX milliseconds, use the " +
		"iso_to_unix_timestamp tool to convert ISO 8601 datetimes), and fulltext. " +
		"Set isNegated to invert a filter. For 'how many' questions set first " +
		"to 1; totalCount is returned for every query."
}

func (t *SearchAlertsTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"filters": map[string]any{
				"type": "string",
				"description": "JSON-encoded array of filter objects, e.g. " +
					`[{"fieldId": "severity", "filterType": "string_in", "values": ["CRITICAL", "HIGH"]}]`,
			},
			"first": map[string]any{
				"type":        "integer",
				"description": "Number of alerts to retrieve (1-100)",
				"default":     10,
				"minimum":     1,
				"maximum":     100,
			},
			"after": map[string]any{
				"type":        "string",
				"description": "Pagination cursor from the previous response",
			},
			"view_type": map[string]any{
				"type":        "string",
				"description": "Assignment filter",
				"enum":        []string{"ALL", "ASSIGNED_TO_ME", "UNASSIGNED", "MY_TEAM"},
				"default":     "ALL",
			},
			"fields": map[string]any{
				"type":        "string",
				"description": "Optional JSON-encoded array of field names to return",
			},
		},
	}
}

func (t *SearchAlertsTool) RequiredScopes() []string {
	return []string{mcp.ScopeReadAlerts}
}

func (t *SearchAlertsTool) Execute(ctx context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	first, err := firstArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}
	after, err := cursorArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}
	viewType, err := alerts.ParseViewType(stringArg(args, "view_type"))
	if err != nil {
		return errorResult("%v", err), nil
	}
	fields, err := fieldsArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}
	filters, err := filtersArg(args, alerts.FilterFields)
	if err != nil {
		return errorResult("%v", err), nil
	}

	conn, err := t.client.Search(ctx, filters, first, after, viewType, fields)
	if err != nil {
		return backendFailure("search_alerts", err), nil
	}
	return jsonResult(conn)
}

// AlertNotesTool implements the get_alert_notes MCP tool.
type AlertNotesTool struct {
	client *alerts.Client
}

func NewAlertNotesTool(client *alerts.Client) *AlertNotesTool {
	return &AlertNotesTool{client: client}
}

func (t *AlertNotesTool) Name() string {
	return "get_alert_notes"
}

func (t *AlertNotesTool) Description() string {
	return "Get all analyst notes and comments attached to an alert. Returns " +
		"an empty array when no notes exist; the alert's noteExists field from " +
		"get_alert indicates whether a call is worthwhile."
}

func (t *AlertNotesTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"alert_id": map[string]any{
				"type":        "string",
				"description": "The unique identifier of the alert",
			},
		},
		"required": []string{"alert_id"},
	}
}

func (t *AlertNotesTool) RequiredScopes() []string {
	return []string{mcp.ScopeReadAlerts}
}

func (t *AlertNotesTool) Execute(ctx context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	alertID, err := requiredID(args, "alert_id")
	if err != nil {
		return nil, err
	}

	notes, err := t.client.Notes(ctx, alertID)
	if err != nil {
		return backendFailure("get_alert_notes", err), nil
	}
	return jsonResult(notes)
}

// AlertHistoryTool implements the get_alert_history MCP tool.
type AlertHistoryTool struct {
	client *alerts.Client
}

func NewAlertHistoryTool(client *alerts.Client) *AlertHistoryTool {
	return &AlertHistoryTool{client: client}
}

func (t *AlertHistoryTool) Name() string {
	return "get_alert_history"
}

func (t *AlertHistoryTool) Description() string {
	return "Get the chronological audit history for an alert: status changes, " +
		"assignments, notes, verdict updates, and integration actions, with " +
		"cursor pagination."
}

func (t *AlertHistoryTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"alert_id": map[string]any{
				"type":        "string",
				"description": "The unique identifier of the alert",
			},
			"first": map[string]any{
				"type":        "integer",
				"description": "Number of history events to retrieve (1-100)",
				"default":     10,
				"minimum":     1,
				"maximum":     100,
			},
			"after": map[string]any{
				"type":        "string",
				"description": "Pagination cursor from the previous response",
			},
		},
		"required": []string{"alert_id"},
	}
}

func (t *AlertHistoryTool) RequiredScopes() []string {
	return []string{mcp.ScopeReadAlerts}
}

func (t *AlertHistoryTool) Execute(ctx context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	alertID, err := requiredID(args, "alert_id")
	if err != nil {
		return nil, err
	}
	first, err := firstArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}
	after, err := cursorArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}

	history, err := t.client.History(ctx, alertID, first, after)
	if err != nil {
		return backendFailure("get_alert_history", err), nil
	}
	return jsonResult(history)
}
