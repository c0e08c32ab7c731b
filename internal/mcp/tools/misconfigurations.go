package tools

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/sentinelmcp/sentinelmcp/internal/mcp"
	"github.com/sentinelmcp/sentinelmcp/internal/misconfigurations"
)

// GetMisconfigurationTool implements the get_misconfiguration MCP tool.
type GetMisconfigurationTool struct {
	client *misconfigurations.Client
}

func NewGetMisconfigurationTool(client *misconfigurations.Client) *GetMisconfigurationTool {
	return &GetMisconfigurationTool{client: client}
}

func (t *GetMisconfigurationTool) Name() string {
	return "get_misconfiguration"
}

func (t *GetMisconfigurationTool) Description() string {
	return "Get detailed information about a specific misconfiguration finding " +
		"by ID, including the affected asset, rule, severity, status, and " +
		"remediation details. Returns null if no misconfiguration matches the " +
		"given ID."
}

func (t *GetMisconfigurationTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"misconfiguration_id": map[string]any{
				"type":        "string",
				"description": "The unique identifier of the misconfiguration",
			},
		},
		"required": []string{"misconfiguration_id"},
	}
}

func (t *GetMisconfigurationTool) RequiredScopes() []string {
	return []string{mcp.ScopeReadMisconfigurations}
}

func (t *GetMisconfigurationTool) Execute(ctx context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	id, err := requiredID(args, "misconfiguration_id")
	if err != nil {
		return nil, err
	}

	finding, err := t.client.Get(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("misconfiguration_id", id).Msg("MCP: get_misconfiguration failed")
		return errorResult("failed to retrieve misconfiguration %s: %v", id, err), nil
	}
	if finding == nil {
		return nullResult()
	}
	return jsonResult(finding)
}

// ListMisconfigurationsTool implements the list_misconfigurations MCP tool.
type ListMisconfigurationsTool struct {
	client *misconfigurations.Client
}

func NewListMisconfigurationsTool(client *misconfigurations.Client) *ListMisconfigurationsTool {
	return &ListMisconfigurationsTool{client: client}
}

func (t *ListMisconfigurationsTool) Name() string {
	return "list_misconfigurations"
}

func (t *ListMisconfigurationsTool) Description() string {
	return "List misconfiguration findings with cursor pagination, optionally " +
		"scoped to a surface via view_type. Use search_misconfigurations for " +
		"advanced filtering by severity, status, or time ranges."
}

func (t *ListMisconfigurationsTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"first": map[string]any{
				"type":        "integer",
				"description": "Number of misconfigurations to retrieve (1-100)",
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
				"description": "Surface filter",
				"enum":        []string{"ALL", "CLOUD", "KUBERNETES", "IDENTITY", "INFRASTRUCTURE_AS_CODE"},
				"default":     "ALL",
			},
			"fields": map[string]any{
				"type":        "string",
				"description": "Optional JSON-encoded array of field names to return",
			},
		},
	}
}

func (t *ListMisconfigurationsTool) RequiredScopes() []string {
	return []string{mcp.ScopeReadMisconfigurations}
}

func (t *ListMisconfigurationsTool) Execute(ctx context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	first, err := firstArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}
	after, err := cursorArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}
	viewType, err := misconfigurations.ParseViewType(stringArg(args, "view_type"))
	if err != nil {
		return errorResult("%v", err), nil
	}
	fields, err := fieldsArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}

	conn, err := t.client.List(ctx, first, after, viewType, fields)
	if err != nil {
		return backendFailure("list_misconfigurations", err), nil
	}
	return jsonResult(conn)
}

// SearchMisconfigurationsTool implements the search_misconfigurations MCP tool.
type SearchMisconfigurationsTool struct {
	client *misconfigurations.Client
}

func NewSearchMisconfigurationsTool(client *misconfigurations.Client) *SearchMisconfigurationsTool {
	return &SearchMisconfigurationsTool{client: client}
}

func (t *SearchMisconfigurationsTool) Name() string {
	return "search_misconfigurations"
}

func (t *SearchMisconfigurationsTool) Description() string {
	return "Search misconfiguration findings using advanced filters. Filters " +
		"are a JSON-encoded array of objects with fieldId, filterType, and the " +
		"value keys that type requires (see search_alerts for the filter type " +
		"reference). Datetime filters take UNIX milliseconds; use the " +
		"iso_to_unix_timestamp tool to convert ISO 8601 datetimes. For " +
		"'how many' questions set first to 1; totalCount is returned for every " +
		"query."
}

func (t *SearchMisconfigurationsTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"filters": map[string]any{
				"type": "string",
				"description": "JSON-encoded array of filter objects, e.g. " +
					`[{"fieldId": "severity", "filterType": "string_in", "values": ["HIGH"]}]`,
			},
			"first": map[string]any{
				"type":        "integer",
				"description": "Number of misconfigurations to retrieve (1-100)",
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
				"description": "Surface filter",
				"enum":        []string{"ALL", "CLOUD", "KUBERNETES", "IDENTITY", "INFRASTRUCTURE_AS_CODE"},
				"default":     "ALL",
			},
			"fields": map[string]any{
				"type":        "string",
				"description": "Optional JSON-encoded array of field names to return",
			},
		},
	}
}

func (t *SearchMisconfigurationsTool) RequiredScopes() []string {
	return []string{mcp.ScopeReadMisconfigurations}
}

func (t *SearchMisconfigurationsTool) Execute(ctx context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	first, err := firstArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}
	after, err := cursorArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}
	viewType, err := misconfigurations.ParseViewType(stringArg(args, "view_type"))
	if err != nil {
		return errorResult("%v", err), nil
	}
	fields, err := fieldsArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}
	filters, err := filtersArg(args, misconfigurations.FilterFields)
	if err != nil {
		return errorResult("%v", err), nil
	}

	conn, err := t.client.Search(ctx, filters, first, after, viewType, fields)
	if err != nil {
		return backendFailure("search_misconfigurations", err), nil
	}
	return jsonResult(conn)
}

// MisconfigurationNotesTool implements the get_misconfiguration_notes MCP tool.
type MisconfigurationNotesTool struct {
	client *misconfigurations.Client
}

func NewMisconfigurationNotesTool(client *misconfigurations.Client) *MisconfigurationNotesTool {
	return &MisconfigurationNotesTool{client: client}
}

func (t *MisconfigurationNotesTool) Name() string {
	return "get_misconfiguration_notes"
}

func (t *MisconfigurationNotesTool) Description() string {
	return "Get analyst notes attached to a misconfiguration finding, with " +
		"cursor pagination. Returns an empty connection when no notes exist."
}

func (t *MisconfigurationNotesTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"misconfiguration_id": map[string]any{
				"type":        "string",
				"description": "The unique identifier of the misconfiguration",
			},
			"first": map[string]any{
				"type":        "integer",
				"description": "Number of notes to retrieve (1-100)",
				"default":     10,
				"minimum":     1,
				"maximum":     100,
			},
			"after": map[string]any{
				"type":        "string",
				"description": "Pagination cursor from the previous response",
			},
		},
		"required": []string{"misconfiguration_id"},
	}
}

func (t *MisconfigurationNotesTool) RequiredScopes() []string {
	return []string{mcp.ScopeReadMisconfigurations}
}

func (t *MisconfigurationNotesTool) Execute(ctx context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	id, err := requiredID(args, "misconfiguration_id")
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

	notes, err := t.client.Notes(ctx, id, first, after)
	if err != nil {
		return backendFailure("get_misconfiguration_notes", err), nil
	}
	return jsonResult(notes)
}

// MisconfigurationHistoryTool implements the get_misconfiguration_history MCP tool.
type MisconfigurationHistoryTool struct {
	client *misconfigurations.Client
}

func NewMisconfigurationHistoryTool(client *misconfigurations.Client) *MisconfigurationHistoryTool {
	return &MisconfigurationHistoryTool{client: client}
}

func (t *MisconfigurationHistoryTool) Name() string {
	return "get_misconfiguration_history"
}

func (t *MisconfigurationHistoryTool) Description() string {
	return "Get the chronological audit history for a misconfiguration " +
		"finding, with cursor pagination."
}

func (t *MisconfigurationHistoryTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"misconfiguration_id": map[string]any{
				"type":        "string",
				"description": "The unique identifier of the misconfiguration",
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
		"required": []string{"misconfiguration_id"},
	}
}

func (t *MisconfigurationHistoryTool) RequiredScopes() []string {
	return []string{mcp.ScopeReadMisconfigurations}
}

func (t *MisconfigurationHistoryTool) Execute(ctx context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	id, err := requiredID(args, "misconfiguration_id")
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

	history, err := t.client.History(ctx, id, first, after)
	if err != nil {
		return backendFailure("get_misconfiguration_history", err), nil
	}
	return jsonResult(history)
}
