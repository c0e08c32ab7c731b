package tools

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/sentinelmcp/sentinelmcp/internal/mcp"
	"github.com/sentinelmcp/sentinelmcp/internal/vulnerabilities"
)

// GetVulnerabilityTool implements the get_vulnerability MCP tool.
type GetVulnerabilityTool struct {
	client *vulnerabilities.Client
}

func NewGetVulnerabilityTool(client *vulnerabilities.Client) *GetVulnerabilityTool {
	return &GetVulnerabilityTool{client: client}
}

func (t *GetVulnerabilityTool) Name() string {
	return "get_vulnerability"
}

func (t *GetVulnerabilityTool) Description() string {
	return "Get detailed information about a specific vulnerability finding by " +
		"ID, including CVE details, scores, the affected asset and software, " +
		"and remediation data. Returns null if no vulnerability matches the " +
		"given ID."
}

func (t *GetVulnerabilityTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"vulnerability_id": map[string]any{
				"type":        "string",
				"description": "The unique identifier of the vulnerability",
			},
		},
		"required": []string{"vulnerability_id"},
	}
}

func (t *GetVulnerabilityTool) RequiredScopes() []string {
	return []string{mcp.ScopeReadVulnerabilities}
}

func (t *GetVulnerabilityTool) Execute(ctx context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	id, err := requiredID(args, "vulnerability_id")
	if err != nil {
		return nil, err
	}

	vuln, err := t.client.Get(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("vulnerability_id", id).Msg("MCP: get_vulnerability failed")
		return errorResult("failed to retrieve vulnerability %s: %v", id, err), nil
	}
	if vuln == nil {
		return nullResult()
	}
	return jsonResult(vuln)
}

// ListVulnerabilitiesTool implements the list_vulnerabilities MCP tool.
type ListVulnerabilitiesTool struct {
	client *vulnerabilities.Client
}

func NewListVulnerabilitiesTool(client *vulnerabilities.Client) *ListVulnerabilitiesTool {
	return &ListVulnerabilitiesTool{client: client}
}

func (t *ListVulnerabilitiesTool) Name() string {
	return "list_vulnerabilities"
}

func (t *ListVulnerabilitiesTool) Description() string {
	return "List vulnerability findings with cursor pagination. Use " +
		"search_vulnerabilities for advanced filtering by severity, status, " +
		"CVE attributes, or time ranges."
}

func (t *ListVulnerabilitiesTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"first": map[string]any{
				"type":        "integer",
				"description": "Number of vulnerabilities to retrieve (1-100)",
				"default":     10,
				"minimum":     1,
				"maximum":     100,
			},
			"after": map[string]any{
				"type":        "string",
				"description": "Pagination cursor from the previous response",
			},
			"fields": map[string]any{
				"type":        "string",
				"description": "Optional JSON-encoded array of field names to return",
			},
		},
	}
}

func (t *ListVulnerabilitiesTool) RequiredScopes() []string {
	return []string{mcp.ScopeReadVulnerabilities}
}

func (t *ListVulnerabilitiesTool) Execute(ctx context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	first, err := firstArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}
	after, err := cursorArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}
	fields, err := fieldsArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}

	conn, err := t.client.List(ctx, first, after, fields)
	if err != nil {
		return backendFailure("list_vulnerabilities", err), nil
	}
	return jsonResult(conn)
}

// SearchVulnerabilitiesTool implements the search_vulnerabilities MCP tool.
type SearchVulnerabilitiesTool struct {
	client *vulnerabilities.Client
}

func NewSearchVulnerabilitiesTool(client *vulnerabilities.Client) *SearchVulnerabilitiesTool {
	return &SearchVulnerabilitiesTool{client: client}
}

func (t *SearchVulnerabilitiesTool) Name() string {
	return "search_vulnerabilities"
}

func (t *SearchVulnerabilitiesTool) Description() string {
	return "Search vulnerability findings using advanced filters. Filters are " +
		"a JSON-encoded array of objects with fieldId, filterType, and the " +
		"value keys that type requires (see search_alerts for the filter type " +
		"reference). Note that cveNvdBaseScore and cveRiskScore are sort-only " +
		"and cannot be filtered; cveEpssScore accepts string_in only. Datetime " +
		"filters take UNIX milliseconds; use the iso_to_unix_timestamp tool to " +
		"convert ISO 8601 datetimes. For 'how many' questions set first to 1; " +
		"totalCount is returned for every query."
}

func (t *SearchVulnerabilitiesTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"filters": map[string]any{
				"type": "string",
				"description": "JSON-encoded array of filter objects, e.g. " +
					`[{"fieldId": "severity", "filterType": "string_in", "values": ["CRITICAL"]}]`,
			},
			"first": map[string]any{
				"type":        "integer",
				"description": "Number of vulnerabilities to retrieve (1-100)",
				"default":     10,
				"minimum":     1,
				"maximum":     100,
			},
			"after": map[string]any{
				"type":        "string",
				"description": "Pagination cursor from the previous response",
			},
			"fields": map[string]any{
				"type":        "string",
				"description": "Optional JSON-encoded array of field names to return",
			},
		},
	}
}

func (t *SearchVulnerabilitiesTool) RequiredScopes() []string {
	return []string{mcp.ScopeReadVulnerabilities}
}

func (t *SearchVulnerabilitiesTool) Execute(ctx context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	first, err := firstArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}
	after, err := cursorArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}
	fields, err := fieldsArg(args)
	if err != nil {
		return errorResult("%v", err), nil
	}
	filters, err := filtersArg(args, vulnerabilities.FilterFields)
	if err != nil {
		return errorResult("%v", err), nil
	}

	conn, err := t.client.Search(ctx, filters, first, after, fields)
	if err != nil {
		return backendFailure("search_vulnerabilities", err), nil
	}
	return jsonResult(conn)
}

// VulnerabilityNotesTool implements the get_vulnerability_notes MCP tool.
type VulnerabilityNotesTool struct {
	client *vulnerabilities.Client
}

func NewVulnerabilityNotesTool(client *vulnerabilities.Client) *VulnerabilityNotesTool {
	return &VulnerabilityNotesTool{client: client}
}

func (t *VulnerabilityNotesTool) Name() string {
	return "get_vulnerability_notes"
}

func (t *VulnerabilityNotesTool) Description() string {
	return "Get analyst notes attached to a vulnerability finding, with " +
		"cursor pagination. Returns an empty connection when no notes exist."
}

func (t *VulnerabilityNotesTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"vulnerability_id": map[string]any{
				"type":        "string",
				"description": "The unique identifier of the vulnerability",
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
		"required": []string{"vulnerability_id"},
	}
}

func (t *VulnerabilityNotesTool) RequiredScopes() []string {
	return []string{mcp.ScopeReadVulnerabilities}
}

func (t *VulnerabilityNotesTool) Execute(ctx context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	id, err := requiredID(args, "vulnerability_id")
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
		return backendFailure("get_vulnerability_notes", err), nil
	}
	return jsonResult(notes)
}

// VulnerabilityHistoryTool implements the get_vulnerability_history MCP tool.
type VulnerabilityHistoryTool struct {
	client *vulnerabilities.Client
}

func NewVulnerabilityHistoryTool(client *vulnerabilities.Client) *VulnerabilityHistoryTool {
	return &VulnerabilityHistoryTool{client: client}
}

func (t *VulnerabilityHistoryTool) Name() string {
	return "get_vulnerability_history"
}

func (t *VulnerabilityHistoryTool) Description() string {
	return "Get the chronological audit history for a vulnerability finding, " +
		"with cursor pagination."
}

func (t *VulnerabilityHistoryTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"vulnerability_id": map[string]any{
				"type":        "string",
				"description": "The unique identifier of the vulnerability",
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
		"required": []string{"vulnerability_id"},
	}
}

func (t *VulnerabilityHistoryTool) RequiredScopes() []string {
	return []string{mcp.ScopeReadVulnerabilities}
}

func (t *VulnerabilityHistoryTool) Execute(ctx context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	id, err := requiredID(args, "vulnerability_id")
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
		return backendFailure("get_vulnerability_history", err), nil
	}
	return jsonResult(history)
}
