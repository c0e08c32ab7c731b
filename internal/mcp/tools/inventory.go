package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sentinelmcp/sentinelmcp/internal/inventory"
	"github.com/sentinelmcp/sentinelmcp/internal/mcp"
)

// maxInventoryLimit caps one page of inventory results.
const maxInventoryLimit = 1000

func inventoryLimitArgs(args map[string]any) (limit, skip int, err error) {
	limit, err = intArg(args, "limit", 50)
	if err != nil {
		return 0, 0, err
	}
	if limit < 1 || limit > maxInventoryLimit {
		return 0, 0, fmt.Errorf("limit must be between 1 and %d", maxInventoryLimit)
	}
	skip, err = intArg(args, "skip", 0)
	if err != nil {
		return 0, 0, err
	}
	if skip < 0 {
		return 0, 0, fmt.Errorf("skip must be non-negative")
	}
	return limit, skip, nil
}

// GetInventoryItemTool implements the get_inventory_item MCP tool.
type GetInventoryItemTool struct {
	client *inventory.Client
}

func NewGetInventoryItemTool(client *inventory.Client) *GetInventoryItemTool {
	return &GetInventoryItemTool{client: client}
}

func (t *GetInventoryItemTool) Name() string {
	return "get_inventory_item"
}

func (t *GetInventoryItemTool) Description() string {
	return "Get detailed information about a specific asset inventory item by " +
		"ID, covering endpoint, cloud, identity, and network discovery " +
		"surfaces. Returns null if no item matches the given ID."
}

func (t *GetInventoryItemTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"item_id": map[string]any{
				"type":        "string",
				"description": "The unique identifier of the inventory item",
			},
		},
		"required": []string{"item_id"},
	}
}

func (t *GetInventoryItemTool) RequiredScopes() []string {
	return []string{mcp.ScopeReadInventory}
}

func (t *GetInventoryItemTool) Execute(ctx context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	itemID, err := requiredID(args, "item_id")
	if err != nil {
		return nil, err
	}

	item, err := t.client.Get(ctx, itemID)
	if err != nil {
		log.Error().Err(err).Str("item_id", itemID).Msg("MCP: get_inventory_item failed")
		return errorResult("failed to retrieve inventory item %s: %v", itemID, err), nil
	}
	if item == nil {
		return nullResult()
	}
	return jsonResult(item)
}

// ListInventoryItemsTool implements the list_inventory_items MCP tool.
type ListInventoryItemsTool struct {
	client *inventory.Client
}

func NewListInventoryItemsTool(client *inventory.Client) *ListInventoryItemsTool {
	return &ListInventoryItemsTool{client: client}
}

func (t *ListInventoryItemsTool) Name() string {
	return "list_inventory_items"
}

func (t *ListInventoryItemsTool) Description() string {
	return "List asset inventory items with offset pagination, optionally " +
		"scoped to a single surface (ENDPOINT, CLOUD, IDENTITY, " +
		"NETWORK_DISCOVERY). Use search_inventory_items for filtered queries."
}

func (t *ListInventoryItemsTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"limit": map[string]any{
				"type":        "integer",
				"description": "Number of items to retrieve (1-1000)",
				"default":     50,
				"minimum":     1,
				"maximum":     maxInventoryLimit,
			},
			"skip": map[string]any{
				"type":        "integer",
				"description": "Number of items to skip for pagination",
				"default":     0,
				"minimum":     0,
			},
			"surface": map[string]any{
				"type":        "string",
				"description": "Optional surface filter",
				"enum":        []string{"ENDPOINT", "CLOUD", "IDENTITY", "NETWORK_DISCOVERY"},
			},
		},
	}
}

func (t *ListInventoryItemsTool) RequiredScopes() []string {
	return []string{mcp.ScopeReadInventory}
}

func (t *ListInventoryItemsTool) Execute(ctx context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	limit, skip, err := inventoryLimitArgs(args)
	if err != nil {
		return errorResult("%v", err), nil
	}
	surface, err := inventory.ParseSurface(stringArg(args, "surface"))
	if err != nil {
		return errorResult("%v", err), nil
	}

	resp, err := t.client.List(ctx, limit, skip, surface)
	if err != nil {
		return backendFailure("list_inventory_items", err), nil
	}
	return jsonResult(resp)
}

// SearchInventoryItemsTool implements the search_inventory_items MCP tool.
type SearchInventoryItemsTool struct {
	client *inventory.Client
}

func NewSearchInventoryItemsTool(client *inventory.Client) *SearchInventoryItemsTool {
	return &SearchInventoryItemsTool{client: client}
}

func (t *SearchInventoryItemsTool) Name() string {
	return "search_inventory_items"
}

func (t *SearchInventoryItemsTool) Description() string {
	return "Search asset inventory items using REST filters. Filters are a " +
		"JSON-encoded object of field conditions, e.g. " +
		`{"osType": "windows", "agentVersion__contains": "23.1"}. ` +
		"Surface filtering is not supported here; use list_inventory_items " +
		"for surface-specific queries."
}

func (t *SearchInventoryItemsTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"filters": map[string]any{
				"type":        "string",
				"description": "JSON-encoded object of filter conditions",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Number of items to retrieve (1-1000)",
				"default":     50,
				"minimum":     1,
				"maximum":     maxInventoryLimit,
			},
			"skip": map[string]any{
				"type":        "integer",
				"description": "Number of items to skip for pagination",
				"default":     0,
				"minimum":     0,
			},
		},
	}
}

func (t *SearchInventoryItemsTool) RequiredScopes() []string {
	return []string{mcp.ScopeReadInventory}
}

func (t *SearchInventoryItemsTool) Execute(ctx context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	limit, skip, err := inventoryLimitArgs(args)
	if err != nil {
		return errorResult("%v", err), nil
	}

	filters := map[string]any{}
	if raw := stringArg(args, "filters"); raw != "" {
		var parsed any
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return errorResult("invalid JSON in filters parameter: %v", err), nil
		}
		obj, ok := parsed.(map[string]any)
		if !ok {
			return errorResult("filters must be a dictionary/object"), nil
		}
		filters = obj
	}

	resp, err := t.client.Search(ctx, filters, limit, skip)
	if err != nil {
		return backendFailure("search_inventory_items", err), nil
	}
	return jsonResult(resp)
}
