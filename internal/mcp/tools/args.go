package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sentinelmcp/sentinelmcp/internal/filter"
	"github.com/sentinelmcp/sentinelmcp/internal/mcp"
)

// stringArg reads an optional string argument.
func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// requiredID reads a required identifier argument, rejecting blank values.
func requiredID(args map[string]any, key string) (string, error) {
	id, ok := args[key].(string)
	if !ok || strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return id, nil
}

// intArg reads an optional integer argument. JSON numbers decode as
// float64, so both representations are accepted.
func intArg(args map[string]any, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return int(n), nil
	case int:
		return n, nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("%s must be an integer", key)
	}
}

// firstArg reads the page size argument, defaulting to 10.
func firstArg(args map[string]any) (int, error) {
	first, err := intArg(args, "first", 10)
	if err != nil {
		return 0, err
	}
	if first < 1 || first > 100 {
		return 0, fmt.Errorf("first must be between 1 and 100")
	}
	return first, nil
}

// cursorArg reads the pagination cursor argument. A cursor that is
// present but blank is rejected rather than silently treated as absent.
func cursorArg(args map[string]any) (string, error) {
	v, ok := args["after"]
	if !ok || v == nil {
		return "", nil
	}
	cursor, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("cursor must be a string")
	}
	if strings.TrimSpace(cursor) == "" {
		return "", fmt.Errorf("cursor cannot be empty")
	}
	return cursor, nil
}

// fieldsArg parses the optional fields argument, a JSON-encoded array of
// field names.
func fieldsArg(args map[string]any) ([]string, error) {
	v, ok := args["fields"]
	if !ok || v == nil {
		return nil, nil
	}
	raw, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("fields must be a JSON-encoded string")
	}
	return filter.ParseFields(raw)
}

// filtersArg parses the optional filters argument, a JSON-encoded array
// of filter objects, and translates it against the domain field table.
// All validation happens here, before anything touches the network.
func filtersArg(args map[string]any, table filter.FieldTable) ([]filter.Input, error) {
	v, ok := args["filters"]
	if !ok || v == nil {
		return nil, nil
	}
	raw, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("filters must be a JSON-encoded string")
	}

	specs, err := filter.ParseFilters(raw)
	if err != nil {
		return nil, err
	}
	return filter.TranslateAll(specs, table)
}

// jsonResult serializes v as indented JSON and wraps it in a text result.
func jsonResult(v any) (*mcp.ToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("failed to serialize result: %v", err), nil
	}
	return &mcp.ToolResult{
		Content: []mcp.Content{mcp.TextContent(string(data))},
	}, nil
}

// nullResult is what get-by-id tools return when nothing matches.
func nullResult() (*mcp.ToolResult, error) {
	return &mcp.ToolResult{
		Content: []mcp.Content{mcp.TextContent("null")},
	}, nil
}

// errorResult wraps a formatted message in an error tool result.
func errorResult(format string, a ...any) *mcp.ToolResult {
	return &mcp.ToolResult{
		Content: []mcp.Content{mcp.ErrorContent(fmt.Sprintf(format, a...))},
		IsError: true,
	}
}

// backendFailure maps a backend error to an error tool result, logging
// anything that is not a caller mistake.
func backendFailure(tool string, err error) *mcp.ToolResult {
	var verr *filter.ValidationError
	if !errors.As(err, &verr) {
		log.Error().Err(err).Str("tool", tool).Msg("MCP: backend call failed")
	}
	return errorResult("%v", err)
}
