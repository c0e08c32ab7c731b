package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sentinelmcp/sentinelmcp/internal/mcp"
)

// isoLayouts are tried in order when the input carries no UTC offset.
// Offset-less datetimes are interpreted as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// IsoToUnixTimestampTool converts ISO 8601 datetimes to the UNIX
// millisecond timestamps the datetime_range filters expect.
type IsoToUnixTimestampTool struct{}

func NewIsoToUnixTimestampTool() *IsoToUnixTimestampTool {
	return &IsoToUnixTimestampTool{}
}

func (t *IsoToUnixTimestampTool) Name() string {
	return "iso_to_unix_timestamp"
}

func (t *IsoToUnixTimestampTool) Description() string {
	return "Convert an ISO 8601 datetime string to a UNIX timestamp in " +
		"milliseconds (UTC), as required by datetime_range filters in alert, " +
		"misconfiguration, vulnerability, and inventory searches. Provide the " +
		"datetime in the user's timezone using an explicit offset (e.g. " +
		"'2024-10-30T08:00:00-04:00'); conversion to UTC happens here. Inputs " +
		"without an offset are treated as UTC."
}

func (t *IsoToUnixTimestampTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"iso_datetime": map[string]any{
				"type":        "string",
				"description": "ISO 8601 datetime string, e.g. '2025-10-30T12:00:00Z'",
			},
		},
		"required": []string{"iso_datetime"},
	}
}

// RequiredScopes is empty: timestamp conversion is available to every
// authenticated caller.
func (t *IsoToUnixTimestampTool) RequiredScopes() []string {
	return []string{}
}

func (t *IsoToUnixTimestampTool) Execute(_ context.Context, args map[string]any, _ *mcp.AuthContext) (*mcp.ToolResult, error) {
	raw, err := requiredID(args, "iso_datetime")
	if err != nil {
		return nil, err
	}

	ts, err := parseISODatetime(raw)
	if err != nil {
		return errorResult("%v", err), nil
	}

	return &mcp.ToolResult{
		Content: []mcp.Content{mcp.TextContent(strconv.FormatInt(ts.UnixMilli(), 10))},
	}, nil
}

func parseISODatetime(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)

	for _, layout := range isoLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, nil
		}
	}

	return time.Time{}, fmt.Errorf(
		"invalid ISO 8601 datetime format: '%s'. Expected format like '2025-10-30T12:00:00Z'", raw)
}
