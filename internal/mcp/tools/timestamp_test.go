package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsoToUnixTimestampTool(t *testing.T) {
	tool := NewIsoToUnixTimestampTool()

	assert.Equal(t, "iso_to_unix_timestamp", tool.Name())
	assert.Empty(t, tool.RequiredScopes())

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"utc with z suffix", "2025-10-30T12:00:00Z", "1761825600000"},
		{"utc with explicit offset", "2025-10-30T12:00:00+00:00", "1761825600000"},
		{"eastern time offset", "2024-10-30T08:00:00-04:00", "1730289600000"},
		{"no timezone treated as utc", "2025-10-30T12:00:00", "1761825600000"},
		{"fractional seconds", "2025-10-30T12:00:00.500Z", "1761825600500"},
		{"date only", "2025-10-30", "1761782400000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tool.Execute(context.Background(), map[string]any{"iso_datetime": tt.input}, nil)
			require.NoError(t, err)
			require.False(t, result.IsError)
			require.Len(t, result.Content, 1)
			assert.Equal(t, tt.expected, result.Content[0].Text)
		})
	}
}

func TestIsoToUnixTimestampTool_Invalid(t *testing.T) {
	tool := NewIsoToUnixTimestampTool()

	result, err := tool.Execute(context.Background(), map[string]any{"iso_datetime": "next tuesday"}, nil)
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "invalid ISO 8601 datetime format")
	assert.Contains(t, result.Content[0].Text, "next tuesday")
}

func TestIsoToUnixTimestampTool_MissingArg(t *testing.T) {
	tool := NewIsoToUnixTimestampTool()

	_, err := tool.Execute(context.Background(), map[string]any{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iso_datetime is required")
}
