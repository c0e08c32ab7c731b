package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelmcp/sentinelmcp/internal/alerts"
	"github.com/sentinelmcp/sentinelmcp/internal/mcp"
)

// fakeExecutor scripts backend responses so tools run without a server.
type fakeExecutor struct {
	data       map[string]any
	err        error
	operations []string
}

func (f *fakeExecutor) Execute(_ context.Context, operation, _ string, _ map[string]any) (map[string]any, error) {
	f.operations = append(f.operations, operation)
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func alertsTool(data map[string]any, err error) (*alerts.Client, *fakeExecutor) {
	exec := &fakeExecutor{data: data, err: err}
	return alerts.NewClientWithExecutor(exec, nil), exec
}

func TestGetAlertTool(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		client, _ := alertsTool(map[string]any{
			"alert": map[string]any{
				"id":       "alert-1",
				"name":     "Suspicious process",
				"severity": "HIGH",
			},
		}, nil)
		tool := NewGetAlertTool(client)

		result, err := tool.Execute(context.Background(), map[string]any{"alert_id": "alert-1"}, nil)
		require.NoError(t, err)
		require.False(t, result.IsError)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &decoded))
		assert.Equal(t, "alert-1", decoded["id"])
		assert.Equal(t, "HIGH", decoded["severity"])
	})

	t.Run("missing alert returns null", func(t *testing.T) {
		client, _ := alertsTool(map[string]any{"alert": nil}, nil)
		tool := NewGetAlertTool(client)

		result, err := tool.Execute(context.Background(), map[string]any{"alert_id": "nope"}, nil)
		require.NoError(t, err)
		require.False(t, result.IsError)
		assert.Equal(t, "null", result.Content[0].Text)
	})

	t.Run("blank id rejected", func(t *testing.T) {
		client, exec := alertsTool(nil, nil)
		tool := NewGetAlertTool(client)

		_, err := tool.Execute(context.Background(), map[string]any{"alert_id": "  "}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "alert_id is required")
		assert.Empty(t, exec.operations)
	})

	t.Run("scopes", func(t *testing.T) {
		client, _ := alertsTool(nil, nil)
		assert.Equal(t, []string{mcp.ScopeReadAlerts}, NewGetAlertTool(client).RequiredScopes())
	})
}

func TestSearchAlertsTool(t *testing.T) {
	emptyConnection := map[string]any{
		"alerts": map[string]any{
			"edges": []any{},
			"pageInfo": map[string]any{
				"hasNextPage":     false,
				"hasPreviousPage": false,
			},
			"totalCount": float64(0),
		},
	}

	t.Run("valid filters reach the backend", func(t *testing.T) {
		client, exec := alertsTool(emptyConnection, nil)
		tool := NewSearchAlertsTool(client)

		args := map[string]any{
			"filters": `[{"fieldId": "severity", "filterType": "string_in", "values": ["CRITICAL"]}]`,
			"first":   float64(1),
		}
		result, err := tool.Execute(context.Background(), args, nil)
		require.NoError(t, err)
		require.False(t, result.IsError)
		assert.Equal(t, []string{"search_alerts"}, exec.operations)
		assert.Contains(t, result.Content[0].Text, "totalCount")
	})

	t.Run("invalid filters fail before any network call", func(t *testing.T) {
		client, exec := alertsTool(emptyConnection, nil)
		tool := NewSearchAlertsTool(client)

		args := map[string]any{
			"filters": `[{"fieldId": "severity", "filterType": "bogus", "value": "HIGH"}]`,
		}
		result, err := tool.Execute(context.Background(), args, nil)
		require.NoError(t, err)
		require.True(t, result.IsError)
		assert.Contains(t, result.Content[0].Text, "bogus")
		assert.Empty(t, exec.operations)
	})

	t.Run("invalid view_type rejected", func(t *testing.T) {
		client, exec := alertsTool(emptyConnection, nil)
		tool := NewSearchAlertsTool(client)

		result, err := tool.Execute(context.Background(), map[string]any{"view_type": "EVERYTHING"}, nil)
		require.NoError(t, err)
		require.True(t, result.IsError)
		assert.Contains(t, result.Content[0].Text, "invalid view_type")
		assert.Empty(t, exec.operations)
	})

	t.Run("first out of range rejected", func(t *testing.T) {
		client, exec := alertsTool(emptyConnection, nil)
		tool := NewSearchAlertsTool(client)

		result, err := tool.Execute(context.Background(), map[string]any{"first": float64(500)}, nil)
		require.NoError(t, err)
		require.True(t, result.IsError)
		assert.Contains(t, result.Content[0].Text, "first must be between 1 and 100")
		assert.Empty(t, exec.operations)
	})
}

func TestAlertNotesTool(t *testing.T) {
	client, _ := alertsTool(map[string]any{
		"alertNotes": map[string]any{
			"data": []any{
				map[string]any{"id": "note-1", "text": "checked the host"},
			},
		},
	}, nil)
	tool := NewAlertNotesTool(client)

	result, err := tool.Execute(context.Background(), map[string]any{"alert_id": "alert-1"}, nil)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var notes []map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "note-1", notes[0]["id"])
}

func TestAlertHistoryTool(t *testing.T) {
	client, exec := alertsTool(map[string]any{
		"alertHistory": map[string]any{
			"edges": []any{},
			"pageInfo": map[string]any{
				"hasNextPage":     false,
				"hasPreviousPage": false,
			},
		},
	}, nil)
	tool := NewAlertHistoryTool(client)

	result, err := tool.Execute(context.Background(), map[string]any{
		"alert_id": "alert-1",
		"first":    float64(5),
	}, nil)
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Equal(t, []string{"get_alert_history"}, exec.operations)
}
