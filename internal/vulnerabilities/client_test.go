package vulnerabilities

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelmcp/sentinelmcp/internal/filter"
	"github.com/sentinelmcp/sentinelmcp/internal/graphql"
)

type fakeExecutor struct {
	results []fakeResult
	queries []string
	vars    []map[string]any
}

type fakeResult struct {
	data string
	err  error
}

func (f *fakeExecutor) Execute(_ context.Context, _ string, query string, variables map[string]any) (map[string]any, error) {
	f.queries = append(f.queries, query)
	f.vars = append(f.vars, variables)
	if len(f.results) == 0 {
		return map[string]any{}, nil
	}
	next := f.results[0]
	f.results = f.results[1:]
	if next.err != nil {
		return nil, next.err
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(next.data), &data); err != nil {
		panic(err)
	}
	return data, nil
}

const emptyPage = `{"vulnerabilities": {"edges": [], "pageInfo": {"hasNextPage": false, "hasPreviousPage": false}, "totalCount": 0}}`

func TestClient_Get(t *testing.T) {
	t.Run("decodes scoring and software details", func(t *testing.T) {
		exec := &fakeExecutor{results: []fakeResult{
			{data: `{"vulnerability": {
				"id": "v1",
				"name": "CVE-2024-3094 in xz",
				"severity": "CRITICAL",
				"cve": {"id": "CVE-2024-3094", "nvdBaseScore": 10.0, "exploitedInTheWild": true},
				"software": {"name": "xz", "version": "5.6.0", "fixVersion": "5.6.2"}
			}}`},
		}}
		client := NewClientWithExecutor(exec, nil)

		vuln, err := client.Get(context.Background(), "v1")
		require.NoError(t, err)
		require.NotNil(t, vuln)
		assert.Equal(t, "v1", vuln.ID)
		require.NotNil(t, vuln.CVE)
		require.NotNil(t, vuln.CVE.NvdBaseScore)
		assert.Equal(t, 10.0, *vuln.CVE.NvdBaseScore)
		require.NotNil(t, vuln.CVE.ExploitedInTheWild)
		assert.True(t, *vuln.CVE.ExploitedInTheWild)
		require.NotNil(t, vuln.Software)
		assert.Equal(t, "5.6.2", vuln.Software.FixVersion)

		require.Len(t, exec.vars, 1)
		assert.Equal(t, "v1", exec.vars[0]["id"])
	})

	t.Run("missing vulnerability returns nil without error", func(t *testing.T) {
		exec := &fakeExecutor{results: []fakeResult{{data: `{"vulnerability": null}`}}}
		client := NewClientWithExecutor(exec, nil)

		vuln, err := client.Get(context.Background(), "missing")
		require.NoError(t, err)
		assert.Nil(t, vuln)
	})
}

func TestClient_List(t *testing.T) {
	t.Run("default selection renders with no leftover slots", func(t *testing.T) {
		exec := &fakeExecutor{results: []fakeResult{{data: emptyPage}}}
		client := NewClientWithExecutor(exec, nil)

		conn, err := client.List(context.Background(), 25, "", nil)
		require.NoError(t, err)
		require.NotNil(t, conn)
		assert.Empty(t, conn.Edges)

		require.Len(t, exec.queries, 1)
		assert.Contains(t, exec.queries[0], "cve { id nvdBaseScore riskScore")
		assert.NotContains(t, exec.queries[0], "${")
		assert.Equal(t, 25, exec.vars[0]["first"])
		assert.Nil(t, exec.vars[0]["after"])
	})

	t.Run("custom fields replace the default selection", func(t *testing.T) {
		exec := &fakeExecutor{results: []fakeResult{{data: emptyPage}}}
		client := NewClientWithExecutor(exec, nil)

		_, err := client.List(context.Background(), 10, "cursor1", []string{"severity", "status"})
		require.NoError(t, err)

		require.Len(t, exec.queries, 1)
		assert.Contains(t, exec.queries[0], "id\n")
		assert.Contains(t, exec.queries[0], "severity")
		assert.NotContains(t, exec.queries[0], "software {")
		assert.Equal(t, "cursor1", exec.vars[0]["after"])
	})

	t.Run("invalid field fails before any round trip", func(t *testing.T) {
		exec := &fakeExecutor{}
		client := NewClientWithExecutor(exec, nil)

		_, err := client.List(context.Background(), 10, "", []string{"droptable;"})
		var verr *filter.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Empty(t, exec.queries)
	})
}

func TestClient_Search(t *testing.T) {
	t.Run("filters ride through as variables", func(t *testing.T) {
		exec := &fakeExecutor{results: []fakeResult{
			{data: `{"vulnerabilities": {
				"edges": [{"node": {"id": "v1", "severity": "HIGH"}, "cursor": "c1"}],
				"pageInfo": {"hasNextPage": false, "hasPreviousPage": false, "endCursor": "c1"},
				"totalCount": 1
			}}`},
		}}
		client := NewClientWithExecutor(exec, nil)

		input, err := filter.Translate(filter.Spec{
			"fieldId": "severity", "filterType": "string_in", "values": []any{"HIGH", "CRITICAL"},
		}, FilterFields)
		require.NoError(t, err)

		conn, err := client.Search(context.Background(), []filter.Input{*input}, 10, "", nil)
		require.NoError(t, err)
		require.Len(t, conn.Edges, 1)
		assert.Equal(t, "v1", conn.Edges[0].Node.ID)

		require.Len(t, exec.vars, 1)
		sent, ok := exec.vars[0]["filters"].([]filter.Input)
		require.True(t, ok)
		require.Len(t, sent, 1)
		assert.Equal(t, "severity", sent[0].FieldID)
	})

	t.Run("nil filters serialize as null", func(t *testing.T) {
		exec := &fakeExecutor{results: []fakeResult{{data: emptyPage}}}
		client := NewClientWithExecutor(exec, nil)

		_, err := client.Search(context.Background(), nil, 10, "", nil)
		require.NoError(t, err)
		assert.Nil(t, exec.vars[0]["filters"])
	})

	t.Run("backend errors propagate unchanged", func(t *testing.T) {
		exec := &fakeExecutor{results: []fakeResult{
			{err: &graphql.GraphQLError{Errors: []graphql.ErrorDetail{{Message: "Permission denied"}}}},
		}}
		client := NewClientWithExecutor(exec, nil)

		_, err := client.Search(context.Background(), nil, 10, "", nil)
		require.Error(t, err)
		var gqlErr *graphql.GraphQLError
		require.ErrorAs(t, err, &gqlErr)
		assert.Len(t, exec.queries, 1)
	})
}

func TestClient_Notes(t *testing.T) {
	exec := &fakeExecutor{results: []fakeResult{
		{data: `{"vulnerabilityNotes": {
			"edges": [{"node": {"id": "n1", "text": "tracked upstream", "author": {"fullName": "Dana Op"}}, "cursor": "c1"}],
			"pageInfo": {"hasNextPage": false, "hasPreviousPage": false},
			"totalCount": 1
		}}`},
	}}
	client := NewClientWithExecutor(exec, nil)

	conn, err := client.Notes(context.Background(), "v1", 20, "")
	require.NoError(t, err)
	require.Len(t, conn.Edges, 1)
	assert.Equal(t, "tracked upstream", conn.Edges[0].Node.Text)
	require.NotNil(t, conn.Edges[0].Node.Author)
	assert.Equal(t, "Dana Op", conn.Edges[0].Node.Author.FullName)

	assert.Equal(t, "v1", exec.vars[0]["vulnerabilityId"])
}

func TestClient_History(t *testing.T) {
	exec := &fakeExecutor{results: []fakeResult{
		{data: `{"vulnerabilityHistory": {
			"edges": [{"node": {"eventType": "STATUS_CHANGED", "eventText": "status set to RESOLVED", "createdAt": "2025-06-01T00:00:00Z"}, "cursor": "c1"}],
			"pageInfo": {"hasNextPage": false, "hasPreviousPage": false},
			"totalCount": 1
		}}`},
	}}
	client := NewClientWithExecutor(exec, nil)

	conn, err := client.History(context.Background(), "v1", 10, "")
	require.NoError(t, err)
	require.Len(t, conn.Edges, 1)
	assert.Equal(t, "STATUS_CHANGED", conn.Edges[0].Node.EventType)
}

func TestClient_NoCapabilities(t *testing.T) {
	client := NewClientWithExecutor(&fakeExecutor{}, nil)
	assert.Empty(t, client.Capabilities().All())

	for _, query := range []string{listVulnerabilitiesQuery, searchVulnerabilitiesQuery} {
		assert.False(t, strings.Contains(query, "view_type"), "exposure queries take no view type")
	}
}

func TestFilterFields_ScoreRestrictions(t *testing.T) {
	_, err := filter.Translate(filter.Spec{
		"fieldId": "cveNvdBaseScore", "filterType": "int_range", "values": []any{map[string]any{"start": json.Number("7")}},
	}, FilterFields)
	require.Error(t, err)

	input, err := filter.Translate(filter.Spec{
		"fieldId": "cveEpssScore", "filterType": "string_in", "values": []any{"0.9"},
	}, FilterFields)
	require.NoError(t, err)
	require.NotNil(t, input.StringIn)
}
