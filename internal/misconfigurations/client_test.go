package misconfigurations

import (
	"context"
	"encoding/json"
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

const emptyPage = `{"misconfigurations": {"edges": [], "pageInfo": {"hasNextPage": false, "hasPreviousPage": false}, "totalCount": 0}}`

func TestClient_Get(t *testing.T) {
	t.Run("decodes nested finding", func(t *testing.T) {
		exec := &fakeExecutor{results: []fakeResult{
			{data: `{"misconfiguration": {
				"id": "m1",
				"severity": "HIGH",
				"asset": {"id": "as1", "cloudInfo": {"providerName": "aws", "region": "us-east-1"}},
				"remediation": {"mitigable": true, "mitigationSteps": ["rotate key"]}
			}}`},
		}}
		client := NewClientWithExecutor(exec, nil)

		finding, err := client.Get(context.Background(), "m1")
		require.NoError(t, err)
		require.NotNil(t, finding)
		assert.Equal(t, "m1", finding.ID)
		require.NotNil(t, finding.Asset)
		require.NotNil(t, finding.Asset.CloudInfo)
		assert.Equal(t, "aws", finding.Asset.CloudInfo.ProviderName)
		require.NotNil(t, finding.Remediation)
		assert.Equal(t, []string{"rotate key"}, finding.Remediation.MitigationSteps)
	})

	t.Run("missing finding returns nil without error", func(t *testing.T) {
		exec := &fakeExecutor{results: []fakeResult{{data: `{"misconfiguration": null}`}}}
		client := NewClientWithExecutor(exec, nil)

		finding, err := client.Get(context.Background(), "missing")
		require.NoError(t, err)
		assert.Nil(t, finding)
	})
}

func TestClient_List(t *testing.T) {
	t.Run("viewType rides in while the capability is enabled", func(t *testing.T) {
		exec := &fakeExecutor{results: []fakeResult{{data: emptyPage}}}
		client := NewClientWithExecutor(exec, nil)

		_, err := client.List(context.Background(), 10, "", ViewTypeCloud, nil)
		require.NoError(t, err)

		require.Len(t, exec.queries, 1)
		assert.Contains(t, exec.queries[0], "viewType: $viewType")
		assert.Equal(t, "CLOUD", exec.vars[0]["viewType"])
	})

	t.Run("custom field selection validates against the catalog", func(t *testing.T) {
		exec := &fakeExecutor{}
		client := NewClientWithExecutor(exec, nil)

		_, err := client.List(context.Background(), 10, "", ViewTypeAll, []string{"id", "bogus"})
		require.Error(t, err)
		assert.ErrorAs(t, err, new(*filter.ValidationError))
		assert.Empty(t, exec.queries)
	})
}

func TestClient_SchemaFallback(t *testing.T) {
	exec := &fakeExecutor{results: []fakeResult{
		{err: &graphql.GraphQLError{Errors: []graphql.ErrorDetail{
			{Message: `Cannot query field 'viewType' on type 'Query'`},
		}}},
		{data: emptyPage},
	}}
	client := NewClientWithExecutor(exec, nil)

	_, err := client.List(context.Background(), 10, "", ViewTypeKubernetes, nil)
	require.NoError(t, err)

	require.Len(t, exec.queries, 2)
	assert.NotContains(t, exec.queries[1], "viewType")
	assert.NotContains(t, exec.vars[1], "viewType")
	assert.False(t, client.Capabilities().ByName("viewType").Enabled())

	exec.results = []fakeResult{{data: emptyPage}}
	_, err = client.List(context.Background(), 10, "", ViewTypeAll, nil)
	require.NoError(t, err)
	require.Len(t, exec.queries, 3)
	assert.NotContains(t, exec.queries[2], "viewType")
}

func TestClient_Search(t *testing.T) {
	exec := &fakeExecutor{results: []fakeResult{{data: emptyPage}}}
	client := NewClientWithExecutor(exec, nil)

	input, err := filter.Translate(filter.Spec{
		"fieldId": "mitigable", "filterType": "boolean_equals", "value": true,
	}, FilterFields)
	require.NoError(t, err)

	_, err = client.Search(context.Background(), []filter.Input{*input}, 1, "", ViewTypeAll, nil)
	require.NoError(t, err)

	filters, ok := exec.vars[0]["filters"].([]filter.Input)
	require.True(t, ok)
	require.Len(t, filters, 1)
	assert.Equal(t, "mitigable", filters[0].FieldID)
	require.NotNil(t, filters[0].BooleanEqual)
}

func TestClient_NotesAndHistory(t *testing.T) {
	t.Run("notes connection decodes", func(t *testing.T) {
		exec := &fakeExecutor{results: []fakeResult{
			{data: `{"misconfigurationNotes": {
				"edges": [{"node": {"id": "n1", "text": "fix pending", "misconfigurationId": "m1"}, "cursor": "c1"}],
				"pageInfo": {"hasNextPage": false, "hasPreviousPage": false},
				"totalCount": 1
			}}`},
		}}
		client := NewClientWithExecutor(exec, nil)

		conn, err := client.Notes(context.Background(), "m1", 10, "")
		require.NoError(t, err)
		require.Len(t, conn.Edges, 1)
		assert.Equal(t, "fix pending", conn.Edges[0].Node.Text)
	})

	t.Run("missing history yields empty connection", func(t *testing.T) {
		exec := &fakeExecutor{results: []fakeResult{{data: `{"misconfigurationHistory": null}`}}}
		client := NewClientWithExecutor(exec, nil)

		conn, err := client.History(context.Background(), "m1", 10, "")
		require.NoError(t, err)
		assert.Empty(t, conn.Edges)
	})
}

func TestParseViewType(t *testing.T) {
	for _, vt := range ViewTypes {
		parsed, err := ParseViewType(string(vt))
		require.NoError(t, err)
		assert.Equal(t, vt, parsed)
	}

	parsed, err := ParseViewType("")
	require.NoError(t, err)
	assert.Equal(t, ViewTypeAll, parsed)

	_, err = ParseViewType("ON_PREM")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INFRASTRUCTURE_AS_CODE")
}
