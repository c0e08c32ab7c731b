package alerts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sentinelmcp/sentinelmcp/internal/filter"
	"github.com/sentinelmcp/sentinelmcp/internal/graphql"
	"github.com/sentinelmcp/sentinelmcp/internal/observability"
)

// Domain is the label used for logs, spans, and metrics.
const Domain = "alerts"

// Connection is a page of alerts.
type Connection = graphql.Connection[Alert]

// HistoryConnection is a page of alert history events.
type HistoryConnection = graphql.Connection[HistoryEvent]

// Client talks to the unified alerts GraphQL API. Two schema capabilities
// are probed at runtime: the viewType argument and the dataSources field,
// both absent from older backends.
type Client struct {
	exec        graphql.Executor
	viewType    *graphql.Capability
	dataSources *graphql.Capability
	metrics     *observability.Metrics
}

// NewClient builds a client against a live endpoint.
func NewClient(cfg graphql.Config) *Client {
	if cfg.Domain == "" {
		cfg.Domain = Domain
	}
	return NewClientWithExecutor(graphql.NewClient(cfg), cfg.Metrics)
}

// NewClientWithExecutor wires a client over any executor, which is how
// tests script backend behavior.
func NewClientWithExecutor(exec graphql.Executor, metrics *observability.Metrics) *Client {
	c := &Client{
		exec:        exec,
		viewType:    graphql.NewCapability("viewType"),
		dataSources: graphql.NewCapability("dataSources"),
		metrics:     metrics,
	}
	if metrics != nil {
		metrics.SetCapabilityEnabled(Domain, c.viewType.Name(), true)
		metrics.SetCapabilityEnabled(Domain, c.dataSources.Name(), true)
	}
	return c
}

// Capabilities exposes the capability state, mainly for health reporting.
func (c *Client) Capabilities() *graphql.CapabilitySet {
	return graphql.NewCapabilitySet(c.viewType, c.dataSources)
}

func (c *Client) onDisable(name string) {
	if c.metrics != nil {
		c.metrics.RecordSchemaFallback(Domain, name)
	}
}

// dataSourcesFragment yields the optional fragment filling the
// ${data_sources_field} slot. When the caller's field selection excludes
// dataSources the slot is blanked regardless of capability state.
func (c *Client) dataSourcesFragment(include bool) graphql.OptionalFragment {
	if !include {
		return graphql.OptionalFragment{Params: map[string]string{"data_sources_field": ""}}
	}
	return graphql.OptionalFragment{
		Capability: c.dataSources,
		Params:     map[string]string{"data_sources_field": "dataSources"},
	}
}

func (c *Client) viewTypeFragment(viewType ViewType) graphql.OptionalFragment {
	return graphql.OptionalFragment{
		Capability: c.viewType,
		Params: map[string]string{
			"view_type_param": ", $viewType: ViewType",
			"view_type_arg":   ", viewType: $viewType",
		},
		Variables: map[string]any{"viewType": string(viewType)},
	}
}

// buildFieldParams resolves the node selection and decides whether the
// dataSources slot is populated. dataSources never enters the node block
// itself; injecting it twice would make the backend reject the query.
func buildFieldParams(fields []string) (string, bool, error) {
	if fields == nil {
		nodeFields, err := graphql.BuildNodeFields(nil, FieldCatalog)
		return nodeFields, true, err
	}

	includeDataSources := false
	trimmed := make([]string, 0, len(fields))
	for _, field := range fields {
		if field == "dataSources" {
			includeDataSources = true
			continue
		}
		trimmed = append(trimmed, field)
	}

	nodeFields, err := graphql.BuildNodeFields(trimmed, FieldCatalog)
	return nodeFields, includeDataSources, err
}

// Get fetches a single alert, returning nil when it does not exist.
func (c *Client) Get(ctx context.Context, alertID string) (*Alert, error) {
	log.Debug().Str("alert_id", alertID).Msg("Fetching alert")

	data, err := graphql.ExecuteCompatible(ctx, c.exec, "get_alert", graphql.CompatRequest{
		Template:  getAlertQuery,
		Variables: map[string]any{"alertId": alertID},
		Optional:  []graphql.OptionalFragment{c.dataSourcesFragment(true)},
		OnDisable: c.onDisable,
	})
	if err != nil {
		return nil, err
	}

	raw, ok := data["alert"]
	if !ok || raw == nil {
		return nil, nil
	}
	var alert Alert
	if err := decodeInto(raw, &alert); err != nil {
		return nil, fmt.Errorf("decoding alert: %w", err)
	}
	return &alert, nil
}

// List returns a page of alerts.
func (c *Client) List(ctx context.Context, first int, after string, viewType ViewType, fields []string) (*Connection, error) {
	log.Debug().
		Int("first", first).
		Str("view_type", string(viewType)).
		Int("field_count", len(fields)).
		Msg("Listing alerts")

	nodeFields, includeDataSources, err := buildFieldParams(fields)
	if err != nil {
		return nil, err
	}

	variables := map[string]any{"first": first, "after": nullableString(after)}

	data, err := graphql.ExecuteCompatible(ctx, c.exec, "list_alerts", graphql.CompatRequest{
		Template:  listAlertsQuery,
		Params:    map[string]string{"node_fields": nodeFields},
		Variables: variables,
		Optional: []graphql.OptionalFragment{
			c.viewTypeFragment(viewType),
			c.dataSourcesFragment(includeDataSources),
		},
		OnDisable: c.onDisable,
	})
	if err != nil {
		return nil, err
	}

	return graphql.DecodeConnection[Alert](data, "alerts")
}

// Search returns a page of alerts matching the given filters.
func (c *Client) Search(ctx context.Context, filters []filter.Input, first int, after string, viewType ViewType, fields []string) (*Connection, error) {
	log.Debug().
		Int("filter_count", len(filters)).
		Int("first", first).
		Str("view_type", string(viewType)).
		Msg("Searching alerts")

	nodeFields, includeDataSources, err := buildFieldParams(fields)
	if err != nil {
		return nil, err
	}

	variables := map[string]any{
		"filters": nullableFilters(filters),
		"first":   first,
		"after":   nullableString(after),
	}

	data, err := graphql.ExecuteCompatible(ctx, c.exec, "search_alerts", graphql.CompatRequest{
		Template:  searchAlertsQuery,
		Params:    map[string]string{"node_fields": nodeFields},
		Variables: variables,
		Optional: []graphql.OptionalFragment{
			c.viewTypeFragment(viewType),
			c.dataSourcesFragment(includeDataSources),
		},
		OnDisable: c.onDisable,
	})
	if err != nil {
		return nil, err
	}

	return graphql.DecodeConnection[Alert](data, "alerts")
}

// Notes returns every note attached to an alert.
func (c *Client) Notes(ctx context.Context, alertID string) ([]Note, error) {
	log.Debug().Str("alert_id", alertID).Msg("Fetching alert notes")

	data, err := graphql.ExecuteCompatible(ctx, c.exec, "get_alert_notes", graphql.CompatRequest{
		Template:  getAlertNotesQuery,
		Variables: map[string]any{"alertId": alertID},
		OnDisable: c.onDisable,
	})
	if err != nil {
		return nil, err
	}

	raw, ok := data["alertNotes"]
	if !ok || raw == nil {
		return []Note{}, nil
	}
	var payload struct {
		Data []Note `json:"data"`
	}
	if err := decodeInto(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding alert notes: %w", err)
	}
	if payload.Data == nil {
		payload.Data = []Note{}
	}
	return payload.Data, nil
}

// History returns a page of audit events for an alert.
func (c *Client) History(ctx context.Context, alertID string, first int, after string) (*HistoryConnection, error) {
	log.Debug().Str("alert_id", alertID).Int("first", first).Msg("Fetching alert history")

	data, err := graphql.ExecuteCompatible(ctx, c.exec, "get_alert_history", graphql.CompatRequest{
		Template: getAlertHistoryQuery,
		Variables: map[string]any{
			"alertId": alertID,
			"first":   first,
			"after":   nullableString(after),
		},
		OnDisable: c.onDisable,
	})
	if err != nil {
		return nil, err
	}

	conn, err := graphql.DecodeConnection[HistoryEvent](data, "alertHistory")
	if err != nil {
		return nil, err
	}
	for i := range conn.Edges {
		conn.Edges[i].Node.normalizeCreator()
	}
	return conn, nil
}

func decodeInto(raw any, target any) error {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, target)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableFilters(filters []filter.Input) any {
	if len(filters) == 0 {
		return nil
	}
	return filters
}
