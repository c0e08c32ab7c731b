package misconfigurations

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
const Domain = "misconfigurations"

// Connection is a page of misconfigurations.
type Connection = graphql.Connection[Misconfiguration]

// NoteConnection is a page of notes.
type NoteConnection = graphql.Connection[Note]

// HistoryConnection is a page of history events.
type HistoryConnection = graphql.Connection[HistoryEvent]

// Client talks to the exposure management GraphQL API. One schema
// capability is probed at runtime: the viewType argument, absent from
// older backends.
type Client struct {
	exec     graphql.Executor
	viewType *graphql.Capability
	metrics  *observability.Metrics
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
		exec:     exec,
		viewType: graphql.NewCapability("viewType"),
		metrics:  metrics,
	}
	if metrics != nil {
		metrics.SetCapabilityEnabled(Domain, c.viewType.Name(), true)
	}
	return c
}

// Capabilities exposes the capability state, mainly for health reporting.
func (c *Client) Capabilities() *graphql.CapabilitySet {
	return graphql.NewCapabilitySet(c.viewType)
}

func (c *Client) onDisable(name string) {
	if c.metrics != nil {
		c.metrics.RecordSchemaFallback(Domain, name)
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

// Get fetches a single misconfiguration, returning nil when it does not
// exist.
func (c *Client) Get(ctx context.Context, id string) (*Misconfiguration, error) {
	log.Debug().Str("misconfiguration_id", id).Msg("Fetching misconfiguration")

	data, err := graphql.ExecuteCompatible(ctx, c.exec, "get_misconfiguration", graphql.CompatRequest{
		Template:  getMisconfigurationQuery,
		Variables: map[string]any{"id": id},
		OnDisable: c.onDisable,
	})
	if err != nil {
		return nil, err
	}

	raw, ok := data["misconfiguration"]
	if !ok || raw == nil {
		return nil, nil
	}
	var finding Misconfiguration
	if err := decodeInto(raw, &finding); err != nil {
		return nil, fmt.Errorf("decoding misconfiguration: %w", err)
	}
	return &finding, nil
}

// List returns a page of misconfigurations.
func (c *Client) List(ctx context.Context, first int, after string, viewType ViewType, fields []string) (*Connection, error) {
	log.Debug().
		Int("first", first).
		Str("view_type", string(viewType)).
		Int("field_count", len(fields)).
		Msg("Listing misconfigurations")

	nodeFields, err := graphql.BuildNodeFields(fields, FieldCatalog)
	if err != nil {
		return nil, err
	}

	data, err := graphql.ExecuteCompatible(ctx, c.exec, "list_misconfigurations", graphql.CompatRequest{
		Template:  listMisconfigurationsQuery,
		Params:    map[string]string{"node_fields": nodeFields},
		Variables: map[string]any{"first": first, "after": nullableString(after)},
		Optional:  []graphql.OptionalFragment{c.viewTypeFragment(viewType)},
		OnDisable: c.onDisable,
	})
	if err != nil {
		return nil, err
	}

	return graphql.DecodeConnection[Misconfiguration](data, "misconfigurations")
}

// Search returns a page of misconfigurations matching the given filters.
func (c *Client) Search(ctx context.Context, filters []filter.Input, first int, after string, viewType ViewType, fields []string) (*Connection, error) {
	log.Debug().
		Int("filter_count", len(filters)).
		Int("first", first).
		Str("view_type", string(viewType)).
		Msg("Searching misconfigurations")

	nodeFields, err := graphql.BuildNodeFields(fields, FieldCatalog)
	if err != nil {
		return nil, err
	}

	variables := map[string]any{
		"filters": nullableFilters(filters),
		"first":   first,
		"after":   nullableString(after),
	}

	data, err := graphql.ExecuteCompatible(ctx, c.exec, "search_misconfigurations", graphql.CompatRequest{
		Template:  searchMisconfigurationsQuery,
		Params:    map[string]string{"node_fields": nodeFields},
		Variables: variables,
		Optional:  []graphql.OptionalFragment{c.viewTypeFragment(viewType)},
		OnDisable: c.onDisable,
	})
	if err != nil {
		return nil, err
	}

	return graphql.DecodeConnection[Misconfiguration](data, "misconfigurations")
}

// Notes returns a page of notes for a misconfiguration.
func (c *Client) Notes(ctx context.Context, id string, first int, after string) (*NoteConnection, error) {
	log.Debug().Str("misconfiguration_id", id).Msg("Fetching misconfiguration notes")

	data, err := graphql.ExecuteCompatible(ctx, c.exec, "get_misconfiguration_notes", graphql.CompatRequest{
		Template: getMisconfigurationNotesQuery,
		Variables: map[string]any{
			"misconfigurationId": id,
			"first":              first,
			"after":              nullableString(after),
		},
		OnDisable: c.onDisable,
	})
	if err != nil {
		return nil, err
	}

	return graphql.DecodeConnection[Note](data, "misconfigurationNotes")
}

// History returns a page of audit events for a misconfiguration.
func (c *Client) History(ctx context.Context, id string, first int, after string) (*HistoryConnection, error) {
	log.Debug().Str("misconfiguration_id", id).Int("first", first).Msg("Fetching misconfiguration history")

	data, err := graphql.ExecuteCompatible(ctx, c.exec, "get_misconfiguration_history", graphql.CompatRequest{
		Template: getMisconfigurationHistoryQuery,
		Variables: map[string]any{
			"misconfigurationId": id,
			"first":              first,
			"after":              nullableString(after),
		},
		OnDisable: c.onDisable,
	})
	if err != nil {
		return nil, err
	}

	return graphql.DecodeConnection[HistoryEvent](data, "misconfigurationHistory")
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
