package vulnerabilities

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
const Domain = "vulnerabilities"

// Connection is a page of vulnerabilities.
type Connection = graphql.Connection[Vulnerability]

// NoteConnection is a page of vulnerability notes.
type NoteConnection = graphql.Connection[Note]

// HistoryConnection is a page of vulnerability history events.
type HistoryConnection = graphql.Connection[HistoryEvent]

// Client talks to the exposure management GraphQL API. Unlike the alerts
// and misconfigurations schemas this one takes no optional arguments, so
// there are no runtime capabilities to probe.
type Client struct {
	exec    graphql.Executor
	metrics *observability.Metrics
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
	return &Client{exec: exec, metrics: metrics}
}

// Capabilities exposes the (empty) capability state for health reporting.
func (c *Client) Capabilities() *graphql.CapabilitySet {
	return graphql.NewCapabilitySet()
}

// Get fetches a single vulnerability, returning nil when it does not exist.
func (c *Client) Get(ctx context.Context, vulnerabilityID string) (*Vulnerability, error) {
	log.Debug().Str("vulnerability_id", vulnerabilityID).Msg("Fetching vulnerability")

	data, err := c.exec.Execute(ctx, "get_vulnerability", getVulnerabilityQuery,
		map[string]any{"id": vulnerabilityID})
	if err != nil {
		return nil, err
	}

	raw, ok := data["vulnerability"]
	if !ok || raw == nil {
		return nil, nil
	}
	var vuln Vulnerability
	if err := decodeInto(raw, &vuln); err != nil {
		return nil, fmt.Errorf("decoding vulnerability: %w", err)
	}
	return &vuln, nil
}

// List returns a page of vulnerabilities.
func (c *Client) List(ctx context.Context, first int, after string, fields []string) (*Connection, error) {
	log.Debug().
		Int("first", first).
		Int("field_count", len(fields)).
		Msg("Listing vulnerabilities")

	nodeFields, err := graphql.BuildNodeFields(fields, FieldCatalog)
	if err != nil {
		return nil, err
	}

	query := graphql.RenderTemplate(listVulnerabilitiesQuery, map[string]string{"node_fields": nodeFields})
	data, err := c.exec.Execute(ctx, "list_vulnerabilities", query, map[string]any{
		"first": first,
		"after": nullableString(after),
	})
	if err != nil {
		return nil, err
	}

	return graphql.DecodeConnection[Vulnerability](data, "vulnerabilities")
}

// Search returns a page of vulnerabilities matching the given filters.
func (c *Client) Search(ctx context.Context, filters []filter.Input, first int, after string, fields []string) (*Connection, error) {
	log.Debug().
		Int("filter_count", len(filters)).
		Int("first", first).
		Msg("Searching vulnerabilities")

	nodeFields, err := graphql.BuildNodeFields(fields, FieldCatalog)
	if err != nil {
		return nil, err
	}

	query := graphql.RenderTemplate(searchVulnerabilitiesQuery, map[string]string{"node_fields": nodeFields})
	data, err := c.exec.Execute(ctx, "search_vulnerabilities", query, map[string]any{
		"filters": nullableFilters(filters),
		"first":   first,
		"after":   nullableString(after),
	})
	if err != nil {
		return nil, err
	}

	return graphql.DecodeConnection[Vulnerability](data, "vulnerabilities")
}

// Notes returns a page of notes attached to a vulnerability.
func (c *Client) Notes(ctx context.Context, vulnerabilityID string, first int, after string) (*NoteConnection, error) {
	log.Debug().Str("vulnerability_id", vulnerabilityID).Msg("Fetching vulnerability notes")

	data, err := c.exec.Execute(ctx, "get_vulnerability_notes", getVulnerabilityNotesQuery,
		map[string]any{
			"vulnerabilityId": vulnerabilityID,
			"first":           first,
			"after":           nullableString(after),
		})
	if err != nil {
		return nil, err
	}

	return graphql.DecodeConnection[Note](data, "vulnerabilityNotes")
}

// History returns a page of audit events for a vulnerability.
func (c *Client) History(ctx context.Context, vulnerabilityID string, first int, after string) (*HistoryConnection, error) {
	log.Debug().Str("vulnerability_id", vulnerabilityID).Int("first", first).Msg("Fetching vulnerability history")

	data, err := c.exec.Execute(ctx, "get_vulnerability_history", getVulnerabilityHistoryQuery,
		map[string]any{
			"vulnerabilityId": vulnerabilityID,
			"first":           first,
			"after":           nullableString(after),
		})
	if err != nil {
		return nil, err
	}

	return graphql.DecodeConnection[HistoryEvent](data, "vulnerabilityHistory")
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
