// Package resources exposes MCP resources describing the queryable
// surface of each backend domain.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sentinelmcp/sentinelmcp/internal/alerts"
	"github.com/sentinelmcp/sentinelmcp/internal/filter"
	"github.com/sentinelmcp/sentinelmcp/internal/graphql"
	"github.com/sentinelmcp/sentinelmcp/internal/mcp"
	"github.com/sentinelmcp/sentinelmcp/internal/misconfigurations"
	"github.com/sentinelmcp/sentinelmcp/internal/vulnerabilities"
)

// FieldsURITemplate matches sentinel://fields/{domain}.
const FieldsURITemplate = "sentinel://fields/{domain}"

var fieldsURIPattern = regexp.MustCompile(`^sentinel://fields/([a-z_]+)$`)

type domainFields struct {
	scope   string
	catalog graphql.FieldCatalog
	filters filter.FieldTable
}

var fieldDomains = map[string]domainFields{
	"alerts": {
		scope:   mcp.ScopeReadAlerts,
		catalog: alerts.FieldCatalog,
		filters: alerts.FilterFields,
	},
	"misconfigurations": {
		scope:   mcp.ScopeReadMisconfigurations,
		catalog: misconfigurations.FieldCatalog,
		filters: misconfigurations.FilterFields,
	},
	"vulnerabilities": {
		scope:   mcp.ScopeReadVulnerabilities,
		catalog: vulnerabilities.FieldCatalog,
		filters: vulnerabilities.FilterFields,
	},
}

// FieldsResource publishes the selectable and filterable fields of each
// GraphQL domain as a template resource, so clients can discover the
// query surface without trial and error.
type FieldsResource struct{}

func NewFieldsResource() *FieldsResource {
	return &FieldsResource{}
}

func (r *FieldsResource) URI() string {
	return FieldsURITemplate
}

func (r *FieldsResource) Name() string {
	return "Domain field reference"
}

func (r *FieldsResource) Description() string {
	return "Selectable and filterable fields for a backend domain. " +
		"Valid domains: alerts, misconfigurations, vulnerabilities."
}

func (r *FieldsResource) MimeType() string {
	return "application/json"
}

// RequiredScopes is empty at the template level; the per-domain scope is
// enforced when a concrete URI is read.
func (r *FieldsResource) RequiredScopes() []string {
	return []string{}
}

func (r *FieldsResource) IsTemplate() bool {
	return true
}

func (r *FieldsResource) MatchURI(uri string) (map[string]string, bool) {
	m := fieldsURIPattern.FindStringSubmatch(uri)
	if m == nil {
		return nil, false
	}
	if _, ok := fieldDomains[m[1]]; !ok {
		return nil, false
	}
	return map[string]string{"domain": m[1]}, true
}

func (r *FieldsResource) Read(ctx context.Context, authCtx *mcp.AuthContext) ([]mcp.Content, error) {
	return nil, fmt.Errorf("resource %s requires a domain parameter", FieldsURITemplate)
}

func (r *FieldsResource) ReadWithParams(_ context.Context, authCtx *mcp.AuthContext, params map[string]string) ([]mcp.Content, error) {
	domain := params["domain"]
	def, ok := fieldDomains[domain]
	if !ok {
		names := make([]string, 0, len(fieldDomains))
		for name := range fieldDomains {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown domain '%s', must be one of: %s", domain, strings.Join(names, ", "))
	}
	if !authCtx.HasScope(def.scope) {
		return nil, fmt.Errorf("insufficient permissions to read fields for domain '%s'", domain)
	}

	payload := map[string]any{
		"domain":           domain,
		"description":      def.catalog.Description,
		"defaultFields":    def.catalog.DefaultFields,
		"additionalFields": def.catalog.AdditionalAllowedFields,
		"filterableFields": def.filters.FilterableFields(),
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing field reference: %w", err)
	}

	return []mcp.Content{{
		Type:     mcp.ContentTypeResource,
		URI:      "sentinel://fields/" + domain,
		MimeType: "application/json",
		Text:     string(data),
	}}, nil
}

// RegisterAll wires every resource provider into the registry.
func RegisterAll(registry *mcp.ResourceRegistry) {
	registry.Register(NewFieldsResource())
}
