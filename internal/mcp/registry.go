package mcp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ToolHandler is one callable MCP tool, such as search_alerts or
// iso_to_unix_timestamp. Implementations live in internal/mcp/tools.
type ToolHandler interface {
	// Name returns the tool name clients call it by.
	Name() string

	// Description tells the model what the tool does and how to use it.
	Description() string

	// InputSchema returns the JSON Schema for the tool's arguments.
	InputSchema() map[string]any

	// RequiredScopes lists the read:* scopes a caller needs. Empty
	// means the tool is open to every authenticated caller.
	RequiredScopes() []string

	// Execute runs the tool. Argument and backend failures are reported
	// through ToolResult.IsError so the model sees the message; an
	// error return is reserved for malformed calls.
	Execute(ctx context.Context, args map[string]any, authCtx *AuthContext) (*ToolResult, error)
}

// ToolRegistry holds the tool catalog and answers tools/list and
// tools/call lookups.
type ToolRegistry struct {
	tools map[string]ToolHandler
	mu    sync.RWMutex
}

func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]ToolHandler),
	}
}

// Register adds a tool, replacing any tool with the same name.
func (r *ToolRegistry) Register(tool ToolHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// GetTool returns a tool by name, or nil if not found.
func (r *ToolRegistry) GetTool(name string) ToolHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// ListTools returns the catalog visible to the caller, filtered by
// scope and sorted by name so listings are stable across calls.
func (r *ToolRegistry) ListTools(authCtx *AuthContext) []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, handler := range r.tools {
		if !authCtx.HasScopes(handler.RequiredScopes()...) {
			continue
		}
		tools = append(tools, Tool{
			Name:        handler.Name(),
			Description: handler.Description(),
			InputSchema: handler.InputSchema(),
		})
	}

	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// ResourceProvider is one readable MCP resource, such as the field
// reference for a backend domain.
type ResourceProvider interface {
	// URI returns the resource URI; templates return their pattern.
	URI() string

	Name() string
	Description() string
	MimeType() string

	// RequiredScopes lists the read:* scopes a caller needs to read
	// this resource. Template providers may additionally enforce
	// per-parameter scopes inside ReadWithParams.
	RequiredScopes() []string

	Read(ctx context.Context, authCtx *AuthContext) ([]Content, error)
}

// TemplateResourceProvider is a ResourceProvider whose URI is a
// pattern with placeholders, like sentinel://fields/{domain}.
type TemplateResourceProvider interface {
	ResourceProvider

	// IsTemplate reports whether this provider serves a URI pattern.
	IsTemplate() bool

	// MatchURI extracts placeholder values from a concrete URI.
	MatchURI(uri string) (map[string]string, bool)

	// ReadWithParams reads the resource for one set of placeholder
	// values.
	ReadWithParams(ctx context.Context, authCtx *AuthContext, params map[string]string) ([]Content, error)
}

// Sentinel errors for ReadResource failures, so callers can map them
// to the right JSON-RPC error code.
var (
	errResourceNotFound = errors.New("resource not found")
	errResourceDenied   = errors.New("access denied")
)

// ResourceRegistry holds the resource providers and answers
// resources/list, resources/read, and resources/templates/list.
type ResourceRegistry struct {
	providers []ResourceProvider
	mu        sync.RWMutex
}

func NewResourceRegistry() *ResourceRegistry {
	return &ResourceRegistry{
		providers: make([]ResourceProvider, 0),
	}
}

func (r *ResourceRegistry) Register(provider ResourceProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, provider)
}

// GetProvider resolves a concrete URI to its provider: exact URIs win,
// then template patterns are tried in registration order.
func (r *ResourceRegistry) GetProvider(uri string) ResourceProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, provider := range r.providers {
		if provider.URI() == uri {
			return provider
		}
	}

	for _, provider := range r.providers {
		if tp, ok := provider.(TemplateResourceProvider); ok && tp.IsTemplate() {
			if _, matched := tp.MatchURI(uri); matched {
				return provider
			}
		}
	}

	return nil
}

// ReadResource resolves uri, enforces the provider's scopes, and reads
// the contents. Unknown URIs fail with errResourceNotFound and scope
// misses with errResourceDenied.
func (r *ResourceRegistry) ReadResource(ctx context.Context, uri string, authCtx *AuthContext) ([]Content, error) {
	provider := r.GetProvider(uri)
	if provider == nil {
		return nil, fmt.Errorf("%w: %s", errResourceNotFound, uri)
	}

	if !authCtx.HasScopes(provider.RequiredScopes()...) {
		return nil, fmt.Errorf("%w: missing required scopes for %s", errResourceDenied, uri)
	}

	if tp, ok := provider.(TemplateResourceProvider); ok && tp.IsTemplate() {
		params, _ := tp.MatchURI(uri)
		return tp.ReadWithParams(ctx, authCtx, params)
	}
	return provider.Read(ctx, authCtx)
}

// ListResources returns the concrete resources visible to the caller,
// sorted by URI. Templates are listed by ListTemplates instead.
func (r *ResourceRegistry) ListResources(authCtx *AuthContext) []Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resources := make([]Resource, 0, len(r.providers))
	for _, provider := range r.providers {
		if tp, ok := provider.(TemplateResourceProvider); ok && tp.IsTemplate() {
			continue
		}
		if !authCtx.HasScopes(provider.RequiredScopes()...) {
			continue
		}
		resources = append(resources, Resource{
			URI:         provider.URI(),
			Name:        provider.Name(),
			Description: provider.Description(),
			MimeType:    provider.MimeType(),
		})
	}

	sort.Slice(resources, func(i, j int) bool { return resources[i].URI < resources[j].URI })
	return resources
}

// ListTemplates returns the URI templates visible to the caller,
// sorted by pattern.
func (r *ResourceRegistry) ListTemplates(authCtx *AuthContext) []ResourceTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	templates := make([]ResourceTemplate, 0, len(r.providers))
	for _, provider := range r.providers {
		tp, ok := provider.(TemplateResourceProvider)
		if !ok || !tp.IsTemplate() {
			continue
		}
		if !authCtx.HasScopes(provider.RequiredScopes()...) {
			continue
		}
		templates = append(templates, ResourceTemplate{
			URITemplate: provider.URI(),
			Name:        provider.Name(),
			Description: provider.Description(),
			MimeType:    provider.MimeType(),
		})
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].URITemplate < templates[j].URITemplate })
	return templates
}
