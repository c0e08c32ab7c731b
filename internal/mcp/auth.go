package mcp

import (
	"github.com/gofiber/fiber/v2"
)

// AuthContext contains authentication information for MCP requests
type AuthContext struct {
	// Subject identifies the caller (JWT sub claim, or "static" for the
	// shared token).
	Subject string

	// AuthType indicates how the request was authenticated (none, static,
	// jwt)
	AuthType string

	// Scopes are the permissions granted to the caller
	Scopes []string

	// IsService marks tokens that bypass scope checks entirely
	IsService bool
}

// HasScope checks if the auth context has a specific scope
func (ctx *AuthContext) HasScope(scope string) bool {
	if ctx.IsService {
		return true
	}

	for _, s := range ctx.Scopes {
		if s == "*" || s == scope {
			return true
		}
	}

	return false
}

// HasScopes checks if the auth context has all specified scopes
func (ctx *AuthContext) HasScopes(scopes ...string) bool {
	for _, scope := range scopes {
		if !ctx.HasScope(scope) {
			return false
		}
	}
	return true
}

// HasAnyScope checks if the auth context has any of the specified scopes
func (ctx *AuthContext) HasAnyScope(scopes ...string) bool {
	for _, scope := range scopes {
		if ctx.HasScope(scope) {
			return true
		}
	}
	return false
}

// IsAuthenticated returns true if the request is authenticated
func (ctx *AuthContext) IsAuthenticated() bool {
	return ctx.AuthType != "" && ctx.AuthType != "none"
}

// ExtractAuthContext extracts authentication context from Fiber locals.
// This should be called after auth middleware has run.
func ExtractAuthContext(c *fiber.Ctx) *AuthContext {
	ctx := &AuthContext{
		Scopes: make([]string, 0),
	}

	if authType := c.Locals("auth_type"); authType != nil {
		if v, ok := authType.(string); ok {
			ctx.AuthType = v
		}
	}

	if subject := c.Locals("auth_subject"); subject != nil {
		if v, ok := subject.(string); ok {
			ctx.Subject = v
		}
	}

	if scopes := c.Locals("auth_scopes"); scopes != nil {
		if scopeSlice, ok := scopes.([]string); ok {
			ctx.Scopes = scopeSlice
		}
	}

	if service := c.Locals("auth_service"); service != nil {
		if v, ok := service.(bool); ok {
			ctx.IsService = v
		}
	}

	return ctx
}

// MCP Scopes
const (
	ScopeReadAlerts            = "read:alerts"
	ScopeReadMisconfigurations = "read:misconfigurations"
	ScopeReadVulnerabilities   = "read:vulnerabilities"
	ScopeReadInventory         = "read:inventory"
)

// AllScopes lists every scope the server knows about, in a stable order.
var AllScopes = []string{
	ScopeReadAlerts,
	ScopeReadMisconfigurations,
	ScopeReadVulnerabilities,
	ScopeReadInventory,
}
