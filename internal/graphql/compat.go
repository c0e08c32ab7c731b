package graphql

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// Executor runs one GraphQL operation. *Client satisfies it; tests swap in
// scripted fakes.
type Executor interface {
	Execute(ctx context.Context, operation, query string, variables map[string]any) (map[string]any, error)
}

// OptionalFragment is a piece of a query that only newer backend schemas
// accept. While its capability is enabled the fragment's params and
// variables are rendered into the query; once disabled, each param key
// renders as the empty string and the variables are withheld.
type OptionalFragment struct {
	Capability *Capability
	Params     map[string]string
	Variables  map[string]any
}

// CompatRequest describes a templated operation with optional fragments.
type CompatRequest struct {
	Template  string
	Params    map[string]string
	Variables map[string]any
	Optional  []OptionalFragment

	// OnDisable is invoked once per capability the fallback turns off,
	// letting callers log and count the event.
	OnDisable func(capability string)
}

// ExecuteCompatible runs the request, first with every enabled optional
// fragment included. If the backend rejects the query with a schema error
// (unknown field, argument, or directive), the capability responsible is
// disabled permanently and the reduced query is retried exactly once. Any
// other error, including a schema error from the reduced query, propagates
// unchanged.
func ExecuteCompatible(ctx context.Context, exec Executor, operation string, req CompatRequest) (map[string]any, error) {
	query, variables, enabled := renderCompat(req)

	result, err := exec.Execute(ctx, operation, query, variables)
	if err == nil || !IsSchemaError(err) || len(enabled) == 0 {
		return result, err
	}

	disableForSchemaError(req, enabled, err)

	query, variables, _ = renderCompat(req)
	return exec.Execute(ctx, operation, query, variables)
}

// renderCompat builds the concrete query and variables for the current
// capability state and reports which optional fragments went in.
func renderCompat(req CompatRequest) (string, map[string]any, []*Capability) {
	params := make(map[string]string, len(req.Params))
	for key, value := range req.Params {
		params[key] = value
	}
	variables := make(map[string]any, len(req.Variables))
	for key, value := range req.Variables {
		variables[key] = value
	}

	var enabled []*Capability
	for _, opt := range req.Optional {
		if opt.Capability != nil && opt.Capability.Enabled() {
			enabled = append(enabled, opt.Capability)
			for key, value := range opt.Params {
				params[key] = value
			}
			for key, value := range opt.Variables {
				variables[key] = value
			}
		} else {
			for key := range opt.Params {
				params[key] = ""
			}
		}
	}

	return RenderTemplate(req.Template, params), variables, enabled
}

// disableForSchemaError turns off the capability named in the error, or
// every enabled one when the message does not identify a single field.
func disableForSchemaError(req CompatRequest, enabled []*Capability, err error) {
	field := SchemaErrorField(err)

	var matched *Capability
	for _, cap := range enabled {
		if cap.Name() == field {
			matched = cap
			break
		}
	}
	if matched == nil && field != "" {
		for _, cap := range enabled {
			if strings.EqualFold(cap.Name(), field) {
				matched = cap
				break
			}
		}
	}

	toDisable := enabled
	if matched != nil {
		toDisable = []*Capability{matched}
	}

	for _, cap := range toDisable {
		cap.Disable()
		log.Warn().
			Str("capability", cap.Name()).
			Str("field", field).
			Err(err).
			Msg("Backend schema rejected capability, disabling for this process")
		if req.OnDisable != nil {
			req.OnDisable(cap.Name())
		}
	}
}
