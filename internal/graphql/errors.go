package graphql

import (
	"fmt"
	"strings"
)

// AuthError indicates the backend rejected our credentials. It is never
// retried.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (status %d): %s", e.StatusCode, e.Message)
}

// NotFoundError indicates a 404 from the backend.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// APIError is a non-transient backend failure that is not an auth or
// not-found condition.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend request failed (status %d): %s", e.StatusCode, e.Message)
}

// NetworkError wraps a transport-level failure or a transient HTTP status
// after retries were exhausted.
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ErrorDetail is a single entry from a GraphQL "errors" array.
type ErrorDetail struct {
	Message string         `json:"message"`
	Path    []any          `json:"path,omitempty"`
	Extra   map[string]any `json:"extensions,omitempty"`
}

// GraphQLError is returned when a 200 response carries an "errors" array or
// no "data" object.
type GraphQLError struct {
	Errors []ErrorDetail
}

func (e *GraphQLError) Error() string {
	if len(e.Errors) == 0 {
		return "graphql error: empty response"
	}
	msgs := make([]string, len(e.Errors))
	for i, detail := range e.Errors {
		msgs[i] = detail.Message
	}
	return "graphql error: " + strings.Join(msgs, "; ")
}

// Messages returns the raw error messages for schema-mismatch inspection.
func (e *GraphQLError) Messages() []string {
	msgs := make([]string, len(e.Errors))
	for i, detail := range e.Errors {
		msgs[i] = detail.Message
	}
	return msgs
}

// schemaErrorIndicators are the substrings a GraphQL server emits when the
// query references a field, argument, or directive the schema does not have.
// Matching is case-insensitive.
var schemaErrorIndicators = []string{
	"cannot query field",
	"unknown argument",
	"field does not exist",
	"unknown directive",
}

// IsSchemaError reports whether any message in the error looks like a
// schema mismatch rather than a data or permission failure.
func IsSchemaError(err error) bool {
	gqlErr, ok := err.(*GraphQLError)
	if !ok {
		return false
	}
	for _, msg := range gqlErr.Messages() {
		if matchesSchemaIndicator(msg) {
			return true
		}
	}
	return false
}

func matchesSchemaIndicator(msg string) bool {
	lower := strings.ToLower(msg)
	for _, indicator := range schemaErrorIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// SchemaErrorField extracts the offending field name from a schema-mismatch
// message. Servers quote the field either as "field" or 'field'; double
// quotes are checked first. Returns the empty string when the message does
// not carry a quoted name.
func SchemaErrorField(err error) string {
	gqlErr, ok := err.(*GraphQLError)
	if !ok {
		return ""
	}
	for _, msg := range gqlErr.Messages() {
		if !matchesSchemaIndicator(msg) {
			continue
		}
		for _, quote := range []string{`"`, `'`} {
			parts := strings.Split(msg, quote)
			if len(parts) >= 3 {
				return parts[1]
			}
		}
	}
	return ""
}
