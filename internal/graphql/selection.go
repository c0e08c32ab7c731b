package graphql

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sentinelmcp/sentinelmcp/internal/filter"
)

// nodeFieldIndent aligns selected fields with the surrounding query template.
const nodeFieldIndent = "                "

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// objectsWithID names the nested objects that carry an id in the backend
// schema. Fragments for these get an id prepended when the caller omits it;
// objects without ids (cloudInfo, kubernetesInfo, ...) are left alone.
var objectsWithID = map[string]bool{
	"asset":            true,
	"account":          true,
	"site":             true,
	"group":            true,
	"cve":              true,
	"policy":           true,
	"admissionrequest": true,
}

// suspiciousChars are substrings that have no place in a field name and
// could smuggle extra GraphQL syntax into a query.
var suspiciousChars = []string{"...", "@", "#", "(", ")", "[", "]", "$", "!"}

// FieldCatalog is the field-selection metadata for one GraphQL API: the
// defaults used when the caller selects nothing, plus any extra fields that
// are valid for custom selection but not part of the defaults. Keeping both
// in one place stops the allowlist and the defaults from drifting apart.
type FieldCatalog struct {
	// DefaultFields are returned when no custom selection is given. Entries
	// may be simple names or nested fragments like "asset { id name }".
	DefaultFields []string

	// AdditionalAllowedFields are valid for custom selection but excluded
	// from the defaults (conditional fields, expensive fields).
	AdditionalAllowedFields []string

	// Description is surfaced in tool documentation.
	Description string
}

// AllAllowedFields returns the complete allowlist for custom selection.
func (c FieldCatalog) AllAllowedFields() []string {
	all := make([]string, 0, len(c.DefaultFields)+len(c.AdditionalAllowedFields))
	all = append(all, c.DefaultFields...)
	all = append(all, c.AdditionalAllowedFields...)
	return all
}

// NestedMappings maps simple object names to their full fragment
// definitions, enabling "asset" to expand to "asset { id name type }".
func (c FieldCatalog) NestedMappings() map[string]string {
	mappings := make(map[string]string)
	for _, field := range c.AllAllowedFields() {
		if idx := strings.Index(field, "{"); idx >= 0 {
			name := strings.TrimSpace(field[:idx])
			mappings[name] = field
		}
	}
	return mappings
}

// BuildNodeFields renders the node selection block for a query template.
//
// A nil fields slice selects the catalog defaults verbatim. Otherwise every
// entry is validated against the catalog allowlist: simple names must appear
// in it, bare nested object names (e.g. "asset") expand to their default
// fragments, and explicit fragments are syntax-checked and must root at a
// known nested object. An empty slice is coerced to ["id"], and "id" is
// always prepended when missing so responses stay identifiable.
func BuildNodeFields(fields []string, catalog FieldCatalog) (string, error) {
	if fields == nil {
		return indentFields(catalog.DefaultFields), nil
	}

	if len(fields) == 0 {
		fields = []string{"id"}
	}
	hasID := false
	for _, field := range fields {
		if field == "id" {
			hasID = true
			break
		}
	}
	if !hasID {
		fields = append([]string{"id"}, fields...)
	}

	allowed := make(map[string]bool)
	for _, field := range catalog.AllAllowedFields() {
		allowed[field] = true
	}
	nested := catalog.NestedMappings()

	expanded := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if err := validateFieldName(field, allowed, nested); err != nil {
			return "", err
		}

		switch {
		case nested[field] != "":
			expanded = append(expanded, ensureIDInFragment(nested[field]))
		case strings.Contains(field, "{"):
			expanded = append(expanded, ensureIDInFragment(field))
		default:
			expanded = append(expanded, field)
		}
	}

	return indentFields(expanded), nil
}

func indentFields(fields []string) string {
	lines := make([]string, len(fields))
	for i, field := range fields {
		lines[i] = nodeFieldIndent + field
	}
	return strings.Join(lines, "\n")
}

func validateFieldName(field string, allowed map[string]bool, nested map[string]string) error {
	if field == "" {
		return filter.NewValidationError("Empty field name is not allowed")
	}

	if allowed[field] {
		return nil
	}
	if _, ok := nested[field]; ok {
		return nil
	}

	if strings.Contains(field, "{") {
		if !validateNestedFragment(field) {
			return filter.NewValidationError(fmt.Sprintf(
				"Nested field '%s' has invalid format. "+
					"Must follow GraphQL fragment syntax with balanced braces and valid field names. "+
					"Examples: 'asset { id name }', 'scope { account { id } site { name } }'",
				field))
		}

		root := strings.TrimSpace(strings.SplitN(field, "{", 2)[0])
		if _, ok := nested[root]; !ok {
			return filter.NewValidationError(fmt.Sprintf(
				"Nested object '%s' is not valid. Valid nested objects are: %s",
				root, strings.Join(sortedKeys(nested), ", ")))
		}
		return nil
	}

	for _, char := range suspiciousChars {
		if strings.Contains(field, char) {
			return filter.NewValidationError(fmt.Sprintf(
				"Field name '%s' contains suspicious character '%s' "+
					"that could be used for GraphQL injection",
				field, char))
		}
	}

	if fieldNamePattern.MatchString(field) {
		names := make([]string, 0, len(allowed))
		for name := range allowed {
			names = append(names, name)
		}
		sort.Strings(names)
		return filter.NewValidationError(fmt.Sprintf(
			"Field name '%s' is not in the allowlist of valid fields. Valid fields are: %s",
			field, strings.Join(names, ", ")))
	}

	return filter.NewValidationError(fmt.Sprintf(
		"Field name '%s' has invalid format. "+
			"Field names must be alphanumeric identifiers or valid nested field patterns.",
		field))
}

// validateNestedFragment checks a fragment like "asset { id name }" for
// balanced braces and legal field names at every depth.
func validateNestedFragment(fragment string) bool {
	idx := strings.Index(fragment, "{")
	if idx < 0 {
		return false
	}

	root := strings.TrimSpace(fragment[:idx])
	if !fieldNamePattern.MatchString(root) {
		return false
	}

	content := fragment[idx+1:]

	var tokens []string
	var current strings.Builder
	for _, char := range content {
		switch {
		case char == '{' || char == '}':
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			tokens = append(tokens, string(char))
		case char == ' ' || char == '\t' || char == '\n' || char == '\r':
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(char)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	braceCount := 1
	hasFields := false
	for i, token := range tokens {
		switch token {
		case "{":
			braceCount++
			if i == 0 || !fieldNamePattern.MatchString(tokens[i-1]) {
				return false
			}
		case "}":
			braceCount--
			if braceCount < 0 {
				return false
			}
		default:
			if !fieldNamePattern.MatchString(token) {
				return false
			}
			hasFields = true
		}
	}

	return braceCount == 0 && hasFields
}

// ensureIDInFragment prepends id at each nesting level of a fragment when
// the object carries one in the schema, so decoded nodes always have their
// identifier populated.
func ensureIDInFragment(fragment string) string {
	idx := strings.Index(fragment, "{")
	if idx < 0 {
		return fragment
	}

	root := strings.TrimSpace(fragment[:idx])
	remaining := fragment[idx+1:]

	// Split the fragment body into top-level tokens, keeping nested
	// fragments intact as single tokens.
	var tokens []string
	var current strings.Builder
	braceDepth := 0
	for i := 0; i < len(remaining); i++ {
		char := remaining[i]
		switch {
		case char == '{':
			braceDepth++
			current.WriteByte(char)
		case char == '}':
			if braceDepth > 0 {
				braceDepth--
				current.WriteByte(char)
			} else {
				if current.Len() > 0 {
					tokens = append(tokens, strings.TrimSpace(current.String()))
				}
				current.Reset()
				i = len(remaining)
			}
		case isSpace(char) && braceDepth == 0:
			peek := strings.TrimLeft(remaining[i+1:], " \t\n\r")
			if strings.HasPrefix(peek, "{") {
				current.WriteByte(char)
			} else if current.Len() > 0 {
				tokens = append(tokens, strings.TrimSpace(current.String()))
				current.Reset()
			}
		default:
			current.WriteByte(char)
		}
	}
	if current.Len() > 0 && braceDepth == 0 {
		tokens = append(tokens, strings.TrimSpace(current.String()))
	}

	hasID := false
	processed := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		switch {
		case token == "id":
			hasID = true
			processed = append(processed, token)
		case strings.Contains(token, "{"):
			processed = append(processed, ensureIDInFragment(token))
		default:
			processed = append(processed, token)
		}
	}

	if !hasID && objectsWithID[strings.ToLower(root)] {
		processed = append([]string{"id"}, processed...)
	}

	return root + " { " + strings.Join(processed, " ") + " }"
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
