package graphql

import "strings"

// RenderTemplate substitutes ${name} placeholders in a query template.
// GraphQL variables ($first, $after, ...) use bare dollar signs and are left
// untouched; only brace-wrapped names are template parameters.
func RenderTemplate(template string, params map[string]string) string {
	if len(params) == 0 {
		return template
	}
	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "${"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
