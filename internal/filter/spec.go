package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DoS limits applied to caller-supplied filter input before translation.
const (
	// MaxFiltersCount caps the number of filter objects in one request.
	MaxFiltersCount = 50

	// MaxFilterValuesCount caps the size of any single 'values' array.
	MaxFilterValuesCount = 100
)

// Spec is one simplified filter object as supplied by a tool caller, decoded
// from JSON but not yet translated to the backend wire format. Numbers are
// kept as json.Number so 64-bit identifiers and timestamps survive intact.
type Spec map[string]any

// FieldID returns the filter's target field name.
func (s Spec) FieldID() string {
	v, _ := s["fieldId"].(string)
	return v
}

// FilterType returns the filter's declared type.
func (s Spec) FilterType() string {
	v, _ := s["filterType"].(string)
	return v
}

// IsNegated reports whether the filter is negated. Defaults to false.
func (s Spec) IsNegated() bool {
	v, _ := s["isNegated"].(bool)
	return v
}

// ParseFilters decodes a JSON-encoded array of filter objects into Specs.
// An empty input means "no filtering" and yields a nil slice. All failures
// are *ValidationError and occur before any network call.
func ParseFilters(jsonStr string) ([]Spec, error) {
	if strings.TrimSpace(jsonStr) == "" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(jsonStr)))
	dec.UseNumber()

	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, NewValidationError(fmt.Sprintf("Invalid JSON in filters parameter: %s", err))
	}

	if len(raw) > MaxFiltersCount {
		return nil, NewValidationError(fmt.Sprintf(
			"Too many filters: %d. Maximum allowed: %d", len(raw), MaxFiltersCount))
	}

	specs := make([]Spec, 0, len(raw))
	for i, elem := range raw {
		obj, ok := elem.(map[string]any)
		if !ok {
			return nil, NewValidationError("Filters must be an array of filter objects")
		}

		if _, ok := obj["fieldId"].(string); !ok {
			return nil, NewValidationError("Each filter must have 'fieldId' and 'filterType' keys")
		}
		if _, ok := obj["filterType"].(string); !ok {
			return nil, NewValidationError("Each filter must have 'fieldId' and 'filterType' keys")
		}

		if values, ok := obj["values"].([]any); ok && len(values) > MaxFilterValuesCount {
			return nil, NewValidationError(fmt.Sprintf(
				"Filter %d has too many values: %d. Maximum allowed: %d",
				i, len(values), MaxFilterValuesCount))
		}

		specs = append(specs, Spec(obj))
	}

	return specs, nil
}

// ParseFields decodes a JSON-encoded array of field names used for response
// projection. An empty input yields a nil slice (caller default applies).
func ParseFields(jsonStr string) ([]string, error) {
	if strings.TrimSpace(jsonStr) == "" {
		return nil, nil
	}

	var raw []any
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, NewValidationError(fmt.Sprintf("Invalid JSON in fields parameter: %s", err))
	}

	fields := make([]string, 0, len(raw))
	for i, elem := range raw {
		s, ok := elem.(string)
		if !ok {
			return nil, NewValidationError(fmt.Sprintf(
				"Field at index %d must be a string, got %T", i, elem))
		}
		fields = append(fields, s)
	}

	return fields, nil
}
