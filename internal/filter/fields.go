package filter

import (
	"fmt"
	"strings"
)

// FieldTable restricts which filter types may target which fields in one
// domain. Fields absent from the table pass through untouched and are left
// for the backend to validate. A field mapped to an empty list accepts no
// filter at all (sort-only or display-only fields).
type FieldTable map[string][]string

// Validate checks whether filterType is legal for fieldID under this table.
func (t FieldTable) Validate(fieldID, filterType string) error {
	if t == nil {
		return nil
	}

	allowed, known := t[fieldID]
	if !known {
		return nil
	}

	if len(allowed) == 0 {
		return NewValidationError(fmt.Sprintf("Field '%s' cannot be filtered", fieldID))
	}

	for _, ft := range allowed {
		if ft == filterType {
			return nil
		}
	}

	return NewValidationError(fmt.Sprintf(
		"Field '%s' does not support filter type '%s'. Supported types: %s",
		fieldID, filterType, strings.Join(allowed, ", ")))
}

// FilterableFields returns the fields in the table that accept at least one
// filter type, for publishing in field-catalog resources.
func (t FieldTable) FilterableFields() map[string][]string {
	out := make(map[string][]string, len(t))
	for field, types := range t {
		if len(types) > 0 {
			out[field] = types
		}
	}
	return out
}
