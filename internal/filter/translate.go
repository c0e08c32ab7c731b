package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// maxMillisTimestamp is the largest plausible epoch-millisecond magnitude
// (13 digits). Anything larger is almost certainly a nanosecond timestamp
// pasted from another tool. This is a heuristic, not a protocol guarantee.
const maxMillisTimestamp = 9_999_999_999_999

var supportedFilterTypes = []string{
	"string_equals", "string_in",
	"int_equals", "int_in", "int_range",
	"long_equals", "long_in", "long_range",
	"boolean_equals", "boolean_in",
	"datetime_range",
	"fulltext", "fulltext_in",
}

// Translate converts one parsed Spec into the backend wire format, applying
// the domain's field table when one is provided. All failures are
// *ValidationError.
func Translate(spec Spec, table FieldTable) (*Input, error) {
	fieldID := spec.FieldID()
	filterType := spec.FilterType()
	if fieldID == "" || filterType == "" {
		return nil, NewValidationError("Each filter must have 'fieldId' and 'filterType' keys")
	}

	if err := table.Validate(fieldID, filterType); err != nil {
		return nil, err
	}

	input := &Input{
		FieldID:   fieldID,
		IsNegated: spec.IsNegated(),
	}

	switch filterType {
	case "string_equals":
		value, err := requireString(spec, filterType, "value")
		if err != nil {
			return nil, err
		}
		input.StringEqual = &EqualString{Value: value}

	case "string_in":
		values, err := requireStrings(spec, filterType)
		if err != nil {
			return nil, err
		}
		input.StringIn = &InString{Values: values}

	case "int_equals":
		value, err := requireInt(spec, filterType, "value")
		if err != nil {
			return nil, err
		}
		input.IntEqual = &EqualInt{Value: value}

	case "int_in":
		values, err := requireInts(spec, filterType)
		if err != nil {
			return nil, err
		}
		input.IntIn = &InInt{Values: values}

	case "int_range":
		r, err := numericRange(spec, filterType)
		if err != nil {
			return nil, err
		}
		input.IntRange = r

	case "long_equals":
		value, err := requireInt(spec, filterType, "value")
		if err != nil {
			return nil, err
		}
		input.LongEqual = &EqualInt{Value: value}

	case "long_in":
		values, err := requireInts(spec, filterType)
		if err != nil {
			return nil, err
		}
		input.LongIn = &InInt{Values: values}

	case "long_range":
		r, err := numericRange(spec, filterType)
		if err != nil {
			return nil, err
		}
		input.LongRange = r

	case "boolean_equals":
		value, ok := spec["value"].(bool)
		if !ok {
			if _, present := spec["value"]; !present {
				return nil, missingKey(filterType, "value")
			}
			return nil, NewValidationError(fmt.Sprintf(
				"Filter type '%s' requires a boolean 'value', got: %v", filterType, spec["value"]))
		}
		input.BooleanEqual = &EqualBoolean{Value: value}

	case "boolean_in":
		raw, ok := spec["values"].([]any)
		if !ok {
			return nil, missingKey(filterType, "values")
		}
		values := make([]*bool, 0, len(raw))
		for _, v := range raw {
			switch b := v.(type) {
			case bool:
				bv := b
				values = append(values, &bv)
			case nil:
				values = append(values, nil)
			default:
				return nil, NewValidationError(fmt.Sprintf(
					"Filter type '%s' requires boolean or null values, got: %v", filterType, v))
			}
		}
		input.BooleanIn = &InBoolean{Values: values}

	case "datetime_range":
		r, err := timestampRange(spec, filterType)
		if err != nil {
			return nil, err
		}
		input.DateTimeRange = r

	case "fulltext":
		values, err := requireStrings(spec, filterType)
		if err != nil {
			return nil, err
		}
		input.Match = &FulltextMatch{Values: values}

	case "fulltext_in":
		values, err := requireStrings(spec, filterType)
		if err != nil {
			return nil, err
		}
		input.MatchIn = &FulltextMatch{Values: values}

	default:
		return nil, NewValidationError(fmt.Sprintf(
			"Unsupported filterType: '%s'. Supported types: %s",
			filterType, strings.Join(supportedFilterTypes, ", ")))
	}

	return input, nil
}

// TranslateAll converts a parsed filter list to the wire format, preserving
// order. A nil input yields nil.
func TranslateAll(specs []Spec, table FieldTable) ([]Input, error) {
	if specs == nil {
		return nil, nil
	}

	inputs := make([]Input, 0, len(specs))
	for _, spec := range specs {
		input, err := Translate(spec, table)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, *input)
	}
	return inputs, nil
}

func missingKey(filterType, key string) *ValidationError {
	return NewValidationError(fmt.Sprintf("Filter type '%s' requires '%s' key", filterType, key))
}

func requireString(spec Spec, filterType, key string) (string, error) {
	v, present := spec[key]
	if !present {
		return "", missingKey(filterType, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", NewValidationError(fmt.Sprintf(
			"Filter type '%s' requires a string '%s', got: %v", filterType, key, v))
	}
	return s, nil
}

func requireStrings(spec Spec, filterType string) ([]string, error) {
	raw, ok := spec["values"].([]any)
	if !ok {
		return nil, missingKey(filterType, "values")
	}
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, NewValidationError(fmt.Sprintf(
				"Filter type '%s' requires string values, got: %v", filterType, v))
		}
		values = append(values, s)
	}
	return values, nil
}

func requireInt(spec Spec, filterType, key string) (int64, error) {
	v, present := spec[key]
	if !present {
		return 0, missingKey(filterType, key)
	}
	n, err := intFromAny(v)
	if err != nil {
		return 0, NewValidationError(fmt.Sprintf(
			"Filter type '%s' requires an integer '%s', got: %v", filterType, key, v))
	}
	return n, nil
}

func requireInts(spec Spec, filterType string) ([]int64, error) {
	raw, ok := spec["values"].([]any)
	if !ok {
		return nil, missingKey(filterType, "values")
	}
	values := make([]int64, 0, len(raw))
	for _, v := range raw {
		n, err := intFromAny(v)
		if err != nil {
			return nil, NewValidationError(fmt.Sprintf(
				"Filter type '%s' requires integer values, got: %v", filterType, v))
		}
		values = append(values, n)
	}
	return values, nil
}

func numericRange(spec Spec, filterType string) (*Range, error) {
	r := &Range{StartInclusive: true, EndInclusive: true}

	if v, present := spec["start"]; present {
		n, err := intFromAny(v)
		if err != nil {
			return nil, NewValidationError(fmt.Sprintf(
				"Filter type '%s' requires an integer 'start', got: %v", filterType, v))
		}
		r.Start = &n
	}
	if v, present := spec["end"]; present {
		n, err := intFromAny(v)
		if err != nil {
			return nil, NewValidationError(fmt.Sprintf(
				"Filter type '%s' requires an integer 'end', got: %v", filterType, v))
		}
		r.End = &n
	}
	if r.Start == nil && r.End == nil {
		return nil, NewValidationError(fmt.Sprintf(
			"Filter type '%s' requires at least 'start' or 'end' key", filterType))
	}

	applyInclusivity(spec, r)
	return r, nil
}

func timestampRange(spec Spec, filterType string) (*Range, error) {
	r := &Range{StartInclusive: true, EndInclusive: true}

	if v, present := spec["start"]; present {
		ms, err := timestampMillis(v, "start")
		if err != nil {
			return nil, err
		}
		r.Start = &ms
	}
	if v, present := spec["end"]; present {
		ms, err := timestampMillis(v, "end")
		if err != nil {
			return nil, err
		}
		r.End = &ms
	}
	if r.Start == nil && r.End == nil {
		return nil, NewValidationError(fmt.Sprintf(
			"Filter type '%s' requires at least 'start' or 'end' key", filterType))
	}

	applyInclusivity(spec, r)
	return r, nil
}

func applyInclusivity(spec Spec, r *Range) {
	if v, ok := spec["startInclusive"].(bool); ok {
		r.StartInclusive = v
	}
	if v, ok := spec["endInclusive"].(bool); ok {
		r.EndInclusive = v
	}
}

// timestampMillis coerces a datetime_range bound to epoch milliseconds and
// rejects magnitudes beyond 13 digits, which indicate a nanosecond value.
func timestampMillis(v any, bound string) (int64, error) {
	ms, err := intFromAny(v)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			// Too large for int64: certainly not milliseconds.
			return 0, nanosecondError(bound, fmt.Sprintf("%v", v))
		}
		return 0, NewValidationError(fmt.Sprintf(
			"datetime_range filter '%s' must be an integer (milliseconds), got: %v", bound, v))
	}

	// Compare against both bounds directly; negating math.MinInt64 to
	// take an absolute value would overflow.
	if ms > maxMillisTimestamp || ms < -maxMillisTimestamp {
		return 0, nanosecondError(bound, strconv.FormatInt(ms, 10))
	}

	return ms, nil
}

func nanosecondError(bound, value string) *ValidationError {
	return NewValidationError(fmt.Sprintf(
		"datetime_range filter '%s' value appears to be in nanoseconds (%s). "+
			"Please use milliseconds instead. Use the iso_to_unix_timestamp tool to convert "+
			"ISO 8601 datetime strings to milliseconds.", bound, value))
}

// intFromAny accepts JSON numbers (decoded with UseNumber), numeric strings,
// and plain float64s from callers that decoded without UseNumber. Fractional
// values are rejected.
func intFromAny(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		return strconv.ParseInt(n.String(), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("not an integer: %v", n)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("not an integer: %v", v)
	}
}
