package filter

// Input is the backend wire-format filter: a target field, a negation flag,
// and exactly one operator payload. Field names follow the GraphQL
// FilterInput schema, so Inputs marshal directly into query variables.
type Input struct {
	FieldID   string `json:"fieldId"`
	IsNegated bool   `json:"isNegated"`

	StringEqual   *EqualString   `json:"stringEqual,omitempty"`
	StringIn      *InString      `json:"stringIn,omitempty"`
	IntEqual      *EqualInt      `json:"intEqual,omitempty"`
	IntIn         *InInt         `json:"intIn,omitempty"`
	IntRange      *Range         `json:"intRange,omitempty"`
	LongEqual     *EqualInt      `json:"longEqual,omitempty"`
	LongIn        *InInt         `json:"longIn,omitempty"`
	LongRange     *Range         `json:"longRange,omitempty"`
	BooleanEqual  *EqualBoolean  `json:"booleanEqual,omitempty"`
	BooleanIn     *InBoolean     `json:"booleanIn,omitempty"`
	DateTimeRange *Range         `json:"dateTimeRange,omitempty"`
	Match         *FulltextMatch `json:"match,omitempty"`
	MatchIn       *FulltextMatch `json:"matchIn,omitempty"`
}

// EqualString matches a string value exactly.
type EqualString struct {
	Value string `json:"value"`
}

// InString matches any of several string values.
type InString struct {
	Values []string `json:"values"`
}

// EqualInt matches an integer (or long) value exactly.
type EqualInt struct {
	Value int64 `json:"value"`
}

// InInt matches any of several integer (or long) values.
type InInt struct {
	Values []int64 `json:"values"`
}

// Range bounds an integer, long, or epoch-millisecond datetime field. A nil
// bound is omitted from the wire payload; a zero bound is a real bound.
type Range struct {
	Start          *int64 `json:"start,omitempty"`
	End            *int64 `json:"end,omitempty"`
	StartInclusive bool   `json:"startInclusive"`
	EndInclusive   bool   `json:"endInclusive"`
}

// EqualBoolean matches a boolean value exactly.
type EqualBoolean struct {
	Value bool `json:"value"`
}

// InBoolean matches any of several boolean values. A nil entry matches
// fields that are unset on the backend.
type InBoolean struct {
	Values []*bool `json:"values"`
}

// FulltextMatch performs case-insensitive substring matching over one or
// more terms. It backs both the match and matchIn operators.
type FulltextMatch struct {
	Values []string `json:"values"`
}

// Operator returns the name of the single operator payload set on the
// Input, or "" if none is set.
func (in *Input) Operator() string {
	switch {
	case in.StringEqual != nil:
		return "stringEqual"
	case in.StringIn != nil:
		return "stringIn"
	case in.IntEqual != nil:
		return "intEqual"
	case in.IntIn != nil:
		return "intIn"
	case in.IntRange != nil:
		return "intRange"
	case in.LongEqual != nil:
		return "longEqual"
	case in.LongIn != nil:
		return "longIn"
	case in.LongRange != nil:
		return "longRange"
	case in.BooleanEqual != nil:
		return "booleanEqual"
	case in.BooleanIn != nil:
		return "booleanIn"
	case in.DateTimeRange != nil:
		return "dateTimeRange"
	case in.Match != nil:
		return "match"
	case in.MatchIn != nil:
		return "matchIn"
	default:
		return ""
	}
}
