package metaset

import (
	"errors"
	"fmt"
	"strings"
)

// Violation codes (exported consts for IDE completion and type safety by convention)
const (
	CodeRequired     = "required"
	CodeInvalidType  = "invalid_type"
	CodeNotAList     = "not_a_list"
	CodeInvalidItem  = "invalid_item"
	CodeUnknownField = "unknown_field"
	// Codes surfaced through ParseError causes on the streaming path.
	CodeParseError = "parse_error"
	CodeTruncated  = "truncated"
)

// Violation is a single per-field data-quality finding. Validation never
// throws; it returns violations as data and callers decide whether to block
// a save on them.
type Violation struct {
	Field   string // dotted field path (for example: address.street)
	Code    string // one of the codes listed above
	Message string // localized human-readable message
}

// Violations is an ordered collection of findings that implements error.
type Violations []Violation

// Error summarizes the first few violations.
func (vs Violations) Error() string {
	if len(vs) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(vs)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		v := vs[i]
		fmt.Fprintf(b, "%s at %s", v.Code, v.Field)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Strings renders the violation messages in order.
func (vs Violations) Strings() []string {
	if len(vs) == 0 {
		return nil
	}
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Message
	}
	return out
}

// AppendViolations appends violations to the destination, initializing the
// slice when needed.
func AppendViolations(dst Violations, more ...Violation) Violations {
	if dst == nil {
		dst = Violations{}
	}
	dst = append(dst, more...)
	return dst
}

// AsViolations extracts Violations from an error using errors.As internally.
func AsViolations(err error) (Violations, bool) {
	if err == nil {
		return nil, false
	}
	var vs Violations
	if errors.As(err, &vs) {
		return vs, true
	}
	return nil, false
}
