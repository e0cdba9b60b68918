package metaset

import "fmt"

// SchemaError reports a malformed or incomplete schema document. It is fatal
// at load time; no partial Schema is produced.
type SchemaError struct {
	Field  string // dotted field path, empty for document-level faults
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return "metaset: schema: " + e.Reason
	}
	return fmt.Sprintf("metaset: schema: field %q: %s", e.Field, e.Reason)
}

func schemaErrf(field, format string, args ...any) *SchemaError {
	return &SchemaError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ParseError reports a malformed data document. A streaming session that
// returns one is dead; nothing after the failure is decoded.
type ParseError struct {
	Offset int64  // byte offset of the failure, -1 when unknown
	Reason string // human-readable description
	Err    error  // optional underlying decoder error
}

func (e *ParseError) Error() string {
	msg := e.Reason
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("metaset: parse: %s (offset %d)", msg, e.Offset)
	}
	return "metaset: parse: " + msg
}

func (e *ParseError) Unwrap() error { return e.Err }
