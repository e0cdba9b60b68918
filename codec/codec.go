// Package codec is the JSON wire codec used across the module, backed by
// goccy/go-json.
package codec

import (
	"bytes"
	"io"
	"strings"

	j "github.com/goccy/go-json"
)

// Options controls encoding behavior.
type Options struct {
	// Indent is the number of spaces per indent level; zero or negative
	// writes compact output.
	Indent int
	// EscapeHTML escapes <, > and & inside strings. Off keeps non-ASCII and
	// markup-bearing text verbatim.
	EscapeHTML bool
}

// Marshal encodes v according to opt. Output carries the encoder convention
// of a trailing newline.
func Marshal(v any, opt Options) ([]byte, error) {
	var buf bytes.Buffer
	enc := j.NewEncoder(&buf)
	enc.SetEscapeHTML(opt.EscapeHTML)
	if opt.Indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", opt.Indent))
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads one JSON value from r, preserving numbers as json.Number.
func Decode(r io.Reader) (any, error) {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeBytes decodes one JSON value from data, preserving numbers as
// json.Number.
func DecodeBytes(data []byte) (any, error) { return Decode(bytes.NewReader(data)) }
