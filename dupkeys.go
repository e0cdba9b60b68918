package metaset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	eng "github.com/reoring/metaset/internal/engine"
	jsonsrc "github.com/reoring/metaset/source/json"
)

// DuplicateKey reports a repeated object key in a JSON document. Decoders
// keep the last occurrence and drop the rest silently, which loses data in
// hand-edited files, so callers can scan before loading.
type DuplicateKey struct {
	Path   string // dotted path of the repeated key (list steps as [i])
	Offset int64  // byte offset near the repetition, -1 when unknown
}

// FindDuplicateKeysBytes scans data for repeated object keys.
func FindDuplicateKeysBytes(data []byte) ([]DuplicateKey, error) {
	return FindDuplicateKeys(bytes.NewReader(data))
}

// FindDuplicateKeys scans one JSON document from r for repeated object keys.
// Nothing is decoded; the scan walks the token stream and tracks the key set
// of every open object. Findings arrive in document order.
func FindDuplicateKeys(r io.Reader) ([]DuplicateKey, error) {
	src := jsonsrc.NewReader(r)

	var dups []DuplicateKey
	var stack []dupFrame
	for {
		tok, err := src.NextToken()
		if errors.Is(err, io.EOF) {
			if len(stack) != 0 {
				return nil, &ParseError{Offset: src.Location(), Reason: "unexpected end of document", Err: io.ErrUnexpectedEOF}
			}
			return dups, nil
		}
		if err != nil {
			return nil, &ParseError{Offset: src.Location(), Reason: "malformed document", Err: err}
		}

		switch tok.Kind {
		case eng.KindBeginObject:
			stack = append(stack, dupFrame{object: true, seen: make(map[string]struct{})})
		case eng.KindBeginArray:
			stack = append(stack, dupFrame{})
		case eng.KindEndObject, eng.KindEndArray:
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
			advanceElement(stack)
		case eng.KindKey:
			top := &stack[len(stack)-1]
			if _, dup := top.seen[tok.Text]; dup {
				dups = append(dups, DuplicateKey{Path: dupPath(stack, tok.Text), Offset: tok.Offset})
			} else {
				top.seen[tok.Text] = struct{}{}
			}
			top.key = tok.Text
		default:
			advanceElement(stack)
		}
	}
}

// dupFrame tracks one open container. For objects, key is the member being
// read; for arrays, index is the position of the element being read.
type dupFrame struct {
	object bool
	key    string
	index  int
	seen   map[string]struct{}
}

// advanceElement bumps the element index when the innermost open container
// is an array and one of its elements just completed.
func advanceElement(stack []dupFrame) {
	if n := len(stack); n > 0 && !stack[n-1].object {
		stack[n-1].index++
	}
}

// dupPath renders the dotted path of key inside the innermost open object.
func dupPath(stack []dupFrame, key string) string {
	var b strings.Builder
	for i := 0; i < len(stack)-1; i++ {
		f := stack[i]
		if f.object {
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(f.key)
		} else {
			fmt.Fprintf(&b, "[%d]", f.index)
		}
	}
	if b.Len() > 0 {
		b.WriteByte('.')
	}
	b.WriteString(key)
	return b.String()
}
