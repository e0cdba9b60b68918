package metaset

import (
	"errors"
	"fmt"
	"io"
	"os"

	eng "github.com/reoring/metaset/internal/engine"
	jsonsrc "github.com/reoring/metaset/source/json"
)

// DefaultLargeFileThreshold is the size, in bytes, at which callers should
// prefer StreamArrayFile over LoadDataFile.
const DefaultLargeFileThreshold int64 = 10 << 20

// LoadDataFile reads a record-collection document. Accepted shapes: a
// top-level array of objects; an object whose first array-valued property
// (in document order) holds the records; any other object, treated as a
// one-record collection.
func LoadDataFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("metaset: open data: %w", err)
	}
	defer f.Close()
	return LoadData(f)
}

// LoadData reads a record-collection document from r. See LoadDataFile for
// the accepted shapes.
func LoadData(r io.Reader) ([]Entry, error) {
	src := jsonsrc.NewReader(r)
	tok, err := src.NextToken()
	if err != nil {
		return nil, parseErrAt(src, "document is not an object or array", err)
	}

	switch tok.Kind {
	case eng.KindBeginArray:
		arr, err := eng.DecodeValue(src, tok)
		if err != nil {
			return nil, parseErrAt(src, "malformed data document", err)
		}
		if err := ensureEOF(src); err != nil {
			return nil, err
		}
		return entriesFromList(arr.([]any))

	case eng.KindBeginObject:
		type member struct {
			key string
			val any
		}
		var members []member
		for {
			tok, err := src.NextToken()
			if err != nil {
				return nil, parseErrAt(src, "malformed data document", err)
			}
			if tok.Kind == eng.KindEndObject {
				break
			}
			if tok.Kind != eng.KindKey {
				return nil, parseErrAt(src, "malformed data document", io.ErrUnexpectedEOF)
			}
			v, err := eng.DecodeAny(src)
			if err != nil {
				return nil, parseErrAt(src, "malformed data document", err)
			}
			members = append(members, member{key: tok.Text, val: v})
		}
		if err := ensureEOF(src); err != nil {
			return nil, err
		}
		for _, m := range members {
			if arr, ok := m.val.([]any); ok {
				return entriesFromList(arr)
			}
		}
		obj := make(map[string]any, len(members))
		for _, m := range members {
			obj[m.key] = m.val
		}
		return []Entry{Entry(obj)}, nil

	default:
		return nil, parseErrAt(src, "document is not an object or array", nil)
	}
}

func entriesFromList(items []any) ([]Entry, error) {
	entries := make([]Entry, 0, len(items))
	for i, it := range items {
		obj, ok := asObject(it)
		if !ok {
			return nil, &ParseError{Offset: -1, Reason: fmt.Sprintf("array element %d is not an object", i)}
		}
		entries = append(entries, Entry(obj))
	}
	return entries, nil
}

// ensureEOF rejects trailing content after a complete document.
func ensureEOF(src eng.TokenSource) error {
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		return parseErrAt(src, "trailing data after document", nil)
	}
	return nil
}

func parseErrAt(src eng.TokenSource, reason string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &ParseError{Offset: src.Location(), Reason: reason, Err: err}
}

// IsLargeFile reports whether the file at path is larger than threshold
// bytes; threshold <= 0 selects DefaultLargeFileThreshold.
func IsLargeFile(path string, threshold int64) (bool, error) {
	if threshold <= 0 {
		threshold = DefaultLargeFileThreshold
	}
	fi, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("metaset: stat data: %w", err)
	}
	return fi.Size() > threshold, nil
}
