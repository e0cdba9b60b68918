package metaset

import (
	"errors"
	"fmt"
	"io"
	"os"

	eng "github.com/reoring/metaset/internal/engine"
	jsonsrc "github.com/reoring/metaset/source/json"
)

// DefaultChunkSize is the number of array elements per chunk when ReadOpt
// does not say otherwise.
const DefaultChunkSize = 1000

// ArrayReader lazily decodes a top-level JSON array in chunks. The sequence
// of chunks is finite and non-restartable: once Next has returned io.EOF or
// a *ParseError the session is over. A reader abandoned mid-stream needs no
// cleanup beyond Close.
type ArrayReader struct {
	src    eng.TokenSource
	closer io.Closer
	chunk  int
	done   bool
}

// StreamArrayFile opens a JSON document and prepares chunked reads of its
// top-level array. Callers own the returned reader and should defer Close.
func StreamArrayFile(path string, opts ...ReadOpt) (*ArrayReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("metaset: open data: %w", err)
	}
	r, err := StreamArray(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// StreamArray prepares chunked reads of a top-level JSON array from r. The
// document's first token must open an array; anything else fails with a
// *ParseError ("document is not an array").
func StreamArray(r io.Reader, opts ...ReadOpt) (*ArrayReader, error) {
	opt := ReadOpt{}
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	chunk := opt.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	src := eng.WrapWithGuards(jsonsrc.NewReader(r), eng.GuardOptions{
		MaxDepth: opt.MaxDepth,
		MaxBytes: opt.MaxBytes,
	})
	tok, err := src.NextToken()
	if err != nil || tok.Kind != eng.KindBeginArray {
		return nil, &ParseError{Offset: src.Location(), Reason: "document is not an array", Err: err}
	}
	return &ArrayReader{src: src, chunk: chunk}, nil
}

// Next returns the next chunk of up to the configured number of decoded
// elements; the final chunk may be shorter. The array's closing bracket is
// the normal termination signal: after it is consumed, Next returns io.EOF.
// Malformed input anywhere else aborts the session with a *ParseError.
func (r *ArrayReader) Next() ([]any, error) {
	if r.done {
		return nil, io.EOF
	}
	chunk := make([]any, 0, r.chunk)
	for len(chunk) < r.chunk {
		tok, err := r.src.NextToken()
		if err != nil {
			r.done = true
			return nil, r.parseErr(err)
		}
		if tok.Kind == eng.KindEndArray {
			r.done = true
			if len(chunk) == 0 {
				return nil, io.EOF
			}
			return chunk, nil
		}
		v, err := eng.DecodeValue(r.src, tok)
		if err != nil {
			r.done = true
			return nil, r.parseErr(err)
		}
		chunk = append(chunk, v)
	}
	return chunk, nil
}

// Close releases the underlying file for readers opened from a path. The
// reader is unusable afterwards; Next reports io.EOF.
func (r *ArrayReader) Close() error {
	r.done = true
	if r.closer != nil {
		c := r.closer
		r.closer = nil
		return c.Close()
	}
	return nil
}

func (r *ArrayReader) parseErr(err error) error {
	var ge *eng.GuardError
	if errors.As(err, &ge) {
		return &ParseError{Offset: ge.Offset, Reason: ge.Message, Err: ge}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &ParseError{Offset: r.src.Location(), Reason: "unexpected end of document", Err: io.ErrUnexpectedEOF}
	}
	return &ParseError{Offset: r.src.Location(), Reason: "malformed array document", Err: err}
}
