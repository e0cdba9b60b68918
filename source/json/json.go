// Package json adapts the goccy/go-json streaming decoder into the token
// stream consumed by the document loaders.
package json

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/metaset/internal/engine"
)

// mode records what the reader expects next at the current nesting level.
type mode uint8

const (
	atTop mode = iota // outside any container
	inArray           // array elements until ']'
	wantKey           // object member name or '}'
	wantValue         // object member value
)

// reader drives a goccy decoder and classifies its tokens. The decoder hands
// object keys back as plain strings, so the reader keeps a mode stack to tell
// keys apart from string values.
type reader struct {
	dec   *j.Decoder
	modes []mode
	off   int64
}

// NewReader exposes the JSON document on r as a token stream.
func NewReader(r io.Reader) eng.TokenSource {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &reader{dec: dec, off: -1}
}

// NewBytes exposes the JSON document in b as a token stream.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *reader) Location() int64 { return s.off }

func (s *reader) NextToken() (eng.Token, error) {
	raw, err := s.dec.Token()
	if err != nil {
		if err == io.EOF {
			return eng.Token{}, io.EOF
		}
		return eng.Token{}, err
	}
	s.off = s.dec.InputOffset()

	if d, ok := raw.(j.Delim); ok {
		return s.delim(d)
	}
	if str, ok := raw.(string); ok && s.top() == wantKey {
		s.setTop(wantValue)
		return s.emit(eng.KindKey, str), nil
	}

	defer s.valueDone()
	switch v := raw.(type) {
	case string:
		return s.emit(eng.KindString, v), nil
	case j.Number:
		return s.emit(eng.KindNumber, string(v)), nil
	case float64:
		// UseNumber normally rules this out; cover decoders that hand back
		// floats anyway.
		return s.emit(eng.KindNumber, strconv.FormatFloat(v, 'g', -1, 64)), nil
	case bool:
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: s.off}, nil
	case nil:
		return s.emit(eng.KindNull, ""), nil
	default:
		return eng.Token{}, fmt.Errorf("json source: unsupported token %T", raw)
	}
}

func (s *reader) delim(d j.Delim) (eng.Token, error) {
	switch d {
	case '{':
		s.modes = append(s.modes, wantKey)
		return s.emit(eng.KindBeginObject, ""), nil
	case '[':
		s.modes = append(s.modes, inArray)
		return s.emit(eng.KindBeginArray, ""), nil
	case '}', ']':
		if n := len(s.modes); n > 0 {
			s.modes = s.modes[:n-1]
		}
		s.valueDone()
		if d == '}' {
			return s.emit(eng.KindEndObject, ""), nil
		}
		return s.emit(eng.KindEndArray, ""), nil
	}
	return eng.Token{}, fmt.Errorf("json source: unsupported delimiter %q", rune(d))
}

func (s *reader) emit(k eng.Kind, text string) eng.Token {
	return eng.Token{Kind: k, Text: text, Offset: s.off}
}

// valueDone flips an enclosing object back to expecting a key once one of
// its member values has been read to completion.
func (s *reader) valueDone() {
	if s.top() == wantValue {
		s.setTop(wantKey)
	}
}

func (s *reader) top() mode {
	if n := len(s.modes); n > 0 {
		return s.modes[n-1]
	}
	return atTop
}

func (s *reader) setTop(m mode) {
	if n := len(s.modes); n > 0 {
		s.modes[n-1] = m
	}
}
