// Package engine holds the streaming token layer shared by the document
// loaders. A TokenSource feeds tokens one at a time; the functions here turn
// that stream back into Go values without materializing the raw input first.
package engine

import (
	"encoding/json"
	"fmt"
)

// TokenSource is the contract a token driver fulfils. NextToken returns
// io.EOF once the input is exhausted. Location reports how many input bytes
// the driver has consumed so far, or a negative value when it cannot tell.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// Kind tags what a Token carries.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

var kindNames = [...]string{
	KindBeginObject: "begin-object",
	KindEndObject:   "end-object",
	KindBeginArray:  "begin-array",
	KindEndArray:    "end-array",
	KindKey:         "key",
	KindString:      "string",
	KindNumber:      "number",
	KindBool:        "bool",
	KindNull:        "null",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Token is a single event from a TokenSource. Text carries the payload for
// keys, strings and raw number literals; Bool carries it for booleans.
// Offset is the byte position at which the token started, when the driver
// can report one.
type Token struct {
	Kind   Kind
	Text   string
	Bool   bool
	Offset int64
}

// DecodeAny reads one complete value from src. Objects become
// map[string]any, arrays []any, and numbers stay json.Number so callers can
// decide between int and float themselves.
func DecodeAny(src TokenSource) (any, error) {
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	return DecodeValue(src, tok)
}

// DecodeValue finishes the value opened by tok, pulling further tokens from
// src for containers. It exists for callers that already consumed a token to
// look ahead, such as the array reader checking for end-of-array.
func DecodeValue(src TokenSource, tok Token) (any, error) {
	switch tok.Kind {
	case KindString:
		return tok.Text, nil
	case KindNumber:
		return json.Number(tok.Text), nil
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	case KindBeginObject:
		m := map[string]any{}
		for {
			member, err := src.NextToken()
			if err != nil {
				return nil, err
			}
			if member.Kind == KindEndObject {
				return m, nil
			}
			if member.Kind != KindKey {
				return nil, badToken(member, "object member")
			}
			v, err := DecodeAny(src)
			if err != nil {
				return nil, err
			}
			m[member.Text] = v
		}
	case KindBeginArray:
		var items []any
		for {
			next, err := src.NextToken()
			if err != nil {
				return nil, err
			}
			if next.Kind == KindEndArray {
				return items, nil
			}
			v, err := DecodeValue(src, next)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
	default:
		return nil, badToken(tok, "value")
	}
}

func badToken(tok Token, where string) error {
	return fmt.Errorf("unexpected %s token in %s position", tok.Kind, where)
}
