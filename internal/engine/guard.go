package engine

// Guard wrapper for TokenSource to apply max depth checks and max bytes
// truncation in a streaming fashion.

// GuardOptions bounds resource consumption while reading tokens.
type GuardOptions struct {
	MaxDepth int   // maximum container nesting depth; 0 disables the check
	MaxBytes int64 // maximum consumed input bytes; 0 disables the check
}

// GuardError reports a guard limit hit while reading tokens.
type GuardError struct {
	Code    string // "parse_error" for depth, "truncated" for bytes
	Message string
	Offset  int64
}

func (e *GuardError) Error() string { return e.Message }

// WrapWithGuards returns a TokenSource that enforces maximum nesting depth
// and maximum consumed bytes on top of inner. With both limits disabled the
// inner source is returned unchanged.
func WrapWithGuards(inner TokenSource, opt GuardOptions) TokenSource {
	if opt.MaxDepth <= 0 && opt.MaxBytes <= 0 {
		return inner
	}
	return &guardedTokenSource{inner: inner, opt: opt}
}

type guardedTokenSource struct {
	inner TokenSource
	opt   GuardOptions
	depth int
}

func (g *guardedTokenSource) NextToken() (Token, error) {
	tok, err := g.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		g.depth++
		if g.opt.MaxDepth > 0 && g.depth > g.opt.MaxDepth {
			return Token{}, &GuardError{Code: "parse_error", Message: "max depth exceeded", Offset: tok.Offset}
		}
	case KindEndObject, KindEndArray:
		if g.depth > 0 {
			g.depth--
		}
	}

	if g.opt.MaxBytes > 0 {
		if off := g.Location(); off >= 0 && off > g.opt.MaxBytes {
			return Token{}, &GuardError{Code: "truncated", Message: "max bytes exceeded", Offset: off}
		}
	}

	return tok, nil
}

func (g *guardedTokenSource) Location() int64 { return g.inner.Location() }
