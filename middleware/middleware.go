// Package middleware holds the framework-independent half of the HTTP body
// validation middlewares. The echo and gin adapters under middleware/echo and
// middleware/gin are separate modules so their framework dependencies stay
// out of the core module.
package middleware

import (
	"bytes"
	"context"
	"io"

	metaset "github.com/reoring/metaset"
)

// ctxKeyEntries is the typed context key for validated request entries.
type ctxKeyEntries struct{}

// ContextWithEntries attaches validated entries to the context.
func ContextWithEntries(ctx context.Context, entries []metaset.Entry) context.Context {
	return context.WithValue(ctx, ctxKeyEntries{}, entries)
}

// EntriesFromContext retrieves validated entries stored by a middleware.
func EntriesFromContext(ctx context.Context) ([]metaset.Entry, bool) {
	v, ok := ctx.Value(ctxKeyEntries{}).([]metaset.Entry)
	return v, ok
}

// BodyOpt bounds and hardens request body handling.
type BodyOpt struct {
	// MaxBytes rejects bodies larger than this size; 0 disables the check.
	MaxBytes int64
	// RejectDuplicateKeys refuses bodies carrying repeated object keys, which
	// a decoder would otherwise collapse silently.
	RejectDuplicateKeys bool
}

// DefaultBodyOpt returns the recommended defaults for HTTP JSON boundaries:
// bodies up to 1 MiB, duplicate keys rejected.
func DefaultBodyOpt() BodyOpt {
	return BodyOpt{MaxBytes: 1 << 20, RejectDuplicateKeys: true}
}

// CheckBody reads one request body, runs the hygiene checks from opt, decodes
// the entries and validates them against s. On success the entries are
// returned and the payload is nil; on any failure the entries are nil and the
// payload is a JSON-shaped object describing what went wrong, to be sent with
// a 400 status.
func CheckBody(s *metaset.Schema, body io.Reader, opt BodyOpt) ([]metaset.Entry, map[string]any) {
	r := body
	if opt.MaxBytes > 0 {
		r = io.LimitReader(body, opt.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, map[string]any{"error": err.Error()}
	}
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, map[string]any{"error": "request body exceeds size limit"}
	}

	if opt.RejectDuplicateKeys {
		// Malformed input is left for the loader below, which reports offsets.
		if dups, err := metaset.FindDuplicateKeysBytes(data); err == nil && len(dups) > 0 {
			return nil, map[string]any{
				"error":      "request body carries duplicate keys",
				"duplicates": dups,
			}
		}
	}

	entries, err := metaset.LoadData(bytes.NewReader(data))
	if err != nil {
		return nil, map[string]any{"error": err.Error()}
	}
	if report := s.ValidateData(entries); len(report) > 0 {
		return nil, map[string]any{"violations": report}
	}
	return entries, nil
}
