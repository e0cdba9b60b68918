package middleware_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	metaset "github.com/reoring/metaset"
	"github.com/reoring/metaset/middleware"
)

func bodySchema(t *testing.T) *metaset.Schema {
	t.Helper()
	s, err := metaset.ParseSchemaBytes([]byte(`{
	  "__meta__": {
	    "name": {"type": "str", "required": true},
	    "age":  {"type": "int"}
	  }
	}`))
	if err != nil {
		t.Fatalf("ParseSchemaBytes: %v", err)
	}
	return s
}

func TestCheckBody_Valid(t *testing.T) {
	entries, payload := middleware.CheckBody(bodySchema(t),
		strings.NewReader(`[{"name": "a"}, {"name": "b", "age": 3}]`),
		middleware.DefaultBodyOpt())
	if payload != nil {
		t.Fatalf("payload = %v, want nil", payload)
	}
	if len(entries) != 2 || entries[1]["name"] != "b" {
		t.Fatalf("entries = %v", entries)
	}
}

func TestCheckBody_SingleObjectBody(t *testing.T) {
	entries, payload := middleware.CheckBody(bodySchema(t),
		strings.NewReader(`{"name": "solo"}`), middleware.DefaultBodyOpt())
	if payload != nil {
		t.Fatalf("payload = %v, want nil", payload)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %v, want one", entries)
	}
}

func TestCheckBody_Violations(t *testing.T) {
	_, payload := middleware.CheckBody(bodySchema(t),
		strings.NewReader(`[{"name": "ok"}, {"age": "old"}]`),
		middleware.DefaultBodyOpt())
	if payload == nil {
		t.Fatal("expected a violations payload")
	}
	report, ok := payload["violations"].(metaset.Report)
	if !ok {
		t.Fatalf("payload = %#v, want a violations report", payload)
	}
	if len(report) != 1 || len(report[1]) != 2 {
		t.Fatalf("report = %v, want entry 1 with two violations", report)
	}
}

func TestCheckBody_DuplicateKeys(t *testing.T) {
	_, payload := middleware.CheckBody(bodySchema(t),
		strings.NewReader(`{"name": "a", "name": "b"}`),
		middleware.DefaultBodyOpt())
	if payload == nil {
		t.Fatal("expected a duplicate-keys payload")
	}
	dups, ok := payload["duplicates"].([]metaset.DuplicateKey)
	if !ok || len(dups) != 1 || dups[0].Path != "name" {
		t.Fatalf("payload = %#v", payload)
	}

	// The same body passes once duplicate checking is off; the decoder keeps
	// the last occurrence.
	entries, payload := middleware.CheckBody(bodySchema(t),
		strings.NewReader(`{"name": "a", "name": "b"}`),
		middleware.BodyOpt{MaxBytes: 1 << 20})
	if payload != nil {
		t.Fatalf("payload = %v, want nil", payload)
	}
	if entries[0]["name"] != "b" {
		t.Fatalf("entries = %v, want last occurrence kept", entries)
	}
}

func TestCheckBody_Malformed(t *testing.T) {
	_, payload := middleware.CheckBody(bodySchema(t),
		strings.NewReader(`{"name":`), middleware.DefaultBodyOpt())
	if payload == nil || payload["error"] == nil {
		t.Fatalf("payload = %#v, want an error", payload)
	}
}

func TestCheckBody_TooLarge(t *testing.T) {
	body := `[{"name": "` + strings.Repeat("x", 100) + `"}]`
	_, payload := middleware.CheckBody(bodySchema(t),
		strings.NewReader(body), middleware.BodyOpt{MaxBytes: 64})
	if payload == nil {
		t.Fatal("expected a size-limit payload")
	}
	msg, _ := payload["error"].(string)
	if !strings.Contains(msg, "size limit") {
		t.Fatalf("error = %q", msg)
	}
}

func TestEntriesContextRoundTrip(t *testing.T) {
	want := []metaset.Entry{{"name": "a"}}
	ctx := middleware.ContextWithEntries(context.Background(), want)

	got, ok := middleware.EntriesFromContext(ctx)
	if !ok {
		t.Fatal("entries not found in context")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}

	if _, ok := middleware.EntriesFromContext(context.Background()); ok {
		t.Fatal("empty context must not carry entries")
	}
}
