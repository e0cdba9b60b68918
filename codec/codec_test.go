package codec_test

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/reoring/metaset/codec"
)

func TestMarshal_Compact(t *testing.T) {
	out, err := codec.Marshal(map[string]any{"a": 1}, codec.Options{})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != "{\"a\":1}\n" {
		t.Fatalf("compact output = %q", out)
	}
}

func TestMarshal_Indent(t *testing.T) {
	out, err := codec.Marshal([]any{map[string]any{"a": 1}}, codec.Options{Indent: 2})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := "[\n  {\n    \"a\": 1\n  }\n]\n"
	if string(out) != want {
		t.Fatalf("indented output = %q, want %q", out, want)
	}
}

func TestMarshal_HTMLEscaping(t *testing.T) {
	v := map[string]any{"s": "José says 1 < 2 & 3 > 2"}

	out, err := codec.Marshal(v, codec.Options{})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(out), "José says 1 < 2 & 3 > 2") {
		t.Fatalf("text must survive verbatim by default: %q", out)
	}

	out, err = codec.Marshal(v, codec.Options{EscapeHTML: true})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(out), "<") || strings.Contains(string(out), "&") {
		t.Fatalf("EscapeHTML must escape markup: %q", out)
	}
}

func TestDecode_PreservesNumbers(t *testing.T) {
	got, err := codec.DecodeBytes([]byte(`{"i": 3, "f": 3.0, "e": 3e2}`))
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	want := map[string]any{
		"i": json.Number("3"),
		"f": json.Number("3.0"),
		"e": json.Number("3e2"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded value mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_ReaderStopsAfterFirstValue(t *testing.T) {
	r := strings.NewReader(`{"a": 1}{"b": 2}`)
	got, err := codec.Decode(r)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := map[string]any{"a": json.Number("1")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("first value mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Malformed(t *testing.T) {
	if _, err := codec.DecodeBytes([]byte(`{"a":`)); err == nil {
		t.Fatal("truncated input must fail")
	}
}
