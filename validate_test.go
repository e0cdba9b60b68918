package metaset_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	metaset "github.com/reoring/metaset"
	g "github.com/reoring/metaset/dsl"
	"github.com/reoring/metaset/i18n"
)

func personSchema(t *testing.T) *metaset.Schema {
	t.Helper()
	s, err := metaset.ParseSchemaBytes([]byte(personModel))
	if err != nil {
		t.Fatalf("ParseSchemaBytes: %v", err)
	}
	return s
}

func TestValidateEntry_CleanEntry(t *testing.T) {
	s := personSchema(t)
	e := metaset.Entry{
		"name":    "Ada",
		"age":     36,
		"score":   9.5,
		"active":  true,
		"tags":    []any{"math", "code"},
		"address": map[string]any{"street": "Main St", "zip": "12345"},
	}
	if vs := s.ValidateEntry(e); len(vs) != 0 {
		t.Fatalf("expected no violations, got: %v", vs.Strings())
	}
}

// TestValidateEntry_MixedViolations pins the full violation contract for one
// entry: declared fields report in declaration order, nested findings sit at
// the owning field's position, and undeclared keys come last sorted by name.
func TestValidateEntry_MixedViolations(t *testing.T) {
	s := personSchema(t)
	e := metaset.Entry{
		"name": "Ada",
		"age":  "old",
		// active is missing
		"tags":    []any{"x", 1},
		"address": map[string]any{"street": 5},
		"extra":   true,
	}

	want := []metaset.Violation{
		{Field: "age", Code: metaset.CodeInvalidType, Message: `field "age" must be int, got str`},
		{Field: "active", Code: metaset.CodeRequired, Message: `field "active" is required but missing`},
		{Field: "tags", Code: metaset.CodeInvalidItem, Message: `item 1 in "tags" must be str`},
		{Field: "address.street", Code: metaset.CodeInvalidType, Message: `field "address.street" must be str, got int`},
		{Field: "extra", Code: metaset.CodeUnknownField, Message: `field "extra" is not defined in the schema`},
	}
	got := s.ValidateEntry(e)
	if diff := cmp.Diff(want, []metaset.Violation(got)); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateEntry_NestedExtrasReportInline(t *testing.T) {
	s := personSchema(t)
	e := metaset.Entry{
		"name":    "Ada",
		"age":     1,
		"active":  true,
		"address": map[string]any{"street": "x", "country": "BR"},
		"zzz":     1,
	}

	got := s.ValidateEntry(e)
	fields := make([]string, len(got))
	for i, v := range got {
		fields[i] = v.Field
	}
	// The nested unknown key surfaces at address's declared position, ahead
	// of top-level extras.
	want := []string{"address.country", "zzz"}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("violation order mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateEntry_NestedRequiredMissing(t *testing.T) {
	s := personSchema(t)
	e := metaset.Entry{
		"name":    "Ada",
		"age":     1,
		"active":  true,
		"address": map[string]any{},
	}

	vs := s.ValidateEntry(e)
	if len(vs) != 1 {
		t.Fatalf("expected exactly one violation, got: %v", vs.Strings())
	}
	if vs[0].Field != "address.street" || vs[0].Code != metaset.CodeRequired {
		t.Fatalf("violation = %+v, want required at address.street", vs[0])
	}
	if vs[0].Message != `field "address.street" is required but missing` {
		t.Fatalf("message = %q", vs[0].Message)
	}
}

func TestValidateEntry_TypeMatrix(t *testing.T) {
	s := personSchema(t)
	base := metaset.Entry{
		"name":    "Ada",
		"age":     1,
		"active":  true,
		"address": map[string]any{"street": "x"},
	}
	clone := func(over map[string]any) metaset.Entry {
		e := metaset.Entry{}
		for k, v := range base {
			e[k] = v
		}
		for k, v := range over {
			e[k] = v
		}
		return e
	}

	cases := []struct {
		name     string
		override map[string]any
		wantMsg  string // empty means the entry stays clean
	}{
		{"str gets int", map[string]any{"name": 1}, `field "name" must be str, got int`},
		{"int gets float", map[string]any{"age": 1.5}, `field "age" must be int, got float`},
		{"int gets decoded float", map[string]any{"age": json.Number("1.5")}, `field "age" must be int, got float`},
		{"int gets exponent literal", map[string]any{"age": json.Number("1e3")}, `field "age" must be int, got float`},
		{"int gets decoded int", map[string]any{"age": json.Number("-12")}, ""},
		{"int gets bool", map[string]any{"age": true}, `field "age" must be int, got bool`},
		{"float accepts int", map[string]any{"score": 7}, ""},
		{"float accepts decoded int", map[string]any{"score": json.Number("7")}, ""},
		{"float accepts float", map[string]any{"score": 7.5}, ""},
		{"float gets str", map[string]any{"score": "x"}, `field "score" must be float, got str`},
		{"bool gets int", map[string]any{"active": 1}, `field "active" must be bool, got int`},
		{"list gets str", map[string]any{"tags": "nope"}, `field "tags" must be a list`},
		{"list item widening", map[string]any{"tags": []any{"ok", json.Number("3")}}, `item 1 in "tags" must be str`},
		{"dict gets list", map[string]any{"address": []any{}}, `field "address" must be dict, got list`},
		{"dict gets str", map[string]any{"address": "here"}, `field "address" must be dict, got str`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vs := s.ValidateEntry(clone(tc.override))
			if tc.wantMsg == "" {
				if len(vs) != 0 {
					t.Fatalf("expected clean entry, got: %v", vs.Strings())
				}
				return
			}
			if len(vs) != 1 {
				t.Fatalf("expected exactly one violation, got: %v", vs.Strings())
			}
			if vs[0].Message != tc.wantMsg {
				t.Fatalf("message = %q, want %q", vs[0].Message, tc.wantMsg)
			}
		})
	}
}

func TestValidateEntry_FloatElementAcceptsInt(t *testing.T) {
	s := g.Schema().Field("readings", g.ListOf(g.Float())).MustBuild()
	e := metaset.Entry{"readings": []any{json.Number("1"), json.Number("2.5"), 3}}
	if vs := s.ValidateEntry(e); len(vs) != 0 {
		t.Fatalf("integer items must satisfy a float list, got: %v", vs.Strings())
	}
}

func TestValidateEntry_UntypedListAcceptsAnything(t *testing.T) {
	s := g.Schema().Field("bag", g.List()).MustBuild()
	e := metaset.Entry{"bag": []any{1, "a", true, nil, map[string]any{"k": 1}}}
	if vs := s.ValidateEntry(e); len(vs) != 0 {
		t.Fatalf("untyped list items must not be checked, got: %v", vs.Strings())
	}
}

func TestValidateEntry_OpenObjectAcceptsAnyMembers(t *testing.T) {
	s := g.Schema().Field("payload", g.Object()).MustBuild()
	e := metaset.Entry{"payload": map[string]any{"anything": []any{1, 2}, "goes": nil}}
	if vs := s.ValidateEntry(e); len(vs) != 0 {
		t.Fatalf("open objects must accept any members, got: %v", vs.Strings())
	}
}

func TestValidateEntry_NullCountsAsUnset(t *testing.T) {
	s := g.Schema().
		Field("must", g.String()).Required().
		Field("may", g.String()).
		MustBuild()

	vs := s.ValidateEntry(metaset.Entry{"must": nil, "may": nil})
	if len(vs) != 1 || vs[0].Code != metaset.CodeRequired || vs[0].Field != "must" {
		t.Fatalf("explicit null handling wrong, got: %v", vs)
	}
}

func TestValidateEntry_PresentZeroValuesAreFine(t *testing.T) {
	s := g.Schema().
		Field("name", g.String()).Required().
		Field("count", g.Int()).Required().
		Field("tags", g.ListOf(g.String())).Required().
		MustBuild()

	e := metaset.Entry{"name": "", "count": 0, "tags": []any{}}
	if vs := s.ValidateEntry(e); len(vs) != 0 {
		t.Fatalf("zero values are present values, got: %v", vs.Strings())
	}
}

func TestValidateEntry_RemovingRequiredAddsExactlyOne(t *testing.T) {
	s := personSchema(t)
	e := metaset.Entry{
		"name":    "Ada",
		"age":     1,
		"active":  true,
		"address": map[string]any{"street": "x"},
	}
	if vs := s.ValidateEntry(e); len(vs) != 0 {
		t.Fatalf("baseline should be clean, got: %v", vs.Strings())
	}

	delete(e, "active")
	vs := s.ValidateEntry(e)
	if len(vs) != 1 || vs[0].Code != metaset.CodeRequired {
		t.Fatalf("expected exactly the required violation, got: %v", vs)
	}

	e["zz"] = 1
	vs = s.ValidateEntry(e)
	if len(vs) != 2 || vs[1].Code != metaset.CodeUnknownField || vs[1].Field != "zz" {
		t.Fatalf("unknown key must append after declared findings, got: %v", vs)
	}
}

func TestValidateEntry_ExtrasSortedByName(t *testing.T) {
	s := g.Schema().Field("a", g.Int()).MustBuild()
	e := metaset.Entry{"a": 1, "zz": 1, "aa": 1, "mm": 1}

	vs := s.ValidateEntry(e)
	fields := make([]string, len(vs))
	for i, v := range vs {
		fields[i] = v.Field
	}
	if diff := cmp.Diff([]string{"aa", "mm", "zz"}, fields); diff != "" {
		t.Fatalf("extras must sort by name (-want +got):\n%s", diff)
	}
}

func TestValidateEntry_Deterministic(t *testing.T) {
	s := personSchema(t)
	e := metaset.Entry{
		"age":     "x",
		"tags":    []any{1, "b", 2},
		"address": map[string]any{"street": 1, "x1": 1, "x2": 2},
		"m":       1,
		"b":       2,
		"z":       3,
	}
	first := s.ValidateEntry(e)
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(first, s.ValidateEntry(e)); diff != "" {
			t.Fatalf("run %d differs (-first +now):\n%s", i, diff)
		}
	}
}

func TestValidateEntry_DoesNotMutate(t *testing.T) {
	s := personSchema(t)
	e := metaset.Entry{"name": 1, "extra": true}
	_ = s.ValidateEntry(e)
	if len(e) != 2 || e["name"] != 1 || e["extra"] != true {
		t.Fatalf("entry was mutated: %v", e)
	}
}

func TestValidateData_KeepsOnlyViolatingIndexes(t *testing.T) {
	s := g.Schema().Field("name", g.String()).Required().MustBuild()
	entries := []metaset.Entry{
		{"name": "ok"},
		{"name": 7},
		{"name": "fine"},
		{},
	}

	rep := s.ValidateData(entries)
	if len(rep) != 2 {
		t.Fatalf("report size = %d, want 2: %v", len(rep), rep)
	}
	if _, ok := rep[1]; !ok {
		t.Fatalf("index 1 missing from report")
	}
	if vs, ok := rep[3]; !ok || vs[0].Code != metaset.CodeRequired {
		t.Fatalf("index 3 wrong: %v", rep[3])
	}
}

func TestValidateData_DecodedDocument(t *testing.T) {
	s := personSchema(t)
	doc := `[
		{"name": "Ada", "age": 36, "score": 9.5, "active": true, "tags": ["a"], "address": {"street": "s"}},
		{"name": "Bob", "age": 41.5, "active": true, "address": {"street": "t"}}
	]`
	entries, err := metaset.LoadData(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadData: %v", err)
	}

	rep := s.ValidateData(entries)
	if len(rep) != 1 {
		t.Fatalf("report = %v, want only entry 1", rep)
	}
	if got := rep[1][0].Message; got != `field "age" must be int, got float` {
		t.Fatalf("message = %q", got)
	}
}

func TestViolations_ErrorSummary(t *testing.T) {
	s := personSchema(t)
	vs := s.ValidateEntry(metaset.Entry{
		"name": "Ada",
		"age":  "old",
		"tags": []any{1},
		// active and address missing on top
	})
	if len(vs) != 4 {
		t.Fatalf("expected 4 violations, got: %v", vs.Strings())
	}

	msg := vs.Error()
	want := "invalid_type at age; required at active; invalid_item at tags; ... (total 4)"
	if msg != want {
		t.Fatalf("Error() = %q, want %q", msg, want)
	}

	if (metaset.Violations{}).Error() != "" {
		t.Fatalf("empty violations must render empty")
	}
}

func TestAsViolations(t *testing.T) {
	s := g.Schema().Field("a", g.Int()).Required().MustBuild()
	var err error = s.ValidateEntry(metaset.Entry{})

	vs, ok := metaset.AsViolations(err)
	if !ok || len(vs) != 1 {
		t.Fatalf("AsViolations direct: ok=%v vs=%v", ok, vs)
	}

	wrapped := fmt.Errorf("validate payload: %w", err)
	vs, ok = metaset.AsViolations(wrapped)
	if !ok || len(vs) != 1 {
		t.Fatalf("AsViolations wrapped: ok=%v vs=%v", ok, vs)
	}

	if _, ok := metaset.AsViolations(nil); ok {
		t.Fatalf("AsViolations(nil) reported ok")
	}
	if _, ok := metaset.AsViolations(errors.New("boom")); ok {
		t.Fatalf("AsViolations on foreign error reported ok")
	}
}

func TestValidateEntry_PortugueseMessages(t *testing.T) {
	i18n.SetLanguage("pt")
	defer i18n.SetLanguage("en")

	s := personSchema(t)
	e := metaset.Entry{
		"name": "Ada",
		"age":  "old",
		"tags": []any{"x", 1},
		// active and address missing
		"extra": 1,
	}
	got := s.ValidateEntry(e).Strings()
	want := []string{
		"Campo 'age' deve ser do tipo int, recebido str",
		"Campo obrigatório 'active' está ausente",
		"Item 1 em 'tags' deve ser do tipo str, recebido int",
		"Campo obrigatório 'address' está ausente",
		"Campo 'extra' não está definido no modelo",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("portuguese messages mismatch (-want +got):\n%s", diff)
	}
}
