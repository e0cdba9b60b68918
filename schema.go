package metaset

import (
	"fmt"
	"os"
	"sort"

	eng "github.com/reoring/metaset/internal/engine"
	jsonsrc "github.com/reoring/metaset/source/json"
)

// MetaKey is the reserved model-document key holding the field specifications.
const MetaKey = "__meta__"

// Schema is an ordered, immutable mapping from field name to FieldSpec.
// Declaration order is semantically significant: it drives column order in
// callers and the ordering of violation reports.
type Schema struct {
	names []string
	specs map[string]FieldSpec
}

// NewSchema builds a Schema from ordered fields. It fails with *SchemaError
// when no field is given, a name repeats, or a spec breaks the type
// invariants.
func NewSchema(fields ...Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, &SchemaError{Reason: "schema must declare at least one field"}
	}
	s := &Schema{
		names: make([]string, 0, len(fields)),
		specs: make(map[string]FieldSpec, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, &SchemaError{Reason: "field name must not be empty"}
		}
		if _, dup := s.specs[f.Name]; dup {
			return nil, schemaErrf(f.Name, "duplicate field")
		}
		if err := checkSpec(f.Name, f.Spec); err != nil {
			return nil, err
		}
		s.names = append(s.names, f.Name)
		s.specs[f.Name] = f.Spec
	}
	return s, nil
}

func checkSpec(path string, spec FieldSpec) error {
	t := spec.Type
	switch t.Kind {
	case KindString, KindInt, KindFloat, KindBool:
		if t.Elem != KindInvalid {
			return schemaErrf(path, "element type is only valid for lists")
		}
		if t.Fields != nil {
			return schemaErrf(path, "nested fields are only valid for object types")
		}
	case KindList:
		if t.Fields != nil {
			return schemaErrf(path, "nested fields are only valid for object types")
		}
		switch t.Elem {
		case KindInvalid, KindString, KindInt, KindFloat, KindBool:
		default:
			return schemaErrf(path, "unsupported list element type %q", t.Elem.String())
		}
	case KindObject:
		if t.Elem != KindInvalid {
			return schemaErrf(path, "element type is only valid for lists")
		}
		if t.Fields != nil && t.Fields.Len() == 0 {
			return schemaErrf(path, "nested schema must declare at least one field")
		}
	default:
		return schemaErrf(path, "unsupported type")
	}
	return nil
}

// Fields returns the declared field names in declaration order.
func (s *Schema) Fields() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of declared fields.
func (s *Schema) Len() int { return len(s.names) }

// Spec returns the full spec for name; ok is false for undeclared names.
func (s *Schema) Spec(name string) (FieldSpec, bool) {
	sp, ok := s.specs[name]
	return sp, ok
}

// Type returns the declared type for name; ok is false for undeclared names.
func (s *Schema) Type(name string) (FieldType, bool) {
	sp, ok := s.specs[name]
	return sp.Type, ok
}

// Required reports whether name is declared required. Undeclared names are
// never required.
func (s *Schema) Required(name string) bool { return s.specs[name].Required }

// Nested returns the nested schema declared on an object field, or nil when
// the field is undeclared, not an object, or declares no nested fields.
func (s *Schema) Nested(name string) *Schema { return s.specs[name].Type.Fields }

// ---- model document parsing ----

// ParseSchema builds a Schema from an in-memory JSON value, typically a
// document decoded elsewhere. The value must be an object carrying MetaKey.
// Go maps carry no key order, so fields are sorted by name here; use
// ParseSchemaBytes, LoadSchemaFile or the dsl package when declaration order
// matters.
func ParseSchema(doc any) (*Schema, error) {
	obj, ok := asObject(doc)
	if !ok {
		return nil, &SchemaError{Reason: "model document is not an object"}
	}
	rawMeta, ok := obj[MetaKey]
	if !ok {
		return nil, &SchemaError{Reason: `model document does not contain "__meta__"`}
	}
	meta, ok := asObject(rawMeta)
	if !ok || len(meta) == 0 {
		return nil, &SchemaError{Reason: `"__meta__" must be a non-empty object`}
	}
	fields, err := specFieldsFromMap("", meta)
	if err != nil {
		return nil, err
	}
	return NewSchema(fields...)
}

func specFieldsFromMap(prefix string, m map[string]any) ([]Field, error) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		spec, err := parseSpecValue(joinField(prefix, name), m[name])
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: name, Spec: spec})
	}
	return fields, nil
}

func parseSpecValue(path string, raw any) (FieldSpec, error) {
	specObj, ok := asObject(raw)
	if !ok {
		return FieldSpec{}, schemaErrf(path, "field specification is not an object")
	}

	rawType, ok := specObj["type"]
	if !ok {
		return FieldSpec{}, schemaErrf(path, "no type specified")
	}
	tag, ok := rawType.(string)
	if !ok {
		return FieldSpec{}, schemaErrf(path, `"type" must be a string`)
	}
	ft, err := ParseTypeTag(tag)
	if err != nil {
		return FieldSpec{}, schemaErrf(path, "unsupported type %q", tag)
	}

	var required bool
	if rawReq, ok := specObj["required"]; ok {
		b, ok := rawReq.(bool)
		if !ok {
			return FieldSpec{}, schemaErrf(path, `"required" must be a boolean`)
		}
		required = b
	}

	if rawFields, ok := specObj["fields"]; ok {
		sub, err := parseFieldsValue(path, rawFields)
		if err != nil {
			return FieldSpec{}, err
		}
		// A nested schema is only meaningful on object fields; a well-formed
		// "fields" block on any other type is dropped.
		if ft.Kind == KindObject {
			ft.Fields = sub
		}
	}

	return FieldSpec{Type: ft, Required: required}, nil
}

func parseFieldsValue(path string, raw any) (*Schema, error) {
	m, ok := asObject(raw)
	if !ok {
		return nil, schemaErrf(path, `"fields" must be an object`)
	}
	// Declared but empty means the field accepts any object value.
	if len(m) == 0 {
		return nil, nil
	}
	fields, err := specFieldsFromMap(path, m)
	if err != nil {
		return nil, err
	}
	return NewSchema(fields...)
}

// ---- ordered parsing from documents ----

// ParseSchemaBytes builds a Schema from a JSON model document, preserving the
// document's field declaration order.
func ParseSchemaBytes(data []byte) (*Schema, error) {
	return parseSchemaTokens(jsonsrc.NewBytes(data))
}

// LoadSchemaFile reads a JSON model document from disk and builds its Schema,
// preserving the document's field declaration order.
func LoadSchemaFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("metaset: open model: %w", err)
	}
	defer f.Close()
	return parseSchemaTokens(jsonsrc.NewReader(f))
}

func parseSchemaTokens(src eng.TokenSource) (*Schema, error) {
	tok, err := src.NextToken()
	if err != nil || tok.Kind != eng.KindBeginObject {
		return nil, &SchemaError{Reason: "model document is not an object"}
	}

	var meta *Schema
	seen := false
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, &SchemaError{Reason: "invalid model document: " + err.Error()}
		}
		if tok.Kind == eng.KindEndObject {
			break
		}
		if tok.Kind != eng.KindKey {
			return nil, &SchemaError{Reason: "invalid model document"}
		}
		if tok.Text != MetaKey {
			// Model files may carry sibling content (a data template and the
			// like); skip it.
			if _, err := eng.DecodeAny(src); err != nil {
				return nil, &SchemaError{Reason: "invalid model document: " + err.Error()}
			}
			continue
		}
		s, err := parseMetaTokens(src)
		if err != nil {
			return nil, err
		}
		meta = s
		seen = true
	}
	if !seen {
		return nil, &SchemaError{Reason: `model document does not contain "__meta__"`}
	}
	return meta, nil
}

func parseMetaTokens(src eng.TokenSource) (*Schema, error) {
	tok, err := src.NextToken()
	if err != nil || tok.Kind != eng.KindBeginObject {
		return nil, &SchemaError{Reason: `"__meta__" must be a non-empty object`}
	}
	fields, err := specFieldsFromTokens("", src)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, &SchemaError{Reason: `"__meta__" must be a non-empty object`}
	}
	return NewSchema(fields...)
}

// specFieldsFromTokens consumes an already-opened object of field
// specifications through its closing brace, preserving declaration order.
func specFieldsFromTokens(prefix string, src eng.TokenSource) ([]Field, error) {
	var fields []Field
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, &SchemaError{Reason: "invalid model document: " + err.Error()}
		}
		if tok.Kind == eng.KindEndObject {
			return fields, nil
		}
		if tok.Kind != eng.KindKey {
			return nil, &SchemaError{Reason: "invalid model document"}
		}
		name := tok.Text
		spec, err := parseSpecTokens(joinField(prefix, name), src)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: name, Spec: spec})
	}
}

func parseSpecTokens(path string, src eng.TokenSource) (FieldSpec, error) {
	tok, err := src.NextToken()
	if err != nil {
		return FieldSpec{}, &SchemaError{Reason: "invalid model document: " + err.Error()}
	}
	if tok.Kind != eng.KindBeginObject {
		return FieldSpec{}, schemaErrf(path, "field specification is not an object")
	}

	var (
		tag       string
		tagSeen   bool
		required  bool
		subFields []Field
		subSeen   bool
	)
	for {
		tok, err := src.NextToken()
		if err != nil {
			return FieldSpec{}, &SchemaError{Reason: "invalid model document: " + err.Error()}
		}
		if tok.Kind == eng.KindEndObject {
			break
		}
		if tok.Kind != eng.KindKey {
			return FieldSpec{}, &SchemaError{Reason: "invalid model document"}
		}
		switch tok.Text {
		case "type":
			vt, err := src.NextToken()
			if err != nil {
				return FieldSpec{}, &SchemaError{Reason: "invalid model document: " + err.Error()}
			}
			if vt.Kind != eng.KindString {
				return FieldSpec{}, schemaErrf(path, `"type" must be a string`)
			}
			tag = vt.Text
			tagSeen = true
		case "required":
			vt, err := src.NextToken()
			if err != nil {
				return FieldSpec{}, &SchemaError{Reason: "invalid model document: " + err.Error()}
			}
			if vt.Kind != eng.KindBool {
				return FieldSpec{}, schemaErrf(path, `"required" must be a boolean`)
			}
			required = vt.Bool
		case "fields":
			vt, err := src.NextToken()
			if err != nil {
				return FieldSpec{}, &SchemaError{Reason: "invalid model document: " + err.Error()}
			}
			if vt.Kind != eng.KindBeginObject {
				return FieldSpec{}, schemaErrf(path, `"fields" must be an object`)
			}
			fs, err := specFieldsFromTokens(path, src)
			if err != nil {
				return FieldSpec{}, err
			}
			subFields = fs
			subSeen = true
		default:
			// Unknown specification keys are skipped.
			if _, err := eng.DecodeAny(src); err != nil {
				return FieldSpec{}, &SchemaError{Reason: "invalid model document: " + err.Error()}
			}
		}
	}

	if !tagSeen {
		return FieldSpec{}, schemaErrf(path, "no type specified")
	}
	ft, err := ParseTypeTag(tag)
	if err != nil {
		return FieldSpec{}, schemaErrf(path, "unsupported type %q", tag)
	}
	if subSeen && ft.Kind == KindObject && len(subFields) > 0 {
		sub, err := NewSchema(subFields...)
		if err != nil {
			return FieldSpec{}, err
		}
		ft.Fields = sub
	}
	return FieldSpec{Type: ft, Required: required}, nil
}
