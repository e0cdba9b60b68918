package metaset

import js "github.com/reoring/metaset/jsonschema"

// JSONSchema exports the schema as a minimal JSON Schema document. Keys not
// declared by the schema count as violations here, so exported objects close
// with additionalProperties: false; object fields without a nested schema
// stay open, matching their accept-any-object semantics.
func (s *Schema) JSONSchema() *js.Schema {
	out := &js.Schema{
		Type:                 "object",
		Properties:           make(map[string]*js.Schema, s.Len()),
		AdditionalProperties: false,
	}
	for _, name := range s.names {
		spec := s.specs[name]
		out.Properties[name] = fieldTypeJSONSchema(spec.Type)
		if spec.Required {
			out.Required = append(out.Required, name)
		}
	}
	return out
}

func fieldTypeJSONSchema(t FieldType) *js.Schema {
	switch t.Kind {
	case KindString:
		return &js.Schema{Type: "string"}
	case KindInt:
		return &js.Schema{Type: "integer"}
	case KindFloat:
		return &js.Schema{Type: "number"}
	case KindBool:
		return &js.Schema{Type: "boolean"}
	case KindList:
		out := &js.Schema{Type: "array"}
		if t.Elem != KindInvalid {
			out.Items = fieldTypeJSONSchema(FieldType{Kind: t.Elem})
		}
		return out
	case KindObject:
		if t.Fields != nil {
			return t.Fields.JSONSchema()
		}
		return &js.Schema{Type: "object"}
	default:
		return &js.Schema{}
	}
}
