package metaset

// Entry is one record of the edited collection: a mapping from field name to
// a JSON-shaped value (string, bool, number, []any, map[string]any or nil).
// Entries need not be schema-complete at all times; validation reports
// deviations instead of rejecting construction.
type Entry map[string]any

// NewEntry builds a blank entry conforming to the schema: required fields get
// a type-appropriate zero value, optional fields are present with an explicit
// null. The result validates clean against the same schema.
func NewEntry(s *Schema) Entry {
	e := make(Entry, s.Len())
	fillDefaults(s, map[string]any(e))
	return e
}

func fillDefaults(s *Schema, obj map[string]any) {
	for _, name := range s.names {
		spec := s.specs[name]
		if !spec.Required {
			obj[name] = nil
			continue
		}
		obj[name] = zeroValue(spec.Type)
	}
}

// zeroValue synthesizes the type-appropriate zero for a required field.
func zeroValue(t FieldType) any {
	switch t.Kind {
	case KindString:
		return ""
	case KindInt:
		return 0
	case KindFloat:
		return 0.0
	case KindBool:
		return false
	case KindList:
		return []any{}
	case KindObject:
		sub := map[string]any{}
		if t.Fields != nil {
			fillDefaults(t.Fields, sub)
		}
		return sub
	default:
		return nil
	}
}
