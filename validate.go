package metaset

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/reoring/metaset/i18n"
)

// Report maps zero-based entry indices to their violations. Indices with no
// violations are omitted.
type Report map[int]Violations

// ValidateEntry checks one entry against the schema and returns its
// violations in a deterministic order: declared fields first, in declaration
// order, then keys not declared by the schema, sorted by name. Object fields
// with a nested schema recurse with a dotted prefix at the owning field's
// position. The entry is never mutated, and identical inputs always produce
// identical output.
func (s *Schema) ValidateEntry(e Entry) Violations {
	return s.validateObject("", map[string]any(e), nil)
}

// ValidateData validates each entry in order, keeping only indices with
// violations.
func (s *Schema) ValidateData(entries []Entry) Report {
	rep := make(Report)
	for i, e := range entries {
		if vs := s.ValidateEntry(e); len(vs) > 0 {
			rep[i] = vs
		}
	}
	return rep
}

func (s *Schema) validateObject(prefix string, obj map[string]any, out Violations) Violations {
	for _, name := range s.names {
		spec := s.specs[name]
		path := joinField(prefix, name)
		v, present := obj[name]
		if !present || v == nil {
			// Explicit null counts as unset; only required fields object.
			if spec.Required {
				out = append(out, newViolation(path, CodeRequired, map[string]string{"name": path}))
			}
			continue
		}
		out = checkValue(path, spec.Type, v, out)
	}

	var extras []string
	for k := range obj {
		if _, declared := s.specs[k]; !declared {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	for _, k := range extras {
		path := joinField(prefix, k)
		out = append(out, newViolation(path, CodeUnknownField, map[string]string{"name": path}))
	}
	return out
}

func checkValue(path string, t FieldType, v any, out Violations) Violations {
	switch t.Kind {
	case KindString, KindInt, KindFloat, KindBool:
		if !scalarMatches(t.Kind, v) {
			out = append(out, typeViolation(path, t, v))
		}
	case KindList:
		arr, ok := v.([]any)
		if !ok {
			out = append(out, newViolation(path, CodeNotAList, map[string]string{"name": path}))
			break
		}
		if t.Elem == KindInvalid {
			break
		}
		for i, item := range arr {
			if !scalarMatches(t.Elem, item) {
				out = append(out, newViolation(path, CodeInvalidItem, map[string]string{
					"index": strconv.Itoa(i),
					"name":  path,
					"type":  t.Elem.String(),
					"got":   valueTypeName(item),
				}))
			}
		}
	case KindObject:
		obj, ok := asObject(v)
		if !ok {
			out = append(out, typeViolation(path, t, v))
			break
		}
		// Without a nested schema any object value is accepted.
		if t.Fields != nil {
			out = t.Fields.validateObject(path, obj, out)
		}
	}
	return out
}

// scalarMatches reports whether a runtime value satisfies a scalar kind.
// Float accepts integer-valued numbers; everything else is an exact
// kind match.
func scalarMatches(k Kind, v any) bool {
	switch k {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindInt:
		return numberKind(v) == KindInt
	case KindFloat:
		nk := numberKind(v)
		return nk == KindInt || nk == KindFloat
	default:
		return false
	}
}

// numberKind classifies a runtime value's numeric kind. The decoders in this
// module keep numbers as json.Number: a literal containing '.', 'e' or 'E'
// is a float, anything else an integer. Plain Go numerics from in-memory
// entries classify by their Go type. Booleans are not numbers.
func numberKind(v any) Kind {
	switch n := v.(type) {
	case json.Number:
		if strings.ContainsAny(string(n), ".eE") {
			return KindFloat
		}
		return KindInt
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt
	case float32, float64:
		return KindFloat
	default:
		return KindInvalid
	}
}

// valueTypeName names a runtime value for violation messages using the same
// vocabulary as declared type tags.
func valueTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "str"
	case bool:
		return "bool"
	case []any:
		return "list"
	case map[string]any, Entry:
		return "dict"
	}
	switch numberKind(v) {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	}
	return fmt.Sprintf("%T", v)
}

// asObject views a runtime value as a JSON object when possible.
func asObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Entry:
		return map[string]any(t), true
	default:
		return nil, false
	}
}

func joinField(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func typeViolation(path string, t FieldType, v any) Violation {
	return newViolation(path, CodeInvalidType, map[string]string{
		"name": path,
		"type": t.String(),
		"got":  valueTypeName(v),
	})
}

func newViolation(field, code string, data map[string]string) Violation {
	return Violation{Field: field, Code: code, Message: i18n.T(code, data)}
}
