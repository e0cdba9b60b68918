package metaset

import (
	"fmt"
	"log/slog"
	"strings"
)

// Kind enumerates the closed set of declared field types.
type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
	KindObject
)

// String returns the canonical type tag for the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "str"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// FieldType is the closed representation of a declared field type.
// Kind is always set. Elem is the element kind for typed lists
// ("list[str]") and KindInvalid otherwise. Fields is non-nil only for
// object fields that declare a nested schema.
type FieldType struct {
	Kind   Kind
	Elem   Kind
	Fields *Schema

	// tag preserves the declared source tag ("str", "list[int]", "dict",
	// "object") so messages render what the document said.
	tag string
}

// String renders the declared source tag when the type came from a document,
// or the canonical tag otherwise.
func (t FieldType) String() string {
	if t.tag != "" {
		return t.tag
	}
	if t.Kind == KindList && t.Elem != KindInvalid {
		return "list[" + t.Elem.String() + "]"
	}
	return t.Kind.String()
}

// FieldSpec describes one declared field.
type FieldSpec struct {
	Type     FieldType
	Required bool
}

// Field pairs a name with its spec for ordered schema construction.
type Field struct {
	Name string
	Spec FieldSpec
}

// scalarKinds maps scalar type tags to kinds. List element tags must come
// from this set.
var scalarKinds = map[string]Kind{
	"str":   KindString,
	"int":   KindInt,
	"float": KindFloat,
	"bool":  KindBool,
}

// kindByTag maps every supported base tag to its kind. "dict" and "object"
// are synonyms.
var kindByTag = map[string]Kind{
	"str":    KindString,
	"int":    KindInt,
	"float":  KindFloat,
	"bool":   KindBool,
	"list":   KindList,
	"dict":   KindObject,
	"object": KindObject,
}

// ParseTypeTag converts a declared type tag into its FieldType. Unknown base
// tags and non-scalar list element tags fail with *SchemaError.
func ParseTypeTag(tag string) (FieldType, error) {
	if inner, ok := listElemTag(tag); ok {
		ek, ok := scalarKinds[inner]
		if !ok {
			return FieldType{}, &SchemaError{Reason: fmt.Sprintf("unsupported type %q", tag)}
		}
		return FieldType{Kind: KindList, Elem: ek, tag: tag}, nil
	}
	k, ok := kindByTag[tag]
	if !ok {
		return FieldType{}, &SchemaError{Reason: fmt.Sprintf("unsupported type %q", tag)}
	}
	return FieldType{Kind: k, tag: tag}, nil
}

func listElemTag(tag string) (string, bool) {
	if strings.HasPrefix(tag, "list[") && strings.HasSuffix(tag, "]") {
		return tag[len("list[") : len(tag)-1], true
	}
	return "", false
}

// ReadOpt bundles streaming read options.
type ReadOpt struct {
	ChunkSize int   // elements per chunk; DefaultChunkSize when zero
	MaxDepth  int   // maximum container nesting depth; 0 disables the check
	MaxBytes  int64 // maximum consumed input bytes; 0 disables the check
}

// SaveOpt bundles persistence options.
type SaveOpt struct {
	// Indent is the number of spaces per indent level. Zero selects
	// DefaultIndent; a negative value writes compact output.
	Indent int
	// EscapeHTML escapes <, > and & inside output strings. Off by default so
	// non-ASCII and markup-bearing text survives verbatim.
	EscapeHTML bool
	// DisableBackup skips the pre-save backup copy of the existing target.
	DisableBackup bool
	// Logger receives backup-created and file-saved events. Nil disables
	// save logging.
	Logger *slog.Logger
}
