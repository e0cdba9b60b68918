// Package yamlschema imports YAML model documents into metaset schemas.
//
// The YAML shape mirrors the JSON model format: a mapping carrying a
// "__meta__" key whose members are field specifications. Field declaration
// order in the document is preserved.
package yamlschema

import (
	"fmt"
	"os"
	"strconv"

	metaset "github.com/reoring/metaset"
	"gopkg.in/yaml.v3"
)

// ImportFile reads a YAML model document from disk and builds its Schema.
func ImportFile(path string) (*metaset.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("yamlschema: open model: %w", err)
	}
	return Import(data)
}

// Import builds a Schema from a YAML model document. The document must be a
// mapping carrying metaset.MetaKey; sibling keys are ignored. Only the first
// document of a multi-document stream is read.
func Import(data []byte) (*metaset.Schema, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &metaset.SchemaError{Reason: "invalid model document: " + err.Error()}
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil, &metaset.SchemaError{Reason: "model document is not an object"}
		}
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, &metaset.SchemaError{Reason: "model document is not an object"}
	}

	var meta *yaml.Node
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value == metaset.MetaKey {
			meta = doc.Content[i+1]
			break
		}
	}
	if meta == nil {
		return nil, &metaset.SchemaError{Reason: `model document does not contain "__meta__"`}
	}
	if meta.Kind != yaml.MappingNode || len(meta.Content) == 0 {
		return nil, &metaset.SchemaError{Reason: `"__meta__" must be a non-empty object`}
	}

	fields, err := specFields("", meta)
	if err != nil {
		return nil, err
	}
	return metaset.NewSchema(fields...)
}

// specFields walks a mapping of field specifications in document order.
func specFields(prefix string, mapping *yaml.Node) ([]metaset.Field, error) {
	fields := make([]metaset.Field, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		name := mapping.Content[i].Value
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		spec, err := parseSpec(path, mapping.Content[i+1])
		if err != nil {
			return nil, err
		}
		fields = append(fields, metaset.Field{Name: name, Spec: spec})
	}
	return fields, nil
}

func parseSpec(path string, n *yaml.Node) (metaset.FieldSpec, error) {
	if n.Kind != yaml.MappingNode {
		return metaset.FieldSpec{}, specErr(path, "field specification is not an object", n)
	}
	var (
		tag      string
		tagSeen  bool
		required bool
		sub      []metaset.Field
		subSeen  bool
	)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "type":
			if val.Kind != yaml.ScalarNode || val.Tag != "!!str" {
				return metaset.FieldSpec{}, specErr(path, `"type" must be a string`, val)
			}
			tag = val.Value
			tagSeen = true
		case "required":
			if val.Kind != yaml.ScalarNode || val.Tag != "!!bool" {
				return metaset.FieldSpec{}, specErr(path, `"required" must be a boolean`, val)
			}
			b, err := strconv.ParseBool(val.Value)
			if err != nil {
				return metaset.FieldSpec{}, specErr(path, `"required" must be a boolean`, val)
			}
			required = b
		case "fields":
			if val.Kind != yaml.MappingNode {
				return metaset.FieldSpec{}, specErr(path, `"fields" must be an object`, val)
			}
			fs, err := specFields(path, val)
			if err != nil {
				return metaset.FieldSpec{}, err
			}
			sub = fs
			subSeen = true
		default:
			// Unknown specification keys are skipped.
		}
	}

	if !tagSeen {
		return metaset.FieldSpec{}, specErr(path, "no type specified", n)
	}
	ft, err := metaset.ParseTypeTag(tag)
	if err != nil {
		return metaset.FieldSpec{}, specErr(path, fmt.Sprintf("unsupported type %q", tag), nil)
	}
	if subSeen && ft.Kind == metaset.KindObject && len(sub) > 0 {
		s, err := metaset.NewSchema(sub...)
		if err != nil {
			return metaset.FieldSpec{}, err
		}
		ft.Fields = s
	}
	return metaset.FieldSpec{Type: ft, Required: required}, nil
}

// specErr builds a SchemaError, annotating it with the YAML source line when
// one is known.
func specErr(path, reason string, n *yaml.Node) *metaset.SchemaError {
	if n != nil && n.Line > 0 {
		reason = fmt.Sprintf("%s (line %d)", reason, n.Line)
	}
	return &metaset.SchemaError{Field: path, Reason: reason}
}
