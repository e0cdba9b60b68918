// Package dsl builds field schemas in code, preserving declaration order.
//
// Typical usage:
//
//	s := dsl.Schema().
//		Field("name", dsl.String()).Required().
//		Field("tags", dsl.ListOf(dsl.String())).
//		Field("address", dsl.ObjectOf(
//			dsl.Schema().Field("street", dsl.String()).Required().MustBuild(),
//		)).
//		MustBuild()
package dsl

import (
	metaset "github.com/reoring/metaset"
)

// SchemaBuilder accumulates fields in declaration order. Validation happens
// at Build.
type SchemaBuilder struct {
	fields []metaset.Field
}

type fieldStep struct{ b *SchemaBuilder }

// Schema creates a new ordered schema builder.
func Schema() *SchemaBuilder { return &SchemaBuilder{} }

// Field appends a field with its type. Fields are optional unless marked
// Required.
func (b *SchemaBuilder) Field(name string, t metaset.FieldType) *fieldStep {
	b.fields = append(b.fields, metaset.Field{Name: name, Spec: metaset.FieldSpec{Type: t}})
	return &fieldStep{b: b}
}

// Build validates the declared fields and returns the Schema.
func (b *SchemaBuilder) Build() (*metaset.Schema, error) {
	return metaset.NewSchema(b.fields...)
}

// MustBuild is like Build but panics on error.
func (b *SchemaBuilder) MustBuild() *metaset.Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// Required marks the field just added as required and returns the builder.
func (f *fieldStep) Required() *SchemaBuilder {
	f.b.fields[len(f.b.fields)-1].Spec.Required = true
	return f.b
}

// Optional marks the field just added as optional (the default) and returns
// the builder.
func (f *fieldStep) Optional() *SchemaBuilder { return f.b }

func (f *fieldStep) Field(name string, t metaset.FieldType) *fieldStep {
	return f.b.Field(name, t)
}
func (f *fieldStep) Build() (*metaset.Schema, error) { return f.b.Build() }
func (f *fieldStep) MustBuild() *metaset.Schema      { return f.b.MustBuild() }
