package dsl

import (
	metaset "github.com/reoring/metaset"
)

// String declares a string field type.
func String() metaset.FieldType { return metaset.FieldType{Kind: metaset.KindString} }

// Int declares an integer field type.
func Int() metaset.FieldType { return metaset.FieldType{Kind: metaset.KindInt} }

// Float declares a float field type. Integer values satisfy it as well.
func Float() metaset.FieldType { return metaset.FieldType{Kind: metaset.KindFloat} }

// Bool declares a boolean field type.
func Bool() metaset.FieldType { return metaset.FieldType{Kind: metaset.KindBool} }

// List declares an untyped list field; elements are not checked.
func List() metaset.FieldType { return metaset.FieldType{Kind: metaset.KindList} }

// ListOf declares a list whose elements must match elem. Only scalar element
// types are accepted; anything else is rejected at Build.
func ListOf(elem metaset.FieldType) metaset.FieldType {
	return metaset.FieldType{Kind: metaset.KindList, Elem: elem.Kind}
}

// Object declares an open object field; members are not checked.
func Object() metaset.FieldType { return metaset.FieldType{Kind: metaset.KindObject} }

// ObjectOf declares an object field validated against the given sub-schema.
func ObjectOf(fields *metaset.Schema) metaset.FieldType {
	return metaset.FieldType{Kind: metaset.KindObject, Fields: fields}
}
