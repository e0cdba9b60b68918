package jsonschema

// Schema is the subset of JSON Schema a record model can express: scalar
// types, required/optional object members, typed lists and nested objects.
type Schema struct {
	Type string `json:"type,omitempty"`

	// object members
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// list elements
	Items *Schema `json:"items,omitempty"`
}
