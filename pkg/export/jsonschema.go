// Package export converts inferred type definitions into a JSON Schema
// document and can check the original sample documents against it.
package export

import (
	"github.com/invopop/jsonschema"

	"github.com/oneiriq/cosmiq-graphql/pkg/inference"
)

// ToJSONSchema converts an inferred type system to a JSON Schema (Draft
// 2020-12). Nested types become $defs referenced by $ref, so the document
// mirrors the inferred type graph one to one.
func ToJSONSchema(t *inference.InferredTypes) *jsonschema.Schema {
	root := objectSchema(t.Root)
	root.Version = jsonschema.Version
	root.Title = t.Root.Name

	if len(t.Nested) > 0 {
		root.Definitions = make(jsonschema.Definitions, len(t.Nested))
		for _, def := range t.Nested {
			root.Definitions[def.Name] = objectSchema(def)
		}
	}
	return root
}

func objectSchema(def *inference.TypeDefinition) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}
	for _, f := range def.Fields {
		s.Properties.Set(f.Name, fieldSchema(f))
		if f.Required {
			s.Required = append(s.Required, f.Name)
		}
	}
	return s
}

func fieldSchema(f inference.FieldDefinition) *jsonschema.Schema {
	var inner *jsonschema.Schema
	if f.NestedType != "" {
		inner = &jsonschema.Schema{Ref: "#/$defs/" + f.NestedType}
	} else {
		inner = scalarSchema(f.Type)
	}
	if f.IsArray {
		return &jsonschema.Schema{Type: "array", Items: inner}
	}
	return inner
}

func scalarSchema(graphqlType string) *jsonschema.Schema {
	switch graphqlType {
	case inference.ScalarInt:
		return &jsonschema.Schema{Type: "integer"}
	case inference.ScalarFloat:
		return &jsonschema.Schema{Type: "number"}
	case inference.ScalarBoolean:
		return &jsonschema.Schema{Type: "boolean"}
	case inference.ScalarString, inference.ScalarID:
		return &jsonschema.Schema{Type: "string"}
	}
	// JSON fallback scalar matches anything.
	return &jsonschema.Schema{}
}
