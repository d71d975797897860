// Package sdl renders inferred type definitions as GraphQL SDL: type blocks,
// a paginated Query type and CRUD input types. Output is deterministic for
// deterministic input.
package sdl

import (
	"fmt"
	"strings"

	"github.com/oneiriq/cosmiq-graphql/pkg/inference"
)

// Options controls which blocks the renderer emits.
type Options struct {
	// IncludeQuery emits a Query type with by-id lookup and paginated list.
	IncludeQuery bool
	// IncludeInputs emits input types (see RenderInputs).
	IncludeInputs bool
}

// DefaultOptions emits everything.
func DefaultOptions() Options {
	return Options{IncludeQuery: true, IncludeInputs: true}
}

// Render emits the SDL document for an inferred type system.
func Render(t *inference.InferredTypes, opts Options) string {
	var b strings.Builder

	if usesJSONScalar(t) {
		b.WriteString("scalar JSON\n\n")
	}

	writeTypeBlock(&b, t.Root)
	for _, def := range t.Nested {
		b.WriteString("\n")
		writeTypeBlock(&b, def)
	}

	if opts.IncludeQuery {
		b.WriteString("\n")
		writeQueryBlock(&b, t.Root.Name)
	}
	if opts.IncludeInputs {
		b.WriteString("\n")
		b.WriteString(RenderInputs(t))
	}

	return b.String()
}

func writeTypeBlock(b *strings.Builder, def *inference.TypeDefinition) {
	fmt.Fprintf(b, "type %s {\n", def.Name)
	for _, f := range def.Fields {
		fmt.Fprintf(b, "  %s: %s\n", f.Name, fieldType(f))
	}
	b.WriteString("}\n")
}

// writeQueryBlock emits the paginated query surface for the root type.
func writeQueryBlock(b *strings.Builder, rootName string) {
	single := lowerFirst(rootName)
	list := pluralize(single)

	b.WriteString("enum OrderDirection {\n  ASC\n  DESC\n}\n\n")
	b.WriteString("type Query {\n")
	fmt.Fprintf(b, "  %s(id: ID!): %s\n", single, rootName)
	fmt.Fprintf(b, "  %s(limit: Int, partitionKey: String, continuationToken: String, orderBy: String, orderDirection: OrderDirection): [%s]\n",
		list, rootName)
	b.WriteString("}\n")
}

func fieldType(f inference.FieldDefinition) string {
	t := f.Type
	if f.IsArray {
		t = "[" + t + "]"
	}
	if f.Required {
		t += "!"
	}
	return t
}

func usesJSONScalar(t *inference.InferredTypes) bool {
	all := append([]*inference.TypeDefinition{t.Root}, t.Nested...)
	for _, def := range all {
		for _, f := range def.Fields {
			if f.Type == "JSON" {
				return true
			}
		}
	}
	return false
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func pluralize(s string) string {
	if strings.HasSuffix(s, "y") && len(s) > 1 {
		return s[:len(s)-1] + "ies"
	}
	if strings.HasSuffix(s, "s") {
		return s + "es"
	}
	return s + "s"
}
