package sdl

import (
	"fmt"
	"strings"

	"github.com/oneiriq/cosmiq-graphql/pkg/inference"
)

// systemFields are store-managed fields excluded from input types.
var systemFields = map[string]struct{}{
	"id":           {},
	"_etag":        {},
	"_ts":          {},
	"_rid":         {},
	"_self":        {},
	"_attachments": {},
}

// InputSuffix is appended to every (possibly collision-resolved) type name.
const InputSuffix = "Input"

// RenderInputs emits input blocks for the root and every nested type, with
// system fields stripped and nested references rewritten to their input
// counterparts.
func RenderInputs(t *inference.InferredTypes) string {
	var b strings.Builder
	writeInputBlock(&b, t.Root)
	for _, def := range t.Nested {
		b.WriteString("\n")
		writeInputBlock(&b, def)
	}
	return b.String()
}

func writeInputBlock(b *strings.Builder, def *inference.TypeDefinition) {
	fmt.Fprintf(b, "input %s%s {\n", def.Name, InputSuffix)
	for _, f := range def.Fields {
		if _, system := systemFields[f.Name]; system {
			continue
		}
		fmt.Fprintf(b, "  %s: %s\n", f.Name, inputFieldType(f))
	}
	b.WriteString("}\n")
}

func inputFieldType(f inference.FieldDefinition) string {
	t := f.Type
	if f.NestedType != "" {
		t = f.NestedType + InputSuffix
	}
	if f.IsArray {
		t = "[" + t + "]"
	}
	if f.Required {
		t += "!"
	}
	return t
}
