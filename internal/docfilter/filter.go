// Package docfilter applies an optional jq projection to sampled documents
// before analysis, so callers can trim or reshape what the inference engine
// sees.
package docfilter

import (
	"github.com/itchyny/gojq"

	"github.com/oneiriq/cosmiq-graphql/pkg/classify"
)

const component = "docfilter"

// Filter is a compiled jq projection.
type Filter struct {
	code *gojq.Code
	expr string
}

// New parses and compiles a jq expression. Invalid expressions are a
// Validation failure.
func New(expr string) (*Filter, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, classify.NewValidation(component, "invalid jq expression %q: %v", expr, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, classify.NewValidation(component, "cannot compile jq expression %q: %v", expr, err)
	}
	return &Filter{code: code, expr: expr}, nil
}

// Apply runs the projection over each document. Every emitted value must be
// an object (documents stay documents); anything else is a Validation
// failure. Null outputs drop the document from the sample.
func (f *Filter) Apply(docs []map[string]any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(docs))
	for i, doc := range docs {
		iter := f.code.Run(doc)
		for {
			v, ok := iter.Next()
			if !ok {
				break
			}
			if err, isErr := v.(error); isErr {
				return nil, classify.NewValidation(component, "jq projection failed on document %d: %v", i, err)
			}
			if v == nil {
				continue
			}
			obj, isObj := v.(map[string]any)
			if !isObj {
				return nil, classify.NewValidation(component, "jq projection produced a non-object for document %d", i)
			}
			out = append(out, obj)
		}
	}
	return out, nil
}

// Expr returns the source expression.
func (f *Filter) Expr() string {
	return f.expr
}
