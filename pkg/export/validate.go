package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	sjs "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	invopop "github.com/invopop/jsonschema"
)

// ValidationResult reports how one document fared against the exported schema.
type ValidationResult struct {
	Document int      `json:"document"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
}

// printer localizes validator error messages.
var printer = message.NewPrinter(language.English)

// ValidateDocuments checks sample documents against an exported schema. This
// is the self-check for the exporter: every sampled document should satisfy
// the schema inferred from the sample it came from. Returns one result per
// document.
func ValidateDocuments(schema *invopop.Schema, docs []map[string]any) ([]ValidationResult, error) {
	compiled, err := compile(schema)
	if err != nil {
		return nil, err
	}

	results := make([]ValidationResult, 0, len(docs))
	for i, doc := range docs {
		res := ValidationResult{Document: i, Valid: true}
		// Round-trip so nested values carry the exact types the validator
		// expects (json.Number handling aside, float64 throughout).
		if err := compiled.Validate(normalize(doc)); err != nil {
			res.Valid = false
			res.Errors = validationMessages(err)
		}
		results = append(results, res)
	}
	return results, nil
}

func compile(schema *invopop.Schema) (*sjs.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("unmarshaling schema: %w", err)
	}

	compiler := sjs.NewCompiler()
	if err := compiler.AddResource("inferred.json", value); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile("inferred.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return compiled, nil
}

func normalize(doc map[string]any) any {
	raw, err := json.Marshal(doc)
	if err != nil {
		return doc
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return doc
	}
	return value
}

// validationMessages flattens a validator error into deduplicated
// path-prefixed messages, ordered by instance path.
func validationMessages(err error) []string {
	var ve *sjs.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}

	byPath := make(map[string][]string)
	collect(ve, byPath)

	paths := make([]string, 0, len(byPath))
	for path := range byPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var out []string
	for _, path := range paths {
		msgs := byPath[path]
		seen := make(map[string]bool)
		for _, msg := range msgs {
			if seen[msg] {
				continue
			}
			seen[msg] = true
			if path != "" {
				out = append(out, fmt.Sprintf("%s: %s", path, msg))
			} else {
				out = append(out, msg)
			}
		}
	}
	return out
}

func collect(err *sjs.ValidationError, byPath map[string][]string) {
	path := ""
	if len(err.InstanceLocation) > 0 {
		path = "/" + strings.Join(err.InstanceLocation, "/")
	}
	if err.ErrorKind != nil && len(err.Causes) == 0 {
		msg := err.ErrorKind.LocalizedString(printer)
		if !strings.HasPrefix(msg, "$ref ") && !strings.HasPrefix(msg, "doesn't validate with") {
			byPath[path] = append(byPath[path], msg)
		}
	}
	for _, cause := range err.Causes {
		collect(cause, byPath)
	}
}
