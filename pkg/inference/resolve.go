package inference

import (
	"math"
	"strings"

	"github.com/oneiriq/cosmiq-graphql/pkg/classify"
)

const resolverComponent = "resolver"

func newConflictError(field string, tags []Tag) error {
	return classify.NewTypeConflict(resolverComponent, field, tagsToStrings(tags))
}

// GraphQL scalar names emitted by resolution.
const (
	ScalarString  = "String"
	ScalarInt     = "Int"
	ScalarFloat   = "Float"
	ScalarBoolean = "Boolean"
	ScalarID      = "ID"
)

// DetermineNullability reports whether a field is required. Any explicit
// nullable override or observed null makes the field optional regardless of
// frequency; otherwise the field is required when it appeared in at least
// RequiredThreshold of the scope.
func DetermineNullability(fi *FieldInfo, scopeSize int, cfg *Config) bool {
	if fi.IsNullable {
		return false
	}
	if fi.ObservedTypes.Has(TagNull) {
		return false
	}
	if scopeSize <= 0 {
		return false
	}
	return float64(fi.Frequency)/float64(scopeSize) >= cfg.RequiredThreshold
}

// InferNumberType classifies numeric samples. Strict mode yields Int only
// when every value has a zero fractional component.
func InferNumberType(values []float64, cfg *Config) string {
	if cfg.NumberInference == NumberFloat {
		return ScalarFloat
	}
	for _, v := range values {
		if math.Trunc(v) != v {
			return ScalarFloat
		}
	}
	return ScalarInt
}

// IsIDField reports whether the field name matches one of the configured ID
// patterns. Matching is case-insensitive and whole-name: "userId" does not
// match "id".
func IsIDField(name string, cfg *Config) bool {
	for _, pattern := range cfg.IDPatterns {
		if strings.EqualFold(name, pattern) {
			return true
		}
	}
	return false
}

// ResolveTypeConflict resolves a field's observed type set to a scalar. Null
// is stripped first. A single remaining type maps to its scalar; two or more
// fail under the error strategy and widen to String otherwise (the union
// strategy intentionally falls back to widening for primitive conflicts).
func ResolveTypeConflict(field string, observed TagSet, cfg *Config) (string, error) {
	nonNull := observed.NonNull()
	switch len(nonNull) {
	case 0:
		return ScalarString, nil
	case 1:
		return scalarForTag(nonNull[0], cfg), nil
	}
	if cfg.ConflictResolution == ConflictError {
		return "", newConflictError(field, nonNull)
	}
	return ScalarString, nil
}

// ResolveArrayElementType applies the same widening rule to an array's
// element type set. An empty set widens to String.
func ResolveArrayElementType(elementTypes TagSet, cfg *Config) string {
	nonNull := elementTypes.NonNull()
	if len(nonNull) == 1 {
		return scalarForTag(nonNull[0], cfg)
	}
	return ScalarString
}

func scalarForTag(t Tag, cfg *Config) string {
	switch t {
	case TagString:
		return ScalarString
	case TagBoolean:
		return ScalarBoolean
	case TagNumber:
		return ScalarFloat
	case TagObject, TagArray:
		return fallbackScalar(cfg)
	}
	return ScalarString
}

func fallbackScalar(cfg *Config) string {
	if cfg.NestedTypeFallback == FallbackString {
		return ScalarString
	}
	return "JSON"
}
