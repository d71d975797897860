// Package inference builds a structured, nullability-aware type system from a
// sample of schemaless documents. The analyzer merges documents into per-field
// statistics; the resolver, deriver and builder turn those statistics into
// GraphQL-style type definitions with collision-safe nested type names.
package inference

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// Tag is a primitive type tag observed for a field value.
type Tag string

const (
	TagString  Tag = "string"
	TagNumber  Tag = "number"
	TagBoolean Tag = "boolean"
	TagNull    Tag = "null"
	TagObject  Tag = "object"
	TagArray   Tag = "array"
)

// TagSet is a set of observed primitive tags.
type TagSet map[Tag]struct{}

// Add inserts a tag.
func (s TagSet) Add(t Tag) { s[t] = struct{}{} }

// Has reports membership.
func (s TagSet) Has(t Tag) bool { _, ok := s[t]; return ok }

// NonNull returns the sorted member tags excluding null.
func (s TagSet) NonNull() []Tag {
	out := make([]Tag, 0, len(s))
	for t := range s {
		if t != TagNull {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FieldInfo aggregates statistics for one field path across the sample.
// Created on first observation, mutated by every subsequent observation,
// discarded at the end of the run.
type FieldInfo struct {
	Name              string
	ObservedTypes     TagSet
	Frequency         int
	IsArray           bool
	ArrayElementTypes TagSet
	NestedFields      map[string]*FieldInfo
	NumericSamples    []float64
	// IsNullable is the explicit override set when the field appeared in some
	// but not all polymorphic array-element variants.
	IsNullable bool
	// PolymorphicObjectCount counts array elements that were nested objects.
	PolymorphicObjectCount int

	// mergedFromArray marks NestedFields as populated via array-element
	// merging, which triggers the variant-nullability pass.
	mergedFromArray bool
	// presence tracks which sample documents contained this field.
	// Top-level fields only; used for conflict diagnostics.
	presence *roaring.Bitmap
}

func newFieldInfo(name string) *FieldInfo {
	return &FieldInfo{
		Name:          name,
		ObservedTypes: make(TagSet),
	}
}

// Conflict describes a field observed with more than one non-null type.
type Conflict struct {
	Field     string   `json:"field"`
	Types     []string `json:"types"`
	Documents []uint32 `json:"documents,omitempty"` // sample indices containing the field
}

// Analysis is the merged view of one document sample.
type Analysis struct {
	Fields        map[string]*FieldInfo
	FieldCount    int
	Conflicts     []Conflict
	DocumentCount int
}
