package inference

import (
	"encoding/json"
	"reflect"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/oneiriq/cosmiq-graphql/pkg/classify"
)

const analyzerComponent = "analyzer"

// conflictDocLimit caps how many sample indices a conflict report carries.
const conflictDocLimit = 20

// Analyze merges the sampled documents into per-field statistics. The walk is
// single-threaded and owns its working maps exclusively; results must not be
// shared across concurrent inference runs.
func Analyze(docs []map[string]any) (*Analysis, error) {
	if len(docs) == 0 {
		return nil, classify.NewValidation(analyzerComponent, "cannot infer a schema from an empty sample")
	}

	fields := make(map[string]*FieldInfo)
	for i, doc := range docs {
		// Visited set is scoped to one document walk so self-referential
		// structures terminate; the first revisit of a node is skipped.
		visited := make(map[uintptr]struct{})
		mergeObject(fields, doc, uint32(i), true, visited)
	}

	markVariantNullability(fields)

	a := &Analysis{
		Fields:        fields,
		FieldCount:    len(fields),
		DocumentCount: len(docs),
	}
	collectConflicts(fields, "", &a.Conflicts)
	return a, nil
}

func mergeObject(fields map[string]*FieldInfo, obj map[string]any, doc uint32, topLevel bool, visited map[uintptr]struct{}) {
	for key, val := range obj {
		fi, ok := fields[key]
		if !ok {
			fi = newFieldInfo(key)
			fields[key] = fi
		}
		fi.Frequency++
		if topLevel {
			if fi.presence == nil {
				fi.presence = roaring.New()
			}
			fi.presence.Add(doc)
		}
		mergeValue(fi, val, doc, visited)
	}
}

func mergeValue(fi *FieldInfo, val any, doc uint32, visited map[uintptr]struct{}) {
	switch v := val.(type) {
	case nil:
		fi.ObservedTypes.Add(TagNull)

	case bool:
		fi.ObservedTypes.Add(TagBoolean)

	case string:
		fi.ObservedTypes.Add(TagString)

	case float64:
		fi.ObservedTypes.Add(TagNumber)
		fi.NumericSamples = append(fi.NumericSamples, v)

	case int:
		fi.ObservedTypes.Add(TagNumber)
		fi.NumericSamples = append(fi.NumericSamples, float64(v))

	case int64:
		fi.ObservedTypes.Add(TagNumber)
		fi.NumericSamples = append(fi.NumericSamples, float64(v))

	case json.Number:
		fi.ObservedTypes.Add(TagNumber)
		if f, err := v.Float64(); err == nil {
			fi.NumericSamples = append(fi.NumericSamples, f)
		}

	case map[string]any:
		fi.ObservedTypes.Add(TagObject)
		if enter(v, visited) {
			if fi.NestedFields == nil {
				fi.NestedFields = make(map[string]*FieldInfo)
			}
			mergeObject(fi.NestedFields, v, doc, false, visited)
		}

	case []any:
		fi.ObservedTypes.Add(TagArray)
		fi.IsArray = true
		if fi.ArrayElementTypes == nil {
			fi.ArrayElementTypes = make(TagSet)
		}
		if !enter(v, visited) {
			return
		}
		for _, elem := range v {
			fi.ArrayElementTypes.Add(tagOf(elem))
			switch ev := elem.(type) {
			case float64:
				fi.NumericSamples = append(fi.NumericSamples, ev)
			case int:
				fi.NumericSamples = append(fi.NumericSamples, float64(ev))
			case int64:
				fi.NumericSamples = append(fi.NumericSamples, float64(ev))
			case json.Number:
				if f, err := ev.Float64(); err == nil {
					fi.NumericSamples = append(fi.NumericSamples, f)
				}
			case map[string]any:
				// Object elements merge into one unified nested schema across
				// all polymorphic variants rather than per-variant schemas.
				fi.PolymorphicObjectCount++
				fi.mergedFromArray = true
				if enter(ev, visited) {
					if fi.NestedFields == nil {
						fi.NestedFields = make(map[string]*FieldInfo)
					}
					mergeObject(fi.NestedFields, ev, doc, false, visited)
				}
			}
		}
	}
}

// enter registers a container node in the visited set, reporting false when
// the node was already walked.
func enter(node any, visited map[uintptr]struct{}) bool {
	id := reflect.ValueOf(node).Pointer()
	if _, seen := visited[id]; seen {
		return false
	}
	visited[id] = struct{}{}
	return true
}

func tagOf(v any) Tag {
	switch v.(type) {
	case nil:
		return TagNull
	case bool:
		return TagBoolean
	case string:
		return TagString
	case float64, int, int64, json.Number:
		return TagNumber
	case map[string]any:
		return TagObject
	case []any:
		return TagArray
	}
	return TagString
}

// markVariantNullability flags nested sub-fields that appeared in some but
// not all polymorphic array-element variants: they cannot be required in the
// unified nested type.
func markVariantNullability(fields map[string]*FieldInfo) {
	for _, fi := range fields {
		if fi.mergedFromArray {
			for _, sub := range fi.NestedFields {
				if sub.Frequency < fi.Frequency {
					sub.IsNullable = true
				}
			}
		}
		if fi.NestedFields != nil {
			markVariantNullability(fi.NestedFields)
		}
	}
}

func collectConflicts(fields map[string]*FieldInfo, prefix string, out *[]Conflict) {
	names := sortedKeys(fields)
	for _, name := range names {
		fi := fields[name]
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		if nonNull := fi.ObservedTypes.NonNull(); len(nonNull) > 1 {
			c := Conflict{Field: path, Types: tagsToStrings(nonNull)}
			if fi.presence != nil {
				it := fi.presence.Iterator()
				for it.HasNext() && len(c.Documents) < conflictDocLimit {
					c.Documents = append(c.Documents, it.Next())
				}
			}
			*out = append(*out, c)
		}
		if fi.NestedFields != nil {
			collectConflicts(fi.NestedFields, path, out)
		}
	}
}

func tagsToStrings(tags []Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

func sortedKeys(fields map[string]*FieldInfo) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
