package inference

// FieldDefinition is one resolved field of a type definition.
type FieldDefinition struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	IsArray  bool   `json:"is_array"`
	// NestedType names the derived type this field references, when any.
	NestedType string `json:"nested_type,omitempty"`
}

// TypeDefinition is one emitted type. Root definitions have IsNested false;
// every derived nested object has IsNested true. Names are unique within one
// inference run.
type TypeDefinition struct {
	Name            string            `json:"name"`
	Fields          []FieldDefinition `json:"fields"`
	ParentType      string            `json:"parent_type,omitempty"`
	Depth           int               `json:"depth"`
	ParentFrequency int               `json:"parent_frequency"`
	IsNested        bool              `json:"is_nested"`
}

// deriveNestedTypes walks one level of fields, decides which nested objects
// deserve dedicated types, and recurses. All names at a level are resolved
// against the registry before any definition is assembled, so every reference
// to a given structure lands on the same final name. Returns the emitted
// definitions in deterministic order plus the field-name to type-name map for
// this level.
func deriveNestedTypes(fields map[string]*FieldInfo, parentTypeName string, cfg *Config, depth int, reg *NameRegistry) ([]*TypeDefinition, map[string]string, error) {
	type pendingType struct {
		fi   *FieldInfo
		name string
	}

	promos := make(map[string]string)
	var pending []pendingType
	for _, name := range sortedKeys(fields) {
		fi := fields[name]
		if len(fi.NestedFields) == 0 {
			continue
		}
		childDepth := depth + 1
		if childDepth > cfg.MaxNestingDepth {
			// Beyond the limit the field falls back to the configured scalar.
			continue
		}
		if !promotable(fi, childDepth, cfg) {
			continue
		}

		fieldName := fi.Name
		if fi.mergedFromArray {
			fieldName = singularize(fieldName)
		}
		raw := cfg.namer.typeName(parentTypeName, fieldName, depth, fi.mergedFromArray)
		resolved := reg.Resolve(raw)
		promos[name] = resolved
		pending = append(pending, pendingType{fi: fi, name: resolved})
	}

	var defs []*TypeDefinition
	for _, p := range pending {
		children, childPromos, err := deriveNestedTypes(p.fi.NestedFields, p.name, cfg, depth+1, reg)
		if err != nil {
			return nil, nil, err
		}
		fieldDefs, err := buildFieldList(p.fi.NestedFields, p.fi.Frequency, cfg, childPromos)
		if err != nil {
			return nil, nil, err
		}
		defs = append(defs, &TypeDefinition{
			Name:            p.name,
			Fields:          fieldDefs,
			ParentType:      parentTypeName,
			Depth:           depth + 1,
			ParentFrequency: p.fi.Frequency,
			IsNested:        true,
		})
		defs = append(defs, children...)
	}
	return defs, promos, nil
}

// promotable applies the stability heuristic at the candidate type's depth.
// Array-derived nested types at shallow depth are promoted unconditionally;
// everything else must keep its sparse-field ratio under the depth-dependent
// limit, and deep candidates additionally need a dominant sub-field.
func promotable(fi *FieldInfo, depth int, cfg *Config) bool {
	if len(fi.NestedFields) == 0 {
		return false
	}
	if fi.mergedFromArray && depth <= 1 {
		return true
	}
	if fi.Frequency == 0 {
		return false
	}

	sparse := 0
	maxSubFreq := 0
	for _, sub := range fi.NestedFields {
		if float64(sub.Frequency)/float64(fi.Frequency) < cfg.Tuning.SparseFrequencyCutoff {
			sparse++
		}
		if sub.Frequency > maxSubFreq {
			maxSubFreq = sub.Frequency
		}
	}

	sparseRatio := float64(sparse) / float64(len(fi.NestedFields))
	limit := cfg.Tuning.ShallowSparseRatioLimit
	if depth > 1 {
		limit = cfg.Tuning.DeepSparseRatioLimit
	}
	if sparseRatio > limit {
		return false
	}
	if depth >= 2 && float64(maxSubFreq)/float64(fi.Frequency) < cfg.Tuning.MinDominantFieldRatio {
		return false
	}
	return true
}
