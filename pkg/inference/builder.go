package inference

// InferredTypes is the builder's output: the root definition plus the
// flattened list of derived nested definitions with parent links intact.
type InferredTypes struct {
	Root   *TypeDefinition   `json:"root"`
	Nested []*TypeDefinition `json:"nested"`
}

// Infer runs the full pipeline — analyze then build — over an already
// captured sample.
func Infer(docs []map[string]any, rootTypeName string, cfg *Config) (*InferredTypes, error) {
	a, err := Analyze(docs)
	if err != nil {
		return nil, err
	}
	return Build(a, rootTypeName, cfg)
}

// Build assembles the root and nested type definitions from an analysis. The
// collision registry is created here and threaded through the deriver
// explicitly; nothing is shared between Build calls, so concurrent inference
// runs must each use their own Analysis and Config.
func Build(a *Analysis, rootTypeName string, cfg *Config) (*InferredTypes, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg := NewNameRegistry()
	rootName := reg.Resolve(rootTypeName)

	nested, promos, err := deriveNestedTypes(a.Fields, rootName, cfg, 0, reg)
	if err != nil {
		return nil, err
	}

	rootFields, err := buildFieldList(a.Fields, a.DocumentCount, cfg, promos)
	if err != nil {
		return nil, err
	}

	return &InferredTypes{
		Root: &TypeDefinition{
			Name:            rootName,
			Fields:          rootFields,
			Depth:           0,
			ParentFrequency: a.DocumentCount,
			IsNested:        false,
		},
		Nested: nested,
	}, nil
}

// buildFieldList resolves every field at one level, in name order. The ID
// override is applied last, after nested and array resolution, so a correctly
// named ID field never comes out as a nested or array type.
func buildFieldList(fields map[string]*FieldInfo, scopeSize int, cfg *Config, promos map[string]string) ([]FieldDefinition, error) {
	defs := make([]FieldDefinition, 0, len(fields))
	for _, name := range sortedKeys(fields) {
		fi := fields[name]
		fd := FieldDefinition{
			Name:     name,
			Required: DetermineNullability(fi, scopeSize, cfg),
		}

		nestedName, promoted := promos[name]
		switch {
		case promoted:
			fd.Type = nestedName
			fd.NestedType = nestedName
			fd.IsArray = fi.IsArray

		case len(fi.ObservedTypes.NonNull()) > 1:
			// Mixed observations, array/scalar included, go through conflict
			// resolution: the error strategy raises, widening yields String.
			scalar, err := ResolveTypeConflict(fi.Name, fi.ObservedTypes, cfg)
			if err != nil {
				return nil, err
			}
			fd.Type = scalar

		case fi.IsArray:
			fd.IsArray = true
			fd.Type = arrayElementScalar(fi, cfg)

		case fi.ObservedTypes.Has(TagObject):
			// Unpromoted or depth-limited nested object.
			fd.Type = fallbackScalar(cfg)

		default:
			scalar, err := fieldScalar(fi, cfg)
			if err != nil {
				return nil, err
			}
			fd.Type = scalar
		}

		if IsIDField(name, cfg) {
			fd.Type = ScalarID
			fd.IsArray = false
			fd.NestedType = ""
		}

		defs = append(defs, fd)
	}
	return defs, nil
}

func fieldScalar(fi *FieldInfo, cfg *Config) (string, error) {
	nonNull := fi.ObservedTypes.NonNull()
	if len(nonNull) == 1 && nonNull[0] == TagNumber {
		return InferNumberType(fi.NumericSamples, cfg), nil
	}
	return ResolveTypeConflict(fi.Name, fi.ObservedTypes, cfg)
}

func arrayElementScalar(fi *FieldInfo, cfg *Config) string {
	nonNull := fi.ArrayElementTypes.NonNull()
	if len(nonNull) == 1 {
		switch nonNull[0] {
		case TagNumber:
			return InferNumberType(fi.NumericSamples, cfg)
		case TagObject:
			// Object elements that were not promoted fall back to the
			// configured scalar.
			return fallbackScalar(cfg)
		}
	}
	return ResolveArrayElementType(fi.ArrayElementTypes, cfg)
}
