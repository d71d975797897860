package inference

import "github.com/oneiriq/cosmiq-graphql/pkg/classify"

const configComponent = "inference-config"

// ConflictResolution selects how a multi-type field is resolved.
type ConflictResolution string

const (
	// ConflictWiden resolves conflicts to a scalar that can represent all
	// observed variants (String).
	ConflictWiden ConflictResolution = "widen"
	// ConflictUnion is accepted for compatibility and currently behaves like
	// ConflictWiden for primitive conflicts.
	ConflictUnion ConflictResolution = "union"
	// ConflictError fails the run on the first conflicting field.
	ConflictError ConflictResolution = "error"
)

// NestedTypeFallback is the scalar used when a nested object is not promoted
// to a dedicated type.
type NestedTypeFallback string

const (
	FallbackJSON   NestedTypeFallback = "JSON"
	FallbackString NestedTypeFallback = "String"
)

// NumberInference selects Int/Float classification behavior.
type NumberInference string

const (
	// NumberStrict infers Int when every sampled value is a whole number.
	NumberStrict NumberInference = "strict"
	// NumberFloat always infers Float.
	NumberFloat NumberInference = "float"
)

// NamingStrategy selects how derived nested types are named.
type NamingStrategy string

const (
	NamingHierarchical NamingStrategy = "hierarchical"
	NamingFlat         NamingStrategy = "flat"
	NamingShort        NamingStrategy = "short"
	NamingCustom       NamingStrategy = "custom"
)

// NamingFunc is the custom naming capability: it receives the parent type
// name, the (already singularized) field name and the nesting depth, and its
// result is used verbatim before collision resolution.
type NamingFunc func(parentType, fieldName string, depth int) string

// DeriveTuning holds the stability-heuristic thresholds. The defaults are the
// observed production values; they are named here so they can be adjusted
// deliberately rather than hard-coded.
type DeriveTuning struct {
	// SparseFrequencyCutoff is the sub-field frequency ratio below which a
	// sub-field counts as sparse.
	SparseFrequencyCutoff float64
	// ShallowSparseRatioLimit is the tolerated sparse-field ratio at depth <= 1.
	ShallowSparseRatioLimit float64
	// DeepSparseRatioLimit is the tolerated sparse-field ratio at depth > 1.
	DeepSparseRatioLimit float64
	// MinDominantFieldRatio is the minimum frequency ratio the most frequent
	// sub-field must reach at depth >= 2.
	MinDominantFieldRatio float64
}

// DefaultDeriveTuning returns the observed production thresholds.
func DefaultDeriveTuning() DeriveTuning {
	return DeriveTuning{
		SparseFrequencyCutoff:   0.5,
		ShallowSparseRatioLimit: 1.0,
		DeepSparseRatioLimit:    0.3,
		MinDominantFieldRatio:   0.4,
	}
}

// Config controls type construction.
type Config struct {
	SampleSize         int
	RequiredThreshold  float64
	ConflictResolution ConflictResolution
	IDPatterns         []string
	MaxNestingDepth    int
	NestedTypeFallback NestedTypeFallback
	NumberInference    NumberInference
	NamingStrategy     NamingStrategy
	CustomNamer        NamingFunc
	Tuning             DeriveTuning

	// namer is selected once by Validate; default strategies are just
	// built-in implementations of the same capability.
	namer typeNamer
}

// DefaultIDPatterns are matched against whole field names, case-insensitively.
func DefaultIDPatterns() []string {
	return []string{"id", "_id", "pk", "key", "uuid", "guid"}
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		SampleSize:         100,
		RequiredThreshold:  0.95,
		ConflictResolution: ConflictWiden,
		IDPatterns:         DefaultIDPatterns(),
		MaxNestingDepth:    10,
		NestedTypeFallback: FallbackJSON,
		NumberInference:    NumberStrict,
		NamingStrategy:     NamingHierarchical,
		Tuning:             DefaultDeriveTuning(),
	}
}

// Validate checks the config and binds the naming strategy. It must be called
// (directly or via Build) before the config is used.
func (c *Config) Validate() error {
	if c.RequiredThreshold <= 0 || c.RequiredThreshold > 1 {
		return classify.NewConfiguration(configComponent, "required threshold must be in (0,1], got %v", c.RequiredThreshold)
	}
	switch c.ConflictResolution {
	case ConflictWiden, ConflictUnion, ConflictError:
	default:
		return classify.NewConfiguration(configComponent, "unknown conflict resolution %q", c.ConflictResolution)
	}
	if c.MaxNestingDepth < 1 {
		return classify.NewConfiguration(configComponent, "max nesting depth must be at least 1, got %d", c.MaxNestingDepth)
	}
	switch c.NestedTypeFallback {
	case FallbackJSON, FallbackString:
	default:
		return classify.NewConfiguration(configComponent, "unknown nested type fallback %q", c.NestedTypeFallback)
	}
	switch c.NumberInference {
	case NumberStrict, NumberFloat:
	default:
		return classify.NewConfiguration(configComponent, "unknown number inference mode %q", c.NumberInference)
	}

	switch c.NamingStrategy {
	case NamingHierarchical:
		c.namer = hierarchicalNamer{}
	case NamingFlat:
		c.namer = flatNamer{}
	case NamingShort:
		c.namer = shortNamer{}
	case NamingCustom:
		if c.CustomNamer == nil {
			return classify.NewConfiguration(configComponent, "custom naming strategy requires a naming function")
		}
		c.namer = customNamer{fn: c.CustomNamer}
	default:
		return classify.NewConfiguration(configComponent, "unknown naming strategy %q", c.NamingStrategy)
	}

	t := &c.Tuning
	if t.SparseFrequencyCutoff == 0 && t.ShallowSparseRatioLimit == 0 && t.DeepSparseRatioLimit == 0 && t.MinDominantFieldRatio == 0 {
		*t = DefaultDeriveTuning()
	}
	return nil
}
