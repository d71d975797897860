package schemacache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"lukechampine.com/blake3"

	"github.com/oneiriq/cosmiq-graphql/pkg/inference"
)

// Key identifies one cached inference result.
type Key struct {
	Database   string
	Container  string
	SampleSize int
	ConfigHash string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%d/%s", k.Database, k.Container, k.SampleSize, k.ConfigHash)
}

// HashConfig derives a short stable digest of the config knobs that affect
// inference output. A custom naming function cannot be hashed; its presence
// is folded in so custom-named runs never share entries with built-in ones.
func HashConfig(cfg *inference.Config) string {
	hashable := struct {
		RequiredThreshold  float64
		ConflictResolution inference.ConflictResolution
		IDPatterns         []string
		MaxNestingDepth    int
		NestedTypeFallback inference.NestedTypeFallback
		NumberInference    inference.NumberInference
		NamingStrategy     inference.NamingStrategy
		CustomNamer        bool
		Tuning             inference.DeriveTuning
	}{
		RequiredThreshold:  cfg.RequiredThreshold,
		ConflictResolution: cfg.ConflictResolution,
		IDPatterns:         cfg.IDPatterns,
		MaxNestingDepth:    cfg.MaxNestingDepth,
		NestedTypeFallback: cfg.NestedTypeFallback,
		NumberInference:    cfg.NumberInference,
		NamingStrategy:     cfg.NamingStrategy,
		CustomNamer:        cfg.CustomNamer != nil,
		Tuning:             cfg.Tuning,
	}

	raw, err := json.Marshal(hashable)
	if err != nil {
		return "unhashable"
	}
	sum := blake3.Sum256(raw)
	return hex.EncodeToString(sum[:8])
}
