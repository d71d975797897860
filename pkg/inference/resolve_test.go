package inference

import (
	"errors"
	"strings"
	"testing"

	"github.com/oneiriq/cosmiq-graphql/pkg/classify"
)

func tags(ts ...Tag) TagSet {
	s := make(TagSet)
	for _, t := range ts {
		s.Add(t)
	}
	return s
}

func TestDetermineNullability(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		fi       *FieldInfo
		scope    int
		required bool
	}{
		{"always present", &FieldInfo{Frequency: 100, ObservedTypes: tags(TagString)}, 100, true},
		{"at threshold", &FieldInfo{Frequency: 95, ObservedTypes: tags(TagString)}, 100, true},
		{"below threshold", &FieldInfo{Frequency: 94, ObservedTypes: tags(TagString)}, 100, false},
		{"observed null", &FieldInfo{Frequency: 100, ObservedTypes: tags(TagString, TagNull)}, 100, false},
		{"variant nullable override", &FieldInfo{Frequency: 100, ObservedTypes: tags(TagString), IsNullable: true}, 100, false},
		{"zero scope", &FieldInfo{Frequency: 1, ObservedTypes: tags(TagString)}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineNullability(tt.fi, tt.scope, cfg); got != tt.required {
				t.Errorf("required = %v, want %v", got, tt.required)
			}
		})
	}
}

func TestInferNumberType(t *testing.T) {
	strict := DefaultConfig()
	float := DefaultConfig()
	float.NumberInference = NumberFloat

	tests := []struct {
		name   string
		values []float64
		cfg    *Config
		want   string
	}{
		{"whole numbers strict", []float64{1, 2, 300}, strict, ScalarInt},
		{"negative whole strict", []float64{-5, 0}, strict, ScalarInt},
		{"fractional strict", []float64{1, 2.5}, strict, ScalarFloat},
		{"empty strict", nil, strict, ScalarInt},
		{"whole numbers float mode", []float64{1, 2}, float, ScalarFloat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferNumberType(tt.values, tt.cfg); got != tt.want {
				t.Errorf("InferNumberType(%v) = %s, want %s", tt.values, got, tt.want)
			}
		})
	}
}

func TestIsIDField(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		want bool
	}{
		{"id", true},
		{"ID", true},
		{"_id", true},
		{"pk", true},
		{"uuid", true},
		{"GUID", true},
		{"userId", false}, // whole-name match only
		{"identity", false},
		{"keys", false},
	}
	for _, tt := range tests {
		if got := IsIDField(tt.name, cfg); got != tt.want {
			t.Errorf("IsIDField(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestResolveTypeConflict(t *testing.T) {
	widen := DefaultConfig()

	t.Run("no observed types", func(t *testing.T) {
		got, err := ResolveTypeConflict("f", tags(), widen)
		if err != nil || got != ScalarString {
			t.Errorf("= %s, %v; want String, nil", got, err)
		}
	})

	t.Run("null only", func(t *testing.T) {
		got, err := ResolveTypeConflict("f", tags(TagNull), widen)
		if err != nil || got != ScalarString {
			t.Errorf("= %s, %v; want String, nil", got, err)
		}
	})

	t.Run("single type", func(t *testing.T) {
		got, err := ResolveTypeConflict("f", tags(TagBoolean), widen)
		if err != nil || got != ScalarBoolean {
			t.Errorf("= %s, %v; want Boolean, nil", got, err)
		}
	})

	t.Run("null plus one is not a conflict", func(t *testing.T) {
		got, err := ResolveTypeConflict("f", tags(TagNull, TagNumber), widen)
		if err != nil || got != ScalarFloat {
			t.Errorf("= %s, %v; want Float, nil", got, err)
		}
	})

	t.Run("widen strategy", func(t *testing.T) {
		got, err := ResolveTypeConflict("f", tags(TagString, TagNumber), widen)
		if err != nil || got != ScalarString {
			t.Errorf("= %s, %v; want String, nil", got, err)
		}
	})

	t.Run("error strategy", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ConflictResolution = ConflictError
		_, err := ResolveTypeConflict("price", tags(TagString, TagNumber), cfg)
		if err == nil {
			t.Fatal("expected conflict error")
		}
		var ce *classify.ClassifiedError
		if !errors.As(err, &ce) || ce.Kind != classify.KindTypeConflict {
			t.Fatalf("expected type conflict, got %v", err)
		}
		msg := ce.Error()
		for _, want := range []string{"price", "number", "string"} {
			if !strings.Contains(msg, want) {
				t.Errorf("error %q missing %q", msg, want)
			}
		}
	})
}

func TestResolveArrayElementType(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		elements TagSet
		want     string
	}{
		{"strings", tags(TagString), ScalarString},
		{"numbers widen to Float", tags(TagNumber), ScalarFloat},
		{"mixed widens to String", tags(TagString, TagNumber), ScalarString},
		{"empty widens to String", tags(), ScalarString},
		{"null-only widens to String", tags(TagNull), ScalarString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveArrayElementType(tt.elements, cfg); got != tt.want {
				t.Errorf("= %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFallbackScalar(t *testing.T) {
	cfg := DefaultConfig()
	if got := fallbackScalar(cfg); got != "JSON" {
		t.Errorf("default fallback = %s, want JSON", got)
	}
	cfg.NestedTypeFallback = FallbackString
	if got := fallbackScalar(cfg); got != ScalarString {
		t.Errorf("string fallback = %s, want String", got)
	}
}
