package inference

import "fmt"

// NameRegistry disambiguates type names within one inference run. It is
// constructed fresh per Build call and threaded through the deriver
// explicitly; it is never shared across runs and is not safe for concurrent
// use.
type NameRegistry struct {
	used map[string]int
}

// NewNameRegistry returns an empty registry.
func NewNameRegistry() *NameRegistry {
	return &NameRegistry{used: make(map[string]int)}
}

// Resolve returns base unchanged on first use. Later uses of the same base
// resolve to base_<n> with n incrementing per collision; resolved names are
// themselves registered so they can never be handed out twice.
func (r *NameRegistry) Resolve(base string) string {
	n, taken := r.used[base]
	if !taken {
		r.used[base] = 1
		return base
	}
	for {
		n++
		r.used[base] = n
		candidate := fmt.Sprintf("%s_%d", base, n)
		if _, exists := r.used[candidate]; !exists {
			r.used[candidate] = 1
			return candidate
		}
	}
}
