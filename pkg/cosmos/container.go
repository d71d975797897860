// Package cosmos defines the container capability the sampler consumes and
// the resilient sampling loop that pulls a bounded set of documents from it.
package cosmos

import "context"

// Document is one schemaless record as returned by the store. Owned by the
// sample after capture; never mutated downstream.
type Document = map[string]any

// SampleStrategy selects which slice of a container a sample represents.
type SampleStrategy string

const (
	// StrategyTop takes the first documents the container returns.
	StrategyTop SampleStrategy = "top"
	// StrategyRecent prefers the most recently written documents.
	StrategyRecent SampleStrategy = "recent"
	// StrategyRandom asks the container for an unbiased spread.
	StrategyRandom SampleStrategy = "random"
)

// QuerySpec tells a container how to page documents out.
type QuerySpec struct {
	Strategy SampleStrategy
	PageSize int
}

// FeedPage is one page of results plus the charge the store billed for it.
type FeedPage struct {
	Documents     []Document
	RequestCharge float64
}

// Pager iterates a container's result feed one page at a time.
type Pager interface {
	// More reports whether another page may be available.
	More() bool
	// Next fetches the next page. Failures are raw transport errors;
	// the sampler classifies them.
	Next(ctx context.Context) (FeedPage, error)
}

// Container is the abstract document store capability. Implementations wrap
// a real store client or, for tooling, a local file.
type Container interface {
	// Query starts a paged read honoring the spec's strategy and page size.
	Query(spec QuerySpec) Pager
}
