package cosmos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oneiriq/cosmiq-graphql/pkg/classify"
)

// fakeContainer fails the first failures fetches, then serves docs.
type fakeContainer struct {
	docs     []Document
	failures []error
	calls    int
}

func (c *fakeContainer) Query(spec QuerySpec) Pager {
	c.calls++
	if len(c.failures) > 0 {
		err := c.failures[0]
		c.failures = c.failures[1:]
		return &failingPager{err: err}
	}
	return &slicePager{docs: c.docs, pageSize: spec.PageSize}
}

type failingPager struct{ err error }

func (p *failingPager) More() bool { return true }

func (p *failingPager) Next(ctx context.Context) (FeedPage, error) { return FeedPage{}, p.err }

type slicePager struct {
	docs     []Document
	pageSize int
	offset   int
}

func (p *slicePager) More() bool { return p.offset < len(p.docs) }

func (p *slicePager) Next(ctx context.Context) (FeedPage, error) {
	end := p.offset + p.pageSize
	if end > len(p.docs) {
		end = len(p.docs)
	}
	page := FeedPage{Documents: p.docs[p.offset:end], RequestCharge: 2.5}
	p.offset = end
	return page, nil
}

func quickRetry() classify.RetryConfig {
	cfg := classify.DefaultRetryConfig()
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	cfg.JitterFactor = 0
	return cfg
}

func docs(n int) []Document {
	out := make([]Document, n)
	for i := range out {
		out[i] = Document{"id": float64(i)}
	}
	return out
}

func TestSample_Success(t *testing.T) {
	c := &fakeContainer{docs: docs(10)}
	result, err := Sample(context.Background(), c, 5, StrategyTop, quickRetry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Documents) != 5 {
		t.Errorf("documents = %d, want 5", len(result.Documents))
	}
	if result.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", result.Status)
	}
	if result.RequestCharge == 0 {
		t.Error("successful pages should accumulate request charge")
	}
}

func TestSample_EmptyContainer(t *testing.T) {
	c := &fakeContainer{}
	result, err := Sample(context.Background(), c, 5, StrategyTop, quickRetry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Documents) != 0 || result.Status != StatusCompleted {
		t.Errorf("empty container must complete with zero documents, got %+v", result)
	}
}

func TestSample_ValidatesInput(t *testing.T) {
	c := &fakeContainer{docs: docs(1)}

	_, err := Sample(context.Background(), c, 0, StrategyTop, quickRetry())
	assertKind(t, err, classify.KindValidation)

	_, err = Sample(context.Background(), c, -3, StrategyTop, quickRetry())
	assertKind(t, err, classify.KindValidation)

	_, err = Sample(context.Background(), c, 5, SampleStrategy("newest"), quickRetry())
	assertKind(t, err, classify.KindValidation)
}

func TestSample_RetriesTransientFailure(t *testing.T) {
	c := &fakeContainer{
		docs: docs(3),
		failures: []error{
			&classify.ResponseError{Status: 429},
			&classify.ResponseError{Status: 503},
		},
	}

	var observed []int
	cfg := quickRetry()
	cfg.OnRetry = func(err *classify.ClassifiedError, attempt int, delay time.Duration) {
		observed = append(observed, attempt)
	}

	result, err := Sample(context.Background(), c, 3, StrategyTop, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Documents) != 3 {
		t.Errorf("documents = %d, want 3", len(result.Documents))
	}
	if len(observed) != 2 || observed[0] != 0 || observed[1] != 1 {
		t.Errorf("onRetry attempts = %v, want [0 1]", observed)
	}
}

func TestSample_NonRetryableFailsImmediately(t *testing.T) {
	c := &fakeContainer{
		docs:     docs(3),
		failures: []error{&classify.ResponseError{Status: 401}},
	}

	_, err := Sample(context.Background(), c, 3, StrategyTop, quickRetry())
	assertKind(t, err, classify.KindUnauthorized)
	if c.calls != 1 {
		t.Errorf("container queried %d times, want 1", c.calls)
	}
}

func TestSample_ExhaustsMaxRetries(t *testing.T) {
	failures := make([]error, 10)
	for i := range failures {
		failures[i] = &classify.ResponseError{Status: 503}
	}
	c := &fakeContainer{docs: docs(3), failures: failures}

	cfg := quickRetry()
	cfg.MaxRetries = 2

	_, err := Sample(context.Background(), c, 3, StrategyTop, cfg)
	assertKind(t, err, classify.KindServiceUnavailable)
	if c.calls != 3 { // initial attempt plus two retries
		t.Errorf("container queried %d times, want 3", c.calls)
	}
}

func TestSample_RUBudgetExhaustion(t *testing.T) {
	failures := make([]error, 10)
	for i := range failures {
		failures[i] = &classify.ResponseError{Status: 429, RequestCharge: 600}
	}
	c := &fakeContainer{docs: docs(3), failures: failures}

	cfg := quickRetry()
	cfg.MaxRetries = 9
	cfg.MaxRetryRUBudget = 1000

	_, err := Sample(context.Background(), c, 3, StrategyTop, cfg)
	assertKind(t, err, classify.KindBudgetExhausted)
	// 600 RU fits the budget once; the second failure pushes it to 1200.
	if c.calls != 2 {
		t.Errorf("container queried %d times, want 2", c.calls)
	}

	// The proximate rate-limit failure stays reachable underneath.
	var ce *classify.ClassifiedError
	if !errors.As(err, &ce) {
		t.Fatal("expected a classified error")
	}
	var cause *classify.ClassifiedError
	if !errors.As(ce.Cause, &cause) || cause.Kind != classify.KindRateLimit {
		t.Errorf("budget failure must wrap the rate-limit cause, got %v", ce.Cause)
	}
}

func TestSample_ShouldRetryOverride(t *testing.T) {
	c := &fakeContainer{
		docs:     docs(3),
		failures: []error{&classify.ResponseError{Status: 429}},
	}

	cfg := quickRetry()
	cfg.ShouldRetry = func(err *classify.ClassifiedError, attempt int) bool { return false }

	_, err := Sample(context.Background(), c, 3, StrategyTop, cfg)
	assertKind(t, err, classify.KindRateLimit)
	if c.calls != 1 {
		t.Errorf("container queried %d times, want 1", c.calls)
	}
}

func TestSample_CancellationAbortsWait(t *testing.T) {
	failures := make([]error, 10)
	for i := range failures {
		failures[i] = &classify.ResponseError{Status: 503}
	}
	c := &fakeContainer{docs: docs(3), failures: failures}

	cfg := quickRetry()
	cfg.BaseDelay = 5 * time.Second
	cfg.MaxDelay = 10 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := Sample(ctx, c, 3, StrategyTop, cfg)
	assertKind(t, err, classify.KindAborted)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancellation took %v, the wait was not aborted", elapsed)
	}
}

func assertKind(t *testing.T, err error, kind classify.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	var ce *classify.ClassifiedError
	if !errors.As(err, &ce) {
		t.Fatalf("expected classified error, got %T: %v", err, err)
	}
	if ce.Kind != kind {
		t.Fatalf("kind = %s, want %s (%v)", ce.Kind, kind, err)
	}
}
