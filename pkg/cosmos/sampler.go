package cosmos

import (
	"context"
	"log/slog"
	"time"

	"github.com/oneiriq/cosmiq-graphql/pkg/classify"
)

const samplerComponent = "sampler"

// SampleStatus reports how a sample ended.
type SampleStatus string

// StatusCompleted is the only terminal success status; failures surface as
// classified errors instead.
const StatusCompleted SampleStatus = "completed"

// SampleResult is a captured document sample.
type SampleResult struct {
	Documents []Document
	Status    SampleStatus
	// RequestCharge is the cumulative charge of successful pages.
	RequestCharge float64
}

// Sample pulls up to sampleSize documents from the container, retrying
// transient failures per cfg. Attempts are strictly sequential: each retry
// decision depends on the previous attempt's classified failure and the
// accumulated RU charge of failed attempts. The retry wait is cancellable;
// cancellation surfaces as an Aborted failure.
func Sample(ctx context.Context, c Container, sampleSize int, strategy SampleStrategy, cfg classify.RetryConfig) (*SampleResult, error) {
	if sampleSize <= 0 {
		return nil, classify.NewValidation(samplerComponent, "sample size must be a positive integer, got %d", sampleSize)
	}
	switch strategy {
	case StrategyTop, StrategyRecent, StrategyRandom:
	default:
		return nil, classify.NewValidation(samplerComponent, "unknown sample strategy %q", strategy)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	attempt := 0
	failedCharge := 0.0
	for {
		result, err := fetchAll(ctx, c, sampleSize, strategy)
		if err == nil {
			return result, nil
		}

		ce := classify.Classify(err, samplerComponent)
		failedCharge += ce.Metadata.RequestCharge

		retryable := ce.Retryable
		if cfg.ShouldRetry != nil {
			retryable = cfg.ShouldRetry(ce, attempt)
		}
		if !retryable || attempt >= cfg.MaxRetries {
			return nil, ce
		}
		if cfg.MaxRetryRUBudget > 0 && failedCharge > cfg.MaxRetryRUBudget {
			return nil, classify.NewBudgetExhausted(samplerComponent, failedCharge, cfg.MaxRetryRUBudget, ce)
		}

		delay := classify.ComputeDelay(cfg, attempt, ce.Metadata.RetryAfter)
		if cfg.OnRetry != nil {
			cfg.OnRetry(ce, attempt, delay)
		}
		slog.Warn("sample attempt failed, retrying",
			"kind", ce.Kind, "attempt", attempt, "delay", delay, "failed_ru", failedCharge)

		select {
		case <-ctx.Done():
			return nil, classify.NewAborted(samplerComponent, ctx.Err())
		case <-time.After(delay):
		}
		attempt++
	}
}

// fetchAll drains the pager until the sample is full or the feed ends.
func fetchAll(ctx context.Context, c Container, sampleSize int, strategy SampleStrategy) (*SampleResult, error) {
	pageSize := sampleSize
	if pageSize > 100 {
		pageSize = 100
	}
	pager := c.Query(QuerySpec{Strategy: strategy, PageSize: pageSize})

	result := &SampleResult{Status: StatusCompleted}
	for pager.More() && len(result.Documents) < sampleSize {
		page, err := pager.Next(ctx)
		if err != nil {
			return nil, err
		}
		result.RequestCharge += page.RequestCharge
		for _, doc := range page.Documents {
			if len(result.Documents) >= sampleSize {
				break
			}
			result.Documents = append(result.Documents, doc)
		}
	}
	return result, nil
}
