// Package metrics exposes prometheus instrumentation for the sampling layer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/oneiriq/cosmiq-graphql/pkg/classify"
)

var (
	// SampleRetries counts scheduled retries by failure kind.
	SampleRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cosmiq_sample_retries_total",
			Help: "Total number of sample retries scheduled",
		},
		[]string{"kind"},
	)

	// RetryRUConsumed accumulates request charge burned by failed attempts.
	RetryRUConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cosmiq_sample_retry_ru_total",
			Help: "Cumulative request charge consumed by failed sample attempts",
		},
	)

	// SampleDuration tracks end-to-end sample latency.
	SampleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cosmiq_sample_duration_seconds",
			Help:    "End-to-end document sampling latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RetryObserver adapts the counters to the sampler's OnRetry hook.
func RetryObserver() func(err *classify.ClassifiedError, attempt int, delay time.Duration) {
	return func(err *classify.ClassifiedError, attempt int, delay time.Duration) {
		SampleRetries.WithLabelValues(string(err.Kind)).Inc()
		RetryRUConsumed.Add(err.Metadata.RequestCharge)
	}
}
