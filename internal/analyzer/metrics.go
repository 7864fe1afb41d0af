package analyzer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiboard_batches_total",
		Help: "Analysis batches by provider and outcome.",
	}, []string{"provider", "outcome"})

	linesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiboard_lines_total",
		Help: "Analyzed input lines by provider.",
	}, []string{"provider"})

	fallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiboard_fallbacks_total",
		Help: "Input lines the model left out of its answer.",
	}, []string{"provider"})

	tokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiboard_llm_tokens_total",
		Help: "Model tokens by provider and direction.",
	}, []string{"provider", "direction"})

	batchSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sentiboard_batch_duration_seconds",
		Help:    "Wall time of one outbound analysis call.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"provider"})
)
