package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK            = "ok"
	outcomeProviderError = "provider_error"
	outcomeEmpty         = "empty"
	outcomeMalformed     = "malformed"
	outcomeInvalid       = "schema_violation"
)

var (
	modelRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatters_model_requests_total",
		Help: "Model requests by operation and outcome",
	}, []string{"operation", "outcome"})

	modelLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chatters_model_request_duration_seconds",
		Help:    "Model request latency by operation",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
	}, []string{"operation"})

	historySaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatters_history_items_saved_total",
		Help: "History items saved by type",
	}, []string{"type"})
)
