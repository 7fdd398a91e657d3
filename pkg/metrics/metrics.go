package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_requests_total",
			Help: "Total number of natural-language requests processed",
		},
		[]string{"domain", "intent", "outcome"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_request_duration_seconds",
			Help:    "Duration of request processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"domain"},
	)

	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_operations_total",
			Help: "Total number of executed operations by source and outcome",
		},
		[]string{"domain", "operation", "source", "outcome"},
	)

	RemoteFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_remote_fallbacks_total",
			Help: "Reads served from local collections after a remote failure",
		},
		[]string{"domain", "operation"},
	)
)

func Outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
