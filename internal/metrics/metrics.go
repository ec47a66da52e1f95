package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumebot",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumebot",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Chat turns by outcome: replied, tool_applied, tool_failed, fallback
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumebot",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total chat turns by outcome",
		},
		[]string{"outcome"},
	)

	ToolInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumebot",
			Subsystem: "chat",
			Name:      "tool_invocations_total",
			Help:      "Document tool invocations by tool and status",
		},
		[]string{"tool", "status"},
	)

	MalformedRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "resumebot",
			Subsystem: "chat",
			Name:      "malformed_call_retries_total",
			Help:      "Generation retries caused by malformed structured calls",
		},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumebot",
			Subsystem: "llm",
			Name:      "generation_duration_seconds",
			Help:      "Model generation latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "status"},
	)

	BootstrapFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumebot",
			Subsystem: "bootstrap",
			Name:      "step_failures_total",
			Help:      "Document bootstrap step failures",
		},
		[]string{"step"},
	)

	ConversationsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "resumebot",
			Subsystem: "bootstrap",
			Name:      "conversations_created_total",
			Help:      "Conversations created by the bootstrap procedure",
		},
	)

	DocumentCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumebot",
			Subsystem: "cache",
			Name:      "document_lookups_total",
			Help:      "Document cache lookups by result",
		},
		[]string{"result"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

func RecordTurn(outcome string) {
	TurnsTotal.WithLabelValues(outcome).Inc()
}

func RecordToolInvocation(tool string, failed bool) {
	status := "success"
	if failed {
		status = "error"
	}
	ToolInvocationsTotal.WithLabelValues(tool, status).Inc()
}

func RecordMalformedRetry() {
	MalformedRetriesTotal.Inc()
}

func RecordGeneration(provider string, err error, durationSec float64) {
	status := "success"
	if err != nil {
		status = "error"
	}
	GenerationDuration.WithLabelValues(provider, status).Observe(durationSec)
}

func RecordBootstrapFailure(step string) {
	BootstrapFailuresTotal.WithLabelValues(step).Inc()
}

func RecordConversationCreated() {
	ConversationsCreatedTotal.Inc()
}

// RecordCacheLookup records a document cache hit or miss
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	DocumentCacheTotal.WithLabelValues(result).Inc()
}
