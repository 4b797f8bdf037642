package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	turnLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_turn_latency_ms",
		Help:    "Latency of a full conversation turn in milliseconds",
		Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 15000, 30000},
	}, []string{"outcome"})

	remoteAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_remote_attempts_total",
		Help: "Attempts against remote collaborators by call site and outcome",
	}, []string{"call", "outcome"})

	toolInvocations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_tool_invocations_total",
		Help: "Tool invocations requested by the generation service",
	}, []string{"status"})

	queryOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_query_outcomes_total",
		Help: "Query result envelope outcomes (rows/empty/error)",
	}, []string{"outcome"})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(turnLatency, remoteAttempts, toolInvocations, queryOutcomes)
	})
}

// ObserveTurn records latency of a complete turn tagged with its
// terminal outcome (direct, synthesized, placeholder, fallback).
func ObserveTurn(outcome string, start time.Time) {
	ensureRegistered()
	turnLatency.WithLabelValues(outcome).Observe(float64(time.Since(start).Milliseconds()))
}

// ObserveAttempt counts one attempt of a retried remote call.
func ObserveAttempt(call, outcome string) {
	ensureRegistered()
	remoteAttempts.WithLabelValues(call, outcome).Inc()
}

// IncInvocation counts one tool invocation by status (ok/error/unsupported).
func IncInvocation(status string) {
	ensureRegistered()
	toolInvocations.WithLabelValues(status).Inc()
}

// IncQueryOutcome counts one query envelope outcome.
func IncQueryOutcome(outcome string) {
	ensureRegistered()
	queryOutcomes.WithLabelValues(outcome).Inc()
}
