package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CensusMetrics records reconciliation telemetry. The interface keeps
// services testable with NoOpMetrics.
type CensusMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, guildID string)
	RecordOperationSuccess(ctx context.Context, operation, guildID string)
	RecordOperationFailure(ctx context.Context, operation, guildID string)
	RecordOperationDuration(ctx context.Context, operation, guildID string, d time.Duration)
	RecordRunOutcome(ctx context.Context, guildID, outcome string)
	RecordAdapterUsed(ctx context.Context, adapter string)
	RecordCountFetchAttempts(ctx context.Context, guildID string, attempts int)
}

type prometheusMetrics struct {
	operationAttempts  *prometheus.CounterVec
	operationSuccesses *prometheus.CounterVec
	operationFailures  *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	runOutcomes        *prometheus.CounterVec
	adaptersUsed       *prometheus.CounterVec
	countFetchAttempts *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the census collectors on the given
// registry and returns the recording facade.
func NewPrometheusMetrics(reg *prometheus.Registry) CensusMetrics {
	m := &prometheusMetrics{
		operationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "census_operation_attempts_total",
			Help: "Service operations started.",
		}, []string{"operation"}),
		operationSuccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "census_operation_successes_total",
			Help: "Service operations completed without error.",
		}, []string{"operation"}),
		operationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "census_operation_failures_total",
			Help: "Service operations that returned an error.",
		}, []string{"operation"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "census_operation_duration_seconds",
			Help:    "Service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		runOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "census_run_outcomes_total",
			Help: "Reconciliation runs by terminal state.",
		}, []string{"outcome"}),
		adaptersUsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "census_rename_adapter_used_total",
			Help: "Successful renames by adapter.",
		}, []string{"adapter"}),
		countFetchAttempts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "census_member_count_fetch_attempts",
			Help:    "Attempts consumed per member count fetch.",
			Buckets: []float64{1, 2, 3},
		}, []string{}),
	}
	reg.MustRegister(
		m.operationAttempts,
		m.operationSuccesses,
		m.operationFailures,
		m.operationDuration,
		m.runOutcomes,
		m.adaptersUsed,
		m.countFetchAttempts,
	)
	return m
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, _ string) {
	m.operationAttempts.WithLabelValues(operation).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, _ string) {
	m.operationSuccesses.WithLabelValues(operation).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, _ string) {
	m.operationFailures.WithLabelValues(operation).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, _ string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *prometheusMetrics) RecordRunOutcome(_ context.Context, _ string, outcome string) {
	m.runOutcomes.WithLabelValues(outcome).Inc()
}

func (m *prometheusMetrics) RecordAdapterUsed(_ context.Context, adapter string) {
	m.adaptersUsed.WithLabelValues(adapter).Inc()
}

func (m *prometheusMetrics) RecordCountFetchAttempts(_ context.Context, _ string, attempts int) {
	m.countFetchAttempts.WithLabelValues().Observe(float64(attempts))
}

// NoOpMetrics discards all recordings; used in tests.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string) {}

func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string) {}

func (NoOpMetrics) RecordOperationFailure(context.Context, string, string) {}

func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}

func (NoOpMetrics) RecordRunOutcome(context.Context, string, string) {}

func (NoOpMetrics) RecordAdapterUsed(context.Context, string) {}

func (NoOpMetrics) RecordCountFetchAttempts(context.Context, string, int) {}
