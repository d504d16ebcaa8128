package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// SettlementMetrics records money movement outcomes.
type SettlementMetrics struct {
	duration   *prometheus.HistogramVec
	operations *prometheus.CounterVec
}

// NewSettlementMetrics registers the settlement metrics on the provided
// registerer. A nil registerer yields a no-op recorder.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settlement_duration_seconds",
		Help:    "Duration of settlement transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_operations_total",
		Help: "Settlement operations by outcome.",
	}, []string{"operation", "outcome"})
	reg.MustRegister(duration, operations)
	return &SettlementMetrics{
		duration:   duration,
		operations: operations,
	}
}

// Observe records one finished operation. outcome is OutcomeSuccess, an
// error reason, or OutcomeError.
func (m *SettlementMetrics) Observe(operation, outcome string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	operation = normalizeLabel(operation)
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
	m.operations.WithLabelValues(operation, normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
