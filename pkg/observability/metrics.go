package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes recorded on the operations counter.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeLocked      = "locked"
	OutcomeNotAcquired = "not_acquired"
	OutcomeMismatch    = "lock_mismatch"
	OutcomeError       = "error"
)

// Metrics holds the collectors of one synchronizer.
type Metrics struct {
	operations  *prometheus.CounterVec
	notAcquired prometheus.Counter
	lockWait    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sessionlock_operations_total",
				Help: "Total number of session operations by outcome",
			},
			[]string{"op", "outcome"},
		),
		notAcquired: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sessionlock_lock_not_acquired_total",
				Help: "Total number of lock acquisitions that timed out",
			},
		),
		lockWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sessionlock_lock_wait_seconds",
				Help:    "Time spent waiting for the session claim key",
				Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.notAcquired, m.lockWait)
	}
	return m
}

// Operation records the outcome of one operation.
func (m *Metrics) Operation(op, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

// LockWait records a lock acquisition attempt.
func (m *Metrics) LockWait(d time.Duration, acquired bool) {
	if m == nil {
		return
	}
	m.lockWait.Observe(d.Seconds())
	if !acquired {
		m.notAcquired.Inc()
	}
}

// OperationCount returns the current value of an operations counter.
func (m *Metrics) OperationCount(op, outcome string) float64 {
	if m == nil {
		return 0
	}
	return counterValue(m.operations.WithLabelValues(op, outcome))
}

// NotAcquiredCount returns the current number of timed out acquisitions.
func (m *Metrics) NotAcquiredCount() float64 {
	if m == nil {
		return 0
	}
	return counterValue(m.notAcquired)
}
