// Package metrics exposes Prometheus instrumentation for ledger mutations.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mmynk/squadledger/internal/models"
)

const namespace = "squadledger"

// Outcome labels for ledger mutations.
const (
	OutcomeOK       = "ok"
	OutcomeConflict = "conflict"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Metrics holds the ledger collectors. A nil *Metrics records nothing.
type Metrics struct {
	mutations *prometheus.CounterVec
	recompute prometheus.Histogram
	balances  prometheus.Histogram
}

// New registers the ledger collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_mutations_total",
			Help:      "Ledger mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		recompute: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_recompute_seconds",
			Help:      "Time spent recomputing net balances for one squad.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		balances: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_open_balances",
			Help:      "Number of non-zero net balances after a commit.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}
}

// ObserveMutation counts one mutation attempt.
func (m *Metrics) ObserveMutation(operation string, err error) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation, Outcome(err)).Inc()
}

// ObserveRecompute records how long a netting pass took and how many
// balances it produced.
func (m *Metrics) ObserveRecompute(d time.Duration, balances int) {
	if m == nil {
		return
	}
	m.recompute.Observe(d.Seconds())
	m.balances.Observe(float64(balances))
}

// Outcome classifies err into a mutation outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, models.ErrConflict):
		return OutcomeConflict
	case errors.Is(err, models.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, models.ErrInvalidTransaction), errors.Is(err, models.ErrInvalidSplitRequest):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
