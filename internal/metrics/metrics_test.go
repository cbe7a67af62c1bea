package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/mmynk/squadledger/internal/models"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{fmt.Errorf("commit: %w", models.ErrConflict), OutcomeConflict},
		{models.ErrNotFound, OutcomeNotFound},
		{models.ErrInvalidTransaction, OutcomeInvalid},
		{models.ErrInvalidSplitRequest, OutcomeInvalid},
		{errors.New("boom"), OutcomeError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err), "err=%v", tt.err)
	}
}

func TestObserveMutation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveMutation("add", nil)
	m.ObserveMutation("add", nil)
	m.ObserveMutation("add", models.ErrConflict)
	m.ObserveRecompute(time.Millisecond, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.mutations.WithLabelValues("add", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("add", OutcomeConflict)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.recompute))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveMutation("add", nil)
		m.ObserveRecompute(time.Second, 0)
	})
}
