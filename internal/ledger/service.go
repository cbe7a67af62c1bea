// Package ledger is the transactional boundary around a squad's transaction
// history. Every mutation reads the committed ledger, applies one change,
// recomputes net balances from scratch and commits both with a
// version-conditional write. A lost race surfaces as models.ErrConflict and
// is never retried here.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/squadledger/internal/calculator"
	"github.com/mmynk/squadledger/internal/metrics"
	"github.com/mmynk/squadledger/internal/models"
	"github.com/mmynk/squadledger/internal/storage"
)

// Service applies ledger mutations and membership changes through a Store.
type Service struct {
	store   storage.Store
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records mutation outcomes and recompute timings.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides how transaction ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a ledger Service backed by store.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is the outcome of a ledger mutation.
type Result struct {
	// Transaction is the recorded transaction; nil when nothing was committed
	// (removals, settle with nothing owed).
	Transaction *models.Transaction

	// Ledger is the state after the mutation.
	Ledger *models.Ledger
}

// change computes the new transaction list from the committed ledger.
// Returning commit=false leaves the ledger untouched.
type change func(l *models.Ledger, known map[string]bool) (txs []models.Transaction, commit bool, err error)

func (s *Service) mutate(ctx context.Context, op, squadID string, apply change) (result *models.Ledger, err error) {
	defer func() { s.metrics.ObserveMutation(op, err) }()

	current, err := s.store.LoadLedger(ctx, squadID)
	if err != nil {
		return nil, storageError("load ledger", err)
	}
	members, err := s.store.LoadMembers(ctx, squadID)
	if err != nil {
		return nil, storageError("load members", err)
	}

	known := calculator.KnownMembers(members, current.Transactions)
	txs, commit, err := apply(current, known)
	if err != nil {
		return nil, err
	}
	if !commit {
		return current, nil
	}

	start := time.Now()
	balances := calculator.NetBalances(txs)
	s.metrics.ObserveRecompute(time.Since(start), len(balances))

	version, err := s.store.CommitLedger(ctx, squadID, txs, balances, current.Version)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			slog.Warn("Ledger commit lost a race",
				"squad_id", squadID,
				"operation", op,
				"expected_version", current.Version,
			)
		}
		return nil, storageError("commit ledger", err)
	}

	slog.Debug("Ledger committed",
		"squad_id", squadID,
		"operation", op,
		"version", version,
		"transactions", len(txs),
		"balances", len(balances),
	)

	return &models.Ledger{
		SquadID:      squadID,
		Version:      version,
		Transactions: txs,
		Balances:     balances,
	}, nil
}

// storageError passes taxonomy errors through and tags everything else as a
// persistence failure.
func storageError(what string, err error) error {
	for _, sentinel := range []error{
		models.ErrNotFound,
		models.ErrConflict,
		models.ErrAlreadyMember,
		models.ErrForbidden,
		models.ErrStorage,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: failed to %s: %w", models.ErrStorage, what, err)
}
