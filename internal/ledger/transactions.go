package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mmynk/squadledger/internal/calculator"
	"github.com/mmynk/squadledger/internal/models"
)

// AddTransaction appends tx to the squad's history. ID, CreatedAt and a
// missing OccurredAt are filled in.
func (s *Service) AddTransaction(ctx context.Context, squadID string, tx models.Transaction) (*Result, error) {
	tx = tx.Clone()
	now := s.now().Unix()
	if tx.ID == "" {
		tx.ID = s.newID()
	}
	if tx.OccurredAt == 0 {
		tx.OccurredAt = now
	}
	tx.CreatedAt = now

	ledger, err := s.mutate(ctx, "add", squadID, func(l *models.Ledger, known map[string]bool) ([]models.Transaction, bool, error) {
		if _, _, exists := l.Transaction(tx.ID); exists {
			return nil, false, fmt.Errorf("%w: transaction %s already exists", models.ErrInvalidTransaction, tx.ID)
		}
		if err := calculator.Validate(tx, known); err != nil {
			return nil, false, err
		}
		return append(slices.Clone(l.Transactions), tx), true, nil
	})
	if err != nil {
		slog.Error("AddTransaction failed", "squad_id", squadID, "kind", tx.Kind, "error", err)
		return nil, err
	}

	slog.Info("Transaction added",
		"squad_id", squadID,
		"transaction_id", tx.ID,
		"kind", tx.Kind,
		"amount", tx.Amount,
	)
	return &Result{Transaction: &tx, Ledger: ledger}, nil
}

// ReplaceTransaction swaps the transaction with the given id for tx, keeping
// its id, position and creation time.
func (s *Service) ReplaceTransaction(ctx context.Context, squadID, id string, tx models.Transaction) (*Result, error) {
	tx = tx.Clone()
	tx.ID = id

	ledger, err := s.mutate(ctx, "replace", squadID, func(l *models.Ledger, known map[string]bool) ([]models.Transaction, bool, error) {
		old, idx, ok := l.Transaction(id)
		if !ok {
			return nil, false, fmt.Errorf("transaction %s: %w", id, models.ErrNotFound)
		}
		tx.CreatedAt = old.CreatedAt
		if tx.OccurredAt == 0 {
			tx.OccurredAt = old.OccurredAt
		}
		if err := calculator.Validate(tx, known); err != nil {
			return nil, false, err
		}
		txs := slices.Clone(l.Transactions)
		txs[idx] = tx
		return txs, true, nil
	})
	if err != nil {
		slog.Error("ReplaceTransaction failed", "squad_id", squadID, "transaction_id", id, "error", err)
		return nil, err
	}

	slog.Info("Transaction replaced", "squad_id", squadID, "transaction_id", id)
	return &Result{Transaction: &tx, Ledger: ledger}, nil
}

// RemoveTransaction deletes the transaction with the given id.
func (s *Service) RemoveTransaction(ctx context.Context, squadID, id string) (*models.Ledger, error) {
	ledger, err := s.mutate(ctx, "remove", squadID, func(l *models.Ledger, _ map[string]bool) ([]models.Transaction, bool, error) {
		_, idx, ok := l.Transaction(id)
		if !ok {
			return nil, false, fmt.Errorf("transaction %s: %w", id, models.ErrNotFound)
		}
		return slices.Delete(slices.Clone(l.Transactions), idx, idx+1), true, nil
	})
	if err != nil {
		slog.Error("RemoveTransaction failed", "squad_id", squadID, "transaction_id", id, "error", err)
		return nil, err
	}

	slog.Info("Transaction removed", "squad_id", squadID, "transaction_id", id)
	return ledger, nil
}

// Settle records a settlement zeroing the first balance involving memberID
// (restricted to counterpartyID when non-empty). Balances are recomputed from
// the committed history rather than trusted from storage. When nothing is
// owed the ledger is returned unchanged and Result.Transaction is nil.
func (s *Service) Settle(ctx context.Context, squadID, memberID, counterpartyID string) (*Result, error) {
	var settlement *models.Transaction

	ledger, err := s.mutate(ctx, "settle", squadID, func(l *models.Ledger, known map[string]bool) ([]models.Transaction, bool, error) {
		if !known[memberID] {
			return nil, false, fmt.Errorf("member %s: %w", memberID, models.ErrNotFound)
		}
		if counterpartyID != "" && !known[counterpartyID] {
			return nil, false, fmt.Errorf("member %s: %w", counterpartyID, models.ErrNotFound)
		}

		tx, ok := calculator.Settlement(calculator.NetBalances(l.Transactions), memberID, counterpartyID)
		if !ok {
			return nil, false, nil
		}
		now := s.now().Unix()
		tx.ID = s.newID()
		tx.OccurredAt = now
		tx.CreatedAt = now
		if err := calculator.Validate(tx, known); err != nil {
			return nil, false, err
		}
		settlement = &tx
		return append(slices.Clone(l.Transactions), tx), true, nil
	})
	if err != nil {
		slog.Error("Settle failed", "squad_id", squadID, "member_id", memberID, "error", err)
		return nil, err
	}

	if settlement == nil {
		slog.Info("Nothing to settle", "squad_id", squadID, "member_id", memberID)
	} else {
		slog.Info("Balance settled",
			"squad_id", squadID,
			"transaction_id", settlement.ID,
			"debtor", settlement.PayerID,
			"creditor", settlement.Shares[0].MemberID,
			"amount", settlement.Amount,
		)
	}
	return &Result{Transaction: settlement, Ledger: ledger}, nil
}

// Ledger returns the committed ledger of a squad.
func (s *Service) Ledger(ctx context.Context, squadID string) (*models.Ledger, error) {
	ledger, err := s.store.LoadLedger(ctx, squadID)
	if err != nil {
		return nil, storageError("load ledger", err)
	}
	return ledger, nil
}

// Transactions returns the squad's history in insertion order.
func (s *Service) Transactions(ctx context.Context, squadID string) ([]models.Transaction, error) {
	ledger, err := s.Ledger(ctx, squadID)
	if err != nil {
		return nil, err
	}
	return ledger.Transactions, nil
}

// Balances returns the committed net balances.
func (s *Service) Balances(ctx context.Context, squadID string) ([]models.NetBalance, error) {
	ledger, err := s.Ledger(ctx, squadID)
	if err != nil {
		return nil, err
	}
	return ledger.Balances, nil
}
