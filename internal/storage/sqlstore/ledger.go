package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/squadledger/internal/models"
)

// LoadLedger reads the squad's version, transactions and balances from a
// single snapshot.
func (s *Store) LoadLedger(ctx context.Context, squadID string) (*models.Ledger, error) {
	tx, err := s.db.BeginTx(ctx, s.readTxOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ledger := &models.Ledger{SquadID: squadID}
	err = tx.QueryRowContext(ctx, s.q("SELECT ledger_version FROM squads WHERE id = ?"), squadID).Scan(&ledger.Version)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("squad %s: %w", squadID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger version: %w", err)
	}

	if ledger.Transactions, err = s.loadTransactions(ctx, tx, squadID); err != nil {
		return nil, err
	}
	if ledger.Balances, err = s.loadBalances(ctx, tx, squadID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return ledger, nil
}

func (s *Store) loadTransactions(ctx context.Context, tx *sql.Tx, squadID string) ([]models.Transaction, error) {
	rows, err := tx.QueryContext(ctx, s.q(`
		SELECT id, kind, amount, description, payer_id, occurred_at, receipt_ref, created_at
		FROM transactions
		WHERE squad_id = ?
		ORDER BY seq
	`), squadID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer rows.Close()

	txs := []models.Transaction{}
	index := make(map[string]int)
	for rows.Next() {
		var t models.Transaction
		var kind string
		if err := rows.Scan(&t.ID, &kind, &t.Amount, &t.Description, &t.PayerID, &t.OccurredAt, &t.ReceiptRef, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Kind = models.Kind(kind)
		index[t.ID] = len(txs)
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	rows.Close()

	if err := s.loadShares(ctx, tx, squadID, txs, index); err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, tx, squadID, txs, index); err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *Store) loadShares(ctx context.Context, tx *sql.Tx, squadID string, txs []models.Transaction, index map[string]int) error {
	rows, err := tx.QueryContext(ctx, s.q(`
		SELECT transaction_id, member_id, amount
		FROM shares
		WHERE squad_id = ?
		ORDER BY transaction_id, seq
	`), squadID)
	if err != nil {
		return fmt.Errorf("failed to get shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var txID string
		var share models.Share
		if err := rows.Scan(&txID, &share.MemberID, &share.Amount); err != nil {
			return fmt.Errorf("failed to scan share: %w", err)
		}
		if i, ok := index[txID]; ok {
			txs[i].Shares = append(txs[i].Shares, share)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating shares: %w", err)
	}
	return nil
}

func (s *Store) loadItems(ctx context.Context, tx *sql.Tx, squadID string, txs []models.Transaction, index map[string]int) error {
	rows, err := tx.QueryContext(ctx, s.q(`
		SELECT transaction_id, seq, id, name, unit_price, quantity
		FROM item_lines
		WHERE squad_id = ?
		ORDER BY transaction_id, seq
	`), squadID)
	if err != nil {
		return fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	type itemKey struct {
		txID string
		seq  int
	}
	positions := make(map[itemKey]int)
	for rows.Next() {
		var txID string
		var seq int
		var item models.ItemLine
		if err := rows.Scan(&txID, &seq, &item.ID, &item.Name, &item.UnitPrice, &item.Quantity); err != nil {
			return fmt.Errorf("failed to scan item: %w", err)
		}
		i, ok := index[txID]
		if !ok {
			continue
		}
		positions[itemKey{txID, seq}] = len(txs[i].Items)
		txs[i].Items = append(txs[i].Items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating items: %w", err)
	}
	rows.Close()

	rows, err = tx.QueryContext(ctx, s.q(`
		SELECT transaction_id, item_seq, member_id, quantity
		FROM item_assignments
		WHERE squad_id = ?
		ORDER BY transaction_id, item_seq, seq
	`), squadID)
	if err != nil {
		return fmt.Errorf("failed to get item assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var txID string
		var itemSeq int
		var a models.Assignment
		if err := rows.Scan(&txID, &itemSeq, &a.MemberID, &a.Quantity); err != nil {
			return fmt.Errorf("failed to scan item assignment: %w", err)
		}
		i, ok := index[txID]
		if !ok {
			continue
		}
		pos, ok := positions[itemKey{txID, itemSeq}]
		if !ok {
			continue
		}
		txs[i].Items[pos].Assignments = append(txs[i].Items[pos].Assignments, a)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating item assignments: %w", err)
	}
	return nil
}

func (s *Store) loadBalances(ctx context.Context, tx *sql.Tx, squadID string) ([]models.NetBalance, error) {
	rows, err := tx.QueryContext(ctx, s.q(`
		SELECT debtor_id, creditor_id, amount
		FROM net_balances
		WHERE squad_id = ?
		ORDER BY debtor_id, creditor_id
	`), squadID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balances: %w", err)
	}
	defer rows.Close()

	balances := []models.NetBalance{}
	for rows.Next() {
		var b models.NetBalance
		if err := rows.Scan(&b.DebtorID, &b.CreditorID, &b.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balances: %w", err)
	}
	return balances, nil
}

// CommitLedger replaces the squad's transactions and balances in one SQL
// transaction, guarded by the ledger_version column.
func (s *Store) CommitLedger(ctx context.Context, squadID string, txs []models.Transaction, balances []models.NetBalance, expectedVersion int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		s.q("UPDATE squads SET ledger_version = ledger_version + 1, updated_at = ? WHERE id = ? AND ledger_version = ?"),
		s.now().Unix(), squadID, expectedVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to bump ledger version: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		exists, err := s.squadExists(ctx, tx, squadID)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, fmt.Errorf("squad %s: %w", squadID, models.ErrNotFound)
		}
		return 0, fmt.Errorf("squad %s at version %d: %w", squadID, expectedVersion, models.ErrConflict)
	}

	if err := s.clearLedger(ctx, tx, squadID); err != nil {
		return 0, err
	}
	for i, t := range txs {
		if err := s.insertTransaction(ctx, tx, squadID, i, t); err != nil {
			return 0, err
		}
	}
	for _, b := range balances {
		_, err := tx.ExecContext(ctx,
			s.q("INSERT INTO net_balances (squad_id, debtor_id, creditor_id, amount) VALUES (?, ?, ?, ?)"),
			squadID, b.DebtorID, b.CreditorID, b.Amount,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert balance: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return expectedVersion + 1, nil
}

func (s *Store) insertTransaction(ctx context.Context, tx *sql.Tx, squadID string, seq int, t models.Transaction) error {
	_, err := tx.ExecContext(ctx,
		s.q(`INSERT INTO transactions
			(squad_id, id, seq, kind, amount, description, payer_id, occurred_at, receipt_ref, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		squadID, t.ID, seq, string(t.Kind), t.Amount, t.Description, t.PayerID, t.OccurredAt, t.ReceiptRef, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	for i, share := range t.Shares {
		_, err := tx.ExecContext(ctx,
			s.q("INSERT INTO shares (squad_id, transaction_id, seq, member_id, amount) VALUES (?, ?, ?, ?, ?)"),
			squadID, t.ID, i, share.MemberID, share.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}

	for i, item := range t.Items {
		_, err := tx.ExecContext(ctx,
			s.q("INSERT INTO item_lines (squad_id, transaction_id, seq, id, name, unit_price, quantity) VALUES (?, ?, ?, ?, ?, ?, ?)"),
			squadID, t.ID, i, item.ID, item.Name, item.UnitPrice, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
		for j, a := range item.Assignments {
			_, err := tx.ExecContext(ctx,
				s.q("INSERT INTO item_assignments (squad_id, transaction_id, item_seq, seq, member_id, quantity) VALUES (?, ?, ?, ?, ?, ?)"),
				squadID, t.ID, i, j, a.MemberID, a.Quantity,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}
	return nil
}

// clearLedger deletes every ledger row of the squad, children first.
func (s *Store) clearLedger(ctx context.Context, tx *sql.Tx, squadID string) error {
	for _, table := range []string{"item_assignments", "item_lines", "shares", "transactions", "net_balances"} {
		if _, err := tx.ExecContext(ctx, s.q("DELETE FROM "+table+" WHERE squad_id = ?"), squadID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
