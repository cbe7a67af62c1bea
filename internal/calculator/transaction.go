package calculator

import (
	"fmt"
	"math"

	"github.com/mmynk/squadledger/internal/models"
)

// shareTolerance is how far, in minor units, shares may overshoot the amount.
const shareTolerance = 1

// Details carries the fields every expense variant shares.
type Details struct {
	ID          string
	Description string
	PayerID     string
	OccurredAt  int64
	ReceiptRef  string
}

func (d Details) transaction(kind models.Kind, amount int64) models.Transaction {
	return models.Transaction{
		ID:          d.ID,
		Kind:        kind,
		Amount:      amount,
		Description: d.Description,
		PayerID:     d.PayerID,
		OccurredAt:  d.OccurredAt,
		ReceiptRef:  d.ReceiptRef,
	}
}

// EqualExpense builds a "quick split" EXPENSE by dividing amount equally
// across the selected members.
func EqualExpense(d Details, amount int64, selected []string) (models.Transaction, error) {
	alloc, err := EqualSplit(amount, selected)
	if err != nil {
		return models.Transaction{}, err
	}
	tx := d.transaction(models.KindExpense, amount)
	tx.Shares = owedShares(d.PayerID, alloc)
	return tx, nil
}

// CustomExpense builds an EXPENSE from explicit per-member amounts.
// A share on the payer is dropped: the payer does not owe themselves.
func CustomExpense(d Details, amount int64, shares []models.Share) (models.Transaction, error) {
	for _, s := range shares {
		if s.Amount < 0 {
			return models.Transaction{}, fmt.Errorf("%w: negative share %d for %s", models.ErrInvalidTransaction, s.Amount, s.MemberID)
		}
	}
	tx := d.transaction(models.KindExpense, amount)
	tx.Shares = owedShares(d.PayerID, shares)
	return tx, nil
}

// ItemizedExpense builds an ITEMIZED_EXPENSE whose amount is the sum of the
// item lines. It also returns the effective selection (see ItemizedSplit).
func ItemizedExpense(d Details, items []models.ItemLine, selected []string) (models.Transaction, []string, error) {
	alloc, members, err := ItemizedSplit(items, selected)
	if err != nil {
		return models.Transaction{}, nil, err
	}
	tx := d.transaction(models.KindItemizedExpense, ItemsTotal(items))
	tx.Shares = owedShares(d.PayerID, alloc)
	tx.Items = (models.Transaction{Items: items}).Clone().Items
	return tx, members, nil
}

// owedShares keeps the shares that represent debt to the payer.
func owedShares(payerID string, alloc []models.Share) []models.Share {
	out := make([]models.Share, 0, len(alloc))
	for _, s := range alloc {
		if s.MemberID == payerID || s.Amount <= 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Validate enforces the per-kind transaction invariants. known holds every
// identity a share may name: current members plus anyone already in history.
func Validate(tx models.Transaction, known map[string]bool) error {
	if !tx.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", models.ErrInvalidTransaction, tx.Kind)
	}
	if tx.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", models.ErrInvalidTransaction, tx.Amount)
	}
	if tx.PayerID == "" {
		return fmt.Errorf("%w: payer is required", models.ErrInvalidTransaction)
	}
	if !known[tx.PayerID] {
		return fmt.Errorf("%w: payer %s is not a squad member", models.ErrInvalidTransaction, tx.PayerID)
	}

	seen := make(map[string]bool, len(tx.Shares))
	for _, s := range tx.Shares {
		switch {
		case s.Amount <= 0:
			return fmt.Errorf("%w: share for %s must be positive, got %d", models.ErrInvalidTransaction, s.MemberID, s.Amount)
		case s.MemberID == tx.PayerID:
			return fmt.Errorf("%w: payer %s cannot hold a share", models.ErrInvalidTransaction, s.MemberID)
		case !known[s.MemberID]:
			return fmt.Errorf("%w: %s is not a squad member", models.ErrInvalidTransaction, s.MemberID)
		case seen[s.MemberID]:
			return fmt.Errorf("%w: duplicate share for %s", models.ErrInvalidTransaction, s.MemberID)
		}
		seen[s.MemberID] = true
	}

	switch tx.Kind {
	case models.KindSettlement:
		if len(tx.Shares) != 1 {
			return fmt.Errorf("%w: settlement needs exactly one share, got %d", models.ErrInvalidTransaction, len(tx.Shares))
		}
		if tx.Shares[0].Amount != tx.Amount {
			return fmt.Errorf("%w: settlement share %d does not match amount %d", models.ErrInvalidTransaction, tx.Shares[0].Amount, tx.Amount)
		}
		if len(tx.Items) > 0 {
			return fmt.Errorf("%w: settlement cannot carry items", models.ErrInvalidTransaction)
		}
		return nil
	case models.KindItemizedExpense:
		if len(tx.Items) == 0 {
			return fmt.Errorf("%w: itemized expense without items", models.ErrInvalidTransaction)
		}
	case models.KindExpense:
		if len(tx.Items) > 0 {
			return fmt.Errorf("%w: items are only allowed on itemized expenses", models.ErrInvalidTransaction)
		}
	}

	// The running total never exceeds limit, so it cannot overflow.
	limit := tx.Amount
	if limit <= math.MaxInt64-shareTolerance {
		limit += shareTolerance
	}
	var sum int64
	for _, s := range tx.Shares {
		if s.Amount > limit-sum {
			return fmt.Errorf("%w: shares exceed amount %d at %s", models.ErrInvalidTransaction, tx.Amount, s.MemberID)
		}
		sum += s.Amount
	}
	return nil
}

// KnownMembers returns the identities a transaction may reference: the
// current members plus every identity that already appears in history.
func KnownMembers(members []models.Member, history []models.Transaction) map[string]bool {
	known := make(map[string]bool, len(members))
	for _, m := range members {
		known[m.ID] = true
	}
	for _, tx := range history {
		for _, id := range tx.Participants() {
			known[id] = true
		}
	}
	return known
}
