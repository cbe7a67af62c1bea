// Package calculator holds the pure ledger engine: split allocation,
// transaction validation, balance netting and settlement generation.
// Nothing here touches storage or shared state; every function is safe
// for concurrent use.
package calculator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/mmynk/squadledger/internal/models"
)

// EqualSplit divides amount across the selected members.
//
// Algorithm:
//   - base = floor(amount / N), remainder = amount - base*N
//   - every member gets base; the first selected member also gets the remainder
//
// The result follows selection order, repeats removed, and always sums to amount.
func EqualSplit(amount int64, selected []string) ([]models.Share, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", models.ErrInvalidSplitRequest, amount)
	}
	members, err := uniqueMembers(selected)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: at least one member must be selected", models.ErrInvalidSplitRequest)
	}

	n := int64(len(members))
	base := amount / n
	remainder := amount - base*n

	shares := make([]models.Share, len(members))
	for i, m := range members {
		shares[i] = models.Share{MemberID: m, Amount: base}
	}
	shares[0].Amount += remainder
	return shares, nil
}

// ItemizedSplit computes per-member shares from item assignments.
//
// Each line's total (UnitPrice × Quantity) is spread over the units actually
// assigned: a member holding q of the Q assigned units accrues total×q/Q.
// Accruals stay exact until every item is processed, then each member's sum is
// rounded once to the cent (half away from zero).
//
// Line totals and the bill total must fit in int64.
//
// Members with a positive share who were not selected are appended to the
// returned selection, in order of first assignment. Items with no assigned
// units contribute nothing.
func ItemizedSplit(items []models.ItemLine, selected []string) ([]models.Share, []string, error) {
	members, err := uniqueMembers(selected)
	if err != nil {
		return nil, nil, err
	}
	if len(items) == 0 {
		return nil, nil, fmt.Errorf("%w: itemized split needs at least one item", models.ErrInvalidSplitRequest)
	}

	accrued := make(map[string]decimal.Decimal)
	isSelected := make(map[string]bool, len(members))
	for _, m := range members {
		isSelected[m] = true
	}

	var billTotal int64
	for _, item := range items {
		if item.UnitPrice <= 0 {
			return nil, nil, fmt.Errorf("%w: item %q has non-positive price %d", models.ErrInvalidSplitRequest, item.Name, item.UnitPrice)
		}
		if item.Quantity <= 0 {
			return nil, nil, fmt.Errorf("%w: item %q has non-positive quantity %d", models.ErrInvalidSplitRequest, item.Name, item.Quantity)
		}

		if item.UnitPrice > math.MaxInt64/item.Quantity {
			return nil, nil, fmt.Errorf("%w: item %q total overflows", models.ErrInvalidSplitRequest, item.Name)
		}
		if item.Total() > math.MaxInt64-billTotal {
			return nil, nil, fmt.Errorf("%w: bill total overflows at item %q", models.ErrInvalidSplitRequest, item.Name)
		}
		billTotal += item.Total()

		var assigned int64
		for _, a := range item.Assignments {
			if a.MemberID == "" {
				return nil, nil, fmt.Errorf("%w: item %q has an assignment without a member", models.ErrInvalidSplitRequest, item.Name)
			}
			if a.Quantity < 0 {
				return nil, nil, fmt.Errorf("%w: item %q assigns negative quantity to %s", models.ErrInvalidSplitRequest, item.Name, a.MemberID)
			}
			if a.Quantity > math.MaxInt64-assigned {
				return nil, nil, fmt.Errorf("%w: item %q assigns too many units", models.ErrInvalidSplitRequest, item.Name)
			}
			assigned += a.Quantity
		}
		if assigned == 0 {
			continue
		}

		total := decimal.NewFromInt(item.Total())
		denom := decimal.NewFromInt(assigned)
		for _, a := range item.Assignments {
			if a.Quantity == 0 {
				continue
			}
			portion := total.Mul(decimal.NewFromInt(a.Quantity)).Div(denom)
			prev, ok := accrued[a.MemberID]
			if !ok {
				prev = decimal.Zero
			}
			accrued[a.MemberID] = prev.Add(portion)
			if !isSelected[a.MemberID] {
				isSelected[a.MemberID] = true
				members = append(members, a.MemberID)
			}
		}
	}

	shares := make([]models.Share, len(members))
	for i, m := range members {
		var amount int64
		if acc, ok := accrued[m]; ok {
			amount = acc.Round(0).IntPart()
		}
		shares[i] = models.Share{MemberID: m, Amount: amount}
	}
	return shares, members, nil
}

// ItemsTotal sums every line total; this is what the payer handed over.
// Only meaningful for items ItemizedSplit accepted.
func ItemsTotal(items []models.ItemLine) int64 {
	var total int64
	for _, it := range items {
		total += it.Total()
	}
	return total
}

func uniqueMembers(selected []string) ([]string, error) {
	seen := make(map[string]bool, len(selected))
	out := make([]string, 0, len(selected))
	for _, m := range selected {
		if m == "" {
			return nil, fmt.Errorf("%w: empty member id", models.ErrInvalidSplitRequest)
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out, nil
}
