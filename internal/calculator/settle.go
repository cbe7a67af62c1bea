package calculator

import (
	"slices"

	"github.com/mmynk/squadledger/internal/models"
)

// SettlementDescription labels generated settlement transactions.
const SettlementDescription = "Settlement"

// Settlement builds the SETTLEMENT transaction that zeroes the first balance
// (in debtor, creditor order) involving memberID. When counterpartyID is set,
// only the balance between the two is considered. It returns false when there
// is nothing to settle. ID and timestamps are left for the caller.
//
// The debtor pays the full amount and the creditor holds a single full share,
// so netting the result contributes exactly the negation of the balance.
func Settlement(balances []models.NetBalance, memberID, counterpartyID string) (models.Transaction, bool) {
	sorted := slices.Clone(balances)
	SortBalances(sorted)

	for _, b := range sorted {
		if !b.Involves(memberID) {
			continue
		}
		if counterpartyID != "" && !b.Involves(counterpartyID) {
			continue
		}
		return models.Transaction{
			Kind:        models.KindSettlement,
			Amount:      b.Amount,
			Description: SettlementDescription,
			PayerID:     b.DebtorID,
			Shares:      []models.Share{{MemberID: b.CreditorID, Amount: b.Amount}},
		}, true
	}
	return models.Transaction{}, false
}
