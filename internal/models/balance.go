package models

// NetBalance is the netted debt between two members: DebtorID owes CreditorID Amount.
// It is derived from the transaction list, never authoritative.
type NetBalance struct {
	DebtorID   string `bson:"debtorId"`
	CreditorID string `bson:"creditorId"`

	// Amount is always positive; settled pairs have no NetBalance at all.
	Amount int64 `bson:"amount"`
}

// Involves reports whether memberID is on either side of the balance.
func (b NetBalance) Involves(memberID string) bool {
	return b.DebtorID == memberID || b.CreditorID == memberID
}

// Ledger is a squad's committed transaction history together with the
// balances derived from it.
type Ledger struct {
	SquadID string `bson:"_id"`

	// Version is the optimistic concurrency token; every commit increments it.
	Version int64 `bson:"version"`

	Transactions []Transaction `bson:"transactions"`
	Balances     []NetBalance  `bson:"balances"`
}

// Transaction returns the transaction with the given id and its position.
func (l *Ledger) Transaction(id string) (Transaction, int, bool) {
	for i, t := range l.Transactions {
		if t.ID == id {
			return t, i, true
		}
	}
	return Transaction{}, -1, false
}
