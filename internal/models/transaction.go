package models

// Kind tags which variant a Transaction is.
type Kind string

const (
	KindExpense         Kind = "EXPENSE"
	KindItemizedExpense Kind = "ITEMIZED_EXPENSE"
	KindSettlement      Kind = "SETTLEMENT"
)

// Valid reports whether k is one of the known transaction kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindExpense, KindItemizedExpense, KindSettlement:
		return true
	}
	return false
}

// Transaction is an atomic monetary event in a squad's history.
// Transactions are immutable once created; an edit replaces the whole value.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string `bson:"id"`

	Kind Kind `bson:"kind"`

	// Amount is the total paid by the payer, in minor units.
	Amount int64 `bson:"amount"`

	Description string `bson:"description"`

	// PayerID is the identity of the single member who paid.
	PayerID string `bson:"payerId"`

	// OccurredAt is the Unix timestamp of the event itself.
	OccurredAt int64 `bson:"occurredAt"`

	// Shares lists what each non-payer member owes the payer.
	// The payer's own consumption is never recorded here.
	Shares []Share `bson:"shares"`

	// Items is only populated for ITEMIZED_EXPENSE.
	Items []ItemLine `bson:"items,omitempty"`

	// ReceiptRef is an opaque reference to an externally stored receipt image.
	ReceiptRef string `bson:"receiptRef,omitempty"`

	// CreatedAt is the Unix timestamp when the transaction was recorded.
	CreatedAt int64 `bson:"createdAt"`
}

// Share is one member's portion of a transaction, owed to the payer.
type Share struct {
	MemberID string `bson:"memberId"`
	Amount   int64  `bson:"amount"`
}

// ItemLine is a line on an itemized bill.
type ItemLine struct {
	ID   string `bson:"id"`
	Name string `bson:"name"`

	// UnitPrice is the price of one unit in minor units.
	UnitPrice int64 `bson:"unitPrice"`

	// Quantity is the number of units on the bill.
	Quantity int64 `bson:"quantity"`

	Assignments []Assignment `bson:"assignments"`
}

// Total is the line price: UnitPrice × Quantity.
func (it ItemLine) Total() int64 {
	return it.UnitPrice * it.Quantity
}

// Assignment gives a member some number of an item's units.
type Assignment struct {
	MemberID string `bson:"memberId"`
	Quantity int64  `bson:"quantity"`
}

// ShareTotal sums the amounts of all shares.
func (t Transaction) ShareTotal() int64 {
	var sum int64
	for _, s := range t.Shares {
		sum += s.Amount
	}
	return sum
}

// Participants returns the payer followed by every share holder, without duplicates.
func (t Transaction) Participants() []string {
	seen := map[string]bool{t.PayerID: true}
	out := []string{t.PayerID}
	for _, s := range t.Shares {
		if !seen[s.MemberID] {
			seen[s.MemberID] = true
			out = append(out, s.MemberID)
		}
	}
	return out
}

// Clone returns a deep copy so callers can't mutate shared slices.
func (t Transaction) Clone() Transaction {
	c := t
	c.Shares = append([]Share(nil), t.Shares...)
	if t.Items != nil {
		c.Items = make([]ItemLine, len(t.Items))
		for i, it := range t.Items {
			it.Assignments = append([]Assignment(nil), it.Assignments...)
			c.Items[i] = it
		}
	}
	return c
}
