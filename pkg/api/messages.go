// Package api defines the squadledger RPC surface: the request and response
// messages, their Connect procedures, and handler/client constructors.
//
// Messages are plain structs carried as JSON. Amounts are integer minor
// units (cents); timestamps are Unix seconds.
package api

// Member is a squad participant.
type Member struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joinedAt"`
}

// Squad is a group of members sharing expenses.
type Squad struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []Member `json:"members"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt"`
}

// Share is what one member owes the payer.
type Share struct {
	MemberID string `json:"memberId"`
	Amount   int64  `json:"amount"`
}

// Assignment gives a member some of an item's units.
type Assignment struct {
	MemberID string `json:"memberId"`
	Quantity int64  `json:"quantity"`
}

// ItemLine is one line of an itemized bill.
type ItemLine struct {
	ID          string       `json:"id,omitempty"`
	Name        string       `json:"name"`
	UnitPrice   int64        `json:"unitPrice"`
	Quantity    int64        `json:"quantity"`
	Assignments []Assignment `json:"assignments"`
}

// Transaction is one recorded monetary event.
type Transaction struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Amount      int64      `json:"amount"`
	Description string     `json:"description"`
	PayerID     string     `json:"payerId"`
	OccurredAt  int64      `json:"occurredAt"`
	Shares      []Share    `json:"shares"`
	Items       []ItemLine `json:"items,omitempty"`
	ReceiptRef  string     `json:"receiptRef,omitempty"`
	CreatedAt   int64      `json:"createdAt"`
}

// NetBalance says DebtorID owes CreditorID Amount.
type NetBalance struct {
	DebtorID   string `json:"debtorId"`
	CreditorID string `json:"creditorId"`
	Amount     int64  `json:"amount"`
}

// MemberPosition summarises one member's standing across all balances.
type MemberPosition struct {
	MemberID      string      `json:"memberId"`
	Owes          int64       `json:"owes"`
	Owed          int64       `json:"owed"`
	Net           int64       `json:"net"`
	LargestDebt   *NetBalance `json:"largestDebt,omitempty"`
	LargestCredit *NetBalance `json:"largestCredit,omitempty"`
}

// Payment is a suggested transfer that helps clear balances.
type Payment struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// Empty is used by procedures without a meaningful payload.
type Empty struct{}

// ---- SquadService ----

type CreateSquadRequest struct {
	Name string `json:"name"`
}

type GetSquadRequest struct {
	SquadID string `json:"squadId"`
}

type ListSquadsRequest struct{}

type ListSquadsResponse struct {
	Squads []Squad `json:"squads"`
}

type RenameSquadRequest struct {
	SquadID string `json:"squadId"`
	Name    string `json:"name"`
}

type DeleteSquadRequest struct {
	SquadID string `json:"squadId"`
}

type JoinSquadRequest struct {
	SquadID string `json:"squadId"`
}

// MemberRequest targets one member of a squad (remove, promote).
type MemberRequest struct {
	SquadID  string `json:"squadId"`
	MemberID string `json:"memberId"`
}

type SquadResponse struct {
	Squad Squad `json:"squad"`
}

// ---- LedgerService ----

// Expense describes a new or replacement expense. Exactly one split mode
// applies: Items (itemized), Shares (explicit amounts), or an equal split of
// Amount over Members (all current members when empty).
type Expense struct {
	Description string     `json:"description"`
	Amount      int64      `json:"amount,omitempty"`
	PayerID     string     `json:"payerId,omitempty"`
	OccurredAt  int64      `json:"occurredAt,omitempty"`
	Members     []string   `json:"members,omitempty"`
	Shares      []Share    `json:"shares,omitempty"`
	Items       []ItemLine `json:"items,omitempty"`
	ReceiptRef  string     `json:"receiptRef,omitempty"`
}

type PreviewSplitRequest struct {
	Amount  int64      `json:"amount,omitempty"`
	Members []string   `json:"members"`
	Items   []ItemLine `json:"items,omitempty"`
}

type PreviewSplitResponse struct {
	Total   int64    `json:"total"`
	Shares  []Share  `json:"shares"`
	Members []string `json:"members"`
}

type AddExpenseRequest struct {
	SquadID string  `json:"squadId"`
	Expense Expense `json:"expense"`
}

type ReplaceExpenseRequest struct {
	SquadID       string  `json:"squadId"`
	TransactionID string  `json:"transactionId"`
	Expense       Expense `json:"expense"`
}

type DeleteTransactionRequest struct {
	SquadID       string `json:"squadId"`
	TransactionID string `json:"transactionId"`
}

// SettleUpRequest settles MemberID's first open balance (the caller when
// empty), optionally only the one with CounterpartyID.
type SettleUpRequest struct {
	SquadID        string `json:"squadId"`
	MemberID       string `json:"memberId,omitempty"`
	CounterpartyID string `json:"counterpartyId,omitempty"`
}

// LedgerResponse returns the transaction recorded by a mutation (if any)
// and the balances after it.
type LedgerResponse struct {
	Transaction *Transaction `json:"transaction,omitempty"`
	Balances    []NetBalance `json:"balances"`
	Version     int64        `json:"version"`
}

type ListTransactionsRequest struct {
	SquadID string `json:"squadId"`
}

type ListTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
	Version      int64         `json:"version"`
}

type GetBalancesRequest struct {
	SquadID string `json:"squadId"`
}

type GetBalancesResponse struct {
	Balances    []NetBalance     `json:"balances"`
	Positions   []MemberPosition `json:"positions"`
	Suggestions []Payment        `json:"suggestions"`
	Version     int64            `json:"version"`
}
