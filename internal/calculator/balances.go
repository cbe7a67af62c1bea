package calculator

import (
	"sort"

	"github.com/mmynk/squadledger/internal/models"
)

// NetBalances recomputes every pairwise net debt from scratch.
//
// Algorithm:
//   - key each (payer, share holder) pair by its lexicographically ordered identities
//   - add the share when the payer is the first identity, subtract otherwise
//   - a positive net means the second identity owes the first, negative the reverse
//
// Shares are summed without overflow checks; Validate keeps each
// transaction's shares within its amount.
//
// Pairs that net to exactly zero are omitted. The result is sorted by
// (debtor, creditor), so it depends only on the multiset of shares and not on
// transaction order.
func NetBalances(txs []models.Transaction) []models.NetBalance {
	type pair struct{ first, second string }
	net := make(map[pair]int64)

	for _, tx := range txs {
		for _, s := range tx.Shares {
			if s.MemberID == tx.PayerID || s.Amount == 0 {
				continue
			}
			p := pair{first: tx.PayerID, second: s.MemberID}
			amount := s.Amount
			if p.second < p.first {
				p.first, p.second = p.second, p.first
				amount = -amount
			}
			net[p] += amount
		}
	}

	balances := make([]models.NetBalance, 0, len(net))
	for p, v := range net {
		switch {
		case v > 0:
			balances = append(balances, models.NetBalance{DebtorID: p.second, CreditorID: p.first, Amount: v})
		case v < 0:
			balances = append(balances, models.NetBalance{DebtorID: p.first, CreditorID: p.second, Amount: -v})
		}
	}
	SortBalances(balances)
	return balances
}

// SortBalances orders balances by debtor, then creditor.
func SortBalances(balances []models.NetBalance) {
	sort.Slice(balances, func(i, j int) bool {
		if balances[i].DebtorID != balances[j].DebtorID {
			return balances[i].DebtorID < balances[j].DebtorID
		}
		return balances[i].CreditorID < balances[j].CreditorID
	})
}

// MemberBalance summarizes one member's position across all their pairs.
type MemberBalance struct {
	MemberID string
	Owes     int64 // Total this member owes others
	Owed     int64 // Total others owe this member
	Net      int64 // Owed - Owes; positive = owed money

	// LargestDebt and LargestCredit are the biggest single balances on each side.
	LargestDebt   *models.NetBalance
	LargestCredit *models.NetBalance
}

// MemberBalances folds pairwise balances into one summary per member, sorted by id.
func MemberBalances(balances []models.NetBalance) []MemberBalance {
	byMember := make(map[string]*MemberBalance)
	get := func(id string) *MemberBalance {
		if mb, ok := byMember[id]; ok {
			return mb
		}
		mb := &MemberBalance{MemberID: id}
		byMember[id] = mb
		return mb
	}

	for i := range balances {
		b := balances[i]
		debtor := get(b.DebtorID)
		debtor.Owes += b.Amount
		if debtor.LargestDebt == nil || b.Amount > debtor.LargestDebt.Amount {
			debtor.LargestDebt = &b
		}
		creditor := get(b.CreditorID)
		creditor.Owed += b.Amount
		if creditor.LargestCredit == nil || b.Amount > creditor.LargestCredit.Amount {
			creditor.LargestCredit = &b
		}
	}

	out := make([]MemberBalance, 0, len(byMember))
	for _, mb := range byMember {
		mb.Net = mb.Owed - mb.Owes
		out = append(out, *mb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
	return out
}

// DebtEdge is a suggested payment from one member to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount int64
}

// SuggestPayments proposes a short list of payments that clears every net
// position, matching the largest debtor with the largest creditor greedily.
// It is advisory: settlements still go through the pairwise ledger.
func SuggestPayments(balances []models.NetBalance) []DebtEdge {
	type position struct {
		id     string
		amount int64
	}
	var debtors, creditors []position
	for _, mb := range MemberBalances(balances) {
		switch {
		case mb.Net < 0:
			debtors = append(debtors, position{mb.MemberID, -mb.Net})
		case mb.Net > 0:
			creditors = append(creditors, position{mb.MemberID, mb.Net})
		}
	}
	byAmount := func(ps []position) func(i, j int) bool {
		return func(i, j int) bool {
			if ps[i].amount != ps[j].amount {
				return ps[i].amount > ps[j].amount
			}
			return ps[i].id < ps[j].id
		}
	}
	sort.Slice(debtors, byAmount(debtors))
	sort.Slice(creditors, byAmount(creditors))

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := min(debtors[i].amount, creditors[j].amount)
		edges = append(edges, DebtEdge{From: debtors[i].id, To: creditors[j].id, Amount: amount})

		debtors[i].amount -= amount
		creditors[j].amount -= amount
		if debtors[i].amount == 0 {
			i++
		}
		if creditors[j].amount == 0 {
			j++
		}
	}
	return edges
}
