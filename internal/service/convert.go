package service

import (
	"github.com/mmynk/squadledger/internal/calculator"
	"github.com/mmynk/squadledger/internal/models"
	"github.com/mmynk/squadledger/pkg/api"
)

func squadToAPI(s *models.Squad) api.Squad {
	members := make([]api.Member, len(s.Members))
	for i, m := range s.Members {
		members[i] = api.Member{
			ID:       m.ID,
			Name:     m.Name,
			Avatar:   m.Avatar,
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt,
		}
	}
	return api.Squad{
		ID:        s.ID,
		Name:      s.Name,
		Members:   members,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func sharesToAPI(shares []models.Share) []api.Share {
	out := make([]api.Share, len(shares))
	for i, s := range shares {
		out[i] = api.Share{MemberID: s.MemberID, Amount: s.Amount}
	}
	return out
}

func sharesFromAPI(shares []api.Share) []models.Share {
	out := make([]models.Share, len(shares))
	for i, s := range shares {
		out[i] = models.Share{MemberID: s.MemberID, Amount: s.Amount}
	}
	return out
}

func itemsFromAPI(items []api.ItemLine, newID func() string) []models.ItemLine {
	out := make([]models.ItemLine, len(items))
	for i, it := range items {
		id := it.ID
		if id == "" && newID != nil {
			id = newID()
		}
		assignments := make([]models.Assignment, len(it.Assignments))
		for j, a := range it.Assignments {
			assignments[j] = models.Assignment{MemberID: a.MemberID, Quantity: a.Quantity}
		}
		out[i] = models.ItemLine{
			ID:          id,
			Name:        it.Name,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Assignments: assignments,
		}
	}
	return out
}

func itemsToAPI(items []models.ItemLine) []api.ItemLine {
	if len(items) == 0 {
		return nil
	}
	out := make([]api.ItemLine, len(items))
	for i, it := range items {
		assignments := make([]api.Assignment, len(it.Assignments))
		for j, a := range it.Assignments {
			assignments[j] = api.Assignment{MemberID: a.MemberID, Quantity: a.Quantity}
		}
		out[i] = api.ItemLine{
			ID:          it.ID,
			Name:        it.Name,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Assignments: assignments,
		}
	}
	return out
}

func transactionToAPI(t models.Transaction) api.Transaction {
	return api.Transaction{
		ID:          t.ID,
		Kind:        string(t.Kind),
		Amount:      t.Amount,
		Description: t.Description,
		PayerID:     t.PayerID,
		OccurredAt:  t.OccurredAt,
		Shares:      sharesToAPI(t.Shares),
		Items:       itemsToAPI(t.Items),
		ReceiptRef:  t.ReceiptRef,
		CreatedAt:   t.CreatedAt,
	}
}

func balanceToAPI(b models.NetBalance) api.NetBalance {
	return api.NetBalance{DebtorID: b.DebtorID, CreditorID: b.CreditorID, Amount: b.Amount}
}

func balancesToAPI(balances []models.NetBalance) []api.NetBalance {
	out := make([]api.NetBalance, len(balances))
	for i, b := range balances {
		out[i] = balanceToAPI(b)
	}
	return out
}

func positionsToAPI(positions []calculator.MemberBalance) []api.MemberPosition {
	out := make([]api.MemberPosition, len(positions))
	for i, p := range positions {
		pos := api.MemberPosition{
			MemberID: p.MemberID,
			Owes:     p.Owes,
			Owed:     p.Owed,
			Net:      p.Net,
		}
		if p.LargestDebt != nil {
			b := balanceToAPI(*p.LargestDebt)
			pos.LargestDebt = &b
		}
		if p.LargestCredit != nil {
			b := balanceToAPI(*p.LargestCredit)
			pos.LargestCredit = &b
		}
		out[i] = pos
	}
	return out
}

func paymentsToAPI(edges []calculator.DebtEdge) []api.Payment {
	out := make([]api.Payment, len(edges))
	for i, e := range edges {
		out[i] = api.Payment{From: e.From, To: e.To, Amount: e.Amount}
	}
	return out
}

func ledgerResponse(tx *models.Transaction, ledger *models.Ledger) *api.LedgerResponse {
	resp := &api.LedgerResponse{
		Balances: balancesToAPI(ledger.Balances),
		Version:  ledger.Version,
	}
	if tx != nil {
		t := transactionToAPI(*tx)
		resp.Transaction = &t
	}
	return resp
}
