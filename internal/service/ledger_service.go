package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/squadledger/internal/calculator"
	"github.com/mmynk/squadledger/internal/ledger"
	"github.com/mmynk/squadledger/internal/middleware"
	"github.com/mmynk/squadledger/internal/models"
	"github.com/mmynk/squadledger/pkg/api"
)

var _ api.LedgerServiceHandler = (*LedgerService)(nil)

// LedgerService implements the Connect LedgerService.
type LedgerService struct {
	ledger *ledger.Service
}

// NewLedgerService creates a new LedgerService on top of the ledger service.
func NewLedgerService(l *ledger.Service) *LedgerService {
	return &LedgerService{ledger: l}
}

// PreviewSplit runs the split allocator without recording anything.
func (s *LedgerService) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	slog.Debug("PreviewSplit request received",
		"amount", req.Msg.Amount,
		"members_count", len(req.Msg.Members),
		"items_count", len(req.Msg.Items),
	)

	if len(req.Msg.Items) > 0 {
		items := itemsFromAPI(req.Msg.Items, nil)
		shares, members, err := calculator.ItemizedSplit(items, req.Msg.Members)
		if err != nil {
			return nil, toConnectError(err)
		}
		return connect.NewResponse(&api.PreviewSplitResponse{
			Total:   calculator.ItemsTotal(items),
			Shares:  sharesToAPI(shares),
			Members: members,
		}), nil
	}

	shares, err := calculator.EqualSplit(req.Msg.Amount, req.Msg.Members)
	if err != nil {
		return nil, toConnectError(err)
	}
	members := make([]string, len(shares))
	for i, sh := range shares {
		members[i] = sh.MemberID
	}
	return connect.NewResponse(&api.PreviewSplitResponse{
		Total:   req.Msg.Amount,
		Shares:  sharesToAPI(shares),
		Members: members,
	}), nil
}

// AddExpense records a new expense in the squad.
func (s *LedgerService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.LedgerResponse], error) {
	callerID := middleware.CallerID(ctx)
	if callerID == "" {
		return nil, errUnauthenticated
	}
	slog.Info("AddExpense request received",
		"squad_id", req.Msg.SquadID,
		"amount", req.Msg.Expense.Amount,
		"items_count", len(req.Msg.Expense.Items),
		"caller", callerID,
	)

	squad, err := s.ledger.RequireMember(ctx, req.Msg.SquadID, callerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	tx, err := buildExpense(req.Msg.Expense, squad, callerID)
	if err != nil {
		return nil, toConnectError(err)
	}

	res, err := s.ledger.AddTransaction(ctx, squad.ID, tx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(ledgerResponse(res.Transaction, res.Ledger)), nil
}

// ReplaceExpense swaps an existing transaction for a rebuilt one.
func (s *LedgerService) ReplaceExpense(ctx context.Context, req *connect.Request[api.ReplaceExpenseRequest]) (*connect.Response[api.LedgerResponse], error) {
	callerID := middleware.CallerID(ctx)
	if callerID == "" {
		return nil, errUnauthenticated
	}
	slog.Info("ReplaceExpense request received",
		"squad_id", req.Msg.SquadID,
		"transaction_id", req.Msg.TransactionID,
		"caller", callerID,
	)

	squad, err := s.ledger.RequireMember(ctx, req.Msg.SquadID, callerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	tx, err := buildExpense(req.Msg.Expense, squad, callerID)
	if err != nil {
		return nil, toConnectError(err)
	}

	res, err := s.ledger.ReplaceTransaction(ctx, squad.ID, req.Msg.TransactionID, tx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(ledgerResponse(res.Transaction, res.Ledger)), nil
}

// DeleteTransaction removes a transaction (expense or settlement).
func (s *LedgerService) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.LedgerResponse], error) {
	callerID := middleware.CallerID(ctx)
	if callerID == "" {
		return nil, errUnauthenticated
	}
	if _, err := s.ledger.RequireMember(ctx, req.Msg.SquadID, callerID); err != nil {
		return nil, toConnectError(err)
	}

	l, err := s.ledger.RemoveTransaction(ctx, req.Msg.SquadID, req.Msg.TransactionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(ledgerResponse(nil, l)), nil
}

// SettleUp records a settlement for the given member, the caller by default.
func (s *LedgerService) SettleUp(ctx context.Context, req *connect.Request[api.SettleUpRequest]) (*connect.Response[api.LedgerResponse], error) {
	callerID := middleware.CallerID(ctx)
	if callerID == "" {
		return nil, errUnauthenticated
	}
	if _, err := s.ledger.RequireMember(ctx, req.Msg.SquadID, callerID); err != nil {
		return nil, toConnectError(err)
	}

	memberID := req.Msg.MemberID
	if memberID == "" {
		memberID = callerID
	}
	res, err := s.ledger.Settle(ctx, req.Msg.SquadID, memberID, req.Msg.CounterpartyID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(ledgerResponse(res.Transaction, res.Ledger)), nil
}

// ListTransactions returns the squad's history, oldest first.
func (s *LedgerService) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	callerID := middleware.CallerID(ctx)
	if callerID == "" {
		return nil, errUnauthenticated
	}
	if _, err := s.ledger.RequireMember(ctx, req.Msg.SquadID, callerID); err != nil {
		return nil, toConnectError(err)
	}

	l, err := s.ledger.Ledger(ctx, req.Msg.SquadID)
	if err != nil {
		return nil, toConnectError(err)
	}
	txs := make([]api.Transaction, len(l.Transactions))
	for i, t := range l.Transactions {
		txs[i] = transactionToAPI(t)
	}
	return connect.NewResponse(&api.ListTransactionsResponse{Transactions: txs, Version: l.Version}), nil
}

// GetBalances returns the pairwise balances plus per-member positions and
// suggested payments.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	callerID := middleware.CallerID(ctx)
	if callerID == "" {
		return nil, errUnauthenticated
	}
	if _, err := s.ledger.RequireMember(ctx, req.Msg.SquadID, callerID); err != nil {
		return nil, toConnectError(err)
	}

	l, err := s.ledger.Ledger(ctx, req.Msg.SquadID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetBalancesResponse{
		Balances:    balancesToAPI(l.Balances),
		Positions:   positionsToAPI(calculator.MemberBalances(l.Balances)),
		Suggestions: paymentsToAPI(calculator.SuggestPayments(l.Balances)),
		Version:     l.Version,
	}), nil
}

// buildExpense turns an API expense into a transaction. The payer defaults to
// the caller; an equal split with no members covers every current member.
func buildExpense(e api.Expense, squad *models.Squad, callerID string) (models.Transaction, error) {
	d := calculator.Details{
		Description: e.Description,
		PayerID:     e.PayerID,
		OccurredAt:  e.OccurredAt,
		ReceiptRef:  e.ReceiptRef,
	}
	if d.PayerID == "" {
		d.PayerID = callerID
	}

	switch {
	case len(e.Items) > 0:
		items := itemsFromAPI(e.Items, func() string { return uuid.New().String() })
		tx, _, err := calculator.ItemizedExpense(d, items, e.Members)
		return tx, err
	case len(e.Shares) > 0:
		return calculator.CustomExpense(d, e.Amount, sharesFromAPI(e.Shares))
	default:
		members := e.Members
		if len(members) == 0 {
			members = make([]string, len(squad.Members))
			for i, m := range squad.Members {
				members[i] = m.ID
			}
		}
		return calculator.EqualExpense(d, e.Amount, members)
	}
}
