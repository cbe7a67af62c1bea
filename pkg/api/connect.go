package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// Fully-qualified service names.
const (
	SquadServiceName  = "squadledger.v1.SquadService"
	LedgerServiceName = "squadledger.v1.LedgerService"
)

// Procedure paths, "/<service>/<method>".
const (
	SquadServiceCreateSquadProcedure        = "/squadledger.v1.SquadService/CreateSquad"
	SquadServiceGetSquadProcedure           = "/squadledger.v1.SquadService/GetSquad"
	SquadServiceListSquadsProcedure         = "/squadledger.v1.SquadService/ListSquads"
	SquadServiceRenameSquadProcedure        = "/squadledger.v1.SquadService/RenameSquad"
	SquadServiceDeleteSquadProcedure        = "/squadledger.v1.SquadService/DeleteSquad"
	SquadServiceJoinSquadProcedure          = "/squadledger.v1.SquadService/JoinSquad"
	SquadServiceRemoveMemberProcedure       = "/squadledger.v1.SquadService/RemoveMember"
	SquadServicePromoteMemberProcedure      = "/squadledger.v1.SquadService/PromoteMember"
	LedgerServicePreviewSplitProcedure      = "/squadledger.v1.LedgerService/PreviewSplit"
	LedgerServiceAddExpenseProcedure        = "/squadledger.v1.LedgerService/AddExpense"
	LedgerServiceReplaceExpenseProcedure    = "/squadledger.v1.LedgerService/ReplaceExpense"
	LedgerServiceDeleteTransactionProcedure = "/squadledger.v1.LedgerService/DeleteTransaction"
	LedgerServiceSettleUpProcedure          = "/squadledger.v1.LedgerService/SettleUp"
	LedgerServiceListTransactionsProcedure  = "/squadledger.v1.LedgerService/ListTransactions"
	LedgerServiceGetBalancesProcedure       = "/squadledger.v1.LedgerService/GetBalances"
)

// handlerOptions puts the JSON codec ahead of caller options.
func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
}

// SquadServiceHandler is implemented by the server side of SquadService.
// SquadService manages squads and their membership.
type SquadServiceHandler interface {
	CreateSquad(context.Context, *connect.Request[CreateSquadRequest]) (*connect.Response[SquadResponse], error)
	GetSquad(context.Context, *connect.Request[GetSquadRequest]) (*connect.Response[SquadResponse], error)
	ListSquads(context.Context, *connect.Request[ListSquadsRequest]) (*connect.Response[ListSquadsResponse], error)
	RenameSquad(context.Context, *connect.Request[RenameSquadRequest]) (*connect.Response[SquadResponse], error)
	DeleteSquad(context.Context, *connect.Request[DeleteSquadRequest]) (*connect.Response[Empty], error)
	JoinSquad(context.Context, *connect.Request[JoinSquadRequest]) (*connect.Response[SquadResponse], error)
	RemoveMember(context.Context, *connect.Request[MemberRequest]) (*connect.Response[SquadResponse], error)
	PromoteMember(context.Context, *connect.Request[MemberRequest]) (*connect.Response[SquadResponse], error)
}

// NewSquadServiceHandler builds an HTTP handler serving every SquadService procedure.
// It returns the path prefix to mount the handler on.
func NewSquadServiceHandler(svc SquadServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	handlers := map[string]http.Handler{
		SquadServiceCreateSquadProcedure:   connect.NewUnaryHandler(SquadServiceCreateSquadProcedure, svc.CreateSquad, opts...),
		SquadServiceGetSquadProcedure:      connect.NewUnaryHandler(SquadServiceGetSquadProcedure, svc.GetSquad, opts...),
		SquadServiceListSquadsProcedure:    connect.NewUnaryHandler(SquadServiceListSquadsProcedure, svc.ListSquads, opts...),
		SquadServiceRenameSquadProcedure:   connect.NewUnaryHandler(SquadServiceRenameSquadProcedure, svc.RenameSquad, opts...),
		SquadServiceDeleteSquadProcedure:   connect.NewUnaryHandler(SquadServiceDeleteSquadProcedure, svc.DeleteSquad, opts...),
		SquadServiceJoinSquadProcedure:     connect.NewUnaryHandler(SquadServiceJoinSquadProcedure, svc.JoinSquad, opts...),
		SquadServiceRemoveMemberProcedure:  connect.NewUnaryHandler(SquadServiceRemoveMemberProcedure, svc.RemoveMember, opts...),
		SquadServicePromoteMemberProcedure: connect.NewUnaryHandler(SquadServicePromoteMemberProcedure, svc.PromoteMember, opts...),
	}
	return "/" + SquadServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// SquadServiceClient is a client for SquadService.
type SquadServiceClient struct {
	createSquad   *connect.Client[CreateSquadRequest, SquadResponse]
	getSquad      *connect.Client[GetSquadRequest, SquadResponse]
	listSquads    *connect.Client[ListSquadsRequest, ListSquadsResponse]
	renameSquad   *connect.Client[RenameSquadRequest, SquadResponse]
	deleteSquad   *connect.Client[DeleteSquadRequest, Empty]
	joinSquad     *connect.Client[JoinSquadRequest, SquadResponse]
	removeMember  *connect.Client[MemberRequest, SquadResponse]
	promoteMember *connect.Client[MemberRequest, SquadResponse]
}

// NewSquadServiceClient constructs a client for SquadService at baseURL (e.g. http://localhost:8080).
func NewSquadServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SquadServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &SquadServiceClient{
		createSquad:   connect.NewClient[CreateSquadRequest, SquadResponse](httpClient, baseURL+SquadServiceCreateSquadProcedure, opts...),
		getSquad:      connect.NewClient[GetSquadRequest, SquadResponse](httpClient, baseURL+SquadServiceGetSquadProcedure, opts...),
		listSquads:    connect.NewClient[ListSquadsRequest, ListSquadsResponse](httpClient, baseURL+SquadServiceListSquadsProcedure, opts...),
		renameSquad:   connect.NewClient[RenameSquadRequest, SquadResponse](httpClient, baseURL+SquadServiceRenameSquadProcedure, opts...),
		deleteSquad:   connect.NewClient[DeleteSquadRequest, Empty](httpClient, baseURL+SquadServiceDeleteSquadProcedure, opts...),
		joinSquad:     connect.NewClient[JoinSquadRequest, SquadResponse](httpClient, baseURL+SquadServiceJoinSquadProcedure, opts...),
		removeMember:  connect.NewClient[MemberRequest, SquadResponse](httpClient, baseURL+SquadServiceRemoveMemberProcedure, opts...),
		promoteMember: connect.NewClient[MemberRequest, SquadResponse](httpClient, baseURL+SquadServicePromoteMemberProcedure, opts...),
	}
}

// CreateSquad calls SquadService.CreateSquad.
func (c *SquadServiceClient) CreateSquad(ctx context.Context, req *connect.Request[CreateSquadRequest]) (*connect.Response[SquadResponse], error) {
	return c.createSquad.CallUnary(ctx, req)
}

// GetSquad calls SquadService.GetSquad.
func (c *SquadServiceClient) GetSquad(ctx context.Context, req *connect.Request[GetSquadRequest]) (*connect.Response[SquadResponse], error) {
	return c.getSquad.CallUnary(ctx, req)
}

// ListSquads calls SquadService.ListSquads.
func (c *SquadServiceClient) ListSquads(ctx context.Context, req *connect.Request[ListSquadsRequest]) (*connect.Response[ListSquadsResponse], error) {
	return c.listSquads.CallUnary(ctx, req)
}

// RenameSquad calls SquadService.RenameSquad.
func (c *SquadServiceClient) RenameSquad(ctx context.Context, req *connect.Request[RenameSquadRequest]) (*connect.Response[SquadResponse], error) {
	return c.renameSquad.CallUnary(ctx, req)
}

// DeleteSquad calls SquadService.DeleteSquad.
func (c *SquadServiceClient) DeleteSquad(ctx context.Context, req *connect.Request[DeleteSquadRequest]) (*connect.Response[Empty], error) {
	return c.deleteSquad.CallUnary(ctx, req)
}

// JoinSquad calls SquadService.JoinSquad.
func (c *SquadServiceClient) JoinSquad(ctx context.Context, req *connect.Request[JoinSquadRequest]) (*connect.Response[SquadResponse], error) {
	return c.joinSquad.CallUnary(ctx, req)
}

// RemoveMember calls SquadService.RemoveMember.
func (c *SquadServiceClient) RemoveMember(ctx context.Context, req *connect.Request[MemberRequest]) (*connect.Response[SquadResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

// PromoteMember calls SquadService.PromoteMember.
func (c *SquadServiceClient) PromoteMember(ctx context.Context, req *connect.Request[MemberRequest]) (*connect.Response[SquadResponse], error) {
	return c.promoteMember.CallUnary(ctx, req)
}

// LedgerServiceHandler is implemented by the server side of LedgerService.
// LedgerService records expenses and settlements and reports balances.
type LedgerServiceHandler interface {
	PreviewSplit(context.Context, *connect.Request[PreviewSplitRequest]) (*connect.Response[PreviewSplitResponse], error)
	AddExpense(context.Context, *connect.Request[AddExpenseRequest]) (*connect.Response[LedgerResponse], error)
	ReplaceExpense(context.Context, *connect.Request[ReplaceExpenseRequest]) (*connect.Response[LedgerResponse], error)
	DeleteTransaction(context.Context, *connect.Request[DeleteTransactionRequest]) (*connect.Response[LedgerResponse], error)
	SettleUp(context.Context, *connect.Request[SettleUpRequest]) (*connect.Response[LedgerResponse], error)
	ListTransactions(context.Context, *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error)
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler serving every LedgerService procedure.
// It returns the path prefix to mount the handler on.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	handlers := map[string]http.Handler{
		LedgerServicePreviewSplitProcedure:      connect.NewUnaryHandler(LedgerServicePreviewSplitProcedure, svc.PreviewSplit, opts...),
		LedgerServiceAddExpenseProcedure:        connect.NewUnaryHandler(LedgerServiceAddExpenseProcedure, svc.AddExpense, opts...),
		LedgerServiceReplaceExpenseProcedure:    connect.NewUnaryHandler(LedgerServiceReplaceExpenseProcedure, svc.ReplaceExpense, opts...),
		LedgerServiceDeleteTransactionProcedure: connect.NewUnaryHandler(LedgerServiceDeleteTransactionProcedure, svc.DeleteTransaction, opts...),
		LedgerServiceSettleUpProcedure:          connect.NewUnaryHandler(LedgerServiceSettleUpProcedure, svc.SettleUp, opts...),
		LedgerServiceListTransactionsProcedure:  connect.NewUnaryHandler(LedgerServiceListTransactionsProcedure, svc.ListTransactions, opts...),
		LedgerServiceGetBalancesProcedure:       connect.NewUnaryHandler(LedgerServiceGetBalancesProcedure, svc.GetBalances, opts...),
	}
	return "/" + LedgerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// LedgerServiceClient is a client for LedgerService.
type LedgerServiceClient struct {
	previewSplit      *connect.Client[PreviewSplitRequest, PreviewSplitResponse]
	addExpense        *connect.Client[AddExpenseRequest, LedgerResponse]
	replaceExpense    *connect.Client[ReplaceExpenseRequest, LedgerResponse]
	deleteTransaction *connect.Client[DeleteTransactionRequest, LedgerResponse]
	settleUp          *connect.Client[SettleUpRequest, LedgerResponse]
	listTransactions  *connect.Client[ListTransactionsRequest, ListTransactionsResponse]
	getBalances       *connect.Client[GetBalancesRequest, GetBalancesResponse]
}

// NewLedgerServiceClient constructs a client for LedgerService at baseURL (e.g. http://localhost:8080).
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &LedgerServiceClient{
		previewSplit:      connect.NewClient[PreviewSplitRequest, PreviewSplitResponse](httpClient, baseURL+LedgerServicePreviewSplitProcedure, opts...),
		addExpense:        connect.NewClient[AddExpenseRequest, LedgerResponse](httpClient, baseURL+LedgerServiceAddExpenseProcedure, opts...),
		replaceExpense:    connect.NewClient[ReplaceExpenseRequest, LedgerResponse](httpClient, baseURL+LedgerServiceReplaceExpenseProcedure, opts...),
		deleteTransaction: connect.NewClient[DeleteTransactionRequest, LedgerResponse](httpClient, baseURL+LedgerServiceDeleteTransactionProcedure, opts...),
		settleUp:          connect.NewClient[SettleUpRequest, LedgerResponse](httpClient, baseURL+LedgerServiceSettleUpProcedure, opts...),
		listTransactions:  connect.NewClient[ListTransactionsRequest, ListTransactionsResponse](httpClient, baseURL+LedgerServiceListTransactionsProcedure, opts...),
		getBalances:       connect.NewClient[GetBalancesRequest, GetBalancesResponse](httpClient, baseURL+LedgerServiceGetBalancesProcedure, opts...),
	}
}

// PreviewSplit calls LedgerService.PreviewSplit.
func (c *LedgerServiceClient) PreviewSplit(ctx context.Context, req *connect.Request[PreviewSplitRequest]) (*connect.Response[PreviewSplitResponse], error) {
	return c.previewSplit.CallUnary(ctx, req)
}

// AddExpense calls LedgerService.AddExpense.
func (c *LedgerServiceClient) AddExpense(ctx context.Context, req *connect.Request[AddExpenseRequest]) (*connect.Response[LedgerResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

// ReplaceExpense calls LedgerService.ReplaceExpense.
func (c *LedgerServiceClient) ReplaceExpense(ctx context.Context, req *connect.Request[ReplaceExpenseRequest]) (*connect.Response[LedgerResponse], error) {
	return c.replaceExpense.CallUnary(ctx, req)
}

// DeleteTransaction calls LedgerService.DeleteTransaction.
func (c *LedgerServiceClient) DeleteTransaction(ctx context.Context, req *connect.Request[DeleteTransactionRequest]) (*connect.Response[LedgerResponse], error) {
	return c.deleteTransaction.CallUnary(ctx, req)
}

// SettleUp calls LedgerService.SettleUp.
func (c *LedgerServiceClient) SettleUp(ctx context.Context, req *connect.Request[SettleUpRequest]) (*connect.Response[LedgerResponse], error) {
	return c.settleUp.CallUnary(ctx, req)
}

// ListTransactions calls LedgerService.ListTransactions.
func (c *LedgerServiceClient) ListTransactions(ctx context.Context, req *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

// GetBalances calls LedgerService.GetBalances.
func (c *LedgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}
