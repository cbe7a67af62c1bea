package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/squadledger/internal/ledger"
	"github.com/mmynk/squadledger/internal/middleware"
	"github.com/mmynk/squadledger/pkg/api"
)

var _ api.SquadServiceHandler = (*SquadService)(nil)

// SquadService implements the Connect SquadService.
type SquadService struct {
	ledger *ledger.Service
}

// NewSquadService creates a new SquadService on top of the ledger service.
func NewSquadService(l *ledger.Service) *SquadService {
	return &SquadService{ledger: l}
}

// CreateSquad creates a squad with the caller as its admin.
func (s *SquadService) CreateSquad(ctx context.Context, req *connect.Request[api.CreateSquadRequest]) (*connect.Response[api.SquadResponse], error) {
	caller, ok := middleware.Identity(ctx)
	if !ok {
		return nil, errUnauthenticated
	}
	slog.Info("CreateSquad request received", "name", req.Msg.Name, "caller", caller.ID)

	squad, err := s.ledger.CreateSquad(ctx, req.Msg.Name, caller)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SquadResponse{Squad: squadToAPI(squad)}), nil
}

// GetSquad returns a squad the caller belongs to.
func (s *SquadService) GetSquad(ctx context.Context, req *connect.Request[api.GetSquadRequest]) (*connect.Response[api.SquadResponse], error) {
	callerID := middleware.CallerID(ctx)
	if callerID == "" {
		return nil, errUnauthenticated
	}

	squad, err := s.ledger.RequireMember(ctx, req.Msg.SquadID, callerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SquadResponse{Squad: squadToAPI(squad)}), nil
}

// ListSquads returns every squad the caller belongs to.
func (s *SquadService) ListSquads(ctx context.Context, req *connect.Request[api.ListSquadsRequest]) (*connect.Response[api.ListSquadsResponse], error) {
	callerID := middleware.CallerID(ctx)
	if callerID == "" {
		return nil, errUnauthenticated
	}

	squads, err := s.ledger.SquadsFor(ctx, callerID)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]api.Squad, len(squads))
	for i, squad := range squads {
		out[i] = squadToAPI(squad)
	}
	slog.Debug("ListSquads successful", "caller", callerID, "count", len(out))
	return connect.NewResponse(&api.ListSquadsResponse{Squads: out}), nil
}

// RenameSquad changes the squad name. Admin only.
func (s *SquadService) RenameSquad(ctx context.Context, req *connect.Request[api.RenameSquadRequest]) (*connect.Response[api.SquadResponse], error) {
	callerID := middleware.CallerID(ctx)
	if callerID == "" {
		return nil, errUnauthenticated
	}

	if err := s.ledger.RenameSquad(ctx, callerID, req.Msg.SquadID, req.Msg.Name); err != nil {
		return nil, toConnectError(err)
	}
	return s.squadResponse(ctx, req.Msg.SquadID)
}

// DeleteSquad removes the squad and its ledger. Admin only.
func (s *SquadService) DeleteSquad(ctx context.Context, req *connect.Request[api.DeleteSquadRequest]) (*connect.Response[api.Empty], error) {
	callerID := middleware.CallerID(ctx)
	if callerID == "" {
		return nil, errUnauthenticated
	}

	if err := s.ledger.DeleteSquad(ctx, callerID, req.Msg.SquadID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.Empty{}), nil
}

// JoinSquad adds the caller to the squad as a MEMBER.
func (s *SquadService) JoinSquad(ctx context.Context, req *connect.Request[api.JoinSquadRequest]) (*connect.Response[api.SquadResponse], error) {
	caller, ok := middleware.Identity(ctx)
	if !ok {
		return nil, errUnauthenticated
	}

	squad, err := s.ledger.Join(ctx, req.Msg.SquadID, caller)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SquadResponse{Squad: squadToAPI(squad)}), nil
}

// RemoveMember removes another member. Admin only.
func (s *SquadService) RemoveMember(ctx context.Context, req *connect.Request[api.MemberRequest]) (*connect.Response[api.SquadResponse], error) {
	callerID := middleware.CallerID(ctx)
	if callerID == "" {
		return nil, errUnauthenticated
	}

	if err := s.ledger.RemoveMember(ctx, callerID, req.Msg.SquadID, req.Msg.MemberID); err != nil {
		return nil, toConnectError(err)
	}
	return s.squadResponse(ctx, req.Msg.SquadID)
}

// PromoteMember makes a member an admin. Admin only.
func (s *SquadService) PromoteMember(ctx context.Context, req *connect.Request[api.MemberRequest]) (*connect.Response[api.SquadResponse], error) {
	callerID := middleware.CallerID(ctx)
	if callerID == "" {
		return nil, errUnauthenticated
	}

	if err := s.ledger.PromoteMember(ctx, callerID, req.Msg.SquadID, req.Msg.MemberID); err != nil {
		return nil, toConnectError(err)
	}
	return s.squadResponse(ctx, req.Msg.SquadID)
}

func (s *SquadService) squadResponse(ctx context.Context, squadID string) (*connect.Response[api.SquadResponse], error) {
	squad, err := s.ledger.Squad(ctx, squadID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SquadResponse{Squad: squadToAPI(squad)}), nil
}
