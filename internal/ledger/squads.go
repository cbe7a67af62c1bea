package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/squadledger/internal/models"
)

// CreateSquad creates a squad with creator as its sole ADMIN.
// An empty name is replaced by one derived from the creator.
func (s *Service) CreateSquad(ctx context.Context, name string, creator models.Member) (*models.Squad, error) {
	if creator.ID == "" {
		return nil, fmt.Errorf("%w: creator identity is required", models.ErrInvalidSquad)
	}
	creator.Role = models.RoleAdmin
	creator.JoinedAt = s.now().Unix()

	squad := &models.Squad{
		Name:      strings.TrimSpace(name),
		Members:   []models.Member{creator},
		CreatedAt: creator.JoinedAt,
	}
	if err := s.store.CreateSquad(ctx, squad); err != nil {
		slog.Error("CreateSquad failed", "creator", creator.ID, "error", err)
		return nil, storageError("create squad", err)
	}

	slog.Info("Squad created", "squad_id", squad.ID, "name", squad.Name, "creator", creator.ID)
	return squad, nil
}

// Squad returns a squad with its members.
func (s *Service) Squad(ctx context.Context, squadID string) (*models.Squad, error) {
	squad, err := s.store.GetSquad(ctx, squadID)
	if err != nil {
		return nil, storageError("get squad", err)
	}
	return squad, nil
}

// SquadsFor lists the squads memberID belongs to.
func (s *Service) SquadsFor(ctx context.Context, memberID string) ([]*models.Squad, error) {
	squads, err := s.store.ListSquadsForMember(ctx, memberID)
	if err != nil {
		return nil, storageError("list squads", err)
	}
	return squads, nil
}

// RequireMember returns the squad if memberID currently belongs to it, and
// models.ErrForbidden otherwise.
func (s *Service) RequireMember(ctx context.Context, squadID, memberID string) (*models.Squad, error) {
	squad, err := s.Squad(ctx, squadID)
	if err != nil {
		return nil, err
	}
	if !squad.HasMember(memberID) {
		return nil, fmt.Errorf("%w: %s is not a member of squad %s", models.ErrForbidden, memberID, squadID)
	}
	return squad, nil
}

func (s *Service) requireAdmin(ctx context.Context, squadID, actorID string) (*models.Squad, error) {
	squad, err := s.RequireMember(ctx, squadID, actorID)
	if err != nil {
		return nil, err
	}
	if m, _ := squad.Member(actorID); !m.IsAdmin() {
		return nil, fmt.Errorf("%w: %s is not an admin of squad %s", models.ErrForbidden, actorID, squadID)
	}
	return squad, nil
}

// RenameSquad changes the squad name. Admin only.
func (s *Service) RenameSquad(ctx context.Context, actorID, squadID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: squad name is required", models.ErrInvalidSquad)
	}
	if _, err := s.requireAdmin(ctx, squadID, actorID); err != nil {
		return err
	}
	if err := s.store.RenameSquad(ctx, squadID, name); err != nil {
		return storageError("rename squad", err)
	}
	slog.Info("Squad renamed", "squad_id", squadID, "name", name)
	return nil
}

// DeleteSquad removes the squad and its ledger. Admin only.
func (s *Service) DeleteSquad(ctx context.Context, actorID, squadID string) error {
	if _, err := s.requireAdmin(ctx, squadID, actorID); err != nil {
		return err
	}
	if err := s.store.DeleteSquad(ctx, squadID); err != nil {
		return storageError("delete squad", err)
	}
	slog.Info("Squad deleted", "squad_id", squadID, "actor", actorID)
	return nil
}

// Join adds member to the squad as a MEMBER.
func (s *Service) Join(ctx context.Context, squadID string, member models.Member) (*models.Squad, error) {
	if member.ID == "" {
		return nil, fmt.Errorf("%w: member identity is required", models.ErrInvalidSquad)
	}
	member.Role = models.RoleMember
	member.JoinedAt = s.now().Unix()
	if err := s.store.AddMember(ctx, squadID, member); err != nil {
		slog.Error("Join failed", "squad_id", squadID, "member_id", member.ID, "error", err)
		return nil, storageError("add member", err)
	}
	slog.Info("Member joined", "squad_id", squadID, "member_id", member.ID)
	return s.Squad(ctx, squadID)
}

// RemoveMember deletes memberID's membership. Admin only; an admin cannot
// remove themselves. The member's transactions stay in history.
func (s *Service) RemoveMember(ctx context.Context, actorID, squadID, memberID string) error {
	if actorID == memberID {
		return fmt.Errorf("%w: admins cannot remove themselves", models.ErrForbidden)
	}
	squad, err := s.requireAdmin(ctx, squadID, actorID)
	if err != nil {
		return err
	}
	if !squad.HasMember(memberID) {
		return fmt.Errorf("member %s of squad %s: %w", memberID, squadID, models.ErrNotFound)
	}
	if err := s.store.RemoveMember(ctx, squadID, memberID); err != nil {
		return storageError("remove member", err)
	}
	slog.Info("Member removed", "squad_id", squadID, "member_id", memberID, "actor", actorID)
	return nil
}

// PromoteMember makes memberID an ADMIN. Admin only.
func (s *Service) PromoteMember(ctx context.Context, actorID, squadID, memberID string) error {
	squad, err := s.requireAdmin(ctx, squadID, actorID)
	if err != nil {
		return err
	}
	if !squad.HasMember(memberID) {
		return fmt.Errorf("member %s of squad %s: %w", memberID, squadID, models.ErrNotFound)
	}
	if err := s.store.SetMemberRole(ctx, squadID, memberID, models.RoleAdmin); err != nil {
		return storageError("promote member", err)
	}
	slog.Info("Member promoted", "squad_id", squadID, "member_id", memberID, "actor", actorID)
	return nil
}
