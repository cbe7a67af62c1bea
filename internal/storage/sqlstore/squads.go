package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/squadledger/internal/models"
)

// CreateSquad persists a new squad, its initial members and an empty ledger.
func (s *Store) CreateSquad(ctx context.Context, squad *models.Squad) error {
	now := s.now().Unix()
	if squad.ID == "" {
		squad.ID = uuid.New().String()
	}
	if squad.CreatedAt == 0 {
		squad.CreatedAt = now
	}
	squad.UpdatedAt = squad.CreatedAt
	if squad.Name == "" {
		squad.Name = defaultSquadName(squad.Members)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		s.q("INSERT INTO squads (id, name, ledger_version, created_at, updated_at) VALUES (?, ?, 0, ?, ?)"),
		squad.ID, squad.Name, squad.CreatedAt, squad.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert squad: %w", err)
	}

	for i := range squad.Members {
		m := &squad.Members[i]
		if m.JoinedAt == 0 {
			m.JoinedAt = squad.CreatedAt
		}
		if err := s.insertMember(ctx, tx, squad.ID, *m); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) insertMember(ctx context.Context, ex execer, squadID string, m models.Member) error {
	_, err := ex.ExecContext(ctx,
		s.q("INSERT INTO squad_members (squad_id, member_id, name, avatar, role, joined_at) VALUES (?, ?, ?, ?, ?, ?)"),
		squadID, m.ID, m.Name, m.Avatar, string(m.Role), m.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// GetSquad retrieves a squad with its members ordered by join time.
func (s *Store) GetSquad(ctx context.Context, squadID string) (*models.Squad, error) {
	squad := &models.Squad{}
	err := s.db.QueryRowContext(ctx,
		s.q("SELECT id, name, created_at, updated_at FROM squads WHERE id = ?"),
		squadID,
	).Scan(&squad.ID, &squad.Name, &squad.CreatedAt, &squad.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("squad %s: %w", squadID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get squad: %w", err)
	}

	members, err := s.membersOf(ctx, squadID)
	if err != nil {
		return nil, err
	}
	squad.Members = members[squadID]
	return squad, nil
}

// ListSquadsForMember returns the member's squads, oldest first.
func (s *Store) ListSquadsForMember(ctx context.Context, memberID string) ([]*models.Squad, error) {
	query := `
		SELECT s.id, s.name, s.created_at, s.updated_at
		FROM squads s
		JOIN squad_members m ON m.squad_id = s.id
		WHERE m.member_id = ?
		ORDER BY s.created_at, s.id
	`
	rows, err := s.db.QueryContext(ctx, s.q(query), memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list squads: %w", err)
	}
	defer rows.Close()

	var squads []*models.Squad
	var ids []string
	for rows.Next() {
		squad := &models.Squad{}
		if err := rows.Scan(&squad.ID, &squad.Name, &squad.CreatedAt, &squad.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan squad: %w", err)
		}
		squads = append(squads, squad)
		ids = append(ids, squad.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating squads: %w", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return []*models.Squad{}, nil
	}

	members, err := s.membersOf(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for _, squad := range squads {
		squad.Members = members[squad.ID]
	}
	return squads, nil
}

// membersOf loads members for the given squads in one query, keyed by squad id.
func (s *Store) membersOf(ctx context.Context, squadIDs ...string) (map[string][]models.Member, error) {
	query := `
		SELECT squad_id, member_id, name, avatar, role, joined_at
		FROM squad_members
		WHERE squad_id IN (?` + repeatPlaceholder(len(squadIDs)-1) + `)
		ORDER BY joined_at, member_id
	`
	args := make([]any, len(squadIDs))
	for i, id := range squadIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Member, len(squadIDs))
	for rows.Next() {
		var squadID, role string
		var m models.Member
		if err := rows.Scan(&squadID, &m.ID, &m.Name, &m.Avatar, &role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.Role = models.Role(role)
		out[squadID] = append(out[squadID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}
	return out, nil
}

// RenameSquad changes the squad's display name.
func (s *Store) RenameSquad(ctx context.Context, squadID, name string) error {
	result, err := s.db.ExecContext(ctx,
		s.q("UPDATE squads SET name = ?, updated_at = ? WHERE id = ?"),
		name, s.now().Unix(), squadID,
	)
	if err != nil {
		return fmt.Errorf("failed to rename squad: %w", err)
	}
	return requireAffected(result, "squad "+squadID)
}

// DeleteSquad removes the squad together with its members and ledger rows.
func (s *Store) DeleteSquad(ctx context.Context, squadID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.clearLedger(ctx, tx, squadID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, s.q("DELETE FROM squad_members WHERE squad_id = ?"), squadID); err != nil {
		return fmt.Errorf("failed to delete members: %w", err)
	}
	result, err := tx.ExecContext(ctx, s.q("DELETE FROM squads WHERE id = ?"), squadID)
	if err != nil {
		return fmt.Errorf("failed to delete squad: %w", err)
	}
	if err := requireAffected(result, "squad "+squadID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AddMember adds an identity to an existing squad.
func (s *Store) AddMember(ctx context.Context, squadID string, member models.Member) error {
	if member.JoinedAt == 0 {
		member.JoinedAt = s.now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := s.squadExists(ctx, tx, squadID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("squad %s: %w", squadID, models.ErrNotFound)
	}

	var one int
	err = tx.QueryRowContext(ctx,
		s.q("SELECT 1 FROM squad_members WHERE squad_id = ? AND member_id = ?"),
		squadID, member.ID,
	).Scan(&one)
	switch {
	case err == nil:
		return fmt.Errorf("%s in squad %s: %w", member.ID, squadID, models.ErrAlreadyMember)
	case err != sql.ErrNoRows:
		return fmt.Errorf("failed to look up member: %w", err)
	}

	if err := s.insertMember(ctx, tx, squadID, member); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, s.q("UPDATE squads SET updated_at = ? WHERE id = ?"), s.now().Unix(), squadID); err != nil {
		return fmt.Errorf("failed to touch squad: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RemoveMember deletes the membership row only.
func (s *Store) RemoveMember(ctx context.Context, squadID, memberID string) error {
	result, err := s.db.ExecContext(ctx,
		s.q("DELETE FROM squad_members WHERE squad_id = ? AND member_id = ?"),
		squadID, memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("member %s of squad %s", memberID, squadID))
}

// SetMemberRole changes a member's role.
func (s *Store) SetMemberRole(ctx context.Context, squadID, memberID string, role models.Role) error {
	result, err := s.db.ExecContext(ctx,
		s.q("UPDATE squad_members SET role = ? WHERE squad_id = ? AND member_id = ?"),
		string(role), squadID, memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to set member role: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("member %s of squad %s", memberID, squadID))
}

// LoadMembers returns the squad's current members.
func (s *Store) LoadMembers(ctx context.Context, squadID string) ([]models.Member, error) {
	exists, err := s.squadExists(ctx, s.db, squadID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("squad %s: %w", squadID, models.ErrNotFound)
	}

	members, err := s.membersOf(ctx, squadID)
	if err != nil {
		return nil, err
	}
	if members[squadID] == nil {
		return []models.Member{}, nil
	}
	return members[squadID], nil
}

func requireAffected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return nil
}

// defaultSquadName builds a name from the founding members when none is given.
func defaultSquadName(members []models.Member) string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		if m.Name != "" {
			names = append(names, m.Name)
		} else {
			names = append(names, m.ID)
		}
	}
	switch {
	case len(names) == 0:
		return "New squad"
	case len(names) <= 3:
		return fmt.Sprintf("Squad with %s", strings.Join(names, ", "))
	default:
		return fmt.Sprintf("Squad with %s and %d others", strings.Join(names[:2], ", "), len(names)-2)
	}
}
