// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/squadledger/internal/models"
)

// Store defines the persistence collaborator for squads and their ledgers.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, MongoDB)
// without changing the ledger service.
//
// Implementations report missing squads/members with models.ErrNotFound and
// lost optimistic races with models.ErrConflict.
type Store interface {
	// CreateSquad persists a new squad with its initial members and an empty ledger.
	// squad.ID and timestamps are populated by the store when unset.
	CreateSquad(ctx context.Context, squad *models.Squad) error

	// GetSquad retrieves a squad and its current members.
	GetSquad(ctx context.Context, squadID string) (*models.Squad, error)

	// ListSquadsForMember returns every squad the identity currently belongs to.
	ListSquadsForMember(ctx context.Context, memberID string) ([]*models.Squad, error)

	// RenameSquad changes the display name.
	RenameSquad(ctx context.Context, squadID, name string) error

	// DeleteSquad removes the squad, its members and its ledger.
	DeleteSquad(ctx context.Context, squadID string) error

	// AddMember adds an identity to the squad.
	// Returns models.ErrAlreadyMember if it is already present.
	AddMember(ctx context.Context, squadID string, member models.Member) error

	// RemoveMember deletes the membership; transactions naming the identity are untouched.
	RemoveMember(ctx context.Context, squadID, memberID string) error

	// SetMemberRole changes a member's role.
	SetMemberRole(ctx context.Context, squadID, memberID string, role models.Role) error

	// LoadMembers returns the squad's current members.
	LoadMembers(ctx context.Context, squadID string) ([]models.Member, error)

	// LoadLedger returns the committed transactions, balances and version.
	LoadLedger(ctx context.Context, squadID string) (*models.Ledger, error)

	// CommitLedger replaces the squad's transactions and balances in one atomic
	// write, provided the stored version still equals expectedVersion.
	// Returns the new version, or models.ErrConflict if another commit won.
	CommitLedger(ctx context.Context, squadID string, txs []models.Transaction, balances []models.NetBalance, expectedVersion int64) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
