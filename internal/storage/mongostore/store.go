package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mmynk/squadledger/internal/models"
	"github.com/mmynk/squadledger/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store on MongoDB collections.
type Store struct {
	provider CollectionProvider
	closer   func(context.Context) error
	now      func() time.Time
}

// NewStore creates a Store reading and writing through provider.
func NewStore(provider CollectionProvider) *Store {
	return &Store{provider: provider, now: time.Now}
}

// Open connects to uri, ensures indexes and returns a Store that disconnects on Close.
func Open(ctx context.Context, uri, dbName string, logger *slog.Logger) (*Store, error) {
	client, err := Connect(ctx, uri, logger)
	if err != nil {
		return nil, err
	}
	if err := EnsureIndexes(ctx, client, dbName); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	s := NewStore(NewMongoProvider(client, dbName))
	s.closer = client.Disconnect
	return s, nil
}

// Close disconnects the underlying client, if the store owns one.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.closer(ctx)
}

func (s *Store) squads() Collection  { return s.provider.Collection(SquadsCollection) }
func (s *Store) ledgers() Collection { return s.provider.Collection(LedgersCollection) }

// CreateSquad inserts the squad document. The ledger document is created by
// the first commit.
func (s *Store) CreateSquad(ctx context.Context, squad *models.Squad) error {
	now := s.now().Unix()
	if squad.ID == "" {
		squad.ID = uuid.New().String()
	}
	if squad.CreatedAt == 0 {
		squad.CreatedAt = now
	}
	squad.UpdatedAt = squad.CreatedAt
	if squad.Members == nil {
		squad.Members = []models.Member{}
	}
	for i := range squad.Members {
		if squad.Members[i].JoinedAt == 0 {
			squad.Members[i].JoinedAt = squad.CreatedAt
		}
	}

	if _, err := s.squads().InsertOne(ctx, squad); err != nil {
		return fmt.Errorf("failed to insert squad: %w", err)
	}
	return nil
}

// GetSquad retrieves a squad with its embedded members.
func (s *Store) GetSquad(ctx context.Context, squadID string) (*models.Squad, error) {
	var squad models.Squad
	err := s.squads().FindOne(ctx, bson.M{"_id": squadID}).Decode(&squad)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("squad %s: %w", squadID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get squad: %w", err)
	}
	return &squad, nil
}

// ListSquadsForMember returns the member's squads, oldest first.
func (s *Store) ListSquadsForMember(ctx context.Context, memberID string) ([]*models.Squad, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.squads().Find(ctx, bson.M{"members.id": memberID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list squads: %w", err)
	}

	squads := []*models.Squad{}
	if err := cursor.All(ctx, &squads); err != nil {
		return nil, fmt.Errorf("failed to decode squads: %w", err)
	}
	return squads, nil
}

// RenameSquad changes the squad's display name.
func (s *Store) RenameSquad(ctx context.Context, squadID, name string) error {
	result, err := s.squads().UpdateOne(ctx,
		bson.M{"_id": squadID},
		bson.M{"$set": bson.M{"name": name, "updatedAt": s.now().Unix()}},
	)
	if err != nil {
		return fmt.Errorf("failed to rename squad: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("squad %s: %w", squadID, models.ErrNotFound)
	}
	return nil
}

// DeleteSquad removes the squad document and its ledger.
func (s *Store) DeleteSquad(ctx context.Context, squadID string) error {
	result, err := s.squads().DeleteOne(ctx, bson.M{"_id": squadID})
	if err != nil {
		return fmt.Errorf("failed to delete squad: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("squad %s: %w", squadID, models.ErrNotFound)
	}
	if _, err := s.ledgers().DeleteOne(ctx, bson.M{"_id": squadID}); err != nil {
		return fmt.Errorf("failed to delete ledger: %w", err)
	}
	return nil
}

// AddMember pushes the member unless an entry with the same id exists.
func (s *Store) AddMember(ctx context.Context, squadID string, member models.Member) error {
	if member.JoinedAt == 0 {
		member.JoinedAt = s.now().Unix()
	}

	result, err := s.squads().UpdateOne(ctx,
		bson.M{"_id": squadID, "members.id": bson.M{"$ne": member.ID}},
		bson.M{
			"$push": bson.M{"members": member},
			"$set":  bson.M{"updatedAt": s.now().Unix()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	// Nothing matched: either the squad is missing or the member is present.
	if _, err := s.GetSquad(ctx, squadID); err != nil {
		return err
	}
	return fmt.Errorf("%s in squad %s: %w", member.ID, squadID, models.ErrAlreadyMember)
}

// RemoveMember pulls the membership entry.
func (s *Store) RemoveMember(ctx context.Context, squadID, memberID string) error {
	result, err := s.squads().UpdateOne(ctx,
		bson.M{"_id": squadID, "members.id": memberID},
		bson.M{
			"$pull": bson.M{"members": bson.M{"id": memberID}},
			"$set":  bson.M{"updatedAt": s.now().Unix()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("member %s of squad %s: %w", memberID, squadID, models.ErrNotFound)
	}
	return nil
}

// SetMemberRole changes a member's role in place.
func (s *Store) SetMemberRole(ctx context.Context, squadID, memberID string, role models.Role) error {
	result, err := s.squads().UpdateOne(ctx,
		bson.M{"_id": squadID, "members.id": memberID},
		bson.M{"$set": bson.M{"members.$.role": role}},
	)
	if err != nil {
		return fmt.Errorf("failed to set member role: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("member %s of squad %s: %w", memberID, squadID, models.ErrNotFound)
	}
	return nil
}

// LoadMembers returns the squad's current members.
func (s *Store) LoadMembers(ctx context.Context, squadID string) ([]models.Member, error) {
	squad, err := s.GetSquad(ctx, squadID)
	if err != nil {
		return nil, err
	}
	if squad.Members == nil {
		return []models.Member{}, nil
	}
	return squad.Members, nil
}

// LoadLedger reads the ledger document. A squad that has never committed has
// an empty ledger at version 0.
func (s *Store) LoadLedger(ctx context.Context, squadID string) (*models.Ledger, error) {
	var ledger models.Ledger
	err := s.ledgers().FindOne(ctx, bson.M{"_id": squadID}).Decode(&ledger)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, err := s.GetSquad(ctx, squadID); err != nil {
			return nil, err
		}
		return &models.Ledger{SquadID: squadID, Transactions: []models.Transaction{}, Balances: []models.NetBalance{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	if ledger.Transactions == nil {
		ledger.Transactions = []models.Transaction{}
	}
	if ledger.Balances == nil {
		ledger.Balances = []models.NetBalance{}
	}
	return &ledger, nil
}

// CommitLedger writes transactions and balances with a single conditional
// update on the ledger document. A stale expectedVersion fails the filter, so
// the upsert collides on _id and is reported as models.ErrConflict.
func (s *Store) CommitLedger(ctx context.Context, squadID string, txs []models.Transaction, balances []models.NetBalance, expectedVersion int64) (int64, error) {
	touched, err := s.squads().UpdateOne(ctx,
		bson.M{"_id": squadID},
		bson.M{"$set": bson.M{"updatedAt": s.now().Unix()}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to touch squad: %w", err)
	}
	if touched.MatchedCount == 0 {
		return 0, fmt.Errorf("squad %s: %w", squadID, models.ErrNotFound)
	}

	if txs == nil {
		txs = []models.Transaction{}
	}
	if balances == nil {
		balances = []models.NetBalance{}
	}

	result, err := s.ledgers().UpdateOne(ctx,
		bson.M{"_id": squadID, "version": expectedVersion},
		bson.M{
			"$set": bson.M{"transactions": txs, "balances": balances},
			"$inc": bson.M{"version": 1},
		},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return 0, fmt.Errorf("squad %s at version %d: %w", squadID, expectedVersion, models.ErrConflict)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to commit ledger: %w", err)
	}
	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		return 0, fmt.Errorf("squad %s at version %d: %w", squadID, expectedVersion, models.ErrConflict)
	}

	// A DeleteSquad between the touch and the upsert leaves a ledger with no squad.
	err = s.squads().FindOne(ctx, bson.M{"_id": squadID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, err := s.ledgers().DeleteOne(ctx, bson.M{"_id": squadID}); err != nil {
			return 0, fmt.Errorf("failed to delete orphaned ledger: %w", err)
		}
		return 0, fmt.Errorf("squad %s: %w", squadID, models.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to recheck squad: %w", err)
	}
	return expectedVersion + 1, nil
}
