package sqlstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/squadledger/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// TestPostgresStore runs the same suite against PostgreSQL when
// SQUADLEDGER_TEST_POSTGRES_URL points at a scratch database.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("SQUADLEDGER_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("SQUADLEDGER_TEST_POSTGRES_URL not set")
	}
	store, err := Open(context.Background(), DriverPostgres, dsn)
	require.NoError(t, err)
	defer store.Close()
	runStoreSuite(t, store)
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, newTestStore(t))
}

func member(id string, role models.Role) models.Member {
	return models.Member{ID: id, Name: id, Role: role}
}

func runStoreSuite(t *testing.T, store *Store) {
	ctx := context.Background()
	// Unique identities keep runs against a shared database independent.
	alice := "alice-" + uuid.NewString() + "@example.com"
	bob := "bob-" + uuid.NewString() + "@example.com"

	newSquad := func(t *testing.T) *models.Squad {
		squad := &models.Squad{Members: []models.Member{member(alice, models.RoleAdmin)}}
		require.NoError(t, store.CreateSquad(ctx, squad))
		return squad
	}

	t.Run("CreateSquad generates ID and name", func(t *testing.T) {
		squad := newSquad(t)
		assert.NotEmpty(t, squad.ID)
		assert.Equal(t, "Squad with "+alice, squad.Name)
		assert.NotZero(t, squad.CreatedAt)

		got, err := store.GetSquad(ctx, squad.ID)
		require.NoError(t, err)
		assert.Equal(t, squad.Name, got.Name)
		require.Len(t, got.Members, 1)
		assert.Equal(t, alice, got.Members[0].ID)
		assert.Equal(t, models.RoleAdmin, got.Members[0].Role)

		ledger, err := store.LoadLedger(ctx, squad.ID)
		require.NoError(t, err)
		assert.Zero(t, ledger.Version)
		assert.Empty(t, ledger.Transactions)
		assert.Empty(t, ledger.Balances)
	})

	t.Run("GetSquad not found", func(t *testing.T) {
		_, err := store.GetSquad(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("AddMember rejects duplicates", func(t *testing.T) {
		squad := newSquad(t)
		require.NoError(t, store.AddMember(ctx, squad.ID, member(bob, models.RoleMember)))

		err := store.AddMember(ctx, squad.ID, member(bob, models.RoleMember))
		assert.ErrorIs(t, err, models.ErrAlreadyMember)

		err = store.AddMember(ctx, "missing", member(bob, models.RoleMember))
		assert.ErrorIs(t, err, models.ErrNotFound)

		members, err := store.LoadMembers(ctx, squad.ID)
		require.NoError(t, err)
		assert.Len(t, members, 2)
	})

	t.Run("member role and removal", func(t *testing.T) {
		squad := newSquad(t)
		require.NoError(t, store.AddMember(ctx, squad.ID, member(bob, models.RoleMember)))

		require.NoError(t, store.SetMemberRole(ctx, squad.ID, bob, models.RoleAdmin))
		got, err := store.GetSquad(ctx, squad.ID)
		require.NoError(t, err)
		m, ok := got.Member(bob)
		require.True(t, ok)
		assert.True(t, m.IsAdmin())

		require.NoError(t, store.RemoveMember(ctx, squad.ID, bob))
		assert.ErrorIs(t, store.RemoveMember(ctx, squad.ID, bob), models.ErrNotFound)
		assert.ErrorIs(t, store.SetMemberRole(ctx, squad.ID, bob, models.RoleMember), models.ErrNotFound)
	})

	t.Run("ListSquadsForMember", func(t *testing.T) {
		carol := "carol-" + uuid.NewString() + "@example.com"
		first := &models.Squad{Name: "Roommates", Members: []models.Member{member(carol, models.RoleAdmin)}}
		second := &models.Squad{Name: "Ski Trip", Members: []models.Member{member(carol, models.RoleAdmin)}}
		require.NoError(t, store.CreateSquad(ctx, first))
		require.NoError(t, store.CreateSquad(ctx, second))

		squads, err := store.ListSquadsForMember(ctx, carol)
		require.NoError(t, err)
		require.Len(t, squads, 2)
		for _, s := range squads {
			assert.True(t, s.HasMember(carol))
		}

		none, err := store.ListSquadsForMember(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("RenameSquad", func(t *testing.T) {
		squad := newSquad(t)
		require.NoError(t, store.RenameSquad(ctx, squad.ID, "Beach House"))
		got, err := store.GetSquad(ctx, squad.ID)
		require.NoError(t, err)
		assert.Equal(t, "Beach House", got.Name)

		assert.ErrorIs(t, store.RenameSquad(ctx, "missing", "x"), models.ErrNotFound)
	})

	t.Run("CommitLedger round trip", func(t *testing.T) {
		squad := newSquad(t)
		require.NoError(t, store.AddMember(ctx, squad.ID, member(bob, models.RoleMember)))

		txs := []models.Transaction{
			{
				ID: "t1", Kind: models.KindExpense, Amount: 1000, Description: "Taxi",
				PayerID: alice, OccurredAt: 100, CreatedAt: 101,
				Shares: []models.Share{{MemberID: bob, Amount: 500}},
			},
			{
				ID: "t2", Kind: models.KindItemizedExpense, Amount: 3000, Description: "Dinner",
				PayerID: bob, OccurredAt: 200, CreatedAt: 201, ReceiptRef: "receipts/abc.jpg",
				Shares: []models.Share{{MemberID: alice, Amount: 2000}},
				Items: []models.ItemLine{
					{ID: "i1", Name: "Pizza", UnitPrice: 1000, Quantity: 2, Assignments: []models.Assignment{
						{MemberID: alice, Quantity: 1}, {MemberID: bob, Quantity: 1},
					}},
					{ID: "i2", Name: "Wine", UnitPrice: 1000, Quantity: 1, Assignments: []models.Assignment{
						{MemberID: alice, Quantity: 1},
					}},
				},
			},
		}
		balances := []models.NetBalance{{DebtorID: alice, CreditorID: bob, Amount: 1500}}

		version, err := store.CommitLedger(ctx, squad.ID, txs, balances, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), version)

		ledger, err := store.LoadLedger(ctx, squad.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), ledger.Version)
		assert.Equal(t, txs, ledger.Transactions)
		assert.Equal(t, balances, ledger.Balances)

		// A second commit fully replaces the first.
		version, err = store.CommitLedger(ctx, squad.ID, txs[:1], []models.NetBalance{{DebtorID: bob, CreditorID: alice, Amount: 500}}, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), version)

		ledger, err = store.LoadLedger(ctx, squad.ID)
		require.NoError(t, err)
		assert.Equal(t, txs[:1], ledger.Transactions)
		require.Len(t, ledger.Balances, 1)
		assert.Equal(t, bob, ledger.Balances[0].DebtorID)
	})

	t.Run("CommitLedger detects stale version", func(t *testing.T) {
		squad := newSquad(t)
		_, err := store.CommitLedger(ctx, squad.ID, nil, nil, 0)
		require.NoError(t, err)

		_, err = store.CommitLedger(ctx, squad.ID, nil, nil, 0)
		assert.ErrorIs(t, err, models.ErrConflict)

		_, err = store.CommitLedger(ctx, "missing", nil, nil, 0)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("DeleteSquad removes ledger", func(t *testing.T) {
		squad := newSquad(t)
		_, err := store.CommitLedger(ctx, squad.ID, []models.Transaction{{
			ID: "t1", Kind: models.KindExpense, Amount: 100, PayerID: alice,
		}}, nil, 0)
		require.NoError(t, err)

		require.NoError(t, store.DeleteSquad(ctx, squad.ID))

		_, err = store.LoadLedger(ctx, squad.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		_, err = store.LoadMembers(ctx, squad.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.ErrorIs(t, store.DeleteSquad(ctx, squad.ID), models.ErrNotFound)
	})
}

func TestRebindPlaceholders(t *testing.T) {
	pg := &Store{driver: DriverPostgres}
	assert.Equal(t, "UPDATE t SET a = $1 WHERE b = $2", pg.q("UPDATE t SET a = ? WHERE b = ?"))

	lite := &Store{driver: DriverSQLite}
	assert.Equal(t, "SELECT ? ", lite.q("SELECT ? "))
}

func TestDefaultSquadName(t *testing.T) {
	tests := []struct {
		name    string
		members []models.Member
		want    string
	}{
		{"empty", nil, "New squad"},
		{"names", []models.Member{{ID: "a@x", Name: "Alice"}, {ID: "b@x", Name: "Bob"}}, "Squad with Alice, Bob"},
		{"falls back to id", []models.Member{{ID: "a@x"}}, "Squad with a@x"},
		{"many", []models.Member{{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}}, "Squad with A, B and 2 others"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, defaultSquadName(tt.members))
		})
	}
}
