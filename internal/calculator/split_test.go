package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/squadledger/internal/models"
)

func shareMap(shares []models.Share) map[string]int64 {
	out := make(map[string]int64, len(shares))
	for _, s := range shares {
		out[s.MemberID] = s.Amount
	}
	return out
}

func TestEqualSplit(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		selected []string
		want     []models.Share
		wantErr  bool
	}{
		{
			name:     "remainder goes to first selected",
			amount:   100,
			selected: []string{"xavier", "yara", "zoe"},
			want:     []models.Share{{MemberID: "xavier", Amount: 34}, {MemberID: "yara", Amount: 33}, {MemberID: "zoe", Amount: 33}},
		},
		{
			name:     "even split",
			amount:   9000,
			selected: []string{"alice", "bob", "carol"},
			want:     []models.Share{{MemberID: "alice", Amount: 3000}, {MemberID: "bob", Amount: 3000}, {MemberID: "carol", Amount: 3000}},
		},
		{
			name:     "first in list order, not alphabetical",
			amount:   101,
			selected: []string{"zoe", "alice"},
			want:     []models.Share{{MemberID: "zoe", Amount: 51}, {MemberID: "alice", Amount: 50}},
		},
		{
			name:     "duplicates ignored",
			amount:   10,
			selected: []string{"alice", "bob", "alice"},
			want:     []models.Share{{MemberID: "alice", Amount: 5}, {MemberID: "bob", Amount: 5}},
		},
		{
			name:     "amount smaller than member count",
			amount:   2,
			selected: []string{"alice", "bob", "carol"},
			want:     []models.Share{{MemberID: "alice", Amount: 2}, {MemberID: "bob", Amount: 0}, {MemberID: "carol", Amount: 0}},
		},
		{name: "no members", amount: 100, selected: nil, wantErr: true},
		{name: "zero amount", amount: 0, selected: []string{"alice"}, wantErr: true},
		{name: "empty member id", amount: 100, selected: []string{"alice", ""}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EqualSplit(tt.amount, tt.selected)
			if tt.wantErr {
				require.ErrorIs(t, err, models.ErrInvalidSplitRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEqualSplit_SumsExactly(t *testing.T) {
	members := []string{"a", "b", "c", "d", "e", "f", "g"}
	for amount := int64(1); amount <= 500; amount++ {
		for n := 1; n <= len(members); n++ {
			shares, err := EqualSplit(amount, members[:n])
			require.NoError(t, err)

			var sum int64
			base := amount / int64(n)
			offBase := 0
			for _, s := range shares {
				sum += s.Amount
				if s.Amount != base {
					offBase++
				}
			}
			assert.Equal(t, amount, sum, "amount=%d n=%d", amount, n)
			assert.LessOrEqual(t, offBase, 1, "amount=%d n=%d", amount, n)
			if amount%int64(n) != 0 {
				assert.Equal(t, base+amount%int64(n), shares[0].Amount)
			}
		}
	}
}

func TestItemizedSplit(t *testing.T) {
	t.Run("shared and individual items", func(t *testing.T) {
		items := []models.ItemLine{
			{Name: "Pizza", UnitPrice: 1000, Quantity: 2, Assignments: []models.Assignment{{MemberID: "alice", Quantity: 1}, {MemberID: "bob", Quantity: 1}}},
			{Name: "Wine", UnitPrice: 2500, Quantity: 1, Assignments: []models.Assignment{{MemberID: "alice", Quantity: 1}, {MemberID: "bob", Quantity: 1}, {MemberID: "carol", Quantity: 1}}},
		}
		shares, selected, err := ItemizedSplit(items, []string{"alice", "bob"})
		require.NoError(t, err)

		// Wine: 2500/3 = 833.33 each
		assert.Equal(t, map[string]int64{"alice": 1833, "bob": 1833, "carol": 833}, shareMap(shares))
		assert.Equal(t, []string{"alice", "bob", "carol"}, selected, "assignment opts carol in")
	})

	t.Run("per-unit quantities", func(t *testing.T) {
		items := []models.ItemLine{
			{Name: "Beer", UnitPrice: 600, Quantity: 5, Assignments: []models.Assignment{{MemberID: "alice", Quantity: 3}, {MemberID: "bob", Quantity: 2}}},
		}
		shares, _, err := ItemizedSplit(items, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"alice": 1800, "bob": 1200}, shareMap(shares))
	})

	t.Run("rounds once per member, not per item", func(t *testing.T) {
		// Each item leaves 0.5 per person; per-item rounding would charge 1 + 1.
		items := []models.ItemLine{
			{Name: "Mint", UnitPrice: 1, Quantity: 1, Assignments: []models.Assignment{{MemberID: "alice", Quantity: 1}, {MemberID: "bob", Quantity: 1}}},
			{Name: "Gum", UnitPrice: 1, Quantity: 1, Assignments: []models.Assignment{{MemberID: "alice", Quantity: 1}, {MemberID: "bob", Quantity: 1}}},
		}
		shares, _, err := ItemizedSplit(items, []string{"alice", "bob"})
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"alice": 1, "bob": 1}, shareMap(shares))
	})

	t.Run("unassigned item contributes nothing", func(t *testing.T) {
		items := []models.ItemLine{
			{Name: "Bread", UnitPrice: 300, Quantity: 1},
			{Name: "Soup", UnitPrice: 700, Quantity: 1, Assignments: []models.Assignment{{MemberID: "bob", Quantity: 1}}},
		}
		shares, selected, err := ItemizedSplit(items, []string{"alice"})
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"alice": 0, "bob": 700}, shareMap(shares))
		assert.Equal(t, []string{"alice", "bob"}, selected)
	})

	t.Run("zero-quantity assignment does not opt in", func(t *testing.T) {
		items := []models.ItemLine{
			{Name: "Tea", UnitPrice: 400, Quantity: 1, Assignments: []models.Assignment{{MemberID: "alice", Quantity: 1}, {MemberID: "dave", Quantity: 0}}},
		}
		_, selected, err := ItemizedSplit(items, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice"}, selected)
	})

	errCases := []struct {
		name  string
		items []models.ItemLine
	}{
		{"no items", nil},
		{"zero price", []models.ItemLine{{Name: "Free", UnitPrice: 0, Quantity: 1}}},
		{"negative price", []models.ItemLine{{Name: "Refund", UnitPrice: -100, Quantity: 1}}},
		{"zero quantity", []models.ItemLine{{Name: "Ghost", UnitPrice: 100, Quantity: 0}}},
		{"negative assignment", []models.ItemLine{{Name: "Cake", UnitPrice: 100, Quantity: 1, Assignments: []models.Assignment{{MemberID: "alice", Quantity: -1}}}}},
		{"assignment without member", []models.ItemLine{{Name: "Cake", UnitPrice: 100, Quantity: 1, Assignments: []models.Assignment{{MemberID: "", Quantity: 1}}}}},
		{"line total overflows", []models.ItemLine{{Name: "Yacht", UnitPrice: math.MaxInt64 / 2, Quantity: 3, Assignments: []models.Assignment{{MemberID: "alice", Quantity: 1}}}}},
		{"bill total overflows", []models.ItemLine{
			{Name: "Yacht", UnitPrice: math.MaxInt64/2 + 1, Quantity: 1, Assignments: []models.Assignment{{MemberID: "alice", Quantity: 1}}},
			{Name: "Jet", UnitPrice: math.MaxInt64/2 + 1, Quantity: 1, Assignments: []models.Assignment{{MemberID: "alice", Quantity: 1}}},
		}},
		{"assigned units overflow", []models.ItemLine{{Name: "Cake", UnitPrice: 100, Quantity: 1, Assignments: []models.Assignment{{MemberID: "alice", Quantity: math.MaxInt64}, {MemberID: "bob", Quantity: 1}}}}},
	}
	for _, tc := range errCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ItemizedSplit(tc.items, []string{"alice"})
			require.ErrorIs(t, err, models.ErrInvalidSplitRequest)
		})
	}
}

func TestItemizedSplit_BoundedRounding(t *testing.T) {
	members := []string{"a", "b", "c", "d", "e"}
	for price := int64(1); price <= 200; price += 7 {
		for n := 1; n <= len(members); n++ {
			var items []models.ItemLine
			for q := int64(1); q <= 3; q++ {
				var assignments []models.Assignment
				for i, m := range members[:n] {
					assignments = append(assignments, models.Assignment{MemberID: m, Quantity: int64(i%2) + 1})
				}
				items = append(items, models.ItemLine{Name: "x", UnitPrice: price, Quantity: q, Assignments: assignments})
			}

			shares, _, err := ItemizedSplit(items, nil)
			require.NoError(t, err)

			var sum int64
			for _, s := range shares {
				sum += s.Amount
			}
			diff := sum - ItemsTotal(items)
			assert.LessOrEqual(t, diff, int64(n), "price=%d n=%d", price, n)
			assert.GreaterOrEqual(t, diff, -int64(n), "price=%d n=%d", price, n)
		}
	}
}
