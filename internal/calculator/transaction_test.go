package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/squadledger/internal/models"
)

var trio = map[string]bool{"alice": true, "bob": true, "carol": true}

func TestEqualExpense_DropsPayerShare(t *testing.T) {
	tx, err := EqualExpense(Details{Description: "Groceries", PayerID: "alice"}, 12050, []string{"alice", "bob", "carol"})
	require.NoError(t, err)

	assert.Equal(t, models.KindExpense, tx.Kind)
	assert.Equal(t, int64(12050), tx.Amount)
	// alice absorbs the remainder cent (4018) but never owes herself
	assert.Equal(t, []models.Share{{MemberID: "bob", Amount: 4016}, {MemberID: "carol", Amount: 4016}}, tx.Shares)
	require.NoError(t, Validate(tx, trio))
}

func TestEqualExpense_PayerNotSelected(t *testing.T) {
	tx, err := EqualExpense(Details{PayerID: "alice"}, 100, []string{"bob", "carol"})
	require.NoError(t, err)
	assert.Equal(t, []models.Share{{MemberID: "bob", Amount: 50}, {MemberID: "carol", Amount: 50}}, tx.Shares)
}

func TestEqualExpense_OmitsZeroShares(t *testing.T) {
	tx, err := EqualExpense(Details{PayerID: "alice"}, 2, []string{"bob", "carol", "alice"})
	require.NoError(t, err)
	assert.Equal(t, []models.Share{{MemberID: "bob", Amount: 2}}, tx.Shares)
}

func TestCustomExpense(t *testing.T) {
	tx, err := CustomExpense(Details{PayerID: "alice"}, 1000, []models.Share{{MemberID: "alice", Amount: 400}, {MemberID: "bob", Amount: 600}, {MemberID: "carol", Amount: 0}})
	require.NoError(t, err)
	assert.Equal(t, []models.Share{{MemberID: "bob", Amount: 600}}, tx.Shares)

	_, err = CustomExpense(Details{PayerID: "alice"}, 1000, []models.Share{{MemberID: "bob", Amount: -5}})
	require.ErrorIs(t, err, models.ErrInvalidTransaction)
}

func TestItemizedExpense(t *testing.T) {
	items := []models.ItemLine{
		{ID: "i1", Name: "Burger", UnitPrice: 1500, Quantity: 1, Assignments: []models.Assignment{{MemberID: "alice", Quantity: 1}}},
		{ID: "i2", Name: "Fries", UnitPrice: 250, Quantity: 2, Assignments: []models.Assignment{{MemberID: "alice", Quantity: 1}, {MemberID: "bob", Quantity: 1}}},
	}
	tx, selected, err := ItemizedExpense(Details{PayerID: "alice", Description: "Dinner"}, items, []string{"alice"})
	require.NoError(t, err)

	assert.Equal(t, models.KindItemizedExpense, tx.Kind)
	assert.Equal(t, int64(2000), tx.Amount)
	assert.Equal(t, []models.Share{{MemberID: "bob", Amount: 250}}, tx.Shares)
	assert.Equal(t, []string{"alice", "bob"}, selected)
	require.Len(t, tx.Items, 2)

	tx.Items[1].Assignments[0].Quantity = 99
	assert.Equal(t, int64(1), items[1].Assignments[0].Quantity, "items are copied")
	require.NoError(t, Validate(tx, trio))
}

func TestValidate(t *testing.T) {
	valid := models.Transaction{Kind: models.KindExpense, Amount: 1000, PayerID: "alice", Shares: []models.Share{{MemberID: "bob", Amount: 500}}}

	tests := []struct {
		name   string
		mutate func(tx *models.Transaction)
	}{
		{"zero amount", func(tx *models.Transaction) { tx.Amount = 0 }},
		{"negative amount", func(tx *models.Transaction) { tx.Amount = -1 }},
		{"unknown kind", func(tx *models.Transaction) { tx.Kind = "REFUND" }},
		{"missing payer", func(tx *models.Transaction) { tx.PayerID = "" }},
		{"payer not a member", func(tx *models.Transaction) { tx.PayerID = "mallory" }},
		{"negative share", func(tx *models.Transaction) { tx.Shares = []models.Share{{MemberID: "bob", Amount: -1}} }},
		{"zero share", func(tx *models.Transaction) { tx.Shares = []models.Share{{MemberID: "bob", Amount: 0}} }},
		{"share on payer", func(tx *models.Transaction) { tx.Shares = []models.Share{{MemberID: "alice", Amount: 10}} }},
		{"share for stranger", func(tx *models.Transaction) { tx.Shares = []models.Share{{MemberID: "mallory", Amount: 10}} }},
		{"duplicate share", func(tx *models.Transaction) {
			tx.Shares = []models.Share{{MemberID: "bob", Amount: 10}, {MemberID: "bob", Amount: 10}}
		}},
		{"shares exceed amount", func(tx *models.Transaction) {
			tx.Shares = []models.Share{{MemberID: "bob", Amount: 600}, {MemberID: "carol", Amount: 402}}
		}},
		{"single share far above amount", func(tx *models.Transaction) { tx.Shares = []models.Share{{MemberID: "bob", Amount: math.MaxInt64}} }},
		{"share total wraps around", func(tx *models.Transaction) {
			tx.Amount = 100
			tx.Shares = []models.Share{{MemberID: "bob", Amount: math.MaxInt64}, {MemberID: "carol", Amount: 2}}
		}},
		{"items on plain expense", func(tx *models.Transaction) { tx.Items = []models.ItemLine{{Name: "x"}} }},
		{"itemized without items", func(tx *models.Transaction) { tx.Kind = models.KindItemizedExpense }},
		{"settlement with two shares", func(tx *models.Transaction) {
			tx.Kind = models.KindSettlement
			tx.Shares = []models.Share{{MemberID: "bob", Amount: 500}, {MemberID: "carol", Amount: 500}}
		}},
		{"settlement partial share", func(tx *models.Transaction) {
			tx.Kind = models.KindSettlement
			tx.Shares = []models.Share{{MemberID: "bob", Amount: 999}}
		}},
	}

	require.NoError(t, Validate(valid, trio))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid.Clone()
			tt.mutate(&tx)
			require.ErrorIs(t, Validate(tx, trio), models.ErrInvalidTransaction)
		})
	}

	t.Run("one cent over is tolerated", func(t *testing.T) {
		tx := valid.Clone()
		tx.Shares = []models.Share{{MemberID: "bob", Amount: 600}, {MemberID: "carol", Amount: 401}}
		require.NoError(t, Validate(tx, trio))
	})

	t.Run("maximum amount", func(t *testing.T) {
		tx := valid.Clone()
		tx.Amount = math.MaxInt64
		tx.Shares = []models.Share{{MemberID: "bob", Amount: math.MaxInt64 - 1}, {MemberID: "carol", Amount: 1}}
		require.NoError(t, Validate(tx, trio))

		tx.Shares = append(tx.Shares, models.Share{MemberID: "dave", Amount: 1})
		require.ErrorIs(t, Validate(tx, map[string]bool{"alice": true, "bob": true, "carol": true, "dave": true}), models.ErrInvalidTransaction)
	})
}

func TestKnownMembers_IncludesFormerMembers(t *testing.T) {
	history := []models.Transaction{{PayerID: "dave", Shares: []models.Share{{MemberID: "erin", Amount: 10}}}}
	known := KnownMembers([]models.Member{{ID: "alice"}}, history)
	assert.Equal(t, map[string]bool{"alice": true, "dave": true, "erin": true}, known)
}
