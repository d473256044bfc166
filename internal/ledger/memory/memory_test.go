package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func income(user string, amount int64) core.IncomeEntry {
	return core.IncomeEntry{
		UserID:      user,
		ProjectID:   "p1",
		Amount:      decimal.NewFromInt(amount),
		Description: "invoice",
		Date:        core.NewDate(2026, 3, 1),
		Category:    core.IncomeProjectPayment,
	}
}

func TestIncomeCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	created, err := s.CreateIncome(ctx, income("u1", 500))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := s.GetIncome(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(500)))

	// other users never see it
	_, err = s.GetIncome(ctx, "u2", created.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound))

	created.Amount = decimal.NewFromInt(750)
	_, err = s.UpdateIncome(ctx, created)
	require.NoError(t, err)
	list, err := s.ListIncome(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Amount.Equal(decimal.NewFromInt(750)))

	require.NoError(t, s.DeleteIncome(ctx, "u1", created.ID))
	assert.True(t, errors.Is(s.DeleteIncome(ctx, "u1", created.ID), core.ErrNotFound))
}

func TestCreateRejectsInvalid(t *testing.T) {
	s := New()
	bad := income("u1", 0)
	_, err := s.CreateIncome(context.Background(), bad)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = s.CreateExpense(context.Background(), core.ExpenseEntry{
		UserID: "u1", Amount: decimal.NewFromInt(5), Description: "x",
		Date: core.NewDate(2026, 1, 1), Category: "food",
	})
	assert.ErrorIs(t, err, core.ErrInvalidCategory)
}

func TestGoalsAreReplacedAsAUnit(t *testing.T) {
	ctx := context.Background()
	s := New()
	goals := []core.SavingsGoal{
		{ID: "g1", Title: "Laptop", TargetAmount: decimal.NewFromInt(2000), Type: core.Yearly},
		{ID: "g2", Title: "Buffer", TargetAmount: decimal.NewFromInt(500), Type: core.Monthly},
	}
	require.NoError(t, s.SaveGoals(ctx, "u1", goals))

	// mutating the caller's slice must not leak into the store
	goals[0].Title = "changed"
	loaded, err := s.LoadGoals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Laptop", loaded[0].Title)

	require.NoError(t, s.SaveGoals(ctx, "u1", loaded[1:]))
	loaded, _ = s.LoadGoals(ctx, "u1")
	assert.Len(t, loaded, 1)
}

func TestActivityNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordActivity(ctx, core.Activity{
			UserID: "u1", Kind: "income.created", Reference: string(rune('a' + i)),
			OccurredAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	feed, err := s.ListActivity(ctx, "u1", 3)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, "e", feed[0].Reference)
	assert.Equal(t, "c", feed[2].Reference)
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.GetProfile(ctx, "u1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, s.SaveProfile(ctx, core.Profile{UserID: "u2", Name: "B"}))
	require.NoError(t, s.SaveProfile(ctx, core.Profile{UserID: "u1", Name: "A"}))
	all, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "u1", all[0].UserID)
}

func TestNewFromFiles(t *testing.T) {
	t.Run("missing seed yields empty store", func(t *testing.T) {
		s, err := NewFromFiles(t.TempDir())
		require.NoError(t, err)
		list, _ := s.ListIncome(context.Background(), "local")
		assert.Empty(t, list)
	})

	t.Run("seed assigns users and ids", func(t *testing.T) {
		dir := t.TempDir()
		seed := `{"users":{"local":{
			"profile":{"name":"Alex","email":"alex@example.com","currency":"USD","joinDate":"2025-01-01"},
			"income":[{"projectId":"p1","amount":"4200.00","description":"Website","date":"2026-02-01","category":"project-payment"}],
			"expenses":[{"amount":"49.99","description":"Figma","date":"2026-02-03","category":"software"}],
			"projects":[{"id":"p1","name":"Website","clientName":"Acme","expectedPayment":"8000","status":"active","createdDate":"2026-01-10","budgetAllocation":"20"}],
			"goals":[{"id":"g1","title":"Emergency","targetAmount":"10000","currentAmount":"2500","deadline":"2026-12-31","type":"yearly"}]
		}}}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, SeedFile), []byte(seed), 0o644))

		s, err := NewFromFiles(dir)
		require.NoError(t, err)
		ctx := context.Background()

		inc, _ := s.ListIncome(ctx, "local")
		require.Len(t, inc, 1)
		assert.NotEmpty(t, inc[0].ID)
		assert.Equal(t, "local", inc[0].UserID)
		assert.True(t, inc[0].Amount.Equal(decimal.RequireFromString("4200")))

		p, err := s.GetProject(ctx, "local", "p1")
		require.NoError(t, err)
		assert.Equal(t, "Acme", p.ClientName)

		prof, err := s.GetProfile(ctx, "local")
		require.NoError(t, err)
		assert.Equal(t, "Alex", prof.Name)
		assert.Equal(t, "local", prof.UserID)
	})

	t.Run("malformed seed", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, SeedFile), []byte("{"), 0o644))
		_, err := NewFromFiles(dir)
		assert.Error(t, err)
	})
}
