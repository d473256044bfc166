package storage

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func newSQLite(t *testing.T) *SQLRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "fintrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteLedgerRoundTrip(t *testing.T) {
	repo := newSQLite(t)
	ctx := context.Background()

	in, err := repo.CreateIncome(ctx, core.IncomeEntry{
		UserID: "u1", ProjectID: "p1", Amount: decimal.RequireFromString("4200.50"),
		Description: "Milestone", Date: core.NewDate(2026, 3, 1), Category: core.IncomeProjectPayment,
	})
	require.NoError(t, err)

	got, err := repo.GetIncome(ctx, "u1", in.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("4200.50")))
	assert.Equal(t, "2026-03-01", got.Date.String())
	assert.Equal(t, core.IncomeProjectPayment, got.Category)

	_, err = repo.GetIncome(ctx, "u2", in.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = repo.CreateExpense(ctx, core.ExpenseEntry{
		UserID: "u1", Amount: decimal.RequireFromString("49.99"),
		Description: "Figma", Date: core.NewDate(2026, 3, 2), Category: core.ExpenseSoftware,
	})
	require.NoError(t, err)
	expenses, err := repo.ListExpenses(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "", expenses[0].ProjectID)

	got.Amount = decimal.NewFromInt(10)
	_, err = repo.UpdateIncome(ctx, got)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteIncome(ctx, "u1", in.ID))
	assert.ErrorIs(t, repo.DeleteIncome(ctx, "u1", in.ID), core.ErrNotFound)
}

func TestSQLiteGoalsKeepOrder(t *testing.T) {
	repo := newSQLite(t)
	ctx := context.Background()
	goals := []core.SavingsGoal{
		{ID: "b", Title: "Laptop", TargetAmount: decimal.NewFromInt(2000), CurrentAmount: decimal.NewFromInt(100), Deadline: core.NewDate(2026, 12, 1), Type: core.Yearly},
		{ID: "a", Title: "Buffer", TargetAmount: decimal.NewFromInt(500), CurrentAmount: decimal.Zero, Deadline: core.NewDate(2026, 6, 1), Type: core.Monthly},
	}
	require.NoError(t, repo.SaveGoals(ctx, "u1", goals))
	loaded, err := repo.LoadGoals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "b", loaded[0].ID)
	assert.True(t, loaded[0].CurrentAmount.Equal(decimal.NewFromInt(100)))

	require.NoError(t, repo.SaveGoals(ctx, "u1", goals[1:]))
	loaded, _ = repo.LoadGoals(ctx, "u1")
	assert.Len(t, loaded, 1)
}

func TestSQLiteProfilesAndActivity(t *testing.T) {
	repo := newSQLite(t)
	ctx := context.Background()

	p := core.Profile{UserID: "u1", Name: "Alex", Email: "alex@example.com", Currency: "USD", JoinDate: core.NewDate(2025, 1, 1)}
	require.NoError(t, repo.SaveProfile(ctx, p))
	p.Name = "Alex R."
	require.NoError(t, repo.SaveProfile(ctx, p))
	got, err := repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alex R.", got.Name)

	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	for i, kind := range []string{"income.created", "expense.created", "contribution.applied"} {
		require.NoError(t, repo.RecordActivity(ctx, core.Activity{
			UserID: "u1", Kind: kind, Amount: decimal.NewFromInt(int64(i + 1)),
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	feed, err := repo.ListActivity(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "contribution.applied", feed[0].Kind)
	assert.True(t, feed[0].OccurredAt.Equal(base.Add(2*time.Minute)))
}

func TestRebind(t *testing.T) {
	pg := NewWithDB(nil, Postgres)
	assert.Equal(t, "DELETE FROM income WHERE user_id = $1 AND id = $2", pg.rebind(qDeleteIncome))
	lite := NewWithDB(nil, SQLite)
	assert.Equal(t, qDeleteIncome, lite.rebind(qDeleteIncome))
}

func TestPostgresSaveGoalsUsesTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewWithDB(db, Postgres)

	g := core.SavingsGoal{ID: "g1", Title: "Buffer", TargetAmount: decimal.NewFromInt(500), CurrentAmount: decimal.NewFromInt(50), Deadline: core.NewDate(2026, 6, 1), Type: core.Monthly}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM goals WHERE user_id = $1")).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO goals (id, user_id, position, title, target_amount, current_amount, deadline, goal_type) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)")).
		WithArgs("g1", "u1", 0, "Buffer", "500", "50", "2026-06-01", "monthly").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveGoals(context.Background(), "u1", []core.SavingsGoal{g}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveGoalsRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewWithDB(db, Postgres)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM goals")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO goals")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = repo.SaveGoals(context.Background(), "u1", []core.SavingsGoal{{ID: "g1", Title: "x", Type: core.Monthly}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewWithDB(db, Postgres)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE projects SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = repo.UpdateProject(context.Background(), core.Project{
		ID: "p9", UserID: "u1", Name: "Site", Status: core.ProjectActive,
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListIncomeScansNumeric(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewWithDB(db, Postgres)

	rows := sqlmock.NewRows([]string{"id", "user_id", "project_id", "amount", "description", "entry_date", "category"}).
		AddRow("i1", "u1", "p1", []byte("1250.00"), "Invoice", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), "project-payment")
	mock.ExpectQuery(regexp.QuoteMeta("FROM income WHERE user_id = $1 ORDER BY entry_date, id")).
		WithArgs("u1").
		WillReturnRows(rows)

	list, err := repo.ListIncome(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Amount.Equal(decimal.NewFromInt(1250)))
	assert.Equal(t, "2026-02-01", list[0].Date.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
