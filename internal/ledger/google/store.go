package google

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/ledger/memory"
)

// Store keeps income and expenses in the spreadsheet and everything else in
// process memory.
type Store struct {
	*memory.Store
	sheets *Client
}

var _ ledger.Store = (*Store)(nil)

func NewStore(sheets *Client, mem *memory.Store) *Store {
	return &Store{Store: mem, sheets: sheets}
}

func (s *Store) ListIncome(ctx context.Context, userID string) ([]core.IncomeEntry, error) {
	return s.sheets.ListIncome(ctx, userID)
}

func (s *Store) GetIncome(ctx context.Context, userID, id string) (core.IncomeEntry, error) {
	return s.sheets.GetIncome(ctx, userID, id)
}

func (s *Store) CreateIncome(ctx context.Context, e core.IncomeEntry) (core.IncomeEntry, error) {
	return s.sheets.CreateIncome(ctx, e)
}

func (s *Store) UpdateIncome(ctx context.Context, e core.IncomeEntry) (core.IncomeEntry, error) {
	return s.sheets.UpdateIncome(ctx, e)
}

func (s *Store) DeleteIncome(ctx context.Context, userID, id string) error {
	return s.sheets.DeleteIncome(ctx, userID, id)
}

func (s *Store) ListExpenses(ctx context.Context, userID string) ([]core.ExpenseEntry, error) {
	return s.sheets.ListExpenses(ctx, userID)
}

func (s *Store) GetExpense(ctx context.Context, userID, id string) (core.ExpenseEntry, error) {
	return s.sheets.GetExpense(ctx, userID, id)
}

func (s *Store) CreateExpense(ctx context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	return s.sheets.CreateExpense(ctx, e)
}

func (s *Store) UpdateExpense(ctx context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	return s.sheets.UpdateExpense(ctx, e)
}

func (s *Store) DeleteExpense(ctx context.Context, userID, id string) error {
	return s.sheets.DeleteExpense(ctx, userID, id)
}
