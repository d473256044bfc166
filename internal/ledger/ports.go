// Package ledger defines the storage ports the services depend on.
package ledger

import (
	"context"

	"fintrack/internal/core"
)

// Filter narrows list queries. Zero values mean "no constraint".
type Filter struct {
	ProjectID string
	Category  string
	Status    string
	From      core.Date
	To        core.Date
	Page      int
	Limit     int
}

// Pagination describes one page of a list result.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// Ports for outbound adapters.
type (
	IncomeStore interface {
		ListIncome(ctx context.Context, userID string) ([]core.IncomeEntry, error)
		GetIncome(ctx context.Context, userID, id string) (core.IncomeEntry, error)
		CreateIncome(ctx context.Context, e core.IncomeEntry) (core.IncomeEntry, error)
		UpdateIncome(ctx context.Context, e core.IncomeEntry) (core.IncomeEntry, error)
		DeleteIncome(ctx context.Context, userID, id string) error
	}

	ExpenseStore interface {
		ListExpenses(ctx context.Context, userID string) ([]core.ExpenseEntry, error)
		GetExpense(ctx context.Context, userID, id string) (core.ExpenseEntry, error)
		CreateExpense(ctx context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error)
		UpdateExpense(ctx context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error)
		DeleteExpense(ctx context.Context, userID, id string) error
	}

	ProjectStore interface {
		ListProjects(ctx context.Context, userID string) ([]core.Project, error)
		GetProject(ctx context.Context, userID, id string) (core.Project, error)
		CreateProject(ctx context.Context, p core.Project) (core.Project, error)
		UpdateProject(ctx context.Context, p core.Project) (core.Project, error)
		DeleteProject(ctx context.Context, userID, id string) error
	}

	// GoalStore keeps each user's savings goals as a unit. SaveGoals replaces
	// the whole list.
	GoalStore interface {
		LoadGoals(ctx context.Context, userID string) ([]core.SavingsGoal, error)
		SaveGoals(ctx context.Context, userID string, goals []core.SavingsGoal) error
	}

	ProfileStore interface {
		GetProfile(ctx context.Context, userID string) (core.Profile, error)
		SaveProfile(ctx context.Context, p core.Profile) error
		ListProfiles(ctx context.Context) ([]core.Profile, error)
	}

	ActivityStore interface {
		RecordActivity(ctx context.Context, a core.Activity) error
		ListActivity(ctx context.Context, userID string, limit int) ([]core.Activity, error)
	}

	// Store is the full set of ports a backend provides.
	Store interface {
		IncomeStore
		ExpenseStore
		ProjectStore
		GoalStore
		ProfileStore
		ActivityStore
	}
)
