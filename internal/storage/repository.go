// Package storage is the SQL ledger backend. The same repository serves
// sqlite (modernc, pure Go) and postgres (lib/pq); queries are written with
// "?" placeholders and rebound per dialect.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func (d Dialect) driverName() string { return string(d) }

type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
}

var _ ledger.Store = (*SQLRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return open(SQLite, dbPath)
}

func NewPostgresRepository(dsn string) (*SQLRepository, error) {
	return open(Postgres, dsn)
}

func open(d Dialect, dsn string) (*SQLRepository, error) {
	db, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if d == SQLite {
		// modernc serialises writers per connection
		db.SetMaxOpenConns(1)
	}
	if err := RunMigrations(d, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return NewWithDB(db, d), nil
}

// NewWithDB wraps an already migrated handle.
func NewWithDB(db *sql.DB, d Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: d}
}

func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports database reachability for health checks.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// rebind rewrites "?" placeholders to "$n" for postgres.
func (r *SQLRepository) rebind(q string) string {
	if r.dialect != Postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, ch := range q {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func (r *SQLRepository) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return r.db.ExecContext(ctx, r.rebind(q), args...)
}

// execOne runs a write that must touch exactly one row.
func (r *SQLRepository) execOne(ctx context.Context, kind, id, q string, args ...any) error {
	res, err := r.exec(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.NotFoundError{Msg: fmt.Sprintf("%s %s not found", kind, id)}
	}
	return nil
}

func notFoundOr(err error, kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.NotFoundError{Msg: fmt.Sprintf("%s %s not found", kind, id)}
	}
	return err
}

// ---- income ----

const (
	incomeColumns  = "id, user_id, project_id, amount, description, entry_date, category"
	qListIncome    = "SELECT " + incomeColumns + " FROM income WHERE user_id = ? ORDER BY entry_date, id"
	qGetIncome     = "SELECT " + incomeColumns + " FROM income WHERE user_id = ? AND id = ?"
	qInsertIncome  = "INSERT INTO income (" + incomeColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)"
	qUpdateIncome  = "UPDATE income SET project_id = ?, amount = ?, description = ?, entry_date = ?, category = ? WHERE user_id = ? AND id = ?"
	qDeleteIncome  = "DELETE FROM income WHERE user_id = ? AND id = ?"
	expenseColumns = "id, user_id, project_id, amount, description, entry_date, category"
	qListExpenses  = "SELECT " + expenseColumns + " FROM expenses WHERE user_id = ? ORDER BY entry_date, id"
	qGetExpense    = "SELECT " + expenseColumns + " FROM expenses WHERE user_id = ? AND id = ?"
	qInsertExpense = "INSERT INTO expenses (" + expenseColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)"
	qUpdateExpense = "UPDATE expenses SET project_id = ?, amount = ?, description = ?, entry_date = ?, category = ? WHERE user_id = ? AND id = ?"
	qDeleteExpense = "DELETE FROM expenses WHERE user_id = ? AND id = ?"
)

type scanner interface {
	Scan(dest ...any) error
}

func scanIncome(s scanner) (core.IncomeEntry, error) {
	var e core.IncomeEntry
	var category string
	err := s.Scan(&e.ID, &e.UserID, &e.ProjectID, &e.Amount, &e.Description, &e.Date, &category)
	e.Category = core.IncomeCategory(category)
	return e, err
}

func scanExpense(s scanner) (core.ExpenseEntry, error) {
	var e core.ExpenseEntry
	var category string
	err := s.Scan(&e.ID, &e.UserID, &e.ProjectID, &e.Amount, &e.Description, &e.Date, &category)
	e.Category = core.ExpenseCategory(category)
	return e, err
}

func (r *SQLRepository) ListIncome(ctx context.Context, userID string) ([]core.IncomeEntry, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(qListIncome), userID)
	if err != nil {
		return nil, fmt.Errorf("list income: %w", err)
	}
	defer rows.Close()
	var out []core.IncomeEntry
	for rows.Next() {
		e, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLRepository) GetIncome(ctx context.Context, userID, id string) (core.IncomeEntry, error) {
	e, err := scanIncome(r.db.QueryRowContext(ctx, r.rebind(qGetIncome), userID, id))
	if err != nil {
		return core.IncomeEntry{}, notFoundOr(err, "income entry", id)
	}
	return e, nil
}

func (r *SQLRepository) CreateIncome(ctx context.Context, e core.IncomeEntry) (core.IncomeEntry, error) {
	if err := e.Validate(); err != nil {
		return core.IncomeEntry{}, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.exec(ctx, qInsertIncome, e.ID, e.UserID, e.ProjectID, e.Amount, e.Description, e.Date, string(e.Category))
	if err != nil {
		return core.IncomeEntry{}, fmt.Errorf("create income: %w", err)
	}
	slog.DebugContext(ctx, "Income saved", "id", e.ID, "user_id", e.UserID, "amount", e.Amount.StringFixed(2))
	return e, nil
}

func (r *SQLRepository) UpdateIncome(ctx context.Context, e core.IncomeEntry) (core.IncomeEntry, error) {
	if err := e.Validate(); err != nil {
		return core.IncomeEntry{}, err
	}
	err := r.execOne(ctx, "income entry", e.ID, qUpdateIncome,
		e.ProjectID, e.Amount, e.Description, e.Date, string(e.Category), e.UserID, e.ID)
	if err != nil {
		return core.IncomeEntry{}, fmt.Errorf("update income: %w", err)
	}
	return e, nil
}

func (r *SQLRepository) DeleteIncome(ctx context.Context, userID, id string) error {
	if err := r.execOne(ctx, "income entry", id, qDeleteIncome, userID, id); err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return nil
}

// ---- expenses ----

func (r *SQLRepository) ListExpenses(ctx context.Context, userID string) ([]core.ExpenseEntry, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(qListExpenses), userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()
	var out []core.ExpenseEntry
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLRepository) GetExpense(ctx context.Context, userID, id string) (core.ExpenseEntry, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx, r.rebind(qGetExpense), userID, id))
	if err != nil {
		return core.ExpenseEntry{}, notFoundOr(err, "expense entry", id)
	}
	return e, nil
}

func (r *SQLRepository) CreateExpense(ctx context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	if err := e.Validate(); err != nil {
		return core.ExpenseEntry{}, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.exec(ctx, qInsertExpense, e.ID, e.UserID, e.ProjectID, e.Amount, e.Description, e.Date, string(e.Category))
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("create expense: %w", err)
	}
	slog.DebugContext(ctx, "Expense saved", "id", e.ID, "user_id", e.UserID, "amount", e.Amount.StringFixed(2))
	return e, nil
}

func (r *SQLRepository) UpdateExpense(ctx context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	if err := e.Validate(); err != nil {
		return core.ExpenseEntry{}, err
	}
	err := r.execOne(ctx, "expense entry", e.ID, qUpdateExpense,
		e.ProjectID, e.Amount, e.Description, e.Date, string(e.Category), e.UserID, e.ID)
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("update expense: %w", err)
	}
	return e, nil
}

func (r *SQLRepository) DeleteExpense(ctx context.Context, userID, id string) error {
	if err := r.execOne(ctx, "expense entry", id, qDeleteExpense, userID, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// ---- projects ----

const (
	projectColumns = "id, user_id, name, client_name, expected_payment, status, created_date, budget_allocation"
	qListProjects  = "SELECT " + projectColumns + " FROM projects WHERE user_id = ? ORDER BY created_date, id"
	qGetProject    = "SELECT " + projectColumns + " FROM projects WHERE user_id = ? AND id = ?"
	qInsertProject = "INSERT INTO projects (" + projectColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	qUpdateProject = "UPDATE projects SET name = ?, client_name = ?, expected_payment = ?, status = ?, created_date = ?, budget_allocation = ? WHERE user_id = ? AND id = ?"
	qDeleteProject = "DELETE FROM projects WHERE user_id = ? AND id = ?"
)

func scanProject(s scanner) (core.Project, error) {
	var p core.Project
	var status string
	err := s.Scan(&p.ID, &p.UserID, &p.Name, &p.ClientName, &p.ExpectedPayment, &status, &p.CreatedDate, &p.BudgetAllocation)
	p.Status = core.ProjectStatus(status)
	return p, err
}

func (r *SQLRepository) ListProjects(ctx context.Context, userID string) ([]core.Project, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(qListProjects), userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	var out []core.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLRepository) GetProject(ctx context.Context, userID, id string) (core.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, r.rebind(qGetProject), userID, id))
	if err != nil {
		return core.Project{}, notFoundOr(err, "project", id)
	}
	return p, nil
}

func (r *SQLRepository) CreateProject(ctx context.Context, p core.Project) (core.Project, error) {
	if err := p.Validate(); err != nil {
		return core.Project{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.exec(ctx, qInsertProject, p.ID, p.UserID, p.Name, p.ClientName, p.ExpectedPayment,
		string(p.Status), p.CreatedDate, p.BudgetAllocation)
	if err != nil {
		return core.Project{}, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

func (r *SQLRepository) UpdateProject(ctx context.Context, p core.Project) (core.Project, error) {
	if err := p.Validate(); err != nil {
		return core.Project{}, err
	}
	err := r.execOne(ctx, "project", p.ID, qUpdateProject, p.Name, p.ClientName, p.ExpectedPayment,
		string(p.Status), p.CreatedDate, p.BudgetAllocation, p.UserID, p.ID)
	if err != nil {
		return core.Project{}, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

func (r *SQLRepository) DeleteProject(ctx context.Context, userID, id string) error {
	if err := r.execOne(ctx, "project", id, qDeleteProject, userID, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// ---- goals ----

const (
	qLoadGoals   = "SELECT id, title, target_amount, current_amount, deadline, goal_type FROM goals WHERE user_id = ? ORDER BY position"
	qDeleteGoals = "DELETE FROM goals WHERE user_id = ?"
	qInsertGoal  = "INSERT INTO goals (id, user_id, position, title, target_amount, current_amount, deadline, goal_type) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
)

func (r *SQLRepository) LoadGoals(ctx context.Context, userID string) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(qLoadGoals), userID)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	defer rows.Close()
	var out []core.SavingsGoal
	for rows.Next() {
		var g core.SavingsGoal
		var goalType string
		if err := rows.Scan(&g.ID, &g.Title, &g.TargetAmount, &g.CurrentAmount, &g.Deadline, &goalType); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.Type = core.GoalType(goalType)
		out = append(out, g)
	}
	return out, rows.Err()
}

// SaveGoals replaces the user's goal list in one transaction.
func (r *SQLRepository) SaveGoals(ctx context.Context, userID string, goals []core.SavingsGoal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.rebind(qDeleteGoals), userID); err != nil {
		return fmt.Errorf("clear goals: %w", err)
	}
	for i, g := range goals {
		_, err := tx.ExecContext(ctx, r.rebind(qInsertGoal),
			g.ID, userID, i, g.Title, g.TargetAmount, g.CurrentAmount, g.Deadline, string(g.Type))
		if err != nil {
			return fmt.Errorf("insert goal %s: %w", g.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit goals: %w", err)
	}
	return nil
}

// ---- profiles ----

const (
	qGetProfile    = "SELECT user_id, name, email, currency, join_date FROM profiles WHERE user_id = ?"
	qListProfiles  = "SELECT user_id, name, email, currency, join_date FROM profiles ORDER BY user_id"
	qUpsertProfile = "INSERT INTO profiles (user_id, name, email, currency, join_date) VALUES (?, ?, ?, ?, ?) ON CONFLICT (user_id) DO UPDATE SET name = excluded.name, email = excluded.email, currency = excluded.currency, join_date = excluded.join_date"
)

func scanProfile(s scanner) (core.Profile, error) {
	var p core.Profile
	err := s.Scan(&p.UserID, &p.Name, &p.Email, &p.Currency, &p.JoinDate)
	return p, err
}

func (r *SQLRepository) GetProfile(ctx context.Context, userID string) (core.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, r.rebind(qGetProfile), userID))
	if err != nil {
		return core.Profile{}, notFoundOr(err, "profile", userID)
	}
	return p, nil
}

func (r *SQLRepository) SaveProfile(ctx context.Context, p core.Profile) error {
	if _, err := r.exec(ctx, qUpsertProfile, p.UserID, p.Name, p.Email, p.Currency, p.JoinDate); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListProfiles(ctx context.Context) ([]core.Profile, error) {
	rows, err := r.db.QueryContext(ctx, qListProfiles)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()
	var out []core.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ---- activity ----

const (
	qInsertActivity = "INSERT INTO activity (id, user_id, kind, reference, amount, occurred_at) VALUES (?, ?, ?, ?, ?, ?)"
	qListActivity   = "SELECT id, user_id, kind, reference, amount, occurred_at FROM activity WHERE user_id = ? ORDER BY occurred_at DESC, id DESC LIMIT ?"
)

func (r *SQLRepository) RecordActivity(ctx context.Context, a core.Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.exec(ctx, qInsertActivity, a.ID, a.UserID, a.Kind, a.Reference, a.Amount, a.OccurredAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListActivity(ctx context.Context, userID string, limit int) ([]core.Activity, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(qListActivity), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()
	var out []core.Activity
	for rows.Next() {
		var a core.Activity
		var millis int64
		if err := rows.Scan(&a.ID, &a.UserID, &a.Kind, &a.Reference, &a.Amount, &millis); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		a.OccurredAt = time.UnixMilli(millis).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}
