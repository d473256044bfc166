package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

const (
	DefaultCurrency      = "USD"
	DefaultActivityLimit = 20
	MaxActivityLimit     = 100
)

// LedgerService owns writes to income, expenses, projects and the profile.
// Every write invalidates the user's cached views and emits an event.
type LedgerService struct {
	store     ledger.Store
	finance   *FinanceService
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time
}

func NewLedgerService(store ledger.Store, fin *FinanceService, publisher Publisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.Nop()
	}
	return &LedgerService{
		store:     store,
		finance:   fin,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
		now:       time.Now,
	}
}

func (s *LedgerService) written(ctx context.Context, t amqp.EventType, userID, ref string, amount decimal.Decimal) {
	s.finance.Invalidate(userID)
	s.logger.InfoContext(ctx, "Ledger updated",
		log.FieldEventType, t,
		log.FieldUserID, userID,
		log.FieldEntryID, ref,
		log.FieldAmount, amount.StringFixed(2))
	publish(ctx, s.publisher, s.logger, amqp.NewEvent(t, userID, ref, amount))
}

// ---- income ----

// ListIncome returns the matching page, newest first.
func (s *LedgerService) ListIncome(ctx context.Context, userID string, f ledger.Filter) ([]core.IncomeEntry, ledger.Pagination, error) {
	all, err := s.store.ListIncome(ctx, userID)
	if err != nil {
		return nil, ledger.Pagination{}, fmt.Errorf("list income: %w", err)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.After(all[j].Date.Time) })
	page, p := ledger.Select(all, f.MatchIncome, f)
	return page, p, nil
}

func (s *LedgerService) GetIncome(ctx context.Context, userID, id string) (core.IncomeEntry, error) {
	return s.store.GetIncome(ctx, userID, id)
}

func (s *LedgerService) CreateIncome(ctx context.Context, userID string, e core.IncomeEntry) (core.IncomeEntry, error) {
	e.ID = ""
	e.UserID = userID
	e.Description = strings.TrimSpace(e.Description)
	if err := s.checkProject(ctx, userID, e.ProjectID); err != nil {
		return core.IncomeEntry{}, err
	}
	created, err := s.store.CreateIncome(ctx, e)
	if err != nil {
		return core.IncomeEntry{}, err
	}
	s.written(ctx, amqp.IncomeCreated, userID, created.ID, created.Amount)
	return created, nil
}

func (s *LedgerService) UpdateIncome(ctx context.Context, userID, id string, e core.IncomeEntry) (core.IncomeEntry, error) {
	e.ID = id
	e.UserID = userID
	e.Description = strings.TrimSpace(e.Description)
	if err := s.checkProject(ctx, userID, e.ProjectID); err != nil {
		return core.IncomeEntry{}, err
	}
	updated, err := s.store.UpdateIncome(ctx, e)
	if err != nil {
		return core.IncomeEntry{}, err
	}
	s.finance.Invalidate(userID)
	return updated, nil
}

func (s *LedgerService) DeleteIncome(ctx context.Context, userID, id string) error {
	e, err := s.store.GetIncome(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteIncome(ctx, userID, id); err != nil {
		return err
	}
	s.written(ctx, amqp.IncomeDeleted, userID, id, e.Amount)
	return nil
}

func (s *LedgerService) IncomeStats(ctx context.Context, userID string) (finance.LedgerStats, error) {
	all, err := s.store.ListIncome(ctx, userID)
	if err != nil {
		return finance.LedgerStats{}, fmt.Errorf("list income: %w", err)
	}
	return finance.ComputeLedgerStats(finance.IncomeLines(all)), nil
}

// ---- expenses ----

func (s *LedgerService) ListExpenses(ctx context.Context, userID string, f ledger.Filter) ([]core.ExpenseEntry, ledger.Pagination, error) {
	all, err := s.store.ListExpenses(ctx, userID)
	if err != nil {
		return nil, ledger.Pagination{}, fmt.Errorf("list expenses: %w", err)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.After(all[j].Date.Time) })
	page, p := ledger.Select(all, f.MatchExpense, f)
	return page, p, nil
}

func (s *LedgerService) GetExpense(ctx context.Context, userID, id string) (core.ExpenseEntry, error) {
	return s.store.GetExpense(ctx, userID, id)
}

func (s *LedgerService) CreateExpense(ctx context.Context, userID string, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	e.ID = ""
	e.UserID = userID
	e.Description = strings.TrimSpace(e.Description)
	if err := s.checkProject(ctx, userID, e.ProjectID); err != nil {
		return core.ExpenseEntry{}, err
	}
	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.ExpenseEntry{}, err
	}
	s.written(ctx, amqp.ExpenseCreated, userID, created.ID, created.Amount)
	return created, nil
}

func (s *LedgerService) UpdateExpense(ctx context.Context, userID, id string, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	e.ID = id
	e.UserID = userID
	e.Description = strings.TrimSpace(e.Description)
	if err := s.checkProject(ctx, userID, e.ProjectID); err != nil {
		return core.ExpenseEntry{}, err
	}
	updated, err := s.store.UpdateExpense(ctx, e)
	if err != nil {
		return core.ExpenseEntry{}, err
	}
	s.finance.Invalidate(userID)
	return updated, nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, userID, id string) error {
	e, err := s.store.GetExpense(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}
	s.written(ctx, amqp.ExpenseDeleted, userID, id, e.Amount)
	return nil
}

func (s *LedgerService) ExpenseStats(ctx context.Context, userID string) (finance.LedgerStats, error) {
	all, err := s.store.ListExpenses(ctx, userID)
	if err != nil {
		return finance.LedgerStats{}, fmt.Errorf("list expenses: %w", err)
	}
	return finance.ComputeLedgerStats(finance.ExpenseLines(all)), nil
}

// checkProject rejects references to projects the user does not own.
func (s *LedgerService) checkProject(ctx context.Context, userID, projectID string) error {
	if projectID == "" {
		return nil
	}
	if _, err := s.store.GetProject(ctx, userID, projectID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NotFoundError{Msg: "Project not found"}
		}
		return err
	}
	return nil
}

// ---- projects ----

func (s *LedgerService) ListProjects(ctx context.Context, userID string, f ledger.Filter) ([]core.Project, ledger.Pagination, error) {
	all, err := s.store.ListProjects(ctx, userID)
	if err != nil {
		return nil, ledger.Pagination{}, fmt.Errorf("list projects: %w", err)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedDate.After(all[j].CreatedDate.Time) })
	page, p := ledger.Select(all, f.MatchProject, f)
	return page, p, nil
}

func (s *LedgerService) GetProject(ctx context.Context, userID, id string) (core.Project, error) {
	return s.store.GetProject(ctx, userID, id)
}

// CreateProject defaults status to active and the creation date to today.
func (s *LedgerService) CreateProject(ctx context.Context, userID string, p core.Project) (core.Project, error) {
	p.ID = ""
	p.UserID = userID
	p.Name = strings.TrimSpace(p.Name)
	if p.Status == "" {
		p.Status = core.ProjectActive
	}
	if p.CreatedDate.IsZero() {
		p.CreatedDate = core.DateOf(s.now())
	}
	created, err := s.store.CreateProject(ctx, p)
	if err != nil {
		return core.Project{}, err
	}
	s.written(ctx, amqp.ProjectCreated, userID, created.ID, created.ExpectedPayment)
	return created, nil
}

func (s *LedgerService) UpdateProject(ctx context.Context, userID, id string, p core.Project) (core.Project, error) {
	existing, err := s.store.GetProject(ctx, userID, id)
	if err != nil {
		return core.Project{}, err
	}
	p.ID = id
	p.UserID = userID
	p.Name = strings.TrimSpace(p.Name)
	if p.CreatedDate.IsZero() {
		p.CreatedDate = existing.CreatedDate
	}
	if p.Status == "" {
		p.Status = existing.Status
	}
	updated, err := s.store.UpdateProject(ctx, p)
	if err != nil {
		return core.Project{}, err
	}
	s.finance.Invalidate(userID)
	return updated, nil
}

func (s *LedgerService) DeleteProject(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteProject(ctx, userID, id); err != nil {
		return err
	}
	s.finance.Invalidate(userID)
	return nil
}

func (s *LedgerService) ProjectStats(ctx context.Context, userID string) (finance.ProjectStats, error) {
	all, err := s.store.ListProjects(ctx, userID)
	if err != nil {
		return finance.ProjectStats{}, fmt.Errorf("list projects: %w", err)
	}
	return finance.ComputeProjectStats(all), nil
}

// ---- profile and activity ----

// Profile returns the stored profile, or a default one on first use.
func (s *LedgerService) Profile(ctx context.Context, userID string) (core.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return core.Profile{UserID: userID, Name: userID, Currency: DefaultCurrency, JoinDate: core.DateOf(s.now())}, nil
	}
	return p, err
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Currency string `json:"currency"`
}

func (s *LedgerService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (core.Profile, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return core.Profile{}, err
	}
	p.Name = strings.TrimSpace(in.Name)
	p.Email = strings.TrimSpace(in.Email)
	if c := strings.ToUpper(strings.TrimSpace(in.Currency)); c != "" {
		p.Currency = c
	}
	if err := p.Validate(); err != nil {
		return core.Profile{}, err
	}
	if err := s.store.SaveProfile(ctx, p); err != nil {
		return core.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

func (s *LedgerService) Activity(ctx context.Context, userID string, limit int) ([]core.Activity, error) {
	if limit < 1 {
		limit = DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}
	return s.store.ListActivity(ctx, userID, limit)
}
