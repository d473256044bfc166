package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

const overviewView = "overview"

// Overview is everything the dashboard shows for one user.
type Overview struct {
	Snapshot   finance.Snapshot       `json:"snapshot"`
	Tips       []finance.Tip          `json:"tips"`
	TipSummary finance.TipSummary     `json:"tipSummary"`
	Dashboard  finance.Dashboard      `json:"dashboard"`
	Trend      []finance.MonthPoint   `json:"trend"`
	Goals      []finance.GoalProgress `json:"goals"`
}

// ledgerData is one consistent read of a user's ledgers.
type ledgerData struct {
	income   []core.IncomeEntry
	expenses []core.ExpenseEntry
	goals    []core.SavingsGoal
	projects []core.Project
}

type FinanceService struct {
	store  ledger.Store
	engine *finance.Engine
	cache  cache.Cache[Overview]
	logger *log.Logger
	now    func() time.Time

	// gens counts invalidations per user. A computed overview is only
	// stored if no invalidation happened while it was being loaded.
	mu   sync.Mutex
	gens map[string]uint64
}

// NewFinanceService builds the read side. A nil cache disables memoization.
func NewFinanceService(store ledger.Store, c cache.Cache[Overview], engine *finance.Engine, logger *log.Logger) *FinanceService {
	if engine == nil {
		engine = finance.NewEngine()
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &FinanceService{
		store:  store,
		engine: engine,
		cache:  c,
		logger: logger.WithComponent(log.ComponentFinance),
		now:    time.Now,
		gens:   make(map[string]uint64),
	}
}

func (s *FinanceService) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[userID]
}

// fill caches ov unless the user was invalidated after gen was read.
func (s *FinanceService) fill(key, userID string, gen uint64, ov Overview) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[userID] != gen {
		return false
	}
	s.cache.Set(key, ov)
	return true
}

func (s *FinanceService) load(ctx context.Context, userID string) (ledgerData, error) {
	var d ledgerData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.income, err = s.store.ListIncome(gctx, userID)
		if err != nil {
			err = fmt.Errorf("load income: %w", err)
		}
		return err
	})
	g.Go(func() (err error) {
		d.expenses, err = s.store.ListExpenses(gctx, userID)
		if err != nil {
			err = fmt.Errorf("load expenses: %w", err)
		}
		return err
	})
	g.Go(func() (err error) {
		d.goals, err = s.store.LoadGoals(gctx, userID)
		if err != nil {
			err = fmt.Errorf("load goals: %w", err)
		}
		return err
	})
	g.Go(func() (err error) {
		d.projects, err = s.store.ListProjects(gctx, userID)
		if err != nil {
			err = fmt.Errorf("load projects: %w", err)
		}
		return err
	})
	return d, g.Wait()
}

// FreshSnapshot bypasses the cache. Contributions validate against it.
func (s *FinanceService) FreshSnapshot(ctx context.Context, userID string) (finance.Snapshot, error) {
	d, err := s.load(ctx, userID)
	if err != nil {
		return finance.Snapshot{}, err
	}
	return finance.ComputeSnapshot(d.income, d.expenses, d.goals), nil
}

func (s *FinanceService) Overview(ctx context.Context, userID string) (Overview, error) {
	key := cache.Key(userID, overviewView)
	if s.cache != nil {
		if ov, ok := s.cache.Get(key); ok {
			return ov, nil
		}
	}

	gen := s.generation(userID)
	d, err := s.load(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	snap := finance.ComputeSnapshot(d.income, d.expenses, d.goals)
	tips := s.engine.Generate(snap)
	ov := Overview{
		Snapshot:   snap,
		Tips:       tips,
		TipSummary: finance.SummarizeTips(tips),
		Dashboard:  finance.BuildDashboard(d.income, d.expenses, d.projects),
		Trend:      finance.MonthlyTrend(d.income, d.expenses, s.now()),
		Goals:      finance.GoalsProgress(d.goals),
	}
	s.logger.DebugContext(ctx, "Overview computed",
		log.FieldUserID, userID,
		log.FieldTipCount, len(tips),
		log.FieldBalance, snap.AvailableBalance.StringFixed(2))

	if s.cache != nil && !s.fill(key, userID, gen, ov) {
		s.logger.DebugContext(ctx, "Overview changed while computing, not cached", log.FieldUserID, userID)
	}
	return ov, nil
}

func (s *FinanceService) Snapshot(ctx context.Context, userID string) (finance.Snapshot, error) {
	ov, err := s.Overview(ctx, userID)
	return ov.Snapshot, err
}

// Tips returns the ranked tips narrowed by q.
func (s *FinanceService) Tips(ctx context.Context, userID string, q finance.TipQuery) ([]finance.Tip, error) {
	if q.Category != "" && q.Category != finance.CategoryAll && !q.Category.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidCategory, q.Category)
	}
	ov, err := s.Overview(ctx, userID)
	if err != nil {
		return nil, err
	}
	return q.Apply(slices.Clone(ov.Tips)), nil
}

// Invalidate drops every cached view of the user. Overviews computed from
// reads that started before the call are not cached afterwards.
func (s *FinanceService) Invalidate(userID string) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[userID]++
	s.cache.DeletePrefix(cache.UserPrefix(userID))
}
