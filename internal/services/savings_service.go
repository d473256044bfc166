package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// userLocks hands out one mutex per user. Contributions read the balance,
// then write the goal list; both must happen under the same lock.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// GoalInput is a new goal as submitted by a client.
type GoalInput struct {
	Title        string          `json:"title"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	Deadline     core.Date       `json:"deadline"`
	Type         core.GoalType   `json:"type"`
}

// ContributionResult is returned after a deposit lands.
type ContributionResult struct {
	Goal     finance.GoalProgress `json:"goal"`
	Applied  decimal.Decimal      `json:"applied"`
	Snapshot finance.Snapshot     `json:"snapshot"`
}

type SavingsService struct {
	goals     ledger.GoalStore
	finance   *FinanceService
	publisher Publisher
	logger    *log.Logger
	locks     userLocks
}

func NewSavingsService(goals ledger.GoalStore, fin *FinanceService, publisher Publisher, logger *log.Logger) *SavingsService {
	if logger == nil {
		logger = log.Nop()
	}
	return &SavingsService{
		goals:     goals,
		finance:   fin,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentSavings),
	}
}

func (s *SavingsService) ListGoals(ctx context.Context, userID string) ([]finance.GoalProgress, error) {
	goals, err := s.goals.LoadGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	return finance.GoalsProgress(goals), nil
}

func (s *SavingsService) CreateGoal(ctx context.Context, userID string, in GoalInput) (core.SavingsGoal, error) {
	g := core.SavingsGoal{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(in.Title),
		TargetAmount:  in.TargetAmount,
		CurrentAmount: decimal.Zero,
		Deadline:      in.Deadline,
		Type:          in.Type,
	}
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	goals, err := s.goals.LoadGoals(ctx, userID)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("load goals: %w", err)
	}
	if err := s.goals.SaveGoals(ctx, userID, append(goals, g)); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("save goals: %w", err)
	}
	s.finance.Invalidate(userID)

	s.logger.InfoContext(ctx, "Savings goal created",
		log.FieldUserID, userID,
		log.FieldGoalID, g.ID,
		log.FieldAmount, g.TargetAmount.StringFixed(2))
	publish(ctx, s.publisher, s.logger, amqp.NewEvent(amqp.GoalCreated, userID, g.ID, g.TargetAmount))
	return g, nil
}

func (s *SavingsService) DeleteGoal(ctx context.Context, userID, goalID string) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	goals, err := s.goals.LoadGoals(ctx, userID)
	if err != nil {
		return fmt.Errorf("load goals: %w", err)
	}
	idx := indexGoal(goals, goalID)
	if idx < 0 {
		return core.ErrGoalNotFound
	}
	removed := goals[idx]
	kept := append(goals[:idx:idx], goals[idx+1:]...)
	if err := s.goals.SaveGoals(ctx, userID, kept); err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	s.finance.Invalidate(userID)
	publish(ctx, s.publisher, s.logger, amqp.NewEvent(amqp.GoalDeleted, userID, goalID, removed.CurrentAmount))
	return nil
}

// Validate is a dry run of Contribute's balance checks.
func (s *SavingsService) Validate(ctx context.Context, userID string, amount decimal.Decimal) (finance.ValidationResult, error) {
	snap, err := s.finance.FreshSnapshot(ctx, userID)
	if err != nil {
		return finance.ValidationResult{}, err
	}
	return finance.ValidateContribution(amount, snap.AvailableBalance), nil
}

// Contribute moves amount from the available balance into a goal. The goal's
// current amount is capped at its target; the excess is not kept. A rejected
// amount returns a *finance.RejectionError.
func (s *SavingsService) Contribute(ctx context.Context, userID, goalID string, amount decimal.Decimal) (ContributionResult, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	d, err := s.finance.load(ctx, userID)
	if err != nil {
		return ContributionResult{}, err
	}
	snap := finance.ComputeSnapshot(d.income, d.expenses, d.goals)
	if err := finance.ValidateContribution(amount, snap.AvailableBalance).Err(); err != nil {
		s.logger.InfoContext(ctx, "Contribution rejected",
			log.FieldUserID, userID,
			log.FieldGoalID, goalID,
			log.FieldAmount, amount.StringFixed(2),
			"reason", err.Error())
		return ContributionResult{}, err
	}
	idx := indexGoal(snap.SavingsGoals, goalID)
	if idx < 0 {
		return ContributionResult{}, core.ErrGoalNotFound
	}

	goals := append([]core.SavingsGoal(nil), snap.SavingsGoals...)
	before := goals[idx].CurrentAmount
	goals[idx].CurrentAmount = finance.ApplyContribution(goals[idx], amount)
	applied := goals[idx].CurrentAmount.Sub(before)

	if err := s.goals.SaveGoals(ctx, userID, goals); err != nil {
		return ContributionResult{}, fmt.Errorf("save goals: %w", err)
	}
	s.finance.Invalidate(userID)

	after := finance.ComputeSnapshot(d.income, d.expenses, goals)

	log.NewStructuredLogger(s.logger).LogContribution(ctx, userID, goalID,
		applied.StringFixed(2), after.AvailableBalance.StringFixed(2))

	ev := amqp.NewEvent(amqp.ContributionApplied, userID, goalID, applied)
	ev.Balance = after.AvailableBalance
	publish(ctx, s.publisher, s.logger, ev)

	return ContributionResult{
		Goal:     finance.ProgressOf(goals[idx]),
		Applied:  applied,
		Snapshot: after,
	}, nil
}

func indexGoal(goals []core.SavingsGoal, id string) int {
	for i, g := range goals {
		if g.ID == id {
			return i
		}
	}
	return -1
}
