// Package memory is an in-process ledger backend. Data lives for the life of
// the process; it can be seeded from a JSON file for demos and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

// SeedFile is looked up inside the data directory by NewFromFiles.
const SeedFile = "seed.json"

type userData struct {
	income   []core.IncomeEntry
	expenses []core.ExpenseEntry
	projects []core.Project
	goals    []core.SavingsGoal
	activity []core.Activity
}

type Store struct {
	mu       sync.Mutex
	users    map[string]*userData
	profiles map[string]core.Profile
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:    make(map[string]*userData),
		profiles: make(map[string]core.Profile),
	}
}

// Seed is the on-disk shape of SeedFile, keyed by user ID.
type Seed struct {
	Users map[string]SeedUser `json:"users"`
}

type SeedUser struct {
	Profile  *core.Profile       `json:"profile,omitempty"`
	Income   []core.IncomeEntry  `json:"income"`
	Expenses []core.ExpenseEntry `json:"expenses"`
	Projects []core.Project      `json:"projects"`
	Goals    []core.SavingsGoal  `json:"goals"`
}

// NewFromFiles returns a store seeded from base/seed.json when it exists.
// A missing file yields an empty store; a malformed one is an error.
func NewFromFiles(base string) (*Store, error) {
	s := New()
	raw, err := os.ReadFile(filepath.Join(base, SeedFile))
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	s.Load(seed)
	return s, nil
}

// Load merges seed data into the store, assigning IDs where missing.
func (s *Store) Load(seed Seed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, u := range seed.Users {
		d := s.user(userID)
		for _, e := range u.Income {
			e.UserID = userID
			e.ID = idOr(e.ID)
			d.income = append(d.income, e)
		}
		for _, e := range u.Expenses {
			e.UserID = userID
			e.ID = idOr(e.ID)
			d.expenses = append(d.expenses, e)
		}
		for _, p := range u.Projects {
			p.UserID = userID
			p.ID = idOr(p.ID)
			d.projects = append(d.projects, p)
		}
		for _, g := range u.Goals {
			g.ID = idOr(g.ID)
			d.goals = append(d.goals, g)
		}
		if u.Profile != nil {
			p := *u.Profile
			p.UserID = userID
			s.profiles[userID] = p
		}
	}
}

func idOr(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// user must be called with mu held.
func (s *Store) user(userID string) *userData {
	d, ok := s.users[userID]
	if !ok {
		d = &userData{}
		s.users[userID] = d
	}
	return d
}

func notFound(kind, id string) error {
	return core.NotFoundError{Msg: fmt.Sprintf("%s %s not found", kind, id)}
}

// ---- income ----

func (s *Store) ListIncome(_ context.Context, userID string) ([]core.IncomeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.IncomeEntry(nil), s.user(userID).income...), nil
}

func (s *Store) GetIncome(_ context.Context, userID, id string) (core.IncomeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.user(userID).income {
		if e.ID == id {
			return e, nil
		}
	}
	return core.IncomeEntry{}, notFound("income entry", id)
}

func (s *Store) CreateIncome(_ context.Context, e core.IncomeEntry) (core.IncomeEntry, error) {
	if err := e.Validate(); err != nil {
		return core.IncomeEntry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = idOr(e.ID)
	d := s.user(e.UserID)
	d.income = append(d.income, e)
	return e, nil
}

func (s *Store) UpdateIncome(_ context.Context, e core.IncomeEntry) (core.IncomeEntry, error) {
	if err := e.Validate(); err != nil {
		return core.IncomeEntry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.user(e.UserID)
	for i := range d.income {
		if d.income[i].ID == e.ID {
			d.income[i] = e
			return e, nil
		}
	}
	return core.IncomeEntry{}, notFound("income entry", e.ID)
}

func (s *Store) DeleteIncome(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.user(userID)
	for i := range d.income {
		if d.income[i].ID == id {
			d.income = append(d.income[:i], d.income[i+1:]...)
			return nil
		}
	}
	return notFound("income entry", id)
}

// ---- expenses ----

func (s *Store) ListExpenses(_ context.Context, userID string) ([]core.ExpenseEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ExpenseEntry(nil), s.user(userID).expenses...), nil
}

func (s *Store) GetExpense(_ context.Context, userID, id string) (core.ExpenseEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.user(userID).expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return core.ExpenseEntry{}, notFound("expense entry", id)
}

func (s *Store) CreateExpense(_ context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	if err := e.Validate(); err != nil {
		return core.ExpenseEntry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = idOr(e.ID)
	d := s.user(e.UserID)
	d.expenses = append(d.expenses, e)
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	if err := e.Validate(); err != nil {
		return core.ExpenseEntry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.user(e.UserID)
	for i := range d.expenses {
		if d.expenses[i].ID == e.ID {
			d.expenses[i] = e
			return e, nil
		}
	}
	return core.ExpenseEntry{}, notFound("expense entry", e.ID)
}

func (s *Store) DeleteExpense(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.user(userID)
	for i := range d.expenses {
		if d.expenses[i].ID == id {
			d.expenses = append(d.expenses[:i], d.expenses[i+1:]...)
			return nil
		}
	}
	return notFound("expense entry", id)
}

// ---- projects ----

func (s *Store) ListProjects(_ context.Context, userID string) ([]core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Project(nil), s.user(userID).projects...), nil
}

func (s *Store) GetProject(_ context.Context, userID, id string) (core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.user(userID).projects {
		if p.ID == id {
			return p, nil
		}
	}
	return core.Project{}, notFound("project", id)
}

func (s *Store) CreateProject(_ context.Context, p core.Project) (core.Project, error) {
	if err := p.Validate(); err != nil {
		return core.Project{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = idOr(p.ID)
	d := s.user(p.UserID)
	d.projects = append(d.projects, p)
	return p, nil
}

func (s *Store) UpdateProject(_ context.Context, p core.Project) (core.Project, error) {
	if err := p.Validate(); err != nil {
		return core.Project{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.user(p.UserID)
	for i := range d.projects {
		if d.projects[i].ID == p.ID {
			d.projects[i] = p
			return p, nil
		}
	}
	return core.Project{}, notFound("project", p.ID)
}

func (s *Store) DeleteProject(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.user(userID)
	for i := range d.projects {
		if d.projects[i].ID == id {
			d.projects = append(d.projects[:i], d.projects[i+1:]...)
			return nil
		}
	}
	return notFound("project", id)
}

// ---- goals ----

func (s *Store) LoadGoals(_ context.Context, userID string) ([]core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.SavingsGoal(nil), s.user(userID).goals...), nil
}

func (s *Store) SaveGoals(_ context.Context, userID string, goals []core.SavingsGoal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user(userID).goals = append([]core.SavingsGoal(nil), goals...)
	return nil
}

// ---- profiles ----

func (s *Store) GetProfile(_ context.Context, userID string) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return core.Profile{}, notFound("profile", userID)
	}
	return p, nil
}

func (s *Store) SaveProfile(_ context.Context, p core.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
	return nil
}

func (s *Store) ListProfiles(_ context.Context) ([]core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// ---- activity ----

func (s *Store) RecordActivity(_ context.Context, a core.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = idOr(a.ID)
	d := s.user(a.UserID)
	d.activity = append(d.activity, a)
	return nil
}

// ListActivity returns the newest entries first.
func (s *Store) ListActivity(_ context.Context, userID string, limit int) ([]core.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.user(userID).activity
	out := make([]core.Activity, 0, min(limit, len(src)))
	for i := len(src) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, src[i])
	}
	return out, nil
}
