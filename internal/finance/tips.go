package finance

import (
	"sort"
)

type (
	Category string
	Priority string
)

const (
	CategoryBudgeting Category = "budgeting"
	CategorySaving    Category = "saving"
	CategoryInvesting Category = "investing"
	CategoryTaxes     Category = "taxes"
	CategoryEmergency Category = "emergency"
	CategoryGoals     Category = "goals"

	// CategoryAll is what callers pass to mean "do not filter by category".
	// No tip ever carries it.
	CategoryAll Category = "all"
)

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Tip is a single recommendation produced by a rule.
type Tip struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Category   Category `json:"category"`
	Priority   Priority `json:"priority"`
	Actionable bool     `json:"actionable"`
}

// Weight orders priorities: high=3, medium=2, low=1, anything else 0.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryBudgeting, CategorySaving, CategoryInvesting, CategoryTaxes, CategoryEmergency, CategoryGoals:
		return true
	}
	return false
}

// Rule inspects a snapshot and optionally emits one tip.
type Rule func(Snapshot) (Tip, bool)

// Engine evaluates an ordered list of rules.
type Engine struct {
	rules []Rule
}

// NewEngine builds an engine over rules. With no rules it uses DefaultRules.
func NewEngine(rules ...Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Engine{rules: rules}
}

// Generate runs every rule against the same snapshot and returns the
// triggered tips, highest priority first. Ties keep rule order.
func (e *Engine) Generate(s Snapshot) []Tip {
	tips := make([]Tip, 0, len(e.rules))
	for _, rule := range e.rules {
		if tip, ok := rule(s); ok {
			tips = append(tips, tip)
		}
	}
	sort.SliceStable(tips, func(i, j int) bool {
		return tips[i].Priority.Weight() > tips[j].Priority.Weight()
	})
	return tips
}

var defaultEngine = NewEngine()

// GenerateTips evaluates DefaultRules against s.
func GenerateTips(s Snapshot) []Tip {
	return defaultEngine.Generate(s)
}
