// Package finance derives financial metrics from ledger data, validates
// savings contributions and produces rule-based tips. Everything here is
// pure: no I/O, no shared state, safe for concurrent use.
package finance

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var (
	hundred       = decimal.NewFromInt(100)
	monthsPerYear = decimal.NewFromInt(12)
)

// Snapshot is the derived aggregate of a user's ledger. It has no identity
// and is recomputed whenever its inputs change.
type Snapshot struct {
	TotalIncome      decimal.Decimal    `json:"totalIncome"`
	TotalExpenses    decimal.Decimal    `json:"totalExpenses"`
	TotalSavings     decimal.Decimal    `json:"totalSavings"`
	SavingsRate      decimal.Decimal    `json:"savingsRate"`
	MonthlyIncome    decimal.Decimal    `json:"monthlyIncome"`
	MonthlyExpenses  decimal.Decimal    `json:"monthlyExpenses"`
	AvailableBalance decimal.Decimal    `json:"availableBalance"`
	SavingsGoals     []core.SavingsGoal `json:"savingsGoals"`
}

// ComputeSnapshot reduces income, expenses and goals into a Snapshot.
// Savings are the sum of each goal's current amount, not its target.
func ComputeSnapshot(income []core.IncomeEntry, expenses []core.ExpenseEntry, goals []core.SavingsGoal) Snapshot {
	totalIncome := decimal.Zero
	for _, e := range income {
		totalIncome = totalIncome.Add(e.Amount)
	}
	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(e.Amount)
	}
	totalSavings := decimal.Zero
	for _, g := range goals {
		totalSavings = totalSavings.Add(g.CurrentAmount)
	}

	rate := decimal.Zero
	if totalIncome.IsPositive() {
		rate = totalSavings.Div(totalIncome).Mul(hundred)
	}

	return Snapshot{
		TotalIncome:      totalIncome,
		TotalExpenses:    totalExpenses,
		TotalSavings:     totalSavings,
		SavingsRate:      rate,
		MonthlyIncome:    totalIncome.Div(monthsPerYear),
		MonthlyExpenses:  totalExpenses.Div(monthsPerYear),
		AvailableBalance: totalIncome.Sub(totalExpenses).Sub(totalSavings),
		SavingsGoals:     goals,
	}
}

// HasActiveGoal reports whether any goal is still below its target.
func (s Snapshot) HasActiveGoal() bool {
	for _, g := range s.SavingsGoals {
		if g.IsActive() {
			return true
		}
	}
	return false
}
