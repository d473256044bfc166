package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func income(amounts ...string) []core.IncomeEntry {
	out := make([]core.IncomeEntry, len(amounts))
	for i, a := range amounts {
		out[i] = core.IncomeEntry{Amount: d(a), Category: core.IncomeProjectPayment, Date: core.NewDate(2026, 1, 1)}
	}
	return out
}

func expenses(amounts ...string) []core.ExpenseEntry {
	out := make([]core.ExpenseEntry, len(amounts))
	for i, a := range amounts {
		out[i] = core.ExpenseEntry{Amount: d(a), Category: core.ExpenseSoftware, Date: core.NewDate(2026, 1, 1)}
	}
	return out
}

func goal(current, target string) core.SavingsGoal {
	return core.SavingsGoal{Title: "g", CurrentAmount: d(current), TargetAmount: d(target), Type: core.Monthly}
}

func tipIDs(tips []Tip) []string {
	ids := make([]string, len(tips))
	for i, t := range tips {
		ids[i] = t.ID
	}
	return ids
}

func TestComputeSnapshot(t *testing.T) {
	t.Run("balance identity holds exactly", func(t *testing.T) {
		s := ComputeSnapshot(income("1000.10", "0.20"), expenses("300.05", "0.10"), []core.SavingsGoal{goal("100.03", "500")})
		assert.True(t, s.TotalIncome.Equal(d("1000.30")))
		assert.True(t, s.TotalExpenses.Equal(d("300.15")))
		assert.True(t, s.TotalSavings.Equal(d("100.03")))
		assert.True(t, s.AvailableBalance.Equal(s.TotalIncome.Sub(s.TotalExpenses).Sub(s.TotalSavings)))
		assert.True(t, s.AvailableBalance.Equal(d("600.12")))
	})

	t.Run("zero income gives zero rate", func(t *testing.T) {
		s := ComputeSnapshot(nil, expenses("50"), []core.SavingsGoal{goal("10", "20")})
		assert.True(t, s.SavingsRate.IsZero())
		assert.True(t, s.AvailableBalance.Equal(d("-60")))
	})

	t.Run("savings use current amount not target", func(t *testing.T) {
		s := ComputeSnapshot(income("1200"), nil, []core.SavingsGoal{goal("120", "10000")})
		assert.True(t, s.TotalSavings.Equal(d("120")))
		assert.True(t, s.SavingsRate.Equal(d("10")))
		assert.True(t, s.MonthlyIncome.Equal(d("100")))
	})

	t.Run("input order does not matter", func(t *testing.T) {
		a := ComputeSnapshot(income("1", "2", "3"), expenses("4", "5"), nil)
		b := ComputeSnapshot(income("3", "1", "2"), expenses("5", "4"), nil)
		assert.True(t, a.TotalIncome.Equal(b.TotalIncome))
		assert.True(t, a.AvailableBalance.Equal(b.AvailableBalance))
	})
}

func TestValidateContribution(t *testing.T) {
	cases := []struct {
		name    string
		amount  string
		balance string
		valid   bool
		msg     string
	}{
		{"zero amount", "0", "100", false, "Amount must be greater than $0"},
		{"negative amount", "-5", "100", false, "Amount must be greater than $0"},
		{"above balance", "150", "100", false, "Insufficient funds. Available balance: $100.00"},
		{"insufficient wins over minimum", "0.5", "0.3", false, "Insufficient funds. Available balance: $0.30"},
		{"below minimum with ample balance", "0.5", "100", false, "Minimum savings amount is $1.00"},
		{"exactly the balance", "100", "100", true, ""},
		{"exactly the minimum", "1", "1", true, ""},
		{"negative balance", "10", "-20", false, "Insufficient funds. Available balance: $-20.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ValidateContribution(d(tc.amount), d(tc.balance))
			assert.Equal(t, tc.valid, res.IsValid)
			assert.Equal(t, tc.msg, res.Error)
			if tc.valid {
				assert.NoError(t, res.Err())
			} else {
				var rej *RejectionError
				require.ErrorAs(t, res.Err(), &rej)
				assert.Equal(t, tc.msg, rej.Reason)
			}
		})
	}
}

func TestApplyContribution(t *testing.T) {
	assert.True(t, ApplyContribution(goal("80", "100"), d("50")).Equal(d("100")), "clamped at target")
	assert.True(t, ApplyContribution(goal("10", "100"), d("5")).Equal(d("15")))
	assert.True(t, ApplyContribution(goal("0", "100"), d("100")).Equal(d("100")))
}

func TestGenerateTips_EmergencyFund(t *testing.T) {
	tips := GenerateTips(Snapshot{TotalSavings: decimal.Zero, MonthlyExpenses: d("1000")})
	require.NotEmpty(t, tips)
	assert.Equal(t, "emergency-fund", tips[0].ID)
	assert.Equal(t, PriorityHigh, tips[0].Priority)
	assert.Equal(t, CategoryEmergency, tips[0].Category)
}

func TestGenerateTips_SavingsRateBranches(t *testing.T) {
	rateIDs := map[string]bool{"increase-savings-rate": true, "good-savings-rate": true, "excellent-savings-rate": true}
	cases := []struct {
		rate string
		want string
	}{
		{"0", "increase-savings-rate"},
		{"9.99", "increase-savings-rate"},
		{"10", "good-savings-rate"},
		{"19.9", "good-savings-rate"},
		{"20", "excellent-savings-rate"},
		{"25", "excellent-savings-rate"},
	}
	for _, tc := range cases {
		t.Run(tc.rate, func(t *testing.T) {
			var found []string
			for _, tip := range GenerateTips(Snapshot{SavingsRate: d(tc.rate)}) {
				if rateIDs[tip.ID] {
					found = append(found, tip.ID)
				}
			}
			assert.Equal(t, []string{tc.want}, found)
		})
	}
}

func TestGenerateTips_ExpenseRatioSuppressedWithoutIncome(t *testing.T) {
	s := ComputeSnapshot(nil, expenses("500"), nil)
	assert.NotContains(t, tipIDs(GenerateTips(s)), "reduce-expenses")

	s = ComputeSnapshot(income("1000"), expenses("701"), nil)
	assert.Contains(t, tipIDs(GenerateTips(s)), "reduce-expenses")

	s = ComputeSnapshot(income("1000"), expenses("700"), nil)
	assert.NotContains(t, tipIDs(GenerateTips(s)), "reduce-expenses")
}

func TestGenerateTips_SortedByPriorityStable(t *testing.T) {
	// Deficit scenario: four high tips in rule order, then one medium.
	s := ComputeSnapshot(income("1000"), expenses("2000"), nil)
	assert.Equal(t, []string{
		"emergency-fund",
		"increase-savings-rate",
		"reduce-expenses",
		"budget-deficit",
		"diversify-income",
	}, tipIDs(GenerateTips(s)))

	// Surplus scenario: the low-priority savings tip moves to the end.
	s = ComputeSnapshot(income("12000"), nil, []core.SavingsGoal{goal("6000", "6000")})
	assert.Equal(t, []string{
		"invest-surplus",
		"set-savings-goals",
		"diversify-income",
		"excellent-savings-rate",
	}, tipIDs(GenerateTips(s)))

	for _, tip := range GenerateTips(s) {
		assert.True(t, tip.Actionable)
	}
}

func TestGenerateTips_TaxPlanning(t *testing.T) {
	s := ComputeSnapshot(income("60000.12"), nil, nil)
	assert.Contains(t, tipIDs(GenerateTips(s)), "tax-planning")

	s = ComputeSnapshot(income("60000"), nil, nil)
	assert.NotContains(t, tipIDs(GenerateTips(s)), "tax-planning")
}

func TestEndToEndScenario(t *testing.T) {
	s := ComputeSnapshot(income("5000"), expenses("2000"), []core.SavingsGoal{goal("500", "3000")})

	assert.True(t, s.TotalIncome.Equal(d("5000")))
	assert.True(t, s.TotalExpenses.Equal(d("2000")))
	assert.True(t, s.TotalSavings.Equal(d("500")))
	assert.True(t, s.AvailableBalance.Equal(d("2500")))
	assert.True(t, s.SavingsRate.Equal(d("10")))
	assert.Equal(t, "416.67", s.MonthlyIncome.StringFixed(2))

	tips := GenerateTips(s)
	assert.Equal(t, []string{"emergency-fund", "good-savings-rate", "invest-surplus", "diversify-income"}, tipIDs(tips))
	assert.Equal(t, PriorityHigh, tips[0].Priority)
	assert.Equal(t, PriorityMedium, tips[1].Priority)
	assert.Equal(t,
		"You currently have $500.00 in savings. Financial experts recommend having 6 months of expenses (approximately $1000.00) as an emergency fund. Consider allocating a portion of your available balance ($2500.00) to build this safety net.",
		tips[0].Content)
	assert.Equal(t,
		"Your savings rate of 10.0% is above the recommended 10% minimum. Consider increasing it to 20% for even better financial security and faster goal achievement.",
		tips[1].Content)
}

func TestEngine_CustomRules(t *testing.T) {
	always := func(id string, p Priority) Rule {
		return func(Snapshot) (Tip, bool) { return Tip{ID: id, Priority: p}, true }
	}
	never := func(Snapshot) (Tip, bool) { return Tip{}, false }

	e := NewEngine(always("a", PriorityLow), never, always("b", PriorityHigh), always("c", PriorityLow))
	assert.Equal(t, []string{"b", "a", "c"}, tipIDs(e.Generate(Snapshot{})))
}

func TestFilters(t *testing.T) {
	tips := []Tip{
		{ID: "1", Category: CategoryEmergency, Actionable: true, Priority: PriorityHigh},
		{ID: "2", Category: CategoryBudgeting, Actionable: false, Priority: PriorityMedium},
		{ID: "3", Category: CategoryEmergency, Actionable: false, Priority: PriorityLow},
		{ID: "4", Category: CategoryTaxes, Actionable: true, Priority: PriorityMedium},
	}

	assert.Equal(t, []string{"1", "3"}, tipIDs(FilterByCategory(tips, CategoryEmergency)))
	assert.Equal(t, []string{"1", "2", "3", "4"}, tipIDs(FilterByCategory(tips, CategoryAll)))
	assert.Empty(t, FilterByCategory(tips, CategoryGoals))
	assert.Equal(t, []string{"1", "4"}, tipIDs(FilterActionable(tips)))
	assert.Equal(t, []string{"1"}, tipIDs(TipQuery{Category: CategoryEmergency, ActionableOnly: true}.Apply(tips)))
	assert.Len(t, tips, 4, "input must not be modified")

	sum := SummarizeTips(tips)
	assert.Equal(t, TipSummary{Total: 4, High: 1, Medium: 2, Low: 1, Actionable: 2}, sum)
}
