package finance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Thresholds parameterize the default rule set.
type Thresholds struct {
	EmergencyFundMonths  int64
	LowSavingsRate       decimal.Decimal // percent
	HighSavingsRate      decimal.Decimal // percent
	ExpenseRatioLimit    decimal.Decimal // percent of income
	SurplusIncomeMonths  int64
	TaxPlanningMonthly   decimal.Decimal
	TargetSavingsPortion decimal.Decimal // share of monthly income
}

// DefaultThresholds returns the thresholds used by DefaultRules.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EmergencyFundMonths:  6,
		LowSavingsRate:       decimal.NewFromInt(10),
		HighSavingsRate:      decimal.NewFromInt(20),
		ExpenseRatioLimit:    decimal.NewFromInt(70),
		SurplusIncomeMonths:  2,
		TaxPlanningMonthly:   decimal.NewFromInt(5000),
		TargetSavingsPortion: decimal.New(1, -1),
	}
}

// DefaultRules returns the built-in rules in evaluation order.
func DefaultRules() []Rule {
	return NewRules(DefaultThresholds())
}

// NewRules builds the built-in rule set over custom thresholds.
func NewRules(th Thresholds) []Rule {
	return []Rule{
		EmergencyFundRule(th),
		SavingsRateRule(th),
		ExpenseRatioRule(th),
		AvailableBalanceRule(th),
		SavingsGoalsRule(th),
		TaxPlanningRule(th),
		DiversifyIncomeRule(),
	}
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func emergencyTarget(s Snapshot, th Thresholds) decimal.Decimal {
	return s.MonthlyExpenses.Mul(decimal.NewFromInt(th.EmergencyFundMonths))
}

func EmergencyFundRule(th Thresholds) Rule {
	return func(s Snapshot) (Tip, bool) {
		target := emergencyTarget(s, th)
		if !s.TotalSavings.LessThan(target) {
			return Tip{}, false
		}
		return Tip{
			ID:    "emergency-fund",
			Title: "Build Your Emergency Fund",
			Content: fmt.Sprintf("You currently have %s in savings. Financial experts recommend having %d months of expenses (approximately %s) as an emergency fund. Consider allocating a portion of your available balance (%s) to build this safety net.",
				money(s.TotalSavings), th.EmergencyFundMonths, money(target), money(s.AvailableBalance)),
			Category:   CategoryEmergency,
			Priority:   PriorityHigh,
			Actionable: true,
		}, true
	}
}

// SavingsRateRule always fires with exactly one of three tips.
func SavingsRateRule(th Thresholds) Rule {
	return func(s Snapshot) (Tip, bool) {
		rate := s.SavingsRate.StringFixed(1)
		switch {
		case s.SavingsRate.LessThan(th.LowSavingsRate):
			increase := s.MonthlyIncome.Mul(th.TargetSavingsPortion).Sub(s.TotalSavings.Div(monthsPerYear))
			return Tip{
				ID:    "increase-savings-rate",
				Title: "Increase Your Savings Rate",
				Content: fmt.Sprintf("Your current savings rate is %s%%. Financial advisors recommend saving at least %s-%s%% of your income. Try to increase your monthly savings by %s to reach the %s%% target.",
					rate, th.LowSavingsRate, th.HighSavingsRate, money(increase), th.LowSavingsRate),
				Category:   CategorySaving,
				Priority:   PriorityHigh,
				Actionable: true,
			}, true
		case s.SavingsRate.LessThan(th.HighSavingsRate):
			return Tip{
				ID:    "good-savings-rate",
				Title: "Great Savings Progress!",
				Content: fmt.Sprintf("Your savings rate of %s%% is above the recommended %s%% minimum. Consider increasing it to %s%% for even better financial security and faster goal achievement.",
					rate, th.LowSavingsRate, th.HighSavingsRate),
				Category:   CategorySaving,
				Priority:   PriorityMedium,
				Actionable: true,
			}, true
		default:
			return Tip{
				ID:    "excellent-savings-rate",
				Title: "Excellent Savings Discipline!",
				Content: fmt.Sprintf("Outstanding! Your savings rate of %s%% is excellent. You're well on your way to financial independence. Consider exploring investment opportunities to grow your wealth faster.",
					rate),
				Category:   CategoryInvesting,
				Priority:   PriorityLow,
				Actionable: true,
			}, true
		}
	}
}

// ExpenseRatioRule is suppressed when there is no income to compare against.
func ExpenseRatioRule(th Thresholds) Rule {
	return func(s Snapshot) (Tip, bool) {
		if !s.TotalIncome.IsPositive() {
			return Tip{}, false
		}
		ratio := s.TotalExpenses.Div(s.TotalIncome).Mul(hundred)
		if !ratio.GreaterThan(th.ExpenseRatioLimit) {
			return Tip{}, false
		}
		return Tip{
			ID:    "reduce-expenses",
			Title: "Review Your Expenses",
			Content: fmt.Sprintf("Your expenses account for %s%% of your income. Consider reviewing your spending categories to identify areas where you can cut back. The 50/30/20 rule suggests spending no more than 50%% on needs and 30%% on wants.",
				ratio.StringFixed(1)),
			Category:   CategoryBudgeting,
			Priority:   PriorityHigh,
			Actionable: true,
		}, true
	}
}

// AvailableBalanceRule emits a surplus tip, a deficit tip, or nothing.
func AvailableBalanceRule(th Thresholds) Rule {
	return func(s Snapshot) (Tip, bool) {
		switch {
		case s.AvailableBalance.GreaterThan(s.MonthlyIncome.Mul(decimal.NewFromInt(th.SurplusIncomeMonths))):
			return Tip{
				ID:    "invest-surplus",
				Title: "Consider Investing Your Surplus",
				Content: fmt.Sprintf("You have %s available. This surplus could be working harder for you. Consider investing in index funds, stocks, or other investment vehicles to grow your wealth over time.",
					money(s.AvailableBalance)),
				Category:   CategoryInvesting,
				Priority:   PriorityMedium,
				Actionable: true,
			}, true
		case s.AvailableBalance.IsNegative():
			return Tip{
				ID:    "budget-deficit",
				Title: "Address Budget Deficit",
				Content: fmt.Sprintf("You're spending more than you earn. Your deficit is %s. Focus on reducing expenses or increasing income to get back on track financially.",
					money(s.AvailableBalance.Abs())),
				Category:   CategoryBudgeting,
				Priority:   PriorityHigh,
				Actionable: true,
			}, true
		}
		return Tip{}, false
	}
}

func SavingsGoalsRule(th Thresholds) Rule {
	return func(s Snapshot) (Tip, bool) {
		if s.HasActiveGoal() || !s.TotalSavings.GreaterThan(emergencyTarget(s, th)) {
			return Tip{}, false
		}
		return Tip{
			ID:         "set-savings-goals",
			Title:      "Set New Savings Goals",
			Content:    "You have a solid emergency fund! Consider setting specific savings goals for things like a house down payment, vacation, new equipment, or retirement. Having clear goals makes saving more motivating.",
			Category:   CategoryGoals,
			Priority:   PriorityMedium,
			Actionable: true,
		}, true
	}
}

func TaxPlanningRule(th Thresholds) Rule {
	return func(s Snapshot) (Tip, bool) {
		if !s.MonthlyIncome.GreaterThan(th.TaxPlanningMonthly) {
			return Tip{}, false
		}
		return Tip{
			ID:         "tax-planning",
			Title:      "Consider Tax Planning Strategies",
			Content:    "With your income level, you might benefit from tax planning strategies. Consider contributing to retirement accounts (401k, IRA), tracking business expenses for deductions, and consulting with a tax professional.",
			Category:   CategoryTaxes,
			Priority:   PriorityMedium,
			Actionable: true,
		}, true
	}
}

func DiversifyIncomeRule() Rule {
	return func(s Snapshot) (Tip, bool) {
		if !s.TotalIncome.IsPositive() {
			return Tip{}, false
		}
		return Tip{
			ID:         "diversify-income",
			Title:      "Diversify Your Income Streams",
			Content:    "As a freelancer, consider developing multiple income streams to reduce risk. This could include recurring clients, passive income through courses or products, or different types of projects.",
			Category:   CategoryBudgeting,
			Priority:   PriorityMedium,
			Actionable: true,
		}, true
	}
}
