package finance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const trendMonths = 12

// MonthPoint is one bucket of the savings trend chart.
type MonthPoint struct {
	Month    string          `json:"month"` // YYYY-MM
	Label    string          `json:"label"` // Jan, Feb, ...
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Savings  decimal.Decimal `json:"savings"`
}

// MonthlyTrend buckets entries into the twelve calendar months ending with
// now's month, oldest first. Savings is income minus expenses floored at zero.
func MonthlyTrend(income []core.IncomeEntry, expenses []core.ExpenseEntry, now time.Time) []MonthPoint {
	incomeByMonth := make(map[string]decimal.Decimal)
	for _, e := range income {
		k := e.Date.MonthKey()
		incomeByMonth[k] = incomeByMonth[k].Add(e.Amount)
	}
	expensesByMonth := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		k := e.Date.MonthKey()
		expensesByMonth[k] = expensesByMonth[k].Add(e.Amount)
	}

	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	points := make([]MonthPoint, 0, trendMonths)
	for i := trendMonths - 1; i >= 0; i-- {
		m := first.AddDate(0, -i, 0)
		key := m.Format("2006-01")
		inc := incomeByMonth[key]
		exp := expensesByMonth[key]
		points = append(points, MonthPoint{
			Month:    key,
			Label:    m.Format("Jan"),
			Income:   inc,
			Expenses: exp,
			Savings:  decimal.Max(decimal.Zero, inc.Sub(exp)),
		})
	}
	return points
}

// GoalProgress describes how far a goal is from its target.
type GoalProgress struct {
	Goal      core.SavingsGoal `json:"goal"`
	Percent   decimal.Decimal  `json:"percent"`
	Remaining decimal.Decimal  `json:"remaining"`
	Completed bool             `json:"completed"`
}

func ProgressOf(g core.SavingsGoal) GoalProgress {
	p := GoalProgress{
		Goal:      g,
		Percent:   decimal.Zero,
		Remaining: decimal.Max(decimal.Zero, g.TargetAmount.Sub(g.CurrentAmount)),
		Completed: !g.IsActive(),
	}
	if g.TargetAmount.IsPositive() {
		p.Percent = g.CurrentAmount.Div(g.TargetAmount).Mul(hundred).Round(2)
	}
	return p
}

func GoalsProgress(goals []core.SavingsGoal) []GoalProgress {
	out := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, ProgressOf(g))
	}
	return out
}

// Transaction is an income or expense line on the dashboard.
type Transaction struct {
	Type        string          `json:"type"` // income | expense
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        core.Date       `json:"date"`
	Category    string          `json:"category"`
	ProjectName string          `json:"projectName"`
}

type Dashboard struct {
	TotalIncome        decimal.Decimal `json:"totalIncome"`
	TotalExpenses      decimal.Decimal `json:"totalExpenses"`
	NetProfit          decimal.Decimal `json:"netProfit"`
	ActiveProjects     int             `json:"activeProjects"`
	IncomeShare        decimal.Decimal `json:"incomeShare"`
	ExpenseShare       decimal.Decimal `json:"expenseShare"`
	RecentTransactions []Transaction   `json:"recentTransactions"`
}

const recentPerKind = 3

// BuildDashboard summarizes the ledger for the landing page. Shares are the
// bar widths of income and expenses relative to the larger of the two.
func BuildDashboard(income []core.IncomeEntry, expenses []core.ExpenseEntry, projects []core.Project) Dashboard {
	snap := ComputeSnapshot(income, expenses, nil)
	d := Dashboard{
		TotalIncome:   snap.TotalIncome,
		TotalExpenses: snap.TotalExpenses,
		NetProfit:     snap.TotalIncome.Sub(snap.TotalExpenses),
		IncomeShare:   decimal.Zero,
		ExpenseShare:  decimal.Zero,
	}

	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
		if p.Status == core.ProjectActive {
			d.ActiveProjects++
		}
	}

	if larger := decimal.Max(snap.TotalIncome, snap.TotalExpenses); larger.IsPositive() {
		d.IncomeShare = decimal.Min(hundred, snap.TotalIncome.Div(larger).Mul(hundred)).Round(2)
		d.ExpenseShare = decimal.Min(hundred, snap.TotalExpenses.Div(larger).Mul(hundred)).Round(2)
	}

	projectName := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return "Unknown"
	}
	d.RecentTransactions = make([]Transaction, 0, 2*recentPerKind)
	for _, e := range income[max(0, len(income)-recentPerKind):] {
		d.RecentTransactions = append(d.RecentTransactions, Transaction{
			Type: "income", ID: e.ID, Amount: e.Amount, Description: e.Description,
			Date: e.Date, Category: string(e.Category), ProjectName: projectName(e.ProjectID),
		})
	}
	for _, e := range expenses[max(0, len(expenses)-recentPerKind):] {
		d.RecentTransactions = append(d.RecentTransactions, Transaction{
			Type: "expense", ID: e.ID, Amount: e.Amount, Description: e.Description,
			Date: e.Date, Category: string(e.Category), ProjectName: projectName(e.ProjectID),
		})
	}
	return d
}

// LedgerStats aggregates one side of the ledger.
type LedgerStats struct {
	Total             decimal.Decimal            `json:"total"`
	TotalEntries      int                        `json:"totalEntries"`
	Average           decimal.Decimal            `json:"average"`
	CategoryBreakdown map[string]decimal.Decimal `json:"categoryBreakdown"`
	MonthlyTrend      []MonthAmount              `json:"monthlyTrend"`
}

type MonthAmount struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// Line is the minimal view of a ledger entry that stats need.
type Line struct {
	Amount   decimal.Decimal
	Category string
	Date     core.Date
}

func IncomeLines(entries []core.IncomeEntry) []Line {
	out := make([]Line, len(entries))
	for i, e := range entries {
		out[i] = Line{Amount: e.Amount, Category: string(e.Category), Date: e.Date}
	}
	return out
}

func ExpenseLines(entries []core.ExpenseEntry) []Line {
	out := make([]Line, len(entries))
	for i, e := range entries {
		out[i] = Line{Amount: e.Amount, Category: string(e.Category), Date: e.Date}
	}
	return out
}

// ComputeLedgerStats returns totals, a category breakdown and a monthly
// series sorted by month.
func ComputeLedgerStats(lines []Line) LedgerStats {
	st := LedgerStats{
		Total:             decimal.Zero,
		Average:           decimal.Zero,
		TotalEntries:      len(lines),
		CategoryBreakdown: make(map[string]decimal.Decimal),
	}
	byMonth := make(map[string]decimal.Decimal)
	var months []string
	for _, l := range lines {
		st.Total = st.Total.Add(l.Amount)
		st.CategoryBreakdown[l.Category] = st.CategoryBreakdown[l.Category].Add(l.Amount)
		k := l.Date.MonthKey()
		if _, seen := byMonth[k]; !seen {
			months = append(months, k)
		}
		byMonth[k] = byMonth[k].Add(l.Amount)
	}
	if len(lines) > 0 {
		st.Average = st.Total.Div(decimal.NewFromInt(int64(len(lines)))).Round(2)
	}
	sort.Strings(months)
	st.MonthlyTrend = make([]MonthAmount, 0, len(months))
	for _, m := range months {
		st.MonthlyTrend = append(st.MonthlyTrend, MonthAmount{Month: m, Amount: byMonth[m]})
	}
	return st
}

type ProjectStats struct {
	TotalProjects        int             `json:"totalProjects"`
	ActiveProjects       int             `json:"activeProjects"`
	CompletedProjects    int             `json:"completedProjects"`
	TotalExpectedPayment decimal.Decimal `json:"totalExpectedPayment"`
}

func ComputeProjectStats(projects []core.Project) ProjectStats {
	st := ProjectStats{TotalProjects: len(projects), TotalExpectedPayment: decimal.Zero}
	for _, p := range projects {
		switch p.Status {
		case core.ProjectActive:
			st.ActiveProjects++
		case core.ProjectCompleted:
			st.CompletedProjects++
		}
		st.TotalExpectedPayment = st.TotalExpectedPayment.Add(p.ExpectedPayment)
	}
	return st
}
