package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/services"
)

const (
	labelWidth = 24
	valueWidth = 16
	titleWidth = 40
	tagWidth   = 10
)

var funcs = template.FuncMap{
	"money": core.FormatAmount,
	"percent": func(d decimal.Decimal) string {
		return d.StringFixed(1) + "%"
	},
	"pair": func(label string, value any) string {
		return fmt.Sprintf("| %-*s | %*v |", labelWidth, label, valueWidth, value)
	},
	"pairLine": func() string {
		return fmt.Sprintf("+%s+%s+", strings.Repeat("-", labelWidth+2), strings.Repeat("-", valueWidth+2))
	},
	"tipRow": func(priority, category, title string) string {
		return fmt.Sprintf("| %-*s | %-*s | %-*s |", tagWidth, priority, tagWidth, category, titleWidth, truncate(title, titleWidth))
	},
	"tipLine": func() string {
		return fmt.Sprintf("+%s+%s+%s+", strings.Repeat("-", tagWidth+2), strings.Repeat("-", tagWidth+2), strings.Repeat("-", titleWidth+2))
	},
	"goalRow": func(title, saved, target, progress string) string {
		return fmt.Sprintf("| %-*s | %*s | %*s | %*s |", labelWidth, truncate(title, labelWidth), valueWidth, saved, valueWidth, target, tagWidth, progress)
	},
	"goalLine": func() string {
		return fmt.Sprintf("+%s+%s+%s+%s+", strings.Repeat("-", labelWidth+2), strings.Repeat("-", valueWidth+2), strings.Repeat("-", valueWidth+2), strings.Repeat("-", tagWidth+2))
	},
}

const templates = `
{{define "snapshot"}}Financial snapshot for {{.User}}

{{pairLine}}
{{pair "Total income" (money .Snapshot.TotalIncome)}}
{{pair "Total expenses" (money .Snapshot.TotalExpenses)}}
{{pair "Total savings" (money .Snapshot.TotalSavings)}}
{{pair "Savings rate" (percent .Snapshot.SavingsRate)}}
{{pair "Income this month" (money .Snapshot.MonthlyIncome)}}
{{pair "Expenses this month" (money .Snapshot.MonthlyExpenses)}}
{{pair "Available balance" (money .Snapshot.AvailableBalance)}}
{{pairLine}}
{{end}}
{{define "tips"}}{{if not .}}No tips right now.
{{else}}{{tipLine}}
{{tipRow "Priority" "Category" "Tip"}}
{{tipLine}}
{{range .}}{{tipRow (print .Priority) (print .Category) .Title}}
{{end}}{{tipLine}}
{{range .}}
{{.Title}}{{if .Actionable}} [actionable]{{end}}
  {{.Content}}
{{end}}{{end}}{{end}}
{{define "goals"}}{{if not .}}No savings goals yet.
{{else}}{{goalLine}}
{{goalRow "Goal" "Saved" "Target" "Progress"}}
{{goalLine}}
{{range .}}{{goalRow .Goal.Title (money .Goal.CurrentAmount) (money .Goal.TargetAmount) (percent .Percent)}}
{{end}}{{goalLine}}
{{end}}{{end}}
{{define "validation"}}{{if .Result.IsValid}}OK: {{money .Amount}} can be contributed.
{{else}}Rejected: {{.Result.Error}}
{{end}}{{end}}
{{define "contribution"}}Applied {{money .Applied}} to "{{.Goal.Goal.Title}}" ({{money .Goal.Goal.CurrentAmount}} of {{money .Goal.Goal.TargetAmount}}{{if .Goal.Completed}}, completed{{end}}).
Available balance: {{money .Snapshot.AvailableBalance}}
{{end}}`

var reportTemplates = template.Must(template.New("report").Funcs(funcs).Parse(templates))

// Reporter renders command results as plain-text tables.
type Reporter struct {
	writer io.Writer
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (r *Reporter) render(name string, data any) error {
	if err := reportTemplates.ExecuteTemplate(r.writer, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

func (r *Reporter) Snapshot(user string, snap finance.Snapshot) error {
	return r.render("snapshot", struct {
		User     string
		Snapshot finance.Snapshot
	}{user, snap})
}

func (r *Reporter) Tips(tips []finance.Tip) error {
	return r.render("tips", tips)
}

func (r *Reporter) Goals(goals []finance.GoalProgress) error {
	return r.render("goals", goals)
}

func (r *Reporter) Validation(amount decimal.Decimal, res finance.ValidationResult) error {
	return r.render("validation", struct {
		Amount decimal.Decimal
		Result finance.ValidationResult
	}{amount, res})
}

func (r *Reporter) Contribution(res services.ContributionResult) error {
	return r.render("contribution", res)
}

func (r *Reporter) Token(token string) error {
	_, err := fmt.Fprintln(r.writer, token)
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
