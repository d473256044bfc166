package notify

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/finance"
)

const digestText = `Hello {{.Name}},

Here is where your finances stand.

  Available balance: {{money .Snapshot.AvailableBalance}}
  Savings rate:      {{percent .Snapshot.SavingsRate}}
  Total savings:     {{money .Snapshot.TotalSavings}}
{{if .Tips}}
Things to act on:
{{range .Tips}}
* {{.Title}}
  {{.Content}}
{{end}}{{else}}
Nothing urgent this week. Keep it up.
{{end}}
-- fintrack
`

var digestTmpl = template.Must(template.New("digest").Funcs(template.FuncMap{
	"money":   core.FormatAmount,
	"percent": func(d decimal.Decimal) string { return d.StringFixed(1) + "%" },
}).Parse(digestText))

// Digest is the per-user content of one digest mail.
type Digest struct {
	Profile  core.Profile
	Snapshot finance.Snapshot
	Tips     []finance.Tip
}

// DigestTips keeps only high priority actionable tips.
func DigestTips(tips []finance.Tip) []finance.Tip {
	var out []finance.Tip
	for _, t := range finance.FilterActionable(tips) {
		if t.Priority == finance.PriorityHigh {
			out = append(out, t)
		}
	}
	return out
}

// Render builds the mail for d.
func (d Digest) Render() (Message, error) {
	name := strings.TrimSpace(d.Profile.Name)
	if name == "" {
		name = "there"
	}
	var buf bytes.Buffer
	err := digestTmpl.Execute(&buf, struct {
		Name     string
		Snapshot finance.Snapshot
		Tips     []finance.Tip
	}{name, d.Snapshot, d.Tips})
	if err != nil {
		return Message{}, fmt.Errorf("render digest: %w", err)
	}
	subject := "Your weekly finance digest"
	if n := len(d.Tips); n > 0 {
		subject = fmt.Sprintf("Your weekly finance digest: %d item(s) need attention", n)
	}
	return Message{To: d.Profile.Email, Subject: subject, Body: buf.String()}, nil
}
