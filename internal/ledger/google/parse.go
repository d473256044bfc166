package google

import (
	"fmt"
	"sort"
	"strings"

	"fintrack/internal/core"
)

type columns struct {
	id, user, date, desc, amount, category, project int
}

// parseHeader locates the ledger columns. Project is optional.
func parseHeader(values [][]any) (columns, error) {
	if len(values) == 0 {
		return columns{}, fmt.Errorf("unexpected ledger header: sheet is empty")
	}
	headers := toStrings(values[0])
	c := columns{
		id:       indexOf(headers, "ID"),
		user:     indexOf(headers, "User"),
		date:     indexOf(headers, "Date"),
		desc:     indexOf(headers, "Description"),
		amount:   indexOf(headers, "Amount"),
		category: indexOf(headers, "Category"),
		project:  indexOf(headers, "Project"),
	}
	var missing []string
	for name, idx := range map[string]int{"ID": c.id, "User": c.user, "Date": c.date, "Description": c.desc, "Amount": c.amount, "Category": c.category} {
		if idx == -1 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return columns{}, fmt.Errorf("unexpected ledger header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}
	return c, nil
}

type rawRow struct {
	id, desc, category, project string
	date                        core.Date
	amount                      string
}

// rows yields the well-formed rows belonging to userID. Rows with an
// unparsable date or amount are skipped; the listing is best effort.
func rows(values [][]any, userID string) ([]rawRow, error) {
	if len(values) == 0 {
		return nil, nil
	}
	c, err := parseHeader(values)
	if err != nil {
		return nil, err
	}
	var out []rawRow
	for i := 1; i < len(values); i++ {
		r := toStrings(values[i])
		if safeGet(r, c.id) == "" || safeGet(r, c.user) != userID {
			continue
		}
		d, err := core.ParseDate(safeGet(r, c.date))
		if err != nil {
			continue
		}
		out = append(out, rawRow{
			id:       safeGet(r, c.id),
			desc:     safeGet(r, c.desc),
			category: strings.ToLower(safeGet(r, c.category)),
			project:  safeGet(r, c.project),
			date:     d,
			amount:   safeGet(r, c.amount),
		})
	}
	return out, nil
}

func parseIncome(values [][]any, userID string) ([]core.IncomeEntry, error) {
	raw, err := rows(values, userID)
	if err != nil {
		return nil, err
	}
	out := make([]core.IncomeEntry, 0, len(raw))
	for _, r := range raw {
		amt, err := core.ParseAmount(r.amount)
		if err != nil {
			continue
		}
		out = append(out, core.IncomeEntry{
			ID:          r.id,
			UserID:      userID,
			ProjectID:   r.project,
			Amount:      amt,
			Description: r.desc,
			Date:        r.date,
			Category:    core.IncomeCategory(r.category),
		})
	}
	return out, nil
}

func parseExpenses(values [][]any, userID string) ([]core.ExpenseEntry, error) {
	raw, err := rows(values, userID)
	if err != nil {
		return nil, err
	}
	out := make([]core.ExpenseEntry, 0, len(raw))
	for _, r := range raw {
		amt, err := core.ParseAmount(r.amount)
		if err != nil {
			continue
		}
		out = append(out, core.ExpenseEntry{
			ID:          r.id,
			UserID:      userID,
			ProjectID:   r.project,
			Amount:      amt,
			Description: r.desc,
			Date:        r.date,
			Category:    core.ExpenseCategory(r.category),
		})
	}
	return out, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
