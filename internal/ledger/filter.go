package ledger

import (
	"fintrack/internal/core"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Normalize clamps page and limit to sane bounds.
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

func (f Filter) matchDate(d core.Date) bool {
	if !f.From.IsZero() && d.Before(f.From.Time) {
		return false
	}
	if !f.To.IsZero() && d.After(f.To.Time) {
		return false
	}
	return true
}

func (f Filter) MatchIncome(e core.IncomeEntry) bool {
	if f.ProjectID != "" && e.ProjectID != f.ProjectID {
		return false
	}
	if f.Category != "" && string(e.Category) != f.Category {
		return false
	}
	return f.matchDate(e.Date)
}

func (f Filter) MatchExpense(e core.ExpenseEntry) bool {
	if f.ProjectID != "" && e.ProjectID != f.ProjectID {
		return false
	}
	if f.Category != "" && string(e.Category) != f.Category {
		return false
	}
	return f.matchDate(e.Date)
}

func (f Filter) MatchProject(p core.Project) bool {
	return f.Status == "" || string(p.Status) == f.Status
}

// Select keeps items that match and returns the requested page.
func Select[T any](items []T, match func(T) bool, f Filter) ([]T, Pagination) {
	f = f.Normalize()
	matched := make([]T, 0, len(items))
	for _, it := range items {
		if match(it) {
			matched = append(matched, it)
		}
	}
	return Paginate(matched, f.Page, f.Limit)
}

// Paginate slices items into the given page.
func Paginate[T any](items []T, page, limit int) ([]T, Pagination) {
	total := len(items)
	pages := (total + limit - 1) / limit
	p := Pagination{
		CurrentPage: page,
		TotalPages:  pages,
		TotalItems:  total,
		HasNext:     page < pages,
		HasPrev:     page > 1,
	}
	start := (page - 1) * limit
	if start >= total {
		return []T{}, p
	}
	end := min(start+limit, total)
	return items[start:end], p
}
