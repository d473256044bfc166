package finance

// FilterByCategory keeps tips of the given category, preserving order.
// CategoryAll returns the input unchanged.
func FilterByCategory(tips []Tip, category Category) []Tip {
	if category == CategoryAll {
		return tips
	}
	out := make([]Tip, 0, len(tips))
	for _, t := range tips {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// FilterActionable keeps actionable tips, preserving order.
func FilterActionable(tips []Tip) []Tip {
	out := make([]Tip, 0, len(tips))
	for _, t := range tips {
		if t.Actionable {
			out = append(out, t)
		}
	}
	return out
}

// TipQuery combines both filters the way list views apply them.
type TipQuery struct {
	Category       Category
	ActionableOnly bool
}

func (q TipQuery) Apply(tips []Tip) []Tip {
	if q.Category != "" {
		tips = FilterByCategory(tips, q.Category)
	}
	if q.ActionableOnly {
		tips = FilterActionable(tips)
	}
	return tips
}

// TipSummary counts tips for dashboard badges.
type TipSummary struct {
	Total      int `json:"total"`
	High       int `json:"high"`
	Medium     int `json:"medium"`
	Low        int `json:"low"`
	Actionable int `json:"actionable"`
}

func SummarizeTips(tips []Tip) TipSummary {
	s := TipSummary{Total: len(tips)}
	for _, t := range tips {
		switch t.Priority {
		case PriorityHigh:
			s.High++
		case PriorityMedium:
			s.Medium++
		case PriorityLow:
			s.Low++
		}
		if t.Actionable {
			s.Actionable++
		}
	}
	return s
}
