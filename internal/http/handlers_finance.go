package http

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/finance"
	"fintrack/internal/services"
)

func (s *Server) overview(w http.ResponseWriter, r *http.Request) (services.Overview, bool) {
	ov, err := s.deps.Finance.Overview(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return services.Overview{}, false
	}
	return ov, true
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if ov, ok := s.overview(w, r); ok {
		NewResponse().Data(ov.Snapshot).Write(w)
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if ov, ok := s.overview(w, r); ok {
		NewResponse().Data(ov.Dashboard).Write(w)
	}
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	if ov, ok := s.overview(w, r); ok {
		NewResponse().Data(ov.Trend).Write(w)
	}
}

// handleTips serves GET /tips?category=&actionable=.
func (s *Server) handleTips(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := finance.TipQuery{
		Category:       finance.Category(strings.ToLower(sanitizeInput(q.Get("category")))),
		ActionableOnly: parseBoolParam(q, "actionable"),
	}
	tips, err := s.deps.Finance.Tips(r.Context(), userID(r), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(tips).Write(w)
}

func (s *Server) handleTipSummary(w http.ResponseWriter, r *http.Request) {
	if ov, ok := s.overview(w, r); ok {
		NewResponse().Data(ov.TipSummary).Write(w)
	}
}

// ---- goals ----

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.deps.Savings.ListGoals(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(goals).Write(w)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var in services.GoalInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.deps.Savings.CreateGoal(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).Message("Savings goal created").Data(g).Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Savings.DeleteGoal(r.Context(), userID(r), idParam(r)); err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Message("Savings goal deleted").Write(w)
}

// contributionRequest takes the amount verbatim: zero and negative values
// must reach the validator to get its messages.
type contributionRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	var in contributionRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.deps.Savings.Contribute(r.Context(), userID(r), idParam(r), in.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	msg := "Contribution applied"
	if res.Applied.LessThan(in.Amount) {
		msg = "Contribution applied up to the goal target"
	}
	NewResponse().Message(msg).Data(res).Write(w)
}

// handleValidateContribution always answers 200; the verdict is in the body.
func (s *Server) handleValidateContribution(w http.ResponseWriter, r *http.Request) {
	var in contributionRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.deps.Savings.Validate(r.Context(), userID(r), in.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(res).Write(w)
}
