package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

type incomeRequest struct {
	ProjectID   string              `json:"projectId"`
	Amount      Amount              `json:"amount"`
	Description string              `json:"description"`
	Date        core.Date           `json:"date"`
	Category    core.IncomeCategory `json:"category"`
}

func (in incomeRequest) entry() core.IncomeEntry {
	return core.IncomeEntry{
		ProjectID:   sanitizeInput(in.ProjectID),
		Amount:      in.Amount.Decimal,
		Description: sanitizeInput(in.Description),
		Date:        in.Date,
		Category:    in.Category,
	}
}

type expenseRequest struct {
	ProjectID   string               `json:"projectId"`
	Amount      Amount               `json:"amount"`
	Description string               `json:"description"`
	Date        core.Date            `json:"date"`
	Category    core.ExpenseCategory `json:"category"`
}

func (in expenseRequest) entry() core.ExpenseEntry {
	return core.ExpenseEntry{
		ProjectID:   sanitizeInput(in.ProjectID),
		Amount:      in.Amount.Decimal,
		Description: sanitizeInput(in.Description),
		Date:        in.Date,
		Category:    in.Category,
	}
}

type projectRequest struct {
	Name             string             `json:"name"`
	ClientName       string             `json:"clientName"`
	ExpectedPayment  Amount             `json:"expectedPayment"`
	Status           core.ProjectStatus `json:"status"`
	CreatedDate      core.Date          `json:"createdDate"`
	BudgetAllocation decimal.Decimal    `json:"budgetAllocation"`
}

func (in projectRequest) project() core.Project {
	return core.Project{
		Name:             sanitizeInput(in.Name),
		ClientName:       sanitizeInput(in.ClientName),
		ExpectedPayment:  in.ExpectedPayment.Decimal,
		Status:           in.Status,
		CreatedDate:      in.CreatedDate,
		BudgetAllocation: in.BudgetAllocation,
	}
}

// writeList sends one page of a list with its pagination block.
func writeList[T any](w http.ResponseWriter, items []T, p ledger.Pagination) {
	if items == nil {
		items = []T{}
	}
	NewResponse().Data(items).Pagination(p).Write(w)
}

// ---- income ----

func (s *Server) handleListIncome(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, p, err := s.deps.Ledger.ListIncome(r.Context(), userID(r), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, items, p)
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	e, err := s.deps.Ledger.GetIncome(r.Context(), userID(r), idParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(e).Write(w)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var in incomeRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.deps.Ledger.CreateIncome(r.Context(), userID(r), in.entry())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).Message("Income entry created").Data(e).Write(w)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	var in incomeRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.deps.Ledger.UpdateIncome(r.Context(), userID(r), idParam(r), in.entry())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Message("Income entry updated").Data(e).Write(w)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteIncome(r.Context(), userID(r), idParam(r)); err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Message("Income entry deleted").Write(w)
}

func (s *Server) handleIncomeStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Ledger.IncomeStats(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(st).Write(w)
}

// ---- expenses ----

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, p, err := s.deps.Ledger.ListExpenses(r.Context(), userID(r), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, items, p)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.deps.Ledger.GetExpense(r.Context(), userID(r), idParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(e).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in expenseRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.deps.Ledger.CreateExpense(r.Context(), userID(r), in.entry())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).Message("Expense created").Data(e).Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var in expenseRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.deps.Ledger.UpdateExpense(r.Context(), userID(r), idParam(r), in.entry())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Message("Expense updated").Data(e).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteExpense(r.Context(), userID(r), idParam(r)); err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Message("Expense deleted").Write(w)
}

func (s *Server) handleExpenseStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Ledger.ExpenseStats(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(st).Write(w)
}

// ---- projects ----

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, p, err := s.deps.Ledger.ListProjects(r.Context(), userID(r), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, items, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Ledger.GetProject(r.Context(), userID(r), idParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(p).Write(w)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in projectRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.deps.Ledger.CreateProject(r.Context(), userID(r), in.project())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).Message("Project created").Data(p).Write(w)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var in projectRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.deps.Ledger.UpdateProject(r.Context(), userID(r), idParam(r), in.project())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Message("Project updated").Data(p).Write(w)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteProject(r.Context(), userID(r), idParam(r)); err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Message("Project deleted").Write(w)
}

func (s *Server) handleProjectStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Ledger.ProjectStats(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(st).Write(w)
}
