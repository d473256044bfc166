package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/ledger/memory"
)

func incomeMatrix() [][]any {
	return [][]any{
		{"ID", "User", "Date", "Description", "Amount", "Category", "Project"},
		{"i1", "local", "2026-03-01", "Website milestone", "$4,200.00", "project-payment", "p1"},
		{"i2", "other", "2026-03-02", "Not mine", 100.0, "bonus", ""},
		{"", "", "", "", "", "", ""},
		{"i3", "local", "not a date", "Broken", "10", "other", ""},
		{"i4", "local", "2026-03-05", "Referral", 250.5, "Bonus"},
	}
}

func TestParseIncome(t *testing.T) {
	got, err := parseIncome(incomeMatrix(), "local")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "i1", got[0].ID)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("4200")))
	assert.Equal(t, core.IncomeProjectPayment, got[0].Category)
	assert.Equal(t, "p1", got[0].ProjectID)

	// short row without project column, category is case folded
	assert.Equal(t, "i4", got[1].ID)
	assert.Equal(t, core.IncomeBonus, got[1].Category)
	assert.Equal(t, "", got[1].ProjectID)
	assert.Equal(t, "2026-03-05", got[1].Date.String())
}

func TestParseExpensesReorderedColumns(t *testing.T) {
	values := [][]any{
		{"Amount", "Description", "Category", "Date", "User", "ID"},
		{"49.99", "Figma", "software", "2026-02-03", "local", "e1"},
		{"0", "Zero", "software", "2026-02-03", "local", "e2"},
	}
	got, err := parseExpenses(values, "local")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Figma", got[0].Description)
	assert.Equal(t, core.ExpenseSoftware, got[0].Category)
}

func TestParseHeaderMissingColumns(t *testing.T) {
	_, err := parseIncome([][]any{{"ID", "Date", "Amount"}}, "local")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected ledger header: missing Category,Description,User")

	got, err := parseIncome(nil, "local")
	require.NoError(t, err)
	assert.Empty(t, got)
}

// fakeSheets serves a single ledger tab over the Sheets REST surface.
type fakeSheets struct {
	mu       sync.Mutex
	values   [][]any
	appended [][]any
	cleared  []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"range": "Income!A:G", "values": f.values})
	case strings.HasSuffix(r.URL.Path, ":append"):
		body, _ := io.ReadAll(r.Body)
		var vr struct {
			Values [][]any `json:"values"`
		}
		_ = json.Unmarshal(body, &vr)
		f.appended = append(f.appended, vr.Values...)
		_, _ = w.Write([]byte(`{"updates":{"updatedRange":"Income!A7:G7"}}`))
	case strings.HasSuffix(r.URL.Path, ":clear"):
		f.cleared = append(f.cleared, r.URL.Path)
		_, _ = w.Write([]byte(`{"clearedRange":"Income!A2:G2"}`))
	default:
		http.Error(w, "unexpected call", http.StatusBadRequest)
	}
}

func newFakeClient(t *testing.T, f *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return NewWithService(svc, "sheet-id", "Income", "Expenses")
}

func TestClientAgainstFakeService(t *testing.T) {
	f := &fakeSheets{values: incomeMatrix()}
	c := newFakeClient(t, f)
	ctx := context.Background()

	list, err := c.ListIncome(ctx, "local")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = c.GetIncome(ctx, "local", "i2")
	assert.ErrorIs(t, err, core.ErrNotFound)

	created, err := c.CreateIncome(ctx, core.IncomeEntry{
		UserID: "local", Amount: decimal.NewFromInt(300), Description: "Retainer",
		Date: core.NewDate(2026, 4, 1), Category: core.IncomeOther,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	require.Len(t, f.appended, 1)
	assert.Equal(t, created.ID, f.appended[0][0])
	assert.Equal(t, "300.00", f.appended[0][4])

	require.NoError(t, c.DeleteIncome(ctx, "local", "i1"))
	require.Len(t, f.cleared, 1)
	assert.Contains(t, f.cleared[0], "Income!A2:G2")
}

func TestCreateValidatesBeforeCallingSheets(t *testing.T) {
	c := &Client{spreadsheetID: "x"}
	_, err := c.CreateExpense(context.Background(), core.ExpenseEntry{Description: "x"})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestStoreRoutesLedgersToSheets(t *testing.T) {
	f := &fakeSheets{values: incomeMatrix()}
	s := NewStore(newFakeClient(t, f), memory.New())
	ctx := context.Background()

	list, err := s.ListIncome(ctx, "local")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// goals stay in memory
	require.NoError(t, s.SaveGoals(ctx, "local", []core.SavingsGoal{{ID: "g1", Title: "Buffer"}}))
	goals, err := s.LoadGoals(ctx, "local")
	require.NoError(t, err)
	assert.Len(t, goals, 1)
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), " ", "Income", "Expenses")
	assert.EqualError(t, err, "missing spreadsheet id")
}
