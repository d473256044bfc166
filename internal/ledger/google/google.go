// Package google keeps income and expense ledgers in a Google Spreadsheet.
// Each ledger is one tab with a header row:
//
//	ID | User | Date | Description | Amount | Category | Project
//
// Columns are located by header name, so they may be reordered by hand.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

// Header is the row written to an empty ledger tab.
var Header = []any{"ID", "User", "Date", "Description", "Amount", "Category", "Project"}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	incomeSheet   string
	expensesSheet string
}

var (
	_ ledger.IncomeStore  = (*Client)(nil)
	_ ledger.ExpenseStore = (*Client)(nil)
)

// New creates a client authenticated with a service account. Credentials come
// from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS, in that order.
func New(ctx context.Context, spreadsheetID, incomeSheet, expensesSheet string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID, incomeSheet, expensesSheet), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, incomeSheet, expensesSheet string) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		incomeSheet:   incomeSheet,
		expensesSheet: expensesSheet,
	}
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentials []byte
	switch {
	case inline != "":
		credentials = []byte(inline)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentials = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service", "credentials_size", len(credentials))
	return gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

func (c *Client) readSheet(ctx context.Context, sheet string) ([][]any, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:G", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) appendRow(ctx context.Context, sheet string, row []any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:G", sheet)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", sheet, err)
	}
	return nil
}

// writeRow overwrites the 1-based sheet row n.
func (c *Client) writeRow(ctx context.Context, sheet string, n int, row []any) error {
	rng := fmt.Sprintf("%s!A%d:G%d", sheet, n, n)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

// clearRow blanks row n; blank rows are skipped by the parser.
func (c *Client) clearRow(ctx context.Context, sheet string, n int) error {
	rng := fmt.Sprintf("%s!A%d:G%d", sheet, n, n)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

// locate returns the 1-based row number holding id for the user.
func (c *Client) locate(ctx context.Context, sheet, userID, id string) (int, error) {
	values, err := c.readSheet(ctx, sheet)
	if err != nil {
		return 0, err
	}
	cols, err := parseHeader(values)
	if err != nil {
		return 0, err
	}
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if safeGet(row, cols.id) == id && safeGet(row, cols.user) == userID {
			return i + 1, nil
		}
	}
	return 0, core.NotFoundError{Msg: fmt.Sprintf("entry %s not found", id)}
}

// ---- income ----

func (c *Client) ListIncome(ctx context.Context, userID string) ([]core.IncomeEntry, error) {
	values, err := c.readSheet(ctx, c.incomeSheet)
	if err != nil {
		return nil, err
	}
	return parseIncome(values, userID)
}

func (c *Client) GetIncome(ctx context.Context, userID, id string) (core.IncomeEntry, error) {
	list, err := c.ListIncome(ctx, userID)
	if err != nil {
		return core.IncomeEntry{}, err
	}
	for _, e := range list {
		if e.ID == id {
			return e, nil
		}
	}
	return core.IncomeEntry{}, core.NotFoundError{Msg: fmt.Sprintf("income entry %s not found", id)}
}

func (c *Client) CreateIncome(ctx context.Context, e core.IncomeEntry) (core.IncomeEntry, error) {
	if err := e.Validate(); err != nil {
		return core.IncomeEntry{}, fmt.Errorf("validation failed: %w", err)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := c.appendRow(ctx, c.incomeSheet, incomeRow(e)); err != nil {
		return core.IncomeEntry{}, err
	}
	return e, nil
}

func (c *Client) UpdateIncome(ctx context.Context, e core.IncomeEntry) (core.IncomeEntry, error) {
	if err := e.Validate(); err != nil {
		return core.IncomeEntry{}, fmt.Errorf("validation failed: %w", err)
	}
	n, err := c.locate(ctx, c.incomeSheet, e.UserID, e.ID)
	if err != nil {
		return core.IncomeEntry{}, err
	}
	if err := c.writeRow(ctx, c.incomeSheet, n, incomeRow(e)); err != nil {
		return core.IncomeEntry{}, err
	}
	return e, nil
}

func (c *Client) DeleteIncome(ctx context.Context, userID, id string) error {
	n, err := c.locate(ctx, c.incomeSheet, userID, id)
	if err != nil {
		return err
	}
	return c.clearRow(ctx, c.incomeSheet, n)
}

// ---- expenses ----

func (c *Client) ListExpenses(ctx context.Context, userID string) ([]core.ExpenseEntry, error) {
	values, err := c.readSheet(ctx, c.expensesSheet)
	if err != nil {
		return nil, err
	}
	return parseExpenses(values, userID)
}

func (c *Client) GetExpense(ctx context.Context, userID, id string) (core.ExpenseEntry, error) {
	list, err := c.ListExpenses(ctx, userID)
	if err != nil {
		return core.ExpenseEntry{}, err
	}
	for _, e := range list {
		if e.ID == id {
			return e, nil
		}
	}
	return core.ExpenseEntry{}, core.NotFoundError{Msg: fmt.Sprintf("expense entry %s not found", id)}
}

func (c *Client) CreateExpense(ctx context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	if err := e.Validate(); err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("validation failed: %w", err)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := c.appendRow(ctx, c.expensesSheet, expenseRow(e)); err != nil {
		return core.ExpenseEntry{}, err
	}
	return e, nil
}

func (c *Client) UpdateExpense(ctx context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	if err := e.Validate(); err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("validation failed: %w", err)
	}
	n, err := c.locate(ctx, c.expensesSheet, e.UserID, e.ID)
	if err != nil {
		return core.ExpenseEntry{}, err
	}
	if err := c.writeRow(ctx, c.expensesSheet, n, expenseRow(e)); err != nil {
		return core.ExpenseEntry{}, err
	}
	return e, nil
}

func (c *Client) DeleteExpense(ctx context.Context, userID, id string) error {
	n, err := c.locate(ctx, c.expensesSheet, userID, id)
	if err != nil {
		return err
	}
	return c.clearRow(ctx, c.expensesSheet, n)
}

func incomeRow(e core.IncomeEntry) []any {
	return []any{e.ID, e.UserID, e.Date.String(), e.Description, e.Amount.StringFixed(2), string(e.Category), e.ProjectID}
}

func expenseRow(e core.ExpenseEntry) []any {
	return []any{e.ID, e.UserID, e.Date.String(), e.Description, e.Amount.StringFixed(2), string(e.Category), e.ProjectID}
}
