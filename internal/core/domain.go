package core

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

const (
	Monthly GoalType = "monthly"
	Yearly  GoalType = "yearly"
)

const (
	IncomeProjectPayment IncomeCategory = "project-payment"
	IncomeBonus          IncomeCategory = "bonus"
	IncomeOther          IncomeCategory = "other"
)

const (
	ExpenseSoftware      ExpenseCategory = "software"
	ExpenseSubscriptions ExpenseCategory = "subscriptions"
	ExpenseEquipment     ExpenseCategory = "equipment"
	ExpenseMarketing     ExpenseCategory = "marketing"
	ExpenseOther         ExpenseCategory = "other"
)

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on-hold"
)

type (
	GoalType        string
	IncomeCategory  string
	ExpenseCategory string
	ProjectStatus   string

	// Date is a calendar date without a time component, always in UTC.
	Date struct {
		time.Time
	}

	IncomeEntry struct {
		ID          string          `json:"id"`
		UserID      string          `json:"-"`
		ProjectID   string          `json:"projectId"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		Date        Date            `json:"date"`
		Category    IncomeCategory  `json:"category"`
	}

	// ExpenseEntry mirrors IncomeEntry; ProjectID is optional.
	ExpenseEntry struct {
		ID          string          `json:"id"`
		UserID      string          `json:"-"`
		ProjectID   string          `json:"projectId,omitempty"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		Date        Date            `json:"date"`
		Category    ExpenseCategory `json:"category"`
	}

	Project struct {
		ID               string          `json:"id"`
		UserID           string          `json:"-"`
		Name             string          `json:"name"`
		ClientName       string          `json:"clientName"`
		ExpectedPayment  decimal.Decimal `json:"expectedPayment"`
		Status           ProjectStatus   `json:"status"`
		CreatedDate      Date            `json:"createdDate"`
		BudgetAllocation decimal.Decimal `json:"budgetAllocation"`
	}

	SavingsGoal struct {
		ID            string          `json:"id"`
		Title         string          `json:"title"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		Deadline      Date            `json:"deadline"`
		Type          GoalType        `json:"type"`
	}

	Profile struct {
		UserID   string `json:"id"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Currency string `json:"currency"`
		JoinDate Date   `json:"joinDate"`
	}

	// Activity is one entry of a user's recent activity feed.
	Activity struct {
		ID         string          `json:"id"`
		UserID     string          `json:"-"`
		Kind       string          `json:"kind"`
		Reference  string          `json:"reference"`
		Amount     decimal.Decimal `json:"amount"`
		OccurredAt time.Time       `json:"occurredAt"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidStatus      = errors.New("invalid project status")
	ErrInvalidGoalType    = errors.New("invalid goal type")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyTitle         = errors.New("empty title")
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidTarget      = errors.New("Target amount must be greater than $0")
	ErrInvalidAllocation  = errors.New("budget allocation must be between 0 and 100")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrNotFound           = errors.New("not found")
	ErrGoalNotFound       = NotFoundError{Msg: "Savings goal not found"}
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// NotFoundError carries a user-facing message and matches ErrNotFound.
type NotFoundError struct {
	Msg string
}

func (e NotFoundError) Error() string { return e.Msg }

func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthKey returns the "YYYY-MM" bucket the date belongs to.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// Accept full timestamps from clients that serialize Date objects.
	if len(s) > len(DateLayout) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			*d = DateOf(t)
			return nil
		}
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as "YYYY-MM-DD" text, which both sqlite TEXT and
// postgres DATE columns accept.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Format(DateLayout), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	}
	return fmt.Errorf("%w: cannot scan %T", ErrInvalidDate, src)
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

func (c IncomeCategory) IsValid() bool {
	switch c {
	case IncomeProjectPayment, IncomeBonus, IncomeOther:
		return true
	}
	return false
}

func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseSoftware, ExpenseSubscriptions, ExpenseEquipment, ExpenseMarketing, ExpenseOther:
		return true
	}
	return false
}

func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectActive, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

func (t GoalType) IsValid() bool {
	return t == Monthly || t == Yearly
}

func validatePositive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func validateDescription(desc string) error {
	if len(strings.TrimSpace(desc)) == 0 {
		return ErrEmptyDescription
	}
	if len(desc) > 200 {
		return ErrDescriptionTooLong
	}
	return nil
}

func (e IncomeEntry) Validate() error {
	if err := validatePositive(e.Amount); err != nil {
		return err
	}
	if err := validateDescription(e.Description); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !e.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, e.Category)
	}
	return nil
}

func (e ExpenseEntry) Validate() error {
	if err := validatePositive(e.Amount); err != nil {
		return err
	}
	if err := validateDescription(e.Description); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !e.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, e.Category)
	}
	return nil
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.ExpectedPayment.IsNegative() {
		return ErrInvalidAmount
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, p.Status)
	}
	if p.BudgetAllocation.IsNegative() || p.BudgetAllocation.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidAllocation
	}
	return nil
}

// Validate checks a goal at creation time. CurrentAmount above TargetAmount is
// tolerated on read; writes go through contribution clamping instead.
func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyTitle
	}
	if !g.TargetAmount.IsPositive() {
		return ErrInvalidTarget
	}
	if g.CurrentAmount.IsNegative() {
		return ErrInvalidAmount
	}
	if err := g.Deadline.Validate(); err != nil {
		return err
	}
	if !g.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidGoalType, g.Type)
	}
	return nil
}

// IsActive reports whether the goal still needs contributions.
func (g SavingsGoal) IsActive() bool {
	return g.CurrentAmount.LessThan(g.TargetAmount)
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// IsValidationError reports whether err originates from a domain Validate method.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount, ErrInvalidDate, ErrInvalidCategory, ErrInvalidStatus,
		ErrInvalidGoalType, ErrEmptyDescription, ErrEmptyTitle, ErrEmptyName,
		ErrInvalidTarget, ErrInvalidAllocation, ErrInvalidEmail, ErrDescriptionTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
