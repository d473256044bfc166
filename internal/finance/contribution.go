package finance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const (
	MsgAmountNotPositive = "Amount must be greater than $0"
	MsgBelowMinimum      = "Minimum savings amount is $1.00"
	msgInsufficientFunds = "Insufficient funds. Available balance: $%s"
)

// MinimumContribution is the smallest accepted savings deposit.
var MinimumContribution = decimal.NewFromInt(1)

// ValidationResult is the accept/reject outcome of a proposed contribution.
type ValidationResult struct {
	IsValid bool   `json:"isValid"`
	Error   string `json:"error,omitempty"`
}

// Err converts a rejected result into a *RejectionError, nil otherwise.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return &RejectionError{Reason: r.Error}
}

// RejectionError is the only user-facing failure of the engine.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string { return e.Reason }

// ValidateContribution checks a deposit against the available balance.
// Rules are evaluated in a fixed order and the first failure wins, so an
// amount that is both too small and above the balance reports insufficient
// funds.
func ValidateContribution(amount, availableBalance decimal.Decimal) ValidationResult {
	if !amount.IsPositive() {
		return ValidationResult{Error: MsgAmountNotPositive}
	}
	if amount.GreaterThan(availableBalance) {
		return ValidationResult{Error: fmt.Sprintf(msgInsufficientFunds, availableBalance.StringFixed(2))}
	}
	if amount.LessThan(MinimumContribution) {
		return ValidationResult{Error: MsgBelowMinimum}
	}
	return ValidationResult{IsValid: true}
}

// ApplyContribution returns the goal's new current amount, capped at the
// target. Any excess is dropped, not carried over.
func ApplyContribution(goal core.SavingsGoal, amount decimal.Decimal) decimal.Decimal {
	return decimal.Min(goal.CurrentAmount.Add(amount), goal.TargetAmount)
}
