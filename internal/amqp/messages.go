package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType names a domain change carried on the bus.
type EventType string

const (
	ContributionApplied EventType = "contribution.applied"
	GoalCreated         EventType = "goal.created"
	GoalDeleted         EventType = "goal.deleted"
	IncomeCreated       EventType = "income.created"
	IncomeDeleted       EventType = "income.deleted"
	ExpenseCreated      EventType = "expense.created"
	ExpenseDeleted      EventType = "expense.deleted"
	ProjectCreated      EventType = "project.created"
)

func (t EventType) IsValid() bool {
	switch t {
	case ContributionApplied, GoalCreated, GoalDeleted, IncomeCreated, IncomeDeleted,
		ExpenseCreated, ExpenseDeleted, ProjectCreated:
		return true
	}
	return false
}

// Event is the message published after every successful write. Reference is
// the ID of the touched entity; Balance is only set for contributions.
type Event struct {
	ID         string          `json:"id"`
	Type       EventType       `json:"type"`
	UserID     string          `json:"userId"`
	Reference  string          `json:"reference"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
	OccurredAt time.Time       `json:"occurredAt"`
}

func NewEvent(t EventType, userID, reference string, amount decimal.Decimal) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		UserID:     userID,
		Reference:  reference,
		Amount:     amount,
		OccurredAt: time.Now().UTC(),
	}
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes and sanity-checks a delivery body.
func EventFromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	if !e.Type.IsValid() {
		return Event{}, fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.UserID == "" {
		return Event{}, fmt.Errorf("event %s has no user", e.ID)
	}
	return e, nil
}
