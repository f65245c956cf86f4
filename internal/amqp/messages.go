package amqp

import (
	"encoding/json"
	"math"
	"time"

	"budget/internal/state"
)

// ActionEvent is published once per committed dispatch. Amounts are
// pointers because JSON has no NaN; a NaN value is sent as null.
type ActionEvent struct {
	Type         state.ActionType `json:"type"`
	ExpenseID    string           `json:"expenseId,omitempty"`
	Expense      *EventExpense    `json:"expense,omitempty"`
	Budget       *float64         `json:"budget"`
	Remaining    *float64         `json:"remaining"`
	ExpenseCount int              `json:"expenseCount"`
	Timestamp    time.Time        `json:"timestamp"`
}

type EventExpense struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name"`
	Amount   *float64 `json:"amount"`
	Category string   `json:"category"`
	Date     string   `json:"date"`
}

// NewActionEvent describes action a and the state it produced.
func NewActionEvent(a state.Action, s state.State, at time.Time) *ActionEvent {
	ev := &ActionEvent{
		Type:         a.Type,
		ExpenseID:    a.ExpenseID(),
		Budget:       finite(s.Budget),
		Remaining:    finite(s.RemainingBudget()),
		ExpenseCount: len(s.Expenses),
		Timestamp:    at,
	}

	// add-expense carries no id until the reducer assigns one.
	if a.Type == state.ActionAddExpense && len(s.Expenses) > 0 {
		ev.ExpenseID = s.Expenses[len(s.Expenses)-1].ID
	}

	if a.Payload.Expense != nil {
		e := a.Payload.Expense
		ev.Expense = &EventExpense{
			ID:       ev.ExpenseID,
			Name:     e.ExpenseName,
			Amount:   finite(e.Amount),
			Category: e.Category,
			Date:     e.Date.InputValue(),
		}
	}
	return ev
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ToJSON converts the event to JSON bytes
func (e *ActionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ActionEventFromJSON decodes an event body.
func ActionEventFromJSON(data []byte) (*ActionEvent, error) {
	var ev ActionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
