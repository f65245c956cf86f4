// Package state holds the canonical budget and expense data.
//
// All mutations go through Dispatch with an Action; Reduce is the pure
// transition function shared by every Store implementation.
package state

import (
	"budget/internal/core"
)

// ActionType names a state transition. The string values are stable and are
// used on the wire by the event feed.
type ActionType string

const (
	ActionAddBudget      ActionType = "add-budget"
	ActionAddExpense     ActionType = "add-expense"
	ActionUpdateExpense  ActionType = "update-expense"
	ActionRemoveExpense  ActionType = "remove-expense"
	ActionGetExpenseByID ActionType = "get-expense-by-id"
	ActionShowModal      ActionType = "show-modal"
	ActionCloseModal     ActionType = "close-modal"
	ActionFilterCategory ActionType = "add-filter-category"
	ActionResetApp       ActionType = "reset-app"
)

type (
	Action struct {
		Type    ActionType `json:"type"`
		Payload Payload    `json:"payload"`
	}

	Payload struct {
		Budget     float64       `json:"budget,omitempty"`
		Expense    *core.Expense `json:"expense,omitempty"`
		ID         string        `json:"id,omitempty"`
		CategoryID string        `json:"categoryId,omitempty"`
	}
)

func AddBudget(budget float64) Action {
	return Action{Type: ActionAddBudget, Payload: Payload{Budget: budget}}
}

// AddExpense carries a draft; the container assigns the id.
func AddExpense(d core.DraftExpense) Action {
	return Action{Type: ActionAddExpense, Payload: Payload{Expense: &core.Expense{DraftExpense: d}}}
}

func UpdateExpense(e core.Expense) Action {
	return Action{Type: ActionUpdateExpense, Payload: Payload{Expense: &e}}
}

func RemoveExpense(id string) Action {
	return Action{Type: ActionRemoveExpense, Payload: Payload{ID: id}}
}

// GetExpenseByID selects an expense for editing.
func GetExpenseByID(id string) Action {
	return Action{Type: ActionGetExpenseByID, Payload: Payload{ID: id}}
}

func ShowModal() Action {
	return Action{Type: ActionShowModal}
}

func CloseModal() Action {
	return Action{Type: ActionCloseModal}
}

// FilterCategory restricts the listed expenses to one category; "" shows all.
func FilterCategory(categoryID string) Action {
	return Action{Type: ActionFilterCategory, Payload: Payload{CategoryID: categoryID}}
}

func ResetApp() Action {
	return Action{Type: ActionResetApp}
}

// ExpenseID returns the id an action refers to, if any.
func (a Action) ExpenseID() string {
	if a.Payload.ID != "" {
		return a.Payload.ID
	}
	if a.Payload.Expense != nil {
		return a.Payload.Expense.ID
	}
	return ""
}
