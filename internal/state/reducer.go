package state

import (
	"errors"
	"fmt"

	"budget/internal/core"

	"github.com/google/uuid"
)

var (
	ErrUnknownAction   = errors.New("unknown action")
	ErrExpenseNotFound = errors.New("expense not found")
	ErrMissingExpense  = errors.New("action payload has no expense")
)

// State is the canonical budget data.
type State struct {
	Budget          float64        `json:"budget"`
	Expenses        []core.Expense `json:"expenses"`
	UpdatingID      string         `json:"updatingId"`
	Modal           bool           `json:"modal"`
	CurrentCategory string         `json:"currentCategory"`
}

// IDFunc generates expense ids.
type IDFunc func() string

// NewUUID is the default IDFunc.
func NewUUID() string {
	return uuid.NewString()
}

// Initial returns the empty state.
func Initial() State {
	return State{Expenses: []core.Expense{}}
}

// TotalExpenses sums the amounts of all expenses.
func (s State) TotalExpenses() float64 {
	var total float64
	for _, e := range s.Expenses {
		total += e.Amount
	}
	return total
}

// RemainingBudget is the budget minus the sum of recorded expense amounts.
func (s State) RemainingBudget() float64 {
	return s.Budget - s.TotalExpenses()
}

// SpentPercentage is the share of the budget already spent.
func (s State) SpentPercentage() float64 {
	return core.Percentage(s.TotalExpenses(), s.Budget)
}

// HasBudget reports whether a usable budget has been defined.
func (s State) HasBudget() bool {
	return s.Budget > 0
}

// FilteredExpenses returns the expenses in the current category filter.
func (s State) FilteredExpenses() []core.Expense {
	if s.CurrentCategory == "" {
		return s.Expenses
	}
	out := make([]core.Expense, 0, len(s.Expenses))
	for _, e := range s.Expenses {
		if e.Category == s.CurrentCategory {
			out = append(out, e)
		}
	}
	return out
}

// Expense returns the first expense with the given id.
func (s State) Expense(id string) (core.Expense, bool) {
	for _, e := range s.Expenses {
		if e.ID == id {
			return e, true
		}
	}
	return core.Expense{}, false
}

// Clone returns a copy that shares no slice memory with s.
func (s State) Clone() State {
	c := s
	c.Expenses = append(make([]core.Expense, 0, len(s.Expenses)), s.Expenses...)
	return c
}

// Reduce applies a to s and returns the new state. s is not modified.
func Reduce(s State, a Action, newID IDFunc) (State, error) {
	next := s.Clone()

	switch a.Type {
	case ActionAddBudget:
		next.Budget = a.Payload.Budget

	case ActionAddExpense:
		if a.Payload.Expense == nil {
			return s, ErrMissingExpense
		}
		if newID == nil {
			newID = NewUUID
		}
		next.Expenses = append(next.Expenses, core.Expense{
			ID:           newID(),
			DraftExpense: a.Payload.Expense.DraftExpense,
		})
		next.Modal = false

	case ActionUpdateExpense:
		if a.Payload.Expense == nil {
			return s, ErrMissingExpense
		}
		idx := indexOf(next.Expenses, a.Payload.Expense.ID)
		if idx < 0 {
			return s, fmt.Errorf("%w: %s", ErrExpenseNotFound, a.Payload.Expense.ID)
		}
		next.Expenses[idx] = *a.Payload.Expense
		next.Modal = false
		next.UpdatingID = ""

	case ActionRemoveExpense:
		idx := indexOf(next.Expenses, a.Payload.ID)
		if idx < 0 {
			return s, fmt.Errorf("%w: %s", ErrExpenseNotFound, a.Payload.ID)
		}
		next.Expenses = append(next.Expenses[:idx], next.Expenses[idx+1:]...)
		if next.UpdatingID == a.Payload.ID {
			next.UpdatingID = ""
		}

	case ActionGetExpenseByID:
		if indexOf(next.Expenses, a.Payload.ID) < 0 {
			return s, fmt.Errorf("%w: %s", ErrExpenseNotFound, a.Payload.ID)
		}
		next.UpdatingID = a.Payload.ID
		next.Modal = true

	case ActionShowModal:
		next.Modal = true

	case ActionCloseModal:
		next.Modal = false
		next.UpdatingID = ""

	case ActionFilterCategory:
		next.CurrentCategory = a.Payload.CategoryID

	case ActionResetApp:
		next = Initial()

	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}

	return next, nil
}

func indexOf(expenses []core.Expense, id string) int {
	for i, e := range expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}
