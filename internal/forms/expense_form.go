package forms

import (
	"context"
	"fmt"
	"time"

	"budget/internal/core"
	"budget/internal/state"
)

// Field names accepted by ExpenseForm.HandleChange.
const (
	FieldAmount      = "amount"
	FieldExpenseName = "expenseName"
	FieldCategory    = "category"
)

// ExpenseForm creates a new expense or edits the one selected in the
// container, depending on State.UpdatingID at submit time.
type ExpenseForm struct {
	now            func() time.Time
	draft          core.DraftExpense
	previousAmount float64
	err            string
}

// NewExpenseForm mounts a form with a fresh draft. now defaults to time.Now.
func NewExpenseForm(now func() time.Time) *ExpenseForm {
	if now == nil {
		now = time.Now
	}
	f := &ExpenseForm{now: now}
	f.reset()
	return f
}

func (f *ExpenseForm) reset() {
	f.draft = core.NewDraft(f.now())
	f.previousAmount = 0
}

func (f *ExpenseForm) Draft() core.DraftExpense {
	return f.draft
}

// PreviousAmount is the committed amount of the expense under edit, 0 in
// create mode.
func (f *ExpenseForm) PreviousAmount() float64 {
	return f.previousAmount
}

// Error is the message of the last failed submit, "" if none.
func (f *ExpenseForm) Error() string {
	return f.err
}

// HandleChange updates one field. Only amount is coerced to a number;
// unknown names are ignored.
func (f *ExpenseForm) HandleChange(name, value string) {
	switch name {
	case FieldAmount:
		f.draft.Amount = core.CoerceNumber(value)
	case FieldExpenseName:
		f.draft.ExpenseName = value
	case FieldCategory:
		f.draft.Category = value
	}
}

// HandleChangeDate sets the date; a zero date means the picker was cleared.
func (f *ExpenseForm) HandleChangeDate(d core.Date) {
	f.draft.Date = d
}

// LoadForEdit replaces the draft with the expense selected by
// s.UpdatingID. It is a no-op when nothing is selected.
func (f *ExpenseForm) LoadForEdit(s state.State) error {
	if s.UpdatingID == "" {
		return nil
	}
	e, ok := s.Expense(s.UpdatingID)
	if !ok {
		return fmt.Errorf("%w: %s", state.ErrExpenseNotFound, s.UpdatingID)
	}
	f.draft = e.DraftExpense
	f.previousAmount = e.Amount
	return nil
}

// Submit validates the draft against the current state and dispatches
// add-expense or update-expense. On a validation failure the message is kept
// in Error and nothing is dispatched. A successful submit resets the draft but
// leaves Error untouched.
func (f *ExpenseForm) Submit(ctx context.Context, c state.Container) error {
	s, err := c.State(ctx)
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}

	if err := f.validate(s.RemainingBudget()); err != nil {
		f.err = err.Error()
		return err
	}

	var a state.Action
	if s.UpdatingID != "" {
		a = state.UpdateExpense(core.Expense{ID: s.UpdatingID, DraftExpense: f.draft})
	} else {
		a = state.AddExpense(f.draft)
	}
	if err := c.Dispatch(ctx, a); err != nil {
		return err
	}

	f.reset()
	return nil
}

func (f *ExpenseForm) validate(remaining float64) error {
	if f.draft.HasEmptyField() {
		return ErrIncompleteForm
	}
	if f.draft.Amount-f.previousAmount > remaining {
		return ErrOverBudget
	}
	return nil
}

// Legend is the form heading for the given mode.
func Legend(editing bool) string {
	if editing {
		return "Update expense"
	}
	return "New expense"
}

// SubmitLabel is the submit control text for the given mode.
func SubmitLabel(editing bool) string {
	if editing {
		return "Update"
	}
	return "Save"
}
