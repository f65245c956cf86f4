package forms

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"budget/internal/core"
	"budget/internal/state"
)

// fakeContainer records dispatches and serves a fixed state.
type fakeContainer struct {
	st         state.State
	dispatched []state.Action
	err        error
}

func (f *fakeContainer) Dispatch(_ context.Context, a state.Action) error {
	if f.err != nil {
		return f.err
	}
	f.dispatched = append(f.dispatched, a)
	return nil
}

func (f *fakeContainer) State(context.Context) (state.State, error) {
	return f.st, nil
}

var today = time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return today }

func TestBudgetFormValidity(t *testing.T) {
	cases := []struct {
		raw     string
		invalid bool
	}{
		{"", true},
		{"abc", true},
		{"0", true},
		{"-5", true},
		{"0.01", false},
		{"150.5", false},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			f := NewBudgetForm()
			f.HandleChange(tc.raw)
			if f.IsInvalid() != tc.invalid {
				t.Fatalf("IsInvalid(%q) = %v, want %v", tc.raw, f.IsInvalid(), tc.invalid)
			}
		})
	}
}

func TestBudgetFormInitialState(t *testing.T) {
	f := NewBudgetForm()
	if f.Budget() != 0 || !f.IsInvalid() || f.InputValue() != "0" {
		t.Fatalf("unexpected initial form: budget=%v value=%q", f.Budget(), f.InputValue())
	}
	f.HandleChange("")
	if f.InputValue() != "" {
		t.Fatalf("NaN budget should render empty, got %q", f.InputValue())
	}
}

func TestBudgetFormSubmit(t *testing.T) {
	c := &fakeContainer{}
	f := NewBudgetForm()

	f.HandleChange("-1")
	if err := f.Submit(context.Background(), c); !errors.Is(err, ErrInvalidBudget) {
		t.Fatalf("expected ErrInvalidBudget, got %v", err)
	}
	if len(c.dispatched) != 0 {
		t.Fatalf("invalid budget must not dispatch")
	}

	f.HandleChange("150.5")
	if err := f.Submit(context.Background(), c); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(c.dispatched) != 1 {
		t.Fatalf("expected exactly one dispatch, got %d", len(c.dispatched))
	}
	if a := c.dispatched[0]; a.Type != state.ActionAddBudget || a.Payload.Budget != 150.5 {
		t.Fatalf("unexpected action %+v", a)
	}
	if f.Budget() != 150.5 {
		t.Fatalf("budget form should keep its value after submit")
	}
}

func fill(f *ExpenseForm, amount, name, category string) {
	f.HandleChange(FieldAmount, amount)
	f.HandleChange(FieldExpenseName, name)
	f.HandleChange(FieldCategory, category)
}

func TestExpenseFormIncomplete(t *testing.T) {
	c := &fakeContainer{st: state.State{Budget: 1000}}
	f := NewExpenseForm(fixedNow)
	fill(f, "10", "", "2")

	err := f.Submit(context.Background(), c)
	if !errors.Is(err, ErrIncompleteForm) {
		t.Fatalf("expected ErrIncompleteForm, got %v", err)
	}
	if f.Error() != "All fields are required" {
		t.Fatalf("unexpected message %q", f.Error())
	}
	if len(c.dispatched) != 0 {
		t.Fatalf("incomplete form must not dispatch")
	}
	if f.Draft().Amount != 10 {
		t.Fatalf("draft must not reset on failure")
	}
}

func TestExpenseFormCompletenessGaps(t *testing.T) {
	c := &fakeContainer{st: state.State{Budget: 1000}}

	f := NewExpenseForm(fixedNow)
	fill(f, "", "Bus", "3")
	if f.Draft().Amount != 0 {
		t.Fatalf("blank amount should coerce to 0, got %v", f.Draft().Amount)
	}
	if err := f.Submit(context.Background(), c); err != nil {
		t.Fatalf("a zero amount passes the completeness check: %v", err)
	}

	f = NewExpenseForm(fixedNow)
	fill(f, "abc", "Bus", "3")
	f.HandleChangeDate(core.Date{})
	if !math.IsNaN(f.Draft().Amount) {
		t.Fatalf("unparsable amount should be NaN")
	}
	if err := f.Submit(context.Background(), c); err != nil {
		t.Fatalf("a NaN amount and cleared date pass the completeness check: %v", err)
	}
	if len(c.dispatched) != 2 {
		t.Fatalf("expected 2 dispatches, got %d", len(c.dispatched))
	}
}

func TestExpenseFormOverBudget(t *testing.T) {
	c := &fakeContainer{st: state.State{Budget: 100}}
	f := NewExpenseForm(fixedNow)
	fill(f, "150", "Shoes", "4")

	if err := f.Submit(context.Background(), c); !errors.Is(err, ErrOverBudget) {
		t.Fatalf("expected ErrOverBudget, got %v", err)
	}
	if f.Error() != "This expense is over budget" {
		t.Fatalf("unexpected message %q", f.Error())
	}
	if len(c.dispatched) != 0 {
		t.Fatalf("over budget must not dispatch")
	}

	f.HandleChange(FieldAmount, "100")
	if err := f.Submit(context.Background(), c); err != nil {
		t.Fatalf("submit at exactly the remaining budget: %v", err)
	}
	if len(c.dispatched) != 1 || c.dispatched[0].Type != state.ActionAddExpense {
		t.Fatalf("expected add-expense, got %+v", c.dispatched)
	}
	if f.Error() != "This expense is over budget" {
		t.Fatalf("a successful submit leaves the previous message in place, got %q", f.Error())
	}
}

func TestExpenseFormCreateResetsDraft(t *testing.T) {
	c := &fakeContainer{st: state.State{Budget: 100}}
	f := NewExpenseForm(fixedNow)
	fill(f, "20", "Lunch", "2")
	f.HandleChangeDate(core.NewDate(2025, 2, 1))

	if err := f.Submit(context.Background(), c); err != nil {
		t.Fatalf("submit: %v", err)
	}

	got := c.dispatched[0].Payload.Expense
	if got.ID != "" || got.Amount != 20 || got.ExpenseName != "Lunch" || got.Category != "2" || !got.Date.SameDay(core.NewDate(2025, 2, 1)) {
		t.Fatalf("unexpected dispatched draft %+v", got)
	}

	d := f.Draft()
	if d.Amount != 0 || d.ExpenseName != "" || d.Category != "" || !d.Date.Equal(today) {
		t.Fatalf("draft not reset: %+v", d)
	}
	if f.PreviousAmount() != 0 {
		t.Fatalf("previous amount not reset")
	}
}

func TestExpenseFormEdit(t *testing.T) {
	existing := core.Expense{ID: "e1", DraftExpense: core.DraftExpense{
		Amount: 80, ExpenseName: "Dinner", Category: "2", Date: core.NewDate(2025, 1, 15),
	}}
	c := &fakeContainer{st: state.State{
		Budget:     80,
		Expenses:   []core.Expense{existing},
		UpdatingID: "e1",
		Modal:      true,
	}}

	f := NewExpenseForm(fixedNow)
	if err := f.LoadForEdit(c.st); err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Draft() != existing.DraftExpense || f.PreviousAmount() != 80 {
		t.Fatalf("draft not loaded: %+v prev=%v", f.Draft(), f.PreviousAmount())
	}

	f.HandleChange(FieldAmount, "50")
	if err := f.Submit(context.Background(), c); err != nil {
		t.Fatalf("lowering an amount with nothing remaining must succeed: %v", err)
	}

	a := c.dispatched[0]
	if a.Type != state.ActionUpdateExpense || a.Payload.Expense.ID != "e1" || a.Payload.Expense.Amount != 50 {
		t.Fatalf("unexpected action %+v", a)
	}
	if f.PreviousAmount() != 0 || f.Draft().ExpenseName != "" {
		t.Fatalf("form not reset after update")
	}
}

func TestExpenseFormEditUpwardChecksDelta(t *testing.T) {
	existing := core.Expense{ID: "e1", DraftExpense: core.DraftExpense{Amount: 80, ExpenseName: "Dinner", Category: "2"}}
	c := &fakeContainer{st: state.State{Budget: 100, Expenses: []core.Expense{existing}, UpdatingID: "e1"}}

	f := NewExpenseForm(fixedNow)
	if err := f.LoadForEdit(c.st); err != nil {
		t.Fatalf("load: %v", err)
	}
	f.HandleChange(FieldAmount, "100")
	if err := f.Submit(context.Background(), c); err != nil {
		t.Fatalf("delta of 20 fits the remaining 20: %v", err)
	}

	if err := f.LoadForEdit(c.st); err != nil {
		t.Fatalf("load: %v", err)
	}
	f.HandleChange(FieldAmount, "100.5")
	if err := f.Submit(context.Background(), c); !errors.Is(err, ErrOverBudget) {
		t.Fatalf("expected ErrOverBudget, got %v", err)
	}
}

func TestExpenseFormLoadForEditMissing(t *testing.T) {
	f := NewExpenseForm(fixedNow)
	err := f.LoadForEdit(state.State{UpdatingID: "ghost"})
	if !errors.Is(err, state.ErrExpenseNotFound) {
		t.Fatalf("expected ErrExpenseNotFound, got %v", err)
	}
	if err := f.LoadForEdit(state.State{}); err != nil {
		t.Fatalf("no selection should be a no-op: %v", err)
	}
}

func TestExpenseFormIgnoresUnknownFields(t *testing.T) {
	f := NewExpenseForm(fixedNow)
	before := f.Draft()
	f.HandleChange("color", "red")
	if f.Draft() != before {
		t.Fatalf("unknown field changed the draft")
	}
}

func TestExpenseFormDispatchError(t *testing.T) {
	boom := errors.New("boom")
	c := &fakeContainer{st: state.State{Budget: 100}, err: boom}
	f := NewExpenseForm(fixedNow)
	fill(f, "10", "Tea", "2")

	if err := f.Submit(context.Background(), c); !errors.Is(err, boom) {
		t.Fatalf("expected dispatch error, got %v", err)
	}
	if f.Draft().ExpenseName != "Tea" || f.Error() != "" {
		t.Fatalf("draft must survive a failed dispatch")
	}
}

func TestLabels(t *testing.T) {
	if Legend(false) != "New expense" || Legend(true) != "Update expense" {
		t.Fatalf("unexpected legends")
	}
	if SubmitLabel(false) != "Save" || SubmitLabel(true) != "Update" {
		t.Fatalf("unexpected submit labels")
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(ErrOverBudget) || IsValidation(errors.New("x")) {
		t.Fatalf("IsValidation misclassifies errors")
	}
}
