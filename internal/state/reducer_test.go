package state

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"budget/internal/core"
)

func seqIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func draft(amount float64, name, cat string) core.DraftExpense {
	return core.DraftExpense{Amount: amount, ExpenseName: name, Category: cat, Date: core.NewDate(2025, 3, 3)}
}

func mustReduce(t *testing.T, s State, a Action, ids IDFunc) State {
	t.Helper()
	next, err := Reduce(s, a, ids)
	if err != nil {
		t.Fatalf("reduce %s: %v", a.Type, err)
	}
	return next
}

func TestReduceAddBudget(t *testing.T) {
	s := mustReduce(t, Initial(), AddBudget(150.5), nil)
	if s.Budget != 150.5 {
		t.Fatalf("expected budget 150.5, got %v", s.Budget)
	}
	if !s.HasBudget() {
		t.Fatalf("expected HasBudget")
	}
}

func TestReduceAddExpenseAssignsUniqueIDs(t *testing.T) {
	ids := seqIDs()
	s := mustReduce(t, Initial(), ShowModal(), ids)
	s = mustReduce(t, s, AddExpense(draft(10, "Coffee", "2")), ids)
	s = mustReduce(t, s, AddExpense(draft(10, "Coffee", "2")), ids)

	if len(s.Expenses) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(s.Expenses))
	}
	if s.Expenses[0].ID == s.Expenses[1].ID {
		t.Fatalf("ids are not unique: %q", s.Expenses[0].ID)
	}
	if s.Modal {
		t.Fatalf("modal should close after add")
	}
}

func TestReduceDefaultIDsAreUUIDs(t *testing.T) {
	s := mustReduce(t, Initial(), AddExpense(draft(1, "a", "1")), nil)
	s = mustReduce(t, s, AddExpense(draft(1, "a", "1")), nil)
	if len(s.Expenses[0].ID) != 36 || s.Expenses[0].ID == s.Expenses[1].ID {
		t.Fatalf("unexpected ids %q %q", s.Expenses[0].ID, s.Expenses[1].ID)
	}
}

func TestReduceUpdateReplacesInPlace(t *testing.T) {
	ids := seqIDs()
	s := mustReduce(t, Initial(), AddExpense(draft(10, "a", "1")), ids)
	s = mustReduce(t, s, AddExpense(draft(20, "b", "2")), ids)
	s = mustReduce(t, s, AddExpense(draft(30, "c", "3")), ids)
	s = mustReduce(t, s, GetExpenseByID("id-2"), ids)

	if s.UpdatingID != "id-2" || !s.Modal {
		t.Fatalf("get-expense-by-id should select and open modal: %+v", s)
	}

	updated := core.Expense{ID: "id-2", DraftExpense: draft(25, "b2", "4")}
	s = mustReduce(t, s, UpdateExpense(updated), ids)

	if s.Expenses[1] != updated {
		t.Fatalf("expected %+v at index 1, got %+v", updated, s.Expenses[1])
	}
	if len(s.Expenses) != 3 || s.Expenses[0].ID != "id-1" || s.Expenses[2].ID != "id-3" {
		t.Fatalf("order changed: %+v", s.Expenses)
	}
	if s.UpdatingID != "" || s.Modal {
		t.Fatalf("update should clear selection and close modal")
	}
}

func TestReduceRemove(t *testing.T) {
	ids := seqIDs()
	s := mustReduce(t, Initial(), AddExpense(draft(10, "a", "1")), ids)
	s = mustReduce(t, s, AddExpense(draft(20, "b", "2")), ids)
	s = mustReduce(t, s, RemoveExpense("id-1"), ids)

	if len(s.Expenses) != 1 || s.Expenses[0].ID != "id-2" {
		t.Fatalf("unexpected expenses after remove: %+v", s.Expenses)
	}
}

func TestReduceReset(t *testing.T) {
	s := mustReduce(t, Initial(), AddBudget(100), nil)
	s = mustReduce(t, s, AddExpense(draft(10, "a", "1")), nil)
	s = mustReduce(t, s, FilterCategory("1"), nil)
	s = mustReduce(t, s, ResetApp(), nil)

	if s.Budget != 0 || len(s.Expenses) != 0 || s.CurrentCategory != "" {
		t.Fatalf("reset did not clear state: %+v", s)
	}
}

func TestReduceErrors(t *testing.T) {
	cases := []struct {
		name   string
		action Action
		want   error
	}{
		{"unknown type", Action{Type: "bogus"}, ErrUnknownAction},
		{"remove unknown", RemoveExpense("nope"), ErrExpenseNotFound},
		{"get unknown", GetExpenseByID("nope"), ErrExpenseNotFound},
		{"update unknown", UpdateExpense(core.Expense{ID: "nope"}), ErrExpenseNotFound},
		{"add without expense", Action{Type: ActionAddExpense}, ErrMissingExpense},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := Initial()
			after, err := Reduce(before, tc.action, nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if len(after.Expenses) != 0 || after.Budget != 0 {
				t.Fatalf("state changed on error: %+v", after)
			}
		})
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := mustReduce(t, Initial(), AddExpense(draft(10, "a", "1")), seqIDs())
	_ = mustReduce(t, s, UpdateExpense(core.Expense{ID: "id-1", DraftExpense: draft(99, "z", "9")}), nil)
	if s.Expenses[0].Amount != 10 {
		t.Fatalf("input state was mutated: %+v", s.Expenses[0])
	}
}

func TestDerivedValues(t *testing.T) {
	s := State{
		Budget: 200,
		Expenses: []core.Expense{
			{ID: "1", DraftExpense: draft(50, "a", "food")},
			{ID: "2", DraftExpense: draft(30, "b", "home")},
		},
	}
	if got := s.RemainingBudget(); got != 120 {
		t.Fatalf("RemainingBudget = %v", got)
	}
	if got := s.SpentPercentage(); got != 40 {
		t.Fatalf("SpentPercentage = %v", got)
	}

	s.CurrentCategory = "home"
	if got := s.FilteredExpenses(); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("FilteredExpenses = %+v", got)
	}

	s.Expenses = append(s.Expenses, core.Expense{ID: "3", DraftExpense: draft(math.NaN(), "c", "x")})
	if !math.IsNaN(s.RemainingBudget()) {
		t.Fatalf("a NaN amount should propagate into the remaining budget")
	}
}
