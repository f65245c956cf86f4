// Package statetest runs behavioural checks shared by every state.Store.
package statetest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"budget/internal/core"
	"budget/internal/state"
)

// Factory builds a store whose expense ids come from ids.
type Factory func(t *testing.T, ids state.IDFunc) state.Store

// SequentialIDs returns "e1", "e2", ... and is safe for concurrent use.
func SequentialIDs() state.IDFunc {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("e%d", n)
	}
}

func Run(t *testing.T, newStore Factory) {
	t.Run("round trip", func(t *testing.T) { testRoundTrip(t, newStore) })
	t.Run("dates keep their instant", func(t *testing.T) { testDateInstant(t, newStore) })
	t.Run("errors leave state unchanged", func(t *testing.T) { testErrors(t, newStore) })
	t.Run("observers in dispatch order", func(t *testing.T) { testObservers(t, newStore) })
	t.Run("concurrent dispatches", func(t *testing.T) { testConcurrent(t, newStore) })
	t.Run("NaN amount", func(t *testing.T) { testNaN(t, newStore) })
}

func dispatch(t *testing.T, s state.Store, a state.Action) {
	t.Helper()
	if err := s.Dispatch(context.Background(), a); err != nil {
		t.Fatalf("dispatch %s: %v", a.Type, err)
	}
}

func snapshot(t *testing.T, s state.Store) state.State {
	t.Helper()
	st, err := s.State(context.Background())
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	return st
}

func testRoundTrip(t *testing.T, newStore Factory) {
	s := newStore(t, SequentialIDs())
	date := core.NewDate(2025, 3, 3)

	dispatch(t, s, state.AddBudget(300))
	dispatch(t, s, state.ShowModal())
	dispatch(t, s, state.AddExpense(core.DraftExpense{Amount: 80, ExpenseName: "Groceries", Category: "2", Date: date}))
	dispatch(t, s, state.AddExpense(core.DraftExpense{Amount: 20, ExpenseName: "Film", Category: "5", Date: date}))

	st := snapshot(t, s)
	if st.Budget != 300 || len(st.Expenses) != 2 || st.Modal {
		t.Fatalf("unexpected state %+v", st)
	}
	if st.RemainingBudget() != 200 {
		t.Fatalf("remaining = %v", st.RemainingBudget())
	}
	if st.Expenses[0].ID != "e1" || !st.Expenses[0].Date.Equal(date.Time) {
		t.Fatalf("unexpected first expense %+v", st.Expenses[0])
	}

	dispatch(t, s, state.GetExpenseByID("e1"))
	st = snapshot(t, s)
	if st.UpdatingID != "e1" || !st.Modal {
		t.Fatalf("expected e1 selected with modal open, got %+v", st)
	}

	dispatch(t, s, state.UpdateExpense(core.Expense{ID: "e1", DraftExpense: core.DraftExpense{Amount: 50, ExpenseName: "Groceries", Category: "2", Date: date}}))
	dispatch(t, s, state.FilterCategory("5"))
	st = snapshot(t, s)
	if st.Expenses[0].Amount != 50 || st.UpdatingID != "" || st.CurrentCategory != "5" {
		t.Fatalf("unexpected state after update %+v", st)
	}
	if f := st.FilteredExpenses(); len(f) != 1 || f[0].ID != "e2" {
		t.Fatalf("unexpected filtered %+v", f)
	}

	dispatch(t, s, state.RemoveExpense("e2"))
	if st = snapshot(t, s); len(st.Expenses) != 1 {
		t.Fatalf("expected one expense after remove, got %+v", st.Expenses)
	}

	dispatch(t, s, state.ResetApp())
	st = snapshot(t, s)
	if st.Budget != 0 || len(st.Expenses) != 0 || st.CurrentCategory != "" {
		t.Fatalf("reset did not clear state %+v", st)
	}
}

func testDateInstant(t *testing.T, newStore Factory) {
	s := newStore(t, SequentialIDs())
	zones := []*time.Location{time.UTC, time.FixedZone("EST", -5*3600), time.FixedZone("ACST", 9*3600+1800)}

	var dates []core.Date
	for _, loc := range zones {
		d := core.Date{Time: time.Date(2025, 3, 3, 23, 30, 15, 123456789, loc)}
		dates = append(dates, d)
		dispatch(t, s, state.AddExpense(core.DraftExpense{Amount: 1, ExpenseName: loc.String(), Category: "1", Date: d}))
	}

	st := snapshot(t, s)
	if len(st.Expenses) != len(dates) {
		t.Fatalf("expected %d expenses, got %d", len(dates), len(st.Expenses))
	}
	for i, want := range dates {
		got := st.Expenses[i].Date
		if !got.Equal(want.Time) {
			t.Fatalf("%s: stored %v, want %v", zones[i], got, want)
		}
		if got.InputValue() != want.InputValue() {
			t.Fatalf("%s: input value %q, want %q", zones[i], got.InputValue(), want.InputValue())
		}
	}

	edited := core.Date{Time: time.Date(2025, 4, 1, 0, 5, 0, 0, zones[1])}
	dispatch(t, s, state.UpdateExpense(core.Expense{ID: "e2", DraftExpense: core.DraftExpense{Amount: 2, ExpenseName: "edited", Category: "1", Date: edited}}))
	if got := snapshot(t, s).Expenses[1].Date; !got.Equal(edited.Time) {
		t.Fatalf("updated date %v, want %v", got, edited)
	}
}

func testErrors(t *testing.T, newStore Factory) {
	s := newStore(t, SequentialIDs())
	dispatch(t, s, state.AddBudget(10))

	if err := s.Dispatch(context.Background(), state.RemoveExpense("missing")); !errors.Is(err, state.ErrExpenseNotFound) {
		t.Fatalf("expected ErrExpenseNotFound, got %v", err)
	}
	if err := s.Dispatch(context.Background(), state.Action{Type: "nope"}); !errors.Is(err, state.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	if st := snapshot(t, s); st.Budget != 10 {
		t.Fatalf("state changed after failed dispatch: %+v", st)
	}
}

func testObservers(t *testing.T, newStore Factory) {
	s := newStore(t, SequentialIDs())

	var seen []state.ActionType
	s.Subscribe(func(_ context.Context, a state.Action, st state.State) {
		seen = append(seen, a.Type)
		if a.Type == state.ActionAddBudget && st.Budget != 42 {
			t.Errorf("observer saw budget %v", st.Budget)
		}
	})

	dispatch(t, s, state.AddBudget(42))
	dispatch(t, s, state.ShowModal())
	_ = s.Dispatch(context.Background(), state.RemoveExpense("missing"))
	dispatch(t, s, state.CloseModal())

	want := []state.ActionType{state.ActionAddBudget, state.ActionShowModal, state.ActionCloseModal}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, seen)
		}
	}
}

func testConcurrent(t *testing.T, newStore Factory) {
	s := newStore(t, SequentialIDs())
	const n = 25

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d := core.DraftExpense{Amount: 1, ExpenseName: fmt.Sprintf("x%d", i), Category: "1", Date: core.NewDate(2025, 1, 1)}
			if err := s.Dispatch(context.Background(), state.AddExpense(d)); err != nil {
				t.Errorf("dispatch: %v", err)
			}
		}(i)
	}
	wg.Wait()

	st := snapshot(t, s)
	if len(st.Expenses) != n {
		t.Fatalf("expected %d expenses, got %d", n, len(st.Expenses))
	}
	seen := make(map[string]bool, n)
	for _, e := range st.Expenses {
		if seen[e.ID] {
			t.Fatalf("duplicate id %s", e.ID)
		}
		seen[e.ID] = true
	}
}

func testNaN(t *testing.T, newStore Factory) {
	s := newStore(t, SequentialIDs())
	dispatch(t, s, state.AddExpense(core.DraftExpense{Amount: math.NaN(), ExpenseName: "n", Category: "1"}))

	st := snapshot(t, s)
	if len(st.Expenses) != 1 || !math.IsNaN(st.Expenses[0].Amount) {
		t.Fatalf("expected a NaN amount, got %+v", st.Expenses)
	}
	if !st.Expenses[0].Date.IsEmpty() {
		t.Fatalf("expected empty date, got %v", st.Expenses[0].Date)
	}
}
