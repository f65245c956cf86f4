package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"budget/internal/core"
	"budget/internal/state"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newClock() *clock {
	return &clock{t: time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)}
}

func TestRegistryGet(t *testing.T) {
	c := newClock()
	r := NewRegistry(10, time.Minute, WithClock(c.Now))

	s, created := r.Get("")
	if !created || s.ID == "" {
		t.Fatalf("expected a new session with an id")
	}

	again, created := r.Get(s.ID)
	if created || again != s {
		t.Fatalf("expected the same session back")
	}

	other, created := r.Get("not-a-uuid")
	if !created || other.ID == "not-a-uuid" {
		t.Fatalf("malformed ids must be replaced, got %q", other.ID)
	}
}

func TestRegistryExpiry(t *testing.T) {
	c := newClock()
	r := NewRegistry(10, time.Minute, WithClock(c.Now))
	s, _ := r.Get("")

	c.Advance(30 * time.Second)
	if _, created := r.Get(s.ID); created {
		t.Fatalf("session expired too early")
	}

	// The access above refreshed the TTL.
	c.Advance(45 * time.Second)
	if _, created := r.Get(s.ID); created {
		t.Fatalf("access should extend the TTL")
	}

	c.Advance(2 * time.Minute)
	if n := r.CleanExpired(); n != 1 {
		t.Fatalf("expected 1 expired session, got %d", n)
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty registry")
	}
	if fresh, created := r.Get(s.ID); !created || fresh == s {
		t.Fatalf("expired session must be replaced")
	}
}

func TestRegistryEvictsLeastRecentlyUsed(t *testing.T) {
	r := NewRegistry(2, time.Hour)
	a, _ := r.Get("")
	b, _ := r.Get("")
	r.Get(a.ID)
	r.Get("")

	if r.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", r.Len())
	}
	if _, created := r.Get(b.ID); !created {
		t.Fatalf("least recently used session should have been evicted")
	}
}

func TestRegistryDelete(t *testing.T) {
	r := NewRegistry(2, time.Hour)
	s, _ := r.Get("")
	r.Delete(s.ID)
	if r.Len() != 0 {
		t.Fatalf("delete did not remove the session")
	}
}

func TestRegistryRunStopsOnCancel(t *testing.T) {
	r := NewRegistry(2, time.Millisecond)
	r.Get("")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, time.Millisecond) }()

	deadline := time.After(2 * time.Second)
	for r.Len() != 0 {
		select {
		case <-deadline:
			t.Fatalf("cleanup loop never removed the expired session")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run returned %v", err)
	}
}

func TestSessionSyncRemountsOnOpen(t *testing.T) {
	c := newClock()
	r := NewRegistry(2, time.Hour, WithClock(c.Now))
	s, _ := r.Get("")

	s.Expense.HandleChange("expenseName", "left over")
	if err := s.Sync(state.State{Modal: true}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if s.Expense.Draft().ExpenseName != "" {
		t.Fatalf("opening the modal should remount the form")
	}

	s.Expense.HandleChange("expenseName", "typing")
	if err := s.Sync(state.State{Modal: true}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if s.Expense.Draft().ExpenseName != "typing" {
		t.Fatalf("a modal that stays open keeps the draft")
	}
}

func TestSessionSyncLoadsSelectedExpense(t *testing.T) {
	s := newSession("id", newClock().Now)
	e := core.Expense{ID: "e1", DraftExpense: core.DraftExpense{Amount: 80, ExpenseName: "Dinner", Category: "2"}}
	st := state.State{Expenses: []core.Expense{e}, UpdatingID: "e1", Modal: true}

	if err := s.Sync(st); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !s.Editing() || s.Expense.Draft() != e.DraftExpense || s.Expense.PreviousAmount() != 80 {
		t.Fatalf("expense not loaded for edit: %+v", s.Expense.Draft())
	}

	s.Expense.HandleChange("amount", "50")
	if err := s.Sync(st); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if s.Expense.Draft().Amount != 50 {
		t.Fatalf("re-syncing the same selection must not reload the draft")
	}

	err := s.Sync(state.State{UpdatingID: "gone", Modal: true})
	if !errors.Is(err, state.ErrExpenseNotFound) {
		t.Fatalf("expected ErrExpenseNotFound, got %v", err)
	}
}

func TestSessionSyncRemountsFormsAfterReset(t *testing.T) {
	s := newSession("id", newClock().Now)
	s.Budget.HandleChange("300")

	if err := s.Sync(state.State{Budget: 300}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if s.Budget.Budget() != 300 {
		t.Fatalf("budget draft should survive while the budget is defined")
	}

	if err := s.Sync(state.Initial()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if s.Budget.InputValue() != "0" || !s.Budget.IsInvalid() {
		t.Fatalf("reset should remount the budget form, got %q", s.Budget.InputValue())
	}
}
