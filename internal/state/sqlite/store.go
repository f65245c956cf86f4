// Package sqlite provides a state store backed by an in-memory SQLite
// database. Every dispatch runs in one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	"budget/internal/core"
	"budget/internal/state"

	_ "modernc.org/sqlite"
)

const memoryDSN = ":memory:"

type Store struct {
	mu        sync.Mutex
	db        *sql.DB
	newID     state.IDFunc
	observers state.Observers
}

type Option func(*Store)

// WithIDFunc overrides expense id generation.
func WithIDFunc(f state.IDFunc) Option {
	return func(s *Store) { s.newID = f }
}

// New opens a fresh in-memory database and applies the schema.
func New(ctx context.Context, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", memoryDSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, newID: state.NewUUID}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Subscribe(o state.Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

func (s *Store) State(ctx context.Context) (state.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return state.State{}, fmt.Errorf("begin read: %w", err)
	}
	defer tx.Rollback()

	return load(ctx, tx)
}

func (s *Store) Dispatch(ctx context.Context, a state.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin dispatch: %w", err)
	}
	defer tx.Rollback()

	current, err := load(ctx, tx)
	if err != nil {
		return err
	}

	next, err := state.Reduce(current, a, s.newID)
	if err != nil {
		return err
	}

	if err := apply(ctx, tx, a, next); err != nil {
		return fmt.Errorf("apply %s: %w", a.Type, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", a.Type, err)
	}

	s.observers.Notify(ctx, a, next)
	return nil
}

func load(ctx context.Context, tx *sql.Tx) (state.State, error) {
	st := state.Initial()

	var (
		budget sql.NullFloat64
		modal  int64
	)
	err := tx.QueryRowContext(ctx,
		`SELECT budget, updating_id, modal, current_category FROM app_state WHERE id = 1`,
	).Scan(&budget, &st.UpdatingID, &modal, &st.CurrentCategory)
	if err != nil {
		return st, fmt.Errorf("read app state: %w", err)
	}
	st.Budget = fromNull(budget)
	st.Modal = modal != 0

	rows, err := tx.QueryContext(ctx,
		`SELECT id, amount, expense_name, category, spent_on FROM expenses ORDER BY position`)
	if err != nil {
		return st, fmt.Errorf("read expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e      core.Expense
			amount sql.NullFloat64
			date   string
		)
		if err := rows.Scan(&e.ID, &amount, &e.ExpenseName, &e.Category, &date); err != nil {
			return st, fmt.Errorf("scan expense: %w", err)
		}
		e.Amount = fromNull(amount)
		if e.Date, err = fromDateText(date); err != nil {
			return st, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		st.Expenses = append(st.Expenses, e)
	}
	if err := rows.Err(); err != nil {
		return st, fmt.Errorf("iterate expenses: %w", err)
	}

	return st, nil
}

func apply(ctx context.Context, tx *sql.Tx, a state.Action, next state.State) error {
	switch a.Type {
	case state.ActionAddExpense:
		e := next.Expenses[len(next.Expenses)-1]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, amount, expense_name, category, spent_on) VALUES (?, ?, ?, ?, ?)`,
			e.ID, toNull(e.Amount), e.ExpenseName, e.Category, toDateText(e.Date),
		); err != nil {
			return err
		}

	case state.ActionUpdateExpense:
		e := a.Payload.Expense
		if _, err := tx.ExecContext(ctx,
			`UPDATE expenses SET amount = ?, expense_name = ?, category = ?, spent_on = ? WHERE id = ?`,
			toNull(e.Amount), e.ExpenseName, e.Category, toDateText(e.Date), e.ID,
		); err != nil {
			return err
		}

	case state.ActionRemoveExpense:
		if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, a.Payload.ID); err != nil {
			return err
		}

	case state.ActionResetApp:
		if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
			return err
		}
	}

	_, err := tx.ExecContext(ctx,
		`UPDATE app_state SET budget = ?, updating_id = ?, modal = ?, current_category = ? WHERE id = 1`,
		toNull(next.Budget), next.UpdatingID, boolToInt(next.Modal), next.CurrentCategory,
	)
	return err
}

// NaN is not representable in SQLite REAL columns.
func toNull(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// Dates keep their full instant and offset so a reload compares Equal.
func toDateText(d core.Date) string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format(time.RFC3339Nano)
}

func fromDateText(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
	}
	return core.Date{Time: t}, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

var _ state.Store = (*Store)(nil)
