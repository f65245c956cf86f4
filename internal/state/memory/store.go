// Package memory provides a mutex-guarded in-process state store.
package memory

import (
	"context"
	"sync"

	"budget/internal/state"
)

type Store struct {
	mu        sync.Mutex
	current   state.State
	newID     state.IDFunc
	observers state.Observers
}

type Option func(*Store)

// WithIDFunc overrides expense id generation.
func WithIDFunc(f state.IDFunc) Option {
	return func(s *Store) { s.newID = f }
}

func New(opts ...Option) *Store {
	s := &Store{current: state.Initial(), newID: state.NewUUID}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Dispatch(ctx context.Context, a state.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := state.Reduce(s.current, a, s.newID)
	if err != nil {
		return err
	}
	s.current = next
	s.observers.Notify(ctx, a, next)
	return nil
}

func (s *Store) State(ctx context.Context) (state.State, error) {
	if err := ctx.Err(); err != nil {
		return state.State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone(), nil
}

// Subscribe registers o; it must not dispatch on the same store.
func (s *Store) Subscribe(o state.Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

func (s *Store) Close() error { return nil }

var _ state.Store = (*Store)(nil)
