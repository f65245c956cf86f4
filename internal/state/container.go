package state

import (
	"context"
)

type (
	// Dispatcher applies an action to the canonical state.
	Dispatcher interface {
		Dispatch(ctx context.Context, a Action) error
	}

	// Reader returns a snapshot of the canonical state.
	Reader interface {
		State(ctx context.Context) (State, error)
	}

	// Container is what the forms depend on.
	Container interface {
		Dispatcher
		Reader
	}

	// Store is a Container with lifecycle and change notification.
	Store interface {
		Container
		Subscribe(o Observer)
		Close() error
	}

	// Observer is called after every committed dispatch, in dispatch order,
	// with the action and the resulting state.
	Observer func(ctx context.Context, a Action, s State)
)

// Observers fans out notifications to a list of observers.
type Observers []Observer

func (os Observers) Notify(ctx context.Context, a Action, s State) {
	for _, o := range os {
		o(ctx, a, s.Clone())
	}
}
