package amqp

import (
	"context"
	"time"

	"budget/internal/log"
	"budget/internal/state"
)

// EventPublisher is the sending half of Client.
type EventPublisher interface {
	Publish(ctx context.Context, ev *ActionEvent) error
}

// Publisher turns committed dispatches into events without blocking the
// dispatching goroutine. Events are queued and sent by Run.
type Publisher struct {
	client EventPublisher
	events chan *ActionEvent
	now    func() time.Time
	logger *log.Logger
}

func NewPublisher(client EventPublisher, buffer int, logger *log.Logger) *Publisher {
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Publisher{
		client: client,
		events: make(chan *ActionEvent, buffer),
		now:    time.Now,
		logger: logger.WithComponent(log.ComponentAMQP),
	}
}

// Observe is a state.Observer. When the queue is full the event is dropped.
func (p *Publisher) Observe(ctx context.Context, a state.Action, s state.State) {
	ev := NewActionEvent(a, s, p.now())
	select {
	case p.events <- ev:
	default:
		p.logger.WarnContext(ctx, "Event queue full, dropping event", log.FieldAction, string(a.Type))
	}
}

// Run publishes queued events in order until ctx is done.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-p.events:
			if err := p.client.Publish(ctx, ev); err != nil {
				p.logger.ErrorContext(ctx, "Failed to publish event",
					log.FieldAction, string(ev.Type),
					log.FieldOperation, log.OpPublish,
					log.FieldError, err.Error())
			}
		}
	}
}
