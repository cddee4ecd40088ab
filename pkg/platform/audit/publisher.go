package audit

import (
	"context"
	"time"

	"quiverbook/pkg/requestcontext"
)

// Publisher captures structured audit events. It stamps request metadata
// from context so call sites only describe the state change itself.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

// Emit appends the event, filling timestamp and request id from context
// when the caller left them empty.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if p == nil || p.store == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	return p.store.Append(ctx, event)
}
