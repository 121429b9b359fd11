package audit

import (
	"context"
	"time"
)

// Publisher hands events to a buffered inbox drained by the worker, so a
// slow sink never blocks a dispatch. A full inbox drops the event with no
// error; the audit trail is best-effort relative to user-facing work.
type Publisher struct {
	inbox chan<- Event
}

func NewPublisher(inbox chan<- Event) *Publisher {
	return &Publisher{inbox: inbox}
}

func (p *Publisher) Emit(_ context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
	}
	return nil
}

// NopRecorder discards events. Used in tests and when auditing is disabled.
type NopRecorder struct{}

func (NopRecorder) Emit(context.Context, Event) error { return nil }
