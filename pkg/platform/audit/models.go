// Package audit captures key tracing actions for the compliance trail.
// Events are anonymized at the source: they carry the acting user and
// aggregate counts, never partner identities or notification payloads.
package audit

import (
	"context"
	"time"
)

// Action labels what happened.
type Action string

const (
	ActionScreenSubmitted   Action = "screen_submitted"
	ActionScreenEdited      Action = "screen_edited"
	ActionDispatchCompleted Action = "dispatch_completed"
	ActionNotificationRead  Action = "notification_read"
	ActionTracingOptIn      Action = "tracing_opt_in"
	ActionTracingOptOut     Action = "tracing_opt_out"
)

// Event is emitted from domain logic. Keep it transport-agnostic so stores
// and sinks can fan out.
type Event struct {
	Action    Action
	Timestamp time.Time
	UserID    string
	// ReportID ties dispatch events to their screen without exposing either
	// to recipients; the audit trail is operator-facing only.
	ReportID       string
	AppNotified    int
	SMSSent        int
	ManualRequired int
	RequestID      string
}

// Store is the persistence sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Recorder is what domain services depend on.
type Recorder interface {
	Emit(ctx context.Context, event Event) error
}
