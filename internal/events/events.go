package events

import "context"

// Event is the payload handed to the notification sink. UserID is zero
// for anonymous events.
type Event struct {
	EventType string         `json:"event_type"`
	UserID    int64          `json:"user_id,omitempty"`
	Data      map[string]any `json:"data"`
}

// Publisher is a best-effort notification sink. Emit must never block
// the caller's request path and must never surface a failure: callers
// treat publishing as fire-and-forget.
type Publisher interface {
	Emit(ctx context.Context, e Event)
	Close() error
}
