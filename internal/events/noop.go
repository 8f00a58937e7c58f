package events

import "context"

// NoopPublisher discards events; used when Kafka is disabled and in tests.
type NoopPublisher struct{}

func (NoopPublisher) Emit(context.Context, Event) {}
func (NoopPublisher) Close() error                { return nil }
