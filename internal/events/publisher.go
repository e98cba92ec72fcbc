package events

import (
	"context"

	"dm-service/internal/message"
)

// Publisher emits a message.created event after a record is persisted.
// Publishing is best effort; the router logs failures and keeps going.
type Publisher interface {
	MessageCreated(ctx context.Context, msg *message.Message) error
	Close() error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) MessageCreated(context.Context, *message.Message) error { return nil }
func (NoopPublisher) Close() error                                          { return nil }
