// Package pubsub is a small typed publish/subscribe broker. The log package
// publishes log lines through it and the unit-of-work manager publishes
// committed, undone and redone changes.
package pubsub

import (
	"context"
	"time"
)

// EventType says what happened to the payload.
type EventType string

const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"

	// Emitted by the unit-of-work manager.
	CommittedEvent EventType = "committed"
	UndoneEvent    EventType = "undone"
	RedoneEvent    EventType = "redone"
)

// Event is one published payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out event channels.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context, types ...EventType) <-chan Event[T]
}

// Publisher publishes payloads.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
