// Package events carries domain events between modules without coupling
// the publisher to its subscribers. It holds no business logic.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event published on the bus.
type Event interface {
	// EventName uniquely identifies the event type and is the key
	// handlers subscribe under.
	EventName() string
	// OccurredAt reports when the event happened.
	OccurredAt() time.Time
}

// BaseEvent carries the fields shared by every event; embed it in
// concrete event types.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt reports when the event happened.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a BaseEvent with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler reacts to events of one type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the underlying function.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events and routes them to subscribed handlers.
type Bus interface {
	// Publish delivers an event to every handler subscribed to its name.
	// Delivery is asynchronous.
	Publish(ctx context.Context, event Event)

	// PublishSync delivers an event and blocks until every handler returns.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under an event name, which must match
	// Event.EventName() of the events it wants.
	Subscribe(eventName string, handler Handler)
}
