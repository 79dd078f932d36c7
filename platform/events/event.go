// Package events is the in-process publish/subscribe bus that decouples
// modules from the side effects of their writes.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is a fact that already happened. EventName is the subscription key.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the identity and time of an event. Embed it in every
// concrete event.
type BaseEvent struct {
	ID        uuid.UUID `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

func NewBaseEvent() BaseEvent {
	return BaseEvent{ID: uuid.New(), Timestamp: time.Now().UTC()}
}

type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error { return f(ctx, event) }

// Bus delivers events to the handlers subscribed to their name.
type Bus interface {
	// Publish hands the event to every handler without waiting for them.
	Publish(ctx context.Context, event Event)
	// PublishSync runs every handler before returning and reports their errors.
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
