package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type pingEvent struct {
	BaseEvent
}

func (pingEvent) EventName() string { return "test.ping" }

func TestPublishSyncCollectsErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)
	calls := 0
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, e Event) error {
		calls++
		return nil
	}))
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, e Event) error {
		calls++
		return errors.New("boom")
	}))

	err := bus.PublishSync(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if calls != 2 {
		t.Fatalf("expected both handlers to run, got %d", calls)
	}
}

func TestPublishRecoversPanicsAndRunsAll(t *testing.T) {
	bus := NewInMemoryBus(nil)
	var calls atomic.Int32
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, e Event) error {
		calls.Add(1)
		panic("handler exploded")
	}))
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, e Event) error {
		calls.Add(1)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, pingEvent{BaseEvent: NewBaseEvent()})
	cancel()
	bus.Wait()

	if calls.Load() != 2 {
		t.Fatalf("expected 2 handler calls, got %d", calls.Load())
	}
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewInMemoryBus(nil)
	bus.Publish(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	bus.Wait()
	if err := bus.PublishSync(context.Background(), pingEvent{}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestNewBaseEventIsUnique(t *testing.T) {
	a, b := NewBaseEvent(), NewBaseEvent()
	if a.ID == b.ID {
		t.Fatalf("expected distinct event ids")
	}
	if a.OccurredAt().Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", a.OccurredAt().Location())
	}
}
