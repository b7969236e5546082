package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spec-kit/support-portal/internal/events"
)

func TestWorkerDeliversQueuedEventsBeforeStop(t *testing.T) {
	var delivered atomic.Int32
	w := NewNotificationWorker(events.NewInMemoryDispatcher(), 8, nil)
	w.Subscribe(events.EventTicketCreated, func(ctx context.Context, _ events.Event) error {
		if ctx.Err() != nil {
			t.Errorf("delivery context already cancelled")
		}
		delivered.Add(1)
		return nil
	})
	w.Start()

	reqCtx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 5; i++ {
		if err := w.Publish(reqCtx, events.Event{Type: events.EventTicketCreated}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := w.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := delivered.Load(); got != 5 {
		t.Fatalf("expected 5 deliveries, got %d", got)
	}
	if err := w.Publish(context.Background(), events.Event{Type: events.EventTicketCreated}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestWorkerRejectsWhenQueueFull(t *testing.T) {
	w := NewNotificationWorker(events.NewInMemoryDispatcher(), 1, nil)
	// not started, so the single slot stays occupied
	if err := w.Publish(context.Background(), events.Event{Type: events.EventContactSubmitted}); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := w.Publish(context.Background(), events.Event{Type: events.EventContactSubmitted}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}
