// Package worker delivers domain events off the request path.
package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/events"
)

var (
	ErrQueueFull = errors.New("notification queue full")
	ErrStopped   = errors.New("notification worker stopped")
)

type job struct {
	ctx   context.Context
	event events.Event
}

// NotificationWorker is an events.Dispatcher that queues events and hands them to the wrapped
// dispatcher from a background goroutine.
type NotificationWorker struct {
	next   events.Dispatcher
	logger *zap.Logger
	queue  chan job

	mu      sync.RWMutex
	stopped bool
	done    chan struct{}
}

// NewNotificationWorker wraps next with a queue of the given size.
func NewNotificationWorker(next events.Dispatcher, buffer int, logger *zap.Logger) *NotificationWorker {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		next:   next,
		logger: logger,
		queue:  make(chan job, buffer),
		done:   make(chan struct{}),
	}
}

// Start launches the delivery loop. It returns immediately.
func (w *NotificationWorker) Start() {
	go func() {
		defer close(w.done)
		for j := range w.queue {
			if err := w.next.Publish(j.ctx, j.event); err != nil {
				w.logger.Warn("event delivery failed",
					zap.String("event_type", string(j.event.Type)),
					zap.String("event_id", j.event.ID),
					zap.Error(err))
			}
		}
	}()
}

// Publish enqueues the event without waiting for handlers. The request context's
// cancellation is detached so delivery outlives the request.
func (w *NotificationWorker) Publish(ctx context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrStopped
	}
	select {
	case w.queue <- job{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	default:
		w.logger.Warn("notification queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID))
		return ErrQueueFull
	}
}

// Subscribe registers the handler on the wrapped dispatcher.
func (w *NotificationWorker) Subscribe(eventType events.EventType, handler events.EventHandler) {
	w.next.Subscribe(eventType, handler)
}

// Stop rejects new events and waits for queued ones to drain or ctx to end.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
