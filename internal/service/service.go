package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/events"
)

// Clock returns the current time. Services store UTC truncated to microseconds so values
// survive a round trip through either database.
type Clock func() time.Time

func defaultClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return defaultClock
	}
	return c
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, now Clock, event events.Event) error {
	if dispatcher == nil {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now()
	}
	return dispatcher.Publish(ctx, event)
}

func sessionActor(sess *domain.Session) events.Actor {
	if sess == nil {
		return events.Actor{}
	}
	userID := sess.UserID
	return events.Actor{UserID: &userID, Username: sess.Username}
}

func stringPreview(body string, max int) string {
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	return string(runes[:max]) + "..."
}
