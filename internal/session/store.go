// Package session keeps server-side session records keyed by an opaque id.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-portal/internal/domain"
)

// ErrNotFound is returned for unknown and expired sessions alike.
var ErrNotFound = errors.New("session not found")

// Store persists sessions. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Set(ctx context.Context, session *domain.Session) error
	// Destroy removes a session. Unknown ids are not an error.
	Destroy(ctx context.Context, id string) error
}

// New builds a session with a freshly generated id.
func New(userID, username string, now time.Time, ttl time.Duration) *domain.Session {
	return &domain.Session{
		ID:        NewID(),
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// NewID returns a random opaque session id.
func NewID() string {
	return uuid.NewString()
}
