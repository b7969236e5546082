package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-portal/internal/domain"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

const sessionKey = "auth_session"

// SessionResolver turns a session id into the live session. ok is false for unknown and
// expired ids.
type SessionResolver interface {
	CurrentUser(ctx context.Context, sessionID string) (sess *domain.Session, ok bool, err error)
}

// SessionMiddleware resolves the session cookie into a session record.
type SessionMiddleware struct {
	cookies  *SessionCookies
	resolver SessionResolver
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(cookies *SessionCookies, resolver SessionResolver) *SessionMiddleware {
	return &SessionMiddleware{cookies: cookies, resolver: resolver}
}

// Load attaches the active session, if any, to the request. Anonymous requests pass through.
func (m *SessionMiddleware) Load(c *fiber.Ctx) error {
	id := m.cookies.SessionID(c)
	if id == "" {
		return c.Next()
	}
	sess, ok, err := m.resolver.CurrentUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	if ok {
		c.Locals(sessionKey, sess)
	}
	return c.Next()
}

// RequireSession rejects requests without an active session.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := SessionFromContext(c); !ok {
			return apperrors.NewAuthenticationRequired()
		}
		return c.Next()
	}
}

// SessionFromContext retrieves the active session loaded by the middleware.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	sess, ok := val.(*domain.Session)
	return sess, ok && sess != nil
}
