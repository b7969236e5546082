package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/support-portal/internal/domain"
)

// CookieConfig describes the session cookie attributes.
type CookieConfig struct {
	Name   string
	Secret string
	Secure bool
	TTL    time.Duration
}

// SessionCookies signs session ids into cookies and reads them back. The cookie value is an
// HS256 token whose only claim of interest is the session id; the session record itself stays
// server-side.
type SessionCookies struct {
	name   string
	secret []byte
	secure bool
	ttl    time.Duration
}

type cookieClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// NewSessionCookies builds the cookie codec.
func NewSessionCookies(cfg CookieConfig) *SessionCookies {
	name := cfg.Name
	if name == "" {
		name = "sid"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionCookies{name: name, secret: []byte(cfg.Secret), secure: cfg.Secure, ttl: ttl}
}

// Name returns the cookie name.
func (s *SessionCookies) Name() string {
	return s.name
}

// Encode signs the session id, expiring with the session.
func (s *SessionCookies) Encode(session *domain.Session) (string, error) {
	claims := &cookieClaims{
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Decode verifies the signature and expiry and returns the session id.
func (s *SessionCookies) Decode(value string) (string, error) {
	parsed, err := jwt.ParseWithClaims(value, &cookieClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*cookieClaims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return "", errors.New("invalid session cookie")
	}
	return claims.SessionID, nil
}

// SessionID returns the id carried by the request cookie, or "" when absent or tampered with.
func (s *SessionCookies) SessionID(c *fiber.Ctx) string {
	raw := c.Cookies(s.name)
	if raw == "" {
		return ""
	}
	id, err := s.Decode(raw)
	if err != nil {
		return ""
	}
	return id
}

// Issue writes the cookie for a freshly created session.
func (s *SessionCookies) Issue(c *fiber.Ctx, session *domain.Session) error {
	value, err := s.Encode(session)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.ttl / time.Second),
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// Clear instructs the client to discard the cookie.
func (s *SessionCookies) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
