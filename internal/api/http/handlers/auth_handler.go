package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-portal/internal/api/dto"
	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/service"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// AuthHandler exposes registration, login and session endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	cookies *auth.SessionCookies
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookies *auth.SessionCookies) *AuthHandler {
	return &AuthHandler{auth: authService, cookies: cookies}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input service.RegisterInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	user, sess, err := h.auth.Register(c.UserContext(), input, h.cookies.SessionID(c))
	if err != nil {
		return err
	}
	if err := h.cookies.Issue(c, sess); err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{
		Message: "User registered successfully",
		User:    dto.NewUserResponse(user),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	user, sess, err := h.auth.Login(c.UserContext(), input, h.cookies.SessionID(c))
	if err != nil {
		return err
	}
	if err := h.cookies.Issue(c, sess); err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(dto.AuthResponse{
		Message: "Login successful",
		User:    dto.NewUserResponse(user),
	})
}

// Logout handles POST /api/auth/logout. It succeeds whether or not a session exists.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext(), h.cookies.SessionID(c)); err != nil {
		return err
	}
	h.cookies.Clear(c)
	return c.JSON(dto.MessageResponse{Message: "Logout successful"})
}

// Session handles GET /api/auth/session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return c.JSON(dto.SessionResponse{Authenticated: false})
	}
	user := dto.SessionUser(sess)
	return c.JSON(dto.SessionResponse{Authenticated: true, User: &user})
}

// CurrentUser handles GET /api/auth/user. Requires a session.
func (h *AuthHandler) CurrentUser(c *fiber.Ctx) error {
	sess, _ := auth.SessionFromContext(c)
	user, err := h.auth.Profile(c.UserContext(), sess)
	if err != nil {
		return err
	}
	return c.JSON(dto.CurrentUserResponse{User: dto.NewUserResponse(user)})
}
