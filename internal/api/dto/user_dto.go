package dto

import "github.com/spec-kit/support-portal/internal/domain"

// UserResponse exposes only public account fields.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// SessionResponse reports whether the caller is signed in.
type SessionResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *UserResponse `json:"user"`
}

// CurrentUserResponse wraps the signed-in user.
type CurrentUserResponse struct {
	User UserResponse `json:"user"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username}
}

func SessionUser(s *domain.Session) UserResponse {
	return UserResponse{ID: s.UserID, Username: s.Username}
}
