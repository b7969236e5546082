package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/repository"
	"github.com/spec-kit/support-portal/internal/session"
	"github.com/spec-kit/support-portal/internal/validation"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=20,username"`
	Password string `json:"password" validate:"required,min=8,password_bytes,password_strength"`
}

// LoginInput is the sign-in form.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6,password_bytes"`
}

// AuthService coordinates registration, login and session lifecycle.
type AuthService struct {
	users      repository.UserRepository
	sessions   session.Store
	bcryptCost int
	sessionTTL time.Duration
	logger     *zap.Logger
	now        Clock

	dummyOnce sync.Once
	dummyHash string
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Sessions   session.Store
	BcryptCost int
	SessionTTL time.Duration
	Logger     *zap.Logger
	Clock      Clock
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.Sessions,
		bcryptCost: deps.BcryptCost,
		sessionTTL: deps.SessionTTL,
		logger:     logger,
		now:        clockOrDefault(deps.Clock),
	}
}

func usernameTaken() error {
	return apperrors.NewConflict("Username already exists",
		"This username is already registered. Please try logging in or choose a different username.")
}

// Register creates an account and signs it in. previousSessionID, if any, is destroyed so the
// caller always leaves with a new session id.
func (s *AuthService) Register(ctx context.Context, input RegisterInput, previousSessionID string) (*domain.User, *domain.Session, error) {
	if err := validation.Struct(input); err != nil {
		return nil, nil, err
	}

	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return nil, nil, usernameTaken()
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, usernameTaken()
		}
		return nil, nil, apperrors.NewInternalError(err)
	}

	sess, err := s.regenerate(ctx, previousSessionID, user)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return user, sess, nil
}

// Login verifies credentials and issues a fresh session. Unknown usernames and wrong passwords
// yield the same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput, previousSessionID string) (*domain.User, *domain.Session, error) {
	if err := validation.Struct(input); err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByUsername(ctx, input.Username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NewInternalError(err)
		}
		// keep the response time close to the wrong-password path
		_, _ = auth.VerifyPassword(s.dummyPasswordHash(), input.Password)
		return nil, nil, apperrors.NewInvalidCredentials()
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, input.Password)
	if err != nil {
		s.logger.Error("stored password hash unreadable", zap.String("user_id", user.ID), zap.Error(err))
		return nil, nil, apperrors.NewInternalError(err)
	}
	if !ok {
		return nil, nil, apperrors.NewInvalidCredentials()
	}

	sess, err := s.regenerate(ctx, previousSessionID, user)
	if err != nil {
		return nil, nil, err
	}
	return user, sess, nil
}

// Logout destroys the session. Unknown or empty ids are fine.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// CurrentUser resolves a session id without side effects. ok is false for anonymous callers.
func (s *AuthService) CurrentUser(ctx context.Context, sessionID string) (*domain.Session, bool, error) {
	if sessionID == "" {
		return nil, false, nil
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, apperrors.NewInternalError(err)
	}
	if sess.Expired(s.now()) {
		return nil, false, nil
	}
	return sess, true, nil
}

// Profile loads the account behind a session. A session whose user no longer exists is
// treated as signed out.
func (s *AuthService) Profile(ctx context.Context, sess *domain.Session) (*domain.User, error) {
	if sess == nil {
		return nil, apperrors.NewAuthenticationRequired()
	}
	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewAuthenticationRequired()
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

func (s *AuthService) regenerate(ctx context.Context, previousSessionID string, user *domain.User) (*domain.Session, error) {
	if previousSessionID != "" {
		if err := s.sessions.Destroy(ctx, previousSessionID); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
	}
	sess := session.New(user.ID, user.Username, s.now(), s.sessionTTL)
	if err := s.sessions.Set(ctx, sess); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return sess, nil
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPassword(uuid.NewString(), s.bcryptCost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}
