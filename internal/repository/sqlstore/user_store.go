package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/repository"
)

type UserStore struct {
	db *gorm.DB
}

// NewUserStore returns a gorm backed repository.UserRepository.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

var _ repository.UserRepository = (*UserStore)(nil)

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	m := UserModel{
		ID:           user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	return translateError(s.db.WithContext(ctx).Create(&m).Error)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.first(ctx, "id = ?", id)
}

// GetByUsername is an exact, case-sensitive match.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.first(ctx, "username = ?", username)
}

func (s *UserStore) first(ctx context.Context, cond string, arg any) (*domain.User, error) {
	var m UserModel
	if err := s.db.WithContext(ctx).Where(cond, arg).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt.UTC(),
	}, nil
}
