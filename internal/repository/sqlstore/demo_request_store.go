package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/repository"
)

type DemoRequestStore struct {
	db *gorm.DB
}

func NewDemoRequestStore(db *gorm.DB) *DemoRequestStore {
	return &DemoRequestStore{db: db}
}

var _ repository.DemoRequestRepository = (*DemoRequestStore)(nil)

func (s *DemoRequestStore) Create(ctx context.Context, req *domain.DemoRequest) error {
	m := DemoRequestModel{
		ID:                req.ID,
		Name:              req.Name,
		Email:             req.Email,
		Company:           req.Company,
		Phone:             req.Phone,
		CompanySize:       string(req.CompanySize),
		PrimaryInterest:   string(req.PrimaryInterest),
		CurrentChallenges: req.CurrentChallenges,
		PreferredTime:     string(req.PreferredTime),
		Status:            string(req.Status),
		CreatedAt:         req.CreatedAt,
	}
	return translateError(s.db.WithContext(ctx).Create(&m).Error)
}

func (s *DemoRequestStore) List(ctx context.Context) ([]domain.DemoRequest, error) {
	rows := make([]DemoRequestModel, 0)
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.DemoRequest, 0, len(rows))
	for _, m := range rows {
		result = append(result, domain.DemoRequest{
			ID:                m.ID,
			Name:              m.Name,
			Email:             m.Email,
			Company:           m.Company,
			Phone:             m.Phone,
			CompanySize:       domain.CompanySize(m.CompanySize),
			PrimaryInterest:   domain.PrimaryInterest(m.PrimaryInterest),
			CurrentChallenges: m.CurrentChallenges,
			PreferredTime:     domain.PreferredTime(m.PreferredTime),
			Status:            domain.DemoRequestStatus(m.Status),
			CreatedAt:         m.CreatedAt.UTC(),
		})
	}
	return result, nil
}
