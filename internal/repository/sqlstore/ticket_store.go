package sqlstore

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/repository"
)

type TicketStore struct {
	db *gorm.DB
}

func NewTicketStore(db *gorm.DB) *TicketStore {
	return &TicketStore{db: db}
}

var _ repository.TicketRepository = (*TicketStore)(nil)

func (s *TicketStore) Create(ctx context.Context, ticket *domain.Ticket) error {
	m := toTicketModel(ticket)
	return translateError(s.db.WithContext(ctx).Create(&m).Error)
}

func (s *TicketStore) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.get(s.db.WithContext(ctx), id)
}

func (s *TicketStore) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	q := s.db.WithContext(ctx).Model(&TicketModel{})
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	if filter.Priority != nil {
		q = q.Where("priority = ?", string(*filter.Priority))
	}
	if like, ok := repository.LikePattern(filter.Search); ok {
		// casefold is registered by the persistence package; LIKE alone only folds ASCII.
		like = strings.ToLower(like)
		q = q.Where(`(casefold(title) LIKE ? ESCAPE '\' OR casefold(description) LIKE ? ESCAPE '\' OR casefold(customer_name) LIKE ? ESCAPE '\')`,
			like, like, like)
	}
	q = q.Order("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	rows := make([]TicketModel, 0)
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Ticket, 0, len(rows))
	for i := range rows {
		result = append(result, *toTicket(&rows[i]))
	}
	return result, nil
}

func (s *TicketStore) Update(ctx context.Context, id string, changes repository.TicketChanges) (*domain.Ticket, error) {
	values := map[string]any{"updated_at": changes.UpdatedAt}
	if changes.Title != nil {
		values["title"] = *changes.Title
	}
	if changes.Description != nil {
		values["description"] = *changes.Description
	}
	if changes.Status != nil {
		values["status"] = string(*changes.Status)
	}
	if changes.Priority != nil {
		values["priority"] = string(*changes.Priority)
	}
	if changes.Category != nil {
		values["category"] = string(*changes.Category)
	}
	if changes.CustomerName != nil {
		values["customer_name"] = *changes.CustomerName
	}
	if changes.CustomerEmail != nil {
		values["customer_email"] = *changes.CustomerEmail
	}
	if changes.AssignedTo != nil {
		values["assigned_to"] = repository.AssigneeValue(changes.AssignedTo)
	}

	var updated *domain.Ticket
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&TicketModel{}).Where("id = ?", id).Updates(values)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		ticket, err := s.get(tx, id)
		if err != nil {
			return err
		}
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}
	return updated, nil
}

func (s *TicketStore) get(db *gorm.DB, id string) (*domain.Ticket, error) {
	var m TicketModel
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return toTicket(&m), nil
}

func toTicketModel(t *domain.Ticket) TicketModel {
	return TicketModel{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        string(t.Status),
		Priority:      string(t.Priority),
		Category:      string(t.Category),
		CustomerName:  t.CustomerName,
		CustomerEmail: t.CustomerEmail,
		AssignedTo:    t.AssignedTo,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func toTicket(m *TicketModel) *domain.Ticket {
	return &domain.Ticket{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		Status:        domain.TicketStatus(m.Status),
		Priority:      domain.TicketPriority(m.Priority),
		Category:      domain.TicketCategory(m.Category),
		CustomerName:  m.CustomerName,
		CustomerEmail: m.CustomerEmail,
		AssignedTo:    m.AssignedTo,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}
