package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/repository"
	"github.com/spec-kit/support-portal/internal/validation"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// FilterAll disables a status or priority filter.
const FilterAll = "all"

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title         string                `json:"title" validate:"required,min=5"`
	Description   string                `json:"description" validate:"required,min=20"`
	Status        domain.TicketStatus   `json:"status" validate:"omitempty,ticket_status"`
	Priority      domain.TicketPriority `json:"priority" validate:"omitempty,ticket_priority"`
	Category      domain.TicketCategory `json:"category" validate:"required,ticket_category"`
	CustomerName  string                `json:"customerName" validate:"required"`
	CustomerEmail string                `json:"customerEmail" validate:"required,email"`
	AssignedTo    *string               `json:"assignedTo"`
}

// TicketListInput carries raw list query values. Empty or "all" disables a filter.
type TicketListInput struct {
	Status   string
	Priority string
	Search   string
	Limit    int
	Offset   int
}

// TicketStatusInput changes status and optionally the assignee. A nil AssignedTo leaves the
// assignee alone; an empty string clears it.
type TicketStatusInput struct {
	Status     domain.TicketStatus `json:"status" validate:"required,ticket_status"`
	AssignedTo *string             `json:"assignedTo"`
}

// TicketPatch is a partial update. Identity and timestamps are not patchable.
type TicketPatch struct {
	Title         *string                `json:"title" validate:"omitnil,min=5"`
	Description   *string                `json:"description" validate:"omitnil,min=20"`
	Status        *domain.TicketStatus   `json:"status" validate:"omitnil,ticket_status"`
	Priority      *domain.TicketPriority `json:"priority" validate:"omitnil,ticket_priority"`
	Category      *domain.TicketCategory `json:"category" validate:"omitnil,ticket_category"`
	CustomerName  *string                `json:"customerName" validate:"omitnil,min=1"`
	CustomerEmail *string                `json:"customerEmail" validate:"omitnil,email"`
	AssignedTo    *string                `json:"assignedTo"`
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
}

// TicketDependencies bundles requirements for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clockOrDefault(deps.Clock),
	}
}

// Create validates and stores a new ticket. Text fields are stored trimmed, so the returned
// ticket, not the raw input, is what later reads compare equal to.
func (s *TicketService) Create(ctx context.Context, actor *domain.Session, input TicketCreateInput) (*domain.Ticket, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.CustomerEmail = strings.TrimSpace(input.CustomerEmail)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	now := s.now()
	ticket := &domain.Ticket{
		ID:            uuid.NewString(),
		Title:         input.Title,
		Description:   input.Description,
		Status:        input.Status,
		Priority:      input.Priority,
		Category:      input.Category,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		AssignedTo:    repository.AssigneeValue(input.AssignedTo),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusOpen
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.Event{
		Type:      events.EventTicketCreated,
		SubjectID: ticket.ID,
		Actor:     sessionActor(actor),
		Payload: events.TicketCreatedPayload{
			Title:         ticket.Title,
			Priority:      ticket.Priority,
			Category:      ticket.Category,
			CustomerEmail: ticket.CustomerEmail,
		},
	})
	return ticket, nil
}

// List returns tickets matching every supplied filter, newest first.
func (s *TicketService) List(ctx context.Context, input TicketListInput) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{
		Search: input.Search,
		Limit:  input.Limit,
		Offset: input.Offset,
	}
	if input.Limit < 0 {
		return nil, validation.Field("limit", "must not be negative")
	}
	if input.Offset < 0 {
		return nil, validation.Field("offset", "must not be negative")
	}
	if status := strings.TrimSpace(input.Status); status != "" && status != FilterAll {
		value := domain.TicketStatus(status)
		if !value.Valid() {
			return nil, validation.Field("status", "must be one of: all, "+strings.Join(validation.Allowed("ticket_status"), ", "))
		}
		filter.Status = &value
	}
	if priority := strings.TrimSpace(input.Priority); priority != "" && priority != FilterAll {
		value := domain.TicketPriority(priority)
		if !value.Valid() {
			return nil, validation.Field("priority", "must be one of: all, "+strings.Join(validation.Allowed("ticket_priority"), ", "))
		}
		filter.Priority = &value
	}

	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tickets, nil
}

// GetByID returns nil, nil when the ticket does not exist.
func (s *TicketService) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewInternalError(err)
	}
	return ticket, nil
}

// UpdateStatus sets status and optionally the assignee. Any status may follow any other.
// Returns nil, nil when the ticket does not exist.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.Session, id string, input TicketStatusInput) (*domain.Ticket, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	current, err := s.GetByID(ctx, id)
	if err != nil || current == nil {
		return nil, err
	}

	status := input.Status
	updated, err := s.apply(ctx, id, repository.TicketChanges{
		Status:     &status,
		AssignedTo: input.AssignedTo,
	})
	if err != nil || updated == nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTicketStatusChanged,
		SubjectID: updated.ID,
		Actor:     sessionActor(actor),
		Payload: events.TicketStatusChangedPayload{
			Title:         updated.Title,
			CustomerEmail: updated.CustomerEmail,
			OldStatus:     current.Status,
			NewStatus:     updated.Status,
			AssignedTo:    updated.AssignedTo,
		},
	})
	return updated, nil
}

// Update applies a partial update validated with the same rules as Create.
// Returns nil, nil when the ticket does not exist.
func (s *TicketService) Update(ctx context.Context, actor *domain.Session, id string, patch TicketPatch) (*domain.Ticket, error) {
	patch.Title = trimmed(patch.Title)
	patch.Description = trimmed(patch.Description)
	patch.CustomerName = trimmed(patch.CustomerName)
	patch.CustomerEmail = trimmed(patch.CustomerEmail)
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}

	updated, err := s.apply(ctx, id, repository.TicketChanges{
		Title:         patch.Title,
		Description:   patch.Description,
		Status:        patch.Status,
		Priority:      patch.Priority,
		Category:      patch.Category,
		CustomerName:  patch.CustomerName,
		CustomerEmail: patch.CustomerEmail,
		AssignedTo:    patch.AssignedTo,
	})
	if err != nil || updated == nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTicketUpdated,
		SubjectID: updated.ID,
		Actor:     sessionActor(actor),
		Payload:   events.TicketUpdatedPayload{Fields: patch.fields()},
	})
	return updated, nil
}

func (s *TicketService) apply(ctx context.Context, id string, changes repository.TicketChanges) (*domain.Ticket, error) {
	changes.UpdatedAt = s.now()
	ticket, err := s.tickets.Update(ctx, id, changes)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewInternalError(err)
	}
	return ticket, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if err := publishEvent(ctx, s.dispatcher, s.now, event); err != nil {
		s.logger.Warn("publish event", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func (p TicketPatch) fields() []string {
	fields := []string{}
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(p.Title != nil, "title")
	add(p.Description != nil, "description")
	add(p.Status != nil, "status")
	add(p.Priority != nil, "priority")
	add(p.Category != nil, "category")
	add(p.CustomerName != nil, "customerName")
	add(p.CustomerEmail != nil, "customerEmail")
	add(p.AssignedTo != nil, "assignedTo")
	return fields
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	out := strings.TrimSpace(*value)
	return &out
}
