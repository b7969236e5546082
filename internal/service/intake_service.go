package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/repository"
	"github.com/spec-kit/support-portal/internal/validation"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// DemoRequestInput is the demo booking form.
type DemoRequestInput struct {
	Name              string                 `json:"name" validate:"required,min=2"`
	Email             string                 `json:"email" validate:"required,email"`
	Company           string                 `json:"company" validate:"required"`
	Phone             string                 `json:"phone" validate:"required,min=10"`
	CompanySize       domain.CompanySize     `json:"companySize" validate:"required,company_size"`
	PrimaryInterest   domain.PrimaryInterest `json:"primaryInterest" validate:"required,primary_interest"`
	CurrentChallenges string                 `json:"currentChallenges" validate:"required,min=20"`
	PreferredTime     domain.PreferredTime   `json:"preferredTime" validate:"required,preferred_time"`
}

// ContactInput is the contact form.
type ContactInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Company         string `json:"company" validate:"required"`
	Phone           string `json:"phone"`
	ServiceInterest string `json:"serviceInterest"`
	Message         string `json:"message" validate:"required"`
}

// IntakeService accepts anonymous sales and contact submissions.
type IntakeService struct {
	demos      repository.DemoRequestRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
}

type IntakeDependencies struct {
	DemoRequestRepo repository.DemoRequestRepository
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
	Clock           Clock
}

func NewIntakeService(deps IntakeDependencies) *IntakeService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntakeService{
		demos:      deps.DemoRequestRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clockOrDefault(deps.Clock),
	}
}

// SubmitDemoRequest validates and stores a demo request with status "new".
func (s *IntakeService) SubmitDemoRequest(ctx context.Context, input DemoRequestInput) (*domain.DemoRequest, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Company = strings.TrimSpace(input.Company)
	input.Phone = strings.TrimSpace(input.Phone)
	input.CurrentChallenges = strings.TrimSpace(input.CurrentChallenges)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	req := &domain.DemoRequest{
		ID:                uuid.NewString(),
		Name:              input.Name,
		Email:             input.Email,
		Company:           input.Company,
		Phone:             input.Phone,
		CompanySize:       input.CompanySize,
		PrimaryInterest:   input.PrimaryInterest,
		CurrentChallenges: input.CurrentChallenges,
		PreferredTime:     input.PreferredTime,
		Status:            domain.DemoRequestStatusNew,
		CreatedAt:         s.now(),
	}
	if err := s.demos.Create(ctx, req); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventDemoRequestSubmitted,
		SubjectID: req.ID,
		Payload: events.DemoRequestSubmittedPayload{
			Company:         req.Company,
			Email:           req.Email,
			PrimaryInterest: req.PrimaryInterest,
			PreferredTime:   req.PreferredTime,
		},
	})
	return req, nil
}

// SubmitContact acknowledges a contact form. Nothing is stored; the receipt id is derived from
// the submission time in milliseconds.
func (s *IntakeService) SubmitContact(ctx context.Context, input ContactInput) (*domain.ContactSubmission, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Company = strings.TrimSpace(input.Company)
	input.Message = strings.TrimSpace(input.Message)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	now := s.now()
	submission := &domain.ContactSubmission{
		ID:              fmt.Sprintf("contact-%d", now.UnixMilli()),
		Name:            input.Name,
		Email:           input.Email,
		Company:         input.Company,
		Phone:           strings.TrimSpace(input.Phone),
		ServiceInterest: strings.TrimSpace(input.ServiceInterest),
		Message:         input.Message,
		SubmittedAt:     now,
	}

	s.publish(ctx, events.Event{
		Type:      events.EventContactSubmitted,
		SubjectID: submission.ID,
		Payload: events.ContactSubmittedPayload{
			Name:            submission.Name,
			Email:           submission.Email,
			Company:         submission.Company,
			ServiceInterest: submission.ServiceInterest,
			MessagePreview:  stringPreview(submission.Message, 120),
		},
	})
	return submission, nil
}

// ListDemoRequests returns every demo request, newest first.
func (s *IntakeService) ListDemoRequests(ctx context.Context) ([]domain.DemoRequest, error) {
	reqs, err := s.demos.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return reqs, nil
}

func (s *IntakeService) publish(ctx context.Context, event events.Event) {
	if err := publishEvent(ctx, s.dispatcher, s.now, event); err != nil {
		s.logger.Warn("publish event", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
