package events

import (
	"time"

	"github.com/spec-kit/support-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated        EventType = "ticket_created"
	EventTicketStatusChanged  EventType = "ticket_status_changed"
	EventTicketUpdated        EventType = "ticket_updated"
	EventDemoRequestSubmitted EventType = "demo_request_submitted"
	EventContactSubmitted     EventType = "contact_submitted"
)

// Actor identifies who triggered an event. Anonymous intake has no user.
type Actor struct {
	UserID   *string `json:"user_id,omitempty"`
	Username string  `json:"username,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title         string                `json:"title"`
	Priority      domain.TicketPriority `json:"priority"`
	Category      domain.TicketCategory `json:"category"`
	CustomerEmail string                `json:"customer_email"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	Title         string              `json:"title"`
	CustomerEmail string              `json:"customer_email"`
	OldStatus     domain.TicketStatus `json:"old_status"`
	NewStatus     domain.TicketStatus `json:"new_status"`
	AssignedTo    *string             `json:"assigned_to,omitempty"`
}

// TicketUpdatedPayload lists the fields touched by a partial update.
type TicketUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// DemoRequestSubmittedPayload payload.
type DemoRequestSubmittedPayload struct {
	Company         string                 `json:"company"`
	Email           string                 `json:"email"`
	PrimaryInterest domain.PrimaryInterest `json:"primary_interest"`
	PreferredTime   domain.PreferredTime   `json:"preferred_time"`
}

// ContactSubmittedPayload payload.
type ContactSubmittedPayload struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Company         string `json:"company"`
	ServiceInterest string `json:"service_interest,omitempty"`
	MessagePreview  string `json:"message_preview"`
}
