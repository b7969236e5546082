package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/config"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/events"
)

// Email is a rendered message. Delivery is a log line until an SMTP relay is configured.
type Email struct {
	From    string
	To      string
	Subject string
	Body    string
}

// NotificationService turns domain events into customer and support-desk emails and, when a
// webhook URL is configured, forwards every event as JSON.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	httpClient *http.Client
	outbox     func(Email)
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.WebhookTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	n := &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	n.outbox = n.logEmail
	return n
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketUpdated,
		events.EventDemoRequestSubmitted,
		events.EventContactSubmitted,
	} {
		n.dispatcher.Subscribe(eventType, n.handle)
	}
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("subject_id", event.SubjectID),
		zap.Stringp("actor_id", event.Actor.UserID))

	for _, email := range n.compose(event) {
		n.outbox(email)
	}
	return n.postWebhook(ctx, event)
}

// compose renders the emails an event triggers. Ticket field edits only go to the webhook.
func (n *NotificationService) compose(event events.Event) []Email {
	var out []Email
	add := func(to, subject, body string) {
		if strings.TrimSpace(to) == "" || strings.TrimSpace(n.cfg.EmailFrom) == "" {
			return
		}
		out = append(out, Email{From: n.cfg.EmailFrom, To: to, Subject: subject, Body: body})
	}

	switch p := event.Payload.(type) {
	case events.TicketCreatedPayload:
		add(p.CustomerEmail,
			fmt.Sprintf("[%s] We received your request", event.SubjectID),
			fmt.Sprintf("Your ticket %q was opened with %s priority. We will be in touch shortly.", p.Title, p.Priority))
		if p.Priority == domain.TicketPriorityUrgent {
			add(n.cfg.SupportInbox,
				fmt.Sprintf("[%s] Urgent %s ticket", event.SubjectID, p.Category),
				fmt.Sprintf("%q was opened as urgent for %s.", p.Title, p.CustomerEmail))
		}
	case events.TicketStatusChangedPayload:
		if p.OldStatus == p.NewStatus {
			return nil
		}
		add(p.CustomerEmail,
			fmt.Sprintf("[%s] Ticket is now %s", event.SubjectID, p.NewStatus),
			fmt.Sprintf("The status of %q changed from %s to %s.", p.Title, p.OldStatus, p.NewStatus))
	case events.DemoRequestSubmittedPayload:
		add(p.Email,
			"Your demo request",
			fmt.Sprintf("Thanks for your interest in %s. We will reach out in the %s to schedule the demo.", p.PrimaryInterest, p.PreferredTime))
		add(n.cfg.SupportInbox,
			fmt.Sprintf("Demo request from %s", p.Company),
			fmt.Sprintf("%s asked for a %s demo (reference %s).", p.Email, p.PrimaryInterest, event.SubjectID))
	case events.ContactSubmittedPayload:
		// Contact messages are not stored; this email is their only record.
		add(n.cfg.SupportInbox,
			fmt.Sprintf("Contact from %s (%s)", p.Name, p.Company),
			fmt.Sprintf("%s <%s> wrote: %s", p.Name, p.Email, p.MessagePreview))
	}
	return out
}

func (n *NotificationService) logEmail(email Email) {
	n.logger.Info("email notification",
		zap.String("from", email.From),
		zap.String("to", email.To),
		zap.String("subject", email.Subject))
}

func (n *NotificationService) postWebhook(ctx context.Context, event events.Event) error {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode webhook: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", string(event.Type))

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	n.logger.Debug("webhook delivered", zap.String("event_id", event.ID), zap.Int("status", resp.StatusCode))
	return nil
}
