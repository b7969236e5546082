package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-portal/internal/api/dto"
	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/service"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints. Every route requires a session.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /api/tickets?status=&priority=&search=&limit=&offset=.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}
	tickets, err := h.service.List(c.UserContext(), service.TicketListInput{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketListResponse(tickets))
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respondTicket(c, fiber.StatusOK, ticket)
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var input service.TicketCreateInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	ticket, err := h.service.Create(c.UserContext(), actor(c), input)
	if err != nil {
		return err
	}
	return respondTicket(c, fiber.StatusCreated, ticket)
}

// UpdateStatus PUT /api/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var input service.TicketStatusInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	ticket, err := h.service.UpdateStatus(c.UserContext(), actor(c), c.Params("id"), input)
	if err != nil {
		return err
	}
	return respondTicket(c, fiber.StatusOK, ticket)
}

// UpdateTicket PUT /api/tickets/:id. Unknown keys, including id and timestamps, are ignored.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var patch service.TicketPatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}
	ticket, err := h.service.Update(c.UserContext(), actor(c), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return respondTicket(c, fiber.StatusOK, ticket)
}

func respondTicket(c *fiber.Ctx, status int, ticket *domain.Ticket) error {
	if ticket == nil {
		return apperrors.NewNotFound("Ticket")
	}
	return c.Status(status).JSON(dto.NewTicketResponse(ticket))
}

func actor(c *fiber.Ctx) *domain.Session {
	sess, _ := auth.SessionFromContext(c)
	return sess
}
