package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-portal/internal/api/dto"
	"github.com/spec-kit/support-portal/internal/service"
)

// IntakeHandler accepts anonymous contact and demo-request forms.
type IntakeHandler struct {
	intake *service.IntakeService
}

func NewIntakeHandler(intake *service.IntakeService) *IntakeHandler {
	return &IntakeHandler{intake: intake}
}

// Contact POST /api/contact.
func (h *IntakeHandler) Contact(c *fiber.Ctx) error {
	var input service.ContactInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	receipt, err := h.intake.SubmitContact(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(dto.SubmissionResponse{Message: "Contact form submitted successfully", ID: receipt.ID})
}

// DemoRequest POST /api/demo-request.
func (h *IntakeHandler) DemoRequest(c *fiber.Ctx) error {
	var input service.DemoRequestInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	req, err := h.intake.SubmitDemoRequest(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SubmissionResponse{Message: "Demo request submitted successfully", ID: req.ID})
}
