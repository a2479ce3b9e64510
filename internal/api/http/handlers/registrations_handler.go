package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-ticketing/internal/api/dto"
	"github.com/spec-kit/event-ticketing/internal/service"
)

// RegistrationsHandler manages multi-seat registrations.
type RegistrationsHandler struct {
	service *service.PurchaseService
}

// NewRegistrationsHandler constructs handler.
func NewRegistrationsHandler(purchaseService *service.PurchaseService) *RegistrationsHandler {
	return &RegistrationsHandler{service: purchaseService}
}

// Register POST /registrations/:eventid. Quantity defaults to one.
func (h *RegistrationsHandler) Register(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	req := dto.RegisterRequest{Quantity: 1}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidPayload()
		}
	}
	reg, err := h.service.Register(c.UserContext(), actor, service.RegisterInput{
		EventID:      c.Params("eventid"),
		Quantity:     req.Quantity,
		PromoCode:    req.PromoCode,
		TicketTypeID: req.TicketTypeID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": registrationResponse(reg)})
}

// Mine GET /registrations/mine.
func (h *RegistrationsHandler) Mine(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	regs, err := h.service.ListMyRegistrations(c.UserContext(), actor, parsePage(c))
	if err != nil {
		return err
	}
	items := make([]dto.RegistrationResponse, 0, len(regs))
	for i := range regs {
		items = append(items, registrationResponse(&regs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Cancel DELETE /registrations/:id.
func (h *RegistrationsHandler) Cancel(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.CancelRegistration(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
