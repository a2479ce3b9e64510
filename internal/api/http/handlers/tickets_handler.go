package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-ticketing/internal/api/dto"
	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/service"
)

// TicketsHandler manages ticket purchase and check-in endpoints.
type TicketsHandler struct {
	service *service.PurchaseService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(purchaseService *service.PurchaseService) *TicketsHandler {
	return &TicketsHandler{service: purchaseService}
}

// Purchase POST /tickets/purchase/:eventid.
func (h *TicketsHandler) Purchase(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.PurchaseTicketRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidPayload()
		}
	}
	ticket, err := h.service.PurchaseTicket(c.UserContext(), actor, service.PurchaseTicketInput{
		EventID:   c.Params("eventid"),
		PromoCode: req.PromoCode,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// MyTickets GET /tickets/my-tickets.
func (h *TicketsHandler) MyTickets(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListMyTickets(c.UserContext(), actor, parsePage(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// History GET /users/me/history?status=.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var status *domain.TicketStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		value := domain.TicketStatus(strings.ToLower(raw))
		status = &value
	}
	page := parsePage(c)
	entries, total, err := h.service.History(c.UserContext(), actor, status, page)
	if err != nil {
		return err
	}
	items := make([]dto.HistoryEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, historyResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{
		"data":       items,
		"pagination": dto.Pagination{Total: total, Limit: page.Limit, Offset: page.Offset},
	})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Cancel PATCH /tickets/:id/cancel.
func (h *TicketsHandler) Cancel(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.CancelTicket(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// MarkUsed PATCH /tickets/:id/mark-used.
func (h *TicketsHandler) MarkUsed(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.MarkTicketUsed(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Verify GET /tickets/verify/:code.
func (h *TicketsHandler) Verify(c *fiber.Ctx) error {
	result, err := h.service.VerifyTicket(c.UserContext(), c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketVerificationResponse{
		UniqueCode: result.Ticket.UniqueCode,
		Status:     result.Ticket.Status,
		IsValid:    result.IsValid,
		Event: dto.VerifiedEvent{
			ID:        result.Event.ID,
			Title:     result.Event.Title,
			Location:  result.Event.Location,
			EventDate: result.Event.EventDate,
		},
	}})
}
