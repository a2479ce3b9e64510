package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-ticketing/internal/api/dto"
	"github.com/spec-kit/event-ticketing/internal/auth"
	"github.com/spec-kit/event-ticketing/internal/service"
)

// EventsHandler serves the event catalogue and ticket tiers.
type EventsHandler struct {
	service *service.EventService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(eventService *service.EventService) *EventsHandler {
	return &EventsHandler{service: eventService}
}

// List GET /events.
func (h *EventsHandler) List(c *fiber.Ctx) error {
	input := service.ListEventsInput{Page: parsePage(c)}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		input.Search = &search
	}
	if location := strings.TrimSpace(c.Query("location")); location != "" {
		input.Location = &location
	}
	if categoryID := strings.TrimSpace(c.Query("category_id")); categoryID != "" {
		input.CategoryID = &categoryID
	}
	if featured, ok := parseBool(c.Query("is_featured")); ok {
		input.FeaturedOnly = featured
	}
	var err error
	if input.MinPrice, err = parseDecimal("min_price", c.Query("min_price")); err != nil {
		return err
	}
	if input.MaxPrice, err = parseDecimal("max_price", c.Query("max_price")); err != nil {
		return err
	}
	if input.DateFrom, err = parseTime(c.Query("date_from")); err != nil {
		return err
	}
	if input.DateTo, err = parseTime(c.Query("date_to")); err != nil {
		return err
	}
	if upcoming, ok := parseBool(c.Query("upcoming")); ok {
		input.UpcomingOnly = upcoming
	}
	// only admins may browse deactivated events
	if include, ok := parseBool(c.Query("include_inactive")); ok && include {
		if principal, found := auth.PrincipalFromContext(c); found && principal.IsAdmin() {
			input.IncludeInactive = true
		}
	}

	events, total, err := h.service.List(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":       eventResponses(events),
		"pagination": dto.Pagination{Total: total, Limit: input.Page.Limit, Offset: input.Page.Offset},
	})
}

// Featured GET /events/featured?limit=.
func (h *EventsHandler) Featured(c *fiber.Ctx) error {
	events, err := h.service.Featured(c.UserContext(), parseInt(c.Query("limit"), 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponses(events)})
}

// Get GET /events/:id.
func (h *EventsHandler) Get(c *fiber.Ctx) error {
	event, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponse(event)})
}

// Create POST /events.
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	event, err := h.service.Create(c.UserContext(), actor, service.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		EventDate:   req.EventDate,
		Capacity:    req.Capacity,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		IsFeatured:  req.IsFeatured,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": eventResponse(event)})
}

// Update PUT /events/:id.
func (h *EventsHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	event, err := h.service.Update(c.UserContext(), actor, c.Params("id"), service.UpdateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		EventDate:   req.EventDate,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		IsFeatured:  req.IsFeatured,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponse(event)})
}

// ToggleStatus PATCH /events/:id/toggle-status.
func (h *EventsHandler) ToggleStatus(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	event, err := h.service.ToggleStatus(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponse(event)})
}

// Delete DELETE /events/:id.
func (h *EventsHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Stats GET /events/:id/stats.
func (h *EventsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.EventStatsResponse{
		EventID:            stats.Event.ID,
		Title:              stats.Event.Title,
		Capacity:           stats.Event.Capacity,
		TotalRegistrations: stats.TotalRegistrations,
		ActiveTickets:      stats.ActiveTickets,
		UsedTickets:        stats.UsedTickets,
		CancelledTickets:   stats.CancelledTickets,
		RemainingCapacity:  stats.RemainingCapacity,
		PercentageUsed:     stats.PercentageUsed,
		TotalRevenue:       stats.Event.TotalRevenue.StringFixed(2),
	}})
}

// ListTicketTypes GET /events/:id/ticket-types.
func (h *EventsHandler) ListTicketTypes(c *fiber.Ctx) error {
	types, err := h.service.ListTicketTypes(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.TicketTypeResponse, 0, len(types))
	for i := range types {
		items = append(items, ticketTypeResponse(&types[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateTicketType POST /events/:id/ticket-types.
func (h *EventsHandler) CreateTicketType(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	tt, err := h.service.CreateTicketType(c.UserContext(), actor, c.Params("id"), service.CreateTicketTypeInput{
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		QuantityAvailable: req.QuantityAvailable,
		SortOrder:         req.SortOrder,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketTypeResponse(tt)})
}

// CheckAvailability GET /ticket-types/:id/availability?quantity=n.
func (h *EventsHandler) CheckAvailability(c *fiber.Ctx) error {
	result, err := h.service.CheckAvailability(c.UserContext(), c.Params("id"), parseInt(c.Query("quantity"), 1))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AvailabilityResponse{
		TicketTypeID:      result.TicketType.ID,
		Name:              result.TicketType.Name,
		AvailableQuantity: result.Available,
		RequestedQuantity: result.Requested,
		IsAvailable:       result.IsAvailable,
		Price:             result.TicketType.Price.StringFixed(2),
	}})
}
