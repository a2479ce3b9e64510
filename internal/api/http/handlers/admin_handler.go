package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-ticketing/internal/api/dto"
	"github.com/spec-kit/event-ticketing/internal/service"
)

// AdminHandler serves sales reports and the ledger escape hatches.
type AdminHandler struct {
	sales *service.SalesService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(salesService *service.SalesService) *AdminHandler {
	return &AdminHandler{sales: salesService}
}

// Dashboard GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	dash, err := h.sales.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dashboardResponse(dash)})
}

// SalesReport GET /admin/reports/sales?startDate=&endDate=.
func (h *AdminHandler) SalesReport(c *fiber.Ctx) error {
	from, err := parseTime(firstQuery(c, "startDate", "date_from"))
	if err != nil {
		return err
	}
	to, err := parseTime(firstQuery(c, "endDate", "date_to"))
	if err != nil {
		return err
	}
	report, err := h.sales.SalesReport(c.UserContext(), service.SalesReportInput{DateFrom: from, DateTo: to})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": salesReportResponse(report)})
}

// AttendeesReport GET /admin/reports/attendees/:eventid.
func (h *AdminHandler) AttendeesReport(c *fiber.Ctx) error {
	report, err := h.sales.AttendeesReport(c.UserContext(), c.Params("eventid"))
	if err != nil {
		return err
	}
	regs := make([]dto.RegistrationResponse, 0, len(report.Registrations))
	for i := range report.Registrations {
		regs = append(regs, registrationResponse(&report.Registrations[i]))
	}
	return c.JSON(fiber.Map{"data": dto.AttendeesResponse{
		EventID:       report.Event.ID,
		Title:         report.Event.Title,
		TotalSeats:    report.TotalSeats,
		Registrations: regs,
	}})
}

// AdjustSales PATCH /admin/events/:eventid/sales.
func (h *AdminHandler) AdjustSales(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.AdjustSalesRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	event, err := h.sales.AdjustSales(c.UserContext(), actor, c.Params("eventid"), service.AdjustSalesInput{
		TicketsSold:  req.TicketsSold,
		TotalRevenue: req.TotalRevenue,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponse(event)})
}

// ResetSales PATCH /admin/events/:eventid/reset-sales.
func (h *AdminHandler) ResetSales(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	event, err := h.sales.ResetSales(c.UserContext(), actor, c.Params("eventid"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponse(event)})
}

// ListAdjustments GET /admin/events/:eventid/adjustments.
func (h *AdminHandler) ListAdjustments(c *fiber.Ctx) error {
	adjustments, err := h.sales.ListAdjustments(c.UserContext(), c.Params("eventid"))
	if err != nil {
		return err
	}
	items := make([]dto.SalesAdjustmentResponse, 0, len(adjustments))
	for i := range adjustments {
		items = append(items, adjustmentResponse(&adjustments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func firstQuery(c *fiber.Ctx, keys ...string) string {
	for _, key := range keys {
		if val := c.Query(key); val != "" {
			return val
		}
	}
	return ""
}
