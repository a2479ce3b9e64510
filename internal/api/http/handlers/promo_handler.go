package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-ticketing/internal/api/dto"
	"github.com/spec-kit/event-ticketing/internal/repository"
	"github.com/spec-kit/event-ticketing/internal/service"
)

// PromoHandler exposes promo code validation and admin management.
type PromoHandler struct {
	service *service.PromoService
}

// NewPromoHandler constructs handler.
func NewPromoHandler(promoService *service.PromoService) *PromoHandler {
	return &PromoHandler{service: promoService}
}

// Validate GET /promo-codes/validate/:code?eventid=. An invalid code still
// answers 200 with the list of violations.
func (h *PromoHandler) Validate(c *fiber.Ctx) error {
	result, err := h.service.Validate(c.UserContext(), c.Params("code"), strings.TrimSpace(c.Query("eventid")))
	if err != nil {
		return err
	}
	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	return c.JSON(fiber.Map{"data": dto.PromoValidationResponse{
		Code:          result.Promo.Code,
		IsValid:       result.IsValid,
		DiscountType:  result.Promo.DiscountType,
		DiscountValue: result.Promo.DiscountValue.StringFixed(2),
		Errors:        errs,
		RemainingUses: result.RemainingUses,
	}})
}

// Create POST /promo-codes.
func (h *PromoHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreatePromoRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	promo, err := h.service.Create(c.UserContext(), actor, service.CreatePromoInput{
		Code:          req.Code,
		Description:   req.Description,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		EventID:       req.EventID,
		MaxUses:       req.MaxUses,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": promoResponse(promo)})
}

// List GET /promo-codes?eventid=&is_active=.
func (h *PromoHandler) List(c *fiber.Ctx) error {
	var filter repository.PromoFilter
	if eventID := strings.TrimSpace(c.Query("eventid")); eventID != "" {
		filter.EventID = &eventID
	}
	if active, ok := parseBool(c.Query("is_active")); ok {
		filter.ActiveOnly = active
	}
	promos, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.PromoResponse, 0, len(promos))
	for i := range promos {
		items = append(items, promoResponse(&promos[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /promo-codes/:id.
func (h *PromoHandler) Get(c *fiber.Ctx) error {
	promo, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": promoResponse(promo)})
}

// Deactivate PATCH /promo-codes/:id/deactivate.
func (h *PromoHandler) Deactivate(c *fiber.Ctx) error {
	promo, err := h.service.Deactivate(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": promoResponse(promo)})
}
