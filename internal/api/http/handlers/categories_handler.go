package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-ticketing/internal/api/dto"
	"github.com/spec-kit/event-ticketing/internal/service"
)

// CategoriesHandler serves event categories.
type CategoriesHandler struct {
	service *service.CategoryService
}

// NewCategoriesHandler constructs handler.
func NewCategoriesHandler(categoryService *service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{service: categoryService}
}

// List GET /categories?is_active=.
func (h *CategoriesHandler) List(c *fiber.Ctx) error {
	input := service.ListCategoriesInput{Page: parsePage(c)}
	if active, ok := parseBool(c.Query("is_active")); ok {
		input.Active = &active
	}
	categories, total, err := h.service.List(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":       categoryResponses(categories),
		"pagination": dto.Pagination{Total: total, Limit: input.Page.Limit, Offset: input.Page.Offset},
	})
}

// Active GET /categories/active.
func (h *CategoriesHandler) Active(c *fiber.Ctx) error {
	categories, err := h.service.Active(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categoryResponses(categories)})
}

// Get GET /categories/:id.
func (h *CategoriesHandler) Get(c *fiber.Ctx) error {
	detail, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CategoryDetailResponse{
		CategoryResponse: categoryResponse(detail.Category),
		Events:           eventResponses(detail.Events),
	}})
}

// Create POST /categories.
func (h *CategoriesHandler) Create(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	category, err := h.service.Create(c.UserContext(), service.CategoryInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": categoryResponse(category)})
}

// Update PUT /categories/:id.
func (h *CategoriesHandler) Update(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	category, err := h.service.Update(c.UserContext(), c.Params("id"),
		service.CategoryInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categoryResponse(category)})
}

// Delete DELETE /categories/:id.
func (h *CategoriesHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ToggleStatus PATCH /categories/:id/toggle-status.
func (h *CategoriesHandler) ToggleStatus(c *fiber.Ctx) error {
	category, err := h.service.ToggleStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categoryResponse(category)})
}
