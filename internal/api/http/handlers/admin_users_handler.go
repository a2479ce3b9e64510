package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-ticketing/internal/api/dto"
	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/service"
)

// AdminUsersHandler serves account management for administrators.
type AdminUsersHandler struct {
	users *service.UserService
}

// NewAdminUsersHandler constructs handler.
func NewAdminUsersHandler(userService *service.UserService) *AdminUsersHandler {
	return &AdminUsersHandler{users: userService}
}

// List GET /admin/users?role=&is_active=&search=.
func (h *AdminUsersHandler) List(c *fiber.Ctx) error {
	input := service.ListUsersInput{Page: parsePage(c)}
	if role := strings.TrimSpace(c.Query("role")); role != "" {
		r := domain.UserRole(strings.ToLower(role))
		input.Role = &r
	}
	if active, ok := parseBool(c.Query("is_active")); ok {
		status := domain.UserStatusSuspended
		if active {
			status = domain.UserStatusActive
		}
		input.Status = &status
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		input.Search = &search
	}

	users, total, err := h.users.List(c.UserContext(), input)
	if err != nil {
		return err
	}
	items := make([]dto.AdminUserResponse, 0, len(users))
	for i := range users {
		items = append(items, adminUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{
		"data":       items,
		"pagination": dto.Pagination{Total: total, Limit: input.Page.Limit, Offset: input.Page.Offset},
	})
}

// Create POST /admin/users.
func (h *AdminUsersHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	user, err := h.users.Create(c.UserContext(), actor, service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": adminUserResponse(user)})
}

// UpdateRole PATCH /admin/users/:userid/role.
func (h *AdminUsersHandler) UpdateRole(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	user, err := h.users.UpdateRole(c.UserContext(), actor, c.Params("userid"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": adminUserResponse(user)})
}

// ToggleStatus PATCH /admin/users/:userid/toggle-status.
func (h *AdminUsersHandler) ToggleStatus(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	user, err := h.users.ToggleStatus(c.UserContext(), actor, c.Params("userid"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": adminUserResponse(user)})
}

// Delete DELETE /admin/users/:userid.
func (h *AdminUsersHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.UserContext(), actor, c.Params("userid")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
