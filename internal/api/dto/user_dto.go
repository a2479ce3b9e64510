package dto

import (
	"time"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  domain.UserRole `json:"role"`
}

// AdminUserResponse adds the account state shown to administrators.
type AdminUserResponse struct {
	UserResponse
	Status    domain.UserStatus `json:"status"`
	IsActive  bool              `json:"is_active"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// CreateUserRequest is an admin-provisioned account. Role defaults to user.
type CreateUserRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     domain.UserRole `json:"role"`
}

// UpdateRoleRequest payload.
type UpdateRoleRequest struct {
	Role domain.UserRole `json:"role"`
}

// HistoryEntryResponse is a ticket with its event, for the user's history.
type HistoryEntryResponse struct {
	Ticket TicketResponse `json:"ticket"`
	Event  *EventResponse `json:"event"`
}
