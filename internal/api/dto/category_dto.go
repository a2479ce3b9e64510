package dto

import "time"

// CategoryRequest creates or partially updates a category.
type CategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CategoryResponse is the public view of a category.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryDetailResponse is a category with its active events.
type CategoryDetailResponse struct {
	CategoryResponse
	Events []EventResponse `json:"events"`
}
