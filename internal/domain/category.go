package domain

import "time"

// Category groups events in the catalogue. Names are unique.
type Category struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
