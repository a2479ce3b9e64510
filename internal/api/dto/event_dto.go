package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEventRequest payload.
type CreateEventRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	EventDate   time.Time       `json:"event_date"`
	Capacity    int             `json:"capacity"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  *string         `json:"category_id"`
	IsFeatured  bool            `json:"is_featured"`
}

// UpdateEventRequest is a partial update; capacity cannot be changed.
// An empty category_id clears the category.
type UpdateEventRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Location    *string          `json:"location"`
	EventDate   *time.Time       `json:"event_date"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *string          `json:"category_id"`
	IsFeatured  *bool            `json:"is_featured"`
}

// EventResponse is the public view of an event and its ledger.
type EventResponse struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Location          string    `json:"location"`
	EventDate         time.Time `json:"event_date"`
	Capacity          int       `json:"capacity"`
	Price             string    `json:"price"`
	IsActive          bool      `json:"is_active"`
	IsFeatured        bool      `json:"is_featured"`
	OrganizerID       *string   `json:"organizer_id"`
	CategoryID        *string   `json:"category_id"`
	TicketsSold       int       `json:"tickets_sold"`
	AvailableCapacity int       `json:"available_capacity"`
	TotalRevenue      string    `json:"total_revenue"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// EventStatsResponse summarizes ticket activity.
type EventStatsResponse struct {
	EventID            string  `json:"event_id"`
	Title              string  `json:"title"`
	Capacity           int     `json:"capacity"`
	TotalRegistrations int     `json:"total_registrations"`
	ActiveTickets      int     `json:"active_tickets"`
	UsedTickets        int     `json:"used_tickets"`
	CancelledTickets   int     `json:"cancelled_tickets"`
	RemainingCapacity  int     `json:"remaining_capacity"`
	PercentageUsed     float64 `json:"percentage_used"`
	TotalRevenue       string  `json:"total_revenue"`
}

// CreateTicketTypeRequest payload.
type CreateTicketTypeRequest struct {
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	QuantityAvailable int             `json:"quantity_available"`
	SortOrder         int             `json:"sort_order"`
}

// TicketTypeResponse describes a tier.
type TicketTypeResponse struct {
	ID                string `json:"id"`
	EventID           string `json:"event_id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	Price             string `json:"price"`
	QuantityAvailable int    `json:"quantity_available"`
	QuantitySold      int    `json:"quantity_sold"`
	IsActive          bool   `json:"is_active"`
	SortOrder         int    `json:"sort_order"`
}

// AvailabilityResponse answers a tier availability check.
type AvailabilityResponse struct {
	TicketTypeID      string `json:"ticket_type_id"`
	Name              string `json:"name"`
	AvailableQuantity int    `json:"available_quantity"`
	RequestedQuantity int    `json:"requested_quantity"`
	IsAvailable       bool   `json:"is_available"`
	Price             string `json:"price"`
}

// Pagination describes a page of a list response.
type Pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
