package dto

import (
	"time"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

// PurchaseTicketRequest payload for POST /tickets/purchase/:eventid.
type PurchaseTicketRequest struct {
	PromoCode string `json:"promo_code"`
}

// TicketResponse is the owner's view of a ticket.
type TicketResponse struct {
	ID             string              `json:"id"`
	UniqueCode     string              `json:"unique_code"`
	UserID         string              `json:"user_id"`
	EventID        string              `json:"event_id"`
	Status         domain.TicketStatus `json:"status"`
	Price          string              `json:"price"`
	DiscountAmount string              `json:"discount_amount"`
	PromoCodeID    *string             `json:"promo_code_id"`
	PurchaseDate   time.Time           `json:"purchase_date"`
}

// TicketVerificationResponse is the public answer to a code lookup.
type TicketVerificationResponse struct {
	UniqueCode string              `json:"unique_code"`
	Status     domain.TicketStatus `json:"status"`
	IsValid    bool                `json:"is_valid"`
	Event      VerifiedEvent       `json:"event"`
}

// VerifiedEvent is the event summary shown at the door.
type VerifiedEvent struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	EventDate time.Time `json:"event_date"`
}

// RegisterRequest payload for POST /registrations/:eventid.
type RegisterRequest struct {
	Quantity     int    `json:"quantity"`
	PromoCode    string `json:"promo_code"`
	TicketTypeID string `json:"ticket_type_id"`
}

// RegistrationResponse describes a multi-seat booking.
type RegistrationResponse struct {
	ID             string               `json:"id"`
	UserID         string               `json:"user_id"`
	EventID        string               `json:"event_id"`
	TicketTypeID   *string              `json:"ticket_type_id"`
	PromoCodeID    *string              `json:"promo_code_id"`
	Quantity       int                  `json:"quantity"`
	UnitPrice      string               `json:"unit_price"`
	TotalPrice     string               `json:"total_price"`
	DiscountAmount string               `json:"discount_amount"`
	FinalPrice     string               `json:"final_price"`
	PaymentStatus  domain.PaymentStatus `json:"payment_status"`
	RegisteredAt   time.Time            `json:"registered_at"`
}
