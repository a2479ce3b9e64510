package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// Valid reports whether s is a known ticket status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusActive, TicketStatusUsed, TicketStatusCancelled:
		return true
	}
	return false
}

// Ticket is a single-seat purchase. Rows are never deleted.
type Ticket struct {
	ID             string
	UniqueCode     string
	UserID         string
	EventID        string
	Status         TicketStatus
	Price          decimal.Decimal
	DiscountAmount decimal.Decimal
	PromoCodeID    *string
	PurchaseDate   time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusActive:    {TicketStatusUsed, TicketStatusCancelled},
	TicketStatusUsed:      {},
	TicketStatusCancelled: {},
}

// CanTransition reports whether status may move from current to next.
func (s TicketStatus) CanTransition(next TicketStatus) bool {
	for _, candidate := range ticketTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}
