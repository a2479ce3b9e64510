package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketPurchased       EventType = "ticket_purchased"
	EventTicketCancelled       EventType = "ticket_cancelled"
	EventTicketUsed            EventType = "ticket_used"
	EventRegistrationCreated   EventType = "registration_created"
	EventRegistrationCancelled EventType = "registration_cancelled"
	EventSalesAdjusted         EventType = "sales_adjusted"
)

// AllTypes lists every event the services emit.
var AllTypes = []EventType{
	EventTicketPurchased,
	EventTicketCancelled,
	EventTicketUsed,
	EventRegistrationCreated,
	EventRegistrationCancelled,
	EventSalesAdjusted,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string          `json:"user_id"`
	Role   domain.UserRole `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EventID   string      `json:"event_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SeatsPayload describes a ledger movement caused by a purchase or cancellation.
type SeatsPayload struct {
	RecordID    string          `json:"record_id"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
	PromoCodeID *string         `json:"promo_code_id,omitempty"`
	TicketsSold int             `json:"tickets_sold"`
	Remaining   int             `json:"remaining"`
}

// SalesAdjustedPayload describes an admin override.
type SalesAdjustedPayload struct {
	Kind       domain.AdjustmentKind `json:"kind"`
	OldSold    int                   `json:"old_sold"`
	NewSold    int                   `json:"new_sold"`
	OldRevenue decimal.Decimal       `json:"old_revenue"`
	NewRevenue decimal.Decimal       `json:"new_revenue"`
}
