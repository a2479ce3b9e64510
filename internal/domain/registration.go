package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus enumerates registration payment states.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Registration is a multi-seat purchase. A user holds at most one per event,
// and the row is deleted when cancelled.
type Registration struct {
	ID             string
	UserID         string
	EventID        string
	TicketTypeID   *string
	PromoCodeID    *string
	Quantity       int
	UnitPrice      decimal.Decimal
	TotalPrice     decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalPrice     decimal.Decimal
	PaymentStatus  PaymentStatus
	RegisteredAt   time.Time
}
