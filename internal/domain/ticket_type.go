package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketType is a priced tier (VIP, early bird, ...) with its own allotment.
type TicketType struct {
	ID                string
	EventID           string
	Name              string
	Description       string
	Price             decimal.Decimal
	QuantityAvailable int
	QuantitySold      int
	IsActive          bool
	SortOrder         int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Remaining returns unsold units of the tier.
func (t *TicketType) Remaining() int {
	return t.QuantityAvailable - t.QuantitySold
}
