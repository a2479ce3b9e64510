package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinEventCapacity = 1
	MaxEventCapacity = 10000
)

// Event is a capacity-bounded item users buy tickets for.
// TicketsSold and TotalRevenue are the ledger; only the purchase and
// cancellation workflows and the admin sales overrides write them.
type Event struct {
	ID           string
	Title        string
	Description  string
	Location     string
	EventDate    time.Time
	Capacity     int
	Price        decimal.Decimal
	IsActive     bool
	IsFeatured   bool
	OrganizerID  *string
	CategoryID   *string
	TicketsSold  int
	TotalRevenue decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Remaining returns the number of seats still available.
func (e *Event) Remaining() int {
	return e.Capacity - e.TicketsSold
}

// HasStarted reports whether the event start is at or before now.
func (e *Event) HasStarted(now time.Time) bool {
	return !e.EventDate.After(now)
}

// OccupancyPercent returns sold/capacity as a percentage.
func (e *Event) OccupancyPercent() float64 {
	if e.Capacity <= 0 {
		return 0
	}
	return float64(e.TicketsSold) / float64(e.Capacity) * 100
}
