package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

// AdjustSalesRequest payload. Omitting total_revenue recomputes it as price x sold.
type AdjustSalesRequest struct {
	TicketsSold  *int             `json:"tickets_sold"`
	TotalRevenue *decimal.Decimal `json:"total_revenue"`
}

// EventSalesResponse is one report row.
type EventSalesResponse struct {
	EventID       string    `json:"event_id"`
	Title         string    `json:"title"`
	EventDate     time.Time `json:"event_date"`
	Location      string    `json:"location"`
	Price         string    `json:"price"`
	Capacity      int       `json:"capacity"`
	IsActive      bool      `json:"is_active"`
	TicketsSold   int       `json:"tickets_sold"`
	Remaining     int       `json:"remaining"`
	TotalRevenue  string    `json:"total_revenue"`
	OccupancyRate float64   `json:"occupancy_rate"`
}

// SalesSummaryResponse totals the report.
type SalesSummaryResponse struct {
	TotalRevenue     string `json:"total_revenue"`
	TotalTicketsSold int    `json:"total_tickets_sold"`
	ActiveEvents     int    `json:"active_events"`
	TotalEvents      int    `json:"total_events"`
}

// SalesReportResponse is the admin sales aggregation.
type SalesReportResponse struct {
	Events  []EventSalesResponse `json:"events"`
	Summary SalesSummaryResponse `json:"summary"`
}

// SalesAdjustmentResponse is one audit row.
type SalesAdjustmentResponse struct {
	ID         string                `json:"id"`
	EventID    string                `json:"event_id"`
	ActorID    string                `json:"actor_id"`
	Kind       domain.AdjustmentKind `json:"kind"`
	OldSold    int                   `json:"old_sold"`
	NewSold    int                   `json:"new_sold"`
	OldRevenue string                `json:"old_revenue"`
	NewRevenue string                `json:"new_revenue"`
	CreatedAt  time.Time             `json:"created_at"`
}

// AttendeesResponse lists registrations for an event.
type AttendeesResponse struct {
	EventID       string                 `json:"event_id"`
	Title         string                 `json:"title"`
	TotalSeats    int                    `json:"total_seats"`
	Registrations []RegistrationResponse `json:"registrations"`
}

// CategoryCountResponse is one bucket of the dashboard breakdown.
type CategoryCountResponse struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Events     int    `json:"events"`
}

// DashboardResponse is the admin overview.
type DashboardResponse struct {
	TotalUsers       int                     `json:"totalUsers"`
	TotalEvents      int                     `json:"totalEvents"`
	TotalTickets     int                     `json:"totalTickets"`
	ActiveTickets    int                     `json:"activeTickets"`
	TotalRevenue     string                  `json:"totalRevenue"`
	UpcomingEvents   int                     `json:"upcomingEvents"`
	RecentEvents     []EventResponse         `json:"recentEvents"`
	EventsByCategory []CategoryCountResponse `json:"eventsByCategory"`
}
