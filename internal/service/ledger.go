package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/observability"
	"github.com/spec-kit/event-ticketing/internal/repository"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util/errorutil"
)

// Ledger kinds label which workflow moved seats.
const (
	KindTicket       = "ticket"
	KindRegistration = "registration"
	KindAdmin        = "admin"
)

// InventoryLedger is the only writer of an event's tickets_sold and
// total_revenue. Every method runs against the repositories it is handed so
// callers decide the transaction boundary.
type InventoryLedger struct {
	metrics *observability.Metrics
}

// NewInventoryLedger builds a ledger.
func NewInventoryLedger(metrics *observability.Metrics) *InventoryLedger {
	return &InventoryLedger{metrics: metrics}
}

// Reserve takes quantity seats and books amount of revenue atomically.
func (l *InventoryLedger) Reserve(ctx context.Context, events repository.EventRepository, eventID string, quantity int, amount decimal.Decimal, kind string) (*domain.Event, error) {
	if quantity < 1 {
		return nil, apperrors.NewInsufficientCapacity(quantity, 0)
	}
	event, err := events.ReserveSeats(ctx, eventID, quantity, amount)
	switch {
	case errors.Is(err, repository.ErrSoldOut):
		available := 0
		if current, lookupErr := events.GetByID(ctx, eventID); lookupErr == nil {
			available = current.Remaining()
		}
		return nil, apperrors.NewInsufficientCapacity(quantity, available)
	case err != nil:
		return nil, notFound(err, "event", eventID)
	}
	l.metrics.RecordSeats(kind, "reserve", quantity)
	return event, nil
}

// Release returns quantity seats and amount of revenue. Both aggregates are
// clamped at zero rather than rejected.
func (l *InventoryLedger) Release(ctx context.Context, events repository.EventRepository, eventID string, quantity int, amount decimal.Decimal, kind string) (*domain.Event, error) {
	event, err := events.ReleaseSeats(ctx, eventID, quantity, amount)
	if err != nil {
		return nil, notFound(err, "event", eventID)
	}
	l.metrics.RecordSeats(kind, "release", quantity)
	return event, nil
}

// Reset zeroes both aggregates.
func (l *InventoryLedger) Reset(ctx context.Context, events repository.EventRepository, eventID string) (*domain.Event, error) {
	event, err := events.SetSales(ctx, eventID, 0, decimal.Zero)
	if err != nil {
		return nil, notFound(err, "event", eventID)
	}
	return event, nil
}

// Adjust overwrites the aggregates after checking 0 <= sold <= capacity and
// revenue >= 0.
func (l *InventoryLedger) Adjust(ctx context.Context, events repository.EventRepository, event *domain.Event, sold int, revenue decimal.Decimal) (*domain.Event, error) {
	if sold < 0 {
		return nil, apperrors.NewOutOfRange("tickets sold cannot be negative", map[string]any{"tickets_sold": sold})
	}
	if sold > event.Capacity {
		return nil, apperrors.NewOutOfRange("tickets sold cannot exceed capacity",
			map[string]any{"tickets_sold": sold, "capacity": event.Capacity})
	}
	if revenue.IsNegative() {
		return nil, apperrors.NewOutOfRange("total revenue cannot be negative",
			map[string]any{"total_revenue": revenue.StringFixed(2)})
	}
	updated, err := events.SetSales(ctx, event.ID, sold, revenue.Round(2))
	if err != nil {
		return nil, notFound(err, "event", event.ID)
	}
	return updated, nil
}
