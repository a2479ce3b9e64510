package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/events"
	"github.com/spec-kit/event-ticketing/internal/repository"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util/errorutil"
)

// AdjustSalesInput overrides an event's aggregates. At least one field is
// required; a nil TotalRevenue is recomputed as price x sold.
type AdjustSalesInput struct {
	TicketsSold  *int
	TotalRevenue *decimal.Decimal
}

// SalesReportInput bounds the report by event date.
type SalesReportInput struct {
	DateFrom *time.Time
	DateTo   *time.Time
}

// EventSales is one row of the sales report.
type EventSales struct {
	Event         domain.Event
	TicketsSold   int
	Remaining     int
	Revenue       decimal.Decimal
	OccupancyRate float64
}

// SalesSummary totals the report.
type SalesSummary struct {
	TotalRevenue     decimal.Decimal
	TotalTicketsSold int
	ActiveEvents     int
	TotalEvents      int
}

// SalesReport is the admin aggregation over events.
type SalesReport struct {
	Events  []EventSales
	Summary SalesSummary
}

// AttendeesReport lists who holds seats for an event.
type AttendeesReport struct {
	Event         *domain.Event
	Registrations []domain.Registration
	TotalSeats    int
}

// CategoryCount is one bucket of the dashboard's events-by-category breakdown.
type CategoryCount struct {
	CategoryID string
	Name       string
	Events     int
}

// Dashboard is the admin overview of the whole system.
type Dashboard struct {
	TotalUsers       int
	TotalEvents      int
	TotalTickets     int
	ActiveTickets    int
	TotalRevenue     decimal.Decimal
	UpcomingEvents   int
	RecentEvents     []domain.Event
	EventsByCategory []CategoryCount
}

const dashboardRecentEvents = 5

// SalesService hosts the admin escape hatches and reports.
type SalesService struct {
	store  repository.Store
	ledger *InventoryLedger
	logger *zap.Logger
	pub    publisher
	now    func() time.Time
}

// NewSalesService constructs the service.
func NewSalesService(deps Dependencies, ledger *InventoryLedger) *SalesService {
	deps = deps.withDefaults()
	return &SalesService{
		store:  deps.Store,
		ledger: ledger,
		logger: deps.Logger,
		pub:    publisher{dispatcher: deps.Dispatcher, logger: deps.Logger, now: deps.Now},
		now:    deps.Now,
	}
}

// ResetSales zeroes tickets_sold and total_revenue.
func (s *SalesService) ResetSales(ctx context.Context, actor Actor, eventID string) (event *domain.Event, err error) {
	ctx, span, finish := startSpan(ctx, "SalesService.ResetSales")
	defer finish(&err)
	span.SetAttributes(attribute.String("event.id", eventID))

	var adj *domain.SalesAdjustment
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		current, err := repos.Events.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return notFound(err, "event", eventID)
		}
		event, err = s.ledger.Reset(ctx, repos.Events, eventID)
		if err != nil {
			return err
		}
		adj, err = s.audit(ctx, repos, actor, domain.AdjustmentReset, current, event)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.announce(ctx, actor, adj)
	return event, nil
}

// AdjustSales overwrites the aggregates after range checks.
func (s *SalesService) AdjustSales(ctx context.Context, actor Actor, eventID string, input AdjustSalesInput) (event *domain.Event, err error) {
	ctx, span, finish := startSpan(ctx, "SalesService.AdjustSales")
	defer finish(&err)
	span.SetAttributes(attribute.String("event.id", eventID))

	if input.TicketsSold == nil && input.TotalRevenue == nil {
		return nil, apperrors.NewValidationError("tickets_sold or total_revenue is required", nil)
	}

	var adj *domain.SalesAdjustment
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		current, err := repos.Events.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return notFound(err, "event", eventID)
		}
		sold := current.TicketsSold
		if input.TicketsSold != nil {
			sold = *input.TicketsSold
		}
		revenue := current.Price.Mul(decimal.NewFromInt(int64(sold)))
		if input.TotalRevenue != nil {
			revenue = *input.TotalRevenue
		}
		event, err = s.ledger.Adjust(ctx, repos.Events, current, sold, revenue)
		if err != nil {
			return err
		}
		adj, err = s.audit(ctx, repos, actor, domain.AdjustmentManual, current, event)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.announce(ctx, actor, adj)
	return event, nil
}

func (s *SalesService) audit(ctx context.Context, repos repository.Repositories, actor Actor, kind domain.AdjustmentKind, before, after *domain.Event) (*domain.SalesAdjustment, error) {
	adj := &domain.SalesAdjustment{
		EventID:    after.ID,
		ActorID:    actor.UserID,
		Kind:       kind,
		OldSold:    before.TicketsSold,
		NewSold:    after.TicketsSold,
		OldRevenue: before.TotalRevenue,
		NewRevenue: after.TotalRevenue,
	}
	if err := repos.Adjustments.Create(ctx, adj); err != nil {
		return nil, internal(err)
	}
	return adj, nil
}

func (s *SalesService) announce(ctx context.Context, actor Actor, adj *domain.SalesAdjustment) {
	s.logger.Info("sales adjusted",
		zap.String("event_id", adj.EventID),
		zap.String("actor_id", adj.ActorID),
		zap.String("kind", string(adj.Kind)),
		zap.Int("old_sold", adj.OldSold),
		zap.Int("new_sold", adj.NewSold))
	s.pub.publish(ctx, events.Event{
		Type:    events.EventSalesAdjusted,
		EventID: adj.EventID,
		Actor:   actor.event(),
		Payload: events.SalesAdjustedPayload{
			Kind:       adj.Kind,
			OldSold:    adj.OldSold,
			NewSold:    adj.NewSold,
			OldRevenue: adj.OldRevenue,
			NewRevenue: adj.NewRevenue,
		},
	})
}

// ListAdjustments returns the audit trail of an event.
func (s *SalesService) ListAdjustments(ctx context.Context, eventID string) ([]domain.SalesAdjustment, error) {
	repos := s.store.Repos()
	if _, err := repos.Events.GetByID(ctx, eventID); err != nil {
		return nil, notFound(err, "event", eventID)
	}
	adjustments, err := repos.Adjustments.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, internal(err)
	}
	return adjustments, nil
}

// SalesReport aggregates the ledger of every event in range, latest first.
func (s *SalesService) SalesReport(ctx context.Context, input SalesReportInput) (*SalesReport, error) {
	list, _, err := s.store.Repos().Events.List(ctx, repository.EventFilter{
		DateFrom: input.DateFrom,
		DateTo:   input.DateTo,
	})
	if err != nil {
		return nil, internal(err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].EventDate.After(list[j].EventDate)
	})

	report := &SalesReport{
		Events:  make([]EventSales, 0, len(list)),
		Summary: SalesSummary{TotalRevenue: decimal.Zero, TotalEvents: len(list)},
	}
	for _, event := range list {
		report.Events = append(report.Events, EventSales{
			Event:         event,
			TicketsSold:   event.TicketsSold,
			Remaining:     event.Remaining(),
			Revenue:       event.TotalRevenue,
			OccupancyRate: math.Round(event.OccupancyPercent()*100) / 100,
		})
		report.Summary.TotalRevenue = report.Summary.TotalRevenue.Add(event.TotalRevenue)
		report.Summary.TotalTicketsSold += event.TicketsSold
		if event.IsActive {
			report.Summary.ActiveEvents++
		}
	}
	return report, nil
}

// AttendeesReport lists the registrations held for an event.
func (s *SalesService) AttendeesReport(ctx context.Context, eventID string) (*AttendeesReport, error) {
	repos := s.store.Repos()
	event, err := repos.Events.GetByID(ctx, eventID)
	if err != nil {
		return nil, notFound(err, "event", eventID)
	}
	regs, err := repos.Registrations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, internal(err)
	}
	report := &AttendeesReport{Event: event, Registrations: regs}
	for _, reg := range regs {
		report.TotalSeats += reg.Quantity
	}
	return report, nil
}

// Dashboard aggregates users, events and tickets. Revenue is the sum of the
// event ledgers; recent events are the last five created.
func (s *SalesService) Dashboard(ctx context.Context) (_ *Dashboard, err error) {
	ctx, _, finish := startSpan(ctx, "SalesService.Dashboard")
	defer finish(&err)

	repos := s.store.Repos()
	users, err := repos.Users.Count(ctx)
	if err != nil {
		return nil, internal(err)
	}
	events, err := repos.Events.Summary(ctx, s.now())
	if err != nil {
		return nil, internal(err)
	}
	tickets, err := repos.Tickets.Summary(ctx)
	if err != nil {
		return nil, internal(err)
	}
	recent, _, err := repos.Events.List(ctx, repository.EventFilter{NewestFirst: true, Limit: dashboardRecentEvents})
	if err != nil {
		return nil, internal(err)
	}
	categories, _, err := repos.Categories.List(ctx, repository.CategoryFilter{})
	if err != nil {
		return nil, internal(err)
	}

	byCategory := make([]CategoryCount, 0, len(categories))
	for _, category := range categories {
		byCategory = append(byCategory, CategoryCount{
			CategoryID: category.ID,
			Name:       category.Name,
			Events:     events.ByCategory[category.ID],
		})
	}

	return &Dashboard{
		TotalUsers:       users,
		TotalEvents:      events.Total,
		TotalTickets:     tickets.Total,
		ActiveTickets:    tickets.Active,
		TotalRevenue:     events.Revenue.Round(2),
		UpcomingEvents:   events.Upcoming,
		RecentEvents:     recent,
		EventsByCategory: byCategory,
	}, nil
}
