package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/repository"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util/errorutil"
)

// CreateEventInput carries the fields of a new event.
type CreateEventInput struct {
	Title       string
	Description string
	Location    string
	EventDate   time.Time
	Capacity    int
	Price       decimal.Decimal
	CategoryID  *string
	IsFeatured  bool
}

// UpdateEventInput is a partial update. Capacity is fixed at creation.
// An empty CategoryID clears the category.
type UpdateEventInput struct {
	Title       *string
	Description *string
	Location    *string
	EventDate   *time.Time
	Price       *decimal.Decimal
	CategoryID  *string
	IsFeatured  *bool
}

// ListEventsInput filters the public catalogue.
type ListEventsInput struct {
	Search          *string
	Location        *string
	CategoryID      *string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	DateFrom        *time.Time
	DateTo          *time.Time
	UpcomingOnly    bool
	FeaturedOnly    bool
	IncludeInactive bool
	Page            Page
}

const defaultFeaturedLimit = 6

// EventStats summarizes ticket activity for one event.
type EventStats struct {
	Event              *domain.Event
	ActiveTickets      int
	UsedTickets        int
	CancelledTickets   int
	TotalRegistrations int
	RemainingCapacity  int
	PercentageUsed     float64
}

// Availability answers whether a tier can cover a requested quantity.
type Availability struct {
	TicketType  *domain.TicketType
	Requested   int
	Available   int
	IsAvailable bool
}

// CreateTicketTypeInput carries the fields of a new tier.
type CreateTicketTypeInput struct {
	Name              string
	Description       string
	Price             decimal.Decimal
	QuantityAvailable int
	SortOrder         int
}

// EventService manages the event catalogue and ticket tiers.
type EventService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewEventService constructs the service.
func NewEventService(deps Dependencies) *EventService {
	deps = deps.withDefaults()
	return &EventService{store: deps.Store, logger: deps.Logger, now: deps.Now}
}

// Create publishes a new event owned by the actor.
func (s *EventService) Create(ctx context.Context, actor Actor, input CreateEventInput) (*domain.Event, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Location = strings.TrimSpace(input.Location)

	details := map[string]any{}
	if input.Title == "" {
		details["title"] = "required"
	}
	if input.Location == "" {
		details["location"] = "required"
	}
	if input.EventDate.IsZero() || !input.EventDate.After(s.now()) {
		details["event_date"] = "must be in the future"
	}
	if input.Capacity < domain.MinEventCapacity || input.Capacity > domain.MaxEventCapacity {
		details["capacity"] = "must be an integer between 1 and 10000"
	}
	if input.Price.IsNegative() {
		details["price"] = "cannot be negative"
	}
	repos := s.store.Repos()
	categoryID, err := s.category(ctx, repos, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if input.CategoryID != nil && strings.TrimSpace(*input.CategoryID) != "" && categoryID == nil {
		details["category_id"] = "unknown category"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid event", details)
	}

	organizer := actor.UserID
	event := &domain.Event{
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		Location:    input.Location,
		EventDate:   input.EventDate.UTC(),
		Capacity:    input.Capacity,
		Price:       input.Price.Round(2),
		IsActive:    true,
		IsFeatured:  input.IsFeatured,
		OrganizerID: &organizer,
		CategoryID:  categoryID,
	}
	if err := repos.Events.Create(ctx, event); err != nil {
		return nil, internal(err)
	}
	s.logger.Info("event created", zap.String("event_id", event.ID), zap.Int("capacity", event.Capacity))
	return event, nil
}

// Update applies the non-nil fields of input.
func (s *EventService) Update(ctx context.Context, actor Actor, id string, input UpdateEventInput) (*domain.Event, error) {
	repos := s.store.Repos()
	event, err := s.manageable(ctx, repos, actor, id)
	if err != nil {
		return nil, err
	}

	details := map[string]any{}
	if input.Title != nil {
		if title := strings.TrimSpace(*input.Title); title == "" {
			details["title"] = "cannot be empty"
		} else {
			event.Title = title
		}
	}
	if input.Description != nil {
		event.Description = strings.TrimSpace(*input.Description)
	}
	if input.Location != nil {
		if location := strings.TrimSpace(*input.Location); location == "" {
			details["location"] = "cannot be empty"
		} else {
			event.Location = location
		}
	}
	if input.EventDate != nil {
		if input.EventDate.IsZero() || !input.EventDate.After(s.now()) {
			details["event_date"] = "must be in the future"
		} else {
			event.EventDate = input.EventDate.UTC()
		}
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			details["price"] = "cannot be negative"
		} else {
			event.Price = input.Price.Round(2)
		}
	}
	if input.IsFeatured != nil {
		event.IsFeatured = *input.IsFeatured
	}
	if input.CategoryID != nil {
		categoryID, err := s.category(ctx, repos, input.CategoryID)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(*input.CategoryID) != "" && categoryID == nil {
			details["category_id"] = "unknown category"
		}
		event.CategoryID = categoryID
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid event", details)
	}

	if err := repos.Events.Update(ctx, event); err != nil {
		return nil, notFound(err, "event", id)
	}
	return event, nil
}

// Get returns a single event.
func (s *EventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.store.Repos().Events.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "event", id)
	}
	return event, nil
}

// List returns one page of the catalogue ordered by event date, plus the total match count.
func (s *EventService) List(ctx context.Context, input ListEventsInput) ([]domain.Event, int, error) {
	if input.MinPrice != nil && input.MaxPrice != nil && input.MinPrice.GreaterThan(*input.MaxPrice) {
		return nil, 0, apperrors.NewValidationError("invalid price range",
			map[string]any{"min_price": "must not exceed max_price"})
	}
	filter := repository.EventFilter{
		ActiveOnly:   !input.IncludeInactive,
		FeaturedOnly: input.FeaturedOnly,
		DateFrom:     input.DateFrom,
		DateTo:       input.DateTo,
		CategoryID:   input.CategoryID,
		Location:     input.Location,
		MinPrice:     input.MinPrice,
		MaxPrice:     input.MaxPrice,
		Search:       input.Search,
		Limit:        input.Page.Limit,
		Offset:       input.Page.Offset,
	}
	if input.UpcomingOnly {
		now := s.now()
		filter.StartsAfter = &now
	}
	events, total, err := s.store.Repos().Events.List(ctx, filter)
	if err != nil {
		return nil, 0, internal(err)
	}
	return events, total, nil
}

// Featured returns active featured events that have not started, soonest first.
func (s *EventService) Featured(ctx context.Context, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	now := s.now()
	events, _, err := s.store.Repos().Events.List(ctx, repository.EventFilter{
		ActiveOnly:   true,
		FeaturedOnly: true,
		StartsAfter:  &now,
		Limit:        min(limit, maxPageSize),
	})
	if err != nil {
		return nil, internal(err)
	}
	return events, nil
}

// ToggleStatus flips is_active. Existing tickets are untouched.
func (s *EventService) ToggleStatus(ctx context.Context, actor Actor, id string) (*domain.Event, error) {
	repos := s.store.Repos()
	event, err := s.manageable(ctx, repos, actor, id)
	if err != nil {
		return nil, err
	}
	updated, err := repos.Events.SetActive(ctx, id, !event.IsActive)
	if err != nil {
		return nil, notFound(err, "event", id)
	}
	s.logger.Info("event status toggled", zap.String("event_id", id), zap.Bool("is_active", updated.IsActive))
	return updated, nil
}

// Delete hard-deletes an event nobody holds seats for.
func (s *EventService) Delete(ctx context.Context, actor Actor, id string) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := s.manageable(ctx, repos, actor, id); err != nil {
			return err
		}
		counts, err := repos.Tickets.CountByStatus(ctx, id)
		if err != nil {
			return internal(err)
		}
		if active := counts[domain.TicketStatusActive]; active > 0 {
			return apperrors.NewConflict("cannot delete an event with active tickets",
				map[string]any{"active_tickets": active})
		}
		registrations, err := repos.Registrations.CountByEvent(ctx, id)
		if err != nil {
			return internal(err)
		}
		if registrations > 0 {
			return apperrors.NewConflict("cannot delete an event with registrations",
				map[string]any{"registrations": registrations})
		}
		if err := repos.Events.Delete(ctx, id); err != nil {
			return notFound(err, "event", id)
		}
		return nil
	})
}

// Stats counts tickets by status and registrations for an event.
func (s *EventService) Stats(ctx context.Context, id string) (*EventStats, error) {
	repos := s.store.Repos()
	event, err := repos.Events.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "event", id)
	}
	counts, err := repos.Tickets.CountByStatus(ctx, id)
	if err != nil {
		return nil, internal(err)
	}
	registrations, err := repos.Registrations.CountByEvent(ctx, id)
	if err != nil {
		return nil, internal(err)
	}
	return &EventStats{
		Event:              event,
		ActiveTickets:      counts[domain.TicketStatusActive],
		UsedTickets:        counts[domain.TicketStatusUsed],
		CancelledTickets:   counts[domain.TicketStatusCancelled],
		TotalRegistrations: registrations,
		RemainingCapacity:  event.Remaining(),
		PercentageUsed:     math.Round(event.OccupancyPercent()*100) / 100,
	}, nil
}

// CreateTicketType adds a priced tier to an event.
func (s *EventService) CreateTicketType(ctx context.Context, actor Actor, eventID string, input CreateTicketTypeInput) (*domain.TicketType, error) {
	repos := s.store.Repos()
	event, err := s.manageable(ctx, repos, actor, eventID)
	if err != nil {
		return nil, err
	}

	details := map[string]any{}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		details["name"] = "required"
	}
	if input.Price.IsNegative() {
		details["price"] = "cannot be negative"
	}
	if input.QuantityAvailable < 1 || input.QuantityAvailable > event.Capacity {
		details["quantity_available"] = "must be between 1 and the event capacity"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid ticket type", details)
	}

	tt := &domain.TicketType{
		EventID:           event.ID,
		Name:              name,
		Description:       strings.TrimSpace(input.Description),
		Price:             input.Price.Round(2),
		QuantityAvailable: input.QuantityAvailable,
		IsActive:          true,
		SortOrder:         input.SortOrder,
	}
	if err := repos.TicketTypes.Create(ctx, tt); err != nil {
		return nil, notFound(err, "event", eventID)
	}
	return tt, nil
}

// ListTicketTypes returns an event's tiers in display order.
func (s *EventService) ListTicketTypes(ctx context.Context, eventID string) ([]domain.TicketType, error) {
	repos := s.store.Repos()
	if _, err := repos.Events.GetByID(ctx, eventID); err != nil {
		return nil, notFound(err, "event", eventID)
	}
	types, err := repos.TicketTypes.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, internal(err)
	}
	return types, nil
}

// CheckAvailability reports whether quantity units of a tier are on sale.
// The tier can never offer more than its event has left. A quantity below
// one is treated as one.
func (s *EventService) CheckAvailability(ctx context.Context, ticketTypeID string, quantity int) (*Availability, error) {
	repos := s.store.Repos()
	tt, err := repos.TicketTypes.GetByID(ctx, ticketTypeID)
	if err != nil {
		return nil, notFound(err, "ticket type", ticketTypeID)
	}
	event, err := repos.Events.GetByID(ctx, tt.EventID)
	if err != nil {
		return nil, notFound(err, "event", tt.EventID)
	}
	if quantity < 1 {
		quantity = 1
	}
	available := min(tt.Remaining(), event.Remaining())
	return &Availability{
		TicketType:  tt,
		Requested:   quantity,
		Available:   available,
		IsAvailable: tt.IsActive && available >= quantity,
	}, nil
}

// category resolves an optional category reference. It returns nil for an
// empty or unknown id and leaves the validation message to the caller.
func (s *EventService) category(ctx context.Context, repos repository.Repositories, id *string) (*string, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	category, err := repos.Categories.GetByID(ctx, strings.TrimSpace(*id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, internal(err)
	}
	return &category.ID, nil
}

// manageable loads an event the actor organizes, or any event for admins.
func (s *EventService) manageable(ctx context.Context, repos repository.Repositories, actor Actor, id string) (*domain.Event, error) {
	event, err := repos.Events.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "event", id)
	}
	if actor.IsAdmin() {
		return event, nil
	}
	if event.OrganizerID == nil || *event.OrganizerID != actor.UserID {
		return nil, apperrors.NewAccessDenied()
	}
	return event, nil
}
