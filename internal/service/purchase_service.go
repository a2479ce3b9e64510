package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/events"
	"github.com/spec-kit/event-ticketing/internal/observability"
	"github.com/spec-kit/event-ticketing/internal/repository"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util/errorutil"
)

// Actor identifies the authenticated caller of a workflow.
type Actor struct {
	UserID string
	Role   domain.UserRole
}

// IsAdmin reports whether the actor may bypass ownership checks.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

func (a Actor) event() events.Actor {
	return events.Actor{UserID: a.UserID, Role: a.Role}
}

// PurchaseTicketInput describes a single-seat purchase.
type PurchaseTicketInput struct {
	EventID   string
	PromoCode string
}

// RegisterInput describes a multi-seat registration.
type RegisterInput struct {
	EventID      string
	Quantity     int
	PromoCode    string
	TicketTypeID string
}

// TicketVerification is the public answer to a ticket code lookup.
type TicketVerification struct {
	Ticket  *domain.Ticket
	Event   *domain.Event
	IsValid bool
}

// HistoryEntry pairs a ticket with the event it admits to. Event is nil
// when the event has since been deleted.
type HistoryEntry struct {
	Ticket domain.Ticket
	Event  *domain.Event
}

// PurchaseService runs the purchase, registration and cancellation workflows.
type PurchaseService struct {
	store   repository.Store
	ledger  *InventoryLedger
	metrics *observability.Metrics
	logger  *zap.Logger
	pub     publisher
	now     func() time.Time
}

// NewPurchaseService constructs the service.
func NewPurchaseService(deps Dependencies, ledger *InventoryLedger) *PurchaseService {
	deps = deps.withDefaults()
	return &PurchaseService{
		store:   deps.Store,
		ledger:  ledger,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		pub:     publisher{dispatcher: deps.Dispatcher, logger: deps.Logger, now: deps.Now},
		now:     deps.Now,
	}
}

// checkout is the shared shape of a ticket purchase and a registration.
type checkout struct {
	kind         string
	userID       string
	eventID      string
	quantity     int
	promoCode    string
	ticketTypeID string
}

type checkoutPlan struct {
	event      *domain.Event
	ticketType *domain.TicketType
	promo      *domain.PromoCode
	quote      Quote
}

// prepare runs the fail-fast validation chain and prices the checkout.
// Order: not found, inactive, expired, capacity, duplicate, promo.
func (s *PurchaseService) prepare(ctx context.Context, repos repository.Repositories, c checkout) (*checkoutPlan, error) {
	event, err := repos.Events.GetByID(ctx, c.eventID)
	if err != nil {
		return nil, notFound(err, "event", c.eventID)
	}
	if !event.IsActive {
		return nil, apperrors.NewEventInactive()
	}
	if event.HasStarted(s.now()) {
		return nil, apperrors.NewEventExpired()
	}

	plan := &checkoutPlan{event: event}
	unitPrice := event.Price
	available := event.Remaining()

	if c.ticketTypeID != "" {
		tt, err := repos.TicketTypes.GetByID(ctx, c.ticketTypeID)
		if err != nil || tt.EventID != event.ID {
			return nil, apperrors.NewNotFound("ticket type", map[string]any{"id": c.ticketTypeID})
		}
		if !tt.IsActive {
			return nil, apperrors.NewValidationError("ticket type is not on sale", map[string]any{"ticket_type_id": tt.ID})
		}
		plan.ticketType = tt
		unitPrice = tt.Price
		if tt.Remaining() < available {
			available = tt.Remaining()
		}
	}

	if c.quantity < 1 || c.quantity > available {
		return nil, apperrors.NewInsufficientCapacity(c.quantity, available)
	}

	switch c.kind {
	case KindTicket:
		has, err := repos.Tickets.HasActive(ctx, c.userID, event.ID)
		if err != nil {
			return nil, internal(err)
		}
		if has {
			return nil, apperrors.NewDuplicatePurchase("you already have an active ticket for this event")
		}
	case KindRegistration:
		exists, err := repos.Registrations.Exists(ctx, c.userID, event.ID)
		if err != nil {
			return nil, internal(err)
		}
		if exists {
			return nil, apperrors.NewDuplicatePurchase("you are already registered for this event")
		}
	}

	if code := strings.TrimSpace(c.promoCode); code != "" {
		promo, err := repos.PromoCodes.GetByCode(ctx, strings.ToUpper(code))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NewInvalidPromoCode([]string{PromoNotFound})
			}
			return nil, internal(err)
		}
		if violations := PromoViolations(promo, event.ID, s.now()); len(violations) > 0 {
			return nil, apperrors.NewInvalidPromoCode(violations)
		}
		plan.promo = promo
	}

	plan.quote = PriceCheckout(unitPrice, c.quantity, plan.promo)
	return plan, nil
}

// commit performs the writes of a checkout: seats, tier allotment, then the
// promo redemption. insert writes the record itself between the two.
func (s *PurchaseService) commit(ctx context.Context, repos repository.Repositories, c checkout, plan *checkoutPlan, insert func() error) (*domain.Event, error) {
	event, err := s.ledger.Reserve(ctx, repos.Events, plan.event.ID, c.quantity, plan.quote.Final, c.kind)
	if err != nil {
		return nil, err
	}
	if plan.ticketType != nil {
		if err := repos.TicketTypes.Reserve(ctx, plan.ticketType.ID, c.quantity); err != nil {
			if errors.Is(err, repository.ErrSoldOut) {
				return nil, apperrors.NewInsufficientCapacity(c.quantity, plan.ticketType.Remaining())
			}
			return nil, internal(err)
		}
	}

	if err := insert(); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewDuplicatePurchase("duplicate purchase for this event")
		}
		return nil, internal(err)
	}

	if plan.promo != nil {
		if err := repos.PromoCodes.Redeem(ctx, plan.promo.ID); err != nil {
			if errors.Is(err, repository.ErrPromoExhausted) {
				return nil, apperrors.NewInvalidPromoCode([]string{PromoMaxUses})
			}
			return nil, internal(err)
		}
	}
	return event, nil
}

// PurchaseTicket buys one seat for the actor.
func (s *PurchaseService) PurchaseTicket(ctx context.Context, actor Actor, input PurchaseTicketInput) (ticket *domain.Ticket, err error) {
	ctx, span, finish := startSpan(ctx, "PurchaseService.PurchaseTicket")
	defer finish(&err)
	span.SetAttributes(attribute.String("event.id", input.EventID), attribute.String("user.id", actor.UserID))

	c := checkout{kind: KindTicket, userID: actor.UserID, eventID: input.EventID, quantity: 1, promoCode: input.PromoCode}
	var event *domain.Event
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		plan, err := s.prepare(ctx, repos, c)
		if err != nil {
			return err
		}
		ticket = &domain.Ticket{
			UniqueCode:     "TICKET-" + uuid.NewString(),
			UserID:         actor.UserID,
			EventID:        plan.event.ID,
			Status:         domain.TicketStatusActive,
			Price:          plan.quote.Final,
			DiscountAmount: plan.quote.Discount,
			PromoCodeID:    promoID(plan.promo),
		}
		event, err = s.commit(ctx, repos, c, plan, func() error {
			return repos.Tickets.Create(ctx, ticket)
		})
		return err
	})
	if err != nil {
		s.reject("purchase_ticket", err)
		return nil, err
	}

	s.logger.Info("ticket purchased",
		zap.String("ticket_id", ticket.ID),
		zap.String("event_id", event.ID),
		zap.String("price", ticket.Price.StringFixed(2)))
	s.pub.publish(ctx, events.Event{
		Type:    events.EventTicketPurchased,
		EventID: event.ID,
		Actor:   actor.event(),
		Payload: seatsPayload(ticket.ID, 1, ticket.Price, ticket.PromoCodeID, event),
	})
	return ticket, nil
}

// Register books input.Quantity seats for the actor.
func (s *PurchaseService) Register(ctx context.Context, actor Actor, input RegisterInput) (reg *domain.Registration, err error) {
	ctx, span, finish := startSpan(ctx, "PurchaseService.Register")
	defer finish(&err)
	span.SetAttributes(
		attribute.String("event.id", input.EventID),
		attribute.String("user.id", actor.UserID),
		attribute.Int("quantity", input.Quantity),
	)

	c := checkout{
		kind:         KindRegistration,
		userID:       actor.UserID,
		eventID:      input.EventID,
		quantity:     input.Quantity,
		promoCode:    input.PromoCode,
		ticketTypeID: strings.TrimSpace(input.TicketTypeID),
	}
	var event *domain.Event
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		plan, err := s.prepare(ctx, repos, c)
		if err != nil {
			return err
		}
		reg = &domain.Registration{
			UserID:         actor.UserID,
			EventID:        plan.event.ID,
			PromoCodeID:    promoID(plan.promo),
			Quantity:       c.quantity,
			UnitPrice:      plan.quote.UnitPrice,
			TotalPrice:     plan.quote.Subtotal,
			DiscountAmount: plan.quote.Discount,
			FinalPrice:     plan.quote.Final,
			PaymentStatus:  domain.PaymentCompleted,
		}
		if plan.ticketType != nil {
			reg.TicketTypeID = &plan.ticketType.ID
		}
		event, err = s.commit(ctx, repos, c, plan, func() error {
			return repos.Registrations.Create(ctx, reg)
		})
		return err
	})
	if err != nil {
		s.reject("register", err)
		return nil, err
	}

	s.logger.Info("registration created",
		zap.String("registration_id", reg.ID),
		zap.String("event_id", event.ID),
		zap.Int("quantity", reg.Quantity))
	s.pub.publish(ctx, events.Event{
		Type:    events.EventRegistrationCreated,
		EventID: event.ID,
		Actor:   actor.event(),
		Payload: seatsPayload(reg.ID, reg.Quantity, reg.FinalPrice, reg.PromoCodeID, event),
	})
	return reg, nil
}

// CancelTicket cancels an active ticket and returns its seat and revenue.
func (s *PurchaseService) CancelTicket(ctx context.Context, actor Actor, ticketID string) (ticket *domain.Ticket, err error) {
	ctx, span, finish := startSpan(ctx, "PurchaseService.CancelTicket")
	defer finish(&err)
	span.SetAttributes(attribute.String("ticket.id", ticketID))

	var event *domain.Event
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		current, err := repos.Tickets.GetByID(ctx, ticketID)
		if err != nil {
			return notFound(err, "ticket", ticketID)
		}
		if current.UserID != actor.UserID && !actor.IsAdmin() {
			return apperrors.NewAccessDenied()
		}
		switch current.Status {
		case domain.TicketStatusCancelled:
			return apperrors.NewAlreadyCancelled("ticket")
		case domain.TicketStatusUsed:
			return apperrors.NewInvalidState("cannot cancel a used ticket")
		}
		if err := s.requireUpcoming(ctx, repos, current.EventID); err != nil {
			return err
		}

		ticket, err = repos.Tickets.UpdateStatus(ctx, current.ID, domain.TicketStatusActive, domain.TicketStatusCancelled)
		if err != nil {
			if errors.Is(err, repository.ErrStateChanged) {
				return apperrors.NewAlreadyCancelled("ticket")
			}
			return internal(err)
		}
		event, err = s.ledger.Release(ctx, repos.Events, ticket.EventID, 1, ticket.Price, KindTicket)
		return err
	})
	if err != nil {
		s.reject("cancel_ticket", err)
		return nil, err
	}

	s.pub.publish(ctx, events.Event{
		Type:    events.EventTicketCancelled,
		EventID: event.ID,
		Actor:   actor.event(),
		Payload: seatsPayload(ticket.ID, 1, ticket.Price, ticket.PromoCodeID, event),
	})
	return ticket, nil
}

// CancelRegistration deletes a completed registration and returns its seats.
func (s *PurchaseService) CancelRegistration(ctx context.Context, actor Actor, registrationID string) (err error) {
	ctx, span, finish := startSpan(ctx, "PurchaseService.CancelRegistration")
	defer finish(&err)
	span.SetAttributes(attribute.String("registration.id", registrationID))

	var (
		reg   *domain.Registration
		event *domain.Event
	)
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		reg, err = repos.Registrations.GetByID(ctx, registrationID)
		if err != nil {
			return notFound(err, "registration", registrationID)
		}
		if reg.UserID != actor.UserID && !actor.IsAdmin() {
			return apperrors.NewAccessDenied()
		}
		switch reg.PaymentStatus {
		case domain.PaymentCompleted:
		case domain.PaymentCancelled:
			return apperrors.NewAlreadyCancelled("registration")
		default:
			return apperrors.NewInvalidState("only completed registrations can be cancelled")
		}
		if err := s.requireUpcoming(ctx, repos, reg.EventID); err != nil {
			return err
		}

		if err := repos.Registrations.Delete(ctx, reg.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewAlreadyCancelled("registration")
			}
			return internal(err)
		}
		if reg.TicketTypeID != nil {
			if err := repos.TicketTypes.Release(ctx, *reg.TicketTypeID, reg.Quantity); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return internal(err)
			}
		}
		event, err = s.ledger.Release(ctx, repos.Events, reg.EventID, reg.Quantity, reg.FinalPrice, KindRegistration)
		return err
	})
	if err != nil {
		s.reject("cancel_registration", err)
		return err
	}

	s.pub.publish(ctx, events.Event{
		Type:    events.EventRegistrationCancelled,
		EventID: event.ID,
		Actor:   actor.event(),
		Payload: seatsPayload(reg.ID, reg.Quantity, reg.FinalPrice, reg.PromoCodeID, event),
	})
	return nil
}

func (s *PurchaseService) requireUpcoming(ctx context.Context, repos repository.Repositories, eventID string) error {
	event, err := repos.Events.GetByID(ctx, eventID)
	if err != nil {
		return notFound(err, "event", eventID)
	}
	if event.HasStarted(s.now()) {
		return apperrors.NewEventAlreadyOccurred()
	}
	return nil
}

// MarkTicketUsed checks a ticket in at the door.
func (s *PurchaseService) MarkTicketUsed(ctx context.Context, actor Actor, ticketID string) (*domain.Ticket, error) {
	repos := s.store.Repos()
	current, err := repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFound(err, "ticket", ticketID)
	}
	switch current.Status {
	case domain.TicketStatusUsed:
		return nil, apperrors.NewInvalidState("ticket is already marked as used")
	case domain.TicketStatusCancelled:
		return nil, apperrors.NewInvalidState("cannot use a cancelled ticket")
	}

	ticket, err := repos.Tickets.UpdateStatus(ctx, current.ID, domain.TicketStatusActive, domain.TicketStatusUsed)
	if err != nil {
		if errors.Is(err, repository.ErrStateChanged) {
			return nil, apperrors.NewInvalidState("ticket is no longer active")
		}
		return nil, internal(err)
	}
	s.pub.publish(ctx, events.Event{
		Type:    events.EventTicketUsed,
		EventID: ticket.EventID,
		Actor:   actor.event(),
		Payload: map[string]string{"ticket_id": ticket.ID},
	})
	return ticket, nil
}

// VerifyTicket looks a ticket up by its public code. A ticket is valid while
// active and its event has not started.
func (s *PurchaseService) VerifyTicket(ctx context.Context, code string) (*TicketVerification, error) {
	repos := s.store.Repos()
	ticket, err := repos.Tickets.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, notFound(err, "ticket", code)
	}
	event, err := repos.Events.GetByID(ctx, ticket.EventID)
	if err != nil {
		return nil, notFound(err, "event", ticket.EventID)
	}
	return &TicketVerification{
		Ticket:  ticket,
		Event:   event,
		IsValid: ticket.Status == domain.TicketStatusActive && !event.HasStarted(s.now()),
	}, nil
}

// GetTicket returns a ticket visible to the actor.
func (s *PurchaseService) GetTicket(ctx context.Context, actor Actor, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.store.Repos().Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFound(err, "ticket", ticketID)
	}
	if ticket.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, apperrors.NewAccessDenied()
	}
	return ticket, nil
}

// ListMyTickets returns the actor's tickets, newest first.
func (s *PurchaseService) ListMyTickets(ctx context.Context, actor Actor, page Page) ([]domain.Ticket, error) {
	tickets, err := s.store.Repos().Tickets.ListByUser(ctx, actor.UserID, page.Limit, page.Offset)
	if err != nil {
		return nil, internal(err)
	}
	return tickets, nil
}

// History pages the actor's tickets newest first, optionally narrowed to one
// status, joined with their events.
func (s *PurchaseService) History(ctx context.Context, actor Actor, status *domain.TicketStatus, page Page) ([]HistoryEntry, int, error) {
	if status != nil && !status.Valid() {
		return nil, 0, apperrors.NewValidationError("invalid filter",
			map[string]any{"status": "must be one of active, used, cancelled"})
	}
	repos := s.store.Repos()
	tickets, total, err := repos.Tickets.ListHistory(ctx, actor.UserID, status, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, internal(err)
	}

	events := map[string]*domain.Event{}
	entries := make([]HistoryEntry, 0, len(tickets))
	for _, ticket := range tickets {
		event, seen := events[ticket.EventID]
		if !seen {
			event, err = repos.Events.GetByID(ctx, ticket.EventID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, 0, internal(err)
			}
			events[ticket.EventID] = event
		}
		entries = append(entries, HistoryEntry{Ticket: ticket, Event: event})
	}
	return entries, total, nil
}

// ListMyRegistrations returns the actor's registrations, newest first.
func (s *PurchaseService) ListMyRegistrations(ctx context.Context, actor Actor, page Page) ([]domain.Registration, error) {
	regs, err := s.store.Repos().Registrations.ListByUser(ctx, actor.UserID, page.Limit, page.Offset)
	if err != nil {
		return nil, internal(err)
	}
	return regs, nil
}

func (s *PurchaseService) reject(op string, err error) {
	code := apperrors.CodeOf(err)
	s.metrics.RecordRejection(op, code)
	if code == apperrors.CodeInternal {
		s.logger.Error("workflow failed", zap.String("op", op), zap.Error(err))
	}
}

func promoID(promo *domain.PromoCode) *string {
	if promo == nil {
		return nil
	}
	id := promo.ID
	return &id
}

func seatsPayload(recordID string, quantity int, amount decimal.Decimal, promoCodeID *string, event *domain.Event) events.SeatsPayload {
	return events.SeatsPayload{
		RecordID:    recordID,
		Quantity:    quantity,
		Amount:      amount,
		PromoCodeID: promoCodeID,
		TicketsSold: event.TicketsSold,
		Remaining:   event.Remaining(),
	}
}
