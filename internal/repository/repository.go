package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSoldOut is returned when a conditional reservation matched no row
	// because the remaining allotment was smaller than requested.
	ErrSoldOut = errors.New("not enough seats remaining")
	// ErrDuplicate is returned on unique constraint violations.
	ErrDuplicate = errors.New("duplicate record")
	// ErrPromoExhausted is returned when a promo code can no longer be redeemed.
	ErrPromoExhausted = errors.New("promo code exhausted")
	// ErrStateChanged is returned when a guarded status update lost a race.
	ErrStateChanged = errors.New("record state changed")
	// ErrInUse is returned when a delete is blocked by rows referencing the record.
	ErrInUse = errors.New("record is still referenced")
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EventFilter narrows event listings. Limit <= 0 returns every match.
type EventFilter struct {
	ActiveOnly   bool
	FeaturedOnly bool
	StartsAfter  *time.Time
	DateFrom     *time.Time
	DateTo       *time.Time
	OrganizerID  *string
	CategoryID   *string
	Location     *string
	Search       *string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	// NewestFirst orders by created_at descending instead of event_date ascending.
	NewestFirst bool
	Limit       int
	Offset      int
}

// EventSummary aggregates the whole catalogue for the admin dashboard.
type EventSummary struct {
	Total    int
	Upcoming int
	Revenue  decimal.Decimal
	// ByCategory maps category id to event count. Uncategorized events are omitted.
	ByCategory map[string]int
}

// EventRepository persists events and owns the sales ledger columns.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	// Update writes the descriptive fields. Capacity and sales columns are untouched.
	Update(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, filter EventFilter) ([]domain.Event, int, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.Event, error)
	Delete(ctx context.Context, id string) error

	// ReserveSeats adds quantity seats and amount revenue only while the
	// result stays within capacity. Returns ErrSoldOut otherwise.
	ReserveSeats(ctx context.Context, id string, quantity int, amount decimal.Decimal) (*domain.Event, error)
	// ReleaseSeats subtracts quantity and amount, clamping both at zero.
	ReleaseSeats(ctx context.Context, id string, quantity int, amount decimal.Decimal) (*domain.Event, error)
	// SetSales overwrites the aggregates. Callers validate the range.
	SetSales(ctx context.Context, id string, sold int, revenue decimal.Decimal) (*domain.Event, error)

	CountByCategory(ctx context.Context, categoryID string) (int, error)
	// Summary counts events, those starting after now, and the revenue ledger total.
	Summary(ctx context.Context, now time.Time) (EventSummary, error)
}

// CategoryFilter narrows category listings. Limit <= 0 returns every match.
type CategoryFilter struct {
	Active *bool
	Limit  int
	Offset int
}

// CategoryRepository persists event categories.
type CategoryRepository interface {
	// Create returns ErrDuplicate when the name is taken, ignoring case.
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	// List orders by name.
	List(ctx context.Context, filter CategoryFilter) ([]domain.Category, int, error)
	Update(ctx context.Context, category *domain.Category) error
	SetActive(ctx context.Context, id string, active bool) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

// TicketRepository persists single-seat tickets.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)
	// UpdateStatus moves a ticket from one status to another, returning
	// ErrStateChanged when the ticket is no longer in the from status.
	UpdateStatus(ctx context.Context, id string, from, to domain.TicketStatus) (*domain.Ticket, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Ticket, error)
	HasActive(ctx context.Context, userID, eventID string) (bool, error)
	CountByStatus(ctx context.Context, eventID string) (map[domain.TicketStatus]int, error)
	// ListHistory pages a user's tickets newest first, optionally by status, with the match count.
	ListHistory(ctx context.Context, userID string, status *domain.TicketStatus, limit, offset int) ([]domain.Ticket, int, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	// Summary counts all tickets and the active ones.
	Summary(ctx context.Context) (TicketSummary, error)
}

// TicketSummary is the ticket side of the admin dashboard.
type TicketSummary struct {
	Total  int
	Active int
}

// RegistrationRepository persists multi-seat registrations.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *domain.Registration) error
	GetByID(ctx context.Context, id string) (*domain.Registration, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.Registration, error)
	Exists(ctx context.Context, userID, eventID string) (bool, error)
	CountByEvent(ctx context.Context, eventID string) (int, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

// PromoFilter narrows promo code listings.
type PromoFilter struct {
	EventID    *string
	ActiveOnly bool
}

// PromoCodeRepository persists promo codes.
type PromoCodeRepository interface {
	Create(ctx context.Context, promo *domain.PromoCode) error
	GetByID(ctx context.Context, id string) (*domain.PromoCode, error)
	GetByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	List(ctx context.Context, filter PromoFilter) ([]domain.PromoCode, error)
	Deactivate(ctx context.Context, id string) (*domain.PromoCode, error)
	// Redeem increments times_used while the code is active and under its
	// max uses. Returns ErrPromoExhausted otherwise.
	Redeem(ctx context.Context, id string) error
}

// TicketTypeRepository persists ticket tiers.
type TicketTypeRepository interface {
	Create(ctx context.Context, tt *domain.TicketType) error
	GetByID(ctx context.Context, id string) (*domain.TicketType, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.TicketType, error)
	Reserve(ctx context.Context, id string, quantity int) error
	Release(ctx context.Context, id string, quantity int) error
}

// UserFilter narrows account listings for administrators.
type UserFilter struct {
	Role   *domain.UserRole
	Status *domain.UserStatus
	// Search matches name or email, ignoring case.
	Search *string
	Limit  int
	Offset int
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// List orders by created_at descending.
	List(ctx context.Context, filter UserFilter) ([]domain.User, int, error)
	UpdateRole(ctx context.Context, id string, role domain.UserRole) (*domain.User, error)
	SetStatus(ctx context.Context, id string, status domain.UserStatus) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// SalesAdjustmentRepository stores the audit trail of admin sales overrides.
type SalesAdjustmentRepository interface {
	Create(ctx context.Context, adj *domain.SalesAdjustment) error
	ListByEvent(ctx context.Context, eventID string) ([]domain.SalesAdjustment, error)
}

// Repositories groups every repository bound to one connection or transaction.
type Repositories struct {
	Events        EventRepository
	Categories    CategoryRepository
	Tickets       TicketRepository
	Registrations RegistrationRepository
	PromoCodes    PromoCodeRepository
	TicketTypes   TicketTypeRepository
	Users         UserRepository
	Adjustments   SalesAdjustmentRepository
}

// Store hands out repositories and runs units of work atomically.
type Store interface {
	Repos() Repositories
	// WithinTx runs fn against transaction-bound repositories. Any error
	// returned by fn rolls back every write fn made.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
