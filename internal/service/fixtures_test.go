package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/event-ticketing/internal/config"
	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/events"
	"github.com/spec-kit/event-ticketing/internal/observability"
	"github.com/spec-kit/event-ticketing/internal/repository/memory"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util/errorutil"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	clock     *testClock
	store     *memory.Store
	recorder  *recorder
	metrics   *observability.Metrics
	purchases *PurchaseService
	eventsSvc *EventService
	promos    *PromoService
	sales     *SalesService
	category  *CategoryService
	users     *UserService
}

var (
	organizer = Actor{UserID: "organizer-1", Role: domain.RoleOrganizer}
	admin     = Actor{UserID: "admin-1", Role: domain.RoleAdmin}
	alice     = Actor{UserID: "alice", Role: domain.RoleUser}
	bob       = Actor{UserID: "bob", Role: domain.RoleUser}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := memory.NewStore(memory.WithClock(clock.Now))
	rec := &recorder{}
	dispatcher := events.NewInMemoryDispatcher()
	events.SubscribeAll(dispatcher, rec.handle)
	metrics := observability.NewMetrics()

	deps := Dependencies{Store: store, Dispatcher: dispatcher, Metrics: metrics, Now: clock.Now}
	ledger := NewInventoryLedger(metrics)
	return &fixture{
		clock:     clock,
		store:     store,
		recorder:  rec,
		metrics:   metrics,
		purchases: NewPurchaseService(deps, ledger),
		eventsSvc: NewEventService(deps),
		promos:    NewPromoService(deps),
		sales:     NewSalesService(deps, ledger),
		category:  NewCategoryService(deps),
		users:     NewUserService(deps, config.AuthConfig{BcryptCost: bcrypt.MinCost}),
	}
}

func (f *fixture) event(t *testing.T, capacity int, price string) *domain.Event {
	t.Helper()
	event, err := f.eventsSvc.Create(context.Background(), organizer, CreateEventInput{
		Title:     "Launch Party",
		Location:  "Main Hall",
		EventDate: f.clock.Now().Add(72 * time.Hour),
		Capacity:  capacity,
		Price:     dec(price),
	})
	require.NoError(t, err)
	return event
}

func (f *fixture) promo(t *testing.T, code string, kind domain.DiscountType, value string, maxUses *int) *domain.PromoCode {
	t.Helper()
	promo, err := f.promos.Create(context.Background(), admin, CreatePromoInput{
		Code:          code,
		DiscountType:  kind,
		DiscountValue: dec(value),
		MaxUses:       maxUses,
		ValidFrom:     f.clock.Now().Add(-time.Hour),
		ValidUntil:    f.clock.Now().Add(30 * 24 * time.Hour),
	})
	require.NoError(t, err)
	return promo
}

func (f *fixture) reload(t *testing.T, id string) *domain.Event {
	t.Helper()
	event, err := f.store.Repos().Events.GetByID(context.Background(), id)
	require.NoError(t, err)
	return event
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperrors.CodeOf(err), err.Error())
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
