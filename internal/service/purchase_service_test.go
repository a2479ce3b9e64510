package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/events"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util/errorutil"
)

func TestPurchaseTicketWithPromo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 10, "100")
	promo := f.promo(t, "save20", domain.DiscountPercentage, "20", nil)

	ticket, err := f.purchases.PurchaseTicket(ctx, alice, PurchaseTicketInput{EventID: event.ID, PromoCode: "Save20"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ticket.UniqueCode, "TICKET-"))
	assert.Equal(t, domain.TicketStatusActive, ticket.Status)
	assert.Equal(t, "80.00", ticket.Price.StringFixed(2))
	assert.Equal(t, "20.00", ticket.DiscountAmount.StringFixed(2))
	require.NotNil(t, ticket.PromoCodeID)
	assert.Equal(t, promo.ID, *ticket.PromoCodeID)

	after := f.reload(t, event.ID)
	assert.Equal(t, 1, after.TicketsSold)
	assert.Equal(t, "80.00", after.TotalRevenue.StringFixed(2))

	redeemed, err := f.promos.Get(ctx, promo.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, redeemed.TimesUsed)
	assert.Equal(t, []events.EventType{events.EventTicketPurchased}, f.recorder.types())
}

func TestPurchaseTicketRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	open := f.event(t, 5, "10")
	inactive := f.event(t, 5, "10")
	_, err := f.eventsSvc.ToggleStatus(ctx, organizer, inactive.ID)
	require.NoError(t, err)
	full := f.event(t, 1, "10")
	_, err = f.purchases.PurchaseTicket(ctx, bob, PurchaseTicketInput{EventID: full.ID})
	require.NoError(t, err)
	_, err = f.purchases.PurchaseTicket(ctx, alice, PurchaseTicketInput{EventID: open.ID})
	require.NoError(t, err)

	cases := []struct {
		name  string
		input PurchaseTicketInput
		code  string
	}{
		{name: "missing event", input: PurchaseTicketInput{EventID: "nope"}, code: apperrors.CodeNotFound},
		{name: "inactive event", input: PurchaseTicketInput{EventID: inactive.ID}, code: apperrors.CodeEventInactive},
		{name: "sold out", input: PurchaseTicketInput{EventID: full.ID}, code: apperrors.CodeInsufficientCapacity},
		{name: "capacity checked before promo", input: PurchaseTicketInput{EventID: full.ID, PromoCode: "NOPE"}, code: apperrors.CodeInsufficientCapacity},
		{name: "already holds a ticket", input: PurchaseTicketInput{EventID: open.ID}, code: apperrors.CodeDuplicatePurchase},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.purchases.PurchaseTicket(ctx, alice, tc.input)
			assertCode(t, err, tc.code)
		})
	}

	t.Run("unknown promo", func(t *testing.T) {
		_, err := f.purchases.PurchaseTicket(ctx, bob, PurchaseTicketInput{EventID: open.ID, PromoCode: "NOPE"})
		assertCode(t, err, apperrors.CodeInvalidPromoCode)
		assert.Equal(t, []string{PromoNotFound}, apperrors.ToDomainError(err).Details["errors"])
	})

	assert.Equal(t, 1, f.reload(t, open.ID).TicketsSold)
	assert.Equal(t, 1, f.reload(t, full.ID).TicketsSold)
	series, err := testutil.GatherAndCount(f.metrics.Registry(), "ticketing_rejections_total")
	require.NoError(t, err)
	assert.Equal(t, 5, series)
}

func TestPurchaseCollectsEveryPromoViolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 5, "10")
	other := f.event(t, 5, "10")

	promo, err := f.promos.Create(ctx, admin, CreatePromoInput{
		Code:          "SCOPED",
		DiscountType:  domain.DiscountFixed,
		DiscountValue: dec("5"),
		EventID:       &other.ID,
		ValidFrom:     f.clock.Now().Add(-2 * time.Hour),
		ValidUntil:    f.clock.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	_, err = f.promos.Deactivate(ctx, promo.ID)
	require.NoError(t, err)

	_, err = f.purchases.PurchaseTicket(ctx, alice, PurchaseTicketInput{EventID: event.ID, PromoCode: "scoped"})
	assertCode(t, err, apperrors.CodeInvalidPromoCode)
	assert.Equal(t, []string{PromoInactive, PromoExpired, PromoWrongEvent}, apperrors.ToDomainError(err).Details["errors"])
	assert.Equal(t, 0, f.reload(t, event.ID).TicketsSold)
}

func TestPurchaseExpiredEvent(t *testing.T) {
	f := newFixture(t)
	event := f.event(t, 5, "10")
	f.clock.Advance(72 * time.Hour)

	_, err := f.purchases.PurchaseTicket(context.Background(), alice, PurchaseTicketInput{EventID: event.ID})
	assertCode(t, err, apperrors.CodeEventExpired)
}

func TestInactiveCheckedBeforeExpiry(t *testing.T) {
	f := newFixture(t)
	event := f.event(t, 5, "10")
	_, err := f.eventsSvc.ToggleStatus(context.Background(), admin, event.ID)
	require.NoError(t, err)
	f.clock.Advance(100 * time.Hour)

	_, err = f.purchases.PurchaseTicket(context.Background(), alice, PurchaseTicketInput{EventID: event.ID})
	assertCode(t, err, apperrors.CodeEventInactive)
}

func TestLastSeatGoesToOneBuyer(t *testing.T) {
	f := newFixture(t)
	event := f.event(t, 1, "25")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, actor := range []Actor{alice, bob} {
		wg.Add(1)
		go func(i int, actor Actor) {
			defer wg.Done()
			_, errs[i] = f.purchases.PurchaseTicket(context.Background(), actor, PurchaseTicketInput{EventID: event.ID})
		}(i, actor)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, apperrors.CodeInsufficientCapacity, apperrors.CodeOf(err))
	}
	assert.Equal(t, 1, succeeded)

	after := f.reload(t, event.ID)
	assert.Equal(t, 1, after.TicketsSold)
	assert.Equal(t, "25.00", after.TotalRevenue.StringFixed(2))
}

func TestConcurrentPurchasesSellExactlyCapacity(t *testing.T) {
	f := newFixture(t)
	event := f.event(t, 5, "20")

	const buyers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		sold    int
		refused int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := Actor{UserID: fmt.Sprintf("buyer-%02d", i), Role: domain.RoleUser}
			_, err := f.purchases.PurchaseTicket(context.Background(), actor, PurchaseTicketInput{EventID: event.ID})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				sold++
				return
			}
			assert.Equal(t, apperrors.CodeInsufficientCapacity, apperrors.CodeOf(err))
			refused++
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, sold)
	assert.Equal(t, buyers-5, refused)

	after := f.reload(t, event.ID)
	assert.Equal(t, 5, after.TicketsSold)
	assert.Equal(t, "100.00", after.TotalRevenue.StringFixed(2))
	counts, err := f.store.Repos().Tickets.CountByStatus(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, counts[domain.TicketStatusActive])
}

func TestPromoMaxUsesHoldsUnderConcurrency(t *testing.T) {
	f := newFixture(t)
	event := f.event(t, 100, "40")
	promo := f.promo(t, "FIRST3", domain.DiscountFixed, "10", intPtr(3))

	const buyers = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := Actor{UserID: "buyer-" + string(rune('a'+i)), Role: domain.RoleUser}
			_, err := f.purchases.Register(context.Background(), actor, RegisterInput{EventID: event.ID, Quantity: 1, PromoCode: "first3"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
				return
			}
			assert.Equal(t, apperrors.CodeInvalidPromoCode, apperrors.CodeOf(err))
			rejected++
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, accepted)
	assert.Equal(t, buyers-3, rejected)

	redeemed, err := f.promos.Get(context.Background(), promo.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, redeemed.TimesUsed)

	after := f.reload(t, event.ID)
	assert.Equal(t, 3, after.TicketsSold)
	assert.Equal(t, "90.00", after.TotalRevenue.StringFixed(2))
}

func TestCancelTicketRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 3, "50")
	f.promo(t, "TEN", domain.DiscountFixed, "10", nil)

	ticket, err := f.purchases.PurchaseTicket(ctx, alice, PurchaseTicketInput{EventID: event.ID, PromoCode: "TEN"})
	require.NoError(t, err)
	assert.Equal(t, "40.00", f.reload(t, event.ID).TotalRevenue.StringFixed(2))

	_, err = f.purchases.CancelTicket(ctx, bob, ticket.ID)
	assertCode(t, err, apperrors.CodeAccessDenied)

	cancelled, err := f.purchases.CancelTicket(ctx, alice, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCancelled, cancelled.Status)

	after := f.reload(t, event.ID)
	assert.Equal(t, 0, after.TicketsSold)
	assert.True(t, after.TotalRevenue.IsZero())

	_, err = f.purchases.CancelTicket(ctx, alice, ticket.ID)
	assertCode(t, err, apperrors.CodeAlreadyCancelled)

	_, err = f.purchases.CancelTicket(ctx, alice, "missing")
	assertCode(t, err, apperrors.CodeNotFound)

	// a cancelled ticket does not block a new purchase
	_, err = f.purchases.PurchaseTicket(ctx, alice, PurchaseTicketInput{EventID: event.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, f.reload(t, event.ID).TicketsSold)
}

func TestAdminMayCancelAnyTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 3, "50")
	ticket, err := f.purchases.PurchaseTicket(ctx, alice, PurchaseTicketInput{EventID: event.ID})
	require.NoError(t, err)

	_, err = f.purchases.CancelTicket(ctx, admin, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.reload(t, event.ID).TicketsSold)
}

func TestConcurrentCancelReleasesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 3, "50")
	_, err := f.purchases.PurchaseTicket(ctx, bob, PurchaseTicketInput{EventID: event.ID})
	require.NoError(t, err)
	ticket, err := f.purchases.PurchaseTicket(ctx, alice, PurchaseTicketInput{EventID: event.ID})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.purchases.CancelTicket(ctx, alice, ticket.ID)
		}(i)
	}
	wg.Wait()

	codes := []string{apperrors.CodeOf(errs[0]), apperrors.CodeOf(errs[1])}
	assert.ElementsMatch(t, []string{"", apperrors.CodeAlreadyCancelled}, codes)

	after := f.reload(t, event.ID)
	assert.Equal(t, 1, after.TicketsSold)
	assert.Equal(t, "50.00", after.TotalRevenue.StringFixed(2))
}

func TestCancelAfterEventStarted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 3, "50")
	ticket, err := f.purchases.PurchaseTicket(ctx, alice, PurchaseTicketInput{EventID: event.ID})
	require.NoError(t, err)
	reg, err := f.purchases.Register(ctx, bob, RegisterInput{EventID: event.ID, Quantity: 2})
	require.NoError(t, err)

	f.clock.Advance(96 * time.Hour)

	_, err = f.purchases.CancelTicket(ctx, alice, ticket.ID)
	assertCode(t, err, apperrors.CodeEventAlreadyOccurred)
	err = f.purchases.CancelRegistration(ctx, bob, reg.ID)
	assertCode(t, err, apperrors.CodeEventAlreadyOccurred)
	assert.Equal(t, 3, f.reload(t, event.ID).TicketsSold)
}

func TestRegisterAndCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 10, "50")
	f.promo(t, "FIFTEEN", domain.DiscountFixed, "15", nil)

	reg, err := f.purchases.Register(ctx, alice, RegisterInput{EventID: event.ID, Quantity: 3, PromoCode: "fifteen"})
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Quantity)
	assert.Equal(t, "50.00", reg.UnitPrice.StringFixed(2))
	assert.Equal(t, "150.00", reg.TotalPrice.StringFixed(2))
	assert.Equal(t, "15.00", reg.DiscountAmount.StringFixed(2))
	assert.Equal(t, "135.00", reg.FinalPrice.StringFixed(2))
	assert.Equal(t, domain.PaymentCompleted, reg.PaymentStatus)

	after := f.reload(t, event.ID)
	assert.Equal(t, 3, after.TicketsSold)
	assert.Equal(t, "135.00", after.TotalRevenue.StringFixed(2))

	_, err = f.purchases.Register(ctx, alice, RegisterInput{EventID: event.ID, Quantity: 1})
	assertCode(t, err, apperrors.CodeDuplicatePurchase)

	err = f.purchases.CancelRegistration(ctx, bob, reg.ID)
	assertCode(t, err, apperrors.CodeAccessDenied)

	require.NoError(t, f.purchases.CancelRegistration(ctx, alice, reg.ID))
	after = f.reload(t, event.ID)
	assert.Equal(t, 0, after.TicketsSold)
	assert.True(t, after.TotalRevenue.IsZero())

	err = f.purchases.CancelRegistration(ctx, alice, reg.ID)
	assertCode(t, err, apperrors.CodeNotFound)

	assert.Equal(t, []events.EventType{events.EventRegistrationCreated, events.EventRegistrationCancelled}, f.recorder.types())
}

func TestRegisterQuantityBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 4, "10")

	for _, q := range []int{0, -1, 5} {
		_, err := f.purchases.Register(ctx, alice, RegisterInput{EventID: event.ID, Quantity: q})
		assertCode(t, err, apperrors.CodeInsufficientCapacity)
	}

	_, err := f.purchases.Register(ctx, alice, RegisterInput{EventID: event.ID, Quantity: 4})
	require.NoError(t, err)
	_, err = f.purchases.Register(ctx, bob, RegisterInput{EventID: event.ID, Quantity: 1})
	assertCode(t, err, apperrors.CodeInsufficientCapacity)
	assert.Equal(t, 0, apperrors.ToDomainError(err).Details["available"])
}

func TestRegisterWithTicketType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 10, "50")
	vip, err := f.eventsSvc.CreateTicketType(ctx, organizer, event.ID, CreateTicketTypeInput{
		Name:              "VIP",
		Price:             dec("120"),
		QuantityAvailable: 2,
	})
	require.NoError(t, err)

	_, err = f.purchases.Register(ctx, alice, RegisterInput{EventID: event.ID, Quantity: 3, TicketTypeID: vip.ID})
	assertCode(t, err, apperrors.CodeInsufficientCapacity)

	reg, err := f.purchases.Register(ctx, alice, RegisterInput{EventID: event.ID, Quantity: 2, TicketTypeID: vip.ID})
	require.NoError(t, err)
	assert.Equal(t, "240.00", reg.FinalPrice.StringFixed(2))

	availability, err := f.eventsSvc.CheckAvailability(ctx, vip.ID, 1)
	require.NoError(t, err)
	assert.False(t, availability.IsAvailable)
	assert.Equal(t, 0, availability.Available)

	require.NoError(t, f.purchases.CancelRegistration(ctx, alice, reg.ID))
	availability, err = f.eventsSvc.CheckAvailability(ctx, vip.ID, 2)
	require.NoError(t, err)
	assert.True(t, availability.IsAvailable)
	assert.Equal(t, 0, f.reload(t, event.ID).TicketsSold)

	other := f.event(t, 10, "50")
	_, err = f.purchases.Register(ctx, bob, RegisterInput{EventID: other.ID, Quantity: 1, TicketTypeID: vip.ID})
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestMarkUsedAndVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 5, "10")
	ticket, err := f.purchases.PurchaseTicket(ctx, alice, PurchaseTicketInput{EventID: event.ID})
	require.NoError(t, err)

	verification, err := f.purchases.VerifyTicket(ctx, ticket.UniqueCode)
	require.NoError(t, err)
	assert.True(t, verification.IsValid)
	assert.Equal(t, event.ID, verification.Event.ID)

	used, err := f.purchases.MarkTicketUsed(ctx, organizer, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusUsed, used.Status)

	_, err = f.purchases.MarkTicketUsed(ctx, organizer, ticket.ID)
	assertCode(t, err, apperrors.CodeInvalidState)
	_, err = f.purchases.CancelTicket(ctx, alice, ticket.ID)
	assertCode(t, err, apperrors.CodeInvalidState)

	verification, err = f.purchases.VerifyTicket(ctx, ticket.UniqueCode)
	require.NoError(t, err)
	assert.False(t, verification.IsValid)

	_, err = f.purchases.VerifyTicket(ctx, "TICKET-unknown")
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestOwnerViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.event(t, 5, "10")
	second := f.event(t, 5, "10")

	ticket, err := f.purchases.PurchaseTicket(ctx, alice, PurchaseTicketInput{EventID: first.ID})
	require.NoError(t, err)
	_, err = f.purchases.Register(ctx, alice, RegisterInput{EventID: second.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = f.purchases.GetTicket(ctx, bob, ticket.ID)
	assertCode(t, err, apperrors.CodeAccessDenied)
	got, err := f.purchases.GetTicket(ctx, admin, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)

	tickets, err := f.purchases.ListMyTickets(ctx, alice, NormalizePage(0, 0))
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
	regs, err := f.purchases.ListMyRegistrations(ctx, alice, NormalizePage(0, 0))
	require.NoError(t, err)
	assert.Len(t, regs, 1)
	none, err := f.purchases.ListMyTickets(ctx, bob, NormalizePage(10, 0))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTicketHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.event(t, 5, "10")
	f.clock.Advance(time.Minute)
	second := f.event(t, 5, "20")

	old, err := f.purchases.PurchaseTicket(ctx, alice, PurchaseTicketInput{EventID: first.ID})
	require.NoError(t, err)
	_, err = f.purchases.CancelTicket(ctx, alice, old.ID)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	current, err := f.purchases.PurchaseTicket(ctx, alice, PurchaseTicketInput{EventID: second.ID})
	require.NoError(t, err)

	entries, total, err := f.purchases.History(ctx, alice, nil, NormalizePage(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, entries, 2)
	assert.Equal(t, current.ID, entries[0].Ticket.ID)
	require.NotNil(t, entries[0].Event)
	assert.Equal(t, second.Title, entries[0].Event.Title)

	cancelled := domain.TicketStatusCancelled
	entries, total, err = f.purchases.History(ctx, alice, &cancelled, NormalizePage(1, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, first.ID, entries[0].Event.ID)

	bogus := domain.TicketStatus("lost")
	_, _, err = f.purchases.History(ctx, alice, &bogus, NormalizePage(0, 0))
	assertCode(t, err, apperrors.CodeValidation)

	entries, total, err = f.purchases.History(ctx, bob, nil, NormalizePage(0, 0))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, entries)
}
