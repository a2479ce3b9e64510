package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/repository"
)

func seedEvent(t *testing.T, s *Store, capacity int) *domain.Event {
	t.Helper()
	event := &domain.Event{
		Title:     "Gig",
		Location:  "Hall",
		EventDate: time.Now().Add(48 * time.Hour),
		Capacity:  capacity,
		Price:     decimal.NewFromInt(10),
		IsActive:  true,
	}
	require.NoError(t, s.Repos().Events.Create(context.Background(), event))
	return event
}

func TestReserveSeatsRespectsCapacity(t *testing.T) {
	s := NewStore()
	event := seedEvent(t, s, 2)
	events := s.Repos().Events
	ctx := context.Background()

	_, err := events.ReserveSeats(ctx, event.ID, 2, decimal.NewFromInt(20))
	require.NoError(t, err)

	_, err = events.ReserveSeats(ctx, event.ID, 1, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, repository.ErrSoldOut)

	_, err = events.ReserveSeats(ctx, "missing", 1, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReleaseSeatsClampsAtZero(t *testing.T) {
	s := NewStore()
	event := seedEvent(t, s, 5)
	events := s.Repos().Events
	ctx := context.Background()

	_, err := events.ReserveSeats(ctx, event.ID, 1, decimal.NewFromInt(10))
	require.NoError(t, err)

	updated, err := events.ReleaseSeats(ctx, event.ID, 3, decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.Equal(t, 0, updated.TicketsSold)
	assert.True(t, updated.TotalRevenue.IsZero())
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := NewStore()
	event := seedEvent(t, s, 5)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Events.ReserveSeats(ctx, event.ID, 3, decimal.NewFromInt(30)); err != nil {
			return err
		}
		if err := repos.Tickets.Create(ctx, &domain.Ticket{UniqueCode: "T-1", UserID: "u", EventID: event.ID, Status: domain.TicketStatusActive}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	reloaded, err := s.Repos().Events.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.TicketsSold)

	has, err := s.Repos().Tickets.HasActive(ctx, "u", event.ID)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestConcurrentReservationsNeverOversell(t *testing.T) {
	s := NewStore()
	event := seedEvent(t, s, 5)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Repos().Events.ReserveSeats(ctx, event.ID, 1, decimal.NewFromInt(10)); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	reloaded, err := s.Repos().Events.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, success)
	assert.Equal(t, 5, reloaded.TicketsSold)
	assert.True(t, decimal.NewFromInt(50).Equal(reloaded.TotalRevenue))
}

func TestRedeemStopsAtMaxUses(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	maxUses := 1
	promo := &domain.PromoCode{Code: "SAVE", DiscountType: domain.DiscountFixed, DiscountValue: decimal.NewFromInt(5), MaxUses: &maxUses, IsActive: true}
	require.NoError(t, s.Repos().PromoCodes.Create(ctx, promo))

	require.NoError(t, s.Repos().PromoCodes.Redeem(ctx, promo.ID))
	assert.ErrorIs(t, s.Repos().PromoCodes.Redeem(ctx, promo.ID), repository.ErrPromoExhausted)

	dup := &domain.PromoCode{Code: "save", DiscountType: domain.DiscountFixed, IsActive: true}
	assert.ErrorIs(t, s.Repos().PromoCodes.Create(ctx, dup), repository.ErrDuplicate)
}

func TestOneActiveTicketPerUserAndEvent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	tickets := s.Repos().Tickets

	first := &domain.Ticket{UniqueCode: "A", UserID: "u", EventID: "e", Status: domain.TicketStatusActive}
	require.NoError(t, tickets.Create(ctx, first))
	assert.ErrorIs(t, tickets.Create(ctx, &domain.Ticket{UniqueCode: "B", UserID: "u", EventID: "e", Status: domain.TicketStatusActive}), repository.ErrDuplicate)

	_, err := tickets.UpdateStatus(ctx, first.ID, domain.TicketStatusActive, domain.TicketStatusCancelled)
	require.NoError(t, err)
	_, err = tickets.UpdateStatus(ctx, first.ID, domain.TicketStatusActive, domain.TicketStatusCancelled)
	assert.ErrorIs(t, err, repository.ErrStateChanged)

	assert.NoError(t, tickets.Create(ctx, &domain.Ticket{UniqueCode: "C", UserID: "u", EventID: "e", Status: domain.TicketStatusActive}))
}

func TestListEventsFiltersAndPaginates(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		seedEvent(t, s, 10)
	}
	inactive := seedEvent(t, s, 10)
	_, err := s.Repos().Events.SetActive(ctx, inactive.ID, false)
	require.NoError(t, err)

	page, total, err := s.Repos().Events.List(ctx, repository.EventFilter{ActiveOnly: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 2)
}

func TestListEventsByCategoryPriceAndLocation(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repos := s.Repos()

	music := &domain.Category{Name: "Music", IsActive: true}
	require.NoError(t, repos.Categories.Create(ctx, music))

	cheap := seedEvent(t, s, 10)
	cheap.CategoryID = &music.ID
	cheap.Location = "Riverside Hall"
	cheap.IsFeatured = true
	require.NoError(t, repos.Events.Update(ctx, cheap))

	pricey := seedEvent(t, s, 10)
	pricey.Price = decimal.NewFromInt(80)
	pricey.CategoryID = &music.ID
	require.NoError(t, repos.Events.Update(ctx, pricey))

	seedEvent(t, s, 10)

	byCategory, total, err := repos.Events.List(ctx, repository.EventFilter{CategoryID: &music.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, byCategory, 2)

	maxPrice := decimal.NewFromInt(50)
	_, total, err = repos.Events.List(ctx, repository.EventFilter{CategoryID: &music.ID, MaxPrice: &maxPrice})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	minPrice := decimal.NewFromInt(50)
	expensive, _, err := repos.Events.List(ctx, repository.EventFilter{MinPrice: &minPrice})
	require.NoError(t, err)
	require.Len(t, expensive, 1)
	assert.Equal(t, pricey.ID, expensive[0].ID)

	location := "riverside"
	byLocation, _, err := repos.Events.List(ctx, repository.EventFilter{Location: &location})
	require.NoError(t, err)
	require.Len(t, byLocation, 1)
	assert.Equal(t, cheap.ID, byLocation[0].ID)

	featured, _, err := repos.Events.List(ctx, repository.EventFilter{FeaturedOnly: true})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, cheap.ID, featured[0].ID)

	count, err := repos.Events.CountByCategory(ctx, music.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCategoryNamesAreUniqueAndDeleteIsGuarded(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	categories := s.Repos().Categories

	sports := &domain.Category{Name: "Sports", IsActive: true}
	require.NoError(t, categories.Create(ctx, sports))
	assert.ErrorIs(t, categories.Create(ctx, &domain.Category{Name: "sports"}), repository.ErrDuplicate)

	event := seedEvent(t, s, 5)
	event.CategoryID = &sports.ID
	require.NoError(t, s.Repos().Events.Update(ctx, event))

	assert.ErrorIs(t, categories.Delete(ctx, sports.ID), repository.ErrInUse)

	event.CategoryID = nil
	require.NoError(t, s.Repos().Events.Update(ctx, event))
	require.NoError(t, categories.Delete(ctx, sports.ID))
	assert.ErrorIs(t, categories.Delete(ctx, sports.ID), repository.ErrNotFound)
}

func TestUserListFiltersAndDeleteGuard(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	users := s.Repos().Users

	ann := &domain.User{Name: "Ann", Email: "ann@example.com", Role: domain.RoleUser, Status: domain.UserStatusActive}
	org := &domain.User{Name: "Olli", Email: "olli@example.com", Role: domain.RoleOrganizer, Status: domain.UserStatusActive}
	require.NoError(t, users.Create(ctx, ann))
	require.NoError(t, users.Create(ctx, org))

	role := domain.RoleOrganizer
	listed, total, err := users.List(ctx, repository.UserFilter{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, org.ID, listed[0].ID)

	search := "ANN@"
	listed, _, err = users.List(ctx, repository.UserFilter{Search: &search})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, ann.ID, listed[0].ID)

	suspended, err := users.SetStatus(ctx, ann.ID, domain.UserStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusSuspended, suspended.Status)

	event := seedEvent(t, s, 5)
	event.OrganizerID = &org.ID
	s.st.events[event.ID] = *event
	assert.ErrorIs(t, users.Delete(ctx, org.ID), repository.ErrInUse)

	require.NoError(t, users.Delete(ctx, ann.ID))
	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTicketHistoryAndSummary(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	tickets := s.Repos().Tickets
	first := seedEvent(t, s, 5)
	second := seedEvent(t, s, 5)

	for i, eventID := range []string{first.ID, second.ID} {
		ticket := &domain.Ticket{
			UniqueCode: "TKT-" + eventID,
			UserID:     "u1",
			EventID:    eventID,
			Status:     domain.TicketStatusActive,
			Price:      decimal.NewFromInt(int64(10 * (i + 1))),
		}
		require.NoError(t, tickets.Create(ctx, ticket))
		if i == 0 {
			_, err := tickets.UpdateStatus(ctx, ticket.ID, domain.TicketStatusActive, domain.TicketStatusCancelled)
			require.NoError(t, err)
		}
	}

	status := domain.TicketStatusCancelled
	history, total, err := tickets.ListHistory(ctx, "u1", &status, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, first.ID, history[0].EventID)

	_, total, err = tickets.ListHistory(ctx, "u1", nil, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	summary, err := tickets.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, repository.TicketSummary{Total: 2, Active: 1}, summary)
}
