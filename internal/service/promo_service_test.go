package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/repository"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util/errorutil"
)

func TestCreatePromo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := f.clock.Now()

	promo := f.promo(t, " spring ", domain.DiscountPercentage, "15", intPtr(10))
	assert.Equal(t, "SPRING", promo.Code)
	assert.True(t, promo.IsActive)
	require.NotNil(t, promo.CreatedBy)
	assert.Equal(t, admin.UserID, *promo.CreatedBy)

	_, err := f.promos.Create(ctx, admin, CreatePromoInput{
		Code: "Spring", DiscountType: domain.DiscountFixed, DiscountValue: dec("1"),
		ValidFrom: now, ValidUntil: now.Add(time.Hour),
	})
	assertCode(t, err, apperrors.CodeConflict)

	missing := "missing-event"
	invalid := []CreatePromoInput{
		{Code: "A", DiscountType: domain.DiscountPercentage, DiscountValue: dec("101"), ValidFrom: now, ValidUntil: now.Add(time.Hour)},
		{Code: "B", DiscountType: "bogus", DiscountValue: dec("5"), ValidFrom: now, ValidUntil: now.Add(time.Hour)},
		{Code: "C", DiscountType: domain.DiscountFixed, DiscountValue: dec("5"), ValidFrom: now, ValidUntil: now},
		{Code: "D", DiscountType: domain.DiscountFixed, DiscountValue: dec("5"), ValidFrom: now, ValidUntil: now.Add(time.Hour), MaxUses: intPtr(0)},
		{Code: "", DiscountType: domain.DiscountFixed, DiscountValue: dec("5"), ValidFrom: now, ValidUntil: now.Add(time.Hour)},
	}
	for _, input := range invalid {
		_, err := f.promos.Create(ctx, admin, input)
		assertCode(t, err, apperrors.CodeValidation)
	}

	_, err = f.promos.Create(ctx, admin, CreatePromoInput{
		Code: "SCOPED", DiscountType: domain.DiscountFixed, DiscountValue: dec("5"),
		EventID: &missing, ValidFrom: now, ValidUntil: now.Add(time.Hour),
	})
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestValidatePromo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 5, "10")
	promo := f.promo(t, "ONCE", domain.DiscountFixed, "5", intPtr(1))

	result, err := f.promos.Validate(ctx, "once", event.ID)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	require.NotNil(t, result.RemainingUses)
	assert.Equal(t, 1, *result.RemainingUses)

	_, err = f.purchases.PurchaseTicket(ctx, alice, PurchaseTicketInput{EventID: event.ID, PromoCode: "ONCE"})
	require.NoError(t, err)

	result, err = f.promos.Validate(ctx, "ONCE", "")
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{PromoMaxUses}, result.Errors)
	assert.Equal(t, 0, *result.RemainingUses)

	_, err = f.promos.Deactivate(ctx, promo.ID)
	require.NoError(t, err)
	result, err = f.promos.Validate(ctx, "ONCE", "")
	require.NoError(t, err)
	assert.Equal(t, []string{PromoInactive, PromoMaxUses}, result.Errors)

	_, err = f.promos.Validate(ctx, "GHOST", "")
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestListPromos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 5, "10")
	now := f.clock.Now()

	_, err := f.promos.Create(ctx, admin, CreatePromoInput{
		Code: "EVT", DiscountType: domain.DiscountFixed, DiscountValue: dec("5"),
		EventID: &event.ID, ValidFrom: now, ValidUntil: now.Add(time.Hour),
	})
	require.NoError(t, err)
	global := f.promo(t, "ALL", domain.DiscountFixed, "5", nil)
	_, err = f.promos.Deactivate(ctx, global.ID)
	require.NoError(t, err)

	all, err := f.promos.List(ctx, repository.PromoFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := f.promos.List(ctx, repository.PromoFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "EVT", active[0].Code)

	scoped, err := f.promos.List(ctx, repository.PromoFilter{EventID: &event.ID})
	require.NoError(t, err)
	assert.Len(t, scoped, 1)

	_, err = f.promos.Deactivate(ctx, "missing")
	assertCode(t, err, apperrors.CodeNotFound)
}
