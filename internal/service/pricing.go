package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Promo violation messages, returned together when several apply.
const (
	PromoNotFound    = "Promo code not found"
	PromoInactive    = "Promo code is inactive"
	PromoNotYetValid = "Promo code is not yet valid"
	PromoExpired     = "Promo code has expired"
	PromoMaxUses     = "Promo code has reached maximum uses"
	PromoWrongEvent  = "Promo code is not valid for this event"
)

// PromoViolations lists every reason promo cannot be applied at now. The
// event scope is checked only when eventID is non-empty.
func PromoViolations(promo *domain.PromoCode, eventID string, now time.Time) []string {
	violations := []string{}
	if !promo.IsActive {
		violations = append(violations, PromoInactive)
	}
	if now.Before(promo.ValidFrom) {
		violations = append(violations, PromoNotYetValid)
	}
	if now.After(promo.ValidUntil) {
		violations = append(violations, PromoExpired)
	}
	if promo.MaxUses != nil && promo.TimesUsed >= *promo.MaxUses {
		violations = append(violations, PromoMaxUses)
	}
	if eventID != "" && promo.EventID != nil && *promo.EventID != eventID {
		violations = append(violations, PromoWrongEvent)
	}
	return violations
}

// Discount computes the reduction promo grants on subtotal. It never exceeds
// the subtotal.
func Discount(promo *domain.PromoCode, subtotal decimal.Decimal) decimal.Decimal {
	if promo == nil || !subtotal.IsPositive() {
		return decimal.Zero
	}
	var discount decimal.Decimal
	switch promo.DiscountType {
	case domain.DiscountPercentage:
		discount = promo.DiscountValue.Mul(subtotal).Div(hundred)
	case domain.DiscountFixed:
		discount = promo.DiscountValue
	default:
		return decimal.Zero
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(discount, subtotal).Round(2)
}

// Quote is the priced breakdown of a checkout.
type Quote struct {
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Final     decimal.Decimal
}

// PriceCheckout prices quantity units at unitPrice with an optional promo.
// The final amount is clamped at zero and rounded to cents.
func PriceCheckout(unitPrice decimal.Decimal, quantity int, promo *domain.PromoCode) Quote {
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
	discount := Discount(promo, subtotal)
	final := subtotal.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}
	return Quote{
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  subtotal,
		Discount:  discount,
		Final:     final.Round(2),
	}
}
