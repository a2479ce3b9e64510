package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType selects how a promo code reduces the price.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// PromoCode is a discount token redeemable against one or all events.
type PromoCode struct {
	ID            string
	Code          string
	Description   string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	EventID       *string
	MaxUses       *int
	TimesUsed     int
	ValidFrom     time.Time
	ValidUntil    time.Time
	IsActive      bool
	CreatedBy     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RemainingUses returns nil for unlimited codes.
func (p *PromoCode) RemainingUses() *int {
	if p.MaxUses == nil {
		return nil
	}
	left := *p.MaxUses - p.TimesUsed
	if left < 0 {
		left = 0
	}
	return &left
}
