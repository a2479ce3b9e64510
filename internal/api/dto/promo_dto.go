package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

// CreatePromoRequest payload.
type CreatePromoRequest struct {
	Code          string              `json:"code"`
	Description   string              `json:"description"`
	DiscountType  domain.DiscountType `json:"discount_type"`
	DiscountValue decimal.Decimal     `json:"discount_value"`
	EventID       *string             `json:"event_id"`
	MaxUses       *int                `json:"max_uses"`
	ValidFrom     time.Time           `json:"valid_from"`
	ValidUntil    time.Time           `json:"valid_until"`
}

// PromoResponse is the admin view of a promo code.
type PromoResponse struct {
	ID            string              `json:"id"`
	Code          string              `json:"code"`
	Description   string              `json:"description"`
	DiscountType  domain.DiscountType `json:"discount_type"`
	DiscountValue string              `json:"discount_value"`
	EventID       *string             `json:"event_id"`
	MaxUses       *int                `json:"max_uses"`
	TimesUsed     int                 `json:"times_used"`
	ValidFrom     time.Time           `json:"valid_from"`
	ValidUntil    time.Time           `json:"valid_until"`
	IsActive      bool                `json:"is_active"`
	CreatedBy     *string             `json:"created_by"`
	CreatedAt     time.Time           `json:"created_at"`
}

// PromoValidationResponse lists every violation of a code.
type PromoValidationResponse struct {
	Code          string              `json:"code"`
	IsValid       bool                `json:"is_valid"`
	DiscountType  domain.DiscountType `json:"discount_type"`
	DiscountValue string              `json:"discount_value"`
	Errors        []string            `json:"errors"`
	RemainingUses *int                `json:"remaining_uses"`
}
