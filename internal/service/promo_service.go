package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/repository"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util/errorutil"
)

// CreatePromoInput carries an admin-defined promo code.
type CreatePromoInput struct {
	Code          string
	Description   string
	DiscountType  domain.DiscountType
	DiscountValue decimal.Decimal
	EventID       *string
	MaxUses       *int
	ValidFrom     time.Time
	ValidUntil    time.Time
}

// PromoValidation is the read-only answer for a code, listing every violation.
type PromoValidation struct {
	Promo         *domain.PromoCode
	IsValid       bool
	Errors        []string
	RemainingUses *int
}

// PromoService manages promo codes.
type PromoService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewPromoService constructs the service.
func NewPromoService(deps Dependencies) *PromoService {
	deps = deps.withDefaults()
	return &PromoService{store: deps.Store, logger: deps.Logger, now: deps.Now}
}

// Validate checks a code without redeeming it. eventID may be empty.
func (s *PromoService) Validate(ctx context.Context, code, eventID string) (result *PromoValidation, err error) {
	ctx, span, finish := startSpan(ctx, "PromoService.Validate")
	defer finish(&err)
	span.SetAttributes(attribute.String("promo.code", strings.ToUpper(code)))

	promo, err := s.store.Repos().PromoCodes.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, notFound(err, "promo code", code)
	}
	violations := PromoViolations(promo, strings.TrimSpace(eventID), s.now())
	return &PromoValidation{
		Promo:         promo,
		IsValid:       len(violations) == 0,
		Errors:        violations,
		RemainingUses: promo.RemainingUses(),
	}, nil
}

// Create stores a new code, upper-cased.
func (s *PromoService) Create(ctx context.Context, actor Actor, input CreatePromoInput) (*domain.PromoCode, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))

	details := map[string]any{}
	if code == "" {
		details["code"] = "required"
	}
	switch input.DiscountType {
	case domain.DiscountPercentage:
		if input.DiscountValue.GreaterThan(hundred) {
			details["discount_value"] = "percentage cannot exceed 100"
		}
	case domain.DiscountFixed:
	default:
		details["discount_type"] = "must be percentage or fixed"
	}
	if !input.DiscountValue.IsPositive() {
		details["discount_value"] = "must be positive"
	}
	if input.ValidFrom.IsZero() || input.ValidUntil.IsZero() {
		details["valid_from"] = "valid_from and valid_until are required"
	} else if !input.ValidUntil.After(input.ValidFrom) {
		details["valid_until"] = "must be after valid_from"
	}
	if input.MaxUses != nil && *input.MaxUses < 1 {
		details["max_uses"] = "must be at least 1"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid promo code", details)
	}

	repos := s.store.Repos()
	var scope *string
	if input.EventID != nil && strings.TrimSpace(*input.EventID) != "" {
		id := strings.TrimSpace(*input.EventID)
		if _, err := repos.Events.GetByID(ctx, id); err != nil {
			return nil, notFound(err, "event", id)
		}
		scope = &id
	}

	creator := actor.UserID
	promo := &domain.PromoCode{
		Code:          code,
		Description:   strings.TrimSpace(input.Description),
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue.Round(2),
		EventID:       scope,
		MaxUses:       input.MaxUses,
		ValidFrom:     input.ValidFrom.UTC(),
		ValidUntil:    input.ValidUntil.UTC(),
		IsActive:      true,
		CreatedBy:     &creator,
	}
	if err := repos.PromoCodes.Create(ctx, promo); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("promo code already exists", map[string]any{"code": code})
		}
		return nil, internal(err)
	}
	s.logger.Info("promo code created", zap.String("promo_id", promo.ID), zap.String("code", promo.Code))
	return promo, nil
}

// List returns codes, newest first.
func (s *PromoService) List(ctx context.Context, filter repository.PromoFilter) ([]domain.PromoCode, error) {
	promos, err := s.store.Repos().PromoCodes.List(ctx, filter)
	if err != nil {
		return nil, internal(err)
	}
	return promos, nil
}

// Get returns a code by id.
func (s *PromoService) Get(ctx context.Context, id string) (*domain.PromoCode, error) {
	promo, err := s.store.Repos().PromoCodes.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "promo code", id)
	}
	return promo, nil
}

// Deactivate stops a code from being redeemed. times_used is kept.
func (s *PromoService) Deactivate(ctx context.Context, id string) (*domain.PromoCode, error) {
	promo, err := s.store.Repos().PromoCodes.Deactivate(ctx, id)
	if err != nil {
		return nil, notFound(err, "promo code", id)
	}
	return promo, nil
}
