package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/repository"
)

type promoRepo struct{ base }

func (r *promoRepo) Create(_ context.Context, promo *domain.PromoCode) error {
	defer r.lock()()
	for _, existing := range r.data().promoCodes {
		if strings.EqualFold(existing.Code, promo.Code) {
			return repository.ErrDuplicate
		}
	}
	now := r.s.now()
	promo.ID = uuid.NewString()
	promo.TimesUsed = 0
	promo.CreatedAt = now
	promo.UpdatedAt = now
	r.data().promoCodes[promo.ID] = *promo
	return nil
}

func (r *promoRepo) GetByID(_ context.Context, id string) (*domain.PromoCode, error) {
	defer r.lock()()
	promo, ok := r.data().promoCodes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &promo, nil
}

func (r *promoRepo) GetByCode(_ context.Context, code string) (*domain.PromoCode, error) {
	defer r.lock()()
	for _, promo := range r.data().promoCodes {
		if strings.EqualFold(promo.Code, code) {
			return &promo, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *promoRepo) List(_ context.Context, filter repository.PromoFilter) ([]domain.PromoCode, error) {
	defer r.lock()()
	var result []domain.PromoCode
	for _, promo := range r.data().promoCodes {
		if filter.ActiveOnly && !promo.IsActive {
			continue
		}
		if filter.EventID != nil && (promo.EventID == nil || *promo.EventID != *filter.EventID) {
			continue
		}
		result = append(result, promo)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *promoRepo) Deactivate(_ context.Context, id string) (*domain.PromoCode, error) {
	defer r.lock()()
	promo, ok := r.data().promoCodes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	promo.IsActive = false
	promo.UpdatedAt = r.s.now()
	r.data().promoCodes[id] = promo
	return &promo, nil
}

func (r *promoRepo) Redeem(_ context.Context, id string) error {
	defer r.lock()()
	promo, ok := r.data().promoCodes[id]
	if !ok || !promo.IsActive {
		return repository.ErrPromoExhausted
	}
	if promo.MaxUses != nil && promo.TimesUsed >= *promo.MaxUses {
		return repository.ErrPromoExhausted
	}
	promo.TimesUsed++
	promo.UpdatedAt = r.s.now()
	r.data().promoCodes[id] = promo
	return nil
}
