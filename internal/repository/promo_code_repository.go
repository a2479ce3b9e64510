package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

const promoColumns = `id, code, description, discount_type, discount_value, event_id, max_uses, times_used,
        valid_from, valid_until, is_active, created_by, created_at, updated_at`

type promoCodeRepository struct {
	db Querier
}

// NewPromoCodeRepository instantiates repository.
func NewPromoCodeRepository(db Querier) PromoCodeRepository {
	return &promoCodeRepository{db: db}
}

func (r *promoCodeRepository) Create(ctx context.Context, promo *domain.PromoCode) error {
	const query = `
        INSERT INTO promo_codes (code, description, discount_type, discount_value, event_id, max_uses,
            valid_from, valid_until, is_active, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, times_used, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		promo.Code,
		promo.Description,
		promo.DiscountType,
		promo.DiscountValue,
		promo.EventID,
		promo.MaxUses,
		promo.ValidFrom,
		promo.ValidUntil,
		promo.IsActive,
		promo.CreatedBy,
	).Scan(&promo.ID, &promo.TimesUsed, &promo.CreatedAt, &promo.UpdatedAt)
	return mapError(err)
}

func (r *promoCodeRepository) GetByID(ctx context.Context, id string) (*domain.PromoCode, error) {
	return r.fetchSingle(ctx, `SELECT `+promoColumns+` FROM promo_codes WHERE id=$1`, id)
}

func (r *promoCodeRepository) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	return r.fetchSingle(ctx, `SELECT `+promoColumns+` FROM promo_codes WHERE code=$1`, strings.ToUpper(code))
}

func (r *promoCodeRepository) List(ctx context.Context, filter PromoFilter) ([]domain.PromoCode, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.EventID != nil {
		args = append(args, *filter.EventID)
		clauses = append(clauses, fmt.Sprintf("event_id=$%d", len(args)))
	}
	if filter.ActiveOnly {
		clauses = append(clauses, "is_active")
	}

	query := fmt.Sprintf(`SELECT %s FROM promo_codes WHERE %s ORDER BY created_at DESC`,
		promoColumns, strings.Join(clauses, " AND "))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.PromoCode
	for rows.Next() {
		var promo domain.PromoCode
		if err := rows.Scan(promoDest(&promo)...); err != nil {
			return nil, err
		}
		result = append(result, promo)
	}
	return result, rows.Err()
}

func (r *promoCodeRepository) Deactivate(ctx context.Context, id string) (*domain.PromoCode, error) {
	return r.fetchSingle(ctx,
		`UPDATE promo_codes SET is_active=FALSE, updated_at=NOW() WHERE id=$1 RETURNING `+promoColumns, id)
}

func (r *promoCodeRepository) Redeem(ctx context.Context, id string) error {
	const query = `
        UPDATE promo_codes SET times_used = times_used + 1, updated_at = NOW()
        WHERE id = $1 AND is_active AND (max_uses IS NULL OR times_used < max_uses)`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrPromoExhausted
	}
	return nil
}

func (r *promoCodeRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.PromoCode, error) {
	var promo domain.PromoCode
	if err := r.db.QueryRow(ctx, query, args...).Scan(promoDest(&promo)...); err != nil {
		return nil, mapError(err)
	}
	return &promo, nil
}

func promoDest(promo *domain.PromoCode) []any {
	return []any{
		&promo.ID,
		&promo.Code,
		&promo.Description,
		&promo.DiscountType,
		&promo.DiscountValue,
		&promo.EventID,
		&promo.MaxUses,
		&promo.TimesUsed,
		&promo.ValidFrom,
		&promo.ValidUntil,
		&promo.IsActive,
		&promo.CreatedBy,
		&promo.CreatedAt,
		&promo.UpdatedAt,
	}
}
