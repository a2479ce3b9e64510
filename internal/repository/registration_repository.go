package repository

import (
	"context"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

const registrationColumns = `id, user_id, event_id, ticket_type_id, promo_code_id, quantity, unit_price,
        total_price, discount_amount, final_price, payment_status, registered_at`

type registrationRepository struct {
	db Querier
}

// NewRegistrationRepository instantiates repository.
func NewRegistrationRepository(db Querier) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	const query = `
        INSERT INTO registrations (user_id, event_id, ticket_type_id, promo_code_id, quantity, unit_price,
            total_price, discount_amount, final_price, payment_status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, registered_at`
	err := r.db.QueryRow(ctx, query,
		reg.UserID,
		reg.EventID,
		reg.TicketTypeID,
		reg.PromoCodeID,
		reg.Quantity,
		reg.UnitPrice,
		reg.TotalPrice,
		reg.DiscountAmount,
		reg.FinalPrice,
		reg.PaymentStatus,
	).Scan(&reg.ID, &reg.RegisteredAt)
	return mapError(err)
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	var reg domain.Registration
	err := r.db.QueryRow(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE id=$1`, id).
		Scan(registrationDest(&reg)...)
	if err != nil {
		return nil, mapError(err)
	}
	return &reg, nil
}

func (r *registrationRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM registrations WHERE id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *registrationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Registration, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT ` + registrationColumns + ` FROM registrations WHERE user_id=$1
        ORDER BY registered_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *registrationRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.Registration, error) {
	const query = `SELECT ` + registrationColumns + ` FROM registrations WHERE event_id=$1
        ORDER BY registered_at ASC`
	return r.list(ctx, query, eventID)
}

func (r *registrationRepository) list(ctx context.Context, query string, args ...any) ([]domain.Registration, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.Registration
	for rows.Next() {
		var reg domain.Registration
		if err := rows.Scan(registrationDest(&reg)...); err != nil {
			return nil, err
		}
		result = append(result, reg)
	}
	return result, rows.Err()
}

func (r *registrationRepository) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM registrations WHERE user_id=$1 AND event_id=$2)`,
		userID, eventID,
	).Scan(&exists)
	return exists, mapError(err)
}

func (r *registrationRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id=$1`, eventID).Scan(&count)
	return count, mapError(err)
}

func (r *registrationRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM registrations WHERE user_id=$1`, userID).Scan(&count)
	return count, mapError(err)
}

func registrationDest(reg *domain.Registration) []any {
	return []any{
		&reg.ID,
		&reg.UserID,
		&reg.EventID,
		&reg.TicketTypeID,
		&reg.PromoCodeID,
		&reg.Quantity,
		&reg.UnitPrice,
		&reg.TotalPrice,
		&reg.DiscountAmount,
		&reg.FinalPrice,
		&reg.PaymentStatus,
		&reg.RegisteredAt,
	}
}
