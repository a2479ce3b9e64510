package repository

import (
	"context"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

const ticketTypeColumns = `id, event_id, name, description, price, quantity_available, quantity_sold,
        is_active, sort_order, created_at, updated_at`

type ticketTypeRepository struct {
	db Querier
}

// NewTicketTypeRepository instantiates repository.
func NewTicketTypeRepository(db Querier) TicketTypeRepository {
	return &ticketTypeRepository{db: db}
}

func (r *ticketTypeRepository) Create(ctx context.Context, tt *domain.TicketType) error {
	const query = `
        INSERT INTO ticket_types (event_id, name, description, price, quantity_available, is_active, sort_order)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, quantity_sold, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		tt.EventID,
		tt.Name,
		tt.Description,
		tt.Price,
		tt.QuantityAvailable,
		tt.IsActive,
		tt.SortOrder,
	).Scan(&tt.ID, &tt.QuantitySold, &tt.CreatedAt, &tt.UpdatedAt)
	return mapError(err)
}

func (r *ticketTypeRepository) GetByID(ctx context.Context, id string) (*domain.TicketType, error) {
	var tt domain.TicketType
	err := r.db.QueryRow(ctx, `SELECT `+ticketTypeColumns+` FROM ticket_types WHERE id=$1`, id).
		Scan(ticketTypeDest(&tt)...)
	if err != nil {
		return nil, mapError(err)
	}
	return &tt, nil
}

func (r *ticketTypeRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.TicketType, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+ticketTypeColumns+` FROM ticket_types WHERE event_id=$1 ORDER BY sort_order, name`, eventID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.TicketType
	for rows.Next() {
		var tt domain.TicketType
		if err := rows.Scan(ticketTypeDest(&tt)...); err != nil {
			return nil, err
		}
		result = append(result, tt)
	}
	return result, rows.Err()
}

func (r *ticketTypeRepository) Reserve(ctx context.Context, id string, quantity int) error {
	const query = `
        UPDATE ticket_types SET quantity_sold = quantity_sold + $2, updated_at = NOW()
        WHERE id = $1 AND quantity_sold + $2 <= quantity_available`
	cmd, err := r.db.Exec(ctx, query, id, quantity)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		if _, lookupErr := r.GetByID(ctx, id); lookupErr != nil {
			return lookupErr
		}
		return ErrSoldOut
	}
	return nil
}

func (r *ticketTypeRepository) Release(ctx context.Context, id string, quantity int) error {
	const query = `
        UPDATE ticket_types SET quantity_sold = GREATEST(quantity_sold - $2, 0), updated_at = NOW()
        WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id, quantity)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func ticketTypeDest(tt *domain.TicketType) []any {
	return []any{
		&tt.ID,
		&tt.EventID,
		&tt.Name,
		&tt.Description,
		&tt.Price,
		&tt.QuantityAvailable,
		&tt.QuantitySold,
		&tt.IsActive,
		&tt.SortOrder,
		&tt.CreatedAt,
		&tt.UpdatedAt,
	}
}
