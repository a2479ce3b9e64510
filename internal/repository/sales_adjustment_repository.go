package repository

import (
	"context"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

type salesAdjustmentRepository struct {
	db Querier
}

// NewSalesAdjustmentRepository builds repository.
func NewSalesAdjustmentRepository(db Querier) SalesAdjustmentRepository {
	return &salesAdjustmentRepository{db: db}
}

func (r *salesAdjustmentRepository) Create(ctx context.Context, adj *domain.SalesAdjustment) error {
	const query = `
        INSERT INTO sales_adjustments (event_id, actor_id, kind, old_sold, new_sold, old_revenue, new_revenue)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		adj.EventID,
		adj.ActorID,
		adj.Kind,
		adj.OldSold,
		adj.NewSold,
		adj.OldRevenue,
		adj.NewRevenue,
	).Scan(&adj.ID, &adj.CreatedAt)
	return mapError(err)
}

func (r *salesAdjustmentRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.SalesAdjustment, error) {
	const query = `
        SELECT id, event_id, actor_id, kind, old_sold, new_sold, old_revenue, new_revenue, created_at
        FROM sales_adjustments WHERE event_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.SalesAdjustment
	for rows.Next() {
		var adj domain.SalesAdjustment
		if err := rows.Scan(
			&adj.ID,
			&adj.EventID,
			&adj.ActorID,
			&adj.Kind,
			&adj.OldSold,
			&adj.NewSold,
			&adj.OldRevenue,
			&adj.NewRevenue,
			&adj.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, adj)
	}
	return result, rows.Err()
}
