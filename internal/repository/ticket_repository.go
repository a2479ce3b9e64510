package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

const ticketColumns = `id, unique_code, user_id, event_id, status, price, discount_amount, promo_code_id,
        purchase_date, created_at, updated_at`

type ticketRepository struct {
	db Querier
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db Querier) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (unique_code, user_id, event_id, status, price, discount_amount, promo_code_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, purchase_date, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		ticket.UniqueCode,
		ticket.UserID,
		ticket.EventID,
		ticket.Status,
		ticket.Price,
		ticket.DiscountAmount,
		ticket.PromoCodeID,
	).Scan(&ticket.ID, &ticket.PurchaseDate, &ticket.CreatedAt, &ticket.UpdatedAt)
	return mapError(err)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
}

func (r *ticketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE unique_code=$1`, code)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, from, to domain.TicketStatus) (*domain.Ticket, error) {
	const query = `
        UPDATE tickets SET status=$3, updated_at=NOW()
        WHERE id=$1 AND status=$2
        RETURNING ` + ticketColumns
	ticket, err := r.fetchSingle(ctx, query, id, from, to)
	if errors.Is(err, ErrNotFound) {
		if _, lookupErr := r.GetByID(ctx, id); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, ErrStateChanged
	}
	return ticket, err
}

func (r *ticketRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE user_id=$1
        ORDER BY purchase_date DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) HasActive(ctx context.Context, userID, eventID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM tickets WHERE user_id=$1 AND event_id=$2 AND status='active')`,
		userID, eventID,
	).Scan(&exists)
	return exists, mapError(err)
}

func (r *ticketRepository) CountByStatus(ctx context.Context, eventID string) (map[domain.TicketStatus]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(*) FROM tickets WHERE event_id=$1 GROUP BY status`, eventID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	counts := map[domain.TicketStatus]int{}
	for rows.Next() {
		var (
			status domain.TicketStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *ticketRepository) ListHistory(ctx context.Context, userID string, status *domain.TicketStatus, limit, offset int) ([]domain.Ticket, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var statusArg *string
	if status != nil {
		value := string(*status)
		statusArg = &value
	}
	const query = `SELECT ` + ticketColumns + `, COUNT(*) OVER() FROM tickets
        WHERE user_id=$1 AND ($2::text IS NULL OR status=$2)
        ORDER BY purchase_date DESC, id ASC LIMIT $3 OFFSET $4`
	rows, err := r.db.Query(ctx, query, userID, statusArg, limit, offset)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var (
		result []domain.Ticket
		total  int
	)
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(append(ticketDest(&ticket), &total)...); err != nil {
			return nil, 0, err
		}
		result = append(result, ticket)
	}
	return result, total, rows.Err()
}

func (r *ticketRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE user_id=$1`, userID).Scan(&count)
	return count, mapError(err)
}

func (r *ticketRepository) Summary(ctx context.Context) (TicketSummary, error) {
	var summary TicketSummary
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE status='active') FROM tickets`,
	).Scan(&summary.Total, &summary.Active)
	return summary, mapError(err)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.db.QueryRow(ctx, query, args...).Scan(ticketDest(&ticket)...); err != nil {
		return nil, mapError(err)
	}
	return &ticket, nil
}

func ticketDest(ticket *domain.Ticket) []any {
	return []any{
		&ticket.ID,
		&ticket.UniqueCode,
		&ticket.UserID,
		&ticket.EventID,
		&ticket.Status,
		&ticket.Price,
		&ticket.DiscountAmount,
		&ticket.PromoCodeID,
		&ticket.PurchaseDate,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	}
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(ticketDest(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
