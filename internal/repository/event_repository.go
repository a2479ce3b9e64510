package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

const eventColumns = `id, title, description, location, event_date, capacity, price, is_active, is_featured,
        organizer_id, category_id, tickets_sold, total_revenue, created_at, updated_at`

type eventRepository struct {
	db Querier
}

// NewEventRepository returns a Postgres-backed implementation.
func NewEventRepository(db Querier) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events (title, description, location, event_date, capacity, price, is_active, is_featured,
            organizer_id, category_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, tickets_sold, total_revenue, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.Location,
		event.EventDate,
		event.Capacity,
		event.Price,
		event.IsActive,
		event.IsFeatured,
		event.OrganizerID,
		event.CategoryID,
	).Scan(&event.ID, &event.TicketsSold, &event.TotalRevenue, &event.CreatedAt, &event.UpdatedAt)
	return mapError(err)
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	const query = `
        UPDATE events SET title=$2, description=$3, location=$4, event_date=$5, price=$6,
            is_featured=$7, category_id=$8, updated_at=NOW()
        WHERE id=$1
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Location,
		event.EventDate,
		event.Price,
		event.IsFeatured,
		event.CategoryID,
	).Scan(&event.UpdatedAt)
	return mapError(err)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.fetchSingle(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1`, id)
}

func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return r.fetchSingle(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1 FOR UPDATE`, id)
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]domain.Event, int, error) {
	query, args := buildEventListQuery(filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		result []domain.Event
		total  int
	)
	for rows.Next() {
		var event domain.Event
		dest := append(eventDest(&event), &total)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, err
		}
		result = append(result, event)
	}
	return result, total, rows.Err()
}

func buildEventListQuery(filter EventFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.ActiveOnly {
		clauses = append(clauses, "is_active")
	}
	if filter.FeaturedOnly {
		clauses = append(clauses, "is_featured")
	}
	if filter.StartsAfter != nil {
		clauses = append(clauses, "event_date > "+arg(*filter.StartsAfter))
	}
	if filter.DateFrom != nil {
		clauses = append(clauses, "event_date >= "+arg(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		clauses = append(clauses, "event_date <= "+arg(*filter.DateTo))
	}
	if filter.OrganizerID != nil {
		clauses = append(clauses, "organizer_id="+arg(*filter.OrganizerID))
	}
	if filter.CategoryID != nil {
		clauses = append(clauses, "category_id="+arg(*filter.CategoryID))
	}
	if filter.Location != nil && strings.TrimSpace(*filter.Location) != "" {
		clauses = append(clauses, "LOWER(location) LIKE "+arg("%"+strings.ToLower(strings.TrimSpace(*filter.Location))+"%"))
	}
	if filter.MinPrice != nil {
		clauses = append(clauses, "price >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		clauses = append(clauses, "price <= "+arg(*filter.MaxPrice))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		placeholder := arg("%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%")
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %[1]s OR LOWER(description) LIKE %[1]s OR LOWER(location) LIKE %[1]s)", placeholder))
	}

	order := "event_date ASC, id ASC"
	if filter.NewestFirst {
		order = "created_at DESC, id ASC"
	}
	query := fmt.Sprintf(`SELECT %s, COUNT(*) OVER() FROM events WHERE %s ORDER BY %s`,
		eventColumns, strings.Join(clauses, " AND "), order)
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}
	return query, args
}

func (r *eventRepository) SetActive(ctx context.Context, id string, active bool) (*domain.Event, error) {
	return r.fetchSingle(ctx,
		`UPDATE events SET is_active=$2, updated_at=NOW() WHERE id=$1 RETURNING `+eventColumns,
		id, active)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *eventRepository) ReserveSeats(ctx context.Context, id string, quantity int, amount decimal.Decimal) (*domain.Event, error) {
	const query = `
        UPDATE events
        SET tickets_sold = tickets_sold + $2, total_revenue = total_revenue + $3, updated_at = NOW()
        WHERE id = $1 AND tickets_sold + $2 <= capacity
        RETURNING ` + eventColumns
	event, err := r.fetchSingle(ctx, query, id, quantity, amount)
	if errors.Is(err, ErrNotFound) {
		// zero rows: either the event is missing or the guard rejected
		if _, lookupErr := r.GetByID(ctx, id); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, ErrSoldOut
	}
	return event, err
}

func (r *eventRepository) ReleaseSeats(ctx context.Context, id string, quantity int, amount decimal.Decimal) (*domain.Event, error) {
	const query = `
        UPDATE events
        SET tickets_sold = GREATEST(tickets_sold - $2, 0),
            total_revenue = GREATEST(total_revenue - $3, 0),
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + eventColumns
	return r.fetchSingle(ctx, query, id, quantity, amount)
}

func (r *eventRepository) SetSales(ctx context.Context, id string, sold int, revenue decimal.Decimal) (*domain.Event, error) {
	const query = `
        UPDATE events SET tickets_sold = $2, total_revenue = $3, updated_at = NOW()
        WHERE id = $1
        RETURNING ` + eventColumns
	return r.fetchSingle(ctx, query, id, sold, revenue)
}

func (r *eventRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM events WHERE category_id=$1`, categoryID).Scan(&count)
	return count, mapError(err)
}

func (r *eventRepository) Summary(ctx context.Context, now time.Time) (EventSummary, error) {
	summary := EventSummary{ByCategory: map[string]int{}}
	err := r.db.QueryRow(ctx, `
        SELECT COUNT(*), COUNT(*) FILTER (WHERE event_date > $1), COALESCE(SUM(total_revenue), 0)
        FROM events`, now,
	).Scan(&summary.Total, &summary.Upcoming, &summary.Revenue)
	if err != nil {
		return EventSummary{}, mapError(err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT category_id, COUNT(*) FROM events WHERE category_id IS NOT NULL GROUP BY category_id`)
	if err != nil {
		return EventSummary{}, mapError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			categoryID string
			count      int
		)
		if err := rows.Scan(&categoryID, &count); err != nil {
			return EventSummary{}, err
		}
		summary.ByCategory[categoryID] = count
	}
	return summary, rows.Err()
}

func (r *eventRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Event, error) {
	var event domain.Event
	if err := r.db.QueryRow(ctx, query, args...).Scan(eventDest(&event)...); err != nil {
		return nil, mapError(err)
	}
	return &event, nil
}

func eventDest(event *domain.Event) []any {
	return []any{
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.EventDate,
		&event.Capacity,
		&event.Price,
		&event.IsActive,
		&event.IsFeatured,
		&event.OrganizerID,
		&event.CategoryID,
		&event.TicketsSold,
		&event.TotalRevenue,
		&event.CreatedAt,
		&event.UpdatedAt,
	}
}
