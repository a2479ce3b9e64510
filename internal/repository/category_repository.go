package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

const categoryColumns = `id, name, description, is_active, created_at, updated_at`

type categoryRepository struct {
	db Querier
}

// NewCategoryRepository returns a Postgres-backed implementation.
func NewCategoryRepository(db Querier) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	const query = `
        INSERT INTO categories (name, description, is_active)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		category.Name,
		category.Description,
		category.IsActive,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	return mapError(err)
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	return r.fetchSingle(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id=$1`, id)
}

func (r *categoryRepository) List(ctx context.Context, filter CategoryFilter) ([]domain.Category, int, error) {
	query := `SELECT ` + categoryColumns + `, COUNT(*) OVER() FROM categories
        WHERE ($1::boolean IS NULL OR is_active=$1) ORDER BY name ASC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, max(filter.Offset, 0))
	}
	rows, err := r.db.Query(ctx, query, filter.Active)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var (
		result []domain.Category
		total  int
	)
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(append(categoryDest(&category), &total)...); err != nil {
			return nil, 0, err
		}
		result = append(result, category)
	}
	return result, total, rows.Err()
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	const query = `
        UPDATE categories SET name=$2, description=$3, updated_at=NOW()
        WHERE id=$1
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query, category.ID, category.Name, category.Description).
		Scan(&category.UpdatedAt)
	return mapError(err)
}

func (r *categoryRepository) SetActive(ctx context.Context, id string, active bool) (*domain.Category, error) {
	return r.fetchSingle(ctx,
		`UPDATE categories SET is_active=$2, updated_at=NOW() WHERE id=$1 RETURNING `+categoryColumns,
		id, active)
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *categoryRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Category, error) {
	var category domain.Category
	if err := r.db.QueryRow(ctx, query, args...).Scan(categoryDest(&category)...); err != nil {
		return nil, mapError(err)
	}
	return &category, nil
}

func categoryDest(category *domain.Category) []any {
	return []any{
		&category.ID,
		&category.Name,
		&category.Description,
		&category.IsActive,
		&category.CreatedAt,
		&category.UpdatedAt,
	}
}
