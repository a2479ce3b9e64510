package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

const userColumns = `id, name, email, password_hash, role, status, created_at, updated_at`

type userRepository struct {
	db Querier
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db Querier) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Status,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapError(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + ` FROM users WHERE LOWER(email)=LOWER($1)`
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.Search))+"%")
		clauses = append(clauses, fmt.Sprintf("(LOWER(name) LIKE $%[1]d OR LOWER(email) LIKE $%[1]d)", len(args)))
	}

	query := `SELECT ` + userColumns + `, COUNT(*) OVER() FROM users WHERE ` +
		strings.Join(clauses, " AND ") + ` ORDER BY created_at DESC, id ASC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, max(filter.Offset, 0))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var (
		result []domain.User
		total  int
	)
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(append(userDest(&user), &total)...); err != nil {
			return nil, 0, err
		}
		result = append(result, user)
	}
	return result, total, rows.Err()
}

func (r *userRepository) UpdateRole(ctx context.Context, id string, role domain.UserRole) (*domain.User, error) {
	return r.fetchSingle(ctx,
		`UPDATE users SET role=$2, updated_at=NOW() WHERE id=$1 RETURNING `+userColumns,
		id, string(role))
}

func (r *userRepository) SetStatus(ctx context.Context, id string, status domain.UserStatus) (*domain.User, error) {
	return r.fetchSingle(ctx,
		`UPDATE users SET status=$2, updated_at=NOW() WHERE id=$1 RETURNING `+userColumns,
		id, string(status))
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, mapError(err)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	if err := r.db.QueryRow(ctx, query, args...).Scan(userDest(&user)...); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func userDest(user *domain.User) []any {
	return []any{
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	}
}
