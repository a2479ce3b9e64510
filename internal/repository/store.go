package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRepr     = "22P02"
)

// PostgresStore binds repositories to a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore builds a Store over pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Repos returns repositories that run each statement on the pool.
func (s *PostgresStore) Repos() Repositories {
	return newRepositories(s.pool)
}

// WithinTx runs fn inside a single database transaction.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(ctx, newRepositories(tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func newRepositories(db Querier) Repositories {
	return Repositories{
		Events:        NewEventRepository(db),
		Categories:    NewCategoryRepository(db),
		Tickets:       NewTicketRepository(db),
		Registrations: NewRegistrationRepository(db),
		PromoCodes:    NewPromoCodeRepository(db),
		TicketTypes:   NewTicketTypeRepository(db),
		Users:         NewUserRepository(db),
		Adjustments:   NewSalesAdjustmentRepository(db),
	}
}

// mapError translates driver errors into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrInUse, pgErr.ConstraintName)
		case pgInvalidTextRepr:
			// malformed uuid in a lookup
			return ErrNotFound
		}
	}
	return err
}
