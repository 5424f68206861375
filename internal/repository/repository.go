package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/store-rating/internal/store"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates a uniqueness constraint rejected the write.
	ErrConflict = errors.New("repository: conflict")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Users   *UsersRepository
	Stores  *StoresRepository
	Ratings *RatingsRepository
	pool    *pgxpool.Pool
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Users:   &UsersRepository{pool: pool},
		Stores:  &StoresRepository{pool: pool},
		Ratings: &RatingsRepository{pool: pool},
		pool:    pool,
	}
}

// PlatformCounts holds the row totals shown on the admin dashboard.
type PlatformCounts struct {
	Users   int
	Stores  int
	Ratings int
}

// Counts returns total users, stores and ratings in one round trip.
func (r *Repository) Counts(ctx context.Context) (PlatformCounts, error) {
	const query = `
        SELECT (SELECT COUNT(*) FROM users)::int,
               (SELECT COUNT(*) FROM stores)::int,
               (SELECT COUNT(*) FROM ratings)::int
    `
	var c PlatformCounts
	if err := r.pool.QueryRow(ctx, query).Scan(&c.Users, &c.Stores, &c.Ratings); err != nil {
		return PlatformCounts{}, fmt.Errorf("count platform rows: %w", err)
	}
	return c, nil
}

// classify maps constraint violations onto repository sentinels.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}
