package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/store-rating/internal/domain"
)

// UsersRepository persists accounts and enforces email uniqueness.
type UsersRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `id, name, email, password, address, role, created_at, updated_at`

// UserCreateParams bundles the fields required to create a user.
type UserCreateParams struct {
	Name         string
	Email        string
	PasswordHash string
	Address      *string
	Role         domain.Role
}

// Create inserts a new user. A duplicate email yields ErrConflict.
func (r *UsersRepository) Create(ctx context.Context, params UserCreateParams) (domain.User, error) {
	if !params.Role.Valid() {
		return domain.User{}, fmt.Errorf("create user: invalid role %d", params.Role)
	}
	query := `
        INSERT INTO users (id, name, email, password, address, role)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query, uuid.NewString(), params.Name, params.Email, params.PasswordHash, params.Address, params.Role.String())
	user, err := scanUser(row)
	if err != nil {
		return domain.User{}, classify(err)
	}
	return user, nil
}

// GetByID fetches a user by identifier.
func (r *UsersRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return notFoundOnNoRows(scanUser(row))
}

// GetByEmail fetches a user by exact email match.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return notFoundOnNoRows(scanUser(row))
}

// UpdatePassword replaces the stored password hash.
func (r *UsersRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password = $2, updated_at = now() WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all users, newest first.
func (r *UsersRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
}

// Recent returns the limit most recently created users.
func (r *UsersRepository) Recent(ctx context.Context, limit int) ([]domain.User, error) {
	return r.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
}

// ListAvailableStoreOwners returns store owners that do not own a store yet,
// ordered by name.
func (r *UsersRepository) ListAvailableStoreOwners(ctx context.Context) ([]domain.User, error) {
	query := `
        SELECT ` + userColumns + `
        FROM users u
        WHERE u.role = 'store_owner'
          AND NOT EXISTS (SELECT 1 FROM stores s WHERE s.owner_id = u.id)
        ORDER BY u.name ASC, u.id ASC`
	return r.query(ctx, query)
}

// CountByRole tallies users per role.
func (r *UsersRepository) CountByRole(ctx context.Context) (map[domain.Role]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT role, COUNT(*)::int FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Role]int)
	for rows.Next() {
		var (
			raw   string
			count int
		)
		if err := rows.Scan(&raw, &count); err != nil {
			return nil, err
		}
		role, err := domain.ParseRole(raw)
		if err != nil {
			return nil, err
		}
		counts[role] = count
	}
	return counts, rows.Err()
}

func (r *UsersRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		user domain.User
		role string
	)
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Address,
		&role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	user.Role, err = domain.ParseRole(role)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func notFoundOnNoRows[T any](v T, err error) (T, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		var zero T
		return zero, ErrNotFound
	}
	return v, err
}
