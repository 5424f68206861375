package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/store-rating/internal/domain"
)

// RatingsRepository is the rating ledger: at most one row per (user, store).
type RatingsRepository struct {
	pool *pgxpool.Pool
}

const ratingColumns = `r.id, r.user_id, r.store_id, r.rating, r.comment, r.created_at, r.updated_at`

// RatingUpsertParams captures the payload required to upsert a rating.
type RatingUpsertParams struct {
	UserID  string
	StoreID string
	Score   int
	Comment *string
}

// Upsert inserts or updates a rating and indicates whether it was newly
// created. The (user_id, store_id) constraint makes concurrent first
// submissions resolve to one row.
func (r *RatingsRepository) Upsert(ctx context.Context, params RatingUpsertParams) (domain.Rating, bool, error) {
	query := `
        INSERT INTO ratings AS r (id, user_id, store_id, rating, comment)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (user_id, store_id)
        DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = now()
        RETURNING ` + ratingColumns + `, (xmax = 0) AS inserted`

	var (
		rating   domain.Rating
		inserted bool
	)
	err := r.pool.QueryRow(ctx, query, uuid.NewString(), params.UserID, params.StoreID, params.Score, params.Comment).Scan(
		&rating.ID,
		&rating.UserID,
		&rating.StoreID,
		&rating.Score,
		&rating.Comment,
		&rating.CreatedAt,
		&rating.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return domain.Rating{}, false, classify(err)
	}
	return rating, inserted, nil
}

// Get retrieves the rating a user gave a store.
func (r *RatingsRepository) Get(ctx context.Context, userID, storeID string) (domain.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings r WHERE r.user_id = $1 AND r.store_id = $2`
	return notFoundOnNoRows(scanRating(r.pool.QueryRow(ctx, query, userID, storeID)))
}

// ListByUser returns every rating authored by userID with the rated store, newest first.
func (r *RatingsRepository) ListByUser(ctx context.Context, userID string) ([]domain.RatingWithStore, error) {
	query := `
        SELECT ` + ratingColumns + `, s.id, s.name, s.description
        FROM ratings r
        JOIN stores s ON s.id = r.store_id
        WHERE r.user_id = $1
        ORDER BY r.created_at DESC, r.id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.RatingWithStore, 0)
	for rows.Next() {
		var item domain.RatingWithStore
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.StoreID, &item.Score, &item.Comment, &item.CreatedAt, &item.UpdatedAt,
			&item.Store.ID, &item.Store.Name, &item.Store.Description,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ListByStore returns every rating on storeID with the rater identity, newest first.
func (r *RatingsRepository) ListByStore(ctx context.Context, storeID string) ([]domain.RatingWithRater, error) {
	query := `
        SELECT ` + ratingColumns + `, u.id, u.name, u.email, u.address
        FROM ratings r
        JOIN users u ON u.id = r.user_id
        WHERE r.store_id = $1
        ORDER BY r.created_at DESC, r.id DESC`

	rows, err := r.pool.Query(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.RatingWithRater, 0)
	for rows.Next() {
		var item domain.RatingWithRater
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.StoreID, &item.Score, &item.Comment, &item.CreatedAt, &item.UpdatedAt,
			&item.Rater.ID, &item.Rater.Name, &item.Rater.Email, &item.Rater.Address,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Scores returns the raw (store, score, created_at) triples for the given
// stores; these feed the aggregator.
func (r *RatingsRepository) Scores(ctx context.Context, storeIDs []string) ([]domain.StoreScore, error) {
	if len(storeIDs) == 0 {
		return []domain.StoreScore{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT store_id, rating, created_at FROM ratings WHERE store_id = ANY($1)`, storeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.StoreScore, 0)
	for rows.Next() {
		var s domain.StoreScore
		if err := rows.Scan(&s.StoreID, &s.Score, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanRating(row pgx.Row) (domain.Rating, error) {
	var rating domain.Rating
	err := row.Scan(
		&rating.ID,
		&rating.UserID,
		&rating.StoreID,
		&rating.Score,
		&rating.Comment,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	return rating, err
}
