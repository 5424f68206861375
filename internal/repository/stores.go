package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/store-rating/internal/domain"
)

// StoresRepository persists stores; owner_id is unique so an owner has at most one store.
type StoresRepository struct {
	pool *pgxpool.Pool
}

const storeColumns = `s.id, s.name, s.description, s.address, s.phone, s.category, s.owner_id, s.is_active, s.created_at, s.updated_at`

const storeWithOwnerColumns = storeColumns + `, u.id, u.name, u.email, u.address`

// StoreCreateParams bundles the fields required to create a store.
type StoreCreateParams struct {
	Name        string
	Description *string
	Address     *string
	Phone       *string
	Category    *string
	OwnerID     string
}

// StoreUpdateParams carries a partial update; nil fields keep their value.
type StoreUpdateParams struct {
	Name        *string
	Description *string
	Address     *string
	Phone       *string
	Category    *string
}

// StoreListFilters narrows List.
type StoreListFilters struct {
	ActiveOnly bool
	Limit      int
}

// Create inserts a store. ErrConflict is returned when the owner already has
// one, ErrNotFound when the owner does not exist.
func (r *StoresRepository) Create(ctx context.Context, params StoreCreateParams) (domain.Store, error) {
	query := `
        INSERT INTO stores AS s (id, name, description, address, phone, category, owner_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING ` + storeColumns

	row := r.pool.QueryRow(ctx, query, uuid.NewString(), params.Name, params.Description, params.Address, params.Phone, params.Category, params.OwnerID)
	st, err := scanStore(row)
	if err != nil {
		return domain.Store{}, classify(err)
	}
	return st, nil
}

// GetByID fetches a store by identifier.
func (r *StoresRepository) GetByID(ctx context.Context, id string) (domain.Store, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores s WHERE s.id = $1`, id)
	return notFoundOnNoRows(scanStore(row))
}

// GetByOwner fetches the store owned by ownerID.
func (r *StoresRepository) GetByOwner(ctx context.Context, ownerID string) (domain.Store, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores s WHERE s.owner_id = $1`, ownerID)
	return notFoundOnNoRows(scanStore(row))
}

// GetWithOwner fetches a store joined with its owner.
func (r *StoresRepository) GetWithOwner(ctx context.Context, id string) (domain.StoreWithOwner, error) {
	query := `SELECT ` + storeWithOwnerColumns + ` FROM stores s JOIN users u ON u.id = s.owner_id WHERE s.id = $1`
	return notFoundOnNoRows(scanStoreWithOwner(r.pool.QueryRow(ctx, query, id)))
}

// UpdateByOwner applies a partial update to the store owned by ownerID.
func (r *StoresRepository) UpdateByOwner(ctx context.Context, ownerID string, params StoreUpdateParams) (domain.Store, error) {
	query := `
        UPDATE stores AS s
        SET name = COALESCE($2, s.name),
            description = COALESCE($3, s.description),
            address = COALESCE($4, s.address),
            phone = COALESCE($5, s.phone),
            category = COALESCE($6, s.category),
            updated_at = now()
        WHERE s.owner_id = $1
        RETURNING ` + storeColumns

	row := r.pool.QueryRow(ctx, query, ownerID, params.Name, params.Description, params.Address, params.Phone, params.Category)
	return notFoundOnNoRows(scanStore(row))
}

// List returns stores with their owners, newest first.
func (r *StoresRepository) List(ctx context.Context, filters StoreListFilters) ([]domain.StoreWithOwner, error) {
	query := `SELECT ` + storeWithOwnerColumns + ` FROM stores s JOIN users u ON u.id = s.owner_id`
	args := make([]interface{}, 0, 1)
	if filters.ActiveOnly {
		query += ` WHERE s.is_active`
	}
	query += ` ORDER BY s.created_at DESC, s.id DESC`
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += ` LIMIT $1`
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stores := make([]domain.StoreWithOwner, 0)
	for rows.Next() {
		st, err := scanStoreWithOwner(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stores, nil
}

func scanStore(row pgx.Row) (domain.Store, error) {
	var st domain.Store
	err := row.Scan(
		&st.ID,
		&st.Name,
		&st.Description,
		&st.Address,
		&st.Phone,
		&st.Category,
		&st.OwnerID,
		&st.IsActive,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	return st, err
}

func scanStoreWithOwner(row pgx.Row) (domain.StoreWithOwner, error) {
	var st domain.StoreWithOwner
	err := row.Scan(
		&st.ID,
		&st.Name,
		&st.Description,
		&st.Address,
		&st.Phone,
		&st.Category,
		&st.OwnerID,
		&st.IsActive,
		&st.CreatedAt,
		&st.UpdatedAt,
		&st.Owner.ID,
		&st.Owner.Name,
		&st.Owner.Email,
		&st.Owner.Address,
	)
	return st, err
}
