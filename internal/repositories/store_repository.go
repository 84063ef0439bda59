package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"solemate_backend/internal/models"
)

// StoreRepository defines the interface for tenant store persistence.
type StoreRepository interface {
	CreateStore(store *models.Store) error
	GetStoreByID(storeID string) (*models.Store, error)
	// GetStores returns every store including password hashes; login
	// resolves a submitted password against all of them.
	GetStores() ([]models.Store, error)
}

type storeRepository struct {
	db *sql.DB
}

// NewStoreRepository creates a new instance of StoreRepository.
func NewStoreRepository(db *sql.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) CreateStore(store *models.Store) error {
	if store.CreatedAt.IsZero() {
		store.CreatedAt = time.Now()
	}
	store.UpdatedAt = store.CreatedAt

	query := `INSERT INTO stores (id, name, password_hash, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(query, store.ID, store.Name, store.PasswordHash,
		store.CreatedAt, store.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: store name %s", ErrDuplicateKey, store.Name)
		}
		return fmt.Errorf("%w: creating store: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *storeRepository) GetStoreByID(storeID string) (*models.Store, error) {
	store := &models.Store{}
	query := `SELECT id, name, password_hash, created_at, updated_at FROM stores WHERE id = $1`
	err := r.db.QueryRow(query, storeID).Scan(
		&store.ID, &store.Name, &store.PasswordHash, &store.CreatedAt, &store.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting store by ID %s: %v", ErrDatabaseError, storeID, err)
	}
	return store, nil
}

func (r *storeRepository) GetStores() ([]models.Store, error) {
	stores := []models.Store{}
	query := `SELECT id, name, password_hash, created_at, updated_at FROM stores ORDER BY name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying stores: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.PasswordHash, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning store: %v", ErrDatabaseError, err)
		}
		stores = append(stores, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating store rows: %v", ErrDatabaseError, err)
	}
	return stores, nil
}
