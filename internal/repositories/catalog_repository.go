package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"solemate_backend/internal/models"
)

// CatalogRepository covers both intake catalogs: hub-routed complaints and
// in-house presets. The two are independent tables with identical shape.
type CatalogRepository interface {
	GetComplaints() ([]models.Complaint, error)
	CreateComplaint(complaint *models.Complaint) error
	DeleteComplaint(complaintID string) error

	GetInHousePresets() ([]models.InHousePreset, error)
	CreateInHousePreset(preset *models.InHousePreset) error
	DeleteInHousePreset(presetID string) error
}

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new instance of CatalogRepository.
func NewCatalogRepository(db *sql.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetComplaints() ([]models.Complaint, error) {
	complaints := []models.Complaint{}
	query := `SELECT id, description, default_price, created_at, updated_at
	          FROM complaints ORDER BY description`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying complaints: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Complaint
		if err := rows.Scan(&c.ID, &c.Description, &c.DefaultPrice, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning complaint: %v", ErrDatabaseError, err)
		}
		complaints = append(complaints, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating complaint rows: %v", ErrDatabaseError, err)
	}
	return complaints, nil
}

func (r *catalogRepository) CreateComplaint(complaint *models.Complaint) error {
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = time.Now()
	}
	complaint.UpdatedAt = complaint.CreatedAt

	query := `INSERT INTO complaints (id, description, default_price, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(query, complaint.ID, complaint.Description, complaint.DefaultPrice,
		complaint.CreatedAt, complaint.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: creating complaint: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *catalogRepository) DeleteComplaint(complaintID string) error {
	return r.deleteCatalogRow("complaints", complaintID)
}

func (r *catalogRepository) GetInHousePresets() ([]models.InHousePreset, error) {
	presets := []models.InHousePreset{}
	query := `SELECT id, description, default_price, created_at, updated_at
	          FROM in_house_presets ORDER BY description`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying in-house presets: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.InHousePreset
		if err := rows.Scan(&p.ID, &p.Description, &p.DefaultPrice, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning in-house preset: %v", ErrDatabaseError, err)
		}
		presets = append(presets, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating in-house preset rows: %v", ErrDatabaseError, err)
	}
	return presets, nil
}

func (r *catalogRepository) CreateInHousePreset(preset *models.InHousePreset) error {
	if preset.CreatedAt.IsZero() {
		preset.CreatedAt = time.Now()
	}
	preset.UpdatedAt = preset.CreatedAt

	query := `INSERT INTO in_house_presets (id, description, default_price, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(query, preset.ID, preset.Description, preset.DefaultPrice,
		preset.CreatedAt, preset.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: creating in-house preset: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *catalogRepository) DeleteInHousePreset(presetID string) error {
	return r.deleteCatalogRow("in_house_presets", presetID)
}

// deleteCatalogRow deletes from either catalog table. Orders keep their own
// snapshots, so a catalog delete never touches existing orders.
func (r *catalogRepository) deleteCatalogRow(table, id string) error {
	result, err := r.db.Exec(`DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting from %s: %v", ErrDatabaseError, table, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for %s delete: %v", ErrDatabaseError, table, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
