package models

import "time"

// Complaint is a catalog entry for hub-routed repair work (e.g. "Heel
// Replacement"). Orders copy the description and price at intake rather
// than referencing the catalog row.
type Complaint struct {
	ID           string    `json:"id" db:"id"`
	Description  string    `json:"description" db:"description" binding:"required"`
	DefaultPrice float64   `json:"default_price" db:"default_price"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// InHousePreset is a catalog entry for work done entirely at the store.
// Presets are folded into an order's custom complaint text at intake;
// there is no relation from orders to this table.
type InHousePreset struct {
	ID           string    `json:"id" db:"id"`
	Description  string    `json:"description" db:"description" binding:"required"`
	DefaultPrice float64   `json:"default_price" db:"default_price"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
