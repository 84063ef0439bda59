package models

import "time"

// Store is a tenant location that intakes orders from customers.
type Store struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"` // '-' means don't send in JSON response
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
