package models

import "time"

// OrderGroup bundles orders under one shared-expense bucket, typically a
// shipment batch to the hub.
type OrderGroup struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Hydrated by the repository for the group overview.
	Expenses []GroupExpense `json:"expenses,omitempty"`
	Orders   []Order        `json:"orders,omitempty"`
}

// GroupExpense is one cost entry shared by all members of a group.
type GroupExpense struct {
	ID          string    `json:"id" db:"id"`
	GroupID     string    `json:"group_id" db:"group_id"`
	Description string    `json:"description" db:"description"`
	Amount      float64   `json:"amount" db:"amount"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
