package models

import "time"

// Order is the central entity: one pair of shoes handed in at a store.
type Order struct {
	ID           string  `json:"id" db:"id"`
	SerialNumber string  `json:"serial_number" db:"serial_number"`
	StoreID      string  `json:"store_id" db:"store_id"`
	GroupID      *string `json:"group_id,omitempty" db:"group_id"`

	CustomerName   string  `json:"customer_name" db:"customer_name"`
	WhatsappNumber string  `json:"whatsapp_number" db:"whatsapp_number"`
	ShoeModel      string  `json:"shoe_model" db:"shoe_model"`
	Size           *string `json:"size,omitempty" db:"size"`
	Color          *string `json:"color,omitempty" db:"color"`

	// Complaints are a denormalized snapshot taken at intake. Deleting a
	// catalog entry later must not change what this order was booked for.
	Complaints      []ComplaintSnapshot `json:"complaints"`
	CustomComplaint *string             `json:"custom_complaint,omitempty" db:"custom_complaint"`

	IsPriceUnknown bool `json:"is_price_unknown" db:"is_price_unknown"`
	IsFree         bool `json:"is_free" db:"is_free"`
	IsInHouse      bool `json:"is_in_house" db:"is_in_house"`

	TotalPrice           float64 `json:"total_price" db:"total_price"`
	HubPrice             float64 `json:"hub_price" db:"hub_price"`
	Expense              float64 `json:"expense" db:"expense"`
	AdvanceAmount        float64 `json:"advance_amount" db:"advance_amount"`
	PaymentMethod        *string `json:"payment_method,omitempty" db:"payment_method"`
	BalancePaid          float64 `json:"balance_paid" db:"balance_paid"`
	BalancePaymentMethod *string `json:"balance_payment_method,omitempty" db:"balance_payment_method"`

	Status      string `json:"status" db:"status"`
	IsCompleted bool   `json:"is_completed" db:"is_completed"`

	ExpectedReturnDate *time.Time `json:"expected_return_date,omitempty" db:"expected_return_date"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// ComplaintSnapshot is the immutable copy of a catalog complaint stored
// against an order at intake. It intentionally carries no catalog FK.
type ComplaintSnapshot struct {
	Description string  `json:"description" db:"description"`
	Price       float64 `json:"price" db:"price"`
}

// OrderFilters defines the available filters for querying orders.
// This struct is used by both the service and repository layers.
type OrderFilters struct {
	StoreID *string `form:"store_id"`
	Status  *string `form:"status"`
	// CompletedOnly flips the query from the active board (completed
	// excluded, the default) to the completed archive.
	CompletedOnly bool `form:"completed_only"`
	Page          int  `form:"page"`
	PageSize      int  `form:"page_size"`
}

// BulkStatusResult reports per-order outcomes of a bulk status change.
type BulkStatusResult struct {
	Succeeded []string `json:"succeeded"`
	Failed    []string `json:"failed"`
}
