package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"solemate_backend/internal/models"
)

// OrderRepository defines the interface for order-related database operations.
// Derived/consistency-sensitive fields (status, completion, prices) are only
// written through these methods by the lifecycle service.
type OrderRepository interface {
	CreateOrder(executor SQLExecutor, order *models.Order) error
	GetOrderByID(orderID string) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	// GetRecentSerials returns serial numbers ordered newest-created first,
	// for the serial allocator.
	GetRecentSerials(limit int) ([]string, error)

	UpdateStatus(executor SQLExecutor, orderID, newStatus string, updatedAt time.Time) error
	UpdatePrice(executor SQLExecutor, orderID string, price float64, updatedAt time.Time) error
	UpdateHubPrice(executor SQLExecutor, orderID string, price float64, updatedAt time.Time) error
	UpdateExpense(executor SQLExecutor, orderID string, expense float64, updatedAt time.Time) error
	UpdateBalancePayment(executor SQLExecutor, orderID string, amount float64, method string, updatedAt time.Time) error
	UpdateCompletion(executor SQLExecutor, orderID string, completed bool, updatedAt time.Time) error
	AssignGroup(executor SQLExecutor, orderID, groupID string, updatedAt time.Time) error
	// AddToTotalPrice increments total_price by delta; the only write path
	// for group-expense distribution.
	AddToTotalPrice(executor SQLExecutor, orderID string, delta float64, updatedAt time.Time) error

	GetOrdersByGroupID(groupID string) ([]models.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, serial_number, store_id, group_id, customer_name, whatsapp_number,
	shoe_model, size, color, custom_complaint, is_price_unknown, is_free, is_in_house,
	total_price, hub_price, expense, advance_amount, payment_method,
	balance_paid, balance_payment_method, status, is_completed,
	expected_return_date, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }, o *models.Order) error {
	return row.Scan(
		&o.ID, &o.SerialNumber, &o.StoreID, &o.GroupID, &o.CustomerName, &o.WhatsappNumber,
		&o.ShoeModel, &o.Size, &o.Color, &o.CustomComplaint, &o.IsPriceUnknown, &o.IsFree, &o.IsInHouse,
		&o.TotalPrice, &o.HubPrice, &o.Expense, &o.AdvanceAmount, &o.PaymentMethod,
		&o.BalancePaid, &o.BalancePaymentMethod, &o.Status, &o.IsCompleted,
		&o.ExpectedReturnDate, &o.CreatedAt, &o.UpdatedAt,
	)
}

func (r *orderRepository) CreateOrder(executor SQLExecutor, order *models.Order) error {
	query := `INSERT INTO orders
	            (id, serial_number, store_id, group_id, customer_name, whatsapp_number,
	             shoe_model, size, color, custom_complaint, is_price_unknown, is_free, is_in_house,
	             total_price, hub_price, expense, advance_amount, payment_method,
	             balance_paid, balance_payment_method, status, is_completed,
	             expected_return_date, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
	                  $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = time.Now()
	}

	_, err := executor.Exec(query,
		order.ID, order.SerialNumber, order.StoreID, order.GroupID, order.CustomerName, order.WhatsappNumber,
		order.ShoeModel, order.Size, order.Color, order.CustomComplaint, order.IsPriceUnknown, order.IsFree, order.IsInHouse,
		order.TotalPrice, order.HubPrice, order.Expense, order.AdvanceAmount, order.PaymentMethod,
		order.BalancePaid, order.BalancePaymentMethod, order.Status, order.IsCompleted,
		order.ExpectedReturnDate, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: serial number %s", ErrDuplicateKey, order.SerialNumber)
		}
		return fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}

	for _, snap := range order.Complaints {
		snapQuery := `INSERT INTO order_complaints (order_id, description, price) VALUES ($1, $2, $3)`
		if _, err := executor.Exec(snapQuery, order.ID, snap.Description, snap.Price); err != nil {
			return fmt.Errorf("%w: creating complaint snapshot for order %s: %v", ErrDatabaseError, order.ID, err)
		}
	}
	return nil
}

func (r *orderRepository) GetOrderByID(orderID string) (*models.Order, error) {
	order := &models.Order{}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	err := scanOrder(r.db.QueryRow(query, orderID), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by ID %s: %v", ErrDatabaseError, orderID, err)
	}

	complaints, err := r.getComplaintSnapshots(orderID)
	if err != nil {
		return nil, err
	}
	order.Complaints = complaints
	return order, nil
}

func (r *orderRepository) getComplaintSnapshots(orderID string) ([]models.ComplaintSnapshot, error) {
	snaps := []models.ComplaintSnapshot{}
	rows, err := r.db.Query(`SELECT description, price FROM order_complaints WHERE order_id = $1 ORDER BY description`, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying complaint snapshots for order %s: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.ComplaintSnapshot
		if err := rows.Scan(&s.Description, &s.Price); err != nil {
			return nil, fmt.Errorf("%w: scanning complaint snapshot: %v", ErrDatabaseError, err)
		}
		snaps = append(snaps, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating complaint snapshots: %v", ErrDatabaseError, err)
	}
	return snaps, nil
}

func (r *orderRepository) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + orderColumns + `, COUNT(*) OVER() as total_count FROM orders`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.StoreID != nil {
		conditions = append(conditions, fmt.Sprintf("store_id = $%d", argCounter))
		args = append(args, *filters.StoreID)
		argCounter++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCounter))
		args = append(args, *filters.Status)
		argCounter++
	}
	// The active board hides completed orders; the archive shows only them.
	if filters.CompletedOnly {
		conditions = append(conditions, "is_completed = TRUE")
	} else {
		conditions = append(conditions, "is_completed = FALSE")
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var o models.Order
		err := rows.Scan(
			&o.ID, &o.SerialNumber, &o.StoreID, &o.GroupID, &o.CustomerName, &o.WhatsappNumber,
			&o.ShoeModel, &o.Size, &o.Color, &o.CustomComplaint, &o.IsPriceUnknown, &o.IsFree, &o.IsInHouse,
			&o.TotalPrice, &o.HubPrice, &o.Expense, &o.AdvanceAmount, &o.PaymentMethod,
			&o.BalancePaid, &o.BalancePaymentMethod, &o.Status, &o.IsCompleted,
			&o.ExpectedReturnDate, &o.CreatedAt, &o.UpdatedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}

	if err := r.attachComplaintSnapshots(orders, ids); err != nil {
		return nil, 0, err
	}
	return orders, totalCount, nil
}

// attachComplaintSnapshots hydrates the complaint snapshots for a page of
// orders in one query instead of one per order.
func (r *orderRepository) attachComplaintSnapshots(orders []models.Order, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `SELECT order_id, description, price FROM order_complaints WHERE order_id IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY description`
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("%w: querying complaint snapshots: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	byOrder := map[string][]models.ComplaintSnapshot{}
	for rows.Next() {
		var orderID string
		var s models.ComplaintSnapshot
		if err := rows.Scan(&orderID, &s.Description, &s.Price); err != nil {
			return fmt.Errorf("%w: scanning complaint snapshot: %v", ErrDatabaseError, err)
		}
		byOrder[orderID] = append(byOrder[orderID], s)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("%w: iterating complaint snapshots: %v", ErrDatabaseError, err)
	}

	for i := range orders {
		if snaps, ok := byOrder[orders[i].ID]; ok {
			orders[i].Complaints = snaps
		} else {
			orders[i].Complaints = []models.ComplaintSnapshot{}
		}
	}
	return nil
}

func (r *orderRepository) GetRecentSerials(limit int) ([]string, error) {
	serials := []string{}
	rows, err := r.db.Query(`SELECT serial_number FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying recent serials: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("%w: scanning serial: %v", ErrDatabaseError, err)
		}
		serials = append(serials, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating serials: %v", ErrDatabaseError, err)
	}
	return serials, nil
}

func (r *orderRepository) execSingleRow(executor SQLExecutor, query, orderID string, args ...interface{}) error {
	result, err := executor.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("%w: updating order %s: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for order %s: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) UpdateStatus(executor SQLExecutor, orderID, newStatus string, updatedAt time.Time) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`
	return r.execSingleRow(executor, query, orderID, newStatus, updatedAt, orderID)
}

func (r *orderRepository) UpdatePrice(executor SQLExecutor, orderID string, price float64, updatedAt time.Time) error {
	// Setting a concrete price always clears the unknown flag.
	query := `UPDATE orders SET total_price = $1, is_price_unknown = FALSE, updated_at = $2 WHERE id = $3`
	return r.execSingleRow(executor, query, orderID, price, updatedAt, orderID)
}

func (r *orderRepository) UpdateHubPrice(executor SQLExecutor, orderID string, price float64, updatedAt time.Time) error {
	query := `UPDATE orders SET hub_price = $1, updated_at = $2 WHERE id = $3`
	return r.execSingleRow(executor, query, orderID, price, updatedAt, orderID)
}

func (r *orderRepository) UpdateExpense(executor SQLExecutor, orderID string, expense float64, updatedAt time.Time) error {
	query := `UPDATE orders SET expense = $1, updated_at = $2 WHERE id = $3`
	return r.execSingleRow(executor, query, orderID, expense, updatedAt, orderID)
}

func (r *orderRepository) UpdateBalancePayment(executor SQLExecutor, orderID string, amount float64, method string, updatedAt time.Time) error {
	query := `UPDATE orders SET balance_paid = $1, balance_payment_method = $2, updated_at = $3 WHERE id = $4`
	return r.execSingleRow(executor, query, orderID, amount, method, updatedAt, orderID)
}

func (r *orderRepository) UpdateCompletion(executor SQLExecutor, orderID string, completed bool, updatedAt time.Time) error {
	query := `UPDATE orders SET is_completed = $1, updated_at = $2 WHERE id = $3`
	return r.execSingleRow(executor, query, orderID, completed, updatedAt, orderID)
}

func (r *orderRepository) AssignGroup(executor SQLExecutor, orderID, groupID string, updatedAt time.Time) error {
	query := `UPDATE orders SET group_id = $1, updated_at = $2 WHERE id = $3`
	return r.execSingleRow(executor, query, orderID, groupID, updatedAt, orderID)
}

func (r *orderRepository) AddToTotalPrice(executor SQLExecutor, orderID string, delta float64, updatedAt time.Time) error {
	query := `UPDATE orders SET total_price = total_price + $1, updated_at = $2 WHERE id = $3`
	return r.execSingleRow(executor, query, orderID, delta, updatedAt, orderID)
}

func (r *orderRepository) GetOrdersByGroupID(groupID string) ([]models.Order, error) {
	orders := []models.Order{}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE group_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(query, groupID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying orders for group %s: %v", ErrDatabaseError, groupID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("%w: scanning group member order: %v", ErrDatabaseError, err)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating group member orders: %v", ErrDatabaseError, err)
	}
	return orders, nil
}
