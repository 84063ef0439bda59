package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"solemate_backend/internal/models"
)

// GroupRepository defines the interface for order-group database operations.
type GroupRepository interface {
	CreateGroup(executor SQLExecutor, group *models.OrderGroup) error
	GetGroupByID(groupID string) (*models.OrderGroup, error)
	GetGroups() ([]models.OrderGroup, error)
	AddGroupExpense(executor SQLExecutor, expense *models.GroupExpense) error
	GetGroupExpenses(groupID string) ([]models.GroupExpense, error)
}

type groupRepository struct {
	db *sql.DB
}

// NewGroupRepository creates a new instance of GroupRepository.
func NewGroupRepository(db *sql.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) CreateGroup(executor SQLExecutor, group *models.OrderGroup) error {
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now()
	}
	query := `INSERT INTO order_groups (id, name, created_at) VALUES ($1, $2, $3)`
	if _, err := executor.Exec(query, group.ID, group.Name, group.CreatedAt); err != nil {
		return fmt.Errorf("%w: creating order group: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *groupRepository) GetGroupByID(groupID string) (*models.OrderGroup, error) {
	group := &models.OrderGroup{}
	query := `SELECT id, name, created_at FROM order_groups WHERE id = $1`
	err := r.db.QueryRow(query, groupID).Scan(&group.ID, &group.Name, &group.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting group by ID %s: %v", ErrDatabaseError, groupID, err)
	}
	return group, nil
}

func (r *groupRepository) GetGroups() ([]models.OrderGroup, error) {
	groups := []models.OrderGroup{}
	rows, err := r.db.Query(`SELECT id, name, created_at FROM order_groups ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order groups: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var g models.OrderGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning order group: %v", ErrDatabaseError, err)
		}
		groups = append(groups, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order group rows: %v", ErrDatabaseError, err)
	}
	return groups, nil
}

func (r *groupRepository) AddGroupExpense(executor SQLExecutor, expense *models.GroupExpense) error {
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now()
	}
	query := `INSERT INTO group_expenses (id, group_id, description, amount, created_at)
	          VALUES ($1, $2, $3, $4, $5)`
	if _, err := executor.Exec(query, expense.ID, expense.GroupID, expense.Description,
		expense.Amount, expense.CreatedAt); err != nil {
		return fmt.Errorf("%w: creating group expense: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *groupRepository) GetGroupExpenses(groupID string) ([]models.GroupExpense, error) {
	expenses := []models.GroupExpense{}
	query := `SELECT id, group_id, description, amount, created_at
	          FROM group_expenses WHERE group_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(query, groupID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying expenses for group %s: %v", ErrDatabaseError, groupID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.GroupExpense
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning group expense: %v", ErrDatabaseError, err)
		}
		expenses = append(expenses, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating group expense rows: %v", ErrDatabaseError, err)
	}
	return expenses, nil
}
