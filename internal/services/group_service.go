package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"solemate_backend/internal/models"
	"solemate_backend/internal/repositories"
	"solemate_backend/pkg/utils"
)

var (
	ErrGroupNotFound = errors.New("order group not found")
	ErrEmptyGroup    = errors.New("order group has no members")
)

// CreateGroupRequest bundles orders under a shared-expense bucket.
type CreateGroupRequest struct {
	Name     string   `json:"name" binding:"required"`
	OrderIDs []string `json:"order_ids" binding:"required"`
}

// GroupExpenseRequest records a cost shared by all group members.
type GroupExpenseRequest struct {
	Description string   `json:"description" binding:"required"`
	Amount      *float64 `json:"amount" binding:"required"`
}

// --- GroupService Interface ---

type GroupService interface {
	CreateGroup(req CreateGroupRequest) (*models.OrderGroup, error)
	GetGroups() ([]models.OrderGroup, error)
	AddGroupExpense(groupID string, req GroupExpenseRequest) (*models.OrderGroup, error)
}

type groupService struct {
	groupRepo repositories.GroupRepository
	orderRepo repositories.OrderRepository
	db        *sql.DB
}

// NewGroupService creates a new instance of GroupService.
func NewGroupService(gr repositories.GroupRepository, or repositories.OrderRepository, db *sql.DB) GroupService {
	return &groupService{groupRepo: gr, orderRepo: or, db: db}
}

// --- Method Implementations ---

func (s *groupService) CreateGroup(req CreateGroupRequest) (*models.OrderGroup, error) {
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: group name required", ErrValidation)
	}
	if len(req.OrderIDs) == 0 {
		return nil, fmt.Errorf("%w: a group needs at least one order", ErrValidation)
	}

	// Verify every member before writing anything.
	for _, id := range req.OrderIDs {
		if _, err := s.orderRepo.GetOrderByID(id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: order %s", ErrOrderNotFound, id)
			}
			return nil, fmt.Errorf("failed to verify group member %s: %w", id, err)
		}
	}

	group := &models.OrderGroup{
		ID:        uuid.NewString(),
		Name:      req.Name,
		CreatedAt: time.Now(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.groupRepo.CreateGroup(tx, group); err != nil {
		return nil, fmt.Errorf("failed to create group record: %w", err)
	}
	for _, id := range req.OrderIDs {
		if err := s.orderRepo.AssignGroup(tx, id, group.ID, time.Now()); err != nil {
			return nil, fmt.Errorf("failed to attach order %s to group: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit group transaction: %w", err)
	}

	return s.hydrateGroup(group)
}

func (s *groupService) GetGroups() ([]models.OrderGroup, error) {
	groups, err := s.groupRepo.GetGroups()
	if err != nil {
		return nil, fmt.Errorf("failed to get groups: %w", err)
	}
	for i := range groups {
		hydrated, err := s.hydrateGroup(&groups[i])
		if err != nil {
			return nil, err
		}
		groups[i] = *hydrated
	}
	return groups, nil
}

// AddGroupExpense records the expense and distributes an even share into
// every member's total price. Applying the same expense twice distributes
// it twice; the caller must not re-apply.
func (s *groupService) AddGroupExpense(groupID string, req GroupExpenseRequest) (*models.OrderGroup, error) {
	if req.Amount == nil || *req.Amount < 0 {
		return nil, fmt.Errorf("%w: expense amount must not be negative", ErrValidation)
	}
	if utils.IsEmpty(req.Description) {
		return nil, fmt.Errorf("%w: expense description required", ErrValidation)
	}

	group, err := s.groupRepo.GetGroupByID(groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to fetch group: %w", err)
	}

	members, err := s.orderRepo.GetOrdersByGroupID(groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group members: %w", err)
	}
	if len(members) == 0 {
		return nil, ErrEmptyGroup
	}

	share := SplitGroupExpense(len(members), *req.Amount)
	expense := &models.GroupExpense{
		ID:          uuid.NewString(),
		GroupID:     groupID,
		Description: req.Description,
		Amount:      *req.Amount,
		CreatedAt:   time.Now(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.groupRepo.AddGroupExpense(tx, expense); err != nil {
		return nil, fmt.Errorf("failed to record group expense: %w", err)
	}
	for _, member := range members {
		if err := s.orderRepo.AddToTotalPrice(tx, member.ID, share, time.Now()); err != nil {
			return nil, fmt.Errorf("failed to distribute expense to order %s: %w", member.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit group expense transaction: %w", err)
	}

	return s.hydrateGroup(group)
}

func (s *groupService) hydrateGroup(group *models.OrderGroup) (*models.OrderGroup, error) {
	expenses, err := s.groupRepo.GetGroupExpenses(group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expenses for group %s: %w", group.ID, err)
	}
	orders, err := s.orderRepo.GetOrdersByGroupID(group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members for group %s: %w", group.ID, err)
	}
	group.Expenses = expenses
	group.Orders = orders
	return group, nil
}
