package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solemate_backend/internal/models"
	"solemate_backend/internal/repositories"
)

type fakeGroupRepo struct {
	mu       sync.Mutex
	groups   map[string]*models.OrderGroup
	expenses map[string][]models.GroupExpense
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{
		groups:   map[string]*models.OrderGroup{},
		expenses: map[string][]models.GroupExpense{},
	}
}

func (r *fakeGroupRepo) CreateGroup(_ repositories.SQLExecutor, group *models.OrderGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *group
	r.groups[group.ID] = &cp
	return nil
}

func (r *fakeGroupRepo) GetGroupByID(groupID string) (*models.OrderGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[groupID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *fakeGroupRepo) GetGroups() ([]models.OrderGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	groups := []models.OrderGroup{}
	for _, g := range r.groups {
		groups = append(groups, *g)
	}
	return groups, nil
}

func (r *fakeGroupRepo) AddGroupExpense(_ repositories.SQLExecutor, expense *models.GroupExpense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expenses[expense.GroupID] = append(r.expenses[expense.GroupID], *expense)
	return nil
}

func (r *fakeGroupRepo) GetGroupExpenses(groupID string) ([]models.GroupExpense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.GroupExpense{}, r.expenses[groupID]...), nil
}

func newTestGroupService(t *testing.T, groupRepo *fakeGroupRepo, orderRepo *fakeOrderRepo) GroupService {
	t.Helper()
	return NewGroupService(groupRepo, orderRepo, newTestDB(t))
}

func amountOf(v float64) *float64 { return &v }

func TestCreateGroup(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	seedOrder(orderRepo, "o1", "LW01", StageSubmitted)
	seedOrder(orderRepo, "o2", "LW02", StageSubmitted)
	svc := newTestGroupService(t, newFakeGroupRepo(), orderRepo)

	group, err := svc.CreateGroup(CreateGroupRequest{Name: "Monday shipment", OrderIDs: []string{"o1", "o2"}})
	require.NoError(t, err)

	assert.Equal(t, "Monday shipment", group.Name)
	assert.Len(t, group.Orders, 2)

	for _, id := range []string{"o1", "o2"} {
		member := orderRepo.get(t, id)
		require.NotNil(t, member.GroupID)
		assert.Equal(t, group.ID, *member.GroupID)
	}
}

func TestCreateGroup_MissingMemberRejectsWholeGroup(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	seedOrder(orderRepo, "o1", "LW01", StageSubmitted)
	svc := newTestGroupService(t, newFakeGroupRepo(), orderRepo)

	_, err := svc.CreateGroup(CreateGroupRequest{Name: "Batch", OrderIDs: []string{"o1", "ghost"}})
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Nil(t, orderRepo.get(t, "o1").GroupID)
}

func TestCreateGroup_Validation(t *testing.T) {
	svc := newTestGroupService(t, newFakeGroupRepo(), newFakeOrderRepo())

	_, err := svc.CreateGroup(CreateGroupRequest{Name: " ", OrderIDs: []string{"o1"}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateGroup(CreateGroupRequest{Name: "Batch"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddGroupExpense_SplitsEvenly(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	groupRepo := newFakeGroupRepo()
	svc := newTestGroupService(t, groupRepo, orderRepo)

	o1 := seedOrder(orderRepo, "o1", "LW01", StageShipped)
	o2 := seedOrder(orderRepo, "o2", "LW02", StageShipped)
	orderRepo.mutate(o1.ID, func(o *models.Order) { o.TotalPrice = 200 })
	orderRepo.mutate(o2.ID, func(o *models.Order) { o.TotalPrice = 300 })

	group, err := svc.CreateGroup(CreateGroupRequest{Name: "Batch", OrderIDs: []string{"o1", "o2"}})
	require.NoError(t, err)

	updated, err := svc.AddGroupExpense(group.ID, GroupExpenseRequest{Description: "Courier", Amount: amountOf(100)})
	require.NoError(t, err)

	require.Len(t, updated.Expenses, 1)
	assert.Equal(t, 100.0, updated.Expenses[0].Amount)
	assert.Equal(t, 250.0, orderRepo.get(t, "o1").TotalPrice)
	assert.Equal(t, 350.0, orderRepo.get(t, "o2").TotalPrice)
}

func TestAddGroupExpense_AppliedTwiceDistributesTwice(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	svc := newTestGroupService(t, newFakeGroupRepo(), orderRepo)

	seedOrder(orderRepo, "o1", "LW01", StageShipped)
	seedOrder(orderRepo, "o2", "LW02", StageShipped)
	group, err := svc.CreateGroup(CreateGroupRequest{Name: "Batch", OrderIDs: []string{"o1", "o2"}})
	require.NoError(t, err)

	req := GroupExpenseRequest{Description: "Courier", Amount: amountOf(100)}
	_, err = svc.AddGroupExpense(group.ID, req)
	require.NoError(t, err)
	updated, err := svc.AddGroupExpense(group.ID, req)
	require.NoError(t, err)

	// No dedup: re-submitting the same expense charges the members again.
	assert.Len(t, updated.Expenses, 2)
	assert.Equal(t, 100.0, orderRepo.get(t, "o1").TotalPrice)
	assert.Equal(t, 100.0, orderRepo.get(t, "o2").TotalPrice)
}

func TestAddGroupExpense_Errors(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	groupRepo := newFakeGroupRepo()
	svc := newTestGroupService(t, groupRepo, orderRepo)

	_, err := svc.AddGroupExpense("ghost", GroupExpenseRequest{Description: "Courier", Amount: amountOf(100)})
	assert.ErrorIs(t, err, ErrGroupNotFound)

	// A group whose members were all detached cannot take expenses.
	groupRepo.CreateGroup(nil, &models.OrderGroup{ID: "empty", Name: "Empty"})
	_, err = svc.AddGroupExpense("empty", GroupExpenseRequest{Description: "Courier", Amount: amountOf(100)})
	assert.ErrorIs(t, err, ErrEmptyGroup)

	_, err = svc.AddGroupExpense("empty", GroupExpenseRequest{Description: "Courier", Amount: amountOf(-1)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddGroupExpense("empty", GroupExpenseRequest{Description: " ", Amount: amountOf(10)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetGroups_Hydrated(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	svc := newTestGroupService(t, newFakeGroupRepo(), orderRepo)

	seedOrder(orderRepo, "o1", "LW01", StageShipped)
	group, err := svc.CreateGroup(CreateGroupRequest{Name: "Batch", OrderIDs: []string{"o1"}})
	require.NoError(t, err)
	_, err = svc.AddGroupExpense(group.ID, GroupExpenseRequest{Description: "Courier", Amount: amountOf(40)})
	require.NoError(t, err)

	groups, err := svc.GetGroups()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Orders, 1)
	assert.Len(t, groups[0].Expenses, 1)
}
