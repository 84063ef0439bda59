package services

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"solemate_backend/internal/models"
	"solemate_backend/internal/repositories"
)

// newTestDB returns an in-memory database used only as the transaction
// handle; the fake repositories never execute SQL against it.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// --- Fakes ---

type fakeOrderRepo struct {
	mu            sync.Mutex
	orders        map[string]*models.Order
	serialsNewest []string
	failCreates   int
	createCalls   int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*models.Order{}}
}

func (r *fakeOrderRepo) seed(o models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := o
	r.orders[o.ID] = &cp
	r.serialsNewest = append([]string{o.SerialNumber}, r.serialsNewest...)
}

func (r *fakeOrderRepo) get(t *testing.T, id string) models.Order {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	require.True(t, ok, "order %s not in fake repo", id)
	return *o
}

func (r *fakeOrderRepo) CreateOrder(_ repositories.SQLExecutor, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.failCreates > 0 {
		r.failCreates--
		return repositories.ErrDuplicateKey
	}
	for _, o := range r.orders {
		if o.SerialNumber == order.SerialNumber {
			return repositories.ErrDuplicateKey
		}
	}
	cp := *order
	r.orders[order.ID] = &cp
	r.serialsNewest = append([]string{order.SerialNumber}, r.serialsNewest...)
	return nil
}

func (r *fakeOrderRepo) GetOrderByID(orderID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []models.Order{}
	for _, o := range r.orders {
		if o.IsCompleted != filters.CompletedOnly {
			continue
		}
		if filters.StoreID != nil && o.StoreID != *filters.StoreID {
			continue
		}
		result = append(result, *o)
	}
	return result, len(result), nil
}

func (r *fakeOrderRepo) GetRecentSerials(limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.serialsNewest) > limit {
		return r.serialsNewest[:limit], nil
	}
	return r.serialsNewest, nil
}

func (r *fakeOrderRepo) mutate(orderID string, fn func(*models.Order)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(o)
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(_ repositories.SQLExecutor, orderID, newStatus string, updatedAt time.Time) error {
	return r.mutate(orderID, func(o *models.Order) { o.Status = newStatus; o.UpdatedAt = updatedAt })
}

func (r *fakeOrderRepo) UpdatePrice(_ repositories.SQLExecutor, orderID string, price float64, updatedAt time.Time) error {
	return r.mutate(orderID, func(o *models.Order) {
		o.TotalPrice = price
		o.IsPriceUnknown = false
		o.UpdatedAt = updatedAt
	})
}

func (r *fakeOrderRepo) UpdateHubPrice(_ repositories.SQLExecutor, orderID string, price float64, updatedAt time.Time) error {
	return r.mutate(orderID, func(o *models.Order) { o.HubPrice = price; o.UpdatedAt = updatedAt })
}

func (r *fakeOrderRepo) UpdateExpense(_ repositories.SQLExecutor, orderID string, expense float64, updatedAt time.Time) error {
	return r.mutate(orderID, func(o *models.Order) { o.Expense = expense; o.UpdatedAt = updatedAt })
}

func (r *fakeOrderRepo) UpdateBalancePayment(_ repositories.SQLExecutor, orderID string, amount float64, method string, updatedAt time.Time) error {
	return r.mutate(orderID, func(o *models.Order) {
		o.BalancePaid = amount
		o.BalancePaymentMethod = &method
		o.UpdatedAt = updatedAt
	})
}

func (r *fakeOrderRepo) UpdateCompletion(_ repositories.SQLExecutor, orderID string, completed bool, updatedAt time.Time) error {
	return r.mutate(orderID, func(o *models.Order) { o.IsCompleted = completed; o.UpdatedAt = updatedAt })
}

func (r *fakeOrderRepo) AssignGroup(_ repositories.SQLExecutor, orderID, groupID string, updatedAt time.Time) error {
	return r.mutate(orderID, func(o *models.Order) { o.GroupID = &groupID; o.UpdatedAt = updatedAt })
}

func (r *fakeOrderRepo) AddToTotalPrice(_ repositories.SQLExecutor, orderID string, delta float64, updatedAt time.Time) error {
	return r.mutate(orderID, func(o *models.Order) { o.TotalPrice += delta; o.UpdatedAt = updatedAt })
}

func (r *fakeOrderRepo) GetOrdersByGroupID(groupID string) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []models.Order{}
	for _, o := range r.orders {
		if o.GroupID != nil && *o.GroupID == groupID {
			result = append(result, *o)
		}
	}
	return result, nil
}

type fakeCatalogRepo struct {
	complaints []models.Complaint
	presets    []models.InHousePreset
}

func (r *fakeCatalogRepo) GetComplaints() ([]models.Complaint, error) { return r.complaints, nil }

func (r *fakeCatalogRepo) CreateComplaint(c *models.Complaint) error {
	r.complaints = append(r.complaints, *c)
	return nil
}

func (r *fakeCatalogRepo) DeleteComplaint(id string) error {
	for i, c := range r.complaints {
		if c.ID == id {
			r.complaints = append(r.complaints[:i], r.complaints[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeCatalogRepo) GetInHousePresets() ([]models.InHousePreset, error) { return r.presets, nil }

func (r *fakeCatalogRepo) CreateInHousePreset(p *models.InHousePreset) error {
	r.presets = append(r.presets, *p)
	return nil
}

func (r *fakeCatalogRepo) DeleteInHousePreset(id string) error {
	for i, p := range r.presets {
		if p.ID == id {
			r.presets = append(r.presets[:i], r.presets[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

// recordingNotifier captures messages for assertions. Notifications are
// dispatched on goroutines, so reads go through the mutex as well.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *recordingNotifier) Notify(phoneNumber, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, phoneNumber+": "+message)
	return nil
}

func (n *recordingNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.sent...)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// --- Helpers ---

func newTestOrderService(t *testing.T, repo *fakeOrderRepo, catalog *fakeCatalogRepo, notifier Notifier, pipeline Pipeline) OrderService {
	t.Helper()
	if catalog == nil {
		catalog = &fakeCatalogRepo{}
	}
	return NewOrderService(repo, catalog, newTestDB(t), pipeline, notifier)
}

func seedOrder(repo *fakeOrderRepo, id, serial, status string) models.Order {
	o := models.Order{
		ID:             id,
		SerialNumber:   serial,
		StoreID:        "store-1",
		CustomerName:   "Aman",
		WhatsappNumber: "77010001122",
		ShoeModel:      "Derby",
		Status:         status,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	repo.seed(o)
	return o
}

func intakeRequest() CreateOrderRequest {
	return CreateOrderRequest{
		StoreID:        "store-1",
		CustomerName:   "Aman",
		WhatsappNumber: "77010001122",
		ShoeModel:      "Derby",
	}
}

const notifyWait = 2 * time.Second

// --- Tests ---

func TestCreateOrder_FirstSerialAndIntakeDefaults(t *testing.T) {
	repo := newFakeOrderRepo()
	notifier := &recordingNotifier{}
	svc := newTestOrderService(t, repo, nil, notifier, HubPipeline())

	order, err := svc.CreateOrder(intakeRequest())
	require.NoError(t, err)

	assert.Equal(t, "LW01", order.SerialNumber)
	assert.Equal(t, StageSubmitted, order.Status)
	assert.False(t, order.IsCompleted)
	assert.Equal(t, 0.0, order.TotalPrice)

	assert.Eventually(t, func() bool { return notifier.count() == 1 }, notifyWait, 10*time.Millisecond)
	assert.Contains(t, notifier.messages()[0], "Order Received!")
}

func TestCreateOrder_SerialFollowsMostRecent(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(repo, "o1", "LW01", StageInStore)
	seedOrder(repo, "o3", "LW03", StageSubmitted) // newest
	svc := newTestOrderService(t, repo, nil, nil, HubPipeline())

	order, err := svc.CreateOrder(intakeRequest())
	require.NoError(t, err)
	assert.Equal(t, "LW04", order.SerialNumber)
}

func TestCreateOrder_CatalogPricing(t *testing.T) {
	repo := newFakeOrderRepo()
	catalog := &fakeCatalogRepo{
		complaints: []models.Complaint{
			{ID: "c1", Description: "Sole replacement", DefaultPrice: 150},
			{ID: "c2", Description: "Heel repair", DefaultPrice: 100},
		},
		presets: []models.InHousePreset{
			{ID: "p1", Description: "Polish", DefaultPrice: 25},
		},
	}
	svc := newTestOrderService(t, repo, catalog, nil, HubPipeline())

	custom := "Loose stitching"
	customPrice := 50.0
	req := intakeRequest()
	req.ComplaintIDs = []string{"c1", "c2"}
	req.InHousePresetIDs = []string{"p1"}
	req.CustomComplaint = &custom
	req.CustomPrice = &customPrice

	order, err := svc.CreateOrder(req)
	require.NoError(t, err)

	assert.Equal(t, 325.0, order.TotalPrice)
	require.Len(t, order.Complaints, 2)
	assert.Equal(t, "Sole replacement", order.Complaints[0].Description)
	assert.Equal(t, 150.0, order.Complaints[0].Price)
	// Presets fold into the custom complaint text; no relation is kept.
	require.NotNil(t, order.CustomComplaint)
	assert.Equal(t, "Loose stitching; Polish", *order.CustomComplaint)
}

func TestCreateOrder_UnknownComplaintRejected(t *testing.T) {
	repo := newFakeOrderRepo()
	catalog := &fakeCatalogRepo{complaints: []models.Complaint{{ID: "c1", Description: "Sole", DefaultPrice: 10}}}
	svc := newTestOrderService(t, repo, catalog, nil, HubPipeline())

	req := intakeRequest()
	req.ComplaintIDs = []string{"c1", "ghost"}
	_, err := svc.CreateOrder(req)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, repo.orders)
}

func TestCreateOrder_PriceUnknownStoresZero(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestOrderService(t, repo, nil, nil, HubPipeline())

	customPrice := 200.0
	req := intakeRequest()
	req.IsPriceUnknown = true
	req.CustomPrice = &customPrice

	order, err := svc.CreateOrder(req)
	require.NoError(t, err)
	assert.True(t, order.IsPriceUnknown)
	assert.Equal(t, 0.0, order.TotalPrice)
}

func TestCreateOrder_FreeOverridesUnknown(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestOrderService(t, repo, nil, nil, HubPipeline())

	req := intakeRequest()
	req.IsFree = true
	req.IsPriceUnknown = true

	order, err := svc.CreateOrder(req)
	require.NoError(t, err)
	assert.True(t, order.IsFree)
	assert.False(t, order.IsPriceUnknown)
	assert.Equal(t, 0.0, order.TotalPrice)
}

func TestCreateOrder_RetriesOnceOnSerialCollision(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.failCreates = 1
	svc := newTestOrderService(t, repo, nil, nil, HubPipeline())

	order, err := svc.CreateOrder(intakeRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.createCalls)
	assert.Equal(t, "LW01", order.SerialNumber)
}

func TestCreateOrder_SecondCollisionSurfaces(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.failCreates = 2
	svc := newTestOrderService(t, repo, nil, nil, HubPipeline())

	_, err := svc.CreateOrder(intakeRequest())
	assert.ErrorIs(t, err, ErrDuplicateSerial)
	assert.Equal(t, 2, repo.createCalls)
}

func TestCreateOrder_Validation(t *testing.T) {
	svc := newTestOrderService(t, newFakeOrderRepo(), nil, nil, HubPipeline())

	req := intakeRequest()
	req.StoreID = ""
	_, err := svc.CreateOrder(req)
	assert.ErrorIs(t, err, ErrValidation)

	req = intakeRequest()
	req.AdvanceAmount = -10
	_, err = svc.CreateOrder(req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name       string
		startStage string
		direction  string
		wantStage  string
		wantErr    error
	}{
		{
			name:       "next moves one stage forward",
			startStage: StageSubmitted,
			direction:  DirectionNext,
			wantStage:  StageShipped,
		},
		{
			name:       "prev moves one stage back",
			startStage: StageReceived,
			direction:  DirectionPrev,
			wantStage:  StageShipped,
		},
		{
			name:       "prev at intake is rejected",
			startStage: StageSubmitted,
			direction:  DirectionPrev,
			wantErr:    ErrStageBoundary,
		},
		{
			name:       "next at the terminal stage is rejected",
			startStage: StageInStore,
			direction:  DirectionNext,
			wantErr:    ErrStageBoundary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeOrderRepo()
			seedOrder(repo, "o1", "LW01", tt.startStage)
			svc := newTestOrderService(t, repo, nil, nil, HubPipeline())

			order, err := svc.Advance("o1", tt.direction)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				// A rejected move leaves the order untouched.
				assert.Equal(t, tt.startStage, repo.get(t, "o1").Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStage, order.Status)
		})
	}
}

func TestAdvance_OrderNotFound(t *testing.T) {
	svc := newTestOrderService(t, newFakeOrderRepo(), nil, nil, HubPipeline())
	_, err := svc.Advance("ghost", DirectionNext)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSetStatus_ReadyStageNotifiesCustomer(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(repo, "o1", "LW07", StageReshipped)
	notifier := &recordingNotifier{}
	svc := newTestOrderService(t, repo, nil, notifier, HubPipeline())

	order, err := svc.SetStatus("o1", StageInStore)
	require.NoError(t, err)
	assert.Equal(t, StageInStore, order.Status)

	assert.Eventually(t, func() bool { return notifier.count() == 1 }, notifyWait, 10*time.Millisecond)
	assert.Contains(t, notifier.messages()[0], "LW07")
	assert.Contains(t, notifier.messages()[0], "ready for collection")
}

func TestSetStatus_NoRepeatNotificationAtReadyStage(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(repo, "o1", "LW07", StageInStore)
	notifier := &recordingNotifier{}
	svc := newTestOrderService(t, repo, nil, notifier, HubPipeline())

	_, err := svc.SetStatus("o1", StageInStore)
	require.NoError(t, err)
	assert.Never(t, func() bool { return notifier.count() > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestSetStatus_UnknownStage(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(repo, "o1", "LW01", StageSubmitted)
	svc := newTestOrderService(t, repo, nil, nil, HubPipeline())

	_, err := svc.SetStatus("o1", "melted")
	assert.ErrorIs(t, err, ErrUnknownStage)

	// Stages from the other variant are just as unknown here.
	_, err = svc.SetStatus("o1", StageDeparture)
	assert.ErrorIs(t, err, ErrUnknownStage)
}

func TestBulkSetStatus_BestEffortPerOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(repo, "o1", "LW01", StageSubmitted)
	seedOrder(repo, "o2", "LW02", StageReceived)
	svc := newTestOrderService(t, repo, nil, nil, HubPipeline())

	result, err := svc.BulkSetStatus([]string{"o1", "ghost", "o2"}, StageShipped)
	require.NoError(t, err)

	assert.Equal(t, []string{"o1", "o2"}, result.Succeeded)
	assert.Equal(t, []string{"ghost"}, result.Failed)
	assert.Equal(t, StageShipped, repo.get(t, "o1").Status)
	assert.Equal(t, StageShipped, repo.get(t, "o2").Status)
}

func TestBulkSetStatus_UnknownStageRejectsWholeRequest(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(repo, "o1", "LW01", StageSubmitted)
	svc := newTestOrderService(t, repo, nil, nil, HubPipeline())

	_, err := svc.BulkSetStatus([]string{"o1"}, "melted")
	assert.ErrorIs(t, err, ErrUnknownStage)
	assert.Equal(t, StageSubmitted, repo.get(t, "o1").Status)
}

func TestToggleCompletion(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(repo, "ready", "LW01", StageInStore)
	seedOrder(repo, "mid", "LW02", StageCompleted)
	svc := newTestOrderService(t, repo, nil, nil, HubPipeline())

	order, err := svc.ToggleCompletion("ready", true)
	require.NoError(t, err)
	assert.True(t, order.IsCompleted)

	// Completing requires the terminal stage.
	_, err = svc.ToggleCompletion("mid", true)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.False(t, repo.get(t, "mid").IsCompleted)

	// Clearing the flag is allowed from anywhere.
	order, err = svc.ToggleCompletion("ready", false)
	require.NoError(t, err)
	assert.False(t, order.IsCompleted)
}

func TestUpdatePrice_SettlesUnknownPrice(t *testing.T) {
	repo := newFakeOrderRepo()
	o := seedOrder(repo, "o1", "LW01", StageReceived)
	repo.mutate(o.ID, func(o *models.Order) { o.IsPriceUnknown = true })
	notifier := &recordingNotifier{}
	svc := newTestOrderService(t, repo, nil, notifier, HubPipeline())

	order, err := svc.UpdatePrice("o1", 375)
	require.NoError(t, err)
	assert.Equal(t, 375.0, order.TotalPrice)
	assert.False(t, order.IsPriceUnknown)

	assert.Eventually(t, func() bool { return notifier.count() == 1 }, notifyWait, 10*time.Millisecond)
	assert.Contains(t, notifier.messages()[0], "375.00")
}

func TestUpdateHubPrice_RejectsInHouseOrders(t *testing.T) {
	repo := newFakeOrderRepo()
	o := seedOrder(repo, "o1", "LW01", StageReceived)
	repo.mutate(o.ID, func(o *models.Order) { o.IsInHouse = true })
	svc := newTestOrderService(t, repo, nil, nil, HubPipeline())

	_, err := svc.UpdateHubPrice("o1", 120)
	assert.ErrorIs(t, err, ErrInvalidState)

	seedOrder(repo, "o2", "LW02", StageReceived)
	order, err := svc.UpdateHubPrice("o2", 120)
	require.NoError(t, err)
	assert.Equal(t, 120.0, order.HubPrice)
}

func TestRecordBalancePayment(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(repo, "o1", "LW01", StageInStore)
	svc := newTestOrderService(t, repo, nil, nil, HubPipeline())

	_, err := svc.RecordBalancePayment("o1", -5, "cash")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.RecordBalancePayment("o1", 100, "  ")
	assert.ErrorIs(t, err, ErrValidation)

	order, err := svc.RecordBalancePayment("o1", 100, "cash")
	require.NoError(t, err)
	assert.Equal(t, 100.0, order.BalancePaid)
	require.NotNil(t, order.BalancePaymentMethod)
	assert.Equal(t, "cash", *order.BalancePaymentMethod)
}

func TestSingleSitePipelineLifecycle(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(repo, "o1", "LW01", StageSubmitted)
	svc := newTestOrderService(t, repo, nil, nil, SingleSitePipeline())

	// submitted -> received -> completed -> departure -> in_store
	for _, want := range []string{StageReceived, StageCompleted, StageDeparture, StageInStore} {
		order, err := svc.Advance("o1", DirectionNext)
		require.NoError(t, err)
		assert.Equal(t, want, order.Status)
	}

	_, err := svc.Advance("o1", DirectionNext)
	assert.ErrorIs(t, err, ErrStageBoundary)
}
