package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"solemate_backend/internal/models"
	"solemate_backend/internal/repositories"
	"solemate_backend/pkg/utils"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrUnknownStage    = errors.New("unknown pipeline stage")
	ErrStageBoundary   = errors.New("order is already at the pipeline boundary")
	ErrInvalidState    = errors.New("operation not allowed in the order's current state")
	ErrDuplicateSerial = errors.New("serial number already allocated")
	ErrValidation      = errors.New("validation failed")
)

// --- Data Transfer Objects (DTOs) ---

// CreateOrderRequest is used for intaking a new repair order. StoreID is
// filled from the authenticated token, never from the request body.
type CreateOrderRequest struct {
	StoreID string `json:"-"`

	CustomerName   string  `json:"customer_name" binding:"required"`
	WhatsappNumber string  `json:"whatsapp_number" binding:"required"`
	ShoeModel      string  `json:"shoe_model" binding:"required"`
	Size           *string `json:"size"`
	Color          *string `json:"color"`

	ComplaintIDs     []string `json:"complaint_ids"`
	InHousePresetIDs []string `json:"in_house_preset_ids"`
	CustomComplaint  *string  `json:"custom_complaint"`
	CustomPrice      *float64 `json:"custom_price"`

	IsPriceUnknown bool `json:"is_price_unknown"`
	IsFree         bool `json:"is_free"`
	IsInHouse      bool `json:"is_in_house"`

	AdvanceAmount float64 `json:"advance_amount"`
	PaymentMethod *string `json:"payment_method"`

	ExpectedReturnDate *time.Time `json:"expected_return_date"`
}

// AdvanceOrderRequest moves an order one stage in either direction.
type AdvanceOrderRequest struct {
	Direction string `json:"direction" binding:"required"` // "next" or "prev"
}

// SetStatusRequest jumps an order to an arbitrary stage.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BulkStatusRequest applies one target stage to many orders.
type BulkStatusRequest struct {
	OrderIDs []string `json:"order_ids" binding:"required"`
	Status   string   `json:"status" binding:"required"`
}

// CompletionRequest toggles the terminal completion flag.
type CompletionRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// AmountRequest carries a single non-negative money value.
type AmountRequest struct {
	Amount *float64 `json:"amount" binding:"required"`
}

// BalancePaymentRequest records a balance payment and how it was made.
type BalancePaymentRequest struct {
	Amount *float64 `json:"amount" binding:"required"`
	Method string   `json:"method" binding:"required"`
}

// --- OrderService Interface ---

// OrderService is the sole authority over order status, completion and the
// derived money fields. Everything else reads through it.
type OrderService interface {
	CreateOrder(req CreateOrderRequest) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	GetOrderByID(orderID string) (*models.Order, error)

	Advance(orderID, direction string) (*models.Order, error)
	SetStatus(orderID, targetStage string) (*models.Order, error)
	BulkSetStatus(orderIDs []string, targetStage string) (*models.BulkStatusResult, error)
	ToggleCompletion(orderID string, completed bool) (*models.Order, error)

	UpdatePrice(orderID string, price float64) (*models.Order, error)
	UpdateHubPrice(orderID string, price float64) (*models.Order, error)
	UpdateExpense(orderID string, expense float64) (*models.Order, error)
	RecordBalancePayment(orderID string, amount float64, method string) (*models.Order, error)
}

type orderService struct {
	orderRepo   repositories.OrderRepository
	catalogRepo repositories.CatalogRepository
	db          *sql.DB
	pipeline    Pipeline
	notifier    Notifier
}

// NewOrderService creates a new instance of OrderService. The pipeline is
// injected so deployments can run either stage variant.
func NewOrderService(
	or repositories.OrderRepository,
	cr repositories.CatalogRepository,
	db *sql.DB,
	pipeline Pipeline,
	notifier Notifier,
) OrderService {
	return &orderService{
		orderRepo:   or,
		catalogRepo: cr,
		db:          db,
		pipeline:    pipeline,
		notifier:    notifier,
	}
}

// --- Method Implementations ---

func (s *orderService) CreateOrder(req CreateOrderRequest) (*models.Order, error) {
	if req.StoreID == "" {
		return nil, fmt.Errorf("%w: store id missing", ErrValidation)
	}
	if req.AdvanceAmount < 0 {
		return nil, fmt.Errorf("%w: advance amount must not be negative", ErrValidation)
	}
	if req.CustomPrice != nil && *req.CustomPrice < 0 {
		return nil, fmt.Errorf("%w: custom price must not be negative", ErrValidation)
	}

	snapshots, presetText, presetTotal, err := s.resolveCatalogSelections(req)
	if err != nil {
		return nil, err
	}

	customComplaint := req.CustomComplaint
	if presetText != "" {
		// In-house presets have no relation on orders; they are folded
		// into the custom complaint text.
		if customComplaint != nil && *customComplaint != "" {
			merged := *customComplaint + "; " + presetText
			customComplaint = &merged
		} else {
			customComplaint = &presetText
		}
	}

	totalPrice := presetTotal
	for _, snap := range snapshots {
		totalPrice += snap.Price
	}
	if req.CustomPrice != nil {
		totalPrice += *req.CustomPrice
	}
	if req.IsPriceUnknown {
		// Stored as 0 until the price is settled; consumers display "TBD".
		totalPrice = 0
	}
	if req.IsFree {
		// Free service bypasses pricing entirely.
		totalPrice = 0
	}

	order := &models.Order{
		ID:                 uuid.NewString(),
		StoreID:            req.StoreID,
		CustomerName:       req.CustomerName,
		WhatsappNumber:     req.WhatsappNumber,
		ShoeModel:          req.ShoeModel,
		Size:               req.Size,
		Color:              req.Color,
		Complaints:         snapshots,
		CustomComplaint:    customComplaint,
		IsPriceUnknown:     req.IsPriceUnknown && !req.IsFree,
		IsFree:             req.IsFree,
		IsInHouse:          req.IsInHouse,
		TotalPrice:         totalPrice,
		AdvanceAmount:      req.AdvanceAmount,
		PaymentMethod:      req.PaymentMethod,
		Status:             s.pipeline.First(),
		ExpectedReturnDate: req.ExpectedReturnDate,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	// A concurrent intake can race the allocator to the same serial; the
	// unique index catches it and we re-allocate and retry exactly once.
	if err := s.persistWithFreshSerial(order); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			utils.LogWarn("Serial collision on intake, retrying allocation",
				map[string]interface{}{"serial": order.SerialNumber})
			err = s.persistWithFreshSerial(order)
		}
		if err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateSerial, order.SerialNumber)
			}
			return nil, err
		}
	}

	s.notifyAsync(order.WhatsappNumber, msgOrderReceived)
	return s.GetOrderByID(order.ID)
}

// resolveCatalogSelections copies the chosen complaints into immutable
// snapshots and folds chosen presets into text plus a price sum.
func (s *orderService) resolveCatalogSelections(req CreateOrderRequest) ([]models.ComplaintSnapshot, string, float64, error) {
	snapshots := []models.ComplaintSnapshot{}
	if len(req.ComplaintIDs) > 0 {
		catalog, err := s.catalogRepo.GetComplaints()
		if err != nil {
			return nil, "", 0, fmt.Errorf("failed to fetch complaint catalog: %w", err)
		}
		byID := map[string]models.Complaint{}
		for _, c := range catalog {
			byID[c.ID] = c
		}
		for _, id := range req.ComplaintIDs {
			c, ok := byID[id]
			if !ok {
				return nil, "", 0, fmt.Errorf("%w: complaint %s not in catalog", ErrValidation, id)
			}
			snapshots = append(snapshots, models.ComplaintSnapshot{
				Description: c.Description,
				Price:       c.DefaultPrice,
			})
		}
	}

	var presetParts []string
	var presetTotal float64
	if len(req.InHousePresetIDs) > 0 {
		presets, err := s.catalogRepo.GetInHousePresets()
		if err != nil {
			return nil, "", 0, fmt.Errorf("failed to fetch in-house preset catalog: %w", err)
		}
		byID := map[string]models.InHousePreset{}
		for _, p := range presets {
			byID[p.ID] = p
		}
		for _, id := range req.InHousePresetIDs {
			p, ok := byID[id]
			if !ok {
				return nil, "", 0, fmt.Errorf("%w: in-house preset %s not in catalog", ErrValidation, id)
			}
			presetParts = append(presetParts, p.Description)
			presetTotal += p.DefaultPrice
		}
	}

	return snapshots, strings.Join(presetParts, "; "), presetTotal, nil
}

// persistWithFreshSerial allocates the next serial and writes the order and
// its complaint snapshots in one transaction.
func (s *orderService) persistWithFreshSerial(order *models.Order) error {
	serials, err := s.orderRepo.GetRecentSerials(serialScanWindow)
	if err != nil {
		return fmt.Errorf("failed to fetch serials for allocation: %w", err)
	}
	order.SerialNumber = NextSerial(serials)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.orderRepo.CreateOrder(tx, order); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order transaction: %w", err)
	}
	return nil
}

func (s *orderService) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders, totalCount, err := s.orderRepo.GetOrders(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, totalCount, nil
}

func (s *orderService) GetOrderByID(orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID from repository: %w", err)
	}
	return order, nil
}

func (s *orderService) Advance(orderID, direction string) (*models.Order, error) {
	order, err := s.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}

	target, err := s.pipeline.Neighbor(order.Status, direction)
	if err != nil {
		// Boundary and unknown-stage failures leave the order untouched.
		return nil, err
	}
	return s.setStatus(order, target)
}

func (s *orderService) SetStatus(orderID, targetStage string) (*models.Order, error) {
	if !s.pipeline.Contains(targetStage) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStage, targetStage)
	}
	order, err := s.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}
	return s.setStatus(order, targetStage)
}

// setStatus writes the stage change and fires the ready-for-collection
// notification when the order lands back at the store.
func (s *orderService) setStatus(order *models.Order, targetStage string) (*models.Order, error) {
	if err := s.orderRepo.UpdateStatus(s.db, order.ID, targetStage, time.Now()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if targetStage == s.pipeline.ReadyStage() && order.Status != targetStage {
		s.notifyAsync(order.WhatsappNumber, msgReadyForCollection(order.SerialNumber))
	}
	return s.GetOrderByID(order.ID)
}

func (s *orderService) BulkSetStatus(orderIDs []string, targetStage string) (*models.BulkStatusResult, error) {
	if !s.pipeline.Contains(targetStage) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStage, targetStage)
	}

	// Best effort per order: one failure never blocks the rest.
	result := &models.BulkStatusResult{Succeeded: []string{}, Failed: []string{}}
	for _, id := range orderIDs {
		order, err := s.GetOrderByID(id)
		if err == nil {
			_, err = s.setStatus(order, targetStage)
		}
		if err != nil {
			utils.LogWarn("Bulk status change failed for order",
				map[string]interface{}{"order_id": id, "error": err.Error()})
			result.Failed = append(result.Failed, id)
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result, nil
}

func (s *orderService) ToggleCompletion(orderID string, completed bool) (*models.Order, error) {
	order, err := s.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}

	// Marking complete requires the order to be at the final stage;
	// clearing the flag is always allowed.
	if completed && order.Status != s.pipeline.Last() {
		return nil, fmt.Errorf("%w: order %s is at %s, not %s",
			ErrInvalidState, order.SerialNumber, order.Status, s.pipeline.Last())
	}

	if err := s.orderRepo.UpdateCompletion(s.db, orderID, completed, time.Now()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update completion flag: %w", err)
	}
	return s.GetOrderByID(orderID)
}

func (s *orderService) UpdatePrice(orderID string, price float64) (*models.Order, error) {
	if price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	order, err := s.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.UpdatePrice(s.db, orderID, price, time.Now()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update price: %w", err)
	}

	s.notifyAsync(order.WhatsappNumber, msgPriceEstimate(price))
	return s.GetOrderByID(orderID)
}

func (s *orderService) UpdateHubPrice(orderID string, price float64) (*models.Order, error) {
	if price < 0 {
		return nil, fmt.Errorf("%w: hub price must not be negative", ErrValidation)
	}
	order, err := s.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.IsInHouse {
		return nil, fmt.Errorf("%w: in-house orders carry no hub price", ErrInvalidState)
	}

	if err := s.orderRepo.UpdateHubPrice(s.db, orderID, price, time.Now()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update hub price: %w", err)
	}
	return s.GetOrderByID(orderID)
}

func (s *orderService) UpdateExpense(orderID string, expense float64) (*models.Order, error) {
	if expense < 0 {
		return nil, fmt.Errorf("%w: expense must not be negative", ErrValidation)
	}
	if err := s.orderRepo.UpdateExpense(s.db, orderID, expense, time.Now()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	return s.GetOrderByID(orderID)
}

func (s *orderService) RecordBalancePayment(orderID string, amount float64, method string) (*models.Order, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: payment amount must not be negative", ErrValidation)
	}
	if utils.IsEmpty(method) {
		return nil, fmt.Errorf("%w: payment method required", ErrValidation)
	}
	if err := s.orderRepo.UpdateBalancePayment(s.db, orderID, amount, method, time.Now()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to record balance payment: %w", err)
	}
	return s.GetOrderByID(orderID)
}

// notifyAsync dispatches a notification without awaiting delivery. Failures
// are logged and never surfaced to the caller.
func (s *orderService) notifyAsync(phoneNumber, message string) {
	if s.notifier == nil || phoneNumber == "" {
		return
	}
	go func() {
		if err := s.notifier.Notify(phoneNumber, message); err != nil {
			utils.LogWarn("WhatsApp notification failed",
				map[string]interface{}{"to": phoneNumber, "error": err.Error()})
		}
	}()
}
