package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"solemate_backend/internal/models"
	"solemate_backend/internal/services"
	"solemate_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler holds the order service.
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

// respondOrderError maps service errors to API responses shared by every
// order mutation endpoint.
func respondOrderError(c *gin.Context, err error, action string) {
	utils.LogError(err, "OrderHandler: "+action)
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
	case errors.Is(err, services.ErrStageBoundary):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Order is already at the end of the pipeline in that direction.", err.Error()))
	case errors.Is(err, services.ErrUnknownStage):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Unknown pipeline stage.", err.Error()))
	case errors.Is(err, services.ErrInvalidState):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Operation not allowed in the order's current state.", err.Error()))
	case errors.Is(err, services.ErrDuplicateSerial):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Serial number collision; please retry.", err.Error()))
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid input.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to "+action+".", "Internal error"))
	}
}

// CreateOrder handles intake of a new repair order. The owning store comes
// from the authenticated token.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateOrder: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	storeID, _ := c.Get("storeID")
	req.StoreID, _ = storeID.(string)

	createdOrder, err := h.orderService.CreateOrder(req)
	if err != nil {
		respondOrderError(c, err, "create order")
		return
	}
	c.JSON(http.StatusCreated, createdOrder)
}

// GetOrders returns the active board by default, or the completed archive
// with ?completed=true. Store tokens are always scoped to their own store.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	var filters models.OrderFilters

	role, _ := c.Get("role")
	if role == utils.RoleStore {
		storeID := c.GetString("storeID")
		filters.StoreID = &storeID
	} else {
		filters.StoreID = utils.NewNullString(c.Query("store_id"))
	}

	filters.Status = utils.NewNullString(c.Query("status"))
	filters.CompletedOnly = c.Query("completed") == "true"

	filters.Page = 1
	if pageStr := c.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page <= 0 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid page format.", "page must be a positive integer"))
			return
		}
		filters.Page = page
	}
	filters.PageSize = 50
	if pageSizeStr := c.Query("page_size"); pageSizeStr != "" {
		pageSize, err := strconv.Atoi(pageSizeStr)
		if err != nil || pageSize <= 0 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid page_size format.", "page_size must be a positive integer"))
			return
		}
		filters.PageSize = pageSize
	}

	orders, totalCount, err := h.orderService.GetOrders(filters)
	if err != nil {
		respondOrderError(c, err, "fetch orders")
		return
	}

	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      orders,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetOrderByID handles fetching a single order with its complaint snapshots.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	order, err := h.orderService.GetOrderByID(c.Param("id"))
	if err != nil {
		respondOrderError(c, err, "fetch order")
		return
	}
	c.JSON(http.StatusOK, order)
}

// AdvanceOrder moves an order one stage forward or backward.
func (h *OrderHandler) AdvanceOrder(c *gin.Context) {
	var req services.AdvanceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	order, err := h.orderService.Advance(c.Param("id"), req.Direction)
	if err != nil {
		respondOrderError(c, err, "advance order")
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus jumps an order to an arbitrary stage.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req services.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	order, err := h.orderService.SetStatus(c.Param("id"), req.Status)
	if err != nil {
		respondOrderError(c, err, "update order status")
		return
	}
	c.JSON(http.StatusOK, order)
}

// BulkUpdateStatus applies one stage to many orders, best effort per order.
func (h *OrderHandler) BulkUpdateStatus(c *gin.Context) {
	var req services.BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.orderService.BulkSetStatus(req.OrderIDs, req.Status)
	if err != nil {
		respondOrderError(c, err, "bulk update status")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ToggleCompletion sets or clears the terminal completion flag.
func (h *OrderHandler) ToggleCompletion(c *gin.Context) {
	var req services.CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	order, err := h.orderService.ToggleCompletion(c.Param("id"), *req.Completed)
	if err != nil {
		respondOrderError(c, err, "toggle completion")
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdatePrice sets the customer-facing price and clears the unknown flag.
func (h *OrderHandler) UpdatePrice(c *gin.Context) {
	var req services.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	order, err := h.orderService.UpdatePrice(c.Param("id"), *req.Amount)
	if err != nil {
		respondOrderError(c, err, "update price")
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateHubPrice sets the hub's charge to the store. Hub role only.
func (h *OrderHandler) UpdateHubPrice(c *gin.Context) {
	var req services.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	order, err := h.orderService.UpdateHubPrice(c.Param("id"), *req.Amount)
	if err != nil {
		respondOrderError(c, err, "update hub price")
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateExpense sets the store-incurred cost on an order.
func (h *OrderHandler) UpdateExpense(c *gin.Context) {
	var req services.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	order, err := h.orderService.UpdateExpense(c.Param("id"), *req.Amount)
	if err != nil {
		respondOrderError(c, err, "update expense")
		return
	}
	c.JSON(http.StatusOK, order)
}

// RecordBalancePayment records the remaining payment on collection.
func (h *OrderHandler) RecordBalancePayment(c *gin.Context) {
	var req services.BalancePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	order, err := h.orderService.RecordBalancePayment(c.Param("id"), *req.Amount, req.Method)
	if err != nil {
		respondOrderError(c, err, "record balance payment")
		return
	}
	c.JSON(http.StatusOK, order)
}
