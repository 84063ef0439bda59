package handlers

import (
	"errors"
	"net/http"

	"solemate_backend/internal/models"
	"solemate_backend/internal/repositories"
	"solemate_backend/internal/services"
	"solemate_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// StoreHandler manages tenant stores. Hub role only.
type StoreHandler struct {
	authService services.AuthService
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(as services.AuthService) *StoreHandler {
	return &StoreHandler{authService: as}
}

// CreateStore registers a new tenant store with its login password.
func (h *StoreHandler) CreateStore(c *gin.Context) {
	var payload models.RegisterStorePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	store, err := h.authService.RegisterStore(payload)
	if err != nil {
		utils.LogError(err, "CreateStore: Error from authService.RegisterStore")
		switch {
		case errors.Is(err, services.ErrValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid store payload.", err.Error()))
		case errors.Is(err, repositories.ErrDuplicateKey):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "A store with that name already exists.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create store.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, store)
}

// GetStores lists all tenant stores.
func (h *StoreHandler) GetStores(c *gin.Context) {
	stores, err := h.authService.GetStores()
	if err != nil {
		utils.LogError(err, "GetStores: Error from authService.GetStores")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch stores.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stores})
}
