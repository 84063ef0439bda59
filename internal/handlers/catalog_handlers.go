package handlers

import (
	"errors"
	"net/http"

	"solemate_backend/internal/services"
	"solemate_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler holds the catalog service for both intake catalogs.
type CatalogHandler struct {
	catalogService services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cs services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: cs}
}

func respondCatalogError(c *gin.Context, err error, action string) {
	utils.LogError(err, "CatalogHandler: "+action)
	switch {
	case errors.Is(err, services.ErrCatalogEntryNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Catalog entry not found.", err.Error()))
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid catalog payload.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to "+action+".", "Internal error"))
	}
}

// GetComplaints lists the hub-routed repair catalog.
func (h *CatalogHandler) GetComplaints(c *gin.Context) {
	complaints, err := h.catalogService.GetComplaints()
	if err != nil {
		respondCatalogError(c, err, "fetch complaints")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": complaints})
}

// CreateComplaint adds a complaint catalog entry.
func (h *CatalogHandler) CreateComplaint(c *gin.Context) {
	var req services.CatalogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	complaint, err := h.catalogService.CreateComplaint(req)
	if err != nil {
		respondCatalogError(c, err, "create complaint")
		return
	}
	c.JSON(http.StatusCreated, complaint)
}

// DeleteComplaint removes a complaint catalog entry; existing orders keep
// their snapshots.
func (h *CatalogHandler) DeleteComplaint(c *gin.Context) {
	if err := h.catalogService.DeleteComplaint(c.Param("id")); err != nil {
		respondCatalogError(c, err, "delete complaint")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Complaint deleted successfully"})
}

// GetInHousePresets lists the in-house repair catalog.
func (h *CatalogHandler) GetInHousePresets(c *gin.Context) {
	presets, err := h.catalogService.GetInHousePresets()
	if err != nil {
		respondCatalogError(c, err, "fetch in-house presets")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": presets})
}

// CreateInHousePreset adds an in-house preset catalog entry.
func (h *CatalogHandler) CreateInHousePreset(c *gin.Context) {
	var req services.CatalogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	preset, err := h.catalogService.CreateInHousePreset(req)
	if err != nil {
		respondCatalogError(c, err, "create in-house preset")
		return
	}
	c.JSON(http.StatusCreated, preset)
}

// DeleteInHousePreset removes an in-house preset catalog entry.
func (h *CatalogHandler) DeleteInHousePreset(c *gin.Context) {
	if err := h.catalogService.DeleteInHousePreset(c.Param("id")); err != nil {
		respondCatalogError(c, err, "delete in-house preset")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "In-house preset deleted successfully"})
}
