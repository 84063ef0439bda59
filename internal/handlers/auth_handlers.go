package handlers

import (
	"errors"
	"net/http"

	"solemate_backend/internal/models"
	"solemate_backend/internal/services"
	"solemate_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the auth service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// Login resolves the submitted password to a store or the hub and issues
// tokens. There is no username field.
func (h *AuthHandler) Login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.authService.Login(creds.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid password.", ""))
			return
		}
		utils.LogError(err, "Login: Error from authService.Login")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to log in.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, result)
}

// RefreshToken mints a fresh access token from a valid refresh token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired refresh token.", ""))
			return
		}
		utils.LogError(err, "RefreshToken: Error from authService.Refresh")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to refresh token.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetCurrentActor echoes the resolved identity from the token claims.
func (h *AuthHandler) GetCurrentActor(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"role":       c.GetString("role"),
		"store_id":   c.GetString("storeID"),
		"store_name": c.GetString("storeName"),
	})
}
