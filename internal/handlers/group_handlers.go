package handlers

import (
	"errors"
	"net/http"

	"solemate_backend/internal/services"
	"solemate_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GroupHandler holds the group service.
type GroupHandler struct {
	groupService services.GroupService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(gs services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: gs}
}

// CreateGroup bundles existing orders into a shared-expense group.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req services.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	group, err := h.groupService.CreateGroup(req)
	if err != nil {
		utils.LogError(err, "CreateGroup: Error from groupService.CreateGroup")
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "One or more orders not found.", err.Error()))
		case errors.Is(err, services.ErrValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid group payload.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create group.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, group)
}

// GetGroups returns all groups hydrated with members and expenses.
func (h *GroupHandler) GetGroups(c *gin.Context) {
	groups, err := h.groupService.GetGroups()
	if err != nil {
		utils.LogError(err, "GetGroups: Error from groupService.GetGroups")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch groups.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": groups})
}

// AddGroupExpense records a shared cost and distributes it across members.
func (h *GroupHandler) AddGroupExpense(c *gin.Context) {
	var req services.GroupExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	group, err := h.groupService.AddGroupExpense(c.Param("id"), req)
	if err != nil {
		utils.LogError(err, "AddGroupExpense: Error from groupService.AddGroupExpense")
		switch {
		case errors.Is(err, services.ErrGroupNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Group not found.", err.Error()))
		case errors.Is(err, services.ErrEmptyGroup):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Group has no member orders.", err.Error()))
		case errors.Is(err, services.ErrValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid expense payload.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to add group expense.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, group)
}
