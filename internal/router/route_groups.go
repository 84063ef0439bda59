package router

import (
	"solemate_backend/internal/handlers"
	"solemate_backend/internal/middleware"
	"solemate_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authentication routes. Login and refresh are
// public; /me requires a valid token.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh-token", authHandler.RefreshToken)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware())
		{
			authRequiredRoutes.GET("/me", authHandler.GetCurrentActor)
		}
	}
}

// SetupOrderRoutes sets up the order lifecycle routes. Hub price is the only
// hub-restricted mutation; everything else is shared by both roles.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	orderRoutes.Use(middleware.RoleAuthMiddleware(utils.RoleHub, utils.RoleStore))
	{
		orderRoutes.POST("", orderHandler.CreateOrder)
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
		orderRoutes.PATCH("/:id/advance", orderHandler.AdvanceOrder)
		orderRoutes.PATCH("/:id/status", orderHandler.UpdateOrderStatus)
		orderRoutes.PATCH("/bulk-status", orderHandler.BulkUpdateStatus)
		orderRoutes.PATCH("/:id/completion", orderHandler.ToggleCompletion)
		orderRoutes.PATCH("/:id/price", orderHandler.UpdatePrice)
		orderRoutes.PATCH("/:id/expense", orderHandler.UpdateExpense)
		orderRoutes.PATCH("/:id/balance-payment", orderHandler.RecordBalancePayment)
	}

	authenticatedGroup.PATCH("/orders/:id/hub-price", middleware.RoleAuthMiddleware(utils.RoleHub), orderHandler.UpdateHubPrice)
}

// SetupGroupRoutes sets up the shipment group routes.
func SetupGroupRoutes(authenticatedGroup *gin.RouterGroup, groupHandler *handlers.GroupHandler) {
	groupRoutes := authenticatedGroup.Group("/groups")
	groupRoutes.Use(middleware.RoleAuthMiddleware(utils.RoleHub, utils.RoleStore))
	{
		groupRoutes.POST("", groupHandler.CreateGroup)
		groupRoutes.GET("", groupHandler.GetGroups)
		groupRoutes.POST("/:id/expenses", groupHandler.AddGroupExpense)
	}
}

// SetupCatalogRoutes sets up the complaint and in-house preset catalogs.
func SetupCatalogRoutes(authenticatedGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	complaintRoutes := authenticatedGroup.Group("/complaints")
	complaintRoutes.Use(middleware.RoleAuthMiddleware(utils.RoleHub, utils.RoleStore))
	{
		complaintRoutes.GET("", catalogHandler.GetComplaints)
		complaintRoutes.POST("", catalogHandler.CreateComplaint)
		complaintRoutes.DELETE("/:id", catalogHandler.DeleteComplaint)
	}

	presetRoutes := authenticatedGroup.Group("/in-house-presets")
	presetRoutes.Use(middleware.RoleAuthMiddleware(utils.RoleHub, utils.RoleStore))
	{
		presetRoutes.GET("", catalogHandler.GetInHousePresets)
		presetRoutes.POST("", catalogHandler.CreateInHousePreset)
		presetRoutes.DELETE("/:id", catalogHandler.DeleteInHousePreset)
	}
}

// SetupStoreRoutes sets up the store management routes. Hub only.
func SetupStoreRoutes(authenticatedGroup *gin.RouterGroup, storeHandler *handlers.StoreHandler) {
	storeRoutes := authenticatedGroup.Group("/stores")
	storeRoutes.Use(middleware.RoleAuthMiddleware(utils.RoleHub))
	{
		storeRoutes.POST("", storeHandler.CreateStore)
		storeRoutes.GET("", storeHandler.GetStores)
	}
}
