package router

import (
	"database/sql"
	"os"

	"solemate_backend/internal/handlers"
	"solemate_backend/internal/middleware"
	"solemate_backend/internal/repositories"
	"solemate_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup wires repositories, services and handlers and registers all routes.
// The notifier is injected by main so the WhatsApp transport stays optional.
func Setup(engine *gin.Engine, db *sql.DB, notifier services.Notifier) {
	// Initialize Repositories
	orderRepo := repositories.NewOrderRepository(db)
	catalogRepo := repositories.NewCatalogRepository(db)
	groupRepo := repositories.NewGroupRepository(db)
	storeRepo := repositories.NewStoreRepository(db)

	// Initialize Services
	pipeline := services.PipelineFromVariant(os.Getenv("PIPELINE_VARIANT"))

	orderService := services.NewOrderService(orderRepo, catalogRepo, db, pipeline, notifier)
	groupService := services.NewGroupService(groupRepo, orderRepo, db)
	catalogService := services.NewCatalogService(catalogRepo)
	authService := services.NewAuthService(storeRepo, os.Getenv("HUB_PASSWORD"))

	// Initialize Handlers
	orderHandler := handlers.NewOrderHandler(orderService)
	groupHandler := handlers.NewGroupHandler(groupService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	authHandler := handlers.NewAuthHandler(authService)
	storeHandler := handlers.NewStoreHandler(authService)

	apiV1 := engine.Group("/api/v1")

	SetupAuthRoutes(apiV1, authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupOrderRoutes(authenticated, orderHandler)
		SetupGroupRoutes(authenticated, groupHandler)
		SetupCatalogRoutes(authenticated, catalogHandler)
		SetupStoreRoutes(authenticated, storeHandler)
	}
}
