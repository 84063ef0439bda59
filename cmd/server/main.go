package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"solemate_backend/internal/database"
	"solemate_backend/internal/router"
	"solemate_backend/internal/services"
	"solemate_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	utils.InitLogger()
	utils.SetJWTSecret(utils.Getenv("JWT_SECRET", "change-me-in-production"))

	// Load database configuration from environment variables
	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "solemate_user")
	dbPassword := utils.Getenv("DB_PASSWORD", "solemate_password")
	dbName := utils.Getenv("DB_NAME", "solemate_db")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")
	dbSchemaPath := utils.Getenv("DB_SCHEMA_PATH", "db/schema.sql")

	database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode, dbSchemaPath)
	utils.LogInfo("Database initialized", map[string]interface{}{"configured_from_env": true})

	notifier := buildNotifier(database.ConnString(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode))

	engine := gin.Default()
	engine.Use(utils.GinLogger())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowCredentials = true
	engine.Use(cors.New(config))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.Setup(engine, database.GetDB(), notifier)

	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port, "configured_from_env": true})

	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildNotifier returns the WhatsApp notifier when WHATSAPP_ENABLED=true,
// otherwise a log-only notifier. A failed WhatsApp setup falls back to the
// log notifier rather than blocking startup.
func buildNotifier(dsn string) services.Notifier {
	if utils.Getenv("WHATSAPP_ENABLED", "false") != "true" {
		return services.NewLogNotifier()
	}

	wa, err := services.NewWhatsAppNotifier(dsn)
	if err != nil {
		utils.LogError(err, "WhatsApp notifier init failed, falling back to log notifier")
		return services.NewLogNotifier()
	}
	if err := wa.Connect(); err != nil {
		utils.LogError(err, "WhatsApp connect failed, falling back to log notifier")
		return services.NewLogNotifier()
	}
	utils.LogInfo("WhatsApp notifier connected")
	return wa
}
