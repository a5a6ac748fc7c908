package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"tickettrack_backend/internal/database"
	routerpkg "tickettrack_backend/internal/router"
	"tickettrack_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize Logger
	utils.InitLogger()

	// Load database configuration from environment variables
	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "tickettrack_user")
	dbPassword := utils.Getenv("DB_PASSWORD", "tickettrack_password")
	dbName := utils.Getenv("DB_NAME", "tickettrack_db")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")
	dbSchemaPath := utils.Getenv("DB_SCHEMA_PATH", "db_schema.sql")

	// Initialize Database
	database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode, dbSchemaPath)
	utils.LogInfo("Database initialized", map[string]interface{}{"configured_from_env": true})

	// Billing rounds timestamps in the operator's local timezone.
	tzName := utils.Getenv("TZ_NAME", "Local")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		utils.LogError(err, "Invalid TZ_NAME, falling back to local time")
		loc = time.Local
	}

	cfg := routerpkg.Config{
		DataDir:        utils.Getenv("DATA_DIR", "./data"),
		Location:       loc,
		APIToken:       os.Getenv("API_TOKEN"),
		AppSecret:      utils.Getenv("APP_SECRET", "change-me-in-production"),
		UIUsername:     os.Getenv("UI_USERNAME"),
		UIPassword:     os.Getenv("UI_PASSWORD"),
		UIPasswordHash: os.Getenv("UI_PASSWORD_HASH"),
		GoogleAPIKey:   os.Getenv("GOOGLE_MAPS_API_KEY"),
		GoogleRegion:   utils.Getenv("GOOGLE_ADDRESS_REGION_CODE", "US"),
	}

	engine := gin.Default()

	// Add GinLogger middleware for request logging
	engine.Use(utils.GinLogger())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:8000"}
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-API-Key"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	// Server-rendered pages
	engine.LoadHTMLGlob(utils.Getenv("TEMPLATES_DIR", "web/templates") + "/*.html")

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Setup all application routes
	dbConn := database.GetDB()
	routerpkg.Setup(engine, dbConn, cfg)

	// Server port configuration
	port := utils.Getenv("PORT", "8000")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port, "configured_from_env": true})

	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
