package router

import (
	"database/sql"
	"time"

	"tickettrack_backend/internal/clientstore"
	"tickettrack_backend/internal/handlers"
	"tickettrack_backend/internal/middleware"
	"tickettrack_backend/internal/repositories"
	"tickettrack_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Config carries the runtime settings the routes depend on.
type Config struct {
	DataDir        string
	Location       *time.Location
	APIToken       string
	AppSecret      string
	UIUsername     string
	UIPassword     string
	UIPasswordHash string
	GoogleAPIKey   string
	GoogleRegion   string
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, cfg Config) {
	// Initialize Repositories
	ticketRepo := repositories.NewTicketRepository(db)
	hardwareRepo := repositories.NewHardwareRepository(db)
	inventoryRepo := repositories.NewInventoryRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	attachmentRepo := repositories.NewAttachmentRepository(db)
	txManager := repositories.NewTxManager(db)

	// The client directory lives in JSON files next to the database.
	store := clientstore.NewStore(cfg.DataDir)

	// Initialize Services
	attachmentService := services.NewAttachmentService(attachmentRepo, ticketRepo, cfg.DataDir)
	ticketService := services.NewTicketService(ticketRepo, inventoryRepo, hardwareRepo, attachmentRepo, store, attachmentService, txManager, cfg.Location)
	hardwareService := services.NewHardwareService(hardwareRepo)
	inventoryService := services.NewInventoryService(inventoryRepo, hardwareRepo)
	projectService := services.NewProjectService(projectRepo, ticketRepo, inventoryRepo, attachmentRepo, store, attachmentService, txManager)
	clientService := services.NewClientService(store)
	reportService := services.NewReportService(ticketRepo, store)
	addressService := services.NewAddressService(services.AddressServiceConfig{
		APIKey:     cfg.GoogleAPIKey,
		RegionCode: cfg.GoogleRegion,
	})

	// Initialize Handlers
	ticketHandler := handlers.NewTicketHandler(ticketService, attachmentService)
	hardwareHandler := handlers.NewHardwareHandler(hardwareService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	clientHandler := handlers.NewClientHandler(clientService)
	projectHandler := handlers.NewProjectHandler(projectService, ticketService)
	addressHandler := handlers.NewAddressHandler(addressService)
	reportHandler := handlers.NewReportHandler(reportService)
	authHandler := handlers.NewAuthHandler(handlers.AuthConfig{
		Username:     cfg.UIUsername,
		Password:     cfg.UIPassword,
		PasswordHash: cfg.UIPasswordHash,
		AppSecret:    cfg.AppSecret,
	})
	uiHandler := handlers.NewUIHandler(ticketService, hardwareService, inventoryService, clientService, projectService, reportService)

	// publicV1 carries the unauthenticated client reads; everything else runs
	// behind the API auth middleware.
	publicV1 := engine.Group("/api/v1")
	apiV1 := engine.Group("/api/v1")
	apiV1.Use(middleware.APIAuthMiddleware(cfg.APIToken, cfg.AppSecret))

	SetupTicketRoutes(apiV1, ticketHandler)
	SetupHardwareRoutes(apiV1, hardwareHandler)
	SetupInventoryRoutes(apiV1, inventoryHandler)
	SetupClientRoutes(publicV1, apiV1, clientHandler, addressHandler)
	SetupProjectRoutes(apiV1, projectHandler)
	SetupAddressRoutes(apiV1, addressHandler)
	SetupReportRoutes(apiV1, reportHandler)

	SetupUIRoutes(engine, uiHandler, authHandler, cfg)
}
