package router

import (
	"tickettrack_backend/internal/handlers"
	"tickettrack_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupTicketRoutes sets up the ticket routes, including attachments.
func SetupTicketRoutes(apiGroup *gin.RouterGroup, ticketHandler *handlers.TicketHandler) {
	ticketRoutes := apiGroup.Group("/tickets")
	{
		ticketRoutes.POST("", ticketHandler.CreateTicket)
		ticketRoutes.GET("", ticketHandler.GetTickets)
		ticketRoutes.GET("/active", ticketHandler.GetActiveTickets)
		ticketRoutes.GET("/:id", ticketHandler.GetTicketByID)
		ticketRoutes.PATCH("/:id", ticketHandler.UpdateTicket)
		ticketRoutes.DELETE("/:id", ticketHandler.DeleteTicket)

		ticketRoutes.POST("/:id/attachments", ticketHandler.UploadAttachment)
		ticketRoutes.GET("/:id/attachments", ticketHandler.GetAttachments)
		ticketRoutes.GET("/:id/attachments/:attachment_id", ticketHandler.DownloadAttachment)
	}
}

// SetupHardwareRoutes sets up the hardware catalog routes.
func SetupHardwareRoutes(apiGroup *gin.RouterGroup, hardwareHandler *handlers.HardwareHandler) {
	hardwareRoutes := apiGroup.Group("/hardware")
	{
		hardwareRoutes.POST("", hardwareHandler.CreateHardware)
		hardwareRoutes.GET("", hardwareHandler.GetHardwareItems)
		hardwareRoutes.GET("/barcode/:barcode", hardwareHandler.LookupByBarcode)
		hardwareRoutes.GET("/:id", hardwareHandler.GetHardwareByID)
		hardwareRoutes.PATCH("/:id", hardwareHandler.UpdateHardware)
		hardwareRoutes.DELETE("/:id", hardwareHandler.DeleteHardware)
	}
}

// SetupInventoryRoutes sets up the inventory ledger routes.
func SetupInventoryRoutes(apiGroup *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler) {
	inventoryRoutes := apiGroup.Group("/inventory")
	{
		inventoryRoutes.GET("/summary", inventoryHandler.GetSummary)
		inventoryRoutes.GET("/events", inventoryHandler.GetEvents)
		inventoryRoutes.POST("/events", inventoryHandler.CreateEvent)
		inventoryRoutes.POST("/receive", inventoryHandler.ReceiveStock)
		inventoryRoutes.POST("/use", inventoryHandler.UseStock)
		inventoryRoutes.DELETE("/events/:id", inventoryHandler.DeleteEvent)
	}
}

// SetupClientRoutes sets up the client directory routes. Reads are public so
// headless tooling can resolve clients without a token; writes and the route
// planner sit behind the auth middleware.
func SetupClientRoutes(publicGroup, apiGroup *gin.RouterGroup, clientHandler *handlers.ClientHandler, addressHandler *handlers.AddressHandler) {
	publicRoutes := publicGroup.Group("/clients")
	{
		publicRoutes.GET("", clientHandler.GetClients)
		publicRoutes.GET("/attributes", clientHandler.GetAttributeKeys)
		publicRoutes.GET("/lookup", clientHandler.GetClientByName)
		publicRoutes.GET("/:key", clientHandler.GetClientByKey)
	}

	clientRoutes := apiGroup.Group("/clients")
	{
		clientRoutes.POST("", clientHandler.CreateClient)
		clientRoutes.POST("/attributes", clientHandler.AddAttributeKey)
		clientRoutes.DELETE("/attributes/:key", clientHandler.RemoveAttributeKey)
		clientRoutes.PATCH("/:key", clientHandler.UpdateClient)
		clientRoutes.DELETE("/:key", clientHandler.DeleteClient)
		clientRoutes.POST("/route/plan", addressHandler.PlanRoute)
	}
}

// SetupProjectRoutes sets up the project staging routes.
func SetupProjectRoutes(apiGroup *gin.RouterGroup, projectHandler *handlers.ProjectHandler) {
	projectRoutes := apiGroup.Group("/projects")
	{
		projectRoutes.POST("", projectHandler.CreateProject)
		projectRoutes.GET("", projectHandler.GetProjects)
		projectRoutes.GET("/:id", projectHandler.GetProjectByID)
		projectRoutes.PATCH("/:id", projectHandler.UpdateProject)
		projectRoutes.POST("/:id/finalize", projectHandler.FinalizeProject)
		projectRoutes.DELETE("/:id", projectHandler.DeleteProject)

		projectRoutes.GET("/:id/tickets", projectHandler.GetProjectTickets)
		projectRoutes.POST("/:id/tickets", projectHandler.CreateProjectTicket)
		projectRoutes.PATCH("/:id/tickets/:ticket_id", projectHandler.UpdateProjectTicket)
		projectRoutes.DELETE("/:id/tickets/:ticket_id", projectHandler.DeleteProjectTicket)
	}
}

// SetupAddressRoutes sets up the geocoding proxy routes.
func SetupAddressRoutes(apiGroup *gin.RouterGroup, addressHandler *handlers.AddressHandler) {
	addressRoutes := apiGroup.Group("/address")
	{
		addressRoutes.GET("/suggest", addressHandler.SuggestAddress)
		addressRoutes.GET("/verify", addressHandler.VerifyAddress)
	}
}

// SetupReportRoutes sets up the reporting routes.
func SetupReportRoutes(apiGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	reportRoutes := apiGroup.Group("/reports")
	{
		reportRoutes.GET("/summary", reportHandler.GetTicketMetrics)
	}
}

// SetupUIRoutes sets up the login flow and the server-rendered pages.
func SetupUIRoutes(engine *gin.Engine, uiHandler *handlers.UIHandler, authHandler *handlers.AuthHandler, cfg Config) {
	engine.GET("/login", authHandler.ShowLogin)
	engine.POST("/login", authHandler.Login)
	engine.POST("/logout", authHandler.Logout)

	pages := engine.Group("")
	pages.Use(middleware.UIAuthMiddleware(cfg.UIUsername, cfg.AppSecret))
	{
		pages.GET("/", uiHandler.Dashboard)
		pages.GET("/tickets", uiHandler.Tickets)
		pages.GET("/hardware", uiHandler.Hardware)
		pages.GET("/inventory", uiHandler.Inventory)
		pages.GET("/clients", uiHandler.Clients)
		pages.GET("/projects", uiHandler.Projects)
	}
}
