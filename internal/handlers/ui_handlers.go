package handlers

import (
	"net/http"

	"tickettrack_backend/internal/services"
	"tickettrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// UIHandler renders the server-side HTML pages. Pages load their data
// directly from the services; interactive edits go through the JSON API.
type UIHandler struct {
	ticketService    services.TicketService
	hardwareService  services.HardwareService
	inventoryService services.InventoryService
	clientService    services.ClientService
	projectService   services.ProjectService
	reportService    services.ReportService
}

// NewUIHandler creates a new UIHandler.
func NewUIHandler(
	ts services.TicketService,
	hs services.HardwareService,
	is services.InventoryService,
	cs services.ClientService,
	ps services.ProjectService,
	rs services.ReportService,
) *UIHandler {
	return &UIHandler{
		ticketService:    ts,
		hardwareService:  hs,
		inventoryService: is,
		clientService:    cs,
		projectService:   ps,
		reportService:    rs,
	}
}

func renderError(c *gin.Context, err error, context string) {
	utils.LogError(err, context)
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": "Failed to load page data"})
}

// Dashboard renders the report summary.
func (h *UIHandler) Dashboard(c *gin.Context) {
	report, err := h.reportService.TicketMetrics()
	if err != nil {
		renderError(c, err, "Dashboard: Error from reportService.TicketMetrics")
		return
	}
	c.HTML(http.StatusOK, "dashboard.html", gin.H{"active": "dashboard", "report": report})
}

// Tickets renders the main ticket list.
func (h *UIHandler) Tickets(c *gin.Context) {
	tickets, err := h.ticketService.GetTickets(200, 0)
	if err != nil {
		renderError(c, err, "Tickets: Error from ticketService.GetTickets")
		return
	}
	c.HTML(http.StatusOK, "tickets.html", gin.H{"active": "tickets", "tickets": tickets})
}

// Hardware renders the catalog.
func (h *UIHandler) Hardware(c *gin.Context) {
	items, err := h.hardwareService.GetHardwareItems(500, 0)
	if err != nil {
		renderError(c, err, "Hardware: Error from hardwareService.GetHardwareItems")
		return
	}
	c.HTML(http.StatusOK, "hardware.html", gin.H{"active": "hardware", "items": items})
}

// Inventory renders the on-hand summary and the recent ledger.
func (h *UIHandler) Inventory(c *gin.Context) {
	summary, err := h.inventoryService.GetSummary()
	if err != nil {
		renderError(c, err, "Inventory: Error from inventoryService.GetSummary")
		return
	}
	events, err := h.inventoryService.GetEvents(100, 0)
	if err != nil {
		renderError(c, err, "Inventory: Error from inventoryService.GetEvents")
		return
	}
	c.HTML(http.StatusOK, "inventory.html", gin.H{"active": "inventory", "summary": summary, "events": events})
}

// Clients renders the directory with its custom attribute columns.
func (h *UIHandler) Clients(c *gin.Context) {
	clients, err := h.clientService.ListClients()
	if err != nil {
		renderError(c, err, "Clients: Error from clientService.ListClients")
		return
	}
	keys, err := h.clientService.AttributeKeys()
	if err != nil {
		renderError(c, err, "Clients: Error from clientService.AttributeKeys")
		return
	}
	c.HTML(http.StatusOK, "clients.html", gin.H{"active": "clients", "clients": clients, "attributeKeys": keys})
}

// Projects renders the staging containers.
func (h *UIHandler) Projects(c *gin.Context) {
	projects, err := h.projectService.GetProjects(200, 0)
	if err != nil {
		renderError(c, err, "Projects: Error from projectService.GetProjects")
		return
	}
	c.HTML(http.StatusOK, "projects.html", gin.H{"active": "projects", "projects": projects})
}
