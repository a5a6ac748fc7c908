package handlers

import (
	"errors"
	"net/http"

	"tickettrack_backend/internal/services"
	"tickettrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// InventoryHandler holds the inventory ledger service.
type InventoryHandler struct {
	inventoryService services.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(is services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: is}
}

func (h *InventoryHandler) respondMovementError(c *gin.Context, err error, context string) {
	utils.LogError(err, context)
	if errors.Is(err, services.ErrHardwareNotFound) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Hardware item not found.", err.Error()))
	} else if errors.Is(err, services.ErrValidation) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	} else {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to record inventory event.", "Internal error"))
	}
}

// ReceiveStock handles booking incoming stock from a vendor.
func (h *InventoryHandler) ReceiveStock(c *gin.Context) {
	var req services.StockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "ReceiveStock: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	event, err := h.inventoryService.ReceiveStock(req)
	if err != nil {
		h.respondMovementError(c, err, "ReceiveStock: Error from inventoryService.ReceiveStock")
		return
	}
	c.JSON(http.StatusCreated, event)
}

// UseStock handles booking outgoing stock handed to a client outside of a
// ticket.
func (h *InventoryHandler) UseStock(c *gin.Context) {
	var req services.StockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UseStock: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	event, err := h.inventoryService.UseStock(req)
	if err != nil {
		h.respondMovementError(c, err, "UseStock: Error from inventoryService.UseStock")
		return
	}
	c.JSON(http.StatusCreated, event)
}

// CreateEvent handles a manual ledger correction with an arbitrary signed
// change.
func (h *InventoryHandler) CreateEvent(c *gin.Context) {
	var req services.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateEvent: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	event, err := h.inventoryService.CreateEvent(req)
	if err != nil {
		h.respondMovementError(c, err, "CreateEvent: Error from inventoryService.CreateEvent")
		return
	}
	c.JSON(http.StatusCreated, event)
}

// GetEvents handles fetching the ledger, newest first.
func (h *InventoryHandler) GetEvents(c *gin.Context) {
	limit, offset := parsePagination(c)

	events, err := h.inventoryService.GetEvents(limit, offset)
	if err != nil {
		utils.LogError(err, "GetEvents: Error from inventoryService.GetEvents")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch inventory events.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, events)
}

// GetSummary handles fetching on-hand counts per catalog item.
func (h *InventoryHandler) GetSummary(c *gin.Context) {
	summary, err := h.inventoryService.GetSummary()
	if err != nil {
		utils.LogError(err, "GetSummary: Error from inventoryService.GetSummary")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch inventory summary.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DeleteEvent handles removing a manual ledger row.
func (h *InventoryHandler) DeleteEvent(c *gin.Context) {
	idStr := c.Param("id")
	id, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid event ID format.", err.Error()))
		return
	}

	if err := h.inventoryService.DeleteEvent(id); err != nil {
		utils.LogError(err, "DeleteEvent: Error from inventoryService.DeleteEvent for ID "+idStr)
		if errors.Is(err, services.ErrEventNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Inventory event not found.", err.Error()))
		} else if errors.Is(err, services.ErrEventProtected) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Ticket-managed events can only change through their ticket.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete inventory event.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}
