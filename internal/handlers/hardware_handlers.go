package handlers

import (
	"errors"
	"net/http"

	"tickettrack_backend/internal/services"
	"tickettrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// HardwareHandler holds the hardware catalog service.
type HardwareHandler struct {
	hardwareService services.HardwareService
}

// NewHardwareHandler creates a new HardwareHandler.
func NewHardwareHandler(hs services.HardwareService) *HardwareHandler {
	return &HardwareHandler{hardwareService: hs}
}

// CreateHardware handles registering a new catalog item.
func (h *HardwareHandler) CreateHardware(c *gin.Context) {
	var req services.CreateHardwareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateHardware: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	item, err := h.hardwareService.CreateHardware(req)
	if err != nil {
		utils.LogError(err, "CreateHardware: Error from hardwareService.CreateHardware")
		if errors.Is(err, services.ErrBarcodeTaken) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Barcode already registered.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create hardware item.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetHardwareItems handles fetching the catalog.
func (h *HardwareHandler) GetHardwareItems(c *gin.Context) {
	limit, offset := parsePagination(c)

	items, err := h.hardwareService.GetHardwareItems(limit, offset)
	if err != nil {
		utils.LogError(err, "GetHardwareItems: Error from hardwareService.GetHardwareItems")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch hardware items.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetHardwareByID handles fetching a single catalog item by ID.
func (h *HardwareHandler) GetHardwareByID(c *gin.Context) {
	idStr := c.Param("id")
	id, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid hardware ID format.", err.Error()))
		return
	}

	item, err := h.hardwareService.GetHardwareByID(id)
	if err != nil {
		utils.LogError(err, "GetHardwareByID: Error from hardwareService.GetHardwareByID for ID "+idStr)
		if errors.Is(err, services.ErrHardwareNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Hardware item not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch hardware item.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, item)
}

// LookupByBarcode handles resolving a scanned barcode to a catalog item.
func (h *HardwareHandler) LookupByBarcode(c *gin.Context) {
	barcode := c.Param("barcode")

	item, err := h.hardwareService.LookupByBarcode(barcode)
	if err != nil {
		if errors.Is(err, services.ErrHardwareNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "No hardware item matches this barcode.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.LogError(err, "LookupByBarcode: Error from hardwareService.LookupByBarcode")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to look up barcode.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateHardware handles a partial catalog item update.
func (h *HardwareHandler) UpdateHardware(c *gin.Context) {
	idStr := c.Param("id")
	id, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid hardware ID format.", err.Error()))
		return
	}

	var req services.UpdateHardwareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateHardware: Failed to bind JSON for ID "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	item, err := h.hardwareService.UpdateHardware(id, req)
	if err != nil {
		utils.LogError(err, "UpdateHardware: Error from hardwareService.UpdateHardware for ID "+idStr)
		if errors.Is(err, services.ErrHardwareNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Hardware item not found.", err.Error()))
		} else if errors.Is(err, services.ErrBarcodeTaken) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Barcode already registered.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update hardware item.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteHardware handles removing a catalog item.
func (h *HardwareHandler) DeleteHardware(c *gin.Context) {
	idStr := c.Param("id")
	id, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid hardware ID format.", err.Error()))
		return
	}

	if err := h.hardwareService.DeleteHardware(id); err != nil {
		utils.LogError(err, "DeleteHardware: Error from hardwareService.DeleteHardware for ID "+idStr)
		if errors.Is(err, services.ErrHardwareNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Hardware item not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete hardware item.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}
