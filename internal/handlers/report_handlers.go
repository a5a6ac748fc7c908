package handlers

import (
	"net/http"

	"tickettrack_backend/internal/services"
	"tickettrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler holds the reporting service.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// GetTicketMetrics handles fetching the revenue and activity aggregation.
func (h *ReportHandler) GetTicketMetrics(c *gin.Context) {
	report, err := h.reportService.TicketMetrics()
	if err != nil {
		utils.LogError(err, "GetTicketMetrics: Error from reportService.TicketMetrics")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build report.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, report)
}
