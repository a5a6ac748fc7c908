package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"tickettrack_backend/internal/services"
	"tickettrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TicketHandler holds the ticket and attachment services.
type TicketHandler struct {
	ticketService     services.TicketService
	attachmentService services.AttachmentService
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(ts services.TicketService, as services.AttachmentService) *TicketHandler {
	return &TicketHandler{ticketService: ts, attachmentService: as}
}

func parsePagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "200"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// respondTicketWriteError maps ticket create/update failures onto API error
// responses. Unknown client keys and unresolvable hardware are semantic (422),
// other validation failures are 400.
func respondTicketWriteError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, services.ErrTicketNotFound) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Ticket not found.", err.Error()))
	} else if errors.Is(err, services.ErrUnknownClientKey) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Unknown client key.", err.Error()))
	} else if errors.Is(err, services.ErrHardwareNotFound) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Hardware item not found for this ticket.", err.Error()))
	} else if errors.Is(err, services.ErrValidation) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	} else {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, fallback, "Internal error"))
	}
}

// CreateTicket handles the creation of a new ticket.
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	var req services.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateTicket: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	ticket, err := h.ticketService.CreateTicket(req)
	if err != nil {
		utils.LogError(err, "CreateTicket: Error from ticketService.CreateTicket")
		respondTicketWriteError(c, err, "Failed to create ticket.")
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// GetTickets handles fetching the main ticket list. Tickets staged inside an
// unfinalized project are excluded.
func (h *TicketHandler) GetTickets(c *gin.Context) {
	limit, offset := parsePagination(c)

	tickets, err := h.ticketService.GetTickets(limit, offset)
	if err != nil {
		utils.LogError(err, "GetTickets: Error from ticketService.GetTickets")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch tickets.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// GetActiveTickets handles fetching running time tickets, optionally filtered
// by client key.
func (h *TicketHandler) GetActiveTickets(c *gin.Context) {
	limit, offset := parsePagination(c)

	var clientKey *string
	if v := c.Query("client_key"); v != "" {
		clientKey = &v
	}

	tickets, err := h.ticketService.GetActiveTickets(clientKey, limit, offset)
	if err != nil {
		utils.LogError(err, "GetActiveTickets: Error from ticketService.GetActiveTickets")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch active tickets.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// GetTicketByID handles fetching a single ticket by ID.
func (h *TicketHandler) GetTicketByID(c *gin.Context) {
	idStr := c.Param("id")
	id, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid ticket ID format.", err.Error()))
		return
	}

	ticket, err := h.ticketService.GetTicketByID(id)
	if err != nil {
		utils.LogError(err, "GetTicketByID: Error from ticketService.GetTicketByID for ID "+idStr)
		if errors.Is(err, services.ErrTicketNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Ticket not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch ticket.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// UpdateTicket handles a partial ticket update, rerunning billing and the
// inventory reconciliation.
func (h *TicketHandler) UpdateTicket(c *gin.Context) {
	idStr := c.Param("id")
	id, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid ticket ID format.", err.Error()))
		return
	}

	var req services.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateTicket: Failed to bind JSON for ID "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	ticket, err := h.ticketService.UpdateTicket(id, req)
	if err != nil {
		utils.LogError(err, "UpdateTicket: Error from ticketService.UpdateTicket for ID "+idStr)
		respondTicketWriteError(c, err, "Failed to update ticket.")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// DeleteTicket handles deleting a ticket along with its auto inventory event
// and attachments.
func (h *TicketHandler) DeleteTicket(c *gin.Context) {
	idStr := c.Param("id")
	id, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid ticket ID format.", err.Error()))
		return
	}

	if err := h.ticketService.DeleteTicket(id); err != nil {
		utils.LogError(err, "DeleteTicket: Error from ticketService.DeleteTicket for ID "+idStr)
		if errors.Is(err, services.ErrTicketNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Ticket not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete ticket.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadAttachment handles a multipart image upload for a ticket.
func (h *TicketHandler) UploadAttachment(c *gin.Context) {
	idStr := c.Param("id")
	id, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid ticket ID format.", err.Error()))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Missing file field in multipart form.", err.Error()))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		utils.LogError(err, "UploadAttachment: Failed to open uploaded file for ticket "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to read uploaded file.", "Internal error"))
		return
	}
	defer src.Close()

	attachment, err := h.attachmentService.Upload(id, fileHeader.Filename, src)
	if err != nil {
		utils.LogError(err, "UploadAttachment: Error from attachmentService.Upload for ticket "+idStr)
		if errors.Is(err, services.ErrTicketNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Ticket not found.", err.Error()))
		} else if errors.Is(err, services.ErrUnsupportedAttachment) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnsupportedMediaType, utils.ErrCodeUnsupportedMedia, "Only image attachments are accepted.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to store attachment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, attachment)
}

// GetAttachments handles listing a ticket's attachment metadata.
func (h *TicketHandler) GetAttachments(c *gin.Context) {
	idStr := c.Param("id")
	id, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid ticket ID format.", err.Error()))
		return
	}

	attachments, err := h.attachmentService.ListAttachments(id)
	if err != nil {
		utils.LogError(err, "GetAttachments: Error from attachmentService.ListAttachments for ticket "+idStr)
		if errors.Is(err, services.ErrTicketNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Ticket not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch attachments.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, attachments)
}

// DownloadAttachment serves the stored attachment file.
func (h *TicketHandler) DownloadAttachment(c *gin.Context) {
	idStr := c.Param("id")
	id, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid ticket ID format.", err.Error()))
		return
	}
	attachmentID := c.Param("attachment_id")

	attachment, path, err := h.attachmentService.OpenAttachment(id, attachmentID)
	if err != nil {
		utils.LogError(err, "DownloadAttachment: Error from attachmentService.OpenAttachment for ticket "+idStr)
		if errors.Is(err, services.ErrAttachmentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Attachment not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch attachment.", "Internal error"))
		}
		return
	}

	c.Header("Content-Type", attachment.ContentType)
	c.FileAttachment(path, attachment.Filename)
}
