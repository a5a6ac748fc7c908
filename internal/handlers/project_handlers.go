package handlers

import (
	"errors"
	"net/http"

	"tickettrack_backend/internal/models"
	"tickettrack_backend/internal/services"
	"tickettrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ProjectHandler holds the project staging service plus the ticket service
// for the nested ticket routes.
type ProjectHandler struct {
	projectService services.ProjectService
	ticketService  services.TicketService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(ps services.ProjectService, ts services.TicketService) *ProjectHandler {
	return &ProjectHandler{projectService: ps, ticketService: ts}
}

// CreateProject handles creating a new staging container.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateProject: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	project, err := h.projectService.CreateProject(req)
	if err != nil {
		utils.LogError(err, "CreateProject: Error from projectService.CreateProject")
		if errors.Is(err, services.ErrUnknownClientKey) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Unknown client key.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create project.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, project)
}

// GetProjects handles fetching all projects with their ticket tallies.
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	limit, offset := parsePagination(c)

	projects, err := h.projectService.GetProjects(limit, offset)
	if err != nil {
		utils.LogError(err, "GetProjects: Error from projectService.GetProjects")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch projects.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, projects)
}

// GetProjectByID handles fetching a project with its nested tickets.
func (h *ProjectHandler) GetProjectByID(c *gin.Context) {
	idStr := c.Param("id")
	id, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid project ID format.", err.Error()))
		return
	}

	project, err := h.projectService.GetProjectByID(id)
	if err != nil {
		utils.LogError(err, "GetProjectByID: Error from projectService.GetProjectByID for ID "+idStr)
		if errors.Is(err, services.ErrProjectNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Project not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch project.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, project)
}

// UpdateProject handles patching a project's descriptive fields.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	idStr := c.Param("id")
	id, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid project ID format.", err.Error()))
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateProject: Failed to bind JSON for ID "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	project, err := h.projectService.UpdateProject(id, req)
	if err != nil {
		utils.LogError(err, "UpdateProject: Error from projectService.UpdateProject for ID "+idStr)
		if errors.Is(err, services.ErrProjectNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Project not found.", err.Error()))
		} else if errors.Is(err, services.ErrUnknownClientKey) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Unknown client key.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update project.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, project)
}

// FinalizeProject handles posting every staged ticket into the main views.
func (h *ProjectHandler) FinalizeProject(c *gin.Context) {
	idStr := c.Param("id")
	id, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid project ID format.", err.Error()))
		return
	}

	result, err := h.projectService.FinalizeProject(id)
	if err != nil {
		utils.LogError(err, "FinalizeProject: Error from projectService.FinalizeProject for ID "+idStr)
		if errors.Is(err, services.ErrProjectNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Project not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to finalize project.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// loadProject resolves the :id param and fetches the project, writing the
// error response itself. Returns nil when the request is already answered.
func (h *ProjectHandler) loadProject(c *gin.Context, context string) *services.ProjectDetailResponse {
	idStr := c.Param("id")
	id, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid project ID format.", err.Error()))
		return nil
	}

	project, err := h.projectService.GetProjectByID(id)
	if err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Project not found.", err.Error()))
		} else {
			utils.LogError(err, context+": Error from projectService.GetProjectByID for ID "+idStr)
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch project.", "Internal error"))
		}
		return nil
	}
	return project
}

// loadScopedTicket resolves :ticket_id and verifies the ticket belongs to the
// project. A ticket owned by another project reads as not found.
func (h *ProjectHandler) loadScopedTicket(c *gin.Context, projectID int64, context string) *models.Ticket {
	ticketStr := c.Param("ticket_id")
	ticketID, err := utils.StrToInt64(ticketStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid ticket ID format.", err.Error()))
		return nil
	}

	ticket, err := h.ticketService.GetTicketByID(ticketID)
	if err != nil {
		if errors.Is(err, services.ErrTicketNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Ticket not found.", err.Error()))
		} else {
			utils.LogError(err, context+": Error from ticketService.GetTicketByID for ID "+ticketStr)
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch ticket.", "Internal error"))
		}
		return nil
	}
	if ticket.ProjectID == nil || *ticket.ProjectID != projectID {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Ticket not found.", "ticket not in project"))
		return nil
	}
	return ticket
}

// GetProjectTickets handles listing a project's tickets, staged and posted.
func (h *ProjectHandler) GetProjectTickets(c *gin.Context) {
	project := h.loadProject(c, "GetProjectTickets")
	if project == nil {
		return
	}
	c.JSON(http.StatusOK, project.Tickets)
}

// CreateProjectTicket handles staging a new ticket inside a project. The
// ticket always takes the project's client.
func (h *ProjectHandler) CreateProjectTicket(c *gin.Context) {
	project := h.loadProject(c, "CreateProjectTicket")
	if project == nil {
		return
	}

	var req services.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateProjectTicket: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	req.ProjectID = &project.ID
	req.ClientKey = project.ClientKey
	req.Client = &project.Client
	staged := 0
	req.ProjectPosted = &staged

	ticket, err := h.ticketService.CreateTicket(req)
	if err != nil {
		utils.LogError(err, "CreateProjectTicket: Error from ticketService.CreateTicket")
		respondTicketWriteError(c, err, "Failed to create ticket.")
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// UpdateProjectTicket handles patching a ticket through its project. The
// ticket cannot be moved out of the project here.
func (h *ProjectHandler) UpdateProjectTicket(c *gin.Context) {
	project := h.loadProject(c, "UpdateProjectTicket")
	if project == nil {
		return
	}
	ticket := h.loadScopedTicket(c, project.ID, "UpdateProjectTicket")
	if ticket == nil {
		return
	}

	var req services.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateProjectTicket: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	req.ProjectID = &project.ID

	updated, err := h.ticketService.UpdateTicket(ticket.ID, req)
	if err != nil {
		utils.LogError(err, "UpdateProjectTicket: Error from ticketService.UpdateTicket")
		respondTicketWriteError(c, err, "Failed to update ticket.")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteProjectTicket handles removing a ticket through its project.
func (h *ProjectHandler) DeleteProjectTicket(c *gin.Context) {
	project := h.loadProject(c, "DeleteProjectTicket")
	if project == nil {
		return
	}
	ticket := h.loadScopedTicket(c, project.ID, "DeleteProjectTicket")
	if ticket == nil {
		return
	}

	if err := h.ticketService.DeleteTicket(ticket.ID); err != nil {
		utils.LogError(err, "DeleteProjectTicket: Error from ticketService.DeleteTicket")
		if errors.Is(err, services.ErrTicketNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Ticket not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete ticket.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteProject handles removing a project, its staged tickets, and their
// inventory events; posted tickets are detached and kept.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	idStr := c.Param("id")
	id, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid project ID format.", err.Error()))
		return
	}

	if err := h.projectService.DeleteProject(id); err != nil {
		utils.LogError(err, "DeleteProject: Error from projectService.DeleteProject for ID "+idStr)
		if errors.Is(err, services.ErrProjectNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Project not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete project.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}
