package services

import (
	"errors"
	"fmt"
	"strings"

	"tickettrack_backend/internal/models"
	"tickettrack_backend/internal/repositories"
	"tickettrack_backend/pkg/utils"
)

var ErrProjectNotFound = errors.New("project not found")

// --- DTOs ---

// CreateProjectRequest is used for creating a staging container.
type CreateProjectRequest struct {
	Name      string  `json:"name" binding:"required"`
	ClientKey string  `json:"client_key" binding:"required"`
	Client    *string `json:"client"`
	Status    *string `json:"status"`
	Note      *string `json:"note"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// UpdateProjectRequest carries a partial update; only non-nil fields are applied.
type UpdateProjectRequest struct {
	Name      *string `json:"name"`
	ClientKey *string `json:"client_key"`
	Client    *string `json:"client"`
	Status    *string `json:"status"`
	Note      *string `json:"note"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// ProjectResponse is a project plus its staged/posted ticket tallies.
type ProjectResponse struct {
	models.Project
	OpenTickets   int `json:"open_tickets"`
	PostedTickets int `json:"posted_tickets"`
}

// ProjectDetailResponse adds the project's tickets, staged first.
type ProjectDetailResponse struct {
	ProjectResponse
	Tickets []models.Ticket `json:"tickets"`
}

// FinalizeResult reports how many staged tickets a finalize call posted.
type FinalizeResult struct {
	ProjectID     int64  `json:"project_id"`
	PostedTickets int64  `json:"posted_tickets"`
	FinalizedAt   string `json:"finalized_at"`
}

// --- ProjectService Interface ---

type ProjectService interface {
	CreateProject(req CreateProjectRequest) (*models.Project, error)
	GetProjects(limit, offset int) ([]ProjectResponse, error)
	GetProjectByID(id int64) (*ProjectDetailResponse, error)
	UpdateProject(id int64, req UpdateProjectRequest) (*models.Project, error)
	FinalizeProject(id int64) (*FinalizeResult, error)
	DeleteProject(id int64) error
}

type projectService struct {
	projectRepo    repositories.ProjectRepository
	ticketRepo     repositories.TicketRepository
	inventoryRepo  repositories.InventoryRepository
	attachmentRepo repositories.AttachmentRepository
	directory      ClientDirectory
	files          AttachmentFileStore
	tx             repositories.TxManager
}

// NewProjectService creates a new instance of ProjectService.
func NewProjectService(
	pr repositories.ProjectRepository,
	tr repositories.TicketRepository,
	ir repositories.InventoryRepository,
	ar repositories.AttachmentRepository,
	directory ClientDirectory,
	files AttachmentFileStore,
	tx repositories.TxManager,
) ProjectService {
	return &projectService{
		projectRepo:    pr,
		ticketRepo:     tr,
		inventoryRepo:  ir,
		attachmentRepo: ar,
		directory:      directory,
		files:          files,
		tx:             tx,
	}
}

func (s *projectService) resolveClient(clientKey string, explicitName *string) (string, error) {
	key := strings.TrimSpace(clientKey)
	if key == "" {
		return "", fmt.Errorf("%w: client_key is required", ErrValidation)
	}
	name, err := s.directory.ResolveName(key)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownClientKey, key)
	}
	if explicitName != nil && strings.TrimSpace(*explicitName) != "" {
		return strings.TrimSpace(*explicitName), nil
	}
	return name, nil
}

// --- Method Implementations ---

func (s *projectService) CreateProject(req CreateProjectRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	clientName, err := s.resolveClient(req.ClientKey, req.Client)
	if err != nil {
		return nil, err
	}

	now := utcNowISO()
	project := &models.Project{
		Name:      name,
		Client:    clientName,
		ClientKey: strings.TrimSpace(req.ClientKey),
		Status:    req.Status,
		Note:      req.Note,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.projectRepo.CreateProject(nil, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

func (s *projectService) GetProjects(limit, offset int) ([]ProjectResponse, error) {
	projects, err := s.projectRepo.GetProjects(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get projects: %w", err)
	}
	counts, err := s.projectRepo.CountTicketsByProject()
	if err != nil {
		return nil, fmt.Errorf("failed to count project tickets: %w", err)
	}

	responses := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		c := counts[p.ID]
		responses = append(responses, ProjectResponse{
			Project:       p,
			OpenTickets:   c.Open,
			PostedTickets: c.Posted,
		})
	}
	return responses, nil
}

func (s *projectService) GetProjectByID(id int64) (*ProjectDetailResponse, error) {
	project, err := s.projectRepo.GetProjectByID(nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	tickets, err := s.ticketRepo.GetProjectTickets(nil, id, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get project tickets: %w", err)
	}

	open, posted := 0, 0
	for _, t := range tickets {
		if t.ProjectPosted == 0 {
			open++
		} else {
			posted++
		}
	}

	return &ProjectDetailResponse{
		ProjectResponse: ProjectResponse{
			Project:       *project,
			OpenTickets:   open,
			PostedTickets: posted,
		},
		Tickets: tickets,
	}, nil
}

func (s *projectService) UpdateProject(id int64, req UpdateProjectRequest) (*models.Project, error) {
	project, err := s.projectRepo.GetProjectByID(nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		project.Name = name
	}
	if req.ClientKey != nil || req.Client != nil {
		key := project.ClientKey
		if req.ClientKey != nil {
			key = *req.ClientKey
		}
		clientName, err := s.resolveClient(key, req.Client)
		if err != nil {
			return nil, err
		}
		project.ClientKey = strings.TrimSpace(key)
		project.Client = clientName
	}
	if req.Status != nil {
		project.Status = req.Status
	}
	if req.Note != nil {
		project.Note = req.Note
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}
	project.UpdatedAt = utcNowISO()

	if err := s.projectRepo.UpdateProject(nil, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// FinalizeProject posts every staged ticket so it appears in the main views.
// Finalize is re-runnable: tickets staged after a finalize stay staged until
// the next call, and a call with nothing staged posts zero tickets.
func (s *projectService) FinalizeProject(id int64) (*FinalizeResult, error) {
	var result *FinalizeResult
	txErr := s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		project, err := s.projectRepo.GetProjectByID(exec, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrProjectNotFound
			}
			return err
		}

		posted, err := s.ticketRepo.MarkProjectTicketsPosted(exec, id)
		if err != nil {
			return err
		}

		now := utcNowISO()
		project.FinalizedAt = &now
		project.UpdatedAt = now
		if project.Status == nil {
			status := "finalized"
			project.Status = &status
		}
		if err := s.projectRepo.UpdateProject(exec, project); err != nil {
			return err
		}

		result = &FinalizeResult{ProjectID: id, PostedTickets: posted, FinalizedAt: now}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return result, nil
}

// DeleteProject removes the container. Staged tickets are deleted along with
// their auto inventory events and attachments; posted tickets already live in
// the main views and are only detached.
func (s *projectService) DeleteProject(id int64) error {
	var removedTicketIDs []int64
	txErr := s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		if _, err := s.projectRepo.GetProjectByID(exec, id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrProjectNotFound
			}
			return err
		}

		staged, err := s.ticketRepo.GetProjectTickets(exec, id, false)
		if err != nil {
			return err
		}
		for _, t := range staged {
			if err := s.inventoryRepo.DeleteEventByTicketID(exec, t.ID); err != nil {
				return err
			}
			if err := s.attachmentRepo.DeleteAttachmentsByTicketID(exec, t.ID); err != nil {
				return err
			}
			if err := s.ticketRepo.DeleteTicket(exec, t.ID); err != nil {
				return err
			}
			removedTicketIDs = append(removedTicketIDs, t.ID)
		}

		if err := s.ticketRepo.DetachPostedTickets(exec, id); err != nil {
			return err
		}
		return s.projectRepo.DeleteProject(exec, id)
	})
	if txErr != nil {
		return txErr
	}

	for _, ticketID := range removedTicketIDs {
		if err := s.files.RemoveTicketFiles(ticketID); err != nil {
			utils.LogError(err, fmt.Sprintf("DeleteProject: failed to remove attachment files for ticket %d", ticketID))
		}
	}
	return nil
}
