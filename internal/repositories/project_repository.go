package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"tickettrack_backend/internal/models"
)

// ProjectTicketCounts summarizes a project's staged vs. posted ticket split.
type ProjectTicketCounts struct {
	Open   int
	Posted int
}

// ProjectRepository defines the interface for project container operations.
type ProjectRepository interface {
	CreateProject(executor SQLExecutor, project *models.Project) (int64, error)
	GetProjectByID(executor SQLExecutor, id int64) (*models.Project, error)
	GetProjects(limit, offset int) ([]models.Project, error)
	UpdateProject(executor SQLExecutor, project *models.Project) error
	DeleteProject(executor SQLExecutor, id int64) error
	CountTicketsByProject() (map[int64]ProjectTicketCounts, error)
}

type projectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new instance of ProjectRepository.
func NewProjectRepository(db *sql.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) exec(executor SQLExecutor) SQLExecutor {
	if executor != nil {
		return executor
	}
	return r.db
}

const projectColumns = `id, name, client, client_key, status, note, start_date, end_date,
	created_at, updated_at, finalized_at`

func scanProject(row interface{ Scan(dest ...interface{}) error }) (*models.Project, error) {
	p := &models.Project{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Client, &p.ClientKey, &p.Status, &p.Note, &p.StartDate, &p.EndDate,
		&p.CreatedAt, &p.UpdatedAt, &p.FinalizedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProject inserts a new project container.
func (r *projectRepository) CreateProject(executor SQLExecutor, project *models.Project) (int64, error) {
	query := `INSERT INTO projects (name, client, client_key, status, note, start_date, end_date,
	            created_at, updated_at, finalized_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`

	err := r.exec(executor).QueryRow(query,
		project.Name, project.Client, project.ClientKey, project.Status, project.Note,
		project.StartDate, project.EndDate, project.CreatedAt, project.UpdatedAt, project.FinalizedAt,
	).Scan(&project.ID)

	if err != nil {
		return 0, fmt.Errorf("%w: creating project: %v", ErrDatabaseError, err)
	}
	return project.ID, nil
}

// GetProjectByID retrieves a project by its ID.
func (r *projectRepository) GetProjectByID(executor SQLExecutor, id int64) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	project, err := scanProject(r.exec(executor).QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting project by ID %d: %v", ErrDatabaseError, id, err)
	}
	return project, nil
}

// GetProjects retrieves project containers ordered by recency.
func (r *projectRepository) GetProjects(limit, offset int) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: querying projects: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning project: %v", ErrDatabaseError, err)
		}
		projects = append(projects, *project)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating project rows: %v", ErrDatabaseError, err)
	}
	return projects, nil
}

// UpdateProject updates an existing project row.
func (r *projectRepository) UpdateProject(executor SQLExecutor, project *models.Project) error {
	query := `UPDATE projects SET name = $1, client = $2, client_key = $3, status = $4, note = $5,
	            start_date = $6, end_date = $7, updated_at = $8, finalized_at = $9
	          WHERE id = $10`

	result, err := r.exec(executor).Exec(query,
		project.Name, project.Client, project.ClientKey, project.Status, project.Note,
		project.StartDate, project.EndDate, project.UpdatedAt, project.FinalizedAt, project.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating project ID %d: %v", ErrDatabaseError, project.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating project ID %d: %v", ErrDatabaseError, project.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProject removes a project row. Ticket cleanup happens in the service
// before this runs.
func (r *projectRepository) DeleteProject(executor SQLExecutor, id int64) error {
	result, err := r.exec(executor).Exec(`DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting project ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting project ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountTicketsByProject aggregates staged/posted ticket counts for every
// project in one query, for the project listing.
func (r *projectRepository) CountTicketsByProject() (map[int64]ProjectTicketCounts, error) {
	query := `SELECT project_id,
	            COUNT(*) FILTER (WHERE project_posted = 0) AS open_count,
	            COUNT(*) FILTER (WHERE project_posted = 1) AS posted_count
	          FROM tickets
	          WHERE project_id IS NOT NULL
	          GROUP BY project_id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying project ticket counts: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	counts := map[int64]ProjectTicketCounts{}
	for rows.Next() {
		var projectID int64
		var c ProjectTicketCounts
		if err := rows.Scan(&projectID, &c.Open, &c.Posted); err != nil {
			return nil, fmt.Errorf("%w: scanning project ticket counts: %v", ErrDatabaseError, err)
		}
		counts[projectID] = c
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating project ticket count rows: %v", ErrDatabaseError, err)
	}
	return counts, nil
}
