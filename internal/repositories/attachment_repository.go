package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"tickettrack_backend/internal/models"
)

// AttachmentRepository defines the interface for ticket attachment metadata.
// File bytes live on disk; only metadata rows are stored here.
type AttachmentRepository interface {
	CreateAttachment(executor SQLExecutor, attachment *models.TicketAttachment) error
	GetAttachmentsByTicketID(ticketID int64) ([]models.TicketAttachment, error)
	GetAttachment(ticketID int64, attachmentID string) (*models.TicketAttachment, error)
	DeleteAttachmentsByTicketID(executor SQLExecutor, ticketID int64) error
}

type attachmentRepository struct {
	db *sql.DB
}

// NewAttachmentRepository creates a new instance of AttachmentRepository.
func NewAttachmentRepository(db *sql.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) exec(executor SQLExecutor) SQLExecutor {
	if executor != nil {
		return executor
	}
	return r.db
}

const attachmentColumns = `id, ticket_id, filename, content_type, size, storage_filename, uploaded_at`

// CreateAttachment inserts an attachment metadata row.
func (r *attachmentRepository) CreateAttachment(executor SQLExecutor, attachment *models.TicketAttachment) error {
	query := `INSERT INTO ticket_attachments (id, ticket_id, filename, content_type, size, storage_filename, uploaded_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(executor).Exec(query,
		attachment.ID, attachment.TicketID, attachment.Filename, attachment.ContentType,
		attachment.Size, attachment.StorageFilename, attachment.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: creating ticket attachment: %v", ErrDatabaseError, err)
	}
	return nil
}

// GetAttachmentsByTicketID returns all attachments for a ticket, oldest first.
func (r *attachmentRepository) GetAttachmentsByTicketID(ticketID int64) ([]models.TicketAttachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM ticket_attachments WHERE ticket_id = $1 ORDER BY uploaded_at ASC, id ASC`
	rows, err := r.db.Query(query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying ticket attachments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	attachments := []models.TicketAttachment{}
	for rows.Next() {
		a := models.TicketAttachment{}
		if err := rows.Scan(&a.ID, &a.TicketID, &a.Filename, &a.ContentType, &a.Size, &a.StorageFilename, &a.UploadedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning ticket attachment: %v", ErrDatabaseError, err)
		}
		attachments = append(attachments, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating ticket attachment rows: %v", ErrDatabaseError, err)
	}
	return attachments, nil
}

// GetAttachment retrieves one attachment scoped to its owning ticket.
func (r *attachmentRepository) GetAttachment(ticketID int64, attachmentID string) (*models.TicketAttachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM ticket_attachments WHERE ticket_id = $1 AND id = $2`
	a := &models.TicketAttachment{}
	err := r.db.QueryRow(query, ticketID, attachmentID).Scan(
		&a.ID, &a.TicketID, &a.Filename, &a.ContentType, &a.Size, &a.StorageFilename, &a.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting attachment %s for ticket ID %d: %v", ErrDatabaseError, attachmentID, ticketID, err)
	}
	return a, nil
}

// DeleteAttachmentsByTicketID removes every metadata row for a ticket.
func (r *attachmentRepository) DeleteAttachmentsByTicketID(executor SQLExecutor, ticketID int64) error {
	_, err := r.exec(executor).Exec(`DELETE FROM ticket_attachments WHERE ticket_id = $1`, ticketID)
	if err != nil {
		return fmt.Errorf("%w: deleting attachments for ticket ID %d: %v", ErrDatabaseError, ticketID, err)
	}
	return nil
}
