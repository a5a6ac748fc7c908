package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tickettrack_backend/internal/models"
)

// TicketRepository defines the interface for ticket database operations.
// Write methods take an SQLExecutor so the service can run them inside the
// reconciliation transaction.
type TicketRepository interface {
	CreateTicket(executor SQLExecutor, ticket *models.Ticket) (int64, error)
	GetTicketByID(executor SQLExecutor, id int64) (*models.Ticket, error)
	GetTickets(limit, offset int) ([]models.Ticket, error)
	GetActiveTickets(clientKey *string, limit, offset int) ([]models.Ticket, error)
	GetAllTickets() ([]models.Ticket, error)
	GetProjectTickets(executor SQLExecutor, projectID int64, includePosted bool) ([]models.Ticket, error)
	UpdateTicket(executor SQLExecutor, ticket *models.Ticket) error
	DeleteTicket(executor SQLExecutor, id int64) error
	MarkProjectTicketsPosted(executor SQLExecutor, projectID int64) (int64, error)
	DetachPostedTickets(executor SQLExecutor, projectID int64) error
}

type ticketRepository struct {
	db *sql.DB
}

// NewTicketRepository creates a new instance of TicketRepository.
func NewTicketRepository(db *sql.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) exec(executor SQLExecutor) SQLExecutor {
	if executor != nil {
		return executor
	}
	return r.db
}

const ticketColumns = `id, client, client_key, start_iso, end_iso, elapsed_minutes, rounded_minutes,
	rounded_hours, note, completed, sent, invoice_number, invoiced_total, calculated_value,
	created_at, entry_type, hardware_id, hardware_barcode, hardware_description,
	hardware_sales_price, hardware_quantity, flat_rate_amount, flat_rate_quantity,
	project_id, project_posted`

func scanTicket(row interface{ Scan(dest ...interface{}) error }) (*models.Ticket, error) {
	t := &models.Ticket{}
	var entryType string
	err := row.Scan(
		&t.ID, &t.Client, &t.ClientKey, &t.StartISO, &t.EndISO, &t.ElapsedMinutes, &t.RoundedMinutes,
		&t.RoundedHours, &t.Note, &t.Completed, &t.Sent, &t.InvoiceNumber, &t.InvoicedTotal, &t.CalculatedValue,
		&t.CreatedAt, &entryType, &t.HardwareID, &t.HardwareBarcode, &t.HardwareDescription,
		&t.HardwareSalesPrice, &t.HardwareQuantity, &t.FlatRateAmount, &t.FlatRateQuantity,
		&t.ProjectID, &t.ProjectPosted,
	)
	if err != nil {
		return nil, err
	}
	t.EntryType = models.EntryType(entryType)
	return t, nil
}

// CreateTicket inserts a new ticket row.
func (r *ticketRepository) CreateTicket(executor SQLExecutor, ticket *models.Ticket) (int64, error) {
	query := `INSERT INTO tickets (client, client_key, start_iso, end_iso, elapsed_minutes, rounded_minutes,
	            rounded_hours, note, completed, sent, invoice_number, invoiced_total, calculated_value,
	            created_at, entry_type, hardware_id, hardware_barcode, hardware_description,
	            hardware_sales_price, hardware_quantity, flat_rate_amount, flat_rate_quantity,
	            project_id, project_posted)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
	            $19, $20, $21, $22, $23, $24)
	          RETURNING id`

	err := r.exec(executor).QueryRow(query,
		ticket.Client, ticket.ClientKey, ticket.StartISO, ticket.EndISO, ticket.ElapsedMinutes, ticket.RoundedMinutes,
		ticket.RoundedHours, ticket.Note, ticket.Completed, ticket.Sent, ticket.InvoiceNumber, ticket.InvoicedTotal,
		ticket.CalculatedValue, ticket.CreatedAt, string(ticket.EntryType), ticket.HardwareID, ticket.HardwareBarcode,
		ticket.HardwareDescription, ticket.HardwareSalesPrice, ticket.HardwareQuantity, ticket.FlatRateAmount,
		ticket.FlatRateQuantity, ticket.ProjectID, ticket.ProjectPosted,
	).Scan(&ticket.ID)

	if err != nil {
		return 0, fmt.Errorf("%w: creating ticket: %v", ErrDatabaseError, err)
	}
	return ticket.ID, nil
}

// GetTicketByID retrieves a ticket by its ID.
func (r *ticketRepository) GetTicketByID(executor SQLExecutor, id int64) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	ticket, err := scanTicket(r.exec(executor).QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting ticket by ID %d: %v", ErrDatabaseError, id, err)
	}
	return ticket, nil
}

func (r *ticketRepository) queryTickets(executor SQLExecutor, query string, args ...interface{}) ([]models.Ticket, error) {
	rows, err := r.exec(executor).Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying tickets: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	tickets := []models.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning ticket: %v", ErrDatabaseError, err)
		}
		tickets = append(tickets, *ticket)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating ticket rows: %v", ErrDatabaseError, err)
	}
	return tickets, nil
}

// GetTickets returns the default listing: tickets that are not staged inside
// an unfinalized project.
func (r *ticketRepository) GetTickets(limit, offset int) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets
	          WHERE project_id IS NULL OR project_posted = 1
	          ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	return r.queryTickets(nil, query, limit, offset)
}

// GetActiveTickets returns open time entries, optionally filtered by client.
func (r *ticketRepository) GetActiveTickets(clientKey *string, limit, offset int) ([]models.Ticket, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + ticketColumns + ` FROM tickets WHERE end_iso IS NULL AND entry_type = 'time'`)

	args := []interface{}{}
	argCount := 1
	if clientKey != nil && *clientKey != "" {
		b.WriteString(fmt.Sprintf(" AND client_key = $%d", argCount))
		args = append(args, *clientKey)
		argCount++
	}
	b.WriteString(fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, limit, offset)

	return r.queryTickets(nil, b.String(), args...)
}

// GetAllTickets returns every ticket row, staged or not. Used by reporting.
func (r *ticketRepository) GetAllTickets() ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at DESC, id DESC`
	return r.queryTickets(nil, query)
}

// GetProjectTickets returns tickets owned by a project, optionally limited to
// the staged (not yet posted) subset.
func (r *ticketRepository) GetProjectTickets(executor SQLExecutor, projectID int64, includePosted bool) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE project_id = $1`
	if !includePosted {
		query += ` AND project_posted = 0`
	}
	query += ` ORDER BY created_at ASC, id ASC`
	return r.queryTickets(executor, query, projectID)
}

// UpdateTicket writes an entire ticket row back. The service constructs the
// target state, so this is a full-row update rather than per-field patching.
func (r *ticketRepository) UpdateTicket(executor SQLExecutor, ticket *models.Ticket) error {
	query := `UPDATE tickets SET client = $1, client_key = $2, start_iso = $3, end_iso = $4,
	            elapsed_minutes = $5, rounded_minutes = $6, rounded_hours = $7, note = $8,
	            completed = $9, sent = $10, invoice_number = $11, invoiced_total = $12,
	            calculated_value = $13, entry_type = $14, hardware_id = $15, hardware_barcode = $16,
	            hardware_description = $17, hardware_sales_price = $18, hardware_quantity = $19,
	            flat_rate_amount = $20, flat_rate_quantity = $21, project_id = $22, project_posted = $23
	          WHERE id = $24`

	result, err := r.exec(executor).Exec(query,
		ticket.Client, ticket.ClientKey, ticket.StartISO, ticket.EndISO,
		ticket.ElapsedMinutes, ticket.RoundedMinutes, ticket.RoundedHours, ticket.Note,
		ticket.Completed, ticket.Sent, ticket.InvoiceNumber, ticket.InvoicedTotal,
		ticket.CalculatedValue, string(ticket.EntryType), ticket.HardwareID, ticket.HardwareBarcode,
		ticket.HardwareDescription, ticket.HardwareSalesPrice, ticket.HardwareQuantity,
		ticket.FlatRateAmount, ticket.FlatRateQuantity, ticket.ProjectID, ticket.ProjectPosted,
		ticket.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating ticket ID %d: %v", ErrDatabaseError, ticket.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating ticket ID %d: %v", ErrDatabaseError, ticket.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTicket removes a ticket row.
func (r *ticketRepository) DeleteTicket(executor SQLExecutor, id int64) error {
	result, err := r.exec(executor).Exec(`DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting ticket ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting ticket ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkProjectTicketsPosted flips every staged ticket in the project to
// posted. Returns the number of tickets flipped.
func (r *ticketRepository) MarkProjectTicketsPosted(executor SQLExecutor, projectID int64) (int64, error) {
	result, err := r.exec(executor).Exec(
		`UPDATE tickets SET project_posted = 1 WHERE project_id = $1 AND project_posted = 0`, projectID)
	if err != nil {
		return 0, fmt.Errorf("%w: posting tickets for project ID %d: %v", ErrDatabaseError, projectID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for posting project ID %d: %v", ErrDatabaseError, projectID, err)
	}
	return rowsAffected, nil
}

// DetachPostedTickets clears project_id on posted tickets so they survive
// project deletion as plain ticket history.
func (r *ticketRepository) DetachPostedTickets(executor SQLExecutor, projectID int64) error {
	_, err := r.exec(executor).Exec(
		`UPDATE tickets SET project_id = NULL WHERE project_id = $1 AND project_posted = 1`, projectID)
	if err != nil {
		return fmt.Errorf("%w: detaching posted tickets for project ID %d: %v", ErrDatabaseError, projectID, err)
	}
	return nil
}
