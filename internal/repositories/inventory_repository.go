package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"tickettrack_backend/internal/models"
)

// InventoryRepository defines the interface for inventory ledger operations.
// The ledger is append-mostly: the only row ever updated is the auto-managed
// event tied to a hardware ticket.
type InventoryRepository interface {
	CreateEvent(executor SQLExecutor, event *models.InventoryEvent) (int64, error)
	UpdateEvent(executor SQLExecutor, event *models.InventoryEvent) error
	GetEventByID(id int64) (*models.InventoryEvent, error)
	GetEventByTicketID(executor SQLExecutor, ticketID int64) (*models.InventoryEvent, error)
	DeleteEvent(executor SQLExecutor, id int64) error
	DeleteEventByTicketID(executor SQLExecutor, ticketID int64) error
	GetEvents(limit, offset int) ([]models.InventoryEvent, error)
	GetSummary() ([]models.InventorySummaryItem, error)
}

type inventoryRepository struct {
	db *sql.DB
}

// NewInventoryRepository creates a new instance of InventoryRepository.
func NewInventoryRepository(db *sql.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) exec(executor SQLExecutor) SQLExecutor {
	if executor != nil {
		return executor
	}
	return r.db
}

const eventColumns = `id, hardware_id, change, source, note, created_at, ticket_id,
	counterparty_name, counterparty_type, unit_cost, actual_cost, sale_unit_price, sale_price_total`

func scanEvent(row interface{ Scan(dest ...interface{}) error }) (*models.InventoryEvent, error) {
	e := &models.InventoryEvent{}
	err := row.Scan(
		&e.ID, &e.HardwareID, &e.Change, &e.Source, &e.Note, &e.CreatedAt, &e.TicketID,
		&e.CounterpartyName, &e.CounterpartyType, &e.UnitCost, &e.ActualCost, &e.SaleUnitPrice, &e.SalePriceTotal,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// CreateEvent appends a new event to the ledger.
func (r *inventoryRepository) CreateEvent(executor SQLExecutor, event *models.InventoryEvent) (int64, error) {
	query := `INSERT INTO inventory_events (hardware_id, change, source, note, created_at, ticket_id,
	            counterparty_name, counterparty_type, unit_cost, actual_cost, sale_unit_price, sale_price_total)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id`

	err := r.exec(executor).QueryRow(query,
		event.HardwareID, event.Change, event.Source, event.Note, event.CreatedAt, event.TicketID,
		event.CounterpartyName, event.CounterpartyType, event.UnitCost, event.ActualCost,
		event.SaleUnitPrice, event.SalePriceTotal,
	).Scan(&event.ID)

	if err != nil {
		return 0, fmt.Errorf("%w: creating inventory event: %v", ErrDatabaseError, err)
	}
	return event.ID, nil
}

// UpdateEvent rewrites an existing event row. The event id is preserved so
// ledger ordering and ticket audit history remain intact.
func (r *inventoryRepository) UpdateEvent(executor SQLExecutor, event *models.InventoryEvent) error {
	query := `UPDATE inventory_events SET hardware_id = $1, change = $2, source = $3, note = $4,
	            ticket_id = $5, counterparty_name = $6, counterparty_type = $7,
	            unit_cost = $8, actual_cost = $9, sale_unit_price = $10, sale_price_total = $11
	          WHERE id = $12`

	result, err := r.exec(executor).Exec(query,
		event.HardwareID, event.Change, event.Source, event.Note,
		event.TicketID, event.CounterpartyName, event.CounterpartyType,
		event.UnitCost, event.ActualCost, event.SaleUnitPrice, event.SalePriceTotal,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating inventory event ID %d: %v", ErrDatabaseError, event.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating inventory event ID %d: %v", ErrDatabaseError, event.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetEventByID retrieves a single event.
func (r *inventoryRepository) GetEventByID(id int64) (*models.InventoryEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM inventory_events WHERE id = $1`
	event, err := scanEvent(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting inventory event by ID %d: %v", ErrDatabaseError, id, err)
	}
	return event, nil
}

// GetEventByTicketID retrieves the auto-managed event linked to a ticket.
func (r *inventoryRepository) GetEventByTicketID(executor SQLExecutor, ticketID int64) (*models.InventoryEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM inventory_events WHERE ticket_id = $1`
	event, err := scanEvent(r.exec(executor).QueryRow(query, ticketID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting inventory event for ticket ID %d: %v", ErrDatabaseError, ticketID, err)
	}
	return event, nil
}

// DeleteEvent removes an event permanently.
func (r *inventoryRepository) DeleteEvent(executor SQLExecutor, id int64) error {
	result, err := r.exec(executor).Exec(`DELETE FROM inventory_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting inventory event ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting inventory event ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEventByTicketID removes the event linked to a ticket, if any.
// Deleting when no event exists is not an error.
func (r *inventoryRepository) DeleteEventByTicketID(executor SQLExecutor, ticketID int64) error {
	_, err := r.exec(executor).Exec(`DELETE FROM inventory_events WHERE ticket_id = $1`, ticketID)
	if err != nil {
		return fmt.Errorf("%w: deleting inventory event for ticket ID %d: %v", ErrDatabaseError, ticketID, err)
	}
	return nil
}

// GetEvents returns a page of ledger history ordered by recency, with the
// owning hardware's barcode and description joined in.
func (r *inventoryRepository) GetEvents(limit, offset int) ([]models.InventoryEvent, error) {
	query := `SELECT e.id, e.hardware_id, e.change, e.source, e.note, e.created_at, e.ticket_id,
	            e.counterparty_name, e.counterparty_type, e.unit_cost, e.actual_cost,
	            e.sale_unit_price, e.sale_price_total, h.barcode, h.description
	          FROM inventory_events e
	          JOIN hardware h ON h.id = e.hardware_id
	          ORDER BY e.created_at DESC, e.id DESC
	          LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: querying inventory events: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	events := []models.InventoryEvent{}
	for rows.Next() {
		e := models.InventoryEvent{}
		if err := rows.Scan(
			&e.ID, &e.HardwareID, &e.Change, &e.Source, &e.Note, &e.CreatedAt, &e.TicketID,
			&e.CounterpartyName, &e.CounterpartyType, &e.UnitCost, &e.ActualCost,
			&e.SaleUnitPrice, &e.SalePriceTotal, &e.HardwareBarcode, &e.HardwareDescription,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning inventory event: %v", ErrDatabaseError, err)
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating inventory event rows: %v", ErrDatabaseError, err)
	}
	return events, nil
}

// GetSummary aggregates the ledger per hardware item. Quantity is always the
// live sum of event changes, never a cached column.
func (r *inventoryRepository) GetSummary() ([]models.InventorySummaryItem, error) {
	query := `SELECT e.hardware_id, h.barcode, h.description,
	            COALESCE(SUM(e.change), 0) AS quantity, MAX(e.created_at) AS last_activity
	          FROM inventory_events e
	          JOIN hardware h ON h.id = e.hardware_id
	          GROUP BY e.hardware_id, h.barcode, h.description
	          ORDER BY h.description`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying inventory summary: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	items := []models.InventorySummaryItem{}
	for rows.Next() {
		item := models.InventorySummaryItem{}
		if err := rows.Scan(&item.HardwareID, &item.Barcode, &item.Description, &item.Quantity, &item.LastActivity); err != nil {
			return nil, fmt.Errorf("%w: scanning inventory summary: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating inventory summary rows: %v", ErrDatabaseError, err)
	}
	return items, nil
}
