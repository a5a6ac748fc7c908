package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"tickettrack_backend/internal/models"

	"github.com/lib/pq" // For pq.Error
)

// HardwareRepository defines the interface for hardware catalog database operations.
type HardwareRepository interface {
	CreateHardware(executor SQLExecutor, item *models.Hardware) (int64, error)
	GetHardwareByID(executor SQLExecutor, id int64) (*models.Hardware, error)
	GetHardwareByBarcode(executor SQLExecutor, barcode string) (*models.Hardware, error)
	GetHardwareItems(limit, offset int) ([]models.Hardware, error)
	UpdateHardware(executor SQLExecutor, item *models.Hardware) error
	DeleteHardware(executor SQLExecutor, id int64) error
}

type hardwareRepository struct {
	db *sql.DB
}

// NewHardwareRepository creates a new instance of HardwareRepository.
func NewHardwareRepository(db *sql.DB) HardwareRepository {
	return &hardwareRepository{db: db}
}

func (r *hardwareRepository) exec(executor SQLExecutor) SQLExecutor {
	if executor != nil {
		return executor
	}
	return r.db
}

const hardwareColumns = `id, barcode, description, acquisition_cost, sales_price, created_at`

func scanHardware(row interface{ Scan(dest ...interface{}) error }) (*models.Hardware, error) {
	item := &models.Hardware{}
	err := row.Scan(
		&item.ID, &item.Barcode, &item.Description,
		&item.AcquisitionCost, &item.SalesPrice, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// CreateHardware inserts a new catalog record.
func (r *hardwareRepository) CreateHardware(executor SQLExecutor, item *models.Hardware) (int64, error) {
	query := `INSERT INTO hardware (barcode, description, acquisition_cost, sales_price, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`

	err := r.exec(executor).QueryRow(query,
		item.Barcode, item.Description, item.AcquisitionCost, item.SalesPrice, item.CreatedAt,
	).Scan(&item.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating hardware: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

// GetHardwareByID retrieves a catalog record by primary key.
func (r *hardwareRepository) GetHardwareByID(executor SQLExecutor, id int64) (*models.Hardware, error) {
	query := `SELECT ` + hardwareColumns + ` FROM hardware WHERE id = $1`
	item, err := scanHardware(r.exec(executor).QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting hardware by ID %d: %v", ErrDatabaseError, id, err)
	}
	return item, nil
}

// GetHardwareByBarcode retrieves a catalog record by its exact barcode value.
// Alias matching happens in the service layer.
func (r *hardwareRepository) GetHardwareByBarcode(executor SQLExecutor, barcode string) (*models.Hardware, error) {
	query := `SELECT ` + hardwareColumns + ` FROM hardware WHERE barcode = $1`
	item, err := scanHardware(r.exec(executor).QueryRow(query, barcode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting hardware by barcode %s: %v", ErrDatabaseError, barcode, err)
	}
	return item, nil
}

// GetHardwareItems retrieves catalog records ordered by recency.
func (r *hardwareRepository) GetHardwareItems(limit, offset int) ([]models.Hardware, error) {
	query := `SELECT ` + hardwareColumns + ` FROM hardware ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: querying hardware: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	items := []models.Hardware{}
	for rows.Next() {
		item, err := scanHardware(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning hardware: %v", ErrDatabaseError, err)
		}
		items = append(items, *item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating hardware rows: %v", ErrDatabaseError, err)
	}
	return items, nil
}

// UpdateHardware updates an existing catalog record in place.
func (r *hardwareRepository) UpdateHardware(executor SQLExecutor, item *models.Hardware) error {
	query := `UPDATE hardware SET barcode = $1, description = $2, acquisition_cost = $3, sales_price = $4
	          WHERE id = $5`

	result, err := r.exec(executor).Exec(query,
		item.Barcode, item.Description, item.AcquisitionCost, item.SalesPrice, item.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating hardware ID %d: %v", ErrDatabaseError, item.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating hardware ID %d: %v", ErrDatabaseError, item.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteHardware removes a catalog record.
func (r *hardwareRepository) DeleteHardware(executor SQLExecutor, id int64) error {
	query := `DELETE FROM hardware WHERE id = $1`
	result, err := r.exec(executor).Exec(query, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
			return fmt.Errorf("%w: hardware ID %d is referenced by inventory events or tickets (constraint: %s)", ErrDatabaseError, id, pqErr.Constraint)
		}
		return fmt.Errorf("%w: deleting hardware ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting hardware ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
