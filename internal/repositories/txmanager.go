package repositories

import (
	"database/sql"
	"fmt"
)

// TxManager runs a function within a database transaction. If the function
// returns an error the transaction is rolled back, otherwise it is committed.
// Services depend on this interface instead of *sql.DB directly so tests can
// substitute an in-memory implementation.
type TxManager interface {
	WithinTx(fn func(exec SQLExecutor) error) error
}

type sqlTxManager struct {
	db *sql.DB
}

// NewTxManager creates a TxManager backed by the given connection pool.
func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

func (m *sqlTxManager) WithinTx(fn func(exec SQLExecutor) error) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
