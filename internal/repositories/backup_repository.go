package repositories

import (
	"database/sql"
	"fmt"
)

// backupTables lists every table in delete order: children before parents.
var backupTables = []string{
	"messages",
	"conversations",
	"financial_transactions",
	"appointments",
	"clients",
	"packages",
	"services",
	"professionals",
	"products",
	"application_settings",
}

// BackupRepository wipes application data ahead of a restore.
type BackupRepository interface {
	ClearAll(executor SQLExecutor) error
}

type backupRepository struct {
	db *sql.DB
}

// NewBackupRepository creates a new instance of BackupRepository.
func NewBackupRepository(db *sql.DB) BackupRepository {
	return &backupRepository{db: db}
}

// ClearAll deletes the contents of every restorable table. Users are kept so
// the operator stays logged in.
func (r *backupRepository) ClearAll(executor SQLExecutor) error {
	for _, table := range backupTables {
		if _, err := executor.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("%w: clearing %s: %v", ErrDatabaseError, table, err)
		}
	}
	return nil
}
