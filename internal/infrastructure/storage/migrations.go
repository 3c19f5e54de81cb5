package storage

import (
	"database/sql"
	"fmt"
)

// Migration represents a database schema migration.
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// allMigrations defines all migrations in order.
var allMigrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up:      migration001InitialSchema,
	},
	{
		Version: 2,
		Name:    "add_recovery_columns",
		Up:      migration002AddRecoveryColumns,
	},
}

// runMigrations executes all pending migrations.
func (s *Storage) runMigrations() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range allMigrations {
		if m.Version <= current {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}

		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.Version, m.Name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

func migration001InitialSchema(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE reconciliation_runs (
			id TEXT PRIMARY KEY,
			statement_file TEXT NOT NULL,
			dialect TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP,
			status TEXT NOT NULL DEFAULT 'running',
			error_message TEXT NOT NULL DEFAULT '',
			transaction_count INTEGER NOT NULL DEFAULT 0,
			invoice_count INTEGER NOT NULL DEFAULT 0,
			matched_count INTEGER NOT NULL DEFAULT 0,
			missing_count INTEGER NOT NULL DEFAULT 0,
			exempt_count INTEGER NOT NULL DEFAULT 0,
			skip_search BOOLEAN NOT NULL DEFAULT 0
		);

		CREATE TABLE run_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES reconciliation_runs(id),
			classification TEXT NOT NULL,
			strategy TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL DEFAULT 0,
			transaction_date TIMESTAMP,
			amount REAL NOT NULL,
			currency TEXT NOT NULL DEFAULT '',
			counterparty TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			invoice_number TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			partial BOOLEAN NOT NULL DEFAULT 0,
			note TEXT NOT NULL DEFAULT '',
			combined_json TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX idx_run_results_run_id ON run_results(run_id);
		CREATE INDEX idx_runs_started_at ON reconciliation_runs(started_at);
	`)
	return err
}

func migration002AddRecoveryColumns(tx *sql.Tx) error {
	_, err := tx.Exec(`
		ALTER TABLE run_results ADD COLUMN recovery_found BOOLEAN NOT NULL DEFAULT 0;
	`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		ALTER TABLE run_results ADD COLUMN recovery_reference TEXT NOT NULL DEFAULT '';
	`)
	return err
}
