package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for run history.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with a SQLite database.
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveRun inserts or updates a reconciliation run.
func (s *Storage) SaveRun(run *ReconciliationRun) error {
	query := `
	INSERT OR REPLACE INTO reconciliation_runs
	(id, statement_file, dialect, started_at, finished_at, status,
	 error_message, transaction_count, invoice_count, matched_count,
	 missing_count, exempt_count, skip_search)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		run.ID,
		run.StatementFile,
		run.Dialect,
		run.StartedAt,
		run.FinishedAt,
		run.Status,
		run.ErrorMessage,
		run.TransactionCount,
		run.InvoiceCount,
		run.MatchedCount,
		run.MissingCount,
		run.ExemptCount,
		run.SkipSearch,
	)
	return err
}

// GetRun retrieves a run by ID.
func (s *Storage) GetRun(id string) (*ReconciliationRun, error) {
	query := `
	SELECT id, statement_file, dialect, started_at, finished_at, status,
	       error_message, transaction_count, invoice_count, matched_count,
	       missing_count, exempt_count, skip_search
	FROM reconciliation_runs WHERE id = ?
	`

	run := &ReconciliationRun{}
	err := s.db.QueryRow(query, id).Scan(
		&run.ID,
		&run.StatementFile,
		&run.Dialect,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Status,
		&run.ErrorMessage,
		&run.TransactionCount,
		&run.InvoiceCount,
		&run.MatchedCount,
		&run.MissingCount,
		&run.ExemptCount,
		&run.SkipSearch,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns runs newest-first with pagination.
func (s *Storage) ListRuns(limit, offset int) ([]*ReconciliationRun, int, error) {
	if limit <= 0 {
		limit = 50
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM reconciliation_runs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
	SELECT id, statement_file, dialect, started_at, finished_at, status,
	       error_message, transaction_count, invoice_count, matched_count,
	       missing_count, exempt_count, skip_search
	FROM reconciliation_runs
	ORDER BY started_at DESC
	LIMIT ? OFFSET ?
	`

	rows, err := s.db.Query(query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	var runs []*ReconciliationRun
	for rows.Next() {
		run := &ReconciliationRun{}
		if err := rows.Scan(
			&run.ID,
			&run.StatementFile,
			&run.Dialect,
			&run.StartedAt,
			&run.FinishedAt,
			&run.Status,
			&run.ErrorMessage,
			&run.TransactionCount,
			&run.InvoiceCount,
			&run.MatchedCount,
			&run.MissingCount,
			&run.ExemptCount,
			&run.SkipSearch,
		); err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

// SaveResults stores the per-transaction results of a run in one transaction.
func (s *Storage) SaveResults(runID string, results []*RunResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	query := `
	INSERT INTO run_results
	(run_id, classification, strategy, score, transaction_date, amount,
	 currency, counterparty, description, invoice_number, category,
	 partial, note, combined_json, recovery_found, recovery_reference)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, r := range results {
		if _, err := tx.Exec(query,
			runID,
			r.Classification,
			r.Strategy,
			r.Score,
			r.TransactionDate,
			r.Amount,
			r.Currency,
			r.Counterparty,
			r.Description,
			r.InvoiceNumber,
			r.Category,
			r.Partial,
			r.Note,
			r.CombinedJSON,
			r.RecoveryFound,
			r.RecoveryReference,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// GetResults retrieves all results of a run in insertion order.
func (s *Storage) GetResults(runID string) ([]*RunResult, error) {
	query := `
	SELECT id, run_id, classification, strategy, score, transaction_date,
	       amount, currency, counterparty, description, invoice_number,
	       category, partial, note, combined_json, recovery_found,
	       recovery_reference
	FROM run_results WHERE run_id = ? ORDER BY id
	`

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []*RunResult
	for rows.Next() {
		r := &RunResult{}
		if err := rows.Scan(
			&r.ID,
			&r.RunID,
			&r.Classification,
			&r.Strategy,
			&r.Score,
			&r.TransactionDate,
			&r.Amount,
			&r.Currency,
			&r.Counterparty,
			&r.Description,
			&r.InvoiceNumber,
			&r.Category,
			&r.Partial,
			&r.Note,
			&r.CombinedJSON,
			&r.RecoveryFound,
			&r.RecoveryReference,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// GetStats returns aggregate statistics over all runs.
func (s *Storage) GetStats() (*Stats, error) {
	stats := &Stats{}

	query := `
	SELECT COUNT(*),
	       COALESCE(SUM(transaction_count), 0),
	       COALESCE(SUM(matched_count), 0),
	       COALESCE(SUM(missing_count), 0),
	       COALESCE(SUM(exempt_count), 0),
	       COALESCE(MAX(started_at), '')
	FROM reconciliation_runs WHERE status = ?
	`

	err := s.db.QueryRow(query, RunStatusCompleted).Scan(
		&stats.TotalRuns,
		&stats.TotalTransactions,
		&stats.TotalMatched,
		&stats.TotalMissing,
		&stats.TotalExempt,
		&stats.LastRunAt,
	)
	if err != nil {
		return nil, err
	}

	if stats.TotalTransactions > 0 {
		stats.MatchRate = float64(stats.TotalMatched) / float64(stats.TotalTransactions)
	}
	return stats, nil
}
