package storage

// Repository defines the complete storage interface.
// This interface allows swapping implementations and makes testing with
// the in-memory mock straightforward.
type Repository interface {
	RunRepository
	Close() error
}

// RunRepository handles reconciliation run history.
type RunRepository interface {
	// SaveRun inserts or updates a reconciliation run
	SaveRun(run *ReconciliationRun) error

	// GetRun retrieves a run by ID
	GetRun(id string) (*ReconciliationRun, error)

	// ListRuns returns runs newest-first with pagination
	ListRuns(limit, offset int) ([]*ReconciliationRun, int, error)

	// SaveResults stores the per-transaction results of a run
	SaveResults(runID string, results []*RunResult) error

	// GetResults retrieves all results of a run
	GetResults(runID string) ([]*RunResult, error)

	// GetStats returns aggregate statistics over all runs
	GetStats() (*Stats, error)
}
