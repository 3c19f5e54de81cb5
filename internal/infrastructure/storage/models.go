package storage

import "time"

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Result classifications.
const (
	ClassificationMatched = "matched"
	ClassificationMissing = "missing"
	ClassificationExempt  = "exempt"
)

// ReconciliationRun records one reconciliation run over a statement file.
type ReconciliationRun struct {
	ID               string    `json:"id"`
	StatementFile    string    `json:"statement_file"`
	Dialect          string    `json:"dialect"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	Status           string    `json:"status"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	TransactionCount int       `json:"transaction_count"`
	InvoiceCount     int       `json:"invoice_count"`
	MatchedCount     int       `json:"matched_count"`
	MissingCount     int       `json:"missing_count"`
	ExemptCount      int       `json:"exempt_count"`
	SkipSearch       bool      `json:"skip_search"`
}

// RunResult records the classification of one transaction within a run.
type RunResult struct {
	ID                int64     `json:"id"`
	RunID             string    `json:"run_id"`
	Classification    string    `json:"classification"`
	Strategy          string    `json:"strategy,omitempty"`
	Score             int       `json:"score"`
	TransactionDate   time.Time `json:"transaction_date"`
	Amount            float64   `json:"amount"`
	Currency          string    `json:"currency"`
	Counterparty      string    `json:"counterparty"`
	Description       string    `json:"description"`
	InvoiceNumber     string    `json:"invoice_number,omitempty"`
	Category          string    `json:"category,omitempty"`
	Partial           bool      `json:"partial"`
	Note              string    `json:"note,omitempty"`
	RecoveryFound     bool      `json:"recovery_found"`
	RecoveryReference string    `json:"recovery_reference,omitempty"`

	// CombinedJSON holds the numbers of invoices folded into a subset-sum
	// match, stored as a JSON array.
	CombinedJSON string `json:"combined_json,omitempty"`
}

// Stats aggregates run history for reporting.
type Stats struct {
	TotalRuns          int     `json:"total_runs"`
	TotalTransactions  int     `json:"total_transactions"`
	TotalMatched       int     `json:"total_matched"`
	TotalMissing       int     `json:"total_missing"`
	TotalExempt        int     `json:"total_exempt"`
	LastRunAt          string  `json:"last_run_at,omitempty"`
	MatchRate          float64 `json:"match_rate"`
}
