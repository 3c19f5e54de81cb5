package dto

import "time"

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a healthy response stamped with the current time.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// RunResponse represents a reconciliation run in API responses.
type RunResponse struct {
	ID               string `json:"id"`
	StatementFile    string `json:"statement_file"`
	Dialect          string `json:"dialect"`
	StartedAt        string `json:"started_at"`
	FinishedAt       string `json:"finished_at"`
	Status           string `json:"status"`
	ErrorMessage     string `json:"error_message,omitempty"`
	TransactionCount int    `json:"transaction_count"`
	InvoiceCount     int    `json:"invoice_count"`
	MatchedCount     int    `json:"matched_count"`
	MissingCount     int    `json:"missing_count"`
	ExemptCount      int    `json:"exempt_count"`
}

// RunListResponse is returned when listing runs.
type RunListResponse struct {
	Runs       []RunResponse `json:"runs"`
	TotalCount int           `json:"total_count"`
	Limit      int           `json:"limit"`
	Offset     int           `json:"offset"`
}

// ResultResponse represents one classified transaction of a run.
type ResultResponse struct {
	Classification    string  `json:"classification"`
	Strategy          string  `json:"strategy,omitempty"`
	Score             int     `json:"score,omitempty"`
	TransactionDate   string  `json:"transaction_date"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	Counterparty      string  `json:"counterparty"`
	Description       string  `json:"description"`
	InvoiceNumber     string  `json:"invoice_number,omitempty"`
	Category          string  `json:"category,omitempty"`
	Partial           bool    `json:"partial,omitempty"`
	Note              string  `json:"note,omitempty"`
	RecoveryFound     bool    `json:"recovery_found,omitempty"`
	RecoveryReference string  `json:"recovery_reference,omitempty"`
}

// ResultListResponse is returned when listing a run's results.
type ResultListResponse struct {
	RunID   string           `json:"run_id"`
	Results []ResultResponse `json:"results"`
}

// ReconcileResponse is returned after an on-demand reconciliation.
type ReconcileResponse struct {
	RunID        string `json:"run_id"`
	MatchedCount int    `json:"matched_count"`
	MissingCount int    `json:"missing_count"`
	ExemptCount  int    `json:"exempt_count"`
}

// StatsResponse aggregates run history.
type StatsResponse struct {
	TotalRuns         int     `json:"total_runs"`
	TotalTransactions int     `json:"total_transactions"`
	TotalMatched      int     `json:"total_matched"`
	TotalMissing      int     `json:"total_missing"`
	TotalExempt       int     `json:"total_exempt"`
	MatchRate         float64 `json:"match_rate"`
	LastRunAt         string  `json:"last_run_at,omitempty"`
}
