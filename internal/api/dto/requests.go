package dto

// ReconcileRequest starts an on-demand reconciliation run.
type ReconcileRequest struct {
	// File is the statement file path on the server (required).
	File string `json:"file"`

	// SkipSearch disables the deep-search recovery hook for this run.
	SkipSearch bool `json:"skip_search"`
}
