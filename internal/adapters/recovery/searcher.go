// Package recovery implements the deep-search hook for transactions that
// finished a reconciliation run without a matching invoice.
//
// Recovery never changes a transaction's classification; its results only
// annotate the already-produced missing and partial entries for reporting.
package recovery

import (
	"context"

	"github.com/bartoszrychlicki/invoice-finder/internal/domain/statement"
)

// Request asks the deep-search service to look for documentation of one
// transaction. TargetAmount is the full transaction amount for missing
// transactions, or just the unexplained remainder for partial matches.
type Request struct {
	Transaction  statement.Transaction
	TargetAmount float64
}

// Result is the deep-search outcome for one request.
type Result struct {
	Found     bool   `json:"found"`
	Reference string `json:"reference,omitempty"`
	QueryUsed string `json:"query_used,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Searcher issues recovery requests to the deep-search service.
type Searcher interface {
	Search(ctx context.Context, req Request) (*Result, error)
}

// TermGenerator produces search terms with an external AI service. It is
// only consulted when the deterministic builder yields too few terms.
type TermGenerator interface {
	GenerateTerms(ctx context.Context, tx statement.Transaction) ([]string, error)
}
