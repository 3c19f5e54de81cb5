package reconcile

import (
	"log/slog"

	"github.com/bartoszrychlicki/invoice-finder/internal/adapters/recovery"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/exemption"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/matcher"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/registry"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/statement"
	"github.com/bartoszrychlicki/invoice-finder/internal/infrastructure/storage"
)

// Options holds per-run configuration.
type Options struct {
	// StatementPath is the bank statement file to reconcile (required).
	StatementPath string

	// SkipSearch disables the deep-search recovery hook entirely.
	SkipSearch bool
}

// MatchedResult is a match annotated with its recovery outcome. Recovery
// is only set for partial matches whose remainder was searched for.
type MatchedResult struct {
	matcher.Match
	Recovery *recovery.Result `json:"recovery,omitempty"`
}

// MissingResult is a transaction with no matching invoice, annotated with
// its recovery outcome when the hook ran.
type MissingResult struct {
	Transaction statement.Transaction
	Recovery    *recovery.Result `json:"recovery,omitempty"`
}

// Result is the outcome of one reconciliation run. Every statement
// transaction appears in exactly one of Matched, Missing or Exempt.
type Result struct {
	RunID            string
	StatementFile    string
	Dialect          statement.Dialect
	TransactionCount int
	InvoiceCount     int

	Matched []MatchedResult
	Missing []MissingResult
	Exempt  []exemption.Result

	// Consumed is the set of registry row indices claimed during the run.
	Consumed map[int]bool
}

// Orchestrator wires the parser, registry, matcher, classifier, recovery
// hook and run history into a single reconciliation run.
type Orchestrator struct {
	registry   registry.RowSource
	matcher    *matcher.Matcher
	classifier *exemption.Classifier
	searcher   recovery.Searcher
	storage    storage.Repository
	logger     *slog.Logger
}

// NewOrchestrator creates an orchestrator. searcher and storage may be nil:
// a nil searcher disables recovery and a nil storage disables run history.
func NewOrchestrator(
	source registry.RowSource,
	m *matcher.Matcher,
	classifier *exemption.Classifier,
	searcher recovery.Searcher,
	store storage.Repository,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = matcher.NewMatcher(matcher.DefaultConfig())
	}
	if classifier == nil {
		classifier = exemption.NewClassifier(nil)
	}
	return &Orchestrator{
		registry:   source,
		matcher:    m,
		classifier: classifier,
		searcher:   searcher,
		storage:    store,
		logger:     logger,
	}
}
