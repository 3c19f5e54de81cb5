// Package reconcile runs a full reconciliation: statement in, partitioned
// results out.
//
// A run is single-threaded by design. Invoice consumption is
// read-then-write state shared across transactions, so processing order is
// the policy (earliest in the statement file wins) and recovery calls are
// awaited one at a time to respect the deep-search service's rate limits.
package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/bartoszrychlicki/invoice-finder/internal/adapters/recovery"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/exemption"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/registry"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/statement"
	"github.com/bartoszrychlicki/invoice-finder/internal/infrastructure/storage"
)

// Run reconciles one statement file against the registry.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	startedAt := time.Now()

	transactions, dialect, err := statement.ParseFile(opts.StatementPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse statement: %w", err)
	}
	o.logger.Info("Parsed statement",
		"file", opts.StatementPath,
		"dialect", string(dialect),
		"transactions", len(transactions),
	)

	invoices := o.loadInvoices(ctx)

	result := &Result{
		RunID:            uuid.NewString(),
		StatementFile:    opts.StatementPath,
		Dialect:          dialect,
		TransactionCount: len(transactions),
		InvoiceCount:     len(invoices),
	}

	outcome := o.matcher.Run(transactions, invoices)
	result.Consumed = outcome.Consumed

	for _, match := range outcome.Matched {
		result.Matched = append(result.Matched, MatchedResult{Match: match})
	}

	for _, tx := range outcome.Unmatched {
		if category, ok := o.classifier.Classify(tx); ok {
			result.Exempt = append(result.Exempt, exemption.Result{Transaction: tx, Category: category})
			continue
		}
		result.Missing = append(result.Missing, MissingResult{Transaction: tx})
	}

	o.logger.Info("Reconciliation complete",
		"matched", len(result.Matched),
		"missing", len(result.Missing),
		"exempt", len(result.Exempt),
	)

	if !opts.SkipSearch && o.searcher != nil {
		o.runRecovery(ctx, result)
	}

	o.recordRun(result, startedAt)

	return result, nil
}

// loadInvoices fetches the registry, degrading to an empty invoice list on
// failure so the run still completes; an all-missing report is the
// operator's signal that the registry fetch broke.
func (o *Orchestrator) loadInvoices(ctx context.Context) []*registry.Invoice {
	if o.registry == nil {
		return nil
	}
	invoices, skipped, err := registry.Load(ctx, o.registry)
	if err != nil {
		o.logger.Error("Registry fetch failed, proceeding with empty invoice list", "error", err)
		return nil
	}
	if len(skipped) > 0 {
		o.logger.Warn("Skipped malformed registry rows", "rows", skipped)
	}
	o.logger.Info("Loaded registry", "invoices", len(invoices))
	return invoices
}

// runRecovery issues one deep-search request per missing transaction and
// per partial-match remainder, sequentially in file order. Results only
// annotate the already-classified entries; a failed call never aborts the
// run or the rest of the loop.
func (o *Orchestrator) runRecovery(ctx context.Context, result *Result) {
	for i := range result.Missing {
		tx := result.Missing[i].Transaction
		res, err := o.searcher.Search(ctx, recovery.Request{
			Transaction:  tx,
			TargetAmount: math.Abs(tx.Amount),
		})
		if err != nil {
			o.logger.Warn("Recovery search failed", "counterparty", tx.Counterparty, "error", err)
			result.Missing[i].Recovery = &recovery.Result{Reason: "search failed"}
			continue
		}
		result.Missing[i].Recovery = res
	}

	for i := range result.Matched {
		m := &result.Matched[i]
		if !m.Partial || m.Remainder <= 0 {
			continue
		}
		res, err := o.searcher.Search(ctx, recovery.Request{
			Transaction:  m.Transaction,
			TargetAmount: m.Remainder,
		})
		if err != nil {
			o.logger.Warn("Remainder search failed", "counterparty", m.Transaction.Counterparty, "error", err)
			m.Recovery = &recovery.Result{Reason: "search failed"}
			continue
		}
		m.Recovery = res
	}
}

// recordRun persists the run and its results. History is best-effort; a
// storage failure is logged and the in-memory result still returned.
func (o *Orchestrator) recordRun(result *Result, startedAt time.Time) {
	if o.storage == nil {
		return
	}

	run := &storage.ReconciliationRun{
		ID:               result.RunID,
		StatementFile:    result.StatementFile,
		Dialect:          string(result.Dialect),
		StartedAt:        startedAt,
		FinishedAt:       time.Now(),
		Status:           storage.RunStatusCompleted,
		TransactionCount: result.TransactionCount,
		InvoiceCount:     result.InvoiceCount,
		MatchedCount:     len(result.Matched),
		MissingCount:     len(result.Missing),
		ExemptCount:      len(result.Exempt),
	}
	if err := o.storage.SaveRun(run); err != nil {
		o.logger.Error("Failed to save run", "run_id", result.RunID, "error", err)
		return
	}

	if err := o.storage.SaveResults(result.RunID, buildRunResults(result)); err != nil {
		o.logger.Error("Failed to save run results", "run_id", result.RunID, "error", err)
	}
}

func buildRunResults(result *Result) []*storage.RunResult {
	results := make([]*storage.RunResult, 0, len(result.Matched)+len(result.Missing)+len(result.Exempt))

	for _, m := range result.Matched {
		r := &storage.RunResult{
			Classification:  storage.ClassificationMatched,
			Strategy:        string(m.Strategy),
			Score:           m.Score,
			TransactionDate: m.Transaction.Date,
			Amount:          m.Transaction.Amount,
			Currency:        m.Transaction.Currency,
			Counterparty:    m.Transaction.Counterparty,
			Description:     m.Transaction.Description,
			InvoiceNumber:   m.Invoice.Number,
			Partial:         m.Partial,
			Note:            m.Note,
		}
		if len(m.AdditionalInvoices) > 0 {
			numbers := make([]string, 0, len(m.AdditionalInvoices))
			for _, inv := range m.AdditionalInvoices {
				numbers = append(numbers, inv.Number)
			}
			combined, _ := json.Marshal(numbers)
			r.CombinedJSON = string(combined)
		}
		if m.Recovery != nil {
			r.RecoveryFound = m.Recovery.Found
			r.RecoveryReference = m.Recovery.Reference
		}
		results = append(results, r)
	}

	for _, m := range result.Missing {
		r := &storage.RunResult{
			Classification:  storage.ClassificationMissing,
			TransactionDate: m.Transaction.Date,
			Amount:          m.Transaction.Amount,
			Currency:        m.Transaction.Currency,
			Counterparty:    m.Transaction.Counterparty,
			Description:     m.Transaction.Description,
		}
		if m.Recovery != nil {
			r.RecoveryFound = m.Recovery.Found
			r.RecoveryReference = m.Recovery.Reference
		}
		results = append(results, r)
	}

	for _, e := range result.Exempt {
		results = append(results, &storage.RunResult{
			Classification:  storage.ClassificationExempt,
			TransactionDate: e.Transaction.Date,
			Amount:          e.Transaction.Amount,
			Currency:        e.Transaction.Currency,
			Counterparty:    e.Transaction.Counterparty,
			Description:     e.Transaction.Description,
			Category:        e.Category,
		})
	}

	return results
}
