package matcher

import (
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/registry"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/statement"
)

// Strategy identifies which matching tier produced a match.
type Strategy string

const (
	StrategyExact         Strategy = "exact"
	StrategyInvoiceNumber Strategy = "invoice-number"
	StrategyCounterparty  Strategy = "counterparty"
	StrategySubsetSum     Strategy = "subset-sum"
)

// Config holds matcher thresholds. The defaults encode the tolerances the
// registry data was tuned against; widen them only deliberately.
type Config struct {
	// AmountTolerance is the window for exact amount agreement, in
	// currency units. Used by the exact and subset-sum strategies.
	AmountTolerance float64

	// AcceptScore is the minimum exact-strategy score to accept a match.
	AcceptScore int

	// NumberAmountWindow and NumberAmountPercent bound how far the amounts
	// may drift when an invoice number is embedded in the transaction text.
	NumberAmountWindow  float64
	NumberAmountPercent float64

	// FuzzyAmountWindow and FuzzyAmountPercent bound the counterparty
	// strategy's amount drift.
	FuzzyAmountWindow  float64
	FuzzyAmountPercent float64

	// MinSubsetCandidates and MaxSubsetCandidates bound the subset-sum
	// candidate pool. The upper bound keeps enumeration tractable.
	MinSubsetCandidates int
	MaxSubsetCandidates int
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		AmountTolerance:     0.05,
		AcceptScore:         70,
		NumberAmountWindow:  100,
		NumberAmountPercent: 0.10,
		FuzzyAmountWindow:   50,
		FuzzyAmountPercent:  0.05,
		MinSubsetCandidates: 2,
		MaxSubsetCandidates: 9,
	}
}

// Fixed scores assigned by the non-scored strategies.
const (
	numberMatchScore    = 85
	fuzzyMatchScore     = 75
	partialMatchScore   = 70
	subsetSumMatchScore = 95
)

// Match pairs a transaction with the invoice (or invoices, for subset-sum
// results) that explain it.
type Match struct {
	Transaction        statement.Transaction
	Invoice            *registry.Invoice
	AdditionalInvoices []*registry.Invoice
	Score              int
	Strategy           Strategy

	// Partial marks a match whose invoice only explains part of the
	// payment; Remainder is the unexplained amount and Note describes it.
	Partial   bool
	Remainder float64
	Note      string
}

// Invoices returns the primary invoice and any combined invoices.
func (m *Match) Invoices() []*registry.Invoice {
	if m.Invoice == nil {
		return m.AdditionalInvoices
	}
	return append([]*registry.Invoice{m.Invoice}, m.AdditionalInvoices...)
}

// Outcome is the result of one matching run. Consumed is the set of
// registry row indices claimed by matches; source invoices are never
// mutated, so the matcher is a pure function of its inputs.
type Outcome struct {
	Matched   []Match
	Unmatched []statement.Transaction
	Consumed  map[int]bool
}
