package matcher

import (
	"math"
	"strings"

	"github.com/bartoszrychlicki/invoice-finder/internal/domain/registry"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/scorer"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/statement"
)

// matchSubsetSum reconciles one payment against several invoices from the
// same seller. Candidates are unconsumed invoices whose seller name is a
// substring match with the transaction counterparty; the pool must hold
// between MinSubsetCandidates and MaxSubsetCandidates invoices.
//
// Subsets are enumerated iteratively by bitmask rather than by recursion:
// with the pool capped at 9 candidates the full enumeration is at most 511
// sums, a predictable worst case. The first qualifying subset wins.
func (m *Matcher) matchSubsetSum(tx statement.Transaction, invoices []*registry.Invoice, consumed map[int]bool) *Match {
	counterparty := scorer.Normalize(tx.Counterparty)
	if counterparty == "" {
		return nil
	}

	var candidates []*registry.Invoice
	for _, inv := range invoices {
		if consumed[inv.Row] {
			continue
		}
		seller := scorer.Normalize(inv.SellerName)
		if seller == "" {
			continue
		}
		if strings.Contains(counterparty, seller) || strings.Contains(seller, counterparty) {
			candidates = append(candidates, inv)
			if len(candidates) > m.config.MaxSubsetCandidates {
				return nil
			}
		}
	}
	if len(candidates) < m.config.MinSubsetCandidates {
		return nil
	}

	target := math.Abs(tx.Amount)

	for mask := 1; mask < 1<<len(candidates); mask++ {
		sum := 0.0
		for i, inv := range candidates {
			if mask&(1<<i) != 0 {
				sum += inv.Amount
			}
		}
		if math.Abs(sum-target) >= m.config.AmountTolerance {
			continue
		}

		var subset []*registry.Invoice
		for i, inv := range candidates {
			if mask&(1<<i) != 0 {
				subset = append(subset, inv)
			}
		}
		return &Match{
			Transaction:        tx,
			Invoice:            subset[0],
			AdditionalInvoices: subset[1:],
			Score:              subsetSumMatchScore,
			Strategy:           StrategySubsetSum,
		}
	}
	return nil
}
