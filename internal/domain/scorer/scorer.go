// Package scorer computes 0-100 confidence scores between financial
// records from weighted field comparisons.
//
// Two call sites share the same philosophy but use different field sets:
// invoice-vs-invoice scoring decides whether a freshly extracted invoice is
// a duplicate of a registry record, and transaction-vs-invoice scoring
// drives the exact-match reconciliation strategy.
//
// All comparisons run on normalized text, so the scorer is insensitive to
// the formatting noise typical of extracted financial documents
// ("F/2023/01" vs "F-2023-01", "123-456-78-90" vs "1234567890").
package scorer

import (
	"math"
	"strings"
	"time"

	"github.com/bartoszrychlicki/invoice-finder/internal/domain/registry"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/statement"
)

const (
	// AmountTolerance is the window, in currency units, within which two
	// amounts count as equal.
	AmountTolerance = 0.05

	// DuplicateThreshold is the minimum duplicate score for a candidate
	// invoice to be treated as already present in the registry.
	DuplicateThreshold = 80

	// dateProximityDays is how far apart a transaction and an invoice may
	// be dated and still earn the date proximity points.
	dateProximityDays = 7
)

// Duplicate score weights.
const (
	duplicateAmountPoints = 40
	duplicateDatePoints   = 30
	duplicateNumberPoints = 20
	duplicateTaxIDPoints  = 20
)

// Reconciliation score weights.
const (
	matchAmountPoints  = 50
	matchDatePoints    = 40
	matchSameDayPoints = 10
	matchSellerPoints  = 10
)

// Normalize lowercases a string and strips every non-alphanumeric rune.
// All text comparisons in the scorer and the matcher run on this form.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AmountsMatch reports whether two amounts are equal within AmountTolerance.
// Amounts are compared by absolute value; the statement uses signed amounts
// while the registry stores them unsigned.
func AmountsMatch(a, b float64) bool {
	return math.Abs(math.Abs(a)-math.Abs(b)) < AmountTolerance
}

// DuplicateScore scores a freshly extracted invoice against an existing
// registry record.
//
// Buyer tax ID is deliberately left out of the weights: registry rows are
// all issued to the same buyer, so it carries no signal.
func DuplicateScore(candidate, existing *registry.Invoice) int {
	score := 0

	if AmountsMatch(candidate.Amount, existing.Amount) {
		score += duplicateAmountPoints
	}
	if candidate.IssueDate != "" && candidate.IssueDate == existing.IssueDate {
		score += duplicateDatePoints
	}
	if n := Normalize(candidate.Number); n != "" && n == Normalize(existing.Number) {
		score += duplicateNumberPoints
	}
	if id := Normalize(candidate.SellerTaxID); id != "" && id == Normalize(existing.SellerTaxID) {
		score += duplicateTaxIDPoints
	}

	return capScore(score)
}

// IsDuplicate reports whether the candidate invoice already exists in the
// registry as the given record.
func IsDuplicate(candidate, existing *registry.Invoice) bool {
	return DuplicateScore(candidate, existing) >= DuplicateThreshold
}

// FindDuplicate scans existing registry records for a duplicate of the
// candidate and returns the best one at or above the threshold.
func FindDuplicate(candidate *registry.Invoice, existing []*registry.Invoice) (*registry.Invoice, int) {
	var best *registry.Invoice
	bestScore := 0
	for _, inv := range existing {
		if s := DuplicateScore(candidate, inv); s > bestScore {
			best = inv
			bestScore = s
		}
	}
	if bestScore < DuplicateThreshold {
		return nil, bestScore
	}
	return best, bestScore
}

// MatchScore scores a bank transaction against a registry invoice for the
// exact reconciliation strategy. Amount agreement is the dominant weight;
// date proximity and seller name containment refine it.
func MatchScore(tx statement.Transaction, inv *registry.Invoice) int {
	score := 0

	if AmountsMatch(tx.Amount, inv.Amount) {
		score += matchAmountPoints
	}

	if issued, ok := inv.IssueTime(); ok && !tx.Date.IsZero() {
		days := math.Abs(tx.Date.Sub(issued).Hours() / 24)
		if days <= dateProximityDays {
			score += matchDatePoints
			if sameDay(tx.Date, issued) {
				score += matchSameDayPoints
			}
		}
	}

	if seller := Normalize(inv.SellerName); seller != "" {
		if strings.Contains(Normalize(tx.SearchText()), seller) {
			score += matchSellerPoints
		}
	}

	return capScore(score)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func capScore(score int) int {
	if score > 100 {
		return 100
	}
	return score
}
