// Package matcher reconciles bank transactions against registry invoices.
//
// Each outgoing transaction is tried against four increasingly permissive
// strategies, short-circuiting on the first acceptable result:
//
//  1. exact — weighted amount/date/seller scoring, accept at 70+
//  2. invoice-number — the invoice number appears in the transaction text
//  3. counterparty — seller name agreement with a fuzzy amount window,
//     possibly recording a partial match
//  4. subset-sum — several same-seller invoices sum to one payment
//
// Transactions are processed in file order and an invoice is claimed by at
// most one transaction per run: earliest-in-file wins is a policy choice,
// not an accident of iteration order. Consumed invoices are tracked in an
// explicit row-index set threaded through the run, so the input records
// are never mutated.
package matcher

import (
	"fmt"
	"math"
	"strings"

	"github.com/bartoszrychlicki/invoice-finder/internal/domain/registry"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/scorer"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/statement"
)

// Matcher applies the matching strategies with a fixed configuration.
type Matcher struct {
	config Config
}

// NewMatcher creates a matcher with the given config.
func NewMatcher(config Config) *Matcher {
	return &Matcher{config: config}
}

// Run matches transactions against invoices in file order.
// Incoming (positive) transactions are excluded from matching entirely and
// land in Unmatched for downstream classification.
func (m *Matcher) Run(transactions []statement.Transaction, invoices []*registry.Invoice) *Outcome {
	outcome := &Outcome{
		Consumed: make(map[int]bool),
	}

	for _, tx := range transactions {
		if !tx.Outgoing() {
			outcome.Unmatched = append(outcome.Unmatched, tx)
			continue
		}

		match := m.matchOne(tx, invoices, outcome.Consumed)
		if match == nil {
			outcome.Unmatched = append(outcome.Unmatched, tx)
			continue
		}

		for _, inv := range match.Invoices() {
			outcome.Consumed[inv.Row] = true
		}
		outcome.Matched = append(outcome.Matched, *match)
	}

	return outcome
}

// matchOne tries the strategies in order for a single transaction. A
// partial counterparty match is held back until subset-sum has had a
// chance to explain the whole payment.
func (m *Matcher) matchOne(tx statement.Transaction, invoices []*registry.Invoice, consumed map[int]bool) *Match {
	if match := m.matchExact(tx, invoices, consumed); match != nil {
		return match
	}
	if match := m.matchInvoiceNumber(tx, invoices, consumed); match != nil {
		return match
	}
	match := m.matchCounterparty(tx, invoices, consumed)
	if match != nil && !match.Partial {
		return match
	}
	if subset := m.matchSubsetSum(tx, invoices, consumed); subset != nil {
		return subset
	}
	return match
}

// matchExact scans all unconsumed invoices with the weighted score and
// keeps the best one. Clearing AcceptScore effectively requires amount
// agreement plus date proximity.
func (m *Matcher) matchExact(tx statement.Transaction, invoices []*registry.Invoice, consumed map[int]bool) *Match {
	var best *registry.Invoice
	bestScore := 0

	for _, inv := range invoices {
		if consumed[inv.Row] {
			continue
		}
		if s := scorer.MatchScore(tx, inv); s > bestScore {
			best = inv
			bestScore = s
		}
	}

	if best == nil || bestScore < m.config.AcceptScore {
		return nil
	}
	return &Match{
		Transaction: tx,
		Invoice:     best,
		Score:       bestScore,
		Strategy:    StrategyExact,
	}
}

// matchInvoiceNumber looks for an invoice whose normalized number is
// embedded in the transaction text. First match wins.
func (m *Matcher) matchInvoiceNumber(tx statement.Transaction, invoices []*registry.Invoice, consumed map[int]bool) *Match {
	text := scorer.Normalize(tx.SearchText())

	for _, inv := range invoices {
		if consumed[inv.Row] {
			continue
		}

		number := scorer.Normalize(inv.Number)
		if len(number) < 3 || !strings.Contains(text, number) {
			continue
		}

		diff := math.Abs(math.Abs(tx.Amount) - inv.Amount)
		if diff < m.config.NumberAmountWindow || diff < m.config.NumberAmountPercent*inv.Amount {
			return &Match{
				Transaction: tx,
				Invoice:     inv,
				Score:       numberMatchScore,
				Strategy:    StrategyInvoiceNumber,
			}
		}
	}
	return nil
}

// matchCounterparty matches on seller name agreement with a fuzzy amount
// window. When the payment exceeds the invoice by more than the window the
// invoice only explains part of it, so a partial match is recorded instead,
// with the remainder noted for recovery.
func (m *Matcher) matchCounterparty(tx statement.Transaction, invoices []*registry.Invoice, consumed map[int]bool) *Match {
	var partial *Match

	for _, inv := range invoices {
		if consumed[inv.Row] {
			continue
		}
		if !sellerMatches(tx, inv) {
			continue
		}

		diff := math.Abs(tx.Amount) - inv.Amount
		if math.Abs(diff) < m.config.FuzzyAmountWindow || math.Abs(diff) < m.config.FuzzyAmountPercent*inv.Amount {
			return &Match{
				Transaction: tx,
				Invoice:     inv,
				Score:       fuzzyMatchScore,
				Strategy:    StrategyCounterparty,
			}
		}

		if diff > m.config.FuzzyAmountWindow && partial == nil {
			partial = &Match{
				Transaction: tx,
				Invoice:     inv,
				Score:       partialMatchScore,
				Strategy:    StrategyCounterparty,
				Partial:     true,
				Remainder:   diff,
				Note:        fmt.Sprintf("invoice %s covers %.2f of %.2f, %.2f unexplained", inv.Number, inv.Amount, math.Abs(tx.Amount), diff),
			}
		}
	}

	return partial
}

// sellerMatches implements the counterparty strategy's name agreement:
// normalized containment in either direction, first-word equality for
// words longer than 3 characters, or the seller name appearing in the
// transaction description.
func sellerMatches(tx statement.Transaction, inv *registry.Invoice) bool {
	seller := scorer.Normalize(inv.SellerName)
	counterparty := scorer.Normalize(tx.Counterparty)
	if seller == "" {
		return false
	}

	if counterparty != "" && (strings.Contains(counterparty, seller) || strings.Contains(seller, counterparty)) {
		return true
	}

	sellerWord := firstWord(inv.SellerName)
	counterpartyWord := firstWord(tx.Counterparty)
	if len(sellerWord) > 3 && len(counterpartyWord) > 3 && strings.EqualFold(sellerWord, counterpartyWord) {
		return true
	}

	return strings.Contains(scorer.Normalize(tx.Description), seller)
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
