package matcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartoszrychlicki/invoice-finder/internal/domain/registry"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/statement"
)

func makeTransaction(amount float64, date time.Time, counterparty, description string) statement.Transaction {
	return statement.Transaction{
		Date:         date,
		Amount:       amount,
		Currency:     "PLN",
		Counterparty: counterparty,
		Description:  description,
	}
}

func makeInvoice(row int, number, issueDate string, amount float64, seller string) *registry.Invoice {
	return &registry.Invoice{
		Row:        row,
		Number:     number,
		IssueDate:  issueDate,
		Amount:     amount,
		Currency:   "PLN",
		SellerName: seller,
	}
}

func TestRun_ExactStrategy(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	invoices := []*registry.Invoice{
		makeInvoice(0, "FV/1/2025", "2025-11-18", 1204.63, "PKO Leasing S.A."),
		makeInvoice(1, "FV/2/2025", "2025-11-18", 999.00, "Inna Firma"),
	}
	txs := []statement.Transaction{
		makeTransaction(-1204.63, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), "PKO Leasing S.A.", "leasing"),
	}

	outcome := m.Run(txs, invoices)

	require.Len(t, outcome.Matched, 1)
	match := outcome.Matched[0]
	assert.Equal(t, StrategyExact, match.Strategy)
	assert.Equal(t, "FV/1/2025", match.Invoice.Number)
	assert.GreaterOrEqual(t, match.Score, 70)
	assert.True(t, outcome.Consumed[0])
	assert.False(t, outcome.Consumed[1])
}

func TestRun_ExactStrategy_AmountAloneIsNotEnough(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	// Amount agrees but the invoice is months old and the seller name does
	// not appear in the transaction text: score 50, below acceptance.
	invoices := []*registry.Invoice{
		makeInvoice(0, "FV/1/2025", "2025-01-02", 300.00, "Dostawca ABC"),
	}
	txs := []statement.Transaction{
		makeTransaction(-300.00, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), "Zupełnie Inna Spółka", "zapłata"),
	}

	outcome := m.Run(txs, invoices)

	assert.Empty(t, outcome.Matched)
	require.Len(t, outcome.Unmatched, 1)
}

func TestRun_EmbeddedInvoiceNumber(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	invoices := []*registry.Invoice{
		makeInvoice(0, "LM/25/09/132141", "2025-09-30", 1244.63, "PKO Leasing S.A."),
	}
	// Amount differs by 40 and the issue date is far away, so the exact
	// strategy fails; the embedded number carries the match.
	txs := []statement.Transaction{
		makeTransaction(-1204.63, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC),
			"PKO Leasing S.A.|ul. Świętokrzyska 36",
			"leasing umowa nr 25/021345, Nr faktury: LM/25/09/132141"),
	}

	outcome := m.Run(txs, invoices)

	require.Len(t, outcome.Matched, 1)
	match := outcome.Matched[0]
	assert.Equal(t, StrategyInvoiceNumber, match.Strategy)
	assert.Equal(t, 85, match.Score)
}

func TestRun_EmbeddedInvoiceNumber_RejectsShortNumbers(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	// A normalized number shorter than 3 characters matches everything, so
	// it must not be used for containment.
	invoices := []*registry.Invoice{
		makeInvoice(0, "1", "2025-01-01", 500.00, "Dostawca"),
	}
	txs := []statement.Transaction{
		makeTransaction(-450.00, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), "Ktoś", "zapłata 1"),
	}

	outcome := m.Run(txs, invoices)
	assert.Empty(t, outcome.Matched)
}

func TestRun_EmbeddedInvoiceNumber_AmountWindow(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	// Amount drift beyond both the absolute window and the percentage
	// window rejects the number match.
	invoices := []*registry.Invoice{
		makeInvoice(0, "FV/77/2025", "2025-01-01", 500.00, "Dostawca"),
	}
	txs := []statement.Transaction{
		makeTransaction(-650.00, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), "Ktoś", "FV/77/2025"),
	}

	outcome := m.Run(txs, invoices)
	assert.Empty(t, outcome.Matched)
}

func TestRun_CounterpartyFuzzyAmount(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	invoices := []*registry.Invoice{
		makeInvoice(0, "FV/3/2025", "2025-01-01", 210.00, "Hosting24 Sp. z o.o."),
	}
	// 15 off the invoice amount: inside the 50-unit fuzzy window.
	txs := []statement.Transaction{
		makeTransaction(-225.00, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), "HOSTING24 SP. Z O.O.", "abonament"),
	}

	outcome := m.Run(txs, invoices)

	require.Len(t, outcome.Matched, 1)
	match := outcome.Matched[0]
	assert.Equal(t, StrategyCounterparty, match.Strategy)
	assert.Equal(t, 75, match.Score)
	assert.False(t, match.Partial)
}

func TestRun_CounterpartyPartialMatch(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	invoices := []*registry.Invoice{
		makeInvoice(0, "FV/4/2025", "2025-01-01", 100.00, "Dostawca XYZ"),
	}
	// The invoice explains only 100 of a 400 payment.
	txs := []statement.Transaction{
		makeTransaction(-400.00, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), "Dostawca XYZ", "zbiorcza płatność"),
	}

	outcome := m.Run(txs, invoices)

	require.Len(t, outcome.Matched, 1)
	match := outcome.Matched[0]
	assert.True(t, match.Partial)
	assert.Equal(t, 70, match.Score)
	assert.InDelta(t, 300.00, match.Remainder, 0.001)
	assert.Contains(t, match.Note, "300.00")
	assert.True(t, outcome.Consumed[0])
}

func TestRun_FirstWordEquality(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	invoices := []*registry.Invoice{
		makeInvoice(0, "FV/5/2025", "2025-01-01", 80.00, "Netia S.A."),
	}
	txs := []statement.Transaction{
		makeTransaction(-80.00, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), "NETIA TELEKOM WARSZAWA", "abonament za internet"),
	}

	outcome := m.Run(txs, invoices)

	require.Len(t, outcome.Matched, 1)
	assert.Equal(t, StrategyCounterparty, outcome.Matched[0].Strategy)
}

func TestRun_IncomingTransactionsAreNotMatched(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	invoices := []*registry.Invoice{
		makeInvoice(0, "FV/6/2025", "2025-11-20", 500.00, "Klient"),
	}
	txs := []statement.Transaction{
		makeTransaction(500.00, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), "Klient", "zapłata za FV/6/2025"),
	}

	outcome := m.Run(txs, invoices)

	assert.Empty(t, outcome.Matched)
	require.Len(t, outcome.Unmatched, 1)
	assert.Empty(t, outcome.Consumed)
}

func TestRun_ConsumptionInvariant(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	// Two identical transactions compete for one invoice; the earlier one
	// in file order claims it.
	invoices := []*registry.Invoice{
		makeInvoice(0, "FV/7/2025", "2025-11-18", 150.00, "Dostawca"),
	}
	txs := []statement.Transaction{
		makeTransaction(-150.00, time.Date(2025, 11, 19, 0, 0, 0, 0, time.UTC), "Dostawca", "pierwsza"),
		makeTransaction(-150.00, time.Date(2025, 11, 19, 0, 0, 0, 0, time.UTC), "Dostawca", "druga"),
	}

	outcome := m.Run(txs, invoices)

	require.Len(t, outcome.Matched, 1)
	assert.Equal(t, "pierwsza", outcome.Matched[0].Transaction.Description)
	require.Len(t, outcome.Unmatched, 1)
	assert.Equal(t, "druga", outcome.Unmatched[0].Description)

	// No two matches reference the same invoice row.
	seen := make(map[int]bool)
	for _, match := range outcome.Matched {
		for _, inv := range match.Invoices() {
			assert.False(t, seen[inv.Row], "invoice row %d claimed twice", inv.Row)
			seen[inv.Row] = true
			assert.True(t, outcome.Consumed[inv.Row])
		}
	}
}

func TestRun_ToleranceInvariant(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	invoices := []*registry.Invoice{
		makeInvoice(0, "FV/8/2025", "2025-11-18", 150.04, "Dostawca"),
	}
	txs := []statement.Transaction{
		makeTransaction(-150.00, time.Date(2025, 11, 19, 0, 0, 0, 0, time.UTC), "Dostawca", "przelew"),
	}

	outcome := m.Run(txs, invoices)

	require.Len(t, outcome.Matched, 1)
	match := outcome.Matched[0]
	if match.Strategy == StrategyExact {
		diff := match.Transaction.Amount + match.Invoice.Amount // signed tx, unsigned invoice
		assert.Less(t, diff*diff, 0.05*0.05)
	}
}

func TestRun_SourceInvoicesNeverMutated(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	inv := makeInvoice(0, "FV/9/2025", "2025-11-18", 150.00, "Dostawca")
	before := *inv

	txs := []statement.Transaction{
		makeTransaction(-150.00, time.Date(2025, 11, 19, 0, 0, 0, 0, time.UTC), "Dostawca", "przelew"),
	}
	outcome := m.Run(txs, []*registry.Invoice{inv})

	require.Len(t, outcome.Matched, 1)
	assert.Equal(t, before, *inv)
}
