package cli

import (
	"fmt"
	"strings"

	"github.com/bartoszrychlicki/invoice-finder/internal/application/reconcile"
)

// PrintHeader prints the application header.
func PrintHeader(file string, skipSearch bool) {
	mode := "full"
	if skipSearch {
		mode = "no-search"
	}
	fmt.Printf("invoice-finder: reconciling %s (%s mode)\n\n", file, mode)
}

// PrintSummary prints the reconciliation result summary.
func PrintSummary(result *reconcile.Result) {
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Summary: Transactions=%d Matched=%d Missing=%d Exempt=%d\n",
		result.TransactionCount,
		len(result.Matched),
		len(result.Missing),
		len(result.Exempt),
	)

	if len(result.Matched) > 0 {
		fmt.Println("\nMatched:")
		for _, m := range result.Matched {
			line := fmt.Sprintf("  %s  %10.2f %s  -> %s (score %d, %s)",
				m.Transaction.Date.Format("2006-01-02"),
				m.Transaction.Amount,
				m.Transaction.Currency,
				m.Invoice.Number,
				m.Score,
				m.Strategy,
			)
			if len(m.AdditionalInvoices) > 0 {
				line += fmt.Sprintf(" +%d combined", len(m.AdditionalInvoices))
			}
			if m.Partial {
				line += " [partial]"
			}
			fmt.Println(line)
		}
	}

	if len(result.Missing) > 0 {
		fmt.Println("\nMissing invoices:")
		for _, m := range result.Missing {
			line := fmt.Sprintf("  %s  %10.2f %s  %s",
				m.Transaction.Date.Format("2006-01-02"),
				m.Transaction.Amount,
				m.Transaction.Currency,
				m.Transaction.Counterparty,
			)
			if m.Recovery != nil && m.Recovery.Found {
				line += fmt.Sprintf(" [found: %s]", m.Recovery.Reference)
			}
			fmt.Println(line)
		}
	}

	if len(result.Exempt) > 0 {
		fmt.Println("\nExempt:")
		for _, e := range result.Exempt {
			fmt.Printf("  %s  %10.2f %s  %s (%s)\n",
				e.Transaction.Date.Format("2006-01-02"),
				e.Transaction.Amount,
				e.Transaction.Currency,
				e.Transaction.Counterparty,
				e.Category,
			)
		}
	}
}
