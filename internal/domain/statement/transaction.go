// Package statement parses bank statement exports into normalized
// transactions.
//
// Two dialects are supported and auto-selected by file extension:
//   - a comma-delimited text export with an unquoted free-text title column
//   - a SWIFT MT940-style line-tagged statement in Windows-1250 encoding
//
// Both dialects produce the same Transaction shape so downstream code
// never needs to know which format the bank delivered.
package statement

import (
	"strings"
	"time"
)

// Transaction is a single bank statement entry. Immutable once parsed.
type Transaction struct {
	Date         time.Time
	Amount       float64 // negative = outgoing
	Currency     string
	Counterparty string // free text, may carry a pipe-separated address fragment
	Description  string
	Type         string // bank-assigned operation category
	Raw          string // original line, kept for auditability
}

// Outgoing reports whether the transaction is an expense.
// Only outgoing transactions are reconciled against invoices.
func (t Transaction) Outgoing() bool {
	return t.Amount < 0
}

// SearchText returns the combined counterparty and description text used
// by the matching strategies.
func (t Transaction) SearchText() string {
	return strings.TrimSpace(t.Counterparty + " " + t.Description)
}

// dateLayouts are the date formats seen across statement exports.
var dateLayouts = []string{
	"02-01-2006",
	"2006-01-02",
	"02.01.2006",
}

// ParseDate parses a statement date in any of the known textual conventions.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
