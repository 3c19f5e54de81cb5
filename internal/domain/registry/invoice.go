// Package registry reads previously recorded invoices from the persisted
// registry and exposes them as positional records.
//
// The registry itself (a spreadsheet maintained by the extraction pipeline)
// is an external collaborator; this package only knows its row layout and
// provides a file-backed source for local runs.
package registry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Registry column indices. Columns before Number (timestamp, sender,
// subject) and after BuyerTaxID belong to the extraction pipeline and are
// not this package's concern.
const (
	colNumber = 3 + iota
	colIssueDate
	colAmount
	colCurrency
	colSellerName
	colSellerTaxID
	colBuyerName
	colBuyerTaxID

	minColumns = colBuyerTaxID + 1
)

// Invoice is one registry row with named logical fields. Row preserves the
// record's position in the registry and doubles as its identity during a
// reconciliation run.
type Invoice struct {
	Row         int
	Number      string
	IssueDate   string
	Amount      float64
	Currency    string
	SellerName  string
	SellerTaxID string
	BuyerName   string
	BuyerTaxID  string
}

// FromRow builds an Invoice from a positional registry row.
func FromRow(row []string, index int) (*Invoice, error) {
	if len(row) < minColumns {
		return nil, fmt.Errorf("registry row %d has %d columns, want at least %d", index, len(row), minColumns)
	}

	amount, err := ParseAmount(row[colAmount])
	if err != nil {
		return nil, fmt.Errorf("registry row %d has unparseable amount %q: %w", index, row[colAmount], err)
	}

	return &Invoice{
		Row:         index,
		Number:      strings.TrimSpace(row[colNumber]),
		IssueDate:   strings.TrimSpace(row[colIssueDate]),
		Amount:      amount,
		Currency:    strings.TrimSpace(row[colCurrency]),
		SellerName:  strings.TrimSpace(row[colSellerName]),
		SellerTaxID: strings.TrimSpace(row[colSellerTaxID]),
		BuyerName:   strings.TrimSpace(row[colBuyerName]),
		BuyerTaxID:  strings.TrimSpace(row[colBuyerTaxID]),
	}, nil
}

// IssueTime parses the issue date, which arrives in whichever textual
// convention the extraction pipeline produced.
func (inv *Invoice) IssueTime() (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", "02-01-2006", "02.01.2006"} {
		if t, err := time.Parse(layout, inv.IssueDate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseAmount parses a registry amount. Extracted values are messy: both
// decimal separators occur, sometimes with thousands spaces or a currency
// suffix glued on.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimSuffix(strings.ToUpper(s), "PLN")
	s = strings.Replace(s, ",", ".", 1)
	return strconv.ParseFloat(s, 64)
}
