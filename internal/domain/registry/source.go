package registry

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// RowSource fetches raw positional rows from the persisted registry.
// The production implementation wraps the spreadsheet API; CSVSource reads
// a local export of the same sheet.
type RowSource interface {
	FetchRows(ctx context.Context) ([][]string, error)
}

// CSVSource reads registry rows from a CSV export.
type CSVSource struct {
	Path string
}

// NewCSVSource creates a source backed by a local CSV export of the registry.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// FetchRows reads all data rows. The header row (identified by its
// Timestamp column) is dropped.
func (s *CSVSource) FetchRows(_ context.Context) ([][]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read registry rows: %w", err)
	}

	if len(rows) > 0 && len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), "Timestamp") {
		rows = rows[1:]
	}
	return rows, nil
}

// Load fetches rows from the source and converts them to invoices.
// Malformed rows are skipped; their indices are returned for logging.
func Load(ctx context.Context, source RowSource) ([]*Invoice, []int, error) {
	rows, err := source.FetchRows(ctx)
	if err != nil {
		return nil, nil, err
	}

	invoices := make([]*Invoice, 0, len(rows))
	var skipped []int
	for i, row := range rows {
		inv, err := FromRow(row, i)
		if err != nil {
			skipped = append(skipped, i)
			continue
		}
		invoices = append(invoices, inv)
	}
	return invoices, skipped, nil
}
