package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registryRow(number, date, amount, seller, taxID string) []string {
	return []string{
		"2025-11-20 10:00:00", "faktury@example.com", "FV listopad",
		number, date, amount, "PLN", seller, taxID, "Moja Firma Sp. z o.o.", "5252248481",
	}
}

func TestFromRow(t *testing.T) {
	inv, err := FromRow(registryRow("LM/25/09/132141", "2025-11-18", "1204.63", "PKO Leasing S.A.", "7251735694"), 4)
	require.NoError(t, err)

	assert.Equal(t, 4, inv.Row)
	assert.Equal(t, "LM/25/09/132141", inv.Number)
	assert.Equal(t, "2025-11-18", inv.IssueDate)
	assert.Equal(t, 1204.63, inv.Amount)
	assert.Equal(t, "PLN", inv.Currency)
	assert.Equal(t, "PKO Leasing S.A.", inv.SellerName)
	assert.Equal(t, "7251735694", inv.SellerTaxID)
	assert.Equal(t, "Moja Firma Sp. z o.o.", inv.BuyerName)
	assert.Equal(t, "5252248481", inv.BuyerTaxID)
}

func TestFromRow_TooFewColumns(t *testing.T) {
	_, err := FromRow([]string{"2025-11-20", "a@b.c", "subject", "FV/1"}, 0)
	assert.Error(t, err)
}

func TestParseAmount_MessyFormats(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1204.63", 1204.63},
		{"1204,63", 1204.63},
		{"1 204,63", 1204.63},
		{"1204.63 PLN", 1204.63},
		{" 99 ", 99},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseAmount("brak")
	assert.Error(t, err)
}

func TestIssueTime(t *testing.T) {
	inv := &Invoice{IssueDate: "2025-11-18"}
	got, ok := inv.IssueTime()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 11, 18, 0, 0, 0, 0, time.UTC), got)

	inv = &Invoice{IssueDate: "18-11-2025"}
	got, ok = inv.IssueTime()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 11, 18, 0, 0, 0, 0, time.UTC), got)

	inv = &Invoice{IssueDate: "listopad"}
	_, ok = inv.IssueTime()
	assert.False(t, ok)
}

func TestCSVSource_SkipsHeaderRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.csv")
	content := "Timestamp,From,Subject,Number,IssueDate,Amount,Currency,SellerName,SellerTaxId,BuyerName,BuyerTaxId\n" +
		"2025-11-20 10:00:00,faktury@example.com,FV,FV/1/2025,2025-11-18,100.00,PLN,Dostawca,1234567890,Moja Firma,5252248481\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, err := NewCSVSource(path).FetchRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "FV/1/2025", rows[0][3])
}

func TestLoad_SkipsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.csv")
	content := "2025-11-20,a@b.c,FV,FV/1/2025,2025-11-18,100.00,PLN,Dostawca,1234567890,Moja Firma,5252248481\n" +
		"2025-11-21,a@b.c,FV,FV/2/2025,2025-11-19,not-an-amount,PLN,Dostawca,1234567890,Moja Firma,5252248481\n" +
		"2025-11-22,a@b.c,FV,FV/3/2025,2025-11-20,200.00,PLN,Inny Dostawca,9876543210,Moja Firma,5252248481\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	invoices, skipped, err := Load(context.Background(), NewCSVSource(path))
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, []int{1}, skipped)
	assert.Equal(t, "FV/1/2025", invoices[0].Number)
	assert.Equal(t, "FV/3/2025", invoices[1].Number)
}

func TestLoad_SourceFailure(t *testing.T) {
	_, _, err := Load(context.Background(), NewCSVSource(filepath.Join(t.TempDir(), "missing.csv")))
	assert.Error(t, err)
}
