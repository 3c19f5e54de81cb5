package recovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartoszrychlicki/invoice-finder/internal/domain/statement"
)

func TestBuildQueries_AmountInBothDecimalFormats(t *testing.T) {
	tx := statement.Transaction{Amount: -1204.63}

	queries := BuildQueries(tx, 1204.63)

	require.GreaterOrEqual(t, len(queries), 2)
	assert.Equal(t, "1204.63", queries[0])
	assert.Equal(t, "1204,63", queries[1])
}

func TestBuildQueries_CounterpartyAndDescriptionTokens(t *testing.T) {
	tx := statement.Transaction{
		Amount:       -1204.63,
		Counterparty: "PKO Leasing S.A.|ul. Świętokrzyska 36",
		Description:  "leasing umowa nr 25/021345, Nr faktury: LM/25/09/132141",
	}

	queries := BuildQueries(tx, 1204.63)

	assert.Contains(t, queries, "PKO Leasing S.A.")
	assert.Contains(t, queries, "leasing")
	assert.Contains(t, queries, "umowa")
	assert.Contains(t, queries, "25/021345")
	assert.Contains(t, queries, "LM/25/09/132141")
	// Short tokens carry no signal.
	assert.NotContains(t, queries, "nr")
	assert.NotContains(t, queries, "Nr")
}

func TestBuildQueries_ExcludesAccountNumbersAndDates(t *testing.T) {
	tx := statement.Transaction{
		Amount:      -10.00,
		Description: "przelewy 04102055610000310206538183 20-11-2025 2025-11-20 zamowienie",
	}

	queries := BuildQueries(tx, 10.00)

	assert.NotContains(t, queries, "04102055610000310206538183")
	assert.NotContains(t, queries, "20-11-2025")
	assert.NotContains(t, queries, "2025-11-20")
	assert.Contains(t, queries, "przelewy")
	assert.Contains(t, queries, "zamowienie")
}

func TestBuildQueries_Deterministic(t *testing.T) {
	tx := statement.Transaction{
		Amount:       -50.00,
		Counterparty: "Dostawca",
		Description:  "abonament abonament hosting",
	}

	first := BuildQueries(tx, 50.00)
	second := BuildQueries(tx, 50.00)

	assert.Equal(t, first, second)

	// Repeated tokens appear once.
	count := 0
	for _, q := range first {
		if q == "abonament" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestCleanCounterparty(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"PKO Leasing S.A.|ul. Świętokrzyska 36", "PKO Leasing S.A."},
		{"Dostawca   XYZ ", "Dostawca XYZ"},
		{"Bez adresu", "Bez adresu"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanCounterparty(tt.input), tt.input)
	}
}
