package exemption

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartoszrychlicki/invoice-finder/internal/domain/statement"
)

func TestClassify_IncomingIsAlwaysExempt(t *testing.T) {
	c := NewClassifier(nil)

	category, ok := c.Classify(statement.Transaction{Amount: 1500.00, Counterparty: "Klient Sp. z o.o."})
	require.True(t, ok)
	assert.Equal(t, CategoryIncoming, category)
}

func TestClassify_KeywordRules(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name string
		tx   statement.Transaction
		want string
	}{
		{
			name: "commission in description",
			tx:   statement.Transaction{Amount: -5.00, Description: "Prowizja za przelew zagraniczny"},
			want: CategoryFees,
		},
		{
			name: "fee in type",
			tx:   statement.Transaction{Amount: -10.00, Type: "Opłata za prowadzenie rachunku"},
			want: CategoryFees,
		},
		{
			name: "internal transfer",
			tx:   statement.Transaction{Amount: -2000.00, Description: "Przelew własny na lokatę"},
			want: CategoryInternalTransfer,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, ok := c.Classify(tt.tx)
			require.True(t, ok)
			assert.Equal(t, tt.want, category)
		})
	}
}

func TestClassify_FeeTypeFallbackSurvivesMangledEncoding(t *testing.T) {
	c := NewClassifier(nil)

	// No keyword hits here; the operation type alone marks the fee. The
	// second case is the same label as delivered by an export that went
	// through the wrong code page.
	for _, label := range []string{"Opłaty i prowizje", "Op³aty i prowizje"} {
		category, ok := c.Classify(statement.Transaction{Amount: -3.50, Type: label})
		require.True(t, ok, label)
		assert.Equal(t, CategoryFees, category, label)
	}
}

func TestClassify_OrdinaryPaymentIsNotExempt(t *testing.T) {
	c := NewClassifier(nil)

	_, ok := c.Classify(statement.Transaction{
		Amount:       -1204.63,
		Counterparty: "PKO Leasing S.A.",
		Description:  "leasing umowa nr 25/021345",
		Type:         "Przelewy wychodzące",
	})
	assert.False(t, ok)
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exemptions.yaml")
	content := `rules:
  - category: FEES
    keywords:
      - prowizja
      - "opłata za kartę"
  - category: INTERNAL_TRANSFER
    keywords:
      - przelew własny
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, CategoryFees, rules[0].Category)
	assert.Equal(t, []string{"prowizja", "opłata za kartę"}, rules[0].Keywords)

	c := NewClassifier(rules)
	category, ok := c.Classify(statement.Transaction{Amount: -9.99, Description: "Opłata za kartę debetową"})
	require.True(t, ok)
	assert.Equal(t, CategoryFees, category)
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
