// Package exemption identifies transactions that are structurally never
// expected to have an invoice, such as bank fees and internal transfers.
package exemption

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bartoszrychlicki/invoice-finder/internal/domain/scorer"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/statement"
)

// Exemption categories.
const (
	CategoryFees             = "FEES"
	CategoryInternalTransfer = "INTERNAL_TRANSFER"
	CategoryIncoming         = "INCOMING"
)

// feeTypeLabel is the bank's operation type for account fees. The label has
// shipped with inconsistent character encoding across statement exports, so
// the comparison runs on normalized text rather than raw bytes.
const feeTypeLabel = "Opłaty i prowizje"

// Rule maps a set of keywords to an exemption category. Keywords are
// matched case-insensitively as substrings of the transaction's combined
// counterparty, description and type text.
type Rule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// rulesFile is the YAML shape of an exemption rules file.
type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// DefaultRules returns the built-in exemption rules.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category: CategoryFees,
			Keywords: []string{"prowizja", "opłata za", "oplata za"},
		},
		{
			Category: CategoryInternalTransfer,
			Keywords: []string{"przelew własny", "przelew wlasny", "na rachunek własny"},
		},
	}
}

// LoadRules reads exemption rules from a YAML file.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read exemption rules: %w", err)
	}
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse exemption rules: %w", err)
	}
	return file.Rules, nil
}

// Result is an exempt classification for one transaction.
type Result struct {
	Transaction statement.Transaction
	Category    string
}

// Classifier applies exemption rules to unmatched transactions.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier. Nil rules fall back to DefaultRules.
func NewClassifier(rules []Rule) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify returns the exemption category for a transaction, if any.
//
// Incoming transactions are exempt by construction: the registry records
// cost invoices only, so an inbound payment can never have one.
func (c *Classifier) Classify(tx statement.Transaction) (string, bool) {
	if !tx.Outgoing() {
		return CategoryIncoming, true
	}

	haystack := strings.ToLower(tx.Counterparty + " " + tx.Description + " " + tx.Type)
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(haystack, strings.ToLower(keyword)) {
				return rule.Category, true
			}
		}
	}

	// Fallback for the bank-fee operation type.
	if scorer.Normalize(tx.Type) == scorer.Normalize(feeTypeLabel) {
		return CategoryFees, true
	}

	return "", false
}
