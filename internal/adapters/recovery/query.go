package recovery

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bartoszrychlicki/invoice-finder/internal/domain/statement"
)

// MinDeterministicTerms is how many deterministic query terms must exist
// before the AI term generator is skipped.
const MinDeterministicTerms = 5

var (
	tokenPattern = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9/\-]*`)
	nrbPattern   = regexp.MustCompile(`^\d{26}$`)
	datePattern  = regexp.MustCompile(`^(\d{2}[-.]\d{2}[-.]\d{4}|\d{4}[-.]\d{2}[-.]\d{2})$`)
)

// BuildQueries derives deterministic search terms for a transaction:
// the target amount in both decimal formats, the cleaned counterparty
// name, and alphanumeric description tokens of at least 5 characters that
// are neither bare account numbers nor dates. Order is deterministic and
// duplicates are dropped.
func BuildQueries(tx statement.Transaction, targetAmount float64) []string {
	var terms []string
	seen := make(map[string]bool)
	add := func(term string) {
		term = strings.TrimSpace(term)
		if term == "" || seen[term] {
			return
		}
		seen[term] = true
		terms = append(terms, term)
	}

	dotAmount := fmt.Sprintf("%.2f", abs(targetAmount))
	add(dotAmount)
	add(strings.Replace(dotAmount, ".", ",", 1))

	add(CleanCounterparty(tx.Counterparty))

	for _, token := range tokenPattern.FindAllString(tx.Description, -1) {
		if alnumLen(token) < 5 {
			continue
		}
		if nrbPattern.MatchString(token) || datePattern.MatchString(token) {
			continue
		}
		add(token)
	}

	return terms
}

// CleanCounterparty strips the address fragment that banks append after a
// pipe and collapses repeated whitespace.
func CleanCounterparty(counterparty string) string {
	name := counterparty
	if i := strings.IndexByte(name, '|'); i >= 0 {
		name = name[:i]
	}
	return strings.Join(strings.Fields(name), " ")
}

func alnumLen(s string) int {
	n := 0
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			n++
		}
	}
	return n
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
