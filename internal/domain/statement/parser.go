package statement

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dialect identifies a statement input format.
type Dialect string

const (
	DialectDelimited  Dialect = "delimited"
	DialectLineTagged Dialect = "mt940"
)

// DetectDialect picks the parser dialect from the file extension, falling
// back to a content sniff for unknown extensions.
func DetectDialect(path string, content []byte) Dialect {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return DialectDelimited
	case ".sta", ".mt940", ".940":
		return DialectLineTagged
	}
	if strings.Contains(string(content), ":61:") {
		return DialectLineTagged
	}
	return DialectDelimited
}

// ParseFile reads a statement file and returns its transactions.
// Individual malformed lines are skipped; only an unreadable file is an error.
func ParseFile(path string) ([]Transaction, Dialect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read statement file: %w", err)
	}

	dialect := DetectDialect(path, data)

	var txs []Transaction
	switch dialect {
	case DialectLineTagged:
		txs, err = ParseMT940(data)
	default:
		txs, err = ParseDelimited(data)
	}
	if err != nil {
		return nil, dialect, err
	}

	return txs, dialect, nil
}
