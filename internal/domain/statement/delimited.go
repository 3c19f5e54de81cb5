package statement

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
)

// The delimited export has 9 logical columns but the title column is not
// quoted and may itself contain commas. The first 7 columns and the last
// column (running balance) are positionally fixed; everything in between
// is the title and gets rejoined.
const (
	delimitedMinTokens  = 9
	fixedLeadingColumns = 7
)

// Header row is located by the presence of these two column-name tokens.
var headerTokens = [2]string{"Data operacji", "Kwota"}

// ParseDelimited parses the comma-delimited statement dialect.
// Rows with fewer than 9 tokens and rows with unparseable dates or amounts
// are skipped, never fatal.
func ParseDelimited(data []byte) ([]Transaction, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var txs []Transaction
	inData := false

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		if !inData {
			if isHeaderLine(line) {
				inData = true
			}
			continue
		}

		tx, ok := parseDelimitedLine(line)
		if !ok {
			continue
		}
		txs = append(txs, tx)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

func isHeaderLine(line string) bool {
	return strings.Contains(line, headerTokens[0]) && strings.Contains(line, headerTokens[1])
}

// parseDelimitedLine splits one data row. Column layout:
//
//	0: posting date   1: operation date  2: operation type
//	3: amount         4: currency        5: counterparty
//	6: counterparty account
//	7..n-2: title (rejoined with commas)
//	n-1: running balance
func parseDelimitedLine(line string) (Transaction, bool) {
	tokens := strings.Split(line, ",")
	if len(tokens) < delimitedMinTokens {
		return Transaction{}, false
	}

	date, err := ParseDate(tokens[1])
	if err != nil {
		// Fall back to the posting date when the operation date is blank.
		date, err = ParseDate(tokens[0])
		if err != nil {
			return Transaction{}, false
		}
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(tokens[3]), 64)
	if err != nil {
		return Transaction{}, false
	}

	title := strings.Join(tokens[fixedLeadingColumns:len(tokens)-1], ",")

	return Transaction{
		Date:         date,
		Amount:       amount,
		Currency:     strings.TrimSpace(tokens[4]),
		Counterparty: strings.TrimSpace(tokens[5]),
		Description:  strings.TrimSpace(title),
		Type:         strings.TrimSpace(tokens[2]),
		Raw:          line,
	}, true
}
