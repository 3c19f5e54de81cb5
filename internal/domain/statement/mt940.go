package statement

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// line61 matches an MT940 transaction line:
// 6-digit value date, optional 4-digit entry date, 1-2 letter debit/credit
// mark, comma-decimal amount, then type code and reference.
var line61 = regexp.MustCompile(`^:61:(\d{6})(\d{4})?([A-Z]{1,2})(\d+,\d*)(.*)$`)

// Narrative sub-field codes inside :86: blocks. Codes 20-26 carry the
// operation title, 27-29 and 60-63 the counterparty name and address.
var (
	descriptionCodes  = map[string]bool{"20": true, "21": true, "22": true, "23": true, "24": true, "25": true, "26": true}
	counterpartyCodes = map[string]bool{"27": true, "28": true, "29": true, "60": true, "61": true, "62": true, "63": true}
)

// currencyLine extracts the statement currency from the opening balance tag.
var currencyLine = regexp.MustCompile(`^:60[FM]:[CD]\d{6}([A-Z]{3})`)

// ParseMT940 parses the line-tagged statement dialect. The input is decoded
// from Windows-1250 before parsing. Unparseable :61: lines are skipped.
func ParseMT940(data []byte) ([]Transaction, error) {
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), charmap.Windows1250.NewDecoder()))
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(bytes.NewReader(decoded))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		txs       []Transaction
		current   *Transaction
		narrative strings.Builder
		currency  = "PLN"
	)

	flush := func() {
		if current == nil {
			return
		}
		applyNarrative(current, narrative.String())
		current.Currency = currency
		txs = append(txs, *current)
		current = nil
		narrative.Reset()
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if m := currencyLine.FindStringSubmatch(line); m != nil {
			currency = m[1]
			continue
		}

		if strings.HasPrefix(line, ":61:") {
			flush()
			tx, ok := parse61(line)
			if !ok {
				continue
			}
			current = &tx
			continue
		}

		if current == nil {
			continue
		}

		switch {
		case strings.HasPrefix(line, ":86:"):
			narrative.WriteString(strings.TrimPrefix(line, ":86:"))
		case strings.HasPrefix(line, ":"):
			// Some other tag ends the narrative for this transaction.
			flush()
		default:
			// Unmarked continuation of the previous :86: line.
			narrative.WriteString(line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

func parse61(line string) (Transaction, bool) {
	m := line61.FindStringSubmatch(line)
	if m == nil {
		return Transaction{}, false
	}

	date, err := time.Parse("060102", m[1])
	if err != nil {
		return Transaction{}, false
	}

	amount, err := strconv.ParseFloat(strings.Replace(m[4], ",", ".", 1), 64)
	if err != nil {
		return Transaction{}, false
	}
	if isDebitMark(m[3]) {
		amount = -amount
	}

	return Transaction{
		Date:   date,
		Amount: amount,
		Raw:    line,
	}, true
}

// isDebitMark reports whether the :61: debit/credit mark denotes an
// outgoing entry. D is a debit, RD a returned (reversed) debit.
func isDebitMark(mark string) bool {
	return mark == "D" || mark == "RD"
}

// applyNarrative splits the collected :86: content on "<NN" sub-fields and
// routes each sub-field by its 2-digit code.
func applyNarrative(tx *Transaction, narrative string) {
	var descParts, cpParts []string

	for _, field := range strings.Split(narrative, "<") {
		if len(field) < 2 {
			continue
		}
		code, value := field[:2], strings.TrimSpace(field[2:])
		if value == "" {
			continue
		}
		switch {
		case code == "00":
			tx.Type = value
		case descriptionCodes[code]:
			descParts = append(descParts, value)
		case counterpartyCodes[code]:
			cpParts = append(cpParts, value)
		}
	}

	tx.Description = strings.Join(descParts, " ")
	tx.Counterparty = strings.Join(cpParts, " ")
}
