package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

var ErrUnknownFormat = errors.New("no known statement format found")

// Row is one movement read from a statement.
type Row struct {
	Line        int
	Date        time.Time
	Amount      decimal.Decimal
	Type        transaction.Type
	Description string
}

type Statement struct {
	Format  string
	Charset string
	Rows    []Row
}

// Parse decodes a bank statement export, detecting its charset and layout.
func Parse(r io.Reader) (*Statement, error) {
	utf8r, charset, err := toUTF8(r)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}

	for _, delim := range delimiters() {
		records, err := readCSV(data, delim)
		if err != nil {
			continue
		}

		f, cols, header := detectFormat(records, delim)
		if f == nil {
			continue
		}

		rows, err := parseRows(f, cols, records[header+1:], header+1)
		if err != nil {
			return nil, err
		}

		return &Statement{Format: f.Name, Charset: charset, Rows: rows}, nil
	}

	return nil, ErrUnknownFormat
}

func readCSV(data []byte, delim rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return reader.ReadAll()
}

type colIndex map[string]int

// detectFormat finds the first row that carries every column of a format.
func detectFormat(records [][]string, delim rune) (*Format, colIndex, int) {
	for rowIdx, record := range records {
		cols := make(colIndex, len(record))

		for i, cell := range record {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range formats {
			f := &formats[i]
			if f.Delimiter == delim && hasCols(cols, f.requiredCols()) {
				return f, cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func hasCols(cols colIndex, names []string) bool {
	for _, name := range names {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows skips rows without a parseable date or a non-zero amount; those
// are footers, page markers and totals.
func parseRows(f *Format, cols colIndex, records [][]string, offset int) ([]Row, error) {
	var rows []Row

	for i, record := range records {
		line := offset + i + 1

		date, err := time.Parse(f.DateLayout, cell(record, cols[f.DateCol]))
		if err != nil {
			continue
		}

		amount, typ, ok := readAmount(f, cols, record)
		if !ok {
			continue
		}

		desc := cell(record, cols[f.DescCol])
		if desc == "" {
			return nil, fmt.Errorf("line %d: missing description", line)
		}

		rows = append(rows, Row{
			Line:        line,
			Date:        date,
			Amount:      amount,
			Type:        typ,
			Description: desc,
		})
	}

	return rows, nil
}

func readAmount(f *Format, cols colIndex, record []string) (decimal.Decimal, transaction.Type, bool) {
	if f.Mode == amountSplit {
		if d, ok := nonZero(f, cell(record, cols[f.DebitCol])); ok {
			return d.Abs(), transaction.TypeExpense, true
		}

		if d, ok := nonZero(f, cell(record, cols[f.CreditCol])); ok {
			return d.Abs(), transaction.TypeIncome, true
		}

		return decimal.Zero, "", false
	}

	d, ok := nonZero(f, cell(record, cols[f.AmountCol]))
	if !ok {
		return decimal.Zero, "", false
	}

	if d.IsNegative() {
		return d.Neg(), transaction.TypeExpense, true
	}

	return d, transaction.TypeIncome, true
}

func nonZero(f *Format, s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}

	d, err := f.parseNumber(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d, true
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[idx])
}
