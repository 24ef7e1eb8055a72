package importer

import (
	"strings"

	"github.com/shopspring/decimal"
)

type amountMode int

const (
	// amountSigned is one column, negative for money out.
	amountSigned amountMode = iota
	// amountSplit has separate debit and credit columns.
	amountSplit
)

type numberStyle int

const (
	// numberEuropean writes 1.234,56.
	numberEuropean numberStyle = iota
	// numberPlain writes 1234.56.
	numberPlain
)

// Format describes the column layout of one bank export. The header row is
// located by column names, so preamble lines and column order do not matter.
type Format struct {
	Name       string
	Delimiter  rune
	DateLayout string
	DateCol    string
	DescCol    string
	Mode       amountMode
	AmountCol  string
	DebitCol   string
	CreditCol  string
	Numbers    numberStyle
}

func (f Format) requiredCols() []string {
	cols := []string{f.DateCol, f.DescCol}

	if f.Mode == amountSplit {
		return append(cols, f.DebitCol, f.CreditCol)
	}

	return append(cols, f.AmountCol)
}

func (f Format) parseNumber(s string) (decimal.Decimal, error) {
	if f.Numbers == numberEuropean {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	return decimal.NewFromString(strings.TrimSpace(s))
}

// formats is tried in order; more specific layouts come first.
var formats = []Format{
	{
		Name:       "cgd-card",
		Delimiter:  ';',
		DateLayout: "02-01-2006",
		DateCol:    "Data",
		DescCol:    "Descrição",
		Mode:       amountSplit,
		DebitCol:   "Débito",
		CreditCol:  "Crédito",
		Numbers:    numberEuropean,
	},
	{
		Name:       "cgd-statement",
		Delimiter:  ';',
		DateLayout: "02-01-2006",
		DateCol:    "Data mov.",
		DescCol:    "Descrição",
		Mode:       amountSigned,
		AmountCol:  "Movimento",
		Numbers:    numberEuropean,
	},
	{
		Name:       "cgd-account",
		Delimiter:  ';',
		DateLayout: "02-01-2006",
		DateCol:    "Data mov.",
		DescCol:    "Descrição",
		Mode:       amountSigned,
		AmountCol:  "Montante",
		Numbers:    numberEuropean,
	},
	{
		Name:       "generic",
		Delimiter:  ',',
		DateLayout: "2006-01-02",
		DateCol:    "Date",
		DescCol:    "Description",
		Mode:       amountSigned,
		AmountCol:  "Amount",
		Numbers:    numberPlain,
	},
}

func delimiters() []rune {
	var out []rune

	seen := make(map[rune]bool)

	for _, f := range formats {
		if !seen[f.Delimiter] {
			seen[f.Delimiter] = true
			out = append(out, f.Delimiter)
		}
	}

	return out
}
