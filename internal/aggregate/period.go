// Package aggregate turns an in-memory transaction list into the summaries
// the dashboard renders. Every function is pure: no I/O, no clock reads, and
// the input slice is never modified.
package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

// Period is an inclusive range of calendar dates.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewPeriod(start, end time.Time) Period {
	return Period{Start: transaction.DateOnly(start), End: transaction.DateOnly(end)}
}

// MonthOf returns the calendar month containing ref.
func MonthOf(ref time.Time) Period {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: first, End: first.AddDate(0, 1, -1)}
}

// YearOf returns the calendar year containing ref.
func YearOf(ref time.Time) Period {
	return Period{
		Start: time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(ref.Year(), time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// Contains compares calendar dates only; both bounds are included.
func (p Period) Contains(t time.Time) bool {
	d := transaction.DateOnly(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

func DaysInMonth(ref time.Time) int {
	return time.Date(ref.Year(), ref.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Filter returns the transactions for which keep is true, in input order.
func Filter(txs []*transaction.Transaction, keep func(*transaction.Transaction) bool) []*transaction.Transaction {
	out := make([]*transaction.Transaction, 0, len(txs))

	for _, tx := range txs {
		if keep(tx) {
			out = append(out, tx)
		}
	}

	return out
}

func FilterByPeriod(txs []*transaction.Transaction, p Period) []*transaction.Transaction {
	return Filter(txs, func(tx *transaction.Transaction) bool { return p.Contains(tx.Date) })
}

func FilterByType(txs []*transaction.Transaction, typ transaction.Type) []*transaction.Transaction {
	return Filter(txs, func(tx *transaction.Transaction) bool { return tx.Type == typ })
}

// Sum adds the amounts of txs regardless of type.
func Sum(txs []*transaction.Transaction) decimal.Decimal {
	total := decimal.Zero

	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}

	return total
}

// totals splits txs into income and expense sums.
func totals(txs []*transaction.Transaction) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero

	for _, tx := range txs {
		switch tx.Type {
		case transaction.TypeIncome:
			income = income.Add(tx.Amount)
		case transaction.TypeExpense:
			expense = expense.Add(tx.Amount)
		}
	}

	return income, expense
}

// percent returns part/whole*100 rounded half away from zero, or 0 when whole is 0.
func percent(part, whole decimal.Decimal, places int32) float64 {
	if whole.IsZero() {
		return 0
	}

	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(places).InexactFloat64()
}

func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
