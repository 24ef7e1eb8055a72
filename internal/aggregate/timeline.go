package aggregate

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

// SortByTimestamp returns a copy of txs ordered newest first. Equal
// timestamps keep their input order.
func SortByTimestamp(txs []*transaction.Transaction) []*transaction.Transaction {
	out := slices.Clone(txs)

	slices.SortStableFunc(out, func(a, b *transaction.Transaction) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	return out
}

// DayGroup holds the transactions of one calendar date.
type DayGroup struct {
	Date         time.Time                  `json:"date"`
	Income       decimal.Decimal            `json:"income"`
	Expense      decimal.Decimal            `json:"expense"`
	Transactions []*transaction.Transaction `json:"transactions"`
}

// GroupByDate buckets txs by calendar date. Groups appear in the order their
// first transaction does and keep the caller's order within a day; sort with
// SortByTimestamp first for a chronological list.
func GroupByDate(txs []*transaction.Transaction) []DayGroup {
	var groups []DayGroup

	index := make(map[time.Time]int)

	for _, tx := range txs {
		day := tx.Day()

		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Date: day, Income: decimal.Zero, Expense: decimal.Zero})
		}

		g := &groups[i]
		g.Transactions = append(g.Transactions, tx)

		switch tx.Type {
		case transaction.TypeIncome:
			g.Income = g.Income.Add(tx.Amount)
		case transaction.TypeExpense:
			g.Expense = g.Expense.Add(tx.Amount)
		}
	}

	return groups
}

// PeriodSummary is the income and expense of one month, or of a whole year
// when Month is zero.
type PeriodSummary struct {
	Year    int             `json:"year"`
	Month   time.Month      `json:"month,omitempty"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

func summarizePeriod(txs []*transaction.Transaction, year int, month time.Month) PeriodSummary {
	income, expense := totals(txs)

	return PeriodSummary{
		Year:    year,
		Month:   month,
		Income:  money(income),
		Expense: money(expense),
		Net:     money(income.Sub(expense)),
	}
}

// MonthlySummaries returns twelve entries, January first, for year.
func MonthlySummaries(txs []*transaction.Transaction, year int) []PeriodSummary {
	out := make([]PeriodSummary, 0, 12)

	for m := time.January; m <= time.December; m++ {
		p := MonthOf(time.Date(year, m, 1, 0, 0, 0, 0, time.UTC))
		out = append(out, summarizePeriod(FilterByPeriod(txs, p), year, m))
	}

	return out
}

// YearlySummaries returns one entry per year that has transactions, oldest first.
func YearlySummaries(txs []*transaction.Transaction) []PeriodSummary {
	byYear := make(map[int][]*transaction.Transaction)

	for _, tx := range txs {
		byYear[tx.Date.Year()] = append(byYear[tx.Date.Year()], tx)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}

	slices.Sort(years)

	out := make([]PeriodSummary, 0, len(years))
	for _, y := range years {
		out = append(out, summarizePeriod(byYear[y], y, 0))
	}

	return out
}
