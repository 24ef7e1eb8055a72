package aggregate

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

// MonthKey addresses one category's spending in one calendar month.
type MonthKey struct {
	Year       int
	Month      time.Month
	CategoryID uuid.UUID
}

func NewMonthKey(t time.Time, categoryID uuid.UUID) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month(), CategoryID: categoryID}
}

// MarshalText renders the key as "2024-03/<category id>" so the amount map
// can be stored as a JSON object.
func (k MonthKey) MarshalText() ([]byte, error) {
	return fmt.Appendf(nil, "%04d-%02d/%s", k.Year, int(k.Month), k.CategoryID), nil
}

func (k *MonthKey) UnmarshalText(text []byte) error {
	month, id, ok := strings.Cut(string(text), "/")
	if !ok {
		return fmt.Errorf("month key %q: missing category", text)
	}

	t, err := time.Parse("2006-01", month)
	if err != nil {
		return fmt.Errorf("month key %q: %w", text, err)
	}

	categoryID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("month key %q: %w", text, err)
	}

	*k = NewMonthKey(t, categoryID)

	return nil
}

// BudgetAmountMap pre-computes monthly expense per category for the given
// categories. Every month from the earliest matching transaction through
// today's month has an entry for every category, zero when nothing was spent.
// Transactions dated after today's month are ignored.
func BudgetAmountMap(txs []*transaction.Transaction, categoryIDs []uuid.UUID, today time.Time) map[MonthKey]decimal.Decimal {
	wanted := make(map[uuid.UUID]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		wanted[id] = struct{}{}
	}

	current := MonthOf(today)
	earliest := current.Start
	sums := make(map[MonthKey]decimal.Decimal)

	for _, tx := range txs {
		if tx.Type != transaction.TypeExpense || tx.Day().After(current.End) {
			continue
		}

		if _, ok := wanted[tx.CategoryID]; !ok {
			continue
		}

		if tx.Day().Before(earliest) {
			earliest = MonthOf(tx.Date).Start
		}

		key := NewMonthKey(tx.Date, tx.CategoryID)
		sums[key] = sums[key].Add(tx.Amount)
	}

	out := make(map[MonthKey]decimal.Decimal)

	for m := earliest; !m.After(current.Start); m = m.AddDate(0, 1, 0) {
		for id := range wanted {
			key := NewMonthKey(m, id)
			out[key] = money(sums[key])
		}
	}

	return out
}

type Consumption struct {
	Target              decimal.Decimal `json:"target"`
	Spent               decimal.Decimal `json:"spent"`
	Remaining           decimal.Decimal `json:"remaining"`
	PercentageSpent     float64         `json:"percentage_spent"`
	PercentageRemaining float64         `json:"percentage_remaining"`
}

// BudgetConsumption reads the month's spending for categoryIDs out of a map
// built by BudgetAmountMap and compares it with target. Overspending yields a
// negative remaining amount and percentage.
func BudgetConsumption(amounts map[MonthKey]decimal.Decimal, categoryIDs []uuid.UUID, month time.Time, target decimal.Decimal) Consumption {
	spent := decimal.Zero

	for _, id := range categoryIDs {
		spent = spent.Add(amounts[NewMonthKey(month, id)])
	}

	c := Consumption{
		Target:    money(target),
		Spent:     money(spent),
		Remaining: money(target.Sub(spent)),
	}

	if target.IsPositive() {
		c.PercentageSpent = percent(spent, target, 0)
		c.PercentageRemaining = 100 - c.PercentageSpent
	}

	return c
}
