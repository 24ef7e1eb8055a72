package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

type Remaining struct {
	Income          decimal.Decimal `json:"income"`
	Expense         decimal.Decimal `json:"expense"`
	Remaining       decimal.Decimal `json:"remaining"`
	SpentPercentage float64         `json:"spent_percentage"`
}

// RemainingForPeriod is income minus expense inside p, with expense as a
// whole percentage of income.
func RemainingForPeriod(txs []*transaction.Transaction, p Period) Remaining {
	income, expense := totals(FilterByPeriod(txs, p))

	return Remaining{
		Income:          money(income),
		Expense:         money(expense),
		Remaining:       money(income.Sub(expense)),
		SpentPercentage: percent(expense, income, 0),
	}
}

type DailyLimit struct {
	DailyLimitAmount    decimal.Decimal `json:"daily_limit_amount"`
	SpentToday          decimal.Decimal `json:"spent_today"`
	RemainingToday      decimal.Decimal `json:"remaining"`
	RemainingDays       int             `json:"remaining_days"`
	RemainingPercentage float64         `json:"remaining_percentage"`
}

// ComputeDailyLimit spreads what is left of this month's income, as it stood
// before today's spending, evenly over the remaining days including today.
// A negative RemainingPercentage means today's budget is overspent.
func ComputeDailyLimit(txs []*transaction.Transaction, today time.Time) DailyLimit {
	month := FilterByPeriod(txs, MonthOf(today))
	income, expense := totals(month)

	day := transaction.DateOnly(today)
	spentToday := Sum(Filter(month, func(tx *transaction.Transaction) bool {
		return tx.Type == transaction.TypeExpense && tx.Day().Equal(day)
	}))

	remainingDays := DaysInMonth(today) - today.Day() + 1

	limit := decimal.Zero
	if remainingDays > 0 {
		available := income.Sub(expense).Add(spentToday)
		limit = available.Div(decimal.NewFromInt(int64(remainingDays)))
	}

	remaining := limit.Sub(spentToday)

	return DailyLimit{
		DailyLimitAmount:    money(limit),
		SpentToday:          money(spentToday),
		RemainingToday:      money(remaining),
		RemainingDays:       remainingDays,
		RemainingPercentage: percent(remaining, limit, 2),
	}
}

type PayDay struct {
	RemainingDays           int       `json:"remaining_days"`
	DaysInMonth             int       `json:"days_in_month"`
	RemainingDaysPercentage float64   `json:"remaining_days_percentage"`
	NextPayDay              time.Time `json:"next_pay_day"`
}

// PayDayCountdown assumes pay lands on the first of each month.
func PayDayCountdown(today time.Time) PayDay {
	days := DaysInMonth(today)
	remaining := days - today.Day() + 1

	return PayDay{
		RemainingDays:           remaining,
		DaysInMonth:             days,
		RemainingDaysPercentage: percent(decimal.NewFromInt(int64(remaining)), decimal.NewFromInt(int64(days)), 0),
		NextPayDay:              MonthOf(today).End.AddDate(0, 0, 1),
	}
}

// NetWorth is the signed total of every transaction ever recorded.
func NetWorth(txs []*transaction.Transaction) decimal.Decimal {
	total := decimal.Zero

	for _, tx := range txs {
		total = total.Add(tx.Signed())
	}

	return money(total)
}

// GoalProgress is current as a whole percentage of target; 0 for a zero target.
func GoalProgress(current, target decimal.Decimal) float64 {
	return percent(current, target, 0)
}
