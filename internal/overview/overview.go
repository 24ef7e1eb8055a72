package overview

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/aggregate"
)

// Stats is the payload of the remote overview procedure.
type Stats struct {
	MonthIncome      decimal.Decimal `json:"month_income"`
	MonthExpense     decimal.Decimal `json:"month_expense"`
	YearIncome       decimal.Decimal `json:"year_income"`
	YearExpense      decimal.Decimal `json:"year_expense"`
	TotalBalance     decimal.Decimal `json:"total_balance"`
	TransactionCount int             `json:"transaction_count"`
}

// DecodeStats accepts either a single object or an array holding one; an
// empty array decodes to zero stats.
func DecodeStats(raw []byte) (Stats, error) {
	var stats Stats

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return stats, nil
	}

	if trimmed[0] == '[' {
		var list []Stats
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return stats, fmt.Errorf("decoding overview stats: %w", err)
		}

		if len(list) > 0 {
			stats = list[0]
		}

		return stats, nil
	}

	if err := json.Unmarshal(trimmed, &stats); err != nil {
		return stats, fmt.Errorf("decoding overview stats: %w", err)
	}

	return stats, nil
}

// Dashboard is everything the landing screen shows, derived from the mirror.
type Dashboard struct {
	Remaining     aggregate.Remaining  `json:"remaining"`
	DailyLimit    aggregate.DailyLimit `json:"daily_limit"`
	TopCategories []aggregate.Share    `json:"top_categories"`
	PayDay        aggregate.PayDay     `json:"pay_day"`
	NetWorth      decimal.Decimal      `json:"net_worth"`
	Recent        []aggregate.DayGroup `json:"recent"`
}

type Summaries struct {
	Period            aggregate.Period          `json:"period"`
	Monthly           []aggregate.PeriodSummary `json:"monthly"`
	Yearly            []aggregate.PeriodSummary `json:"yearly"`
	ExpenseByCategory []aggregate.Share         `json:"expense_by_category"`
	IncomeByCategory  []aggregate.Share         `json:"income_by_category"`
	ExpenseByPayee    []aggregate.Share         `json:"expense_by_payee"`
}
