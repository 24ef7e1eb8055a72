package budget

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/aggregate"
)

var (
	ErrNotFound = errors.New("budget not found")
	ErrInvalid  = errors.New("invalid budget")
)

// Interval is the period a budget's amount applies to.
type Interval string

const IntervalMonth Interval = "Month"

type Budget struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Interval    Interval        `json:"interval"`
	StartDate   time.Time       `json:"start_date"`
	CategoryIDs []uuid.UUID     `json:"category_ids"`
}

// Validate rejects a budget before it is sent to the remote.
func (b *Budget) Validate() error {
	switch {
	case strings.TrimSpace(b.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalid)
	case !b.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalid)
	case b.Interval != IntervalMonth:
		return fmt.Errorf("%w: unsupported interval %q", ErrInvalid, b.Interval)
	case b.StartDate.IsZero():
		return fmt.Errorf("%w: start date is required", ErrInvalid)
	case len(b.CategoryIDs) == 0:
		return fmt.Errorf("%w: at least one category is required", ErrInvalid)
	}

	return nil
}

// ActiveIn reports whether the budget had started by the end of month.
func (b *Budget) ActiveIn(month time.Time) bool {
	return !b.StartDate.After(aggregate.MonthOf(month).End)
}

// Status is a budget with its consumption for one month.
type Status struct {
	Budget
	aggregate.Consumption
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}
