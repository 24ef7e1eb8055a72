package goal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/aggregate"
)

var (
	ErrNotFound = errors.New("goal not found")
	ErrInvalid  = errors.New("invalid goal")
)

// Goal is a savings target the user contributes to by hand.
type Goal struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Name          string          `json:"name"`
	Logo          *string         `json:"logo"`
	GoalAmount    decimal.Decimal `json:"goal_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
}

func (g *Goal) Validate() error {
	switch {
	case strings.TrimSpace(g.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalid)
	case !g.GoalAmount.IsPositive():
		return fmt.Errorf("%w: goal amount must be greater than zero", ErrInvalid)
	case g.CurrentAmount.IsNegative():
		return fmt.Errorf("%w: current amount cannot be negative", ErrInvalid)
	}

	return nil
}

// Progress is the saved amount as a whole percentage of the goal.
func (g *Goal) Progress() float64 {
	return aggregate.GoalProgress(g.CurrentAmount, g.GoalAmount)
}

// Reached reports whether the saved amount meets the goal.
func (g *Goal) Reached() bool {
	return g.GoalAmount.IsPositive() && g.CurrentAmount.GreaterThanOrEqual(g.GoalAmount)
}
