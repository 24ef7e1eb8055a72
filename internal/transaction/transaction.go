package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type represents the direction of a money movement.
type Type string

const (
	TypeExpense Type = "Expense"
	TypeIncome  Type = "Income"
)

func (t Type) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

// Transaction is a single dated money movement. Category and payee display
// fields are denormalised copies served by the backend alongside the ids.
type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	Type         Type            `json:"type"`
	Date         time.Time       `json:"date"`
	Timestamp    time.Time       `json:"transaction_timestamp"`
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryName string          `json:"category_name"`
	CategoryIcon string          `json:"category_icon"`
	PayeeID      *uuid.UUID      `json:"payee_id"`
	PayeeName    *string         `json:"payee_name"`
	PayeeLogo    *string         `json:"payee_logo"`
	Description  *string         `json:"description"`
}

// CanonicalAmount returns d in the form it decodes to from JSON, with
// trailing fractional zeros dropped. Amounts are kept canonical so a
// transaction read back from the local mirror equals the one written.
func CanonicalAmount(d decimal.Decimal) decimal.Decimal {
	return decimal.RequireFromString(d.String())
}

// Signed returns the amount with income positive and expense negative.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type == TypeExpense {
		return t.Amount.Neg()
	}

	return t.Amount
}

// Day returns the transaction's calendar date at midnight UTC.
func (t *Transaction) Day() time.Time {
	return DateOnly(t.Date)
}

// DescriptionText returns the description or "" when unset.
func (t *Transaction) DescriptionText() string {
	if t.Description == nil {
		return ""
	}

	return *t.Description
}

// DateOnly truncates t to its calendar date at midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
