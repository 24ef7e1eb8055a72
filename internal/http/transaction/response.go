package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/aggregate"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

type transactionResponse struct {
	ID           uuid.UUID        `json:"id"`
	Amount       decimal.Decimal  `json:"amount"`
	Type         transaction.Type `json:"type"`
	Date         string           `json:"date"`
	Timestamp    time.Time        `json:"transaction_timestamp"`
	CategoryID   uuid.UUID        `json:"category_id"`
	CategoryName string           `json:"category_name"`
	CategoryIcon string           `json:"category_icon,omitempty"`
	PayeeID      *uuid.UUID       `json:"payee_id,omitempty"`
	PayeeName    *string          `json:"payee_name,omitempty"`
	PayeeLogo    *string          `json:"payee_logo,omitempty"`
	Description  *string          `json:"description,omitempty"`
}

type dayGroupResponse struct {
	Date         string                `json:"date"`
	Income       decimal.Decimal       `json:"income"`
	Expense      decimal.Decimal       `json:"expense"`
	Transactions []transactionResponse `json:"transactions"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:           tx.ID,
		Amount:       tx.Amount,
		Type:         tx.Type,
		Date:         tx.Date.Format(time.DateOnly),
		Timestamp:    tx.Timestamp,
		CategoryID:   tx.CategoryID,
		CategoryName: tx.CategoryName,
		CategoryIcon: tx.CategoryIcon,
		PayeeID:      tx.PayeeID,
		PayeeName:    tx.PayeeName,
		PayeeLogo:    tx.PayeeLogo,
		Description:  tx.Description,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

func toGroupResponses(groups []aggregate.DayGroup) []dayGroupResponse {
	resp := make([]dayGroupResponse, len(groups))
	for i, g := range groups {
		resp[i] = dayGroupResponse{
			Date:         g.Date.Format(time.DateOnly),
			Income:       g.Income,
			Expense:      g.Expense,
			Transactions: toResponseList(g.Transactions),
		}
	}

	return resp
}
