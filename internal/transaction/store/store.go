package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

// Store talks to the hosted backend's transactions table and its paginated
// fetch procedure. Every statement is scoped by user id.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a transaction row from the scanner.
// Expected column order: id, amount, type, date, transaction_timestamp, category_id,
// category_name, category_icon, payee_id, payee_name, payee_logo, description
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var typeStr string

	var categoryIcon, payeeName, payeeLogo, description sql.NullString

	var payeeID *uuid.UUID

	if err := s.Scan(
		&tx.ID, &tx.Amount, &typeStr, &tx.Date, &tx.Timestamp, &tx.CategoryID,
		&tx.CategoryName, &categoryIcon,
		&payeeID, &payeeName, &payeeLogo, &description,
	); err != nil {
		return nil, err
	}

	tx.Amount = transaction.CanonicalAmount(tx.Amount)
	tx.Type = transaction.Type(typeStr)
	tx.Date = transaction.DateOnly(tx.Date)
	tx.CategoryIcon = categoryIcon.String
	tx.PayeeID = payeeID
	tx.PayeeName = nullable(payeeName)
	tx.PayeeLogo = nullable(payeeLogo)
	tx.Description = nullable(description)

	return &tx, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}

	return &s.String
}

const selectTransactionColumns = `
	t.id, t.amount, t.type, t.date, t.transaction_timestamp, t.category_id,
	c.name, c.icon, t.payee_id, p.name, p.logo, t.description
`

const joinReferences = `
	JOIN categories c ON c.id = t.category_id
	LEFT JOIN payees p ON p.id = t.payee_id
`

const insertTransaction = `
	WITH t AS (
		INSERT INTO transactions (user_id, amount, type, date, transaction_timestamp, category_id, payee_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING *
	)
	SELECT ` + selectTransactionColumns + ` FROM t` + joinReferences

func (s *Store) CreateTransaction(ctx context.Context, user uuid.UUID, tx *transaction.Transaction) error {
	return insert(ctx, s.db, user, tx)
}

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insert(ctx context.Context, q rowQuerier, user uuid.UUID, tx *transaction.Transaction) error {
	created, err := scanTransaction(q.QueryRowContext(ctx, insertTransaction,
		user,
		tx.Amount,
		tx.Type,
		tx.Date,
		tx.Timestamp,
		tx.CategoryID,
		tx.PayeeID,
		tx.Description,
	))
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	*tx = *created

	return nil
}

// CreateTransactions inserts txs atomically.
func (s *Store) CreateTransactions(ctx context.Context, user uuid.UUID, txs []*transaction.Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, tx := range txs {
		if err := insert(ctx, dbTx, user, tx); err != nil {
			return err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, user uuid.UUID, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t` + joinReferences + `
		WHERE t.id = $1 AND t.user_id = $2`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id, user))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, user uuid.UUID, tx *transaction.Transaction) error {
	query := `
		WITH t AS (
			UPDATE transactions
			SET amount = $1, type = $2, date = $3, transaction_timestamp = $4,
				category_id = $5, payee_id = $6, description = $7
			WHERE id = $8 AND user_id = $9
			RETURNING *
		)
		SELECT ` + selectTransactionColumns + ` FROM t` + joinReferences

	updated, err := scanTransaction(s.db.QueryRowContext(ctx, query,
		tx.Amount,
		tx.Type,
		tx.Date,
		tx.Timestamp,
		tx.CategoryID,
		tx.PayeeID,
		tx.Description,
		tx.ID,
		user,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return transaction.ErrNotFound
		}

		return fmt.Errorf("updating transaction: %w", err)
	}

	*tx = *updated

	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, user uuid.UUID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, user)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

// FetchTransactionsPage calls the backend's pagination procedure. An empty
// slice marks the end of the pages.
func (s *Store) FetchTransactionsPage(ctx context.Context, user uuid.UUID, search string, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT id, amount, type, date, transaction_timestamp, category_id,
			category_name, category_icon, payee_id, payee_name, payee_logo, description
		FROM get_transactions_paginated(uid => $1, search_term => $2, limit_count => $3, offset_count => $4)
	`

	rows, err := s.db.QueryContext(ctx, query, user, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("fetching transactions page at offset %d: %w", offset, err)
	}
	defer rows.Close()

	txs := make([]*transaction.Transaction, 0, limit)

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}
