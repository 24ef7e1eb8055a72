package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocket/internal/reference"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListCategories(ctx context.Context, user uuid.UUID) ([]reference.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, COALESCE(icon, '')
		FROM categories
		WHERE user_id = $1
		ORDER BY name
	`, user)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []reference.Category

	for rows.Next() {
		var (
			c   reference.Category
			typ string
		)

		if err := rows.Scan(&c.ID, &c.Name, &typ, &c.Icon); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		c.Type = transaction.Type(typ)
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	return categories, nil
}

func (s *Store) ListPayees(ctx context.Context, user uuid.UUID) ([]reference.Payee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, logo
		FROM payees
		WHERE user_id = $1
		ORDER BY name
	`, user)
	if err != nil {
		return nil, fmt.Errorf("listing payees: %w", err)
	}
	defer rows.Close()

	var payees []reference.Payee

	for rows.Next() {
		var (
			p    reference.Payee
			logo sql.NullString
		)

		if err := rows.Scan(&p.ID, &p.Name, &logo); err != nil {
			return nil, fmt.Errorf("scanning payee: %w", err)
		}

		if logo.Valid {
			p.Logo = &logo.String
		}

		payees = append(payees, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payees: %w", err)
	}

	return payees, nil
}
