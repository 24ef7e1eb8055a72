package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocket/internal/budget"
)

// Store reads and writes the budgets table. Category ids live in a jsonb
// array column.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBudget(s scanner) (budget.Budget, error) {
	var (
		b          budget.Budget
		interval   string
		categories []byte
	)

	if err := s.Scan(&b.ID, &b.Name, &b.Amount, &interval, &b.StartDate, &categories); err != nil {
		return budget.Budget{}, err
	}

	b.Interval = budget.Interval(interval)

	if err := json.Unmarshal(categories, &b.CategoryIDs); err != nil {
		return budget.Budget{}, fmt.Errorf("decoding category ids: %w", err)
	}

	return b, nil
}

func encodeCategories(ids []uuid.UUID) (string, error) {
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encoding category ids: %w", err)
	}

	return string(data), nil
}

const budgetColumns = `id, name, amount, interval, start_date, category_ids::text`

func (s *Store) ListBudgets(ctx context.Context, user uuid.UUID) ([]budget.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 ORDER BY name`, user)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}
	defer rows.Close()

	var budgets []budget.Budget

	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning budget: %w", err)
		}

		budgets = append(budgets, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budgets: %w", err)
	}

	return budgets, nil
}

func (s *Store) CreateBudget(ctx context.Context, user uuid.UUID, b *budget.Budget) error {
	categories, err := encodeCategories(b.CategoryIDs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO budgets (user_id, name, amount, interval, start_date, category_ids)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb)
		RETURNING ` + budgetColumns

	created, err := scanBudget(s.db.QueryRowContext(ctx, query,
		user, b.Name, b.Amount, b.Interval, b.StartDate, categories))
	if err != nil {
		return fmt.Errorf("inserting budget: %w", err)
	}

	*b = created

	return nil
}

func (s *Store) UpdateBudget(ctx context.Context, user uuid.UUID, b *budget.Budget) error {
	categories, err := encodeCategories(b.CategoryIDs)
	if err != nil {
		return err
	}

	query := `
		UPDATE budgets
		SET name = $1, amount = $2, interval = $3, start_date = $4, category_ids = $5::jsonb
		WHERE id = $6 AND user_id = $7
		RETURNING ` + budgetColumns

	updated, err := scanBudget(s.db.QueryRowContext(ctx, query,
		b.Name, b.Amount, b.Interval, b.StartDate, categories, b.ID, user))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return budget.ErrNotFound
		}

		return fmt.Errorf("updating budget: %w", err)
	}

	*b = updated

	return nil
}

func (s *Store) DeleteBudget(ctx context.Context, user uuid.UUID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, user)
	if err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}

	if n == 0 {
		return budget.ErrNotFound
	}

	return nil
}
