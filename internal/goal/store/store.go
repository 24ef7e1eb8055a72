package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocket/internal/goal"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(s scanner) (goal.Goal, error) {
	var (
		g    goal.Goal
		logo sql.NullString
	)

	if err := s.Scan(&g.ID, &g.UserID, &g.Name, &logo, &g.GoalAmount, &g.CurrentAmount); err != nil {
		return goal.Goal{}, err
	}

	if logo.Valid {
		g.Logo = &logo.String
	}

	return g, nil
}

const goalColumns = `id, user_id, name, logo, goal_amount, current_amount`

func (s *Store) ListGoals(ctx context.Context, user uuid.UUID) ([]goal.Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = $1 ORDER BY name`, user)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	defer rows.Close()

	var goals []goal.Goal

	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}

		goals = append(goals, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating goals: %w", err)
	}

	return goals, nil
}

func (s *Store) CreateGoal(ctx context.Context, user uuid.UUID, g *goal.Goal) error {
	created, err := scanGoal(s.db.QueryRowContext(ctx, `
		INSERT INTO goals (user_id, name, logo, goal_amount, current_amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+goalColumns,
		user, g.Name, g.Logo, g.GoalAmount, g.CurrentAmount,
	))
	if err != nil {
		return fmt.Errorf("inserting goal: %w", err)
	}

	*g = created

	return nil
}

func (s *Store) UpdateGoal(ctx context.Context, user uuid.UUID, g *goal.Goal) error {
	updated, err := scanGoal(s.db.QueryRowContext(ctx, `
		UPDATE goals
		SET name = $1, logo = $2, goal_amount = $3, current_amount = $4
		WHERE id = $5 AND user_id = $6
		RETURNING `+goalColumns,
		g.Name, g.Logo, g.GoalAmount, g.CurrentAmount, g.ID, user,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return goal.ErrNotFound
		}

		return fmt.Errorf("updating goal: %w", err)
	}

	*g = updated

	return nil
}

func (s *Store) DeleteGoal(ctx context.Context, user uuid.UUID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, user)
	if err != nil {
		return fmt.Errorf("deleting goal: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting goal: %w", err)
	}

	if n == 0 {
		return goal.ErrNotFound
	}

	return nil
}
