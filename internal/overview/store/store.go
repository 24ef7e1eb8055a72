package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// OverviewStats calls the remote get_overview_stats procedure and returns its
// JSON result untouched.
func (s *Store) OverviewStats(ctx context.Context, user uuid.UUID) ([]byte, error) {
	var raw []byte

	err := s.db.QueryRowContext(ctx, `SELECT to_json(get_overview_stats(uid => $1))::text`, user).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("calling get_overview_stats: %w", err)
	}

	return raw, nil
}
