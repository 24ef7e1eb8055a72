// Package localcache is the durable, per-user key-value cache that mirrors
// remote data between runs.
//
// Every handle is bound to one user's namespace when it is opened; there is
// no way to address another user's entries through it.
package localcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocket/internal/cachekey"
)

var (
	// ErrCacheUnavailable wraps every storage failure. Callers treat it as an
	// empty cache and fall back to the remote service.
	ErrCacheUnavailable = errors.New("local cache unavailable")

	// ErrNoUser is returned when a handle is requested without a signed-in user.
	ErrNoUser = fmt.Errorf("%w: no signed-in user", ErrCacheUnavailable)
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) namespace(user uuid.UUID, kind cachekey.Kind) (string, error) {
	if s == nil || s.db == nil {
		return "", fmt.Errorf("%w: store not opened", ErrCacheUnavailable)
	}

	ns := cachekey.Key(user, kind)
	if cachekey.IsGuard(ns) {
		return "", ErrNoUser
	}

	return ns, nil
}

// Purge removes every entry of every kind belonging to user.
func (s *Store) Purge(ctx context.Context, user uuid.UUID) error {
	ns, err := s.namespace(user, "")
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE namespace LIKE ? || '%'`, ns); err != nil {
		return unavailable("purging user", err)
	}

	return nil
}

const upsertEntry = `
	INSERT INTO cache_entries (namespace, entry_key, value, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (namespace, entry_key) DO UPDATE
	SET value = excluded.value, updated_at = excluded.updated_at
`

func putEntry(ctx context.Context, e execer, ns, key string, value []byte) error {
	if _, err := e.ExecContext(ctx, upsertEntry, ns, key, value, time.Now().UTC()); err != nil {
		return unavailable("writing entry", err)
	}

	return nil
}

func getEntry(ctx context.Context, db *sql.DB, ns, key string) ([]byte, bool, error) {
	var value []byte

	err := db.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE namespace = ? AND entry_key = ?`, ns, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, unavailable("reading entry", err)
	}

	return value, true, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCacheUnavailable, op, err)
}
