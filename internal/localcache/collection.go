package localcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocket/internal/cachekey"
)

// Collection holds many values of one kind, keyed by a stable identifier.
type Collection[T any] struct {
	db *sql.DB
	ns string
}

// OpenCollection returns the handle for user's entries of kind.
func OpenCollection[T any](s *Store, user uuid.UUID, kind cachekey.Kind) (*Collection[T], error) {
	ns, err := s.namespace(user, kind)
	if err != nil {
		return nil, err
	}

	return &Collection[T]{db: s.db, ns: ns}, nil
}

// Put upserts value under key.
func (c *Collection[T]) Put(ctx context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	return putEntry(ctx, c.db, c.ns, key, data)
}

// PutMany upserts values in a single sqlite transaction; either all land or none do.
func (c *Collection[T]) PutMany(ctx context.Context, values []T, key func(T) string) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("beginning batch", err)
	}
	defer tx.Rollback()

	for _, v := range values {
		k := key(v)

		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", k, err)
		}

		if err := putEntry(ctx, tx, c.ns, k, data); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("committing batch", err)
	}

	return nil
}

// Get returns the value stored under key, if any.
func (c *Collection[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var v T

	data, ok, err := getEntry(ctx, c.db, c.ns, key)
	if err != nil || !ok {
		return v, false, err
	}

	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, unavailable("decoding "+key, err)
	}

	return v, true, nil
}

// GetAll returns every value in the collection. Order is unspecified.
func (c *Collection[T]) GetAll(ctx context.Context) ([]T, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT entry_key, value FROM cache_entries WHERE namespace = ?`, c.ns)
	if err != nil {
		return nil, unavailable("listing entries", err)
	}
	defer rows.Close()

	var out []T

	for rows.Next() {
		var (
			key  string
			data []byte
		)

		if err := rows.Scan(&key, &data); err != nil {
			return nil, unavailable("scanning entry", err)
		}

		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, unavailable("decoding "+key, err)
		}

		out = append(out, v)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating entries", err)
	}

	return out, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Collection[T]) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE namespace = ? AND entry_key = ?`, c.ns, key); err != nil {
		return unavailable("deleting entry", err)
	}

	return nil
}

// Clear removes every entry in the collection.
func (c *Collection[T]) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE namespace = ?`, c.ns); err != nil {
		return unavailable("clearing collection", err)
	}

	return nil
}

func (c *Collection[T]) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_entries WHERE namespace = ?`, c.ns).Scan(&n); err != nil {
		return 0, unavailable("counting entries", err)
	}

	return n, nil
}
