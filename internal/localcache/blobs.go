package localcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocket/internal/cachekey"
)

const blobKey = "blob"

// Blobs stores one JSON document per kind for a single user.
type Blobs struct {
	store *Store
	db    *sql.DB
	user  uuid.UUID
}

// Blobs returns the blob handle for user.
func (s *Store) Blobs(user uuid.UUID) (*Blobs, error) {
	if _, err := s.namespace(user, cachekey.KindSettings); err != nil {
		return nil, err
	}

	return &Blobs{store: s, db: s.db, user: user}, nil
}

func (b *Blobs) Put(ctx context.Context, kind cachekey.Kind, v any) error {
	ns, err := b.store.namespace(b.user, kind)
	if err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", kind, err)
	}

	return putEntry(ctx, b.db, ns, blobKey, data)
}

// Get decodes the blob of kind into dest and reports whether one existed.
func (b *Blobs) Get(ctx context.Context, kind cachekey.Kind, dest any) (bool, error) {
	ns, err := b.store.namespace(b.user, kind)
	if err != nil {
		return false, err
	}

	data, ok, err := getEntry(ctx, b.db, ns, blobKey)
	if err != nil || !ok {
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, unavailable("decoding "+string(kind), err)
	}

	return true, nil
}

// Invalidate drops the blobs of the given kinds.
func (b *Blobs) Invalidate(ctx context.Context, kinds ...cachekey.Kind) error {
	for _, kind := range kinds {
		ns, err := b.store.namespace(b.user, kind)
		if err != nil {
			return err
		}

		if _, err := b.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE namespace = ?`, ns); err != nil {
			return unavailable("invalidating "+string(kind), err)
		}
	}

	return nil
}

// Envelope wraps a cached aggregate with the moment it was captured.
type Envelope[T any] struct {
	Payload      T         `json:"payload"`
	Timestamp    time.Time `json:"timestamp"`
	CapturedDate string    `json:"captured_date"`
}

func NewEnvelope[T any](payload T, now time.Time) Envelope[T] {
	return Envelope[T]{
		Payload:      payload,
		Timestamp:    now,
		CapturedDate: now.Format(time.DateOnly),
	}
}

// Valid reports whether the envelope is younger than ttl and was captured
// today. The date check invalidates at midnight even inside the TTL window.
func (e Envelope[T]) Valid(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.Timestamp) < ttl && e.CapturedDate == now.Format(time.DateOnly)
}

func SaveEnvelope[T any](ctx context.Context, b *Blobs, kind cachekey.Kind, payload T, now time.Time) error {
	return b.Put(ctx, kind, NewEnvelope(payload, now))
}

func LoadEnvelope[T any](ctx context.Context, b *Blobs, kind cachekey.Kind) (Envelope[T], bool, error) {
	var env Envelope[T]

	ok, err := b.Get(ctx, kind, &env)

	return env, ok, err
}

// Fresh returns the cached payload of kind when its envelope is still valid.
func Fresh[T any](ctx context.Context, b *Blobs, kind cachekey.Kind, now time.Time, ttl time.Duration) (T, bool, error) {
	var zero T

	env, ok, err := LoadEnvelope[T](ctx, b, kind)
	if err != nil || !ok {
		return zero, false, err
	}

	if !env.Valid(now, ttl) {
		return zero, false, nil
	}

	return env.Payload, true, nil
}
