package localcache

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocket/internal/cachekey"
)

// ReadThrough serves user's kind from a valid envelope, otherwise calls fetch
// and stores its result. When fetch fails an expired envelope is served in
// its place. A zero ttl forces a fetch and reports its failure. Without a
// usable cache it degrades to calling fetch.
func ReadThrough[T any](
	ctx context.Context,
	s *Store,
	user uuid.UUID,
	kind cachekey.Kind,
	now time.Time,
	ttl time.Duration,
	fetch func(context.Context) (T, error),
) (T, error) {
	blobs, err := s.Blobs(user)
	if err != nil {
		slog.WarnContext(ctx, "local cache unavailable, reading from remote", "kind", kind, "error", err)
		return fetch(ctx)
	}

	if ttl > 0 {
		v, ok, err := Fresh[T](ctx, blobs, kind, now, ttl)
		if err != nil {
			slog.WarnContext(ctx, "cached entry unreadable", "kind", kind, "error", err)
		}

		if ok {
			return v, nil
		}
	}

	v, fetchErr := fetch(ctx)
	if fetchErr != nil && ttl > 0 {
		env, ok, err := LoadEnvelope[T](ctx, blobs, kind)
		if err == nil && ok {
			slog.WarnContext(ctx, "remote unavailable, serving expired entry",
				"kind", kind,
				"captured", env.Timestamp,
				"error", fetchErr)

			return env.Payload, nil
		}
	}

	if fetchErr != nil {
		var zero T

		return zero, fetchErr
	}

	if err := SaveEnvelope(ctx, blobs, kind, v, now); err != nil {
		slog.WarnContext(ctx, "failed to cache entry", "kind", kind, "error", err)
	}

	return v, nil
}
