package mirror

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocket/internal/cachekey"
)

type State string

const (
	StateIdle    State = "idle"
	StateSyncing State = "syncing"
	StateFailed  State = "failed"
)

// Status is persisted next to the mirror it describes.
type Status struct {
	State       State      `json:"state"`
	LastSynced  *time.Time `json:"last_synced,omitempty"`
	LastAttempt time.Time  `json:"last_attempt"`
	LastError   string     `json:"last_error,omitempty"`
	Rows        int        `json:"rows"`
}

// stale is true when the mirror was never completed, the last run did not
// finish cleanly, the marker is older than interval, or it was set on an
// earlier calendar day.
func (s Status) stale(now time.Time, interval time.Duration) bool {
	if s.LastSynced == nil || s.State != StateIdle {
		return true
	}

	last := s.LastSynced.In(now.Location())
	if now.Sub(last) >= interval {
		return true
	}

	return last.Format(time.DateOnly) != now.Format(time.DateOnly)
}

func (c *Coordinator) loadStatus(ctx context.Context, user uuid.UUID) (Status, error) {
	blobs, err := c.cache.Blobs(user)
	if err != nil {
		return Status{}, err
	}

	var st Status
	if _, err := blobs.Get(ctx, cachekey.KindSyncState, &st); err != nil {
		return Status{}, err
	}

	if st.State == "" {
		st.State = StateIdle
	}

	return st, nil
}

func (c *Coordinator) saveStatus(ctx context.Context, user uuid.UUID, st Status) error {
	blobs, err := c.cache.Blobs(user)
	if err != nil {
		return err
	}

	return blobs.Put(ctx, cachekey.KindSyncState, st)
}
