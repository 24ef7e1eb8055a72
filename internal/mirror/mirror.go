// Package mirror keeps the local transaction mirror in step with the remote
// transaction table.
//
// A sync is a full replace: the user's mirror is cleared, then refilled page
// by page from offset zero until the remote returns an empty page. The
// "last synced" marker is written only after that terminal page, so an
// aborted run never looks fresh.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocket/internal/cachekey"
	"github.com/MrJamesThe3rd/pocket/internal/localcache"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

// ErrSyncInProgress is returned when a sync is requested, or the mirror read,
// while another sync for the same user is running.
var ErrSyncInProgress = errors.New("sync already in progress")

// Pager fetches one page of the user's transactions from the remote.
//
//go:generate mockgen -source=mirror.go -destination=pager_mock.go -package=mirror
type Pager interface {
	FetchTransactionsPage(ctx context.Context, user uuid.UUID, search string, limit, offset int) ([]*transaction.Transaction, error)
}

type Config struct {
	// PageSize is the number of rows requested per remote call.
	PageSize int
	// Interval is how long a completed sync stays fresh.
	Interval time.Duration
}

func DefaultConfig() Config {
	return Config{
		PageSize: 1000,
		Interval: 24 * time.Hour,
	}
}

type Option func(*Coordinator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

type Coordinator struct {
	pager Pager
	cache *localcache.Store
	cfg   Config
	now   func() time.Time

	mu      sync.Mutex
	running map[uuid.UUID]struct{}
	// mirrors guards each user's mirror: a sync holds it exclusively from
	// before the clear until the last page is written, readers share it.
	mirrors map[uuid.UUID]*sync.RWMutex
}

func New(pager Pager, cache *localcache.Store, cfg Config, opts ...Option) *Coordinator {
	def := DefaultConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}

	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}

	c := &Coordinator{
		pager:   pager,
		cache:   cache,
		cfg:     cfg,
		now:     time.Now,
		running: make(map[uuid.UUID]struct{}),
		mirrors: make(map[uuid.UUID]*sync.RWMutex),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NeedsSync reports whether the user's mirror is stale. An unreadable sync
// state counts as stale.
func (c *Coordinator) NeedsSync(ctx context.Context, user uuid.UUID) bool {
	st, err := c.loadStatus(ctx, user)
	if err != nil {
		slog.WarnContext(ctx, "Sync state unreadable, treating mirror as stale", "user", user, "error", err)
		return true
	}

	return st.stale(c.now(), c.cfg.Interval)
}

// Status returns the persisted sync state, reporting StateSyncing while a
// run for the user is in flight in this process.
func (c *Coordinator) Status(ctx context.Context, user uuid.UUID) (Status, error) {
	st, err := c.loadStatus(ctx, user)
	if err != nil {
		return Status{}, err
	}

	if c.isRunning(user) {
		st.State = StateSyncing
	}

	return st, nil
}

// SyncIfNeeded runs ForceSync only when the mirror is stale. It reports
// whether a sync ran.
func (c *Coordinator) SyncIfNeeded(ctx context.Context, user uuid.UUID) (bool, error) {
	if !c.NeedsSync(ctx, user) {
		return false, nil
	}

	if _, err := c.ForceSync(ctx, user); err != nil {
		return true, err
	}

	return true, nil
}

// ForceSync replaces the user's mirror with a fresh copy of the remote table
// and returns the number of rows written.
func (c *Coordinator) ForceSync(ctx context.Context, user uuid.UUID) (int, error) {
	if !c.acquire(user) {
		return 0, ErrSyncInProgress
	}
	defer c.release(user)

	col, err := localcache.OpenCollection[*transaction.Transaction](c.cache, user, cachekey.KindTransactions)
	if err != nil {
		return 0, err
	}

	st, err := c.loadStatus(ctx, user)
	if err != nil {
		slog.WarnContext(ctx, "Sync state unreadable, starting from empty", "user", user, "error", err)
	}

	start := c.now()
	st.State = StateSyncing
	st.LastAttempt = start
	st.LastError = ""

	if err := c.saveStatus(ctx, user, st); err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Transaction sync started", "user", user, "page_size", c.cfg.PageSize)

	lock := c.mirrorLock(user)
	lock.Lock()
	rows, err := c.replace(ctx, user, col)
	lock.Unlock()
	if err != nil {
		st.State = StateFailed
		st.LastError = err.Error()
		st.Rows = rows

		if saveErr := c.saveStatus(context.WithoutCancel(ctx), user, st); saveErr != nil {
			slog.WarnContext(ctx, "Failed to record sync failure", "user", user, "error", saveErr)
		}

		slog.ErrorContext(ctx, "Transaction sync failed", "user", user, "rows", rows, "error", err)

		return rows, err
	}

	if blobs, err := c.cache.Blobs(user); err == nil {
		if err := blobs.Invalidate(ctx, transaction.DerivedKinds...); err != nil {
			slog.WarnContext(ctx, "Failed to invalidate derived aggregates", "user", user, "error", err)
		}
	}

	finished := c.now()
	st.State = StateIdle
	st.LastSynced = &finished
	st.Rows = rows

	if err := c.saveStatus(ctx, user, st); err != nil {
		return rows, err
	}

	slog.InfoContext(ctx, "Transaction sync finished",
		"user", user,
		"rows", rows,
		"duration", finished.Sub(start))

	return rows, nil
}

// replace clears the mirror and writes each page before fetching the next.
// The clear waits for the first page so an unreachable remote leaves the
// previous mirror readable. Cancellation is honoured between pages; a page
// already fetched is always written in full.
func (c *Coordinator) replace(ctx context.Context, user uuid.UUID, col *localcache.Collection[*transaction.Transaction]) (int, error) {
	writeCtx := context.WithoutCancel(ctx)
	rows := 0
	cleared := false

	for offset := 0; ; offset += c.cfg.PageSize {
		if err := ctx.Err(); err != nil {
			return rows, fmt.Errorf("sync cancelled at offset %d: %w", offset, err)
		}

		page, err := c.pager.FetchTransactionsPage(ctx, user, "", c.cfg.PageSize, offset)
		if err != nil {
			return rows, fmt.Errorf("fetching page at offset %d: %w", offset, err)
		}

		if !cleared {
			if err := col.Clear(writeCtx); err != nil {
				return rows, fmt.Errorf("clearing mirror: %w", err)
			}

			cleared = true
		}

		if len(page) == 0 {
			return rows, nil
		}

		if err := col.PutMany(writeCtx, page, transactionKey); err != nil {
			return rows, fmt.Errorf("writing page at offset %d: %w", offset, err)
		}

		rows += len(page)

		slog.DebugContext(ctx, "Mirrored transaction page", "user", user, "offset", offset, "count", len(page))
	}
}

// Load returns the user's transactions, syncing first when the mirror is
// stale. A failed sync falls back to whatever the mirror holds, and an
// unusable cache falls back to reading every page from the remote.
func (c *Coordinator) Load(ctx context.Context, user uuid.UUID) ([]*transaction.Transaction, error) {
	if c.isRunning(user) {
		return nil, ErrSyncInProgress
	}

	if _, err := c.SyncIfNeeded(ctx, user); err != nil {
		switch {
		case errors.Is(err, ErrSyncInProgress):
			return nil, err
		case errors.Is(err, localcache.ErrCacheUnavailable):
			slog.WarnContext(ctx, "Local cache unavailable, reading transactions from remote", "user", user, "error", err)
			return c.fetchAll(ctx, user)
		default:
			slog.WarnContext(ctx, "Sync failed, serving mirrored transactions", "user", user, "error", err)
		}
	}

	txs, err := c.readMirror(ctx, user)
	switch {
	case errors.Is(err, ErrSyncInProgress):
		return nil, err
	case err != nil:
		slog.WarnContext(ctx, "Mirror unreadable, reading transactions from remote", "user", user, "error", err)
		return c.fetchAll(ctx, user)
	}

	return txs, nil
}

// readMirror reads the whole mirror under a shared lock. It never waits for
// a sync: while one holds the mirror the read is refused.
func (c *Coordinator) readMirror(ctx context.Context, user uuid.UUID) ([]*transaction.Transaction, error) {
	col, err := localcache.OpenCollection[*transaction.Transaction](c.cache, user, cachekey.KindTransactions)
	if err != nil {
		return nil, err
	}

	lock := c.mirrorLock(user)
	if !lock.TryRLock() {
		return nil, ErrSyncInProgress
	}
	defer lock.RUnlock()

	return col.GetAll(ctx)
}

// fetchAll pages through the remote into memory without touching the cache.
func (c *Coordinator) fetchAll(ctx context.Context, user uuid.UUID) ([]*transaction.Transaction, error) {
	var all []*transaction.Transaction

	for offset := 0; ; offset += c.cfg.PageSize {
		page, err := c.pager.FetchTransactionsPage(ctx, user, "", c.cfg.PageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("fetching page at offset %d: %w", offset, err)
		}

		if len(page) == 0 {
			return all, nil
		}

		all = append(all, page...)
	}
}

func (c *Coordinator) acquire(user uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.running[user]; ok {
		return false
	}

	c.running[user] = struct{}{}

	return true
}

func (c *Coordinator) release(user uuid.UUID) {
	c.mu.Lock()
	delete(c.running, user)
	c.mu.Unlock()
}

func (c *Coordinator) mirrorLock(user uuid.UUID) *sync.RWMutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.mirrors[user]
	if !ok {
		l = new(sync.RWMutex)
		c.mirrors[user] = l
	}

	return l
}

func (c *Coordinator) isRunning(user uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.running[user]

	return ok
}

func transactionKey(tx *transaction.Transaction) string {
	return tx.ID.String()
}
