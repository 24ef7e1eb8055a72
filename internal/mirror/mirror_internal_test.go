package mirror

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pocket/internal/localcache/cachetest"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

var lockUser = uuid.MustParse("7b7b7b7b-2c2c-4d4d-8e8e-9f9f9f9f9f9f")

func newLocked(t *testing.T) (*Coordinator, *MockPager) {
	t.Helper()

	ctrl := gomock.NewController(t)
	pager := NewMockPager(ctrl)
	now := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)

	c := New(pager, cachetest.New(t), Config{PageSize: 10, Interval: 24 * time.Hour},
		WithClock(func() time.Time { return now }))

	rows := []*transaction.Transaction{{
		ID:     uuid.New(),
		Amount: decimal.NewFromInt(5),
		Type:   transaction.TypeExpense,
		Date:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}}

	gomock.InOrder(
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), lockUser, "", 10, 0).Return(rows, nil),
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), lockUser, "", 10, 10).Return(nil, nil),
	)

	_, err := c.ForceSync(context.Background(), lockUser)
	require.NoError(t, err)

	return c, pager
}

func TestLoad_RefusedWhileMirrorHeld(t *testing.T) {
	c, _ := newLocked(t)
	ctx := context.Background()

	// A sync that has passed the running check but not yet released the
	// mirror: the read must not see the cleared table.
	lock := c.mirrorLock(lockUser)
	lock.Lock()

	_, err := c.Load(ctx, lockUser)
	require.ErrorIs(t, err, ErrSyncInProgress)

	lock.Unlock()

	txs, err := c.Load(ctx, lockUser)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestForceSync_WaitsForReaders(t *testing.T) {
	c, pager := newLocked(t)

	lock := c.mirrorLock(lockUser)
	lock.RLock()

	fetched := make(chan struct{})

	gomock.InOrder(
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), lockUser, "", 10, 0).
			DoAndReturn(func(context.Context, uuid.UUID, string, int, int) ([]*transaction.Transaction, error) {
				close(fetched)
				return nil, nil
			}),
	)

	done := make(chan error, 1)

	go func() {
		_, err := c.ForceSync(context.Background(), lockUser)
		done <- err
	}()

	assert.Never(t, func() bool {
		select {
		case <-fetched:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	lock.RUnlock()

	require.NoError(t, <-done)
}
