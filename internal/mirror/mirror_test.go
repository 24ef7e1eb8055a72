package mirror_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pocket/internal/cachekey"
	"github.com/MrJamesThe3rd/pocket/internal/localcache"
	"github.com/MrJamesThe3rd/pocket/internal/localcache/cachetest"
	"github.com/MrJamesThe3rd/pocket/internal/mirror"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

var user = uuid.MustParse("5a5a5a5a-1b1b-4c4c-8d8d-9e9e9e9e9e9e")

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func page(n int) []*transaction.Transaction {
	txs := make([]*transaction.Transaction, n)
	for i := range txs {
		txs[i] = &transaction.Transaction{
			ID:     uuid.New(),
			Amount: decimal.NewFromInt(int64(i + 1)),
			Type:   transaction.TypeExpense,
			Date:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	return txs
}

func setup(t *testing.T) (*mirror.Coordinator, *mirror.MockPager, *localcache.Store, *clock) {
	t.Helper()

	ctrl := gomock.NewController(t)
	pager := mirror.NewMockPager(ctrl)
	cache := cachetest.New(t)
	clk := &clock{now: time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)}

	c := mirror.New(pager, cache, mirror.Config{PageSize: 1000, Interval: 24 * time.Hour}, mirror.WithClock(clk.Now))

	return c, pager, cache, clk
}

func mirrorCount(t *testing.T, cache *localcache.Store) int {
	t.Helper()

	col, err := localcache.OpenCollection[*transaction.Transaction](cache, user, cachekey.KindTransactions)
	require.NoError(t, err)

	n, err := col.Count(context.Background())
	require.NoError(t, err)

	return n
}

func TestForceSync_PagesUntilEmpty(t *testing.T) {
	c, pager, cache, _ := setup(t)
	ctx := context.Background()

	gomock.InOrder(
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 0).Return(page(1000), nil),
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 1000).Return(page(400), nil),
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 2000).Return(nil, nil),
	)

	assert.True(t, c.NeedsSync(ctx, user))

	rows, err := c.ForceSync(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1400, rows)
	assert.Equal(t, 1400, mirrorCount(t, cache))
	assert.False(t, c.NeedsSync(ctx, user))

	st, err := c.Status(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, mirror.StateIdle, st.State)
	assert.Equal(t, 1400, st.Rows)
	require.NotNil(t, st.LastSynced)
}

func TestForceSync_ReplacesPreviousMirror(t *testing.T) {
	c, pager, cache, _ := setup(t)
	ctx := context.Background()

	col, err := localcache.OpenCollection[*transaction.Transaction](cache, user, cachekey.KindTransactions)
	require.NoError(t, err)

	gone := page(1)[0]
	require.NoError(t, col.Put(ctx, gone.ID.String(), gone))

	fresh := page(2)

	gomock.InOrder(
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 0).Return(fresh, nil),
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 1000).Return(nil, nil),
	)

	_, err = c.ForceSync(ctx, user)
	require.NoError(t, err)

	_, ok, err := col.Get(ctx, gone.ID.String())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, mirrorCount(t, cache))
}

func TestForceSync_PartialFailure(t *testing.T) {
	c, pager, cache, _ := setup(t)
	ctx := context.Background()

	gomock.InOrder(
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 0).Return(page(1000), nil),
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 1000).Return(nil, errors.New("gateway timeout")),
	)

	rows, err := c.ForceSync(ctx, user)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offset 1000")
	assert.Equal(t, 1000, rows)

	// The written prefix stays readable but the mirror is not marked fresh.
	assert.Equal(t, 1000, mirrorCount(t, cache))
	assert.True(t, c.NeedsSync(ctx, user))

	st, err := c.Status(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, mirror.StateFailed, st.State)
	assert.Nil(t, st.LastSynced)
	assert.Contains(t, st.LastError, "gateway timeout")
}

func TestForceSync_FirstPageFailureKeepsMirror(t *testing.T) {
	c, pager, cache, _ := setup(t)
	ctx := context.Background()

	gomock.InOrder(
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 0).Return(page(3), nil),
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 1000).Return(nil, nil),
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 0).Return(nil, errors.New("offline")),
	)

	_, err := c.ForceSync(ctx, user)
	require.NoError(t, err)

	_, err = c.ForceSync(ctx, user)
	require.Error(t, err)
	assert.Equal(t, 3, mirrorCount(t, cache))
}

func TestForceSync_RejectsConcurrentRun(t *testing.T) {
	c, pager, _, _ := setup(t)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})

	gomock.InOrder(
		pager.EXPECT().
			FetchTransactionsPage(gomock.Any(), user, "", 1000, 0).
			DoAndReturn(func(context.Context, uuid.UUID, string, int, int) ([]*transaction.Transaction, error) {
				close(started)
				<-release

				return nil, nil
			}),
	)

	done := make(chan error, 1)

	go func() {
		_, err := c.ForceSync(ctx, user)
		done <- err
	}()

	<-started

	_, err := c.ForceSync(ctx, user)
	require.ErrorIs(t, err, mirror.ErrSyncInProgress)

	_, err = c.Load(ctx, user)
	require.ErrorIs(t, err, mirror.ErrSyncInProgress)

	st, err := c.Status(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, mirror.StateSyncing, st.State)

	close(release)
	require.NoError(t, <-done)
}

func TestForceSync_CancelledBetweenPages(t *testing.T) {
	c, pager, _, _ := setup(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pager.EXPECT().
		FetchTransactionsPage(gomock.Any(), user, "", 1000, 0).
		DoAndReturn(func(context.Context, uuid.UUID, string, int, int) ([]*transaction.Transaction, error) {
			cancel()
			return page(1000), nil
		})

	rows, err := c.ForceSync(ctx, user)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1000, rows)
	assert.True(t, c.NeedsSync(context.Background(), user))
}

func TestNeedsSync(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		want    bool
	}{
		{name: "SameDay", advance: 3 * time.Hour, want: false},
		{name: "NextDay", advance: 16 * time.Hour, want: true},
		{name: "PastInterval", advance: 25 * time.Hour, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, pager, _, clk := setup(t)
			ctx := context.Background()

			pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 0).Return(nil, nil)

			_, err := c.ForceSync(ctx, user)
			require.NoError(t, err)

			clk.now = clk.now.Add(tt.advance)
			assert.Equal(t, tt.want, c.NeedsSync(ctx, user))
		})
	}
}

func TestSyncIfNeeded(t *testing.T) {
	c, pager, _, _ := setup(t)
	ctx := context.Background()

	pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 0).Return(nil, nil).Times(1)

	ran, err := c.SyncIfNeeded(ctx, user)
	require.NoError(t, err)
	assert.True(t, ran)

	ran, err = c.SyncIfNeeded(ctx, user)
	require.NoError(t, err)
	assert.False(t, ran)
}

func TestLoad(t *testing.T) {
	c, pager, _, _ := setup(t)
	ctx := context.Background()

	first := page(2)

	gomock.InOrder(
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 0).Return(first, nil),
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 1000).Return(nil, nil),
	)

	txs, err := c.Load(ctx, user)
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	// Fresh mirror: no further remote calls.
	txs, err = c.Load(ctx, user)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestLoad_ServesStaleMirrorWhenRemoteFails(t *testing.T) {
	c, pager, _, clk := setup(t)
	ctx := context.Background()

	gomock.InOrder(
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 0).Return(page(4), nil),
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 1000).Return(nil, nil),
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 0).Return(nil, errors.New("offline")),
	)

	_, err := c.ForceSync(ctx, user)
	require.NoError(t, err)

	clk.now = clk.now.Add(48 * time.Hour)

	txs, err := c.Load(ctx, user)
	require.NoError(t, err)
	assert.Len(t, txs, 4)
}

func TestLoad_WithoutUserReadsRemote(t *testing.T) {
	c, pager, _, _ := setup(t)
	ctx := context.Background()

	gomock.InOrder(
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), uuid.Nil, "", 1000, 0).Return(page(1000), nil),
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), uuid.Nil, "", 1000, 1000).Return(page(5), nil),
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), uuid.Nil, "", 1000, 2000).Return(nil, nil),
	)

	txs, err := c.Load(ctx, uuid.Nil)
	require.NoError(t, err)
	assert.Len(t, txs, 1005)
}

func TestImportBatch_RefusedDuringSync(t *testing.T) {
	c, pager, cache, _ := setup(t)
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo, cache, c)

	rent := &transaction.Transaction{
		ID:          uuid.New(),
		Amount:      decimal.NewFromInt(900),
		Type:        transaction.TypeExpense,
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CategoryID:  uuid.New(),
		Description: new("Rent"),
	}

	first, second := page(1000), page(1000)
	reached := make(chan struct{})
	release := make(chan struct{})

	gomock.InOrder(
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 0).Return(first, nil),
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 1000).Return([]*transaction.Transaction{rent}, nil),
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 2000).Return(nil, nil),
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 0).Return(second, nil),
		pager.EXPECT().
			FetchTransactionsPage(gomock.Any(), user, "", 1000, 1000).
			DoAndReturn(func(context.Context, uuid.UUID, string, int, int) ([]*transaction.Transaction, error) {
				close(reached)
				<-release

				return []*transaction.Transaction{rent}, nil
			}),
		pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 1000, 2000).Return(nil, nil),
	)

	_, err := c.ForceSync(ctx, user)
	require.NoError(t, err)

	done := make(chan error, 1)

	go func() {
		_, err := c.ForceSync(ctx, user)
		done <- err
	}()

	<-reached

	// The mirror now holds page one only; the rent row is not back yet.
	incoming := []transaction.CreateParams{{
		Amount:      decimal.NewFromInt(900),
		Type:        transaction.TypeExpense,
		Date:        rent.Date,
		CategoryID:  rent.CategoryID,
		Description: new("Rent"),
	}}

	// No CreateTransactions expectation: a refused import writes nothing.
	_, err = svc.ImportBatch(ctx, user, incoming)
	require.ErrorIs(t, err, mirror.ErrSyncInProgress)

	close(release)
	require.NoError(t, <-done)

	result, err := svc.ImportBatch(ctx, user, incoming)
	require.NoError(t, err)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, rent.ID, result.Conflicts[0].Existing.ID)
	assert.Empty(t, result.Imported)
}
