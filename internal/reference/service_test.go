package reference_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pocket/internal/localcache/cachetest"
	"github.com/MrJamesThe3rd/pocket/internal/reference"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

var user = uuid.MustParse("7b7b7b7b-1c1c-4d4d-8e8e-9f9f9f9f9f9f")

var categories = []reference.Category{
	{ID: uuid.MustParse("c0000000-0000-4000-8000-000000000001"), Name: "Food", Type: transaction.TypeExpense, Icon: "fork"},
	{ID: uuid.MustParse("c0000000-0000-4000-8000-000000000002"), Name: "Salary", Type: transaction.TypeIncome, Icon: "bank"},
}

func newService(t *testing.T, now *time.Time) (*reference.Service, *reference.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := reference.NewMockRepository(ctrl)
	svc := reference.NewService(repo, cachetest.New(t), 24*time.Hour, reference.WithClock(func() time.Time { return *now }))

	return svc, repo
}

func TestService_Categories_CachedWithinTTL(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	svc, repo := newService(t, &now)
	ctx := context.Background()

	repo.EXPECT().ListCategories(gomock.Any(), user).Return(categories, nil).Times(1)

	got, err := svc.Categories(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, categories, got)

	now = now.Add(4 * time.Hour)

	got, err = svc.Categories(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, categories, got)
}

func TestService_Categories_RefetchesNextDay(t *testing.T) {
	now := time.Date(2024, 3, 10, 22, 0, 0, 0, time.UTC)
	svc, repo := newService(t, &now)
	ctx := context.Background()

	repo.EXPECT().ListCategories(gomock.Any(), user).Return(categories, nil).Times(2)

	_, err := svc.Categories(ctx, user)
	require.NoError(t, err)

	now = now.Add(3 * time.Hour)

	_, err = svc.Categories(ctx, user)
	require.NoError(t, err)
}

func TestService_Payees_ServesExpiredOnRemoteFailure(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	svc, repo := newService(t, &now)
	ctx := context.Background()

	payees := []reference.Payee{{ID: uuid.New(), Name: "Corner Shop"}}

	gomock.InOrder(
		repo.EXPECT().ListPayees(gomock.Any(), user).Return(payees, nil),
		repo.EXPECT().ListPayees(gomock.Any(), user).Return(nil, errors.New("offline")),
	)

	_, err := svc.Payees(ctx, user)
	require.NoError(t, err)

	now = now.Add(72 * time.Hour)

	got, err := svc.Payees(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, payees, got)
}

func TestService_Payees_RemoteFailureWithoutCache(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	svc, repo := newService(t, &now)

	repo.EXPECT().ListPayees(gomock.Any(), user).Return(nil, errors.New("offline"))

	_, err := svc.Payees(context.Background(), user)
	require.Error(t, err)
}

func TestService_Refresh(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	svc, repo := newService(t, &now)
	ctx := context.Background()

	repo.EXPECT().ListCategories(gomock.Any(), user).Return(categories, nil).Times(2)
	repo.EXPECT().ListPayees(gomock.Any(), user).Return(nil, nil)

	_, err := svc.Categories(ctx, user)
	require.NoError(t, err)

	require.NoError(t, svc.Refresh(ctx, user))
}

func TestService_Refresh_ReportsRemoteFailure(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	svc, repo := newService(t, &now)
	ctx := context.Background()

	down := errors.New("connection refused")

	gomock.InOrder(
		repo.EXPECT().ListCategories(gomock.Any(), user).Return(categories, nil),
		repo.EXPECT().ListCategories(gomock.Any(), user).Return(nil, down),
	)

	_, err := svc.Categories(ctx, user)
	require.NoError(t, err)

	require.ErrorIs(t, svc.Refresh(ctx, user), down)

	got, err := svc.Categories(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, categories, got)
}

func TestService_Categories_ConcurrentCallers(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	svc, repo := newService(t, &now)
	ctx := context.Background()

	repo.EXPECT().ListCategories(gomock.Any(), user).Return(categories, nil).MinTimes(1).MaxTimes(8)

	var wg sync.WaitGroup

	for range 8 {
		wg.Go(func() {
			got, err := svc.Categories(ctx, user)
			assert.NoError(t, err)
			assert.Len(t, got, 2)
		})
	}

	wg.Wait()
}

func TestService_NoUserReadsRemote(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	svc, repo := newService(t, &now)

	repo.EXPECT().ListCategories(gomock.Any(), uuid.Nil).Return(categories, nil).Times(2)

	for range 2 {
		got, err := svc.Categories(context.Background(), uuid.Nil)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	}
}

func TestMatchPayee(t *testing.T) {
	payees := []reference.Payee{
		{ID: uuid.New(), Name: "Shell"},
		{ID: uuid.New(), Name: "Shell Recharge"},
		{ID: uuid.New(), Name: "Pingo Doce"},
		{ID: uuid.New(), Name: " "},
	}

	tests := []struct {
		description string
		want        string
		found       bool
	}{
		{description: "COMPRA SHELL RECHARGE LISBOA", want: "Shell Recharge", found: true},
		{description: "compra shell a2", want: "Shell", found: true},
		{description: "PINGO DOCE ALVALADE", want: "Pingo Doce", found: true},
		{description: "TRF MB WAY", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			got, ok := reference.MatchPayee(payees, tt.description)
			assert.Equal(t, tt.found, ok)

			if tt.found {
				assert.Equal(t, tt.want, got.Name)
			}
		})
	}
}

func TestFindCategory(t *testing.T) {
	got, ok := reference.FindCategory(categories, categories[1].ID)
	require.True(t, ok)
	assert.Equal(t, "Salary", got.Name)

	_, ok = reference.FindCategory(categories, uuid.New())
	assert.False(t, ok)
}
