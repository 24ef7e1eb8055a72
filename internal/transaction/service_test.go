package transaction_test

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
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

var (
	testUser     = uuid.MustParse("6f1c2a8e-4b1d-4c59-9d0e-0a1b2c3d4e5f")
	testCategory = uuid.MustParse("0b9a8c7d-6e5f-4a3b-8c2d-1e0f9a8b7c6d")
)

func assignIDs(_ context.Context, _ uuid.UUID, tx *transaction.Transaction) error {
	tx.ID = uuid.New()
	tx.CategoryName = "Groceries"

	return nil
}

func validParams(amount int64, day int, description string) transaction.CreateParams {
	return transaction.CreateParams{
		Amount:      decimal.NewFromInt(amount),
		Type:        transaction.TypeExpense,
		Date:        time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		CategoryID:  testCategory,
		Description: new(description),
	}
}

func mirrored(t *testing.T, cache *localcache.Store) []*transaction.Transaction {
	t.Helper()

	col, err := localcache.OpenCollection[*transaction.Transaction](cache, testUser, cachekey.KindTransactions)
	require.NoError(t, err)

	txs, err := col.GetAll(context.Background())
	require.NoError(t, err)

	return txs
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name       string
		params     transaction.CreateParams
		setupMock  func(m *transaction.MockRepository)
		wantErr    error
		wantMirror int
	}

	tests := []testCase{
		{
			name:   "Success",
			params: validParams(1000, 27, "Weekly shop"),
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), testUser, gomock.Any()).
					DoAndReturn(assignIDs)
			},
			wantMirror: 1,
		},
		{
			name:   "RepoError",
			params: validParams(500, 27, ""),
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), testUser, gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
		{
			name: "ZeroAmount",
			params: transaction.CreateParams{
				Type:       transaction.TypeExpense,
				Date:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				CategoryID: testCategory,
			},
			wantErr: transaction.ErrInvalid,
		},
		{
			name: "MissingCategory",
			params: transaction.CreateParams{
				Amount: decimal.NewFromInt(10),
				Type:   transaction.TypeIncome,
				Date:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			},
			wantErr: transaction.ErrInvalid,
		},
		{
			name: "UnknownType",
			params: transaction.CreateParams{
				Amount:     decimal.NewFromInt(10),
				Type:       "Transfer",
				Date:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				CategoryID: testCategory,
			},
			wantErr: transaction.ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			cache := cachetest.New(t)
			svc := transaction.NewService(repo, cache, nil)

			got, err := svc.Create(context.Background(), testUser, tt.params)

			if tt.wantErr != nil {
				require.Error(t, err)

				if errors.Is(tt.wantErr, transaction.ErrInvalid) {
					assert.ErrorIs(t, err, transaction.ErrInvalid)
				}

				assert.Nil(t, got)
				assert.Empty(t, mirrored(t, cache))

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, "Groceries", got.CategoryName)
			assert.Equal(t, got.Date, got.Timestamp, "timestamp defaults to the date")

			txs := mirrored(t, cache)
			require.Len(t, txs, tt.wantMirror)
			assert.Equal(t, got.ID, txs[0].ID)
			assert.True(t, got.Amount.Equal(txs[0].Amount))
		})
	}
}

func TestService_Get_PrefersMirror(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	cache := cachetest.New(t)
	svc := transaction.NewService(repo, cache, nil)

	repo.EXPECT().CreateTransaction(gomock.Any(), testUser, gomock.Any()).DoAndReturn(assignIDs)

	created, err := svc.Create(context.Background(), testUser, validParams(42, 5, "Coffee"))
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), testUser, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Coffee", got.DescriptionText())
}

func TestService_MirrorRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo, cachetest.New(t), nil)

	payee := uuid.MustParse("9c8b7a6d-5e4f-4a3b-9c2d-1e0f2a3b4c5d")

	params := validParams(0, 5, "Bakery")
	params.Amount = decimal.RequireFromString("12.50")
	params.Timestamp = time.Date(2024, 3, 5, 8, 30, 0, 0, time.UTC)
	params.PayeeID = &payee

	repo.EXPECT().CreateTransaction(gomock.Any(), testUser, gomock.Any()).
		DoAndReturn(func(ctx context.Context, user uuid.UUID, tx *transaction.Transaction) error {
			tx.PayeeName = new("Padaria")
			return assignIDs(ctx, user, tx)
		})

	created, err := svc.Create(context.Background(), testUser, params)
	require.NoError(t, err)

	// No GetTransaction expectation: the row must come from the mirror.
	got, err := svc.Get(context.Background(), testUser, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestService_Get_FallsBackToRemote(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo, cachetest.New(t), nil)

	id := uuid.New()
	remote := &transaction.Transaction{ID: id, Amount: decimal.NewFromInt(7), Type: transaction.TypeIncome}

	repo.EXPECT().GetTransaction(gomock.Any(), testUser, id).Return(remote, nil)

	got, err := svc.Get(context.Background(), testUser, id)
	require.NoError(t, err)
	assert.Equal(t, remote, got)
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	cache := cachetest.New(t)
	svc := transaction.NewService(repo, cache, nil)

	repo.EXPECT().CreateTransaction(gomock.Any(), testUser, gomock.Any()).DoAndReturn(assignIDs)

	tx, err := svc.Create(context.Background(), testUser, validParams(10, 2, "Lunch"))
	require.NoError(t, err)

	tx.Amount = decimal.RequireFromString("12.5")

	repo.EXPECT().UpdateTransaction(gomock.Any(), testUser, tx).Return(nil)

	require.NoError(t, svc.Update(context.Background(), testUser, tx))

	txs := mirrored(t, cache)
	require.Len(t, txs, 1)
	assert.Equal(t, "12.5", txs[0].Amount.String())
}

func TestService_Update_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	cache := cachetest.New(t)
	svc := transaction.NewService(repo, cache, nil)

	tx := &transaction.Transaction{
		ID:         uuid.New(),
		Amount:     decimal.NewFromInt(3),
		Type:       transaction.TypeExpense,
		Date:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CategoryID: testCategory,
	}

	repo.EXPECT().UpdateTransaction(gomock.Any(), testUser, tx).Return(transaction.ErrNotFound)

	err := svc.Update(context.Background(), testUser, tx)
	assert.ErrorIs(t, err, transaction.ErrNotFound)
	assert.Empty(t, mirrored(t, cache))
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	cache := cachetest.New(t)
	svc := transaction.NewService(repo, cache, nil)

	repo.EXPECT().CreateTransaction(gomock.Any(), testUser, gomock.Any()).DoAndReturn(assignIDs).Times(2)

	keep, err := svc.Create(context.Background(), testUser, validParams(10, 1, "Keep"))
	require.NoError(t, err)

	drop, err := svc.Create(context.Background(), testUser, validParams(20, 1, "Drop"))
	require.NoError(t, err)

	repo.EXPECT().DeleteTransaction(gomock.Any(), testUser, drop.ID).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), testUser, drop.ID))

	txs := mirrored(t, cache)
	require.Len(t, txs, 1)
	assert.Equal(t, keep.ID, txs[0].ID)
}

func TestService_Delete_RemoteFailureKeepsMirror(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	cache := cachetest.New(t)
	svc := transaction.NewService(repo, cache, nil)

	repo.EXPECT().CreateTransaction(gomock.Any(), testUser, gomock.Any()).DoAndReturn(assignIDs)

	tx, err := svc.Create(context.Background(), testUser, validParams(10, 1, ""))
	require.NoError(t, err)

	repo.EXPECT().DeleteTransaction(gomock.Any(), testUser, tx.ID).Return(errors.New("offline"))

	require.Error(t, svc.Delete(context.Background(), testUser, tx.ID))
	assert.Len(t, mirrored(t, cache), 1)
}

func TestService_ImportBatch_NoConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	source := transaction.NewMockSource(ctrl)
	cache := cachetest.New(t)
	svc := transaction.NewService(repo, cache, source)

	params := []transaction.CreateParams{
		validParams(100, 1, "Rent"),
		validParams(25, 2, "Fuel"),
	}

	source.EXPECT().Load(gomock.Any(), testUser).Return(nil, nil)

	repo.EXPECT().
		CreateTransactions(gomock.Any(), testUser, gomock.Len(2)).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, txs []*transaction.Transaction) error {
			for _, tx := range txs {
				tx.ID = uuid.New()
			}

			return nil
		})

	result, err := svc.ImportBatch(context.Background(), testUser, params)
	require.NoError(t, err)

	assert.Len(t, result.Imported, 2)
	assert.Empty(t, result.Conflicts)
	assert.Len(t, mirrored(t, cache), 2)
}

func TestService_ImportBatch_WithConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	source := transaction.NewMockSource(ctrl)
	svc := transaction.NewService(repo, cachetest.New(t), source)

	existing := &transaction.Transaction{
		ID:          uuid.New(),
		Amount:      decimal.NewFromInt(100),
		Type:        transaction.TypeExpense,
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CategoryID:  testCategory,
		Description: new("Rent"),
	}

	source.EXPECT().Load(gomock.Any(), testUser).Return([]*transaction.Transaction{existing}, nil)

	params := []transaction.CreateParams{
		validParams(100, 1, "  RENT "),
		validParams(25, 2, "Fuel"),
	}

	// No CreateTransactions expectation: nothing may be written.
	result, err := svc.ImportBatch(context.Background(), testUser, params)
	require.NoError(t, err)

	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, existing.ID, result.Conflicts[0].Existing.ID)
	require.Len(t, result.New, 1)
	assert.Equal(t, "Fuel", *result.New[0].Description)
	assert.Empty(t, result.Imported)
}

func TestService_ImportBatch_SourceUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := transaction.NewMockSource(ctrl)
	svc := transaction.NewService(transaction.NewMockRepository(ctrl), cachetest.New(t), source)

	busy := errors.New("list is being rebuilt")
	source.EXPECT().Load(gomock.Any(), testUser).Return(nil, busy)

	// No CreateTransactions expectation: without the full list nothing is written.
	_, err := svc.ImportBatch(context.Background(), testUser, []transaction.CreateParams{validParams(100, 1, "Rent")})
	require.ErrorIs(t, err, busy)
}

func TestService_ImportBatch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := transaction.NewService(transaction.NewMockRepository(ctrl), cachetest.New(t), nil)

	result, err := svc.ImportBatch(context.Background(), testUser, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Empty(t, result.Conflicts)
}

func TestService_ImportBatch_InvalidRow(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := transaction.NewService(transaction.NewMockRepository(ctrl), cachetest.New(t), nil)

	params := []transaction.CreateParams{validParams(10, 1, "ok"), {Type: transaction.TypeIncome}}

	_, err := svc.ImportBatch(context.Background(), testUser, params)
	require.ErrorIs(t, err, transaction.ErrInvalid)
	assert.Contains(t, err.Error(), "row 2")
}

func TestService_CreateBatch_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	cache := cachetest.New(t)
	svc := transaction.NewService(repo, cache, nil)

	repo.EXPECT().CreateTransactions(gomock.Any(), testUser, gomock.Any()).Return(errors.New("timeout"))

	_, err := svc.CreateBatch(context.Background(), testUser, []transaction.CreateParams{validParams(1, 1, "")})
	require.Error(t, err)
	assert.Empty(t, mirrored(t, cache))
}

func TestService_WithoutUser_SkipsMirror(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	cache := cachetest.New(t)
	svc := transaction.NewService(repo, cache, nil)

	repo.EXPECT().CreateTransaction(gomock.Any(), uuid.Nil, gomock.Any()).DoAndReturn(assignIDs)

	tx, err := svc.Create(context.Background(), uuid.Nil, validParams(5, 1, ""))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, tx.ID)

	_, err = localcache.OpenCollection[*transaction.Transaction](cache, uuid.Nil, cachekey.KindTransactions)
	assert.ErrorIs(t, err, localcache.ErrNoUser)
}
