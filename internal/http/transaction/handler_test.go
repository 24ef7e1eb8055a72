package transaction_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pocket/internal/auth"
	txhttp "github.com/MrJamesThe3rd/pocket/internal/http/transaction"
	"github.com/MrJamesThe3rd/pocket/internal/localcache/cachetest"
	"github.com/MrJamesThe3rd/pocket/internal/mirror"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

var (
	user     = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	category = uuid.MustParse("00000000-0000-0000-0000-0000000000c1")
)

type fixture struct {
	router http.Handler
	repo   *transaction.MockRepository
	pager  *mirror.MockPager
}

func setup(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	pager := mirror.NewMockPager(ctrl)
	cache := cachetest.New(t)

	sync := mirror.New(pager, cache, mirror.Config{PageSize: 100, Interval: time.Hour})
	h := txhttp.NewHandler(transaction.NewService(repo, cache, sync), sync)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	})
	r.Route("/transactions", h.Routes)

	return &fixture{router: r, repo: repo, pager: pager}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func mirrored(day string, typ transaction.Type, amount, desc string) *transaction.Transaction {
	d, _ := time.Parse(time.DateOnly, day)

	return &transaction.Transaction{
		ID:           uuid.New(),
		Amount:       decimal.RequireFromString(amount),
		Type:         typ,
		Date:         d,
		Timestamp:    d.Add(12 * time.Hour),
		CategoryID:   category,
		CategoryName: "Groceries",
		Description:  new(desc),
	}
}

func TestHandler_List(t *testing.T) {
	f := setup(t)

	f.pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 100, 0).Return([]*transaction.Transaction{
		mirrored("2024-03-01", transaction.TypeIncome, "1000", "Salary"),
		mirrored("2024-03-02", transaction.TypeExpense, "12.50", "Bakery"),
		mirrored("2024-03-03", transaction.TypeExpense, "40", "Supermarket"),
	}, nil)
	f.pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 100, 100).Return(nil, nil)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "all newest first", query: "", want: []string{"Supermarket", "Bakery", "Salary"}},
		{name: "by type", query: "?type=Expense", want: []string{"Supermarket", "Bakery"}},
		{name: "by period", query: "?start_date=2024-03-01&end_date=2024-03-02", want: []string{"Bakery", "Salary"}},
		{name: "search", query: "?q=bake", want: []string{"Bakery"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, "/transactions"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code)

			var got []struct {
				Description string `json:"description"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

			descs := make([]string, len(got))
			for i, g := range got {
				descs[i] = g.Description
			}

			assert.Equal(t, tt.want, descs)
		})
	}
}

func TestHandler_List_Grouped(t *testing.T) {
	f := setup(t)

	f.pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 100, 0).Return([]*transaction.Transaction{
		mirrored("2024-03-02", transaction.TypeExpense, "10", "A"),
		mirrored("2024-03-02", transaction.TypeIncome, "25", "B"),
		mirrored("2024-03-01", transaction.TypeExpense, "5", "C"),
	}, nil)
	f.pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 100, 100).Return(nil, nil)

	rec := f.do(t, http.MethodGet, "/transactions?grouped=true", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var groups []struct {
		Date         string          `json:"date"`
		Income       decimal.Decimal `json:"income"`
		Expense      decimal.Decimal `json:"expense"`
		Transactions []any           `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
	require.Len(t, groups, 2)

	assert.Equal(t, "2024-03-02", groups[0].Date)
	assert.Len(t, groups[0].Transactions, 2)
	assert.True(t, decimal.NewFromInt(25).Equal(groups[0].Income))
	assert.True(t, decimal.NewFromInt(10).Equal(groups[0].Expense))
}

func TestHandler_List_BadType(t *testing.T) {
	f := setup(t)

	rec := f.do(t, http.MethodGet, "/transactions?type=Transfer", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Create(t *testing.T) {
	f := setup(t)

	f.repo.EXPECT().CreateTransaction(gomock.Any(), user, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, tx *transaction.Transaction) error {
			tx.ID = uuid.New()
			tx.CategoryName = "Groceries"

			return nil
		})

	body := `{"amount":"12.50","type":"Expense","date":"2024-03-02","category_id":"` + category.String() + `","description":"Bakery"}`
	rec := f.do(t, http.MethodPost, "/transactions", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got struct {
		Amount       decimal.Decimal `json:"amount"`
		Date         string          `json:"date"`
		CategoryName string          `json:"category_name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.True(t, decimal.RequireFromString("12.5").Equal(got.Amount))
	assert.Equal(t, "2024-03-02", got.Date)
	assert.Equal(t, "Groceries", got.CategoryName)
}

func TestHandler_Create_Invalid(t *testing.T) {
	f := setup(t)

	rec := f.do(t, http.MethodPost, "/transactions", `{"amount":"0","type":"Expense","date":"2024-03-02"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "amount must be greater than zero")
}

func TestHandler_Get(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		mock   func(f *fixture, id uuid.UUID)
		status int
	}{
		{
			name:   "invalid id",
			id:     "nope",
			status: http.StatusBadRequest,
		},
		{
			name: "not found",
			id:   uuid.NewString(),
			mock: func(f *fixture, id uuid.UUID) {
				f.repo.EXPECT().GetTransaction(gomock.Any(), user, id).Return(nil, transaction.ErrNotFound)
			},
			status: http.StatusNotFound,
		},
		{
			name: "found remotely",
			id:   uuid.NewString(),
			mock: func(f *fixture, id uuid.UUID) {
				f.repo.EXPECT().GetTransaction(gomock.Any(), user, id).Return(&transaction.Transaction{ID: id}, nil)
			},
			status: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			if tt.mock != nil {
				tt.mock(f, uuid.MustParse(tt.id))
			}

			rec := f.do(t, http.MethodGet, "/transactions/"+tt.id, "")
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHandler_Delete(t *testing.T) {
	f := setup(t)
	id := uuid.New()

	f.repo.EXPECT().DeleteTransaction(gomock.Any(), user, id).Return(nil)

	rec := f.do(t, http.MethodDelete, "/transactions/"+id.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_Sync(t *testing.T) {
	f := setup(t)

	f.pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 100, 0).Return([]*transaction.Transaction{
		mirrored("2024-03-01", transaction.TypeIncome, "1000", "Salary"),
	}, nil)
	f.pager.EXPECT().FetchTransactionsPage(gomock.Any(), user, "", 100, 100).Return(nil, nil)

	rec := f.do(t, http.MethodPost, "/transactions/sync", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Rows   int `json:"rows"`
		Status struct {
			State string `json:"state"`
		} `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, 1, got.Rows)
	assert.Equal(t, string(mirror.StateIdle), got.Status.State)

	rec = f.do(t, http.MethodGet, "/transactions/sync", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"last_synced"`)
}
