package goal_test

import (
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
	"github.com/MrJamesThe3rd/pocket/internal/goal"
	goalhttp "github.com/MrJamesThe3rd/pocket/internal/http/goal"
	"github.com/MrJamesThe3rd/pocket/internal/localcache/cachetest"
)

var user = uuid.MustParse("00000000-0000-0000-0000-000000000001")

func setup(t *testing.T) (http.Handler, *goal.MockRepository) {
	t.Helper()

	repo := goal.NewMockRepository(gomock.NewController(t))
	h := goalhttp.NewHandler(goal.NewService(repo, cachetest.New(t), time.Hour))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	})
	r.Route("/goals", h.Routes)

	return r, repo
}

func do(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))

	return rec
}

func car() goal.Goal {
	return goal.Goal{
		ID:            uuid.MustParse("e0000000-0000-4000-8000-000000000002"),
		UserID:        user,
		Name:          "Car",
		GoalAmount:    decimal.NewFromInt(8000),
		CurrentAmount: decimal.NewFromInt(2000),
	}
}

func TestHandler_List(t *testing.T) {
	router, repo := setup(t)

	repo.EXPECT().ListGoals(gomock.Any(), user).Return([]goal.Goal{car()}, nil)

	rec := do(router, http.MethodGet, "/goals", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []struct {
		Name     string  `json:"name"`
		Progress float64 `json:"progress"`
		Reached  bool    `json:"reached"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)

	assert.Equal(t, "Car", got[0].Name)
	assert.Equal(t, 25.0, got[0].Progress)
	assert.False(t, got[0].Reached)
}

func TestHandler_Contribute(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		update bool
		status int
	}{
		{name: "deposit", body: `{"amount":"6000"}`, update: true, status: http.StatusOK},
		{name: "zero", body: `{"amount":"0"}`, status: http.StatusBadRequest},
		{name: "overdrawn", body: `{"amount":"-2500"}`, status: http.StatusBadRequest},
		{name: "bad body", body: `{`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, repo := setup(t)
			g := car()

			repo.EXPECT().ListGoals(gomock.Any(), user).Return([]goal.Goal{g}, nil).AnyTimes()

			if tt.update {
				repo.EXPECT().UpdateGoal(gomock.Any(), user, gomock.Any()).Return(nil)
			}

			rec := do(router, http.MethodPost, "/goals/"+g.ID.String()+"/contributions", tt.body)
			assert.Equal(t, tt.status, rec.Code)

			if tt.update {
				assert.Contains(t, rec.Body.String(), `"reached":true`)
			}
		})
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	router, repo := setup(t)

	repo.EXPECT().ListGoals(gomock.Any(), user).Return(nil, nil)

	rec := do(router, http.MethodGet, "/goals/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
