package respond_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/pocket/internal/auth"
	"github.com/MrJamesThe3rd/pocket/internal/budget"
	"github.com/MrJamesThe3rd/pocket/internal/goal"
	"github.com/MrJamesThe3rd/pocket/internal/http/respond"
	"github.com/MrJamesThe3rd/pocket/internal/importer"
	"github.com/MrJamesThe3rd/pocket/internal/mirror"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		status     int
		retryAfter string
		body       string
	}{
		{name: "invalid transaction", err: fmt.Errorf("%w: amount", transaction.ErrInvalid), status: http.StatusBadRequest, body: "amount"},
		{name: "invalid budget", err: budget.ErrInvalid, status: http.StatusBadRequest},
		{name: "unknown statement", err: fmt.Errorf("parsing: %w", importer.ErrUnknownFormat), status: http.StatusBadRequest},
		{name: "goal not found", err: goal.ErrNotFound, status: http.StatusNotFound},
		{name: "wrapped not found", err: fmt.Errorf("x: %w", transaction.ErrNotFound), status: http.StatusNotFound},
		{name: "sync running", err: mirror.ErrSyncInProgress, status: http.StatusServiceUnavailable, retryAfter: "5"},
		{name: "unknown", err: errors.New("db password is hunter2"), status: http.StatusInternalServerError, body: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respond.Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.retryAfter, rec.Header().Get("Retry-After"))
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			if tt.body != "" {
				assert.Contains(t, rec.Body.String(), tt.body)
			}

			assert.NotContains(t, rec.Body.String(), "hunter2")
		})
	}
}

func TestUser(t *testing.T) {
	id := uuid.New()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := respond.User(rec, req)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	got, ok := respond.User(rec, req.WithContext(auth.WithUser(req.Context(), id)))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestDate(t *testing.T) {
	d, err := respond.Date("")
	assert.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = respond.Date("2024-02-29")
	assert.NoError(t, err)
	assert.Equal(t, 29, d.Day())

	_, err = respond.Date("29/02/2024")
	assert.Error(t, err)
}
