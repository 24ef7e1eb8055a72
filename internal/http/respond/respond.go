package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocket/internal/auth"
	"github.com/MrJamesThe3rd/pocket/internal/budget"
	"github.com/MrJamesThe3rd/pocket/internal/goal"
	"github.com/MrJamesThe3rd/pocket/internal/importer"
	"github.com/MrJamesThe3rd/pocket/internal/mirror"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

// RetryAfter is sent with 503s while a sync holds the mirror.
const RetryAfter = 5 * time.Second

type errorResponse struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

// Error maps domain errors to status codes. Anything unrecognised is logged
// and reported as a 500 without its message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, transaction.ErrInvalid),
		errors.Is(err, budget.ErrInvalid),
		errors.Is(err, goal.ErrInvalid),
		errors.Is(err, importer.ErrUnknownFormat):
		JSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, transaction.ErrNotFound),
		errors.Is(err, budget.ErrNotFound),
		errors.Is(err, goal.ErrNotFound):
		JSON(w, r, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, mirror.ErrSyncInProgress):
		w.Header().Set("Retry-After", strconv.Itoa(int(RetryAfter.Seconds())))
		JSON(w, r, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		JSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	JSON(w, r, http.StatusBadRequest, errorResponse{Error: msg})
}

// Decode reads a JSON body, answering 400 itself when it cannot.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, r, "invalid request body: "+err.Error())
		return false
	}

	return true
}

// User returns the authenticated user; handlers only run behind the auth
// middleware, so a missing user is a 401.
func User(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id := auth.UserID(r.Context())
	if id == uuid.Nil {
		JSON(w, r, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return uuid.Nil, false
	}

	return id, true
}

func ID(w http.ResponseWriter, r *http.Request, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		BadRequest(w, r, "invalid id")
		return uuid.Nil, false
	}

	return id, true
}

// Date parses a YYYY-MM-DD query value; empty yields the zero time.
func Date(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}

	return time.Parse(time.DateOnly, raw)
}
