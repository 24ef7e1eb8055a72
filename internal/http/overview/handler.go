package overview

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pocket/internal/aggregate"
	"github.com/MrJamesThe3rd/pocket/internal/http/respond"
	"github.com/MrJamesThe3rd/pocket/internal/overview"
)

type Handler struct {
	svc *overview.Service
	now func() time.Time
}

func NewHandler(svc *overview.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.dashboard)
	r.Get("/stats", h.stats)
	r.Get("/summaries", h.summaries)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	d, err := h.svc.Dashboard(r.Context(), user)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, d)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	s, err := h.svc.Stats(r.Context(), user)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, s)
}

// summaries defaults to the current month when start or end is missing.
func (h *Handler) summaries(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	start, err := respond.Date(r.URL.Query().Get("start"))
	if err != nil {
		respond.BadRequest(w, r, "invalid start")
		return
	}

	end, err := respond.Date(r.URL.Query().Get("end"))
	if err != nil {
		respond.BadRequest(w, r, "invalid end")
		return
	}

	p := aggregate.MonthOf(h.now())
	if !start.IsZero() && !end.IsZero() {
		if end.Before(start) {
			respond.BadRequest(w, r, "end is before start")
			return
		}

		p = aggregate.NewPeriod(start, end)
	}

	s, err := h.svc.Summaries(r.Context(), user, p)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, s)
}
