package budget

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/budget"
	"github.com/MrJamesThe3rd/pocket/internal/http/respond"
)

type Handler struct {
	svc *budget.Service
	now func() time.Time
}

func NewHandler(svc *budget.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/status", h.statuses)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/history", h.history)
}

type budgetRequest struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Interval    budget.Interval `json:"interval"`
	StartDate   string          `json:"start_date"`
	CategoryIDs []uuid.UUID     `json:"category_ids"`
}

func (req budgetRequest) toBudget() (*budget.Budget, error) {
	start, err := respond.Date(req.StartDate)
	if err != nil {
		return nil, err
	}

	interval := req.Interval
	if interval == "" {
		interval = budget.IntervalMonth
	}

	return &budget.Budget{
		Name:        req.Name,
		Amount:      req.Amount,
		Interval:    interval,
		StartDate:   start,
		CategoryIDs: req.CategoryIDs,
	}, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	budgets, err := h.svc.List(r.Context(), user)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, budgets)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	id, ok := respond.ID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	b, err := h.svc.Get(r.Context(), user, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, b)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	var req budgetRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	b, err := req.toBudget()
	if err != nil {
		respond.BadRequest(w, r, "invalid start_date")
		return
	}

	if err := h.svc.Create(r.Context(), user, b); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, b)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	id, ok := respond.ID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req budgetRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	b, err := req.toBudget()
	if err != nil {
		respond.BadRequest(w, r, "invalid start_date")
		return
	}

	b.ID = id

	if err := h.svc.Update(r.Context(), user, b); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, b)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	id, ok := respond.ID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), user, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// statuses reports consumption for the month given as YYYY-MM, or the
// current month.
func (h *Handler) statuses(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	month := h.now()

	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := time.Parse("2006-01", raw)
		if err != nil {
			respond.BadRequest(w, r, "invalid month, want YYYY-MM")
			return
		}

		month = m
	}

	statuses, err := h.svc.Statuses(r.Context(), user, month)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, statuses)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	id, ok := respond.ID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	history, err := h.svc.History(r.Context(), user, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, history)
}
