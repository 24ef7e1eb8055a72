package goal

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/goal"
	"github.com/MrJamesThe3rd/pocket/internal/http/respond"
)

type Handler struct {
	svc *goal.Service
}

func NewHandler(svc *goal.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/contributions", h.contribute)
}

type goalRequest struct {
	Name          string          `json:"name"`
	Logo          *string         `json:"logo"`
	GoalAmount    decimal.Decimal `json:"goal_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
}

type goalResponse struct {
	goal.Goal
	Progress float64 `json:"progress"`
	Reached  bool    `json:"reached"`
}

func toResponse(g *goal.Goal) goalResponse {
	return goalResponse{Goal: *g, Progress: g.Progress(), Reached: g.Reached()}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	goals, err := h.svc.List(r.Context(), user)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]goalResponse, len(goals))
	for i := range goals {
		resp[i] = toResponse(&goals[i])
	}

	respond.JSON(w, r, http.StatusOK, resp)
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

	g, err := h.svc.Get(r.Context(), user, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(g))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	var req goalRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	g := &goal.Goal{
		Name:          req.Name,
		Logo:          req.Logo,
		GoalAmount:    req.GoalAmount,
		CurrentAmount: req.CurrentAmount,
	}

	if err := h.svc.Create(r.Context(), user, g); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toResponse(g))
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

	var req goalRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	g := &goal.Goal{
		ID:            id,
		UserID:        user,
		Name:          req.Name,
		Logo:          req.Logo,
		GoalAmount:    req.GoalAmount,
		CurrentAmount: req.CurrentAmount,
	}

	if err := h.svc.Update(r.Context(), user, g); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(g))
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

type contributeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) contribute(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	id, ok := respond.ID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req contributeRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	g, err := h.svc.Contribute(r.Context(), user, id, req.Amount)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(g))
}
