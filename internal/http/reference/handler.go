package reference

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pocket/internal/http/respond"
	"github.com/MrJamesThe3rd/pocket/internal/reference"
)

type Handler struct {
	svc *reference.Service
}

func NewHandler(svc *reference.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) CategoryRoutes(r chi.Router) {
	r.Get("/", h.categories)
}

func (h *Handler) PayeeRoutes(r chi.Router) {
	r.Get("/", h.payees)
}

func (h *Handler) RefreshRoutes(r chi.Router) {
	r.Post("/", h.refresh)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	cats, err := h.svc.Categories(r.Context(), user)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if typ := r.URL.Query().Get("type"); typ != "" {
		filtered := cats[:0:0]

		for _, c := range cats {
			if string(c.Type) == typ {
				filtered = append(filtered, c)
			}
		}

		cats = filtered
	}

	respond.JSON(w, r, http.StatusOK, cats)
}

func (h *Handler) payees(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	payees, err := h.svc.Payees(r.Context(), user)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, payees)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	if err := h.svc.Refresh(r.Context(), user); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
