package transaction

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/aggregate"
	"github.com/MrJamesThe3rd/pocket/internal/http/respond"
	"github.com/MrJamesThe3rd/pocket/internal/mirror"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

type Handler struct {
	svc    *transaction.Service
	mirror *mirror.Coordinator
}

func NewHandler(svc *transaction.Service, mirror *mirror.Coordinator) *Handler {
	return &Handler{svc: svc, mirror: mirror}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/sync", h.syncStatus)
	r.Post("/sync", h.sync)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}", h.update)
}

type createTransactionRequest struct {
	Amount      decimal.Decimal  `json:"amount"`
	Type        transaction.Type `json:"type"`
	Date        string           `json:"date"`
	CategoryID  uuid.UUID        `json:"category_id"`
	PayeeID     *uuid.UUID       `json:"payee_id"`
	Description *string          `json:"description"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	var req createTransactionRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	date, err := respond.Date(req.Date)
	if err != nil {
		respond.BadRequest(w, r, "invalid date")
		return
	}

	tx, err := h.svc.Create(r.Context(), user, transaction.CreateParams{
		Amount:      req.Amount,
		Type:        req.Type,
		Date:        date,
		Timestamp:   time.Now(),
		CategoryID:  req.CategoryID,
		PayeeID:     req.PayeeID,
		Description: req.Description,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toResponse(tx))
}

// list serves the local mirror, filtered by the optional start_date,
// end_date, type and q query values, newest first. grouped=true returns
// day groups instead of a flat list.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()

	start, err := respond.Date(q.Get("start_date"))
	if err != nil {
		respond.BadRequest(w, r, "invalid start_date")
		return
	}

	end, err := respond.Date(q.Get("end_date"))
	if err != nil {
		respond.BadRequest(w, r, "invalid end_date")
		return
	}

	typ := transaction.Type(q.Get("type"))
	if typ != "" && !typ.Valid() {
		respond.BadRequest(w, r, "invalid type")
		return
	}

	txs, err := h.mirror.Load(r.Context(), user)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	search := strings.ToLower(strings.TrimSpace(q.Get("q")))

	txs = aggregate.Filter(txs, func(tx *transaction.Transaction) bool {
		switch {
		case !start.IsZero() && tx.Day().Before(start):
			return false
		case !end.IsZero() && tx.Day().After(end):
			return false
		case typ != "" && tx.Type != typ:
			return false
		case search != "" && !matches(tx, search):
			return false
		}

		return true
	})
	txs = aggregate.SortByTimestamp(txs)

	if q.Get("grouped") == "true" {
		respond.JSON(w, r, http.StatusOK, toGroupResponses(aggregate.GroupByDate(txs)))
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponseList(txs))
}

func matches(tx *transaction.Transaction, search string) bool {
	fields := []string{tx.DescriptionText(), tx.CategoryName}
	if tx.PayeeName != nil {
		fields = append(fields, *tx.PayeeName)
	}

	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}

	return false
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

	tx, err := h.svc.Get(r.Context(), user, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(tx))
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

type updateTransactionRequest struct {
	Amount      *decimal.Decimal  `json:"amount,omitempty"`
	Type        *transaction.Type `json:"type,omitempty"`
	Date        *string           `json:"date,omitempty"`
	CategoryID  *uuid.UUID        `json:"category_id,omitempty"`
	PayeeID     *uuid.UUID        `json:"payee_id,omitempty"`
	Description *string           `json:"description,omitempty"`
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

	var req updateTransactionRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	tx, err := h.svc.Get(r.Context(), user, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if req.Amount != nil {
		tx.Amount = *req.Amount
	}

	if req.Type != nil {
		tx.Type = *req.Type
	}

	if req.Date != nil {
		date, err := respond.Date(*req.Date)
		if err != nil {
			respond.BadRequest(w, r, "invalid date")
			return
		}

		tx.Date = date
	}

	if req.CategoryID != nil {
		tx.CategoryID = *req.CategoryID
	}

	if req.PayeeID != nil {
		tx.PayeeID = req.PayeeID
	}

	if req.Description != nil {
		tx.Description = req.Description
	}

	if err := h.svc.Update(r.Context(), user, tx); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(tx))
}

type syncResponse struct {
	Rows   int           `json:"rows"`
	Status mirror.Status `json:"status"`
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	rows, err := h.mirror.ForceSync(r.Context(), user)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	status, err := h.mirror.Status(r.Context(), user)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, syncResponse{Rows: rows, Status: status})
}

func (h *Handler) syncStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	status, err := h.mirror.Status(r.Context(), user)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, status)
}
