package importcsv

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/http/respond"
	"github.com/MrJamesThe3rd/pocket/internal/importer"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

const maxUpload = 10 << 20

type Handler struct {
	svc *importer.Service
}

func NewHandler(svc *importer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
	r.Post("/confirm", h.confirmImport)
}

type transactionResponse struct {
	ID          uuid.UUID        `json:"id"`
	Amount      decimal.Decimal  `json:"amount"`
	Type        transaction.Type `json:"type"`
	Date        string           `json:"date"`
	CategoryID  uuid.UUID        `json:"category_id"`
	PayeeID     *uuid.UUID       `json:"payee_id,omitempty"`
	Description *string          `json:"description,omitempty"`
}

type importSuccessResponse struct {
	Imported     int                   `json:"imported"`
	Transactions []transactionResponse `json:"transactions"`
}

type createParamsDTO struct {
	Amount      decimal.Decimal  `json:"amount"`
	Type        transaction.Type `json:"type"`
	Date        string           `json:"date"`
	CategoryID  uuid.UUID        `json:"category_id"`
	PayeeID     *uuid.UUID       `json:"payee_id,omitempty"`
	Description *string          `json:"description,omitempty"`
}

type conflictDTO struct {
	Incoming createParamsDTO     `json:"incoming"`
	Existing transactionResponse `json:"existing"`
}

type importConflictResponse struct {
	New       []createParamsDTO `json:"new"`
	Conflicts []conflictDTO     `json:"conflicts"`
}

type confirmRequest struct {
	Params []createParamsDTO `json:"params"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		respond.BadRequest(w, r, "failed to parse form: "+err.Error())
		return
	}

	var opts importer.Options

	for field, dst := range map[string]*uuid.UUID{
		"expense_category_id": &opts.ExpenseCategoryID,
		"income_category_id":  &opts.IncomeCategoryID,
	} {
		id, err := uuid.Parse(r.FormValue(field))
		if err != nil {
			respond.BadRequest(w, r, field+" is required")
			return
		}

		*dst = id
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, r, "file field is required")
		return
	}
	defer file.Close()

	result, err := h.svc.Import(r.Context(), user, file, opts)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]createParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}

		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: toTxResponse(c.Existing),
			})
		}

		respond.JSON(w, r, http.StatusConflict, resp)

		return
	}

	respond.JSON(w, r, http.StatusCreated, toSuccessResponse(result.Imported))
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	user, ok := respond.User(w, r)
	if !ok {
		return
	}

	var req confirmRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	now := time.Now()
	params := make([]transaction.CreateParams, 0, len(req.Params))

	for _, p := range req.Params {
		date, err := respond.Date(p.Date)
		if err != nil {
			respond.BadRequest(w, r, "invalid date "+p.Date)
			return
		}

		params = append(params, transaction.CreateParams{
			Amount:      p.Amount,
			Type:        p.Type,
			Date:        date,
			Timestamp:   now,
			CategoryID:  p.CategoryID,
			PayeeID:     p.PayeeID,
			Description: p.Description,
		})
	}

	txs, err := h.svc.Confirm(r.Context(), user, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toSuccessResponse(txs))
}

func toSuccessResponse(txs []*transaction.Transaction) importSuccessResponse {
	responses := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		responses = append(responses, toTxResponse(tx))
	}

	return importSuccessResponse{
		Imported:     len(txs),
		Transactions: responses,
	}
}

func toTxResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Date:        tx.Date.Format(time.DateOnly),
		CategoryID:  tx.CategoryID,
		PayeeID:     tx.PayeeID,
		Description: tx.Description,
	}
}

func toParamsDTO(p transaction.CreateParams) createParamsDTO {
	return createParamsDTO{
		Amount:      p.Amount,
		Type:        p.Type,
		Date:        p.Date.Format(time.DateOnly),
		CategoryID:  p.CategoryID,
		PayeeID:     p.PayeeID,
		Description: p.Description,
	}
}
