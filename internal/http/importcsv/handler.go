package importcsv

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/closer/internal/encoding"
	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/http/dto"
	"github.com/MrJamesThe3rd/closer/internal/http/render"
	"github.com/MrJamesThe3rd/closer/internal/importer"
	"github.com/MrJamesThe3rd/closer/internal/importer/statement"
)

const maxUpload = 10 << 20

type Handler struct {
	importSvc *importer.Service
}

func NewHandler(importSvc *importer.Service) *Handler {
	return &Handler{importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
	r.Post("/preview", h.preview)
}

type draftResponse struct {
	Date        time.Time        `json:"date"`
	Description string           `json:"description"`
	Amount      int64            `json:"amount"`
	Category    expense.Category `json:"category"`
	Matched     bool             `json:"matched"`
}

type importSuccessResponse struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Expenses []dto.Expense `json:"expenses"`
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		render.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		render.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	drafts, err := h.importSvc.Preview(r.Context(), file)
	if err != nil {
		h.parseError(w, r, err)
		return
	}

	resp := make([]draftResponse, len(drafts))
	for i, d := range drafts {
		resp[i] = draftResponse{
			Date:        d.Date,
			Description: d.Description,
			Amount:      d.Amount,
			Category:    d.Category,
			Matched:     d.Matched,
		}
	}

	render.JSON(w, http.StatusOK, resp)
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		render.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		render.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	var dealID *string
	if id := r.FormValue("deal_id"); id != "" {
		dealID = &id
	}

	res, err := h.importSvc.Import(r.Context(), file, dealID)
	if err != nil {
		h.parseError(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, importSuccessResponse{
		Imported: len(res.Created),
		Skipped:  res.Skipped,
		Expenses: dto.FromExpenses(res.Created),
	})
}

func (h *Handler) parseError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, statement.ErrUnknownFormat) || errors.Is(err, encoding.ErrNotText) {
		render.BadRequest(w, err.Error())
		return
	}

	render.Error(w, r, err)
}
