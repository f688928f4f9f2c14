package expense

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/http/dto"
	"github.com/MrJamesThe3rd/closer/internal/http/render"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

type Handler struct {
	svc *tracker.Service
}

func NewHandler(svc *tracker.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createExpenseRequest struct {
	DealID            *string          `json:"deal_id"`
	Kind              expense.Kind     `json:"kind"`
	Category          expense.Category `json:"category"`
	Date              time.Time        `json:"date"`
	Notes             string           `json:"notes"`
	Quantity          float64          `json:"quantity"`
	CostPerUnit       int64            `json:"cost_per_unit"`
	MilesDriven       float64          `json:"miles_driven"`
	MilesPerGallon    *float64         `json:"miles_per_gallon"`
	GasPricePerGallon *int64           `json:"gas_price_per_gallon"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if !render.Decode(w, r, &req) {
		return
	}

	if req.Kind == "" {
		req.Kind = expense.KindStandard
	}

	e, err := h.svc.CreateExpense(r.Context(), tracker.ExpenseParams{
		DealID:            req.DealID,
		Kind:              req.Kind,
		Category:          req.Category,
		Date:              req.Date,
		Notes:             req.Notes,
		Quantity:          req.Quantity,
		CostPerUnit:       req.CostPerUnit,
		MilesDriven:       req.MilesDriven,
		MilesPerGallon:    req.MilesPerGallon,
		GasPricePerGallon: req.GasPricePerGallon,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, dto.FromExpense(e))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := tracker.ExpenseFilter{DealID: q.Get("deal_id")}

	if s := q.Get("start_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			render.BadRequest(w, "start_date must be YYYY-MM-DD")
			return
		}

		filter.Start = t
	}

	if s := q.Get("end_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			render.BadRequest(w, "end_date must be YYYY-MM-DD")
			return
		}

		filter.End = t
	}

	render.JSON(w, http.StatusOK, dto.FromExpenses(h.svc.ListExpenses(r.Context(), filter)))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.GetExpense(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, dto.FromExpense(e))
}

// updateExpenseRequest patches an expense. An empty deal_id unlinks it.
type updateExpenseRequest struct {
	DealID            *string           `json:"deal_id"`
	Kind              *expense.Kind     `json:"kind"`
	Category          *expense.Category `json:"category"`
	Date              *time.Time        `json:"date"`
	Notes             *string           `json:"notes"`
	Quantity          *float64          `json:"quantity"`
	CostPerUnit       *int64            `json:"cost_per_unit"`
	MilesDriven       *float64          `json:"miles_driven"`
	MilesPerGallon    *float64          `json:"miles_per_gallon"`
	GasPricePerGallon *int64            `json:"gas_price_per_gallon"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateExpenseRequest
	if !render.Decode(w, r, &req) {
		return
	}

	current, err := h.svc.GetExpense(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	p := tracker.ParamsFromExpense(current)

	if req.DealID != nil {
		p.DealID = req.DealID
	}

	if req.Kind != nil {
		p.Kind = *req.Kind
	}

	if req.Category != nil {
		p.Category = *req.Category
	}

	if req.Date != nil {
		p.Date = *req.Date
	}

	if req.Notes != nil {
		p.Notes = *req.Notes
	}

	if req.Quantity != nil {
		p.Quantity = *req.Quantity
	}

	if req.CostPerUnit != nil {
		p.CostPerUnit = *req.CostPerUnit
	}

	if req.MilesDriven != nil {
		p.MilesDriven = *req.MilesDriven
	}

	if req.MilesPerGallon != nil {
		p.MilesPerGallon = req.MilesPerGallon
	}

	if req.GasPricePerGallon != nil {
		p.GasPricePerGallon = req.GasPricePerGallon
	}

	e, err := h.svc.UpdateExpense(r.Context(), id, p)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, dto.FromExpense(e))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteExpense(r.Context(), chi.URLParam(r, "id")); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
