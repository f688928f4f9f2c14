package deal

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/closer/internal/deal"
	"github.com/MrJamesThe3rd/closer/internal/http/dto"
	"github.com/MrJamesThe3rd/closer/internal/http/render"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

type Handler struct {
	svc *tracker.Service
	now func() time.Time
}

func NewHandler(svc *tracker.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/stage", h.setStage)
	r.Get("/{id}/expenses", h.expenses)
	r.Get("/{id}/activities", h.activities)
	r.Get("/{id}/net-commission", h.netCommission)
}

type createDealRequest struct {
	Name                string     `json:"name"`
	Property            string     `json:"property"`
	Side                deal.Side  `json:"side"`
	Stage               deal.Stage `json:"stage"`
	CloseProbabilityBps *int       `json:"close_probability_bps"`
	ExpectedCommission  int64      `json:"expected_commission"`
	RealizedCommission  *int64     `json:"realized_commission"`
	ListPrice           *int64     `json:"list_price"`
	CommissionRatePct   *float64   `json:"commission_rate_pct"`
	ListingDate         *time.Time `json:"listing_date"`
	ClosedPrice         *int64     `json:"closed_price"`
	LeadSource          string     `json:"lead_source"`
	OtherLeadSource     string     `json:"other_lead_source"`
	Notes               string     `json:"notes"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createDealRequest
	if !render.Decode(w, r, &req) {
		return
	}

	d, err := h.svc.CreateDeal(r.Context(), tracker.DealParams{
		Name:                req.Name,
		Property:            req.Property,
		Side:                req.Side,
		Stage:               req.Stage,
		CloseProbabilityBps: req.CloseProbabilityBps,
		ExpectedCommission:  req.ExpectedCommission,
		RealizedCommission:  req.RealizedCommission,
		ListPrice:           req.ListPrice,
		CommissionRatePct:   req.CommissionRatePct,
		ListingDate:         req.ListingDate,
		ClosedPrice:         req.ClosedPrice,
		LeadSource:          req.LeadSource,
		OtherLeadSource:     req.OtherLeadSource,
		Notes:               req.Notes,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, dto.FromDeal(d, h.now()))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	deals := h.svc.ListDeals(r.Context(), tracker.DealFilter{
		Stage:      deal.Stage(q.Get("stage")),
		Side:       deal.Side(q.Get("side")),
		LeadSource: q.Get("lead_source"),
	})

	render.JSON(w, http.StatusOK, dto.FromDeals(deals, h.now()))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.GetDeal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, dto.FromDeal(d, h.now()))
}

// updateDealRequest patches a deal: absent fields keep their current value.
type updateDealRequest struct {
	Name                *string     `json:"name"`
	Property            *string     `json:"property"`
	Side                *deal.Side  `json:"side"`
	Stage               *deal.Stage `json:"stage"`
	CloseProbabilityBps *int        `json:"close_probability_bps"`
	ExpectedCommission  *int64      `json:"expected_commission"`
	RealizedCommission  *int64      `json:"realized_commission"`
	ListPrice           *int64      `json:"list_price"`
	CommissionRatePct   *float64    `json:"commission_rate_pct"`
	ListingDate         *time.Time  `json:"listing_date"`
	ClosedPrice         *int64      `json:"closed_price"`
	LeadSource          *string     `json:"lead_source"`
	OtherLeadSource     *string     `json:"other_lead_source"`
	Notes               *string     `json:"notes"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateDealRequest
	if !render.Decode(w, r, &req) {
		return
	}

	current, err := h.svc.GetDeal(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	p := tracker.ParamsFromDeal(current)
	req.apply(&p)

	d, err := h.svc.UpdateDeal(r.Context(), id, p)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, dto.FromDeal(d, h.now()))
}

func (req updateDealRequest) apply(p *tracker.DealParams) {
	setIf(&p.Name, req.Name)
	setIf(&p.Property, req.Property)
	setIf(&p.Side, req.Side)
	setIf(&p.ExpectedCommission, req.ExpectedCommission)
	setIf(&p.LeadSource, req.LeadSource)
	setIf(&p.OtherLeadSource, req.OtherLeadSource)
	setIf(&p.Notes, req.Notes)

	if req.Stage != nil {
		p.Stage = *req.Stage
	}

	if req.CloseProbabilityBps != nil {
		p.CloseProbabilityBps = req.CloseProbabilityBps
	}

	if req.RealizedCommission != nil {
		p.RealizedCommission = req.RealizedCommission
	}

	if req.ListPrice != nil {
		p.ListPrice = req.ListPrice
	}

	if req.CommissionRatePct != nil {
		p.CommissionRatePct = req.CommissionRatePct
	}

	if req.ListingDate != nil {
		p.ListingDate = req.ListingDate
	}

	if req.ClosedPrice != nil {
		p.ClosedPrice = req.ClosedPrice
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteDeal(r.Context(), chi.URLParam(r, "id")); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type setStageRequest struct {
	Stage              deal.Stage `json:"stage"`
	RealizedCommission *int64     `json:"realized_commission"`
	ClosedPrice        *int64     `json:"closed_price"`
}

func (h *Handler) setStage(w http.ResponseWriter, r *http.Request) {
	var req setStageRequest
	if !render.Decode(w, r, &req) {
		return
	}

	d, err := h.svc.SetStage(r.Context(), chi.URLParam(r, "id"), req.Stage, tracker.StageParams{
		RealizedCommission: req.RealizedCommission,
		ClosedPrice:        req.ClosedPrice,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, dto.FromDeal(d, h.now()))
}

func (h *Handler) expenses(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.svc.GetDeal(r.Context(), id); err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, dto.FromExpenses(h.svc.ExpensesForDeal(r.Context(), id)))
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.svc.GetDeal(r.Context(), id); err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, dto.FromActivities(h.svc.ActivitiesForDeal(r.Context(), id)))
}

type netCommissionResponse struct {
	DealID        string `json:"deal_id"`
	NetCommission int64  `json:"net_commission"`
}

func (h *Handler) netCommission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	net, err := h.svc.NetCommission(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, netCommissionResponse{DealID: id, NetCommission: net})
}
