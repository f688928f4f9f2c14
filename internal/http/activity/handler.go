package activity

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/closer/internal/activity"
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
	r.Delete("/{id}", h.delete)
}

type createActivityRequest struct {
	DealID   *string           `json:"deal_id"`
	Date     time.Time         `json:"date"`
	Category activity.Category `json:"category"`
	Notes    string            `json:"notes"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createActivityRequest
	if !render.Decode(w, r, &req) {
		return
	}

	a, err := h.svc.CreateActivity(r.Context(), tracker.ActivityParams{
		DealID:   req.DealID,
		Date:     req.Date,
		Category: req.Category,
		Notes:    req.Notes,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, dto.FromActivity(a))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := tracker.ActivityFilter{
		DealID:   q.Get("deal_id"),
		Category: activity.Category(q.Get("category")),
	}

	if s := q.Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.Start = t
		}
	}

	if s := q.Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.End = t
		}
	}

	render.JSON(w, http.StatusOK, dto.FromActivities(h.svc.ListActivities(r.Context(), filter)))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteActivity(r.Context(), chi.URLParam(r, "id")); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
