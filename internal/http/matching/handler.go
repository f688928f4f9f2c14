package matching

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/http/render"
	"github.com/MrJamesThe3rd/closer/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	RawDescription string            `json:"raw_description"`
	Category       *expense.Category `json:"category"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	rawDesc := r.URL.Query().Get("raw_description")
	if rawDesc == "" {
		render.BadRequest(w, "raw_description query parameter is required")
		return
	}

	category, ok, err := h.svc.Suggest(r.Context(), rawDesc)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := suggestResponse{RawDescription: rawDesc}
	if ok {
		resp.Category = &category
	}

	render.JSON(w, http.StatusOK, resp)
}

type learnRequest struct {
	RawPattern string           `json:"raw_pattern"`
	Category   expense.Category `json:"category"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if !render.Decode(w, r, &req) {
		return
	}

	if err := h.svc.Learn(r.Context(), req.RawPattern, req.Category); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
