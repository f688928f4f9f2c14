package demo

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/closer/internal/demo"
	"github.com/MrJamesThe3rd/closer/internal/http/render"
)

type Handler struct {
	mode *demo.Mode
}

func NewHandler(mode *demo.Mode) *Handler {
	return &Handler{mode: mode}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.status)
	r.Post("/enable", h.toggle(h.mode.Enable))
	r.Post("/disable", h.toggle(h.mode.Disable))
	r.Post("/clear", h.toggle(h.mode.Clear))
}

type statusResponse struct {
	Active bool `json:"active"`
}

func (h *Handler) status(w http.ResponseWriter, _ *http.Request) {
	render.JSON(w, http.StatusOK, statusResponse{Active: h.mode.Active()})
}

func (h *Handler) toggle(action func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := action(r.Context()); err != nil {
			render.Error(w, r, err)
			return
		}

		render.JSON(w, http.StatusOK, statusResponse{Active: h.mode.Active()})
	}
}
