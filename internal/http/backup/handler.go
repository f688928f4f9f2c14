package backup

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/closer/internal/backup"
	"github.com/MrJamesThe3rd/closer/internal/http/render"
)

type Handler struct {
	svc *backup.Service
}

func NewHandler(svc *backup.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/restore", h.restore)
}

type backupResponse struct {
	Key string `json:"key"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	key, err := h.svc.Backup(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, backupResponse{Key: key})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	keys, err := h.svc.List(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if keys == nil {
		keys = []string{}
	}

	render.JSON(w, http.StatusOK, keys)
}

type restoreRequest struct {
	Key string `json:"key"`
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if !render.Decode(w, r, &req) {
		return
	}

	if req.Key == "" {
		render.BadRequest(w, "key is required")
		return
	}

	if err := h.svc.Restore(r.Context(), req.Key); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
