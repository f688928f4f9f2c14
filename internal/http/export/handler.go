package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/closer/internal/export"
	"github.com/MrJamesThe3rd/closer/internal/http/dto"
	kpiHandler "github.com/MrJamesThe3rd/closer/internal/http/kpi"
	"github.com/MrJamesThe3rd/closer/internal/http/render"
)

type Handler struct {
	svc *export.Service
	now func() time.Time
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.metadata)
	r.Get("/download", h.download)
}

type exportMetadataResponse struct {
	Period      string        `json:"period"`
	Expenses    []dto.Expense `json:"expenses"`
	ClosedDeals []dto.Deal    `json:"closed_deals"`
	Summary     string        `json:"summary"`
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	p, err := kpiHandler.PeriodFromQuery(r.URL.Query(), h.now())
	if err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	b := h.svc.Export(r.Context(), p)

	render.JSON(w, http.StatusOK, exportMetadataResponse{
		Period:      p.Label,
		Expenses:    dto.FromExpenses(b.Expenses),
		ClosedDeals: dto.FromDeals(b.Report.ClosedDeals, h.now()),
		Summary:     export.GenerateSummary(b),
	})
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	p, err := kpiHandler.PeriodFromQuery(r.URL.Query(), h.now())
	if err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := export.WriteZip(&buf, h.svc.Export(r.Context(), p)); err != nil {
		slog.Error("failed to create zip", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"export_%s_%s.zip\"",
			p.Start.Format("20060102"), p.End.Format("20060102")))

	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write zip", "error", err)
	}
}
