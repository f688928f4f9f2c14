package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/closer/internal/auth"
	"github.com/MrJamesThe3rd/closer/internal/http/activity"
	"github.com/MrJamesThe3rd/closer/internal/http/backup"
	"github.com/MrJamesThe3rd/closer/internal/http/deal"
	"github.com/MrJamesThe3rd/closer/internal/http/demo"
	"github.com/MrJamesThe3rd/closer/internal/http/expense"
	"github.com/MrJamesThe3rd/closer/internal/http/export"
	"github.com/MrJamesThe3rd/closer/internal/http/importcsv"
	"github.com/MrJamesThe3rd/closer/internal/http/kpi"
	"github.com/MrJamesThe3rd/closer/internal/http/matching"
	"github.com/MrJamesThe3rd/closer/internal/http/settings"
	"github.com/MrJamesThe3rd/closer/internal/metrics"
)

type Handlers struct {
	Deals      *deal.Handler
	Expenses   *expense.Handler
	Activities *activity.Handler
	KPI        *kpi.Handler
	Settings   *settings.Handler
	Demo       *demo.Handler
	Import     *importcsv.Handler
	Matching   *matching.Handler
	Export     *export.Handler
	// Backups is nil when no bucket is configured.
	Backups *backup.Handler
}

type Options struct {
	CORSOrigins []string
	// Auth is nil when no secret is configured.
	Auth    *auth.Authenticator
	Metrics *metrics.Metrics
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
		router.Handle("/metrics", opts.Metrics.Handler())
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth.Middleware)
		}

		r.Route("/deals", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Deals.Routes(r)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Expenses.Routes(r)
		})

		r.Route("/activities", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Activities.Routes(r)
		})

		r.Group(h.KPI.Routes)

		r.Route("/settings", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Settings.Routes(r)
		})

		r.Route("/demo", h.Demo.Routes)
		r.Route("/import", h.Import.Routes)
		r.Route("/matching", h.Matching.Routes)
		r.Route("/export", h.Export.Routes)

		if h.Backups != nil {
			r.Route("/backups", h.Backups.Routes)
		}
	})

	return router
}
