package kpi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/closer/internal/activity"
	"github.com/MrJamesThe3rd/closer/internal/deal"
	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/http/dto"
	"github.com/MrJamesThe3rd/closer/internal/http/render"
	"github.com/MrJamesThe3rd/closer/internal/kpi"
	"github.com/MrJamesThe3rd/closer/internal/settings"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

type Source interface {
	ListDeals(ctx context.Context, f tracker.DealFilter) []*deal.Deal
	ListExpenses(ctx context.Context, f tracker.ExpenseFilter) []*expense.Expense
	ListActivities(ctx context.Context, f tracker.ActivityFilter) []*activity.Activity
}

type SettingsSource interface {
	Get(ctx context.Context) (settings.Settings, error)
}

type Handler struct {
	source   Source
	settings SettingsSource
	now      func() time.Time
}

func NewHandler(source Source, st SettingsSource) *Handler {
	return &Handler{source: source, settings: st, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/goals", h.goals)
	r.Get("/report", h.report)
}

type monthlyResponse struct {
	Month string `json:"month"`
	GCI   int64  `json:"gci"`
}

type dashboardResponse struct {
	Period            string            `json:"period"`
	GCI               int64             `json:"gci"`
	TotalExpenses     int64             `json:"total_expenses"`
	NetIncome         int64             `json:"net_income"`
	EstimatedTax      int64             `json:"estimated_tax"`
	ClosedDeals       int               `json:"closed_deals"`
	OpenDeals         int               `json:"open_deals"`
	TotalDeals        int               `json:"total_deals"`
	AverageCommission *int64            `json:"average_commission"`
	CloseRatePct      *float64          `json:"close_rate_pct"`
	GoalProgressPct   *float64          `json:"goal_progress_pct"`
	PipelineValue     int64             `json:"pipeline_value"`
	MonthlyGCI        []monthlyResponse `json:"monthly_gci"`
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	year := h.now().Year()

	if s := r.URL.Query().Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			render.BadRequest(w, "year must be a number")
			return
		}

		year = y
	}

	st, err := h.settings.Get(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	deals := h.source.ListDeals(r.Context(), tracker.DealFilter{})
	expenses := h.source.ListExpenses(r.Context(), tracker.ExpenseFilter{})

	d := kpi.Dashboard(deals, expenses, st, kpi.Year(year))

	resp := dashboardResponse{
		Period:            d.Period.Label,
		GCI:               d.GCI,
		TotalExpenses:     d.TotalExpenses,
		NetIncome:         d.NetIncome,
		EstimatedTax:      d.EstimatedTax,
		ClosedDeals:       d.ClosedDeals,
		OpenDeals:         d.OpenDeals,
		TotalDeals:        d.TotalDeals,
		AverageCommission: d.AverageCommission,
		CloseRatePct:      d.CloseRatePct,
		GoalProgressPct:   d.GoalProgressPct,
		PipelineValue:     d.PipelineValue,
		MonthlyGCI:        make([]monthlyResponse, len(d.MonthlyGCI)),
	}

	for i, m := range d.MonthlyGCI {
		resp.MonthlyGCI[i] = monthlyResponse{Month: m.Month.Format("2006-01"), GCI: m.GCI}
	}

	render.JSON(w, http.StatusOK, resp)
}

type goalsResponse struct {
	AnnualGCIGoal              int64    `json:"annual_gci_goal"`
	AverageCommission          float64  `json:"average_commission"`
	DealsPerYear               *float64 `json:"deals_per_year"`
	DealsPerYearRounded        *int     `json:"deals_per_year_rounded"`
	DealsPerMonth              *float64 `json:"deals_per_month"`
	AppointmentsPerYear        *float64 `json:"appointments_per_year"`
	AppointmentsPerYearRounded *int     `json:"appointments_per_year_rounded"`
	AppointmentsPerMonth       *int     `json:"appointments_per_month"`
}

func (h *Handler) goals(w http.ResponseWriter, r *http.Request) {
	st, err := h.settings.Get(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	g := kpi.Goals(st)

	render.JSON(w, http.StatusOK, goalsResponse{
		AnnualGCIGoal:              st.AnnualGCIGoal,
		AverageCommission:          g.AverageCommission,
		DealsPerYear:               g.DealsPerYear,
		DealsPerYearRounded:        g.DealsPerYearRounded,
		DealsPerMonth:              g.DealsPerMonth,
		AppointmentsPerYear:        g.AppointmentsPerYear,
		AppointmentsPerYearRounded: g.AppointmentsPerYearRounded,
		AppointmentsPerMonth:       g.AppointmentsPerMonth,
	})
}

type categoryTotalResponse struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Total    int64  `json:"total"`
	Count    int    `json:"count"`
}

type activityCountResponse struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
}

type reportResponse struct {
	Period             string                  `json:"period"`
	Start              string                  `json:"start"`
	End                string                  `json:"end"`
	ClosedDeals        []dto.Deal              `json:"closed_deals"`
	GCI                int64                   `json:"gci"`
	TotalExpenses      int64                   `json:"total_expenses"`
	NetIncome          int64                   `json:"net_income"`
	AverageCommission  *int64                  `json:"average_commission"`
	ExpensesByCategory []categoryTotalResponse `json:"expenses_by_category"`
	ActivitiesByType   []activityCountResponse `json:"activities_by_type"`
	ActivityTotal      int                     `json:"activity_total"`
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	p, err := PeriodFromQuery(r.URL.Query(), h.now())
	if err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	ctx := r.Context()
	rep := kpi.Report(
		h.source.ListDeals(ctx, tracker.DealFilter{}),
		h.source.ListExpenses(ctx, tracker.ExpenseFilter{}),
		h.source.ListActivities(ctx, tracker.ActivityFilter{}),
		p,
	)

	resp := reportResponse{
		Period:             rep.Period.Label,
		Start:              rep.Period.Start.Format(time.DateOnly),
		End:                rep.Period.End.Format(time.DateOnly),
		ClosedDeals:        dto.FromDeals(rep.ClosedDeals, h.now()),
		GCI:                rep.GCI,
		TotalExpenses:      rep.TotalExpenses,
		NetIncome:          rep.NetIncome,
		AverageCommission:  rep.AverageCommission,
		ExpensesByCategory: make([]categoryTotalResponse, len(rep.ExpensesByCategory)),
		ActivitiesByType:   make([]activityCountResponse, len(rep.ActivitiesByType)),
		ActivityTotal:      rep.ActivityTotal,
	}

	for i, c := range rep.ExpensesByCategory {
		resp.ExpensesByCategory[i] = categoryTotalResponse{
			Category: string(c.Category),
			Label:    c.Category.Label(),
			Total:    c.Total,
			Count:    c.Count,
		}
	}

	for i, a := range rep.ActivitiesByType {
		resp.ActivitiesByType[i] = activityCountResponse{
			Category: string(a.Category),
			Label:    a.Category.Label(),
			Count:    a.Count,
		}
	}

	render.JSON(w, http.StatusOK, resp)
}

var errPeriod = errors.New("period must be year, month, quarter or custom")

// PeriodFromQuery reads period=year|month|quarter|custom with its year, month,
// quarter or start/end (YYYY-MM-DD) parameters. Missing parts default to now.
func PeriodFromQuery(q url.Values, now time.Time) (kpi.Period, error) {
	year := now.Year()

	if s := q.Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			return kpi.Period{}, errors.New("year must be a number")
		}

		year = y
	}

	switch q.Get("period") {
	case "", "year":
		return kpi.Year(year), nil
	case "month":
		month := int(now.Month())

		if s := q.Get("month"); s != "" {
			m, err := strconv.Atoi(s)
			if err != nil || m < 1 || m > 12 {
				return kpi.Period{}, errors.New("month must be between 1 and 12")
			}

			month = m
		}

		return kpi.Month(year, time.Month(month)), nil
	case "quarter":
		quarter := (int(now.Month())-1)/3 + 1

		if s := q.Get("quarter"); s != "" {
			qn, err := strconv.Atoi(s)
			if err != nil {
				return kpi.Period{}, errors.New("quarter must be a number")
			}

			quarter = qn
		}

		return kpi.Quarter(year, quarter)
	case "custom":
		start, err := time.Parse(time.DateOnly, q.Get("start"))
		if err != nil {
			return kpi.Period{}, errors.New("start must be YYYY-MM-DD")
		}

		end, err := time.Parse(time.DateOnly, q.Get("end"))
		if err != nil {
			return kpi.Period{}, errors.New("end must be YYYY-MM-DD")
		}

		return kpi.Custom(start, end)
	}

	return kpi.Period{}, errPeriod
}
