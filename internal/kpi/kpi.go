// Package kpi derives the dashboard figures, goal projections and period
// reports from a snapshot of the deal, expense and activity collections.
// Every function is pure; nothing is cached between calls.
package kpi

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/MrJamesThe3rd/closer/internal/deal"
	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/settings"
)

// NetCommission returns the realized commission of d (zero unless closed) minus
// the total cost of every expense linked to it, regardless of kind or order.
func NetCommission(d *deal.Deal, expenses []*expense.Expense) int64 {
	var net int64
	if d.IsClosed() && d.RealizedCommission != nil {
		net = *d.RealizedCommission
	}

	for _, e := range expenses {
		if e.LinkedTo(d.ID) {
			net -= e.TotalCost
		}
	}

	return net
}

// WeightedPipelineValue sums the probability-weighted expected commission of every open deal.
func WeightedPipelineValue(deals []*deal.Deal) int64 {
	var total int64

	for _, d := range deals {
		if !d.IsClosed() {
			total += deal.WeightedValue(d)
		}
	}

	return total
}

// ClosedIn returns the closed deals whose closing date falls within p.
func ClosedIn(deals []*deal.Deal, p Period) []*deal.Deal {
	var closed []*deal.Deal

	for _, d := range deals {
		if d.IsClosed() && d.ClosedAt != nil && p.Contains(*d.ClosedAt) {
			closed = append(closed, d)
		}
	}

	return closed
}

// GCI sums the realized commission of the given deals.
func GCI(deals []*deal.Deal) int64 {
	var gci int64

	for _, d := range deals {
		if d.RealizedCommission != nil {
			gci += *d.RealizedCommission
		}
	}

	return gci
}

// ExpensesIn sums the total cost of expenses dated within p.
func ExpensesIn(expenses []*expense.Expense, p Period) int64 {
	var total int64

	for _, e := range expenses {
		if p.Contains(e.Date) {
			total += e.TotalCost
		}
	}

	return total
}

// AverageCommission returns the mean realized commission of closed, or false
// when there are none.
func AverageCommission(closed []*deal.Deal) (int64, bool) {
	values := realized(closed)
	if len(values) == 0 {
		return 0, false
	}

	return int64(math.Round(stat.Mean(values, nil))), true
}

// CloseRate returns closed / total as a percentage, or false when there are no deals.
func CloseRate(closed, total int) (float64, bool) {
	if total == 0 {
		return 0, false
	}

	return float64(closed) / float64(total) * 100, true
}

// EstimatedTax applies the flat tax rate to net income. A loss owes nothing.
func EstimatedTax(netIncome int64, ratePct float64) int64 {
	if netIncome <= 0 {
		return 0
	}

	return decimal.NewFromInt(netIncome).
		Mul(decimal.NewFromFloat(ratePct)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

type MonthlyGCI struct {
	Month time.Time
	GCI   int64
}

type DashboardData struct {
	Period Period

	GCI           int64
	TotalExpenses int64
	NetIncome     int64
	EstimatedTax  int64

	ClosedDeals int
	OpenDeals   int
	TotalDeals  int

	// Nil when no deal closed in the period.
	AverageCommission *int64
	// Nil when there are no deals at all.
	CloseRatePct *float64
	// Nil when the annual goal is zero.
	GoalProgressPct *float64

	PipelineValue int64
	MonthlyGCI    []MonthlyGCI
}

// Dashboard computes the headline figures for p.
func Dashboard(deals []*deal.Deal, expenses []*expense.Expense, st settings.Settings, p Period) DashboardData {
	closed := ClosedIn(deals, p)
	gci := GCI(closed)
	spent := ExpensesIn(expenses, p)

	data := DashboardData{
		Period:        p,
		GCI:           gci,
		TotalExpenses: spent,
		NetIncome:     gci - spent,
		EstimatedTax:  EstimatedTax(gci-spent, st.EstimatedTaxRate),
		ClosedDeals:   len(closed),
		TotalDeals:    len(deals),
		PipelineValue: WeightedPipelineValue(deals),
		MonthlyGCI:    monthly(closed, p),
	}

	for _, d := range deals {
		if !d.IsClosed() {
			data.OpenDeals++
		}
	}

	if avg, ok := AverageCommission(closed); ok {
		data.AverageCommission = &avg
	}

	if rate, ok := CloseRate(len(closed), len(deals)); ok {
		data.CloseRatePct = &rate
	}

	if st.AnnualGCIGoal > 0 {
		progress := min(float64(gci)/float64(st.AnnualGCIGoal)*100, 100)
		data.GoalProgressPct = &progress
	}

	return data
}

func monthly(closed []*deal.Deal, p Period) []MonthlyGCI {
	months := p.Months()
	series := make([]MonthlyGCI, len(months))

	for i, m := range months {
		series[i].Month = m
	}

	for _, d := range closed {
		if d.RealizedCommission == nil {
			continue
		}

		at := day(*d.ClosedAt)
		for i, m := range months {
			if at.Year() == m.Year() && at.Month() == m.Month() {
				series[i].GCI += *d.RealizedCommission
				break
			}
		}
	}

	return series
}

// Averages holds the observed mean realized commission per side.
// A nil value means no closed deal of that side exists.
type Averages struct {
	Buyer  *int64
	Seller *int64
}

// ObservedAverages computes the mean realized commission of closed buyer and
// seller deals. The settings averages stay authoritative for goal projections.
func ObservedAverages(deals []*deal.Deal) Averages {
	var buyers, sellers []*deal.Deal

	for _, d := range deals {
		if !d.IsClosed() {
			continue
		}

		if d.IsSeller() {
			sellers = append(sellers, d)
		} else {
			buyers = append(buyers, d)
		}
	}

	var avg Averages

	if v, ok := AverageCommission(buyers); ok {
		avg.Buyer = &v
	}

	if v, ok := AverageCommission(sellers); ok {
		avg.Seller = &v
	}

	return avg
}

func realized(deals []*deal.Deal) []float64 {
	values := make([]float64, 0, len(deals))

	for _, d := range deals {
		if d.RealizedCommission != nil {
			values = append(values, float64(*d.RealizedCommission))
		}
	}

	return values
}
