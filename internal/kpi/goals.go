package kpi

import (
	"math"

	"github.com/MrJamesThe3rd/closer/internal/settings"
)

// GoalsData projects the activity needed to reach the annual GCI goal.
// Nil fields are not applicable because their denominator is zero.
type GoalsData struct {
	AverageCommission float64

	DealsPerYear        *float64
	DealsPerYearRounded *int
	DealsPerMonth       *float64

	// Appointments are derived from the rounded deal count.
	AppointmentsPerYear        *float64
	AppointmentsPerYearRounded *int
	AppointmentsPerMonth       *int
}

// Goals derives the required deals and appointments from the settings.
func Goals(st settings.Settings) GoalsData {
	avg := float64(st.AvgBuyerCommission+st.AvgSellerCommission) / 2

	g := GoalsData{AverageCommission: avg}

	deals, ok := RequiredDeals(st.AnnualGCIGoal, avg)
	if !ok {
		return g
	}

	rounded := int(math.Ceil(deals))
	g.DealsPerYear = &deals
	g.DealsPerYearRounded = &rounded
	g.DealsPerMonth = new(deals / 12)

	appts, ok := RequiredAppointments(rounded, st.TargetCloseRate)
	if !ok {
		return g
	}

	g.AppointmentsPerYear = &appts
	g.AppointmentsPerYearRounded = new(int(math.Ceil(appts)))
	g.AppointmentsPerMonth = new(int(math.Ceil(appts / 12)))

	return g
}

// RequiredDeals returns goal / averageCommission, or false when the average is zero.
func RequiredDeals(goal int64, averageCommission float64) (float64, bool) {
	if averageCommission <= 0 {
		return 0, false
	}

	return float64(goal) / averageCommission, true
}

// RequiredAppointments returns deals / (closeRatePct / 100), or false when the rate is zero.
func RequiredAppointments(deals int, closeRatePct float64) (float64, bool) {
	if closeRatePct <= 0 {
		return 0, false
	}

	return float64(deals) / (closeRatePct / 100), true
}
