// Package dto holds the JSON shapes shared by the API handlers.
// Values that do not apply to a record are encoded as null.
package dto

import (
	"time"

	"github.com/MrJamesThe3rd/closer/internal/activity"
	"github.com/MrJamesThe3rd/closer/internal/deal"
	"github.com/MrJamesThe3rd/closer/internal/expense"
)

type Deal struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Property            string     `json:"property"`
	Side                deal.Side  `json:"side"`
	Stage               deal.Stage `json:"stage"`
	StageLabel          string     `json:"stage_label"`
	StageEnteredAt      time.Time  `json:"stage_entered_at"`
	CloseProbabilityBps int        `json:"close_probability_bps"`
	ExpectedCommission  int64      `json:"expected_commission"`
	WeightedValue       int64      `json:"weighted_value"`
	RealizedCommission  *int64     `json:"realized_commission"`
	ListPrice           *int64     `json:"list_price"`
	CommissionRatePct   *float64   `json:"commission_rate_pct"`
	ListingDate         *time.Time `json:"listing_date"`
	ClosedPrice         *int64     `json:"closed_price"`
	DaysOnMarket        *int       `json:"days_on_market"`
	PriceVariance       *int64     `json:"price_variance"`
	SaleToListRatio     *float64   `json:"sale_to_list_ratio"`
	LeadSource          string     `json:"lead_source"`
	OtherLeadSource     string     `json:"other_lead_source"`
	Notes               string     `json:"notes"`
	CreatedAt           time.Time  `json:"created_at"`
	ClosedAt            *time.Time `json:"closed_at"`
}

// FromDeal converts d. Open seller listings report their days on market as of now.
func FromDeal(d *deal.Deal, now time.Time) Deal {
	resp := Deal{
		ID:                  d.ID,
		Name:                d.Name,
		Property:            d.Property,
		Side:                d.Side,
		Stage:               d.Stage,
		StageLabel:          d.Stage.Label(),
		StageEnteredAt:      d.StageEnteredAt,
		CloseProbabilityBps: d.CloseProbabilityBps,
		ExpectedCommission:  d.ExpectedCommission,
		WeightedValue:       deal.WeightedValue(d),
		RealizedCommission:  d.RealizedCommission,
		ListPrice:           d.ListPrice,
		CommissionRatePct:   d.CommissionRatePct,
		ListingDate:         d.ListingDate,
		ClosedPrice:         d.ClosedPrice,
		DaysOnMarket:        d.DaysOnMarket,
		PriceVariance:       d.PriceVariance,
		LeadSource:          d.LeadSource,
		OtherLeadSource:     d.OtherLeadSource,
		Notes:               d.Notes,
		CreatedAt:           d.CreatedAt,
		ClosedAt:            d.ClosedAt,
	}

	if resp.DaysOnMarket == nil && !d.IsClosed() {
		if dom, ok := deal.ComputeDaysOnMarket(d, now); ok {
			resp.DaysOnMarket = new(dom)
		}
	}

	if ratio, ok := deal.SaleToListRatio(d); ok {
		resp.SaleToListRatio = new(ratio)
	}

	return resp
}

func FromDeals(deals []*deal.Deal, now time.Time) []Deal {
	resp := make([]Deal, len(deals))
	for i, d := range deals {
		resp[i] = FromDeal(d, now)
	}

	return resp
}

type Expense struct {
	ID                string           `json:"id"`
	DealID            *string          `json:"deal_id"`
	Kind              expense.Kind     `json:"kind"`
	Category          expense.Category `json:"category"`
	CategoryLabel     string           `json:"category_label"`
	Date              time.Time        `json:"date"`
	Notes             string           `json:"notes"`
	Quantity          *float64         `json:"quantity"`
	CostPerUnit       *int64           `json:"cost_per_unit"`
	MilesDriven       *float64         `json:"miles_driven"`
	MilesPerGallon    *float64         `json:"miles_per_gallon"`
	GasPricePerGallon *int64           `json:"gas_price_per_gallon"`
	GallonsUsed       *float64         `json:"gallons_used"`
	FuelCost          *int64           `json:"fuel_cost"`
	TotalCost         int64            `json:"total_cost"`
}

// FromExpense converts e. Inputs of the other expense kind are null.
func FromExpense(e *expense.Expense) Expense {
	resp := Expense{
		ID:            e.ID,
		DealID:        e.DealID,
		Kind:          e.Kind,
		Category:      e.Category,
		CategoryLabel: e.Category.Label(),
		Date:          e.Date,
		Notes:         e.Notes,
		TotalCost:     e.TotalCost,
	}

	switch e.Kind {
	case expense.KindMileage:
		resp.MilesDriven = new(e.MilesDriven)
		resp.MilesPerGallon = new(e.MilesPerGallon)
		resp.GasPricePerGallon = new(e.GasPricePerGallon)
		resp.GallonsUsed = new(e.GallonsUsed)
		resp.FuelCost = new(e.FuelCost)
	default:
		resp.Quantity = new(e.Quantity)
		resp.CostPerUnit = new(e.CostPerUnit)
	}

	return resp
}

func FromExpenses(expenses []*expense.Expense) []Expense {
	resp := make([]Expense, len(expenses))
	for i, e := range expenses {
		resp[i] = FromExpense(e)
	}

	return resp
}

type Activity struct {
	ID            string            `json:"id"`
	DealID        *string           `json:"deal_id"`
	Date          time.Time         `json:"date"`
	Category      activity.Category `json:"category"`
	CategoryLabel string            `json:"category_label"`
	Notes         string            `json:"notes"`
}

func FromActivity(a *activity.Activity) Activity {
	return Activity{
		ID:            a.ID,
		DealID:        a.DealID,
		Date:          a.Date,
		Category:      a.Category,
		CategoryLabel: a.Category.Label(),
		Notes:         a.Notes,
	}
}

func FromActivities(activities []*activity.Activity) []Activity {
	resp := make([]Activity, len(activities))
	for i, a := range activities {
		resp[i] = FromActivity(a)
	}

	return resp
}
