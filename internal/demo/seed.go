package demo

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/MrJamesThe3rd/closer/internal/activity"
	"github.com/MrJamesThe3rd/closer/internal/deal"
	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

//go:embed seed.toml
var seedTOML string

type seedFile struct {
	GeneratedBuyerLeads int            `toml:"generated_buyer_leads"`
	LeadSources         []string       `toml:"lead_sources"`
	Deals               []seedDeal     `toml:"deals"`
	Expenses            []seedExpense  `toml:"expenses"`
	Activities          []seedActivity `toml:"activities"`
}

type seedDeal struct {
	ID                  string     `toml:"id"`
	Name                string     `toml:"name"`
	Property            string     `toml:"property"`
	Side                deal.Side  `toml:"side"`
	Stage               deal.Stage `toml:"stage"`
	StageEnteredDaysAgo int        `toml:"stage_entered_days_ago"`
	CreatedDaysAgo      int        `toml:"created_days_ago"`
	ClosedDaysAgo       *int       `toml:"closed_days_ago"`
	LeadSource          string     `toml:"lead_source"`
	Notes               string     `toml:"notes"`
	ExpectedCommission  int64      `toml:"expected_commission"`
	RealizedCommission  *int64     `toml:"realized_commission"`
	ListPrice           *int64     `toml:"list_price"`
	CommissionRatePct   *float64   `toml:"commission_rate_pct"`
	ListingDaysAgo      *int       `toml:"listing_days_ago"`
	ClosedPrice         *int64     `toml:"closed_price"`
}

type seedExpense struct {
	ID          string           `toml:"id"`
	DealID      string           `toml:"deal_id"`
	Category    expense.Category `toml:"category"`
	DaysAgo     int              `toml:"days_ago"`
	Quantity    float64          `toml:"quantity"`
	CostPerUnit int64            `toml:"cost_per_unit"`
	Notes       string           `toml:"notes"`
}

type seedActivity struct {
	ID       string            `toml:"id"`
	DealID   string            `toml:"deal_id"`
	Category activity.Category `toml:"category"`
	DaysAgo  int               `toml:"days_ago"`
	Notes    string            `toml:"notes"`
}

// Seed materialises the embedded demo dataset relative to now.
func Seed(now time.Time) (tracker.Snapshot, error) {
	var f seedFile
	if _, err := toml.Decode(seedTOML, &f); err != nil {
		return tracker.Snapshot{}, fmt.Errorf("parsing demo seed: %w", err)
	}

	daysAgo := func(n int) time.Time { return now.AddDate(0, 0, -n) }

	var snap tracker.Snapshot

	for i := 1; i <= f.GeneratedBuyerLeads; i++ {
		source := f.LeadSources[i%len(f.LeadSources)]
		stageEntered := daysAgo(i % 10)

		snap.Deals = append(snap.Deals, &deal.Deal{
			ID:                  fmt.Sprintf("demo-buyer-lead-%d", i),
			Name:                fmt.Sprintf("Buyer Lead %d - %s", i, source),
			Property:            "Search in progress",
			Side:                deal.SideBuyer,
			Stage:               deal.StageLead,
			StageEnteredAt:      stageEntered,
			CloseProbabilityBps: deal.DefaultProbability(deal.StageLead),
			ExpectedCommission:  1_200_000,
			LeadSource:          source,
			Notes:               "Initial inquiry via web form.",
			CreatedAt:           stageEntered.AddDate(0, 0, -(i % 20)),
		})
	}

	for _, sd := range f.Deals {
		d := &deal.Deal{
			ID:                  sd.ID,
			Name:                sd.Name,
			Property:            sd.Property,
			Side:                sd.Side,
			Stage:               sd.Stage,
			StageEnteredAt:      daysAgo(sd.StageEnteredDaysAgo),
			CloseProbabilityBps: deal.DefaultProbability(sd.Stage),
			ExpectedCommission:  sd.ExpectedCommission,
			RealizedCommission:  sd.RealizedCommission,
			ListPrice:           sd.ListPrice,
			CommissionRatePct:   sd.CommissionRatePct,
			ClosedPrice:         sd.ClosedPrice,
			LeadSource:          sd.LeadSource,
			Notes:               sd.Notes,
			CreatedAt:           daysAgo(sd.CreatedDaysAgo),
		}

		if sd.ListingDaysAgo != nil {
			d.ListingDate = new(daysAgo(*sd.ListingDaysAgo))
		}

		if sd.ClosedDaysAgo != nil {
			d.ClosedAt = new(daysAgo(*sd.ClosedDaysAgo))
		}

		d.ApplySellerDerivations()

		if d.IsClosed() && d.IsSeller() {
			if days, ok := deal.ComputeDaysOnMarket(d, now); ok {
				d.DaysOnMarket = new(days)
			}

			if variance, ok := deal.ComputePriceVariance(d); ok {
				d.PriceVariance = new(variance)
			}
		}

		if err := d.Validate(); err != nil {
			return tracker.Snapshot{}, fmt.Errorf("demo deal %s: %w", d.ID, err)
		}

		snap.Deals = append(snap.Deals, d)
	}

	for _, se := range f.Expenses {
		e := &expense.Expense{
			ID:          se.ID,
			Kind:        expense.KindStandard,
			Category:    se.Category,
			Date:        daysAgo(se.DaysAgo),
			Notes:       se.Notes,
			Quantity:    se.Quantity,
			CostPerUnit: se.CostPerUnit,
		}

		if se.DealID != "" {
			e.DealID = new(se.DealID)
		}

		e.Derive()

		snap.Expenses = append(snap.Expenses, e)
	}

	for _, sa := range f.Activities {
		a := &activity.Activity{
			ID:       sa.ID,
			Category: sa.Category,
			Date:     daysAgo(sa.DaysAgo),
			Notes:    sa.Notes,
		}

		if sa.DealID != "" {
			a.DealID = new(sa.DealID)
		}

		snap.Activities = append(snap.Activities, a)
	}

	return snap, nil
}
