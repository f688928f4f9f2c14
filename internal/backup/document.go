package backup

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/MrJamesThe3rd/closer/internal/activity"
	"github.com/MrJamesThe3rd/closer/internal/deal"
	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/settings"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

const documentVersion = 1

// document is the msgpack layout of one backup object.
type document struct {
	Version    int           `msgpack:"version"`
	CreatedAt  time.Time     `msgpack:"created_at"`
	Deals      []dealDoc     `msgpack:"deals"`
	Expenses   []expenseDoc  `msgpack:"expenses"`
	Activities []activityDoc `msgpack:"activities"`
	Settings   settingsDoc   `msgpack:"settings"`
}

type dealDoc struct {
	ID                  string     `msgpack:"id"`
	Name                string     `msgpack:"name"`
	Property            string     `msgpack:"property"`
	Side                deal.Side  `msgpack:"side"`
	Stage               deal.Stage `msgpack:"stage"`
	StageEnteredAt      time.Time  `msgpack:"stage_entered_at"`
	CloseProbabilityBps int        `msgpack:"close_probability_bps"`
	ExpectedCommission  int64      `msgpack:"expected_commission"`
	RealizedCommission  *int64     `msgpack:"realized_commission"`
	ListPrice           *int64     `msgpack:"list_price"`
	CommissionRatePct   *float64   `msgpack:"commission_rate_pct"`
	ListingDate         *time.Time `msgpack:"listing_date"`
	ClosedPrice         *int64     `msgpack:"closed_price"`
	DaysOnMarket        *int       `msgpack:"days_on_market"`
	PriceVariance       *int64     `msgpack:"price_variance"`
	LeadSource          string     `msgpack:"lead_source"`
	OtherLeadSource     string     `msgpack:"other_lead_source"`
	Notes               string     `msgpack:"notes"`
	CreatedAt           time.Time  `msgpack:"created_at"`
	ClosedAt            *time.Time `msgpack:"closed_at"`
}

type expenseDoc struct {
	ID                string           `msgpack:"id"`
	DealID            *string          `msgpack:"deal_id"`
	Kind              expense.Kind     `msgpack:"kind"`
	Category          expense.Category `msgpack:"category"`
	Date              time.Time        `msgpack:"date"`
	Notes             string           `msgpack:"notes"`
	Quantity          float64          `msgpack:"quantity"`
	CostPerUnit       int64            `msgpack:"cost_per_unit"`
	MilesDriven       float64          `msgpack:"miles_driven"`
	MilesPerGallon    float64          `msgpack:"miles_per_gallon"`
	GasPricePerGallon int64            `msgpack:"gas_price_per_gallon"`
	GallonsUsed       float64          `msgpack:"gallons_used"`
	FuelCost          int64            `msgpack:"fuel_cost"`
	TotalCost         int64            `msgpack:"total_cost"`
}

type activityDoc struct {
	ID       string            `msgpack:"id"`
	DealID   *string           `msgpack:"deal_id"`
	Date     time.Time         `msgpack:"date"`
	Category activity.Category `msgpack:"category"`
	Notes    string            `msgpack:"notes"`
}

type settingsDoc struct {
	AnnualGCIGoal       int64   `msgpack:"annual_gci_goal"`
	TargetCloseRate     float64 `msgpack:"target_close_rate"`
	AvgBuyerCommission  int64   `msgpack:"avg_buyer_commission"`
	AvgSellerCommission int64   `msgpack:"avg_seller_commission"`
	EstimatedTaxRate    float64 `msgpack:"estimated_tax_rate"`
	DefaultMPG          float64 `msgpack:"default_mpg"`
	DefaultGasPrice     int64   `msgpack:"default_gas_price"`
}

func newDocument(createdAt time.Time, snap tracker.Snapshot, st settings.Settings) document {
	doc := document{
		Version:    documentVersion,
		CreatedAt:  createdAt,
		Deals:      make([]dealDoc, len(snap.Deals)),
		Expenses:   make([]expenseDoc, len(snap.Expenses)),
		Activities: make([]activityDoc, len(snap.Activities)),
		Settings:   settingsDoc(st),
	}

	for i, d := range snap.Deals {
		doc.Deals[i] = dealDoc(*d)
	}

	for i, e := range snap.Expenses {
		doc.Expenses[i] = expenseDoc(*e)
	}

	for i, a := range snap.Activities {
		doc.Activities[i] = activityDoc(*a)
	}

	return doc
}

// snapshot converts the document back, with every timestamp in UTC.
func (doc document) snapshot() (tracker.Snapshot, settings.Settings) {
	snap := tracker.Snapshot{
		Deals:      make([]*deal.Deal, len(doc.Deals)),
		Expenses:   make([]*expense.Expense, len(doc.Expenses)),
		Activities: make([]*activity.Activity, len(doc.Activities)),
	}

	for i, rec := range doc.Deals {
		d := deal.Deal(rec)
		d.StageEnteredAt = d.StageEnteredAt.UTC()
		d.CreatedAt = d.CreatedAt.UTC()
		d.ListingDate = utcPtr(d.ListingDate)
		d.ClosedAt = utcPtr(d.ClosedAt)
		snap.Deals[i] = &d
	}

	for i, rec := range doc.Expenses {
		e := expense.Expense(rec)
		e.Date = e.Date.UTC()
		snap.Expenses[i] = &e
	}

	for i, rec := range doc.Activities {
		a := activity.Activity(rec)
		a.Date = a.Date.UTC()
		snap.Activities[i] = &a
	}

	return snap, settings.Settings(doc.Settings)
}

func encode(doc document) ([]byte, error) {
	payload, err := msgpack.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("encoding backup: %w", err)
	}

	return payload, nil
}

func decode(payload []byte) (document, error) {
	var doc document
	if err := msgpack.Unmarshal(payload, &doc); err != nil {
		return document{}, fmt.Errorf("decoding backup: %w", err)
	}

	if doc.Version != documentVersion {
		return document{}, fmt.Errorf("decoding backup: unsupported version %d", doc.Version)
	}

	return doc, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	return new(t.UTC())
}
