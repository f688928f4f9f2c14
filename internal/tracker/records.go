package tracker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/closer/internal/activity"
	"github.com/MrJamesThe3rd/closer/internal/deal"
	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/storage"
)

// Stored record shapes. Each collection is persisted as a JSON array of these.

type dealRecord struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Property            string     `json:"property"`
	Side                deal.Side  `json:"side"`
	Stage               deal.Stage `json:"stage"`
	StageEnteredAt      time.Time  `json:"stage_entered_at"`
	CloseProbabilityBps int        `json:"close_probability_bps"`
	ExpectedCommission  int64      `json:"expected_commission"`
	RealizedCommission  *int64     `json:"realized_commission,omitempty"`
	ListPrice           *int64     `json:"list_price,omitempty"`
	CommissionRatePct   *float64   `json:"commission_rate_pct,omitempty"`
	ListingDate         *time.Time `json:"listing_date,omitempty"`
	ClosedPrice         *int64     `json:"closed_price,omitempty"`
	DaysOnMarket        *int       `json:"days_on_market,omitempty"`
	PriceVariance       *int64     `json:"price_variance,omitempty"`
	LeadSource          string     `json:"lead_source,omitempty"`
	OtherLeadSource     string     `json:"other_lead_source,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	ClosedAt            *time.Time `json:"closed_at,omitempty"`
}

type expenseRecord struct {
	ID                string           `json:"id"`
	DealID            *string          `json:"deal_id,omitempty"`
	Kind              expense.Kind     `json:"kind"`
	Category          expense.Category `json:"category"`
	Date              time.Time        `json:"date"`
	Notes             string           `json:"notes,omitempty"`
	Quantity          float64          `json:"quantity"`
	CostPerUnit       int64            `json:"cost_per_unit"`
	MilesDriven       float64          `json:"miles_driven"`
	MilesPerGallon    float64          `json:"miles_per_gallon"`
	GasPricePerGallon int64            `json:"gas_price_per_gallon"`
	GallonsUsed       float64          `json:"gallons_used"`
	FuelCost          int64            `json:"fuel_cost"`
	TotalCost         int64            `json:"total_cost"`
}

type activityRecord struct {
	ID       string            `json:"id"`
	DealID   *string           `json:"deal_id,omitempty"`
	Date     time.Time         `json:"date"`
	Category activity.Category `json:"category"`
	Notes    string            `json:"notes,omitempty"`
}

func encodeDeals(deals []*deal.Deal) ([]byte, error) {
	records := make([]dealRecord, len(deals))
	for i, d := range deals {
		records[i] = dealRecord(*d)
	}

	return json.Marshal(records)
}

func decodeDeals(payload []byte) ([]*deal.Deal, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	var records []dealRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decoding deals: %w", err)
	}

	deals := make([]*deal.Deal, len(records))
	for i, r := range records {
		d := deal.Deal(r)
		deals[i] = &d
	}

	return deals, nil
}

func encodeExpenses(expenses []*expense.Expense) ([]byte, error) {
	records := make([]expenseRecord, len(expenses))
	for i, e := range expenses {
		records[i] = expenseRecord(*e)
	}

	return json.Marshal(records)
}

// decodeExpenses re-derives every total so a hand-edited payload cannot
// carry a total that disagrees with its inputs.
func decodeExpenses(payload []byte) ([]*expense.Expense, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	var records []expenseRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decoding expenses: %w", err)
	}

	expenses := make([]*expense.Expense, len(records))
	for i, r := range records {
		e := expense.Expense(r)
		e.Derive()
		expenses[i] = &e
	}

	return expenses, nil
}

func encodeActivities(activities []*activity.Activity) ([]byte, error) {
	records := make([]activityRecord, len(activities))
	for i, a := range activities {
		records[i] = activityRecord(*a)
	}

	return json.Marshal(records)
}

func decodeActivities(payload []byte) ([]*activity.Activity, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	var records []activityRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decoding activities: %w", err)
	}

	activities := make([]*activity.Activity, len(records))
	for i, r := range records {
		a := activity.Activity(r)
		activities[i] = &a
	}

	return activities, nil
}

// Encode renders snap as the payloads of the deal, expense and activity collections.
func Encode(snap Snapshot) (map[storage.Collection][]byte, error) {
	deals, err := encodeDeals(snap.Deals)
	if err != nil {
		return nil, fmt.Errorf("encoding deals: %w", err)
	}

	expenses, err := encodeExpenses(snap.Expenses)
	if err != nil {
		return nil, fmt.Errorf("encoding expenses: %w", err)
	}

	activities, err := encodeActivities(snap.Activities)
	if err != nil {
		return nil, fmt.Errorf("encoding activities: %w", err)
	}

	return map[storage.Collection][]byte{
		storage.Deals:      deals,
		storage.Expenses:   expenses,
		storage.Activities: activities,
	}, nil
}
