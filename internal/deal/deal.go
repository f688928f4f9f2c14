package deal

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("deal not found")

// Side represents which party of the transaction the agent represents.
type Side string

const (
	SideBuyer  Side = "BUYER"
	SideSeller Side = "SELLER"
)

func (s Side) Valid() bool {
	return s == SideBuyer || s == SideSeller
}

// Stage represents the position of a deal in the pipeline.
type Stage string

const (
	StageLead            Stage = "LEAD"
	StageInitialContact  Stage = "INITIAL_CONTACT"
	StageShowingOrActive Stage = "SHOWING_OR_ACTIVE"
	StageUnderContract   Stage = "UNDER_CONTRACT"
	StagePendingClose    Stage = "PENDING_CLOSE"
	StageClosed          Stage = "CLOSED"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{
	StageLead,
	StageInitialContact,
	StageShowingOrActive,
	StageUnderContract,
	StagePendingClose,
	StageClosed,
}

// Index returns the position of the stage in the pipeline, or -1 for unknown stages.
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}

	return -1
}

func (s Stage) Valid() bool {
	return s.Index() >= 0
}

func (s Stage) Label() string {
	switch s {
	case StageLead:
		return "Lead"
	case StageInitialContact:
		return "Initial Contact"
	case StageShowingOrActive:
		return "Active / Showing"
	case StageUnderContract:
		return "Under Contract"
	case StagePendingClose:
		return "Pending Close"
	case StageClosed:
		return "Closed"
	}

	return string(s)
}

// LeadSources are the lead sources offered by the forms. Other values are accepted as-is.
var LeadSources = []string{
	"Zillow",
	"Zillow Preferred",
	"Realtor.com",
	"Referral",
	"SOI",
	"Open House",
	"Ad Calls",
	"Farming",
	"Other",
}

// Deal represents a single buyer or seller transaction.
// Money amounts are in cents.
type Deal struct {
	ID       string
	Name     string // client identifier
	Property string // property address or other location identifier
	Side     Side
	Stage    Stage

	StageEnteredAt      time.Time
	CloseProbabilityBps int

	ExpectedCommission int64
	RealizedCommission *int64 // set iff Stage == StageClosed

	// Seller-only listing fields.
	ListPrice         *int64
	CommissionRatePct *float64
	ListingDate       *time.Time
	ClosedPrice       *int64
	DaysOnMarket      *int   // frozen when the deal closes
	PriceVariance     *int64 // frozen when the deal closes: ClosedPrice - ListPrice

	LeadSource      string
	OtherLeadSource string
	Notes           string

	CreatedAt time.Time
	ClosedAt  *time.Time // set once, the first time the deal closes
}

func (d *Deal) IsClosed() bool {
	return d.Stage == StageClosed
}

func (d *Deal) IsSeller() bool {
	return d.Side == SideSeller
}

// Clone returns a deep copy of the deal.
func (d *Deal) Clone() *Deal {
	c := *d
	c.RealizedCommission = clonePtr(d.RealizedCommission)
	c.ListPrice = clonePtr(d.ListPrice)
	c.CommissionRatePct = clonePtr(d.CommissionRatePct)
	c.ListingDate = clonePtr(d.ListingDate)
	c.ClosedPrice = clonePtr(d.ClosedPrice)
	c.DaysOnMarket = clonePtr(d.DaysOnMarket)
	c.PriceVariance = clonePtr(d.PriceVariance)
	c.ClosedAt = clonePtr(d.ClosedAt)

	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}
