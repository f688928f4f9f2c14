package deal

import (
	"strings"
	"time"

	"github.com/MrJamesThe3rd/closer/internal/validation"
)

// MaxProbabilityBps is 100% expressed in basis points.
const MaxProbabilityBps = 10000

// DefaultProbability returns the close probability a deal receives when it enters stage.
func DefaultProbability(stage Stage) int {
	switch stage {
	case StageLead:
		return 1000
	case StageInitialContact:
		return 2000
	case StageShowingOrActive:
		return 5000
	case StageUnderContract:
		return 9000
	case StagePendingClose:
		return 9500
	case StageClosed:
		return MaxProbabilityBps
	}

	return 0
}

// SetStage moves the deal to stage and runs the transition bookkeeping.
// It returns false and leaves the deal untouched when the stage does not change.
func (d *Deal) SetStage(stage Stage, now time.Time) bool {
	if stage == d.Stage {
		return false
	}

	leavingClosed := d.Stage == StageClosed

	d.Stage = stage
	d.StageEnteredAt = now
	d.CloseProbabilityBps = DefaultProbability(stage)

	// A reopened deal has no closing outcome; days on market run again.
	if leavingClosed {
		d.RealizedCommission = nil
		d.ClosedPrice = nil
		d.DaysOnMarket = nil
		d.PriceVariance = nil
	}

	if stage == StageClosed && d.ClosedAt == nil {
		d.ClosedAt = new(now)
	}

	if d.IsSeller() {
		if stage == StageShowingOrActive && d.ListingDate == nil {
			d.ListingDate = new(now)
		}

		if stage == StageClosed {
			d.freezeListingOutcome()
		}
	}

	return true
}

// freezeListingOutcome records days on market and price variance from the fields known at close.
// Missing inputs leave the corresponding field unset.
func (d *Deal) freezeListingOutcome() {
	d.DaysOnMarket = nil
	d.PriceVariance = nil

	if days, ok := ComputeDaysOnMarket(d, *d.ClosedAt); ok {
		d.DaysOnMarket = new(days)
	}

	if variance, ok := ComputePriceVariance(d); ok {
		d.PriceVariance = new(variance)
	}
}

// ApplySellerDerivations syncs the expected commission of a seller deal from its
// list price and commission rate. Buyer deals keep the value they were given.
func (d *Deal) ApplySellerDerivations() {
	if !d.IsSeller() || d.ListPrice == nil || d.CommissionRatePct == nil {
		return
	}

	d.ExpectedCommission = ExpectedSellerCommission(*d.ListPrice, *d.CommissionRatePct)
}

// Validate checks the fields required to save the deal in its current stage.
func (d *Deal) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return validation.New("name", "client name is required")
	}

	if strings.TrimSpace(d.Property) == "" {
		return validation.New("property", "property address is required")
	}

	if !d.Side.Valid() {
		return validation.New("side", "must be BUYER or SELLER")
	}

	if !d.Stage.Valid() {
		return validation.New("stage", "unknown stage")
	}

	if d.CloseProbabilityBps < 0 || d.CloseProbabilityBps > MaxProbabilityBps {
		return validation.New("close_probability_bps", "must be between 0 and 10000")
	}

	if d.ExpectedCommission < 0 {
		return validation.New("expected_commission", "must not be negative")
	}

	if d.ListPrice != nil && *d.ListPrice < 0 {
		return validation.New("list_price", "must not be negative")
	}

	if d.ClosedPrice != nil && *d.ClosedPrice < 0 {
		return validation.New("closed_price", "must not be negative")
	}

	if d.CommissionRatePct != nil && (*d.CommissionRatePct < 0 || *d.CommissionRatePct > 100) {
		return validation.New("commission_rate_pct", "must be between 0 and 100")
	}

	if d.Stage != StageClosed {
		if d.RealizedCommission != nil {
			return validation.New("realized_commission", "only closed deals have a realized commission")
		}

		return nil
	}

	if d.RealizedCommission == nil || *d.RealizedCommission <= 0 {
		return validation.New("realized_commission", "closed deals require a positive realized commission")
	}

	if d.IsSeller() && d.ClosedPrice == nil {
		return validation.New("closed_price", "closed seller deals require a closed price")
	}

	return nil
}
