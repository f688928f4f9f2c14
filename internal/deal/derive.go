package deal

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// ExpectedSellerCommission returns listPrice × ratePct / 100, rounded to the cent.
func ExpectedSellerCommission(listPrice int64, ratePct float64) int64 {
	return decimal.NewFromInt(listPrice).
		Mul(decimal.NewFromFloat(ratePct)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// ComputeDaysOnMarket returns the number of days a seller listing has been active.
// The listing ends at ClosedAt for closed deals and at now otherwise.
// It is only defined for seller deals with a listing date.
func ComputeDaysOnMarket(d *Deal, now time.Time) (int, bool) {
	if !d.IsSeller() || d.ListingDate == nil {
		return 0, false
	}

	end := now
	if d.IsClosed() && d.ClosedAt != nil {
		end = *d.ClosedAt
	}

	elapsed := end.Sub(*d.ListingDate)
	if elapsed < 0 {
		elapsed = -elapsed
	}

	days := int(math.Ceil(float64(elapsed) / float64(day)))

	return max(days, 0), true
}

// ComputePriceVariance returns ClosedPrice - ListPrice for seller deals where both are known.
func ComputePriceVariance(d *Deal) (int64, bool) {
	if !d.IsSeller() || d.ClosedPrice == nil || d.ListPrice == nil {
		return 0, false
	}

	return *d.ClosedPrice - *d.ListPrice, true
}

// SaleToListRatio returns ClosedPrice / ListPrice as a percentage.
// It is only defined for closed seller deals with both prices and a non-zero list price.
func SaleToListRatio(d *Deal) (float64, bool) {
	if !d.IsSeller() || !d.IsClosed() || d.ClosedPrice == nil || d.ListPrice == nil || *d.ListPrice == 0 {
		return 0, false
	}

	ratio, _ := decimal.NewFromInt(*d.ClosedPrice).
		Div(decimal.NewFromInt(*d.ListPrice)).
		Mul(decimal.NewFromInt(100)).
		Float64()

	return ratio, true
}

// WeightedValue returns the expected commission weighted by the close probability.
func WeightedValue(d *Deal) int64 {
	return decimal.NewFromInt(d.ExpectedCommission).
		Mul(decimal.NewFromInt(int64(d.CloseProbabilityBps))).
		Div(decimal.NewFromInt(MaxProbabilityBps)).
		Round(0).
		IntPart()
}
