package expense_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/validation"
)

func TestExpense_Derive(t *testing.T) {
	type testCase struct {
		name        string
		expense     expense.Expense
		wantTotal   int64
		wantGallons float64
		wantCat     expense.Category
	}

	tests := []testCase{
		{
			name: "mileage",
			expense: expense.Expense{
				Kind:              expense.KindMileage,
				Category:          expense.CategoryFood,
				MilesDriven:       100,
				MilesPerGallon:    25,
				GasPricePerGallon: 350,
			},
			wantTotal:   1400,
			wantGallons: 4,
			wantCat:     expense.CategoryMileage,
		},
		{
			name: "mileage rounds to the cent",
			expense: expense.Expense{
				Kind:              expense.KindMileage,
				MilesDriven:       10,
				MilesPerGallon:    3,
				GasPricePerGallon: 100,
			},
			wantTotal:   333,
			wantGallons: 10.0 / 3.0,
			wantCat:     expense.CategoryMileage,
		},
		{
			name: "zero mpg yields zero",
			expense: expense.Expense{
				Kind:              expense.KindMileage,
				MilesDriven:       10,
				GasPricePerGallon: 350,
			},
			wantTotal: 0,
			wantCat:   expense.CategoryMileage,
		},
		{
			name: "standard",
			expense: expense.Expense{
				Kind:        expense.KindStandard,
				Category:    expense.CategoryStaging,
				Quantity:    3,
				CostPerUnit: 12550,
				MilesDriven: 40,
			},
			wantTotal: 37650,
			wantCat:   expense.CategoryStaging,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.expense
			e.TotalCost = 999999

			e.Derive()

			assert.Equal(t, tt.wantTotal, e.TotalCost)
			assert.InDelta(t, tt.wantGallons, e.GallonsUsed, 1e-9)
			assert.Equal(t, tt.wantCat, e.Category)

			if e.Kind == expense.KindStandard {
				assert.Zero(t, e.MilesDriven)
			}
		})
	}
}

func TestExpense_MileageEditKeepsTotalDerived(t *testing.T) {
	e := expense.Expense{
		Kind:              expense.KindMileage,
		MilesDriven:       100,
		MilesPerGallon:    25,
		GasPricePerGallon: 350,
	}
	e.Derive()
	require.Equal(t, int64(1400), e.TotalCost)

	e.MilesDriven = 50
	e.Derive()
	assert.Equal(t, int64(700), e.TotalCost)

	e.MilesPerGallon = 50
	e.Derive()
	assert.Equal(t, int64(350), e.TotalCost)

	e.GasPricePerGallon = 400
	e.Derive()
	assert.Equal(t, int64(400), e.TotalCost)
	assert.Equal(t, e.FuelCost, e.TotalCost)
}

func TestExpense_Validate(t *testing.T) {
	date := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expense   expense.Expense
		wantField string
	}{
		{
			name:    "valid standard",
			expense: expense.Expense{Kind: expense.KindStandard, Category: expense.CategoryOther, Date: date, Quantity: 1, CostPerUnit: 100},
		},
		{
			name:      "zero cost",
			expense:   expense.Expense{Kind: expense.KindStandard, Category: expense.CategoryOther, Date: date, Quantity: 0, CostPerUnit: 100},
			wantField: "total_cost",
		},
		{
			name:      "negative quantity and unit cost",
			expense:   expense.Expense{Kind: expense.KindStandard, Category: expense.CategoryOther, Date: date, Quantity: -2, CostPerUnit: -500},
			wantField: "quantity",
		},
		{
			name:      "negative unit cost",
			expense:   expense.Expense{Kind: expense.KindStandard, Category: expense.CategoryOther, Date: date, Quantity: 1, CostPerUnit: -500},
			wantField: "total_cost",
		},
		{
			name:      "missing date",
			expense:   expense.Expense{Kind: expense.KindStandard, Category: expense.CategoryOther, Quantity: 1, CostPerUnit: 100},
			wantField: "date",
		},
		{
			name:      "unknown category",
			expense:   expense.Expense{Kind: expense.KindStandard, Category: "yachts", Date: date, Quantity: 1, CostPerUnit: 100},
			wantField: "category",
		},
		{
			name:      "unknown kind",
			expense:   expense.Expense{Kind: "BARTER", Category: expense.CategoryOther, Date: date},
			wantField: "kind",
		},
		{
			name:      "no miles",
			expense:   expense.Expense{Kind: expense.KindMileage, Date: date, MilesPerGallon: 25, GasPricePerGallon: 350},
			wantField: "miles_driven",
		},
		{
			name:      "no mpg",
			expense:   expense.Expense{Kind: expense.KindMileage, Date: date, MilesDriven: 10, GasPricePerGallon: 350},
			wantField: "miles_per_gallon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.expense
			e.Derive()

			err := e.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var verr *validation.Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestExpense_LinkedTo(t *testing.T) {
	e := expense.Expense{DealID: new("d1")}
	assert.True(t, e.LinkedTo("d1"))
	assert.False(t, e.LinkedTo("d2"))
	assert.False(t, (&expense.Expense{}).LinkedTo("d1"))
}
