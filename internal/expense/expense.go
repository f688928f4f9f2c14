package expense

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/closer/internal/validation"
)

var ErrNotFound = errors.New("expense not found")

// Kind distinguishes plain cost entries from fuel costs derived from mileage.
type Kind string

const (
	KindStandard Kind = "STANDARD"
	KindMileage  Kind = "MILEAGE"
)

func (k Kind) Valid() bool {
	return k == KindStandard || k == KindMileage
}

type Category string

const (
	CategoryPhotography Category = "photography"
	CategoryPhotoVideo  Category = "photo_video"
	CategoryStaging     Category = "staging"
	CategoryMarketing   Category = "marketing"
	CategoryClientMeals Category = "client_meals"
	CategoryEquipment   Category = "equipment"
	CategoryCleanOut    Category = "clean_out"
	CategoryFood        Category = "food"
	CategoryMileage     Category = "mileage"
	CategoryOther       Category = "other"
)

var Categories = []Category{
	CategoryPhotography,
	CategoryPhotoVideo,
	CategoryStaging,
	CategoryMarketing,
	CategoryClientMeals,
	CategoryEquipment,
	CategoryCleanOut,
	CategoryFood,
	CategoryMileage,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, cat := range Categories {
		if cat == c {
			return true
		}
	}

	return false
}

func (c Category) Label() string {
	switch c {
	case CategoryPhotography:
		return "Professional Photography"
	case CategoryPhotoVideo:
		return "Photography + Video"
	case CategoryStaging:
		return "Professional Staging"
	case CategoryMarketing:
		return "Marketing & Advertising"
	case CategoryClientMeals:
		return "Client Meals"
	case CategoryEquipment:
		return "Equipment Rental"
	case CategoryCleanOut:
		return "Clean Out Crew"
	case CategoryFood:
		return "Food"
	case CategoryMileage:
		return "Mileage (Fuel)"
	case CategoryOther:
		return "Other Expense"
	}

	return string(c)
}

// Expense represents a cost entry, optionally linked to a deal.
// Money amounts are in cents.
type Expense struct {
	ID       string
	DealID   *string
	Kind     Kind
	Category Category
	Date     time.Time
	Notes    string

	// Standard inputs.
	Quantity    float64
	CostPerUnit int64

	// Mileage inputs.
	MilesDriven       float64
	MilesPerGallon    float64
	GasPricePerGallon int64

	// Derived by Derive; never accepted from input.
	GallonsUsed float64
	FuelCost    int64
	TotalCost   int64
}

// LinkedTo reports whether the expense references the given deal.
func (e *Expense) LinkedTo(dealID string) bool {
	return e.DealID != nil && *e.DealID == dealID
}

// Derive recomputes the derived fields from the inputs of the expense kind.
func (e *Expense) Derive() {
	switch e.Kind {
	case KindMileage:
		e.Category = CategoryMileage
		e.Quantity = 0
		e.CostPerUnit = 0
		e.GallonsUsed, e.FuelCost = FuelCost(e.MilesDriven, e.MilesPerGallon, e.GasPricePerGallon)
		e.TotalCost = e.FuelCost
	default:
		e.MilesDriven = 0
		e.MilesPerGallon = 0
		e.GasPricePerGallon = 0
		e.GallonsUsed = 0
		e.FuelCost = 0
		e.TotalCost = StandardCost(e.Quantity, e.CostPerUnit)
	}
}

// StandardCost returns quantity × costPerUnit, rounded to the cent.
func StandardCost(quantity float64, costPerUnit int64) int64 {
	return decimal.NewFromFloat(quantity).
		Mul(decimal.NewFromInt(costPerUnit)).
		Round(0).
		IntPart()
}

// FuelCost returns the gallons burned over miles and their cost in cents.
// A non-positive mpg yields zero rather than a division error.
func FuelCost(miles, mpg float64, gasPrice int64) (float64, int64) {
	if mpg <= 0 {
		return 0, 0
	}

	gallons := decimal.NewFromFloat(miles).Div(decimal.NewFromFloat(mpg))
	cost := gallons.Mul(decimal.NewFromInt(gasPrice)).Round(0).IntPart()

	g, _ := gallons.Float64()

	return g, cost
}

// Validate checks the expense after Derive has run.
func (e *Expense) Validate() error {
	if !e.Kind.Valid() {
		return validation.New("kind", "must be STANDARD or MILEAGE")
	}

	if !e.Category.Valid() {
		return validation.New("category", "unknown category")
	}

	if e.Date.IsZero() {
		return validation.New("date", "date is required")
	}

	if e.Kind == KindMileage {
		if e.MilesDriven <= 0 {
			return validation.New("miles_driven", "miles driven must be greater than 0")
		}

		if e.MilesPerGallon <= 0 {
			return validation.New("miles_per_gallon", "miles per gallon must be greater than 0")
		}
	}

	if e.TotalCost <= 0 {
		return validation.New("total_cost", "total cost must be greater than 0")
	}

	// Two negative inputs still multiply to a positive total.
	if e.Kind == KindStandard {
		if e.Quantity <= 0 {
			return validation.New("quantity", "quantity must be greater than 0")
		}

		if e.CostPerUnit <= 0 {
			return validation.New("cost_per_unit", "cost per unit must be greater than 0")
		}
	}

	return nil
}

func (e *Expense) Clone() *Expense {
	c := *e
	if e.DealID != nil {
		c.DealID = new(*e.DealID)
	}

	return &c
}
