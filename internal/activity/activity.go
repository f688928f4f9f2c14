package activity

import (
	"errors"
	"time"

	"github.com/MrJamesThe3rd/closer/internal/validation"
)

var ErrNotFound = errors.New("activity not found")

type Category string

const (
	CategorySepticInspection Category = "septic_inspection"
	CategoryHomeInspection   Category = "home_inspection"
	CategoryWalkthrough      Category = "walkthrough"
	CategoryClosing          Category = "closing"
	CategoryBuyerMeeting     Category = "buyer_meeting"
	CategorySellerMeeting    Category = "seller_meeting"
	CategoryShowing          Category = "showing"
	CategoryOpenHouse        Category = "open_house"
	CategoryNegotiation      Category = "negotiation"
	CategoryPaperwork        Category = "paperwork"
	CategoryOther            Category = "other"
)

var Categories = []Category{
	CategorySepticInspection,
	CategoryHomeInspection,
	CategoryWalkthrough,
	CategoryClosing,
	CategoryBuyerMeeting,
	CategorySellerMeeting,
	CategoryShowing,
	CategoryOpenHouse,
	CategoryNegotiation,
	CategoryPaperwork,
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
	case CategorySepticInspection:
		return "Septic Inspection"
	case CategoryHomeInspection:
		return "Home Inspection"
	case CategoryWalkthrough:
		return "Final Walkthrough"
	case CategoryClosing:
		return "Closing"
	case CategoryBuyerMeeting:
		return "Buyer Meeting"
	case CategorySellerMeeting:
		return "Seller Meeting"
	case CategoryShowing:
		return "Showing"
	case CategoryOpenHouse:
		return "Open House"
	case CategoryNegotiation:
		return "Negotiation"
	case CategoryPaperwork:
		return "Paperwork"
	case CategoryOther:
		return "Other"
	}

	return string(c)
}

// Activity is a logged interaction such as a meeting, showing or inspection.
type Activity struct {
	ID       string
	DealID   *string
	Date     time.Time
	Category Category
	Notes    string
}

// LinkedTo reports whether the activity references the given deal.
func (a *Activity) LinkedTo(dealID string) bool {
	return a.DealID != nil && *a.DealID == dealID
}

func (a *Activity) Validate() error {
	if a.Date.IsZero() {
		return validation.New("date", "date is required")
	}

	if !a.Category.Valid() {
		return validation.New("category", "unknown category")
	}

	return nil
}

func (a *Activity) Clone() *Activity {
	c := *a
	if a.DealID != nil {
		c.DealID = new(*a.DealID)
	}

	return &c
}
