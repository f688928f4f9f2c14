package kpi

import (
	"fmt"
	"time"
)

// Period is a date range inclusive of both ends at day granularity.
type Period struct {
	Start time.Time
	End   time.Time
	Label string
}

func Year(y int) Period {
	return Period{
		Start: date(y, time.January, 1),
		End:   date(y, time.December, 31),
		Label: fmt.Sprintf("%d", y),
	}
}

func Month(y int, m time.Month) Period {
	start := date(y, m, 1)

	return Period{
		Start: start,
		End:   start.AddDate(0, 1, -1),
		Label: start.Format("January 2006"),
	}
}

// Quarter returns the period of quarter q (1-4) of year y.
func Quarter(y, q int) (Period, error) {
	if q < 1 || q > 4 {
		return Period{}, fmt.Errorf("invalid quarter %d", q)
	}

	start := date(y, time.Month(3*(q-1)+1), 1)

	return Period{
		Start: start,
		End:   start.AddDate(0, 3, -1),
		Label: fmt.Sprintf("Q%d %d", q, y),
	}, nil
}

func Custom(start, end time.Time) (Period, error) {
	start, end = day(start), day(end)
	if end.Before(start) {
		return Period{}, fmt.Errorf("period end %s is before start %s", end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	return Period{
		Start: start,
		End:   end,
		Label: fmt.Sprintf("%s to %s", start.Format(time.DateOnly), end.Format(time.DateOnly)),
	}, nil
}

// Contains reports whether t falls on any day of the period.
func (p Period) Contains(t time.Time) bool {
	d := day(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Months returns the first day of every month the period touches.
func (p Period) Months() []time.Time {
	var months []time.Time

	for m := date(p.Start.Year(), p.Start.Month(), 1); !m.After(p.End); m = m.AddDate(0, 1, 0) {
		months = append(months, m)
	}

	return months
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return date(y, m, d)
}
