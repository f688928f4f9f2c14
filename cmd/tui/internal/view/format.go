package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/closer/internal/deal"
	"github.com/MrJamesThe3rd/closer/internal/export"
)

const storeTimeout = 5 * time.Second

// FormatAmount formats an amount stored as cents, e.g. "$1,234.50".
func FormatAmount(cents int64) string {
	s := export.FormatAmount(cents)

	sign := ""
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}

	whole, frac := s[:len(s)-3], s[len(s)-3:]
	for i := len(whole) - 3; i > 0; i -= 3 {
		whole = whole[:i] + "," + whole[i:]
	}

	return sign + "$" + whole + frac
}

func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func FormatPct(p *float64) string {
	if p == nil {
		return "n/a"
	}

	return fmt.Sprintf("%.1f%%", *p)
}

// StoreCtx returns a context with a standard timeout for storage operations.
func StoreCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

// ParseAmount parses a dollar amount such as "1234.50" into cents. Blank input yields nil.
func ParseAmount(s string) (*int64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return nil, nil
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", s)
	}

	return new(d.Shift(2).Round(0).IntPart()), nil
}

func validAmount(s string) error {
	_, err := ParseAmount(s)
	return err
}

// AmountInput renders cents the way ParseAmount reads them back, for prefilling forms.
func AmountInput(cents *int64) string {
	if cents == nil {
		return ""
	}

	return export.FormatAmount(*cents)
}

// ParseNumber parses a plain decimal such as a rate or a mileage. Blank input yields nil.
func ParseNumber(s string) (*float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		return nil, nil
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}

	return new(d.InexactFloat64()), nil
}

// ParseDate reads a YYYY-MM-DD date as UTC midnight. Blank input yields today.
func ParseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}

	return t, nil
}

func validNumber(s string) error {
	_, err := ParseNumber(s)
	return err
}

func validDate(s string) error {
	_, err := ParseDate(s, time.Now())
	return err
}

// dealOptions lists deals for a select whose zero value means no deal.
func dealOptions(deals []*deal.Deal) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(deals)+1)
	options = append(options, huh.NewOption("(no deal)", ""))

	for _, d := range deals {
		options = append(options, huh.NewOption(d.Name+" · "+d.Property, d.ID))
	}

	return options
}
