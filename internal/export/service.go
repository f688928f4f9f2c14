package export

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/closer/internal/activity"
	"github.com/MrJamesThe3rd/closer/internal/deal"
	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/kpi"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

type Source interface {
	ListDeals(ctx context.Context, f tracker.DealFilter) []*deal.Deal
	ListExpenses(ctx context.Context, f tracker.ExpenseFilter) []*expense.Expense
	ListActivities(ctx context.Context, f tracker.ActivityFilter) []*activity.Activity
}

// Bundle is everything handed to the accountant for one period.
type Bundle struct {
	Report   kpi.ReportData
	Expenses []*expense.Expense // oldest first
	// DealNames resolves expense deal references for the CSV.
	DealNames map[string]string
}

// Service handles the export of closings and expenses for bookkeeping.
type Service struct {
	source Source
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

// Export collects the closings and expenses of p.
func (s *Service) Export(ctx context.Context, p kpi.Period) Bundle {
	deals := s.source.ListDeals(ctx, tracker.DealFilter{})
	expenses := s.source.ListExpenses(ctx, tracker.ExpenseFilter{Start: p.Start, End: p.End})
	activities := s.source.ListActivities(ctx, tracker.ActivityFilter{Start: p.Start, End: p.End})

	names := make(map[string]string, len(deals))
	for _, d := range deals {
		names[d.ID] = d.Name
	}

	slices.SortStableFunc(expenses, func(a, b *expense.Expense) int {
		return a.Date.Compare(b.Date)
	})

	return Bundle{
		Report:    kpi.Report(deals, expenses, activities, p),
		Expenses:  expenses,
		DealNames: names,
	}
}

// WriteZip writes expenses.csv, closings.csv and summary.txt into a zip archive.
func WriteZip(w io.Writer, b Bundle) error {
	zw := zip.NewWriter(w)

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"expenses.csv", b.writeExpenses},
		{"closings.csv", b.writeClosings},
		{"summary.txt", func(w io.Writer) error {
			_, err := io.WriteString(w, GenerateSummary(b))
			return err
		}},
	}

	for _, f := range files {
		fw, err := zw.Create(f.name)
		if err != nil {
			return fmt.Errorf("creating %s: %w", f.name, err)
		}

		if err := f.write(fw); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}

	return nil
}

// WriteZipFile writes the archive to path, creating its directory.
func WriteZipFile(path string, b Bundle) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}

	if err := WriteZip(f, b); err != nil {
		_ = f.Close()
		return err
	}

	// Buffered data may only fail to reach disk on close.
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing export file: %w", err)
	}

	return nil
}

func (b Bundle) writeExpenses(w io.Writer) error {
	cw := csv.NewWriter(w)

	rows := [][]string{{"date", "category", "kind", "deal", "notes", "total"}}
	for _, e := range b.Expenses {
		dealName := ""
		if e.DealID != nil {
			dealName = b.DealNames[*e.DealID]
		}

		rows = append(rows, []string{
			e.Date.Format("2006-01-02"),
			e.Category.Label(),
			string(e.Kind),
			dealName,
			e.Notes,
			FormatAmount(e.TotalCost),
		})
	}

	return cw.WriteAll(rows)
}

func (b Bundle) writeClosings(w io.Writer) error {
	cw := csv.NewWriter(w)

	rows := [][]string{{"closed_at", "client", "property", "side", "lead_source", "realized_commission"}}
	for _, d := range b.Report.ClosedDeals {
		var closedAt, commission string
		if d.ClosedAt != nil {
			closedAt = d.ClosedAt.Format("2006-01-02")
		}

		if d.RealizedCommission != nil {
			commission = FormatAmount(*d.RealizedCommission)
		}

		rows = append(rows, []string{closedAt, d.Name, d.Property, string(d.Side), d.LeadSource, commission})
	}

	return cw.WriteAll(rows)
}

// GenerateSummary creates the plain-text cover note sent along with the CSVs.
func GenerateSummary(b Bundle) string {
	var sb strings.Builder

	r := b.Report

	fmt.Fprintf(&sb, "Period: %s (%s to %s)\n\n", r.Period.Label,
		r.Period.Start.Format("2006-01-02"), r.Period.End.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Closed deals: %d\n", len(r.ClosedDeals))
	fmt.Fprintf(&sb, "Gross commission income: $%s\n", FormatAmount(r.GCI))
	fmt.Fprintf(&sb, "Total expenses: $%s\n", FormatAmount(r.TotalExpenses))
	fmt.Fprintf(&sb, "Net income: $%s\n", FormatAmount(r.NetIncome))

	if len(r.ExpensesByCategory) > 0 {
		sb.WriteString("\nExpenses by category:\n")

		for _, c := range r.ExpensesByCategory {
			fmt.Fprintf(&sb, "* %s | %d | $%s\n", c.Category.Label(), c.Count, FormatAmount(c.Total))
		}
	}

	return sb.String()
}

// FormatAmount formats cents as a dollar amount without the currency sign.
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
