package kpi

import (
	"cmp"
	"slices"

	"github.com/MrJamesThe3rd/closer/internal/activity"
	"github.com/MrJamesThe3rd/closer/internal/deal"
	"github.com/MrJamesThe3rd/closer/internal/expense"
)

type CategoryTotal struct {
	Category expense.Category
	Total    int64
	Count    int
}

type ActivityCount struct {
	Category activity.Category
	Count    int
}

type ReportData struct {
	Period Period

	ClosedDeals       []*deal.Deal
	GCI               int64
	TotalExpenses     int64
	NetIncome         int64
	AverageCommission *int64

	ExpensesByCategory []CategoryTotal
	ActivitiesByType   []ActivityCount
	ActivityTotal      int
}

// Report summarises the closings, spending and logged activities of p.
// Category breakdowns are sorted by amount and count, largest first.
func Report(deals []*deal.Deal, expenses []*expense.Expense, activities []*activity.Activity, p Period) ReportData {
	closed := ClosedIn(deals, p)
	slices.SortStableFunc(closed, func(a, b *deal.Deal) int {
		return a.ClosedAt.Compare(*b.ClosedAt)
	})

	r := ReportData{
		Period:        p,
		ClosedDeals:   closed,
		GCI:           GCI(closed),
		TotalExpenses: ExpensesIn(expenses, p),
	}
	r.NetIncome = r.GCI - r.TotalExpenses

	if avg, ok := AverageCommission(closed); ok {
		r.AverageCommission = &avg
	}

	byCategory := map[expense.Category]*CategoryTotal{}
	for _, e := range expenses {
		if !p.Contains(e.Date) {
			continue
		}

		ct, ok := byCategory[e.Category]
		if !ok {
			ct = &CategoryTotal{Category: e.Category}
			byCategory[e.Category] = ct
		}

		ct.Total += e.TotalCost
		ct.Count++
	}

	for _, ct := range byCategory {
		r.ExpensesByCategory = append(r.ExpensesByCategory, *ct)
	}

	slices.SortFunc(r.ExpensesByCategory, func(a, b CategoryTotal) int {
		return cmp.Or(cmp.Compare(b.Total, a.Total), cmp.Compare(a.Category, b.Category))
	})

	byType := map[activity.Category]int{}
	for _, a := range activities {
		if p.Contains(a.Date) {
			byType[a.Category]++
			r.ActivityTotal++
		}
	}

	for c, n := range byType {
		r.ActivitiesByType = append(r.ActivitiesByType, ActivityCount{Category: c, Count: n})
	}

	slices.SortFunc(r.ActivitiesByType, func(a, b ActivityCount) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Category, b.Category))
	})

	return r
}
