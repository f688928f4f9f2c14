package tracker

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/storage"
	"github.com/MrJamesThe3rd/closer/internal/validation"
)

// ExpenseParams carries the inputs of an expense. Derived costs are never accepted.
// A mileage expense created without MilesPerGallon or GasPricePerGallon falls back
// to the settings defaults.
type ExpenseParams struct {
	DealID   *string
	Kind     expense.Kind
	Category expense.Category
	Date     time.Time
	Notes    string

	Quantity    float64
	CostPerUnit int64

	MilesDriven       float64
	MilesPerGallon    *float64
	GasPricePerGallon *int64
}

func ParamsFromExpense(e *expense.Expense) ExpenseParams {
	return ExpenseParams{
		DealID:            copyPtr(e.DealID),
		Kind:              e.Kind,
		Category:          e.Category,
		Date:              e.Date,
		Notes:             e.Notes,
		Quantity:          e.Quantity,
		CostPerUnit:       e.CostPerUnit,
		MilesDriven:       e.MilesDriven,
		MilesPerGallon:    new(e.MilesPerGallon),
		GasPricePerGallon: new(e.GasPricePerGallon),
	}
}

// ExpenseFilter selects expenses by deal and by an inclusive date range.
// Zero values match everything.
type ExpenseFilter struct {
	DealID string
	Start  time.Time
	End    time.Time
}

func (f ExpenseFilter) match(e *expense.Expense) bool {
	if f.DealID != "" && !e.LinkedTo(f.DealID) {
		return false
	}

	return inRange(e.Date, f.Start, f.End)
}

func (s *Service) CreateExpense(ctx context.Context, p ExpenseParams) (*expense.Expense, error) {
	e, err := s.createExpense(ctx, p)
	s.observe("expense", "create", err)

	return e, err
}

func (s *Service) createExpense(ctx context.Context, p ExpenseParams) (*expense.Expense, error) {
	p, err := s.withMileageDefaults(ctx, p)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := &expense.Expense{ID: s.ids.NewID()}
	applyExpenseFields(e, p)
	e.Derive()

	if err := s.checkDealRef(e.DealID); err != nil {
		return nil, err
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}

	next := s.state
	next.expenses = append(append([]*expense.Expense(nil), s.state.expenses...), e)

	if err := s.commit(ctx, next, storage.Expenses); err != nil {
		return nil, fmt.Errorf("creating expense: %w", err)
	}

	return e.Clone(), nil
}

// UpdateExpense replaces the expense inputs with p and re-derives its costs.
// Mileage inputs left nil keep their current value.
func (s *Service) UpdateExpense(ctx context.Context, id string, p ExpenseParams) (*expense.Expense, error) {
	e, err := s.updateExpense(ctx, id, p)
	s.observe("expense", "update", err)

	return e, err
}

func (s *Service) updateExpense(ctx context.Context, id string, p ExpenseParams) (*expense.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.expenseIndex(id)
	if i < 0 {
		return nil, expense.ErrNotFound
	}

	current := s.state.expenses[i]
	e := current.Clone()

	if p.MilesPerGallon == nil {
		p.MilesPerGallon = new(current.MilesPerGallon)
	}

	if p.GasPricePerGallon == nil {
		p.GasPricePerGallon = new(current.GasPricePerGallon)
	}

	applyExpenseFields(e, p)
	e.Derive()

	// A dangling reference that was already stored is tolerated; pointing at a
	// different missing deal is not.
	if !sameRef(current.DealID, e.DealID) {
		if err := s.checkDealRef(e.DealID); err != nil {
			return nil, err
		}
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}

	next := s.state
	next.expenses = replaced(s.state.expenses, i, e)

	if err := s.commit(ctx, next, storage.Expenses); err != nil {
		return nil, fmt.Errorf("updating expense: %w", err)
	}

	return e.Clone(), nil
}

func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	err := s.deleteExpense(ctx, id)
	s.observe("expense", "delete", err)

	return err
}

func (s *Service) deleteExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expenseIndex(id) < 0 {
		return expense.ErrNotFound
	}

	next := s.state
	next.expenses = without(s.state.expenses, func(e *expense.Expense) bool { return e.ID == id })

	if err := s.commit(ctx, next, storage.Expenses); err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}

	return nil
}

func (s *Service) GetExpense(_ context.Context, id string) (*expense.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.expenseIndex(id)
	if i < 0 {
		return nil, expense.ErrNotFound
	}

	return s.state.expenses[i].Clone(), nil
}

// ListExpenses returns the matching expenses, newest first.
func (s *Service) ListExpenses(_ context.Context, f ExpenseFilter) []*expense.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listExpenses(f)
}

// ExpensesForDeal returns the expenses linked to an existing deal. Records
// pointing at a deal that no longer exists are never returned.
func (s *Service) ExpensesForDeal(_ context.Context, dealID string) []*expense.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.dealExists(dealID) {
		return []*expense.Expense{}
	}

	return s.listExpenses(ExpenseFilter{DealID: dealID})
}

func (s *Service) listExpenses(f ExpenseFilter) []*expense.Expense {
	out := make([]*expense.Expense, 0)

	for _, e := range s.state.expenses {
		if f.match(e) {
			out = append(out, e.Clone())
		}
	}

	slices.SortStableFunc(out, func(a, b *expense.Expense) int {
		return b.Date.Compare(a.Date)
	})

	return out
}

func (s *Service) expenseIndex(id string) int {
	return indexOf(s.state.expenses, func(e *expense.Expense) bool { return e.ID == id })
}

func (s *Service) withMileageDefaults(ctx context.Context, p ExpenseParams) (ExpenseParams, error) {
	if p.Kind != expense.KindMileage || s.settings == nil {
		return p, nil
	}

	if p.MilesPerGallon != nil && p.GasPricePerGallon != nil {
		return p, nil
	}

	st, err := s.settings.Get(ctx)
	if err != nil {
		return p, fmt.Errorf("loading mileage defaults: %w", err)
	}

	if p.MilesPerGallon == nil {
		p.MilesPerGallon = new(st.DefaultMPG)
	}

	if p.GasPricePerGallon == nil {
		p.GasPricePerGallon = new(st.DefaultGasPrice)
	}

	return p, nil
}

// checkDealRef rejects a reference to a deal that does not exist. It must be
// called with s.mu held.
func (s *Service) checkDealRef(dealID *string) error {
	if dealID == nil || s.dealExists(*dealID) {
		return nil
	}

	return validation.New("deal_id", fmt.Sprintf("deal %q does not exist", *dealID))
}

func applyExpenseFields(e *expense.Expense, p ExpenseParams) {
	e.DealID = normalizeRef(p.DealID)
	e.Kind = p.Kind
	if e.Kind == "" {
		e.Kind = expense.KindStandard
	}

	e.Category = p.Category
	e.Date = p.Date
	e.Notes = p.Notes
	e.Quantity = p.Quantity
	e.CostPerUnit = p.CostPerUnit
	e.MilesDriven = p.MilesDriven
	e.MilesPerGallon = 0
	e.GasPricePerGallon = 0

	if p.MilesPerGallon != nil {
		e.MilesPerGallon = *p.MilesPerGallon
	}

	if p.GasPricePerGallon != nil {
		e.GasPricePerGallon = *p.GasPricePerGallon
	}
}

// normalizeRef treats an empty deal id as no link.
func normalizeRef(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}

	return new(*id)
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

// inRange reports whether t falls between start and end, both inclusive at day
// granularity. A zero bound is open.
func inRange(t, start, end time.Time) bool {
	if !start.IsZero() && t.Before(startOfDay(start)) {
		return false
	}

	if !end.IsZero() && !t.Before(startOfDay(end).AddDate(0, 0, 1)) {
		return false
	}

	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
