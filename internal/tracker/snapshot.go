package tracker

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/closer/internal/activity"
	"github.com/MrJamesThe3rd/closer/internal/deal"
	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/storage"
)

// Snapshot is a consistent deep copy of the three collections.
type Snapshot struct {
	Deals      []*deal.Deal
	Expenses   []*expense.Expense
	Activities []*activity.Activity
}

func (s *Service) Snapshot(_ context.Context) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Deals:      make([]*deal.Deal, len(s.state.deals)),
		Expenses:   make([]*expense.Expense, len(s.state.expenses)),
		Activities: make([]*activity.Activity, len(s.state.activities)),
	}

	for i, d := range s.state.deals {
		snap.Deals[i] = d.Clone()
	}

	for i, e := range s.state.expenses {
		snap.Expenses[i] = e.Clone()
	}

	for i, a := range s.state.activities {
		snap.Activities[i] = a.Clone()
	}

	return snap
}

// Restore replaces all three collections with snap in one save.
func (s *Service) Restore(ctx context.Context, snap Snapshot) error {
	err := s.restore(ctx, snap)
	s.observe("snapshot", "restore", err)

	return err
}

func (s *Service) restore(ctx context.Context, snap Snapshot) error {
	var next state

	for _, d := range snap.Deals {
		next.deals = append(next.deals, d.Clone())
	}

	for _, e := range snap.Expenses {
		c := e.Clone()
		c.Derive()
		next.expenses = append(next.expenses, c)
	}

	for _, a := range snap.Activities {
		next.activities = append(next.activities, a.Clone())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(ctx, next, storage.Deals, storage.Expenses, storage.Activities); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}

	return nil
}

// Clear empties all three collections in one save.
func (s *Service) Clear(ctx context.Context) error {
	err := s.Restore(ctx, Snapshot{})
	if err != nil {
		return fmt.Errorf("clearing data: %w", err)
	}

	return nil
}
