package tracker

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/MrJamesThe3rd/closer/internal/activity"
	"github.com/MrJamesThe3rd/closer/internal/storage"
)

type ActivityParams struct {
	DealID   *string
	Date     time.Time
	Category activity.Category
	Notes    string
}

type ActivityFilter struct {
	DealID   string
	Category activity.Category
	Start    time.Time
	End      time.Time
}

func (f ActivityFilter) match(a *activity.Activity) bool {
	if f.DealID != "" && !a.LinkedTo(f.DealID) {
		return false
	}

	if f.Category != "" && a.Category != f.Category {
		return false
	}

	return inRange(a.Date, f.Start, f.End)
}

func (s *Service) CreateActivity(ctx context.Context, p ActivityParams) (*activity.Activity, error) {
	a, err := s.createActivity(ctx, p)
	s.observe("activity", "create", err)

	return a, err
}

func (s *Service) createActivity(ctx context.Context, p ActivityParams) (*activity.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := &activity.Activity{
		ID:       s.ids.NewID(),
		DealID:   normalizeRef(p.DealID),
		Date:     p.Date,
		Category: p.Category,
		Notes:    p.Notes,
	}

	if err := s.checkDealRef(a.DealID); err != nil {
		return nil, err
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}

	next := s.state
	next.activities = append(append([]*activity.Activity(nil), s.state.activities...), a)

	if err := s.commit(ctx, next, storage.Activities); err != nil {
		return nil, fmt.Errorf("creating activity: %w", err)
	}

	return a.Clone(), nil
}

func (s *Service) DeleteActivity(ctx context.Context, id string) error {
	err := s.deleteActivity(ctx, id)
	s.observe("activity", "delete", err)

	return err
}

func (s *Service) deleteActivity(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.state.activities, func(a *activity.Activity) bool { return a.ID == id }) < 0 {
		return activity.ErrNotFound
	}

	next := s.state
	next.activities = without(s.state.activities, func(a *activity.Activity) bool { return a.ID == id })

	if err := s.commit(ctx, next, storage.Activities); err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}

	return nil
}

// ListActivities returns the matching activities, newest first.
func (s *Service) ListActivities(_ context.Context, f ActivityFilter) []*activity.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listActivities(f)
}

// ActivitiesForDeal returns the activities linked to an existing deal.
func (s *Service) ActivitiesForDeal(_ context.Context, dealID string) []*activity.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.dealExists(dealID) {
		return []*activity.Activity{}
	}

	return s.listActivities(ActivityFilter{DealID: dealID})
}

func (s *Service) listActivities(f ActivityFilter) []*activity.Activity {
	out := make([]*activity.Activity, 0)

	for _, a := range s.state.activities {
		if f.match(a) {
			out = append(out, a.Clone())
		}
	}

	slices.SortStableFunc(out, func(a, b *activity.Activity) int {
		return b.Date.Compare(a.Date)
	})

	return out
}
