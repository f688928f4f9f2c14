package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/closer/internal/activity"
	"github.com/MrJamesThe3rd/closer/internal/deal"
	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/kpi"
	"github.com/MrJamesThe3rd/closer/internal/storage"
	"github.com/MrJamesThe3rd/closer/internal/validation"
)

// DealParams carries the editable fields of a deal. UpdateDeal replaces every
// field with the given value, so callers patching a deal start from ParamsFromDeal.
type DealParams struct {
	Name     string
	Property string
	Side     deal.Side
	Stage    deal.Stage

	// CloseProbabilityBps overrides the probability when set. Nil keeps the
	// current value, or the new stage's default when the stage changes.
	CloseProbabilityBps *int

	// ExpectedCommission is ignored for sellers whose list price and rate are known.
	ExpectedCommission int64
	RealizedCommission *int64

	ListPrice         *int64
	CommissionRatePct *float64
	ListingDate       *time.Time
	ClosedPrice       *int64

	LeadSource      string
	OtherLeadSource string
	Notes           string
}

// ParamsFromDeal returns params that reproduce d when passed to UpdateDeal.
// The probability is left unset so a stage change made on the result still
// brings the new stage's default.
func ParamsFromDeal(d *deal.Deal) DealParams {
	c := d.Clone()

	return DealParams{
		Name:               c.Name,
		Property:           c.Property,
		Side:               c.Side,
		Stage:              c.Stage,
		ExpectedCommission: c.ExpectedCommission,
		RealizedCommission: c.RealizedCommission,
		ListPrice:          c.ListPrice,
		CommissionRatePct:  c.CommissionRatePct,
		ListingDate:        c.ListingDate,
		ClosedPrice:        c.ClosedPrice,
		LeadSource:         c.LeadSource,
		OtherLeadSource:    c.OtherLeadSource,
		Notes:              c.Notes,
	}
}

// StageParams supplies the closing inputs that may accompany a stage change.
type StageParams struct {
	RealizedCommission *int64
	ClosedPrice        *int64
}

func (p StageParams) empty() bool {
	return p.RealizedCommission == nil && p.ClosedPrice == nil
}

type DealFilter struct {
	Stage      deal.Stage
	Side       deal.Side
	LeadSource string
}

func (f DealFilter) match(d *deal.Deal) bool {
	if f.Stage != "" && d.Stage != f.Stage {
		return false
	}

	if f.Side != "" && d.Side != f.Side {
		return false
	}

	if f.LeadSource != "" && d.LeadSource != f.LeadSource {
		return false
	}

	return true
}

func (s *Service) CreateDeal(ctx context.Context, p DealParams) (*deal.Deal, error) {
	d, err := s.createDeal(ctx, p)
	s.observe("deal", "create", err)

	return d, err
}

func (s *Service) createDeal(ctx context.Context, p DealParams) (*deal.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()

	d := &deal.Deal{
		ID:        s.ids.NewID(),
		Side:      p.Side,
		CreatedAt: now,
	}

	applyDealFields(d, p)

	stage := p.Stage
	if stage == "" {
		stage = deal.StageLead
	}

	d.SetStage(stage, now)
	finishDeal(d, p)

	if err := d.Validate(); err != nil {
		return nil, err
	}

	next := s.state
	next.deals = append(append([]*deal.Deal(nil), s.state.deals...), d)

	if err := s.commit(ctx, next, storage.Deals); err != nil {
		return nil, fmt.Errorf("creating deal: %w", err)
	}

	return d.Clone(), nil
}

// UpdateDeal replaces the deal fields with p. Field values are applied first,
// then the stage transition when the stage differs, then the probability override.
func (s *Service) UpdateDeal(ctx context.Context, id string, p DealParams) (*deal.Deal, error) {
	d, err := s.updateDeal(ctx, id, p)
	s.observe("deal", "update", err)

	return d, err
}

func (s *Service) updateDeal(ctx context.Context, id string, p DealParams) (*deal.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.dealIndex(id)
	if i < 0 {
		return nil, deal.ErrNotFound
	}

	d := s.state.deals[i].Clone()

	if p.Side != "" && p.Side != d.Side {
		return nil, validation.New("side", "side cannot be changed")
	}

	applyDealFields(d, p)

	if p.Stage != "" {
		d.SetStage(p.Stage, s.clock.Now())
	}

	finishDeal(d, p)

	if err := d.Validate(); err != nil {
		return nil, err
	}

	next := s.state
	next.deals = replaced(s.state.deals, i, d)

	if err := s.commit(ctx, next, storage.Deals); err != nil {
		return nil, fmt.Errorf("updating deal: %w", err)
	}

	return d.Clone(), nil
}

// SetStage moves a deal to stage. Closing inputs in p are applied before the
// transition so the frozen listing outcome sees them.
func (s *Service) SetStage(ctx context.Context, id string, stage deal.Stage, p StageParams) (*deal.Deal, error) {
	d, err := s.setStage(ctx, id, stage, p)
	s.observe("deal", "set_stage", err)

	return d, err
}

func (s *Service) setStage(ctx context.Context, id string, stage deal.Stage, p StageParams) (*deal.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.dealIndex(id)
	if i < 0 {
		return nil, deal.ErrNotFound
	}

	d := s.state.deals[i].Clone()

	if !stage.Valid() {
		return nil, validation.New("stage", "unknown stage")
	}

	if p.ClosedPrice != nil && d.IsSeller() {
		d.ClosedPrice = new(*p.ClosedPrice)
	}

	changed := d.SetStage(stage, s.clock.Now())
	if !changed && p.empty() {
		return d, nil
	}

	if p.RealizedCommission != nil && d.IsClosed() {
		d.RealizedCommission = new(*p.RealizedCommission)
	}

	d.ApplySellerDerivations()

	if err := d.Validate(); err != nil {
		return nil, err
	}

	next := s.state
	next.deals = replaced(s.state.deals, i, d)

	if err := s.commit(ctx, next, storage.Deals); err != nil {
		return nil, fmt.Errorf("setting deal stage: %w", err)
	}

	return d.Clone(), nil
}

// DeleteDeal removes the deal with every expense and activity linked to it.
// The three collections are saved in one batch so either all removals persist or none do.
func (s *Service) DeleteDeal(ctx context.Context, id string) error {
	err := s.deleteDeal(ctx, id)
	s.observe("deal", "delete", err)

	return err
}

func (s *Service) deleteDeal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dealIndex(id) < 0 {
		return deal.ErrNotFound
	}

	next := state{
		deals:      without(s.state.deals, func(d *deal.Deal) bool { return d.ID == id }),
		expenses:   without(s.state.expenses, func(e *expense.Expense) bool { return e.LinkedTo(id) }),
		activities: without(s.state.activities, func(a *activity.Activity) bool { return a.LinkedTo(id) }),
	}

	if err := s.commit(ctx, next, storage.Deals, storage.Expenses, storage.Activities); err != nil {
		return fmt.Errorf("deleting deal: %w", err)
	}

	return nil
}

func (s *Service) GetDeal(_ context.Context, id string) (*deal.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.dealIndex(id)
	if i < 0 {
		return nil, deal.ErrNotFound
	}

	return s.state.deals[i].Clone(), nil
}

func (s *Service) ListDeals(_ context.Context, f DealFilter) []*deal.Deal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*deal.Deal, 0, len(s.state.deals))

	for _, d := range s.state.deals {
		if f.match(d) {
			out = append(out, d.Clone())
		}
	}

	return out
}

// NetCommission returns the realized commission of the deal minus every linked expense.
func (s *Service) NetCommission(_ context.Context, id string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.dealIndex(id)
	if i < 0 {
		return 0, deal.ErrNotFound
	}

	return kpi.NetCommission(s.state.deals[i], s.state.expenses), nil
}

func (s *Service) dealIndex(id string) int {
	return indexOf(s.state.deals, func(d *deal.Deal) bool { return d.ID == id })
}

// applyDealFields copies the plain fields of p onto d. Stage, probability and
// realized commission are handled by the caller around the transition.
func applyDealFields(d *deal.Deal, p DealParams) {
	d.Name = p.Name
	d.Property = p.Property
	d.ExpectedCommission = p.ExpectedCommission
	d.LeadSource = p.LeadSource
	d.OtherLeadSource = p.OtherLeadSource
	d.Notes = p.Notes

	if !d.IsSeller() {
		d.ListPrice = nil
		d.CommissionRatePct = nil
		d.ListingDate = nil
		d.ClosedPrice = nil

		return
	}

	d.ListPrice = copyPtr(p.ListPrice)
	d.CommissionRatePct = copyPtr(p.CommissionRatePct)
	d.ListingDate = copyPtr(p.ListingDate)
	d.ClosedPrice = copyPtr(p.ClosedPrice)
}

// finishDeal applies the post-transition fields: probability override,
// realized commission and the seller commission sync.
func finishDeal(d *deal.Deal, p DealParams) {
	if p.CloseProbabilityBps != nil {
		d.CloseProbabilityBps = *p.CloseProbabilityBps
	}

	d.RealizedCommission = nil
	if d.IsClosed() {
		d.RealizedCommission = copyPtr(p.RealizedCommission)
	}

	d.ApplySellerDerivations()
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	return new(*p)
}
