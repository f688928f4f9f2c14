// Package demo swaps the deal, expense and activity collections for a seeded
// dataset at the persistence boundary. The tracker never knows which source
// produced its snapshot.
package demo

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/MrJamesThe3rd/closer/internal/storage"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

// Switch is the demo-mode toggle.
type Switch struct {
	active atomic.Bool
}

func NewSwitch(active bool) *Switch {
	s := &Switch{}
	s.active.Store(active)

	return s
}

func (s *Switch) Enable()      { s.active.Store(true) }
func (s *Switch) Disable()     { s.active.Store(false) }
func (s *Switch) Active() bool { return s.active.Load() }

// seeded reports whether c is replaced by the seed while demo mode is active.
func seeded(c storage.Collection) bool {
	return c == storage.Deals || c == storage.Expenses || c == storage.Activities
}

// Provider decorates a real provider. While the switch is on, loads of the
// seeded collections return the demo dataset and saves to them are dropped.
// Settings and category rules always reach the real provider.
type Provider struct {
	next storage.Provider
	sw   *Switch
	now  func() time.Time
}

func NewProvider(next storage.Provider, sw *Switch, now func() time.Time) *Provider {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &Provider{next: next, sw: sw, now: now}
}

func (p *Provider) Load(ctx context.Context, c storage.Collection) ([]byte, error) {
	if !p.sw.Active() || !seeded(c) {
		return p.next.Load(ctx, c)
	}

	snap, err := Seed(p.now())
	if err != nil {
		return nil, err
	}

	payloads, err := tracker.Encode(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding demo seed: %w", err)
	}

	return payloads[c], nil
}

func (p *Provider) Save(ctx context.Context, batch map[storage.Collection][]byte) error {
	if !p.sw.Active() {
		return p.next.Save(ctx, batch)
	}

	passthrough := make(map[storage.Collection][]byte, len(batch))
	var dropped []storage.Collection

	for c, payload := range batch {
		if seeded(c) {
			dropped = append(dropped, c)
			continue
		}

		passthrough[c] = payload
	}

	if len(dropped) > 0 {
		slices.Sort(dropped)
		slog.Warn("demo mode active, changes are not saved", "collections", dropped)
	}

	if len(passthrough) == 0 {
		return nil
	}

	return p.next.Save(ctx, passthrough)
}

// Reloader is the part of the tracker the demo mode drives.
type Reloader interface {
	Load(ctx context.Context) error
	Clear(ctx context.Context) error
}

// Mode toggles demo mode and reloads the tracker so the swap takes effect.
type Mode struct {
	sw      *Switch
	tracker Reloader
}

func NewMode(sw *Switch, t Reloader) *Mode {
	return &Mode{sw: sw, tracker: t}
}

func (m *Mode) Active() bool { return m.sw.Active() }

func (m *Mode) Enable(ctx context.Context) error {
	return m.set(ctx, true)
}

func (m *Mode) Disable(ctx context.Context) error {
	return m.set(ctx, false)
}

// Clear wipes the real data. In demo mode it leaves demo mode instead, so the
// seed is never written over the operator's records.
func (m *Mode) Clear(ctx context.Context) error {
	if m.sw.Active() {
		return m.Disable(ctx)
	}

	return m.tracker.Clear(ctx)
}

func (m *Mode) set(ctx context.Context, active bool) error {
	was := m.sw.Active()
	if was == active {
		return nil
	}

	m.sw.active.Store(active)

	if err := m.tracker.Load(ctx); err != nil {
		m.sw.active.Store(was)
		return fmt.Errorf("reloading after demo toggle: %w", err)
	}

	slog.Info("demo mode changed", "active", active)

	return nil
}
