package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/closer/internal/activity"
	"github.com/MrJamesThe3rd/closer/internal/deal"
	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/settings"
	"github.com/MrJamesThe3rd/closer/internal/storage"
)

// ErrPersistence wraps every failure of the backing store. The in-memory
// collections keep their previous contents when it is returned.
var ErrPersistence = errors.New("persistence failure")

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}

// SettingsSource supplies the mileage defaults applied to new mileage expenses.
type SettingsSource interface {
	Get(ctx context.Context) (settings.Settings, error)
}

// Observer is notified after every attempted mutation.
type Observer interface {
	ObserveMutation(entity, op string, err error)
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

type Option func(*Service)

func WithClock(c Clock) Option { return func(s *Service) { s.clock = c } }

func WithIDGenerator(g IDGenerator) Option { return func(s *Service) { s.ids = g } }

func WithSettings(src SettingsSource) Option { return func(s *Service) { s.settings = src } }

func WithObserver(o Observer) Option { return func(s *Service) { s.observer = o } }

// Service owns the deal, expense and activity collections. Every mutation goes
// through it and is written through to the provider before it becomes visible.
type Service struct {
	store    storage.Provider
	clock    Clock
	ids      IDGenerator
	settings SettingsSource
	observer Observer

	mu    sync.RWMutex
	state state
}

// state is treated as immutable: mutations build a new state that shares the
// untouched records with the old one.
type state struct {
	deals      []*deal.Deal
	expenses   []*expense.Expense
	activities []*activity.Activity
}

func NewService(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store: store,
		clock: SystemClock{},
		ids:   UUIDGenerator{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load replaces the in-memory collections with the provider contents.
func (s *Service) Load(ctx context.Context) error {
	var next state

	dealsPayload, err := s.store.Load(ctx, storage.Deals)
	if err != nil {
		return fmt.Errorf("%w: loading deals: %w", ErrPersistence, err)
	}

	if next.deals, err = decodeDeals(dealsPayload); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	expensesPayload, err := s.store.Load(ctx, storage.Expenses)
	if err != nil {
		return fmt.Errorf("%w: loading expenses: %w", ErrPersistence, err)
	}

	if next.expenses, err = decodeExpenses(expensesPayload); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	activitiesPayload, err := s.store.Load(ctx, storage.Activities)
	if err != nil {
		return fmt.Errorf("%w: loading activities: %w", ErrPersistence, err)
	}

	if next.activities, err = decodeActivities(activitiesPayload); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	return nil
}

// commit writes the changed collections of next and installs it as the current
// state. It must be called with s.mu held for writing.
func (s *Service) commit(ctx context.Context, next state, changed ...storage.Collection) error {
	batch := make(map[storage.Collection][]byte, len(changed))

	for _, c := range changed {
		var (
			payload []byte
			err     error
		)

		switch c {
		case storage.Deals:
			payload, err = encodeDeals(next.deals)
		case storage.Expenses:
			payload, err = encodeExpenses(next.expenses)
		case storage.Activities:
			payload, err = encodeActivities(next.activities)
		default:
			err = fmt.Errorf("unknown collection %q", c)
		}

		if err != nil {
			return fmt.Errorf("%w: encoding %s: %w", ErrPersistence, c, err)
		}

		batch[c] = payload
	}

	if err := s.store.Save(ctx, batch); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.state = next

	return nil
}

func (s *Service) observe(entity, op string, err error) {
	if s.observer != nil {
		s.observer.ObserveMutation(entity, op, err)
	}
}

func (s *Service) dealExists(id string) bool {
	return indexOf(s.state.deals, func(d *deal.Deal) bool { return d.ID == id }) >= 0
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}

	return -1
}

// replaced returns a copy of items with position i set to v.
func replaced[T any](items []T, i int, v T) []T {
	out := make([]T, len(items))
	copy(out, items)
	out[i] = v

	return out
}

// without returns a copy of items minus every element matching drop.
func without[T any](items []T, drop func(T) bool) []T {
	out := make([]T, 0, len(items))

	for _, item := range items {
		if !drop(item) {
			out = append(out, item)
		}
	}

	return out
}
