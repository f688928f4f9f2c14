package store

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/storage"
)

type rule struct {
	Pattern   string           `json:"pattern"`
	Category  expense.Category `json:"category"`
	CreatedAt time.Time        `json:"created_at"`
}

// Store keeps the category rules as one blob in the category_rules collection.
type Store struct {
	provider storage.Provider
	now      func() time.Time

	mu sync.Mutex
}

func New(provider storage.Provider, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}

	return &Store{provider: provider, now: now}
}

// FindMatch returns the category of the longest pattern contained in
// rawDescription, ignoring case. Ties go to the newest rule.
func (s *Store) FindMatch(ctx context.Context, rawDescription string) (expense.Category, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.load(ctx)
	if err != nil {
		return "", false, err
	}

	desc := strings.ToLower(rawDescription)

	var best *rule

	for i := range rules {
		r := &rules[i]
		if !strings.Contains(desc, strings.ToLower(r.Pattern)) {
			continue
		}

		if best == nil || cmp.Or(cmp.Compare(len(r.Pattern), len(best.Pattern)), r.CreatedAt.Compare(best.CreatedAt)) > 0 {
			best = r
		}
	}

	if best == nil {
		return "", false, nil
	}

	return best.Category, true, nil
}

// CreateMapping stores a rule. Learning an existing pattern again replaces its category.
func (s *Store) CreateMapping(ctx context.Context, rawPattern string, category expense.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.load(ctx)
	if err != nil {
		return err
	}

	next := make([]rule, 0, len(rules)+1)
	for _, r := range rules {
		if !strings.EqualFold(r.Pattern, rawPattern) {
			next = append(next, r)
		}
	}

	next = append(next, rule{Pattern: rawPattern, Category: category, CreatedAt: s.now()})

	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encoding category rules: %w", err)
	}

	if err := s.provider.Save(ctx, map[storage.Collection][]byte{storage.CategoryRules: payload}); err != nil {
		return fmt.Errorf("creating mapping: %w", err)
	}

	return nil
}

func (s *Store) load(ctx context.Context) ([]rule, error) {
	payload, err := s.provider.Load(ctx, storage.CategoryRules)
	if err != nil {
		return nil, fmt.Errorf("loading category rules: %w", err)
	}

	if len(payload) == 0 {
		return nil, nil
	}

	var rules []rule
	if err := json.Unmarshal(payload, &rules); err != nil {
		return nil, fmt.Errorf("decoding category rules: %w", err)
	}

	return rules, nil
}
