package matching

import (
	"context"
	"strings"

	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	FindMatch(ctx context.Context, rawDescription string) (expense.Category, bool, error)
	CreateMapping(ctx context.Context, rawPattern string, category expense.Category) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the category learned for the given raw bank description.
// The boolean is false when no rule matches.
func (s *Service) Suggest(ctx context.Context, rawDescription string) (expense.Category, bool, error) {
	if strings.TrimSpace(rawDescription) == "" {
		return "", false, nil
	}

	return s.repo.FindMatch(ctx, rawDescription)
}

// Learn remembers that descriptions containing rawPattern belong to category.
func (s *Service) Learn(ctx context.Context, rawPattern string, category expense.Category) error {
	pattern := strings.TrimSpace(rawPattern)
	if pattern == "" {
		return validation.New("pattern", "pattern is required")
	}

	if !category.Valid() {
		return validation.New("category", "unknown category")
	}

	return s.repo.CreateMapping(ctx, pattern, category)
}
