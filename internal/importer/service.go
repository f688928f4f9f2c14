package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

type Service struct {
	parser   Parser
	rules    Categorizer
	expenses ExpenseCreator
}

func NewService(parser Parser, rules Categorizer, expenses ExpenseCreator) *Service {
	return &Service{
		parser:   parser,
		rules:    rules,
		expenses: expenses,
	}
}

// Preview parses a statement into expense drafts. Credit lines are skipped.
func (s *Service) Preview(ctx context.Context, r io.Reader) ([]Draft, error) {
	lines, err := s.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing statement: %w", err)
	}

	drafts := make([]Draft, 0, len(lines))

	for _, line := range lines {
		if !line.Debit {
			continue
		}

		d := Draft{
			Date:        line.Date,
			Description: line.Description,
			Amount:      line.Amount,
			Category:    expense.CategoryOther,
		}

		category, ok, err := s.rules.Suggest(ctx, line.Description)
		if err != nil {
			return nil, fmt.Errorf("suggesting category: %w", err)
		}

		if ok {
			d.Category = category
			d.Matched = true
		}

		drafts = append(drafts, d)
	}

	return drafts, nil
}

type Result struct {
	Created []*expense.Expense
	Skipped int
}

// Import creates an expense for every debit line of the statement.
// Lines the tracker rejects as invalid are logged and counted as skipped; a
// persistence failure stops the import.
func (s *Service) Import(ctx context.Context, r io.Reader, dealID *string) (Result, error) {
	drafts, err := s.Preview(ctx, r)
	if err != nil {
		return Result{}, err
	}

	var res Result

	for _, d := range drafts {
		e, err := s.expenses.CreateExpense(ctx, d.Params(dealID))
		if errors.Is(err, tracker.ErrPersistence) {
			return res, fmt.Errorf("importing expenses: %w", err)
		}

		if err != nil {
			slog.Warn("skipping imported line", "description", d.Description, "error", err)
			res.Skipped++

			continue
		}

		res.Created = append(res.Created, e)
	}

	return res, nil
}
