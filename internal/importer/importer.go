package importer

import (
	"context"
	"io"
	"time"

	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/importer/statement"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

type Parser interface {
	Parse(r io.Reader) ([]statement.Line, error)
}

// Categorizer suggests an expense category for a raw bank description.
type Categorizer interface {
	Suggest(ctx context.Context, rawDescription string) (expense.Category, bool, error)
}

// ExpenseCreator is the write path the imported drafts go through.
type ExpenseCreator interface {
	CreateExpense(ctx context.Context, p tracker.ExpenseParams) (*expense.Expense, error)
}

// Draft is a debit line of a statement ready to become a STANDARD expense.
type Draft struct {
	Date        time.Time
	Description string
	Amount      int64
	Category    expense.Category
	// Matched is false when no learned rule applied and Category fell back to other.
	Matched bool
}

// Params returns the expense inputs of the draft, optionally linked to a deal.
func (d Draft) Params(dealID *string) tracker.ExpenseParams {
	return tracker.ExpenseParams{
		DealID:      dealID,
		Kind:        expense.KindStandard,
		Category:    d.Category,
		Date:        d.Date,
		Notes:       d.Description,
		Quantity:    1,
		CostPerUnit: d.Amount,
	}
}
