package importer_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/importer"
	"github.com/MrJamesThe3rd/closer/internal/importer/statement"
	"github.com/MrJamesThe3rd/closer/internal/matching"
	"github.com/MrJamesThe3rd/closer/internal/matching/store"
	"github.com/MrJamesThe3rd/closer/internal/storage/memory"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

const checkingCSV = `Account,Checking ...4821
Date,Description,Amount,Running Bal.
03/14/2025,"ACME PHOTO STUDIO, LLC",-450.00,"12,004.10"
03/15/2025,COMMISSION DEPOSIT,"15,500.00","27,504.10"
03/16/2025,SHELL OIL 5521,(47.91),"27,456.19"
`

func newRules(t *testing.T) *matching.Service {
	t.Helper()

	rules := matching.NewService(store.New(memory.New(), nil))
	require.NoError(t, rules.Learn(context.Background(), "acme photo", expense.CategoryPhotography))

	return rules
}

func TestService_Preview(t *testing.T) {
	svc := importer.NewService(statement.NewParser(), newRules(t), nil)

	drafts, err := svc.Preview(context.Background(), strings.NewReader(checkingCSV))
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	assert.Equal(t, "ACME PHOTO STUDIO, LLC", drafts[0].Description)
	assert.Equal(t, int64(45000), drafts[0].Amount)
	assert.Equal(t, expense.CategoryPhotography, drafts[0].Category)
	assert.True(t, drafts[0].Matched)

	assert.Equal(t, "SHELL OIL 5521", drafts[1].Description)
	assert.Equal(t, expense.CategoryOther, drafts[1].Category)
	assert.False(t, drafts[1].Matched)
}

func TestService_Preview_UnknownFormat(t *testing.T) {
	svc := importer.NewService(statement.NewParser(), newRules(t), nil)

	_, err := svc.Preview(context.Background(), strings.NewReader("a,b\n1,2\n"))
	assert.ErrorIs(t, err, statement.ErrUnknownFormat)
}

func TestService_Import(t *testing.T) {
	ctx := context.Background()

	expenses := tracker.NewService(memory.New())
	require.NoError(t, expenses.Load(ctx))

	svc := importer.NewService(statement.NewParser(), newRules(t), expenses)

	res, err := svc.Import(ctx, strings.NewReader(checkingCSV), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Skipped)
	require.Len(t, res.Created, 2)

	assert.Equal(t, expense.KindStandard, res.Created[0].Kind)
	assert.Equal(t, int64(45000), res.Created[0].TotalCost)
	assert.Equal(t, "ACME PHOTO STUDIO, LLC", res.Created[0].Notes)
	assert.Nil(t, res.Created[0].DealID)

	assert.Len(t, expenses.ListExpenses(ctx, tracker.ExpenseFilter{}), 2)
}

type stubParser struct {
	lines []statement.Line
}

func (p stubParser) Parse(io.Reader) ([]statement.Line, error) { return p.lines, nil }

type noRules struct{}

func (noRules) Suggest(context.Context, string) (expense.Category, bool, error) {
	return "", false, nil
}

type scriptedCreator struct {
	errs  []error
	calls int
}

func (c *scriptedCreator) CreateExpense(_ context.Context, p tracker.ExpenseParams) (*expense.Expense, error) {
	err := c.errs[c.calls]
	c.calls++

	if err != nil {
		return nil, err
	}

	return &expense.Expense{ID: fmt.Sprint(c.calls), Kind: p.Kind, Category: p.Category, Date: p.Date}, nil
}

func TestService_Import_Errors(t *testing.T) {
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	parser := stubParser{lines: []statement.Line{
		{Date: day, Description: "A", Amount: 100, Debit: true},
		{Date: day, Description: "B", Amount: 200, Debit: true},
		{Date: day, Description: "C", Amount: 300, Debit: true},
	}}

	t.Run("InvalidLinesAreSkipped", func(t *testing.T) {
		creator := &scriptedCreator{errs: []error{nil, errors.New("date: date is required"), nil}}
		svc := importer.NewService(parser, noRules{}, creator)

		res, err := svc.Import(context.Background(), nil, nil)
		require.NoError(t, err)
		assert.Len(t, res.Created, 2)
		assert.Equal(t, 1, res.Skipped)
	})

	t.Run("PersistenceFailureStops", func(t *testing.T) {
		creator := &scriptedCreator{errs: []error{nil, fmt.Errorf("saving: %w", tracker.ErrPersistence), nil}}
		svc := importer.NewService(parser, noRules{}, creator)

		res, err := svc.Import(context.Background(), nil, nil)
		require.ErrorIs(t, err, tracker.ErrPersistence)
		assert.Len(t, res.Created, 1)
		assert.Equal(t, 2, creator.calls)
	})
}
