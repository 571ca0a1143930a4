package services

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"expenses/internal/backend"
	"expenses/internal/core"
	applog "expenses/internal/log"
)

// ExpensePatch carries the updatable fields of an expense. A nil field
// keeps the stored value; the id is never patchable.
type ExpensePatch struct {
	Description *string
	Amount      *core.Money
	Category    *string
	Date        *core.Date
}

// IsEmpty reports whether the patch changes nothing.
func (p ExpensePatch) IsEmpty() bool {
	return p.Description == nil && p.Amount == nil && p.Category == nil && p.Date == nil
}

// ExpenseService orchestrates expense operations over a backend store.
type ExpenseService struct {
	store  backend.Store
	logger *applog.Logger
}

func NewExpenseService(store backend.Store, logger *applog.Logger) *ExpenseService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ExpenseService{
		store:  store,
		logger: logger.WithComponent(applog.ComponentExpense),
	}
}

// Add defaults the date and category, validates the expense and persists it.
// Returns the freshly assigned id.
func (s *ExpenseService) Add(ctx context.Context, e core.Expense) (int64, error) {
	if e.Date.IsZero() {
		e.Date = core.Today()
	}
	e.Category = core.NormalizeCategory(e.Category)
	if e.Category == "" {
		e.Category = core.DefaultCategory
	}
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.Append(ctx, e)
	if err != nil {
		return 0, errors.Wrap(err, "add expense")
	}

	s.logger.InfoContext(ctx, "expense added",
		applog.FieldOperation, applog.OpAdd,
		applog.FieldExpenseID, id,
		applog.FieldDescription, e.Description,
		applog.FieldAmountCents, e.Amount.Cents,
		applog.FieldCategory, e.Category,
		applog.FieldDate, e.Date.String())
	return id, nil
}

// Update merges the patch into the stored record, re-validates and persists.
func (s *ExpenseService) Update(ctx context.Context, id int64, patch ExpensePatch) error {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return errors.Wrap(err, "update expense")
	}

	if patch.Description != nil {
		cur.Description = *patch.Description
	}
	if patch.Amount != nil {
		cur.Amount = *patch.Amount
	}
	if patch.Category != nil {
		cur.Category = core.NormalizeCategory(*patch.Category)
	}
	if patch.Date != nil {
		cur.Date = *patch.Date
	}
	if err := cur.Validate(); err != nil {
		return err
	}

	if err := s.store.Update(ctx, id, cur); err != nil {
		return errors.Wrap(err, "update expense")
	}

	s.logger.InfoContext(ctx, "expense updated",
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldExpenseID, id)
	return nil
}

// Delete removes the record with the given id.
func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "delete expense")
	}

	s.logger.InfoContext(ctx, "expense deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldExpenseID, id)
	return nil
}

// List returns all records in insertion order, optionally restricted to a
// category (matched case-insensitively).
func (s *ExpenseService) List(ctx context.Context, category string) ([]core.Expense, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list expenses")
	}
	if category == "" {
		return items, nil
	}

	filtered := make([]core.Expense, 0, len(items))
	for _, e := range items {
		if strings.EqualFold(e.Category, category) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// Summary totals the amounts, either over all records (month == 0) or over
// the given month of the current year, optionally restricted to a category.
// For month summaries the configured budget is attached when one exists.
func (s *ExpenseService) Summary(ctx context.Context, month int, category string) (core.SummaryReport, error) {
	if month != 0 && !core.ValidMonth(month) {
		return core.SummaryReport{}, core.ErrInvalidMonth
	}

	items, err := s.store.List(ctx)
	if err != nil {
		return core.SummaryReport{}, errors.Wrap(err, "summary")
	}

	year := time.Now().Year()
	rep := core.Summarize(items, year, month, category)

	if month != 0 {
		budget, ok, err := s.store.Budget(ctx, month)
		if err != nil {
			return core.SummaryReport{}, errors.Wrap(err, "summary")
		}
		if ok {
			rep.Budget = &budget
		}
	}
	return rep, nil
}

// SetBudget stores the monthly budget used by month summaries.
func (s *ExpenseService) SetBudget(ctx context.Context, month int, amount core.Money) error {
	if !core.ValidMonth(month) {
		return core.ErrInvalidMonth
	}
	if err := amount.Validate(); err != nil {
		return err
	}

	if err := s.store.SetBudget(ctx, month, amount); err != nil {
		return errors.Wrap(err, "set budget")
	}

	s.logger.InfoContext(ctx, "budget set",
		applog.FieldOperation, applog.OpBudget,
		applog.FieldMonth, month,
		applog.FieldAmountCents, amount.Cents)
	return nil
}

// ExportCSV writes all records as CSV with a header row and returns the
// number of exported records. Amounts are written as plain decimals.
func (s *ExpenseService) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "export expenses")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "date", "description", "amount", "category"}); err != nil {
		return 0, errors.Wrap(err, "write csv header")
	}
	for _, e := range items {
		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.Date.String(),
			e.Description,
			e.Amount.String(),
			e.Category,
		}
		if err := cw.Write(row); err != nil {
			return 0, errors.Wrap(err, "write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, errors.Wrap(err, "flush csv")
	}

	s.logger.InfoContext(ctx, "expenses exported",
		applog.FieldOperation, applog.OpExport,
		applog.FieldCount, len(items))
	return len(items), nil
}
