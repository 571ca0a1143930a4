package core

import (
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// SummaryReport is the result of aggregating expenses over an optional
// month window and category filter.
type SummaryReport struct {
	Year     int
	Month    int // 1-12, or 0 for all records
	Category string
	Count    int
	Total    Money
	Budget   *Money // set only for month summaries with a configured budget
}

// Remaining returns the budget left after the summarized spending.
// Only meaningful when Budget is set.
func (r SummaryReport) Remaining() Money {
	if r.Budget == nil {
		return Money{}
	}
	return Money{Cents: r.Budget.Cents - r.Total.Cents}
}

// OverBudget reports whether the summarized spending exceeds the budget.
func (r SummaryReport) OverBudget() bool {
	return r.Budget != nil && r.Total.Cents > r.Budget.Cents
}

// MonthWindow returns the inclusive bounds of the given calendar month.
func MonthWindow(year, month int) (time.Time, time.Time) {
	ref := now.New(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
	return ref.BeginningOfMonth(), ref.EndOfMonth()
}

// InMonth reports whether the date falls within the given calendar month.
func (d Date) InMonth(year, month int) bool {
	start, end := MonthWindow(year, month)
	return !d.Before(start) && !d.After(end)
}

// Summarize aggregates the expenses. month == 0 covers all records,
// otherwise only the given month of year is counted. An empty category
// matches everything; otherwise matching is case-insensitive.
func Summarize(expenses []Expense, year, month int, category string) SummaryReport {
	rep := SummaryReport{Year: year, Month: month, Category: category}
	for _, e := range expenses {
		if month != 0 && !e.Date.InMonth(year, month) {
			continue
		}
		if category != "" && !strings.EqualFold(e.Category, category) {
			continue
		}
		rep.Count++
		rep.Total.Cents += e.Amount.Cents
	}
	return rep
}
