package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"expenses/internal/core"
)

// On-disk schema. Amounts are stored as integer cents and dates in the
// YYYY-MM-DD layout; the id counter lives in the metadata so deleted ids
// are never reused.
type (
	expenseRecord struct {
		ID          int64  `json:"id"`
		Date        string `json:"date"`
		Description string `json:"description"`
		AmountCents int64  `json:"amount_cents"`
		Category    string `json:"category"`
	}

	fileMetadata struct {
		LastID  int64            `json:"last_id"`
		Budgets map[string]int64 `json:"budgets,omitempty"`
	}

	dataFile struct {
		Expenses []expenseRecord `json:"expenses"`
		Metadata fileMetadata    `json:"metadata"`
	}
)

// JSONRepository persists the full expense set in a single local JSON file.
// Every mutation loads the file, applies the change in memory and rewrites
// the file whole. The file is assumed single-writer, single-reader.
type JSONRepository struct {
	path string
}

func NewJSONRepository(path string) *JSONRepository {
	return &JSONRepository{path: path}
}

// Path returns the location of the data file.
func (r *JSONRepository) Path() string {
	return r.path
}

func (r *JSONRepository) load() (*dataFile, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		// A missing file is an empty store, not an error.
		return &dataFile{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read data file")
	}
	var df dataFile
	if err := json.Unmarshal(data, &df); err != nil {
		return nil, errors.Wrapf(ErrCorruptFile, "%s: %v", r.path, err)
	}
	return &df, nil
}

func (r *JSONRepository) save(df *dataFile) error {
	data, err := json.MarshalIndent(df, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode data file")
	}
	if dir := filepath.Dir(r.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "create data directory")
		}
	}
	return errors.Wrap(os.WriteFile(r.path, data, 0644), "write data file")
}

func toRecord(e core.Expense) expenseRecord {
	return expenseRecord{
		ID:          e.ID,
		Date:        e.Date.String(),
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		Category:    e.Category,
	}
}

func fromRecord(rec expenseRecord) (core.Expense, error) {
	date, err := core.ParseDate(rec.Date)
	if err != nil {
		return core.Expense{}, errors.Wrapf(ErrCorruptFile, "record %d: bad date %q", rec.ID, rec.Date)
	}
	return core.Expense{
		ID:          rec.ID,
		Date:        date,
		Description: rec.Description,
		Amount:      core.Money{Cents: rec.AmountCents},
		Category:    rec.Category,
	}, nil
}

// Append assigns a fresh id to the expense, stores it and persists the set.
func (r *JSONRepository) Append(_ context.Context, e core.Expense) (int64, error) {
	df, err := r.load()
	if err != nil {
		return 0, err
	}
	df.Metadata.LastID++
	e.ID = df.Metadata.LastID
	df.Expenses = append(df.Expenses, toRecord(e))
	if err := r.save(df); err != nil {
		return 0, err
	}
	return e.ID, nil
}

// Get returns the expense with the given id.
func (r *JSONRepository) Get(_ context.Context, id int64) (core.Expense, error) {
	df, err := r.load()
	if err != nil {
		return core.Expense{}, err
	}
	for _, rec := range df.Expenses {
		if rec.ID == id {
			return fromRecord(rec)
		}
	}
	return core.Expense{}, errors.Wrapf(ErrNotFound, "id %d", id)
}

// Update replaces the record with the given id and persists the set.
func (r *JSONRepository) Update(_ context.Context, id int64, e core.Expense) error {
	df, err := r.load()
	if err != nil {
		return err
	}
	for i, rec := range df.Expenses {
		if rec.ID == id {
			e.ID = id
			df.Expenses[i] = toRecord(e)
			return r.save(df)
		}
	}
	return errors.Wrapf(ErrNotFound, "id %d", id)
}

// Delete removes the record with the given id and persists the set.
func (r *JSONRepository) Delete(_ context.Context, id int64) error {
	df, err := r.load()
	if err != nil {
		return err
	}
	kept := df.Expenses[:0]
	found := false
	for _, rec := range df.Expenses {
		if rec.ID == id {
			found = true
			continue
		}
		kept = append(kept, rec)
	}
	if !found {
		return errors.Wrapf(ErrNotFound, "id %d", id)
	}
	df.Expenses = kept
	return r.save(df)
}

// List returns all records in insertion order.
func (r *JSONRepository) List(_ context.Context) ([]core.Expense, error) {
	df, err := r.load()
	if err != nil {
		return nil, err
	}
	expenses := make([]core.Expense, 0, len(df.Expenses))
	for _, rec := range df.Expenses {
		e, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

// SetBudget stores the budget for a calendar month (1-12).
func (r *JSONRepository) SetBudget(_ context.Context, month int, amount core.Money) error {
	df, err := r.load()
	if err != nil {
		return err
	}
	if df.Metadata.Budgets == nil {
		df.Metadata.Budgets = make(map[string]int64)
	}
	df.Metadata.Budgets[strconv.Itoa(month)] = amount.Cents
	return r.save(df)
}

// Budget returns the budget for a calendar month and whether one is set.
func (r *JSONRepository) Budget(_ context.Context, month int) (core.Money, bool, error) {
	df, err := r.load()
	if err != nil {
		return core.Money{}, false, err
	}
	cents, ok := df.Metadata.Budgets[strconv.Itoa(month)]
	return core.Money{Cents: cents}, ok, nil
}
