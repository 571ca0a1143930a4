package backend

import (
	"context"

	"expenses/internal/core"
)

// Store is the persistence seam every backend implements. Ids are assigned
// by the store on Append and never reused.
type Store interface {
	Append(ctx context.Context, e core.Expense) (int64, error)
	Get(ctx context.Context, id int64) (core.Expense, error)
	Update(ctx context.Context, id int64, e core.Expense) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]core.Expense, error)
	SetBudget(ctx context.Context, month int, amount core.Money) error
	Budget(ctx context.Context, month int) (core.Money, bool, error)
}

// BackendType represents the type of backend
type BackendType string

const (
	JSONBackend   BackendType = "json"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case JSONBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
