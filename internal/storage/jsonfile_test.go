package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/core"
)

func newTestRepo(t *testing.T) *JSONRepository {
	t.Helper()
	return NewJSONRepository(filepath.Join(t.TempDir(), "expenses.json"))
}

func testExpense(desc string, cents int64) core.Expense {
	return core.Expense{
		Date:        core.NewDate(2026, 8, 23),
		Description: desc,
		Amount:      core.Money{Cents: cents},
		Category:    "General",
	}
}

func TestJSONRepositoryMissingFileIsEmpty(t *testing.T) {
	repo := newTestRepo(t)

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestJSONRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	want := make([]core.Expense, 0, 3)
	for i, desc := range []string{"coffee", "lunch", "bus ticket"} {
		e := testExpense(desc, int64(100*(i+1)))
		id, err := repo.Append(ctx, e)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), id)
		e.ID = id
		want = append(want, e)
	}

	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want, got))

	// A fresh repository reading the same file sees the identical sequence.
	reloaded, err := NewJSONRepository(repo.Path()).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want, reloaded))
}

func TestJSONRepositoryGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.Append(ctx, testExpense("coffee", 350))
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "coffee", got.Description)
	assert.Equal(t, int64(350), got.Amount.Cents)

	_, err = repo.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJSONRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.Append(ctx, testExpense("coffee", 350))
	require.NoError(t, err)

	updated := testExpense("espresso", 250)
	require.NoError(t, repo.Update(ctx, id, updated))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID) // id survives the replace
	assert.Equal(t, "espresso", got.Description)
	assert.Equal(t, int64(250), got.Amount.Cents)
}

func TestJSONRepositoryUpdateNotFoundLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.Append(ctx, testExpense("coffee", 350))
	require.NoError(t, err)

	before, err := repo.List(ctx)
	require.NoError(t, err)

	err = repo.Update(ctx, id+100, testExpense("ghost", 1))
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(before, after))
}

func TestJSONRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first, err := repo.Append(ctx, testExpense("coffee", 350))
	require.NoError(t, err)
	second, err := repo.Append(ctx, testExpense("lunch", 1200))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, first))

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, second, items[0].ID)

	assert.ErrorIs(t, repo.Delete(ctx, first), ErrNotFound)
}

func TestJSONRepositoryIDsNeverReused(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.Append(ctx, testExpense("a", 100))
	require.NoError(t, err)
	second, err := repo.Append(ctx, testExpense("b", 200))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, second))

	third, err := repo.Append(ctx, testExpense("c", 300))
	require.NoError(t, err)
	assert.Equal(t, int64(3), third)
}

func TestJSONRepositoryCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "expenses.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	repo := NewJSONRepository(path)

	_, err := repo.List(ctx)
	assert.ErrorIs(t, err, ErrCorruptFile)

	// Mutations must not clobber an unreadable file.
	_, err = repo.Append(ctx, testExpense("coffee", 350))
	assert.ErrorIs(t, err, ErrCorruptFile)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "{not json", string(data))
}

func TestJSONRepositoryBudgets(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, ok, err := repo.Budget(ctx, 8)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SetBudget(ctx, 8, core.Money{Cents: 50000}))

	budget, ok, err := repo.Budget(ctx, 8)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(50000), budget.Cents)

	// Budgets survive a reload.
	budget, ok, err = NewJSONRepository(repo.Path()).Budget(ctx, 8)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(50000), budget.Cents)
}
