package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func juneTx(day int, amount float64, category string) core.Transaction {
	return core.Transaction{
		Description: "tx",
		Amount:      amount,
		Category:    category,
		Date:        time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestAddAndListTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved, err := repo.AddTransaction(ctx, "alice", juneTx(10, 300, "Food"))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	_, err = repo.AddTransaction(ctx, "alice", juneTx(2, 1200, "Housing"))
	require.NoError(t, err)

	txs, err := repo.ListTransactions(ctx, "alice", core.Period{Year: 2024, Month: 6})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	// Newest first.
	assert.Equal(t, "Food", txs[0].Category)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), txs[0].Date)
}

func TestListTransactionsHalfOpenBounds(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, tx := range []core.Transaction{
		{Description: "in", Amount: 1, Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{Description: "in", Amount: 2, Date: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)},
		{Description: "out", Amount: 4, Date: time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)},
		{Description: "out", Amount: 8, Date: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
	} {
		_, err := repo.AddTransaction(ctx, "alice", tx)
		require.NoError(t, err)
	}

	txs, err := repo.ListTransactions(ctx, "alice", core.Period{Year: 2024, Month: 6})
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestListTransactionsScopedToTenant(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddTransaction(ctx, "alice", juneTx(10, 300, "Food"))
	require.NoError(t, err)

	txs, err := repo.ListTransactions(ctx, "bob", core.Period{Year: 2024, Month: 6})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestAddTransactionValidates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddTransaction(ctx, "alice", core.Transaction{
		Description: "",
		Amount:      1,
		Date:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, core.ErrEmptyDescription)

	_, err = repo.AddTransaction(ctx, "alice", core.Transaction{
		Description: "x",
		Amount:      -1,
		Date:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestAddTransactionNormalizesCategory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved, err := repo.AddTransaction(ctx, "alice", juneTx(1, 5, "  "))
	require.NoError(t, err)
	assert.Equal(t, core.DefaultCategory, saved.Category)
}

func TestDeleteTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved, err := repo.AddTransaction(ctx, "alice", juneTx(10, 300, "Food"))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteTransaction(ctx, "alice", saved.ID))

	txs, err := repo.ListTransactions(ctx, "alice", core.Period{Year: 2024, Month: 6})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestDeleteTransactionWrongTenant(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved, err := repo.AddTransaction(ctx, "alice", juneTx(10, 300, "Food"))
	require.NoError(t, err)

	assert.ErrorIs(t, repo.DeleteTransaction(ctx, "bob", saved.ID), sql.ErrNoRows)
	assert.ErrorIs(t, repo.DeleteTransaction(ctx, "alice", "missing"), sql.ErrNoRows)
}

func TestBudgetRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	budget := core.Budget{
		Tenant:         "alice",
		CategoryLimits: map[string]float64{"Food": 500, "Housing": 1000},
	}
	require.NoError(t, repo.UpsertBudget(ctx, budget))

	got, err := repo.GetBudget(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "monthly", got.Period)
	assert.Equal(t, budget.CategoryLimits, got.CategoryLimits)

	// Upsert replaces the previous limits wholesale.
	budget.CategoryLimits = map[string]float64{"Food": 400}
	require.NoError(t, repo.UpsertBudget(ctx, budget))

	got, err = repo.GetBudget(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Food": 400}, got.CategoryLimits)
}

func TestGetBudgetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetBudget(context.Background(), "nobody")
	assert.ErrorIs(t, err, core.ErrNoBudget)
}

func TestTenants(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddTransaction(ctx, "bob", juneTx(1, 1, "Food"))
	require.NoError(t, err)
	_, err = repo.AddTransaction(ctx, "alice", juneTx(2, 2, "Food"))
	require.NoError(t, err)
	_, err = repo.AddTransaction(ctx, "alice", juneTx(3, 3, "Food"))
	require.NoError(t, err)

	tenants, err := repo.Tenants(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, tenants)
}
