package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/advisor"
	"finsight/internal/cache"
	"finsight/internal/core"
	"finsight/internal/event"
	"finsight/internal/insights"
	"finsight/internal/storage"
)

type countingAdvisor struct {
	calls atomic.Int32
	inner insights.Advisor
}

func (a *countingAdvisor) Advise(ctx context.Context, report core.BenchmarkReport) (core.Insights, error) {
	a.calls.Add(1)
	return a.inner.Advise(ctx, report)
}

func newWorkerFixture(t *testing.T) (*InsightWorker, *storage.MemoryStore, *countingAdvisor, *insights.Service) {
	t.Helper()

	store := storage.NewMemoryStore()
	counting := &countingAdvisor{inner: advisor.NewRuleBased()}
	benchmarks := map[string]float64{"Food": 15, "Other": 10}
	service := insights.NewService(store, store, counting,
		cache.New[core.Insights](time.Second), benchmarks, time.Minute)

	return NewInsightWorker(service, store), store, counting, service
}

func seedTenant(t *testing.T, store *storage.MemoryStore, tenant string, p core.Period) {
	t.Helper()
	_, err := store.AddTransaction(context.Background(), tenant, core.Transaction{
		Description: "groceries",
		Amount:      300,
		Category:    "Food",
		Date:        p.Start().AddDate(0, 0, 4),
	})
	require.NoError(t, err)
}

func TestHandleTransactionChangedRecomputes(t *testing.T) {
	w, store, counting, service := newWorkerFixture(t)
	p := core.Period{Year: 2024, Month: 6}
	seedTenant(t, store, "alice", p)

	// Prime the cache, then signal a change.
	_, err := service.Insights(context.Background(), "alice", p.Year, p.Month)
	require.NoError(t, err)
	require.Equal(t, int32(1), counting.calls.Load())

	msg := event.NewTransactionChanged("alice", p.Year, p.Month)
	require.NoError(t, w.HandleTransactionChanged(context.Background(), msg))

	// The event invalidated the entry and recomputed it.
	assert.Equal(t, int32(2), counting.calls.Load())

	// A read right after the event is served from the warmed cache.
	_, err = service.Insights(context.Background(), "alice", p.Year, p.Month)
	require.NoError(t, err)
	assert.Equal(t, int32(2), counting.calls.Load())
}

func TestHandleTransactionChangedRejectsBadPeriod(t *testing.T) {
	w, _, _, _ := newWorkerFixture(t)

	err := w.HandleTransactionChanged(context.Background(), &event.TransactionChanged{
		Tenant: "alice",
		Year:   2024,
		Month:  13,
	})

	assert.ErrorIs(t, err, core.ErrInvalidPeriod)
}

func TestSweepCurrentMonthCoversAllTenants(t *testing.T) {
	w, store, counting, _ := newWorkerFixture(t)
	p := core.CurrentPeriod()
	seedTenant(t, store, "alice", p)
	seedTenant(t, store, "bob", p)

	require.NoError(t, w.SweepCurrentMonth(context.Background()))

	assert.Equal(t, int32(2), counting.calls.Load())
}

func TestSweepCurrentMonthNoTenants(t *testing.T) {
	w, _, counting, _ := newWorkerFixture(t)

	require.NoError(t, w.SweepCurrentMonth(context.Background()))

	assert.Equal(t, int32(0), counting.calls.Load())
}
