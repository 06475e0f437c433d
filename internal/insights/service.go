package insights

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finsight/internal/cache"
	"finsight/internal/core"
)

// Ports for outbound collaborators.
type (
	// TransactionFeed supplies the transactions for a tenant and period.
	// Implementations return a finite, date-filtered set; the aggregator
	// re-applies the half-open period bound regardless.
	TransactionFeed interface {
		ListTransactions(ctx context.Context, tenant string, p core.Period) ([]core.Transaction, error)
	}

	// BudgetStore supplies a tenant's configured budget.
	// Returns core.ErrNoBudget when none has been set.
	BudgetStore interface {
		GetBudget(ctx context.Context, tenant string) (core.Budget, error)
	}

	// Advisor turns a benchmark report into insight text. Implementations
	// may call an external model; the cache in front keeps that from
	// happening on every request.
	Advisor interface {
		Advise(ctx context.Context, report core.BenchmarkReport) (core.Insights, error)
	}
)

// Service orchestrates aggregation, benchmark comparison, budget evaluation
// and cached insight generation. The benchmark table is injected at
// construction and treated as immutable.
type Service struct {
	feed       TransactionFeed
	budgets    BudgetStore
	advisor    Advisor
	cache      *cache.Cache[core.Insights]
	benchmarks map[string]float64
	ttl        time.Duration
}

func NewService(feed TransactionFeed, budgets BudgetStore, advisor Advisor, c *cache.Cache[core.Insights], benchmarks map[string]float64, ttl time.Duration) *Service {
	return &Service{
		feed:       feed,
		budgets:    budgets,
		advisor:    advisor,
		cache:      c,
		benchmarks: benchmarks,
		ttl:        ttl,
	}
}

// PeriodSummary aggregates a tenant's transactions for year/month.
func (s *Service) PeriodSummary(ctx context.Context, tenant string, year, month int) (core.PeriodSummary, error) {
	p, err := core.NewPeriod(year, month)
	if err != nil {
		return core.PeriodSummary{}, err
	}

	txs, err := s.feed.ListTransactions(ctx, tenant, p)
	if err != nil {
		return core.PeriodSummary{}, fmt.Errorf("list transactions: %w", err)
	}

	return Summarize(txs, p), nil
}

// BenchmarkReport compares a tenant's period spend against the benchmark
// table.
func (s *Service) BenchmarkReport(ctx context.Context, tenant string, year, month int) (core.BenchmarkReport, error) {
	summary, err := s.PeriodSummary(ctx, tenant, year, month)
	if err != nil {
		return core.BenchmarkReport{}, err
	}
	return Compare(summary, s.benchmarks), nil
}

// BudgetStatus evaluates the tenant's stored budget against actual spend.
func (s *Service) BudgetStatus(ctx context.Context, tenant string, year, month int) (core.BudgetStatus, error) {
	summary, err := s.PeriodSummary(ctx, tenant, year, month)
	if err != nil {
		return core.BudgetStatus{}, err
	}

	budget, err := s.budgets.GetBudget(ctx, tenant)
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("get budget for %s: %w", tenant, err)
	}

	return EvaluateBudget(budget, summary), nil
}

// Insights returns the advisor payload for the tenant and period, served
// from the cache when fresh. Stale or missing entries trigger exactly one
// recomputation per key, shared by all concurrent callers.
func (s *Service) Insights(ctx context.Context, tenant string, year, month int) (core.Insights, error) {
	p, err := core.NewPeriod(year, month)
	if err != nil {
		return core.Insights{}, err
	}

	return s.cache.GetOrCompute(ctx, cacheKey(tenant, p), s.ttl, func(ctx context.Context) (core.Insights, error) {
		return s.computeInsights(ctx, tenant, p)
	})
}

func (s *Service) computeInsights(ctx context.Context, tenant string, p core.Period) (core.Insights, error) {
	txs, err := s.feed.ListTransactions(ctx, tenant, p)
	if err != nil {
		return core.Insights{}, fmt.Errorf("list transactions: %w", err)
	}

	report := Compare(Summarize(txs, p), s.benchmarks)

	result, err := s.advisor.Advise(ctx, report)
	if err != nil {
		return core.Insights{}, fmt.Errorf("advise: %w", err)
	}

	slog.InfoContext(ctx, "Computed insights",
		"tenant", tenant,
		"period", p.String(),
		"top_expenses", len(report.TopExpenses))

	return result, nil
}

// Invalidate drops the cached insights for a tenant and period. Called by
// write paths so the next read reflects the new transactions.
func (s *Service) Invalidate(tenant string, p core.Period) {
	s.cache.Invalidate(cacheKey(tenant, p))
}

// Warm precomputes insights for a tenant and period, populating the cache.
func (s *Service) Warm(ctx context.Context, tenant string, p core.Period) error {
	_, err := s.Insights(ctx, tenant, p.Year, p.Month)
	return err
}

// Benchmarks exposes the injected benchmark table (read-only by convention).
func (s *Service) Benchmarks() map[string]float64 {
	return s.benchmarks
}

func cacheKey(tenant string, p core.Period) string {
	return tenant + "|" + p.String()
}
