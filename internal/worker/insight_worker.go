// Package worker recomputes insights out of band: on transaction events from
// AMQP and on a periodic sweep over all known tenants.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finsight/internal/core"
	"finsight/internal/event"
	"finsight/internal/insights"
)

// TenantLister enumerates tenants for the periodic sweep.
type TenantLister interface {
	Tenants(ctx context.Context) ([]string, error)
}

// InsightWorker keeps insight computation warm and surfaces over-benchmark
// categories in the logs, so a budget breach shows up without anyone
// opening the dashboard.
type InsightWorker struct {
	service *insights.Service
	tenants TenantLister
}

func NewInsightWorker(service *insights.Service, tenants TenantLister) *InsightWorker {
	return &InsightWorker{
		service: service,
		tenants: tenants,
	}
}

// HandleTransactionChanged recomputes the affected tenant/period key.
func (w *InsightWorker) HandleTransactionChanged(ctx context.Context, msg *event.TransactionChanged) error {
	p, err := core.NewPeriod(msg.Year, msg.Month)
	if err != nil {
		return fmt.Errorf("event period: %w", err)
	}

	// The event means the cached result is out of date.
	w.service.Invalidate(msg.Tenant, p)

	return w.processPeriod(ctx, msg.Tenant, p)
}

// SweepCurrentMonth recomputes the current period for every known tenant.
// Scheduled via cron; also the safety net for dropped events.
func (w *InsightWorker) SweepCurrentMonth(ctx context.Context) error {
	tenants, err := w.tenants.Tenants(ctx)
	if err != nil {
		return fmt.Errorf("list tenants: %w", err)
	}

	p := core.CurrentPeriod()
	for _, tenant := range tenants {
		if err := w.processPeriod(ctx, tenant, p); err != nil {
			slog.ErrorContext(ctx, "Sweep failed for tenant",
				"tenant", tenant,
				"period", p.String(),
				"error", err)
		}
	}

	slog.InfoContext(ctx, "Insight sweep completed",
		"tenants", len(tenants),
		"period", p.String())
	return nil
}

func (w *InsightWorker) processPeriod(ctx context.Context, tenant string, p core.Period) error {
	result, err := w.service.Insights(ctx, tenant, p.Year, p.Month)
	if err != nil {
		return fmt.Errorf("compute insights: %w", err)
	}

	for name, entry := range result.Report.Categories {
		if entry.OverBenchmark {
			slog.WarnContext(ctx, "Category over benchmark",
				"tenant", tenant,
				"period", p.String(),
				"category", name,
				"percentage_of_income", entry.PercentageOfIncome,
				"benchmark", entry.Benchmark)
		}
	}

	return nil
}
