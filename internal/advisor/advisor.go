// Package advisor turns benchmark reports into spending insight text.
//
// Two strategies exist: RuleBased derives deterministic good/bad habit lists
// from the report, and Gemini asks a model for a narrative. Both sit behind
// the insight cache, which decides when they run.
package advisor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"finsight/internal/core"
)

// RuleBased produces deterministic insights straight from the report
// numbers. It is the default strategy and never calls out of process.
type RuleBased struct{}

func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

func (a *RuleBased) Advise(_ context.Context, report core.BenchmarkReport) (core.Insights, error) {
	insights := core.Insights{
		Period:      report.Period,
		GoodHabits:  []string{},
		BadHabits:   []string{},
		Report:      report,
		GeneratedAt: time.Now().UTC(),
	}

	categories := make([]string, 0, len(report.Categories))
	for name := range report.Categories {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	for _, name := range categories {
		entry := report.Categories[name]
		switch {
		case entry.OverBenchmark:
			insights.BadHabits = append(insights.BadHabits, fmt.Sprintf(
				"%s spending is %.1f%% of income, above the %.0f%% target",
				name, entry.PercentageOfIncome, entry.Benchmark))
		case entry.Total > 0:
			insights.GoodHabits = append(insights.GoodHabits, fmt.Sprintf(
				"%s spending is %.1f%% of income, within the %.0f%% target",
				name, entry.PercentageOfIncome, entry.Benchmark))
		}
	}

	savings := savingsRate(report)
	switch {
	case savings > 0:
		insights.GoodHabits = append(insights.GoodHabits, fmt.Sprintf(
			"You are saving %.1f%% of your income this month", savings))
	case savings < 0:
		insights.BadHabits = append(insights.BadHabits,
			"You are spending more than you earn this month")
	}

	if len(report.TopExpenses) > 0 {
		top := report.TopExpenses[0]
		insights.Summary = fmt.Sprintf("Largest expense category: %s (%.2f)", top.Category, top.Total)
	} else {
		insights.Summary = "No expenses recorded for this period"
	}

	return insights, nil
}

// savingsRate recovers the percentage saved from the report's category
// percentages. Income is unknown here, so derive it from totals: when no
// category carries a percentage the income was zero and the rate is 0.
func savingsRate(report core.BenchmarkReport) float64 {
	var spentPct float64
	spent := false
	for _, entry := range report.Categories {
		spentPct += entry.PercentageOfIncome
		if entry.PercentageOfIncome > 0 {
			spent = true
		}
	}
	if !spent && spentPct == 0 {
		// Either zero income or zero spend; no claim either way.
		return 0
	}
	return 100 - spentPct
}
