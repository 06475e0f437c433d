package insights

import (
	"finsight/internal/core"
)

// EvaluateBudget compares configured category limits against actual spend
// for the summarized period. Every budgeted category appears in the result,
// zero-spend included. Spend in a category without a limit is reported under
// Unbudgeted rather than discarded, so uncontrolled spending stays visible.
func EvaluateBudget(budget core.Budget, summary core.PeriodSummary) core.BudgetStatus {
	status := core.BudgetStatus{
		Period:     summary.Period,
		Categories: make(map[string]core.CategoryStatus, len(budget.CategoryLimits)),
	}

	for category, limit := range budget.CategoryLimits {
		spent := summary.CategoryTotals[category]
		status.Categories[category] = core.CategoryStatus{
			Limit:     limit,
			Spent:     spent,
			Remaining: limit - spent, // negative means overspend, not an error
		}
	}

	for category, spent := range summary.CategoryTotals {
		if _, budgeted := budget.CategoryLimits[category]; budgeted {
			continue
		}
		if status.Unbudgeted == nil {
			status.Unbudgeted = make(map[string]float64)
		}
		status.Unbudgeted[category] = spent
	}

	return status
}
