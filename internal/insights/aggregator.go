package insights

import (
	"finsight/internal/core"
)

// Summarize aggregates transactions into a PeriodSummary for the given
// period. Transactions outside [first day of month, first day of next month)
// are ignored. Pure function: identical inputs always produce identical
// output, which the insight cache relies on.
func Summarize(txs []core.Transaction, p core.Period) core.PeriodSummary {
	summary := core.PeriodSummary{
		Period:         p,
		CategoryTotals: make(map[string]float64),
	}

	for _, tx := range txs {
		if !p.Contains(tx.Date) {
			continue
		}
		if tx.IsIncome {
			summary.TotalIncome += tx.Amount
			continue
		}
		summary.TotalExpenses += tx.Amount
		category := core.NormalizeCategory(tx.Category)
		summary.CategoryTotals[category] += tx.Amount
	}

	summary.Net = summary.TotalIncome - summary.TotalExpenses
	// Savings rate is a percentage of income; zero income yields zero rather
	// than a division by zero.
	if summary.TotalIncome > 0 {
		summary.SavingsRate = 100 * summary.Net / summary.TotalIncome
	}

	return summary
}
