package insights

import (
	"sort"

	"finsight/internal/core"
)

// OverflowCategory collects spend in categories that have no entry in the
// benchmark table, so nothing is silently dropped.
const OverflowCategory = "Other"

// topExpenseCount bounds the top-expenses ranking.
const topExpenseCount = 3

// Compare maps a PeriodSummary onto the benchmark table. Every category in
// the table appears in the report even with zero spend; categories missing
// from the table are rolled into OverflowCategory.
func Compare(summary core.PeriodSummary, benchmarks map[string]float64) core.BenchmarkReport {
	report := core.BenchmarkReport{
		Period:      summary.Period,
		Benchmarks:  benchmarks,
		Categories:  make(map[string]core.CategoryReport, len(benchmarks)),
		TopExpenses: []core.ExpenseRank{},
	}

	totals := make(map[string]float64, len(benchmarks))
	for category := range benchmarks {
		totals[category] = 0
	}
	for category, total := range summary.CategoryTotals {
		if _, known := benchmarks[category]; known {
			totals[category] += total
		} else {
			totals[OverflowCategory] += total
		}
	}

	for category, total := range totals {
		entry := core.CategoryReport{
			Total:     total,
			Benchmark: benchmarks[category],
		}
		if summary.TotalIncome > 0 {
			entry.PercentageOfIncome = 100 * total / summary.TotalIncome
		}
		entry.OverBenchmark = entry.PercentageOfIncome > entry.Benchmark
		report.Categories[category] = entry
	}

	report.TopExpenses = rankTopExpenses(totals)
	return report
}

// rankTopExpenses returns up to topExpenseCount categories with nonzero
// spend, amount descending, names ascending on ties for determinism.
func rankTopExpenses(totals map[string]float64) []core.ExpenseRank {
	ranked := make([]core.ExpenseRank, 0, len(totals))
	for category, total := range totals {
		if total > 0 {
			ranked = append(ranked, core.ExpenseRank{Category: category, Total: total})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Total != ranked[j].Total {
			return ranked[i].Total > ranked[j].Total
		}
		return ranked[i].Category < ranked[j].Category
	})
	if len(ranked) > topExpenseCount {
		ranked = ranked[:topExpenseCount]
	}
	return ranked
}
