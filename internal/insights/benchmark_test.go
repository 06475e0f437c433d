package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/core"
)

func testBenchmarks() map[string]float64 {
	return map[string]float64{
		"Food":    15,
		"Housing": 30,
		"Other":   10,
	}
}

func TestCompareScenario(t *testing.T) {
	summary := core.PeriodSummary{
		Period:        core.Period{Year: 2024, Month: 6},
		TotalIncome:   1000,
		TotalExpenses: 1500,
		Net:           -500,
		SavingsRate:   -50,
		CategoryTotals: map[string]float64{
			"Food":    300,
			"Housing": 1200,
		},
	}

	report := Compare(summary, testBenchmarks())

	food := report.Categories["Food"]
	assert.Equal(t, 30.0, food.PercentageOfIncome)
	assert.True(t, food.OverBenchmark)

	housing := report.Categories["Housing"]
	assert.Equal(t, 120.0, housing.PercentageOfIncome)
	assert.True(t, housing.OverBenchmark)
}

func TestCompareEveryBenchmarkCategoryPresent(t *testing.T) {
	summary := core.PeriodSummary{
		Period:         core.Period{Year: 2024, Month: 6},
		TotalIncome:    1000,
		CategoryTotals: map[string]float64{},
	}

	report := Compare(summary, testBenchmarks())

	for category := range testBenchmarks() {
		entry, ok := report.Categories[category]
		require.True(t, ok, "category %s missing from report", category)
		assert.Equal(t, 0.0, entry.Total)
		assert.Equal(t, 0.0, entry.PercentageOfIncome)
		assert.False(t, entry.OverBenchmark)
	}
}

func TestCompareUnknownCategoryRollsIntoOther(t *testing.T) {
	summary := core.PeriodSummary{
		Period:        core.Period{Year: 2024, Month: 6},
		TotalIncome:   1000,
		TotalExpenses: 70,
		CategoryTotals: map[string]float64{
			"Cryptids": 40,
			"other":    30,
		},
	}

	report := Compare(summary, testBenchmarks())

	other := report.Categories[OverflowCategory]
	assert.Equal(t, 70.0, other.Total)
	assert.NotContains(t, report.Categories, "Cryptids")
}

func TestCompareZeroIncomeNoDivision(t *testing.T) {
	summary := core.PeriodSummary{
		Period:        core.Period{Year: 2024, Month: 6},
		TotalExpenses: 100,
		CategoryTotals: map[string]float64{
			"Food": 100,
		},
	}

	report := Compare(summary, testBenchmarks())

	assert.Equal(t, 0.0, report.Categories["Food"].PercentageOfIncome)
	assert.False(t, report.Categories["Food"].OverBenchmark)
}

func TestCompareTopExpensesRanking(t *testing.T) {
	summary := core.PeriodSummary{
		Period:        core.Period{Year: 2024, Month: 6},
		TotalIncome:   1000,
		TotalExpenses: 450,
		CategoryTotals: map[string]float64{
			"Food":    100,
			"Housing": 200,
			"Alpha":   50,
			"Beta":    50,
		},
	}
	benchmarks := map[string]float64{
		"Food": 15, "Housing": 30, "Alpha": 5, "Beta": 5, "Other": 10,
	}

	report := Compare(summary, benchmarks)

	require.Len(t, report.TopExpenses, 3)
	assert.Equal(t, core.ExpenseRank{Category: "Housing", Total: 200}, report.TopExpenses[0])
	assert.Equal(t, core.ExpenseRank{Category: "Food", Total: 100}, report.TopExpenses[1])
	// Tie between Alpha and Beta broken by name ascending.
	assert.Equal(t, core.ExpenseRank{Category: "Alpha", Total: 50}, report.TopExpenses[2])
}

func TestCompareTopExpensesFewerThanThree(t *testing.T) {
	summary := core.PeriodSummary{
		Period:        core.Period{Year: 2024, Month: 6},
		TotalIncome:   1000,
		TotalExpenses: 100,
		CategoryTotals: map[string]float64{
			"Food": 100,
		},
	}

	report := Compare(summary, testBenchmarks())

	require.Len(t, report.TopExpenses, 1)
	assert.Equal(t, "Food", report.TopExpenses[0].Category)
}

func TestCompareEmptySummary(t *testing.T) {
	report := Compare(Summarize(nil, core.Period{Year: 2024, Month: 6}), testBenchmarks())

	assert.Empty(t, report.TopExpenses)
	assert.Len(t, report.Categories, len(testBenchmarks()))
}
