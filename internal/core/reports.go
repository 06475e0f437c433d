package core

import "time"

// PeriodSummary is the aggregate view of a tenant's transactions for one
// period. It is derived data: recomputed per request unless served from the
// insight cache.
type PeriodSummary struct {
	Period         Period             `json:"period"`
	TotalIncome    float64            `json:"total_income"`
	TotalExpenses  float64            `json:"total_expenses"`
	Net            float64            `json:"net"`
	SavingsRate    float64            `json:"savings_rate"`
	CategoryTotals map[string]float64 `json:"category_totals"`
}

// CategoryReport compares one category's spend against its benchmark.
type CategoryReport struct {
	Total              float64 `json:"total"`
	PercentageOfIncome float64 `json:"percentage_of_income"`
	Benchmark          float64 `json:"benchmark"`
	OverBenchmark      bool    `json:"over_benchmark"`
}

// ExpenseRank is one entry of the top-expenses ranking.
type ExpenseRank struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// BenchmarkReport maps a PeriodSummary onto the benchmark table.
type BenchmarkReport struct {
	Period      Period                    `json:"period"`
	Benchmarks  map[string]float64        `json:"benchmarks"`
	Categories  map[string]CategoryReport `json:"categories"`
	TopExpenses []ExpenseRank             `json:"top_expenses"`
}

// CategoryStatus is one budget line: limit vs actual spend. Remaining is
// signed; a negative value means overspend and is a normal result.
type CategoryStatus struct {
	Limit     float64 `json:"limit"`
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
}

// BudgetStatus reports compliance for every budgeted category plus any
// spend that has no configured limit.
type BudgetStatus struct {
	Period     Period                    `json:"period"`
	Categories map[string]CategoryStatus `json:"categories"`
	Unbudgeted map[string]float64        `json:"unbudgeted,omitempty"`
}

// Insights is the advisor's payload served through the cache.
type Insights struct {
	Period      Period          `json:"period"`
	Summary     string          `json:"summary,omitempty"`
	GoodHabits  []string        `json:"good_habits"`
	BadHabits   []string        `json:"bad_habits"`
	Report      BenchmarkReport `json:"report"`
	GeneratedAt time.Time       `json:"generated_at"`
}
