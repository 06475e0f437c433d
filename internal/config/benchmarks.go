package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultBenchmarks is the built-in benchmark table: per-category ceilings
// as a percentage of income. "Other" also absorbs spend in categories the
// table doesn't know.
func DefaultBenchmarks() map[string]float64 {
	return map[string]float64{
		"Housing":       30,
		"Food":          15,
		"Transport":     10,
		"Utilities":     8,
		"Healthcare":    6,
		"Entertainment": 5,
		"Shopping":      7,
		"Other":         10,
	}
}

type benchmarksFile struct {
	Benchmarks map[string]float64 `yaml:"benchmarks"`
}

// LoadBenchmarks reads a benchmark table from a YAML file, or returns the
// default table when path is empty.
func LoadBenchmarks(path string) (map[string]float64, error) {
	if path == "" {
		return DefaultBenchmarks(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read benchmarks file: %w", err)
	}

	var parsed benchmarksFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse benchmarks file: %w", err)
	}
	if len(parsed.Benchmarks) == 0 {
		return nil, fmt.Errorf("benchmarks file %s defines no categories", path)
	}
	for category, ceiling := range parsed.Benchmarks {
		if ceiling < 0 {
			return nil, fmt.Errorf("benchmark for %q is negative", category)
		}
	}

	return parsed.Benchmarks, nil
}
