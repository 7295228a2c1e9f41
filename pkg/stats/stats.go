// Package stats provides statistical utility functions for the
// similarity engine.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Median returns the median of values. Returns 0 if values is empty.
// The input slice is not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Mean returns the arithmetic mean of values, or 0 if values is empty.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}
