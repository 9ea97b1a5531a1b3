// Package agg has aggregation logic for per-unit complexity values.
package agg

import (
	"slices"

	"github.com/huangsam/revmetrics/schema"
)

// McCabe summarizes per-unit cyclomatic complexity values.
// The mean divides by units with truncation. The median is taken over the sorted
// values: the middle element for an odd count, the floor average of the two
// middle elements for an even count. With no units or no values every field is nil,
// so "no functions measured" stays distinct from "measured, complexity zero".
func McCabe(values []int, units int) schema.McCabeStats {
	if units <= 0 || len(values) == 0 {
		return schema.McCabeStats{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	sum := 0
	for _, v := range sorted {
		sum += v
	}

	return schema.McCabeStats{
		Sum:    schema.Ptr(sum),
		Min:    schema.Ptr(sorted[0]),
		Max:    schema.Ptr(sorted[len(sorted)-1]),
		Mean:   schema.Ptr(sum / units),
		Median: schema.Ptr(median(sorted)),
	}
}

// median expects a sorted, non-empty slice.
func median(sorted []int) int {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
