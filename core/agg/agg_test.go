package agg

import (
	"testing"

	"github.com/huangsam/revmetrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMcCabe(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		units  int
		sum    int
		min    int
		max    int
		mean   int
		median int
	}{
		{"single unit", []int{4}, 1, 4, 4, 4, 4, 4},
		{"two units", []int{2, 4}, 2, 6, 2, 4, 3, 3},
		{"odd count", []int{3, 1, 2}, 3, 6, 1, 3, 2, 2},
		{"even count floors median", []int{1, 2, 3, 5}, 4, 11, 1, 5, 2, 2},
		{"truncating mean", []int{1, 2}, 2, 3, 1, 2, 1, 1},
		{"zero complexity is measured", []int{0, 0}, 2, 0, 0, 0, 0, 0},
		{"more units than values", []int{5}, 2, 5, 5, 5, 2, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := McCabe(tt.values, tt.units)
			require.NotNil(t, stats.Sum)
			assert.Equal(t, tt.sum, *stats.Sum)
			assert.Equal(t, tt.min, *stats.Min)
			assert.Equal(t, tt.max, *stats.Max)
			assert.Equal(t, tt.mean, *stats.Mean)
			assert.Equal(t, tt.median, *stats.Median)
		})
	}
}

func TestMcCabe_NoUnits(t *testing.T) {
	assert.Equal(t, schema.McCabeStats{}, McCabe(nil, 0))
	assert.Equal(t, schema.McCabeStats{}, McCabe([]int{}, 3))
	assert.Equal(t, schema.McCabeStats{}, McCabe([]int{1, 2}, 0))
}

func TestMcCabe_DoesNotReorderInput(t *testing.T) {
	values := []int{9, 1, 5}
	_ = McCabe(values, len(values))
	assert.Equal(t, []int{9, 1, 5}, values)
}
