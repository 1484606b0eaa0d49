package designspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRankMap_SortsAndFilters(t *testing.T) {
	entries := []Entry{
		{ID: 1, X: 0.8, Y: 0.3, Z: 0.9},
		{ID: 2, X: 0.2, Y: -1, Z: 0.00005}, // y sentinel, z below floor
		{ID: 3, X: 0.5, Y: 0.7, Z: -1},     // z sentinel
		{ID: 4, X: 0.5, Y: 0.1, Z: -0.5},   // negative z is admissible by magnitude
	}
	m := BuildRankMap(entries, DefaultPolicy())

	assert.Equal(t, []float64{0.2, 0.5, 0.5, 0.8}, m.X)
	assert.Equal(t, []float64{0.1, 0.3, 0.7}, m.Y)
	assert.Equal(t, []float64{-0.5, 0.9}, m.Z)

	assert.NotContains(t, m.Y, -1.0)
	assert.NotContains(t, m.Z, -1.0)
	assert.NotContains(t, m.Z, 0.00005)
}

func TestBuildRankMap_Empty(t *testing.T) {
	m := BuildRankMap(nil, DefaultPolicy())
	require.NotNil(t, m)
	assert.True(t, m.IsEmpty())

	var nilMap *RankMap
	assert.True(t, nilMap.IsEmpty())
}

func TestRankOf_FirstOccurrence(t *testing.T) {
	sorted := []float64{1, 1, 1, 2, 3}

	r, ok := rankOf(sorted, 1)
	require.True(t, ok)
	// Duplicates share the leftmost index: 0/(5-1).
	assert.Equal(t, 0.0, r)

	r, ok = rankOf(sorted, 2)
	require.True(t, ok)
	assert.Equal(t, 0.75, r)

	r, ok = rankOf(sorted, 3)
	require.True(t, ok)
	assert.Equal(t, 1.0, r)
}

func TestRankOf_NotPresent(t *testing.T) {
	_, ok := rankOf([]float64{0.2, 0.5, 0.8}, 0.3)
	assert.False(t, ok)
}

func TestRankOf_Degenerate(t *testing.T) {
	r, ok := rankOf([]float64{42}, 42)
	assert.True(t, ok)
	assert.Equal(t, 0.5, r)

	_, ok = rankOf([]float64{42}, 7)
	assert.False(t, ok)

	_, ok = rankOf(nil, 7)
	assert.False(t, ok)
}

func TestRankOf_Monotonic(t *testing.T) {
	sorted := []float64{0.1, 0.2, 0.2, 0.4, 0.9, 1.5}
	prev := -1.0
	for _, v := range sorted {
		r, ok := rankOf(sorted, v)
		require.True(t, ok)
		assert.GreaterOrEqual(t, r, prev, "rank must be non-decreasing in raw value")
		prev = r
	}
}

func TestValueAt_Interpolation(t *testing.T) {
	// Midway between two order statistics.
	assert.InDelta(t, 0.5, valueAt([]float64{0.3, 0.7}, 0.5), 1e-12)

	// Exact rank fractions return the order statistic itself.
	arr := []float64{0.2, 0.5, 0.8}
	assert.Equal(t, 0.2, valueAt(arr, 0))
	assert.Equal(t, 0.5, valueAt(arr, 0.5))
	assert.Equal(t, 0.8, valueAt(arr, 1))
}

func TestValueAt_ClampsAndDegenerates(t *testing.T) {
	arr := []float64{0.2, 0.8}
	assert.Equal(t, 0.2, valueAt(arr, -3))
	assert.Equal(t, 0.8, valueAt(arr, 7))

	assert.Equal(t, 0.0, valueAt(nil, 0.5))
	assert.Equal(t, 0.0, valueAt([]float64{}, 0.5))
	assert.Equal(t, 42.0, valueAt([]float64{42}, 0.5))
}
