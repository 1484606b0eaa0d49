package designspace

import "sort"

// RankMap holds, per axis, the ascending sorted sequence of admissible raw
// values.  It is the basis for rank normalization and its approximate inverse.
// The y and z slices are filtered before sorting: sentinel values (and, for z,
// near-zero values) never appear.
//
// A slice of length <= 1 is a degenerate axis; normalization then falls back
// to rank 0.5 for every value on it.  A published RankMap is immutable and
// safe for unlimited concurrent readers.
type RankMap struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
	Z []float64 `json:"z"`
}

// BuildRankMap constructs a RankMap from the raw entry set under the given
// policy.  All three axes are built so that a single map serves both axis
// profiles; the profile only decides which secondary axis is consulted.
func BuildRankMap(entries []Entry, policy Policy) *RankMap {
	m := &RankMap{
		X: make([]float64, 0, len(entries)),
		Y: make([]float64, 0, len(entries)),
		Z: make([]float64, 0, len(entries)),
	}
	for _, e := range entries {
		m.X = append(m.X, e.X)
		if policy.admissibleY(e.Y) {
			m.Y = append(m.Y, e.Y)
		}
		if policy.admissibleZ(e.Z) {
			m.Z = append(m.Z, e.Z)
		}
	}
	sort.Float64s(m.X)
	sort.Float64s(m.Y)
	sort.Float64s(m.Z)
	return m
}

// IsEmpty reports whether the map carries no values on any axis.
func (m *RankMap) IsEmpty() bool {
	return m == nil || (len(m.X) == 0 && len(m.Y) == 0 && len(m.Z) == 0)
}

// rankOf locates v in the ascending slice and returns its rank fraction
// i/(n-1), where i is the index of the first occurrence.  Duplicated raw
// values therefore share the rank of their leftmost position; this is a
// deliberate tie policy, not an average-of-ties scheme.
//
// A slice of length <= 1 yields rank 0.5.  The second return value is false
// when v is not present in the slice (it was filtered as inadmissible).
func rankOf(sorted []float64, v float64) (float64, bool) {
	n := len(sorted)
	if n <= 1 {
		if n == 1 && sorted[0] == v {
			return 0.5, true
		}
		return 0.5, false
	}
	i := sort.SearchFloat64s(sorted, v)
	if i >= n || sorted[i] != v {
		return 0, false
	}
	return float64(i) / float64(n-1), true
}

// valueAt maps a rank fraction t back to an approximate raw value by linear
// interpolation between the two bracketing order statistics.  t is clamped to
// [0,1] first.  Degenerate slices resolve to defined fallbacks: empty -> 0,
// single element -> that element.
//
// The result is exact only when t corresponds precisely to an existing rank
// fraction; elsewhere it estimates a value between two real order statistics
// that may not equal any entry's actual raw value.  Accepted behavior.
func valueAt(sorted []float64, t float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	f := t * float64(n-1)
	lo := int(f)
	hi := lo
	if lo < n-1 {
		hi = lo + 1
	}
	frac := f - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
