package designspace

import "sort"

// Normalizer assigns every catalog entry a rank-based normalized coordinate.
// Raw scores in this catalog are sparse and unevenly distributed; mapping each
// value to its order-statistic rank spreads the entries evenly across the
// [0,1] display range regardless of the raw distribution.
type Normalizer struct {
	policy Policy
}

// NewNormalizer constructs a Normalizer with the given policy.
func NewNormalizer(policy Policy) *Normalizer {
	return &Normalizer{policy: policy}
}

// Normalize builds the RankMap for the entry set and derives each entry's
// normalized coordinate under the given profile.
//
// The x component is always assigned: the rank of the entry's raw x in the
// sorted x sequence, or 0.5 if the value cannot be located (degenerate map or
// a malformed entry set).  The profile's secondary component is assigned only
// when the raw value passed the admissibility filter; otherwise it stays
// absent rather than defaulting to a number.  Entries with identical raw
// values receive identical ranks (first-occurrence index).
//
// Normalize never fails; every degenerate input resolves to a defined
// fallback.  The input slice is not mutated.
func (n *Normalizer) Normalize(entries []Entry, profile AxisProfile) ([]PlacedEntry, *RankMap) {
	m := BuildRankMap(entries, n.policy)

	placed := make([]PlacedEntry, len(entries))
	for i, e := range entries {
		np := NormalizedPoint{X: 0.5}
		if r, ok := rankOf(m.X, e.X); ok {
			np.X = r
		}

		switch profile {
		case ProfileB:
			if n.policy.admissibleZ(e.Z) {
				if r, ok := rankOf(m.Z, e.Z); ok {
					np.Z = Float(r)
				}
			}
		default:
			if n.policy.admissibleY(e.Y) {
				if r, ok := rankOf(m.Y, e.Y); ok {
					np.Y = Float(r)
				}
			}
		}

		placed[i] = PlacedEntry{Entry: e, Norm: np}
	}
	return placed, m
}

// NormalizeQuery maps a raw coordinate into rank space against an existing
// RankMap, using the same lookup rules as entry normalization.  Raw values
// that do not exist in the map are projected to the nearest rank fraction by
// inverse interpolation of the bracketing order statistics, so that operator-
// chosen raw points (which rarely coincide with catalog values) still land in
// a sensible spot.
func (n *Normalizer) NormalizeQuery(coord Coordinate, m *RankMap, profile AxisProfile) NormalizedPoint {
	np := NormalizedPoint{X: projectRank(m.X, coord.X)}

	switch profile {
	case ProfileB:
		if coord.Z != nil && n.policy.admissibleZ(*coord.Z) {
			np.Z = Float(projectRank(m.Z, *coord.Z))
		}
	default:
		if coord.Y != nil && n.policy.admissibleY(*coord.Y) {
			np.Y = Float(projectRank(m.Y, *coord.Y))
		}
	}
	return np
}

// projectRank returns the rank fraction for v, falling back to linear
// interpolation between neighbouring order statistics when v is not an exact
// member of the slice.  Values outside the observed range clamp to 0 or 1.
func projectRank(sorted []float64, v float64) float64 {
	n := len(sorted)
	if n <= 1 {
		return 0.5
	}
	if r, ok := rankOf(sorted, v); ok {
		return r
	}
	if v <= sorted[0] {
		return 0
	}
	if v >= sorted[n-1] {
		return 1
	}
	// v falls strictly between two order statistics.
	i := sort.SearchFloat64s(sorted, v)
	span := sorted[i] - sorted[i-1]
	frac := 0.5
	if span > 0 {
		frac = (v - sorted[i-1]) / span
	}
	return (float64(i-1) + frac) / float64(n-1)
}
