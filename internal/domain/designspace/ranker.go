package designspace

import (
	"math"
	"sort"
)

// RankGroup is a cluster of entries sharing an identical rounded distance
// from the query point.  Ranks are 1-based and strictly increasing across
// groups; Distance is the group's representative rounded distance.
type RankGroup struct {
	Rank     int           `json:"rank"`
	Distance float64       `json:"distance"`
	Entries  []PlacedEntry `json:"entries"`
}

// Ranker computes distance-ordered, tie-grouped neighbor rankings in rank
// space.
type Ranker struct {
	policy Policy
}

// NewRanker constructs a Ranker with the given policy.
func NewRanker(policy Policy) *Ranker {
	return &Ranker{policy: policy}
}

// eligible reports whether an entry participates in ranking: it must be
// visible and its profile's secondary component must be present.  Entries
// excluded by the admissibility filter never compete, so a hidden or
// not-applicable entry can never crowd out a real neighbor.
func eligible(e PlacedEntry, profile AxisProfile) bool {
	if !e.Visible {
		return false
	}
	_, ok := e.Norm.Secondary(profile)
	return ok
}

// distance computes the Euclidean distance between the query and an entry
// over the profile's two active axes.  Eligibility filtering has already
// guaranteed the entry's secondary presence; a missing query component is
// treated as 0 purely as an internal computation detail.
func distance(query NormalizedPoint, e PlacedEntry, profile AxisProfile) float64 {
	qs, _ := query.Secondary(profile)
	es, _ := e.Norm.Secondary(profile)
	dx := query.X - e.Norm.X
	ds := qs - es
	return math.Sqrt(dx*dx + ds*ds)
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

// Recommend returns at most maxRank distance-ordered rank groups of eligible
// entries around the query point.
//
// Entries at the same rounded distance share one rank.  The rank counter
// stops opening new groups once it would exceed maxRank, but a group already
// in progress is never split: every entry tied with the last accepted group's
// distance is included even when discovered past the threshold.  An empty
// eligible set yields an empty result; if all distances round equal, a single
// rank-1 group contains every eligible entry.
func (r *Ranker) Recommend(query NormalizedPoint, entries []PlacedEntry, profile AxisProfile, maxRank int) []RankGroup {
	if maxRank < 1 {
		maxRank = 1
	}

	type scored struct {
		entry PlacedEntry
		dist  float64
	}
	candidates := make([]scored, 0, len(entries))
	for _, e := range entries {
		if !eligible(e, profile) {
			continue
		}
		candidates = append(candidates, scored{entry: e, dist: distance(query, e, profile)})
	}
	if len(candidates) == 0 {
		return []RankGroup{}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})

	groups := make([]RankGroup, 0, maxRank)
	for _, c := range candidates {
		rounded := roundTo(c.dist, r.policy.DistanceDecimals)

		if len(groups) > 0 && groups[len(groups)-1].Distance == rounded {
			last := &groups[len(groups)-1]
			last.Entries = append(last.Entries, c.entry)
			continue
		}
		if len(groups) == maxRank {
			break
		}
		groups = append(groups, RankGroup{
			Rank:     len(groups) + 1,
			Distance: rounded,
			Entries:  []PlacedEntry{c.entry},
		})
	}
	return groups
}
