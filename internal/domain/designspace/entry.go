// Package designspace implements the rank-based coordinate mapping engine at
// the heart of quadrant: order-statistic normalization of raw catalog scores
// into a uniform [0,1] display range, its approximate inverse, Euclidean
// nearest-neighbor ranking with tie grouping, and mean-radius contour rings.
//
// Every operation in this package is a pure, synchronous computation over
// immutable inputs: no I/O, no goroutines, no shared mutable state.  The
// application layer adds caching and atomic publication around it.
package designspace

import (
	"fmt"
	"math"

	"github.com/quadrantlab/quadrant/pkg/errors"
)

// AxisProfile selects which two of the three raw axes are active.
type AxisProfile string

const (
	// ProfileA pairs x with y.
	ProfileA AxisProfile = "A"
	// ProfileB pairs x with z.
	ProfileB AxisProfile = "B"
)

// IsValid reports whether the profile is one of the known pairs.
func (p AxisProfile) IsValid() bool {
	return p == ProfileA || p == ProfileB
}

// String returns the profile letter.
func (p AxisProfile) String() string { return string(p) }

// ParseAxisProfile parses a string into an AxisProfile.
func ParseAxisProfile(s string) (AxisProfile, error) {
	p := AxisProfile(s)
	if !p.IsValid() {
		return "", errors.New(errors.ErrCodeAxisProfileInvalid, "unsupported axis profile: "+s)
	}
	return p, nil
}

// Policy carries the engine's admissibility and precision rules.  The values
// are business policy inherited from the catalog data model; they are named
// and overridable, not inline literals, but the defaults are canonical.
type Policy struct {
	// Sentinel is the raw value on the secondary axes meaning "not applicable".
	Sentinel float64

	// MagnitudeFloor excludes z values with |z| below it, in addition to the
	// sentinel rule.  It applies to the z axis only.
	MagnitudeFloor float64

	// DistanceDecimals is the rounding precision for tie-grouping distances.
	DistanceDecimals int

	// ContourSegments is the number of angular steps in a contour ring.
	ContourSegments int
}

// Default policy values.
const (
	DefaultSentinel         = -1.0
	DefaultMagnitudeFloor   = 1e-4
	DefaultDistanceDecimals = 5
	DefaultContourSegments  = 36
	DefaultMaxRank          = 5
)

// DefaultPolicy returns the canonical engine policy.
func DefaultPolicy() Policy {
	return Policy{
		Sentinel:         DefaultSentinel,
		MagnitudeFloor:   DefaultMagnitudeFloor,
		DistanceDecimals: DefaultDistanceDecimals,
		ContourSegments:  DefaultContourSegments,
	}
}

// admissibleY reports whether a raw y value participates in rank mapping.
func (p Policy) admissibleY(y float64) bool {
	return y != p.Sentinel
}

// admissibleZ reports whether a raw z value participates in rank mapping.
// z carries the sentinel rule plus the near-zero exclusion.
func (p Policy) admissibleZ(z float64) bool {
	return z != p.Sentinel && math.Abs(z) >= p.MagnitudeFloor
}

// Entry is a catalog item with three raw scalar attributes.  Entries never
// mutate once loaded; normalized coordinates are derived separately.
type Entry struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Visible bool    `json:"visible"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
}

// SecondaryRaw returns the raw value of the profile's secondary axis.
func (e Entry) SecondaryRaw(profile AxisProfile) float64 {
	if profile == ProfileB {
		return e.Z
	}
	return e.Y
}

// NormalizedPoint is a point in the [0,1] rank space.  X is always present;
// the secondary components are present only when the entry's raw value passed
// the admissibility filter for the active profile.  Absence is a first-class
// state, never coerced to zero.
type NormalizedPoint struct {
	X float64  `json:"x"`
	Y *float64 `json:"y,omitempty"`
	Z *float64 `json:"z,omitempty"`
}

// Secondary returns the profile's secondary component and whether it is present.
func (n NormalizedPoint) Secondary(profile AxisProfile) (float64, bool) {
	var v *float64
	if profile == ProfileB {
		v = n.Z
	} else {
		v = n.Y
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Coordinate is a point in raw score space, same presence semantics as
// NormalizedPoint.  It is the currency of denormalization and of persisted
// attraction points.
type Coordinate struct {
	X float64  `json:"x"`
	Y *float64 `json:"y,omitempty"`
	Z *float64 `json:"z,omitempty"`
}

// PlacedEntry is an Entry together with its derived normalized coordinate.
type PlacedEntry struct {
	Entry
	Norm NormalizedPoint `json:"norm"`
}

// String renders a compact debugging representation.
func (e PlacedEntry) String() string {
	return fmt.Sprintf("PlacedEntry{id=%d, x=%.5f}", e.ID, e.Norm.X)
}

// Float is a convenience constructor for optional coordinate components.
func Float(v float64) *float64 { return &v }
