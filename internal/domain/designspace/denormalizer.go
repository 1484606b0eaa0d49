package designspace

// Denormalizer maps points in rank space back to approximate raw coordinates.
// It is the approximate inverse of Normalize: exact only at positions that
// coincide with an existing rank fraction, a linear estimate between two real
// order statistics everywhere else.
type Denormalizer struct{}

// NewDenormalizer constructs a Denormalizer.
func NewDenormalizer() *Denormalizer {
	return &Denormalizer{}
}

// Denormalize translates a normalized point into raw score space using the
// given RankMap.  Each present component is clamped into [0,1], scaled to a
// fractional index over the axis's order statistics, and linearly
// interpolated between the bracketing values.  Absent components stay absent.
// Degenerate axes resolve to defined fallbacks: empty -> 0, single
// element -> that element.
func (d *Denormalizer) Denormalize(p NormalizedPoint, m *RankMap, profile AxisProfile) Coordinate {
	c := Coordinate{X: valueAt(m.X, p.X)}

	switch profile {
	case ProfileB:
		if p.Z != nil {
			c.Z = Float(valueAt(m.Z, *p.Z))
		}
	default:
		if p.Y != nil {
			c.Y = Float(valueAt(m.Y, *p.Y))
		}
	}
	return c
}
