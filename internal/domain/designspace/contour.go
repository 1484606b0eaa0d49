package designspace

import "math"

// Point is a 2-D position in rank space, used for renderable contour paths.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ContourGenerator produces closed polygons approximating a group's mean
// distance from a center point.
type ContourGenerator struct {
	policy Policy
}

// NewContourGenerator constructs a ContourGenerator with the given policy.
func NewContourGenerator(policy Policy) *ContourGenerator {
	return &ContourGenerator{policy: policy}
}

// Contour emits a closed ring at the arithmetic mean of the entries'
// distances from the center.  Each entry's planar position is (normalized x,
// active secondary component); the ring samples the angle uniformly from 0 to
// 2π inclusive, so the path has ContourSegments+1 points and the first and
// last coincide.  An empty entry set yields an empty path.
//
// The result is a decorative mean-radius ring for visual emphasis, not a
// density-weighted isoline; callers must not read statistical meaning into it.
func (g *ContourGenerator) Contour(entries []PlacedEntry, profile AxisProfile, center NormalizedPoint) []Point {
	if len(entries) == 0 {
		return []Point{}
	}

	var sum float64
	for _, e := range entries {
		sum += distance(center, e, profile)
	}
	radius := sum / float64(len(entries))

	cy, _ := center.Secondary(profile)
	segments := g.policy.ContourSegments
	if segments < 3 {
		segments = DefaultContourSegments
	}

	path := make([]Point, 0, segments+1)
	step := 2 * math.Pi / float64(segments)
	for i := 0; i < segments; i++ {
		angle := float64(i) * step
		path = append(path, Point{
			X: center.X + radius*math.Cos(angle),
			Y: cy + radius*math.Sin(angle),
		})
	}
	// The 2π sample coincides with the 0 sample; reuse it so the loop closes
	// exactly instead of within floating-point error.
	path = append(path, path[0])
	return path
}
