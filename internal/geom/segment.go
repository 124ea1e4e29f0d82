package geom

// Segment is an ordered pair of endpoints. Order is fixed for iteration but
// irrelevant to the intersection tests.
type Segment struct {
	A Vec2 `json:"a"`
	B Vec2 `json:"b"`
}

// interiorMargin excludes shared endpoints when testing polyline segments
// against each other: both parameters must land strictly inside
// (interiorMargin, 1-interiorMargin).
const interiorMargin = 0.01

// parallelEps treats near-parallel segment pairs as non-intersecting.
const parallelEps = 1e-9

// solve finds the parametric intersection of the infinite lines through s and
// other. It reports false for (near) parallel lines.
func solve(s, other Segment) (t, u float64, ok bool) {
	d1 := s.B.Sub(s.A)
	d2 := other.B.Sub(other.A)

	denom := d1.Cross(d2)
	if denom > -parallelEps && denom < parallelEps {
		return 0, 0, false
	}

	diff := other.A.Sub(s.A)
	t = diff.Cross(d2) / denom
	u = diff.Cross(d1) / denom
	return t, u, true
}

// IntersectsStrict reports whether the segments cross with both parameters
// strictly inside the open interval, so polyline neighbors sharing an
// endpoint do not count as intersecting.
func (s Segment) IntersectsStrict(other Segment) bool {
	t, u, ok := solve(s, other)
	if !ok {
		return false
	}
	return t > interiorMargin && t < 1-interiorMargin &&
		u > interiorMargin && u < 1-interiorMargin
}

// Intersects reports whether the closed segments share a point, endpoints
// included. Used for collision and checkpoint-crossing tests.
func (s Segment) Intersects(other Segment) bool {
	t, u, ok := solve(s, other)
	if !ok {
		return false
	}
	return t >= 0 && t <= 1 && u >= 0 && u <= 1
}

// Intersection returns the crossing point of the closed segments, if any.
func (s Segment) Intersection(other Segment) (Vec2, bool) {
	t, u, ok := solve(s, other)
	if !ok || t < 0 || t > 1 || u < 0 || u > 1 {
		return Vec2{}, false
	}
	return s.A.Add(s.B.Sub(s.A).Scale(t)), true
}

// Midpoint returns the center of the segment.
func (s Segment) Midpoint() Vec2 {
	return Midpoint(s.A, s.B)
}

func (s Segment) Length() float64 {
	return s.A.Dist(s.B)
}
