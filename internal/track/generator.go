package track

import (
	"math"
	"math/rand"

	"boidrace/internal/geom"
)

const (
	// maxAttempts bounds the randomized search; each failed candidate
	// perturbs the seed deterministically before retrying.
	maxAttempts      = 25
	seedPerturbation = 7919
)

// fallbackParams is a low-variance, low-cornering configuration that is valid
// by construction, used when every randomized attempt produced intersecting
// geometry.
func fallbackParams(p Params) Params {
	p.NumControlPoints = 8
	p.RadiusVariance = 0.05
	p.CornerTightness = 0
	return p
}

// New generates a track on a width-by-height canvas. The same seed always
// yields the same track. New never fails: after the attempt budget is spent
// it falls back to a near-circular configuration.
func New(width, height float64, seed int64, params Params) *Track {
	params = params.clamp()

	t := &Track{
		Seed:   seed,
		Params: params,
		width:  width,
		height: height,
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		attemptSeed := seed + int64(attempt)*seedPerturbation
		points := drawControlPoints(width, height, attemptSeed, params)
		candidate := buildGeometry(points, params)
		if candidate.valid() {
			t.ControlPoints = points
			t.lastGood = clonePoints(points)
			t.apply(candidate)
			return t
		}
	}

	safe := fallbackParams(params)
	t.Params = safe
	points := drawControlPoints(width, height, seed, safe)
	t.ControlPoints = points
	t.lastGood = clonePoints(points)
	t.apply(buildGeometry(points, safe))
	return t
}

// drawControlPoints places numControlPoints anchors angularly spaced around
// the canvas center, each jittered in angle and radius from a seed-derived
// stream.
func drawControlPoints(width, height float64, seed int64, params Params) []geom.Vec2 {
	rng := rand.New(rand.NewSource(seed))
	center := geom.Vec2{X: width / 2, Y: height / 2}
	baseRadius := math.Min(width, height) * 0.35

	points := make([]geom.Vec2, 0, params.NumControlPoints)
	for i := 0; i < params.NumControlPoints; i++ {
		angle := 2 * math.Pi * float64(i) / float64(params.NumControlPoints)
		if rng.Float64() < params.CornerTightness {
			angle += (rng.Float64()*2 - 1) * params.CornerTightness
		}
		low := baseRadius * (1 - params.RadiusVariance)
		high := baseRadius * (1 + params.RadiusVariance/2)
		radius := low + rng.Float64()*(high-low)
		points = append(points, center.Add(geom.FromAngle(angle).Scale(radius)))
	}
	return points
}

// geometry is a candidate track body, kept separate from Track so a failing
// candidate never tears a live snapshot.
type geometry struct {
	centerLine  []geom.Vec2
	innerWalls  []geom.Segment
	outerWalls  []geom.Segment
	checkpoints []geom.Segment
}

func buildGeometry(points []geom.Vec2, params Params) geometry {
	center := sampleSpline(points, params.SegmentsPerCurve)
	normals := sampleNormals(center)

	half := params.TrackWidth / 2
	n := len(center)
	inner := make([]geom.Vec2, n)
	outer := make([]geom.Vec2, n)
	for i, sample := range center {
		offset := normals[i].Scale(half)
		inner[i] = sample.Sub(offset)
		outer[i] = sample.Add(offset)
	}

	g := geometry{
		centerLine:  center,
		innerWalls:  closePolyline(inner),
		outerWalls:  closePolyline(outer),
		checkpoints: make([]geom.Segment, n),
	}
	for i := 0; i < n; i++ {
		g.checkpoints[i] = geom.Segment{A: inner[i], B: outer[i]}
	}
	return g
}

// sampleSpline interpolates a closed Catmull-Rom spline through the control
// points, emitting segmentsPerCurve samples per control-point interval. The
// boundary stencil wraps indices modulo the point count.
func sampleSpline(points []geom.Vec2, segmentsPerCurve int) []geom.Vec2 {
	n := len(points)
	samples := make([]geom.Vec2, 0, n*segmentsPerCurve)
	for i := 0; i < n; i++ {
		p0 := points[(i-1+n)%n]
		p1 := points[i]
		p2 := points[(i+1)%n]
		p3 := points[(i+2)%n]
		for s := 0; s < segmentsPerCurve; s++ {
			t := float64(s) / float64(segmentsPerCurve)
			samples = append(samples, catmullRom(p0, p1, p2, p3, t))
		}
	}
	return samples
}

func catmullRom(p0, p1, p2, p3 geom.Vec2, t float64) geom.Vec2 {
	t2 := t * t
	t3 := t2 * t
	return p1.Scale(2).
		Add(p2.Sub(p0).Scale(t)).
		Add(p0.Scale(2).Sub(p1.Scale(5)).Add(p2.Scale(4)).Sub(p3).Scale(t2)).
		Add(p1.Scale(3).Sub(p0).Sub(p2.Scale(3)).Add(p3).Scale(t3)).
		Scale(0.5)
}

// sampleNormals derives one unit normal per sample from the perpendiculars of
// the incoming and outgoing tangents. Degenerate zero-length tangents
// contribute nothing. Sign consistency is enforced against the previous
// sample's normal, including across the wrap-around seam.
func sampleNormals(center []geom.Vec2) []geom.Vec2 {
	n := len(center)
	normals := make([]geom.Vec2, n)
	for i := 0; i < n; i++ {
		incoming := center[i].Sub(center[(i-1+n)%n]).Normalize()
		outgoing := center[(i+1)%n].Sub(center[i]).Normalize()
		normals[i] = incoming.Perp().Add(outgoing.Perp()).Normalize()
		if i > 0 && normals[i].Dot(normals[i-1]) < 0 {
			normals[i] = normals[i].Scale(-1)
		}
	}
	if n > 1 && normals[0].Dot(normals[n-1]) < 0 {
		normals[0] = normals[0].Scale(-1)
	}
	return normals
}

// closePolyline connects consecutive vertices into segments, wrapping the
// last vertex back to the first.
func closePolyline(vertices []geom.Vec2) []geom.Segment {
	n := len(vertices)
	segments := make([]geom.Segment, n)
	for i := 0; i < n; i++ {
		segments[i] = geom.Segment{A: vertices[i], B: vertices[(i+1)%n]}
	}
	return segments
}

// valid rejects candidates whose center line self-intersects or whose wall
// polylines intersect themselves or each other. Only non-adjacent segment
// pairs are tested; neighbors share endpoints by construction.
func (g geometry) valid() bool {
	if len(g.centerLine) < 3 {
		return false
	}
	center := closePolyline(g.centerLine)
	if polylineSelfIntersects(center) {
		return false
	}
	if polylineSelfIntersects(g.innerWalls) {
		return false
	}
	if polylineSelfIntersects(g.outerWalls) {
		return false
	}
	return !polylinesIntersect(g.innerWalls, g.outerWalls)
}

// adjacent reports whether two segment indices on an n-segment closed
// polyline are within one step of each other, wrap included.
func adjacent(i, j, n int) bool {
	d := i - j
	if d < 0 {
		d = -d
	}
	return d <= 1 || d == n-1
}

func polylineSelfIntersects(segments []geom.Segment) bool {
	n := len(segments)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if adjacent(i, j, n) {
				continue
			}
			if segments[i].IntersectsStrict(segments[j]) {
				return true
			}
		}
	}
	return false
}

func polylinesIntersect(a, b []geom.Segment) bool {
	n := len(a)
	for i := range a {
		for j := range b {
			if n == len(b) && adjacent(i, j, n) {
				continue
			}
			if a[i].IntersectsStrict(b[j]) {
				return true
			}
		}
	}
	return false
}
