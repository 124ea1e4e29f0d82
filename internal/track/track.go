package track

import (
	"math"

	"boidrace/internal/geom"
)

// Params are the generation knobs for a raceway.
type Params struct {
	TrackWidth       float64
	NumControlPoints int
	SegmentsPerCurve int
	RadiusVariance   float64
	CornerTightness  float64
}

// DefaultParams returns the standard raceway configuration.
func DefaultParams() Params {
	return Params{
		TrackWidth:       60,
		NumControlPoints: 10,
		SegmentsPerCurve: 12,
		RadiusVariance:   0.4,
		CornerTightness:  0.6,
	}
}

// clamp bounds the parameters to values the generator can work with. Applied
// at the point of change, never surfaced as errors.
func (p Params) clamp() Params {
	if p.NumControlPoints < 3 {
		p.NumControlPoints = 3
	}
	if p.SegmentsPerCurve < 1 {
		p.SegmentsPerCurve = 1
	}
	if p.TrackWidth <= 0 {
		p.TrackWidth = DefaultParams().TrackWidth
	}
	if p.RadiusVariance < 0 {
		p.RadiusVariance = 0
	}
	if p.RadiusVariance > 0.6 {
		p.RadiusVariance = 0.6
	}
	if p.CornerTightness < 0 {
		p.CornerTightness = 0
	}
	if p.CornerTightness > 1 {
		p.CornerTightness = 1
	}
	return p
}

// Track is an immutable-between-edits raceway snapshot: a closed center line
// splined through the control points, constant-width wall polylines offset to
// both sides, and one checkpoint gate per center-line sample. Checkpoint 0 is
// the start/finish line.
type Track struct {
	ControlPoints []geom.Vec2
	CenterLine    []geom.Vec2
	InnerWalls    []geom.Segment
	OuterWalls    []geom.Segment
	Checkpoints   []geom.Segment
	StartPoint    geom.Vec2
	StartAngle    float64
	Seed          int64
	Params        Params

	width  float64
	height float64

	walls    []geom.Segment
	lastGood []geom.Vec2
}

// Walls returns the inner and outer wall segments as one list, for sensing
// and collision tests.
func (t *Track) Walls() []geom.Segment {
	return t.walls
}

// Randomize rebuilds the track from a fresh seed, keeping the canvas size and
// generation parameters.
func (t *Track) Randomize(seed int64) {
	*t = *New(t.width, t.height, seed, t.Params)
}

// RegenerateFromControlPoints rebuilds the center line, walls and checkpoints
// from the current (possibly just-edited) control points without rerunning
// the randomized search. When the rebuilt geometry fails validation the
// control points roll back to the last-known-good snapshot and the rebuild is
// repeated from those; the caller uses the returned flag to snap the dragged
// point back. On success the snapshot advances to the accepted points.
func (t *Track) RegenerateFromControlPoints() bool {
	if t.rebuild(t.ControlPoints) {
		t.lastGood = clonePoints(t.ControlPoints)
		return true
	}

	t.ControlPoints = clonePoints(t.lastGood)
	t.rebuild(t.ControlPoints)
	return false
}

// rebuild derives all geometry from the given control points. It only
// commits when the candidate passes validation.
func (t *Track) rebuild(points []geom.Vec2) bool {
	candidate := buildGeometry(points, t.Params)
	if !candidate.valid() {
		return false
	}
	t.apply(candidate)
	return true
}

func (t *Track) apply(g geometry) {
	t.CenterLine = g.centerLine
	t.InnerWalls = g.innerWalls
	t.OuterWalls = g.outerWalls
	t.Checkpoints = g.checkpoints
	t.walls = append(append([]geom.Segment(nil), g.innerWalls...), g.outerWalls...)

	start := t.Checkpoints[0]
	t.StartPoint = start.Midpoint()
	across := start.B.Sub(start.A)
	t.StartAngle = math.Atan2(-across.X, across.Y)
}

func clonePoints(points []geom.Vec2) []geom.Vec2 {
	return append([]geom.Vec2(nil), points...)
}
