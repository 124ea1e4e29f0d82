package agent

import (
	"math"

	"boidrace/internal/geom"
	"boidrace/internal/neural"
	"boidrace/internal/track"
)

// Sensor fan and physics constants. The network shape is pinned to the
// sensor count: SensorCount inputs, two outputs (throttle, steering).
const (
	SensorCount = 5
	SensorRange = 100.0
	HiddenSize  = 6
	OutputCount = 2

	Radius    = 5.0
	MaxSpeed  = 6.0
	MaxForce  = 0.3
	SteerGain = 0.08
	Damping   = 0.98

	InitialLife        = 400
	CheckpointLifeGain = 200
	MaxLife            = 1200

	checkpointReward = 1000.0
	cadenceReward    = 10000.0
)

// sensorOffsets are the fixed ray angles relative to the heading.
var sensorOffsets = [SensorCount]float64{
	-math.Pi / 2,
	-math.Pi / 4,
	0,
	math.Pi / 4,
	math.Pi / 2,
}

// SensorReading is one ranged distance measurement, clamped to SensorRange.
type SensorReading struct {
	Distance float64
}

// Agent is one networked vehicle. It owns its network exclusively; the
// population controller replaces agents wholesale at generation boundaries.
type Agent struct {
	Position     geom.Vec2
	Velocity     geom.Vec2
	Heading      float64
	Acceleration geom.Vec2

	Sensors [SensorCount]SensorReading
	Net     neural.Network

	Fitness         float64
	Life            int
	CheckpointCount int
	FrameAge        int
	Dead            bool

	prevPosition geom.Vec2
}

// New places an agent at the given start pose with the supplied network.
func New(start geom.Vec2, heading float64, net neural.Network) *Agent {
	a := &Agent{
		Position: start,
		Heading:  heading,
		Net:      net,
		Life:     InitialLife,
	}
	for i := range a.Sensors {
		a.Sensors[i].Distance = SensorRange
	}
	a.prevPosition = start
	return a
}

// Update advances the agent one tick against the given track snapshot. Dead
// agents are a no-op. A network evaluation failure kills the agent rather
// than halting the simulation.
func (a *Agent) Update(t *track.Track) {
	if a.Dead {
		return
	}

	walls := t.Walls()
	a.sense(walls)

	if a.hitsWall(walls) || a.sensorContact() {
		a.Dead = true
		return
	}

	inputs := make([]float64, SensorCount)
	for i, reading := range a.Sensors {
		inputs[i] = reading.Distance / SensorRange
	}
	outputs, err := a.Net.Run(inputs)
	if err != nil || len(outputs) < OutputCount {
		a.Dead = true
		return
	}

	throttle := outputs[0]
	steering := outputs[1]*2 - 1
	a.Heading += steering * SteerGain

	force := geom.FromAngle(a.Heading).Scale(throttle * MaxForce)
	a.Acceleration = a.Acceleration.Add(force)
	a.Velocity = a.Velocity.Add(a.Acceleration).Limit(MaxSpeed).Scale(Damping)
	a.prevPosition = a.Position
	a.Position = a.Position.Add(a.Velocity)
	a.Acceleration = geom.Vec2{}

	a.Life--
	if a.Life <= 0 {
		a.Dead = true
		return
	}

	a.crossCheckpoint(t)
	a.FrameAge++
	a.Fitness = Score(a.CheckpointCount, a.FrameAge)
}

// sense casts the ray fan from the current position and records the nearest
// wall hit per ray, clamped to the sensing range.
func (a *Agent) sense(walls []geom.Segment) {
	for i, offset := range sensorOffsets {
		ray := geom.Segment{
			A: a.Position,
			B: a.Position.Add(geom.FromAngle(a.Heading + offset).Scale(SensorRange)),
		}
		nearest := SensorRange
		for _, wall := range walls {
			if hit, ok := ray.Intersection(wall); ok {
				if d := a.Position.Dist(hit); d < nearest {
					nearest = d
				}
			}
		}
		a.Sensors[i].Distance = nearest
	}
}

// hitsWall tests the path the agent is about to travel against every wall.
func (a *Agent) hitsWall(walls []geom.Segment) bool {
	path := geom.Segment{A: a.Position, B: a.Position.Add(a.Velocity)}
	for _, wall := range walls {
		if path.Intersects(wall) {
			return true
		}
	}
	return false
}

// sensorContact reports whether any wall is closer than the body radius.
func (a *Agent) sensorContact() bool {
	for _, reading := range a.Sensors {
		if reading.Distance < Radius {
			return true
		}
	}
	return false
}

// crossCheckpoint tests the traveled path against the next expected gate and
// banks the crossing: one checkpoint step, plus a life bonus capped at
// MaxLife.
func (a *Agent) crossCheckpoint(t *track.Track) {
	if len(t.Checkpoints) == 0 {
		return
	}
	next := t.Checkpoints[a.CheckpointCount%len(t.Checkpoints)]
	path := geom.Segment{A: a.prevPosition, B: a.Position}
	if !path.Intersects(next) {
		return
	}

	a.CheckpointCount++
	a.Life += CheckpointLifeGain
	if a.Life > MaxLife {
		a.Life = MaxLife
	}
}

// Score computes the progress-gated fitness: checkpoint count dominates, with
// a cadence term rewarding faster laps. An agent that never crossed a gate
// scores zero no matter how long it survived.
func Score(checkpoints, frameAge int) float64 {
	fitness := float64(checkpoints) * checkpointReward
	if checkpoints > 0 && frameAge > 0 {
		fitness += float64(checkpoints) / float64(frameAge) * cadenceReward
	}
	return fitness
}
