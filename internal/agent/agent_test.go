package agent

import (
	"testing"

	"boidrace/internal/geom"
	"boidrace/internal/model"
	"boidrace/internal/track"
)

// scriptedNet always returns the same two outputs.
type scriptedNet struct {
	throttle float64
	steer    float64
}

func (n scriptedNet) Run(inputs []float64) ([]float64, error) {
	return []float64{n.throttle, n.steer}, nil
}

func (n scriptedNet) Snapshot() model.NetworkState { return model.NetworkState{} }

func (n scriptedNet) Restore(model.NetworkState) error { return nil }

func testTrack(t *testing.T) *track.Track {
	t.Helper()
	return track.New(800, 600, 4, track.DefaultParams())
}

func TestScoreZeroWithoutCheckpoints(t *testing.T) {
	for _, frameAge := range []int{0, 1, 10, 100000} {
		if got := Score(0, frameAge); got != 0 {
			t.Fatalf("frameAge %d: expected fitness 0, got %v", frameAge, got)
		}
	}
}

func TestScoreFirstCheckpoint(t *testing.T) {
	// One checkpoint at frame 10: 1000 + (1/10)*10000.
	if got := Score(1, 10); got != 2000 {
		t.Fatalf("expected fitness 2000, got %v", got)
	}
}

func TestScoreDecaysBetweenCheckpoints(t *testing.T) {
	if Score(3, 100) <= Score(3, 50) {
		t.Fatal("fitness must decay as frame age grows at a fixed checkpoint count")
	}
	if Score(4, 100) <= Score(3, 100) {
		t.Fatal("fitness must jump when a checkpoint is crossed")
	}
}

func TestUpdateMovesLiveAgent(t *testing.T) {
	tr := testTrack(t)
	a := New(tr.StartPoint, tr.StartAngle, scriptedNet{throttle: 1, steer: 0.5})

	a.Update(tr)
	if a.Dead {
		t.Fatal("agent at the start pose must survive its first tick")
	}
	if a.Position == tr.StartPoint {
		t.Fatal("full throttle must move the agent")
	}
	if a.FrameAge != 1 {
		t.Fatalf("expected frame age 1, got %d", a.FrameAge)
	}
	if a.Life != InitialLife-1+CheckpointLifeGain {
		t.Fatalf("unexpected life after first tick: %d", a.Life)
	}
}

func TestUpdateBanksStartCheckpoint(t *testing.T) {
	tr := testTrack(t)
	a := New(tr.StartPoint, tr.StartAngle, scriptedNet{throttle: 1, steer: 0.5})

	// The agent spawns on the start/finish gate, so the first moving tick
	// crosses it.
	a.Update(tr)
	if a.CheckpointCount != 1 {
		t.Fatalf("expected checkpoint count 1, got %d", a.CheckpointCount)
	}
	if a.Fitness != Score(1, 1) {
		t.Fatalf("fitness not recomputed: got %v want %v", a.Fitness, Score(1, 1))
	}
}

func TestUpdateIsNoOpWhenDead(t *testing.T) {
	tr := testTrack(t)
	a := New(tr.StartPoint, tr.StartAngle, scriptedNet{throttle: 1, steer: 0.5})
	a.Dead = true

	a.Update(tr)
	if a.FrameAge != 0 || a.Position != tr.StartPoint {
		t.Fatal("dead agent must not move or age")
	}
}

func TestAgentDiesOnWallContact(t *testing.T) {
	tr := testTrack(t)
	wall := tr.InnerWalls[0]
	a := New(wall.Midpoint(), 0, scriptedNet{throttle: 0, steer: 0.5})

	a.Update(tr)
	if !a.Dead {
		t.Fatal("agent sitting on a wall must die")
	}
}

func TestAgentDiesWhenLifeRunsOut(t *testing.T) {
	tr := testTrack(t)
	// Spawn off the gate so no checkpoint life bonus interferes.
	start := tr.StartPoint.Add(geom.FromAngle(tr.StartAngle).Scale(3))
	a := New(start, tr.StartAngle, scriptedNet{throttle: 0, steer: 0.5})
	a.Life = 1

	a.Update(tr)
	if !a.Dead {
		t.Fatal("agent must die when life reaches zero")
	}
}

func TestSensorsClampToRange(t *testing.T) {
	tr := testTrack(t)
	a := New(tr.StartPoint, tr.StartAngle, scriptedNet{throttle: 0, steer: 0.5})

	a.Update(tr)
	for i, reading := range a.Sensors {
		if reading.Distance < 0 || reading.Distance > SensorRange {
			t.Fatalf("sensor %d out of range: %v", i, reading.Distance)
		}
	}
	// The side rays face walls half a track width away and must see them.
	if a.Sensors[0].Distance >= SensorRange && a.Sensors[SensorCount-1].Distance >= SensorRange {
		t.Fatal("expected at least one side sensor to detect a wall")
	}
}

func TestNetworkFailureKillsAgent(t *testing.T) {
	tr := testTrack(t)
	a := New(tr.StartPoint, tr.StartAngle, failingNet{})

	a.Update(tr)
	if !a.Dead {
		t.Fatal("network failure must kill the agent, not the simulation")
	}
}

type failingNet struct{}

func (failingNet) Run([]float64) ([]float64, error) {
	return nil, errNetBroken
}

func (failingNet) Snapshot() model.NetworkState { return model.NetworkState{} }

func (failingNet) Restore(model.NetworkState) error { return nil }

var errNetBroken = &netError{}

type netError struct{}

func (*netError) Error() string { return "broken network" }
