package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"boidrace/internal/evo"
	"boidrace/internal/geom"
	"boidrace/internal/model"
	"boidrace/internal/storage"
	"boidrace/internal/track"
)

// Command is a control message for a running simulation.
type Command int

const (
	CommandPause Command = iota
	CommandContinue
	CommandStop
)

type Config struct {
	Width       float64
	Height      float64
	TrackSeed   int64
	TrackParams track.Params
	Evolution   evo.Config
	RunID       string
}

func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = 800
	}
	if c.Height <= 0 {
		c.Height = 600
	}
	if c.RunID == "" {
		c.RunID = fmt.Sprintf("run:%d", c.Evolution.Seed)
	}
	return c
}

// Arena owns the live track and the population controller. The mutex makes
// every tick atomic with respect to track edits: a staged replacement track
// is swapped in at the next tick boundary, and control point edits take the
// same lock a tick holds, so agents never observe a half-updated track.
type Arena struct {
	mu sync.Mutex

	cfg        Config
	store      storage.Store
	track      *track.Track
	pending    *track.Track
	controller *evo.Controller
}

func New(ctx context.Context, cfg Config, store storage.Store) (*Arena, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	cfg = cfg.withDefaults()

	t := track.New(cfg.Width, cfg.Height, cfg.TrackSeed, cfg.TrackParams)
	controller, err := evo.NewController(ctx, cfg.Evolution, store, t)
	if err != nil {
		return nil, err
	}
	return &Arena{
		cfg:        cfg,
		store:      store,
		track:      t,
		controller: controller,
	}, nil
}

func (a *Arena) RunID() string { return a.cfg.RunID }

func (a *Arena) Track() *track.Track {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.track
}

func (a *Arena) Controller() *evo.Controller { return a.controller }

// StageTrack builds a replacement track from the given seed and stages it for
// the next tick boundary. Agents in flight keep running and carry their
// fitness onto the new layout.
func (a *Arena) StageTrack(seed int64) {
	replacement := track.New(a.cfg.Width, a.cfg.Height, seed, a.cfg.TrackParams)
	a.mu.Lock()
	a.pending = replacement
	a.mu.Unlock()
}

// EditControlPoint moves one control point of the live track and rebuilds its
// geometry. An edit producing an invalid layout is rolled back and reported
// with false. The tick lock keeps the edit atomic.
func (a *Arena) EditControlPoint(index int, pos geom.Vec2) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if index < 0 || index >= len(a.track.ControlPoints) {
		return false, fmt.Errorf("control point index out of range: %d", index)
	}
	a.track.ControlPoints[index] = pos
	return a.track.RegenerateFromControlPoints(), nil
}

// Tick advances the simulation one step, swapping in any staged track first.
func (a *Arena) Tick(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending != nil {
		a.track = a.pending
		a.pending = nil
	}

	before := a.controller.Generation()
	if err := a.controller.Tick(ctx, a.track); err != nil {
		return err
	}
	if a.controller.Generation() != before {
		return a.persistHistory(ctx)
	}
	return nil
}

// RunTicks fast-forwards n ticks, honoring context cancellation between
// ticks.
func (a *Arena) RunTicks(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}

type RunConfig struct {
	Generations int
	Control     chan Command
}

type RunResult struct {
	GenerationsCompleted int
	BestFitness          float64
	FitnessHistory       []float64
	Stats                []model.GenerationStats
	Stopped              bool
}

// Run drives the simulation until the requested number of generation
// transitions completes, a stop command arrives, or the context is canceled.
// Pause blocks the loop until a continue or stop command.
func (a *Arena) Run(ctx context.Context, cfg RunConfig) (RunResult, error) {
	if cfg.Generations <= 0 {
		cfg.Generations = 1
	}
	control := cfg.Control
	if control == nil {
		control = make(chan Command, 16)
	}

	start := a.controller.Generation()
	target := start + cfg.Generations
	stopped := false

loop:
	for a.controller.Generation() < target {
		select {
		case <-ctx.Done():
			return RunResult{}, ctx.Err()
		case cmd := <-control:
			switch cmd {
			case CommandStop:
				stopped = true
				break loop
			case CommandPause:
				if stop, err := a.awaitContinue(ctx, control); err != nil {
					return RunResult{}, err
				} else if stop {
					stopped = true
					break loop
				}
			}
		default:
		}

		if err := a.Tick(ctx); err != nil {
			return RunResult{}, err
		}
	}

	if err := a.saveSession(ctx); err != nil {
		return RunResult{}, err
	}

	history := a.controller.FitnessHistory()
	best := 0.0
	for _, f := range history {
		if f > best {
			best = f
		}
	}
	return RunResult{
		GenerationsCompleted: a.controller.Generation() - start,
		BestFitness:          best,
		FitnessHistory:       history,
		Stats:                a.controller.StatsHistory(),
		Stopped:              stopped,
	}, nil
}

func (a *Arena) awaitContinue(ctx context.Context, control chan Command) (bool, error) {
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case cmd := <-control:
			switch cmd {
			case CommandContinue:
				return false, nil
			case CommandStop:
				return true, nil
			}
		}
	}
}

func (a *Arena) persistHistory(ctx context.Context) error {
	if err := a.store.SaveFitnessHistory(ctx, a.cfg.RunID, a.controller.FitnessHistory()); err != nil {
		return err
	}
	return a.store.SaveGenerationStats(ctx, a.cfg.RunID, a.controller.StatsHistory())
}

// ExportSession captures the resumable state of the run: the generation
// counter, the seed of the live track, and the champion network encoded as a
// JSON string. The persisted champion wins over the current population's
// best.
func (a *Arena) ExportSession(ctx context.Context) (model.Session, error) {
	a.mu.Lock()
	trackSeed := a.track.Seed
	a.mu.Unlock()

	state, err := a.bestNetwork(ctx)
	if err != nil {
		return model.Session{}, err
	}
	brain, err := json.Marshal(state)
	if err != nil {
		return model.Session{}, fmt.Errorf("encode champion network: %w", err)
	}

	return model.Session{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		Generation:    a.controller.Generation(),
		TrackSeed:     trackSeed,
		BestBrainJSON: string(brain),
	}, nil
}

func (a *Arena) bestNetwork(ctx context.Context) (model.NetworkState, error) {
	if champion, ok, err := a.store.GetChampion(ctx); err == nil && ok {
		return champion.Network, nil
	}

	agents := a.controller.Agents()
	best := agents[0]
	for _, candidate := range agents[1:] {
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best.Net.Snapshot(), nil
}

func (a *Arena) saveSession(ctx context.Context) error {
	session, err := a.ExportSession(ctx)
	if err != nil {
		return err
	}
	return a.store.SaveSession(ctx, a.cfg.RunID, session)
}
