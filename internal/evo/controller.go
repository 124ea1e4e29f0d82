package evo

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"boidrace/internal/agent"
	"boidrace/internal/model"
	"boidrace/internal/neural"
	"boidrace/internal/storage"
	"boidrace/internal/track"
)

const (
	// stagnationWindow is the tick span for both stagnation triggers: no
	// fitness improvement near the end of a generation, and no living
	// agent matching the generation's best.
	stagnationWindow = 500

	// injectionRate is the population share refilled with mutated clones
	// of the best agent, and the share seeded from a persisted champion.
	injectionRate = 0.2

	// injectionMutationRate is the fixed, higher mutation rate used for
	// diversity injection and champion seeding.
	injectionMutationRate = 0.2

	// diversitySampleSize bounds the pairwise distance measurement.
	diversitySampleSize = 10
)

type Config struct {
	PopulationSize int
	MutationRate   float64
	EliteCount     int
	TournamentSize int
	MaxLifespan    int
	Seed           int64
}

func DefaultConfig() Config {
	return Config{
		PopulationSize: 50,
		MutationRate:   0.05,
		EliteCount:     4,
		TournamentSize: 5,
		MaxLifespan:    3000,
		Seed:           1,
	}
}

// clamp enforces the runtime invariants: the tournament must be smaller than
// the population and elitism must leave room for at least one crossover
// child. Out-of-range values are corrected, never rejected.
func (c Config) clamp() Config {
	if c.PopulationSize < 2 {
		c.PopulationSize = 2
	}
	if c.MutationRate < 0 {
		c.MutationRate = 0
	}
	if c.MutationRate > 1 {
		c.MutationRate = 1
	}
	if c.TournamentSize < 1 {
		c.TournamentSize = 1
	}
	if c.TournamentSize >= c.PopulationSize {
		c.TournamentSize = c.PopulationSize - 1
	}
	if c.EliteCount < 0 {
		c.EliteCount = 0
	}
	if c.EliteCount > c.PopulationSize-2 {
		c.EliteCount = c.PopulationSize - 2
	}
	if c.MaxLifespan < 1 {
		c.MaxLifespan = 1
	}
	return c
}

// Controller owns the agent population and drives the generation lifecycle:
// per-tick updates, termination triggers, reproduction, and champion
// persistence. All randomness flows through one seeded stream.
type Controller struct {
	cfg   Config
	rng   *rand.Rand
	store storage.Store

	agents     []*agent.Agent
	generation int
	timer      int

	bestFitnessThisGen   float64
	lastImprovementTimer int
	bestDiedAt           int // -1 while a living agent holds the best

	lastStats      model.GenerationStats
	fitnessHistory []float64
	statsHistory   []model.GenerationStats
}

// NewController builds the initial population at the track's start pose. A
// persisted champion, when present and readable, seeds agent 0 verbatim and
// roughly the next 20% of the population with mutated copies; a missing or
// corrupt snapshot falls back to a fully randomized population.
func NewController(ctx context.Context, cfg Config, store storage.Store, t *track.Track) (*Controller, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if t == nil {
		return nil, fmt.Errorf("track is required")
	}
	cfg = cfg.clamp()

	c := &Controller{
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		store:      store,
		bestDiedAt: -1,
	}

	champion, haveChampion, err := store.GetChampion(ctx)
	if err != nil {
		// Corrupt snapshot is treated as no prior state.
		haveChampion = false
	}
	if generation, ok, err := store.GetGeneration(ctx); err == nil && ok {
		c.generation = generation
	}

	seedCount := int(injectionRate * float64(cfg.PopulationSize))
	agents := make([]*agent.Agent, 0, cfg.PopulationSize)
	for i := 0; i < cfg.PopulationSize; i++ {
		net, err := c.newNetwork()
		if err != nil {
			return nil, err
		}
		if haveChampion {
			switch {
			case i == 0:
				if err := net.Restore(champion.Network); err != nil {
					haveChampion = false
				}
			case i <= seedCount:
				mutated := Mutate(c.rng, champion.Network, injectionMutationRate)
				if err := net.Restore(mutated); err != nil {
					haveChampion = false
				}
			}
		}
		agents = append(agents, agent.New(t.StartPoint, t.StartAngle, net))
	}
	c.agents = agents
	return c, nil
}

func (c *Controller) newNetwork() (neural.Network, error) {
	net, err := neural.NewFeedforward(c.rng, agent.SensorCount, agent.HiddenSize, agent.OutputCount)
	if err != nil {
		return nil, err
	}
	return net, nil
}

func (c *Controller) Agents() []*agent.Agent { return c.agents }

func (c *Controller) Generation() int { return c.generation }

func (c *Controller) Timer() int { return c.timer }

// LastStats returns the snapshot taken at the most recent generation end.
func (c *Controller) LastStats() model.GenerationStats { return c.lastStats }

func (c *Controller) FitnessHistory() []float64 {
	return append([]float64(nil), c.fitnessHistory...)
}

func (c *Controller) StatsHistory() []model.GenerationStats {
	return append([]model.GenerationStats(nil), c.statsHistory...)
}

// SetEliteCount applies the elitism invariant at the point of change.
func (c *Controller) SetEliteCount(n int) {
	c.cfg.EliteCount = n
	c.cfg = c.cfg.clamp()
}

// SetTournamentSize applies the selection invariant at the point of change.
func (c *Controller) SetTournamentSize(n int) {
	c.cfg.TournamentSize = n
	c.cfg = c.cfg.clamp()
}

// SetMutationRate clamps the rate into [0, 1].
func (c *Controller) SetMutationRate(rate float64) {
	c.cfg.MutationRate = rate
	c.cfg = c.cfg.clamp()
}

// Tick runs one synchronous simulation step: update every live agent in a
// fixed order, refresh the stagnation bookkeeping, and reproduce in the same
// tick when a termination trigger fires.
func (c *Controller) Tick(ctx context.Context, t *track.Track) error {
	for _, a := range c.agents {
		a.Update(t)
	}
	c.timer++
	c.trackStagnation()

	if !c.shouldReproduce() {
		return nil
	}
	return c.reproduce(ctx, t)
}

// trackStagnation maintains the per-generation best fitness, the ticks since
// the last improvement, and the "best died at" marker that resets whenever a
// living agent catches back up to the generation's best.
func (c *Controller) trackStagnation() {
	improved := false
	livingHoldsBest := false
	for _, a := range c.agents {
		if a.Dead {
			continue
		}
		if a.Fitness > c.bestFitnessThisGen {
			c.bestFitnessThisGen = a.Fitness
			improved = true
		}
		if a.Fitness >= c.bestFitnessThisGen {
			livingHoldsBest = true
		}
	}

	if improved {
		c.lastImprovementTimer = 0
	} else {
		c.lastImprovementTimer++
	}

	if livingHoldsBest {
		c.bestDiedAt = -1
	} else if c.bestDiedAt < 0 {
		c.bestDiedAt = c.timer
	}
}

// shouldReproduce evaluates the generation-end triggers.
func (c *Controller) shouldReproduce() bool {
	allDead := true
	for _, a := range c.agents {
		if !a.Dead {
			allDead = false
			break
		}
	}
	if allDead {
		return true
	}
	if c.timer > c.cfg.MaxLifespan {
		return true
	}
	if c.timer > c.cfg.MaxLifespan-stagnationWindow && c.lastImprovementTimer >= stagnationWindow {
		return true
	}
	return c.bestDiedAt >= 0 && c.timer-c.bestDiedAt >= stagnationWindow
}

// reproduce snapshots the generation's final statistics, builds the next
// population (elites, best-clone diversity injection, tournament crossover
// children), persists the champion and the incremented generation counter,
// and swaps the population in synchronously.
func (c *Controller) reproduce(ctx context.Context, t *track.Track) error {
	sorted := append([]*agent.Agent(nil), c.agents...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Fitness > sorted[j].Fitness
	})

	survivors := 0
	for _, a := range c.agents {
		if !a.Dead {
			survivors++
		}
	}
	best := sorted[0]
	bestState := best.Net.Snapshot()

	c.lastStats = model.GenerationStats{
		Generation:  c.generation,
		Survivors:   survivors,
		BestFitness: best.Fitness,
		Diversity:   c.Diversity(),
		Ticks:       c.timer,
	}
	c.statsHistory = append(c.statsHistory, c.lastStats)
	c.fitnessHistory = append(c.fitnessHistory, best.Fitness)

	next := make([]*agent.Agent, 0, c.cfg.PopulationSize)

	for i := 0; i < c.cfg.EliteCount && i < len(sorted); i++ {
		net, err := c.cloneNetwork(sorted[i].Net.Snapshot())
		if err != nil {
			return err
		}
		next = append(next, agent.New(t.StartPoint, t.StartAngle, net))
	}

	injectionTarget := int(injectionRate * float64(c.cfg.PopulationSize))
	for len(next) < injectionTarget {
		net, err := c.cloneNetwork(Mutate(c.rng, bestState, injectionMutationRate))
		if err != nil {
			return err
		}
		next = append(next, agent.New(t.StartPoint, t.StartAngle, net))
	}

	for len(next) < c.cfg.PopulationSize {
		p1 := c.SelectParent()
		p2 := c.SelectParent()
		child := Crossover(c.rng, p1.Net.Snapshot(), p2.Net.Snapshot())
		child = Mutate(c.rng, child, c.cfg.MutationRate)
		net, err := c.cloneNetwork(child)
		if err != nil {
			return err
		}
		next = append(next, agent.New(t.StartPoint, t.StartAngle, net))
	}

	c.generation++
	champion := model.Champion{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		Generation: c.generation,
		Fitness:    best.Fitness,
		Network:    bestState,
	}
	if err := c.store.SaveChampion(ctx, champion); err != nil {
		return err
	}
	if err := c.store.SaveGeneration(ctx, c.generation); err != nil {
		return err
	}

	c.agents = next
	c.timer = 0
	c.bestFitnessThisGen = 0
	c.lastImprovementTimer = 0
	c.bestDiedAt = -1
	return nil
}

func (c *Controller) cloneNetwork(state model.NetworkState) (neural.Network, error) {
	net, err := c.newNetwork()
	if err != nil {
		return nil, err
	}
	if err := net.Restore(state); err != nil {
		return nil, err
	}
	return net, nil
}

// SelectParent runs one tournament: sample tournamentSize agents uniformly
// with replacement and keep the strictly fittest, first found winning ties.
// A tournament of one degenerates to uniform random choice.
func (c *Controller) SelectParent() *agent.Agent {
	best := c.agents[c.rng.Intn(len(c.agents))]
	for i := 1; i < c.cfg.TournamentSize; i++ {
		candidate := c.agents[c.rng.Intn(len(c.agents))]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best
}

// Diversity samples up to diversitySampleSize agents uniformly with
// replacement and returns the mean pairwise Euclidean distance between their
// flattened network parameters. Fewer than two agents yield zero.
func (c *Controller) Diversity() float64 {
	if len(c.agents) < 2 {
		return 0
	}
	sampleSize := diversitySampleSize
	if len(c.agents) < sampleSize {
		sampleSize = len(c.agents)
	}

	states := make([]model.NetworkState, sampleSize)
	for i := range states {
		states[i] = c.agents[c.rng.Intn(len(c.agents))].Net.Snapshot()
	}

	total := 0.0
	pairs := 0
	for i := 0; i < len(states); i++ {
		for j := i + 1; j < len(states); j++ {
			total += ParameterDistance(states[i], states[j])
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}
