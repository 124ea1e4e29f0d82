package boidrace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"boidrace/internal/evo"
	"boidrace/internal/model"
	"boidrace/internal/sim"
	"boidrace/internal/storage"
	"boidrace/internal/track"
)

const defaultDBPath = "boidrace.db"

// ErrInvalidChampionDocument reports a champion import payload without a
// usable network.
var ErrInvalidChampionDocument = errors.New("champion document missing network.layers")

type Options struct {
	StoreKind string
	DBPath    string
}

type Client struct {
	store storage.Store
}

func NewClient(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) Reset(ctx context.Context) error {
	if resetter, ok := c.store.(storage.Resetter); ok {
		return resetter.Reset(ctx)
	}
	return fmt.Errorf("store does not support reset")
}

type RunRequest struct {
	RunID       string
	Generations int
	Population  int

	// MutationRate and EliteCount are pointers so an explicit zero can
	// disable mutation or elitism; nil falls back to the controller
	// defaults.
	MutationRate *float64
	EliteCount   *int

	TournamentSize int
	MaxLifespan    int
	Seed           int64

	TrackSeed   int64
	Width       float64
	Height      float64
	TrackParams track.Params
}

type RunSummary struct {
	RunID                string
	GenerationsCompleted int
	BestFitness          float64
	FitnessHistory       []float64
	Stats                []model.GenerationStats
}

// Run wires a store-backed arena, drives the requested number of generation
// transitions, and returns the run's best-by-generation history. Zero request
// values fall back to the controller defaults; the pointer fields fall back
// only when nil.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	defaults := evo.DefaultConfig()
	if req.Generations <= 0 {
		req.Generations = 10
	}
	if req.Population <= 0 {
		req.Population = defaults.PopulationSize
	}
	if req.TournamentSize <= 0 {
		req.TournamentSize = defaults.TournamentSize
	}
	if req.MaxLifespan <= 0 {
		req.MaxLifespan = defaults.MaxLifespan
	}
	if req.Seed == 0 {
		req.Seed = defaults.Seed
	}
	if req.TrackSeed == 0 {
		req.TrackSeed = req.Seed
	}

	arena, err := sim.New(ctx, sim.Config{
		Width:       req.Width,
		Height:      req.Height,
		TrackSeed:   req.TrackSeed,
		TrackParams: req.TrackParams,
		Evolution:   req.evolution(defaults),
		RunID:       req.RunID,
	}, c.store)
	if err != nil {
		return RunSummary{}, err
	}

	result, err := arena.Run(ctx, sim.RunConfig{Generations: req.Generations})
	if err != nil {
		return RunSummary{}, err
	}
	return RunSummary{
		RunID:                arena.RunID(),
		GenerationsCompleted: result.GenerationsCompleted,
		BestFitness:          result.BestFitness,
		FitnessHistory:       result.FitnessHistory,
		Stats:                result.Stats,
	}, nil
}

// evolution resolves the request's evolution settings against the controller
// defaults. The request's non-pointer fields are assumed already defaulted.
func (req RunRequest) evolution(defaults evo.Config) evo.Config {
	cfg := evo.Config{
		PopulationSize: req.Population,
		MutationRate:   defaults.MutationRate,
		EliteCount:     defaults.EliteCount,
		TournamentSize: req.TournamentSize,
		MaxLifespan:    req.MaxLifespan,
		Seed:           req.Seed,
	}
	if req.MutationRate != nil {
		cfg.MutationRate = *req.MutationRate
	}
	if req.EliteCount != nil {
		cfg.EliteCount = *req.EliteCount
	}
	return cfg
}

func (c *Client) Champion(ctx context.Context) (model.Champion, bool, error) {
	return c.store.GetChampion(ctx)
}

func (c *Client) FitnessHistory(ctx context.Context, runID string) ([]float64, bool, error) {
	return c.store.GetFitnessHistory(ctx, runID)
}

func (c *Client) GenerationStats(ctx context.Context, runID string) ([]model.GenerationStats, bool, error) {
	return c.store.GetGenerationStats(ctx, runID)
}

// ExportSession returns the persisted session for a run as pretty JSON.
func (c *Client) ExportSession(ctx context.Context, runID string) ([]byte, error) {
	session, ok, err := c.store.GetSession(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no session for run: %s", runID)
	}
	return json.MarshalIndent(session, "", "  ")
}

// ChampionDocument is the import payload: an optional generation and fitness
// plus the required network snapshot.
type ChampionDocument struct {
	Generation *int                `json:"generation,omitempty"`
	Fitness    *float64            `json:"fitness,omitempty"`
	Network    *model.NetworkState `json:"network"`
}

// ImportChampion validates and persists an externally produced champion
// document. A payload without network layers is rejected with
// ErrInvalidChampionDocument and leaves the stored state unchanged.
func (c *Client) ImportChampion(ctx context.Context, data []byte) error {
	var doc ChampionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode champion document: %w", err)
	}
	if doc.Network == nil || len(doc.Network.Layers) == 0 {
		return ErrInvalidChampionDocument
	}

	champion := model.Champion{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		Network: doc.Network.Clone(),
	}
	if doc.Generation != nil {
		champion.Generation = *doc.Generation
	}
	if doc.Fitness != nil {
		champion.Fitness = *doc.Fitness
	}

	if err := c.store.SaveChampion(ctx, champion); err != nil {
		return err
	}
	if doc.Generation != nil {
		return c.store.SaveGeneration(ctx, *doc.Generation)
	}
	return nil
}
