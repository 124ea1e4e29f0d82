package storage

import (
	"context"

	"boidrace/internal/model"
)

// Store defines the persistence operations for the simulation: the champion
// snapshot and generation counter read once at controller construction and
// written once per generation transition, plus per-run history and session
// exports. Gets report absence with ok=false rather than an error.
type Store interface {
	Init(ctx context.Context) error
	SaveChampion(ctx context.Context, champion model.Champion) error
	GetChampion(ctx context.Context) (model.Champion, bool, error)
	SaveGeneration(ctx context.Context, generation int) error
	GetGeneration(ctx context.Context) (int, bool, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveGenerationStats(ctx context.Context, runID string, stats []model.GenerationStats) error
	GetGenerationStats(ctx context.Context, runID string) ([]model.GenerationStats, bool, error)
	SaveSession(ctx context.Context, runID string, session model.Session) error
	GetSession(ctx context.Context, runID string) (model.Session, bool, error)
}

// Resetter is implemented by stores that can drop all persisted state.
type Resetter interface {
	Reset(ctx context.Context) error
}
