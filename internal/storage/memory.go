package storage

import (
	"context"
	"sync"

	"boidrace/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	champion    *model.Champion
	generation  *int
	history     map[string][]float64
	stats       map[string][]model.GenerationStats
	sessions    map[string]model.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		history:  make(map[string][]float64),
		stats:    make(map[string][]model.GenerationStats),
		sessions: make(map[string]model.Session),
	}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.champion = nil
	s.generation = nil
	s.history = make(map[string][]float64)
	s.stats = make(map[string][]model.GenerationStats)
	s.sessions = make(map[string]model.Session)
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	return s.Init(ctx)
}

func (s *MemoryStore) SaveChampion(_ context.Context, champion model.Champion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := champion
	copied.Network = champion.Network.Clone()
	s.champion = &copied
	return nil
}

func (s *MemoryStore) GetChampion(_ context.Context) (model.Champion, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.champion == nil {
		return model.Champion{}, false, nil
	}
	copied := *s.champion
	copied.Network = s.champion.Network.Clone()
	return copied, true, nil
}

func (s *MemoryStore) SaveGeneration(_ context.Context, generation int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation = &generation
	return nil
}

func (s *MemoryStore) GetGeneration(_ context.Context) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.generation == nil {
		return 0, false, nil
	}
	return *s.generation, true, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[runID] = append([]float64(nil), history...)
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]float64(nil), history...), true, nil
}

func (s *MemoryStore) SaveGenerationStats(_ context.Context, runID string, stats []model.GenerationStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.GenerationStats, len(stats))
	copy(copied, stats)
	s.stats[runID] = copied
	return nil
}

func (s *MemoryStore) GetGenerationStats(_ context.Context, runID string) ([]model.GenerationStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.stats[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.GenerationStats, len(stats))
	copy(copied, stats)
	return copied, true, nil
}

func (s *MemoryStore) SaveSession(_ context.Context, runID string, session model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[runID] = session
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, runID string) (model.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[runID]
	return session, ok, nil
}
