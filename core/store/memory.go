package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in memory for tests or lightweight usage.
type MemoryStore struct {
	mu      sync.Mutex
	order   []string
	params  map[string]InputParameters
	results map[string][]SimulationRecord
	now     func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		params:  map[string]InputParameters{},
		results: map[string][]SimulationRecord{},
		now:     time.Now,
	}
}

// CreateParameters stores p under a new ID.
func (s *MemoryStore) CreateParameters(_ context.Context, p InputParameters) (InputParameters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = s.now().UTC()
	s.params[p.ID] = p
	s.order = append(s.order, p.ID)
	return p, nil
}

// ListParameters returns all parameter sets.
func (s *MemoryStore) ListParameters(context.Context) ([]InputParameters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]InputParameters, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.params[id])
	}
	return out, nil
}

// GetParameters returns the set with the given ID.
func (s *MemoryStore) GetParameters(_ context.Context, id string) (InputParameters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.params[id]
	if !ok {
		return InputParameters{}, fmt.Errorf("parameters %s: %w", id, ErrNotFound)
	}
	return p, nil
}

// UpdateParameters applies patch to the set with the given ID.
func (s *MemoryStore) UpdateParameters(_ context.Context, id string, patch ParametersPatch) (InputParameters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.params[id]
	if !ok {
		return InputParameters{}, fmt.Errorf("parameters %s: %w", id, ErrNotFound)
	}
	p = patch.Apply(p)
	s.params[id] = p
	return p, nil
}

// DeleteParameters removes the set and its results.
func (s *MemoryStore) DeleteParameters(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.params[id]; !ok {
		return fmt.Errorf("parameters %s: %w", id, ErrNotFound)
	}
	delete(s.params, id)
	delete(s.results, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// AddResult stores rec under a new ID.
func (s *MemoryStore) AddResult(_ context.Context, rec SimulationRecord) (SimulationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.params[rec.ParametersID]; !ok {
		return SimulationRecord{}, fmt.Errorf("parameters %s: %w", rec.ParametersID, ErrNotFound)
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = s.now().UTC()
	s.results[rec.ParametersID] = append(s.results[rec.ParametersID], rec)
	return rec, nil
}

// ListResults returns the results of a parameter set.
func (s *MemoryStore) ListResults(_ context.Context, parametersID string) ([]SimulationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.params[parametersID]; !ok {
		return nil, fmt.Errorf("parameters %s: %w", parametersID, ErrNotFound)
	}
	recs := s.results[parametersID]
	out := make([]SimulationRecord, len(recs))
	copy(out, recs)
	return out, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
