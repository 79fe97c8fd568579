package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
)

// Ensure EstimateStore implements the interface.
var _ driven.EstimateStore = (*EstimateStore)(nil)

// EstimateStore is an in-memory implementation of driven.EstimateStore.
type EstimateStore struct {
	mu        sync.RWMutex
	estimates map[string]domain.Estimate
}

// NewEstimateStore creates a new in-memory estimate store.
func NewEstimateStore() *EstimateStore {
	return &EstimateStore{
		estimates: make(map[string]domain.Estimate),
	}
}

// Save stores or replaces an estimate.
func (s *EstimateStore) Save(_ context.Context, estimate domain.Estimate) error {
	if estimate.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.estimates[estimate.ID] = estimate
	return nil
}

// Get retrieves an estimate by ID.
func (s *EstimateStore) Get(_ context.Context, id string) (*domain.Estimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	estimate, ok := s.estimates[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &estimate, nil
}

// List returns estimates newest first.
func (s *EstimateStore) List(_ context.Context, limit int) ([]domain.Estimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Estimate, 0, len(s.estimates))
	for _, e := range s.estimates {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Close does nothing.
func (s *EstimateStore) Close() error {
	return nil
}
