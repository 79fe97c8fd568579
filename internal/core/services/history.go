package services

import (
	"context"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService reads past estimates.
type HistoryService struct {
	store driven.EstimateStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(store driven.EstimateStore) *HistoryService {
	return &HistoryService{store: store}
}

// List returns recent estimates, newest first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.Estimate, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.store.List(ctx, limit)
}

// Get returns one estimate.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.Estimate, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.store.Get(ctx, id)
}
