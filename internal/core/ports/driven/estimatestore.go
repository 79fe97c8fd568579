package driven

import (
	"context"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

// EstimateStore keeps the history of completed estimates.
type EstimateStore interface {
	// Save stores an estimate. Saving an existing ID replaces it.
	Save(ctx context.Context, estimate domain.Estimate) error

	// Get retrieves an estimate by ID.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Estimate, error)

	// List returns the most recent estimates first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]domain.Estimate, error)

	// Close releases the backend.
	Close() error
}
