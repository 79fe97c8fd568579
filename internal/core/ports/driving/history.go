package driving

import (
	"context"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

// HistoryService gives access to completed estimates.
type HistoryService interface {
	// List returns recent estimates, newest first.
	List(ctx context.Context, limit int) ([]domain.Estimate, error)

	// Get returns one estimate by ID.
	Get(ctx context.Context, id string) (*domain.Estimate, error)
}
