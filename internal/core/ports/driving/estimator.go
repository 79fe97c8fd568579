package driving

import (
	"context"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

// EstimatorService runs the workbook pipeline: write inputs, recalculate,
// read results.
type EstimatorService interface {
	// CellMap returns the layout the estimator writes to and reads from.
	CellMap() domain.CellMap

	// LoadOptions reads the lookup table of states and cities. The result
	// is cached until Invalidate.
	LoadOptions(ctx context.Context) (domain.OptionsIndex, error)

	// Validate checks every step of inputs against the lookup table.
	Validate(ctx context.Context, inputs *domain.EstimateInputs) (domain.ValidationResult, error)

	// Calculate writes inputs, recalculates once and reads every output
	// within one editing session. Invalid inputs fail with
	// domain.ErrInvalidInput before any write.
	Calculate(ctx context.Context, inputs *domain.EstimateInputs) (*domain.Estimate, error)

	// Invalidate forgets the resolved document and the cached options.
	Invalidate()
}
