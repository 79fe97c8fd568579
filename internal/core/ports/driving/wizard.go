package driving

import (
	"context"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

// WizardService is the linear step machine that collects inputs.
// Validation failures are returned as results, faults as errors; in both
// cases the wizard stays on its current step.
type WizardService interface {
	// Steps returns the ordered steps.
	Steps() []domain.Step

	// Index returns the zero-based position of the current step.
	Index() int

	// Current returns the current step.
	Current() domain.Step

	// IsTerminal reports whether the wizard is on its final step.
	IsTerminal() bool

	// Inputs returns a copy of the collected inputs.
	Inputs() domain.EstimateInputs

	// SetValue parses text into one input field.
	SetValue(field domain.InputField, text string) error

	// SetInputs replaces every collected input.
	SetInputs(inputs domain.EstimateInputs)

	// Options returns the lookup table, loading it on first use.
	Options(ctx context.Context) (domain.OptionsIndex, error)

	// Advance validates the current step and moves forward. Entering the
	// final step runs the calculation. Only one Advance runs at a time; a
	// second call gets domain.ErrStepBusy.
	Advance(ctx context.Context) (domain.ValidationResult, error)

	// Retreat moves back one step without validation.
	Retreat()

	// Restart returns to the first step and clears collected inputs.
	// Credentials and the resolved document are kept.
	Restart()

	// Result returns the estimate computed on entering the final step.
	Result() *domain.Estimate
}
