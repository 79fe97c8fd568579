package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driving"
	"github.com/custodia-labs/cswcalc/internal/logger"
)

// Ensure Wizard implements the interface.
var _ driving.WizardService = (*Wizard)(nil)

// Wizard is the step machine behind the interactive estimator. It holds
// the inputs of one user session. Inputs are only written to the workbook
// when Advance enters the final step.
//
// mu guards state only. It is never held across estimator calls, which
// may block on the network or on an interactive sign-in.
type Wizard struct {
	estimator driving.EstimatorService
	steps     []domain.Step

	mu        sync.Mutex
	current   int
	inputs    domain.EstimateInputs
	result    *domain.Estimate
	advancing bool
	// generation changes on Retreat and Restart so that an Advance
	// started before them is discarded.
	generation uint64
}

// NewWizard creates a wizard over steps. With no steps the default
// location, building, usage, rates and results steps are used.
func NewWizard(estimator driving.EstimatorService, steps ...domain.Step) *Wizard {
	if len(steps) == 0 {
		steps = domain.DefaultSteps()
	}
	return &Wizard{estimator: estimator, steps: steps}
}

// Steps returns the ordered steps.
func (w *Wizard) Steps() []domain.Step {
	return w.steps
}

// Index returns the zero-based current step.
func (w *Wizard) Index() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Current returns the current step.
func (w *Wizard) Current() domain.Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.steps[w.current]
}

// IsTerminal reports whether the wizard is on its final step.
func (w *Wizard) IsTerminal() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isTerminal()
}

// Inputs returns a copy of the collected inputs.
func (w *Wizard) Inputs() domain.EstimateInputs {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inputs
}

// SetValue parses text into field. On error the field is unchanged.
func (w *Wizard) SetValue(field domain.InputField, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inputs.SetValue(field, text)
}

// SetInputs replaces every collected input.
func (w *Wizard) SetInputs(inputs domain.EstimateInputs) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inputs = inputs
}

// Options returns the lookup table from the estimator.
func (w *Wizard) Options(ctx context.Context) (domain.OptionsIndex, error) {
	return w.estimator.LoadOptions(ctx)
}

// Advance validates the current step. A failed check returns the violations
// and leaves the step unchanged. Entering the final step runs the
// calculation; if it fails the wizard stays put and the error is returned.
//
// The check runs on a snapshot of the inputs without holding the lock.
// If Retreat or Restart happen meanwhile, the outcome is dropped.
func (w *Wizard) Advance(ctx context.Context) (domain.ValidationResult, error) {
	w.mu.Lock()
	if w.isTerminal() {
		w.mu.Unlock()
		return domain.ValidationResult{}, domain.ErrStepLocked
	}
	if w.advancing {
		w.mu.Unlock()
		return domain.ValidationResult{}, domain.ErrStepBusy
	}
	w.advancing = true
	index, generation := w.current, w.generation
	inputs := w.inputs
	w.mu.Unlock()

	result, estimate, err := w.check(ctx, index, &inputs)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.advancing = false
	if err != nil || !result.OK() {
		return result, err
	}
	if w.generation != generation {
		logger.Debug("wizard moved during step %s check, dropping result", w.steps[index].ID)
		return domain.ValidationResult{Step: w.steps[w.current].ID}, nil
	}

	if estimate != nil {
		w.result = estimate
	}
	w.current = index + 1
	logger.Debug("wizard advanced to %s", w.steps[w.current].ID)
	return result, nil
}

// check validates step index against inputs and, when the next step is the
// final one, runs the calculation.
func (w *Wizard) check(
	ctx context.Context, index int, inputs *domain.EstimateInputs,
) (domain.ValidationResult, *domain.Estimate, error) {
	step := w.steps[index]
	if step.Validate != nil {
		var options domain.OptionsIndex
		if needsOptions(step) {
			var err error
			options, err = w.estimator.LoadOptions(ctx)
			if err != nil {
				return domain.ValidationResult{}, nil, err
			}
		}
		if r := step.Validate(inputs, options); !r.OK() {
			logger.Debug("step %s rejected: %s", step.ID, r)
			return r, nil, nil
		}
	}

	if index+1 != len(w.steps)-1 {
		return domain.ValidationResult{Step: step.ID}, nil, nil
	}
	estimate, err := w.estimator.Calculate(ctx, inputs)
	if err != nil {
		return domain.ValidationResult{}, nil, err
	}
	return domain.ValidationResult{Step: step.ID}, estimate, nil
}

// Retreat moves back one step. On the first step it does nothing.
func (w *Wizard) Retreat() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == 0 {
		return
	}
	if w.isTerminal() {
		w.result = nil
	}
	w.current--
	w.generation++
}

// Restart returns to the first step with empty inputs. The estimator keeps
// its resolved document and options, so no lookup is repeated.
func (w *Wizard) Restart() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.current = 0
	w.inputs = domain.EstimateInputs{}
	w.result = nil
	w.generation++
}

// Result returns the estimate computed on entering the final step.
func (w *Wizard) Result() *domain.Estimate {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

func (w *Wizard) isTerminal() bool {
	return w.current == len(w.steps)-1
}

func needsOptions(step domain.Step) bool {
	for _, f := range step.Fields {
		if f == domain.FieldState || f == domain.FieldCity {
			return true
		}
	}
	return false
}
