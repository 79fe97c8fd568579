// Package tui provides the interactive estimate wizard for cswcalc.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/cswcalc/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Wizard is the step machine that collects inputs and runs the estimate.
	Wizard driving.WizardService
}

// NewPorts creates a new Ports aggregate.
func NewPorts(wizard driving.WizardService) *Ports {
	return &Ports{Wizard: wizard}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Wizard == nil {
		return ErrMissingWizardService
	}
	return nil
}
