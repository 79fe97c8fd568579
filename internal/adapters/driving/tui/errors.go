package tui

import "errors"

// ErrMissingWizardService is returned when the wizard service is not provided.
var ErrMissingWizardService = errors.New("tui: wizard service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")

// ErrNoProgram is returned when a prompt arrives before a program is attached.
var ErrNoProgram = errors.New("tui: no program attached")
