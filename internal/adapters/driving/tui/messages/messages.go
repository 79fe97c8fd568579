// Package messages defines Bubbletea message types for the TUI.
// Messages carry results of workbook calls back into the Elm loop.
package messages

import (
	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

// OptionsLoaded carries the state and city lookup table.
type OptionsLoaded struct {
	Options domain.OptionsIndex
	Err     error
}

// StepAdvanced is the outcome of an advance attempt. A non-OK Result means
// the step was rejected; Err means the attempt failed. In both cases the
// wizard did not move.
type StepAdvanced struct {
	Result domain.ValidationResult
	Err    error
}

// DeviceCodeShown asks the user to complete sign-in in a browser.
type DeviceCodeShown struct {
	Prompt domain.DeviceCodePrompt
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
