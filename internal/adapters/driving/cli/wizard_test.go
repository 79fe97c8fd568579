package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWizardCmd_NeedsTerminal(t *testing.T) {
	prev := isTerminal
	isTerminal = func() bool { return false }
	t.Cleanup(func() { isTerminal = prev })

	_, _, err := executeCommand(t, "wizard")

	assert.ErrorIs(t, err, errNotInteractive)
}

func TestWizardCmd_ServicesError(t *testing.T) {
	prev := isTerminal
	isTerminal = func() bool { return true }
	t.Cleanup(func() { isTerminal = prev })
	withServices(t, nil)
	prevFactory := serviceFactory
	serviceFactory = nil
	t.Cleanup(func() { serviceFactory = prevFactory })

	_, _, err := executeCommand(t, "wizard")

	assert.EqualError(t, err, "services not configured")
}
