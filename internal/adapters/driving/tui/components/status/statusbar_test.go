package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBar_Defaults(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, 80, bar.Width())
	assert.Contains(t, bar.View(), "Ready")
}

func TestBar_StepPosition(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetStep(1, 5)

	assert.Contains(t, bar.View(), "Step 2/5")
}

func TestBar_States(t *testing.T) {
	cases := map[State]string{
		StateLoading:     "Loading workbook",
		StateCalculating: "Calculating",
		StateSigningIn:   "Waiting for sign-in",
		StateResults:     "Estimate complete",
	}
	for state, want := range cases {
		bar := NewBar(nil, nil)
		bar.SetWidth(160)
		bar.SetState(state)
		assert.Contains(t, bar.View(), want, state)
	}
}

func TestBar_ErrorMessage(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(160)
	bar.SetState(StateError)
	bar.SetMessage("workbook not found")

	assert.Contains(t, bar.View(), "Error: workbook not found")

	bar.Clear()
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
}

func TestBar_ResultsHints(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(160)

	assert.Contains(t, bar.View(), "enter: next")

	bar.SetState(StateResults)
	assert.NotContains(t, bar.View(), "enter: next")
	assert.Contains(t, bar.View(), "ctrl+r: start over")
}
