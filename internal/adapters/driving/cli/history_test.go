package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

func sampleHistory() *MockHistory {
	created := time.Date(2026, 3, 2, 15, 4, 5, 0, time.UTC)
	return &MockHistory{Estimates: []domain.Estimate{
		{
			ID:        "est-2",
			Inputs:    domain.EstimateInputs{Location: domain.LocationInputs{State: "Ohio", City: "Columbus"}},
			Results:   []domain.ResultValue{{Key: "total_savings", Label: "Total Savings", Value: domain.ValueOf(950.25)}},
			CreatedAt: created,
		},
		{
			ID:        "est-1",
			Inputs:    domain.EstimateInputs{Location: domain.LocationInputs{State: "Texas", City: "Dallas"}},
			Results:   []domain.ResultValue{{Key: "total_savings", Label: "Total Savings", Value: domain.EmptyCell()}},
			CreatedAt: created.Add(-time.Hour),
		},
	}}
}

func TestHistoryCmd_List(t *testing.T) {
	h := sampleHistory()
	withServices(t, &Services{History: h})

	stdout, _, err := executeCommand(t, "history", "-n", "5")

	require.NoError(t, err)
	assert.Equal(t, 5, h.Limit)
	assert.Contains(t, stdout, "TOTAL SAVINGS")
	assert.Contains(t, stdout, "Columbus, Ohio")
	assert.Contains(t, stdout, "950.25")
	assert.Regexp(t, `est-1\s+.*Dallas, Texas\s+-`, stdout)
}

func TestHistoryCmd_DefaultLimit(t *testing.T) {
	h := sampleHistory()
	withServices(t, &Services{History: h})

	_, _, err := executeCommand(t, "history")

	require.NoError(t, err)
	assert.Equal(t, 20, h.Limit)
}

func TestHistoryCmd_Empty(t *testing.T) {
	withServices(t, &Services{History: &MockHistory{}})

	stdout, _, err := executeCommand(t, "history")

	require.NoError(t, err)
	assert.Equal(t, "No estimates yet.\n", stdout)
}

func TestHistoryCmd_Show(t *testing.T) {
	withServices(t, &Services{History: sampleHistory()})

	stdout, _, err := executeCommand(t, "history", "est-2")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Estimate est-2")
	assert.Contains(t, stdout, "[Inputs]")
	assert.Contains(t, stdout, "Columbus")
	assert.Contains(t, stdout, "[Results]")
	assert.Contains(t, stdout, "950.25")
}

func TestHistoryCmd_ShowJSON(t *testing.T) {
	withServices(t, &Services{History: sampleHistory()})

	stdout, _, err := executeCommand(t, "history", "est-1", "--json")

	require.NoError(t, err)
	var got domain.Estimate
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "Dallas", got.Inputs.Location.City)
}

func TestHistoryCmd_NotFound(t *testing.T) {
	withServices(t, &Services{History: sampleHistory()})

	_, _, err := executeCommand(t, "history", "est-9")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryCmd_NoService(t *testing.T) {
	withServices(t, &Services{})

	_, _, err := executeCommand(t, "history")

	assert.EqualError(t, err, "history service not configured")
}
