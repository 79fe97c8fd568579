package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driving"
)

// MockEstimator implements driving.EstimatorService for CLI tests.
type MockEstimator struct {
	Options      domain.OptionsIndex
	Err          error
	Calculated   []domain.EstimateInputs
	ValidateRuns int
}

func (m *MockEstimator) CellMap() domain.CellMap {
	return domain.DefaultCellMap()
}

func (m *MockEstimator) LoadOptions(context.Context) (domain.OptionsIndex, error) {
	return m.Options, m.Err
}

func (m *MockEstimator) Validate(_ context.Context, in *domain.EstimateInputs) (domain.ValidationResult, error) {
	m.ValidateRuns++
	return in.Validate(m.Options), nil
}

func (m *MockEstimator) Calculate(_ context.Context, in *domain.EstimateInputs) (*domain.Estimate, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.Calculated = append(m.Calculated, *in)
	return &domain.Estimate{
		ID:     "est-1",
		Inputs: *in,
		Results: []domain.ResultValue{
			{Key: "total_savings", Label: "Total Savings", Address: "Office!F36", Value: domain.ValueOf(18250.5)},
			{Key: "gas_savings", Label: "Gas Savings", Address: "Office!F33", Value: domain.EmptyCell()},
		},
	}, nil
}

func (m *MockEstimator) Invalidate() {}

// MockAuth implements driving.AuthService for CLI tests.
type MockAuth struct {
	Credential *domain.Credential
	StatusVal  driving.AuthStatus
	Err        error
	LoggedOut  bool
}

func (m *MockAuth) Login(context.Context) (*domain.Credential, error) {
	return m.Credential, m.Err
}

func (m *MockAuth) Logout(context.Context) error {
	m.LoggedOut = true
	return m.Err
}

func (m *MockAuth) Status(context.Context) (driving.AuthStatus, error) {
	return m.StatusVal, m.Err
}

// MockHistory implements driving.HistoryService for CLI tests.
type MockHistory struct {
	Estimates []domain.Estimate
	Limit     int
}

func (m *MockHistory) List(_ context.Context, limit int) ([]domain.Estimate, error) {
	m.Limit = limit
	return m.Estimates, nil
}

func (m *MockHistory) Get(_ context.Context, id string) (*domain.Estimate, error) {
	for i := range m.Estimates {
		if m.Estimates[i].ID == id {
			return &m.Estimates[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func testOptions() domain.OptionsIndex {
	return domain.OptionsIndex{
		Categories: []string{"Texas", "Ohio"},
		Options: map[string][]string{
			"Texas": {"Dallas", "Austin"},
			"Ohio":  {"Columbus"},
		},
	}
}

// withServices injects services for one test.
func withServices(t *testing.T, s *Services) {
	t.Helper()
	prev := services
	services = s
	t.Cleanup(func() { services = prev })
}

// withConfigService injects a configuration service for one test.
func withConfigService(t *testing.T, s driving.ConfigService) {
	t.Helper()
	prev := configService
	configService = s
	t.Cleanup(func() { configService = prev })
}

// executeCommand runs the root command with args and returns stdout and
// stderr. Flag state is reset afterwards.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue) //nolint:errcheck
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// recordingPrompter captures the prompter installed by a command.
type recordingPrompter struct {
	installed driven.DeviceCodePrompter
}

func (r *recordingPrompter) set(p driven.DeviceCodePrompter) {
	r.installed = p
}
