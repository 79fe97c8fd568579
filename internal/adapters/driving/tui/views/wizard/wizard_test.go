package wizard

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cswcalc/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/services"
)

// MockEstimator implements driving.EstimatorService for testing.
type MockEstimator struct {
	Options       domain.OptionsIndex
	OptionsErr    error
	CalculateFunc func(ctx context.Context, in *domain.EstimateInputs) (*domain.Estimate, error)
	calculations  int
}

func (m *MockEstimator) CellMap() domain.CellMap {
	return domain.DefaultCellMap()
}

func (m *MockEstimator) LoadOptions(ctx context.Context) (domain.OptionsIndex, error) {
	return m.Options, m.OptionsErr
}

func (m *MockEstimator) Validate(ctx context.Context, in *domain.EstimateInputs) (domain.ValidationResult, error) {
	return in.Validate(m.Options), nil
}

func (m *MockEstimator) Calculate(ctx context.Context, in *domain.EstimateInputs) (*domain.Estimate, error) {
	m.calculations++
	if m.CalculateFunc != nil {
		return m.CalculateFunc(ctx, in)
	}
	return &domain.Estimate{
		ID:     "est-1",
		Inputs: *in,
		Results: []domain.ResultValue{
			{Key: "total_savings", Label: "Total Savings ($/yr)", Value: domain.ValueOf(1234.5)},
			{Key: "hdd", Label: "Heating Degree Days", Value: domain.EmptyCell()},
		},
	}, nil
}

func (m *MockEstimator) Invalidate() {}

func testOptions() domain.OptionsIndex {
	return domain.OptionsIndex{
		Categories: []string{"Texas", "Ohio"},
		Options: map[string][]string{
			"Texas": {"Dallas", "Austin"},
			"Ohio":  {"Columbus"},
		},
	}
}

func newTestView(est *MockEstimator) (*View, *services.Wizard) {
	wiz := services.NewWizard(est)
	view := NewView(nil, nil, wiz)
	return view, wiz
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and, when it starts an advance, delivers the result.
func press(t *testing.T, v *View, s string) *View {
	t.Helper()
	v, cmd := v.Update(key(s))
	if s == "enter" && cmd != nil {
		msg := cmd()
		advanced, ok := msg.(messages.StepAdvanced)
		require.True(t, ok, "expected StepAdvanced, got %T", msg)
		v, _ = v.Update(advanced)
	}
	return v
}

func typeText(v *View, text string) *View {
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return v
}

func loaded(t *testing.T, est *MockEstimator) *View {
	t.Helper()
	view, _ := newTestView(est)
	view.Init()
	view, _ = view.Update(messages.OptionsLoaded{Options: est.Options})
	require.True(t, view.optionsLoaded)
	return view
}

func TestNewView_Defaults(t *testing.T) {
	view, _ := newTestView(&MockEstimator{})

	require.NotNil(t, view)
	assert.Len(t, view.fields, 2)
	assert.False(t, view.Busy())
	assert.Contains(t, view.View(), "Location")
}

func TestNewView_NilWizard(t *testing.T) {
	view := NewView(nil, nil, nil)

	view.Init()
	assert.False(t, view.Busy())
	assert.Contains(t, view.View(), "No wizard service")
}

func TestView_InitLoadsOptions(t *testing.T) {
	view, _ := newTestView(&MockEstimator{Options: testOptions()})

	cmd := view.Init()

	require.NotNil(t, cmd)
	assert.True(t, view.Busy())
}

func TestView_OptionsLoadedFillsStates(t *testing.T) {
	view := loaded(t, &MockEstimator{Options: testOptions()})

	assert.False(t, view.Busy())
	assert.Equal(t, []string{"Texas", "Ohio"}, view.fields[0].choice.Choices())
	assert.Empty(t, view.fields[1].choice.Choices())
}

func TestView_OptionsLoadError(t *testing.T) {
	view, _ := newTestView(&MockEstimator{})
	boom := &domain.NotFoundError{Path: "/me/drive/root:/calc.xlsx"}

	view, _ = view.Update(messages.OptionsLoaded{Err: boom})

	require.Error(t, view.Err())
	assert.Contains(t, view.View(), "Workbook not found")
}

func TestView_StateChangeResetsCity(t *testing.T) {
	view := loaded(t, &MockEstimator{Options: testOptions()})

	view = press(t, view, "right")
	assert.Equal(t, "Texas", view.wizard.Inputs().Location.State)
	assert.Equal(t, []string{"Dallas", "Austin"}, view.fields[1].choice.Choices())

	view = press(t, view, "tab")
	view = press(t, view, "right")
	assert.Equal(t, "Dallas", view.fields[1].choice.Selected())

	view = press(t, view, "tab")
	view = press(t, view, "right")
	assert.Equal(t, "Ohio", view.wizard.Inputs().Location.State)
	assert.Empty(t, view.wizard.Inputs().Location.City)
	assert.Equal(t, []string{"Columbus"}, view.fields[1].choice.Choices())
	assert.Empty(t, view.fields[1].choice.Selected())
}

func TestView_AdvanceRejectedShowsWarning(t *testing.T) {
	view := loaded(t, &MockEstimator{Options: testOptions()})

	view = press(t, view, "enter")

	assert.Equal(t, domain.StepLocation, view.wizard.Current().ID)
	assert.Equal(t, []domain.InputField{domain.FieldState, domain.FieldCity}, view.Warning().Fields())
	assert.Contains(t, view.View(), "State is required")
}

func TestView_AdvanceMovesToBuilding(t *testing.T) {
	view := loaded(t, &MockEstimator{Options: testOptions()})
	view = press(t, view, "right")
	view = press(t, view, "tab")
	view = press(t, view, "right")

	view = press(t, view, "enter")

	assert.Equal(t, domain.StepBuilding, view.wizard.Current().ID)
	assert.True(t, view.Warning().OK())
	assert.Len(t, view.fields, 5)
	assert.False(t, view.AcceptsText())
}

func TestView_BusyIgnoresRetrigger(t *testing.T) {
	view := loaded(t, &MockEstimator{Options: testOptions()})
	view = press(t, view, "right")
	view = press(t, view, "tab")
	view = press(t, view, "right")

	view, first := view.Update(key("enter"))
	require.NotNil(t, first)
	assert.True(t, view.Busy())

	view, second := view.Update(key("enter"))
	assert.Nil(t, second)

	view, _ = view.Update(first())
	assert.False(t, view.Busy())
	assert.Equal(t, domain.StepBuilding, view.wizard.Current().ID)
}

func TestView_NumberParseFailureStaysOnStep(t *testing.T) {
	est := &MockEstimator{Options: testOptions()}
	view, wiz := newTestView(est)
	wiz.SetInputs(domain.EstimateInputs{
		Location: domain.LocationInputs{State: "Texas", City: "Dallas"},
		Building: domain.BuildingInputs{
			HVACSystem: domain.HVACSystemChoices[0], HeatingFuel: "Electric",
			CoolingInstalled: "Yes", ExistingWindow: "Single pane", CSWType: "Single",
		},
	})
	view, _ = view.Update(messages.OptionsLoaded{Options: est.Options})
	view = press(t, view, "enter")
	view = press(t, view, "enter")
	require.Equal(t, domain.StepUsage, wiz.Current().ID)
	require.True(t, view.AcceptsText())

	view.focusCurrent()
	view = typeText(view, "abc")
	view = press(t, view, "enter")

	assert.Equal(t, domain.StepUsage, wiz.Current().ID)
	assert.Contains(t, view.Warning().Fields(), domain.FieldBuildingArea)
	assert.Contains(t, view.View(), "must be a number")
}

func fullInputs() domain.EstimateInputs {
	return domain.EstimateInputs{
		Location: domain.LocationInputs{State: "Texas", City: "Dallas"},
		Building: domain.BuildingInputs{
			HVACSystem: domain.HVACSystemChoices[0], HeatingFuel: "Electric",
			CoolingInstalled: "Yes", ExistingWindow: "Single pane", CSWType: "Single",
		},
		Usage: domain.UsageInputs{BuildingArea: 20000, Floors: 2, OperatingHours: 4000, CSWArea: 1500},
		Rates: domain.RateInputs{ElectricRate: 0.12},
	}
}

func TestView_CalculatesOnFinalStep(t *testing.T) {
	est := &MockEstimator{Options: testOptions()}
	view, wiz := newTestView(est)
	wiz.SetInputs(fullInputs())
	view, _ = view.Update(messages.OptionsLoaded{Options: est.Options})

	for i := 0; i < 3; i++ {
		view = press(t, view, "enter")
	}
	require.Equal(t, domain.StepRates, wiz.Current().ID)

	view, cmd := view.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.True(t, view.Calculating())
	view, _ = view.Update(cmd())

	assert.True(t, wiz.IsTerminal())
	assert.Equal(t, 1, est.calculations)
	out := view.View()
	assert.Contains(t, out, "Total Savings ($/yr)")
	assert.Contains(t, out, "1234.5")
	assert.Contains(t, out, "Dallas, Texas")

	view, cmd = view.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, 1, est.calculations)
}

func TestView_CalculationFailureKeepsStep(t *testing.T) {
	est := &MockEstimator{
		Options: testOptions(),
		CalculateFunc: func(context.Context, *domain.EstimateInputs) (*domain.Estimate, error) {
			return nil, domain.NewCellAccessError("read", "Office!F36", 503, "busy", nil)
		},
	}
	view, wiz := newTestView(est)
	wiz.SetInputs(fullInputs())
	view, _ = view.Update(messages.OptionsLoaded{Options: est.Options})

	for i := 0; i < 4; i++ {
		view = press(t, view, "enter")
	}

	assert.Equal(t, domain.StepRates, wiz.Current().ID)
	require.Error(t, view.Err())
	assert.Contains(t, view.View(), "Workbook busy")
}

func TestView_RetreatAndRestart(t *testing.T) {
	est := &MockEstimator{Options: testOptions()}
	view, wiz := newTestView(est)
	wiz.SetInputs(fullInputs())
	view, _ = view.Update(messages.OptionsLoaded{Options: est.Options})
	view = press(t, view, "enter")
	require.Equal(t, domain.StepBuilding, wiz.Current().ID)

	view = press(t, view, "esc")
	assert.Equal(t, domain.StepLocation, wiz.Current().ID)
	assert.Equal(t, "Texas", view.fields[0].choice.Selected())
	assert.Equal(t, "Dallas", view.fields[1].choice.Selected())

	view = press(t, view, "ctrl+r")
	assert.Equal(t, domain.StepLocation, wiz.Current().ID)
	assert.Empty(t, wiz.Inputs().Location.State)
	assert.Empty(t, view.fields[0].choice.Selected())
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&domain.ConfigurationError{Names: []string{"auth.client_id"}}, "Configuration"},
		{&domain.AuthenticationError{Description: "expired_token"}, "Sign-in failed"},
		{domain.NewCellAccessError("write", "Office!C5", 400, "", nil), "Workbook error"},
		{errors.New("boom"), "Error: boom"},
	}
	for _, tt := range tests {
		assert.Contains(t, describe(tt.err), tt.want)
	}
}
