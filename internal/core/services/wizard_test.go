package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cswcalc/internal/adapters/driven/storage/memory/memorytest"
	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

func fill(w *Wizard, in domain.EstimateInputs) {
	w.SetInputs(in)
}

func TestWizard_WalksToResults(t *testing.T) {
	ctx := context.Background()
	wb := newTestWorkbook()
	wiz := NewWizard(newTestEstimator(wb))
	fill(wiz, validTestInputs())

	for i := 0; i < len(wiz.Steps())-1; i++ {
		r, err := wiz.Advance(ctx)
		require.NoError(t, err)
		require.True(t, r.OK(), r.String())
	}

	assert.True(t, wiz.IsTerminal())
	assert.Equal(t, domain.StepResults, wiz.Current().ID)
	require.NotNil(t, wiz.Result())
	assert.Equal(t, 1, wb.Count(memorytest.OpCalculate))
}

// TestWizard_GatingRejectsNonPositiveArea tests that a failed step check
// keeps the wizard in place and issues no writes
func TestWizard_GatingRejectsNonPositiveArea(t *testing.T) {
	ctx := context.Background()
	wb := newTestWorkbook()
	wiz := NewWizard(newTestEstimator(wb))
	in := validTestInputs()
	in.Usage.BuildingArea = 0
	fill(wiz, in)

	for i := 0; i < 2; i++ {
		_, err := wiz.Advance(ctx)
		require.NoError(t, err)
	}
	require.Equal(t, domain.StepUsage, wiz.Current().ID)

	r, err := wiz.Advance(ctx)

	require.NoError(t, err)
	assert.False(t, r.OK())
	assert.Equal(t, []domain.InputField{domain.FieldBuildingArea}, r.Fields())
	assert.Equal(t, domain.StepUsage, wiz.Current().ID)
	assert.Equal(t, 0, wb.Count(memorytest.OpPatch))
}

func TestWizard_CalculationFailureKeepsStep(t *testing.T) {
	ctx := context.Background()
	wb := newTestWorkbook()
	wb.FailOn(memorytest.OpCalculate, "", domain.NewCellAccessError("recalculate", "", 500, "oops", nil))
	wiz := NewWizard(newTestEstimator(wb))
	fill(wiz, validTestInputs())

	for i := 0; i < 3; i++ {
		_, err := wiz.Advance(ctx)
		require.NoError(t, err)
	}

	_, err := wiz.Advance(ctx)

	var ce *domain.CellAccessError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, domain.StepRates, wiz.Current().ID)
	assert.Equal(t, "Texas", wiz.Inputs().Location.State, "state kept intact")

	r, err := wiz.Advance(ctx)
	require.NoError(t, err, "retrying the step succeeds")
	assert.True(t, r.OK())
	assert.True(t, wiz.IsTerminal())
}

func TestWizard_TerminalOnlyRestarts(t *testing.T) {
	ctx := context.Background()
	wiz := NewWizard(newTestEstimator(newTestWorkbook()))
	fill(wiz, validTestInputs())
	for !wiz.IsTerminal() {
		_, err := wiz.Advance(ctx)
		require.NoError(t, err)
	}

	_, err := wiz.Advance(ctx)

	assert.True(t, errors.Is(err, domain.ErrStepLocked))
}

func TestWizard_RetreatNeedsNoValidation(t *testing.T) {
	ctx := context.Background()
	wiz := NewWizard(newTestEstimator(newTestWorkbook()))
	fill(wiz, validTestInputs())
	_, err := wiz.Advance(ctx)
	require.NoError(t, err)

	require.NoError(t, wiz.SetValue(domain.FieldState, ""))
	wiz.Retreat()
	assert.Equal(t, 0, wiz.Index())

	wiz.Retreat()
	assert.Equal(t, 0, wiz.Index(), "retreat on the first step stays put")
}

// TestWizard_RestartKeepsDocumentAndOptions tests that restart clears inputs
// without re-resolving the document or reloading options
func TestWizard_RestartKeepsDocumentAndOptions(t *testing.T) {
	ctx := context.Background()
	wb := newTestWorkbook()
	wiz := NewWizard(newTestEstimator(wb))
	fill(wiz, validTestInputs())
	for !wiz.IsTerminal() {
		_, err := wiz.Advance(ctx)
		require.NoError(t, err)
	}
	resolves := wb.Count(memorytest.OpResolve)
	creates := wb.Count(memorytest.OpCreate)

	wiz.Restart()

	assert.Equal(t, 0, wiz.Index())
	assert.Equal(t, domain.EstimateInputs{}, wiz.Inputs())
	assert.Nil(t, wiz.Result())

	options, err := wiz.Options(ctx)
	require.NoError(t, err)
	assert.True(t, options.Has("Texas"))
	assert.Equal(t, resolves, wb.Count(memorytest.OpResolve))
	assert.Equal(t, creates, wb.Count(memorytest.OpCreate))
}

func TestWizard_ConfigurableSteps(t *testing.T) {
	steps := domain.DefaultSteps()
	wiz := NewWizard(newTestEstimator(newTestWorkbook()), steps[1:]...)

	assert.Len(t, wiz.Steps(), 4)
	assert.Equal(t, domain.StepBuilding, wiz.Current().ID)
}

func TestWizard_InputsIsACopy(t *testing.T) {
	wiz := NewWizard(newTestEstimator(newTestWorkbook()))
	fill(wiz, validTestInputs())

	in := wiz.Inputs()
	in.Location.State = "Ohio"

	assert.Equal(t, "Texas", wiz.Inputs().Location.State)
}

func TestWizard_SetValue(t *testing.T) {
	wiz := NewWizard(newTestEstimator(newTestWorkbook()))

	require.NoError(t, wiz.SetValue(domain.FieldFloors, "12"))
	err := wiz.SetValue(domain.FieldFloors, "twelve")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 12, wiz.Inputs().Usage.Floors)
}

// gatedEstimator blocks Calculate until release is closed, the way a
// device sign-in waits for the user.
type gatedEstimator struct {
	*Estimator
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedEstimator() *gatedEstimator {
	return &gatedEstimator{
		Estimator: newTestEstimator(newTestWorkbook()),
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
}

func (g *gatedEstimator) Calculate(ctx context.Context, in *domain.EstimateInputs) (*domain.Estimate, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.Estimator.Calculate(ctx, in)
}

// toRates advances a wizard to the step before results.
func toRates(t *testing.T, wiz *Wizard) {
	t.Helper()
	fill(wiz, validTestInputs())
	for wiz.Index() < len(wiz.Steps())-2 {
		_, err := wiz.Advance(context.Background())
		require.NoError(t, err)
	}
}

func TestWizard_StateReadableDuringCalculation(t *testing.T) {
	est := newGatedEstimator()
	wiz := NewWizard(est)
	toRates(t, wiz)

	done := make(chan error, 1)
	go func() {
		_, err := wiz.Advance(context.Background())
		done <- err
	}()
	<-est.entered

	read := make(chan int, 1)
	go func() {
		_ = wiz.Current()
		_ = wiz.IsTerminal()
		_ = wiz.Inputs()
		read <- wiz.Index()
	}()
	select {
	case idx := <-read:
		assert.Equal(t, domain.StepRates, wiz.Steps()[idx].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("wizard state blocked while the calculation was running")
	}

	close(est.release)
	require.NoError(t, <-done)
	assert.True(t, wiz.IsTerminal())
	require.NotNil(t, wiz.Result())
}

func TestWizard_SecondAdvanceIsBusy(t *testing.T) {
	est := newGatedEstimator()
	wiz := NewWizard(est)
	toRates(t, wiz)

	done := make(chan error, 1)
	go func() {
		_, err := wiz.Advance(context.Background())
		done <- err
	}()
	<-est.entered

	_, err := wiz.Advance(context.Background())
	assert.ErrorIs(t, err, domain.ErrStepBusy)

	close(est.release)
	require.NoError(t, <-done)
	assert.True(t, wiz.IsTerminal())
}

func TestWizard_RestartDuringCalculationDropsResult(t *testing.T) {
	est := newGatedEstimator()
	wiz := NewWizard(est)
	toRates(t, wiz)

	done := make(chan error, 1)
	go func() {
		_, err := wiz.Advance(context.Background())
		done <- err
	}()
	<-est.entered

	wiz.Restart()
	close(est.release)

	require.NoError(t, <-done)
	assert.Equal(t, 0, wiz.Index())
	assert.Nil(t, wiz.Result())
	assert.Equal(t, domain.EstimateInputs{}, wiz.Inputs())
}
