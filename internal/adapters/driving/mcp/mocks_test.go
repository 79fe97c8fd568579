package mcp

import (
	"context"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driving"
)

// mockEstimatorService is a mock implementation of driving.EstimatorService.
type mockEstimatorService struct {
	options      domain.OptionsIndex
	optionsErr   error
	estimate     *domain.Estimate
	calcErr      error
	calculations int
}

func (m *mockEstimatorService) CellMap() domain.CellMap {
	return domain.DefaultCellMap()
}

func (m *mockEstimatorService) LoadOptions(_ context.Context) (domain.OptionsIndex, error) {
	return m.options, m.optionsErr
}

func (m *mockEstimatorService) Validate(
	_ context.Context,
	in *domain.EstimateInputs,
) (domain.ValidationResult, error) {
	if m.optionsErr != nil {
		return domain.ValidationResult{}, m.optionsErr
	}
	return in.Validate(m.options), nil
}

func (m *mockEstimatorService) Calculate(
	_ context.Context,
	in *domain.EstimateInputs,
) (*domain.Estimate, error) {
	m.calculations++
	if m.calcErr != nil {
		return nil, m.calcErr
	}
	if m.estimate != nil {
		return m.estimate, nil
	}
	return &domain.Estimate{ID: "est-1", Inputs: *in}, nil
}

func (m *mockEstimatorService) Invalidate() {}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	estimates []domain.Estimate
	err       error
}

func (m *mockHistoryService) List(_ context.Context, limit int) ([]domain.Estimate, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && len(m.estimates) > limit {
		return m.estimates[:limit], nil
	}
	return m.estimates, nil
}

func (m *mockHistoryService) Get(_ context.Context, id string) (*domain.Estimate, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.estimates {
		if m.estimates[i].ID == id {
			return &m.estimates[i], nil
		}
	}
	return nil, &domain.NotFoundError{Path: id}
}

// Verify interface compliance.
var (
	_ driving.EstimatorService = (*mockEstimatorService)(nil)
	_ driving.HistoryService   = (*mockHistoryService)(nil)
)

func testOptions() domain.OptionsIndex {
	return domain.OptionsIndex{
		Categories: []string{"Texas", "Ohio"},
		Options: map[string][]string{
			"Texas": {"Dallas", "Austin"},
			"Ohio":  {"Columbus"},
		},
	}
}
