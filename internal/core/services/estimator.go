package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driving"
	"github.com/custodia-labs/cswcalc/internal/logger"
)

// Ensure Estimator implements the interface.
var _ driving.EstimatorService = (*Estimator)(nil)

// Estimator sequences the cell protocol for one estimate: every input is
// written, the workbook is recalculated once, then every output is read,
// all inside one persisted session.
type Estimator struct {
	workbook *Workbook
	cellMap  domain.CellMap
	history  driven.EstimateStore
	backend  domain.Backend

	now   func() time.Time
	newID func() string

	mu      sync.Mutex
	options *domain.OptionsIndex

	// serial keeps one workbook session open at a time. Sessions on the
	// same document would otherwise overwrite each other's inputs.
	serial sync.Mutex
}

// EstimatorOption configures an Estimator.
type EstimatorOption func(*Estimator)

// WithHistory records each completed estimate in store.
func WithHistory(store driven.EstimateStore) EstimatorOption {
	return func(e *Estimator) { e.history = store }
}

// WithBackend labels estimates with the backend that computed them.
func WithBackend(b domain.Backend) EstimatorOption {
	return func(e *Estimator) { e.backend = b }
}

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) EstimatorOption {
	return func(e *Estimator) { e.now = now }
}

// NewEstimator creates an estimator over workbook using cellMap.
func NewEstimator(workbook *Workbook, cellMap domain.CellMap, opts ...EstimatorOption) *Estimator {
	e := &Estimator{
		workbook: workbook,
		cellMap:  cellMap,
		backend:  domain.BackendGraph,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CellMap returns the layout in use.
func (e *Estimator) CellMap() domain.CellMap {
	return e.cellMap
}

// LoadOptions reads the lookup table in a non-persisting session. The
// index is cached; an empty index is cached too.
func (e *Estimator) LoadOptions(ctx context.Context) (domain.OptionsIndex, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.options != nil {
		return *e.options, nil
	}

	logger.Section("Load Options")
	var index domain.OptionsIndex
	e.serial.Lock()
	err := e.workbook.WithSession(ctx, false, func(s *Session) error {
		var err error
		index, err = s.ReadOptions(ctx, e.cellMap.Options)
		return err
	})
	e.serial.Unlock()
	if err != nil {
		return domain.NewOptionsIndex(), err
	}
	e.options = &index
	return index, nil
}

// Validate checks inputs against the lookup table.
func (e *Estimator) Validate(ctx context.Context, inputs *domain.EstimateInputs) (domain.ValidationResult, error) {
	options, err := e.LoadOptions(ctx)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	return inputs.Validate(options), nil
}

// Calculate runs the write, recalculate, read sequence. Inputs are
// shape-checked first so invalid inputs never reach the workbook.
// Concurrent calls are serialized.
func (e *Estimator) Calculate(ctx context.Context, inputs *domain.EstimateInputs) (*domain.Estimate, error) {
	if r := inputs.Validate(e.cachedOptions()); !r.OK() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, r.String())
	}

	logger.Section("Calculate")
	estimate := &domain.Estimate{
		Inputs:  *inputs,
		Backend: string(e.backend),
	}

	e.serial.Lock()
	err := e.workbook.WithSession(ctx, true, func(s *Session) error {
		estimate.Document = s.Document()

		for _, b := range e.cellMap.Inputs {
			v, err := inputs.Value(b.Field)
			if err != nil {
				return err
			}
			if err := s.Write(ctx, b.Address, v); err != nil {
				return err
			}
		}

		if err := s.Recalculate(ctx); err != nil {
			return err
		}

		results := make([]domain.ResultValue, 0, len(e.cellMap.Outputs))
		for _, o := range e.cellMap.Outputs {
			v, err := s.Read(ctx, o.Address)
			if err != nil {
				return err
			}
			results = append(results, domain.ResultValue{
				Key:     o.Key,
				Label:   o.Label,
				Address: o.Address.String(),
				Value:   v,
			})
		}
		estimate.Results = results
		return nil
	})
	e.serial.Unlock()
	if err != nil {
		return nil, err
	}

	estimate.ID = e.newID()
	estimate.CreatedAt = e.now().UTC()

	if e.history != nil {
		if err := e.history.Save(ctx, *estimate); err != nil {
			logger.Warn("save estimate %s to history: %v", estimate.ID, err)
		}
	}
	return estimate, nil
}

// Invalidate forgets the resolved document and the cached options.
func (e *Estimator) Invalidate() {
	e.mu.Lock()
	e.options = nil
	e.mu.Unlock()
	e.workbook.Locator().Invalidate()
}

func (e *Estimator) cachedOptions() domain.OptionsIndex {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.options == nil {
		return domain.NewOptionsIndex()
	}
	return *e.options
}
