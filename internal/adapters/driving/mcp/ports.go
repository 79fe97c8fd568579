package mcp

import (
	"github.com/custodia-labs/cswcalc/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Estimator runs the workbook pipeline.
	Estimator driving.EstimatorService

	// History serves past estimates. Optional.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Estimator == nil {
		return ErrMissingEstimatorService
	}
	return nil
}
