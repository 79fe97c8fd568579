// Package mcp provides an MCP (Model Context Protocol) server adapter for cswcalc.
// It lets AI assistants look up workbook locations and run savings estimates.
package mcp

import "errors"

// ErrMissingEstimatorService is returned when the estimator service is not provided.
var ErrMissingEstimatorService = errors.New("mcp: estimator service is required")
