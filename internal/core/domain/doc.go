// Package domain defines the core business entities for cswcalc.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Credential / TokenCache: bearer tokens and their serialized cache
//   - DocumentRef / SessionHandle: a resolved workbook and an editing session on it
//   - CellAddress / CellValue / Grid: the cell-level read/write vocabulary
//   - OptionsIndex: categories and their options derived from a lookup range
//   - EstimateInputs / Estimate: what the wizard collects and what the workbook returns
//   - CellMap: the fixed contract between input fields and workbook cells
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
