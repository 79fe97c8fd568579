// Package services implements the driving port interfaces.
// Services contain the core logic and orchestrate calls to driven ports
// (adapters).
//
// The estimator pipeline is split the way the workbook API works:
// DocumentLocator resolves a path once, Workbook opens editing sessions,
// Session carries the cell protocol, and Estimator and Wizard sequence
// them. State that outlives one call (resolved document, lookup table,
// collected inputs) lives on these values, never in package variables.
//
// Services are pure Go with no CGO or external dependencies.
package services
