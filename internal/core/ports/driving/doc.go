// Package driving defines the interfaces that external actors use to
// interact with the core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// The TUI, CLI and MCP adapters call these interfaces; core services
// implement them.
//
// # Interfaces
//
//   - EstimatorService: loads workbook options and runs a calculation
//   - WizardService: the step-by-step state machine behind the wizard
//   - AuthService: sign in, sign out, status
//   - HistoryService: past estimates
//   - ConfigService: configuration loading and editing
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driving
