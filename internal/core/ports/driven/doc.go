// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - WorkbookClient: the document API (Microsoft Graph or a local .xlsx file)
//   - TokenProvider: bearer tokens for the document API
//   - CredentialCache: persists the serialized token cache between runs
//   - EstimateStore: history of completed estimates (sqlite, postgres, memory)
//   - ConfigStore: application configuration (TOML)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
