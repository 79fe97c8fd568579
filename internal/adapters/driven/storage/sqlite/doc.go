// Package sqlite provides the SQLite implementation of the credential cache
// and the estimate history.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. Both stores share one database connection:
//
//   - CredentialCache: the serialized token cache, a single row
//   - EstimateStore: completed estimates with their inputs and results
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.cswcalc/data/cswcalc.db
package sqlite
