// Package pkguid provides helpers for generating unique identifiers.
//
// The codebase uses these interfaces to avoid hard-coding a specific UID
// strategy. Depending on the use case you can generate:
//   - String IDs (UUIDv7 for correlation IDs, random hex for API tokens).
//   - Numeric IDs (Snowflake IDs for database rows).
package pkguid
