// Package pkgdb opens the relational store shared by the modules.
//
// It hides the driver choice (SQLite for local runs and tests, Postgres in
// deployments) behind a single Open call and routes GORM's own logging
// through slog so SQL traces carry the request correlation ID.
package pkgdb
