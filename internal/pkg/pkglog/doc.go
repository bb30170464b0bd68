// Package pkglog configures the process-wide slog logger.
//
// Records are written as JSON with "ts" and "severity" keys, tagged with the
// service name, and carry the request correlation ID ("_cID") whenever the
// context passed to the log call has one.
package pkglog
