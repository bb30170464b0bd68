// Package pkgrouter wraps HTTP routing and common middleware used by the API.
//
// It provides a small router abstraction over httprouter plus shared concerns
// like JSON encoding, error mapping, logging, recovery, token authentication,
// and correlation ID propagation. Handlers return either a payload for the
// {"message","data","meta"} envelope or a *File for raw downloads.
package pkgrouter
