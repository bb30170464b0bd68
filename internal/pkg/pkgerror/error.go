package pkgerror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned by stores when a row does not exist.
var ErrNotFound = errors.New("resource not found")

// Type groups errors for logging. The router logs TypeServer errors before
// answering.
type Type int

const (
	TypeServer Type = iota
	TypeBusiness
	TypeValidation
)

var typeNames = map[Type]string{
	TypeServer:     "server",
	TypeBusiness:   "business",
	TypeValidation: "validation",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Code decides the HTTP status of an error.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeConflict
	CodeUnauthorized
	CodeForbidden
	CodeTooLarge
)

type codeInfo struct {
	name   string
	status int
}

var codes = map[Code]codeInfo{
	CodeInternal:      {"internal", http.StatusInternalServerError},
	CodeInvalidFormat: {"invalid_format", http.StatusBadRequest},
	CodeInvalidInput:  {"invalid_input", http.StatusUnprocessableEntity},
	CodeNotFound:      {"not_found", http.StatusNotFound},
	CodeConflict:      {"conflict", http.StatusConflict},
	CodeUnauthorized:  {"unauthorized", http.StatusUnauthorized},
	CodeForbidden:     {"forbidden", http.StatusForbidden},
	CodeTooLarge:      {"too_large", http.StatusRequestEntityTooLarge},
}

func (c Code) info() codeInfo {
	if info, ok := codes[c]; ok {
		return info
	}
	return codes[CodeInternal]
}

func (c Code) String() string { return c.info().name }

// Error carries the message shown to API callers next to the cause that is
// only logged.
type Error struct {
	cause error
	msg   string
	kind  Type
	code  Code
}

// Error prefers the cause so logs keep the low-level detail.
func (e *Error) Error() string {
	switch {
	case e.cause != nil:
		return e.cause.Error()
	case e.msg != "":
		return e.msg
	default:
		return e.kind.String() + " error"
	}
}

// String is used in log lines.
func (e *Error) String() string {
	return fmt.Sprintf("%s/%s: %s (cause: %v)", e.kind, e.code, e.msg, e.cause)
}

// Msg is the caller-facing message.
func (e *Error) Msg() string { return e.msg }

func (e *Error) Type() Type { return e.kind }

func (e *Error) Code() Code { return e.code }

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) StatusCode() int { return e.code.info().status }

func newError(cause error, msg string, kind Type, code Code) error {
	return &Error{cause: cause, msg: msg, kind: kind, code: code}
}

// NewServer wraps an unexpected failure behind a generic message.
func NewServer(err error) error {
	return newError(err, "Internal server error", TypeServer, CodeInternal)
}

// NewBusiness reports a domain rule violation such as a missing dataset or a
// duplicate username.
func NewBusiness(msg string, code Code) error {
	return newError(nil, msg, TypeBusiness, code)
}

// NewInvalidInput wraps a field validation failure; its text is shown as the
// error detail.
func NewInvalidInput(err error) error {
	return newError(err, "validation error", TypeValidation, CodeInvalidInput)
}

func NewInvalidFormat() error {
	return newError(nil, "invalid request body", TypeValidation, CodeInvalidFormat)
}

// NewRejected reports a payload that was read but refused, such as a CSV
// with missing columns. msg is shown as-is.
func NewRejected(msg string) error {
	return newError(nil, msg, TypeValidation, CodeInvalidFormat)
}

func NewTooLarge(limit int64) error {
	return newError(nil, fmt.Sprintf("request body exceeds %d bytes", limit), TypeValidation, CodeTooLarge)
}

func NewUnauthorized(msg string) error {
	return newError(nil, msg, TypeBusiness, CodeUnauthorized)
}

func NewForbidden(msg string) error {
	return newError(nil, msg, TypeBusiness, CodeForbidden)
}
