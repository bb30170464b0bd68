package pkgerror

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestNames(t *testing.T) {
	cases := []struct{ got, want string }{
		{TypeServer.String(), "server"},
		{TypeValidation.String(), "validation"},
		{Type(42).String(), "unknown"},
		{CodeInvalidFormat.String(), "invalid_format"},
		{CodeTooLarge.String(), "too_large"},
		{Code(42).String(), "internal"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("got %q, want %q", tc.got, tc.want)
		}
	}
}

func TestServerErrorHidesCause(t *testing.T) {
	root := errors.New("disk I/O error")
	err := NewServer(root)

	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if !errors.Is(err, root) {
		t.Fatal("cause should be unwrappable")
	}
	if perr.Msg() != "Internal server error" {
		t.Fatalf("unexpected msg: %q", perr.Msg())
	}
	if perr.Error() != "disk I/O error" {
		t.Fatalf("logs should see the cause, got %q", perr.Error())
	}
	if perr.Type() != TypeServer || perr.Code() != CodeInternal {
		t.Fatalf("unexpected classification: %s/%s", perr.Type(), perr.Code())
	}
	if perr.StatusCode() != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", perr.StatusCode())
	}
}

func TestInvalidInputWrapsCause(t *testing.T) {
	root := errors.New("username is required")
	err := NewInvalidInput(root)
	if err.Error() != "username is required" {
		t.Fatalf("unexpected error: %q", err.Error())
	}
	if !errors.Is(err, root) {
		t.Fatal("cause should be unwrappable")
	}
	if got := err.(*Error).StatusCode(); got != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: %d", got)
	}
}

func TestFallbackMessage(t *testing.T) {
	err := newError(nil, "", TypeValidation, CodeInternal)
	if err.Error() != "validation error" {
		t.Fatalf("unexpected fallback: %q", err.Error())
	}
}

func TestStringIncludesClassification(t *testing.T) {
	str := NewBusiness("dataset not found", CodeNotFound).(*Error).String()
	for _, want := range []string{"business", "not_found", "dataset not found"} {
		if !strings.Contains(str, want) {
			t.Errorf("expected %q in %q", want, str)
		}
	}
}

func TestRequestErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		msg    string
		status int
	}{
		{"invalid format", NewInvalidFormat(), "invalid request body", http.StatusBadRequest},
		{"rejected", NewRejected("invalid file type"), "invalid file type", http.StatusBadRequest},
		{"too large", NewTooLarge(10), "request body exceeds 10 bytes", http.StatusRequestEntityTooLarge},
		{"not found", NewBusiness("dataset not found", CodeNotFound), "dataset not found", http.StatusNotFound},
		{"conflict", NewBusiness("username taken", CodeConflict), "username taken", http.StatusConflict},
		{"unauthorized", NewUnauthorized("invalid token"), "invalid token", http.StatusUnauthorized},
		{"forbidden", NewForbidden("admin only"), "admin only", http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var perr *Error
			if !errors.As(tc.err, &perr) {
				t.Fatalf("expected *Error, got %T", tc.err)
			}
			if perr.Msg() != tc.msg || perr.Error() != tc.msg {
				t.Fatalf("unexpected message: msg=%q error=%q", perr.Msg(), perr.Error())
			}
			if perr.StatusCode() != tc.status {
				t.Fatalf("unexpected status: %d", perr.StatusCode())
			}
		})
	}
}
