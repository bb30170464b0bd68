package pkgrouter

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeCID(t *testing.T) {
	if got := normalizeCID("  abc  "); got != "abc" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := normalizeCID("abc\r\nX-Injected: 1"); got != "" {
		t.Fatalf("expected empty for embedded newline, got %q", got)
	}
	if got := normalizeCID("id with space"); got != "" {
		t.Fatalf("expected empty for inner space, got %q", got)
	}
	long := strings.Repeat("a", 200)
	if got := normalizeCID(long); len(got) != 128 {
		t.Fatalf("expected length 128, got %d", len(got))
	}
}

func TestMaskHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("Authorization", "secret")
	headers.Set("X-Trace", "ok")

	masked := maskHeaders(headers)
	if got := masked.Get("Authorization"); got != "***" {
		t.Fatalf("expected masked authorization, got %q", got)
	}
	if got := masked.Get("X-Trace"); got != "ok" {
		t.Fatalf("expected X-Trace to stay, got %q", got)
	}
	if got := headers.Get("Authorization"); got != "secret" {
		t.Fatalf("expected original headers unchanged, got %q", got)
	}
}

func TestMaskData(t *testing.T) {
	input := map[string]any{
		"Password": "secret",
		"user": map[string]any{
			"token": "abc",
		},
		"results": []any{
			map[string]any{
				"password": "pw",
				"username": "op",
			},
		},
	}

	masked := maskData(input).(map[string]any)
	if masked["Password"] != "***" {
		t.Fatalf("expected masked password")
	}
	if masked["user"].(map[string]any)["token"] != "***" {
		t.Fatalf("expected masked token")
	}
	items := masked["results"].([]any)
	if items[0].(map[string]any)["password"] != "***" {
		t.Fatalf("expected masked nested password")
	}
	if items[0].(map[string]any)["username"] != "op" {
		t.Fatalf("expected username to remain")
	}
}

func TestRequestBody(t *testing.T) {
	long := strings.Repeat("a", maxLoggedBodyBytes+10)

	cases := []struct {
		name        string
		contentType string
		body        []byte
		want        any
	}{
		{"empty", "application/json", nil, nil},
		{"json masked", "application/json", []byte(`{"password":"secret","username":"op"}`), map[string]any{"password": "***", "username": "op"}},
		{"form masked", "application/x-www-form-urlencoded", []byte("username=admin&password=hunter2"), map[string]any{"password": "***", "username": "admin"}},
		{"form repeated key", "application/x-www-form-urlencoded; charset=utf-8", []byte("type=Pump&type=Valve"), map[string]any{"type": []string{"Pump", "Valve"}}},
		{"truncated json login", "application/json", []byte(`{"username":"admin","password":"hunter2`), "<body omitted, may contain credentials>"},
		{"plain text", "text/csv", []byte("temperature,pressure"), "temperature,pressure"},
		{"long text", "text/plain", []byte(long), long[:maxLoggedBodyBytes] + "...(truncated)"},
		{"binary", "application/octet-stream", []byte{0xff, 0xfe, 0xfd}, "<binary body omitted>"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := requestBody(tc.contentType, tc.body); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestLoginBodyNeverLogsPassword(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := middlewareLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusBadRequest)
	}))

	for _, tc := range []struct{ contentType, body string }{
		{"application/x-www-form-urlencoded", "username=admin&password=hunter2"},
		{"text/plain", "username=admin&password=hunter2"},
		{"application/json", `{"username":"admin","password":"hunter2`},
	} {
		req := httptest.NewRequest(http.MethodPost, "/login/", strings.NewReader(tc.body))
		req.Header.Set("Content-Type", tc.contentType)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	if strings.Contains(logs.String(), "hunter2") {
		t.Fatalf("password leaked into logs: %s", logs.String())
	}
}

func TestIsMultipart(t *testing.T) {
	if !isMultipart("multipart/form-data; boundary=abc") {
		t.Fatalf("expected multipart content type to match")
	}
	if isMultipart("application/json") {
		t.Fatalf("expected json not to match")
	}
}

func TestMaskDataToken(t *testing.T) {
	masked := maskData(map[string]any{"data": map[string]any{"token": "abc", "username": "admin"}}).(map[string]any)
	data := masked["data"].(map[string]any)
	if data["token"] != "***" {
		t.Fatalf("expected masked token")
	}
	if data["username"] != "admin" {
		t.Fatalf("expected username to remain")
	}
}

func TestPeekBodyKeepsWholeStream(t *testing.T) {
	payload := strings.Repeat("x", maxLoggedBodyBytes+500)
	req := httptest.NewRequest(http.MethodPost, "/users/", strings.NewReader(payload))

	head := peekBody(req)
	if len(head) != maxLoggedBodyBytes+1 {
		t.Fatalf("expected capped peek, got %d bytes", len(head))
	}

	rest, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(rest) != payload {
		t.Fatalf("expected full body after peek, got %d bytes", len(rest))
	}
}

func TestResponseRecorderSkipsDownloads(t *testing.T) {
	rec := &responseRecorder{ResponseWriter: httptest.NewRecorder()}
	rec.Header().Set("Content-Type", "application/pdf")
	_, _ = rec.Write([]byte("%PDF-1.3"))

	if rec.body.Len() != 0 {
		t.Fatalf("expected pdf body not captured")
	}
	if got := rec.loggedBody(); got != "<application/pdf body omitted>" {
		t.Fatalf("unexpected logged body %v", got)
	}

	rec = &responseRecorder{ResponseWriter: httptest.NewRecorder()}
	rec.Header().Set("Content-Type", "application/json")
	_, _ = rec.Write([]byte(`{"data":{"token":"abc"}}`))
	logged := rec.loggedBody().(map[string]any)
	if logged["data"].(map[string]any)["token"] != "***" {
		t.Fatalf("expected token masked in response log, got %v", logged)
	}
}

func TestResponseLevel(t *testing.T) {
	cases := map[int]slog.Level{
		http.StatusOK:                    slog.LevelInfo,
		http.StatusNoContent:             slog.LevelInfo,
		http.StatusNotFound:              slog.LevelWarn,
		http.StatusRequestEntityTooLarge: slog.LevelWarn,
		http.StatusInternalServerError:   slog.LevelError,
	}
	for status, want := range cases {
		if got := responseLevel(status); got != want {
			t.Fatalf("status %d: expected %v, got %v", status, want, got)
		}
	}
}

func TestLoggingMiddlewarePassesBodyThrough(t *testing.T) {
	var got []byte
	h := middlewareLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))

	body := []byte(`{"username":"admin","password":"secret"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login/", bytes.NewReader(body)))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("handler saw %q", got)
	}
}
