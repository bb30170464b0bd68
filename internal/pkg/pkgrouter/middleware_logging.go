package pkgrouter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
)

const maxLoggedBodyBytes = 64 * 1024

//nolint:gochecknoglobals // global for fast reuse
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"token":         {},
	"authorization": {},
	"cookie":        {},
	"set-cookie":    {},
}

func isSensitive(key string) bool {
	_, found := sensitiveKeys[strings.ToLower(key)]
	return found
}

func maskHeaders(headers http.Header) http.Header {
	result := headers.Clone()
	for key := range result {
		if isSensitive(key) {
			result.Set(key, "***")
		}
	}
	return result
}

func maskData(v any) any {
	switch val := v.(type) {
	case map[string]any:
		masked := make(map[string]any, len(val))
		for k, v2 := range val {
			if isSensitive(k) {
				masked[k] = "***"
			} else {
				masked[k] = maskData(v2)
			}
		}
		return masked
	case []any:
		res := make([]any, len(val))
		for i, v2 := range val {
			res[i] = maskData(v2)
		}
		return res
	default:
		return v
	}
}

// responseRecorder tracks status and size, and keeps a capped copy of JSON
// bodies for the response log. Downloads pass through uncaptured.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	body   bytes.Buffer
	capped bool
}

func (w *responseRecorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	if w.capturing() {
		remaining := maxLoggedBodyBytes - w.body.Len()
		if len(p) > remaining {
			w.body.Write(p[:remaining])
			w.capped = true
		} else {
			w.body.Write(p)
		}
	}

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *responseRecorder) capturing() bool {
	if w.capped {
		return false
	}
	ct := strings.ToLower(w.Header().Get("Content-Type"))
	return ct == "" || strings.HasPrefix(ct, "application/json")
}

func (w *responseRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

//nolint:err113 // it use dynamic error
func (w *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	return h.Hijack()
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *responseRecorder) loggedBody() any {
	if w.body.Len() == 0 {
		if w.bytes > 0 {
			return "<" + w.Header().Get("Content-Type") + " body omitted>"
		}
		return nil
	}

	var body any
	var decoded any
	if err := json.Unmarshal(w.body.Bytes(), &decoded); err == nil {
		body = maskData(decoded)
	} else if utf8.Valid(w.body.Bytes()) {
		body = w.body.String()
	} else {
		body = "<binary body omitted>"
	}

	if w.capped {
		return map[string]any{"body": body, "truncated": true}
	}
	return body
}

func matchedRoutePath(r *http.Request) string {
	pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath()
	if pattern != "" {
		return pattern
	}
	return r.URL.Path
}

// requestBody is the loggable form of a request body: masked JSON, masked
// form values, or text cut at maxLoggedBodyBytes. Text that mentions a
// sensitive key, such as a truncated JSON login, is never logged raw.
func requestBody(contentType string, head []byte) any {
	if len(head) == 0 {
		return nil
	}

	var decoded any
	if err := json.Unmarshal(head, &decoded); err == nil {
		return maskData(decoded)
	}

	if strings.HasPrefix(strings.ToLower(contentType), "application/x-www-form-urlencoded") {
		if values, err := url.ParseQuery(string(head)); err == nil {
			return maskForm(values)
		}
	}

	if !utf8.Valid(head) {
		return "<binary body omitted>"
	}
	if mentionsSensitive(head) {
		return "<body omitted, may contain credentials>"
	}
	if len(head) > maxLoggedBodyBytes {
		return string(head[:maxLoggedBodyBytes]) + "...(truncated)"
	}
	return string(head)
}

func maskForm(values url.Values) map[string]any {
	masked := make(map[string]any, len(values))
	for k, v := range values {
		switch {
		case isSensitive(k):
			masked[k] = "***"
		case len(v) == 1:
			masked[k] = v[0]
		default:
			masked[k] = v
		}
	}
	return masked
}

func mentionsSensitive(body []byte) bool {
	lower := bytes.ToLower(body)
	for key := range sensitiveKeys {
		if bytes.Contains(lower, []byte(key)) {
			return true
		}
	}
	return false
}

func isMultipart(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "multipart/")
}

// peekBody reads at most maxLoggedBodyBytes+1 bytes of r's body for logging
// and puts them back in front of the unread rest, so body limits applied by
// later middleware still see the whole stream.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	//nolint:errcheck // best effort for logging only
	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes+1))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}

	return head
}

func responseLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func middlewareLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := matchedRoutePath(r)
		start := time.Now()

		var reqBody any = "<multipart body omitted>"
		if !isMultipart(r.Header.Get("Content-Type")) {
			reqBody = requestBody(r.Header.Get("Content-Type"), peekBody(r))
		}

		slog.InfoContext(
			r.Context(),
			"request received",
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"headers", maskHeaders(r.Header),
			"body", reqBody,
		)

		rec := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}

		slog.Log(
			r.Context(),
			responseLevel(status),
			"response sent",
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"status", status,
			"bytes", rec.bytes,
			"latency_ms", time.Since(start).Milliseconds(),
			"body", rec.loggedBody(),
		)
	})
}
