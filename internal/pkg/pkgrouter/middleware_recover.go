package pkgrouter

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
)

//nolint:contextcheck // the request context is the only one available
func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}

			//nolint:err113,errorlint // this must compare directly
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			slog.ErrorContext(r.Context(), "panic on the server",
				"because", rvr,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", appFrames(debug.Stack()),
			)

			writeJSON(w, errorResponse{
				Message: "Internal server error",
				Error:   fmt.Sprint(rvr),
			}, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}

// appFrames keeps the file:line entries of a goroutine stack that belong to
// this module's internal packages, trimmed to start at "internal/". Frames
// from GOROOT and the module cache are dropped.
func appFrames(stack []byte) []string {
	var frames []string
	for _, line := range strings.Split(string(stack), "\n") {
		line = strings.TrimSpace(line)

		idx := strings.Index(line, "/internal/")
		if idx == -1 || !strings.Contains(line, ".go:") ||
			strings.Contains(line, "/go/src/") || strings.Contains(line, "/pkg/mod/") {
			continue
		}

		frame := line[idx+1:]
		if sp := strings.IndexByte(frame, ' '); sp != -1 {
			frame = frame[:sp]
		}
		frames = append(frames, frame)
	}
	return frames
}
