package pkgrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRecovererWritesErrorEnvelope(t *testing.T) {
	r := NewRouter(&staticGenerator{value: "cid"})
	r.GET("/boom", func(context.Context, *http.Request) (any, error) {
		panic("gauge overflow")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != "Internal server error" || body["error"] != "gauge overflow" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestAppFrames(t *testing.T) {
	stack := []byte(`goroutine 1 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
net/http.(*chunkWriter).Write(...)
	/usr/local/go/src/net/http/internal/chunked.go:10 +0x1
github.com/julienschmidt/httprouter.(*Router).ServeHTTP(...)
	/root/go/pkg/mod/github.com/julienschmidt/httprouter/internal/x.go:1 +0x2
github.com/shandysiswandi/chemvis/internal/equipment/usecase.(*Usecase).Upload(...)
	/src/chemvis/internal/equipment/usecase/usecase.go:120 +0x1a4
`)

	frames := appFrames(stack)
	if len(frames) != 1 || frames[0] != "internal/equipment/usecase/usecase.go:120" {
		t.Fatalf("unexpected frames: %v", frames)
	}
}
