package pkglog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func captureJSON(t *testing.T) (*bytes.Buffer, func() map[string]any) {
	t.Helper()

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	InitLogging(&buf)

	return &buf, func() map[string]any {
		t.Helper()
		var line map[string]any
		if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("decode log line %q: %v", buf.String(), err)
		}
		buf.Reset()
		return line
	}
}

func TestLogLineCarriesServiceAndCID(t *testing.T) {
	_, next := captureJSON(t)

	ctx := SetCorrelationID(context.Background(), "cid-abc")
	slog.InfoContext(ctx, "dataset stored", "dataset_id", 7)

	line := next()
	if line["service"] != ServiceName {
		t.Fatalf("expected service=%s, got %v", ServiceName, line["service"])
	}
	if line["_cID"] != "cid-abc" {
		t.Fatalf("expected _cID=cid-abc, got %v", line["_cID"])
	}
	if line["severity"] != "INFO" || line["msg"] != "dataset stored" {
		t.Fatalf("unexpected line: %v", line)
	}
	if _, ok := line["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", line)
	}
	if _, ok := line["dataset_id"]; !ok {
		t.Fatalf("expected dataset_id attr, got %v", line)
	}
}

func TestLogLineWithoutCID(t *testing.T) {
	_, next := captureJSON(t)

	slog.Info("startup")

	line := next()
	if _, ok := line["_cID"]; ok {
		t.Fatalf("did not expect _cID, got %v", line)
	}
	if line["service"] != ServiceName {
		t.Fatalf("expected service=%s, got %v", ServiceName, line["service"])
	}
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { level.Set(slog.LevelInfo) })
	buf, _ := captureJSON(t)

	SetLevel("warn")
	slog.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn, got %q", buf.String())
	}

	SetLevel("not-a-level")
	if got := level.Level(); got != slog.LevelWarn {
		t.Fatalf("expected level unchanged, got %v", got)
	}

	SetLevel(" DEBUG ")
	if got := level.Level(); got != slog.LevelDebug {
		t.Fatalf("expected debug, got %v", got)
	}
}

func TestReplaceAttrSource(t *testing.T) {
	src := &slog.Source{File: "/src/chemvis/internal/equipment/usecase/usecase.go", Line: 12}
	got := replaceAttr(nil, slog.Any(slog.SourceKey, src))
	if got.Key != "file" || got.Value.String() != "internal/equipment/usecase/usecase.go:12" {
		t.Fatalf("unexpected source attr: %v", got)
	}

	outside := &slog.Source{File: "/usr/local/go/src/net/http/server.go", Line: 1}
	if got := replaceAttr(nil, slog.Any(slog.SourceKey, outside)); !got.Equal(slog.Attr{}) {
		t.Fatalf("expected source outside internal/ to be dropped, got %v", got)
	}
}
