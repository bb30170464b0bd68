package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchUploadsNewCSV(t *testing.T) {
	uploaded := make(chan string, 4)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload/", authed("t", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "no file provided")
			return
		}
		_, _ = io.Copy(io.Discard, file)
		_ = file.Close()
		uploaded <- header.Filename
		writeEnvelope(w, http.StatusCreated, Dataset{ID: 1, Filename: header.Filename}, nil)
	}))

	tokens := &MemoryTokenStore{}
	_ = tokens.Save("t")
	c := newTestClient(t, mux, tokens)

	dir := t.TempDir()
	results := make(chan WatchResult, 4)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- c.Watch(ctx, dir, 50*time.Millisecond, func(r WatchResult) { results <- r })
	}()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("watch: %v", err)
		}
	}()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600); err != nil {
		t.Fatalf("write txt: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "line-2.CSV"), []byte("Equipment Name\n"), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	select {
	case r := <-results:
		if r.Err != nil {
			t.Fatalf("upload: %v", r.Err)
		}
		if filepath.Base(r.Path) != "line-2.CSV" || r.Dataset.Filename != "line-2.CSV" {
			t.Fatalf("unexpected result %+v", r)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no upload observed")
	}

	select {
	case r := <-results:
		t.Fatalf("expected a single upload, got another for %s", r.Path)
	case <-time.After(300 * time.Millisecond):
	}

	if got := len(uploaded); got != 1 {
		t.Fatalf("expected 1 upload at the server, got %d", got)
	}
}

func TestWatchStopsWhenSessionExpires(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload/", authed("fresh", nil))

	tokens := &MemoryTokenStore{}
	_ = tokens.Save("stale")
	c := newTestClient(t, mux, tokens)

	dir := t.TempDir()
	done := make(chan error, 1)
	go func() {
		done <- c.Watch(context.Background(), dir, 20*time.Millisecond, func(WatchResult) {})
	}()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x\n"), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchMissingDir(t *testing.T) {
	c, err := New(Options{BaseURL: "http://localhost:1"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := c.Watch(context.Background(), filepath.Join(t.TempDir(), "absent"), 0, func(WatchResult) {}); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
