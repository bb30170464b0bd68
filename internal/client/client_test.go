package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgroutine"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeEnvelope(w http.ResponseWriter, status int, data, meta any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"message": "ok", "data": data, "meta": meta})
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"message": msg, "error": http.StatusText(status)})
}

func newTestClient(t *testing.T, h http.Handler, tokens TokenStore) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	runner := pkgroutine.NewManager(2)
	t.Cleanup(func() { _ = runner.Wait() })

	c, err := New(Options{BaseURL: srv.URL, Tokens: tokens, HTTP: srv.Client(), Runner: runner})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func authed(token string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token "+token {
			writeFailure(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "://nope"} {
		if _, err := New(Options{BaseURL: raw}); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestLoginSavesToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "admin" || body["password"] != "secret" {
			writeFailure(w, http.StatusBadRequest, "unable to log in with provided credentials")
			return
		}
		writeEnvelope(w, http.StatusOK, Session{Token: "tok-1", UserID: 9, Username: "admin", IsStaff: true}, nil)
	})

	tokens := &MemoryTokenStore{}
	c := newTestClient(t, mux, tokens)

	_, err := c.Login(context.Background(), "admin", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 APIError, got %v", err)
	}
	if apiErr.Error() != "unable to log in with provided credentials" {
		t.Fatalf("unexpected message %q", apiErr.Error())
	}

	session, err := c.Login(context.Background(), "admin", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if diff := cmp.Diff(Session{Token: "tok-1", UserID: 9, Username: "admin", IsStaff: true}, session); diff != "" {
		t.Fatalf("session mismatch (-want +got):\n%s", diff)
	}
	if got, _ := tokens.Load(); got != "tok-1" {
		t.Fatalf("expected saved token, got %q", got)
	}

	if err := c.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if got, _ := tokens.Load(); got != "" {
		t.Fatalf("expected token cleared, got %q", got)
	}
}

func TestRequestsNeedToken(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}), &MemoryTokenStore{})

	if _, err := c.History(context.Background(), 1, 10); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatal("no request should reach the server")
	}
}

func TestUnauthorizedClearsToken(t *testing.T) {
	tokens := &MemoryTokenStore{}
	_ = tokens.Save("stale")

	c := newTestClient(t, authed("fresh", func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"results": []Dataset{}}, Page{})
	}), tokens)

	if _, err := c.History(context.Background(), 1, 10); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if got, _ := tokens.Load(); got != "" {
		t.Fatalf("expected token cleared, got %q", got)
	}
}

func TestForbiddenAsksForStaffLogin(t *testing.T) {
	tokens := &MemoryTokenStore{}
	_ = tokens.Save("analyst")

	c := newTestClient(t, authed("analyst", func(w http.ResponseWriter, _ *http.Request) {
		writeFailure(w, http.StatusForbidden, "you do not have permission to perform this action")
	}), tokens)

	err := c.Delete(context.Background(), 3)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if !strings.Contains(err.Error(), "login again") {
		t.Fatalf("expected a re-login hint, got %q", err.Error())
	}
	if got, _ := tokens.Load(); got != "analyst" {
		t.Fatalf("expected token kept, got %q", got)
	}
}

func TestHistoryAndDataset(t *testing.T) {
	uploaded := time.Date(2026, 5, 2, 8, 30, 0, 0, time.UTC)
	ds := Dataset{
		ID:              7,
		Filename:        "plant.csv",
		UploadTimestamp: uploaded,
		SummaryStats:    Summary{Count: 2, AvgFlowrate: 15, AvgPressure: 3, AvgTemperature: 310, TypeDistribution: map[string]int{"Pump": 2}},
		RecordCount:     2,
	}
	records := []Record{
		{ID: 1, Dataset: 7, EquipmentName: "PumpA", Type: "Pump", Flowrate: 10, Pressure: 2, Temperature: 300},
		{ID: 2, Dataset: 7, EquipmentName: "PumpB", Type: "Pump", Flowrate: 20, Pressure: 4, Temperature: 320},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /history/", authed("t", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" || r.URL.Query().Get("page_size") != "100" {
			writeFailure(w, http.StatusUnprocessableEntity, "bad page")
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"results": []Dataset{ds}}, Page{Number: 1, Size: 100, Total: 1})
	}))
	mux.HandleFunc("GET /dataset/7/", authed("t", func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"records": records, "summary": ds.SummaryStats}, Page{Number: 1, Size: 50, Total: 2})
	}))
	mux.HandleFunc("GET /dataset/7/summary/", authed("t", func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusOK, ds.SummaryStats, nil)
	}))
	mux.HandleFunc("GET /dataset/8/", authed("t", func(w http.ResponseWriter, _ *http.Request) {
		writeFailure(w, http.StatusNotFound, "dataset not found")
	}))

	tokens := &MemoryTokenStore{}
	_ = tokens.Save("t")
	c := newTestClient(t, mux, tokens)
	ctx := context.Background()

	h, err := c.History(ctx, 1, 100)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	want := History{Datasets: []Dataset{ds}, Page: Page{Number: 1, Size: 100, Total: 1}}
	if diff := cmp.Diff(want, h); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}

	s, err := c.Summary(ctx, 7)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if diff := cmp.Diff(ds.SummaryStats, s); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}

	dash, err := c.Show(ctx, 7, 50)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	wantDash := Dashboard{
		Dataset: ds,
		Detail:  DatasetDetail{Records: records, Summary: ds.SummaryStats, Page: Page{Number: 1, Size: 50, Total: 2}},
	}
	if diff := cmp.Diff(wantDash, dash); diff != "" {
		t.Fatalf("dashboard mismatch (-want +got):\n%s", diff)
	}

	_, err = c.Show(ctx, 8, 50)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestUploadAsyncStreamsFile(t *testing.T) {
	const content = "Equipment Name,Type,Flowrate,Pressure,Temperature\nPumpA,Pump,10,2,300\n"

	path := filepath.Join(t.TempDir(), "plant.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload/", authed("t", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "no file provided")
			return
		}
		defer file.Close()

		data, _ := io.ReadAll(file)
		if string(data) != content {
			writeFailure(w, http.StatusBadRequest, "content mismatch")
			return
		}
		writeEnvelope(w, http.StatusCreated, Dataset{ID: 3, Filename: header.Filename, RecordCount: 1}, nil)
	}))

	tokens := &MemoryTokenStore{}
	_ = tokens.Save("t")
	c := newTestClient(t, mux, tokens)

	ch := c.UploadAsync(context.Background(), path)

	var outcome pkgroutine.Outcome[Dataset]
	select {
	case outcome = <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("upload did not finish")
	}
	if outcome.Err != nil {
		t.Fatalf("upload: %v", outcome.Err)
	}
	if outcome.Value.ID != 3 || outcome.Value.Filename != "plant.csv" {
		t.Fatalf("unexpected dataset %+v", outcome.Value)
	}
	if _, ok := <-ch; ok {
		t.Fatal("expected channel closed after one outcome")
	}
}

func TestUploadMissingFile(t *testing.T) {
	tokens := &MemoryTokenStore{}
	_ = tokens.Save("t")
	c := newTestClient(t, http.NotFoundHandler(), tokens)

	_, err := c.Upload(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist, got %v", err)
	}
}

func TestReportWritesPDF(t *testing.T) {
	pdf := []byte("%PDF-1.3 fake\n%%EOF")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /dataset/7/report/", authed("t", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="report_7.pdf"`)
		_, _ = w.Write(pdf)
	}))
	mux.HandleFunc("GET /dataset/9/report/", authed("t", func(w http.ResponseWriter, _ *http.Request) {
		writeFailure(w, http.StatusNotFound, "dataset not found")
	}))

	tokens := &MemoryTokenStore{}
	_ = tokens.Save("t")
	c := newTestClient(t, mux, tokens)

	var buf bytes.Buffer
	name, err := c.Report(context.Background(), 7, &buf)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if name != "report_7.pdf" {
		t.Fatalf("unexpected filename %q", name)
	}
	if !bytes.Equal(buf.Bytes(), pdf) {
		t.Fatal("pdf body mismatch")
	}

	_, err = c.Report(context.Background(), 9, io.Discard)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "dataset not found" {
		t.Fatalf("expected dataset not found, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	var deleted atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /dataset/4/", authed("t", func(w http.ResponseWriter, _ *http.Request) {
		deleted.Store(true)
		w.WriteHeader(http.StatusNoContent)
	}))

	tokens := &MemoryTokenStore{}
	_ = tokens.Save("t")
	c := newTestClient(t, mux, tokens)

	if err := c.Delete(context.Background(), 4); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted.Load() {
		t.Fatal("expected delete to reach the server")
	}
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chemctl", "token")
	s := NewFileTokenStore(path)

	if got, err := s.Load(); err != nil || got != "" {
		t.Fatalf("expected empty token, got %q, %v", got, err)
	}

	if err := s.Save("abc123"); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600, got %o", perm)
	}

	if got, _ := s.Load(); got != "abc123" {
		t.Fatalf("expected abc123, got %q", got)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if got, _ := s.Load(); got != "" {
		t.Fatalf("expected cleared token, got %q", got)
	}
}

func TestRenderDistributionOrder(t *testing.T) {
	out := RenderDistribution(map[string]int{"Valve": 1, "Pump": 3, "Compressor": 1})

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 bars, got %d:\n%s", len(lines), out)
	}
	for i, prefix := range []string{"Pump", "Compressor", "Valve"} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Fatalf("line %d: expected %s first, got %q", i, prefix, lines[i])
		}
	}
	if !strings.HasSuffix(lines[0], " 3") {
		t.Fatalf("expected count on bar, got %q", lines[0])
	}

	if RenderDistribution(nil) != "" {
		t.Fatal("expected empty output for no types")
	}
}

func TestRenderHistory(t *testing.T) {
	if got := RenderHistory(History{}); !strings.Contains(got, "no datasets") {
		t.Fatalf("unexpected empty render %q", got)
	}

	out := RenderHistory(History{
		Datasets: []Dataset{{ID: 11, Filename: "line-3.csv", RecordCount: 4, SummaryStats: Summary{AvgFlowrate: 12.5}}},
		Page:     Page{Number: 1, Size: 50, Total: 1},
	})
	for _, want := range []string{"line-3.csv", "11", "12.50", "page 1 of 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestServerErrorCarriesCorrelationID(t *testing.T) {
	var sent string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /dataset/3/summary/", authed("t", func(w http.ResponseWriter, r *http.Request) {
		sent = r.Header.Get("X-Correlation-ID")
		w.Header().Set("X-Correlation-ID", sent)
		writeFailure(w, http.StatusInternalServerError, "Internal server error")
	}))

	tokens := &MemoryTokenStore{}
	_ = tokens.Save("t")
	c := newTestClient(t, mux, tokens)

	_, err := c.Summary(context.Background(), 3)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if sent == "" || apiErr.CorrelationID != sent {
		t.Fatalf("expected correlation id %q echoed, got %q", sent, apiErr.CorrelationID)
	}
	if want := "Internal server error (correlation id " + sent + ")"; apiErr.Error() != want {
		t.Fatalf("expected %q, got %q", want, apiErr.Error())
	}
}
