package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/onnwee/slot-tender/slots"
	"github.com/onnwee/slot-tender/telemetry"
	"github.com/onnwee/slot-tender/testutil"
)

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRootOK(t *testing.T) {
	store, _ := testutil.NewFileStore(t)
	rr := serve(NewMux(store), http.MethodGet, "/")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Body.String(); got != "OK" {
		t.Fatalf("expected OK body, got %q", got)
	}
}

func TestUnknownPathIs404(t *testing.T) {
	store, _ := testutil.NewFileStore(t)
	rr := serve(NewMux(store), http.MethodGet, "/nope")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestStatesServesDocumentWithoutCaching(t *testing.T) {
	store, path := testutil.NewFileStore(t)
	ctx := context.Background()
	for _, n := range []string{"25", "137"} {
		slot, err := slots.ParseSlot(n)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := store.Toggle(ctx, slot); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}

	rr := serve(NewMux(store), http.MethodGet, "/states.json")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if cc := rr.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if rr.Body.String() != string(onDisk) {
		t.Errorf("body differs from persisted document:\n%s\nvs\n%s", rr.Body.String(), onDisk)
	}

	var doc struct {
		Ocupados []string `json:"ocupados"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(doc.Ocupados) != 2 || doc.Ocupados[0] != "num-025" || doc.Ocupados[1] != "num-137" {
		t.Errorf("unexpected ocupados %v", doc.Ocupados)
	}
}

func TestStatesSeedsMissingDocument(t *testing.T) {
	store, path := testutil.NewFileStore(t)
	rr := serve(NewMux(store), http.MethodGet, "/states.json")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("document not created: %v", err)
	}
}

func TestStatesCorruptDocumentIs500(t *testing.T) {
	for _, content := range []string{"{oops", "null", "[]"} {
		t.Run(content, func(t *testing.T) {
			store, path := testutil.NewFileStore(t)
			testutil.WriteDocument(t, path, content)
			h := NewMux(store)

			if rr := serve(h, http.MethodGet, "/states.json"); rr.Code != http.StatusInternalServerError {
				t.Fatalf("states: expected 500, got %d body=%q", rr.Code, rr.Body.String())
			}
			if rr := serve(h, http.MethodGet, "/healthz"); rr.Code != http.StatusServiceUnavailable {
				t.Fatalf("healthz: expected 503, got %d", rr.Code)
			}
		})
	}
}

func TestStatesRejectsWrites(t *testing.T) {
	store, _ := testutil.NewFileStore(t)
	rr := serve(NewMux(store), http.MethodPost, "/states.json")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestHealthzOK(t *testing.T) {
	store, _ := testutil.NewFileStore(t)
	rr := serve(NewMux(store), http.MethodGet, "/healthz")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", rr.Code, rr.Body.String())
	}
	if got := rr.Body.String(); got != "ok" {
		t.Fatalf("expected ok body, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	telemetry.Init()
	store, _ := testutil.NewFileStore(t)
	h := NewMux(store)
	serve(h, http.MethodGet, "/states.json")

	rr := serve(h, http.MethodGet, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "slot_http_requests_total") {
		t.Error("metrics output missing slot_http_requests_total")
	}
}

func TestCorrelationIDHeader(t *testing.T) {
	store, _ := testutil.NewFileStore(t)
	h := NewMux(store)

	rr := serve(h, http.MethodGet, "/")
	if rr.Header().Get("X-Correlation-ID") == "" {
		t.Error("expected generated correlation id")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Correlation-ID"); got != "abc-123" {
		t.Errorf("correlation id = %q, want abc-123", got)
	}
}

func TestStartAndShutdown(t *testing.T) {
	store, _ := testutil.NewFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- Start(ctx, store, "127.0.0.1:0") }()

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("server returned error: %v", err)
	}
}
