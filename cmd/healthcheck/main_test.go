package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestProbe(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer healthy.Close()
	unhealthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer unhealthy.Close()

	ctx := context.Background()
	if !probe(ctx, healthy.URL, time.Second) {
		t.Error("healthy endpoint reported down")
	}
	if probe(ctx, unhealthy.URL, time.Second) {
		t.Error("503 endpoint reported healthy")
	}
	if probe(ctx, "http://127.0.0.1:1/healthz", 200*time.Millisecond) {
		t.Error("unreachable endpoint reported healthy")
	}
}

func TestDefaultURL(t *testing.T) {
	t.Setenv("HEALTHCHECK_URL", "")
	t.Setenv("PORT", "")
	if got := defaultURL(); got != "http://localhost:3000/healthz" {
		t.Errorf("defaultURL() = %q", got)
	}
	t.Setenv("PORT", "9090")
	if got := defaultURL(); got != "http://localhost:9090/healthz" {
		t.Errorf("defaultURL() = %q", got)
	}
	t.Setenv("HEALTHCHECK_URL", "http://bot:1/healthz")
	if got := defaultURL(); got != "http://bot:1/healthz" {
		t.Errorf("defaultURL() = %q", got)
	}
}

type failingCloser struct{}

func (failingCloser) Close() error { return errors.New("boom") }

func TestCloseBodyLogsThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	closeBody(failingCloser{})

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "err=boom") {
		t.Errorf("unexpected log output %q", out)
	}
}
