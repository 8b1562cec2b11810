// Command healthcheck probes the bot's /healthz endpoint and exits non-zero
// when it is unreachable or unhealthy. Intended for container HEALTHCHECK.
package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"
)

func main() {
	url := pflag.String("url", defaultURL(), "health endpoint to probe")
	timeout := pflag.Duration("timeout", 3*time.Second, "request timeout")
	pflag.Parse()

	if !probe(context.Background(), *url, *timeout) {
		os.Exit(1)
	}
}

func defaultURL() string {
	if v := os.Getenv("HEALTHCHECK_URL"); v != "" {
		return v
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	return "http://localhost:" + port + "/healthz"
}

func probe(ctx context.Context, url string, timeout time.Duration) bool {
	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer closeBody(resp.Body)
	return resp.StatusCode == http.StatusOK
}

func closeBody(body io.Closer) {
	if err := body.Close(); err != nil {
		slog.Warn("failed to close response body", slog.Any("err", err))
	}
}
