package server

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/samber/lo"
)

const (
	corsAllowMethods = "GET, OPTIONS"
	corsAllowHeaders = "Content-Type, X-Correlation-ID"
	// preflight responses may be cached by the browser for 10 minutes
	corsMaxAge = "600"
)

// corsConfig controls which browser origins may read the API.
type corsConfig struct {
	allowedOrigins []string
	permissive     bool
}

// loadCORSConfig reads CORS_PERMISSIVE and CORS_ALLOWED_ORIGINS. The display
// front-end is usually served from another host, so any origin is allowed
// unless CORS_PERMISSIVE=0.
func loadCORSConfig() *corsConfig {
	permissive := true
	if v := os.Getenv("CORS_PERMISSIVE"); v != "" {
		permissive = v == "1" || v == "true"
	}

	origins := lo.Uniq(lo.Compact(lo.Map(strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ","), func(o string, _ int) string {
		return strings.TrimSpace(o)
	})))

	if !permissive && len(origins) == 0 {
		slog.Warn("CORS_PERMISSIVE=0 without CORS_ALLOWED_ORIGINS: browsers on other origins cannot read the API", slog.String("component", "http"))
	}
	return &corsConfig{allowedOrigins: origins, permissive: permissive}
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or "".
func (c *corsConfig) allowOrigin(origin string) string {
	if c.permissive {
		return "*"
	}
	if origin != "" && isOriginAllowed(origin, c.allowedOrigins) {
		return origin
	}
	return ""
}

// withCORSConfig adds CORS headers and answers preflight requests itself.
func withCORSConfig(next http.Handler, cfg *corsConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		if !cfg.permissive {
			h.Add("Vary", "Origin")
		}
		if allow := cfg.allowOrigin(r.Header.Get("Origin")); allow != "" {
			h.Set("Access-Control-Allow-Origin", allow)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Expose-Headers", "X-Correlation-ID")
		}

		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Max-Age", corsMaxAge)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// isOriginAllowed matches origin against exact entries and "*.domain" wildcards.
// A wildcard also admits the bare domain over http or https.
func isOriginAllowed(origin string, allowedOrigins []string) bool {
	return lo.SomeBy(allowedOrigins, func(allowed string) bool {
		if origin == allowed {
			return true
		}
		domain, ok := strings.CutPrefix(allowed, "*.")
		if !ok {
			return false
		}
		return strings.HasSuffix(origin, "."+domain) || origin == "https://"+domain || origin == "http://"+domain
	})
}
