package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// MockTelegramServer creates a test server that mocks Telegram Bot API responses.
// Methods are keyed by name ("getMe", "sendMessage"); unknown methods get a
// Bot API style 404 error.
type MockTelegramServer struct {
	*httptest.Server
	Token    string
	Handlers map[string]http.HandlerFunc
}

// NewMockTelegramServer creates a new mock Bot API server accepting token.
func NewMockTelegramServer(t *testing.T, token string) *MockTelegramServer {
	t.Helper()
	m := &MockTelegramServer{
		Token:    token,
		Handlers: make(map[string]http.HandlerFunc),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix := "/bot" + m.Token + "/"
		if !strings.HasPrefix(r.URL.Path, prefix) {
			writeAPIError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if handler, ok := m.Handlers[strings.TrimPrefix(r.URL.Path, prefix)]; ok {
			handler(w, r)
			return
		}
		writeAPIError(w, http.StatusNotFound, "Not Found")
	}))
	t.Cleanup(m.Close)
	return m
}

// Endpoint returns the format string expected by tgbotapi.NewBotAPIWithAPIEndpoint.
func (m *MockTelegramServer) Endpoint() string {
	return m.URL + "/bot%s/%s"
}

// MockGetMe adds a handler for the getMe method.
func (m *MockTelegramServer) MockGetMe(id int64, username string) {
	m.Handlers["getMe"] = func(w http.ResponseWriter, r *http.Request) {
		writeAPIResult(w, map[string]interface{}{
			"id":         id,
			"is_bot":     true,
			"first_name": username,
			"username":   username,
		})
	}
}

func writeAPIResult(w http.ResponseWriter, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "result": result}) //nolint:errcheck // test mock response
}

func writeAPIError(w http.ResponseWriter, code int, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck // test mock response
		"ok":          false,
		"error_code":  code,
		"description": description,
	})
}
