package server

import (
	"net/http"
)

// HandleHealthz reports healthy when the occupancy document can be loaded.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.Load(r.Context()); err != nil {
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
