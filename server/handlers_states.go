package server

import (
	"log/slog"
	"net/http"

	"github.com/onnwee/slot-tender/telemetry"
)

// HandleStates serves the persisted occupancy document. Caching is disabled so
// the display always renders the current state.
func (h *Handlers) HandleStates(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.Raw(r.Context())
	if err != nil {
		telemetry.LoggerWithCorr(r.Context()).Error("states read failed", slog.Any("err", err), slog.String("component", "http"))
		w.Header().Set("Cache-Control", "no-store")
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleRoot is a trivial liveness response.
func (h *Handlers) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}
