// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	CommandsTotal     *prometheus.CounterVec // labels: command, result
	SlotTogglesTotal  *prometheus.CounterVec // labels: state
	StorageErrors     *prometheus.CounterVec // labels: op
	HTTPRequestsTotal *prometheus.CounterVec // labels: path, code

	// Histograms (seconds)
	StoreOpDuration *prometheus.HistogramVec // labels: op

	// Gauges
	OccupiedSlotsGauge prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{Name: "slot_commands_total", Help: "Chat commands handled by command and result"}, []string{"command", "result"})
		SlotTogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{Name: "slot_toggles_total", Help: "Slot toggles by resulting state"}, []string{"state"})
		StorageErrors = promauto.NewCounterVec(prometheus.CounterOpts{Name: "slot_storage_errors_total", Help: "Persisted document read/write failures"}, []string{"op"})
		HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{Name: "slot_http_requests_total", Help: "Read API requests by path and status code"}, []string{"path", "code"})
		StoreOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{Name: "slot_store_op_duration_seconds", Help: "Duration of serialized store mutations", Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1}}, []string{"op"})
		OccupiedSlotsGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "slot_occupied", Help: "Number of occupied slots after the last mutation"})
	})
}

// RecordCommand counts a handled chat command.
func RecordCommand(command, result string) {
	if CommandsTotal != nil {
		CommandsTotal.WithLabelValues(command, result).Inc()
	}
}

// RecordToggle counts a toggle by the state it produced.
func RecordToggle(state string) {
	if SlotTogglesTotal != nil {
		SlotTogglesTotal.WithLabelValues(state).Inc()
	}
}

// IncStorageError counts a failed read or write of the persisted document.
func IncStorageError(op string) {
	if StorageErrors != nil {
		StorageErrors.WithLabelValues(op).Inc()
	}
}

// RecordHTTPRequest counts a served Read API request.
func RecordHTTPRequest(path string, code int) {
	if HTTPRequestsTotal != nil {
		HTTPRequestsTotal.WithLabelValues(path, strconv.Itoa(code)).Inc()
	}
}

// ObserveStoreOp records how long a serialized mutation held the writer lock.
func ObserveStoreOp(op string, d time.Duration) {
	if StoreOpDuration != nil {
		StoreOpDuration.WithLabelValues(op).Observe(d.Seconds())
	}
}

// SetOccupiedSlots records the occupied count.
func SetOccupiedSlots(n int) {
	if OccupiedSlotsGauge != nil {
		OccupiedSlotsGauge.Set(float64(n))
	}
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context { return context.WithValue(ctx, corrKey, id) }

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
