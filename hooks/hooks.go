// Package hooks provides production-ready Hook and Logger implementations.
package hooks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pixelforge/imagekit/core"
)

// ── Structured logger adapter ─────────────────────────────────────────────────

// SlogLogger wraps the standard library slog.Logger to satisfy core.Logger.
type SlogLogger struct {
	log *slog.Logger
}

// NewSlogLogger creates a logger backed by slog.
func NewSlogLogger(l *slog.Logger) *SlogLogger { return &SlogLogger{log: l} }

func (s *SlogLogger) Debug(msg string, fields ...interface{}) {
	s.log.Debug(msg, fields...)
}
func (s *SlogLogger) Info(msg string, fields ...interface{}) {
	s.log.Info(msg, fields...)
}
func (s *SlogLogger) Warn(msg string, fields ...interface{}) {
	s.log.Warn(msg, fields...)
}
func (s *SlogLogger) Error(msg string, fields ...interface{}) {
	s.log.Error(msg, fields...)
}

// NopLogger discards everything.  Used when no logger is configured.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}

// ── Logging hook ──────────────────────────────────────────────────────────────

// LoggingHook logs before/after each service operation.
type LoggingHook struct {
	logger core.Logger
}

// NewLoggingHook creates a LoggingHook.
func NewLoggingHook(l core.Logger) *LoggingHook { return &LoggingHook{logger: l} }

func (h *LoggingHook) BeforeOp(_ context.Context, op, uri string) {
	h.logger.Debug("op.start", "op", op, "uri", uri)
}

func (h *LoggingHook) AfterOp(_ context.Context, op string, res *core.Result, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("op.error",
			"op", op,
			"duration_ms", d.Milliseconds(),
			"error", err.Error(),
		)
		return
	}
	fields := []interface{}{"op", op, "duration_ms", d.Milliseconds()}
	if res != nil {
		fields = append(fields, "uri", res.URI, "width", res.Width, "height", res.Height)
	}
	h.logger.Debug("op.done", fields...)
}

// ── In-memory metrics collector ───────────────────────────────────────────────

// InMemoryMetrics accumulates per-operation counters; safe for concurrent use.
type InMemoryMetrics struct {
	mu sync.RWMutex

	durationsMs map[string]int64 // cumulative ms per op
	calls       map[string]int64
	errors      map[string]int64
}

// NewInMemoryMetrics creates an empty metrics store.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		durationsMs: make(map[string]int64),
		calls:       make(map[string]int64),
		errors:      make(map[string]int64),
	}
}

// MetricsSnapshot is a point-in-time copy of the collected counters.
type MetricsSnapshot struct {
	DurationsMs map[string]int64
	Calls       map[string]int64
	Errors      map[string]int64
}

// Snapshot copies the current counters.
func (m *InMemoryMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return MetricsSnapshot{
		DurationsMs: copyCounters(m.durationsMs),
		Calls:       copyCounters(m.calls),
		Errors:      copyCounters(m.errors),
	}
}

func copyCounters(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// MetricsHook feeds an InMemoryMetrics from service operations.
type MetricsHook struct {
	metrics *InMemoryMetrics
}

// NewMetricsHook creates a MetricsHook over the given store.
func NewMetricsHook(m *InMemoryMetrics) *MetricsHook { return &MetricsHook{metrics: m} }

func (h *MetricsHook) BeforeOp(context.Context, string, string) {}

func (h *MetricsHook) AfterOp(_ context.Context, op string, _ *core.Result, d time.Duration, err error) {
	m := h.metrics
	m.mu.Lock()
	m.durationsMs[op] += d.Milliseconds()
	m.calls[op]++
	if err != nil {
		m.errors[op]++
	}
	m.mu.Unlock()
}
