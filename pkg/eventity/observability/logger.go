// Package observability provides production-grade observability features
// for eventity: structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds dispatch context to a logger.
// Returns a new logger with bus and cycle_id fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "combat", cycleID)
//	enriched.Info("doing work") // includes bus, cycle_id
func EnrichLogger(logger *slog.Logger, bus, cycleID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("bus", bus),
		slog.String("cycle_id", cycleID),
	)
}

// LogDispatchStart logs the start of a dispatch cycle.
func LogDispatchStart(logger *slog.Logger, bus, cycleID string, queued int) {
	if logger == nil {
		return
	}
	logger.Info("dispatch starting",
		slog.String("bus", bus),
		slog.String("cycle_id", cycleID),
		slog.Int("queued", queued),
	)
}

// LogDispatchComplete logs successful dispatch cycle completion.
func LogDispatchComplete(logger *slog.Logger, bus, cycleID string, durationMs float64, passes, callbacks, faults int) {
	if logger == nil {
		return
	}
	logger.Info("dispatch completed",
		slog.String("bus", bus),
		slog.String("cycle_id", cycleID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("passes", passes),
		slog.Int("callbacks", callbacks),
		slog.Int("faults", faults),
	)
}

// LogDispatchCancelled logs a dispatch cycle stopped by context cancellation.
func LogDispatchCancelled(logger *slog.Logger, bus, cycleID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("dispatch cancelled",
		slog.String("bus", bus),
		slog.String("cycle_id", cycleID),
		slog.String("error", err.Error()),
	)
}

// LogCallbackStart logs callback execution start.
func LogCallbackStart(logger *slog.Logger, callback, event string) {
	if logger == nil {
		return
	}
	logger.Debug("callback starting",
		slog.String("callback", callback),
		slog.String("event", event),
	)
}

// LogCallbackComplete logs successful callback completion.
func LogCallbackComplete(logger *slog.Logger, callback string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("callback completed",
		slog.String("callback", callback),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogCallbackFault logs an isolated callback failure.
func LogCallbackFault(logger *slog.Logger, callback, event, owner, target string, err error) {
	if logger == nil {
		return
	}
	logger.Error("callback faulted",
		slog.String("callback", callback),
		slog.String("event", event),
		slog.String("owner", owner),
		slog.String("target", target),
		slog.String("error", err.Error()),
	)
}

// LogAdvance logs a queue generation swap.
func LogAdvance(logger *slog.Logger, bus string, returned, reclaimed int) {
	if logger == nil {
		return
	}
	logger.Debug("queue advanced",
		slog.String("bus", bus),
		slog.Int("returned", returned),
		slog.Int("reclaimed", reclaimed),
	)
}

// LogFaultStoreError logs a fault journal write failure (non-fatal).
func LogFaultStoreError(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Warn("fault journal write failed",
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
