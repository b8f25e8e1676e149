package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records eventity metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordSend records events entering the queue.
	RecordSend(ctx context.Context, count int)

	// RecordReclaimed records event entities destroyed by a queue advance.
	RecordReclaimed(ctx context.Context, count int)

	// RecordDispatch records a dispatch cycle completion.
	RecordDispatch(ctx context.Context, success bool, duration time.Duration, passes int)

	// RecordCallback records a callback execution with its duration and error status.
	RecordCallback(ctx context.Context, callback string, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	eventsSent      metric.Int64Counter
	eventsReclaimed metric.Int64Counter
	dispatchRuns    metric.Int64Counter
	dispatchPasses  metric.Int64Histogram
	dispatchLatency metric.Float64Histogram
	callbackRuns    metric.Int64Counter
	callbackLatency metric.Float64Histogram
	callbackFaults  metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("eventity")

	eventsSent, err := meter.Int64Counter("eventity.events.sent",
		metric.WithDescription("Number of events sent to the queue"),
	)
	if err != nil {
		return nil, err
	}

	eventsReclaimed, err := meter.Int64Counter("eventity.events.reclaimed",
		metric.WithDescription("Number of event entities destroyed by queue advances"),
	)
	if err != nil {
		return nil, err
	}

	dispatchRuns, err := meter.Int64Counter("eventity.dispatch.runs",
		metric.WithDescription("Number of dispatch cycles"),
	)
	if err != nil {
		return nil, err
	}

	dispatchPasses, err := meter.Int64Histogram("eventity.dispatch.passes",
		metric.WithDescription("Passes needed for a dispatch cycle to settle"),
	)
	if err != nil {
		return nil, err
	}

	dispatchLatency, err := meter.Float64Histogram("eventity.dispatch.latency_ms",
		metric.WithDescription("Dispatch cycle latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	callbackRuns, err := meter.Int64Counter("eventity.callback.executions",
		metric.WithDescription("Number of callback executions"),
	)
	if err != nil {
		return nil, err
	}

	callbackLatency, err := meter.Float64Histogram("eventity.callback.latency_ms",
		metric.WithDescription("Callback execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	callbackFaults, err := meter.Int64Counter("eventity.callback.faults",
		metric.WithDescription("Number of isolated callback failures"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		eventsSent:      eventsSent,
		eventsReclaimed: eventsReclaimed,
		dispatchRuns:    dispatchRuns,
		dispatchPasses:  dispatchPasses,
		dispatchLatency: dispatchLatency,
		callbackRuns:    callbackRuns,
		callbackLatency: callbackLatency,
		callbackFaults:  callbackFaults,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordSend records events entering the queue.
func (m *otelMetrics) RecordSend(ctx context.Context, count int) {
	m.eventsSent.Add(ctx, int64(count))
}

// RecordReclaimed records event entities destroyed by a queue advance.
func (m *otelMetrics) RecordReclaimed(ctx context.Context, count int) {
	m.eventsReclaimed.Add(ctx, int64(count))
}

// RecordDispatch records a dispatch cycle.
func (m *otelMetrics) RecordDispatch(ctx context.Context, success bool, duration time.Duration, passes int) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
	}
	m.dispatchRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.dispatchPasses.Record(ctx, int64(passes), metric.WithAttributes(attrs...))
	m.dispatchLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordCallback records a callback execution.
func (m *otelMetrics) RecordCallback(ctx context.Context, callback string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("callback", callback),
	}

	m.callbackRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.callbackLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.callbackFaults.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
