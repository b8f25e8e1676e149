package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTracingTest creates a test tracer provider with an in-memory span recorder.
func setupTracingTest(t *testing.T) (*tracetest.InMemoryExporter, func()) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)

	// Save the original provider
	originalProvider := otel.GetTracerProvider()

	// Set test provider
	otel.SetTracerProvider(tp)

	// Update the package-level tracer
	tracer = otel.Tracer("eventity")

	cleanup := func() {
		otel.SetTracerProvider(originalProvider)
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	}

	return exporter, cleanup
}

func TestStartDispatchSpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	t.Run("creates span with correct name and attributes", func(t *testing.T) {
		ctx := context.Background()
		_, span := StartDispatchSpan(ctx, "combat", "cycle-123")
		require.NotNil(t, span)

		// End the span to flush it to the exporter
		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		s := spans[0]
		assert.Equal(t, "eventity.dispatch", s.Name)

		var busName, cycleID string
		for _, attr := range s.Attributes {
			switch attr.Key {
			case "bus.name":
				busName = attr.Value.AsString()
			case "cycle.id":
				cycleID = attr.Value.AsString()
			}
		}
		assert.Equal(t, "combat", busName)
		assert.Equal(t, "cycle-123", cycleID)
	})

	t.Run("returns context with span", func(t *testing.T) {
		exporter.Reset()

		ctx := context.Background()
		newCtx, span := StartDispatchSpan(ctx, "combat", "cycle-456")

		// Context should be different
		assert.NotEqual(t, ctx, newCtx)

		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
	})
}

func TestStartCallbackSpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	t.Run("creates span with callback name suffix", func(t *testing.T) {
		ctx := context.Background()
		_, span := StartCallbackSpan(ctx, "onAttack")
		require.NotNil(t, span)

		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		s := spans[0]
		assert.Equal(t, "eventity.callback.onAttack", s.Name)

		var name string
		for _, attr := range s.Attributes {
			if attr.Key == "callback.name" {
				name = attr.Value.AsString()
			}
		}
		assert.Equal(t, "onAttack", name)
	})

	t.Run("callback spans have the dispatch span as parent", func(t *testing.T) {
		exporter.Reset()

		ctx := context.Background()
		ctx, dispatchSpan := StartDispatchSpan(ctx, "combat", "cycle-1")

		_, callbackSpan := StartCallbackSpan(ctx, "onAttack")
		callbackSpan.End()

		dispatchSpan.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 2)

		var callbackData *tracetest.SpanStub
		for i := range spans {
			if spans[i].Name == "eventity.callback.onAttack" {
				callbackData = &spans[i]
				break
			}
		}
		require.NotNil(t, callbackData)

		// Verify parent-child relationship
		assert.True(t, callbackData.Parent.IsValid())
	})
}

func TestEndSpanWithError(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	t.Run("sets OK status for nil error", func(t *testing.T) {
		ctx := context.Background()
		_, span := StartDispatchSpan(ctx, "combat", "cycle-1")

		EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		assert.Equal(t, codes.Ok, spans[0].Status.Code)
		assert.Equal(t, "", spans[0].Status.Description)
	})

	t.Run("sets Error status and records error", func(t *testing.T) {
		exporter.Reset()

		ctx := context.Background()
		_, span := StartDispatchSpan(ctx, "combat", "cycle-2")
		testErr := errors.New("something went wrong")

		EndSpanWithError(span, testErr)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		s := spans[0]
		assert.Equal(t, codes.Error, s.Status.Code)
		assert.Equal(t, "something went wrong", s.Status.Description)

		// Check that error was recorded as an event
		require.NotEmpty(t, s.Events)
		found := false
		for _, event := range s.Events {
			if event.Name == "exception" {
				found = true
			}
		}
		assert.True(t, found, "Expected exception event")
	})

	t.Run("nil span does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			EndSpanWithError(nil, nil)
		})
		assert.NotPanics(t, func() {
			EndSpanWithError(nil, errors.New("test"))
		})
	})
}

func TestAddSpanEvent(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	t.Run("adds event to current span", func(t *testing.T) {
		ctx := context.Background()
		ctx, span := StartDispatchSpan(ctx, "combat", "cycle-1")

		AddSpanEvent(ctx, "event_despawned",
			attribute.String("event.id", "0v1"),
			attribute.Int64("pass", 2),
		)

		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		s := spans[0]
		require.NotEmpty(t, s.Events)

		var found bool
		for _, event := range s.Events {
			if event.Name == "event_despawned" {
				found = true
				var eventID string
				var pass int64
				for _, attr := range event.Attributes {
					switch attr.Key {
					case "event.id":
						eventID = attr.Value.AsString()
					case "pass":
						pass = attr.Value.AsInt64()
					}
				}
				assert.Equal(t, "0v1", eventID)
				assert.Equal(t, int64(2), pass)
			}
		}
		assert.True(t, found, "Expected to find event_despawned event")
	})

	t.Run("no panic with no current span", func(t *testing.T) {
		ctx := context.Background()
		assert.NotPanics(t, func() {
			AddSpanEvent(ctx, "test_event")
		})
	})
}

func TestSpanManager_Interface(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()
	require.NotNil(t, sm)

	t.Run("StartDispatchSpan via interface", func(t *testing.T) {
		ctx := context.Background()
		_, span := sm.StartDispatchSpan(ctx, "interface-bus", "cycle-if")
		require.NotNil(t, span)

		sm.EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.NotEmpty(t, spans)
	})

	t.Run("StartCallbackSpan via interface", func(t *testing.T) {
		exporter.Reset()

		ctx := context.Background()
		_, span := sm.StartCallbackSpan(ctx, "interface-callback")
		require.NotNil(t, span)

		sm.EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.NotEmpty(t, spans)
		assert.Equal(t, "eventity.callback.interface-callback", spans[0].Name)
	})

	t.Run("AddSpanEvent via interface", func(t *testing.T) {
		exporter.Reset()

		ctx := context.Background()
		ctx, span := sm.StartDispatchSpan(ctx, "combat", "cycle-1")

		sm.AddSpanEvent(ctx, "custom_event", attribute.String("key", "value"))

		sm.EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.NotEmpty(t, spans)
		require.NotEmpty(t, spans[0].Events)
	})
}

func TestOtelSpanManager_EndSpanWithError_Scenarios(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := &otelSpanManager{}

	t.Run("wrapped error message is preserved", func(t *testing.T) {
		ctx := context.Background()
		_, span := sm.StartDispatchSpan(ctx, "combat", "cycle-1")

		wrappedErr := errors.New("wrapped: inner error")
		sm.EndSpanWithError(span, wrappedErr)

		spans := exporter.GetSpans()
		require.NotEmpty(t, spans)
		assert.Contains(t, spans[0].Status.Description, "wrapped: inner error")
	})
}
