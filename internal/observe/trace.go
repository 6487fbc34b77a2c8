package observe

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/MrWong99/tagmend"

// Tracer returns the tagmend tracer from the global provider installed by
// [InitProvider].
func Tracer() trace.Tracer { return otel.Tracer(tracerName) }

// StartSpan opens a span named name under ctx. End it with span.End or
// [EndSpan].
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// EndSpan marks span as failed when err is non-nil and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// TagAttributes describes the outcome of one pipeline run on a span.
func TagAttributes(tags, corrected, translated int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("tagging.tags", tags),
		attribute.Int("tagging.corrected", corrected),
		attribute.Int("tagging.translated", translated),
	}
}

// CorrelationID is the hex trace ID of the span in ctx, or "" without one.
// It is what the middleware sends back as X-Correlation-ID.
func CorrelationID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// Logger is slog.Default with trace_id and span_id attached when ctx carries
// a span.
func Logger(ctx context.Context) *slog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return slog.Default()
	}
	return slog.Default().With(
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
	)
}
