package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CallMeta describes one call to the remote rendering engine.
type CallMeta struct {
	Op       string // engine operation, e.g. "set_channel_window"
	Param    string // parameter being changed, e.g. "window for channel 2"
	PixelsID int64  // pixel set being rendered
}

// SpanName returns the deterministic span name for this call.
// Format: rndsync.engine.<op>
func (m CallMeta) SpanName() string {
	return "rndsync.engine." + m.Op
}

// Tracer wraps OpenTelemetry tracing with engine-call span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span)
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("rndsync.op", meta.Op),
		attribute.Int64("rndsync.pixels_id", meta.PixelsID),
		attribute.Bool("rndsync.error", false),
	}
	if meta.Param != "" {
		attrs = append(attrs, attribute.String("rndsync.param", meta.Param))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("rndsync.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
