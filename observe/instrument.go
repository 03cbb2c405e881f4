package observe

import (
	"context"
	"time"
)

// Instrumenter wraps engine calls with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: errors from the wrapped call are recorded and returned unchanged.
type Instrumenter struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewInstrumenter creates an Instrumenter from its parts.
func NewInstrumenter(tracer Tracer, metrics Metrics, logger Logger) *Instrumenter {
	return &Instrumenter{tracer: tracer, metrics: metrics, logger: logger}
}

// InstrumenterFromObserver builds an Instrumenter from an Observer.
func InstrumenterFromObserver(obs Observer) (*Instrumenter, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewInstrumenter(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Logger returns the logger used for call records.
func (in *Instrumenter) Logger() Logger {
	return in.logger
}

// Call runs fn inside a span and records its outcome.
func (in *Instrumenter) Call(ctx context.Context, meta CallMeta, fn func(ctx context.Context) error) error {
	ctx, span := in.tracer.StartSpan(ctx, meta)
	start := time.Now()

	err := fn(ctx)

	duration := time.Since(start)
	in.tracer.EndSpan(span, err)
	in.metrics.RecordCall(ctx, meta, duration, err)

	if err != nil {
		in.logger.Warn(ctx, "engine call failed",
			Field{Key: "op", Value: meta.Op},
			Field{Key: "param", Value: meta.Param},
			Field{Key: "duration_ms", Value: float64(duration.Milliseconds())},
			Field{Key: "error", Value: err.Error()},
		)
	} else {
		in.logger.Debug(ctx, "engine call completed",
			Field{Key: "op", Value: meta.Op},
			Field{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		)
	}
	return err
}

// CacheLookup records a plane-cache probe.
func (in *Instrumenter) CacheLookup(ctx context.Context, axis string, hit bool) {
	in.metrics.RecordCacheLookup(ctx, axis, hit)
}

// NopInstrumenter returns an Instrumenter that records nothing.
func NopInstrumenter() *Instrumenter {
	in, _ := InstrumenterFromObserver(NopObserver())
	return in
}
