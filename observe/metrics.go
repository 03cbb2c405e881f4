package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records engine-call and plane-cache metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records one engine call with its duration and outcome.
	RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error)

	// RecordCacheLookup records a plane-cache probe.
	RecordCacheLookup(ctx context.Context, axis string, hit bool)
}

type metricsImpl struct {
	calls        metric.Int64Counter
	callErrors   metric.Int64Counter
	durationHist metric.Float64Histogram
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
}

// NewMetrics creates Metrics backed by meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	calls, err := meter.Int64Counter(
		"rndsync.engine.calls",
		metric.WithDescription("Total number of rendering engine calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	callErrors, err := meter.Int64Counter(
		"rndsync.engine.errors",
		metric.WithDescription("Total number of failed rendering engine calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"rndsync.engine.duration_ms",
		metric.WithDescription("Rendering engine call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"rndsync.cache.hits",
		metric.WithDescription("Plane cache hits"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"rndsync.cache.misses",
		metric.WithDescription("Plane cache misses"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		calls:        calls,
		callErrors:   callErrors,
		durationHist: durationHist,
		cacheHits:    cacheHits,
		cacheMisses:  cacheMisses,
	}, nil
}

func (m *metricsImpl) RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(attribute.String("rndsync.op", meta.Op))

	m.calls.Add(ctx, 1, opt)
	if err != nil {
		m.callErrors.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

func (m *metricsImpl) RecordCacheLookup(ctx context.Context, axis string, hit bool) {
	opt := metric.WithAttributes(attribute.String("rndsync.axis", axis))
	if hit {
		m.cacheHits.Add(ctx, 1, opt)
	} else {
		m.cacheMisses.Add(ctx, 1, opt)
	}
}
