package resilience

import (
	"context"
	"time"

	"github.com/jonwraymond/rndsync/observe"
)

// Config configures an Executor.
type Config struct {
	Retry       RetryConfig          `yaml:"retry"`
	Breaker     CircuitBreakerConfig `yaml:"breaker"`
	CallTimeout time.Duration        `yaml:"callTimeout"`
}

// Executor composes timeout, retry and circuit breaking around engine calls.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: the error of the last attempt is returned unchanged, except
//     that attempts cut off by CallTimeout return ErrTimeout.
type Executor struct {
	breaker *CircuitBreaker
	retry   *Retry
	timeout *Timeout
}

// New builds an Executor from cfg. Retries and breaker transitions are
// logged to logger; a nil logger discards.
func New(cfg Config, logger observe.Logger) *Executor {
	if logger == nil {
		logger = observe.NopLogger()
	}

	retryCfg := cfg.Retry
	if retryCfg.OnRetry == nil {
		retryCfg.OnRetry = func(attempt int, err error, delay time.Duration) {
			logger.Warn(context.Background(), "retrying engine call",
				observe.Field{Key: "attempt", Value: attempt},
				observe.Field{Key: "delay_ms", Value: delay.Milliseconds()},
				observe.Field{Key: "error", Value: err.Error()},
			)
		}
	}

	breakerCfg := cfg.Breaker
	if breakerCfg.OnStateChange == nil {
		breakerCfg.OnStateChange = func(from, to State) {
			logger.Warn(context.Background(), "engine circuit breaker changed state",
				observe.Field{Key: "from", Value: from.String()},
				observe.Field{Key: "to", Value: to.String()},
			)
		}
	}

	return &Executor{
		breaker: NewCircuitBreaker(breakerCfg),
		retry:   NewRetry(retryCfg),
		timeout: NewTimeout(cfg.CallTimeout),
	}
}

// Direct returns an Executor that runs each call once with no limits.
func Direct() *Executor {
	return New(Config{}, nil)
}

// Breaker returns the circuit breaker.
func (e *Executor) Breaker() *CircuitBreaker {
	return e.breaker
}

// Execute runs op. The breaker sees the outcome of the whole retry sequence;
// the timeout applies to each attempt.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	return e.breaker.Execute(ctx, func(ctx context.Context) error {
		return e.retry.Execute(ctx, func(ctx context.Context) error {
			return e.timeout.Execute(ctx, op)
		})
	})
}
