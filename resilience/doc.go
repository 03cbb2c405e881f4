// Package resilience guards calls to a remote rendering engine.
//
// Engine calls are synchronous and may fail. The patterns here bound how long
// a call may take, retry failures that are worth retrying, and stop calling an
// engine that keeps failing:
//
//   - Timeout: each attempt must finish within CallTimeout.
//   - Retry: transient failures are retried with backoff. Session expiry and
//     parameter rejections are returned immediately.
//   - Circuit Breaker: after MaxFailures consecutive transient failures the
//     circuit opens and calls fail fast with ErrCircuitOpen until ResetTimeout
//     has passed.
//
// # Usage
//
//	exec := resilience.New(resilience.Config{
//	    Retry:       resilience.RetryConfig{MaxAttempts: 3},
//	    Breaker:     resilience.CircuitBreakerConfig{MaxFailures: 5},
//	    CallTimeout: 10 * time.Second,
//	}, logger)
//
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    return eng.SetChannelWindow(ctx, 0, 10, 200)
//	})
//
// A zero Config yields an executor that runs each call exactly once.
package resilience
