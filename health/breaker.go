package health

import (
	"context"

	"github.com/jonwraymond/rndsync/resilience"
)

// BreakerChecker reports the engine circuit breaker state.
type BreakerChecker struct {
	breaker *resilience.CircuitBreaker
}

// NewBreakerChecker creates a BreakerChecker.
func NewBreakerChecker(breaker *resilience.CircuitBreaker) *BreakerChecker {
	return &BreakerChecker{breaker: breaker}
}

// Name returns "engine".
func (c *BreakerChecker) Name() string {
	return "engine"
}

// Check maps closed to healthy, half-open to degraded and open to unhealthy.
func (c *BreakerChecker) Check(context.Context) Result {
	state := c.breaker.State()
	details := map[string]any{
		"state":    state.String(),
		"failures": c.breaker.Failures(),
	}
	switch state {
	case resilience.StateOpen:
		return Unhealthy("engine circuit open", resilience.ErrCircuitOpen).WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("engine circuit probing").WithDetails(details)
	default:
		return Healthy("engine reachable").WithDetails(details)
	}
}

var (
	_ Checker = (*SessionChecker)(nil)
	_ Checker = (*CacheChecker)(nil)
	_ Checker = (*BreakerChecker)(nil)
	_ Checker = (*CheckerFunc)(nil)
)
