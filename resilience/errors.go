package resilience

import (
	"errors"

	"github.com/jonwraymond/rndsync/engine"
)

var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrTimeout is returned when an engine call exceeds its timeout.
	ErrTimeout = errors.New("resilience: engine call timed out")
)

// Retryable reports whether err is worth another attempt: transient engine
// failures and per-call timeouts.
func Retryable(err error) bool {
	return engine.IsTransient(err) || errors.Is(err, ErrTimeout)
}

// Unavailable reports whether err counts against the circuit breaker. An
// engine that rejects a parameter is still available.
func Unavailable(err error) bool {
	return Retryable(err)
}
