package engine

import "errors"

// Engine failure classes.
var (
	// ErrSessionExpired indicates the session behind the engine has lapsed.
	ErrSessionExpired = errors.New("engine: session expired")

	// ErrTransient indicates a failure that may succeed on retry.
	ErrTransient = errors.New("engine: transient failure")

	// ErrRejected indicates the engine refused a parameter value.
	ErrRejected = errors.New("engine: parameter rejected")

	// ErrClosed indicates a call on a closed engine.
	ErrClosed = errors.New("engine: closed")
)

// IsSessionExpired reports whether err means the session is gone.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// IsTransient reports whether err may succeed when retried.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
