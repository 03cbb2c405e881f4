package proxy

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionExpired indicates the engine session lapsed. The proxy is
	// shut down and must be replaced.
	ErrSessionExpired = errors.New("proxy: session expired")

	// ErrClosed indicates a call after Shutdown.
	ErrClosed = errors.New("proxy: closed")

	// ErrInvalidArgument indicates an argument rejected before any remote
	// call.
	ErrInvalidArgument = errors.New("proxy: invalid argument")

	// ErrIndexOutOfRange indicates a channel index outside the pixel set.
	// It also matches ErrInvalidArgument.
	ErrIndexOutOfRange = fmt.Errorf("%w: channel index out of range", ErrInvalidArgument)
)

// RenderingServiceError reports an engine failure other than session expiry.
type RenderingServiceError struct {
	// Op is the engine operation, e.g. "set_rgba".
	Op string
	// Param names what was being applied, e.g. "color for channel 3".
	Param string
	// Err is the engine error.
	Err error
}

// Error implements error.
func (e *RenderingServiceError) Error() string {
	what := e.Param
	if what == "" {
		what = e.Op
	}
	return fmt.Sprintf("proxy: %s: %v", what, e.Err)
}

// Unwrap returns the engine error.
func (e *RenderingServiceError) Unwrap() error {
	return e.Err
}

// AsRenderingServiceError extracts a *RenderingServiceError from err.
func AsRenderingServiceError(err error) (*RenderingServiceError, bool) {
	var rse *RenderingServiceError
	if errors.As(err, &rse) {
		return rse, true
	}
	return nil, false
}
