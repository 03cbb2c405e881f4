package resilience

import (
	"context"
	"errors"
	"time"
)

// Timeout bounds a single engine call.
type Timeout struct {
	limit time.Duration
}

// NewTimeout creates a Timeout. A non-positive limit disables it.
func NewTimeout(limit time.Duration) *Timeout {
	return &Timeout{limit: limit}
}

// Limit returns the configured limit.
func (t *Timeout) Limit() time.Duration {
	return t.limit
}

// Execute runs op with a deadline. When the deadline passes first, Execute
// returns ErrTimeout without waiting for op; op sees a canceled context.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	if t.limit <= 0 {
		return op(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, t.limit)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
			return ErrTimeout
		}
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	}
}
