package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/rndsync/session"
)

// SessionChecker reports on the engine session.
type SessionChecker struct {
	keeper  session.Keeper
	warnFor time.Duration
	now     func() time.Time
}

// expirer is implemented by keepers that know when the session ends.
type expirer interface {
	Expiry() time.Time
}

// NewSessionChecker creates a SessionChecker. If the keeper reports an
// expiry time, the session is degraded during its last five minutes.
func NewSessionChecker(keeper session.Keeper) *SessionChecker {
	return &SessionChecker{keeper: keeper, warnFor: 5 * time.Minute, now: time.Now}
}

// Name returns "session".
func (c *SessionChecker) Name() string {
	return "session"
}

// Check asks the keeper for liveness.
func (c *SessionChecker) Check(ctx context.Context) Result {
	err := c.keeper.Check(ctx)
	switch {
	case errors.Is(err, session.ErrExpired):
		return Unhealthy("session expired", err)
	case err != nil:
		return Unhealthy("session check failed", err)
	}

	e, ok := c.keeper.(expirer)
	if !ok || e.Expiry().IsZero() {
		return Healthy("session alive")
	}
	left := e.Expiry().Sub(c.now())
	details := map[string]any{"expires_in": left.Round(time.Second).String()}
	if left < c.warnFor {
		return Degraded(fmt.Sprintf("session expires in %s", left.Round(time.Second))).WithDetails(details)
	}
	return Healthy("session alive").WithDetails(details)
}
