package session

import (
	"context"
	"sync/atomic"
)

// Keeper reports session liveness.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: Check must honor cancellation.
//   - Errors: an expired session returns an error wrapping ErrExpired.
//     Expiry is sticky.
type Keeper interface {
	Check(ctx context.Context) error
}

// KeeperFunc adapts a function to Keeper.
type KeeperFunc func(ctx context.Context) error

// Check calls f.
func (f KeeperFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// StaticKeeper is alive until Expire is called.
type StaticKeeper struct {
	expired atomic.Bool
}

// NewStaticKeeper creates a live StaticKeeper.
func NewStaticKeeper() *StaticKeeper {
	return &StaticKeeper{}
}

// Check implements Keeper.
func (k *StaticKeeper) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if k.expired.Load() {
		return ErrExpired
	}
	return nil
}

// Expire ends the session.
func (k *StaticKeeper) Expire() {
	k.expired.Store(true)
}

var (
	_ Keeper = (*StaticKeeper)(nil)
	_ Keeper = KeeperFunc(nil)
)
