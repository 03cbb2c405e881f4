package cache

import (
	"context"

	"github.com/jonwraymond/rndsync/observe"
	"github.com/jonwraymond/rndsync/plane"
)

// State is the lifecycle state of a PlaneCache handle.
type State int

const (
	// StateAbsent means no cache has been created yet.
	StateAbsent State = iota
	// StatePresent means a cache exists in the Service.
	StatePresent
	// StateDestroyed means the cache was removed; the next XY store creates
	// a fresh one.
	StateDestroyed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StatePresent:
		return "present"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// RenderFunc produces an artifact on a cache miss. size is the byte size used
// to derive the entry budget when the cache has not been sized yet.
type RenderFunc func(ctx context.Context) (a Artifact, size int, err error)

// PlaneCache owns at most one cache in a Service on behalf of one proxy.
//
// Only XY planes are cached. Service failures are logged and treated as
// misses; no method returns a cache error.
//
// PlaneCache is not safe for concurrent use.
type PlaneCache struct {
	svc    Service
	policy Policy
	logger observe.Logger

	state State
	id    ID
	sized bool
}

// NewPlaneCache creates a PlaneCache in StateAbsent. A nil logger discards.
func NewPlaneCache(svc Service, policy Policy, logger observe.Logger) *PlaneCache {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &PlaneCache{svc: svc, policy: policy, logger: logger}
}

// Cacheable reports whether key is eligible for caching.
func Cacheable(key plane.Key) bool {
	return key.Axis == plane.XY
}

// State returns the lifecycle state of the handle.
func (c *PlaneCache) State() State {
	return c.state
}

// ID returns the Service id while the handle is present.
func (c *PlaneCache) ID() (ID, bool) {
	return c.id, c.state == StatePresent
}

// EnsureCreated allocates the cache the first time an XY plane is about to be
// stored. It reports whether a cache is present afterwards.
func (c *PlaneCache) EnsureCreated(ctx context.Context, key plane.Key) bool {
	if !Cacheable(key) || !c.policy.ShouldCache() || c.svc == nil {
		return false
	}
	if c.state == StatePresent {
		return true
	}

	id, err := c.svc.Create(ctx, c.policy.Tier, 1)
	if err != nil {
		c.logger.Debug(ctx, "plane cache create failed", observe.Field{Key: "error", Value: err.Error()})
		return false
	}
	c.id = id
	c.state = StatePresent
	c.sized = false
	c.logger.Debug(ctx, "plane cache created",
		observe.Field{Key: "cache_id", Value: int64(id)},
		observe.Field{Key: "tier", Value: c.policy.Tier.String()},
	)
	return true
}

// Get looks key up. It never renders.
func (c *PlaneCache) Get(ctx context.Context, key plane.Key) (Artifact, bool) {
	if !Cacheable(key) || c.state != StatePresent {
		return Artifact{}, false
	}
	return c.svc.Get(ctx, c.id, key)
}

// Put stores a for key, creating and sizing the cache on first use.
func (c *PlaneCache) Put(ctx context.Context, key plane.Key, a Artifact, observedSize int) {
	if !c.EnsureCreated(ctx, key) {
		return
	}
	if !c.sized {
		entries := c.policy.EntryBudget(observedSize)
		if err := c.svc.Resize(ctx, c.id, entries); err != nil {
			c.logger.Debug(ctx, "plane cache resize failed", observe.Field{Key: "error", Value: err.Error()})
			return
		}
		c.sized = true
		c.logger.Debug(ctx, "plane cache sized",
			observe.Field{Key: "cache_id", Value: int64(c.id)},
			observe.Field{Key: "entries", Value: entries},
		)
	}
	if err := c.svc.Put(ctx, c.id, key, a); err != nil {
		c.logger.Debug(ctx, "plane cache put failed", observe.Field{Key: "error", Value: err.Error()})
	}
}

// Fetch returns the cached artifact for key or calls render and stores its
// result. Errors from render are returned and never cached.
func (c *PlaneCache) Fetch(ctx context.Context, key plane.Key, render RenderFunc) (Artifact, bool, error) {
	if a, ok := c.Get(ctx, key); ok {
		return a, true, nil
	}

	a, size, err := render(ctx)
	if err != nil {
		return a, false, err
	}
	if Cacheable(key) {
		c.Put(ctx, key, a, size)
	}
	return a, false, nil
}

// Invalidate drops every entry but keeps the handle and its budget.
func (c *PlaneCache) Invalidate(ctx context.Context) {
	if c.state != StatePresent {
		return
	}
	if err := c.svc.Clear(ctx, c.id); err != nil {
		c.logger.Debug(ctx, "plane cache clear failed", observe.Field{Key: "error", Value: err.Error()})
	}
}

// Destroy removes the cache from the Service and releases the handle.
func (c *PlaneCache) Destroy(ctx context.Context) {
	if c.state != StatePresent {
		return
	}
	if err := c.svc.Remove(ctx, c.id); err != nil {
		c.logger.Debug(ctx, "plane cache remove failed", observe.Field{Key: "error", Value: err.Error()})
	}
	c.logger.Debug(ctx, "plane cache destroyed", observe.Field{Key: "cache_id", Value: int64(c.id)})
	c.state = StateDestroyed
	c.id = 0
	c.sized = false
}
