package cache

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/jonwraymond/rndsync/plane"
	"github.com/jonwraymond/rndsync/raster"
)

// Sentinel errors for cache operations.
var (
	ErrUnknownID       = errors.New("cache: unknown cache id")
	ErrInvalidEntries  = errors.New("cache: entry budget must be positive")
	ErrInvalidArtifact = errors.New("cache: artifact must hold bytes or a raster, not both")
)

// ID identifies one cache created by a Service.
type ID int64

// Tier hints where a Service should keep a cache.
type Tier int

const (
	// TierMemory keeps entries in process memory.
	TierMemory Tier = iota
	// TierOverflow allows a Service to spill entries to slower storage.
	TierOverflow
)

// String returns the string representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierMemory:
		return "memory"
	case TierOverflow:
		return "overflow"
	default:
		return "unknown"
	}
}

// ParseTier parses a tier name. The empty name selects TierMemory.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "", "memory":
		return TierMemory, nil
	case "overflow":
		return TierOverflow, nil
	default:
		return TierMemory, fmt.Errorf("cache: unknown tier %q", s)
	}
}

// Artifact is a rendered plane: either compressed bytes or a decoded raster.
type Artifact struct {
	Bytes  []byte
	Raster *image.RGBA
}

// Compressed wraps compressed plane bytes.
func Compressed(b []byte) Artifact {
	return Artifact{Bytes: b}
}

// Decoded wraps a decoded raster.
func Decoded(img *image.RGBA) Artifact {
	return Artifact{Raster: img}
}

// Validate checks that exactly one representation is set.
func (a Artifact) Validate() error {
	if (a.Bytes == nil) == (a.Raster == nil) {
		return ErrInvalidArtifact
	}
	return nil
}

// Size returns the number of bytes the artifact occupies.
func (a Artifact) Size() int {
	if a.Raster != nil {
		return raster.Size(a.Raster)
	}
	return len(a.Bytes)
}

// Service is a capacity-bounded store of artifacts addressed by
// (cache id, plane key).
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines where applicable.
// - Errors: Get should never error; it returns (Artifact{}, false) on miss.
type Service interface {
	// Create allocates a cache holding at most entries artifacts.
	Create(ctx context.Context, tier Tier, entries int) (ID, error)

	// Get retrieves an artifact. Returns (Artifact{}, false) on miss.
	Get(ctx context.Context, id ID, key plane.Key) (Artifact, bool)

	// Put inserts or replaces an artifact, evicting if the cache is full.
	Put(ctx context.Context, id ID, key plane.Key, a Artifact) error

	// Clear drops every entry but keeps the cache and its budget.
	Clear(ctx context.Context, id ID) error

	// Remove destroys the cache. Idempotent - no error on unknown id.
	Remove(ctx context.Context, id ID) error

	// Resize sets a new entry budget, evicting the oldest entries if needed.
	Resize(ctx context.Context, id ID, entries int) error
}
