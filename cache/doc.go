// Package cache memoizes rendered planes.
//
// It provides the Service contract for a capacity-bounded keyed store, an
// LRU-backed MemoryService implementation, a capacity Policy expressed in
// bytes, and PlaneCache, which owns one cache handle on behalf of a rendering
// proxy and applies the XY-only and lazy-sizing rules.
package cache
