package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jonwraymond/rndsync/plane"
)

// MemoryService is an in-memory Service with least-recently-used eviction.
type MemoryService struct {
	mu     sync.RWMutex
	caches map[ID]*memoryCache
	nextID ID

	hits      int64
	misses    int64
	evictions int64
}

type memoryCache struct {
	tier    Tier
	entries *lru.Cache[plane.Key, Artifact]

	putMu sync.Mutex
	bytes atomic.Int64
}

// Stats contains counters across every cache of a MemoryService.
type Stats struct {
	Caches    int
	Entries   int
	Hits      int64
	Misses    int64
	Evictions int64
	// Bytes is the total artifact size currently held.
	Bytes int64
}

// NewMemoryService creates an empty in-memory cache service.
func NewMemoryService() *MemoryService {
	return &MemoryService{
		caches: make(map[ID]*memoryCache),
		nextID: 1,
	}
}

// Create allocates a new LRU cache.
func (s *MemoryService) Create(_ context.Context, tier Tier, entries int) (ID, error) {
	if entries <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidEntries, entries)
	}
	mc := &memoryCache{tier: tier}
	entriesCache, err := lru.NewWithEvict(entries, func(_ plane.Key, a Artifact) {
		mc.bytes.Add(-int64(a.Size()))
	})
	if err != nil {
		return 0, fmt.Errorf("cache: create: %w", err)
	}
	mc.entries = entriesCache

	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.caches[id] = mc
	return id, nil
}

// Get retrieves an artifact. Returns (Artifact{}, false) on miss or unknown id.
func (s *MemoryService) Get(_ context.Context, id ID, key plane.Key) (Artifact, bool) {
	s.mu.RLock()
	c, ok := s.caches[id]
	s.mu.RUnlock()

	var a Artifact
	if ok {
		a, ok = c.entries.Get(key)
	}

	s.mu.Lock()
	if ok {
		s.hits++
	} else {
		s.misses++
	}
	s.mu.Unlock()
	return a, ok
}

// Put stores an artifact.
func (s *MemoryService) Put(_ context.Context, id ID, key plane.Key, a Artifact) error {
	if err := a.Validate(); err != nil {
		return err
	}
	c, err := s.lookup(id)
	if err != nil {
		return err
	}

	c.putMu.Lock()
	if old, ok := c.entries.Peek(key); ok {
		c.bytes.Add(-int64(old.Size()))
	}
	c.bytes.Add(int64(a.Size()))
	evicted := c.entries.Add(key, a)
	c.putMu.Unlock()

	if evicted {
		s.mu.Lock()
		s.evictions++
		s.mu.Unlock()
	}
	return nil
}

// Clear drops every entry of a cache.
func (s *MemoryService) Clear(_ context.Context, id ID) error {
	c, err := s.lookup(id)
	if err != nil {
		return err
	}
	c.entries.Purge()
	return nil
}

// Remove destroys a cache. Idempotent - no error on unknown id.
func (s *MemoryService) Remove(_ context.Context, id ID) error {
	s.mu.Lock()
	c, ok := s.caches[id]
	delete(s.caches, id)
	s.mu.Unlock()

	if ok {
		c.entries.Purge()
	}
	return nil
}

// Resize changes the entry budget of a cache.
func (s *MemoryService) Resize(_ context.Context, id ID, entries int) error {
	if entries <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidEntries, entries)
	}
	c, err := s.lookup(id)
	if err != nil {
		return err
	}
	if evicted := c.entries.Resize(entries); evicted > 0 {
		s.mu.Lock()
		s.evictions += int64(evicted)
		s.mu.Unlock()
	}
	return nil
}

// Len returns the number of entries in a cache, or 0 for an unknown id.
func (s *MemoryService) Len(id ID) int {
	c, err := s.lookup(id)
	if err != nil {
		return 0
	}
	return c.entries.Len()
}

// Stats returns a snapshot of the service counters.
func (s *MemoryService) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Caches:    len(s.caches),
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
	}
	for _, c := range s.caches {
		st.Entries += c.entries.Len()
		st.Bytes += c.bytes.Load()
	}
	return st
}

func (s *MemoryService) lookup(id ID) (*memoryCache, error) {
	s.mu.RLock()
	c, ok := s.caches[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	return c, nil
}

// Ensure MemoryService implements Service
var _ Service = (*MemoryService)(nil)
