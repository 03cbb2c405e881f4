package cache

// Policy configures how much memory a plane cache may use.
type Policy struct {
	// CapacityBytes is the byte budget of one cache.
	// If zero, caching is disabled.
	CapacityBytes int64

	// Tier is passed to Service.Create.
	Tier Tier
}

// DefaultPolicy returns the default caching policy.
// CapacityBytes: 64 MiB, Tier: memory
func DefaultPolicy() Policy {
	return Policy{
		CapacityBytes: 64 << 20,
		Tier:          TierMemory,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache returns true if caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.CapacityBytes > 0
}

// EntryBudget converts the byte budget into an entry count given the size of
// one observed artifact. The result is never less than 1.
func (p Policy) EntryBudget(observedSize int) int {
	if observedSize <= 0 || p.CapacityBytes <= 0 {
		return 1
	}
	n := p.CapacityBytes / int64(observedSize)
	if n < 1 {
		return 1
	}
	return int(n)
}
