package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/rndsync/cache"
)

// StatsSource exposes cache service counters.
type StatsSource interface {
	Stats() cache.Stats
}

// CacheCheckerConfig configures a CacheChecker.
type CacheCheckerConfig struct {
	// CapacityBytes is the expected byte budget across caches. Zero reports
	// usage without thresholds.
	CapacityBytes int64

	// WarningThreshold is the usage ratio that degrades the check.
	// Default: 0.9
	WarningThreshold float64

	// CriticalThreshold is the usage ratio that fails the check.
	// Default: 1.5
	CriticalThreshold float64
}

// CacheChecker reports plane cache usage.
type CacheChecker struct {
	src    StatsSource
	config CacheCheckerConfig
}

// NewCacheChecker creates a CacheChecker over src.
func NewCacheChecker(src StatsSource, config CacheCheckerConfig) *CacheChecker {
	if config.WarningThreshold <= 0 {
		config.WarningThreshold = 0.9
	}
	if config.CriticalThreshold <= config.WarningThreshold {
		config.CriticalThreshold = config.WarningThreshold + 0.6
	}
	return &CacheChecker{src: src, config: config}
}

// Name returns "cache".
func (c *CacheChecker) Name() string {
	return "cache"
}

// Check reads the service counters. Budgets are entry counts derived from an
// observed artifact size, so usage can overshoot the byte budget briefly.
func (c *CacheChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	st := c.src.Stats()
	details := map[string]any{
		"caches":    st.Caches,
		"entries":   st.Entries,
		"bytes":     st.Bytes,
		"hits":      st.Hits,
		"misses":    st.Misses,
		"evictions": st.Evictions,
	}
	if lookups := st.Hits + st.Misses; lookups > 0 {
		details["hit_ratio"] = float64(st.Hits) / float64(lookups)
	}

	if c.config.CapacityBytes <= 0 {
		return Healthy(fmt.Sprintf("%d entries cached", st.Entries)).WithDetails(details)
	}

	usage := float64(st.Bytes) / float64(c.config.CapacityBytes)
	details["usage_percent"] = usage * 100
	switch {
	case usage >= c.config.CriticalThreshold:
		return Unhealthy(fmt.Sprintf("cache usage critical: %.1f%%", usage*100), ErrCheckFailed).WithDetails(details)
	case usage >= c.config.WarningThreshold:
		return Degraded(fmt.Sprintf("cache usage high: %.1f%%", usage*100)).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("cache usage normal: %.1f%%", usage*100)).WithDetails(details)
	}
}
