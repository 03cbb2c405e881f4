package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/rndsync/cache"
	"github.com/jonwraymond/rndsync/engine"
	"github.com/jonwraymond/rndsync/observe"
	"github.com/jonwraymond/rndsync/pixels"
	"github.com/jonwraymond/rndsync/resilience"
	"github.com/jonwraymond/rndsync/secret"
)

// Validation errors.
var (
	ErrInvalidCapacity    = errors.New("config: cache capacity must not be negative")
	ErrInvalidTier        = errors.New("config: unknown cache tier")
	ErrInvalidCompression = errors.New("config: unknown compression")
	ErrInvalidRetry       = errors.New("config: retry attempts must not be negative")
	ErrIncompleteSession  = errors.New("config: session token and signing key must be set together")
)

// Config is the root configuration.
type Config struct {
	Pixels      PixelsConfig      `yaml:"pixels"`
	Cache       CacheConfig       `yaml:"cache"`
	Compression string            `yaml:"compression"`
	Resilience  resilience.Config `yaml:"resilience"`
	Session     SessionConfig     `yaml:"session"`
	Observe     observe.Config    `yaml:"observe"`
	Health      HealthConfig      `yaml:"health"`

	// SettingsFile, when set, holds saved rendering settings to start from.
	SettingsFile string `yaml:"settingsFile"`
}

// PixelsConfig describes the pixel set served by the local engine.
type PixelsConfig struct {
	ID    int64  `yaml:"id"`
	SizeX int    `yaml:"sizeX"`
	SizeY int    `yaml:"sizeY"`
	SizeZ int    `yaml:"sizeZ"`
	SizeT int    `yaml:"sizeT"`
	SizeC int    `yaml:"sizeC"`
	Type  string `yaml:"type"`
}

// CacheConfig configures the plane cache.
type CacheConfig struct {
	CapacityBytes int64  `yaml:"capacityBytes"`
	Tier          string `yaml:"tier"`
}

// SessionConfig configures the session keeper. With no token the session
// never expires.
type SessionConfig struct {
	Token      string        `yaml:"token"`
	SigningKey string        `yaml:"signingKey"`
	Issuer     string        `yaml:"issuer"`
	Leeway     time.Duration `yaml:"leeway"`
}

// HealthConfig configures the health endpoints. Empty Addr disables them.
type HealthConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Pixels: PixelsConfig{
			ID: 1, SizeX: 512, SizeY: 512, SizeZ: 1, SizeT: 1, SizeC: 3,
			Type: pixels.TypeUint8,
		},
		Cache: CacheConfig{
			CapacityBytes: cache.DefaultPolicy().CapacityBytes,
			Tier:          cache.TierMemory.String(),
		},
		Compression: engine.Uncompressed.String(),
		Resilience: resilience.Config{
			Retry:       resilience.RetryConfig{MaxAttempts: 1},
			CallTimeout: 30 * time.Second,
		},
		Observe: observe.Config{
			ServiceName: "rndsync",
			Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
		},
	}
}

// Load reads path over Default. A missing file returns Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := c.PixelSet(); err != nil {
		return fmt.Errorf("config: pixels: %w", err)
	}
	if c.Cache.CapacityBytes < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, c.Cache.CapacityBytes)
	}
	if _, err := cache.ParseTier(c.Cache.Tier); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTier, c.Cache.Tier)
	}
	if _, err := engine.ParseCompression(c.Compression); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidCompression, c.Compression)
	}
	if c.Resilience.Retry.MaxAttempts < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRetry, c.Resilience.Retry.MaxAttempts)
	}
	if (c.Session.Token == "") != (c.Session.SigningKey == "") {
		return ErrIncompleteSession
	}
	return c.Observe.Validate()
}

// PixelSet returns the configured pixel set.
func (c *Config) PixelSet() (pixels.Set, error) {
	p := pixels.Set{
		ID:    c.Pixels.ID,
		SizeX: c.Pixels.SizeX,
		SizeY: c.Pixels.SizeY,
		SizeZ: c.Pixels.SizeZ,
		SizeT: c.Pixels.SizeT,
		SizeC: c.Pixels.SizeC,
		Type:  c.Pixels.Type,
	}
	return p, p.Validate()
}

// CachePolicy returns the plane cache policy.
func (c *Config) CachePolicy() cache.Policy {
	tier, _ := cache.ParseTier(c.Cache.Tier)
	return cache.Policy{CapacityBytes: c.Cache.CapacityBytes, Tier: tier}
}

// CompressionMode returns the configured transport compression.
func (c *Config) CompressionMode() engine.Compression {
	mode, _ := engine.ParseCompression(c.Compression)
	return mode
}

// ResolveSecrets resolves the session credentials in place.
func (c *Config) ResolveSecrets(ctx context.Context, r *secret.Resolver) error {
	if r == nil {
		r = secret.DefaultResolver()
	}
	for _, field := range []*string{&c.Session.Token, &c.Session.SigningKey} {
		if *field == "" {
			continue
		}
		v, err := r.ResolveValue(ctx, *field)
		if err != nil {
			return fmt.Errorf("config: session: %w", err)
		}
		*field = v
	}
	return nil
}
