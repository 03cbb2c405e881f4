package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"gopkg.in/yaml.v3"
)

// BackoffStrategy defines how delays grow between attempts.
type BackoffStrategy int

const (
	// BackoffExponential multiplies the delay each attempt.
	BackoffExponential BackoffStrategy = iota
	// BackoffLinear grows the delay by InitialDelay each attempt.
	BackoffLinear
	// BackoffConstant waits InitialDelay between every attempt.
	BackoffConstant
)

// ParseBackoff parses "exponential", "linear" or "constant". Unknown names
// select exponential backoff.
func ParseBackoff(s string) BackoffStrategy {
	switch s {
	case "linear":
		return BackoffLinear
	case "constant":
		return BackoffConstant
	default:
		return BackoffExponential
	}
}

// String returns the string representation of the strategy.
func (b BackoffStrategy) String() string {
	switch b {
	case BackoffLinear:
		return "linear"
	case BackoffConstant:
		return "constant"
	default:
		return "exponential"
	}
}

// UnmarshalYAML decodes a strategy name.
func (b *BackoffStrategy) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	*b = ParseBackoff(s)
	return nil
}

// MarshalYAML encodes the strategy name.
func (b BackoffStrategy) MarshalYAML() (any, error) {
	return b.String(), nil
}

// RetryConfig configures retries of engine calls.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts including the first.
	// Default: 1 (no retry)
	MaxAttempts int `yaml:"maxAttempts"`

	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration `yaml:"initialDelay"`

	// MaxDelay caps the delay between attempts.
	// Default: 5s
	MaxDelay time.Duration `yaml:"maxDelay"`

	// Multiplier is the growth factor for exponential backoff.
	// Default: 2.0
	Multiplier float64 `yaml:"multiplier"`

	// Strategy is the backoff strategy.
	// Default: BackoffExponential
	Strategy BackoffStrategy `yaml:"backoff"`

	// Jitter adds up to 25% random delay.
	Jitter bool `yaml:"jitter"`

	// RetryIf decides whether an error is retried.
	// Default: Retryable
	RetryIf func(err error) bool `yaml:"-"`

	// OnRetry is called before each retry.
	OnRetry func(attempt int, err error, delay time.Duration) `yaml:"-"`
}

// Retry retries engine calls with backoff.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a Retry, applying defaults.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 5 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = Retryable
	}
	return &Retry{config: config}
}

// Execute runs op until it succeeds, fails with a non-retryable error, or the
// attempts are used up. The last error is returned.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = op(ctx)
		if err == nil || !r.config.RetryIf(err) || attempt >= r.config.MaxAttempts {
			return err
		}

		delay := r.delay(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *Retry) delay(attempt int) time.Duration {
	var d time.Duration
	switch r.config.Strategy {
	case BackoffConstant:
		d = r.config.InitialDelay
	case BackoffLinear:
		d = r.config.InitialDelay * time.Duration(attempt)
	default:
		d = time.Duration(float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1)))
	}

	if d > r.config.MaxDelay {
		d = r.config.MaxDelay
	}
	if r.config.Jitter && d >= 4 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		d += time.Duration(rand.Int64N(int64(d / 4)))
	}
	return d
}

// Config returns the retry configuration with defaults applied.
func (r *Retry) Config() RetryConfig {
	return r.config
}
