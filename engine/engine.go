package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonwraymond/rndsync/plane"
	"github.com/jonwraymond/rndsync/settings"
)

// Engine renders planes of one pixel set under mutable settings.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use, but
//     callers serialize mutations that must be observed in order.
//   - Context: every call must honor cancellation and deadlines.
//   - Errors: failures should wrap ErrSessionExpired, ErrTransient or
//     ErrRejected so callers can classify them.
//   - Settings returns channel bounds derived from the pixel type.
type Engine interface {
	// Settings returns the engine's current settings.
	Settings(ctx context.Context) (settings.Snapshot, error)
	// Models returns the available color models.
	Models(ctx context.Context) ([]string, error)
	// Families returns the available quantization families.
	Families(ctx context.Context) ([]string, error)

	SetModel(ctx context.Context, model string) error
	SetDefaultZ(ctx context.Context, z int) error
	SetDefaultT(ctx context.Context, t int) error
	SetQuantumStrategy(ctx context.Context, bitResolution int) error
	SetCodomainInterval(ctx context.Context, start, end int) error
	SetQuantizationMap(ctx context.Context, w int, family string, coefficient float64, noiseReduction bool) error
	SetChannelWindow(ctx context.Context, w int, start, end float64) error
	SetRGBA(ctx context.Context, w int, rgba [4]uint8) error
	SetActive(ctx context.Context, w int, active bool) error
	// SetCompressionLevel sets the quality of compressed renders, in (0, 1].
	SetCompressionLevel(ctx context.Context, quality float64) error

	// RenderCompressed renders key as compressed bytes.
	RenderCompressed(ctx context.Context, key plane.Key) ([]byte, error)
	// RenderPacked renders key as packed 0xAARRGGBB samples.
	RenderPacked(ctx context.Context, key plane.Key) ([]int32, error)
	// RenderProjectedCompressed renders an XY projection as compressed bytes.
	RenderProjectedCompressed(ctx context.Context, pr plane.Projection) ([]byte, error)
	// RenderProjectedPacked renders an XY projection as packed samples.
	RenderProjectedPacked(ctx context.Context, pr plane.Projection) ([]int32, error)

	// ResetDefaultsNoSave restores default settings without persisting them.
	ResetDefaultsNoSave(ctx context.Context) error
	// SaveCurrentSettings persists the current settings.
	SaveCurrentSettings(ctx context.Context) error
	// Close releases the engine. Further calls fail with ErrClosed.
	Close(ctx context.Context) error
}

// Compression is the transport mode of rendered planes.
type Compression int

const (
	// Uncompressed planes travel as packed samples.
	Uncompressed Compression = iota
	// Medium compression trades little quality for size.
	Medium
	// Low compression favors size over quality.
	Low
)

// String returns the string representation of the compression mode.
func (c Compression) String() string {
	switch c {
	case Uncompressed:
		return "none"
	case Medium:
		return "medium"
	case Low:
		return "low"
	default:
		return "unknown"
	}
}

// Quality returns the transport quality of the mode.
func (c Compression) Quality() float64 {
	switch c {
	case Medium:
		return 0.85
	case Low:
		return 0.5
	default:
		return 1.0
	}
}

// IsCompressed reports whether planes travel as compressed bytes.
func (c Compression) IsCompressed() bool {
	return c != Uncompressed
}

// ParseCompression parses "none", "medium" or "low".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none", "uncompressed":
		return Uncompressed, nil
	case "medium":
		return Medium, nil
	case "low":
		return Low, nil
	default:
		return Uncompressed, fmt.Errorf("engine: unknown compression %q", s)
	}
}
