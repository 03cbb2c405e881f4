package engine

import (
	"math"

	"github.com/jonwraymond/rndsync/pixels"
)

// Source returns the raw sample of channel c at (x, y, z, t).
type Source func(c, x, y, z, t int) float64

// Synthetic returns a deterministic Source for p. Samples form diagonal
// gradients that shift with z, t and the channel, scaled into the type's
// range and capped at 4095 so windows stay readable for wide types.
func Synthetic(p pixels.Set) Source {
	lower, upper, err := pixels.Bounds(p.Type)
	if err != nil {
		lower, upper = 0, math.MaxUint8
	}
	if lower < 0 {
		lower = 0
	}
	if upper > 4095 {
		upper = 4095
	}
	span := upper - lower
	return func(c, x, y, z, t int) float64 {
		phase := (x + 2*y + 7*z + 13*t + 31*c) % 256
		return lower + span*float64(phase)/255
	}
}
