package engine

import (
	"math"

	"github.com/jonwraymond/rndsync/settings"
)

// noiseCut is the fraction of the window clipped at each end when noise
// reduction is on.
const noiseCut = 1.0 / 64

// quantizer maps raw samples of one channel into the codomain.
type quantizer struct {
	start, end     float64
	family         string
	k              float64
	noiseReduction bool
	levels         float64
	cdStart, cdEnd float64
	rgba           [4]uint8
}

func newQuantizer(c settings.ChannelBinding, s *settings.Snapshot) quantizer {
	return quantizer{
		start:          c.InputStart,
		end:            c.InputEnd,
		family:         c.Family,
		k:              c.CurveCoefficient,
		noiseReduction: c.NoiseReduction,
		levels:         float64(int(1)<<s.BitResolution - 1),
		cdStart:        float64(s.CodomainStart),
		cdEnd:          float64(s.CodomainEnd),
		rgba:           c.RGBA,
	}
}

// quantize maps v to an intensity in [0, 255].
func (q quantizer) quantize(v float64) uint8 {
	var x float64
	switch {
	case v <= q.start:
		x = 0
	case v >= q.end:
		x = 1
	default:
		x = (v - q.start) / (q.end - q.start)
	}

	if q.noiseReduction {
		switch {
		case x < noiseCut:
			x = 0
		case x > 1-noiseCut:
			x = 1
		}
	}

	y := curve(q.family, q.k, x)
	if q.levels > 0 {
		y = math.Round(y*q.levels) / q.levels
	}

	out := q.cdStart + y*(q.cdEnd-q.cdStart)
	return clampByte(out)
}

// curve applies a quantization family to x in [0, 1]. The result is in [0, 1].
func curve(family string, k float64, x float64) float64 {
	switch family {
	case settings.FamilyPolynomial:
		if k <= 0 {
			return x
		}
		return math.Pow(x, k)
	case settings.FamilyExponential:
		if k == 0 {
			return x
		}
		return math.Expm1(k*x) / math.Expm1(k)
	case settings.FamilyLogarithmic:
		if k <= 0 {
			return x
		}
		return math.Log1p(k*x) / math.Log1p(k)
	default:
		return x
	}
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(math.Round(v))
	}
}
