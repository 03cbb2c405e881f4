package plane

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/rndsync/pixels"
)

// ErrInvalidProjection indicates a projection over an empty or out of range
// z interval, or with a non-positive step.
var ErrInvalidProjection = errors.New("plane: projection is invalid")

// Algorithm combines the samples of several z-sections into one.
type Algorithm int

const (
	// MaximumIntensity keeps the brightest sample.
	MaximumIntensity Algorithm = iota
	// MeanIntensity averages the samples.
	MeanIntensity
	// SumIntensity adds the samples, saturating at the type's upper bound.
	SumIntensity
)

// String returns the string representation of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case MaximumIntensity:
		return "maximum"
	case MeanIntensity:
		return "mean"
	case SumIntensity:
		return "sum"
	default:
		return "unknown"
	}
}

// Projection describes an XY projection over the z interval [StartZ, EndZ]
// at timepoint T, sampling every Step sections.
type Projection struct {
	Algorithm Algorithm
	StartZ    int
	EndZ      int
	Step      int
	T         int
}

// Validate checks the projection against the extents of p.
func (pr Projection) Validate(p pixels.Set) error {
	switch {
	case pr.Step <= 0:
		return fmt.Errorf("%w: step %d", ErrInvalidProjection, pr.Step)
	case pr.StartZ < 0 || pr.EndZ >= p.SizeZ || pr.StartZ > pr.EndZ:
		return fmt.Errorf("%w: z range [%d,%d] with %d sections", ErrInvalidProjection, pr.StartZ, pr.EndZ, p.SizeZ)
	case pr.T < 0 || pr.T >= p.SizeT:
		return fmt.Errorf("%w: timepoint %d", ErrInvalidProjection, pr.T)
	case pr.Algorithm < MaximumIntensity || pr.Algorithm > SumIntensity:
		return fmt.Errorf("%w: algorithm %d", ErrInvalidProjection, int(pr.Algorithm))
	}
	return nil
}
