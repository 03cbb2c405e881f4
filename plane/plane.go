package plane

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/rndsync/pixels"
)

// ErrInvalidKey indicates a key with an unknown axis or a negative coordinate.
var ErrInvalidKey = errors.New("plane: key is invalid")

// Axis is the orientation of a plane.
type Axis int

const (
	// XY planes are indexed by z and span width x height.
	XY Axis = iota
	// XZ planes are indexed by y and span width x depth.
	XZ
	// ZY planes are indexed by x and span depth x height.
	ZY
)

// String returns the string representation of the axis.
func (a Axis) String() string {
	switch a {
	case XY:
		return "XY"
	case XZ:
		return "XZ"
	case ZY:
		return "ZY"
	default:
		return "unknown"
	}
}

// Key identifies a plane. Slice is the position along the axis orthogonal to
// the plane (z for XY, y for XZ, x for ZY); T is the timepoint.
type Key struct {
	Axis  Axis
	Slice int
	T     int
}

// XYKey returns the key of the XY plane at (z, t).
func XYKey(z, t int) Key {
	return Key{Axis: XY, Slice: z, T: t}
}

// String returns the string representation of the key.
func (k Key) String() string {
	return fmt.Sprintf("%s[%d,%d]", k.Axis, k.Slice, k.T)
}

// Validate checks the key against the extents of p.
func (k Key) Validate(p pixels.Set) error {
	if k.Slice < 0 || k.T < 0 {
		return fmt.Errorf("%w: %s has a negative coordinate", ErrInvalidKey, k)
	}
	var limit int
	switch k.Axis {
	case XY:
		limit = p.SizeZ
	case XZ:
		limit = p.SizeY
	case ZY:
		limit = p.SizeX
	default:
		return fmt.Errorf("%w: axis %d", ErrInvalidKey, int(k.Axis))
	}
	if k.Slice >= limit || k.T >= p.SizeT {
		return fmt.Errorf("%w: %s outside %dx%dx%d, t=%d", ErrInvalidKey, k,
			p.SizeX, p.SizeY, p.SizeZ, p.SizeT)
	}
	return nil
}

// Dims returns the width and height of a plane with the given axis.
func Dims(a Axis, p pixels.Set) (width, height int) {
	switch a {
	case XZ:
		return p.SizeX, p.SizeZ
	case ZY:
		return p.SizeZ, p.SizeY
	default:
		return p.SizeX, p.SizeY
	}
}
