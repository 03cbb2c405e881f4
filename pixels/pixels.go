package pixels

import (
	"errors"
	"fmt"
	"math"
)

// Numeric type names, as reported by the remote engine.
const (
	TypeBit    = "bit"
	TypeInt8   = "int8"
	TypeUint8  = "uint8"
	TypeInt16  = "int16"
	TypeUint16 = "uint16"
	TypeInt32  = "int32"
	TypeUint32 = "uint32"
	TypeFloat  = "float"
	TypeDouble = "double"
)

// ErrUnknownType indicates a numeric type name that is not supported.
var ErrUnknownType = errors.New("pixels: unknown numeric type")

// Set describes a pixel set. It is never mutated after construction.
type Set struct {
	ID    int64
	SizeX int
	SizeY int
	SizeZ int
	SizeT int
	SizeC int
	Type  string
}

// Validate checks that every extent is positive and the type is known.
func (s Set) Validate() error {
	if s.SizeX <= 0 || s.SizeY <= 0 || s.SizeZ <= 0 || s.SizeT <= 0 || s.SizeC <= 0 {
		return fmt.Errorf("pixels: non-positive dimension in %dx%dx%dx%dx%d",
			s.SizeX, s.SizeY, s.SizeZ, s.SizeT, s.SizeC)
	}
	if _, _, err := Bounds(s.Type); err != nil {
		return err
	}
	return nil
}

// PlaneSize returns the number of samples in one XY plane.
func (s Set) PlaneSize() int {
	return s.SizeX * s.SizeY
}

// Compatible reports whether other can be rendered with settings made for s:
// same channel count, same X and Y extents, same numeric type.
func (s Set) Compatible(other Set) bool {
	return s.SizeC == other.SizeC &&
		s.SizeX == other.SizeX &&
		s.SizeY == other.SizeY &&
		s.Type == other.Type
}

// Signed reports whether the numeric type can hold negative values.
func Signed(typ string) bool {
	switch typ {
	case TypeInt8, TypeInt16, TypeInt32, TypeFloat, TypeDouble:
		return true
	}
	return false
}

// Bounds returns the smallest and largest value representable by typ.
func Bounds(typ string) (lower, upper float64, err error) {
	switch typ {
	case TypeBit:
		return 0, 1, nil
	case TypeInt8:
		return math.MinInt8, math.MaxInt8, nil
	case TypeUint8:
		return 0, math.MaxUint8, nil
	case TypeInt16:
		return math.MinInt16, math.MaxInt16, nil
	case TypeUint16:
		return 0, math.MaxUint16, nil
	case TypeInt32:
		return math.MinInt32, math.MaxInt32, nil
	case TypeUint32:
		return 0, math.MaxUint32, nil
	case TypeFloat:
		return -math.MaxFloat32, math.MaxFloat32, nil
	case TypeDouble:
		return -math.MaxFloat64, math.MaxFloat64, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
}
