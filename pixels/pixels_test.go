package pixels

import (
	"errors"
	"testing"
)

func TestSet_Compatible(t *testing.T) {
	base := Set{SizeX: 512, SizeY: 512, SizeZ: 1, SizeT: 1, SizeC: 3, Type: TypeUint8}

	tests := []struct {
		name  string
		other Set
		want  bool
	}{
		{"identical", base, true},
		{"different z and t", Set{SizeX: 512, SizeY: 512, SizeZ: 9, SizeT: 4, SizeC: 3, Type: TypeUint8}, true},
		{"channel count", Set{SizeX: 512, SizeY: 512, SizeZ: 1, SizeT: 1, SizeC: 2, Type: TypeUint8}, false},
		{"x size", Set{SizeX: 256, SizeY: 512, SizeZ: 1, SizeT: 1, SizeC: 3, Type: TypeUint8}, false},
		{"y size", Set{SizeX: 512, SizeY: 511, SizeZ: 1, SizeT: 1, SizeC: 3, Type: TypeUint8}, false},
		{"numeric type", Set{SizeX: 512, SizeY: 512, SizeZ: 1, SizeT: 1, SizeC: 3, Type: TypeUint16}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Compatible(tt.other); got != tt.want {
				t.Errorf("Compatible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	tests := []struct {
		typ        string
		lo, hi     float64
		wantSigned bool
	}{
		{TypeUint8, 0, 255, false},
		{TypeInt8, -128, 127, true},
		{TypeUint16, 0, 65535, false},
		{TypeInt16, -32768, 32767, true},
		{TypeBit, 0, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			lo, hi, err := Bounds(tt.typ)
			if err != nil {
				t.Fatalf("Bounds() error = %v", err)
			}
			if lo != tt.lo || hi != tt.hi {
				t.Errorf("Bounds() = (%v, %v), want (%v, %v)", lo, hi, tt.lo, tt.hi)
			}
			if Signed(tt.typ) != tt.wantSigned {
				t.Errorf("Signed() = %v, want %v", Signed(tt.typ), tt.wantSigned)
			}
		})
	}

	if _, _, err := Bounds("complex"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("Bounds(complex) error = %v, want ErrUnknownType", err)
	}
}

func TestSet_Validate(t *testing.T) {
	good := Set{SizeX: 4, SizeY: 4, SizeZ: 1, SizeT: 1, SizeC: 1, Type: TypeUint8}
	if err := good.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	bad := good
	bad.SizeZ = 0
	if err := bad.Validate(); err == nil {
		t.Error("Validate() with zero Z should fail")
	}

	bad = good
	bad.Type = "nope"
	if err := bad.Validate(); !errors.Is(err, ErrUnknownType) {
		t.Errorf("Validate() = %v, want ErrUnknownType", err)
	}
}
