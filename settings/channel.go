package settings

// Quantization families understood by the engine.
const (
	FamilyLinear      = "linear"
	FamilyPolynomial  = "polynomial"
	FamilyExponential = "exponential"
	FamilyLogarithmic = "logarithmic"
)

// Color models understood by the engine.
const (
	ModelGreyscale = "greyscale"
	ModelRGB       = "rgb"
)

// ChannelBinding is the complete set of rendering parameters for one channel.
//
// LowerBound and UpperBound derive from the numeric type of the pixels. They
// are refreshed from the engine and never persisted.
type ChannelBinding struct {
	Active           bool     `yaml:"active"`
	InputStart       float64  `yaml:"inputStart"`
	InputEnd         float64  `yaml:"inputEnd"`
	Family           string   `yaml:"family"`
	CurveCoefficient float64  `yaml:"curveCoefficient"`
	NoiseReduction   bool     `yaml:"noiseReduction"`
	RGBA             [4]uint8 `yaml:"rgba"`
	LowerBound       float64  `yaml:"-"`
	UpperBound       float64  `yaml:"-"`
}

// IsRed reports whether the channel is mapped to pure red.
func (c ChannelBinding) IsRed() bool {
	return c.RGBA[0] == 255 && c.RGBA[1] == 0 && c.RGBA[2] == 0
}

// IsGreen reports whether the channel is mapped to pure green.
func (c ChannelBinding) IsGreen() bool {
	return c.RGBA[0] == 0 && c.RGBA[1] == 255 && c.RGBA[2] == 0
}

// IsBlue reports whether the channel is mapped to pure blue.
func (c ChannelBinding) IsBlue() bool {
	return c.RGBA[0] == 0 && c.RGBA[1] == 0 && c.RGBA[2] == 255
}
