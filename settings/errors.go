package settings

import "errors"

var (
	// ErrIndexOutOfRange indicates a channel index outside [0, C).
	ErrIndexOutOfRange = errors.New("settings: channel index out of range")

	// ErrInvalidBitResolution indicates a bit resolution outside [1, 8].
	ErrInvalidBitResolution = errors.New("settings: bit resolution must be between 1 and 8")

	// ErrInvalidCodomain indicates a codomain whose start exceeds its end.
	ErrInvalidCodomain = errors.New("settings: codomain start exceeds end")

	// ErrChannelCount indicates a snapshot with the wrong number of channels.
	ErrChannelCount = errors.New("settings: channel count mismatch")
)

// Bit resolution limits.
const (
	MinBitResolution = 1
	MaxBitResolution = 8
)
