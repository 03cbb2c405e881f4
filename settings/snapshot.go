package settings

import "fmt"

// Snapshot is the aggregate of all rendering settings for one pixel set.
type Snapshot struct {
	Signed        bool             `yaml:"signed"`
	DefaultZ      int              `yaml:"defaultZ"`
	DefaultT      int              `yaml:"defaultT"`
	BitResolution int              `yaml:"bitResolution"`
	Model         string           `yaml:"model"`
	CodomainStart int              `yaml:"codomainStart"`
	CodomainEnd   int              `yaml:"codomainEnd"`
	Channels      []ChannelBinding `yaml:"channels"`
}

// Copy returns a deep copy that shares no mutable state with s.
func (s *Snapshot) Copy() Snapshot {
	c := *s
	if s.Channels != nil {
		c.Channels = make([]ChannelBinding, len(s.Channels))
		copy(c.Channels, s.Channels)
	}
	return c
}

// Validate checks the invariants that do not need the engine.
func (s *Snapshot) Validate(channels int) error {
	if len(s.Channels) != channels {
		return fmt.Errorf("%w: have %d, want %d", ErrChannelCount, len(s.Channels), channels)
	}
	if err := ValidateBitResolution(s.BitResolution); err != nil {
		return err
	}
	return ValidateCodomain(s.CodomainStart, s.CodomainEnd)
}

// ValidateBitResolution checks that v is in [MinBitResolution, MaxBitResolution].
func ValidateBitResolution(v int) error {
	if v < MinBitResolution || v > MaxBitResolution {
		return fmt.Errorf("%w: got %d", ErrInvalidBitResolution, v)
	}
	return nil
}

// ValidateCodomain checks that start does not exceed end.
func ValidateCodomain(start, end int) error {
	if start > end {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidCodomain, start, end)
	}
	return nil
}

// Channel returns the binding for channel w.
func (s *Snapshot) Channel(w int) (ChannelBinding, error) {
	if err := s.checkIndex(w); err != nil {
		return ChannelBinding{}, err
	}
	return s.Channels[w], nil
}

func (s *Snapshot) checkIndex(w int) error {
	if w < 0 || w >= len(s.Channels) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, w, len(s.Channels))
	}
	return nil
}

// SetChannelWindow sets the input window of channel w. The window itself is
// not validated.
func (s *Snapshot) SetChannelWindow(w int, start, end float64) error {
	if err := s.checkIndex(w); err != nil {
		return err
	}
	s.Channels[w].InputStart = start
	s.Channels[w].InputEnd = end
	return nil
}

// SetRGBA sets the display color of channel w.
func (s *Snapshot) SetRGBA(w int, rgba [4]uint8) error {
	if err := s.checkIndex(w); err != nil {
		return err
	}
	s.Channels[w].RGBA = rgba
	return nil
}

// SetActive turns channel w on or off.
func (s *Snapshot) SetActive(w int, active bool) error {
	if err := s.checkIndex(w); err != nil {
		return err
	}
	s.Channels[w].Active = active
	return nil
}

// SetQuantizationMap sets the curve of channel w.
func (s *Snapshot) SetQuantizationMap(w int, family string, coefficient float64, noiseReduction bool) error {
	if err := s.checkIndex(w); err != nil {
		return err
	}
	s.Channels[w].Family = family
	s.Channels[w].CurveCoefficient = coefficient
	s.Channels[w].NoiseReduction = noiseReduction
	return nil
}

// SetBounds records the numeric type bounds of channel w.
func (s *Snapshot) SetBounds(w int, lower, upper float64) error {
	if err := s.checkIndex(w); err != nil {
		return err
	}
	s.Channels[w].LowerBound = lower
	s.Channels[w].UpperBound = upper
	return nil
}

// SetBitResolution sets the bit resolution after checking its range.
func (s *Snapshot) SetBitResolution(v int) error {
	if err := ValidateBitResolution(v); err != nil {
		return err
	}
	s.BitResolution = v
	return nil
}

// SetCodomainInterval sets the output interval after checking its order.
func (s *Snapshot) SetCodomainInterval(start, end int) error {
	if err := ValidateCodomain(start, end); err != nil {
		return err
	}
	s.CodomainStart = start
	s.CodomainEnd = end
	return nil
}

// ActiveChannels returns the indexes of the active channels in order.
func (s *Snapshot) ActiveChannels() []int {
	var active []int
	for i, c := range s.Channels {
		if c.Active {
			active = append(active, i)
		}
	}
	return active
}
