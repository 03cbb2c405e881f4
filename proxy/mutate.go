package proxy

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/rndsync/engine"
	"github.com/jonwraymond/rndsync/settings"
)

// mutation is one single-parameter settings change: the engine call and the
// matching update of the local snapshot.
type mutation struct {
	op     string
	param  string
	remote func(ctx context.Context, eng engine.Engine) error
	mirror func(s *settings.Snapshot)
}

// mutate applies m. The snapshot is updated and the plane cache cleared
// whether or not the engine accepted the value; only an expired session
// skips both.
func (p *Proxy) mutate(ctx context.Context, m mutation) error {
	if err := p.begin(ctx); err != nil {
		return err
	}
	err := p.call(ctx, m.op, m.param, m.remote)
	if errors.Is(err, ErrSessionExpired) {
		return err
	}
	m.mirror(&p.rnd)
	p.planes.Invalidate(ctx)
	return err
}

// mutateAll applies ms in order and stops at the first failure. Earlier
// mutations are not rolled back.
func (p *Proxy) mutateAll(ctx context.Context, ms []mutation) error {
	for _, m := range ms {
		if err := p.mutate(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func setModel(model string) mutation {
	return mutation{
		op:    "set_model",
		param: "model",
		remote: func(ctx context.Context, eng engine.Engine) error {
			return eng.SetModel(ctx, model)
		},
		mirror: func(s *settings.Snapshot) { s.Model = model },
	}
}

func setDefaultZ(z int) mutation {
	return mutation{
		op:    "set_default_z",
		param: "default Z",
		remote: func(ctx context.Context, eng engine.Engine) error {
			return eng.SetDefaultZ(ctx, z)
		},
		mirror: func(s *settings.Snapshot) { s.DefaultZ = z },
	}
}

func setDefaultT(t int) mutation {
	return mutation{
		op:    "set_default_t",
		param: "default T",
		remote: func(ctx context.Context, eng engine.Engine) error {
			return eng.SetDefaultT(ctx, t)
		},
		mirror: func(s *settings.Snapshot) { s.DefaultT = t },
	}
}

func setBitResolution(v int) mutation {
	return mutation{
		op:    "set_quantum_strategy",
		param: "bit resolution",
		remote: func(ctx context.Context, eng engine.Engine) error {
			return eng.SetQuantumStrategy(ctx, v)
		},
		mirror: func(s *settings.Snapshot) { s.BitResolution = v },
	}
}

func setCodomainInterval(start, end int) mutation {
	return mutation{
		op:    "set_codomain_interval",
		param: "codomain interval",
		remote: func(ctx context.Context, eng engine.Engine) error {
			return eng.SetCodomainInterval(ctx, start, end)
		},
		mirror: func(s *settings.Snapshot) {
			s.CodomainStart = start
			s.CodomainEnd = end
		},
	}
}

func setQuantizationMap(w int, family string, coefficient float64, noiseReduction bool) mutation {
	return mutation{
		op:    "set_quantization_map",
		param: fmt.Sprintf("quantization map for channel %d", w),
		remote: func(ctx context.Context, eng engine.Engine) error {
			return eng.SetQuantizationMap(ctx, w, family, coefficient, noiseReduction)
		},
		mirror: func(s *settings.Snapshot) {
			s.Channels[w].Family = family
			s.Channels[w].CurveCoefficient = coefficient
			s.Channels[w].NoiseReduction = noiseReduction
		},
	}
}

func setChannelWindow(w int, start, end float64) mutation {
	return mutation{
		op:    "set_channel_window",
		param: fmt.Sprintf("input window for channel %d", w),
		remote: func(ctx context.Context, eng engine.Engine) error {
			return eng.SetChannelWindow(ctx, w, start, end)
		},
		mirror: func(s *settings.Snapshot) {
			s.Channels[w].InputStart = start
			s.Channels[w].InputEnd = end
		},
	}
}

func setRGBA(w int, rgba [4]uint8) mutation {
	return mutation{
		op:    "set_rgba",
		param: fmt.Sprintf("color for channel %d", w),
		remote: func(ctx context.Context, eng engine.Engine) error {
			return eng.SetRGBA(ctx, w, rgba)
		},
		mirror: func(s *settings.Snapshot) { s.Channels[w].RGBA = rgba },
	}
}

func setActive(w int, active bool) mutation {
	return mutation{
		op:    "set_active",
		param: fmt.Sprintf("active flag for channel %d", w),
		remote: func(ctx context.Context, eng engine.Engine) error {
			return eng.SetActive(ctx, w, active)
		},
		mirror: func(s *settings.Snapshot) { s.Channels[w].Active = active },
	}
}

// SetModel sets the color model.
func (p *Proxy) SetModel(ctx context.Context, model string) error {
	return p.mutate(ctx, setModel(model))
}

// SetDefaultZ sets the default z-section.
func (p *Proxy) SetDefaultZ(ctx context.Context, z int) error {
	if z < 0 || z >= p.pixels.SizeZ {
		return fmt.Errorf("%w: z %d not in [0, %d)", ErrInvalidArgument, z, p.pixels.SizeZ)
	}
	return p.mutate(ctx, setDefaultZ(z))
}

// SetDefaultT sets the default timepoint.
func (p *Proxy) SetDefaultT(ctx context.Context, t int) error {
	if t < 0 || t >= p.pixels.SizeT {
		return fmt.Errorf("%w: t %d not in [0, %d)", ErrInvalidArgument, t, p.pixels.SizeT)
	}
	return p.mutate(ctx, setDefaultT(t))
}

// SetBitResolution sets the number of bits per quantized sample. Values
// outside [1, 8] fail with ErrInvalidArgument without reaching the engine.
func (p *Proxy) SetBitResolution(ctx context.Context, v int) error {
	if err := settings.ValidateBitResolution(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return p.mutate(ctx, setBitResolution(v))
}

// SetCodomainInterval sets the output interval of quantization.
func (p *Proxy) SetCodomainInterval(ctx context.Context, start, end int) error {
	if err := settings.ValidateCodomain(start, end); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return p.mutate(ctx, setCodomainInterval(start, end))
}

// SetQuantizationMap sets the curve family, coefficient and noise reduction
// of channel w.
func (p *Proxy) SetQuantizationMap(ctx context.Context, w int, family string, coefficient float64, noiseReduction bool) error {
	if err := p.checkIndex(w); err != nil {
		return err
	}
	return p.mutate(ctx, setQuantizationMap(w, family, coefficient, noiseReduction))
}

// SetChannelWindow sets the input window of channel w. The order of start
// and end is left to the engine.
func (p *Proxy) SetChannelWindow(ctx context.Context, w int, start, end float64) error {
	if err := p.checkIndex(w); err != nil {
		return err
	}
	return p.mutate(ctx, setChannelWindow(w, start, end))
}

// SetRGBA sets the display color of channel w.
func (p *Proxy) SetRGBA(ctx context.Context, w int, rgba [4]uint8) error {
	if err := p.checkIndex(w); err != nil {
		return err
	}
	return p.mutate(ctx, setRGBA(w, rgba))
}

// SetActive turns channel w on or off.
func (p *Proxy) SetActive(ctx context.Context, w int, active bool) error {
	if err := p.checkIndex(w); err != nil {
		return err
	}
	return p.mutate(ctx, setActive(w, active))
}

// Model returns the color model.
func (p *Proxy) Model() string {
	return p.rnd.Model
}

// DefaultZ returns the default z-section.
func (p *Proxy) DefaultZ() int {
	return p.rnd.DefaultZ
}

// DefaultT returns the default timepoint.
func (p *Proxy) DefaultT() int {
	return p.rnd.DefaultT
}

// BitResolution returns the number of bits per quantized sample.
func (p *Proxy) BitResolution() int {
	return p.rnd.BitResolution
}

// CodomainInterval returns the output interval of quantization.
func (p *Proxy) CodomainInterval() (start, end int) {
	return p.rnd.CodomainStart, p.rnd.CodomainEnd
}

// Signed reports whether the pixel type is signed.
func (p *Proxy) Signed() bool {
	return p.rnd.Signed
}

// Channel returns a copy of the binding of channel w.
func (p *Proxy) Channel(w int) (settings.ChannelBinding, error) {
	if err := p.checkIndex(w); err != nil {
		return settings.ChannelBinding{}, err
	}
	return p.rnd.Channels[w], nil
}

// ChannelWindow returns the input window of channel w.
func (p *Proxy) ChannelWindow(w int) (start, end float64, err error) {
	c, err := p.Channel(w)
	return c.InputStart, c.InputEnd, err
}

// ChannelRGBA returns the display color of channel w.
func (p *Proxy) ChannelRGBA(w int) ([4]uint8, error) {
	c, err := p.Channel(w)
	return c.RGBA, err
}

// IsActive reports whether channel w is on.
func (p *Proxy) IsActive(w int) (bool, error) {
	c, err := p.Channel(w)
	return c.Active, err
}

// ActiveChannels returns the indexes of the active channels in order.
func (p *Proxy) ActiveChannels() []int {
	return p.rnd.ActiveChannels()
}

// IsChannelRed reports whether channel w is mapped to red. Out of range
// indexes report false.
func (p *Proxy) IsChannelRed(w int) bool {
	c, err := p.Channel(w)
	return err == nil && c.IsRed()
}

// IsChannelGreen reports whether channel w is mapped to green.
func (p *Proxy) IsChannelGreen(w int) bool {
	c, err := p.Channel(w)
	return err == nil && c.IsGreen()
}

// IsChannelBlue reports whether channel w is mapped to blue.
func (p *Proxy) IsChannelBlue(w int) bool {
	c, err := p.Channel(w)
	return err == nil && c.IsBlue()
}

// HasActiveChannelRed reports whether an active channel is mapped to red.
func (p *Proxy) HasActiveChannelRed() bool {
	return p.hasActive(settings.ChannelBinding.IsRed)
}

// HasActiveChannelGreen reports whether an active channel is mapped to green.
func (p *Proxy) HasActiveChannelGreen() bool {
	return p.hasActive(settings.ChannelBinding.IsGreen)
}

// HasActiveChannelBlue reports whether an active channel is mapped to blue.
func (p *Proxy) HasActiveChannelBlue() bool {
	return p.hasActive(settings.ChannelBinding.IsBlue)
}

func (p *Proxy) hasActive(is func(settings.ChannelBinding) bool) bool {
	for _, c := range p.rnd.Channels {
		if c.Active && is(c) {
			return true
		}
	}
	return false
}

// IsMappedImageRGB reports whether channels, taken together, cover red,
// green and blue.
func (p *Proxy) IsMappedImageRGB(channels []int) bool {
	var r, g, b bool
	for _, w := range channels {
		r = r || p.IsChannelRed(w)
		g = g || p.IsChannelGreen(w)
		b = b || p.IsChannelBlue(w)
	}
	return r && g && b
}
