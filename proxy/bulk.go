package proxy

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/jonwraymond/rndsync/engine"
	"github.com/jonwraymond/rndsync/settings"
)

// settingsMutations returns the mutations that make the engine match s.
func settingsMutations(s settings.Snapshot) []mutation {
	ms := []mutation{
		setModel(s.Model),
		setDefaultZ(s.DefaultZ),
		setDefaultT(s.DefaultT),
		setBitResolution(s.BitResolution),
		setCodomainInterval(s.CodomainStart, s.CodomainEnd),
	}
	for w, c := range s.Channels {
		ms = append(ms, channelMutations(w, c)...)
	}
	return ms
}

func mappingMutations(w int, c settings.ChannelBinding) []mutation {
	return []mutation{
		setQuantizationMap(w, c.Family, c.CurveCoefficient, c.NoiseReduction),
		setChannelWindow(w, c.InputStart, c.InputEnd),
	}
}

func channelMutations(w int, c settings.ChannelBinding) []mutation {
	return append(mappingMutations(w, c),
		setRGBA(w, c.RGBA),
		setActive(w, c.Active),
	)
}

// checkSnapshot validates s against the pixel set before any remote call.
func (p *Proxy) checkSnapshot(s *settings.Snapshot) error {
	if err := s.Validate(p.pixels.SizeC); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if s.DefaultZ < 0 || s.DefaultZ >= p.pixels.SizeZ {
		return fmt.Errorf("%w: default z %d not in [0, %d)", ErrInvalidArgument, s.DefaultZ, p.pixels.SizeZ)
	}
	if s.DefaultT < 0 || s.DefaultT >= p.pixels.SizeT {
		return fmt.Errorf("%w: default t %d not in [0, %d)", ErrInvalidArgument, s.DefaultT, p.pixels.SizeT)
	}
	return nil
}

// ResetSettings applies every field of s, one mutation at a time. s must
// have one channel per channel of the pixel set; otherwise nothing is
// changed. A failure stops the sequence and leaves earlier fields applied.
func (p *Proxy) ResetSettings(ctx context.Context, s settings.Snapshot) error {
	if err := p.checkSnapshot(&s); err != nil {
		return err
	}
	return p.mutateAll(ctx, settingsMutations(s.Copy()))
}

// ResetMappingSettings applies the quantization fields of s: bit resolution,
// codomain and, per channel, the curve and input window. Colors, active
// flags, model and default plane are left alone.
func (p *Proxy) ResetMappingSettings(ctx context.Context, s settings.Snapshot) error {
	if err := p.checkSnapshot(&s); err != nil {
		return err
	}
	ms := []mutation{
		setBitResolution(s.BitResolution),
		setCodomainInterval(s.CodomainStart, s.CodomainEnd),
	}
	for w, c := range s.Channels {
		ms = append(ms, mappingMutations(w, c)...)
	}
	return p.mutateAll(ctx, ms)
}

// CopyRenderingSettings copies channel bindings from src. channels maps a
// destination channel to a source channel of src; nil copies channel i to
// channel i and requires equal channel counts. Only the curve, input window,
// color and active flag are copied.
func (p *Proxy) CopyRenderingSettings(ctx context.Context, src settings.Snapshot, channels map[int]int) error {
	if channels == nil {
		if len(src.Channels) != p.pixels.SizeC {
			return fmt.Errorf("%w: %w: have %d, want %d", ErrInvalidArgument,
				settings.ErrChannelCount, len(src.Channels), p.pixels.SizeC)
		}
		channels = make(map[int]int, len(src.Channels))
		for w := range src.Channels {
			channels[w] = w
		}
	}

	var ms []mutation
	for _, dst := range slices.Sorted(maps.Keys(channels)) {
		from := channels[dst]
		if err := p.checkIndex(dst); err != nil {
			return err
		}
		if from < 0 || from >= len(src.Channels) {
			return fmt.Errorf("%w: source %d not in [0, %d)", ErrIndexOutOfRange, from, len(src.Channels))
		}
		ms = append(ms, channelMutations(dst, src.Channels[from])...)
	}
	return p.mutateAll(ctx, ms)
}

// ResetDefaults restores the engine's default settings without saving them
// and reloads the snapshot from the engine.
func (p *Proxy) ResetDefaults(ctx context.Context) error {
	if err := p.begin(ctx); err != nil {
		return err
	}
	defer p.planes.Invalidate(ctx)

	if err := p.call(ctx, "reset_defaults", "default settings", func(ctx context.Context, eng engine.Engine) error {
		return eng.ResetDefaultsNoSave(ctx)
	}); err != nil {
		return err
	}
	current, err := p.fetchSettings(ctx)
	if err != nil {
		return err
	}
	p.rnd = current
	return nil
}

// SaveCurrentSettings persists the engine's current settings and returns a
// copy of the local snapshot.
func (p *Proxy) SaveCurrentSettings(ctx context.Context) (settings.Snapshot, error) {
	if err := p.begin(ctx); err != nil {
		return settings.Snapshot{}, err
	}
	if err := p.call(ctx, "save_settings", "current settings", func(ctx context.Context, eng engine.Engine) error {
		return eng.SaveCurrentSettings(ctx)
	}); err != nil {
		return settings.Snapshot{}, err
	}
	return p.rnd.Copy(), nil
}
