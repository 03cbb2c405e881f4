package engine

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/jonwraymond/rndsync/pixels"
	"github.com/jonwraymond/rndsync/plane"
	"github.com/jonwraymond/rndsync/raster"
	"github.com/jonwraymond/rndsync/settings"
)

// LocalConfig configures a Local engine.
type LocalConfig struct {
	// Source provides raw samples. Default: Synthetic(pixels).
	Source Source

	// Saved, when set, is used instead of computed defaults as the initial
	// settings. It must match the channel count of the pixel set.
	Saved *settings.Snapshot
}

// Local is an in-process Engine over a Source.
type Local struct {
	mu      sync.Mutex
	pixels  pixels.Set
	source  Source
	current settings.Snapshot
	saved   *settings.Snapshot
	quality float64
	closed  bool
}

// NewLocal creates a Local engine for p.
func NewLocal(p pixels.Set, cfg LocalConfig) (*Local, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if cfg.Source == nil {
		cfg.Source = Synthetic(p)
	}

	l := &Local{pixels: p, source: cfg.Source, quality: 1.0}
	defaults, err := l.defaults()
	if err != nil {
		return nil, err
	}
	l.current = defaults

	if cfg.Saved != nil {
		if err := cfg.Saved.Validate(p.SizeC); err != nil {
			return nil, fmt.Errorf("engine: saved settings: %w", err)
		}
		saved := cfg.Saved.Copy()
		for w := range saved.Channels {
			saved.Channels[w].LowerBound = defaults.Channels[w].LowerBound
			saved.Channels[w].UpperBound = defaults.Channels[w].UpperBound
		}
		l.current = saved
		l.saved = &saved
	}
	return l, nil
}

// Pixels returns the pixel set rendered by l.
func (l *Local) Pixels() pixels.Set {
	return l.pixels
}

// SavedSettings returns the last settings persisted by SaveCurrentSettings.
func (l *Local) SavedSettings() (settings.Snapshot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.saved == nil {
		return settings.Snapshot{}, false
	}
	return l.saved.Copy(), true
}

// defaults computes engine default settings. Channel windows span the
// observed range of the default plane.
func (l *Local) defaults() (settings.Snapshot, error) {
	p := l.pixels
	lower, upper, err := pixels.Bounds(p.Type)
	if err != nil {
		return settings.Snapshot{}, err
	}

	model := settings.ModelRGB
	if p.SizeC == 1 {
		model = settings.ModelGreyscale
	}
	s := settings.Snapshot{
		Signed:        pixels.Signed(p.Type),
		DefaultZ:      p.SizeZ / 2,
		DefaultT:      0,
		BitResolution: settings.MaxBitResolution,
		Model:         model,
		CodomainStart: 0,
		CodomainEnd:   255,
		Channels:      make([]settings.ChannelBinding, p.SizeC),
	}

	samples := make([]float64, p.PlaneSize())
	for c := range s.Channels {
		i := 0
		for y := 0; y < p.SizeY; y++ {
			for x := 0; x < p.SizeX; x++ {
				samples[i] = l.source(c, x, y, s.DefaultZ, s.DefaultT)
				i++
			}
		}
		s.Channels[c] = settings.ChannelBinding{
			Active:           c < 3,
			InputStart:       floats.Min(samples),
			InputEnd:         floats.Max(samples),
			Family:           settings.FamilyLinear,
			CurveCoefficient: 1.0,
			RGBA:             defaultColor(c),
			LowerBound:       lower,
			UpperBound:       upper,
		}
	}
	return s, nil
}

func defaultColor(c int) [4]uint8 {
	switch c % 3 {
	case 0:
		return [4]uint8{255, 0, 0, 255}
	case 1:
		return [4]uint8{0, 255, 0, 255}
	default:
		return [4]uint8{0, 0, 255, 255}
	}
}

// begin locks l and checks that a call may proceed. Callers must unlock.
func (l *Local) begin(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		l.mu.Unlock()
		return err
	}
	return nil
}

func (l *Local) checkChannel(w int) error {
	if w < 0 || w >= len(l.current.Channels) {
		return fmt.Errorf("%w: channel %d", ErrRejected, w)
	}
	return nil
}

// Settings implements Engine.
func (l *Local) Settings(ctx context.Context) (settings.Snapshot, error) {
	if err := l.begin(ctx); err != nil {
		return settings.Snapshot{}, err
	}
	defer l.mu.Unlock()
	return l.current.Copy(), nil
}

// Models implements Engine.
func (l *Local) Models(ctx context.Context) ([]string, error) {
	if err := l.begin(ctx); err != nil {
		return nil, err
	}
	defer l.mu.Unlock()
	return []string{settings.ModelGreyscale, settings.ModelRGB}, nil
}

// Families implements Engine.
func (l *Local) Families(ctx context.Context) ([]string, error) {
	if err := l.begin(ctx); err != nil {
		return nil, err
	}
	defer l.mu.Unlock()
	return []string{
		settings.FamilyLinear,
		settings.FamilyPolynomial,
		settings.FamilyExponential,
		settings.FamilyLogarithmic,
	}, nil
}

// SetModel implements Engine.
func (l *Local) SetModel(ctx context.Context, model string) error {
	if err := l.begin(ctx); err != nil {
		return err
	}
	defer l.mu.Unlock()
	if model != settings.ModelGreyscale && model != settings.ModelRGB {
		return fmt.Errorf("%w: model %q", ErrRejected, model)
	}
	l.current.Model = model
	return nil
}

// SetDefaultZ implements Engine.
func (l *Local) SetDefaultZ(ctx context.Context, z int) error {
	if err := l.begin(ctx); err != nil {
		return err
	}
	defer l.mu.Unlock()
	if z < 0 || z >= l.pixels.SizeZ {
		return fmt.Errorf("%w: default z %d", ErrRejected, z)
	}
	l.current.DefaultZ = z
	return nil
}

// SetDefaultT implements Engine.
func (l *Local) SetDefaultT(ctx context.Context, t int) error {
	if err := l.begin(ctx); err != nil {
		return err
	}
	defer l.mu.Unlock()
	if t < 0 || t >= l.pixels.SizeT {
		return fmt.Errorf("%w: default t %d", ErrRejected, t)
	}
	l.current.DefaultT = t
	return nil
}

// SetQuantumStrategy implements Engine.
func (l *Local) SetQuantumStrategy(ctx context.Context, bitResolution int) error {
	if err := l.begin(ctx); err != nil {
		return err
	}
	defer l.mu.Unlock()
	if err := l.current.SetBitResolution(bitResolution); err != nil {
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}
	return nil
}

// SetCodomainInterval implements Engine.
func (l *Local) SetCodomainInterval(ctx context.Context, start, end int) error {
	if err := l.begin(ctx); err != nil {
		return err
	}
	defer l.mu.Unlock()
	if start < 0 || end > 255 {
		return fmt.Errorf("%w: codomain [%d, %d] outside [0, 255]", ErrRejected, start, end)
	}
	if err := l.current.SetCodomainInterval(start, end); err != nil {
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}
	return nil
}

// SetQuantizationMap implements Engine.
func (l *Local) SetQuantizationMap(ctx context.Context, w int, family string, coefficient float64, noiseReduction bool) error {
	if err := l.begin(ctx); err != nil {
		return err
	}
	defer l.mu.Unlock()
	if err := l.checkChannel(w); err != nil {
		return err
	}
	switch family {
	case settings.FamilyLinear, settings.FamilyPolynomial, settings.FamilyExponential, settings.FamilyLogarithmic:
	default:
		return fmt.Errorf("%w: family %q", ErrRejected, family)
	}
	return l.current.SetQuantizationMap(w, family, coefficient, noiseReduction)
}

// SetChannelWindow implements Engine.
func (l *Local) SetChannelWindow(ctx context.Context, w int, start, end float64) error {
	if err := l.begin(ctx); err != nil {
		return err
	}
	defer l.mu.Unlock()
	if err := l.checkChannel(w); err != nil {
		return err
	}
	if start > end {
		return fmt.Errorf("%w: window [%g, %g] for channel %d", ErrRejected, start, end, w)
	}
	return l.current.SetChannelWindow(w, start, end)
}

// SetRGBA implements Engine.
func (l *Local) SetRGBA(ctx context.Context, w int, rgba [4]uint8) error {
	if err := l.begin(ctx); err != nil {
		return err
	}
	defer l.mu.Unlock()
	if err := l.checkChannel(w); err != nil {
		return err
	}
	return l.current.SetRGBA(w, rgba)
}

// SetActive implements Engine.
func (l *Local) SetActive(ctx context.Context, w int, active bool) error {
	if err := l.begin(ctx); err != nil {
		return err
	}
	defer l.mu.Unlock()
	if err := l.checkChannel(w); err != nil {
		return err
	}
	return l.current.SetActive(w, active)
}

// SetCompressionLevel implements Engine.
func (l *Local) SetCompressionLevel(ctx context.Context, quality float64) error {
	if err := l.begin(ctx); err != nil {
		return err
	}
	defer l.mu.Unlock()
	if quality <= 0 || quality > 1 {
		return fmt.Errorf("%w: compression level %g", ErrRejected, quality)
	}
	l.quality = quality
	return nil
}

// RenderCompressed implements Engine.
func (l *Local) RenderCompressed(ctx context.Context, key plane.Key) ([]byte, error) {
	img, quality, err := l.renderKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return raster.Encode(img, quality)
}

// RenderPacked implements Engine.
func (l *Local) RenderPacked(ctx context.Context, key plane.Key) ([]int32, error) {
	img, _, err := l.renderKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return raster.ToPacked(img), nil
}

// RenderProjectedCompressed implements Engine.
func (l *Local) RenderProjectedCompressed(ctx context.Context, pr plane.Projection) ([]byte, error) {
	img, quality, err := l.renderProjection(ctx, pr)
	if err != nil {
		return nil, err
	}
	return raster.Encode(img, quality)
}

// RenderProjectedPacked implements Engine.
func (l *Local) RenderProjectedPacked(ctx context.Context, pr plane.Projection) ([]int32, error) {
	img, _, err := l.renderProjection(ctx, pr)
	if err != nil {
		return nil, err
	}
	return raster.ToPacked(img), nil
}

// ResetDefaultsNoSave implements Engine.
func (l *Local) ResetDefaultsNoSave(ctx context.Context) error {
	if err := l.begin(ctx); err != nil {
		return err
	}
	defer l.mu.Unlock()
	defaults, err := l.defaults()
	if err != nil {
		return err
	}
	l.current = defaults
	return nil
}

// SaveCurrentSettings implements Engine.
func (l *Local) SaveCurrentSettings(ctx context.Context) error {
	if err := l.begin(ctx); err != nil {
		return err
	}
	defer l.mu.Unlock()
	saved := l.current.Copy()
	l.saved = &saved
	return nil
}

// Close implements Engine. Close is idempotent.
func (l *Local) Close(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

func (l *Local) renderKey(ctx context.Context, key plane.Key) (*image.RGBA, float64, error) {
	if err := l.begin(ctx); err != nil {
		return nil, 0, err
	}
	defer l.mu.Unlock()
	if err := key.Validate(l.pixels); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrRejected, err)
	}

	width, height := plane.Dims(key.Axis, l.pixels)
	sample := func(c, i, j int) float64 {
		switch key.Axis {
		case plane.XZ:
			return l.source(c, i, key.Slice, j, key.T)
		case plane.ZY:
			return l.source(c, key.Slice, j, i, key.T)
		default:
			return l.source(c, i, j, key.Slice, key.T)
		}
	}
	return l.composite(width, height, sample), l.quality, nil
}

func (l *Local) renderProjection(ctx context.Context, pr plane.Projection) (*image.RGBA, float64, error) {
	if err := l.begin(ctx); err != nil {
		return nil, 0, err
	}
	defer l.mu.Unlock()
	if err := pr.Validate(l.pixels); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrRejected, err)
	}

	sample := func(c, x, y int) float64 {
		var acc float64
		n := 0
		for z := pr.StartZ; z <= pr.EndZ; z += pr.Step {
			v := l.source(c, x, y, z, pr.T)
			switch {
			case n == 0:
				acc = v
			case pr.Algorithm == plane.MaximumIntensity:
				acc = max(acc, v)
			default:
				acc += v
			}
			n++
		}
		if pr.Algorithm == plane.MeanIntensity {
			acc /= float64(n)
		}
		return acc
	}
	return l.composite(l.pixels.SizeX, l.pixels.SizeY, sample), l.quality, nil
}

// composite renders the active channels under the current settings. The
// greyscale model shows the first active channel; the rgb model blends every
// active channel additively in its color.
func (l *Local) composite(width, height int, sample func(c, i, j int) float64) *image.RGBA {
	s := &l.current
	active := s.ActiveChannels()
	qs := make([]quantizer, len(active))
	for i, c := range active {
		qs[i] = newQuantizer(s.Channels[c], s)
	}
	if s.Model == settings.ModelGreyscale && len(active) > 1 {
		active, qs = active[:1], qs[:1]
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			var r, g, b float64
			for n, c := range active {
				v := float64(qs[n].quantize(sample(c, i, j)))
				if s.Model == settings.ModelGreyscale {
					r, g, b = v, v, v
					continue
				}
				alpha := float64(qs[n].rgba[3]) / 255
				r += v * float64(qs[n].rgba[0]) / 255 * alpha
				g += v * float64(qs[n].rgba[1]) / 255 * alpha
				b += v * float64(qs[n].rgba[2]) / 255 * alpha
			}
			o := img.PixOffset(i, j)
			img.Pix[o] = clampByte(r)
			img.Pix[o+1] = clampByte(g)
			img.Pix[o+2] = clampByte(b)
			img.Pix[o+3] = 255
		}
	}
	return img
}

var _ Engine = (*Local)(nil)
