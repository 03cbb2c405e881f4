package proxy

import (
	"context"
	"testing"

	"github.com/jonwraymond/rndsync/cache"
	"github.com/jonwraymond/rndsync/engine"
	"github.com/jonwraymond/rndsync/pixels"
	"github.com/jonwraymond/rndsync/plane"
	"github.com/jonwraymond/rndsync/raster"
	"github.com/jonwraymond/rndsync/session"
	"github.com/jonwraymond/rndsync/settings"
)

// failure makes a fakeEngine operation fail. times <= 0 fails forever.
type failure struct {
	err   error
	times int
}

// fakeEngine is an in-memory Engine that counts calls per operation.
// Rejected mutations leave its settings unchanged.
type fakeEngine struct {
	pixels   pixels.Set
	rnd      settings.Snapshot
	defaults settings.Snapshot
	quality  float64
	closed   bool

	calls map[string]int
	fail  map[string]*failure

	// activeAtProjection records the active channels seen by the last
	// projection render.
	activeAtProjection []int
}

var primaries = [3][4]uint8{
	{255, 0, 0, 255},
	{0, 255, 0, 255},
	{0, 0, 255, 255},
}

func newFakeEngine(p pixels.Set) *fakeEngine {
	lower, upper, _ := pixels.Bounds(p.Type)
	rnd := settings.Snapshot{
		Signed:        pixels.Signed(p.Type),
		BitResolution: 8,
		Model:         settings.ModelRGB,
		CodomainEnd:   255,
		Channels:      make([]settings.ChannelBinding, p.SizeC),
	}
	for w := range rnd.Channels {
		rnd.Channels[w] = settings.ChannelBinding{
			Active:           true,
			InputStart:       lower,
			InputEnd:         upper,
			Family:           settings.FamilyLinear,
			CurveCoefficient: 1,
			RGBA:             primaries[w%3],
			LowerBound:       lower,
			UpperBound:       upper,
		}
	}
	return &fakeEngine{
		pixels:   p,
		rnd:      rnd,
		defaults: rnd.Copy(),
		quality:  1,
		calls:    make(map[string]int),
		fail:     make(map[string]*failure),
	}
}

// failOn makes op fail with err. times <= 0 fails on every call.
func (f *fakeEngine) failOn(op string, err error, times int) {
	f.fail[op] = &failure{err: err, times: times}
}

func (f *fakeEngine) enter(op string) error {
	f.calls[op]++
	if f.closed {
		return engine.ErrClosed
	}
	fl, ok := f.fail[op]
	if !ok {
		return nil
	}
	if fl.times > 0 {
		fl.times--
		if fl.times == 0 {
			delete(f.fail, op)
		}
	}
	return fl.err
}

func (f *fakeEngine) renders() int {
	return f.calls["RenderCompressed"] + f.calls["RenderPacked"]
}

func (f *fakeEngine) mutations() int {
	n := 0
	for _, op := range []string{
		"SetModel", "SetDefaultZ", "SetDefaultT", "SetQuantumStrategy",
		"SetCodomainInterval", "SetQuantizationMap", "SetChannelWindow",
		"SetRGBA", "SetActive",
	} {
		n += f.calls[op]
	}
	return n
}

func (f *fakeEngine) Settings(context.Context) (settings.Snapshot, error) {
	if err := f.enter("Settings"); err != nil {
		return settings.Snapshot{}, err
	}
	return f.rnd.Copy(), nil
}

func (f *fakeEngine) Models(context.Context) ([]string, error) {
	if err := f.enter("Models"); err != nil {
		return nil, err
	}
	return []string{settings.ModelGreyscale, settings.ModelRGB}, nil
}

func (f *fakeEngine) Families(context.Context) ([]string, error) {
	if err := f.enter("Families"); err != nil {
		return nil, err
	}
	return []string{settings.FamilyLinear, settings.FamilyLogarithmic}, nil
}

func (f *fakeEngine) SetModel(_ context.Context, model string) error {
	if err := f.enter("SetModel"); err != nil {
		return err
	}
	f.rnd.Model = model
	return nil
}

func (f *fakeEngine) SetDefaultZ(_ context.Context, z int) error {
	if err := f.enter("SetDefaultZ"); err != nil {
		return err
	}
	f.rnd.DefaultZ = z
	return nil
}

func (f *fakeEngine) SetDefaultT(_ context.Context, t int) error {
	if err := f.enter("SetDefaultT"); err != nil {
		return err
	}
	f.rnd.DefaultT = t
	return nil
}

func (f *fakeEngine) SetQuantumStrategy(_ context.Context, bitResolution int) error {
	if err := f.enter("SetQuantumStrategy"); err != nil {
		return err
	}
	f.rnd.BitResolution = bitResolution
	return nil
}

func (f *fakeEngine) SetCodomainInterval(_ context.Context, start, end int) error {
	if err := f.enter("SetCodomainInterval"); err != nil {
		return err
	}
	f.rnd.CodomainStart, f.rnd.CodomainEnd = start, end
	return nil
}

func (f *fakeEngine) SetQuantizationMap(_ context.Context, w int, family string, coefficient float64, noiseReduction bool) error {
	if err := f.enter("SetQuantizationMap"); err != nil {
		return err
	}
	return f.rnd.SetQuantizationMap(w, family, coefficient, noiseReduction)
}

func (f *fakeEngine) SetChannelWindow(_ context.Context, w int, start, end float64) error {
	if err := f.enter("SetChannelWindow"); err != nil {
		return err
	}
	return f.rnd.SetChannelWindow(w, start, end)
}

func (f *fakeEngine) SetRGBA(_ context.Context, w int, rgba [4]uint8) error {
	if err := f.enter("SetRGBA"); err != nil {
		return err
	}
	return f.rnd.SetRGBA(w, rgba)
}

func (f *fakeEngine) SetActive(_ context.Context, w int, active bool) error {
	if err := f.enter("SetActive"); err != nil {
		return err
	}
	return f.rnd.SetActive(w, active)
}

func (f *fakeEngine) SetCompressionLevel(_ context.Context, quality float64) error {
	if err := f.enter("SetCompressionLevel"); err != nil {
		return err
	}
	f.quality = quality
	return nil
}

// packed fills a plane whose red component is channel 0's window start, so
// that renders change when settings change.
func (f *fakeEngine) packed(width, height int) []int32 {
	red := uint32(uint8(f.rnd.Channels[0].InputStart))
	out := make([]int32, width*height)
	for i := range out {
		out[i] = int32(0xFF000000 | red<<16 | uint32(i%256))
	}
	return out
}

func (f *fakeEngine) RenderCompressed(_ context.Context, key plane.Key) ([]byte, error) {
	if err := f.enter("RenderCompressed"); err != nil {
		return nil, err
	}
	width, height := plane.Dims(key.Axis, f.pixels)
	img, err := raster.FromPacked(f.packed(width, height), width, height)
	if err != nil {
		return nil, err
	}
	return raster.Encode(img, f.quality)
}

func (f *fakeEngine) RenderPacked(_ context.Context, key plane.Key) ([]int32, error) {
	if err := f.enter("RenderPacked"); err != nil {
		return nil, err
	}
	width, height := plane.Dims(key.Axis, f.pixels)
	return f.packed(width, height), nil
}

func (f *fakeEngine) RenderProjectedCompressed(_ context.Context, _ plane.Projection) ([]byte, error) {
	if err := f.enter("RenderProjectedCompressed"); err != nil {
		return nil, err
	}
	f.activeAtProjection = f.rnd.ActiveChannels()
	img, err := raster.FromPacked(f.packed(f.pixels.SizeX, f.pixels.SizeY), f.pixels.SizeX, f.pixels.SizeY)
	if err != nil {
		return nil, err
	}
	return raster.Encode(img, f.quality)
}

func (f *fakeEngine) RenderProjectedPacked(_ context.Context, _ plane.Projection) ([]int32, error) {
	if err := f.enter("RenderProjectedPacked"); err != nil {
		return nil, err
	}
	f.activeAtProjection = f.rnd.ActiveChannels()
	return f.packed(f.pixels.SizeX, f.pixels.SizeY), nil
}

func (f *fakeEngine) ResetDefaultsNoSave(context.Context) error {
	if err := f.enter("ResetDefaultsNoSave"); err != nil {
		return err
	}
	f.rnd = f.defaults.Copy()
	return nil
}

func (f *fakeEngine) SaveCurrentSettings(context.Context) error {
	return f.enter("SaveCurrentSettings")
}

func (f *fakeEngine) Close(context.Context) error {
	f.calls["Close"]++
	f.closed = true
	return nil
}

var _ engine.Engine = (*fakeEngine)(nil)

// testPixels returns a small 8-bit pixel set with c channels.
func testPixels(c int) pixels.Set {
	return pixels.Set{ID: 7, SizeX: 8, SizeY: 6, SizeZ: 4, SizeT: 2, SizeC: c, Type: pixels.TypeUint8}
}

type harness struct {
	proxy  *Proxy
	engine *fakeEngine
	cache  *cache.MemoryService
	keeper *session.StaticKeeper
}

// newHarness builds a proxy over a fakeEngine and a MemoryService. configure,
// if set, may adjust the options before construction.
func newHarness(t *testing.T, set pixels.Set, configure func(*Options)) *harness {
	t.Helper()
	h := &harness{
		engine: newFakeEngine(set),
		cache:  cache.NewMemoryService(),
		keeper: session.NewStaticKeeper(),
	}
	opts := Options{
		Engine: h.engine,
		Pixels: set,
		Cache:  h.cache,
		Keeper: h.keeper,
	}
	if configure != nil {
		configure(&opts)
	}
	p, err := New(context.Background(), opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h.proxy = p
	return h
}
