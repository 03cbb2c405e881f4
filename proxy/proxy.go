package proxy

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jonwraymond/rndsync/cache"
	"github.com/jonwraymond/rndsync/engine"
	"github.com/jonwraymond/rndsync/observe"
	"github.com/jonwraymond/rndsync/pixels"
	"github.com/jonwraymond/rndsync/resilience"
	"github.com/jonwraymond/rndsync/session"
	"github.com/jonwraymond/rndsync/settings"
)

// Options configures a Proxy.
type Options struct {
	// Engine renders the pixel set. Required. The proxy closes it on
	// shutdown.
	Engine engine.Engine

	// Pixels describes the pixel set. Required.
	Pixels pixels.Set

	// Cache stores rendered XY planes. Nil disables caching.
	Cache cache.Service

	// Policy sizes the plane cache. Nil selects cache.DefaultPolicy().
	Policy *cache.Policy

	// Keeper reports session liveness. Nil means the session never expires.
	Keeper session.Keeper

	// Instrumenter records engine calls. Nil records nothing.
	Instrumenter *observe.Instrumenter

	// Executor runs engine calls. Nil runs each call once.
	Executor *resilience.Executor

	// Compression is the initial transport mode.
	Compression engine.Compression

	// Settings, when set, seeds the local mirror and is pushed to the engine.
	// Channel bounds always come from the engine.
	Settings *settings.Snapshot
}

type state int

const (
	stateActive state = iota
	stateExpired
	stateClosed
)

// Proxy mirrors the rendering settings of one pixel set and renders its
// planes through a remote engine.
type Proxy struct {
	eng    engine.Engine
	pixels pixels.Set
	keeper session.Keeper
	exec   *resilience.Executor
	inst   *observe.Instrumenter
	logger observe.Logger
	planes *cache.PlaneCache

	compression engine.Compression
	rnd         settings.Snapshot
	models      []string
	families    []string
	state       state
}

// New connects a Proxy to opts.Engine. It reads the engine's settings, color
// models and quantization families once, pushes opts.Settings when given and
// sets the compression level.
func New(ctx context.Context, opts Options) (*Proxy, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("%w: engine is required", ErrInvalidArgument)
	}
	if err := opts.Pixels.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if opts.Settings != nil {
		if err := opts.Settings.Validate(opts.Pixels.SizeC); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}

	policy := cache.DefaultPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	keeper := opts.Keeper
	if keeper == nil {
		keeper = session.NewStaticKeeper()
	}
	inst := opts.Instrumenter
	if inst == nil {
		inst = observe.NopInstrumenter()
	}
	exec := opts.Executor
	if exec == nil {
		exec = resilience.Direct()
	}
	logger := inst.Logger().With(observe.Field{Key: "pixels_id", Value: opts.Pixels.ID})

	p := &Proxy{
		eng:         opts.Engine,
		pixels:      opts.Pixels,
		keeper:      keeper,
		exec:        exec,
		inst:        inst,
		logger:      logger,
		planes:      cache.NewPlaneCache(opts.Cache, policy, logger),
		compression: opts.Compression,
	}

	if err := p.begin(ctx); err != nil {
		return nil, err
	}
	current, err := p.fetchSettings(ctx)
	if err != nil {
		return nil, p.abort(ctx, err)
	}
	if err := p.call(ctx, "models", "color models", func(ctx context.Context, eng engine.Engine) error {
		models, err := eng.Models(ctx)
		p.models = models
		return err
	}); err != nil {
		return nil, p.abort(ctx, err)
	}
	if err := p.call(ctx, "families", "quantization families", func(ctx context.Context, eng engine.Engine) error {
		families, err := eng.Families(ctx)
		p.families = families
		return err
	}); err != nil {
		return nil, p.abort(ctx, err)
	}

	if opts.Settings != nil {
		p.rnd = opts.Settings.Copy()
		p.refreshBounds(&current)
		if failed, err := p.push(ctx); err != nil || len(failed) > 0 {
			return nil, p.abort(ctx, errors.Join(append(failed, err)...))
		}
	} else {
		p.rnd = current
	}

	if err := p.applyCompressionLevel(ctx); err != nil {
		return nil, p.abort(ctx, err)
	}
	p.logger.Debug(ctx, "rendering proxy ready",
		observe.Field{Key: "channels", Value: p.pixels.SizeC},
		observe.Field{Key: "compression", Value: p.compression.String()},
	)
	return p, nil
}

// abort releases a proxy whose construction failed and returns err.
func (p *Proxy) abort(ctx context.Context, err error) error {
	_ = p.Shutdown(ctx)
	return err
}

// begin checks that the proxy may talk to the engine. An expired session
// shuts the proxy down.
func (p *Proxy) begin(ctx context.Context) error {
	switch p.state {
	case stateExpired:
		return ErrSessionExpired
	case stateClosed:
		return ErrClosed
	}
	err := p.keeper.Check(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, session.ErrExpired) {
		p.expire(ctx, err)
		return fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	return fmt.Errorf("proxy: session check: %w", err)
}

// call runs fn against the current engine through the executor and the
// instrumenter, and classifies its error.
func (p *Proxy) call(ctx context.Context, op, param string, fn func(ctx context.Context, eng engine.Engine) error) error {
	eng := p.eng
	meta := observe.CallMeta{Op: op, Param: param, PixelsID: p.pixels.ID}
	err := p.inst.Call(ctx, meta, func(ctx context.Context) error {
		return p.exec.Execute(ctx, func(ctx context.Context) error {
			return fn(ctx, eng)
		})
	})
	switch {
	case err == nil:
		return nil
	case engine.IsSessionExpired(err):
		p.expire(ctx, err)
		return fmt.Errorf("%w: %w", ErrSessionExpired, err)
	default:
		return &RenderingServiceError{Op: op, Param: param, Err: err}
	}
}

// expire tears the proxy down after the session lapsed.
func (p *Proxy) expire(ctx context.Context, cause error) {
	if p.state != stateActive {
		return
	}
	p.logger.Error(ctx, "rendering session expired",
		observe.Field{Key: "error", Value: cause.Error()},
	)
	_ = p.release(ctx)
	p.state = stateExpired
}

func (p *Proxy) release(ctx context.Context) error {
	p.planes.Destroy(ctx)
	if err := p.eng.Close(ctx); err != nil {
		p.logger.Debug(ctx, "engine close failed", observe.Field{Key: "error", Value: err.Error()})
		return err
	}
	return nil
}

// Shutdown destroys the plane cache and closes the engine. Later calls fail
// with ErrClosed, or ErrSessionExpired if the session had lapsed. Shutdown
// is idempotent.
func (p *Proxy) Shutdown(ctx context.Context) error {
	if p.state != stateActive {
		return nil
	}
	p.state = stateClosed
	return p.release(ctx)
}

// Reconnect swaps in a new engine for the same pixel set, closes the previous
// one and re-applies the local snapshot and compression level field by field.
// Channel bounds are refreshed from the new engine. Every field that fails is
// reported in the joined error; the snapshot itself is kept.
func (p *Proxy) Reconnect(ctx context.Context, eng engine.Engine) error {
	if eng == nil {
		return fmt.Errorf("%w: engine is required", ErrInvalidArgument)
	}
	if err := p.begin(ctx); err != nil {
		return err
	}

	if old := p.eng; old != eng {
		if err := old.Close(ctx); err != nil {
			p.logger.Debug(ctx, "previous engine close failed", observe.Field{Key: "error", Value: err.Error()})
		}
	}
	p.eng = eng
	p.planes.Invalidate(ctx)

	var errs []error
	current, err := p.fetchSettings(ctx)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return err
		}
		errs = append(errs, err)
	} else {
		p.refreshBounds(&current)
	}

	failed, err := p.push(ctx)
	if err != nil {
		return err
	}
	errs = append(errs, failed...)
	if err := p.applyCompressionLevel(ctx); err != nil {
		errs = append(errs, err)
	}

	p.logger.Info(ctx, "rendering engine reconnected",
		observe.Field{Key: "failures", Value: len(errs)},
	)
	return errors.Join(errs...)
}

// fetchSettings reads the engine's settings and checks their channel count.
func (p *Proxy) fetchSettings(ctx context.Context) (settings.Snapshot, error) {
	var current settings.Snapshot
	err := p.call(ctx, "settings", "current settings", func(ctx context.Context, eng engine.Engine) error {
		s, err := eng.Settings(ctx)
		if err != nil {
			return err
		}
		if len(s.Channels) != p.pixels.SizeC {
			return fmt.Errorf("%w: engine has %d, pixel set has %d",
				settings.ErrChannelCount, len(s.Channels), p.pixels.SizeC)
		}
		current = s
		return nil
	})
	return current, err
}

// refreshBounds copies signedness and the numeric type bounds from the
// engine's settings. from has one channel per channel of the pixel set.
func (p *Proxy) refreshBounds(from *settings.Snapshot) {
	p.rnd.Signed = from.Signed
	for w, c := range from.Channels {
		_ = p.rnd.SetBounds(w, c.LowerBound, c.UpperBound)
	}
}

// push applies the whole local snapshot to the engine without mirroring. It
// returns the fields that failed, or stops at an expired session.
func (p *Proxy) push(ctx context.Context) ([]error, error) {
	var failed []error
	for _, m := range settingsMutations(p.rnd.Copy()) {
		err := p.call(ctx, m.op, m.param, m.remote)
		if errors.Is(err, ErrSessionExpired) {
			return failed, err
		}
		if err != nil {
			failed = append(failed, err)
		}
	}
	return failed, nil
}

func (p *Proxy) applyCompressionLevel(ctx context.Context) error {
	quality := p.compression.Quality()
	return p.call(ctx, "set_compression_level", "compression level", func(ctx context.Context, eng engine.Engine) error {
		return eng.SetCompressionLevel(ctx, quality)
	})
}

func (p *Proxy) checkIndex(w int) error {
	if w < 0 || w >= p.pixels.SizeC {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, w, p.pixels.SizeC)
	}
	return nil
}

// Pixels returns the pixel set descriptor.
func (p *Proxy) Pixels() pixels.Set {
	return p.pixels
}

// ValidatePixels reports whether other has the same channel count, X and Y
// extents and numeric type as the proxy's pixel set.
func (p *Proxy) ValidatePixels(other pixels.Set) bool {
	return p.pixels.Compatible(other)
}

// Compression returns the current transport mode.
func (p *Proxy) Compression() engine.Compression {
	return p.compression
}

// CacheState returns the lifecycle state of the plane cache.
func (p *Proxy) CacheState() cache.State {
	return p.planes.State()
}

// Models returns the color models offered by the engine.
func (p *Proxy) Models() []string {
	return slices.Clone(p.models)
}

// Families returns the quantization families offered by the engine.
func (p *Proxy) Families() []string {
	return slices.Clone(p.families)
}

// RndSettingsCopy returns a deep copy of the local snapshot.
func (p *Proxy) RndSettingsCopy() settings.Snapshot {
	return p.rnd.Copy()
}
