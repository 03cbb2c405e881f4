package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jonwraymond/rndsync/cache"
	"github.com/jonwraymond/rndsync/config"
	"github.com/jonwraymond/rndsync/engine"
	"github.com/jonwraymond/rndsync/health"
	"github.com/jonwraymond/rndsync/observe"
	"github.com/jonwraymond/rndsync/plane"
	"github.com/jonwraymond/rndsync/proxy"
	"github.com/jonwraymond/rndsync/resilience"
	"github.com/jonwraymond/rndsync/secret"
	"github.com/jonwraymond/rndsync/session"
	"github.com/jonwraymond/rndsync/settings"
)

type options struct {
	configPath  string
	output      string
	axis        string
	slice       int
	t           int
	channel     int
	start       float64
	end         float64
	compression string
	savePath    string
	serve       bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "rndsync.yaml", "YAML configuration file (defaults are used if it does not exist)")
	flag.StringVar(&opts.output, "output", "plane.png", "PNG file to write the rendered plane to")
	flag.StringVar(&opts.axis, "axis", "xy", "Plane orientation: xy, xz or zy")
	flag.IntVar(&opts.slice, "slice", -1, "Position along the orthogonal axis (default: the default z for xy planes, 0 otherwise)")
	flag.IntVar(&opts.t, "t", -1, "Timepoint (default: the default t)")
	flag.IntVar(&opts.channel, "channel", 0, "Channel whose input window -start/-end adjust")
	flag.Float64Var(&opts.start, "start", 0, "Input window start for -channel")
	flag.Float64Var(&opts.end, "end", 0, "Input window end for -channel (ignored unless greater than -start)")
	flag.StringVar(&opts.compression, "compression", "", "Override the configured compression: none, medium or low")
	flag.StringVar(&opts.savePath, "save", "", "Write the final rendering settings to this YAML file")
	flag.BoolVar(&opts.serve, "serve", false, "Keep serving health endpoints until interrupted")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Fatalf("rndsync: %v", err)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.compression != "" {
		cfg.Compression = opts.compression
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ResolveSecrets(ctx, secret.DefaultResolver()); err != nil {
		return err
	}

	obs, err := observe.NewObserver(ctx, cfg.Observe)
	if err != nil {
		return fmt.Errorf("observer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()
	inst, err := observe.InstrumenterFromObserver(obs)
	if err != nil {
		return fmt.Errorf("instrumenter: %w", err)
	}
	logger := obs.Logger()

	set, err := cfg.PixelSet()
	if err != nil {
		return err
	}
	eng, err := engine.NewLocal(set, engine.LocalConfig{})
	if err != nil {
		return err
	}

	var seed *settings.Snapshot
	if cfg.SettingsFile != "" {
		s, err := settings.LoadFile(cfg.SettingsFile)
		if err != nil {
			return err
		}
		seed = &s
	}

	keeper, err := newKeeper(cfg.Session)
	if err != nil {
		return err
	}
	exec := resilience.New(cfg.Resilience, logger)
	svc := cache.NewMemoryService()
	policy := cfg.CachePolicy()

	p, err := proxy.New(ctx, proxy.Options{
		Engine:       eng,
		Pixels:       set,
		Cache:        svc,
		Policy:       &policy,
		Keeper:       keeper,
		Instrumenter: inst,
		Executor:     exec,
		Compression:  cfg.CompressionMode(),
		Settings:     seed,
	})
	if err != nil {
		return err
	}
	defer p.Shutdown(context.Background())

	var srv *http.Server
	if cfg.Health.Addr != "" {
		agg := health.NewAggregator()
		agg.Register("session", health.NewSessionChecker(keeper))
		agg.Register("cache", health.NewCacheChecker(svc, health.CacheCheckerConfig{
			CapacityBytes: policy.CapacityBytes,
		}))
		agg.Register("engine", health.NewBreakerChecker(exec.Breaker()))

		mux := http.NewServeMux()
		health.RegisterHandlers(mux, agg)
		srv = &http.Server{Addr: cfg.Health.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "health server failed", observe.Field{Key: "error", Value: err.Error()})
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info(ctx, "health endpoints listening", observe.Field{Key: "addr", Value: cfg.Health.Addr})
	}

	if opts.end > opts.start {
		if err := p.SetChannelWindow(ctx, opts.channel, opts.start, opts.end); err != nil {
			return err
		}
	}

	key, err := planeKey(opts, p)
	if err != nil {
		return err
	}
	start := time.Now()
	img, err := p.RenderPlane(ctx, key)
	if err != nil {
		return err
	}
	logger.Info(ctx, "plane rendered",
		observe.Field{Key: "plane", Value: key.String()},
		observe.Field{Key: "compression", Value: p.Compression().String()},
		observe.Field{Key: "duration_ms", Value: time.Since(start).Milliseconds()},
	)

	f, err := os.Create(opts.output)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", opts.output, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Rendered %s of pixels %d (%dx%d) to %s\n",
		key, set.ID, img.Bounds().Dx(), img.Bounds().Dy(), opts.output)

	if opts.savePath != "" {
		saved, err := p.SaveCurrentSettings(ctx)
		if err != nil {
			return err
		}
		if err := settings.SaveFile(saved, opts.savePath); err != nil {
			return err
		}
		fmt.Printf("Saved rendering settings to %s\n", opts.savePath)
	}

	if opts.serve && srv != nil {
		fmt.Printf("Serving health endpoints on %s, press Ctrl+C to stop\n", cfg.Health.Addr)
		<-ctx.Done()
	}
	return nil
}

func newKeeper(cfg config.SessionConfig) (session.Keeper, error) {
	if cfg.Token == "" {
		return session.NewStaticKeeper(), nil
	}
	return session.NewTokenKeeper(session.TokenConfig{
		Token:      cfg.Token,
		SigningKey: []byte(cfg.SigningKey),
		Issuer:     cfg.Issuer,
		Leeway:     cfg.Leeway,
	})
}

func planeKey(opts options, p *proxy.Proxy) (plane.Key, error) {
	var axis plane.Axis
	switch strings.ToLower(opts.axis) {
	case "xy":
		axis = plane.XY
	case "xz":
		axis = plane.XZ
	case "zy":
		axis = plane.ZY
	default:
		return plane.Key{}, fmt.Errorf("unknown axis %q", opts.axis)
	}

	key := plane.Key{Axis: axis, Slice: opts.slice, T: opts.t}
	if key.Slice < 0 {
		key.Slice = 0
		if axis == plane.XY {
			key.Slice = p.DefaultZ()
		}
	}
	if key.T < 0 {
		key.T = p.DefaultT()
	}
	return key, nil
}
