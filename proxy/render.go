package proxy

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/jonwraymond/rndsync/cache"
	"github.com/jonwraymond/rndsync/engine"
	"github.com/jonwraymond/rndsync/plane"
	"github.com/jonwraymond/rndsync/raster"
)

// bytesPerPixel is the observed artifact size per pixel of uncompressed
// planes, used to size the plane cache.
const bytesPerPixel = 3

// RenderPlane renders the plane identified by key under the current settings.
// XY planes are served from the plane cache when possible. The returned image
// belongs to the caller.
func (p *Proxy) RenderPlane(ctx context.Context, key plane.Key) (*image.RGBA, error) {
	if err := key.Validate(p.pixels); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if err := p.begin(ctx); err != nil {
		return nil, err
	}
	if p.compression.IsCompressed() {
		return p.renderCompressed(ctx, key)
	}
	return p.renderPacked(ctx, key)
}

func (p *Proxy) renderCompressed(ctx context.Context, key plane.Key) (*image.RGBA, error) {
	param := "plane " + key.String()

	// A miss decodes once here so that undecodable bytes are never cached.
	var decoded *image.RGBA
	a, hit, err := p.planes.Fetch(ctx, key, func(ctx context.Context) (cache.Artifact, int, error) {
		var data []byte
		err := p.call(ctx, "render_compressed", param, func(ctx context.Context, eng engine.Engine) error {
			var err error
			data, err = eng.RenderCompressed(ctx, key)
			return err
		})
		if err != nil {
			return cache.Artifact{}, 0, err
		}
		if decoded, err = raster.Decode(data); err != nil {
			return cache.Artifact{}, 0, &RenderingServiceError{Op: "decode", Param: param, Err: err}
		}
		return cache.Compressed(data), len(data), nil
	})
	p.recordLookup(ctx, key, hit)
	if err != nil {
		return nil, err
	}
	if decoded != nil {
		return decoded, nil
	}

	img, err := raster.Decode(a.Bytes)
	if err != nil {
		return nil, &RenderingServiceError{Op: "decode", Param: param, Err: err}
	}
	return img, nil
}

func (p *Proxy) renderPacked(ctx context.Context, key plane.Key) (*image.RGBA, error) {
	param := "plane " + key.String()
	width, height := plane.Dims(key.Axis, p.pixels)

	a, hit, err := p.planes.Fetch(ctx, key, func(ctx context.Context) (cache.Artifact, int, error) {
		var packed []int32
		err := p.call(ctx, "render_packed", param, func(ctx context.Context, eng engine.Engine) error {
			var err error
			packed, err = eng.RenderPacked(ctx, key)
			return err
		})
		if err != nil {
			return cache.Artifact{}, 0, err
		}
		img, err := raster.FromPacked(packed, width, height)
		if err != nil {
			return cache.Artifact{}, 0, &RenderingServiceError{Op: "render_packed", Param: param, Err: err}
		}
		return cache.Decoded(img), bytesPerPixel * width * height, nil
	})
	p.recordLookup(ctx, key, hit)
	if err != nil {
		return nil, err
	}
	return raster.Clone(a.Raster), nil
}

func (p *Proxy) recordLookup(ctx context.Context, key plane.Key, hit bool) {
	if cache.Cacheable(key) {
		p.inst.CacheLookup(ctx, key.Axis.String(), hit)
	}
}

// SetCompression switches the transport mode and destroys the plane cache,
// since artifacts of different modes are not interchangeable.
func (p *Proxy) SetCompression(ctx context.Context, c engine.Compression) error {
	if err := p.begin(ctx); err != nil {
		return err
	}
	p.compression = c
	p.planes.Destroy(ctx)
	return p.applyCompressionLevel(ctx)
}

// RenderProjected renders an XY projection using only channels. The active
// flag of every channel is set on the engine for the duration of the call and
// restored to the snapshot afterwards, even when rendering fails. Projections
// are never cached.
func (p *Proxy) RenderProjected(ctx context.Context, pr plane.Projection, channels []int) (*image.RGBA, error) {
	if err := pr.Validate(p.pixels); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: no channels to project", ErrInvalidArgument)
	}
	want := make([]bool, p.pixels.SizeC)
	for _, w := range channels {
		if err := p.checkIndex(w); err != nil {
			return nil, err
		}
		want[w] = true
	}
	if err := p.begin(ctx); err != nil {
		return nil, err
	}

	// Every channel is set explicitly: after a rejected SetActive the
	// snapshot may not match the engine.
	var touched []int
	var err error
	for w, active := range want {
		touched = append(touched, w)
		m := setActive(w, active)
		if err = p.call(ctx, m.op, m.param, m.remote); err != nil {
			break
		}
	}

	var img *image.RGBA
	if err == nil {
		img, err = p.renderProjection(ctx, pr)
	}
	if rerr := p.restoreActive(ctx, touched); rerr != nil {
		err = errors.Join(err, rerr)
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (p *Proxy) renderProjection(ctx context.Context, pr plane.Projection) (*image.RGBA, error) {
	param := fmt.Sprintf("%s projection of z [%d,%d] at t %d", pr.Algorithm, pr.StartZ, pr.EndZ, pr.T)

	if p.compression.IsCompressed() {
		var data []byte
		err := p.call(ctx, "render_projected_compressed", param, func(ctx context.Context, eng engine.Engine) error {
			var err error
			data, err = eng.RenderProjectedCompressed(ctx, pr)
			return err
		})
		if err != nil {
			return nil, err
		}
		img, err := raster.Decode(data)
		if err != nil {
			return nil, &RenderingServiceError{Op: "decode", Param: param, Err: err}
		}
		return img, nil
	}

	var packed []int32
	err := p.call(ctx, "render_projected_packed", param, func(ctx context.Context, eng engine.Engine) error {
		var err error
		packed, err = eng.RenderProjectedPacked(ctx, pr)
		return err
	})
	if err != nil {
		return nil, err
	}
	img, err := raster.FromPacked(packed, p.pixels.SizeX, p.pixels.SizeY)
	if err != nil {
		return nil, &RenderingServiceError{Op: "render_projected_packed", Param: param, Err: err}
	}
	return img, nil
}

// restoreActive puts the snapshot's active flags for channels back on the
// engine. It runs after cancellation of ctx and is skipped once the proxy has
// shut down.
func (p *Proxy) restoreActive(ctx context.Context, channels []int) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for _, w := range channels {
		if p.state != stateActive {
			break
		}
		m := setActive(w, p.rnd.Channels[w].Active)
		if err := p.call(ctx, m.op, m.param, m.remote); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
