// Package proxy keeps a local mirror of rendering settings in sync with a
// remote rendering engine and memoizes rendered XY planes.
//
// A Proxy owns one settings snapshot, at most one plane cache and the engine
// connection for one pixel set. Every mutation follows the same sequence:
//
//  1. check that the session is still alive,
//  2. apply the value on the engine,
//  3. mirror the value into the local snapshot, even if the engine failed,
//  4. clear the plane cache.
//
// Reads of the snapshot never reach the engine. Renders of XY planes probe the
// plane cache first; other orientations and projections are always rendered
// remotely.
//
// # Errors
//
// An expired session shuts the proxy down and every later call returns
// ErrSessionExpired. Other engine failures are returned as
// *RenderingServiceError naming the parameter that failed. Arguments that can
// be checked locally fail with ErrInvalidArgument or ErrIndexOutOfRange before
// any remote call.
//
// # Usage
//
//	p, err := proxy.New(ctx, proxy.Options{
//	    Engine: eng,
//	    Pixels: set,
//	    Cache:  cache.NewMemoryService(),
//	})
//	if err != nil {
//	    return err
//	}
//	defer p.Shutdown(ctx)
//
//	if err := p.SetChannelWindow(ctx, 0, 10, 200); err != nil {
//	    return err
//	}
//	img, err := p.RenderPlane(ctx, plane.XYKey(0, 0))
//
// A Proxy is not safe for concurrent use; callers serialize access.
package proxy
