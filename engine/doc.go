// Package engine defines the contract of a rendering engine and provides
// Local, an in-process implementation.
//
// An Engine turns multi-dimensional pixel data into displayable planes under
// a set of rendering settings. Remote implementations are expected to be
// synchronous and may fail at any call:
//
//   - ErrSessionExpired: the session behind the engine has lapsed; the handle
//     is unusable and callers must reconnect.
//   - ErrTransient: a failure that may succeed when retried.
//   - ErrRejected: the engine refused a parameter.
//
// # Transport quality
//
// Compression selects the transport quality of compressed renders.
// Uncompressed planes are delivered as packed 0xAARRGGBB samples; compressed
// planes are JPEG encoded, or zstd framed when the quality is 1.
//
// # Local engine
//
// Local renders a deterministic synthetic pixel set. It implements every
// quantization family and projection algorithm and is used by the command
// line tool and by tests that need real pixels.
package engine
