// Package session reports whether the session behind a rendering engine is
// still alive.
//
// A Keeper is asked before every settings mutation and render. Once a Keeper
// reports ErrExpired, callers must treat the engine handle as unusable.
//
// TokenKeeper checks a signed session token (HMAC JWT) for expiry.
// StaticKeeper is alive until Expire is called.
package session
