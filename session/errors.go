package session

import "errors"

var (
	// ErrExpired indicates the session has lapsed.
	ErrExpired = errors.New("session: expired")

	// ErrMissingToken indicates no session token was configured.
	ErrMissingToken = errors.New("session: token is required")

	// ErrMissingSigningKey indicates no signing key was configured.
	ErrMissingSigningKey = errors.New("session: signing key is required")

	// ErrMalformedToken indicates the token could not be parsed or verified.
	ErrMalformedToken = errors.New("session: malformed token")
)
