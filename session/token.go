package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// TokenConfig configures a TokenKeeper.
type TokenConfig struct {
	// Token is the signed session token.
	Token string

	// SigningKey verifies the token signature (HS256/384/512).
	SigningKey []byte

	// Issuer is the expected token issuer (iss claim). Empty skips the check.
	Issuer string

	// Leeway tolerates clock skew when checking exp.
	// Default: 0
	Leeway time.Duration

	// Now returns the current time.
	// Default: time.Now
	Now func() time.Time
}

// TokenKeeper checks the expiry of a signed session token.
type TokenKeeper struct {
	config  TokenConfig
	sfGroup singleflight.Group

	mu      sync.RWMutex
	token   string
	expiry  time.Time
	expired bool
}

// NewTokenKeeper verifies the token and creates a TokenKeeper. A token that
// has already expired is accepted; its first Check reports ErrExpired.
func NewTokenKeeper(config TokenConfig) (*TokenKeeper, error) {
	if config.Token == "" {
		return nil, ErrMissingToken
	}
	if len(config.SigningKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	k := &TokenKeeper{config: config, token: config.Token}
	exp, err := k.parse(config.Token)
	if err != nil && !errors.Is(err, ErrExpired) {
		return nil, err
	}
	k.expiry = exp
	return k, nil
}

// Expiry returns the expiry time of the current token.
func (k *TokenKeeper) Expiry() time.Time {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.expiry
}

// Check implements Keeper. Concurrent checks share one verification.
func (k *TokenKeeper) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	k.mu.RLock()
	expired, token := k.expired, k.token
	k.mu.RUnlock()
	if expired {
		return ErrExpired
	}

	_, err, _ := k.sfGroup.Do(token, func() (any, error) {
		_, err := k.parse(token)
		return nil, err
	})
	if errors.Is(err, ErrExpired) {
		k.mu.Lock()
		if k.token == token {
			k.expired = true
		}
		k.mu.Unlock()
	}
	return err
}

// Renew replaces the token after verifying it. A renewed keeper is alive
// again.
func (k *TokenKeeper) Renew(token string) error {
	exp, err := k.parse(token)
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.token = token
	k.expiry = exp
	k.expired = false
	return nil
}

func (k *TokenKeeper) parse(token string) (time.Time, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(k.config.Leeway),
		jwt.WithTimeFunc(k.config.Now),
	}
	if k.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(k.config.Issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return k.config.SigningKey, nil
	}, opts...)

	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	switch {
	case err == nil:
		return exp, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return exp, fmt.Errorf("%w at %s", ErrExpired, exp.UTC().Format(time.RFC3339))
	default:
		return exp, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
}

var _ Keeper = (*TokenKeeper)(nil)
