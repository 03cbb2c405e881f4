package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testKey = []byte("test-signing-key")

func signToken(t *testing.T, key []byte, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStaticKeeper(t *testing.T) {
	k := NewStaticKeeper()
	if err := k.Check(context.Background()); err != nil {
		t.Fatalf("Check() = %v, want nil", err)
	}
	k.Expire()
	if err := k.Check(context.Background()); !errors.Is(err, ErrExpired) {
		t.Errorf("Check() = %v, want ErrExpired", err)
	}
}

func TestKeeperFunc(t *testing.T) {
	want := errors.New("probe failed")
	k := KeeperFunc(func(context.Context) error { return want })
	if err := k.Check(context.Background()); err != want {
		t.Errorf("Check() = %v, want %v", err, want)
	}
}

func TestNewTokenKeeper_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  TokenConfig
		wantErr error
	}{
		{"missing token", TokenConfig{SigningKey: testKey}, ErrMissingToken},
		{"missing key", TokenConfig{Token: "x"}, ErrMissingSigningKey},
		{"garbage token", TokenConfig{Token: "not-a-jwt", SigningKey: testKey}, ErrMalformedToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTokenKeeper(tt.config); !errors.Is(err, tt.wantErr) {
				t.Errorf("NewTokenKeeper() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewTokenKeeper_WrongKey(t *testing.T) {
	token := signToken(t, []byte("other-key"), jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	if _, err := NewTokenKeeper(TokenConfig{Token: token, SigningKey: testKey}); !errors.Is(err, ErrMalformedToken) {
		t.Errorf("NewTokenKeeper() = %v, want ErrMalformedToken", err)
	}
}

func TestNewTokenKeeper_RequiresExpiry(t *testing.T) {
	token := signToken(t, testKey, jwt.RegisteredClaims{Subject: "viewer"})
	if _, err := NewTokenKeeper(TokenConfig{Token: token, SigningKey: testKey}); !errors.Is(err, ErrMalformedToken) {
		t.Errorf("NewTokenKeeper() = %v, want ErrMalformedToken", err)
	}
}

// TestTokenKeeper_ExpiresWithClock verifies expiry is detected and sticky.
func TestTokenKeeper_ExpiresWithClock(t *testing.T) {
	clk := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	token := signToken(t, testKey, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(clk.Now().Add(time.Minute)),
	})

	k, err := NewTokenKeeper(TokenConfig{Token: token, SigningKey: testKey, Now: clk.Now})
	if err != nil {
		t.Fatalf("NewTokenKeeper failed: %v", err)
	}
	if !k.Expiry().Equal(clk.Now().Add(time.Minute)) {
		t.Errorf("Expiry() = %v", k.Expiry())
	}
	if err := k.Check(context.Background()); err != nil {
		t.Fatalf("Check() = %v, want nil", err)
	}

	clk.Advance(2 * time.Minute)
	if err := k.Check(context.Background()); !errors.Is(err, ErrExpired) {
		t.Fatalf("Check() = %v, want ErrExpired", err)
	}

	clk.Advance(-time.Hour)
	if err := k.Check(context.Background()); !errors.Is(err, ErrExpired) {
		t.Errorf("expiry should be sticky, got %v", err)
	}
}

func TestTokenKeeper_Leeway(t *testing.T) {
	clk := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	token := signToken(t, testKey, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(clk.Now()),
	})
	clk.Advance(10 * time.Second)

	k, err := NewTokenKeeper(TokenConfig{Token: token, SigningKey: testKey, Now: clk.Now, Leeway: time.Minute})
	if err != nil {
		t.Fatalf("NewTokenKeeper failed: %v", err)
	}
	if err := k.Check(context.Background()); err != nil {
		t.Errorf("Check() = %v, want nil within leeway", err)
	}
}

func TestTokenKeeper_Issuer(t *testing.T) {
	token := signToken(t, testKey, jwt.RegisteredClaims{
		Issuer:    "render-server",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	if _, err := NewTokenKeeper(TokenConfig{Token: token, SigningKey: testKey, Issuer: "render-server"}); err != nil {
		t.Errorf("matching issuer: %v", err)
	}
	if _, err := NewTokenKeeper(TokenConfig{Token: token, SigningKey: testKey, Issuer: "elsewhere"}); !errors.Is(err, ErrMalformedToken) {
		t.Errorf("wrong issuer = %v, want ErrMalformedToken", err)
	}
}

func TestTokenKeeper_Renew(t *testing.T) {
	clk := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	expired := signToken(t, testKey, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(clk.Now().Add(-time.Minute)),
	})

	k, err := NewTokenKeeper(TokenConfig{Token: expired, SigningKey: testKey, Now: clk.Now})
	if err != nil {
		t.Fatalf("an expired token should still build a keeper: %v", err)
	}
	if err := k.Check(context.Background()); !errors.Is(err, ErrExpired) {
		t.Fatalf("Check() = %v, want ErrExpired", err)
	}

	if err := k.Renew("garbage"); !errors.Is(err, ErrMalformedToken) {
		t.Errorf("Renew(garbage) = %v, want ErrMalformedToken", err)
	}

	fresh := signToken(t, testKey, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(clk.Now().Add(time.Hour)),
	})
	if err := k.Renew(fresh); err != nil {
		t.Fatalf("Renew failed: %v", err)
	}
	if err := k.Check(context.Background()); err != nil {
		t.Errorf("Check() after renew = %v, want nil", err)
	}
}

func TestTokenKeeper_ConcurrentChecks(t *testing.T) {
	token := signToken(t, testKey, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	k, err := NewTokenKeeper(TokenConfig{Token: token, SigningKey: testKey})
	if err != nil {
		t.Fatalf("NewTokenKeeper failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- k.Check(context.Background())
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("Check() = %v", err)
		}
	}
}

func TestCheck_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewStaticKeeper().Check(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Check() = %v, want context.Canceled", err)
	}
}
