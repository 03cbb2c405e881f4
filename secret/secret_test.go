package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("RNDSYNC_TEST_HOST", "render.example.org")

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"braced", "https://${RNDSYNC_TEST_HOST}/api", "https://render.example.org/api", nil},
		{"bare", "$RNDSYNC_TEST_HOST", "render.example.org", nil},
		{"escaped dollar", "cost $$5", "cost $5", nil},
		{"unset bare", "x$RNDSYNC_TEST_UNSET", "x", nil},
		{"unset braced", "${RNDSYNC_TEST_UNSET}", "", ErrMissingEnv},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandEnvStrict(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ExpandEnvStrict() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExpandEnvStrict() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSecretRef(t *testing.T) {
	tests := []struct {
		in       string
		provider string
		ref      string
		ok       bool
	}{
		{"secretref:env:TOKEN", "env", "TOKEN", true},
		{"secretref:file:/run/secrets/key", "file", "/run/secrets/key", true},
		{"secretref::TOKEN", "", "", false},
		{"secretref:env:", "", "", false},
		{"plain", "", "", false},
	}
	for _, tt := range tests {
		p, r, ok := ParseSecretRef(tt.in)
		if p != tt.provider || r != tt.ref || ok != tt.ok {
			t.Errorf("ParseSecretRef(%q) = %q, %q, %v", tt.in, p, r, ok)
		}
	}
}

func TestResolver_ResolveValue(t *testing.T) {
	ctx := context.Background()
	t.Setenv("RNDSYNC_TEST_TOKEN", "tok-123")
	t.Setenv("RNDSYNC_TEST_EMPTY", "")
	t.Setenv("RNDSYNC_TEST_PROVIDER", "env")

	keyFile := filepath.Join(t.TempDir(), "signing-key")
	if err := os.WriteFile(keyFile, []byte("hmac-secret\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	r := DefaultResolver()
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"literal", "plain-value", "plain-value", nil},
		{"env ref", "secretref:env:RNDSYNC_TEST_TOKEN", "tok-123", nil},
		{"expanded provider", "secretref:${RNDSYNC_TEST_PROVIDER}:RNDSYNC_TEST_TOKEN", "tok-123", nil},
		{"file ref", "secretref:file:" + keyFile, "hmac-secret", nil},
		{"missing env", "secretref:env:RNDSYNC_TEST_UNSET", "", ErrMissingEnv},
		{"empty strict", "secretref:env:RNDSYNC_TEST_EMPTY", "", ErrEmptySecret},
		{"unknown provider", "secretref:vault:kv/token", "", ErrUnknownProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveValue(ctx, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ResolveValue() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveValue() = %q, want %q", got, tt.want)
			}
		})
	}

	if got, err := NewResolver(false, EnvProvider{}).ResolveValue(ctx, "secretref:env:RNDSYNC_TEST_EMPTY"); err != nil || got != "" {
		t.Errorf("lenient resolver = %q, %v", got, err)
	}
}
