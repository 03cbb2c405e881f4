package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newMux(checks map[string]Result) *http.ServeMux {
	agg := NewAggregator()
	for name, r := range checks {
		agg.Register(name, fixed(name, r))
	}
	mux := http.NewServeMux()
	RegisterHandlers(mux, agg)
	return mux
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLivenessHandler(t *testing.T) {
	rec := get(t, newMux(nil), "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		checks   map[string]Result
		wantCode int
		wantBody string
	}{
		{"healthy", map[string]Result{"a": Healthy("")}, http.StatusOK, "OK"},
		{"degraded", map[string]Result{"a": Degraded("")}, http.StatusOK, "DEGRADED"},
		{"unhealthy", map[string]Result{"a": Unhealthy("", nil)}, http.StatusServiceUnavailable, "UNHEALTHY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newMux(tt.checks), "/readyz")
			if rec.Code != tt.wantCode || rec.Body.String() != tt.wantBody {
				t.Errorf("got %d %q, want %d %q", rec.Code, rec.Body.String(), tt.wantCode, tt.wantBody)
			}
		})
	}
}

func TestDetailedHandler(t *testing.T) {
	mux := newMux(map[string]Result{
		"session": Healthy("session alive"),
		"cache":   Unhealthy("cache usage critical", ErrCheckFailed),
	})
	rec := get(t, mux, "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d, want 503", rec.Code)
	}

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Status != "unhealthy" || len(resp.Checks) != 2 {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Checks["cache"].Error != ErrCheckFailed.Error() {
		t.Errorf("cache error = %q", resp.Checks["cache"].Error)
	}
}

func TestSingleCheckHandler(t *testing.T) {
	mux := newMux(map[string]Result{"session": Degraded("session expires in 1m0s")})

	rec := get(t, mux, "/health/session")
	if rec.Code != http.StatusOK {
		t.Errorf("code = %d, want 200", rec.Code)
	}
	var resp CheckResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("status = %q", resp.Status)
	}

	if rec := get(t, mux, "/health/unknown"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown checker code = %d, want 404", rec.Code)
	}
}
