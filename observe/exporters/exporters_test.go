package exporters

import (
	"context"
	"errors"
	"testing"
)

func TestNewTracingExporter(t *testing.T) {
	tests := []struct {
		name    string
		wantErr error
	}{
		{"stdout", nil},
		{"none", nil},
		{"", nil},
		{"jaeger", ErrUnknownExporter},
		{"invalid", ErrUnknownExporter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := NewTracingExporter(context.Background(), tt.name)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewTracingExporter(%q) = %v, want %v", tt.name, err, tt.wantErr)
				}
				return
			}
			if err != nil || exp == nil {
				t.Errorf("NewTracingExporter(%q) = (%v, %v), want exporter", tt.name, exp, err)
			}
		})
	}
}

func TestNewMetricsReader(t *testing.T) {
	for _, name := range []string{"stdout", "prometheus", "none", ""} {
		t.Run(name, func(t *testing.T) {
			reader, err := NewMetricsReader(context.Background(), name)
			if err != nil || reader == nil {
				t.Errorf("NewMetricsReader(%q) = (%v, %v), want reader", name, reader, err)
			}
		})
	}

	if _, err := NewMetricsReader(context.Background(), "statsd"); !errors.Is(err, ErrUnknownExporter) {
		t.Errorf("NewMetricsReader(statsd) = %v, want ErrUnknownExporter", err)
	}
}

// TestOTLP_MissingEndpoint verifies OTLP exporters require an endpoint.
func TestOTLP_MissingEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")

	if _, err := NewTracingExporter(context.Background(), "otlp"); !errors.Is(err, ErrEndpointNotConfigured) {
		t.Errorf("NewTracingExporter(otlp) = %v, want ErrEndpointNotConfigured", err)
	}
	if _, err := NewMetricsReader(context.Background(), "otlp"); !errors.Is(err, ErrEndpointNotConfigured) {
		t.Errorf("NewMetricsReader(otlp) = %v, want ErrEndpointNotConfigured", err)
	}
}
