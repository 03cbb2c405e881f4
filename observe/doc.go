// Package observe provides logging, metrics and tracing for rendering calls.
//
// It wires OpenTelemetry providers from a Config, offers a small structured
// JSON Logger, and an Instrumenter that wraps each remote engine call in a
// span, records call and cache counters, and logs failures.
package observe
